// internal/models/audit.go
package models

import "time"

// AggregateType names the workflow aggregate an audit event belongs to.
type AggregateType string

const (
	AggregateApplication  AggregateType = "application"
	AggregatePresentation AggregateType = "presentation"
	AggregateJob          AggregateType = "job"
)

// AuditEvent records one workflow transition. Events are append-only and
// never updated.
type AuditEvent struct {
	ID            string        `json:"id"`
	AggregateType AggregateType `json:"aggregateType"`
	AggregateID   string        `json:"aggregateId"`
	Action        string        `json:"action"`
	FromStatus    string        `json:"fromStatus"`
	ToStatus      string        `json:"toStatus"`
	Actor         string        `json:"actor"`
	Details       string        `json:"details,omitempty"`
	OccurredAt    time.Time     `json:"occurredAt"`
}
