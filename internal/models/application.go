// internal/models/application.go
package models

import "time"

// ApplicationStatus is the lifecycle status of an application. Accepted and
// rejected are terminal.
type ApplicationStatus string

const (
	ApplicationPending            ApplicationStatus = "pending"
	ApplicationReviewed           ApplicationStatus = "reviewed"
	ApplicationInterviewScheduled ApplicationStatus = "interview_scheduled"
	ApplicationAccepted           ApplicationStatus = "accepted"
	ApplicationRejected           ApplicationStatus = "rejected"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationAccepted || s == ApplicationRejected
}

// Application links one professional to one job. A professional holds at
// most one non-terminal application per job.
type Application struct {
	ID             string            `json:"id"`
	ProfessionalID string            `json:"professionalId"`
	JobID          string            `json:"jobId"`
	Status         ApplicationStatus `json:"status"`
	AppliedAt      time.Time         `json:"appliedAt"`
	// MatchScore is the score snapshot taken when the application was
	// created; nil when no score was computed at apply time.
	MatchScore *int      `json:"matchScore,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Version    int64     `json:"version"`
}
