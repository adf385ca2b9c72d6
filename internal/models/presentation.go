// internal/models/presentation.go
package models

import "time"

// PresentationStatus is the lifecycle status of an email presentation.
type PresentationStatus string

const (
	PresentationSent      PresentationStatus = "sent"
	PresentationOpened    PresentationStatus = "opened"
	PresentationResponded PresentationStatus = "responded"
	PresentationExpired   PresentationStatus = "expired"
)

// EmailPresentation is a candidate pitched to a client facility for a job.
// Exactly one ClientResponse may attach over its lifetime.
//
// ClosedAt is set when the presentation no longer needs follow-up. A
// negotiate response leaves it unset until the recruiter supersedes or
// overrides the presentation.
type EmailPresentation struct {
	ID             string             `json:"id"`
	ProfessionalID string             `json:"professionalId"`
	JobID          string             `json:"jobId"`
	Recipient      string             `json:"recipient"`
	Subject        string             `json:"subject"`
	Content        string             `json:"content"`
	TrackingID     string             `json:"trackingId"`
	Status         PresentationStatus `json:"status"`
	SentAt         time.Time          `json:"sentAt"`
	OpenedAt       *time.Time         `json:"openedAt,omitempty"`
	RespondedAt    *time.Time         `json:"respondedAt,omitempty"`
	ClosedAt       *time.Time         `json:"closedAt,omitempty"`
	ResponseID     string             `json:"responseId,omitempty"`
	Version        int64              `json:"version"`
}

// ResponseDecision is the client's verdict on a presented candidate.
type ResponseDecision string

const (
	DecisionAccept    ResponseDecision = "accept"
	DecisionReject    ResponseDecision = "reject"
	DecisionNegotiate ResponseDecision = "negotiate"
)

// NegotiationTerms are the counter-terms attached to a negotiate decision.
type NegotiationTerms struct {
	Salary    *int       `json:"salary,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	Schedule  string     `json:"schedule,omitempty"`
	Other     string     `json:"other,omitempty"`
}

// ClientResponse is a facility's answer to a presentation. Immutable once
// created.
type ClientResponse struct {
	ID             string            `json:"id"`
	PresentationID string            `json:"presentationId"`
	Decision       ResponseDecision  `json:"decision"`
	Feedback       string            `json:"feedback,omitempty"`
	Terms          *NegotiationTerms `json:"terms,omitempty"`
	RespondedBy    string            `json:"respondedBy"`
	RespondedAt    time.Time         `json:"respondedAt"`
}
