// internal/models/credential.go
package models

import "time"

// CredentialType classifies a professional credential.
type CredentialType string

const (
	CredentialLicense         CredentialType = "license"
	CredentialCertification   CredentialType = "certification"
	CredentialDEA             CredentialType = "dea"
	CredentialBackgroundCheck CredentialType = "background_check"
)

// Expires reports whether credentials of this type carry an expiry date.
// Background checks are point-in-time and never expire.
func (t CredentialType) Expires() bool {
	return t != CredentialBackgroundCheck
}

// CredentialStatus is the validation outcome for a credential. The stored
// status is advisory only; the credentials validator recomputes it from
// dates on every read.
type CredentialStatus string

const (
	CredentialValid   CredentialStatus = "valid"
	CredentialExpired CredentialStatus = "expired"
	CredentialPending CredentialStatus = "pending_verification"
)

// Credential is one license, certification, DEA registration or background
// check held by a professional.
type Credential struct {
	ID             string           `json:"id"`
	ProfessionalID string           `json:"professionalId"`
	Type           CredentialType   `json:"type"`
	IssuingBody    string           `json:"issuingBody"`
	Number         string           `json:"number"`
	Jurisdiction   string           `json:"jurisdiction"`
	IssuedAt       time.Time        `json:"issuedAt"`
	ExpiresAt      *time.Time       `json:"expiresAt,omitempty"`
	Status         CredentialStatus `json:"status"`
}
