// internal/engine/credentials/validator.go
package credentials

import (
	"fmt"
	"time"

	engineerrors "staffing-engine/internal/common/errors"
	"staffing-engine/internal/models"
	"staffing-engine/pkg/registry"
)

// Validator recomputes credential status from authoritative fields. Stored
// status flags are never trusted: a credential whose expiry has passed is
// expired no matter what the record says.
type Validator struct {
	registry *registry.CredentialRegistry
}

func NewValidator(reg *registry.CredentialRegistry) *Validator {
	return &Validator{registry: reg}
}

// Validate returns the credential's status as of the given instant.
//
// Fails closed: an expiring credential type (license, certification, dea)
// without an expiry date is a data-integrity error, not a valid credential.
func (v *Validator) Validate(cred models.Credential, asOf time.Time) (models.CredentialStatus, error) {
	if cred.ExpiresAt == nil {
		if cred.Type.Expires() {
			return "", engineerrors.NewDataIntegrityError(
				"credential",
				fmt.Sprintf("credentialId: %s, type %s requires an expiry date", cred.ID, cred.Type),
			)
		}
		// Background checks never expire; the stored verification status
		// is the only remaining signal.
		if cred.Status == models.CredentialPending {
			return models.CredentialPending, nil
		}
		return models.CredentialValid, nil
	}

	if asOf.After(*cred.ExpiresAt) {
		return models.CredentialExpired, nil
	}
	if cred.Status == models.CredentialPending {
		return models.CredentialPending, nil
	}
	return models.CredentialValid, nil
}

// Standing combines a professional's credentials into one aggregate status.
// The result is valid only when every required credential type for the
// specialty is present and valid. When combining, pending_verification
// dominates expired, which dominates valid. A required type with no
// credential at all counts as pending_verification.
func (v *Validator) Standing(p *models.HealthcareProfessional, asOf time.Time) (models.CredentialStatus, error) {
	required := v.registry.RequiredFor(p.Specialty)
	if len(required) == 0 {
		return models.CredentialValid, nil
	}

	standing := models.CredentialValid
	for _, reqType := range required {
		status, err := v.bestOfType(p.Credentials, reqType, asOf)
		if err != nil {
			return "", err
		}
		standing = dominate(standing, status)
	}
	return standing, nil
}

// bestOfType returns the strongest status among a professional's
// credentials of one type; holding one valid license outweighs also holding
// an expired one.
func (v *Validator) bestOfType(creds []models.Credential, t models.CredentialType, asOf time.Time) (models.CredentialStatus, error) {
	found := false
	best := models.CredentialPending
	for _, cred := range creds {
		if cred.Type != t {
			continue
		}
		status, err := v.Validate(cred, asOf)
		if err != nil {
			return "", err
		}
		found = true
		if status == models.CredentialValid {
			return models.CredentialValid, nil
		}
		if status == models.CredentialExpired && best == models.CredentialPending {
			best = models.CredentialExpired
		}
	}
	if !found {
		return models.CredentialPending, nil
	}
	return best, nil
}

// dominance order when combining: pending_verification > expired > valid.
var dominanceRank = map[models.CredentialStatus]int{
	models.CredentialValid:   0,
	models.CredentialExpired: 1,
	models.CredentialPending: 2,
}

func dominate(a, b models.CredentialStatus) models.CredentialStatus {
	if dominanceRank[b] > dominanceRank[a] {
		return b
	}
	return a
}

// StandingRank orders aggregate standings for ranking tie-breaks; higher is
// better.
func StandingRank(s models.CredentialStatus) int {
	switch s {
	case models.CredentialValid:
		return 2
	case models.CredentialExpired:
		return 1
	default:
		return 0
	}
}
