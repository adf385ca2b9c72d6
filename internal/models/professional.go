// internal/models/professional.go
package models

import "time"

// AvailabilityTier describes how soon a professional can start an assignment.
type AvailabilityTier string

const (
	AvailabilityImmediate AvailabilityTier = "immediate"
	AvailabilityTwoWeeks  AvailabilityTier = "two_weeks"
	AvailabilityOneMonth  AvailabilityTier = "one_month"
	AvailabilityFlexible  AvailabilityTier = "flexible"
)

// ProfessionalStatus is the lifecycle status of a professional record.
// Professionals are never hard-deleted; retirement is a transition to inactive.
type ProfessionalStatus string

const (
	ProfessionalActive   ProfessionalStatus = "active"
	ProfessionalInactive ProfessionalStatus = "inactive"
	ProfessionalPending  ProfessionalStatus = "pending"
)

// SalaryRange is an annual compensation range in whole dollars.
// A zero Max means the range is unknown, not unbounded.
type SalaryRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// IsSet reports whether the range carries usable data.
func (r SalaryRange) IsSet() bool {
	return r.Max > 0 && r.Max >= r.Min
}

// Overlaps reports whether two set ranges share at least one value.
func (r SalaryRange) Overlaps(other SalaryRange) bool {
	return r.IsSet() && other.IsSet() && r.Min <= other.Max && other.Min <= r.Max
}

// Location is a city/state pair; matching only looks at State.
type Location struct {
	City  string `json:"city"`
	State string `json:"state"`
}

// HealthcareProfessional is the canonical candidate record.
type HealthcareProfessional struct {
	ID                string             `json:"id"`
	FirstName         string             `json:"firstName"`
	LastName          string             `json:"lastName"`
	Email             string             `json:"email"`
	Phone             string             `json:"phone"`
	Specialty         string             `json:"specialty"`
	YearsExperience   int                `json:"yearsExperience"`
	Location          Location           `json:"location"`
	Credentials       []Credential       `json:"credentials"`
	Skills            []string           `json:"skills"`
	Availability      AvailabilityTier   `json:"availability"`
	SalaryExpectation SalaryRange        `json:"salaryExpectation"`
	Status            ProfessionalStatus `json:"status"`
	LastPlacedAt      *time.Time         `json:"lastPlacedAt,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// ProfileCompleteness derives the 0-100 completeness percentage from
// populated fields. It is recomputed on read, never stored, so displayed
// completeness cannot drift from the record.
func (p *HealthcareProfessional) ProfileCompleteness() int {
	checks := []bool{
		p.FirstName != "" && p.LastName != "",
		p.Email != "",
		p.Phone != "",
		p.Specialty != "",
		p.YearsExperience > 0,
		p.Location.State != "",
		len(p.Credentials) > 0,
		len(p.Skills) > 0,
		p.Availability != "",
		p.SalaryExpectation.IsSet(),
	}

	populated := 0
	for _, ok := range checks {
		if ok {
			populated++
		}
	}
	return populated * 100 / len(checks)
}
