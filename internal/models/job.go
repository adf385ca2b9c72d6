// internal/models/job.go
package models

import "time"

// JobStatus is the lifecycle status of a job opportunity. A job becomes
// filled only through an accepted application; closed is terminal.
type JobStatus string

const (
	JobOpen    JobStatus = "open"
	JobFilled  JobStatus = "filled"
	JobPending JobStatus = "pending"
	JobClosed  JobStatus = "closed"
)

// UrgencyTier is how urgently the facility needs the position filled.
type UrgencyTier string

const (
	UrgencyHigh   UrgencyTier = "high"
	UrgencyMedium UrgencyTier = "medium"
	UrgencyLow    UrgencyTier = "low"
)

// EmploymentType distinguishes permanent, contract and travel placements.
type EmploymentType string

const (
	EmploymentPermanent EmploymentType = "permanent"
	EmploymentContract  EmploymentType = "contract"
	EmploymentTravel    EmploymentType = "travel"
	EmploymentPerDiem   EmploymentType = "per_diem"
)

// Facility is static reference data about a client facility. The engine
// only reads facility records.
type Facility struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	BedCount     int      `json:"bedCount,omitempty"`
	Location     Location `json:"location"`
	ContactName  string   `json:"contactName"`
	ContactEmail string   `json:"contactEmail"`
}

// JobOpportunity is an open position at a facility.
//
// MatchScore is populated only when the job is evaluated against a specific
// professional; nil means not computed, which is distinct from a computed
// score of zero.
type JobOpportunity struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	FacilityID     string         `json:"facilityId"`
	Specialty      string         `json:"specialty"`
	EmploymentType EmploymentType `json:"employmentType"`
	Requirements   []string       `json:"requirements"`
	Qualifications []string       `json:"qualifications,omitempty"`
	SalaryRange    SalaryRange    `json:"salaryRange"`
	Benefits       []string       `json:"benefits,omitempty"`
	Schedule       string         `json:"schedule,omitempty"`
	StartDate      *time.Time     `json:"startDate,omitempty"`
	Urgency        UrgencyTier    `json:"urgency"`
	Location       Location       `json:"location"`
	MatchScore     *int           `json:"matchScore,omitempty"`
	Status         JobStatus      `json:"status"`
	ApplicationIDs []string       `json:"applicationIds,omitempty"`
	PostedAt       time.Time      `json:"postedAt"`
	FilledAt       *time.Time     `json:"filledAt,omitempty"`
	Version        int64          `json:"version"`
}
