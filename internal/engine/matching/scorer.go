// internal/engine/matching/scorer.go
package matching

import (
	"fmt"
	"math"
	"strings"
	"time"

	"staffing-engine/internal/common/config"
	engineerrors "staffing-engine/internal/common/errors"
	"staffing-engine/internal/engine/credentials"
	"staffing-engine/internal/models"
	"staffing-engine/pkg/registry"
)

// weightTolerance is how far the configured weights may drift from summing
// to exactly 1 before construction fails.
const weightTolerance = 1e-9

var availabilityTiers = []models.AvailabilityTier{
	models.AvailabilityImmediate,
	models.AvailabilityTwoWeeks,
	models.AvailabilityOneMonth,
	models.AvailabilityFlexible,
}

var urgencyTiers = []models.UrgencyTier{
	models.UrgencyHigh,
	models.UrgencyMedium,
	models.UrgencyLow,
}

// ScoreBreakdown reports each sub-score in [0,1] alongside the weighted
// 0-100 total, mirroring how matches are explained on the recruiter side.
type ScoreBreakdown struct {
	Skills       float64 `json:"skills"`
	Credentials  float64 `json:"credentials"`
	Location     float64 `json:"location"`
	Availability float64 `json:"availability"`
	Compensation float64 `json:"compensation"`
	Total        int     `json:"total"`
}

// Scorer computes the 0-100 compatibility score between one professional
// and one job. Scoring is pure: identical inputs and asOf always produce
// the same score.
type Scorer struct {
	cfg       config.ScoringConfig
	validator *credentials.Validator
	registry  *registry.CredentialRegistry
}

// NewScorer validates the scoring configuration and fails fast with a
// configuration error rather than deferring problems to score time.
func NewScorer(cfg config.ScoringConfig, validator *credentials.Validator, reg *registry.CredentialRegistry) (*Scorer, error) {
	if diff := math.Abs(cfg.Weights.Sum() - 1.0); diff > weightTolerance {
		return nil, engineerrors.NewConfigurationError(
			fmt.Sprintf("scoring weights must sum to 1, got %v", cfg.Weights.Sum()),
		)
	}
	for _, w := range []float64{
		cfg.Weights.Skills, cfg.Weights.Credentials, cfg.Weights.Location,
		cfg.Weights.Availability, cfg.Weights.Compensation,
	} {
		if w < 0 {
			return nil, engineerrors.NewConfigurationError("scoring weights must be non-negative")
		}
	}

	for _, tier := range availabilityTiers {
		row, ok := cfg.AvailabilityUrgency[string(tier)]
		if !ok {
			return nil, engineerrors.NewConfigurationError(
				fmt.Sprintf("availability_urgency missing row for tier %q", tier),
			)
		}
		for _, urgency := range urgencyTiers {
			fit, ok := row[string(urgency)]
			if !ok {
				return nil, engineerrors.NewConfigurationError(
					fmt.Sprintf("availability_urgency missing entry for (%s, %s)", tier, urgency),
				)
			}
			if fit < 0 || fit > 1 {
				return nil, engineerrors.NewConfigurationError(
					fmt.Sprintf("availability_urgency[%s][%s] must be in [0,1], got %v", tier, urgency, fit),
				)
			}
		}
	}

	return &Scorer{cfg: cfg, validator: validator, registry: reg}, nil
}

// Score returns the weighted compatibility score rounded to the nearest
// integer in [0,100]. A score of 0 is a legitimate "no match" outcome, not
// an error; callers represent "not computed" as an absent value.
func (s *Scorer) Score(p *models.HealthcareProfessional, job *models.JobOpportunity, asOf time.Time) (int, error) {
	b, err := s.Breakdown(p, job, asOf)
	if err != nil {
		return 0, err
	}
	return b.Total, nil
}

// Breakdown computes every sub-score and the weighted total.
func (s *Scorer) Breakdown(p *models.HealthcareProfessional, job *models.JobOpportunity, asOf time.Time) (*ScoreBreakdown, error) {
	credFit, err := s.credentialFit(p, job, asOf)
	if err != nil {
		return nil, err
	}

	b := &ScoreBreakdown{
		Skills:       s.skillFit(p.Skills, job.Requirements),
		Credentials:  credFit,
		Location:     s.locationFit(p.Location, job.Location),
		Availability: s.cfg.AvailabilityUrgency[string(p.Availability)][string(job.Urgency)],
		Compensation: s.compensationFit(p.SalaryExpectation, job.SalaryRange),
	}

	w := s.cfg.Weights
	total := b.Skills*w.Skills +
		b.Credentials*w.Credentials +
		b.Location*w.Location +
		b.Availability*w.Availability +
		b.Compensation*w.Compensation
	b.Total = int(math.Round(total * 100))

	return b, nil
}

// skillFit is the fraction of job requirements satisfied by the
// professional's skill tags. An empty requirement list is vacuously
// satisfied and scores 1.0.
func (s *Scorer) skillFit(skills, requirements []string) float64 {
	if len(requirements) == 0 {
		return 1.0
	}

	satisfied := 0
	for _, req := range requirements {
		for _, skill := range skills {
			if skillSatisfies(req, skill) {
				satisfied++
				break
			}
		}
	}
	return float64(satisfied) / float64(len(requirements))
}

// skillSatisfies keeps the direction-sensitive convention: the requirement
// string contains the skill tag, case-insensitively. Tags shorter than
// three characters must additionally land on a token boundary so that "RN"
// matches "Registered Nurse RN" while "ER" does not match "SUPERVISOR".
func skillSatisfies(requirement, skill string) bool {
	req := strings.ToLower(strings.TrimSpace(requirement))
	tag := strings.ToLower(strings.TrimSpace(skill))
	if tag == "" || req == "" {
		return false
	}

	if len(tag) >= 3 {
		return strings.Contains(req, tag)
	}

	for _, token := range strings.FieldsFunc(req, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if token == tag {
			return true
		}
	}
	return false
}

// credentialFit is the fraction of the job specialty's mandated credential
// types the professional holds in valid status as of evaluation time.
func (s *Scorer) credentialFit(p *models.HealthcareProfessional, job *models.JobOpportunity, asOf time.Time) (float64, error) {
	required := s.registry.RequiredFor(job.Specialty)
	if len(required) == 0 {
		return 1.0, nil
	}

	held := 0
	for _, reqType := range required {
		for _, cred := range p.Credentials {
			if cred.Type != reqType {
				continue
			}
			status, err := s.validator.Validate(cred, asOf)
			if err != nil {
				return 0, err
			}
			if status == models.CredentialValid {
				held++
				break
			}
		}
	}
	return float64(held) / float64(len(required)), nil
}

func (s *Scorer) locationFit(p, job models.Location) float64 {
	if p.State == "" || job.State == "" {
		return 0.0
	}
	if strings.EqualFold(p.State, job.State) {
		return 1.0
	}
	for _, neighbor := range s.cfg.NeighboringStates[strings.ToUpper(job.State)] {
		if strings.EqualFold(neighbor, p.State) {
			return 0.5
		}
	}
	return 0.0
}

// compensationFit is 1.0 when the expectation range overlaps the job's
// salary range at all, and degrades with the proportional gap when the
// ranges are disjoint. Unknown ranges score a neutral 0.5, matching how
// missing profile data is treated elsewhere in scoring.
func (s *Scorer) compensationFit(expectation, offered models.SalaryRange) float64 {
	if !expectation.IsSet() || !offered.IsSet() {
		return 0.5
	}
	if expectation.Overlaps(offered) {
		return 1.0
	}

	var gap float64
	if expectation.Min > offered.Max {
		gap = float64(expectation.Min - offered.Max)
	} else {
		gap = float64(offered.Min - expectation.Max)
	}

	reference := float64(offered.Max)
	if float64(expectation.Max) > reference {
		reference = float64(expectation.Max)
	}
	return math.Max(0.0, 1.0-gap/reference)
}
