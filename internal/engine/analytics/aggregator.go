// internal/engine/analytics/aggregator.go
package analytics

import (
	"time"

	"staffing-engine/internal/models"
)

// Aggregate folds applications, presentations and jobs into the dashboard
// metrics shape. It is a pure function of its inputs: nothing is cached or
// persisted, so displayed metrics can never drift from the records they
// summarize.
//
// Every rate with an empty denominator is a defined zero, because "no data
// yet" is the normal state of a new tenant, not an error.
func Aggregate(apps []models.Application, presentations []models.EmailPresentation, jobs []models.JobOpportunity, window time.Duration, asOf time.Time) models.DashboardMetrics {
	m := models.DashboardMetrics{
		TotalApplications: len(apps),
		PresentationsSent: len(presentations),
	}

	scoreSum := 0
	scored := 0
	for _, app := range apps {
		if app.Status != models.ApplicationPending {
			m.DecidedApplications++
		}
		if app.Status == models.ApplicationAccepted {
			m.Placements++
		}
		if app.MatchScore != nil {
			scoreSum += *app.MatchScore
			scored++
		}
	}
	if m.DecidedApplications > 0 {
		m.PlacementRate = float64(m.Placements) / float64(m.DecidedApplications)
	}
	if scored > 0 {
		m.AverageMatchScore = float64(scoreSum) / float64(scored)
	}

	windowStart := asOf.Add(-window)
	var fillSum time.Duration
	filledInWindow := 0
	for _, job := range jobs {
		switch job.Status {
		case models.JobOpen:
			m.OpenJobs++
		case models.JobFilled:
			m.FilledJobs++
			if job.FilledAt != nil && !job.FilledAt.Before(windowStart) && !job.FilledAt.After(asOf) {
				fillSum += job.FilledAt.Sub(job.PostedAt)
				filledInWindow++
			}
		}
	}
	if filledInWindow > 0 {
		m.AverageTimeToFillDays = fillSum.Hours() / 24 / float64(filledInWindow)
	}

	opened := 0
	responded := 0
	for _, p := range presentations {
		if p.OpenedAt != nil {
			opened++
		}
		if p.Status == models.PresentationResponded {
			responded++
		}
	}
	if len(presentations) > 0 {
		m.PresentationOpenRate = float64(opened) / float64(len(presentations))
		m.ResponseRate = float64(responded) / float64(len(presentations))
	}

	return m
}
