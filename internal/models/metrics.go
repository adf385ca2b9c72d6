// internal/models/metrics.go
package models

// DashboardMetrics is the derived dashboard aggregate. It is recomputed on
// demand from applications, presentations and jobs and never persisted;
// there is no schema for it beyond this shape.
type DashboardMetrics struct {
	TotalApplications     int     `json:"totalApplications"`
	DecidedApplications   int     `json:"decidedApplications"`
	Placements            int     `json:"placements"`
	PlacementRate         float64 `json:"placementRate"`
	AverageMatchScore     float64 `json:"averageMatchScore"`
	AverageTimeToFillDays float64 `json:"averageTimeToFillDays"`
	OpenJobs              int     `json:"openJobs"`
	FilledJobs            int     `json:"filledJobs"`
	PresentationsSent     int     `json:"presentationsSent"`
	PresentationOpenRate  float64 `json:"presentationOpenRate"`
	ResponseRate          float64 `json:"responseRate"`
}
