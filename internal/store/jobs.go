// internal/store/jobs.go
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	engineerrors "staffing-engine/internal/common/errors"
	"staffing-engine/internal/models"
)

const jobColumns = `id, title, facility_id, specialty, employment_type, requirements, qualifications,
	salary_min, salary_max, benefits, schedule, start_date, urgency, city, state,
	status, posted_at, filled_at, version`

func scanJob(row interface{ Scan(...interface{}) error }) (*models.JobOpportunity, error) {
	var job models.JobOpportunity
	var requirements, qualifications, benefits pq.StringArray
	var schedule sql.NullString
	var startDate, filledAt sql.NullTime
	err := row.Scan(&job.ID, &job.Title, &job.FacilityID, &job.Specialty,
		&job.EmploymentType, &requirements, &qualifications,
		&job.SalaryRange.Min, &job.SalaryRange.Max, &benefits, &schedule,
		&startDate, &job.Urgency, &job.Location.City, &job.Location.State,
		&job.Status, &job.PostedAt, &filledAt, &job.Version)
	if err != nil {
		return nil, err
	}
	job.Requirements = requirements
	job.Qualifications = qualifications
	job.Benefits = benefits
	job.Schedule = schedule.String
	if startDate.Valid {
		job.StartDate = &startDate.Time
	}
	if filledAt.Valid {
		job.FilledAt = &filledAt.Time
	}
	return &job, nil
}

// GetJob loads one job opportunity by id.
func (s *Store) GetJob(ctx context.Context, id string) (*models.JobOpportunity, error) {
	row := s.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engineerrors.NewRecordNotFoundError("job", id)
	}
	if err != nil {
		return nil, engineerrors.NewQueryExecutionFailedError("get_job", err)
	}
	return job, nil
}

// ListOpenJobs returns the open job pool, optionally narrowed by specialty.
func (s *Store) ListOpenJobs(ctx context.Context, specialty string) ([]*models.JobOpportunity, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE status = $1`
	args := []interface{}{models.JobOpen}
	if specialty != "" {
		query += ` AND LOWER(specialty) = LOWER($2)`
		args = append(args, specialty)
	}
	query += ` ORDER BY posted_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, engineerrors.NewQueryExecutionFailedError("list_open_jobs", err)
	}
	defer rows.Close()

	var jobs []*models.JobOpportunity
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, engineerrors.NewQueryExecutionFailedError("list_open_jobs", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, engineerrors.NewQueryExecutionFailedError("list_open_jobs", err)
	}
	return jobs, nil
}
