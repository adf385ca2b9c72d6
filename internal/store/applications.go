// internal/store/applications.go
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	engineerrors "staffing-engine/internal/common/errors"
	"staffing-engine/internal/models"
)

// uniqueViolation is the Postgres error code raised by the partial unique
// index on (professional_id, job_id) for non-terminal applications.
const uniqueViolation = "23505"

const applicationColumns = `id, professional_id, job_id, status, applied_at, match_score, notes, updated_at, version`

func scanApplication(row interface{ Scan(...interface{}) error }) (*models.Application, error) {
	var app models.Application
	var score sql.NullInt64
	var notes sql.NullString
	err := row.Scan(&app.ID, &app.ProfessionalID, &app.JobID, &app.Status,
		&app.AppliedAt, &score, &notes, &app.UpdatedAt, &app.Version)
	if err != nil {
		return nil, err
	}
	if score.Valid {
		v := int(score.Int64)
		app.MatchScore = &v
	}
	app.Notes = notes.String
	return &app, nil
}

// GetApplication loads one application by id.
func (s *Store) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	row := s.db.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engineerrors.NewRecordNotFoundError("application", id)
	}
	if err != nil {
		return nil, engineerrors.NewQueryExecutionFailedError("get_application", err)
	}
	return app, nil
}

// ListApplicationsForJob returns every application referencing a job.
func (s *Store) ListApplicationsForJob(ctx context.Context, jobID string) ([]*models.Application, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 ORDER BY applied_at`, jobID)
	if err != nil {
		return nil, engineerrors.NewQueryExecutionFailedError("list_applications", err)
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, engineerrors.NewQueryExecutionFailedError("list_applications", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, engineerrors.NewQueryExecutionFailedError("list_applications", err)
	}
	return apps, nil
}

// InsertApplication creates a pending application and its submit audit
// event in one transaction. The partial unique index enforces one active
// application per (professional, job) pair.
func (s *Store) InsertApplication(ctx context.Context, app *models.Application, event models.AuditEvent) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO applications (id, professional_id, job_id, status, applied_at, match_score, notes, updated_at, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			app.ID, app.ProfessionalID, app.JobID, app.Status, app.AppliedAt,
			nullableInt(app.MatchScore), app.Notes, app.UpdatedAt, app.Version)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
				return engineerrors.NewDuplicateApplicationError(app.ProfessionalID, app.JobID)
			}
			return engineerrors.NewQueryExecutionFailedError("insert_application", err)
		}
		return insertAuditEventTx(ctx, tx, event)
	})
}

// CommitApplicationTransition persists a single-aggregate status change with
// optimistic concurrency: a stale expectedVersion updates nothing and comes
// back as a conflict.
func (s *Store) CommitApplicationTransition(ctx context.Context, app *models.Application, expectedVersion int64, event models.AuditEvent) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := updateApplicationTx(ctx, tx, app, expectedVersion); err != nil {
			return err
		}
		return insertAuditEventTx(ctx, tx, event)
	})
}

// CompletePlacement commits the accept cascade: the accepted application,
// the auto-rejected siblings and the job's move to filled land atomically
// together with their audit events.
func (s *Store) CompletePlacement(ctx context.Context, accepted *models.Application, acceptedVersion int64, rejected []*models.Application, job *models.JobOpportunity, jobVersion int64, events []models.AuditEvent) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := updateApplicationTx(ctx, tx, accepted, acceptedVersion); err != nil {
			return err
		}
		for _, sibling := range rejected {
			if err := updateApplicationTx(ctx, tx, sibling, sibling.Version-1); err != nil {
				return err
			}
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE jobs SET status = $1, filled_at = $2, version = version + 1
			WHERE id = $3 AND version = $4`,
			job.Status, job.FilledAt, job.ID, jobVersion)
		if err != nil {
			return engineerrors.NewQueryExecutionFailedError("fill_job", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return engineerrors.NewConflictError("job", job.ID)
		}

		for _, event := range events {
			if err := insertAuditEventTx(ctx, tx, event); err != nil {
				return err
			}
		}
		return nil
	})
}

func updateApplicationTx(ctx context.Context, tx *sql.Tx, app *models.Application, expectedVersion int64) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE applications SET status = $1, notes = $2, updated_at = $3, version = $4
		WHERE id = $5 AND version = $6`,
		app.Status, app.Notes, app.UpdatedAt, app.Version, app.ID, expectedVersion)
	if err != nil {
		return engineerrors.NewQueryExecutionFailedError("update_application", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return engineerrors.NewConflictError("application", app.ID)
	}
	return nil
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
