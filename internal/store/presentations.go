// internal/store/presentations.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"

	engineerrors "staffing-engine/internal/common/errors"
	"staffing-engine/internal/models"
)

const presentationColumns = `id, professional_id, job_id, recipient, subject, content, tracking_id, status, sent_at, opened_at, responded_at, closed_at, response_id, version`

func scanPresentation(row interface{ Scan(...interface{}) error }) (*models.EmailPresentation, error) {
	var p models.EmailPresentation
	var openedAt, respondedAt, closedAt sql.NullTime
	var responseID sql.NullString
	err := row.Scan(&p.ID, &p.ProfessionalID, &p.JobID, &p.Recipient, &p.Subject,
		&p.Content, &p.TrackingID, &p.Status, &p.SentAt,
		&openedAt, &respondedAt, &closedAt, &responseID, &p.Version)
	if err != nil {
		return nil, err
	}
	if openedAt.Valid {
		p.OpenedAt = &openedAt.Time
	}
	if respondedAt.Valid {
		p.RespondedAt = &respondedAt.Time
	}
	if closedAt.Valid {
		p.ClosedAt = &closedAt.Time
	}
	p.ResponseID = responseID.String
	return &p, nil
}

// GetPresentation loads one presentation by id.
func (s *Store) GetPresentation(ctx context.Context, id string) (*models.EmailPresentation, error) {
	row := s.db.QueryRow(ctx, `SELECT `+presentationColumns+` FROM presentations WHERE id = $1`, id)
	p, err := scanPresentation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engineerrors.NewRecordNotFoundError("presentation", id)
	}
	if err != nil {
		return nil, engineerrors.NewQueryExecutionFailedError("get_presentation", err)
	}
	return p, nil
}

// GetPresentationByTrackingID resolves an inbound tracking event.
func (s *Store) GetPresentationByTrackingID(ctx context.Context, trackingID string) (*models.EmailPresentation, error) {
	row := s.db.QueryRow(ctx, `SELECT `+presentationColumns+` FROM presentations WHERE tracking_id = $1`, trackingID)
	p, err := scanPresentation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engineerrors.NewRecordNotFoundError("presentation", trackingID)
	}
	if err != nil {
		return nil, engineerrors.NewQueryExecutionFailedError("get_presentation_by_tracking", err)
	}
	return p, nil
}

// InsertPresentation records a sent presentation and its audit event.
func (s *Store) InsertPresentation(ctx context.Context, p *models.EmailPresentation, event models.AuditEvent) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO presentations (id, professional_id, job_id, recipient, subject, content, tracking_id, status, sent_at, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			p.ID, p.ProfessionalID, p.JobID, p.Recipient, p.Subject, p.Content,
			p.TrackingID, p.Status, p.SentAt, p.Version)
		if err != nil {
			return engineerrors.NewQueryExecutionFailedError("insert_presentation", err)
		}
		return insertAuditEventTx(ctx, tx, event)
	})
}

// CommitPresentationTransition persists a presentation status change with
// optimistic concurrency.
func (s *Store) CommitPresentationTransition(ctx context.Context, p *models.EmailPresentation, expectedVersion int64, event models.AuditEvent) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := updatePresentationTx(ctx, tx, p, expectedVersion); err != nil {
			return err
		}
		return insertAuditEventTx(ctx, tx, event)
	})
}

// AttachClientResponse inserts the immutable response and moves the
// presentation to responded in one transaction. The unique constraint on
// client_responses.presentation_id backs up the single-response invariant
// against concurrent attachers.
func (s *Store) AttachClientResponse(ctx context.Context, p *models.EmailPresentation, expectedVersion int64, resp *models.ClientResponse, event models.AuditEvent) error {
	var terms []byte
	if resp.Terms != nil {
		var err error
		terms, err = json.Marshal(resp.Terms)
		if err != nil {
			return engineerrors.NewQueryExecutionFailedError("marshal_terms", err)
		}
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO client_responses (id, presentation_id, decision, feedback, terms, responded_by, responded_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			resp.ID, resp.PresentationID, resp.Decision, resp.Feedback, terms,
			resp.RespondedBy, resp.RespondedAt)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
				return engineerrors.NewResponseAlreadySetError(resp.PresentationID)
			}
			return engineerrors.NewQueryExecutionFailedError("insert_response", err)
		}
		if err := updatePresentationTx(ctx, tx, p, expectedVersion); err != nil {
			return err
		}
		return insertAuditEventTx(ctx, tx, event)
	})
}

// ListStalePresentations returns unanswered presentations sent at or before
// the cutoff.
func (s *Store) ListStalePresentations(ctx context.Context, cutoff time.Time) ([]*models.EmailPresentation, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+presentationColumns+` FROM presentations
		WHERE status IN ($1, $2) AND sent_at <= $3 ORDER BY sent_at`,
		models.PresentationSent, models.PresentationOpened, cutoff)
	if err != nil {
		return nil, engineerrors.NewQueryExecutionFailedError("list_stale_presentations", err)
	}
	defer rows.Close()

	var stale []*models.EmailPresentation
	for rows.Next() {
		p, err := scanPresentation(rows)
		if err != nil {
			return nil, engineerrors.NewQueryExecutionFailedError("list_stale_presentations", err)
		}
		stale = append(stale, p)
	}
	if err := rows.Err(); err != nil {
		return nil, engineerrors.NewQueryExecutionFailedError("list_stale_presentations", err)
	}
	return stale, nil
}

func updatePresentationTx(ctx context.Context, tx *sql.Tx, p *models.EmailPresentation, expectedVersion int64) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE presentations SET status = $1, opened_at = $2, responded_at = $3, closed_at = $4, response_id = $5, version = $6
		WHERE id = $7 AND version = $8`,
		p.Status, p.OpenedAt, p.RespondedAt, p.ClosedAt, nullableString(p.ResponseID),
		p.Version, p.ID, expectedVersion)
	if err != nil {
		return engineerrors.NewQueryExecutionFailedError("update_presentation", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return engineerrors.NewConflictError("presentation", p.ID)
	}
	return nil
}

func nullableString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}
