// internal/store/audit.go
package store

import (
	"context"
	"database/sql"

	engineerrors "staffing-engine/internal/common/errors"
	"staffing-engine/internal/models"
)

// insertAuditEventTx appends one audit event inside the transaction that
// commits its transition, so an event can never exist for a transition that
// rolled back.
func insertAuditEventTx(ctx context.Context, tx *sql.Tx, event models.AuditEvent) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO audit_events (id, aggregate_type, aggregate_id, action, from_status, to_status, actor, details, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.ID, event.AggregateType, event.AggregateID, event.Action,
		event.FromStatus, event.ToStatus, event.Actor, event.Details, event.OccurredAt)
	if err != nil {
		return engineerrors.NewQueryExecutionFailedError("insert_audit_event", err)
	}
	return nil
}

// ListAuditEvents returns an aggregate's transition history, oldest first.
func (s *Store) ListAuditEvents(ctx context.Context, aggregateID string) ([]models.AuditEvent, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, aggregate_type, aggregate_id, action, from_status, to_status, actor, details, occurred_at
		FROM audit_events WHERE aggregate_id = $1 ORDER BY occurred_at`, aggregateID)
	if err != nil {
		return nil, engineerrors.NewQueryExecutionFailedError("list_audit_events", err)
	}
	defer rows.Close()

	var events []models.AuditEvent
	for rows.Next() {
		var e models.AuditEvent
		if err := rows.Scan(&e.ID, &e.AggregateType, &e.AggregateID, &e.Action,
			&e.FromStatus, &e.ToStatus, &e.Actor, &e.Details, &e.OccurredAt); err != nil {
			return nil, engineerrors.NewQueryExecutionFailedError("list_audit_events", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, engineerrors.NewQueryExecutionFailedError("list_audit_events", err)
	}
	return events, nil
}
