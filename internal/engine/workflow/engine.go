// internal/engine/workflow/engine.go
package workflow

import (
	"context"
	"time"

	"staffing-engine/internal/common/logger"
	"staffing-engine/internal/common/observability"
	"staffing-engine/internal/models"

	"github.com/google/uuid"
)

// Store is the system-of-record collaborator. Every transition commit takes
// the version the caller read so the store can detect concurrent writers;
// a stale version commits nothing and returns a conflict error.
type Store interface {
	GetApplication(ctx context.Context, id string) (*models.Application, error)
	GetJob(ctx context.Context, id string) (*models.JobOpportunity, error)
	ListApplicationsForJob(ctx context.Context, jobID string) ([]*models.Application, error)
	InsertApplication(ctx context.Context, app *models.Application, event models.AuditEvent) error
	CommitApplicationTransition(ctx context.Context, app *models.Application, expectedVersion int64, event models.AuditEvent) error
	// CompletePlacement commits the accept cascade atomically: accepted
	// application, sibling auto-rejects and the job's move to filled either
	// all land or none do.
	CompletePlacement(ctx context.Context, accepted *models.Application, acceptedVersion int64, rejected []*models.Application, job *models.JobOpportunity, jobVersion int64, events []models.AuditEvent) error

	GetPresentation(ctx context.Context, id string) (*models.EmailPresentation, error)
	GetPresentationByTrackingID(ctx context.Context, trackingID string) (*models.EmailPresentation, error)
	InsertPresentation(ctx context.Context, p *models.EmailPresentation, event models.AuditEvent) error
	CommitPresentationTransition(ctx context.Context, p *models.EmailPresentation, expectedVersion int64, event models.AuditEvent) error
	AttachClientResponse(ctx context.Context, p *models.EmailPresentation, expectedVersion int64, resp *models.ClientResponse, event models.AuditEvent) error
	ListStalePresentations(ctx context.Context, cutoff time.Time) ([]*models.EmailPresentation, error)
}

// AuditSink receives committed audit events for external consumers. The
// store's audit table is the source of truth; sink delivery is best effort.
type AuditSink interface {
	Publish(ctx context.Context, event models.AuditEvent) error
}

// EmailSender delivers a presentation and returns the provider message id.
type EmailSender interface {
	SendPresentation(ctx context.Context, p *models.EmailPresentation) (string, error)
}

// Engine owns the status fields of Application, EmailPresentation and
// JobOpportunity. All other engine components only read them.
type Engine struct {
	store              Store
	audit              AuditSink
	email              EmailSender
	obs                *observability.Observability
	logger             logger.Logger
	presentationExpiry time.Duration
	now                func() time.Time
}

func NewEngine(store Store, audit AuditSink, email EmailSender, obs *observability.Observability, presentationExpiry time.Duration, log logger.Logger) *Engine {
	return &Engine{
		store:              store,
		audit:              audit,
		email:              email,
		obs:                obs,
		presentationExpiry: presentationExpiry,
		logger:             log.WithFields(map[string]interface{}{"component": "workflow"}),
		now:                time.Now,
	}
}

func (e *Engine) newEvent(aggregateType models.AggregateType, aggregateID, action, from, to, actor, details string) models.AuditEvent {
	return models.AuditEvent{
		ID:            uuid.NewString(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Action:        action,
		FromStatus:    from,
		ToStatus:      to,
		Actor:         actor,
		Details:       details,
		OccurredAt:    e.now().UTC(),
	}
}

// publishEvents fans committed events out to the external audit sink. A
// publish failure is logged, not surfaced: the transition has already
// committed and the audit table holds the durable record.
func (e *Engine) publishEvents(ctx context.Context, events ...models.AuditEvent) {
	for _, event := range events {
		if e.obs != nil {
			e.obs.RecordTransition(ctx, string(event.AggregateType), event.ToStatus)
		}
		if e.audit == nil {
			continue
		}
		if err := e.audit.Publish(ctx, event); err != nil {
			e.logger.Warn("audit publish failed", map[string]interface{}{
				"eventId":     event.ID,
				"aggregateId": event.AggregateID,
				"error":       err.Error(),
			})
		}
	}
}
