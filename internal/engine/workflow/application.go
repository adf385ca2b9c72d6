// internal/engine/workflow/application.go
package workflow

import (
	"context"
	"fmt"

	engineerrors "staffing-engine/internal/common/errors"
	"staffing-engine/internal/models"
)

// SubmitApplication creates a pending application for an open job. The
// match score snapshot, when provided, is frozen on the record; it is never
// recomputed after submission.
func (e *Engine) SubmitApplication(ctx context.Context, professionalID, jobID string, matchScore *int, actor string) (*models.Application, error) {
	job, err := e.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobOpen {
		return nil, engineerrors.NewIllegalTransitionError("job", jobID, string(job.Status), "application_submitted")
	}

	now := e.now().UTC()
	app := &models.Application{
		ID:             models.NewID(),
		ProfessionalID: professionalID,
		JobID:          jobID,
		Status:         models.ApplicationPending,
		AppliedAt:      now,
		MatchScore:     matchScore,
		UpdatedAt:      now,
		Version:        1,
	}

	event := e.newEvent(models.AggregateApplication, app.ID, "submit", "", string(models.ApplicationPending), actor, "")
	if err := e.store.InsertApplication(ctx, app, event); err != nil {
		return nil, err
	}
	e.publishEvents(ctx, event)

	e.logger.Info("application submitted", map[string]interface{}{
		"applicationId":  app.ID,
		"professionalId": professionalID,
		"jobId":          jobID,
	})
	return app, nil
}

// TransitionApplication moves an application to a new status. Illegal
// transitions fail with the aggregate unchanged; concurrent transitions on
// the same application surface as a conflict the caller must re-read and
// retry. An accepted transition additionally fills the job and auto-rejects
// every other non-terminal application for it, atomically.
func (e *Engine) TransitionApplication(ctx context.Context, id string, to models.ApplicationStatus, actor, note string) (*models.Application, error) {
	app, err := e.store.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	from := app.Status
	if !CanTransitionApplication(from, to) {
		return nil, engineerrors.NewIllegalTransitionError("application", id, string(from), string(to))
	}

	if to == models.ApplicationAccepted {
		return e.acceptApplication(ctx, app, actor, note)
	}

	expectedVersion := app.Version
	app.Status = to
	app.UpdatedAt = e.now().UTC()
	app.Version++
	if note != "" {
		app.Notes = note
	}

	event := e.newEvent(models.AggregateApplication, app.ID, "transition", string(from), string(to), actor, note)
	if err := e.store.CommitApplicationTransition(ctx, app, expectedVersion, event); err != nil {
		return nil, err
	}
	e.publishEvents(ctx, event)
	return app, nil
}

// acceptApplication commits the placement cascade.
func (e *Engine) acceptApplication(ctx context.Context, app *models.Application, actor, note string) (*models.Application, error) {
	job, err := e.store.GetJob(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	// Filled only through an accepted application, and only once.
	if job.Status != models.JobOpen {
		return nil, engineerrors.NewIllegalTransitionError("job", job.ID, string(job.Status), string(models.JobFilled))
	}

	siblings, err := e.store.ListApplicationsForJob(ctx, app.JobID)
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	appVersion := app.Version
	jobVersion := job.Version

	from := app.Status
	app.Status = models.ApplicationAccepted
	app.UpdatedAt = now
	app.Version++
	if note != "" {
		app.Notes = note
	}

	job.Status = models.JobFilled
	job.FilledAt = &now
	job.Version++

	events := []models.AuditEvent{
		e.newEvent(models.AggregateApplication, app.ID, "accept", string(from), string(models.ApplicationAccepted), actor, note),
		e.newEvent(models.AggregateJob, job.ID, "fill", string(models.JobOpen), string(models.JobFilled), actor,
			fmt.Sprintf("filled by application %s", app.ID)),
	}

	rejected := make([]*models.Application, 0, len(siblings))
	for _, sibling := range siblings {
		if sibling.ID == app.ID || sibling.Status.IsTerminal() {
			continue
		}
		fromSibling := sibling.Status
		sibling.Status = models.ApplicationRejected
		sibling.UpdatedAt = now
		sibling.Version++
		rejected = append(rejected, sibling)
		events = append(events, e.newEvent(models.AggregateApplication, sibling.ID, "auto_reject",
			string(fromSibling), string(models.ApplicationRejected), actor,
			fmt.Sprintf("job filled by application %s", app.ID)))
	}

	if err := e.store.CompletePlacement(ctx, app, appVersion, rejected, job, jobVersion, events); err != nil {
		return nil, err
	}
	e.publishEvents(ctx, events...)

	e.logger.Info("placement completed", map[string]interface{}{
		"applicationId": app.ID,
		"jobId":         job.ID,
		"autoRejected":  len(rejected),
	})
	return app, nil
}
