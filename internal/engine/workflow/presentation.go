// internal/engine/workflow/presentation.go
package workflow

import (
	"context"
	"fmt"
	"time"

	engineerrors "staffing-engine/internal/common/errors"
	"staffing-engine/internal/models"
)

// PresentationDraft is the caller-supplied content for a new presentation.
type PresentationDraft struct {
	ProfessionalID string
	JobID          string
	Recipient      string
	Subject        string
	Content        string
}

// SendPresentation delivers a candidate pitch through the email
// collaborator and records it as sent. The engine records the resulting
// state only; transport mechanics live behind the EmailSender boundary.
func (e *Engine) SendPresentation(ctx context.Context, draft PresentationDraft, actor string) (*models.EmailPresentation, error) {
	now := e.now().UTC()
	p := &models.EmailPresentation{
		ID:             models.NewID(),
		ProfessionalID: draft.ProfessionalID,
		JobID:          draft.JobID,
		Recipient:      draft.Recipient,
		Subject:        draft.Subject,
		Content:        draft.Content,
		TrackingID:     models.NewID(),
		Status:         models.PresentationSent,
		SentAt:         now,
		Version:        1,
	}

	messageID, err := e.email.SendPresentation(ctx, p)
	if err != nil {
		return nil, err
	}

	event := e.newEvent(models.AggregatePresentation, p.ID, "send", "", string(models.PresentationSent), actor,
		fmt.Sprintf("messageId: %s", messageID))
	if err := e.store.InsertPresentation(ctx, p, event); err != nil {
		return nil, err
	}
	e.publishEvents(ctx, event)
	if e.obs != nil {
		e.obs.RecordPresentationSent(ctx)
	}
	return p, nil
}

// RecordOpen handles an inbound open event from the email collaborator.
// Only the first open moves sent -> opened; repeats are no-ops, and opens
// arriving after the presentation terminated are ignored.
func (e *Engine) RecordOpen(ctx context.Context, trackingID string, at time.Time) (*models.EmailPresentation, error) {
	p, err := e.store.GetPresentationByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, err
	}

	if p.Status != models.PresentationSent {
		return p, nil
	}

	expectedVersion := p.Version
	openedAt := at.UTC()
	p.Status = models.PresentationOpened
	p.OpenedAt = &openedAt
	p.Version++

	event := e.newEvent(models.AggregatePresentation, p.ID, "open",
		string(models.PresentationSent), string(models.PresentationOpened), "client", "")
	if err := e.store.CommitPresentationTransition(ctx, p, expectedVersion, event); err != nil {
		return nil, err
	}
	e.publishEvents(ctx, event)
	return p, nil
}

// AttachResponse records the client's decision verbatim. Exactly one
// response may attach per presentation; a second attempt is a conflict. An
// accept or reject closes the presentation; a negotiate decision leaves it
// open until an explicit Supersede or OverrideClose.
func (e *Engine) AttachResponse(ctx context.Context, presentationID string, decision models.ResponseDecision, feedback string, terms *models.NegotiationTerms, respondedBy string) (*models.ClientResponse, error) {
	p, err := e.store.GetPresentation(ctx, presentationID)
	if err != nil {
		return nil, err
	}
	if p.Status == models.PresentationResponded {
		return nil, engineerrors.NewResponseAlreadySetError(presentationID)
	}
	if !CanTransitionPresentation(p.Status, models.PresentationResponded) {
		return nil, engineerrors.NewIllegalTransitionError("presentation", presentationID,
			string(p.Status), string(models.PresentationResponded))
	}

	now := e.now().UTC()
	resp := &models.ClientResponse{
		ID:             models.NewID(),
		PresentationID: presentationID,
		Decision:       decision,
		Feedback:       feedback,
		Terms:          terms,
		RespondedBy:    respondedBy,
		RespondedAt:    now,
	}

	from := p.Status
	expectedVersion := p.Version
	p.Status = models.PresentationResponded
	p.RespondedAt = &now
	p.ResponseID = resp.ID
	p.Version++
	if decision != models.DecisionNegotiate {
		p.ClosedAt = &now
	}

	event := e.newEvent(models.AggregatePresentation, p.ID, "respond",
		string(from), string(models.PresentationResponded), respondedBy, string(decision))
	if err := e.store.AttachClientResponse(ctx, p, expectedVersion, resp, event); err != nil {
		return nil, err
	}
	e.publishEvents(ctx, event)
	return resp, nil
}

// ExpireStale transitions presentations that have waited past the
// configured timeout without a response. It is driven by an external
// scheduled trigger passing the current timestamp; the engine keeps no
// timers of its own. Returns the number of presentations expired.
func (e *Engine) ExpireStale(ctx context.Context, asOf time.Time) (int, error) {
	cutoff := asOf.UTC().Add(-e.presentationExpiry)
	stale, err := e.store.ListStalePresentations(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, p := range stale {
		if !CanTransitionPresentation(p.Status, models.PresentationExpired) {
			continue
		}

		from := p.Status
		expectedVersion := p.Version
		now := asOf.UTC()
		p.Status = models.PresentationExpired
		p.ClosedAt = &now
		p.Version++

		event := e.newEvent(models.AggregatePresentation, p.ID, "expire",
			string(from), string(models.PresentationExpired), "system", "")
		if err := e.store.CommitPresentationTransition(ctx, p, expectedVersion, event); err != nil {
			// A concurrent response beat the sweep; skip, the next sweep
			// re-reads fresh state.
			if engineerrors.IsConflict(err) {
				continue
			}
			return expired, err
		}
		e.publishEvents(ctx, event)
		expired++
	}
	return expired, nil
}

// Supersede closes a negotiate-pending presentation and sends a follow-up
// in its place.
func (e *Engine) Supersede(ctx context.Context, presentationID string, draft PresentationDraft, actor string) (*models.EmailPresentation, error) {
	if err := e.closeAfterNegotiation(ctx, presentationID, "supersede", actor); err != nil {
		return nil, err
	}
	return e.SendPresentation(ctx, draft, actor)
}

// OverrideClose closes a negotiate-pending presentation without a
// follow-up, recording why.
func (e *Engine) OverrideClose(ctx context.Context, presentationID, actor, reason string) error {
	return e.closeAfterNegotiation(ctx, presentationID, "override_close: "+reason, actor)
}

func (e *Engine) closeAfterNegotiation(ctx context.Context, presentationID, action, actor string) error {
	p, err := e.store.GetPresentation(ctx, presentationID)
	if err != nil {
		return err
	}
	if p.Status != models.PresentationResponded || p.ClosedAt != nil {
		return engineerrors.NewIllegalTransitionError("presentation", presentationID,
			string(p.Status), "closed")
	}

	expectedVersion := p.Version
	now := e.now().UTC()
	p.ClosedAt = &now
	p.Version++

	event := e.newEvent(models.AggregatePresentation, p.ID, action,
		string(models.PresentationResponded), string(models.PresentationResponded), actor, "negotiation closed")
	if err := e.store.CommitPresentationTransition(ctx, p, expectedVersion, event); err != nil {
		return err
	}
	e.publishEvents(ctx, event)
	return nil
}
