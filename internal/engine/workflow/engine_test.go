// internal/engine/workflow/engine_test.go
package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	engineerrors "staffing-engine/internal/common/errors"
	"staffing-engine/internal/common/logger"
	"staffing-engine/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeStore is an in-memory Store with the same optimistic-concurrency
// semantics as the SQL implementation: a commit with a stale expected
// version changes nothing and returns a conflict error.
type fakeStore struct {
	applications  map[string]*models.Application
	jobs          map[string]*models.JobOpportunity
	presentations map[string]*models.EmailPresentation
	responses     map[string]*models.ClientResponse
	events        []models.AuditEvent

	// forcedErr, when set, is returned from every mutating call.
	forcedErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		applications:  make(map[string]*models.Application),
		jobs:          make(map[string]*models.JobOpportunity),
		presentations: make(map[string]*models.EmailPresentation),
		responses:     make(map[string]*models.ClientResponse),
	}
}

func (s *fakeStore) GetApplication(_ context.Context, id string) (*models.Application, error) {
	app, ok := s.applications[id]
	if !ok {
		return nil, engineerrors.NewRecordNotFoundError("application", id)
	}
	clone := *app
	return &clone, nil
}

func (s *fakeStore) GetJob(_ context.Context, id string) (*models.JobOpportunity, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, engineerrors.NewRecordNotFoundError("job", id)
	}
	clone := *job
	return &clone, nil
}

func (s *fakeStore) ListApplicationsForJob(_ context.Context, jobID string) ([]*models.Application, error) {
	var out []*models.Application
	for _, app := range s.applications {
		if app.JobID == jobID {
			clone := *app
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *fakeStore) InsertApplication(_ context.Context, app *models.Application, event models.AuditEvent) error {
	if s.forcedErr != nil {
		return s.forcedErr
	}
	for _, existing := range s.applications {
		if existing.ProfessionalID == app.ProfessionalID && existing.JobID == app.JobID && !existing.Status.IsTerminal() {
			return engineerrors.NewDuplicateApplicationError(app.ProfessionalID, app.JobID)
		}
	}
	clone := *app
	s.applications[app.ID] = &clone
	s.events = append(s.events, event)
	return nil
}

func (s *fakeStore) CommitApplicationTransition(_ context.Context, app *models.Application, expectedVersion int64, event models.AuditEvent) error {
	if s.forcedErr != nil {
		return s.forcedErr
	}
	current, ok := s.applications[app.ID]
	if !ok {
		return engineerrors.NewRecordNotFoundError("application", app.ID)
	}
	if current.Version != expectedVersion {
		return engineerrors.NewConflictError("application", app.ID)
	}
	clone := *app
	s.applications[app.ID] = &clone
	s.events = append(s.events, event)
	return nil
}

func (s *fakeStore) CompletePlacement(_ context.Context, accepted *models.Application, acceptedVersion int64, rejected []*models.Application, job *models.JobOpportunity, jobVersion int64, events []models.AuditEvent) error {
	if s.forcedErr != nil {
		return s.forcedErr
	}
	if current := s.applications[accepted.ID]; current == nil || current.Version != acceptedVersion {
		return engineerrors.NewConflictError("application", accepted.ID)
	}
	if current := s.jobs[job.ID]; current == nil || current.Version != jobVersion {
		return engineerrors.NewConflictError("job", job.ID)
	}
	for _, sibling := range rejected {
		if current := s.applications[sibling.ID]; current == nil || current.Version != sibling.Version-1 {
			return engineerrors.NewConflictError("application", sibling.ID)
		}
	}

	acceptedClone := *accepted
	s.applications[accepted.ID] = &acceptedClone
	jobClone := *job
	s.jobs[job.ID] = &jobClone
	for _, sibling := range rejected {
		clone := *sibling
		s.applications[sibling.ID] = &clone
	}
	s.events = append(s.events, events...)
	return nil
}

func (s *fakeStore) GetPresentation(_ context.Context, id string) (*models.EmailPresentation, error) {
	p, ok := s.presentations[id]
	if !ok {
		return nil, engineerrors.NewRecordNotFoundError("presentation", id)
	}
	clone := *p
	return &clone, nil
}

func (s *fakeStore) GetPresentationByTrackingID(_ context.Context, trackingID string) (*models.EmailPresentation, error) {
	for _, p := range s.presentations {
		if p.TrackingID == trackingID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, engineerrors.NewRecordNotFoundError("presentation", trackingID)
}

func (s *fakeStore) InsertPresentation(_ context.Context, p *models.EmailPresentation, event models.AuditEvent) error {
	if s.forcedErr != nil {
		return s.forcedErr
	}
	clone := *p
	s.presentations[p.ID] = &clone
	s.events = append(s.events, event)
	return nil
}

func (s *fakeStore) CommitPresentationTransition(_ context.Context, p *models.EmailPresentation, expectedVersion int64, event models.AuditEvent) error {
	if s.forcedErr != nil {
		return s.forcedErr
	}
	current, ok := s.presentations[p.ID]
	if !ok {
		return engineerrors.NewRecordNotFoundError("presentation", p.ID)
	}
	if current.Version != expectedVersion {
		return engineerrors.NewConflictError("presentation", p.ID)
	}
	clone := *p
	s.presentations[p.ID] = &clone
	s.events = append(s.events, event)
	return nil
}

func (s *fakeStore) AttachClientResponse(_ context.Context, p *models.EmailPresentation, expectedVersion int64, resp *models.ClientResponse, event models.AuditEvent) error {
	if s.forcedErr != nil {
		return s.forcedErr
	}
	for _, existing := range s.responses {
		if existing.PresentationID == p.ID {
			return engineerrors.NewResponseAlreadySetError(p.ID)
		}
	}
	current, ok := s.presentations[p.ID]
	if !ok {
		return engineerrors.NewRecordNotFoundError("presentation", p.ID)
	}
	if current.Version != expectedVersion {
		return engineerrors.NewConflictError("presentation", p.ID)
	}
	pClone := *p
	s.presentations[p.ID] = &pClone
	respClone := *resp
	s.responses[resp.ID] = &respClone
	s.events = append(s.events, event)
	return nil
}

func (s *fakeStore) ListStalePresentations(_ context.Context, cutoff time.Time) ([]*models.EmailPresentation, error) {
	var out []*models.EmailPresentation
	for _, p := range s.presentations {
		if (p.Status == models.PresentationSent || p.Status == models.PresentationOpened) && p.SentAt.Before(cutoff) {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *fakeStore) eventActions() []string {
	actions := make([]string, 0, len(s.events))
	for _, e := range s.events {
		actions = append(actions, e.Action)
	}
	return actions
}

type fakeAuditSink struct {
	published []models.AuditEvent
	failWith  error
}

func (f *fakeAuditSink) Publish(_ context.Context, event models.AuditEvent) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.published = append(f.published, event)
	return nil
}

type fakeEmailSender struct {
	sent     []*models.EmailPresentation
	failWith error
}

func (f *fakeEmailSender) SendPresentation(_ context.Context, p *models.EmailPresentation) (string, error) {
	if f.failWith != nil {
		return "", f.failWith
	}
	clone := *p
	f.sent = append(f.sent, &clone)
	return "message-" + p.ID, nil
}

func newTestEngine(t *testing.T, store *fakeStore) (*Engine, *fakeAuditSink, *fakeEmailSender) {
	audit := &fakeAuditSink{}
	email := &fakeEmailSender{}
	engine := NewEngine(store, audit, email, nil, 72*time.Hour, logger.NewTestLogger(t))
	engine.now = func() time.Time { return testNow }
	return engine, audit, email
}

func seedJob(s *fakeStore, id string, status models.JobStatus) *models.JobOpportunity {
	job := &models.JobOpportunity{
		ID:        id,
		Specialty: "registered_nurse",
		Status:    status,
		Urgency:   models.UrgencyHigh,
		Version:   1,
	}
	s.jobs[id] = job
	return job
}

func seedApplication(s *fakeStore, id, jobID string, status models.ApplicationStatus) *models.Application {
	app := &models.Application{
		ID:             id,
		ProfessionalID: "prof-" + id,
		JobID:          jobID,
		Status:         status,
		AppliedAt:      testNow.AddDate(0, 0, -3),
		UpdatedAt:      testNow.AddDate(0, 0, -3),
		Version:        1,
	}
	s.applications[id] = app
	return app
}

func seedPresentation(s *fakeStore, id string, status models.PresentationStatus, sentAt time.Time) *models.EmailPresentation {
	p := &models.EmailPresentation{
		ID:             id,
		ProfessionalID: "prof-1",
		JobID:          "job-1",
		Recipient:      "clinic@example.com",
		Subject:        "Candidate",
		TrackingID:     "track-" + id,
		Status:         status,
		SentAt:         sentAt,
		Version:        1,
	}
	s.presentations[id] = p
	return p
}

var errBoom = errors.New("boom")
