// internal/engine/workflow/presentation_test.go
package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	engineerrors "staffing-engine/internal/common/errors"
	"staffing-engine/internal/models"
)

func testDraft() PresentationDraft {
	return PresentationDraft{
		ProfessionalID: "prof-1",
		JobID:          "job-1",
		Recipient:      "clinic@example.com",
		Subject:        "RN candidate for your ICU opening",
		Content:        "Dana Wells, 8 years ICU experience...",
	}
}

// ==========================
// Transition Table Tests
// ==========================

func TestCanTransitionPresentation(t *testing.T) {
	allowed := map[models.PresentationStatus][]models.PresentationStatus{
		models.PresentationSent:      {models.PresentationOpened, models.PresentationResponded, models.PresentationExpired},
		models.PresentationOpened:    {models.PresentationResponded, models.PresentationExpired},
		models.PresentationResponded: {},
		models.PresentationExpired:   {},
	}
	all := []models.PresentationStatus{
		models.PresentationSent, models.PresentationOpened,
		models.PresentationResponded, models.PresentationExpired,
	}

	for from, targets := range allowed {
		legal := make(map[models.PresentationStatus]bool, len(targets))
		for _, to := range targets {
			legal[to] = true
		}
		for _, to := range all {
			assert.Equal(t, legal[to], CanTransitionPresentation(from, to),
				"transition %s -> %s", from, to)
		}
	}
}

// ==========================
// Send Tests
// ==========================

func TestEngine_SendPresentation(t *testing.T) {
	store := newFakeStore()
	engine, audit, email := newTestEngine(t, store)

	p, err := engine.SendPresentation(context.Background(), testDraft(), "recruiter-9")
	require.NoError(t, err)

	assert.Equal(t, models.PresentationSent, p.Status)
	assert.Equal(t, int64(1), p.Version)
	assert.NotEmpty(t, p.TrackingID)
	assert.Equal(t, testNow, p.SentAt)

	require.Len(t, email.sent, 1)
	assert.Equal(t, p.ID, email.sent[0].ID)
	require.Len(t, store.events, 1)
	assert.Equal(t, "send", store.events[0].Action)
	assert.Len(t, audit.published, 1)
}

func TestEngine_SendPresentation_EmailFailureRecordsNothing(t *testing.T) {
	store := newFakeStore()
	engine, _, email := newTestEngine(t, store)
	email.failWith = errBoom

	_, err := engine.SendPresentation(context.Background(), testDraft(), "recruiter-9")
	require.Error(t, err)
	assert.Empty(t, store.presentations)
	assert.Empty(t, store.events)
}

// ==========================
// Open Tracking Tests
// ==========================

func TestEngine_RecordOpen(t *testing.T) {
	store := newFakeStore()
	engine, _, _ := newTestEngine(t, store)
	seedPresentation(store, "pres-1", models.PresentationSent, testNow.Add(-time.Hour))

	openedAt := testNow.Add(-10 * time.Minute)
	p, err := engine.RecordOpen(context.Background(), "track-pres-1", openedAt)
	require.NoError(t, err)

	assert.Equal(t, models.PresentationOpened, p.Status)
	require.NotNil(t, p.OpenedAt)
	assert.Equal(t, openedAt, *p.OpenedAt)
	assert.Equal(t, int64(2), p.Version)
}

func TestEngine_RecordOpen_RepeatOpensAreNoOps(t *testing.T) {
	store := newFakeStore()
	engine, _, _ := newTestEngine(t, store)
	seedPresentation(store, "pres-1", models.PresentationSent, testNow.Add(-time.Hour))

	first, err := engine.RecordOpen(context.Background(), "track-pres-1", testNow)
	require.NoError(t, err)

	second, err := engine.RecordOpen(context.Background(), "track-pres-1", testNow.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, first.OpenedAt, second.OpenedAt)
	assert.Equal(t, int64(2), second.Version)
	assert.Len(t, store.events, 1)
}

func TestEngine_RecordOpen_AfterTerminalIsIgnored(t *testing.T) {
	store := newFakeStore()
	engine, _, _ := newTestEngine(t, store)
	seedPresentation(store, "pres-1", models.PresentationExpired, testNow.Add(-100*time.Hour))

	p, err := engine.RecordOpen(context.Background(), "track-pres-1", testNow)
	require.NoError(t, err)
	assert.Equal(t, models.PresentationExpired, p.Status)
	assert.Empty(t, store.events)
}

// ==========================
// Response Tests
// ==========================

func TestEngine_AttachResponse(t *testing.T) {
	tests := []struct {
		name       string
		decision   models.ResponseDecision
		wantClosed bool
	}{
		{"accept closes the presentation", models.DecisionAccept, true},
		{"reject closes the presentation", models.DecisionReject, true},
		{"negotiate leaves it open for follow-up", models.DecisionNegotiate, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			engine, _, _ := newTestEngine(t, store)
			seedPresentation(store, "pres-1", models.PresentationOpened, testNow.Add(-time.Hour))

			resp, err := engine.AttachResponse(context.Background(), "pres-1", tt.decision, "feedback", nil, "client-ops")
			require.NoError(t, err)
			assert.Equal(t, tt.decision, resp.Decision)
			assert.Equal(t, "pres-1", resp.PresentationID)

			p := store.presentations["pres-1"]
			assert.Equal(t, models.PresentationResponded, p.Status)
			assert.Equal(t, resp.ID, p.ResponseID)
			require.NotNil(t, p.RespondedAt)
			if tt.wantClosed {
				assert.NotNil(t, p.ClosedAt)
			} else {
				assert.Nil(t, p.ClosedAt)
			}
		})
	}
}

func TestEngine_AttachResponse_DirectlyFromSent(t *testing.T) {
	store := newFakeStore()
	engine, _, _ := newTestEngine(t, store)
	seedPresentation(store, "pres-1", models.PresentationSent, testNow.Add(-time.Hour))

	_, err := engine.AttachResponse(context.Background(), "pres-1", models.DecisionAccept, "", nil, "client-ops")
	require.NoError(t, err)
	assert.Equal(t, models.PresentationResponded, store.presentations["pres-1"].Status)
}

func TestEngine_AttachResponse_SecondResponseConflicts(t *testing.T) {
	store := newFakeStore()
	engine, _, _ := newTestEngine(t, store)
	seedPresentation(store, "pres-1", models.PresentationOpened, testNow.Add(-time.Hour))

	first, err := engine.AttachResponse(context.Background(), "pres-1", models.DecisionReject, "", nil, "client-ops")
	require.NoError(t, err)

	_, err = engine.AttachResponse(context.Background(), "pres-1", models.DecisionAccept, "", nil, "client-ops")
	require.Error(t, err)
	assert.True(t, engineerrors.IsConflict(err))

	// The original decision stands.
	p := store.presentations["pres-1"]
	assert.Equal(t, first.ID, p.ResponseID)
	assert.Len(t, store.responses, 1)
}

func TestEngine_AttachResponse_OnExpiredIsIllegal(t *testing.T) {
	store := newFakeStore()
	engine, _, _ := newTestEngine(t, store)
	seedPresentation(store, "pres-1", models.PresentationExpired, testNow.Add(-100*time.Hour))

	_, err := engine.AttachResponse(context.Background(), "pres-1", models.DecisionAccept, "", nil, "client-ops")
	require.Error(t, err)
	assert.True(t, engineerrors.IsIllegalTransition(err))
}

func TestEngine_AttachResponse_NegotiationTermsAreRecordedVerbatim(t *testing.T) {
	store := newFakeStore()
	engine, _, _ := newTestEngine(t, store)
	seedPresentation(store, "pres-1", models.PresentationOpened, testNow.Add(-time.Hour))

	salary := 125000
	terms := &models.NegotiationTerms{Salary: &salary, Schedule: "4x10"}
	resp, err := engine.AttachResponse(context.Background(), "pres-1", models.DecisionNegotiate, "close on rate", terms, "client-ops")
	require.NoError(t, err)

	require.NotNil(t, resp.Terms)
	assert.Equal(t, 125000, *resp.Terms.Salary)
	assert.Equal(t, "4x10", resp.Terms.Schedule)
}

// ==========================
// Expiry Sweep Tests
// ==========================

func TestEngine_ExpireStale(t *testing.T) {
	store := newFakeStore()
	engine, _, _ := newTestEngine(t, store)

	// Expiry window is 72h.
	seedPresentation(store, "pres-old-sent", models.PresentationSent, testNow.Add(-80*time.Hour))
	seedPresentation(store, "pres-old-opened", models.PresentationOpened, testNow.Add(-90*time.Hour))
	seedPresentation(store, "pres-fresh", models.PresentationSent, testNow.Add(-time.Hour))
	seedPresentation(store, "pres-responded", models.PresentationResponded, testNow.Add(-200*time.Hour))

	expired, err := engine.ExpireStale(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, expired)

	assert.Equal(t, models.PresentationExpired, store.presentations["pres-old-sent"].Status)
	assert.Equal(t, models.PresentationExpired, store.presentations["pres-old-opened"].Status)
	assert.Equal(t, models.PresentationSent, store.presentations["pres-fresh"].Status)
	assert.Equal(t, models.PresentationResponded, store.presentations["pres-responded"].Status)
	require.NotNil(t, store.presentations["pres-old-sent"].ClosedAt)
	assert.Equal(t, testNow, *store.presentations["pres-old-sent"].ClosedAt)
}

func TestEngine_ExpireStale_SkipsConcurrentlyRespondedPresentations(t *testing.T) {
	store := newFakeStore()
	engine, _, _ := newTestEngine(t, store)
	stale := seedPresentation(store, "pres-1", models.PresentationSent, testNow.Add(-80*time.Hour))

	snapshot := *stale
	engine.store = &staleSweepStore{fakeStore: store, snapshot: &snapshot}
	// A response lands between the sweep's list and its commit.
	store.presentations["pres-1"].Version = 2

	expired, err := engine.ExpireStale(context.Background(), testNow)
	require.NoError(t, err)
	assert.Zero(t, expired)
}

// staleSweepStore lists a stale snapshot so the sweep's commit races a
// newer version of the same presentation.
type staleSweepStore struct {
	*fakeStore
	snapshot *models.EmailPresentation
}

func (s *staleSweepStore) ListStalePresentations(_ context.Context, _ time.Time) ([]*models.EmailPresentation, error) {
	clone := *s.snapshot
	return []*models.EmailPresentation{&clone}, nil
}

// ==========================
// Negotiation Close Tests
// ==========================

func respondNegotiate(t *testing.T, engine *Engine, store *fakeStore, id string) {
	t.Helper()
	seedPresentation(store, id, models.PresentationOpened, testNow.Add(-time.Hour))
	_, err := engine.AttachResponse(context.Background(), id, models.DecisionNegotiate, "", nil, "client-ops")
	require.NoError(t, err)
}

func TestEngine_Supersede(t *testing.T) {
	store := newFakeStore()
	engine, _, email := newTestEngine(t, store)
	respondNegotiate(t, engine, store, "pres-1")

	followUp, err := engine.Supersede(context.Background(), "pres-1", testDraft(), "recruiter-9")
	require.NoError(t, err)

	original := store.presentations["pres-1"]
	assert.NotNil(t, original.ClosedAt)
	assert.Equal(t, models.PresentationResponded, original.Status)

	assert.Equal(t, models.PresentationSent, followUp.Status)
	assert.NotEqual(t, "pres-1", followUp.ID)
	assert.Len(t, email.sent, 1)
}

func TestEngine_OverrideClose(t *testing.T) {
	store := newFakeStore()
	engine, _, email := newTestEngine(t, store)
	respondNegotiate(t, engine, store, "pres-1")

	err := engine.OverrideClose(context.Background(), "pres-1", "recruiter-9", "client went dark")
	require.NoError(t, err)

	assert.NotNil(t, store.presentations["pres-1"].ClosedAt)
	assert.Empty(t, email.sent)
}

func TestEngine_CloseAfterNegotiation_RequiresOpenNegotiation(t *testing.T) {
	store := newFakeStore()
	engine, _, _ := newTestEngine(t, store)

	t.Run("accept-closed presentation cannot be overridden", func(t *testing.T) {
		seedPresentation(store, "pres-closed", models.PresentationResponded, testNow.Add(-time.Hour))
		closed := testNow.Add(-30 * time.Minute)
		store.presentations["pres-closed"].ClosedAt = &closed

		err := engine.OverrideClose(context.Background(), "pres-closed", "recruiter-9", "late")
		require.Error(t, err)
		assert.True(t, engineerrors.IsIllegalTransition(err))
	})

	t.Run("unanswered presentation cannot be overridden", func(t *testing.T) {
		seedPresentation(store, "pres-sent", models.PresentationSent, testNow.Add(-time.Hour))

		err := engine.OverrideClose(context.Background(), "pres-sent", "recruiter-9", "early")
		require.Error(t, err)
		assert.True(t, engineerrors.IsIllegalTransition(err))
	})
}
