// internal/store/store_test.go
package store

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"staffing-engine/internal/common/database"
	"staffing-engine/internal/common/logger"
	"staffing-engine/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return New(&database.PostgresClient{DB: db}, nil, 0, logger.NewTestLogger(t)), mock
}

func newTestStoreWithCache(t *testing.T) (*Store, sqlmock.Sqlmock, *miniredis.Miniredis) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	cache := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}

	return New(&database.PostgresClient{DB: db}, cache, 10*time.Minute, logger.NewTestLogger(t)), mock, mr
}

func testEvent(aggregateID, action string) models.AuditEvent {
	return models.AuditEvent{
		ID:            "event-1",
		AggregateType: models.AggregateApplication,
		AggregateID:   aggregateID,
		Action:        action,
		FromStatus:    string(models.ApplicationPending),
		ToStatus:      string(models.ApplicationReviewed),
		Actor:         "recruiter-9",
		OccurredAt:    testNow,
	}
}
