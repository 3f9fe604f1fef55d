package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"weekly-planner/internal/calendar"
	"weekly-planner/internal/notify"
	"weekly-planner/internal/repository"
)

const (
	testCompany = "company-1"
	testUserID  = "6f1c2a9e-3b7d-4e0a-9c51-0d2f8a7b4e11"
)

var testActor = Actor{UserID: testUserID, CompanyID: testCompany}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repository.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type sentNotification struct {
	UserID  string
	Kind    notify.Kind
	Payload map[string]any
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (r *recordingNotifier) Notify(_ context.Context, userID string, kind notify.Kind, payload map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotification{UserID: userID, Kind: kind, Payload: payload})
}

func (r *recordingNotifier) byKind(kind notify.Kind) []sentNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sentNotification
	for _, n := range r.sent {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func intPtr(v int) *int { return &v }

func day(t time.Time) string { return t.Format(calendar.DateLayout) }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
