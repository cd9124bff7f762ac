package testutil

import (
	"testing"
	"time"

	"github.com/nhle/task-recurrence/internal/model"
	"github.com/nhle/task-recurrence/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// Stores returns one instance of every Store implementation, keyed by name,
// for tests that must hold for all of them.
func Stores(t *testing.T) map[string]store.Store {
	t.Helper()

	return map[string]store.Store{
		"sqlite": NewTestStore(t),
		"memory": store.NewMemoryStore(),
	}
}

// Date returns midnight UTC on the given day.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RecurringTask builds an open recurring task due on due.
func RecurringTask(title string, due time.Time, pattern model.RecurringPattern) model.Task {
	return model.Task{
		Title:            title,
		Priority:         model.PriorityMedium,
		DueDate:          &due,
		IsRecurring:      true,
		RecurringPattern: &pattern,
	}
}
