package series

import "errors"

var (
	// ErrNotRecurring is returned when a series operation targets a task
	// without a recurrence pattern.
	ErrNotRecurring = errors.New("task is not recurring")

	// ErrSpawnFailed wraps the store error when a completion was saved but
	// the next instance could not be created. The completion is not rolled
	// back.
	ErrSpawnFailed = errors.New("spawning next instance failed")

	// ErrSeriesIntegrity is returned when parent links are inconsistent:
	// the series root has a parent of its own, or a listed instance names a
	// different root.
	ErrSeriesIntegrity = errors.New("series integrity violated")
)
