package scheduler

import "errors"

var (
	// ErrCycleInFlight is returned when a cycle is requested while the
	// previous one is still running.
	ErrCycleInFlight = errors.New("refresh cycle already in flight")

	// ErrNoAdapters is returned when a schedule is built without adapters.
	ErrNoAdapters = errors.New("schedule has no adapters")

	// ErrNoNormalizers is returned when a schedule is built without normalizers.
	ErrNoNormalizers = errors.New("schedule has no normalizers")
)
