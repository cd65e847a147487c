// Package config provides configuration loading and validation for mirrorx-backend.
package config

import "errors"

var (
	// ErrNoSchedulesConfigured indicates that no refresh schedules are configured.
	ErrNoSchedulesConfigured = errors.New("at least one refresh schedule must be configured")
	// ErrNoAdaptersConfigured indicates that no source adapters are configured.
	ErrNoAdaptersConfigured = errors.New("at least one source adapter must be configured")
	// ErrScheduleNameRequired indicates that a schedule name is required.
	ErrScheduleNameRequired = errors.New("schedule name is required")
	// ErrScheduleNoDatasets indicates that a schedule covers no datasets.
	ErrScheduleNoDatasets = errors.New("schedule must cover at least one dataset")
	// ErrScheduleDatasetOverlap indicates a dataset appears in more than one schedule.
	ErrScheduleDatasetOverlap = errors.New("dataset is covered by more than one schedule")
	// ErrDeadlineBelowTimeout indicates the cycle deadline is shorter than the adapter timeout.
	ErrDeadlineBelowTimeout = errors.New("cycle_deadline must not be shorter than adapter_timeout")
	// ErrDatasetNoAdapters indicates that a scheduled dataset has no enabled adapters.
	ErrDatasetNoAdapters = errors.New("dataset has no enabled adapters")
	// ErrAdapterTypeRequired indicates that the adapter type is required.
	ErrAdapterTypeRequired = errors.New("adapter type is required")
	// ErrAdapterNameRequired indicates that the adapter name is required.
	ErrAdapterNameRequired = errors.New("adapter name is required")
	// ErrAdapterDatasetRequired indicates that the adapter dataset is required.
	ErrAdapterDatasetRequired = errors.New("adapter dataset is required")
	// ErrDuplicateAdapterName indicates two enabled adapters share a name.
	ErrDuplicateAdapterName = errors.New("enabled adapter names must be unique")
	// ErrInvalidAdapterType indicates that the adapter type is unknown.
	ErrInvalidAdapterType = errors.New("invalid adapter type")
	// ErrInvalidCacheBackend indicates that the cache backend is unknown.
	ErrInvalidCacheBackend = errors.New("invalid cache backend")
	// ErrRedisAddrRequired indicates that the redis address is required.
	ErrRedisAddrRequired = errors.New("redis addr must be specified for the redis backend")
	// ErrTLSConfigIncomplete indicates that TLS config is incomplete.
	ErrTLSConfigIncomplete = errors.New("TLS cert and key must be specified when TLS is enabled")
	// ErrInvalidLogLevel indicates that the log level is invalid.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidLogFormat indicates that the log format is invalid.
	ErrInvalidLogFormat = errors.New("invalid log format")
)
