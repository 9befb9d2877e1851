// Package data provides thread-safe runtime state shared between the
// warm-up scheduler, the health checker and the HTTP layer.
package data

import (
	"sync/atomic"
	"time"

	"github.com/giygas/interactions-api/interfaces"
	"github.com/giygas/interactions-api/logging"
)

// Compile-time check to ensure ProviderStatus implements ProviderStatusStore
var _ interfaces.ProviderStatusStore = (*ProviderStatus)(nil)

// ProviderStatus records provider warm-up outcomes with atomic operations
type ProviderStatus struct {
	lastWarmup      atomic.Value // time.Time
	lastWarmupError atomic.Value // string
	warmupOK        atomic.Bool
	warming         atomic.Bool
	warmups         atomic.Int64
	failures        atomic.Int64
	serverStartTime atomic.Value // time.Time
}

// NewProviderStatus creates an empty status store
func NewProviderStatus() *ProviderStatus {
	ps := &ProviderStatus{}
	ps.lastWarmup.Store(time.Time{})
	ps.lastWarmupError.Store("")
	ps.serverStartTime.Store(time.Time{})
	return ps
}

// RecordWarmup stores the outcome of one warm-up call
func (ps *ProviderStatus) RecordWarmup(at time.Time, err error) {
	ps.lastWarmup.Store(at)
	ps.warmups.Add(1)

	if err != nil {
		ps.failures.Add(1)
		ps.lastWarmupError.Store(err.Error())
		ps.warmupOK.Store(false)
		return
	}
	ps.lastWarmupError.Store("")
	ps.warmupOK.Store(true)
}

// GetLastWarmup returns the time of the last warm-up, zero if none ran
func (ps *ProviderStatus) GetLastWarmup() time.Time {
	if v := ps.lastWarmup.Load(); v != nil {
		if at, ok := v.(time.Time); ok {
			return at
		}
	}

	logging.Warn("Could not get the last warm-up value")
	return time.Time{}
}

// GetLastWarmupError returns the last warm-up error, empty on success
func (ps *ProviderStatus) GetLastWarmupError() string {
	if v := ps.lastWarmupError.Load(); v != nil {
		if msg, ok := v.(string); ok {
			return msg
		}
	}
	return ""
}

// LastWarmupSucceeded is false until a warm-up succeeds
func (ps *ProviderStatus) LastWarmupSucceeded() bool {
	return ps.warmupOK.Load()
}

// WarmupCounts returns the total and failed warm-up counts
func (ps *ProviderStatus) WarmupCounts() (total, failed int64) {
	return ps.warmups.Load(), ps.failures.Load()
}

// BeginWarmup marks the start of a warm-up.
// Returns true if it can proceed, false if another warm-up is in progress.
func (ps *ProviderStatus) BeginWarmup() bool {
	return ps.warming.CompareAndSwap(false, true)
}

// EndWarmup marks the end of a warm-up
func (ps *ProviderStatus) EndWarmup() {
	ps.warming.Store(false)
}

// IsWarming returns true while a warm-up is in progress
func (ps *ProviderStatus) IsWarming() bool {
	return ps.warming.Load()
}

// SetServerStartTime sets the server start time
func (ps *ProviderStatus) SetServerStartTime(startTime time.Time) {
	ps.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (ps *ProviderStatus) GetServerStartTime() time.Time {
	if v := ps.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}
