package syncer

import (
	"fmt"
	"sync"
	"time"

	"github.com/mohdhamzakhan/PLCDataCollector/internal/config"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/models"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/staging"
)

// Excessive-retry and staleness thresholds for overall health.
const (
	healthyRetryLimit = 10
	staleThreshold    = 30 * time.Minute
)

// lineState is the process-local sync bookkeeping for one line. It is
// written only by the sync engine's callbacks and read by status queries.
type lineState struct {
	lastAttempt time.Time
	retryCount  int
	lastError   string
}

// Monitor derives per-line sync health from the staging store and the sync
// engine's attempt callbacks.
type Monitor struct {
	mu     sync.RWMutex
	states map[string]lineState

	lines *config.Lines
	store staging.Store
}

// NewMonitor creates a sync monitor over the configured lines.
func NewMonitor(lines *config.Lines, store staging.Store) *Monitor {
	return &Monitor{
		states: make(map[string]lineState),
		lines:  lines,
		store:  store,
	}
}

// RecordAttempt is called by the sync engine after every sync attempt.
// Success clears the retry count and last error; failure increments the
// count and stores the error text.
func (m *Monitor) RecordAttempt(lineID string, at time.Time, success bool, errText string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.states[lineID]
	st.lastAttempt = at
	if success {
		st.retryCount = 0
		st.lastError = ""
	} else if errText != "" {
		st.retryCount++
		st.lastError = errText
	}
	m.states[lineID] = st
}

// RecordExhausted is called when a line's retry budget is spent for the
// current cycle. The counter resets so the next tick starts fresh; the
// exhaustion message stays visible as the last error.
func (m *Monitor) RecordExhausted(lineID string, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.states[lineID]
	st.retryCount = 0
	st.lastError = message
	m.states[lineID] = st
}

// GetSyncStatus computes the sync status of one line. The pending-record
// count is queried fresh from the staging store on every call; a staging
// failure is reported in the status itself (PendingRecords -1), never as a
// panic or abort.
func (m *Monitor) GetSyncStatus(lineID string) models.SyncStatus {
	m.mu.RLock()
	st := m.states[lineID]
	m.mu.RUnlock()

	status := models.SyncStatus{
		LineID:          lineID,
		LastSyncAttempt: st.lastAttempt,
		RetryCount:      st.retryCount,
		LastError:       st.lastError,
	}

	pending, err := m.store.CountUnsynced(lineID)
	if err != nil {
		status.PendingRecords = -1
		status.IsInSync = false
		status.LastError = fmt.Sprintf("error getting status: %v", err)
		return status
	}

	status.PendingRecords = pending
	status.IsInSync = pending == 0 && st.lastError == ""
	return status
}

// GetAllSyncStatus returns the sync status of every configured line. A
// failure for one line is reported as that line's status entry and does not
// abort the remaining enumeration.
func (m *Monitor) GetAllSyncStatus() []models.SyncStatus {
	ids := m.lines.IDs()
	statuses := make([]models.SyncStatus, 0, len(ids))
	for _, id := range ids {
		statuses = append(statuses, m.GetSyncStatus(id))
	}
	return statuses
}

// IsHealthy reports overall sync health: false when any line has an
// excessive retry count or a stale last attempt, true otherwise (including
// when no lines are configured).
func (m *Monitor) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	for _, id := range m.lines.IDs() {
		st := m.states[id]

		if st.retryCount > healthyRetryLimit {
			fmt.Printf("[SyncMonitor] Line %s has excessive retry count: %d\n", id, st.retryCount)
			return false
		}
		if !st.lastAttempt.IsZero() && now.Sub(st.lastAttempt) > staleThreshold {
			fmt.Printf("[SyncMonitor] Line %s has stale sync attempt: %s\n", id, st.lastAttempt.Format(time.RFC3339))
			return false
		}
	}
	return true
}

// Summary returns aggregate sync statistics across all lines.
func (m *Monitor) Summary() map[string]any {
	m.mu.RLock()
	linesWithErrors := 0
	totalRetries := 0
	recentSyncs := 0
	now := time.Now()
	for _, st := range m.states {
		if st.lastError != "" {
			linesWithErrors++
		}
		totalRetries += st.retryCount
		if !st.lastAttempt.IsZero() && now.Sub(st.lastAttempt) < staleThreshold {
			recentSyncs++
		}
	}
	m.mu.RUnlock()

	return map[string]any{
		"totalLines":      m.lines.Count(),
		"linesWithErrors": linesWithErrors,
		"totalRetries":    totalRetries,
		"recentSyncs":     recentSyncs,
		"isHealthy":       m.IsHealthy(),
		"lastUpdated":     now,
	}
}
