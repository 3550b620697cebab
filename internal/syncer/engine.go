// Package syncer drains unsynced staged records into the target store under
// retry/backoff discipline and tracks per-line sync health.
package syncer

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/mohdhamzakhan/PLCDataCollector/internal/config"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/staging"
)

// Engine is the periodic staging-to-target replication loop. Lines are
// processed sequentially within a tick; a failing line's backoff sleep
// happens inline, so later lines in the same tick wait behind it. That
// bounds target-store write concurrency and is an accepted scaling limit.
type Engine struct {
	lines    *config.Lines
	store    staging.Store
	target   staging.TargetStore
	monitor  *Monitor
	settings config.DataSyncConfig

	// retries is the engine's own backoff state, keyed by line id. Only the
	// engine goroutine touches it.
	retries map[string]int

	// sleep is swappable for tests.
	sleep func(ctx context.Context, d time.Duration) bool
}

// NewEngine creates a sync engine over the configured lines.
func NewEngine(lines *config.Lines, store staging.Store, target staging.TargetStore, monitor *Monitor, settings config.DataSyncConfig) *Engine {
	return &Engine{
		lines:    lines,
		store:    store,
		target:   target,
		monitor:  monitor,
		settings: settings,
		retries:  make(map[string]int),
		sleep:    sleepCtx,
	}
}

// Run drives the sync loop until ctx is cancelled. The interval wait and all
// backoff sleeps are interruptible; an in-flight transaction finishes
// (commit or rollback) before the loop exits.
func (e *Engine) Run(ctx context.Context) {
	interval := time.Duration(e.settings.IntervalSeconds) * time.Second
	fmt.Printf("[Sync] Engine starting, interval %s, batch size %d\n", interval, e.settings.BatchSize)

	for {
		e.syncAll(ctx)
		if !e.sleep(ctx, interval) {
			fmt.Println("[Sync] Engine stopping")
			return
		}
	}
}

// syncAll runs one tick: every configured line, sequentially.
func (e *Engine) syncAll(ctx context.Context) {
	for _, lineID := range e.lines.IDs() {
		if ctx.Err() != nil {
			return
		}
		if err := e.syncLine(ctx, lineID); err != nil {
			e.handleSyncError(ctx, lineID, err)
		} else {
			delete(e.retries, lineID)
		}
	}
}

// syncLine replicates one batch for one line inside a single target
// transaction. Any failure rolls the whole batch back; staged records are
// marked Synced only after a successful commit.
func (e *Engine) syncLine(ctx context.Context, lineID string) error {
	if e.settings.EnableDetailedLogging {
		fmt.Printf("[Sync] Starting data sync for line %s\n", lineID)
	}

	batch, err := e.store.QueryUnsynced(lineID, e.settings.BatchSize)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		if e.settings.EnableDetailedLogging {
			fmt.Printf("[Sync] No unsynced data found for line %s\n", lineID)
		}
		return nil
	}

	tx, err := e.target.Begin(ctx)
	if err != nil {
		return err
	}

	for _, rec := range batch {
		if err := tx.InsertReading(rec.LineID, rec.Payload, rec.Timestamp); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	// The target batch is committed; marking is idempotent so a failure
	// here just re-delivers the batch next tick.
	for _, rec := range batch {
		if _, err := e.store.MarkSynced(lineID, rec.ID); err != nil {
			return err
		}
	}

	e.monitor.RecordAttempt(lineID, time.Now(), true, "")
	fmt.Printf("[Sync] Successfully synced %d records for line %s\n", len(batch), lineID)
	return nil
}

// handleSyncError tracks consecutive failures for a line. Failures within
// the retry budget pause the loop with exponential backoff; once the budget
// is spent the line's counter resets and a SyncExhausted condition is
// surfaced to the monitor.
func (e *Engine) handleSyncError(ctx context.Context, lineID string, err error) {
	e.retries[lineID]++
	attempt := e.retries[lineID]

	if attempt <= e.settings.MaxRetries {
		e.monitor.RecordAttempt(lineID, time.Now(), false, err.Error())
		delay := e.backoffDelay(attempt)
		fmt.Printf("[Sync] Sync failed for line %s (attempt %d of %d), backing off %s: %v\n",
			lineID, attempt, e.settings.MaxRetries, delay, err)
		e.sleep(ctx, delay)
		return
	}

	exhausted := &ExhaustedError{LineID: lineID, Attempts: e.settings.MaxRetries, Err: err}
	fmt.Printf("[Sync] %v\n", exhausted)
	delete(e.retries, lineID)
	e.monitor.RecordExhausted(lineID, exhausted.Error())
}

// backoffDelay returns RetryDelaySeconds * 2^(attempt-1).
func (e *Engine) backoffDelay(attempt int) time.Duration {
	seconds := float64(e.settings.RetryDelaySeconds) * math.Pow(2, float64(attempt-1))
	return time.Duration(seconds * float64(time.Second))
}

// sleepCtx waits for d or cancellation, whichever comes first. Returns false
// when ctx was cancelled.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
