package models

import "time"

// RawReading is one reading fetched from a line's data source. The payload is
// opaque until the parser runs over it.
type RawReading struct {
	LineID    string    `json:"lineId"`
	Payload   string    `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Sync status values for staged records. A record moves Unsynced -> Synced
// exactly once; there is no path back.
const (
	SyncStatusUnsynced = 0
	SyncStatusSynced   = 1
)

// StagedRecord is a locally staged reading pending replication to the target
// store. Created by the collection loop, mutated only by the sync engine.
type StagedRecord struct {
	ID         int64     `json:"id"`
	LineID     string    `json:"lineId"`
	Payload    string    `json:"payload"`
	SyncStatus int       `json:"syncStatus"`
	Timestamp  time.Time `json:"timestamp"`
}

// SyncStatus describes the replication health of one line, as reported by the
// sync monitor. PendingRecords is -1 when the staging store could not be
// queried.
type SyncStatus struct {
	LineID          string    `json:"lineId"`
	LastSyncAttempt time.Time `json:"lastSyncAttempt"`
	IsInSync        bool      `json:"isInSync"`
	PendingRecords  int       `json:"pendingRecords"`
	RetryCount      int       `json:"retryCount"`
	LastError       string    `json:"lastError,omitempty"`
}
