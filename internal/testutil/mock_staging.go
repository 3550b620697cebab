// mock_staging.go - In-memory staging store implementation for testing
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mohdhamzakhan/PLCDataCollector/internal/models"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/staging"
)

// MockStaging implements staging.Store for testing.
type MockStaging struct {
	mu      sync.Mutex
	nextID  int64
	records map[string][]*models.StagedRecord

	// Failure injection. When set, the matching method returns the error.
	InsertErr error
	QueryErr  error
	MarkErr   error
	CountErr  error
}

// NewMockStaging creates an empty in-memory staging store.
func NewMockStaging() *MockStaging {
	return &MockStaging{
		nextID:  1,
		records: make(map[string][]*models.StagedRecord),
	}
}

func (m *MockStaging) InsertReading(lineID, payload string, ts time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.InsertErr != nil {
		return 0, m.InsertErr
	}
	id := m.nextID
	m.nextID++
	m.records[lineID] = append(m.records[lineID], &models.StagedRecord{
		ID:         id,
		LineID:     lineID,
		Payload:    payload,
		SyncStatus: models.SyncStatusUnsynced,
		Timestamp:  ts,
	})
	return id, nil
}

func (m *MockStaging) QueryUnsynced(lineID string, limit int) ([]models.StagedRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	var out []models.StagedRecord
	for _, rec := range m.records[lineID] {
		if rec.SyncStatus != models.SyncStatusUnsynced {
			continue
		}
		out = append(out, *rec)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MockStaging) MarkSynced(lineID string, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.MarkErr != nil {
		return false, m.MarkErr
	}
	for _, rec := range m.records[lineID] {
		if rec.ID != id {
			continue
		}
		if rec.SyncStatus == models.SyncStatusSynced {
			return false, nil
		}
		rec.SyncStatus = models.SyncStatusSynced
		return true, nil
	}
	return false, nil
}

func (m *MockStaging) CountUnsynced(lineID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CountErr != nil {
		return 0, m.CountErr
	}
	count := 0
	for _, rec := range m.records[lineID] {
		if rec.SyncStatus == models.SyncStatusUnsynced {
			count++
		}
	}
	return count, nil
}

func (m *MockStaging) RecentReadings(lineID string, limit int) ([]models.StagedRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := m.records[lineID]
	var out []models.StagedRecord
	for i := len(recs) - 1; i >= 0; i-- {
		out = append(out, *recs[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MockStaging) Close() error { return nil }

// SyncedIDs returns the IDs of records marked synced for a line, in insert order.
func (m *MockStaging) SyncedIDs(lineID string) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []int64
	for _, rec := range m.records[lineID] {
		if rec.SyncStatus == models.SyncStatusSynced {
			ids = append(ids, rec.ID)
		}
	}
	return ids
}

// MockTarget implements staging.TargetStore with failure injection.
type MockTarget struct {
	mu       sync.Mutex
	Rows     []TargetRow
	BeginErr error

	// FailInserts makes the next N insert calls fail.
	FailInserts int
	// FailCommits makes the next N commit calls fail.
	FailCommits int

	Begins    int
	Commits   int
	Rollbacks int
}

// TargetRow is one row written to the mock target table.
type TargetRow struct {
	LineID    string
	Payload   string
	Timestamp time.Time
}

func NewMockTarget() *MockTarget {
	return &MockTarget{}
}

func (m *MockTarget) Begin(ctx context.Context) (staging.TargetTx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.BeginErr != nil {
		return nil, m.BeginErr
	}
	m.Begins++
	return &MockTargetTx{target: m}, nil
}

// MockTargetTx buffers inserts until commit, mirroring a real transaction.
type MockTargetTx struct {
	target  *MockTarget
	pending []TargetRow
	done    bool
}

func (tx *MockTargetTx) InsertReading(lineID, payload string, ts time.Time) error {
	tx.target.mu.Lock()
	defer tx.target.mu.Unlock()

	if tx.target.FailInserts > 0 {
		tx.target.FailInserts--
		return errors.New("target insert failed")
	}
	tx.pending = append(tx.pending, TargetRow{LineID: lineID, Payload: payload, Timestamp: ts})
	return nil
}

func (tx *MockTargetTx) Commit() error {
	tx.target.mu.Lock()
	defer tx.target.mu.Unlock()

	if tx.done {
		return errors.New("transaction already finished")
	}
	tx.done = true
	if tx.target.FailCommits > 0 {
		tx.target.FailCommits--
		return errors.New("target commit failed")
	}
	tx.target.Commits++
	tx.target.Rows = append(tx.target.Rows, tx.pending...)
	return nil
}

func (tx *MockTargetTx) Rollback() error {
	tx.target.mu.Lock()
	defer tx.target.mu.Unlock()

	if tx.done {
		return nil
	}
	tx.done = true
	tx.target.Rollbacks++
	tx.pending = nil
	return nil
}
