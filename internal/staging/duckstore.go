// Package staging persists raw line readings locally until the sync engine
// replicates them to the target store. Records are append-only with a one-way
// Unsynced -> Synced flag; the core never deletes them.
package staging

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/marcboeker/go-duckdb"

	"github.com/mohdhamzakhan/PLCDataCollector/internal/models"
)

// Store is the staging store contract consumed by the collection loop, the
// sync engine, and the sync monitor.
type Store interface {
	// InsertReading stages one reading as Unsynced and returns its id.
	InsertReading(lineID, payload string, ts time.Time) (int64, error)

	// QueryUnsynced returns up to limit unsynced records for a line, oldest
	// timestamp first. limit <= 0 means no limit.
	QueryUnsynced(lineID string, limit int) ([]models.StagedRecord, error)

	// MarkSynced flips one record to Synced. Re-marking an already synced
	// record is a no-op and not an error.
	MarkSynced(lineID string, id int64) (bool, error)

	// CountUnsynced returns the number of pending records for a line.
	CountUnsynced(lineID string) (int, error)

	// RecentReadings returns the newest records for a line regardless of
	// sync state, newest first.
	RecentReadings(lineID string, limit int) ([]models.StagedRecord, error)

	Close() error
}

// DuckStore implements Store on an embedded DuckDB file.
type DuckStore struct {
	db     *sql.DB
	dbPath string
}

// NewDuckStore opens (or creates) the staging database at dbPath.
func NewDuckStore(dbPath string) (*DuckStore, error) {
	fmt.Printf("[Staging] Opening database at: %s\n", dbPath)

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='512MB'",
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, &PersistenceError{Op: "open", Err: err}
	}

	db := sql.OpenDB(connector)

	schema := []string{
		`CREATE SEQUENCE IF NOT EXISTS readings_id_seq`,
		`CREATE TABLE IF NOT EXISTS readings (
			id          BIGINT PRIMARY KEY DEFAULT nextval('readings_id_seq'),
			line_id     VARCHAR NOT NULL,
			payload     VARCHAR NOT NULL,
			sync_status TINYINT NOT NULL DEFAULT 0,
			created_at  TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, &PersistenceError{Op: "create schema", Err: err}
		}
	}

	return &DuckStore{db: db, dbPath: dbPath}, nil
}

// InsertReading stages one reading as Unsynced.
func (s *DuckStore) InsertReading(lineID, payload string, ts time.Time) (int64, error) {
	var id int64
	err := s.db.QueryRow(`
		INSERT INTO readings (line_id, payload, sync_status, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`,
		lineID, payload, models.SyncStatusUnsynced, ts,
	).Scan(&id)
	if err != nil {
		return 0, &PersistenceError{Op: "insert reading", LineID: lineID, Err: err}
	}
	return id, nil
}

// QueryUnsynced returns pending records for a line, oldest first.
func (s *DuckStore) QueryUnsynced(lineID string, limit int) ([]models.StagedRecord, error) {
	query := `
		SELECT id, line_id, payload, sync_status, created_at
		FROM readings
		WHERE line_id = ? AND sync_status = ?
		ORDER BY created_at ASC`
	args := []any{lineID, models.SyncStatusUnsynced}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, &PersistenceError{Op: "query unsynced", LineID: lineID, Err: err}
	}
	defer rows.Close()

	return scanRecords(rows, lineID, "query unsynced")
}

// MarkSynced flips one record to Synced. Returns whether a row matched.
func (s *DuckStore) MarkSynced(lineID string, id int64) (bool, error) {
	result, err := s.db.Exec(`
		UPDATE readings SET sync_status = ?
		WHERE id = ? AND line_id = ?`,
		models.SyncStatusSynced, id, lineID,
	)
	if err != nil {
		return false, &PersistenceError{Op: "mark synced", LineID: lineID, Err: err}
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, &PersistenceError{Op: "mark synced", LineID: lineID, Err: err}
	}
	return affected > 0, nil
}

// CountUnsynced returns the number of pending records for a line.
func (s *DuckStore) CountUnsynced(lineID string) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM readings
		WHERE line_id = ? AND sync_status = ?`,
		lineID, models.SyncStatusUnsynced,
	).Scan(&count)
	if err != nil {
		return 0, &PersistenceError{Op: "count unsynced", LineID: lineID, Err: err}
	}
	return count, nil
}

// RecentReadings returns the newest records for a line, newest first.
func (s *DuckStore) RecentReadings(lineID string, limit int) ([]models.StagedRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, line_id, payload, sync_status, created_at
		FROM readings
		WHERE line_id = ?
		ORDER BY created_at DESC
		LIMIT ?`,
		lineID, limit,
	)
	if err != nil {
		return nil, &PersistenceError{Op: "recent readings", LineID: lineID, Err: err}
	}
	defer rows.Close()

	return scanRecords(rows, lineID, "recent readings")
}

// Close closes the underlying database.
func (s *DuckStore) Close() error {
	return s.db.Close()
}

func scanRecords(rows *sql.Rows, lineID, op string) ([]models.StagedRecord, error) {
	var records []models.StagedRecord
	for rows.Next() {
		var rec models.StagedRecord
		if err := rows.Scan(&rec.ID, &rec.LineID, &rec.Payload, &rec.SyncStatus, &rec.Timestamp); err != nil {
			return nil, &PersistenceError{Op: op, LineID: lineID, Err: err}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: op, LineID: lineID, Err: err}
	}
	return records, nil
}
