package staging

import (
	"context"
	"database/sql"
	"time"
)

// TargetStore is the remote system-of-record the sync engine replicates into.
// Only its transactional contract matters here; the concrete engine behind
// the *sql.DB is a deployment choice.
type TargetStore interface {
	Begin(ctx context.Context) (TargetTx, error)
}

// TargetTx is one replication transaction. Either every record inserted
// through it commits, or the whole batch rolls back.
type TargetTx interface {
	InsertReading(lineID, payload string, ts time.Time) error
	Commit() error
	Rollback() error
}

// SQLTargetStore implements TargetStore over a database/sql connection.
type SQLTargetStore struct {
	db *sql.DB
}

// NewSQLTargetStore wraps an opened target database.
func NewSQLTargetStore(db *sql.DB) *SQLTargetStore {
	return &SQLTargetStore{db: db}
}

// EnsureSchema creates the replicated-readings table when it does not exist.
// Used by the embedded default deployment; a managed RDBMS target ships its
// schema separately.
func (s *SQLTargetStore) EnsureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS plc_data (
			line_id    VARCHAR NOT NULL,
			data       VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`)
	if err != nil {
		return &PersistenceError{Op: "ensure target schema", Err: err}
	}
	return nil
}

// Begin opens one replication transaction.
func (s *SQLTargetStore) Begin(ctx context.Context) (TargetTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &PersistenceError{Op: "begin target tx", Err: err}
	}
	return &sqlTargetTx{tx: tx}, nil
}

type sqlTargetTx struct {
	tx *sql.Tx
}

func (t *sqlTargetTx) InsertReading(lineID, payload string, ts time.Time) error {
	_, err := t.tx.Exec(`
		INSERT INTO plc_data (line_id, data, created_at)
		VALUES (?, ?, ?)`,
		lineID, payload, ts,
	)
	if err != nil {
		return &PersistenceError{Op: "insert target reading", LineID: lineID, Err: err}
	}
	return nil
}

func (t *sqlTargetTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return &PersistenceError{Op: "commit target tx", Err: err}
	}
	return nil
}

func (t *sqlTargetTx) Rollback() error {
	return t.tx.Rollback()
}
