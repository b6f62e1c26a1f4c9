// Package sqlite provides a durable SessionStore backed by an embedded
// SQLite database. Sessions survive process restarts, making it the default
// store for interactive CLI use.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/leadmesh/core"
	_ "modernc.org/sqlite"
)

// Store persists sessions, state and event history in SQLite. All methods
// are safe for concurrent use; writes are serialized through a mutex since
// the embedded driver handles one writer at a time.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New opens (or creates) the database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		state TEXT NOT NULL DEFAULT '{}',
		metadata TEXT NOT NULL DEFAULT '{}',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		event_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, seq);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	return nil
}

// Create inserts a fresh session with empty state, replacing any existing
// row and its event history.
func (s *Store) Create(sessionID string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM events WHERE session_id = ?`, sessionID); err != nil {
		return nil, fmt.Errorf("failed to clear events: %w", err)
	}

	_, err = tx.Exec(
		`INSERT OR REPLACE INTO sessions (id, state, metadata, created_at, updated_at) VALUES (?, '{}', '{}', ?, ?)`,
		sessionID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return core.NewSession(sessionID), nil
}

// Get loads a session with its state and full event history, creating it
// lazily when absent.
func (s *Store) Get(sessionID string) (*core.Session, error) {
	var (
		stateJSON, metadataJSON string
		created, updated        time.Time
	)

	err := s.db.QueryRow(
		`SELECT state, metadata, created_at, updated_at FROM sessions WHERE id = ?`, sessionID,
	).Scan(&stateJSON, &metadataJSON, &created, &updated)

	if err == sql.ErrNoRows {
		return s.Create(sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	sess := core.NewSession(sessionID)
	sess.Created = created
	sess.Updated = updated

	if err := json.Unmarshal([]byte(stateJSON), &sess.State); err != nil {
		return nil, fmt.Errorf("failed to decode session state: %w", err)
	}
	if err := json.Unmarshal([]byte(metadataJSON), &sess.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode session metadata: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT payload FROM events WHERE session_id = ? ORDER BY seq ASC`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}

		var ev core.Event
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}
		sess.Events = append(sess.Events, ev)
	}

	return sess, rows.Err()
}

// AppendEvent persists an event at the end of the session's history.
func (s *Store) AppendEvent(sessionID string, ev core.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSession(sessionID); err != nil {
		return err
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO events (session_id, event_id, payload, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, ev.ID, string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}

// ApplyDelta merges a key/value delta into the stored session state.
func (s *Store) ApplyDelta(sessionID string, delta map[string]interface{}) error {
	if len(delta) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSession(sessionID); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var stateJSON string
	if err := tx.QueryRow(`SELECT state FROM sessions WHERE id = ?`, sessionID).Scan(&stateJSON); err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	state := map[string]interface{}{}
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return fmt.Errorf("failed to decode state: %w", err)
	}

	for k, v := range delta {
		state[k] = v
	}

	merged, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	_, err = tx.Exec(
		`UPDATE sessions SET state = ?, updated_at = ? WHERE id = ?`,
		string(merged), time.Now().UTC(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update state: %w", err)
	}

	return tx.Commit()
}

// ensureSession inserts the session row when it does not exist yet. Caller
// must hold the write mutex.
func (s *Store) ensureSession(sessionID string) error {
	now := time.Now().UTC()

	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO sessions (id, state, metadata, created_at, updated_at) VALUES (?, '{}', '{}', ?, ?)`,
		sessionID, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure session: %w", err)
	}

	return nil
}
