package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/berfenger/embernews2mqtt/internal/core/port"

	_ "github.com/mattn/go-sqlite3"
)

const createStateTable = `
CREATE TABLE IF NOT EXISTS bridge_state (
	key   TEXT PRIMARY KEY,
	value REAL NOT NULL
);`

// legacy keys from previous releases, renamed in place on open
var legacyKeys = map[string]string{
	"pellets":          port.STORE_KEY_PELLETS_REMAINING_KG,
	"pellets_consumed": port.STORE_KEY_PELLETS_LAST_CONSUMED,
}

// SQLiteStateStore persists bridge state in a single-file SQLite
// database. WAL mode keeps restarts cheap; a busy timeout avoids
// locked-database errors if an external tool inspects the file.
type SQLiteStateStore struct {
	db *sql.DB
}

func OpenSQLiteStateStore(path string) (*SQLiteStateStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("create state store directory: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}
	// single writer, SQLite's sweet spot
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createStateTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("init state store schema: %w", err)
	}

	store := &SQLiteStateStore{db: db}
	if err := store.migrateLegacyKeys(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate state store keys: %w", err)
	}
	return store, nil
}

// migrateLegacyKeys renames keys written by older releases. Idempotent:
// a legacy key is only moved when the current key does not exist yet.
func (s *SQLiteStateStore) migrateLegacyKeys() error {
	for old, current := range legacyKeys {
		_, err := s.db.Exec(`UPDATE OR IGNORE bridge_state SET key = ? WHERE key = ?`, current, old)
		if err != nil {
			return err
		}
		// drop the stale row if both existed
		if _, err := s.db.Exec(`DELETE FROM bridge_state WHERE key = ?`, old); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStateStore) GetFloat(key string) (float64, bool, error) {
	var value float64
	err := s.db.QueryRow(`SELECT value FROM bridge_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return value, true, nil
}

func (s *SQLiteStateStore) PutFloat(key string, value float64) error {
	_, err := s.db.Exec(`INSERT INTO bridge_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

func (s *SQLiteStateStore) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM bridge_state WHERE key = ?`, key)
	return err
}

func (s *SQLiteStateStore) Close() error {
	return s.db.Close()
}

// ensure interface compliance
var _ port.StateStore = (*SQLiteStateStore)(nil)
