package kvstore

import (
	"bytes"
	"database/sql"
	"encoding/gob"
	"errors"
	"fmt"
	"sync"
)

type Table struct {
	mu   sync.Mutex
	name string
	db   *sql.DB
}

var (
	ErrBadName  = fmt.Errorf("bad name for table")
	ErrNotFound = fmt.Errorf("value not found")
)

func isLetter(c rune) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_'
}

func isLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !isLetter(c) {
			return false
		}
	}
	return true
}

// NewTable creates a gob key/value table. name may only contain Latin
// letters and underscores since it is spliced into the queries.
func NewTable(db *sql.DB, name string) (*Table, error) {
	if !isLetters(name) {
		return nil, ErrBadName
	}

	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS ` + name + ` (
	key		TEXT PRIMARY KEY,
	value	BLOB
);`)
	if err != nil {
		return nil, err
	}
	return &Table{name: name, db: db}, nil
}

// Get decodes the value stored under key into value, which must be a
// pointer or nil. A missing key yields [ErrNotFound].
func (t *Table) Get(key string, value any) error {
	var v []uint8
	err := t.db.QueryRow(
		`SELECT value FROM `+t.name+` WHERE key = ?;`, key,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	if value == nil {
		return nil
	}
	return gob.NewDecoder(bytes.NewReader(v)).Decode(value)
}

// Set inserts a new key-value pair or updates an existing one.
func (t *Table) Set(key string, value any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return err
	}
	_, err := t.db.Exec(`
INSERT INTO `+t.name+` (key, value)
VALUES(?, ?)
ON CONFLICT(key)
DO UPDATE SET value=excluded.value;`,
		key, buf.Bytes())
	return err
}

// Delete removes key without checking if it existed.
func (t *Table) Delete(key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := t.db.Exec(`DELETE FROM `+t.name+` WHERE key = ?;`, key)
	return err
}

func (t *Table) Count() (int, error) {
	var n int
	err := t.db.QueryRow(`SELECT COUNT(*) FROM ` + t.name + `;`).Scan(&n)
	return n, err
}

func (t *Table) Keys() ([]string, error) {
	rows, err := t.db.Query(`SELECT key FROM ` + t.name + ` ORDER BY key;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
