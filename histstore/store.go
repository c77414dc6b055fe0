// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: histstore/store.go
// Summary: SQLite-backed persistence of terminal scroll-back.
// Usage: Called by the host between read pumps; the core itself never
// touches the database.
// Notes: Paragraph blobs are deduplicated by fingerprint, mirroring
// the in-memory paragraph store.

package histstore

import (
	"database/sql"
	"fmt"
	"hash/fnv"

	_ "modernc.org/sqlite"

	"github.com/framegrace/texelvt/vt"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id       INTEGER PRIMARY KEY,
	name     TEXT NOT NULL UNIQUE,
	saved_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);
CREATE TABLE IF NOT EXISTS blobs (
	fingerprint INTEGER PRIMARY KEY,
	data        BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS paragraphs (
	session_id  INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	seq         INTEGER NOT NULL,
	fingerprint INTEGER NOT NULL REFERENCES blobs(fingerprint),
	PRIMARY KEY (session_id, seq)
);
`

// Store persists scroll-back snapshots in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open creates or opens a snapshot database. Pass ":memory:" for an
// ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("histstore: open %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("histstore: pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("histstore: schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Save replaces the named session's snapshot with the given
// paragraphs, oldest first.
func (s *Store) Save(session string, paragraphs [][]vt.Cell) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("histstore: begin: %w", err)
	}
	defer tx.Rollback()

	var sessionID int64
	err = tx.QueryRow(
		`INSERT INTO sessions (name) VALUES (?)
		 ON CONFLICT(name) DO UPDATE SET
			saved_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')
		 RETURNING id`, session).Scan(&sessionID)
	if err != nil {
		return fmt.Errorf("histstore: upsert session: %w", err)
	}
	if _, err := tx.Exec(
		`DELETE FROM paragraphs WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("histstore: clear session: %w", err)
	}

	insBlob, err := tx.Prepare(
		`INSERT OR IGNORE INTO blobs (fingerprint, data) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer insBlob.Close()
	insPara, err := tx.Prepare(
		`INSERT INTO paragraphs (session_id, seq, fingerprint) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insPara.Close()

	for seq, para := range paragraphs {
		data := encodeParagraph(para)
		fp := fingerprint(data)
		if _, err := insBlob.Exec(fp, data); err != nil {
			return fmt.Errorf("histstore: blob: %w", err)
		}
		if _, err := insPara.Exec(sessionID, seq, fp); err != nil {
			return fmt.Errorf("histstore: paragraph: %w", err)
		}
	}

	// Blobs no longer referenced by any session are dead weight.
	if _, err := tx.Exec(
		`DELETE FROM blobs WHERE fingerprint NOT IN
			(SELECT fingerprint FROM paragraphs)`); err != nil {
		return fmt.Errorf("histstore: prune: %w", err)
	}
	return tx.Commit()
}

// Load returns the named session's paragraphs, oldest first. A
// missing session yields an empty slice.
func (s *Store) Load(session string) ([][]vt.Cell, error) {
	rows, err := s.db.Query(
		`SELECT b.data FROM paragraphs p
		 JOIN sessions s ON s.id = p.session_id
		 JOIN blobs b ON b.fingerprint = p.fingerprint
		 WHERE s.name = ?
		 ORDER BY p.seq`, session)
	if err != nil {
		return nil, fmt.Errorf("histstore: load: %w", err)
	}
	defer rows.Close()

	var paras [][]vt.Cell
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		para, err := decodeParagraph(data)
		if err != nil {
			return nil, fmt.Errorf("histstore: session %s: %w", session, err)
		}
		paras = append(paras, para)
	}
	return paras, rows.Err()
}

// Sessions lists saved session names, most recent first.
func (s *Store) Sessions() ([]string, error) {
	rows, err := s.db.Query(
		`SELECT name FROM sessions ORDER BY saved_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes a session and any blobs it alone referenced.
func (s *Store) Delete(session string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(
		`DELETE FROM sessions WHERE name = ?`, session); err != nil {
		return err
	}
	if _, err := tx.Exec(
		`DELETE FROM blobs WHERE fingerprint NOT IN
			(SELECT fingerprint FROM paragraphs)`); err != nil {
		return err
	}
	return tx.Commit()
}

func fingerprint(data []byte) int64 {
	h := fnv.New64a()
	h.Write(data)
	return int64(h.Sum64())
}
