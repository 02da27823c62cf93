// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package report

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS images (
		image_id      INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id        TEXT NOT NULL,
		image         TEXT NOT NULL,
		mean          DOUBLE,
		error         TEXT,
		timestamp     TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS spots (
		image_id      INTEGER NOT NULL REFERENCES images(image_id),
		label         TEXT NOT NULL,
		status        TEXT NOT NULL,
		celsius       DOUBLE
	);
	CREATE INDEX IF NOT EXISTS spots_image_id ON spots(image_id);
`

// SQLite appends rows to a SQLite database.
//
// Each image is a row in the images table and each configured label a row
// in the spots table, including absent ones with their status. Images added
// through the same SQLite share a run_id.
type SQLite struct {
	runID  string
	labels []string
	db     *sql.DB
	now    func() time.Time
}

// NewSQLite opens or creates the database at path.
func NewSQLite(path string, labels []string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("report: creating schema: %w", err)
	}
	return &SQLite{runID: uuid.New().String(), labels: labels, db: db, now: time.Now}, nil
}

// RunID identifies the images added by this writer.
func (s *SQLite) RunID() string {
	return s.runID
}

// DB returns the database handle.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// Add implements Writer.
func (s *SQLite) Add(r Row) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := s.insert(tx, r); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Flush implements Writer. Rows are committed by Add.
func (s *SQLite) Flush() error {
	return nil
}

// Close implements Writer.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) insert(tx *sql.Tx, r Row) error {
	var mean, msg interface{}
	if c, ok := r.Result.Mean.Value(); ok {
		mean = c
	}
	if r.Err != nil {
		msg = r.Err.Error()
	}
	res, err := tx.Exec(`INSERT INTO images (run_id, image, mean, error, timestamp) VALUES (?, ?, ?, ?, ?)`,
		s.runID, r.Image, mean, msg, s.now().UTC())
	if err != nil {
		return fmt.Errorf("report: inserting %s: %w", r.Image, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for _, l := range s.labels {
		v := r.Result.Get(l)
		var c interface{}
		if f, ok := v.Value(); ok {
			c = f
		}
		if _, err := tx.Exec(`INSERT INTO spots (image_id, label, status, celsius) VALUES (?, ?, ?, ?)`,
			id, l, v.Status.String(), c); err != nil {
			return fmt.Errorf("report: inserting %s %s: %w", r.Image, l, err)
		}
	}
	return nil
}
