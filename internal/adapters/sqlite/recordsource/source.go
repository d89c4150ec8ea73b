// Package recordsource reads the record set from a SQLite database file.
package recordsource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/recordsource"
)

const table = "geo_projects"

// Source is a SQLite implementation of recordsource.Source.
type Source struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (creating if needed) the database at path. ":memory:" gives a
// private in-memory database.
func Open(path string, log *slog.Logger) (*Source, error) {
	if path == "" {
		path = "geo-projects.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: an in-memory database lives and dies with its
	// connection, and a single writer avoids SQLITE_BUSY on files.
	db.SetMaxOpenConns(1)
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Source{db: db, log: log}, nil
}

func (s *Source) Close() error { return s.db.Close() }

func (s *Source) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+table+` (
		id           TEXT PRIMARY KEY,
		project_name TEXT NOT NULL,
		latitude     REAL NOT NULL,
		longitude    REAL NOT NULL,
		status       TEXT NOT NULL,
		last_updated TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create %s table: %w", table, err)
	}
	return nil
}

// ReplaceAll swaps the table contents for records in one transaction. Rows
// are written as given except that a repeated id keeps its first row.
func (s *Source) ReplaceAll(ctx context.Context, records []domain.Record) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+table+`
		(id, project_name, latitude, longitude, status, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range domain.UniqueByID(records) {
		if _, err := stmt.ExecContext(ctx,
			string(r.ID), r.Name, r.Latitude, r.Longitude, string(r.Status),
			r.LastUpdated.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

func (s *Source) Load(ctx context.Context) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_name, latitude, longitude, status, last_updated
		FROM `+table+`
		ORDER BY id`)
	if err != nil {
		return nil, wrap(err)
	}
	defer func() { _ = rows.Close() }()

	var (
		records []domain.Record
		bad     int
	)
	for rows.Next() {
		var (
			r              domain.Record
			id, status, ts string
		)
		if err := rows.Scan(&id, &r.Name, &r.Latitude, &r.Longitude, &status, &ts); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", recordsource.ErrMalformed, err)
		}
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			bad++
			continue
		}
		r.ID = domain.RecordID(id)
		r.Status = domain.Status(status)
		r.LastUpdated = t.UTC()
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}

	valid, problems := domain.ValidateRecordSet(records)
	if dropped := bad + len(problems); dropped > 0 {
		s.log.Warn("records_dropped", "source", "sqlite", "count", dropped)
	}
	return valid, nil
}

func wrap(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if strings.Contains(err.Error(), "no such table") {
		return fmt.Errorf("%w: table %s does not exist", recordsource.ErrUnavailable, table)
	}
	return fmt.Errorf("%w: %w", recordsource.ErrUnavailable, err)
}
