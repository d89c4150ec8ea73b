package recordsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/Overland-East-Bay/geo-projects-view/internal/adapters/postgres"
	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/recordsource"
)

const DefaultTable = "geo_projects"

var identRE = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Source is a Postgres implementation of recordsource.Source.
type Source struct {
	pool  *pgxpool.Pool
	table string
	log   *slog.Logger
}

// NewSource reads from table (DefaultTable when empty). Table names are
// restricted to lower-case identifiers.
func NewSource(pool *pgxpool.Pool, table string, log *slog.Logger) (*Source, error) {
	if table == "" {
		table = DefaultTable
	}
	if !identRE.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Source{pool: pool, table: table, log: log}, nil
}

func (s *Source) EnsureSchema(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+s.table+` (
			id           TEXT PRIMARY KEY,
			project_name TEXT NOT NULL,
			latitude     DOUBLE PRECISION NOT NULL,
			longitude    DOUBLE PRECISION NOT NULL,
			status       TEXT NOT NULL,
			last_updated TIMESTAMPTZ NOT NULL
		)
	`)
	return err
}

// ReplaceAll swaps the table contents for records in one transaction. Rows
// are written as given except that a repeated id keeps its first row.
func (s *Source) ReplaceAll(ctx context.Context, records []domain.Record) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	records = domain.UniqueByID(records)
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM `+s.table); err != nil {
			return err
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{s.table},
			[]string{"id", "project_name", "latitude", "longitude", "status", "last_updated"},
			pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
				r := records[i]
				return []any{string(r.ID), r.Name, r.Latitude, r.Longitude, string(r.Status), r.LastUpdated.UTC()}, nil
			}),
		)
		return err
	})
}

func (s *Source) Drop(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := s.pool.Exec(ctx, `DROP TABLE IF EXISTS `+s.table)
	return err
}

func (s *Source) Load(ctx context.Context) ([]domain.Record, error) {
	if s.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, project_name, latitude, longitude, status, last_updated
		FROM `+s.table+`
		ORDER BY id
	`)
	if err != nil {
		return nil, s.wrap(err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Record, error) {
		var (
			r      domain.Record
			id     string
			status string
			ts     time.Time
		)
		if err := row.Scan(&id, &r.Name, &r.Latitude, &r.Longitude, &status, &ts); err != nil {
			return domain.Record{}, err
		}
		r.ID = domain.RecordID(id)
		r.Status = domain.Status(status)
		r.LastUpdated = ts.UTC()
		return r, nil
	})
	if err != nil {
		return nil, s.wrap(err)
	}

	valid, problems := domain.ValidateRecordSet(records)
	if len(problems) > 0 {
		s.log.Warn("records_dropped", "source", "postgres", "count", len(problems), "first", problems[0].Error())
	}
	return valid, nil
}

func (s *Source) wrap(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UndefinedTableCode {
		return fmt.Errorf("%w: table %s does not exist", recordsource.ErrUnavailable, s.table)
	}
	return fmt.Errorf("%w: %w", recordsource.ErrUnavailable, err)
}
