// Package postgres persists the scraped dataset in Postgres.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/JakeFAU/survivor-stats/internal/metrics"
	"github.com/JakeFAU/survivor-stats/internal/store"
	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

const undefinedTable = "42P01"

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// Repository implements survivor.Repository on a pgx pool.
type Repository struct {
	pool   pool
	logger *zap.Logger
}

var _ survivor.Repository = (*Repository)(nil)

// New connects to Postgres using cfg.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Repository, error) {
	if cfg.DSN == "" {
		return nil, errors.New("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewWithPool(p, logger)
}

// NewWithPool constructs a repository from an existing pool (primarily for testing).
func NewWithPool(p pool, logger *zap.Logger) (*Repository, error) {
	if p == nil {
		return nil, errors.New("pool is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{pool: p, logger: logger.Named("postgres")}, nil
}

// Close releases the underlying pool resources.
func (r *Repository) Close() error {
	if r != nil && r.pool != nil {
		r.pool.Close()
	}
	return nil
}

// SaveSeason replaces the per-season contestant and episode tables.
func (r *Repository) SaveSeason(ctx context.Context, result survivor.SeasonResult) error {
	n := result.Stats.Number
	return errors.Join(
		r.replace(ctx, store.SeasonContestants(n), store.ContestantRows(result.Contestants)),
		r.replace(ctx, store.SeasonEpisodes(n), store.EpisodeRows(result.Episodes)),
	)
}

// SaveDataset replaces the overall tables. Every table is attempted even if
// an earlier one fails.
func (r *Repository) SaveDataset(ctx context.Context, dataset survivor.Dataset) error {
	return errors.Join(
		r.replace(ctx, store.AllSeasons, store.SeasonRows(dataset.Seasons)),
		r.replace(ctx, store.AllContestants, store.ContestantRows(dataset.Contestants)),
		r.replace(ctx, store.AllEpisodes, store.EpisodeRows(dataset.Episodes)),
	)
}

// SaveCast replaces the cast bio table.
func (r *Repository) SaveCast(ctx context.Context, cast []survivor.CastMember) error {
	return r.replace(ctx, store.CastBios, store.CastRows(cast))
}

// Seasons lists every season ordered by number.
func (r *Repository) Seasons(ctx context.Context) ([]survivor.SeasonStats, error) {
	query := selectSQL(store.AllSeasons) + " ORDER BY season_number"
	return queryAll(ctx, r.pool, store.AllSeasons, query, nil, store.SeasonTargets)
}

// Contestants lists the contestants matching filter.
func (r *Repository) Contestants(ctx context.Context, filter survivor.ContestantFilter) ([]survivor.Contestant, error) {
	where, args := store.ContestantWhere(filter, func(n int) string { return fmt.Sprintf("$%d", n) })
	query := selectSQL(store.AllContestants) + where + " ORDER BY season_number"
	return queryAll(ctx, r.pool, store.AllContestants, query, args, store.ContestantTargets)
}

// Episodes lists episode rows, optionally for one season.
func (r *Repository) Episodes(ctx context.Context, season *int) ([]survivor.Episode, error) {
	query := selectSQL(store.AllEpisodes)
	var args []any
	if season != nil {
		query += " WHERE season_number = $1"
		args = append(args, *season)
	}
	query += " ORDER BY season_number"
	return queryAll(ctx, r.pool, store.AllEpisodes, query, args, store.EpisodeTargets)
}

// replace drops and recreates t, then bulk loads rows, in one transaction.
func (r *Repository) replace(ctx context.Context, t store.Table, rows [][]any) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace %s: %w", t, err)
	}
	for _, stmt := range ddl(t) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			rollback(ctx, tx)
			return fmt.Errorf("replace %s: %w", t, err)
		}
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{t.Schema, t.Name}, t.ColumnNames(), pgx.CopyFromRows(rows))
	if err != nil {
		rollback(ctx, tx)
		return fmt.Errorf("copy into %s: %w", t, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace %s: %w", t, err)
	}
	metrics.ObserveRows(t.Label(), int(n))
	r.logger.Debug("table replaced", zap.String("table", t.String()), zap.Int64("rows", n))
	return nil
}

func rollback(ctx context.Context, tx pgx.Tx) {
	_ = tx.Rollback(ctx)
}

func ddl(t store.Table) []string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = pgx.Identifier{c.Name}.Sanitize() + " " + sqlType(c.Kind)
	}
	qualified := pgx.Identifier{t.Schema, t.Name}.Sanitize()
	return []string{
		"CREATE SCHEMA IF NOT EXISTS " + pgx.Identifier{t.Schema}.Sanitize(),
		"DROP TABLE IF EXISTS " + qualified,
		"CREATE TABLE " + qualified + " (" + strings.Join(cols, ", ") + ")",
	}
}

func sqlType(k store.Kind) string {
	switch k {
	case store.Int:
		return "integer"
	case store.Bool:
		return "boolean"
	case store.Float:
		return "double precision"
	case store.List:
		return "text[]"
	case store.JSON:
		return "jsonb"
	default:
		return "text"
	}
}

func selectSQL(t store.Table) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = pgx.Identifier{c.Name}.Sanitize()
	}
	return "SELECT " + strings.Join(cols, ", ") + " FROM " + pgx.Identifier{t.Schema, t.Name}.Sanitize()
}

func queryAll[T any](ctx context.Context, p pool, t store.Table, query string, args []any, targets func(*T) []any) ([]T, error) {
	rows, err := p.Query(ctx, query, args...)
	if err != nil {
		return nil, queryError(t, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var v T
		if err := rows.Scan(targets(&v)...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(t, err)
	}
	return out, nil
}

// queryError maps a missing table to store.ErrNotFound.
func queryError(t store.Table, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return fmt.Errorf("query %s: %w", t, store.ErrNotFound)
	}
	return fmt.Errorf("query %s: %w", t, err)
}
