// Package sqlite persists the scraped dataset in a single SQLite file.
// Schemas are flattened into table names as schema__table.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/JakeFAU/survivor-stats/internal/metrics"
	"github.com/JakeFAU/survivor-stats/internal/store"
	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// Memory opens a private in-memory database.
const Memory = ":memory:"

// Repository implements survivor.Repository on database/sql.
type Repository struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ survivor.Repository = (*Repository)(nil)

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("db.dsn is required")
	}
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{db: db, logger: logger.Named("sqlite")}, nil
}

// Close closes the database.
func (r *Repository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close sqlite: %w", err)
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

// SaveDataset replaces the overall tables, attempting each one.
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
	return queryAll(ctx, r.db, store.AllSeasons, query, nil, store.SeasonTargets)
}

// Contestants lists the contestants matching filter in insertion order.
func (r *Repository) Contestants(ctx context.Context, filter survivor.ContestantFilter) ([]survivor.Contestant, error) {
	where, args := store.ContestantWhere(filter, func(int) string { return "?" })
	query := selectSQL(store.AllContestants) + where + " ORDER BY season_number, rowid"
	return queryAll(ctx, r.db, store.AllContestants, query, args, store.ContestantTargets)
}

// Episodes lists episode rows, optionally for one season.
func (r *Repository) Episodes(ctx context.Context, season *int) ([]survivor.Episode, error) {
	query := selectSQL(store.AllEpisodes)
	var args []any
	if season != nil {
		query += " WHERE season_number = ?"
		args = append(args, *season)
	}
	query += " ORDER BY season_number, rowid"
	return queryAll(ctx, r.db, store.AllEpisodes, query, args, store.EpisodeTargets)
}

func (r *Repository) replace(ctx context.Context, t store.Table, rows [][]any) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace %s: %w", t, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range ddl(t) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("replace %s: %w", t, err)
		}
	}
	insert, err := tx.PrepareContext(ctx, insertSQL(t))
	if err != nil {
		return fmt.Errorf("prepare insert %s: %w", t, err)
	}
	defer insert.Close()
	for i, row := range rows {
		args, err := encodeRow(t, row)
		if err != nil {
			return fmt.Errorf("encode %s row %d: %w", t, i, err)
		}
		if _, err := insert.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %s row %d: %w", t, i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace %s: %w", t, err)
	}
	metrics.ObserveRows(t.Label(), len(rows))
	r.logger.Debug("table replaced", zap.String("table", t.String()), zap.Int("rows", len(rows)))
	return nil
}

func tableName(t store.Table) string {
	return quote(t.Schema + "__" + t.Name)
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func ddl(t store.Table) []string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = quote(c.Name) + " " + sqlType(c.Kind)
	}
	return []string{
		"DROP TABLE IF EXISTS " + tableName(t),
		"CREATE TABLE " + tableName(t) + " (" + strings.Join(cols, ", ") + ")",
	}
}

func sqlType(k store.Kind) string {
	switch k {
	case store.Int:
		return "INTEGER"
	case store.Bool:
		return "BOOLEAN"
	case store.Float:
		return "REAL"
	default:
		return "TEXT"
	}
}

func insertSQL(t store.Table) string {
	cols := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = quote(c.Name)
		marks[i] = "?"
	}
	return "INSERT INTO " + tableName(t) + " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
}

func selectSQL(t store.Table) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = quote(c.Name)
	}
	return "SELECT " + strings.Join(cols, ", ") + " FROM " + tableName(t)
}

// encodeRow stores list and map columns as JSON text.
func encodeRow(t store.Table, row []any) ([]any, error) {
	out := make([]any, len(row))
	for i, v := range row {
		switch t.Columns[i].Kind {
		case store.List, store.JSON:
			b, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			out[i] = string(b)
		default:
			out[i] = v
		}
	}
	return out, nil
}

// jsonColumn scans JSON text into dst.
type jsonColumn struct {
	dst any
}

func (j jsonColumn) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
	return json.Unmarshal(b, j.dst)
}

func queryAll[T any](ctx context.Context, db *sql.DB, t store.Table, query string, args []any, targets func(*T) []any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return nil, fmt.Errorf("query %s: %w", t, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query %s: %w", t, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var v T
		dst := targets(&v)
		for i, c := range t.Columns {
			if c.Kind == store.List || c.Kind == store.JSON {
				dst[i] = jsonColumn{dst: dst[i]}
			}
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", t, err)
	}
	return out, nil
}
