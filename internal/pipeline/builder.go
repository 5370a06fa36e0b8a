package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/survivor-stats/internal/catalog"
	"github.com/JakeFAU/survivor-stats/internal/logging"
	"github.com/JakeFAU/survivor-stats/internal/metrics"
	"github.com/JakeFAU/survivor-stats/internal/store"
	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// EventDatasetBuilt is published after a dataset build.
const EventDatasetBuilt = "dataset.built"

// SeasonScraper turns one catalog season into its tables.
type SeasonScraper interface {
	Scrape(ctx context.Context, season catalog.Season) (survivor.SeasonResult, error)
}

// Deps are the collaborators of a Builder. Blobs and Publisher are optional.
type Deps struct {
	Scraper   SeasonScraper
	Repo      survivor.Repository
	Blobs     survivor.BlobStore
	Publisher survivor.Publisher
	IDs       survivor.IDGenerator
	Clock     survivor.Clock
	Logger    *zap.Logger
}

// Options tune a Builder.
type Options struct {
	// BestEffort logs failed table writes and carries on.
	BestEffort bool
	// ExportPrefix is the directory for CSV exports; a run id is appended.
	ExportPrefix string
	// Merge keeps the stored overall rows of seasons not scraped in this
	// run. Set it when only a subset of the catalog is selected.
	Merge bool
}

// SkippedSeason records a season left out of the dataset.
type SkippedSeason struct {
	Number int    `json:"season_number"`
	Reason string `json:"reason"`
}

// DatasetEvent is published once the overall tables are written.
type DatasetEvent struct {
	RunID       string          `json:"run_id"`
	Seasons     int             `json:"seasons"`
	Contestants int             `json:"contestants"`
	Episodes    int             `json:"episodes"`
	Skipped     []SkippedSeason `json:"skipped"`
	WriteErrors int             `json:"write_errors"`
	Artifacts   []string        `json:"artifacts"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt time.Time       `json:"completed_at"`
}

// BuildReport is the outcome of Builder.Build.
type BuildReport struct {
	DatasetEvent
	Dataset survivor.Dataset `json:"-"`
	EventID string           `json:"-"`
}

// Builder scrapes catalog seasons and replaces the dataset tables.
type Builder struct {
	deps Deps
	opts Options
	log  *zap.Logger
}

// NewBuilder validates deps and returns a Builder.
func NewBuilder(deps Deps, opts Options) (*Builder, error) {
	switch {
	case deps.Scraper == nil:
		return nil, errors.New("pipeline: scraper is required")
	case deps.Repo == nil:
		return nil, errors.New("pipeline: repository is required")
	case deps.IDs == nil:
		return nil, errors.New("pipeline: id generator is required")
	case deps.Clock == nil:
		return nil, errors.New("pipeline: clock is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if opts.ExportPrefix == "" {
		opts.ExportPrefix = "exports"
	}
	return &Builder{deps: deps, opts: opts, log: deps.Logger.Named("builder")}, nil
}

// Build scrapes seasons in order. A season that fails to scrape is logged
// and skipped; its per-season tables are left untouched.
func (b *Builder) Build(ctx context.Context, seasons []catalog.Season) (BuildReport, error) {
	runID, err := b.deps.IDs.NewID()
	if err != nil {
		return BuildReport{}, fmt.Errorf("new run id: %w", err)
	}
	ctx = WithRunID(ctx, runID)
	log := logging.ForRun(b.deps.Logger, "builder", runID)
	report := BuildReport{DatasetEvent: DatasetEvent{
		RunID:     runID,
		StartedAt: b.deps.Clock.Now(),
		Skipped:   []SkippedSeason{},
		Artifacts: []string{},
	}}
	log.Info("dataset build started", zap.Int("seasons", len(seasons)))

	for _, season := range seasons {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("build interrupted: %w", err)
		}
		seasonLog := log.With(zap.Int("season", season.Number))
		result, err := b.deps.Scraper.Scrape(ctx, season)
		if err != nil {
			metrics.ObserveSeason("skipped")
			seasonLog.Warn("skipping season", zap.Error(err))
			report.Skipped = append(report.Skipped, SkippedSeason{Number: season.Number, Reason: err.Error()})
			continue
		}
		metrics.ObserveSeason("ok")
		if err := b.write(ctx, &report, func(ctx context.Context) error {
			return b.deps.Repo.SaveSeason(ctx, result)
		}); err != nil {
			return report, fmt.Errorf("save season %d: %w", season.Number, err)
		}
		report.Dataset.Add(result)
		seasonLog.Info("season scraped",
			zap.String("winner", result.Stats.Winner),
			zap.Int("contestants", len(result.Contestants)),
			zap.Int("episodes", len(result.Episodes)))
	}

	if b.opts.Merge {
		merged, err := b.merge(ctx, report.Dataset)
		if err != nil {
			return report, fmt.Errorf("load stored dataset: %w", err)
		}
		report.Dataset = merged
	}
	if err := b.write(ctx, &report, func(ctx context.Context) error {
		return b.deps.Repo.SaveDataset(ctx, report.Dataset)
	}); err != nil {
		return report, fmt.Errorf("save dataset: %w", err)
	}
	b.export(ctx, &report, log)

	report.Seasons = len(report.Dataset.Seasons)
	report.Contestants = len(report.Dataset.Contestants)
	report.Episodes = len(report.Dataset.Episodes)
	report.CompletedAt = b.deps.Clock.Now()
	if b.deps.Publisher != nil {
		id, err := b.deps.Publisher.Publish(ctx, EventDatasetBuilt, report.DatasetEvent)
		if err != nil {
			log.Warn("publish dataset event failed", zap.Error(err))
		} else {
			report.EventID = id
		}
	}
	log.Info("dataset build finished",
		zap.Int("seasons", report.Seasons),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("write_errors", report.WriteErrors))
	return report, nil
}

// merge overlays scraped onto the stored overall tables. Stored rows of a
// season present in scraped are dropped in favour of the fresh ones.
func (b *Builder) merge(ctx context.Context, scraped survivor.Dataset) (survivor.Dataset, error) {
	fresh := make(map[int]bool, len(scraped.Seasons))
	for _, s := range scraped.Seasons {
		fresh[s.Number] = true
	}
	var out survivor.Dataset
	seasons, err := b.deps.Repo.Seasons(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return scraped, nil
	case err != nil:
		return out, err
	}
	contestants, err := b.deps.Repo.Contestants(ctx, survivor.ContestantFilter{})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return out, err
	}
	episodes, err := b.deps.Repo.Episodes(ctx, nil)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return out, err
	}
	for _, s := range seasons {
		if !fresh[s.Number] {
			out.Seasons = append(out.Seasons, s)
		}
	}
	for _, c := range contestants {
		if !fresh[c.SeasonNumber] {
			out.Contestants = append(out.Contestants, c)
		}
	}
	for _, e := range episodes {
		if !fresh[e.SeasonNumber] {
			out.Episodes = append(out.Episodes, e)
		}
	}
	out.Seasons = append(out.Seasons, scraped.Seasons...)
	out.Contestants = append(out.Contestants, scraped.Contestants...)
	out.Episodes = append(out.Episodes, scraped.Episodes...)
	slices.SortStableFunc(out.Seasons, func(x, y survivor.SeasonStats) int { return x.Number - y.Number })
	slices.SortStableFunc(out.Contestants, func(x, y survivor.Contestant) int { return x.SeasonNumber - y.SeasonNumber })
	slices.SortStableFunc(out.Episodes, func(x, y survivor.Episode) int { return x.SeasonNumber - y.SeasonNumber })
	return out, nil
}

// write runs fn, logging and counting the failure when best effort is on.
func (b *Builder) write(ctx context.Context, report *BuildReport, fn func(context.Context) error) error {
	err := fn(ctx)
	if err == nil {
		return nil
	}
	report.WriteErrors++
	if !b.opts.BestEffort {
		return err
	}
	b.log.Error("table write failed", zap.String("run_id", report.RunID), zap.Error(err))
	return nil
}

func (b *Builder) export(ctx context.Context, report *BuildReport, log *zap.Logger) {
	if b.deps.Blobs == nil {
		return
	}
	dir := path.Join(b.opts.ExportPrefix, report.RunID)
	exports := []struct {
		table store.Table
		rows  [][]any
	}{
		{store.AllSeasons, store.SeasonRows(report.Dataset.Seasons)},
		{store.AllContestants, store.ContestantRows(report.Dataset.Contestants)},
		{store.AllEpisodes, store.EpisodeRows(report.Dataset.Episodes)},
	}
	for _, e := range exports {
		uri, err := putCSV(ctx, b.deps.Blobs, dir, e.table, e.rows)
		if err != nil {
			log.Warn("export failed", zap.String("table", e.table.String()), zap.Error(err))
			continue
		}
		report.Artifacts = append(report.Artifacts, uri)
	}
}
