// Package memory is an in-process survivor.Repository used by tests and
// when no database is configured.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/JakeFAU/survivor-stats/internal/metrics"
	"github.com/JakeFAU/survivor-stats/internal/store"
	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// Repository keeps the latest copy of every table in memory.
type Repository struct {
	mu      sync.RWMutex
	seasons map[int]survivor.SeasonResult
	dataset *survivor.Dataset
	cast    []survivor.CastMember
}

var _ survivor.Repository = (*Repository)(nil)

// New returns an empty repository.
func New() *Repository {
	return &Repository{seasons: make(map[int]survivor.SeasonResult)}
}

// SaveSeason stores one season's tables.
func (r *Repository) SaveSeason(_ context.Context, result survivor.SeasonResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seasons[result.Stats.Number] = result
	metrics.ObserveRows(store.SchemaContestants, len(result.Contestants))
	metrics.ObserveRows(store.SchemaEpisodes, len(result.Episodes))
	return nil
}

// SaveDataset replaces the overall tables.
func (r *Repository) SaveDataset(_ context.Context, dataset survivor.Dataset) error {
	cp := survivor.Dataset{
		Seasons:     slices.Clone(dataset.Seasons),
		Contestants: slices.Clone(dataset.Contestants),
		Episodes:    slices.Clone(dataset.Episodes),
	}
	r.mu.Lock()
	r.dataset = &cp
	r.mu.Unlock()
	metrics.ObserveRows(store.AllSeasons.Name, len(cp.Seasons))
	metrics.ObserveRows(store.AllContestants.Name, len(cp.Contestants))
	metrics.ObserveRows(store.AllEpisodes.Name, len(cp.Episodes))
	return nil
}

// SaveCast replaces the cast bio table.
func (r *Repository) SaveCast(_ context.Context, cast []survivor.CastMember) error {
	r.mu.Lock()
	r.cast = slices.Clone(cast)
	r.mu.Unlock()
	metrics.ObserveRows(store.CastBios.Name, len(cast))
	return nil
}

// Season returns the per-season tables saved for n.
func (r *Repository) Season(n int) (survivor.SeasonResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.seasons[n]
	return res, ok
}

// Cast returns the saved cast bios.
func (r *Repository) Cast() []survivor.CastMember {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.cast)
}

// Seasons lists every season ordered by number.
func (r *Repository) Seasons(context.Context) ([]survivor.SeasonStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.dataset == nil {
		return nil, store.ErrNotFound
	}
	out := slices.Clone(r.dataset.Seasons)
	slices.SortStableFunc(out, func(a, b survivor.SeasonStats) int { return a.Number - b.Number })
	return out, nil
}

// Contestants lists the contestants matching filter.
func (r *Repository) Contestants(_ context.Context, filter survivor.ContestantFilter) ([]survivor.Contestant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.dataset == nil {
		return nil, store.ErrNotFound
	}
	var out []survivor.Contestant
	for _, c := range r.dataset.Contestants {
		if filter.Match(c) {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b survivor.Contestant) int { return a.SeasonNumber - b.SeasonNumber })
	return out, nil
}

// Episodes lists episode rows, optionally for one season.
func (r *Repository) Episodes(_ context.Context, season *int) ([]survivor.Episode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.dataset == nil {
		return nil, store.ErrNotFound
	}
	var out []survivor.Episode
	for _, e := range r.dataset.Episodes {
		if season == nil || e.SeasonNumber == *season {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b survivor.Episode) int { return a.SeasonNumber - b.SeasonNumber })
	return out, nil
}

// Close is a no-op.
func (r *Repository) Close() error { return nil }
