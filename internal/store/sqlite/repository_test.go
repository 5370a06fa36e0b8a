package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/survivor-stats/internal/store"
	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

func openMemory(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(context.Background(), Memory, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func sampleSeason(n int) survivor.SeasonResult {
	return survivor.SeasonResult{
		Stats: survivor.SeasonStats{Name: "Survivor: Test", Number: n, Winner: "Alice Smith", NumDays: 39, HasExileIsland: true},
		Contestants: []survivor.Contestant{
			{
				Name: "Bob Jones", Age: "30", From: "Austin, Texas",
				Placement: []string{"1st voted out"}, Day: []string{"Day 3"},
				Tribes: []string{"Tagi"}, Called: "Bob", VotingHistory: []string{"Cara"},
				SeasonNumber: n, VotedForFinalTribal: survivor.NotAvailable,
			},
			{
				Name: "Alice Smith", Age: "27", From: "Newport, Rhode Island",
				Placement: []string{"Sole Survivor"}, Day: []string{"Day 39"},
				Tribes: []string{"Tagi", "Rattana"}, Called: "Alice", VotingHistory: []string{"Bob"},
				IsFinalist: true, IsWinner: true, MadeMerge: true, SeasonNumber: n,
				VotedForFinalTribal: survivor.NotAvailable,
			},
		},
		Episodes: []survivor.Episode{{
			TotalNumber: "1", Number: "1", Name: "Pilot", Eliminated: "Bob",
			Ballots: map[string]string{"Alice": "Bob"}, NumberOfEliminations: 1, NumberOfVotes: 1, SeasonNumber: n,
		}},
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := openMemory(t)

	var dataset survivor.Dataset
	for _, n := range []int{2, 1} {
		res := sampleSeason(n)
		require.NoError(t, repo.SaveSeason(ctx, res))
		dataset.Add(res)
	}
	require.NoError(t, repo.SaveDataset(ctx, dataset))

	seasons, err := repo.Seasons(ctx)
	require.NoError(t, err)
	require.Len(t, seasons, 2)
	assert.Equal(t, 1, seasons[0].Number)
	assert.True(t, seasons[0].HasExileIsland)

	contestants, err := repo.Contestants(ctx, survivor.ContestantFilter{})
	require.NoError(t, err)
	require.Len(t, contestants, 4)
	assert.Equal(t, sampleSeason(1).Contestants, contestants[:2])

	episodes, err := repo.Episodes(ctx, nil)
	require.NoError(t, err)
	require.Len(t, episodes, 2)
	assert.Equal(t, map[string]string{"Alice": "Bob"}, episodes[0].Ballots)
}

func TestContestantFilters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := openMemory(t)
	var dataset survivor.Dataset
	dataset.Add(sampleSeason(1))
	dataset.Add(sampleSeason(2))
	require.NoError(t, repo.SaveDataset(ctx, dataset))

	season, yes := 2, true
	got, err := repo.Contestants(ctx, survivor.ContestantFilter{Season: &season, Winner: &yes})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Alice Smith", got[0].Name)
	assert.Equal(t, 2, got[0].SeasonNumber)

	episodes, err := repo.Episodes(ctx, &season)
	require.NoError(t, err)
	require.Len(t, episodes, 1)
}

func TestReplaceOverwrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := openMemory(t)
	require.NoError(t, repo.SaveCast(ctx, []survivor.CastMember{{Name: "A", SeasonNumber: 1}, {Name: "B", SeasonNumber: 1}}))
	require.NoError(t, repo.SaveCast(ctx, []survivor.CastMember{{Name: "C", SeasonNumber: 2, MatchScore: 0.93}}))

	var n int
	require.NoError(t, repo.db.QueryRow(`SELECT COUNT(*) FROM "overall__cast_bios"`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestMissingTable(t *testing.T) {
	t.Parallel()

	_, err := openMemory(t).Seasons(context.Background())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOpenFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", "survivor.db")
	repo, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	require.NoError(t, repo.SaveSeason(context.Background(), sampleSeason(3)))
	require.NoError(t, repo.Close())
	assert.FileExists(t, path)

	_, err = Open(context.Background(), " ", nil)
	assert.Error(t, err)
}
