package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/survivor-stats/internal/analysis"
	"github.com/JakeFAU/survivor-stats/internal/catalog"
	"github.com/JakeFAU/survivor-stats/internal/hash/sha256"
	pubmem "github.com/JakeFAU/survivor-stats/internal/publisher/memory"
	blobmem "github.com/JakeFAU/survivor-stats/internal/storage/memory"
	"github.com/JakeFAU/survivor-stats/internal/store"
	"github.com/JakeFAU/survivor-stats/internal/store/memory"
	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fixedIDs struct{ id string }

func (f fixedIDs) NewID() (string, error) { return f.id, nil }

type fakeScraper struct {
	results map[int]survivor.SeasonResult
	seen    []string
}

func (f *fakeScraper) Scrape(ctx context.Context, season catalog.Season) (survivor.SeasonResult, error) {
	f.seen = append(f.seen, RunID(ctx))
	r, ok := f.results[season.Number]
	if !ok {
		return survivor.SeasonResult{}, errors.New("no winner found")
	}
	return r, nil
}

type failingRepo struct {
	*memory.Repository
}

func (failingRepo) SaveSeason(context.Context, survivor.SeasonResult) error {
	return errors.New("disk full")
}

func seasonResult(n int, winner string) survivor.SeasonResult {
	return survivor.SeasonResult{
		Stats: survivor.SeasonStats{Number: n, Name: "Season", Winner: winner},
		Contestants: []survivor.Contestant{
			{Name: winner, SeasonNumber: n, IsWinner: true, IsFinalist: true, IsOnJury: true, From: "Austin, Texas", Age: "30"},
			{Name: "Runner " + winner, Called: "Runner", SeasonNumber: n, IsFinalist: true, IsOnJury: true, From: "Toronto, Ontario", Age: "40"},
		},
		Episodes: []survivor.Episode{{Number: "1", SeasonNumber: n, Description: winner + " leads.", Ballots: map[string]string{}}},
	}
}

func deps(scraper SeasonScraper, repo survivor.Repository) (Deps, *blobmem.BlobStore, *pubmem.Publisher) {
	blobs := blobmem.NewBlobStore()
	pub := pubmem.New()
	return Deps{
		Scraper:   scraper,
		Repo:      repo,
		Blobs:     blobs,
		Publisher: pub,
		IDs:       fixedIDs{id: "run-1"},
		Clock:     fixedClock{t: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
	}, blobs, pub
}

func TestNewBuilderValidation(t *testing.T) {
	t.Parallel()
	_, err := NewBuilder(Deps{}, Options{})
	require.Error(t, err)
	_, err = NewBuilder(Deps{Scraper: &fakeScraper{}, Repo: memory.New()}, Options{})
	require.Error(t, err)
}

func TestBuildSkipsFailedSeasons(t *testing.T) {
	t.Parallel()
	scraper := &fakeScraper{results: map[int]survivor.SeasonResult{
		1: seasonResult(1, "Richard Hatch"),
		3: seasonResult(3, "Ethan Zohn"),
	}}
	repo := memory.New()
	d, blobs, pub := deps(scraper, repo)
	b, err := NewBuilder(d, Options{})
	require.NoError(t, err)

	report, err := b.Build(context.Background(), []catalog.Season{{Number: 1}, {Number: 2}, {Number: 3}})
	require.NoError(t, err)

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, 2, report.Seasons)
	assert.Equal(t, 4, report.Contestants)
	assert.Equal(t, 2, report.Episodes)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 2, report.Skipped[0].Number)
	assert.Equal(t, []string{"run-1", "run-1", "run-1"}, scraper.seen)

	_, ok := repo.Season(2)
	assert.False(t, ok)
	stored, err := repo.Seasons(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "Ethan Zohn", stored[1].Winner)

	assert.Equal(t, []string{
		"exports/run-1/all_contestants.csv",
		"exports/run-1/all_episodes.csv",
		"exports/run-1/all_seasons.csv",
	}, blobs.Paths())
	assert.Len(t, report.Artifacts, 3)

	msgs := pub.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, EventDatasetBuilt, msgs[0].Event)
	assert.Equal(t, "memory-1", report.EventID)
}

func TestBuildMergeKeepsOtherSeasons(t *testing.T) {
	t.Parallel()
	repo := memory.New()
	full := &fakeScraper{results: map[int]survivor.SeasonResult{
		1: seasonResult(1, "Richard Hatch"),
		2: seasonResult(2, "Tina Wesson"),
		3: seasonResult(3, "Ethan Zohn"),
	}}
	d, _, _ := deps(full, repo)
	b, err := NewBuilder(d, Options{})
	require.NoError(t, err)
	_, err = b.Build(context.Background(), []catalog.Season{{Number: 1}, {Number: 2}, {Number: 3}})
	require.NoError(t, err)

	rescrape := &fakeScraper{results: map[int]survivor.SeasonResult{2: seasonResult(2, "Colby Donaldson")}}
	d, _, _ = deps(rescrape, repo)
	partial, err := NewBuilder(d, Options{Merge: true})
	require.NoError(t, err)
	report, err := partial.Build(context.Background(), []catalog.Season{{Number: 2}})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Seasons)
	assert.Equal(t, 6, report.Contestants)

	stored, err := repo.Seasons(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, []string{"Richard Hatch", "Colby Donaldson", "Ethan Zohn"},
		[]string{stored[0].Winner, stored[1].Winner, stored[2].Winner})
	two := 2
	contestants, err := repo.Contestants(context.Background(), survivor.ContestantFilter{Season: &two})
	require.NoError(t, err)
	assert.Len(t, contestants, 2)
	episodes, err := repo.Episodes(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, episodes, 3)
}

func TestBuildMergeWithoutStoredDataset(t *testing.T) {
	t.Parallel()
	repo := memory.New()
	d, _, _ := deps(&fakeScraper{results: map[int]survivor.SeasonResult{4: seasonResult(4, "Vecepia Towery")}}, repo)
	b, err := NewBuilder(d, Options{Merge: true})
	require.NoError(t, err)
	report, err := b.Build(context.Background(), []catalog.Season{{Number: 4}})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Seasons)
	stored, err := repo.Seasons(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
}

func TestBuildWriteFailure(t *testing.T) {
	t.Parallel()
	scraper := &fakeScraper{results: map[int]survivor.SeasonResult{1: seasonResult(1, "Richard Hatch")}}
	repo := failingRepo{memory.New()}

	d, _, _ := deps(scraper, repo)
	strict, err := NewBuilder(d, Options{})
	require.NoError(t, err)
	_, err = strict.Build(context.Background(), []catalog.Season{{Number: 1}})
	require.ErrorContains(t, err, "save season 1")

	lenient, err := NewBuilder(d, Options{BestEffort: true})
	require.NoError(t, err)
	report, err := lenient.Build(context.Background(), []catalog.Season{{Number: 1}})
	require.NoError(t, err)
	assert.Equal(t, 1, report.WriteErrors)
	assert.Equal(t, 1, report.Seasons)
}

func TestBuildHonorsCancellation(t *testing.T) {
	t.Parallel()
	d, _, _ := deps(&fakeScraper{}, memory.New())
	b, err := NewBuilder(d, Options{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = b.Build(ctx, []catalog.Season{{Number: 1}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestTableCSV(t *testing.T) {
	t.Parallel()
	data, err := tableCSV(store.CastBios, store.CastRows([]survivor.CastMember{
		{Name: "Parvati Shallow", SeasonNumber: 13, BioURL: "https://example.com/p", MatchedName: "Parvati Shallow", MatchScore: 1},
	}))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(store.CastBios.ColumnNames(), ","), lines[0])
	assert.Contains(t, lines[1], "Parvati Shallow,13,https://example.com/p")
}

func TestCell(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   any
		want string
	}{
		{"x", "x"},
		{7, "7"},
		{true, "true"},
		{1.5, "1.5"},
		{[]string{"a", "b"}, `["a","b"]`},
		{map[string]string{"A": "B"}, `{"A":"B"}`},
	}
	for _, tt := range tests {
		got, err := cell(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

type pageFetcher struct{ page survivor.Page }

func (p pageFetcher) Fetch(context.Context, string) (survivor.Page, error) { return p.page, nil }

func TestSnapshotFetcher(t *testing.T) {
	t.Parallel()
	blobs := blobmem.NewBlobStore()
	page := survivor.Page{URL: "https://en.wikipedia.org/wiki/Survivor", StatusCode: 200, Body: []byte("<html></html>")}
	f := NewSnapshotFetcher(pageFetcher{page: page}, blobs, sha256.New(), "snapshots", nil)

	got, err := f.Fetch(WithRunID(context.Background(), "r1"), page.URL)
	require.NoError(t, err)
	assert.Equal(t, page, got)

	paths := blobs.Paths()
	require.Len(t, paths, 1)
	assert.True(t, strings.HasPrefix(paths[0], "snapshots/r1/en.wikipedia.org/"))
	assert.True(t, strings.HasSuffix(paths[0], ".html"))
	body, _ := blobs.Get(paths[0])
	assert.Equal(t, page.Body, body)
}

func TestRunIDDefault(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "adhoc", RunID(context.Background()))
	assert.Equal(t, "x", RunID(WithRunID(context.Background(), "x")))
}

type fakeCast struct{ cast []survivor.CastMember }

func (f fakeCast) Scrape(context.Context) ([]survivor.CastMember, error) { return f.cast, nil }

func TestCastPipeline(t *testing.T) {
	t.Parallel()
	repo := memory.New()
	d, blobs, pub := deps(nil, repo)
	cast := fakeCast{cast: []survivor.CastMember{
		{Name: "Richard Hatch", SeasonNumber: 1},
		{Name: "Somebody Else", SeasonNumber: 1},
	}}
	p, err := NewCastPipeline(cast, d, CastOptions{MatchThreshold: 0.9})
	require.NoError(t, err)

	// Nothing stored yet: saved unlinked.
	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Members)
	assert.Zero(t, report.Linked)

	require.NoError(t, repo.SaveDataset(context.Background(), survivor.Dataset{
		Contestants: seasonResult(1, "Richard Hatch").Contestants,
	}))
	report, err = p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Linked)
	assert.Equal(t, "Richard Hatch", repo.Cast()[0].MatchedName)
	assert.Equal(t, "memory://nameSeasonBio.csv", report.Artifact)
	_, ok := blobs.Get("nameSeasonBio.csv")
	assert.True(t, ok)
	assert.Len(t, pub.Messages(), 2)
	assert.Equal(t, EventCastScraped, pub.Messages()[1].Event)
}

func TestAnalyzer(t *testing.T) {
	t.Parallel()
	repo := memory.New()
	var ds survivor.Dataset
	ds.Add(seasonResult(1, "Richard Hatch"))
	ds.Add(seasonResult(2, "Tina Wesson"))
	require.NoError(t, repo.SaveDataset(context.Background(), ds))

	blobs := blobmem.NewBlobStore()
	var out strings.Builder
	a, err := NewAnalyzer(repo, blobs, &out, AnalyzeOptions{OutputPrefix: "out"}, nil)
	require.NoError(t, err)

	states, err := a.States(context.Background())
	require.NoError(t, err)
	assert.Equal(t, analysis.Total, states[0].Key)
	assert.Contains(t, out.String(), "Texas")

	_, err = a.Ages(context.Background())
	require.NoError(t, err)

	for _, name := range []string{StateCSV, AgeCSV, AgeLine, "playersByState.html", "winnersByAgeRange.html"} {
		_, ok := blobs.Get("out/" + name)
		assert.True(t, ok, name)
	}
}

func TestAnalyzerWithoutData(t *testing.T) {
	t.Parallel()
	a, err := NewAnalyzer(memory.New(), nil, nil, AnalyzeOptions{}, nil)
	require.NoError(t, err)
	_, err = a.States(context.Background())
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = a.Mentions(context.Background())
	require.ErrorIs(t, err, store.ErrNotFound)
}
