package analysis

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

func TestSearchTermForDuplicateNames(t *testing.T) {
	t.Parallel()

	eliminated := map[string]int{"Sue H.": 2}
	dupes := duplicateNames([]string{"Sue H.", "Sue W.", "Rudy"}, eliminated)

	// Sue W. outlasted Sue H., so after episode 2 she is just "Sue".
	assert.Equal(t, "Sue W.", searchTerm("Sue W.", dupes, 2))
	assert.Equal(t, "Sue", searchTerm("Sue W.", dupes, 3))
	assert.Equal(t, "Sue H.", searchTerm("Sue H.", dupes, 5))
	assert.Equal(t, "Rudy", searchTerm("Rudy", dupes, 5))
}

func TestMentionFeatures(t *testing.T) {
	t.Parallel()

	contestants := []survivor.Contestant{
		{Name: "Alice Smith", Called: "Alice", SeasonNumber: 1, IsFinalist: true, IsWinner: true},
		{Name: "Bob Jones", Called: " Bob ", SeasonNumber: 1, IsFinalist: true},
		{Name: "Cara Lee", Called: "Cara", SeasonNumber: 1},
		{Name: "Dan Fox", Called: "Dan", SeasonNumber: 2, IsFinalist: true, IsWinner: true},
		{Name: "Eve Hill", Called: "Eve", SeasonNumber: 3, IsFinalist: true},
	}
	episodes := []survivor.Episode{
		{Number: "2", Description: "Alice and Bob, then Alice again.", SeasonNumber: 1, Eliminated: "Cara"},
		{Number: "1", Description: "Bob finds an idol.", SeasonNumber: 1},
		{Number: "1", Description: "Bob finds an idol.", SeasonNumber: 1},
		{Number: "3", Description: "Alice wins.", SeasonNumber: 1},
		{Number: "1", Description: "Dan.", SeasonNumber: 2},
		{Number: "1", Description: "Eve Eve Eve", SeasonNumber: 3},
	}
	got := MentionFeatures(contestants, episodes, []int{3})

	assert.Equal(t, []string{"Alice Smith", "Bob Jones", "Dan Fox"}, got.Names)
	assert.Equal(t, []int{1, 0, 1}, got.Y)
	require.Len(t, got.X, 3)
	assert.Equal(t, []float64{0, 2, 1}, got.X[0])
	assert.Equal(t, []float64{1, 1, 0}, got.X[1])
	assert.Equal(t, []float64{1, 0, 0}, got.X[2])
}

func TestClassifyMentions(t *testing.T) {
	t.Parallel()

	var samples MentionSamples
	for i := 0; i < 40; i++ {
		winner := i%3 == 0
		row := []float64{float64(i % 2), 1, float64(i % 5)}
		label := 0
		if winner {
			row[0] += 6
			label = 1
		}
		samples.Names = append(samples.Names, fmt.Sprint(i))
		samples.X = append(samples.X, row)
		samples.Y = append(samples.Y, label)
	}

	cfg := MentionsConfig{Iterations: 20, TestFraction: 0.3, SelectFeatures: 1, Seed: 42}
	res, err := ClassifyMentions(samples, cfg)
	require.NoError(t, err)
	assert.Equal(t, 40, res.Samples)
	assert.Equal(t, 3, res.Features)
	assert.Equal(t, 20, res.Iterations+res.Skipped)
	assert.Greater(t, res.Selected.TestAccuracy, 90.0)

	cm := res.All.Confusion
	// ceil(0.3*40) = 12 test samples per split.
	assert.InDelta(t, 12, cm[0][0]+cm[0][1]+cm[1][0]+cm[1][1], 1e-9)

	again, err := ClassifyMentions(samples, cfg)
	require.NoError(t, err)
	assert.Equal(t, res, again, "same seed, same result")

	_, err = ClassifyMentions(MentionSamples{}, cfg)
	assert.Error(t, err)
	_, err = ClassifyMentions(samples, MentionsConfig{TestFraction: 0.3})
	assert.Error(t, err)
}

func TestClassifyMentionsAveragesAllFeaturesOverEverySplit(t *testing.T) {
	t.Parallel()

	// A single winner: feature elimination cannot fit a split that puts it
	// in the test set, but naive Bayes on every feature still can.
	var samples MentionSamples
	for i := 0; i < 10; i++ {
		label := 0
		if i == 0 {
			label = 1
		}
		samples.Names = append(samples.Names, fmt.Sprint(i))
		samples.X = append(samples.X, []float64{float64(i), float64(i % 3), float64(10 - i)})
		samples.Y = append(samples.Y, label)
	}

	cfg := MentionsConfig{Iterations: 50, TestFraction: 0.3, SelectFeatures: 1, Seed: 7}
	res, err := ClassifyMentions(samples, cfg)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Splits)
	assert.Equal(t, 50, res.Iterations+res.Skipped)
	require.Positive(t, res.Skipped)
	require.Positive(t, res.Iterations)

	// The winner reaches the test set exactly in the skipped splits.
	all := res.All.Confusion
	assert.InDelta(t, float64(res.Skipped)/50, all[1][0]+all[1][1], 1e-9)
	assert.InDelta(t, 3, all[0][0]+all[0][1]+all[1][0]+all[1][1], 1e-9)
	sel := res.Selected.Confusion
	assert.InDelta(t, 0, sel[1][0]+sel[1][1], 1e-9)
}

func TestMentionsOutputs(t *testing.T) {
	t.Parallel()

	res := MentionsResult{Samples: 10, Features: 3, Splits: 6, Iterations: 5, Skipped: 1}
	res.All.TrainAccuracy = 81.25
	res.All.Confusion[1][1] = 1.5

	var buf bytes.Buffer
	RenderMentions(&buf, res)
	assert.Contains(t, buf.String(), "81.25")
	assert.Contains(t, buf.String(), "1 splits skipped")

	buf.Reset()
	require.NoError(t, WriteMentionsCSV(&buf, res))
	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, MentionsHeader, recs[0])
	assert.Equal(t, "1.500", recs[1][6])
}

func TestWriteBreakdownCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteBreakdownCSV(&buf, StateHeader, sampleRows()[:2]))
	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Len(t, recs[0], 12)
	assert.Equal(t, []string{"California", "60", "60", "0", "0", "35", "0", "0", "12", "0", "0", "4"}, recs[2])

	buf.Reset()
	RenderBreakdown(&buf, "States", StateHeader, sampleRows())
	assert.Contains(t, buf.String(), "California")
}
