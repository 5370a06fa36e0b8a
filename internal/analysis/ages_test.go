package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

func TestAgeBracket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		diff float64
		want int
	}{
		{-10.5, 0},
		{-10, 1},
		{-5.5, 1},
		{-5, 2},
		{-0.5, 2},
		{0, 3},
		{4.5, 3},
		{5, 4},
		{39.5, 10},
		{40, 11},
		{62, 11},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AgeBracket(tt.diff), "diff %v", tt.diff)
	}
	assert.Len(t, AgeBrackets, 12)
}

func TestMedian(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 3.0, Median([]float64{5, 1, 3}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 2, 3}))
}

func TestAges(t *testing.T) {
	t.Parallel()

	contestants := []survivor.Contestant{
		{SeasonNumber: 1, Age: "20"},
		{SeasonNumber: 1, Age: "30", IsOnJury: true},
		{SeasonNumber: 1, Age: "40", IsFinalist: true, IsWinner: true},
		{SeasonNumber: 2, Age: "25"},
		{SeasonNumber: 2, Age: "27"},
		{SeasonNumber: 2, Age: "N/A"},
	}
	rows, skipped := Ages(contestants)
	assert.Equal(t, 1, skipped)
	require.Len(t, rows, len(AgeBrackets)+1)

	byKey := map[string]Breakdown{}
	for _, r := range rows {
		byKey[r.Key] = r
	}
	assert.Equal(t, 5, byKey[Total].Players)
	assert.Equal(t, Total, rows[0].Key)
	// Season 1 median 30: -10, 0, +10. Season 2 median 26: -1, +1.
	assert.Equal(t, 1, byKey[AgeBrackets[1]].Players)
	assert.Equal(t, 1, byKey[AgeBrackets[2]].Players)
	assert.Equal(t, 2, byKey[AgeBrackets[3]].Players)
	assert.Equal(t, 1, byKey[AgeBrackets[5]].Players)
	assert.Equal(t, 1, byKey[AgeBrackets[5]].Winners)
	assert.InDelta(t, 100, byKey[AgeBrackets[5]].WinnerRate, 1e-9)
	assert.InDelta(t, 50, byKey[AgeBrackets[3]].JuryRate, 1e-9)
	// Brackets with equal counts keep their youngest-first order.
	assert.Equal(t, AgeBrackets[3], rows[1].Key)
	assert.Equal(t, AgeBrackets[1], rows[2].Key)
}
