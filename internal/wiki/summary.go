package wiki

import (
	"fmt"

	"github.com/JakeFAU/survivor-stats/internal/htmltable"
	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

const combinedWithImmunity = "Combined with Immunity"

type extraColumn int

const (
	exileColumn extraColumn = iota + 1
	redemptionColumn
	islandGameColumn
)

// extraSummaryColumns are season summary columns that are dropped; each
// marks a twist the season had.
var extraSummaryColumns = map[string]extraColumn{
	"Exile Island":        exileColumn,
	"Exiled":              exileColumn,
	"Redemption Island":   redemptionColumn,
	"Ghost Island":        islandGameColumn,
	"Island of the Idols": islandGameColumn,
	"Decision game":       islandGameColumn,
	"Decision game(s)":    islandGameColumn,
}

func (p *seasonParser) summary() ([]survivor.SummaryRow, error) {
	t, err := p.table(p.season.Tables.Summary)
	if err != nil {
		return nil, err
	}
	rows := htmltable.Rows(t.Find("tr"))
	if n := p.season.ReunionRows; n > 0 {
		if n >= len(rows) {
			return nil, fmt.Errorf("reunion_rows %d leaves no rows", n)
		}
		rows = rows[:len(rows)-n]
	}
	grid, err := htmltable.Expand(rows, htmltable.Options{})
	if err != nil {
		return nil, err
	}

	var drop []int
	for j, title := range grid.Texts(0) {
		kind, ok := extraSummaryColumns[title]
		if !ok {
			continue
		}
		drop = append(drop, j)
		switch kind {
		case exileColumn:
			p.stats.HasExileIsland = true
		case redemptionColumn:
			p.stats.HasRedemptionIsland = true
		case islandGameColumn:
			p.stats.HasIslandGame = true
		}
	}
	grid = grid.DropColumns(drop...).Slice(2, grid.Len())

	combined := false
	switch {
	case grid.Width == 7:
	case grid.Width == 6 && p.season.Quirks.CombinedRewardImmunity:
		combined = true
	default:
		return nil, fmt.Errorf("unexpected season summary width %d", grid.Width)
	}

	out := make([]survivor.SummaryRow, 0, grid.Len())
	for i := range grid.Rows {
		c := grid.Texts(i)
		row := survivor.SummaryRow{
			EpisodeNumber: c[0],
			EpisodeName:   unquote(c[1]),
			AirDate:       c[2],
		}
		if combined {
			row.RewardWinner = combinedWithImmunity
			row.ImmunityWinner, row.TribeToCouncil, row.EliminatedPlayer = c[3], c[4], c[5]
		} else {
			row.RewardWinner, row.ImmunityWinner = c[3], c[4]
			row.TribeToCouncil, row.EliminatedPlayer = c[5], c[6]
		}
		out = append(out, row)
	}
	return out, nil
}
