package wiki

import (
	"slices"

	"github.com/JakeFAU/survivor-stats/internal/htmltable"
	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// Row layout of the voting history table once its caption row is dropped.
const (
	voteHeaderRows = 5 // Episode, Day, Tribe, Eliminated, Vote
	firstVoterRow  = 7
)

type voting struct {
	// called and histories are in contestant-table order.
	called    []string
	histories [][]string
	tribals   []survivor.TribalCouncil
}

func (p *seasonParser) votes() (voting, error) {
	t, err := p.table(p.season.Tables.Votes)
	if err != nil {
		return voting{}, err
	}
	rows := htmltable.Rows(t.Find("tr"))
	if len(rows) < 2 {
		return voting{}, htmltable.ErrEmpty
	}
	opts := htmltable.Options{}
	if p.season.Quirks.VoteHistoryFirstRowExtra {
		opts.WidthAdjust = -1
	}
	grid, err := htmltable.Expand(rows[1:], opts)
	if err != nil {
		return voting{}, err
	}
	if n := p.season.Quirks.VoteHistoryLeadingColumns; n > 0 {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i + 1
		}
		grid = grid.DropColumns(idx...)
	}

	v := voting{tribals: make([]survivor.TribalCouncil, grid.Width-1)}
	for i := range v.tribals {
		v.tribals[i].Ballots = make(map[string]string)
	}
	for i, row := range grid.Rows {
		if i == voteHeaderRows || i == voteHeaderRows+1 {
			continue
		}
		label := row[0].Text
		if renamed, ok := p.season.Quirks.VoteHistoryRenames[label]; ok {
			label = renamed
		}
		for j := 1; j < grid.Width; j++ {
			if row[j].Empty() {
				continue
			}
			setTribalField(&v.tribals[j-1], label, row[j].Text, i >= firstVoterRow)
		}
	}

	if grid.Len() > firstVoterRow {
		for _, row := range grid.Rows[firstVoterRow:] {
			votes := make([]string, 0, len(row)-1)
			for _, c := range row[1:] {
				if !c.Empty() {
					votes = append(votes, c.Text)
				}
			}
			v.called = append(v.called, row[0].Text)
			v.histories = append(v.histories, votes)
		}
	}
	// The table lists the last player standing first.
	slices.Reverse(v.called)
	slices.Reverse(v.histories)
	return v, nil
}

func setTribalField(tc *survivor.TribalCouncil, label, value string, voter bool) {
	if voter {
		tc.Ballots[label] = value
		return
	}
	switch label {
	case "Episode":
		tc.Episode = value
	case "Day":
		tc.Day = value
	case "Tribe":
		tc.Tribe = value
	case "Eliminated":
		tc.Eliminated = value
	case "Vote", "Votes":
		tc.Votes = value
	}
}
