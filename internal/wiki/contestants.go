package wiki

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/survivor-stats/internal/htmltable"
	"github.com/JakeFAU/survivor-stats/internal/normalize"
	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// Fixed leading columns of the contestant table; tribe columns follow.
const (
	nameColumn       = 0
	ageColumn        = 1
	fromColumn       = 2
	firstTribeColumn = 3
)

// possessive matches the loved-one suffix of Blood vs. Water names, as in
// "Laura Morett Ciera's mom".
var possessive = regexp.MustCompile(`[\p{L}\p{N}_.]+['’]s [\p{L}\p{N}_]+|[\p{L}\p{N}_.]+s['’] [\p{L}\p{N}_]+`)

// finish is where a contestant left the game, possibly more than once.
type finish struct {
	placement []string
	day       []string
}

func (p *seasonParser) contestants(v voting) ([]survivor.Contestant, error) {
	t, err := p.table(p.season.Tables.Contestants)
	if err != nil {
		return nil, err
	}
	tribeColumns, err := tribeColumnCount(t)
	if err != nil {
		return nil, err
	}
	t.Find("tr").First().ChildrenFiltered("th").EachWithBreak(func(_ int, th *goquery.Selection) bool {
		if htmltable.Text(th) == "Edge of Extinction" {
			p.stats.HasEdgeOfExtinction = true
			return false
		}
		return true
	})

	rows := htmltable.Rows(t.Find("tr"))
	if len(rows) <= 2 {
		return nil, htmltable.ErrEmpty
	}
	grid, err := htmltable.Expand(rows[2:], htmltable.Options{})
	if err != nil {
		return nil, err
	}
	twoExits := p.stats.HasRedemptionIsland || p.stats.HasEdgeOfExtinction
	tail := 2
	if twoExits {
		tail = 4
	}
	if grid.Width < firstTribeColumn+tribeColumns+tail {
		return nil, fmt.Errorf("contestant table has %d columns, want at least %d",
			grid.Width, firstTribeColumn+tribeColumns+tail)
	}

	reentered := make(map[string]*finish)
	var out []survivor.Contestant
	for _, row := range grid.Rows {
		name, returner, timesPlayed := p.contestantName(row)
		exit := rowFinish(row, twoExits)

		if strings.Contains(name, "Returned") || strings.Contains(name, "Remained") {
			p.stats.HasReentry = true
			name, _, _ = strings.Cut(name, " (")
			name = strings.TrimSpace(name)
			if prev, ok := reentered[name]; ok {
				prev.placement = append(prev.placement, exit.placement...)
				prev.day = append(prev.day, exit.day...)
			} else {
				reentered[name] = &exit
			}
			continue
		}
		if prev, ok := reentered[name]; ok {
			exit.placement = append(slices.Clone(prev.placement), exit.placement...)
			exit.day = append(slices.Clone(prev.day), exit.day...)
		}

		c := survivor.Contestant{
			Name:              name,
			Age:               row[ageColumn].Text,
			From:              row[fromColumn].Text,
			Placement:         exit.placement,
			Day:               exit.day,
			ReturningPlayer:   returner,
			TimesPlayedBefore: timesPlayed,
			SeasonNumber:      p.season.Number,
		}
		for _, cell := range row[firstTribeColumn : firstTribeColumn+tribeColumns] {
			if !cell.Empty() {
				c.Tribes = append(c.Tribes, cell.Text)
			}
		}
		if o, ok := p.season.Override(name); ok {
			c.Age, c.From = o.Age, o.From
			c.Tribes = slices.Clone(o.Tribes)
			c.Placement, c.Day = slices.Clone(o.Placement), slices.Clone(o.Day)
			c.ReturningPlayer, c.TimesPlayedBefore = o.ReturningPlayer, o.TimesPlayedBefore
		}
		out = append(out, c)
	}

	out = p.applyRowQuirks(out)
	for i := range out {
		out[i].Name = p.stripPossessive(out[i].Name)
		if out[i].ReturningPlayer {
			p.stats.NumReturningPlayers++
		}
	}

	if len(out) != len(v.called) {
		return nil, fmt.Errorf("%d contestants but %d voting history rows", len(out), len(v.called))
	}
	for i := range out {
		out[i].Called = v.called[i]
		out[i].VotingHistory = v.histories[i]
	}
	return out, nil
}

// tribeColumnCount reads the colspan of the "Tribe" header.
func tribeColumnCount(t *goquery.Selection) (int, error) {
	n := 0
	t.Find("th").EachWithBreak(func(_ int, th *goquery.Selection) bool {
		if strings.Contains(htmltable.Text(th), "Tribe") {
			n = htmltable.Span(th, "colspan")
			return false
		}
		return true
	})
	if n == 0 {
		return 0, errors.New("no tribe header")
	}
	return n, nil
}

// contestantName returns the player's name with past season titles removed,
// and whether (and how often) they played before. Past seasons are italic
// links in the name cell; italics reading "Returned" mark a re-entry instead.
func (p *seasonParser) contestantName(row []htmltable.Cell) (string, bool, int) {
	cell := row[nameColumn]
	for _, c := range row {
		if c.Header {
			cell = c
			break
		}
	}
	name := cell.Text
	if cell.Sel == nil {
		return name, false, 0
	}

	returner := false
	times := 0
	var pastSeasons []string
	cell.Sel.Find("i").Each(func(_ int, it *goquery.Selection) {
		text := htmltable.Text(it)
		if strings.Contains(text, "Returned") {
			return
		}
		if links := it.Find("a"); links.Length() > 0 {
			returner = true
			times = links.Length()
			links.Each(func(_ int, a *goquery.Selection) {
				pastSeasons = append(pastSeasons, htmltable.Text(a))
			})
			return
		}
		if goquery.NodeName(it.Parent()) == "a" {
			returner = true
			times = 1
			pastSeasons = append(pastSeasons, text)
		}
	})
	p.stats.HasReturningPlayers = p.stats.HasReturningPlayers || returner

	for _, past := range pastSeasons {
		if past != "" {
			name = strings.ReplaceAll(name, past, "")
		}
	}
	name = normalize.Collapse(strings.ReplaceAll(name, "&", ""))
	return name, returner, times
}

func rowFinish(row []htmltable.Cell, twoExits bool) finish {
	n := len(row)
	if twoExits {
		return finish{
			placement: []string{row[n-4].Text, row[n-2].Text},
			day:       []string{row[n-3].Text, row[n-1].Text},
		}
	}
	return finish{
		placement: []string{row[n-2].Text},
		day:       []string{row[n-1].Text},
	}
}

// applyRowQuirks applies positional tribe and name overrides, then drops rows.
func (p *seasonParser) applyRowQuirks(in []survivor.Contestant) []survivor.Contestant {
	q := p.season.Quirks
	for i, tribes := range q.TribeOverrides {
		if i >= 0 && i < len(in) {
			in[i].Tribes = slices.Clone(tribes)
		}
	}
	for i, name := range q.NameOverrides {
		if i >= 0 && i < len(in) {
			in[i].Name = name
		}
	}
	if len(q.DropContestantRows) == 0 {
		return in
	}
	out := make([]survivor.Contestant, 0, len(in))
	for i, c := range in {
		if !slices.Contains(q.DropContestantRows, i) {
			out = append(out, c)
		}
	}
	return out
}

// stripPossessive removes a Blood vs. Water relation ("Ciera's mom") from a
// name and marks the season when it finds one.
func (p *seasonParser) stripPossessive(name string) string {
	if strings.Contains(name, "'s ") || strings.Contains(name, "s' ") ||
		strings.Contains(name, "’s ") || strings.Contains(name, "s’ ") {
		p.stats.IsBloodVsWater = true
	}
	return normalize.Collapse(possessive.ReplaceAllString(name, ""))
}
