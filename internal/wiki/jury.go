package wiki

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/survivor-stats/internal/htmltable"
	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// Row layout of the final vote table.
const (
	juryDayRow      = 2
	juryFinalistRow = 3
	firstJurorRow   = 7
)

var digits = regexp.MustCompile(`\d+`)

// jury reads the final vote and completes each contestant's end-of-game flags.
func (p *seasonParser) jury(contestants []survivor.Contestant) error {
	t, err := p.table(p.season.Tables.Jury)
	if err != nil {
		return err
	}
	rows := htmltable.Rows(t.Find("tr"))
	if len(rows) <= juryFinalistRow {
		return fmt.Errorf("final vote table has %d rows", len(rows))
	}

	day := digits.FindString(htmltable.Text(rows[juryDayRow].Find("td").First()))
	if day == "" {
		return errors.New("final vote table has no day")
	}
	p.stats.NumDays, _ = strconv.Atoi(day)

	var finalists []string
	rows[juryFinalistRow].ChildrenFiltered("th, td").Each(func(i int, s *goquery.Selection) {
		if i > 0 {
			finalists = append(finalists, htmltable.Text(s))
		}
	})

	votes := make(map[string]string)
	if len(rows) > firstJurorRow {
		for _, row := range rows[firstJurorRow:] {
			cells := row.ChildrenFiltered("th, td")
			juror := htmltable.Text(cells.First())
			cells.Each(func(j int, s *goquery.Selection) {
				if j > 0 && j <= len(finalists) && s.Find("img").Length() > 0 {
					votes[juror] = finalists[j-1]
				}
			})
		}
	}
	for juror, finalist := range p.season.Quirks.JuryVoteOverrides {
		votes[juror] = finalist
	}

	for i := range contestants {
		c := &contestants[i]
		c.IsOnJury = slices.ContainsFunc(c.Placement, func(s string) bool {
			return strings.Contains(s, "jury")
		})
		c.IsFinalist = slices.Contains(finalists, c.Called)
		c.IsWinner = slices.Contains(c.Placement, "Sole Survivor")
		c.SeasonNumber = p.season.Number
		c.VotedForFinalTribal = survivor.NotAvailable
		if v, ok := votes[c.Called]; ok {
			c.VotedForFinalTribal = v
		}
		c.MadeMerge = slices.Contains(c.Tribes, p.season.MergeTribe)
	}
	p.stats.NumFinalTribal = len(finalists)
	return nil
}
