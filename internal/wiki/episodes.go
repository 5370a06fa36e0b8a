package wiki

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/survivor-stats/internal/htmltable"
	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

const noDescription = "None Found"

// episodes reads the episode list: a vevent row per episode, optionally
// followed by an expand-child row holding the synopsis.
func (p *seasonParser) episodes() ([]survivor.EpisodeInfo, error) {
	t, err := p.table(p.season.Tables.Episodes)
	if err != nil {
		return nil, err
	}
	rows := htmltable.Rows(t.Find("tr"))
	var out []survivor.EpisodeInfo
	for i := 1; i < len(rows)-1; i++ {
		if firstClass(rows[i]) != "vevent" {
			continue
		}
		cells := rows[i].ChildrenFiltered("th, td")
		if cells.Length() < 3 {
			continue
		}
		info := survivor.EpisodeInfo{
			TotalNumber:  htmltable.Text(cells.Eq(0)),
			SeasonNumber: htmltable.Text(cells.Eq(1)),
			Title:        unquote(htmltable.Text(cells.Eq(2))),
			Description:  noDescription,
		}
		if firstClass(rows[i+1]) == "expand-child" {
			info.Description = htmltable.Text(rows[i+1])
		}
		out = append(out, info)
	}
	return out, nil
}

func firstClass(s *goquery.Selection) string {
	class, _ := s.Attr("class")
	fields := strings.Fields(class)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// unquote strips the quotation marks Wikipedia puts around episode titles.
func unquote(s string) string {
	return strings.TrimSpace(strings.Trim(s, "\"“”"))
}
