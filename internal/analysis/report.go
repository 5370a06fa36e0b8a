package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
)

// MentionsHeader is the header of mentionsClassification.csv.
var MentionsHeader = []string{
	"Features", "Training Score", "Test Score",
	"True Loser Predicted Loser", "True Loser Predicted Winner",
	"True Winner Predicted Loser", "True Winner Predicted Winner",
}

func (r MentionsResult) rows() [][]string {
	row := func(name string, s Scores) []string {
		return []string{
			name, f2(s.TrainAccuracy), f2(s.TestAccuracy),
			f3(s.Confusion[0][0]), f3(s.Confusion[0][1]),
			f3(s.Confusion[1][0]), f3(s.Confusion[1][1]),
		}
	}
	return [][]string{
		row("All features", r.All),
		row("Selected features", r.Selected),
	}
}

// RenderMentions prints the averaged scores as a table.
func RenderMentions(w io.Writer, r MentionsResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("Winner prediction from episode mentions (%d finalists, %d episodes, %d splits)",
		r.Samples, r.Features, r.Splits))
	header := make(table.Row, len(MentionsHeader))
	for i, h := range MentionsHeader {
		header[i] = h
	}
	t.AppendHeader(header)
	for _, rec := range r.rows() {
		row := make(table.Row, len(rec))
		for i, v := range rec {
			row[i] = v
		}
		t.AppendRow(row)
	}
	if r.Skipped > 0 {
		t.AppendFooter(table.Row{fmt.Sprintf("%d splits skipped", r.Skipped)})
	}
	t.Render()
}

// WriteMentionsCSV writes the averaged scores as CSV.
func WriteMentionsCSV(w io.Writer, r MentionsResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(MentionsHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(r.rows()); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// RenderBreakdown prints a state or age table.
func RenderBreakdown(w io.Writer, title string, header []string, rows []Breakdown) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(title)
	t.AppendHeader(table.Row{header[0], "Players", "%", "Jury", "%", "% of group", "Finalists", "%", "% of group", "Winners", "%", "% of group"})
	for _, b := range rows {
		t.AppendRow(table.Row{
			b.Key,
			b.Players, f2(b.PlayerShare),
			b.Jury, f2(b.JuryShare), f2(b.JuryRate),
			b.Finalists, f2(b.FinalistShare), f2(b.FinalistRate),
			b.Winners, f2(b.WinnerShare), f2(b.WinnerRate),
		})
	}
	t.Render()
}

func f2(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
func f3(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }
