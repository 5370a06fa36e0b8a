package analysis

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Labels used when small slices are folded together.
const (
	OtherStates = "Other States/Provinces"
	OtherAges   = "Other Ages"
)

// Stage selects one percentage column of a Breakdown.
type Stage struct {
	Name  string
	Share func(Breakdown) float64
	Rate  func(Breakdown) float64
}

// Stages are players, jury members, finalists and winners, in that order.
var Stages = []Stage{
	{Name: "Players", Share: func(b Breakdown) float64 { return b.PlayerShare }},
	{Name: "Jury Members", Share: func(b Breakdown) float64 { return b.JuryShare }, Rate: func(b Breakdown) float64 { return b.JuryRate }},
	{Name: "Finalists", Share: func(b Breakdown) float64 { return b.FinalistShare }, Rate: func(b Breakdown) float64 { return b.FinalistRate }},
	{Name: "Winners", Share: func(b Breakdown) float64 { return b.WinnerShare }, Rate: func(b Breakdown) float64 { return b.WinnerRate }},
}

// Slice is one wedge of a pie chart.
type Slice struct {
	Name  string
	Share float64
}

// Label renders the legend text, e.g. "Texas: 8.25%".
func (s Slice) Label() string {
	return fmt.Sprintf("%s: %.2f%%", s.Name, s.Share)
}

// PieSlices folds every row whose share is below threshold into other and
// returns the slices by share, largest first. The Total row is ignored.
func PieSlices(rows []Breakdown, share func(Breakdown) float64, threshold float64, other string) []Slice {
	sums := map[string]float64{}
	for _, b := range WithoutTotal(rows) {
		name := b.Key
		if share(b) < threshold {
			name = other
		}
		sums[name] += share(b)
	}
	out := make([]Slice, 0, len(sums))
	for name, v := range sums {
		out = append(out, Slice{Name: name, Share: v})
	}
	slices.SortFunc(out, func(a, b Slice) int {
		switch {
		case a.Share > b.Share:
			return -1
		case a.Share < b.Share:
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// RenderPie writes a standalone HTML page with one pie chart.
func RenderPie(w io.Writer, title string, data []Slice) error {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1000px", Height: "800px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Orient: "vertical", Left: "right", Top: "middle"}),
	)
	items := make([]opts.PieData, 0, len(data))
	for _, s := range data {
		items = append(items, opts.PieData{Name: s.Label(), Value: round2(s.Share)})
	}
	pie.AddSeries(title, items).SetSeriesOptions(
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{d}%"}),
		charts.WithPieChartOpts(opts.PieChart{Radius: "60%"}),
	)
	if err := pie.Render(w); err != nil {
		return fmt.Errorf("render pie %q: %w", title, err)
	}
	return nil
}

// RenderStageLine writes a line chart of how often each group reaches the
// jury, the final tribal council and the win. The Total line is dashed.
func RenderStageLine(w io.Writer, title string, rows []Breakdown) error {
	stages := Stages[1:]
	x := make([]string, len(stages))
	for i, s := range stages {
		x[i] = s.Name
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "800px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Orient: "vertical", Left: "right", Top: "middle"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Percent"}),
	)
	line.SetXAxis(x)
	for _, b := range rows {
		points := make([]opts.LineData, len(stages))
		for i, s := range stages {
			points[i] = opts.LineData{Value: round2(s.Rate(b))}
		}
		style := opts.LineStyle{Width: 2}
		if b.Key == Total {
			style = opts.LineStyle{Width: 4, Type: "dashed"}
		}
		line.AddSeries(b.Key, points, charts.WithLineStyleOpts(style))
	}
	if err := line.Render(w); err != nil {
		return fmt.Errorf("render line %q: %w", title, err)
	}
	return nil
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
