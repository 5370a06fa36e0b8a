// Package htmltable expands HTML tables with merged cells into rectangular grids.
package htmltable

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// maxSpan caps rowspan/colspan values; larger values are treated as malformed.
const maxSpan = 500

// ErrEmpty is returned when there are no rows to expand.
var ErrEmpty = errors.New("htmltable: no rows")

// Cell is one position of an expanded table.
type Cell struct {
	// Text is the normalized cell text, or survivor.NotAvailable for empty cells.
	Text string
	// Sel is the source th/td element. It is nil for padding cells.
	Sel *goquery.Selection
	// Header is true for th cells.
	Header bool
	// Spanned is true when the position was filled by a rowspan or colspan
	// of a cell that started elsewhere.
	Spanned bool
}

// Empty reports whether the cell holds no data.
func (c Cell) Empty() bool {
	return c.Text == "" || c.Text == survivor.NotAvailable
}

// Grid is a rectangular table: every row has exactly Width cells.
type Grid struct {
	Width int
	Rows  [][]Cell
}

// Options tunes Expand.
type Options struct {
	// WidthAdjust is added to the width derived from the first row. Some pages
	// carry a stray extra column in their first row only.
	WidthAdjust int
}

type carry struct {
	remaining int
	cell      Cell
}

// Rows returns each element of sel as its own selection, in document order.
func Rows(sel *goquery.Selection) []*goquery.Selection {
	out := make([]*goquery.Selection, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, s)
	})
	return out
}

// Expand unmerges rows (tr selections) into a Grid.
//
// The width is the colspan total of the first row plus opts.WidthAdjust.
// A cell with rowspan r fills its columns in the r-1 rows below it, a cell
// with colspan c fills c columns of its own row, and a cell with both fills
// the whole block. Positions filled from above win over source cells, so a
// colspan that runs into a carried column is cut short. Rows with too few
// cells are padded with N/A; surplus cells are dropped.
func Expand(rows []*goquery.Selection, opts Options) (Grid, error) {
	if len(rows) == 0 {
		return Grid{}, ErrEmpty
	}
	width := opts.WidthAdjust
	rows[0].ChildrenFiltered("th, td").Each(func(_ int, s *goquery.Selection) {
		width += Span(s, "colspan")
	})
	if width <= 0 {
		return Grid{}, fmt.Errorf("htmltable: first row has width %d", width)
	}

	carried := make(map[int]*carry)
	grid := Grid{Width: width, Rows: make([][]Cell, 0, len(rows))}
	for _, row := range rows {
		src := row.ChildrenFiltered("th, td")
		out := make([]Cell, 0, width)
		next := 0
		for col := 0; col < width; {
			if c, ok := carried[col]; ok {
				out = append(out, c.cell)
				c.remaining--
				if c.remaining == 0 {
					delete(carried, col)
				}
				col++
				continue
			}
			if next >= src.Length() {
				out = append(out, Cell{Text: survivor.NotAvailable})
				col++
				continue
			}
			s := src.Eq(next)
			next++
			cell := newCell(s)
			colspan := Span(s, "colspan")
			rowspan := Span(s, "rowspan")
			spanned := cell
			spanned.Spanned = true
			for k := 0; k < colspan && col < width; k++ {
				if k > 0 {
					if _, busy := carried[col]; busy {
						break
					}
				}
				if k == 0 {
					out = append(out, cell)
				} else {
					out = append(out, spanned)
				}
				if rowspan > 1 {
					carried[col] = &carry{remaining: rowspan - 1, cell: spanned}
				}
				col++
			}
		}
		grid.Rows = append(grid.Rows, out)
	}
	return grid, nil
}

func newCell(s *goquery.Selection) Cell {
	text := Text(s)
	if text == "" {
		text = survivor.NotAvailable
	}
	return Cell{
		Text:   text,
		Sel:    s,
		Header: goquery.NodeName(s) == "th",
	}
}

// Span reads a rowspan/colspan attribute, tolerating junk such as "2;".
func Span(s *goquery.Selection, name string) int {
	raw, ok := s.Attr(name)
	if !ok {
		return 1
	}
	raw = strings.TrimSpace(raw)
	end := 0
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil || n < 1 || n > maxSpan {
		return 1
	}
	return n
}

// Len returns the number of rows.
func (g Grid) Len() int {
	return len(g.Rows)
}

// Texts returns the cell texts of row i.
func (g Grid) Texts(i int) []string {
	out := make([]string, len(g.Rows[i]))
	for j, c := range g.Rows[i] {
		out[j] = c.Text
	}
	return out
}

// Column returns the cell texts of column j.
func (g Grid) Column(j int) []string {
	out := make([]string, len(g.Rows))
	for i, row := range g.Rows {
		out[i] = row[j].Text
	}
	return out
}

// DropColumns returns a copy of g without the given columns. Out of range
// indices are ignored.
func (g Grid) DropColumns(idx ...int) Grid {
	drop := make(map[int]bool, len(idx))
	for _, i := range idx {
		if i >= 0 && i < g.Width {
			drop[i] = true
		}
	}
	if len(drop) == 0 {
		return g
	}
	keep := make([]int, 0, g.Width-len(drop))
	for j := 0; j < g.Width; j++ {
		if !drop[j] {
			keep = append(keep, j)
		}
	}
	out := Grid{Width: len(keep), Rows: make([][]Cell, len(g.Rows))}
	for i, row := range g.Rows {
		nr := make([]Cell, len(keep))
		for k, j := range keep {
			nr[k] = row[j]
		}
		out.Rows[i] = nr
	}
	return out
}

// Slice returns rows [from, to) of g; to < 0 counts from the end.
func (g Grid) Slice(from, to int) Grid {
	n := len(g.Rows)
	if to < 0 {
		to = n + to
	}
	from = clamp(from, 0, n)
	to = clamp(to, from, n)
	return Grid{Width: g.Width, Rows: g.Rows[from:to]}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
