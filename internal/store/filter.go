package store

import (
	"strings"

	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// Placeholder renders the n-th (1-based) bind parameter for a driver.
type Placeholder func(n int) string

// ContestantWhere renders a WHERE clause for f, or "" when f matches
// everything, together with its arguments.
func ContestantWhere(f survivor.ContestantFilter, ph Placeholder) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		conds = append(conds, col+" = "+ph(len(args)))
	}
	if f.Season != nil {
		add("season_number", *f.Season)
	}
	if f.Finalist != nil {
		add("is_finalist", *f.Finalist)
	}
	if f.Winner != nil {
		add("is_winner", *f.Winner)
	}
	if f.Jury != nil {
		add("is_on_jury", *f.Jury)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
