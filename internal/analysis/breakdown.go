package analysis

import (
	"slices"

	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// Total is the key of the row that counts every contestant.
const Total = "Total"

// Breakdown is one row of a state or age table: how many contestants of a
// group reached each stage, as counts and percentages.
type Breakdown struct {
	Key       string
	Players   int
	Jury      int
	Finalists int
	Winners   int

	// PlayerShare is Players as a percentage of all players.
	PlayerShare float64
	// JuryShare is Jury as a percentage of all jury members.
	JuryShare float64
	// JuryRate is Jury as a percentage of Players.
	JuryRate      float64
	FinalistShare float64
	FinalistRate  float64
	WinnerShare   float64
	WinnerRate    float64
}

// tally counts contestants per key for the four subsets.
type tally struct {
	order                             []string
	players, jury, finalists, winners map[string]int
}

func newTally() *tally {
	return &tally{
		players:   map[string]int{},
		jury:      map[string]int{},
		finalists: map[string]int{},
		winners:   map[string]int{},
	}
}

// declare registers key in first-seen order.
func (t *tally) declare(key string) {
	if _, ok := t.players[key]; ok {
		return
	}
	t.order = append(t.order, key)
	t.players[key] = 0
}

func (t *tally) add(key string, c survivor.Contestant) {
	t.declare(key)
	bump := func(m map[string]int) {
		m[key]++
		m[Total]++
	}
	bump(t.players)
	if c.IsOnJury {
		bump(t.jury)
	}
	if c.IsFinalist {
		bump(t.finalists)
	}
	if c.IsWinner {
		bump(t.winners)
	}
}

// rows builds one Breakdown per declared key (Total included), sorted by
// player count, largest first. Ties keep declaration order.
func (t *tally) rows() []Breakdown {
	out := make([]Breakdown, 0, len(t.order))
	for _, key := range t.order {
		p, j, f, w := t.players[key], t.jury[key], t.finalists[key], t.winners[key]
		out = append(out, Breakdown{
			Key:           key,
			Players:       p,
			Jury:          j,
			Finalists:     f,
			Winners:       w,
			PlayerShare:   percent(p, t.players[Total]),
			JuryShare:     percent(j, t.jury[Total]),
			JuryRate:      percent(j, p),
			FinalistShare: percent(f, t.finalists[Total]),
			FinalistRate:  percent(f, p),
			WinnerShare:   percent(w, t.winners[Total]),
			WinnerRate:    percent(w, p),
		})
	}
	slices.SortStableFunc(out, func(a, b Breakdown) int { return b.Players - a.Players })
	return out
}

// percent is 100*n/d, or 0 when d is 0.
func percent(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d) * 100
}

// WithoutTotal drops the Total row.
func WithoutTotal(rows []Breakdown) []Breakdown {
	return slices.DeleteFunc(slices.Clone(rows), func(b Breakdown) bool { return b.Key == Total })
}
