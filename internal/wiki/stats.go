package wiki

import (
	"fmt"

	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// summarize fills the season stats that are derived from the contestant rows.
func (p *seasonParser) summarize(contestants []survivor.Contestant) error {
	winner := ""
	for _, c := range contestants {
		if c.IsWinner {
			winner = c.Name
			break
		}
	}
	if winner == "" {
		return fmt.Errorf("season %d: no sole survivor found", p.season.Number)
	}
	p.stats.Winner = winner
	p.stats.NumPlayers = len(contestants)

	maxTribes := 0
	starting := make(map[string]struct{})
	for _, c := range contestants {
		if c.IsOnJury {
			p.stats.NumJury++
		}
		if len(c.Tribes) == 0 {
			continue
		}
		maxTribes = max(maxTribes, len(c.Tribes))
		starting[c.Tribes[0]] = struct{}{}
	}
	p.stats.NumTribeSwaps = max(maxTribes-1, 0)
	p.stats.NumStartingTribes = len(starting)
	p.stats.AllReturningPlayers = p.stats.NumReturningPlayers > 0 &&
		p.stats.NumReturningPlayers == p.stats.NumPlayers
	return nil
}
