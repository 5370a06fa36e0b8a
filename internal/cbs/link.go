package cbs

import (
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/JakeFAU/survivor-stats/internal/normalize"
	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// Link matches each cast member to a contestant of the same season. Exact
// name matches are taken first; the rest go to the unmatched contestant with
// the highest Jaro-Winkler similarity, compared against both the full name and
// the name used in the voting history, when it reaches threshold. The input
// slice is not modified.
func Link(cast []survivor.CastMember, contestants []survivor.Contestant, threshold float64) []survivor.CastMember {
	bySeason := make(map[int][]survivor.Contestant)
	for _, c := range contestants {
		bySeason[c.SeasonNumber] = append(bySeason[c.SeasonNumber], c)
	}

	out := make([]survivor.CastMember, len(cast))
	copy(out, cast)
	taken := make(map[int]map[string]bool)
	isTaken := func(season int, name string) bool { return taken[season][name] }
	take := func(season int, name string) {
		if taken[season] == nil {
			taken[season] = make(map[string]bool)
		}
		taken[season][name] = true
	}

	for i := range out {
		m := &out[i]
		for _, c := range bySeason[m.SeasonNumber] {
			if !isTaken(m.SeasonNumber, c.Name) && sameName(m.Name, c.Name) {
				m.MatchedName, m.MatchScore = c.Name, 1
				take(m.SeasonNumber, c.Name)
				break
			}
		}
	}

	for i := range out {
		m := &out[i]
		if m.MatchedName != "" {
			continue
		}
		var best float64
		var bestName string
		for _, c := range bySeason[m.SeasonNumber] {
			if isTaken(m.SeasonNumber, c.Name) {
				continue
			}
			score := max(similarity(m.Name, c.Name), similarity(m.Name, c.Called))
			if score > best {
				best, bestName = score, c.Name
			}
		}
		if bestName != "" && best >= threshold {
			m.MatchedName, m.MatchScore = bestName, best
			take(m.SeasonNumber, bestName)
		}
	}
	return out
}

func sameName(a, b string) bool {
	return strings.EqualFold(normalize.Text(a), normalize.Text(b))
}

func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return matchr.JaroWinkler(strings.ToLower(normalize.Text(a)), strings.ToLower(normalize.Text(b)), false)
}
