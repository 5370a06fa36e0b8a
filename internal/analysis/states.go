package analysis

import (
	"strings"

	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

var (
	newStates       = map[string]bool{"York": true, "Jersey": true, "Mexico": true, "Hampshire": true}
	directionStates = map[string]bool{"Dakota": true, "Carolina": true}
)

// StateOf extracts the state or province from a hometown such as
// "Newport, Rhode Island". It returns "" when from has no words.
func StateOf(from string) string {
	words := strings.Fields(strings.ReplaceAll(from, ",", ""))
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	}
	first, last := words[len(words)-2], words[len(words)-1]
	switch {
	case newStates[last] && first == "New":
		return "New " + last
	case directionStates[last]:
		return first + " " + last
	case last == "Virginia" && first == "West":
		return "West Virginia"
	case last == "Island":
		return "Rhode Island"
	default:
		return last
	}
}

// States counts contestants per home state. Rows appear in first-seen order
// before sorting; contestants without a hometown are skipped.
func States(contestants []survivor.Contestant) []Breakdown {
	t := newTally()
	for _, c := range contestants {
		if state := StateOf(c.From); state != "" {
			t.declare(state)
		}
	}
	t.declare(Total)
	for _, c := range contestants {
		if state := StateOf(c.From); state != "" {
			t.add(state, c)
		}
	}
	return t.rows()
}
