package analysis

import (
	"slices"
	"strconv"
	"strings"

	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// AgeBrackets label the distance from the season's median age, youngest first.
var AgeBrackets = []string{
	"Less than 10 Years Below Median",
	"Between 10 and 5 Years Below Median",
	"Within 5 Years Below the Median",
	"Within 5 Years Above the Median",
	"Between 5 and 10 Years Above the Median",
	"Between 10 and 15 Years Above the Median",
	"Between 15 and 20 Years Above the Median",
	"Between 20 and 25 Years Above the Median",
	"Between 25 and 30 Years Above the Median",
	"Between 30 and 35 Years Above the Median",
	"Between 35 and 40 Years Above the Median",
	"More than 40 Years Above the Median",
}

// AgeBracket returns the index into AgeBrackets for a difference from the
// median: below -10, then half-open five year steps from -10 up to 40.
func AgeBracket(diff float64) int {
	switch {
	case diff < -10:
		return 0
	case diff >= 40:
		return len(AgeBrackets) - 1
	}
	// [-10,-5) -> 1, [-5,0) -> 2, [0,5) -> 3, ...
	i := 1
	for lo := -10.0; lo < 40; lo += 5 {
		if diff < lo+5 {
			return i
		}
		i++
	}
	return len(AgeBrackets) - 1
}

// Median returns the median of xs, averaging the middle pair for even
// lengths. It returns 0 for an empty slice.
func Median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := slices.Clone(xs)
	slices.Sort(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

// Ages groups contestants by how far their age is from their season's median
// age. Contestants whose age is not a whole number are skipped and counted.
func Ages(contestants []survivor.Contestant) (rows []Breakdown, skipped int) {
	type aged struct {
		c   survivor.Contestant
		age float64
	}
	var valid []aged
	bySeason := map[int][]float64{}
	for _, c := range contestants {
		age, err := strconv.Atoi(strings.TrimSpace(c.Age))
		if err != nil {
			skipped++
			continue
		}
		valid = append(valid, aged{c: c, age: float64(age)})
		bySeason[c.SeasonNumber] = append(bySeason[c.SeasonNumber], float64(age))
	}
	medians := make(map[int]float64, len(bySeason))
	for season, ages := range bySeason {
		medians[season] = Median(ages)
	}

	t := newTally()
	for _, label := range AgeBrackets {
		t.declare(label)
	}
	t.declare(Total)
	for _, v := range valid {
		t.add(AgeBrackets[AgeBracket(v.age-medians[v.c.SeasonNumber])], v.c)
	}
	return t.rows(), skipped
}
