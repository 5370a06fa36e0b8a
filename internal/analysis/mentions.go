package analysis

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/JakeFAU/survivor-stats/internal/ml"
	"github.com/JakeFAU/survivor-stats/internal/normalize"
	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// neverEliminated stands in for the elimination episode of a player who was
// never voted out.
const neverEliminated = 16

// initialSuffix matches a disambiguating last initial, as in "Sue H.".
var initialSuffix = regexp.MustCompile(` [A-Z]\.`)

// MentionsConfig tunes the classification.
type MentionsConfig struct {
	Iterations      int
	TestFraction    float64
	SelectFeatures  int
	ExcludedSeasons []int
	Seed            uint64
}

// MentionSamples is the feature matrix of the mentions study: one row per
// finalist, one column per episode of the season.
type MentionSamples struct {
	Names []string
	X     [][]float64
	// Y is 1 for winners.
	Y []int
}

// Scores are averaged over every split.
type Scores struct {
	// TrainAccuracy and TestAccuracy are percentages.
	TrainAccuracy float64
	TestAccuracy  float64
	Confusion     ml.Confusion
}

// MentionsResult summarizes the classification.
type MentionsResult struct {
	Samples  int
	Features int
	// Splits is the number of train/test splits; All averages over every one.
	Splits int
	// Iterations counts the splits Selected averages over.
	Iterations int
	// Skipped counts splits where feature elimination could not be fitted.
	Skipped  int
	All      Scores
	Selected Scores
}

type seasonEpisode struct {
	number      int
	description string
}

// MentionFeatures counts, for every contestant, how often the name they are
// called appears in each episode description of their season. Only
// finalists are returned; rows are zero-padded to the longest season.
func MentionFeatures(contestants []survivor.Contestant, episodes []survivor.Episode, excluded []int) MentionSamples {
	skip := map[int]bool{}
	for _, s := range excluded {
		skip[s] = true
	}

	eliminatedIn := eliminationEpisodes(episodes)
	bySeason := distinctEpisodes(episodes)

	type counted struct {
		c      survivor.Contestant
		counts []float64
	}
	var all []counted
	width := 0
	seasonContestants := map[int][]string{}
	for _, c := range contestants {
		called := strings.TrimSpace(normalize.NFKD(c.Called))
		c.Called = called
		seasonContestants[c.SeasonNumber] = append(seasonContestants[c.SeasonNumber], called)
		if !skip[c.SeasonNumber] {
			all = append(all, counted{c: c})
		}
	}
	dupes := map[int]map[string]duplicate{}
	for season, names := range seasonContestants {
		dupes[season] = duplicateNames(names, eliminatedIn[season])
	}

	for i := range all {
		c := all[i].c
		eps := bySeason[c.SeasonNumber]
		counts := make([]float64, len(eps))
		for k, ep := range eps {
			term := searchTerm(c.Called, dupes[c.SeasonNumber], ep.number)
			counts[k] = float64(strings.Count(ep.description, term))
		}
		all[i].counts = counts
		width = max(width, len(counts))
	}

	var out MentionSamples
	for _, a := range all {
		if !a.c.IsFinalist {
			continue
		}
		row := make([]float64, width)
		copy(row, a.counts)
		label := 0
		if a.c.IsWinner {
			label = 1
		}
		out.Names = append(out.Names, a.c.Name)
		out.X = append(out.X, row)
		out.Y = append(out.Y, label)
	}
	return out
}

// duplicate records, for a player sharing a first name with another
// suffixed player, whether the other left first and when.
type duplicate struct {
	otherLeftFirst bool
	otherOut       int
}

func duplicateNames(called []string, eliminatedIn map[string]int) map[string]duplicate {
	var suffixed []string
	for _, name := range called {
		if initialSuffix.MatchString(name) {
			suffixed = append(suffixed, name)
		}
	}
	out := map[string]duplicate{}
	for _, name := range suffixed {
		first := strings.Split(name, " ")[0]
		var other string
		for _, o := range suffixed {
			if o != name && strings.Contains(o, first) {
				other = o
				break
			}
		}
		nameOut := outEpisode(eliminatedIn, name)
		otherOut := neverEliminated
		if other != "" {
			otherOut = outEpisode(eliminatedIn, other)
		}
		out[name] = duplicate{otherLeftFirst: nameOut > otherOut, otherOut: otherOut}
	}
	return out
}

func outEpisode(eliminatedIn map[string]int, name string) int {
	if ep, ok := eliminatedIn[name]; ok {
		return ep
	}
	return neverEliminated
}

// searchTerm drops the initial suffix once the namesake has left the game.
func searchTerm(called string, dupes map[string]duplicate, episode int) string {
	d, ok := dupes[called]
	if !ok || !d.otherLeftFirst || episode <= d.otherOut || len(called) < 3 {
		return called
	}
	return called[:len(called)-3]
}

// eliminationEpisodes maps season -> eliminated player -> first episode
// (lowest row order) in which they were eliminated.
func eliminationEpisodes(episodes []survivor.Episode) map[int]map[string]int {
	out := map[int]map[string]int{}
	for _, e := range episodes {
		n, err := strconv.Atoi(strings.TrimSpace(e.Number))
		if err != nil || e.Eliminated == "" || e.Eliminated == survivor.NotAvailable {
			continue
		}
		m, ok := out[e.SeasonNumber]
		if !ok {
			m = map[string]int{}
			out[e.SeasonNumber] = m
		}
		if _, seen := m[e.Eliminated]; !seen {
			m[e.Eliminated] = n
		}
	}
	return out
}

// distinctEpisodes returns each season's distinct (episode, description)
// pairs ordered by episode number.
func distinctEpisodes(episodes []survivor.Episode) map[int][]seasonEpisode {
	type key struct {
		season, number int
		description    string
	}
	seen := map[key]bool{}
	out := map[int][]seasonEpisode{}
	for _, e := range episodes {
		n, err := strconv.Atoi(strings.TrimSpace(e.Number))
		if err != nil {
			continue
		}
		k := key{e.SeasonNumber, n, e.Description}
		if seen[k] {
			continue
		}
		seen[k] = true
		out[e.SeasonNumber] = append(out[e.SeasonNumber], seasonEpisode{number: n, description: e.Description})
	}
	for _, eps := range out {
		slices.SortStableFunc(eps, func(a, b seasonEpisode) int { return a.number - b.number })
	}
	return out
}

// ClassifyMentions repeatedly splits the samples, fits naive Bayes on every
// feature and again on the features kept by recursive elimination with
// logistic regression, and averages the scores.
func ClassifyMentions(samples MentionSamples, cfg MentionsConfig) (MentionsResult, error) {
	if len(samples.X) == 0 {
		return MentionsResult{}, ml.ErrNoSamples
	}
	if cfg.Iterations <= 0 {
		return MentionsResult{}, fmt.Errorf("iterations must be positive, got %d", cfg.Iterations)
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	res := MentionsResult{
		Samples:  len(samples.X),
		Features: len(samples.X[0]),
	}

	for i := 0; i < cfg.Iterations; i++ {
		trainIdx, testIdx, err := ml.TrainTestSplit(len(samples.X), cfg.TestFraction, rng)
		if err != nil {
			return MentionsResult{}, err
		}
		xTrain, xTest := ml.Rows(samples.X, trainIdx), ml.Rows(samples.X, testIdx)
		yTrain, yTest := ml.Labels(samples.Y, trainIdx), ml.Labels(samples.Y, testIdx)

		all, err := scoreBayes(xTrain, yTrain, xTest, yTest)
		if err != nil {
			return MentionsResult{}, err
		}
		res.All.add(all)
		res.Splits++
		support, err := ml.RFE{NFeatures: cfg.SelectFeatures}.Fit(xTrain, yTrain)
		if err != nil {
			res.Skipped++
			continue
		}
		selected, err := scoreBayes(ml.SelectColumns(xTrain, support), yTrain, ml.SelectColumns(xTest, support), yTest)
		if err != nil {
			return MentionsResult{}, err
		}
		res.Selected.add(selected)
		res.Iterations++
	}
	if res.Iterations == 0 {
		return res, fmt.Errorf("all %d splits failed feature elimination", cfg.Iterations)
	}
	res.All.scale(1 / float64(res.Splits))
	res.Selected.scale(1 / float64(res.Iterations))
	return res, nil
}

func scoreBayes(xTrain [][]float64, yTrain []int, xTest [][]float64, yTest []int) (Scores, error) {
	nb := ml.NewGaussianNB()
	if err := nb.Fit(xTrain, yTrain); err != nil {
		return Scores{}, fmt.Errorf("fit naive bayes: %w", err)
	}
	pred := nb.Predict(xTest)
	return Scores{
		TrainAccuracy: ml.Accuracy(yTrain, nb.Predict(xTrain)) * 100,
		TestAccuracy:  ml.Accuracy(yTest, pred) * 100,
		Confusion:     ml.ConfusionMatrix(yTest, pred),
	}, nil
}

func (s *Scores) add(o Scores) {
	s.TrainAccuracy += o.TrainAccuracy
	s.TestAccuracy += o.TestAccuracy
	s.Confusion.Add(o.Confusion)
}

func (s *Scores) scale(f float64) {
	s.TrainAccuracy *= f
	s.TestAccuracy *= f
	s.Confusion.Scale(f)
}
