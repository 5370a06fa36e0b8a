// Package catalog holds the hand-maintained list of Survivor seasons to scrape
// and the per-season markup quirks of their Wikipedia pages.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Tables holds the index of each table among the page's <table> elements.
type Tables struct {
	Episodes    int `yaml:"episodes"`
	Summary     int `yaml:"summary"`
	Votes       int `yaml:"votes"`
	Contestants int `yaml:"contestants"`
	Jury        int `yaml:"jury"`
}

// ContestantOverride replaces a contestant row whose markup cannot be parsed.
type ContestantOverride struct {
	Name              string   `yaml:"name"`
	Age               string   `yaml:"age"`
	From              string   `yaml:"from"`
	Tribes            []string `yaml:"tribes"`
	Placement         []string `yaml:"placement"`
	Day               []string `yaml:"day"`
	ReturningPlayer   bool     `yaml:"returning_player"`
	TimesPlayedBefore int      `yaml:"times_played_before"`
}

// Quirks are per-page deviations from the common table layout.
type Quirks struct {
	// VoteHistoryFirstRowExtra marks a voting history whose first row carries
	// one stray column.
	VoteHistoryFirstRowExtra bool `yaml:"vote_history_first_row_extra"`
	// VoteHistoryLeadingColumns is the number of duplicated label columns that
	// follow the label column of the voting history.
	VoteHistoryLeadingColumns int `yaml:"vote_history_leading_columns"`
	// VoteHistoryRenames renames voting history labels.
	VoteHistoryRenames map[string]string `yaml:"vote_history_renames"`
	// CombinedRewardImmunity marks a season summary without a reward column.
	CombinedRewardImmunity bool `yaml:"combined_reward_immunity"`
	// JuryVoteOverrides adds or replaces juror -> finalist votes.
	JuryVoteOverrides map[string]string `yaml:"jury_vote_overrides"`
	// ContestantOverrides replace contestant rows matched by name.
	ContestantOverrides []ContestantOverride `yaml:"contestant_overrides"`
	// TribeOverrides and NameOverrides are keyed by contestant row position,
	// counted before DropContestantRows is applied.
	TribeOverrides     map[int][]string `yaml:"tribe_overrides"`
	NameOverrides      map[int]string   `yaml:"name_overrides"`
	DropContestantRows []int            `yaml:"drop_contestant_rows"`
}

// Season is one catalog entry.
type Season struct {
	Number      int    `yaml:"number"`
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	MergeTribe  string `yaml:"merge_tribe"`
	Tables      Tables `yaml:"tables"`
	ReunionRows int    `yaml:"reunion_rows"`
	Quirks      Quirks `yaml:"quirks"`
}

// Override returns the contestant override for name, if any.
func (s Season) Override(name string) (ContestantOverride, bool) {
	for _, o := range s.Quirks.ContestantOverrides {
		if o.Name == name {
			return o, true
		}
	}
	return ContestantOverride{}, false
}

// Catalog is an ordered list of seasons.
type Catalog struct {
	Seasons []Season `yaml:"seasons"`
}

// Default returns the embedded catalog.
func Default() (Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path, or returns the embedded one when path is empty.
func Load(path string) (Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog. Seasons are sorted by number.
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	sort.SliceStable(c.Seasons, func(i, j int) bool {
		return c.Seasons[i].Number < c.Seasons[j].Number
	})
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Validate checks the catalog for duplicate or malformed entries.
func (c Catalog) Validate() error {
	if len(c.Seasons) == 0 {
		return errors.New("catalog: no seasons")
	}
	seen := make(map[int]bool, len(c.Seasons))
	for _, s := range c.Seasons {
		switch {
		case s.Number <= 0:
			return fmt.Errorf("catalog: season number must be positive, got %d", s.Number)
		case seen[s.Number]:
			return fmt.Errorf("catalog: season %d listed twice", s.Number)
		case strings.TrimSpace(s.URL) == "":
			return fmt.Errorf("catalog: season %d has no url", s.Number)
		case s.ReunionRows < 0:
			return fmt.Errorf("catalog: season %d reunion_rows must be >= 0", s.Number)
		case s.Quirks.VoteHistoryLeadingColumns < 0:
			return fmt.Errorf("catalog: season %d vote_history_leading_columns must be >= 0", s.Number)
		}
		t := s.Tables
		if t.Episodes < 0 || t.Summary < 0 || t.Votes < 0 || t.Contestants < 0 || t.Jury < 0 {
			return fmt.Errorf("catalog: season %d has a negative table index", s.Number)
		}
		if _, err := url.Parse(s.URL); err != nil {
			return fmt.Errorf("catalog: season %d url: %w", s.Number, err)
		}
		seen[s.Number] = true
	}
	return nil
}

// Lookup returns the season with the given number.
func (c Catalog) Lookup(number int) (Season, bool) {
	for _, s := range c.Seasons {
		if s.Number == number {
			return s, true
		}
	}
	return Season{}, false
}

// Select returns the seasons with the given numbers in catalog order, or every
// season when numbers is empty.
func (c Catalog) Select(numbers []int) ([]Season, error) {
	if len(numbers) == 0 {
		return append([]Season(nil), c.Seasons...), nil
	}
	want := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		if _, ok := c.Lookup(n); !ok {
			return nil, fmt.Errorf("catalog: unknown season %d", n)
		}
		want[n] = true
	}
	out := make([]Season, 0, len(want))
	for _, s := range c.Seasons {
		if want[s.Number] {
			out = append(out, s)
		}
	}
	return out, nil
}

// Rebase points every season URL at base, keeping the path. It is used to
// scrape from a mirror.
func (c Catalog) Rebase(base string) (Catalog, error) {
	if base == "" {
		return c, nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return Catalog{}, fmt.Errorf("parse base url: %w", err)
	}
	out := Catalog{Seasons: make([]Season, len(c.Seasons))}
	for i, s := range c.Seasons {
		u, err := url.Parse(s.URL)
		if err != nil {
			return Catalog{}, fmt.Errorf("parse season %d url: %w", s.Number, err)
		}
		u.Scheme = b.Scheme
		u.Host = b.Host
		if p := strings.TrimSuffix(b.Path, "/"); p != "" {
			u.Path = p + u.Path
		}
		s.URL = u.String()
		out.Seasons[i] = s
	}
	return out, nil
}
