// Package store describes the relational layout of the scraped dataset and
// the pieces shared by the Postgres, SQLite and in-memory repositories.
// It must not import database drivers.
package store

import (
	"errors"
	"fmt"

	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// ErrNotFound signals that the requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// Schemas holding the per-season and overall tables.
const (
	SchemaContestants = "contestants"
	SchemaEpisodes    = "episodes"
	SchemaOverall     = "overall"
)

// Kind is the logical type of a column. Drivers map it to a concrete SQL type.
type Kind int

// Column kinds.
const (
	Text Kind = iota
	Int
	Bool
	Float
	// List is a []string, stored as text[] or JSON text.
	List
	// JSON is a map[string]string, stored as jsonb or JSON text.
	JSON
)

// Column is one named, typed column.
type Column struct {
	Name string
	Kind Kind
}

// Table is a schema-qualified table and its columns in insert order.
type Table struct {
	Schema  string
	Name    string
	Columns []Column
}

// ColumnNames returns the column names in order.
func (t Table) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Label names the table in metrics; per-season tables share their schema's label.
func (t Table) Label() string {
	if t.Schema == SchemaOverall {
		return t.Name
	}
	return t.Schema
}

// String returns schema.name.
func (t Table) String() string {
	return t.Schema + "." + t.Name
}

var seasonColumns = []Column{
	{"season_name", Text},
	{"season_number", Int},
	{"winner", Text},
	{"number_of_days", Int},
	{"number_of_players", Int},
	{"number_of_tribe_swaps", Int},
	{"number_of_starting_tribes", Int},
	{"number_at_final_tribal", Int},
	{"number_on_jury", Int},
	{"has_players_reenter", Bool},
	{"has_returning_players", Bool},
	{"all_returning_players", Bool},
	{"number_of_returning_players", Int},
	{"has_exile_island", Bool},
	{"has_redemption_island", Bool},
	{"is_blood_vs_water", Bool},
	{"has_island_game", Bool},
	{"has_edge_of_extinction", Bool},
}

var contestantColumns = []Column{
	{"name", Text},
	{"age", Text},
	{"from", Text},
	{"placement", List},
	{"day", List},
	{"returning_player", Bool},
	{"times_played_before", Int},
	{"tribes", List},
	{"called", Text},
	{"voting_history", List},
	{"is_on_jury", Bool},
	{"is_finalist", Bool},
	{"is_winner", Bool},
	{"season_number", Int},
	{"voted_for_final_tribal", Text},
	{"made_merge", Bool},
}

var episodeColumns = []Column{
	{"total_episode_number", Text},
	{"season_episode_number", Text},
	{"episode_name", Text},
	{"description", Text},
	{"air_date", Text},
	{"day", Text},
	{"tribe", Text},
	{"eliminated", Text},
	{"votes", Text},
	{"ballots", JSON},
	{"reward_winner", Text},
	{"immunity_winner", Text},
	{"tribe_to_council", Text},
	{"eliminated_player", Text},
	{"number_of_eliminations", Int},
	{"number_of_votes", Int},
	{"season_number", Int},
}

var castColumns = []Column{
	{"name", Text},
	{"season_number", Int},
	{"bio_url", Text},
	{"matched_name", Text},
	{"match_score", Float},
}

// Overall tables.
var (
	AllSeasons     = Table{Schema: SchemaOverall, Name: "all_seasons", Columns: seasonColumns}
	AllContestants = Table{Schema: SchemaOverall, Name: "all_contestants", Columns: contestantColumns}
	AllEpisodes    = Table{Schema: SchemaOverall, Name: "all_episodes", Columns: episodeColumns}
	CastBios       = Table{Schema: SchemaOverall, Name: "cast_bios", Columns: castColumns}
)

// SeasonContestants is the per-season contestant table.
func SeasonContestants(season int) Table {
	return Table{
		Schema:  SchemaContestants,
		Name:    fmt.Sprintf("survivor_contestants_season_%d", season),
		Columns: contestantColumns,
	}
}

// SeasonEpisodes is the per-season episode table.
func SeasonEpisodes(season int) Table {
	return Table{
		Schema:  SchemaEpisodes,
		Name:    fmt.Sprintf("survivor_episodes_season_%d", season),
		Columns: episodeColumns,
	}
}

// FindSeason returns the season numbered n from seasons.
func FindSeason(seasons []survivor.SeasonStats, n int) (survivor.SeasonStats, error) {
	for _, s := range seasons {
		if s.Number == n {
			return s, nil
		}
	}
	return survivor.SeasonStats{}, fmt.Errorf("season %d: %w", n, ErrNotFound)
}
