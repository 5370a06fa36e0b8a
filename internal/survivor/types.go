package survivor

import (
	"time"
)

// NotAvailable marks a cell or field that the source page left empty.
const NotAvailable = "N/A"

// Page is a fetched HTML document.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
	FetchedAt  time.Time
	Headless   bool
}

// SeasonStats summarizes one season; it is the row written to the all-seasons table.
type SeasonStats struct {
	Name                string `json:"season_name"`
	Number              int    `json:"season_number"`
	Winner              string `json:"winner"`
	NumDays             int    `json:"number_of_days"`
	NumPlayers          int    `json:"number_of_players"`
	NumTribeSwaps       int    `json:"number_of_tribe_swaps"`
	NumStartingTribes   int    `json:"number_of_starting_tribes"`
	NumFinalTribal      int    `json:"number_at_final_tribal"`
	NumJury             int    `json:"number_on_jury"`
	HasReentry          bool   `json:"has_players_reenter"`
	HasReturningPlayers bool   `json:"has_returning_players"`
	AllReturningPlayers bool   `json:"all_returning_players"`
	NumReturningPlayers int    `json:"number_of_returning_players"`
	HasExileIsland      bool   `json:"has_exile_island"`
	HasRedemptionIsland bool   `json:"has_redemption_island"`
	IsBloodVsWater      bool   `json:"is_blood_vs_water"`
	HasIslandGame       bool   `json:"has_island_game"`
	HasEdgeOfExtinction bool   `json:"has_edge_of_extinction"`
}

// Contestant is one player of one season.
type Contestant struct {
	Name                string   `json:"name"`
	Age                 string   `json:"age"`
	From                string   `json:"from"`
	Placement           []string `json:"placement"`
	Day                 []string `json:"day"`
	ReturningPlayer     bool     `json:"returning_player"`
	TimesPlayedBefore   int      `json:"times_played_before"`
	Tribes              []string `json:"tribes"`
	Called              string   `json:"called"`
	VotingHistory       []string `json:"voting_history"`
	IsOnJury            bool     `json:"is_on_jury"`
	IsFinalist          bool     `json:"is_finalist"`
	IsWinner            bool     `json:"is_winner"`
	SeasonNumber        int      `json:"season_number"`
	VotedForFinalTribal string   `json:"voted_for_final_tribal"`
	MadeMerge           bool     `json:"made_merge"`
}

// TribalCouncil is one column of a season's voting history table.
type TribalCouncil struct {
	Episode    string            `json:"episode"`
	Day        string            `json:"day"`
	Tribe      string            `json:"tribe"`
	Eliminated string            `json:"eliminated"`
	Votes      string            `json:"votes"`
	Ballots    map[string]string `json:"ballots"`
}

// SummaryRow is one row of the season summary table.
type SummaryRow struct {
	EpisodeNumber    string `json:"episode_number"`
	EpisodeName      string `json:"episode_name"`
	AirDate          string `json:"air_date"`
	RewardWinner     string `json:"reward_winner"`
	ImmunityWinner   string `json:"immunity_winner"`
	TribeToCouncil   string `json:"tribe_to_council"`
	EliminatedPlayer string `json:"eliminated_player"`
}

// EpisodeInfo is one row of the episode table: numbering, title and synopsis.
type EpisodeInfo struct {
	TotalNumber  string `json:"total_episode_number"`
	SeasonNumber string `json:"season_episode_number"`
	Title        string `json:"title"`
	Description  string `json:"description"`
}

// Episode is one tribal council joined with its episode and season summary rows.
type Episode struct {
	TotalNumber          string            `json:"total_episode_number"`
	Number               string            `json:"season_episode_number"`
	Name                 string            `json:"episode_name"`
	Description          string            `json:"description"`
	AirDate              string            `json:"air_date"`
	Day                  string            `json:"day"`
	Tribe                string            `json:"tribe"`
	Eliminated           string            `json:"eliminated"`
	Votes                string            `json:"votes"`
	Ballots              map[string]string `json:"ballots"`
	RewardWinner         string            `json:"reward_winner"`
	ImmunityWinner       string            `json:"immunity_winner"`
	TribeToCouncil       string            `json:"tribe_to_council"`
	EliminatedPlayer     string            `json:"eliminated_player"`
	NumberOfEliminations int               `json:"number_of_eliminations"`
	NumberOfVotes        int               `json:"number_of_votes"`
	SeasonNumber         int               `json:"season_number"`
}

// SeasonResult holds every table produced for one season.
type SeasonResult struct {
	Stats       SeasonStats
	Contestants []Contestant
	Episodes    []Episode
}

// Dataset is the union of every scraped season.
type Dataset struct {
	Seasons     []SeasonStats
	Contestants []Contestant
	Episodes    []Episode
}

// Add appends one season's tables.
func (d *Dataset) Add(result SeasonResult) {
	d.Seasons = append(d.Seasons, result.Stats)
	d.Contestants = append(d.Contestants, result.Contestants...)
	d.Episodes = append(d.Episodes, result.Episodes...)
}

// CastMember is one entry of the CBS cast listing.
type CastMember struct {
	Name         string  `json:"name"`
	SeasonNumber int     `json:"season_number"`
	BioURL       string  `json:"bio_url"`
	MatchedName  string  `json:"matched_name,omitempty"`
	MatchScore   float64 `json:"match_score,omitempty"`
}

// ContestantFilter narrows contestant listings; nil fields match everything.
type ContestantFilter struct {
	Season   *int
	Finalist *bool
	Winner   *bool
	Jury     *bool
}

// Match reports whether c passes the filter.
func (f ContestantFilter) Match(c Contestant) bool {
	if f.Season != nil && c.SeasonNumber != *f.Season {
		return false
	}
	if f.Finalist != nil && c.IsFinalist != *f.Finalist {
		return false
	}
	if f.Winner != nil && c.IsWinner != *f.Winner {
		return false
	}
	if f.Jury != nil && c.IsOnJury != *f.Jury {
		return false
	}
	return true
}
