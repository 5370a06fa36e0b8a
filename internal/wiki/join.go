package wiki

import (
	"maps"

	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// joinEpisodes pairs each tribal council with its episode (inner join on the
// episode number within the season) and with the season summary row of the
// same episode and eliminated player (left join).
func joinEpisodes(season int, infos []survivor.EpisodeInfo, tribals []survivor.TribalCouncil, summary []survivor.SummaryRow) []survivor.Episode {
	var out []survivor.Episode
	for _, info := range infos {
		for _, tc := range tribals {
			if tc.Episode == "" || tc.Episode != info.SeasonNumber {
				continue
			}
			base := survivor.Episode{
				TotalNumber:  info.TotalNumber,
				Number:       info.SeasonNumber,
				Name:         info.Title,
				Description:  info.Description,
				Day:          tc.Day,
				Tribe:        tc.Tribe,
				Eliminated:   tc.Eliminated,
				Votes:        tc.Votes,
				Ballots:      maps.Clone(tc.Ballots),
				SeasonNumber: season,
			}
			matched := false
			for _, s := range summary {
				if s.EpisodeNumber != info.SeasonNumber || s.EliminatedPlayer != tc.Eliminated {
					continue
				}
				e := base
				e.Ballots = maps.Clone(tc.Ballots)
				if s.EpisodeName != "" {
					e.Name = s.EpisodeName
				}
				e.AirDate = s.AirDate
				e.RewardWinner = s.RewardWinner
				e.ImmunityWinner = s.ImmunityWinner
				e.TribeToCouncil = s.TribeToCouncil
				e.EliminatedPlayer = s.EliminatedPlayer
				out = append(out, e)
				matched = true
			}
			if !matched {
				out = append(out, base)
			}
		}
	}
	countDistinct(out)
	return out
}

// countDistinct sets NumberOfEliminations (distinct eliminated players per
// episode) and NumberOfVotes (distinct tallies per episode, day and tribe).
func countDistinct(episodes []survivor.Episode) {
	type councilKey struct{ episode, day, tribe string }
	eliminated := make(map[string]map[string]struct{})
	tallies := make(map[councilKey]map[string]struct{})
	for _, e := range episodes {
		if e.EliminatedPlayer != "" {
			addDistinct(eliminated, e.Number, e.EliminatedPlayer)
		}
		if e.Votes != "" {
			addDistinct(tallies, councilKey{e.Number, e.Day, e.Tribe}, e.Votes)
		}
	}
	for i := range episodes {
		e := &episodes[i]
		e.NumberOfEliminations = len(eliminated[e.Number])
		e.NumberOfVotes = len(tallies[councilKey{e.Number, e.Day, e.Tribe}])
	}
}

func addDistinct[K comparable](m map[K]map[string]struct{}, key K, value string) {
	set, ok := m[key]
	if !ok {
		set = make(map[string]struct{})
		m[key] = set
	}
	set[value] = struct{}{}
}
