package store

import "github.com/JakeFAU/survivor-stats/internal/survivor"

// SeasonRow returns the values of s in AllSeasons column order.
func SeasonRow(s survivor.SeasonStats) []any {
	return []any{
		s.Name, s.Number, s.Winner, s.NumDays, s.NumPlayers, s.NumTribeSwaps,
		s.NumStartingTribes, s.NumFinalTribal, s.NumJury, s.HasReentry,
		s.HasReturningPlayers, s.AllReturningPlayers, s.NumReturningPlayers,
		s.HasExileIsland, s.HasRedemptionIsland, s.IsBloodVsWater,
		s.HasIslandGame, s.HasEdgeOfExtinction,
	}
}

// SeasonTargets returns scan destinations for s in column order.
func SeasonTargets(s *survivor.SeasonStats) []any {
	return []any{
		&s.Name, &s.Number, &s.Winner, &s.NumDays, &s.NumPlayers, &s.NumTribeSwaps,
		&s.NumStartingTribes, &s.NumFinalTribal, &s.NumJury, &s.HasReentry,
		&s.HasReturningPlayers, &s.AllReturningPlayers, &s.NumReturningPlayers,
		&s.HasExileIsland, &s.HasRedemptionIsland, &s.IsBloodVsWater,
		&s.HasIslandGame, &s.HasEdgeOfExtinction,
	}
}

// ContestantRow returns the values of c in contestant column order.
// Nil lists are written as empty lists.
func ContestantRow(c survivor.Contestant) []any {
	return []any{
		c.Name, c.Age, c.From, list(c.Placement), list(c.Day), c.ReturningPlayer,
		c.TimesPlayedBefore, list(c.Tribes), c.Called, list(c.VotingHistory),
		c.IsOnJury, c.IsFinalist, c.IsWinner, c.SeasonNumber,
		c.VotedForFinalTribal, c.MadeMerge,
	}
}

// ContestantTargets returns scan destinations for c in column order.
func ContestantTargets(c *survivor.Contestant) []any {
	return []any{
		&c.Name, &c.Age, &c.From, &c.Placement, &c.Day, &c.ReturningPlayer,
		&c.TimesPlayedBefore, &c.Tribes, &c.Called, &c.VotingHistory,
		&c.IsOnJury, &c.IsFinalist, &c.IsWinner, &c.SeasonNumber,
		&c.VotedForFinalTribal, &c.MadeMerge,
	}
}

// EpisodeRow returns the values of e in episode column order.
func EpisodeRow(e survivor.Episode) []any {
	ballots := e.Ballots
	if ballots == nil {
		ballots = map[string]string{}
	}
	return []any{
		e.TotalNumber, e.Number, e.Name, e.Description, e.AirDate, e.Day,
		e.Tribe, e.Eliminated, e.Votes, ballots, e.RewardWinner,
		e.ImmunityWinner, e.TribeToCouncil, e.EliminatedPlayer,
		e.NumberOfEliminations, e.NumberOfVotes, e.SeasonNumber,
	}
}

// EpisodeTargets returns scan destinations for e in column order.
func EpisodeTargets(e *survivor.Episode) []any {
	return []any{
		&e.TotalNumber, &e.Number, &e.Name, &e.Description, &e.AirDate, &e.Day,
		&e.Tribe, &e.Eliminated, &e.Votes, &e.Ballots, &e.RewardWinner,
		&e.ImmunityWinner, &e.TribeToCouncil, &e.EliminatedPlayer,
		&e.NumberOfEliminations, &e.NumberOfVotes, &e.SeasonNumber,
	}
}

// CastRow returns the values of m in cast column order.
func CastRow(m survivor.CastMember) []any {
	return []any{m.Name, m.SeasonNumber, m.BioURL, m.MatchedName, m.MatchScore}
}

// ContestantRows converts contestants to rows.
func ContestantRows(cs []survivor.Contestant) [][]any {
	out := make([][]any, len(cs))
	for i, c := range cs {
		out[i] = ContestantRow(c)
	}
	return out
}

// EpisodeRows converts episodes to rows.
func EpisodeRows(es []survivor.Episode) [][]any {
	out := make([][]any, len(es))
	for i, e := range es {
		out[i] = EpisodeRow(e)
	}
	return out
}

// SeasonRows converts season stats to rows.
func SeasonRows(ss []survivor.SeasonStats) [][]any {
	out := make([][]any, len(ss))
	for i, s := range ss {
		out[i] = SeasonRow(s)
	}
	return out
}

// CastRows converts cast members to rows.
func CastRows(ms []survivor.CastMember) [][]any {
	out := make([][]any, len(ms))
	for i, m := range ms {
		out[i] = CastRow(m)
	}
	return out
}

func list(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
