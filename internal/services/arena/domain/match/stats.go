package match

// PlayerStats accumulates a player's results across matches. Per the
// engine's accounting rules all three counters move only on a successful
// prize claim; refunds and lost matches leave stats untouched.
type PlayerStats struct {
	Player          string
	Wins            int
	MatchesPlayed   int
	TotalEarnings   int64
	EarningsByToken map[string]int64
}

// NewPlayerStats returns zeroed stats for a player.
func NewPlayerStats(player string) *PlayerStats {
	return &PlayerStats{
		Player:          player,
		EarningsByToken: make(map[string]int64),
	}
}

// RecordPrize accumulates a successful claim.
func (s *PlayerStats) RecordPrize(token string, amount int64) {
	s.Wins++
	s.MatchesPlayed++
	s.TotalEarnings += amount
	s.EarningsByToken[token] += amount
}

// RevertPrize undoes RecordPrize after a failed external transfer.
func (s *PlayerStats) RevertPrize(token string, amount int64) {
	s.Wins--
	s.MatchesPlayed--
	s.TotalEarnings -= amount
	s.EarningsByToken[token] -= amount
	if s.EarningsByToken[token] == 0 {
		delete(s.EarningsByToken, token)
	}
}
