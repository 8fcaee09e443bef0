package match

// Outcome is the computed result of a completed match.
type Outcome struct {
	Scores   map[string]int
	MaxScore int
	// Winners holds every player tied at MaxScore, in roster order.
	Winners   []string
	FeeAmount int64
	// Distributable is the prize pool after the platform fee.
	Distributable int64
	// PerWinner is the integer share each winner may claim.
	PerWinner int64
	// Remainder is the undistributed dust left by integer division. It stays
	// in the match escrow permanently; no operation releases it.
	Remainder int64
}

// Distribute computes the winner set and the prize split for a pool.
// Ties are not broken: every player at the top score wins an equal integer
// share of the pool net of the platform fee. The division remainder is not
// redistributed.
func Distribute(players []string, scores map[string]int, prizePool int64, feePercent int) Outcome {
	maxScore := 0
	for _, player := range players {
		if scores[player] > maxScore {
			maxScore = scores[player]
		}
	}

	var winners []string
	for _, player := range players {
		if scores[player] == maxScore {
			winners = append(winners, player)
		}
	}

	fee := prizePool * int64(feePercent) / 100
	distributable := prizePool - fee
	perWinner := distributable / int64(len(winners))
	remainder := distributable - perWinner*int64(len(winners))

	return Outcome{
		Scores:        scores,
		MaxScore:      maxScore,
		Winners:       winners,
		FeeAmount:     fee,
		Distributable: distributable,
		PerWinner:     perWinner,
		Remainder:     remainder,
	}
}
