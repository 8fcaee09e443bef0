package match

// Score tallies one point per question whose stored answer equals the key.
// It is a pure function of its inputs: replaying it over the same answers
// and key always yields the same scores. Players without a stored answer
// for a question simply score nothing for it.
func Score(players []string, answers map[AnswerKey]int, questionIDs []string, correctAnswers []int) map[string]int {
	scores := make(map[string]int, len(players))
	for _, player := range players {
		scores[player] = 0
		for j, questionID := range questionIDs {
			answer, ok := answers[AnswerKey{Player: player, Question: questionID}]
			if !ok {
				continue
			}
			if answer == correctAnswers[j] {
				scores[player]++
			}
		}
	}
	return scores
}
