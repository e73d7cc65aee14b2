package exam

// ScoreAnswers counts answers that match the correct option index of the
// question at the same position. A nil answer, a short answer slice, or an
// out-of-range option all score zero for that question; a skipped question
// is a valid answer of "none", never an error.
func ScoreAnswers(questions []Question, answers []*int) int {
	score := 0
	for i, q := range questions {
		if i >= len(answers) || answers[i] == nil {
			continue
		}
		if *answers[i] == q.CorrectIndex {
			score++
		}
	}
	return score
}
