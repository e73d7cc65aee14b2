package exam

import "testing"

func intPtr(i int) *int { return &i }

func TestScoreAnswers(t *testing.T) {
	questions := []Question{
		{ID: "q1", Options: []string{"a", "b"}, CorrectIndex: 0},
		{ID: "q2", Options: []string{"a", "b", "c"}, CorrectIndex: 1},
		{ID: "q3", Options: []string{"a", "b", "c"}, CorrectIndex: 2},
	}

	tests := []struct {
		name    string
		answers []*int
		want    int
	}{
		{"all correct", []*int{intPtr(0), intPtr(1), intPtr(2)}, 3},
		{"skipped third", []*int{intPtr(0), intPtr(1), nil}, 2},
		{"short answer slice", []*int{intPtr(0)}, 1},
		{"empty answers", nil, 0},
		{"all wrong", []*int{intPtr(1), intPtr(0), intPtr(0)}, 0},
		{"out of range option", []*int{intPtr(7), intPtr(1), nil}, 1},
		{"extra answers ignored", []*int{intPtr(0), intPtr(1), intPtr(2), intPtr(0)}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreAnswers(questions, tt.answers)
			if got != tt.want {
				t.Errorf("ScoreAnswers() = %d, want %d", got, tt.want)
			}
			if got < 0 || got > len(questions) {
				t.Errorf("score %d outside [0,%d]", got, len(questions))
			}
			// scoring is pure: same inputs, same score
			if again := ScoreAnswers(questions, tt.answers); again != got {
				t.Errorf("second ScoreAnswers() = %d, want %d", again, got)
			}
		})
	}
}
