package exam

import "time"

// Question is immutable once a test references it; there is no update path.
type Question struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	CodeSnippet  string    `json:"code,omitempty"`
	Options      []string  `json:"options"`
	CorrectIndex int       `json:"correct_index"`
	CreatedAt    time.Time `json:"created_at"`
}

// Test is immutable after creation. QuestionIDs keeps the admin-supplied
// order; that order is the canonical index-to-question mapping for scoring.
type Test struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	ScheduledStart  time.Time `json:"scheduled_start"`
	DurationMinutes int       `json:"duration_minutes"`
	QuestionIDs     []string  `json:"question_ids"`
	CreatedAt       time.Time `json:"created_at"`
}

// Result stores the submitted answers exactly as given, gaps included,
// for audit. A nil entry is a skipped question.
type Result struct {
	ID             string    `json:"id"`
	TestID         string    `json:"test_id"`
	StudentID      string    `json:"student_id"`
	Answers        []*int    `json:"answers"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// QuestionView is the student-facing shape: no correct answer leaves the
// server.
type QuestionView struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	CodeSnippet string   `json:"code,omitempty"`
	Options     []string `json:"options"`
}

type TestView struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	ScheduledStart  time.Time      `json:"scheduled_start"`
	DurationMinutes int            `json:"duration_minutes"`
	Questions       []QuestionView `json:"questions"`
}

func (q Question) view() QuestionView {
	return QuestionView{
		ID:          q.ID,
		Text:        q.Text,
		CodeSnippet: q.CodeSnippet,
		Options:     q.Options,
	}
}

func newTestView(t Test, questions []Question) TestView {
	qs := make([]QuestionView, 0, len(questions))
	for _, q := range questions {
		qs = append(qs, q.view())
	}
	return TestView{
		ID:              t.ID,
		Name:            t.Name,
		ScheduledStart:  t.ScheduledStart,
		DurationMinutes: t.DurationMinutes,
		Questions:       qs,
	}
}
