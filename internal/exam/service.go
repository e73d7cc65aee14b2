package exam

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/examgate/examgate/internal/notify"
)

// Events receives best-effort notification payloads after the primary
// write has committed. Satisfied by *notify.Outbox.
type Events interface {
	Append(ctx context.Context, typ, key string, payload interface{}) error
}

// Contact is the slice of student identity the engine needs for
// notifications.
type Contact struct {
	Name  string
	Email string
}

// Roster resolves notification recipients from the identity store.
type Roster interface {
	Emails(ctx context.Context) ([]string, error)
	Contact(ctx context.Context, studentID string) (Contact, error)
}

// Summary is the submission outcome returned to the student.
type Summary struct {
	Score          int `json:"score"`
	TotalQuestions int `json:"totalQuestions"`
}

// ResultDetail is a result with its test and student resolved, for the
// admin report.
type ResultDetail struct {
	Result
	TestName     string `json:"test_name"`
	StudentName  string `json:"student_name"`
	StudentEmail string `json:"student_email"`
}

// Service owns the test lifecycle: question bank, test creation,
// availability gating and the submission/scoring path.
type Service struct {
	store  Store
	roster Roster
	events Events
	now    func() time.Time
	log    zerolog.Logger
}

func NewService(store Store, roster Roster, events Events, log zerolog.Logger) *Service {
	return &Service{
		store:  store,
		roster: roster,
		events: events,
		now:    time.Now,
		log:    log,
	}
}

func (s *Service) CreateQuestion(ctx context.Context, text, code string, options []string, correctIndex int) (Question, error) {
	if len(options) < 2 || correctIndex < 0 || correctIndex >= len(options) {
		return Question{}, ErrInvalidQuestion
	}
	q := Question{
		ID:           uuid.NewString(),
		Text:         text,
		CodeSnippet:  code,
		Options:      options,
		CorrectIndex: correctIndex,
		CreatedAt:    s.now(),
	}
	if err := s.store.PutQuestion(ctx, q); err != nil {
		return Question{}, fmt.Errorf("store question: %w", err)
	}
	return q, nil
}

func (s *Service) ListQuestions(ctx context.Context) ([]Question, error) {
	return s.store.ListQuestions(ctx)
}

// CreateTest persists a test referencing questions in the order given and
// queues a best-effort announcement to every registered student. A count
// mismatch after resolution catches unknown and duplicate ids in one check.
func (s *Service) CreateTest(ctx context.Context, name string, start time.Time, durationMinutes int, questionIDs []string) (Test, error) {
	if name == "" || durationMinutes <= 0 || len(questionIDs) == 0 {
		return Test{}, ErrInvalidTest
	}
	questions, err := s.store.QuestionsByIDs(ctx, questionIDs)
	if err != nil {
		return Test{}, fmt.Errorf("resolve questions: %w", err)
	}
	if len(questions) != len(questionIDs) {
		return Test{}, ErrQuestionsNotFound
	}

	t := Test{
		ID:              uuid.NewString(),
		Name:            name,
		ScheduledStart:  start,
		DurationMinutes: durationMinutes,
		QuestionIDs:     questionIDs,
		CreatedAt:       s.now(),
	}
	if err := s.store.PutTest(ctx, t); err != nil {
		return Test{}, fmt.Errorf("store test: %w", err)
	}

	s.announceTest(ctx, t)
	return t, nil
}

func (s *Service) announceTest(ctx context.Context, t Test) {
	emails, err := s.roster.Emails(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("test_id", t.ID).Msg("failed to resolve announcement recipients")
		return
	}
	err = s.events.Append(ctx, notify.EventTestCreated, t.ID, notify.TestCreated{
		TestID:          t.ID,
		TestName:        t.Name,
		StartsAt:        t.ScheduledStart,
		DurationMinutes: t.DurationMinutes,
		Recipients:      emails,
	})
	if err != nil {
		s.log.Error().Err(err).Str("test_id", t.ID).Msg("failed to queue test announcement")
	}
}

// ListTests returns every test with questions populated and correct
// answers stripped.
func (s *Service) ListTests(ctx context.Context) ([]TestView, error) {
	tests, err := s.store.ListTests(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TestView, 0, len(tests))
	for _, t := range tests {
		questions, err := s.store.QuestionsByIDs(ctx, t.QuestionIDs)
		if err != nil {
			return nil, fmt.Errorf("resolve questions for test %s: %w", t.ID, err)
		}
		out = append(out, newTestView(t, questions))
	}
	return out, nil
}

// GetTestForStudent gates the test content on the availability window and
// strips correct answers from the payload.
func (s *Service) GetTestForStudent(ctx context.Context, testID string) (TestView, error) {
	t, err := s.store.GetTest(ctx, testID)
	if err != nil {
		return TestView{}, err
	}
	now := s.now()
	if now.Before(t.ScheduledStart) {
		return TestView{}, ErrTestNotStarted
	}
	if now.After(WindowEnd(t)) {
		return TestView{}, ErrWindowExpired
	}
	questions, err := s.store.QuestionsByIDs(ctx, t.QuestionIDs)
	if err != nil {
		return TestView{}, fmt.Errorf("resolve questions: %w", err)
	}
	return newTestView(t, questions), nil
}

// Submit validates the submission against the availability window, scores
// it against the test's questions in stored order, persists the result
// exactly once per (test, student), and queues the result mail. Everything
// up to the insert is atomic; the notification is fire-and-forget.
func (s *Service) Submit(ctx context.Context, testID, studentID string, answers []*int) (Summary, error) {
	t, err := s.store.GetTest(ctx, testID)
	if err != nil {
		return Summary{}, err
	}
	questions, err := s.store.QuestionsByIDs(ctx, t.QuestionIDs)
	if err != nil {
		return Summary{}, fmt.Errorf("resolve questions: %w", err)
	}

	now := s.now()
	if now.Before(t.ScheduledStart) {
		return Summary{}, ErrTestNotStarted
	}
	if now.After(WindowEnd(t)) {
		return Summary{}, ErrWindowExpired
	}

	score := ScoreAnswers(questions, answers)
	r := Result{
		ID:             uuid.NewString(),
		TestID:         testID,
		StudentID:      studentID,
		Answers:        answers,
		Score:          score,
		TotalQuestions: len(questions),
		SubmittedAt:    now,
	}
	if err := s.store.InsertResult(ctx, r); err != nil {
		return Summary{}, err
	}

	s.notifyResult(ctx, t, r)
	return Summary{Score: score, TotalQuestions: len(questions)}, nil
}

func (s *Service) notifyResult(ctx context.Context, t Test, r Result) {
	c, err := s.roster.Contact(ctx, r.StudentID)
	if err != nil {
		s.log.Error().Err(err).Str("student_id", r.StudentID).Msg("failed to resolve result recipient")
		return
	}
	err = s.events.Append(ctx, notify.EventResultRecorded, r.ID, notify.ResultRecorded{
		Email:          c.Email,
		Name:           c.Name,
		TestName:       t.Name,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
	})
	if err != nil {
		s.log.Error().Err(err).Str("result_id", r.ID).Msg("failed to queue result notification")
	}
}

func (s *Service) ResultsForStudent(ctx context.Context, studentID string) ([]Result, error) {
	return s.store.ResultsByStudent(ctx, studentID)
}

// AllResults resolves each result's test and student explicitly; no
// store-side joins.
func (s *Service) AllResults(ctx context.Context) ([]ResultDetail, error) {
	results, err := s.store.ListResults(ctx)
	if err != nil {
		return nil, err
	}
	testNames := map[string]string{}
	out := make([]ResultDetail, 0, len(results))
	for _, r := range results {
		name, ok := testNames[r.TestID]
		if !ok {
			t, err := s.store.GetTest(ctx, r.TestID)
			if err != nil {
				return nil, fmt.Errorf("resolve test %s: %w", r.TestID, err)
			}
			name = t.Name
			testNames[r.TestID] = name
		}
		d := ResultDetail{Result: r, TestName: name}
		if c, err := s.roster.Contact(ctx, r.StudentID); err == nil {
			d.StudentName = c.Name
			d.StudentEmail = c.Email
		}
		out = append(out, d)
	}
	return out, nil
}
