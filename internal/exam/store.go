package exam

import (
	"context"
	"errors"
)

var (
	ErrTestNotFound      = errors.New("test not found")
	ErrQuestionsNotFound = errors.New("one or more questions not found")
	ErrAlreadySubmitted  = errors.New("test already submitted")
	ErrTestNotStarted    = errors.New("test has not started yet")
	ErrWindowExpired     = errors.New("submission window expired")
	ErrInvalidQuestion   = errors.New("question needs at least two options and a valid correct index")
	ErrInvalidTest       = errors.New("test needs a name, a positive duration and at least one question")
)

// Store is the persistence boundary for the question bank, test
// definitions and results. InsertResult must be an atomic insert-if-absent
// on (test_id, student_id); the loser of a double-submit race gets
// ErrAlreadySubmitted.
type Store interface {
	PutQuestion(ctx context.Context, q Question) error
	ListQuestions(ctx context.Context) ([]Question, error)
	// QuestionsByIDs returns the questions that exist, in the order ids
	// was given. Missing ids are simply absent from the result.
	QuestionsByIDs(ctx context.Context, ids []string) ([]Question, error)

	PutTest(ctx context.Context, t Test) error
	GetTest(ctx context.Context, id string) (Test, error)
	ListTests(ctx context.Context) ([]Test, error)

	InsertResult(ctx context.Context, r Result) error
	ResultsByStudent(ctx context.Context, studentID string) ([]Result, error)
	ListResults(ctx context.Context) ([]Result, error)
}
