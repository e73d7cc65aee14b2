package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutQuestion(ctx context.Context, q Question) error {
	oj, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO questions (id,text,code_snippet,options_json,correct_index,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		q.ID, q.Text, q.CodeSnippet, string(oj), q.CorrectIndex, q.CreatedAt.Unix())
	return err
}

func (s *SQLStore) ListQuestions(ctx context.Context) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,text,code_snippet,options_json,correct_index,created_at FROM questions ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) QuestionsByIDs(ctx context.Context, ids []string) ([]Question, error) {
	out := make([]Question, 0, len(ids))
	for _, id := range ids {
		row := s.db.QueryRowContext(ctx,
			`SELECT id,text,code_snippet,options_json,correct_index,created_at FROM questions WHERE id=$1`, id)
		q, err := scanQuestion(row)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanQuestion(row rowScanner) (Question, error) {
	var q Question
	var oj string
	var created int64
	if err := row.Scan(&q.ID, &q.Text, &q.CodeSnippet, &oj, &q.CorrectIndex, &created); err != nil {
		return Question{}, err
	}
	if err := json.Unmarshal([]byte(oj), &q.Options); err != nil {
		return Question{}, err
	}
	q.CreatedAt = time.Unix(created, 0)
	return q, nil
}

func (s *SQLStore) PutTest(ctx context.Context, t Test) error {
	qj, err := json.Marshal(t.QuestionIDs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tests (id,name,scheduled_start,duration_minutes,question_ids_json,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		t.ID, t.Name, t.ScheduledStart.Unix(), t.DurationMinutes, string(qj), t.CreatedAt.Unix())
	return err
}

func (s *SQLStore) GetTest(ctx context.Context, id string) (Test, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,name,scheduled_start,duration_minutes,question_ids_json,created_at FROM tests WHERE id=$1`, id)
	t, err := scanTest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Test{}, ErrTestNotFound
	}
	return t, err
}

func (s *SQLStore) ListTests(ctx context.Context) ([]Test, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,name,scheduled_start,duration_minutes,question_ids_json,created_at FROM tests ORDER BY scheduled_start, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Test
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTest(row rowScanner) (Test, error) {
	var t Test
	var qj string
	var start, created int64
	if err := row.Scan(&t.ID, &t.Name, &start, &t.DurationMinutes, &qj, &created); err != nil {
		return Test{}, err
	}
	if err := json.Unmarshal([]byte(qj), &t.QuestionIDs); err != nil {
		return Test{}, err
	}
	t.ScheduledStart = time.Unix(start, 0)
	t.CreatedAt = time.Unix(created, 0)
	return t, nil
}

func (s *SQLStore) InsertResult(ctx context.Context, r Result) error {
	aj, err := json.Marshal(r.Answers)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO results (id,test_id,student_id,answers_json,score,total_questions,submitted_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		r.ID, r.TestID, r.StudentID, string(aj), r.Score, r.TotalQuestions, r.SubmittedAt.Unix())
	if isUniqueViolation(err) {
		return ErrAlreadySubmitted
	}
	return err
}

func (s *SQLStore) ResultsByStudent(ctx context.Context, studentID string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,test_id,student_id,answers_json,score,total_questions,submitted_at
		 FROM results WHERE student_id=$1 ORDER BY submitted_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectResults(rows)
}

func (s *SQLStore) ListResults(ctx context.Context) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,test_id,student_id,answers_json,score,total_questions,submitted_at
		 FROM results ORDER BY submitted_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectResults(rows)
}

func collectResults(rows *sql.Rows) ([]Result, error) {
	var out []Result
	for rows.Next() {
		var r Result
		var aj string
		var submitted int64
		if err := rows.Scan(&r.ID, &r.TestID, &r.StudentID, &aj, &r.Score, &r.TotalQuestions, &submitted); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(aj), &r.Answers); err != nil {
			return nil, err
		}
		r.SubmittedAt = time.Unix(submitted, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "sqlstate 23505")
}
