package exam

import (
	"context"
	"sync"
)

// memoryStore backs tests and small deployments without a database file.
type memoryStore struct {
	mu        sync.RWMutex
	questions map[string]Question
	qOrder    []string
	tests     map[string]Test
	tOrder    []string
	results   map[string]Result // key: testID|studentID
	rOrder    []string
}

func NewInMemoryStore() Store {
	return &memoryStore{
		questions: map[string]Question{},
		tests:     map[string]Test{},
		results:   map[string]Result{},
	}
}

func (m *memoryStore) PutQuestion(_ context.Context, q Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[q.ID]; !ok {
		m.qOrder = append(m.qOrder, q.ID)
	}
	m.questions[q.ID] = q
	return nil
}

func (m *memoryStore) ListQuestions(_ context.Context) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Question, 0, len(m.qOrder))
	for _, id := range m.qOrder {
		out = append(out, m.questions[id])
	}
	return out, nil
}

func (m *memoryStore) QuestionsByIDs(_ context.Context, ids []string) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := m.questions[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memoryStore) PutTest(_ context.Context, t Test) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tests[t.ID]; !ok {
		m.tOrder = append(m.tOrder, t.ID)
	}
	m.tests[t.ID] = t
	return nil
}

func (m *memoryStore) GetTest(_ context.Context, id string) (Test, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tests[id]
	if !ok {
		return Test{}, ErrTestNotFound
	}
	return t, nil
}

func (m *memoryStore) ListTests(_ context.Context) ([]Test, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Test, 0, len(m.tOrder))
	for _, id := range m.tOrder {
		out = append(out, m.tests[id])
	}
	return out, nil
}

func (m *memoryStore) InsertResult(_ context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := r.TestID + "|" + r.StudentID
	if _, ok := m.results[key]; ok {
		return ErrAlreadySubmitted
	}
	m.results[key] = r
	m.rOrder = append(m.rOrder, key)
	return nil
}

func (m *memoryStore) ResultsByStudent(_ context.Context, studentID string) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Result
	for _, key := range m.rOrder {
		if r := m.results[key]; r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryStore) ListResults(_ context.Context) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Result, 0, len(m.rOrder))
	for _, key := range m.rOrder {
		out = append(out, m.results[key])
	}
	return out, nil
}
