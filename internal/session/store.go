package session

import (
	"context"
	"sort"
	"sync"

	"github.com/228Abobus228/SPTOVZ/internal/emspt"
)

type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	// Finish records answers and result once; a second call returns
	// ErrAlreadyFinished.
	Finish(ctx context.Context, id string, answers emspt.AnswerMap, result emspt.ScoreResult, at int64) (Session, error)
	List(ctx context.Context, opts ListOpts) ([]Session, error)
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemoryStore() Store {
	return &memoryStore{sessions: map[string]Session{}}
}

func (m *memoryStore) Create(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memoryStore) Get(_ context.Context, id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (m *memoryStore) Finish(_ context.Context, id string, answers emspt.AnswerMap, result emspt.ScoreResult, at int64) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	if s.Finished() {
		return Session{}, ErrAlreadyFinished
	}
	s.FinishedAt = &at
	s.Answers = answers
	s.Result = &result
	m.sessions[id] = s
	return s, nil
}

func (m *memoryStore) List(_ context.Context, opts ListOpts) ([]Session, error) {
	m.mu.RLock()
	out := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if opts.Form != "" && s.Form != opts.Form {
			continue
		}
		if opts.Impairment != "" && s.Impairment != opts.Impairment {
			continue
		}
		if opts.Finished != nil && s.Finished() != *opts.Finished {
			continue
		}
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt != out[j].StartedAt {
			return out[i].StartedAt > out[j].StartedAt
		}
		return out[i].ID < out[j].ID
	})
	if opts.offset() >= len(out) {
		return []Session{}, nil
	}
	out = out[opts.offset():]
	if n := opts.limit(); len(out) > n {
		out = out[:n]
	}
	return out, nil
}
