package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/228Abobus228/SPTOVZ/internal/answers"
	"github.com/228Abobus228/SPTOVZ/internal/emspt"
)

// Service runs the participant flow: start a session, submit answers,
// score them and keep the result.
type Service struct {
	store  Store
	engine *emspt.Engine
	now    func() time.Time
	newID  func() string
}

func NewService(store Store, engine *emspt.Engine) *Service {
	return &Service{
		store:  store,
		engine: engine,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

type StartInput struct {
	Age         int      `json:"age"`
	Gender      string   `json:"gender"`
	Impairment  string   `json:"impairment"`
	Form        string   `json:"form"`
	TestName    string   `json:"test_name"`
	QuestionIDs []string `json:"question_ids,omitempty"`
}

// Start validates the profile and opens a new session.
func (s *Service) Start(ctx context.Context, in StartInput) (Session, error) {
	p, err := emspt.ParseProfile(in.Form, in.Impairment, in.Gender)
	if err != nil {
		return Session{}, err
	}
	if in.Age <= 0 {
		return Session{}, fmt.Errorf("%w: age must be positive", ErrInvalidInput)
	}
	sess := Session{
		ID:          s.newID(),
		Age:         in.Age,
		Gender:      p.Gender,
		Impairment:  p.Impairment,
		Form:        p.Form,
		TestName:    strings.TrimSpace(in.TestName),
		QuestionIDs: in.QuestionIDs,
		StartedAt:   s.now().Unix(),
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Submission is a finished session plus the number of questions its
// answers were matched against.
type Submission struct {
	Session
	Questions int
}

// Submit parses raw answers, scores them and finishes the session. Nothing
// is saved when parsing or scoring fails.
func (s *Service) Submit(ctx context.Context, id string, raw []byte) (Submission, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return Submission{}, err
	}
	if sess.Finished() {
		return Submission{}, ErrAlreadyFinished
	}

	order := sess.QuestionIDs
	if len(order) == 0 {
		t, err := s.engine.Tables(sess.Profile())
		if err != nil {
			return Submission{}, err
		}
		order = answers.QuestionOrder(t.Keys.Keys)
	}
	ans, err := answers.Parse(raw, order)
	if err != nil {
		return Submission{}, err
	}

	res, err := s.engine.Compute(ctx, ans, sess.Profile())
	if err != nil {
		return Submission{}, err
	}
	done, err := s.store.Finish(ctx, id, ans, res, s.now().Unix())
	if err != nil {
		return Submission{}, err
	}
	return Submission{Session: done, Questions: len(order)}, nil
}

func (s *Service) Get(ctx context.Context, id string) (Session, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, opts ListOpts) ([]Session, error) {
	return s.store.List(ctx, opts)
}
