package session

import (
	"errors"

	"github.com/228Abobus228/SPTOVZ/internal/emspt"
)

var (
	ErrNotFound        = errors.New("session not found")
	ErrAlreadyFinished = errors.New("session already finished")
	ErrInvalidInput    = errors.New("invalid session input")
)

// Session is one participant's pass through a test form.
type Session struct {
	ID          string             `json:"id"`
	Age         int                `json:"age"`
	Gender      emspt.Gender       `json:"gender"` // scoring only, never test selection
	Impairment  emspt.Impairment   `json:"impairment"`
	Form        emspt.Form         `json:"form"`
	TestName    string             `json:"test_name"`
	QuestionIDs []string           `json:"question_ids,omitempty"` // positional answer order
	StartedAt   int64              `json:"started_at"`
	FinishedAt  *int64             `json:"finished_at,omitempty"`
	Answers     emspt.AnswerMap    `json:"answers,omitempty"`
	Result      *emspt.ScoreResult `json:"result,omitempty"`
}

func (s Session) Profile() emspt.Profile {
	return emspt.Profile{Form: s.Form, Impairment: s.Impairment, Gender: s.Gender}
}

func (s Session) Finished() bool { return s.FinishedAt != nil }

type ListOpts struct {
	Form       emspt.Form
	Impairment emspt.Impairment
	Finished   *bool
	Limit      int
	Offset     int
}

func (o ListOpts) limit() int {
	if o.Limit <= 0 || o.Limit > 500 {
		return 50
	}
	return o.Limit
}

func (o ListOpts) offset() int {
	if o.Offset < 0 {
		return 0
	}
	return o.Offset
}
