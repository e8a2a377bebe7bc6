package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/228Abobus228/SPTOVZ/internal/emspt"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

const sessionColumns = `id,age,gender,impairment,form,test_name,question_ids_json,started_at,finished_at,answers_json,result_json`

func (s *SQLStore) Create(ctx context.Context, sess Session) error {
	qids, err := json.Marshal(sess.QuestionIDs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO test_sessions (id,age,gender,impairment,form,test_name,question_ids_json,started_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		sess.ID, sess.Age, string(sess.Gender), string(sess.Impairment), string(sess.Form), sess.TestName, string(qids), sess.StartedAt)
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM test_sessions WHERE id=$1`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	return sess, err
}

func (s *SQLStore) Finish(ctx context.Context, id string, answers emspt.AnswerMap, result emspt.ScoreResult, at int64) (Session, error) {
	aj, err := json.Marshal(answers)
	if err != nil {
		return Session{}, err
	}
	rj, err := json.Marshal(result)
	if err != nil {
		return Session{}, err
	}
	// only the first submit matches finished_at IS NULL
	res, err := s.db.ExecContext(ctx, `UPDATE test_sessions SET answers_json=$1, result_json=$2, finished_at=$3
		WHERE id=$4 AND finished_at IS NULL`, string(aj), string(rj), at, id)
	if err != nil {
		return Session{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Session{}, err
	}
	if n == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return Session{}, err
		}
		return Session{}, ErrAlreadyFinished
	}
	return s.Get(ctx, id)
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Session, error) {
	var (
		where []string
		args  []any
	)
	if opts.Form != "" {
		args = append(args, string(opts.Form))
		where = append(where, fmt.Sprintf("form=$%d", len(args)))
	}
	if opts.Impairment != "" {
		args = append(args, string(opts.Impairment))
		where = append(where, fmt.Sprintf("impairment=$%d", len(args)))
	}
	if opts.Finished != nil {
		if *opts.Finished {
			where = append(where, "finished_at IS NOT NULL")
		} else {
			where = append(where, "finished_at IS NULL")
		}
	}
	q := `SELECT ` + sessionColumns + ` FROM test_sessions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, opts.limit(), opts.offset())
	q += fmt.Sprintf(" ORDER BY started_at DESC, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(sc scanner) (Session, error) {
	var (
		sess                 Session
		gender, imp, form    string
		qids                 string
		finished             sql.NullInt64
		answersJSON, resJSON sql.NullString
	)
	if err := sc.Scan(&sess.ID, &sess.Age, &gender, &imp, &form, &sess.TestName, &qids,
		&sess.StartedAt, &finished, &answersJSON, &resJSON); err != nil {
		return Session{}, err
	}
	sess.Gender = emspt.Gender(gender)
	sess.Impairment = emspt.Impairment(imp)
	sess.Form = emspt.Form(form)
	if err := json.Unmarshal([]byte(qids), &sess.QuestionIDs); err != nil {
		sess.QuestionIDs = nil
	}
	if finished.Valid {
		at := finished.Int64
		sess.FinishedAt = &at
	}
	if answersJSON.Valid && answersJSON.String != "" {
		if err := json.Unmarshal([]byte(answersJSON.String), &sess.Answers); err != nil {
			return Session{}, fmt.Errorf("session %s answers: %w", sess.ID, err)
		}
	}
	if resJSON.Valid && resJSON.String != "" {
		var r emspt.ScoreResult
		if err := json.Unmarshal([]byte(resJSON.String), &r); err != nil {
			return Session{}, fmt.Errorf("session %s result: %w", sess.ID, err)
		}
		sess.Result = &r
	}
	return sess, nil
}
