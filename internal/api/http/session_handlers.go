package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/228Abobus228/SPTOVZ/internal/emspt"
	"github.com/228Abobus228/SPTOVZ/internal/session"
)

const maxBody = 1 << 20

// POST /api/sessions
func StartSessionHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in session.StartInput
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		sess, err := svc.Start(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"session_id": sess.ID,
			"test_name":  sess.TestName,
			"form":       sess.Form,
			"started_at": sess.StartedAt,
		})
	}
}

// POST /api/sessions/{sessionID}/answers
//
// Body is either the bare answers payload or {"answers": <payload>} with
// no other keys.
func SubmitAnswersHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		var wrapped map[string]json.RawMessage
		if json.Unmarshal(body, &wrapped) == nil && len(wrapped) == 1 && len(wrapped["answers"]) > 0 {
			if inner := bytes.TrimSpace(wrapped["answers"]); len(inner) > 0 && (inner[0] == '{' || inner[0] == '[') {
				body = inner
			}
		}
		sess, err := svc.Submit(r.Context(), id, body)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"session_id": sess.ID,
			"saved":      true,
			"questions":  sess.Questions,
			"computed":   sess.Result != nil,
			"result":     sess.Result,
		})
	}
}

// GET /api/sessions/{sessionID}
func GetSessionHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := svc.Get(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

func listOpts(r *http.Request) session.ListOpts {
	q := r.URL.Query()
	opts := session.ListOpts{
		Form:       emspt.Form(strings.ToUpper(strings.TrimSpace(q.Get("form")))),
		Impairment: emspt.Impairment(strings.ToLower(strings.TrimSpace(q.Get("impairment")))),
		Limit:      parseIntDefault(q.Get("limit"), 50),
		Offset:     parseIntDefault(q.Get("offset"), 0),
	}
	switch strings.TrimSpace(q.Get("finished")) {
	case "true", "1":
		v := true
		opts.Finished = &v
	case "false", "0":
		v := false
		opts.Finished = &v
	}
	return opts
}

// GET /api/sessions?form=A&impairment=hearing&finished=true&limit=50&offset=0
func ListSessionsHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context(), listOpts(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /api/stats/summary?form=A&impairment=hearing
func SummaryHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := svc.Summary(r.Context(), listOpts(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	}
}
