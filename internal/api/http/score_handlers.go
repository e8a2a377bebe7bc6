package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/228Abobus228/SPTOVZ/internal/answers"
	"github.com/228Abobus228/SPTOVZ/internal/emspt"
	"github.com/228Abobus228/SPTOVZ/internal/emspt/configstore"
)

// POST /api/score  {"profile": {...}, "answers": <payload>}
//
// Stateless scoring; nothing is stored.
func ScoreHandler(engine *emspt.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Profile struct {
				Form       string `json:"form"`
				Impairment string `json:"impairment"`
				Gender     string `json:"gender"`
			} `json:"profile"`
			Answers json.RawMessage `json:"answers"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		p, err := emspt.ParseProfile(req.Profile.Form, req.Profile.Impairment, req.Profile.Gender)
		if err != nil {
			writeError(w, err)
			return
		}
		t, err := engine.Tables(p)
		if err != nil {
			writeError(w, err)
			return
		}
		ans, err := answers.Parse(req.Answers, answers.QuestionOrder(t.Keys.Keys))
		if err != nil {
			writeError(w, err)
			return
		}
		res, err := engine.Compute(r.Context(), ans, p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// GET /api/config/coverage
func CoverageHandler(coverage func() []configstore.Gap) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gaps := coverage()
		if gaps == nil {
			gaps = []configstore.Gap{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"complete": len(gaps) == 0,
			"gaps":     gaps,
		})
	}
}
