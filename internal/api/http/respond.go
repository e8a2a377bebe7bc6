package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/228Abobus228/SPTOVZ/internal/answers"
	"github.com/228Abobus228/SPTOVZ/internal/emspt"
	"github.com/228Abobus228/SPTOVZ/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, emspt.ErrInvalidProfile),
		errors.Is(err, answers.ErrMalformed),
		errors.Is(err, answers.ErrCountMismatch),
		errors.Is(err, session.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrAlreadyFinished):
		return http.StatusConflict
	case errors.Is(err, emspt.ErrConfigNotFound):
		// the request is fine, the profile just has no norms loaded
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError || status == http.StatusUnprocessableEntity {
		log.Printf("api: %v", err)
	}
	http.Error(w, err.Error(), status)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
