package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	auth "github.com/228Abobus228/SPTOVZ/internal/auth/middleware"
	"github.com/228Abobus228/SPTOVZ/internal/emspt"
	"github.com/228Abobus228/SPTOVZ/internal/emspt/configstore"
	"github.com/228Abobus228/SPTOVZ/internal/rbac"
	"github.com/228Abobus228/SPTOVZ/internal/session"
)

type Deps struct {
	Sessions *session.Service
	Engine   *emspt.Engine
	Coverage func() []configstore.Gap
	Auth     *auth.AuthService

	EnableLocalAuth bool
	CORSOrigins     []string
	RequestTimeout  time.Duration // 0 means 30s
}

func NewRouter(d Deps) http.Handler {
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	if d.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(d.Auth))
	}

	r.Route("/api", func(ar chi.Router) {
		// Participant flow
		ar.Post("/sessions", StartSessionHandler(d.Sessions))
		ar.Post("/sessions/{sessionID}/answers", SubmitAnswersHandler(d.Sessions))

		// Staff (JWT → role in context → RBAC)
		ar.Group(func(pr chi.Router) {
			pr.Use(auth.JWTMiddleware(d.Auth))

			pr.With(rbac.Require(rbac.PermSessionView)).
				Get("/sessions", ListSessionsHandler(d.Sessions))
			pr.With(rbac.Require(rbac.PermSessionView)).
				Get("/sessions/{sessionID}", GetSessionHandler(d.Sessions))
			pr.With(rbac.Require(rbac.PermSessionView)).
				Get("/stats/summary", SummaryHandler(d.Sessions))
			pr.With(rbac.Require(rbac.PermScoreCompute)).
				Post("/score", ScoreHandler(d.Engine))
			pr.With(rbac.Require(rbac.PermConfigView)).
				Get("/config/coverage", CoverageHandler(d.Coverage))
		})
	})
	return r
}
