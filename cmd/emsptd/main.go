package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/228Abobus228/SPTOVZ/internal/api/http"
	auth "github.com/228Abobus228/SPTOVZ/internal/auth/middleware"
	"github.com/228Abobus228/SPTOVZ/internal/config"
	"github.com/228Abobus228/SPTOVZ/internal/db"
	"github.com/228Abobus228/SPTOVZ/internal/emspt"
	"github.com/228Abobus228/SPTOVZ/internal/emspt/configstore"
	"github.com/228Abobus228/SPTOVZ/internal/rbac"
	"github.com/228Abobus228/SPTOVZ/internal/session"
)

func main() {
	cfg := config.FromEnv()

	// --- Scoring tables ---
	tables, err := configstore.Load(cfg.ConfigRoot)
	if err != nil {
		log.Fatalf("config store: %v", err)
	}
	gaps := tables.Coverage()
	for _, g := range gaps {
		log.Printf("config gap: %s missing %v", g.Profile, g.Missing)
	}
	if cfg.StrictConfig && len(gaps) > 0 {
		log.Fatalf("config store %s: %d profiles cannot be scored", tables.Root(), len(gaps))
	}
	engine := emspt.NewEngine(tables)

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer dbh.Close()
	sessions := session.NewService(session.NewSQLStore(dbh, cfg.DBDriver), engine)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret,
		auth.Account{Username: cfg.AdminUser, PassHash: cfg.AdminPassHash, Role: rbac.RoleAdmin},
		auth.Account{Username: cfg.PsychologistUser, PassHash: cfg.PsychologistPassHash, Role: rbac.RolePsychologist},
	)

	r := api.NewRouter(api.Deps{
		Sessions:        sessions,
		Engine:          engine,
		Coverage:        tables.Coverage,
		Auth:            authSvc,
		EnableLocalAuth: cfg.EnableLocalAuth,
		CORSOrigins:     cfg.CORSOrigins(),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("listening on %s (mode=%s, db=%s, config=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver, tables.Root())
	log.Fatal(srv.ListenAndServe())
}
