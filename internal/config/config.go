package config

import (
	"os"
	"strings"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string
	DBDSN    string

	// ConfigRoot holds keys, lie correction, norms, sten tables and
	// interpretations.
	ConfigRoot   string
	StrictConfig bool

	EnableLocalAuth bool
	AuthSecret      string // HS256

	AdminUser     string
	AdminPassHash string // bcrypt

	// optional second account with the psychologist role
	PsychologistUser     string
	PsychologistPassHash string

	CORSOriginsOnline  []string
	CORSOriginsOffline []string
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	return Config{
		Mode:                 mode,
		HTTPAddr:             envOr("HTTP_ADDR", ":8080"),
		DBDriver:             envOr("DB_DRIVER", "sqlite"),
		DBDSN:                envOr("DB_DSN", ""),
		ConfigRoot:           envOr("EMSPT_CONFIG_ROOT", "./config/emspt"),
		StrictConfig:         envBool("STRICT_CONFIG", mode == ModeOnline),
		EnableLocalAuth:      envBool("ENABLE_LOCAL_AUTH", true),
		AuthSecret:           envOr("AUTH_HMAC_SECRET", "dev-secret-change-me"),
		AdminUser:            envOr("ADMIN_USER", "admin"),
		AdminPassHash:        envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),
		PsychologistUser:     os.Getenv("PSYCHOLOGIST_USER"),
		PsychologistPassHash: os.Getenv("PSYCHOLOGIST_PASS_HASH"),
		CORSOriginsOnline:    csvOr("CORS_ORIGINS_ONLINE", "https://sptovz.ru"),
		CORSOriginsOffline:   csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:5173"),
	}
}

// CORSOrigins returns the allow-list for the current mode.
func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
