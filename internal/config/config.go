package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort        = "8080"
	defaultDatabaseURL = "sqlite://postboard.db?_pragma=foreign_keys(1)"
	defaultUploadDir   = "static/uploads"
	defaultImageDir    = "static/img"
)

// Config is the application context handed to the router at startup.
type Config struct {
	Port          string
	DatabaseURL   string
	DBDebug       bool
	SessionSecret string
	SessionMaxAge time.Duration
	SecureCookies bool
	UploadDir     string
	ImageDir      string
	MaxUploadMB   int64
	CORSOrigin    string
	AuthRateRPS   float64
	AuthRateBurst int
	BcryptCost    int
}

// Load reads a .env file if present and builds a Config from the environment.
// Every invalid or missing value is reported in the returned error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from an arbitrary lookup function.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	p := parser{lookup: lookup}

	cfg := &Config{
		Port:          p.str("PORT", defaultPort),
		DatabaseURL:   p.str("DATABASE_URL", defaultDatabaseURL),
		DBDebug:       p.boolean("DB_DEBUG", false),
		SessionSecret: p.required("SESSION_SECRET"),
		SessionMaxAge: time.Duration(p.integer("SESSION_MAX_AGE", 7*24*60*60)) * time.Second,
		SecureCookies: p.boolean("SECURE_COOKIES", false),
		UploadDir:     p.str("UPLOAD_DIR", defaultUploadDir),
		ImageDir:      p.str("IMAGE_DIR", defaultImageDir),
		MaxUploadMB:   int64(p.integer("MAX_UPLOAD_MB", 16)),
		CORSOrigin:    p.str("CORS_ORIGIN", "*"),
		AuthRateRPS:   p.float("AUTH_RATE_LIMIT_RPS", 1),
		AuthRateBurst: p.integer("AUTH_RATE_LIMIT_BURST", 5),
		BcryptCost:    p.integer("BCRYPT_COST", 0),
	}

	if cfg.SessionSecret != "" && len(cfg.SessionSecret) < 16 {
		p.fail("SESSION_SECRET must be at least 16 bytes")
	}
	if cfg.BcryptCost != 0 && (cfg.BcryptCost < 4 || cfg.BcryptCost > 31) {
		p.fail("BCRYPT_COST must be between 4 and 31")
	}
	if cfg.MaxUploadMB <= 0 {
		p.fail("MAX_UPLOAD_MB must be positive")
	}

	if len(p.errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.New(strings.Join(p.errs, "; ")))
	}
	return cfg, nil
}

type parser struct {
	lookup func(string) (string, bool)
	errs   []string
}

func (p *parser) fail(msg string) {
	p.errs = append(p.errs, msg)
}

func (p *parser) required(key string) string {
	v, ok := p.lookup(key)
	if !ok || v == "" {
		p.fail("missing required environment variable: " + key)
		return ""
	}
	return v
}

func (p *parser) str(key, def string) string {
	if v, ok := p.lookup(key); ok && v != "" {
		return v
	}
	return def
}

func (p *parser) integer(key string, def int) int {
	v, ok := p.lookup(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(fmt.Sprintf("%s must be an integer, got %q", key, v))
		return def
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	v, ok := p.lookup(key)
	if !ok || v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(fmt.Sprintf("%s must be a number, got %q", key, v))
		return def
	}
	return f
}

func (p *parser) boolean(key string, def bool) bool {
	v, ok := p.lookup(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(fmt.Sprintf("%s must be a boolean, got %q", key, v))
		return def
	}
	return b
}
