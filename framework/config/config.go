package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ErrMissingKey is returned by GetString when a key has no value.
var ErrMissingKey = errors.New("configuration key not set")

// Getter is the read-only view of configuration handed to controllers.
type Getter interface {
	GetString(key string) (string, error)
}

// Config is the central typed configuration struct.
type Config struct {
	App  AppConfig
	View ViewConfig
	Log  LogConfig

	values map[string]string
}

type AppConfig struct {
	Name    string
	Env     string // local | production | testing
	Debug   bool
	BaseURL string
	Port    string
}

// ViewConfig locates templates. ProjectPath is handed to template services,
// which append the template group.
type ViewConfig struct {
	ProjectPath   string
	TemplateGroup string
	RoutesFile    string
	PublicDir     string
}

type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // json | console
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	c := &Config{values: make(map[string]string)}
	c.App = AppConfig{
		Name:    c.env("APP_NAME", "GoMVC"),
		Env:     c.env("APP_ENV", "local"),
		Debug:   envBool("APP_DEBUG", true),
		BaseURL: c.env("BASE_URL", "http://localhost:8000"),
		Port:    c.env("APP_PORT", "8000"),
	}
	c.View = ViewConfig{
		ProjectPath:   c.env("PROJECT_PATH", "."),
		TemplateGroup: c.env("TEMPLATE_GROUP", "default"),
		RoutesFile:    c.env("ROUTES_FILE", "routes.yaml"),
		PublicDir:     c.env("PUBLIC_DIR", "public"),
	}
	c.Log = LogConfig{
		Level:  c.env("LOG_LEVEL", "info"),
		Format: c.env("LOG_FORMAT", "console"),
	}
	return c
}

// FromMap builds a Config from explicit key/value pairs without touching
// the process environment. Unset keys keep Load's defaults.
func FromMap(values map[string]string) *Config {
	c := &Config{values: make(map[string]string, len(values))}
	for k, v := range values {
		c.values[k] = v
	}
	lookup := func(key, fallback string) string {
		if v, ok := c.values[key]; ok && v != "" {
			return v
		}
		c.values[key] = fallback
		return fallback
	}
	debug, err := strconv.ParseBool(lookup("APP_DEBUG", "true"))
	if err != nil {
		debug = true
	}
	c.App = AppConfig{
		Name:    lookup("APP_NAME", "GoMVC"),
		Env:     lookup("APP_ENV", "testing"),
		Debug:   debug,
		BaseURL: lookup("BASE_URL", "http://localhost:8000"),
		Port:    lookup("APP_PORT", "8000"),
	}
	c.View = ViewConfig{
		ProjectPath:   lookup("PROJECT_PATH", "."),
		TemplateGroup: lookup("TEMPLATE_GROUP", "default"),
		RoutesFile:    lookup("ROUTES_FILE", "routes.yaml"),
		PublicDir:     lookup("PUBLIC_DIR", "public"),
	}
	c.Log = LogConfig{
		Level:  lookup("LOG_LEVEL", "info"),
		Format: lookup("LOG_FORMAT", "console"),
	}
	return c
}

// GetString returns the value a key was loaded with, falling back to the
// process environment for keys Load does not know about.
func (c *Config) GetString(key string) (string, error) {
	if v, ok := c.values[key]; ok && v != "" {
		return v, nil
	}
	if v := os.Getenv(key); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s", ErrMissingKey, key)
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// ── helpers ─────────────────────────────────────────────────────────────────

func (c *Config) env(key, fallback string) string {
	v := Get(key, fallback)
	c.values[key] = v
	return v
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
