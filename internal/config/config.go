package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"askdesk/internal/models/wizard_models"
)

const (
	CatalogSourceStatic   = "static"
	CatalogSourcePostgres = "postgres"
)

// AppConfig holds everything read from the environment at startup.
type AppConfig struct {
	Env        string
	Port       string
	CORSOrigin string

	CatalogSource string
	PostgresURL   string

	WizardMode         wizard_models.WizardMode
	RegenerationPolicy wizard_models.RegenerationPolicy
	TemplateLocale     string

	GenerationDelay time.Duration
	SubmissionDelay time.Duration
	SessionTTL      time.Duration
	SweepInterval   time.Duration
}

func (c AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads an optional .env file and then the process environment.
func Load() (AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return AppConfig{}, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the config from a lookup function so tests can avoid the
// process environment.
func FromEnv(getenv func(string) string) (AppConfig, error) {
	get := func(key, defaultValue string) string {
		if value := strings.TrimSpace(getenv(key)); value != "" {
			return value
		}
		return defaultValue
	}

	cfg := AppConfig{
		Env:                get("APP_ENV", "production"),
		Port:               get("PORT", "8080"),
		CORSOrigin:         get("CORS_ORIGIN", ""),
		CatalogSource:      strings.ToLower(get("CATALOG_SOURCE", CatalogSourceStatic)),
		PostgresURL:        get("POSTGRES_URL", ""),
		WizardMode:         wizard_models.WizardMode(strings.ToLower(get("WIZARD_MODE", string(wizard_models.WizardModeClassic)))),
		RegenerationPolicy: wizard_models.RegenerationPolicy(strings.ToLower(get("REGENERATION_POLICY", string(wizard_models.RegenerationPreserveEdits)))),
		TemplateLocale:     strings.ToLower(get("TEMPLATE_LOCALE", "ko")),
	}

	var err error
	if cfg.GenerationDelay, err = parseDuration("GENERATION_DELAY", get("GENERATION_DELAY", "2s")); err != nil {
		return AppConfig{}, err
	}
	if cfg.SubmissionDelay, err = parseDuration("SUBMISSION_DELAY", get("SUBMISSION_DELAY", "1500ms")); err != nil {
		return AppConfig{}, err
	}
	if cfg.SessionTTL, err = parseDuration("SESSION_TTL", get("SESSION_TTL", "30m")); err != nil {
		return AppConfig{}, err
	}
	if cfg.SweepInterval, err = parseDuration("SWEEP_INTERVAL", get("SWEEP_INTERVAL", "1m")); err != nil {
		return AppConfig{}, err
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func (c AppConfig) validate() error {
	switch c.CatalogSource {
	case CatalogSourceStatic:
	case CatalogSourcePostgres:
		if c.PostgresURL == "" {
			return errors.New("POSTGRES_URL is required when CATALOG_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("unsupported CATALOG_SOURCE %q, use 'static' or 'postgres'", c.CatalogSource)
	}
	if !c.WizardMode.IsValid() {
		return fmt.Errorf("unsupported WIZARD_MODE %q, use 'classic' or 'live'", c.WizardMode)
	}
	if !c.RegenerationPolicy.IsValid() {
		return fmt.Errorf("unsupported REGENERATION_POLICY %q, use 'preserve_edits' or 'overwrite'", c.RegenerationPolicy)
	}
	if c.TemplateLocale != "ko" && c.TemplateLocale != "en" {
		return fmt.Errorf("unsupported TEMPLATE_LOCALE %q, use 'ko' or 'en'", c.TemplateLocale)
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.SweepInterval <= 0 {
		return errors.New("SWEEP_INTERVAL must be positive")
	}
	return nil
}

func parseDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}
