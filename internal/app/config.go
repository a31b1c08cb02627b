package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const dateLayout = "2006-01-02"

// Config holds application configuration from env
type Config struct {
	DataProvider      string   `validate:"oneof=ology"`
	APIBaseURL        string   `validate:"required,url"`
	APITokens         []string `validate:"dive,required"`
	DomainsFile       string
	DataDir           string `validate:"required"`
	SaveFormat        string `validate:"oneof=csv parquet json"`
	LogLevel          string `validate:"oneof=debug info warn warning error"` // debug | info | warn | error
	LogFormat         string `validate:"oneof=text json"`
	StartDate         time.Time
	EndDate           time.Time `validate:"gtfield=StartDate"`
	SubdomainRollup   string    `validate:"required"`
	RequestsPerSecond float64   `validate:"gt=0"`
	Workers           int       `validate:"gte=1,lte=64"`
	RunHour           int       `validate:"gte=0,lte=23"`
	RunMinute         int       `validate:"gte=0,lte=59"`
	ListenAddr        string    `validate:"required"`
}

// LoadConfig reads an optional .env file, then the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env", "error", err)
	}

	cfg := &Config{
		DataProvider:    strings.ToLower(getEnv("DATA_PROVIDER", "ology")),
		APIBaseURL:      strings.TrimRight(os.Getenv("OLOGY_API_URL"), "/"),
		DomainsFile:     getEnv("DOMAINS_FILE", "domains.txt"),
		DataDir:         getEnv("DATA_DIR", "data"),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(getEnv("LOG_FORMAT", "text")),
		SubdomainRollup: getEnv("SUBDOMAIN_ROLLUP", "none"),
		RunHour:         0,
		RunMinute:       30,
		ListenAddr:      getEnv("LISTEN_ADDR", ":8080"),
	}
	cfg.SaveFormat = getSaveFormat()
	cfg.APITokens = parseAPITokens()

	var err error
	if cfg.StartDate, err = getDate("START_DATE", "2010-01-01"); err != nil {
		return nil, err
	}
	if cfg.EndDate, err = getDate("END_DATE", "2014-01-01"); err != nil {
		return nil, err
	}
	if cfg.RequestsPerSecond, err = getFloat("REQUESTS_PER_SECOND", 5); err != nil {
		return nil, err
	}
	if cfg.Workers, err = getInt("WORKERS", max(len(cfg.APITokens), 1)); err != nil {
		return nil, err
	}
	if cfg.RunHour, err = getInt("RUN_HOUR", cfg.RunHour); err != nil {
		return nil, err
	}
	if cfg.RunMinute, err = getInt("RUN_MINUTE", cfg.RunMinute); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags of the config.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %w", key, v, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %w", key, v, err)
	}
	return f, nil
}

func getDate(key, def string) (time.Time, error) {
	v := getEnv(key, def)
	d, err := time.ParseInLocation(dateLayout, strings.TrimSpace(v), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s=%q: want YYYY-MM-DD: %w", key, v, err)
	}
	return d, nil
}

func getSaveFormat() string {
	if v := os.Getenv("SAVE_FORMAT"); v != "" {
		return strings.ToLower(v)
	}
	switch os.Getenv("PROFILE") {
	case "dev", "development":
		return "csv"
	default:
		return "parquet"
	}
}

func parseAPITokens() []string {
	s := os.Getenv("OLOGY_API_TOKENS")
	if s == "" {
		s = os.Getenv("OLOGY_API_TOKEN")
	}
	if s == "" {
		return nil
	}
	var tokens []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// SaveBaseDir returns data/ology
func (c *Config) SaveBaseDir() string {
	return filepath.Join(c.DataDir, "ology")
}

// ProgressPath returns path to .lastday.json
func (c *Config) ProgressPath() string {
	return filepath.Join(c.SaveBaseDir(), ".lastday.json")
}
