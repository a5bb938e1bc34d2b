package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnv              = "development"
	defaultHTTPAddr         = ":8080"
	defaultGRPCAddr         = ":9090"
	defaultTMDBBaseURL      = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL = "https://image.tmdb.org/t/p/w500"
	defaultTMDBLanguage     = "en-US"
	defaultMetadataTimeout  = 10 * time.Second
	defaultSessionSecret    = "dev-secret-change-me"
	defaultLogLevel         = "info"
)

type TMDBConfig struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	Language     string
	Timeout      time.Duration
}

type AppConfig struct {
	Env           string
	HTTPAddr      string
	GRPCAddr      string
	SessionSecret string
	LogLevel      string
	OTLPEndpoint  string
	WSOrigins     []string
	TMDB          TMDBConfig
}

// LoadDotEnv loads a .env file when one exists. Variables already present in the
// environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func LoadAppConfig() AppConfig {
	cfg := AppConfig{
		Env:           getEnv("TOPMOVIES_ENV", defaultEnv),
		HTTPAddr:      getEnv("TOPMOVIES_HTTP_ADDR", defaultHTTPAddr),
		GRPCAddr:      getEnv("TOPMOVIES_GRPC_ADDR", defaultGRPCAddr),
		SessionSecret: getEnv("TOPMOVIES_SESSION_SECRET", defaultSessionSecret),
		LogLevel:      getEnv("TOPMOVIES_LOG_LEVEL", defaultLogLevel),
		OTLPEndpoint:  strings.TrimSpace(os.Getenv("TOPMOVIES_OTLP_ENDPOINT")),
		TMDB: TMDBConfig{
			APIKey:       strings.TrimSpace(os.Getenv("TOPMOVIES_TMDB_API_KEY")),
			BaseURL:      getEnv("TOPMOVIES_TMDB_BASE_URL", defaultTMDBBaseURL),
			ImageBaseURL: getEnv("TOPMOVIES_TMDB_IMAGE_BASE_URL", defaultTMDBImageBaseURL),
			Language:     getEnv("TOPMOVIES_TMDB_LANGUAGE", defaultTMDBLanguage),
			Timeout:      defaultMetadataTimeout,
		},
	}

	for _, o := range strings.Split(os.Getenv("TOPMOVIES_WS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.WSOrigins = append(cfg.WSOrigins, o)
		}
	}

	// seconds; anything unparseable or non-positive keeps the default
	if raw := strings.TrimSpace(os.Getenv("TOPMOVIES_METADATA_TIMEOUT_SECONDS")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.TMDB.Timeout = time.Duration(n) * time.Second
		}
	}
	return cfg
}

// Validate reports settings the web server cannot start without.
func (c AppConfig) Validate() error {
	var problems []string
	if c.TMDB.APIKey == "" {
		problems = append(problems, "TOPMOVIES_TMDB_API_KEY is required")
	}
	if c.IsProduction() && c.SessionSecret == defaultSessionSecret {
		problems = append(problems, "TOPMOVIES_SESSION_SECRET must be set in production")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
