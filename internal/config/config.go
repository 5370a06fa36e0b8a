// Package config loads and validates survivor-stats configuration via Viper.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Headless HeadlessConfig `mapstructure:"headless"`
	Scrape   ScrapeConfig   `mapstructure:"scrape"`
	Cast     CastConfig     `mapstructure:"cast"`
	DB       DBConfig       `mapstructure:"db"`
	Storage  StorageConfig  `mapstructure:"storage"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Server   ServerConfig   `mapstructure:"server"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// HTTPConfig configures page fetching.
type HTTPConfig struct {
	UserAgent         string  `mapstructure:"user_agent"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// HeadlessConfig configures the chromedp fetcher. Enabled renders the
// Wikipedia season pages in Chrome too; cast pages follow cast.headless.
type HeadlessConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
}

// ScrapeConfig controls the Wikipedia season scrape.
type ScrapeConfig struct {
	// CatalogPath replaces the embedded season catalog when set.
	CatalogPath    string `mapstructure:"catalog_path"`
	WikiBaseURL    string `mapstructure:"wiki_base_url"`
	SnapshotPrefix string `mapstructure:"snapshot_prefix"`
}

// CastConfig controls the CBS cast scrape.
type CastConfig struct {
	URL            string  `mapstructure:"url"`
	BaseURL        string  `mapstructure:"base_url"`
	Headless       bool    `mapstructure:"headless"`
	MatchThreshold float64 `mapstructure:"match_threshold"`
	OutputName     string  `mapstructure:"output_name"`
}

// DBConfig selects and tunes the table store.
type DBConfig struct {
	Driver     string `mapstructure:"driver"`
	DSN        string `mapstructure:"dsn"`
	MaxConns   int32  `mapstructure:"max_conns"`
	BestEffort bool   `mapstructure:"best_effort"`
}

// StorageConfig selects where artifacts are written.
type StorageConfig struct {
	Provider  string `mapstructure:"provider"`
	BaseDir   string `mapstructure:"base_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// PubSubConfig holds metadata for publish-subscribe notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// MetricsConfig controls Pushgateway delivery for batch commands.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AnalysisConfig tunes the state, age and mention studies.
type AnalysisConfig struct {
	Iterations      int     `mapstructure:"iterations"`
	TestFraction    float64 `mapstructure:"test_fraction"`
	SelectFeatures  int     `mapstructure:"select_features"`
	OtherThreshold  float64 `mapstructure:"other_threshold"`
	Seed            uint64  `mapstructure:"seed"`
	ExcludedSeasons []int   `mapstructure:"excluded_seasons"`
	OutputPrefix    string  `mapstructure:"output_prefix"`
}

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverNone     = "none"
)

// Storage providers.
const (
	ProviderLocal  = "local"
	ProviderGCS    = "gcs"
	ProviderMemory = "memory"
)

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SURVIVOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.development", true)
	v.SetDefault("http.user_agent", "survivor-stats/0.1 (+https://github.com/JakeFAU/survivor-stats)")
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.requests_per_second", 1.0)
	v.SetDefault("http.burst", 1)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.nav_timeout_seconds", 45)
	v.SetDefault("scrape.catalog_path", "")
	v.SetDefault("scrape.wiki_base_url", "")
	v.SetDefault("scrape.snapshot_prefix", "snapshots")
	v.SetDefault("cast.url", "https://www.cbs.com/shows/survivor/cast/")
	v.SetDefault("cast.base_url", "https://www.cbs.com")
	v.SetDefault("cast.headless", true)
	v.SetDefault("cast.match_threshold", 0.85)
	v.SetDefault("cast.output_name", "nameSeasonBio.csv")
	v.SetDefault("db.driver", DriverSQLite)
	v.SetDefault("db.dsn", "data/survivor.db")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.best_effort", true)
	v.SetDefault("storage.provider", ProviderLocal)
	v.SetDefault("storage.base_dir", "out")
	v.SetDefault("storage.prefix", "")
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic_name", "")
	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "survivor-stats")
	v.SetDefault("server.port", 8080)
	v.SetDefault("analysis.iterations", 1000)
	v.SetDefault("analysis.test_fraction", 0.3)
	v.SetDefault("analysis.select_features", 3)
	v.SetDefault("analysis.other_threshold", 1.5)
	v.SetDefault("analysis.seed", 0)
	v.SetDefault("analysis.excluded_seasons", []int{3})
	v.SetDefault("analysis.output_prefix", "analysis")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.RequestsPerSecond <= 0 {
		return fmt.Errorf("http.requests_per_second must be > 0")
	}
	if c.Headless.NavTimeoutSec < 0 {
		return fmt.Errorf("headless.nav_timeout_seconds must be >= 0")
	}
	if c.Cast.MatchThreshold < 0 || c.Cast.MatchThreshold > 1 {
		return fmt.Errorf("cast.match_threshold must be within [0, 1]")
	}
	if !slices.Contains([]string{DriverPostgres, DriverSQLite, DriverNone}, c.DB.Driver) {
		return fmt.Errorf("db.driver must be one of postgres, sqlite, none (got %q)", c.DB.Driver)
	}
	if c.DB.Driver != DriverNone && c.DB.DSN == "" {
		return fmt.Errorf("db.dsn must be set for driver %s", c.DB.Driver)
	}
	switch c.Storage.Provider {
	case ProviderLocal:
		if c.Storage.BaseDir == "" {
			return fmt.Errorf("storage.base_dir must be set for the local provider")
		}
	case ProviderGCS:
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket must be set for the gcs provider")
		}
	case ProviderMemory:
	default:
		return fmt.Errorf("storage.provider must be one of local, gcs, memory (got %q)", c.Storage.Provider)
	}
	if c.PubSub.TopicName != "" && c.PubSub.ProjectID == "" {
		return fmt.Errorf("pubsub.project_id must be set when pubsub.topic_name is")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Analysis.Iterations <= 0 {
		return fmt.Errorf("analysis.iterations must be > 0")
	}
	if c.Analysis.TestFraction <= 0 || c.Analysis.TestFraction >= 1 {
		return fmt.Errorf("analysis.test_fraction must be within (0, 1)")
	}
	if c.Analysis.SelectFeatures <= 0 {
		return fmt.Errorf("analysis.select_features must be > 0")
	}
	return nil
}

// FetchTimeout converts the HTTP timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// NavTimeout converts the headless navigation timeout into a duration.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Headless.NavTimeoutSec) * time.Second
}
