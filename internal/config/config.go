// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Search  SearchConfig  `mapstructure:"search"`
	Scraper ScraperConfig `mapstructure:"scraper"`
	Cache   CacheConfig   `mapstructure:"cache"`
	DB      DBConfig      `mapstructure:"db"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Storage StorageConfig `mapstructure:"storage"`
	PubSub  PubSubConfig  `mapstructure:"pubsub"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                  int `mapstructure:"port"`
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// SearchConfig configures the Custom Search client.
type SearchConfig struct {
	APIKey         string `mapstructure:"api_key"`
	EngineID       string `mapstructure:"engine_id"`
	Endpoint       string `mapstructure:"endpoint"`
	RatePerMinute  int    `mapstructure:"rate_per_minute"`
	DailyLimit     int    `mapstructure:"daily_limit"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Configured reports whether credentials are present.
func (s SearchConfig) Configured() bool {
	return s.APIKey != "" && s.EngineID != ""
}

// ScraperConfig governs the discovery pipeline and its workers.
type ScraperConfig struct {
	Concurrency        int      `mapstructure:"concurrency"`
	QueueDepth         int      `mapstructure:"queue_depth"`
	DelayMs            int      `mapstructure:"delay_ms"`
	DuplicateThreshold float64  `mapstructure:"duplicate_threshold"`
	MaxQueries         int      `mapstructure:"max_queries"`
	MaxResultsPerQuery int      `mapstructure:"max_results_per_query"`
	BatchSize          int      `mapstructure:"batch_size"`
	Categories         []string `mapstructure:"categories"`
}

// CacheConfig selects the search response cache.
type CacheConfig struct {
	Backend       string `mapstructure:"backend"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	TTLSeconds    int    `mapstructure:"ttl_seconds"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN                   string `mapstructure:"dsn"`
	MaxConns              int32  `mapstructure:"max_conns"`
	SpiritsTable          string `mapstructure:"spirits_table"`
	BrandsTable           string `mapstructure:"brands_table"`
	CategoriesTable       string `mapstructure:"categories_table"`
	SpiritCategoriesTable string `mapstructure:"spirit_categories_table"`
	JobsTable             string `mapstructure:"jobs_table"`
	JobSpiritsTable       string `mapstructure:"job_spirits_table"`
}

// CatalogConfig configures catalog page fetching.
type CatalogConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	UserAgent          string `mapstructure:"user_agent"`
	TimeoutSeconds     int    `mapstructure:"timeout_seconds"`
	Headless           bool   `mapstructure:"headless"`
	MaxParallel        int    `mapstructure:"max_parallel"`
	NavTimeoutSeconds  int    `mapstructure:"nav_timeout_seconds"`
	PromotionThreshold int    `mapstructure:"promotion_threshold"`
}

// StorageConfig selects where raw responses and pages are archived.
type StorageConfig struct {
	Backend   string `mapstructure:"backend"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	BaseDir   string `mapstructure:"base_dir"`
	Prefix    string `mapstructure:"prefix"`
}

// PubSubConfig holds metadata for stored-spirit notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from an optional file plus SPIRITS_* environment variables.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SPIRITS")
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
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_seconds", 30)
	// Bound explicitly so AutomaticEnv can fill keys that have no default.
	v.SetDefault("auth.api_key", "")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.engine_id", "")
	v.SetDefault("search.endpoint", "")
	v.SetDefault("search.rate_per_minute", 100)
	v.SetDefault("search.daily_limit", 100)
	v.SetDefault("search.timeout_seconds", 30)
	v.SetDefault("scraper.concurrency", 2)
	v.SetDefault("scraper.queue_depth", 16)
	v.SetDefault("scraper.delay_ms", 1000)
	v.SetDefault("scraper.duplicate_threshold", 0.85)
	v.SetDefault("scraper.max_queries", 15)
	v.SetDefault("scraper.max_results_per_query", 10)
	v.SetDefault("scraper.batch_size", 10)
	v.SetDefault("scraper.categories", []string{"bourbon", "scotch", "tequila", "rum", "gin", "vodka"})
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.ttl_seconds", 7*24*60*60)
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.spirits_table", "spirits")
	v.SetDefault("db.brands_table", "brands")
	v.SetDefault("db.categories_table", "categories")
	v.SetDefault("db.spirit_categories_table", "spirit_categories")
	v.SetDefault("db.jobs_table", "scrape_jobs")
	v.SetDefault("db.job_spirits_table", "scrape_job_spirits")
	v.SetDefault("catalog.enabled", true)
	v.SetDefault("catalog.user_agent", "spirits-scraper/1.0")
	v.SetDefault("catalog.timeout_seconds", 20)
	v.SetDefault("catalog.headless", false)
	v.SetDefault("catalog.max_parallel", 1)
	v.SetDefault("catalog.nav_timeout_seconds", 25)
	v.SetDefault("catalog.promotion_threshold", 2048)
	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.gcs_bucket", "")
	v.SetDefault("storage.base_dir", "")
	v.SetDefault("storage.prefix", "raw")
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic_name", "")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	if c.Scraper.Concurrency <= 0 {
		return fmt.Errorf("scraper.concurrency must be > 0")
	}
	if c.Scraper.QueueDepth <= 0 {
		return fmt.Errorf("scraper.queue_depth must be > 0")
	}
	if t := c.Scraper.DuplicateThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("scraper.duplicate_threshold must be in (0, 1], got %v", t)
	}
	if c.Scraper.BatchSize <= 0 {
		return fmt.Errorf("scraper.batch_size must be > 0")
	}
	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend must be memory or redis, got %q", c.Cache.Backend)
	}
	switch c.Storage.Backend {
	case "memory":
	case "local":
		if c.Storage.BaseDir == "" {
			return fmt.Errorf("storage.base_dir is required for the local backend")
		}
	case "gcs":
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket is required for the gcs backend")
		}
	default:
		return fmt.Errorf("storage.backend must be memory, local or gcs, got %q", c.Storage.Backend)
	}
	if c.Catalog.Headless && c.Catalog.MaxParallel <= 0 {
		return fmt.Errorf("catalog.max_parallel must be > 0 when headless is enabled")
	}
	if (c.PubSub.ProjectID == "") != (c.PubSub.TopicName == "") {
		return fmt.Errorf("pubsub.project_id and pubsub.topic_name must be set together")
	}
	return nil
}

// CacheTTL returns the configured cache lifetime.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// SearchTimeout returns the per-call search API timeout.
func (c Config) SearchTimeout() time.Duration {
	return time.Duration(c.Search.TimeoutSeconds) * time.Second
}

// QueryDelay returns the pause between consecutive search queries.
func (c Config) QueryDelay() time.Duration {
	return time.Duration(c.Scraper.DelayMs) * time.Millisecond
}
