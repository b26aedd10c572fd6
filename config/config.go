package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log       Logger    `mapstructure:"logger"`
	DB        Database  `mapstructure:"database"`
	API       API       `mapstructure:"api"`
	ERP       ERP       `mapstructure:"erp"`
	Cache     Cache     `mapstructure:"cache"`
	Upload    Upload    `mapstructure:"upload"`
	Scheduler Scheduler `mapstructure:"scheduler"`
	Alert     Alert     `mapstructure:"alert"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type API struct {
	Port      int     `mapstructure:"port"`
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

// ERP holds the settings of the upstream price source.
type ERP struct {
	BaseURL             string        `mapstructure:"base_url"`
	PricePath           string        `mapstructure:"price_path"`
	Token               string        `mapstructure:"token"`
	Timeout             time.Duration `mapstructure:"timeout"`
	RetryCount          int           `mapstructure:"retry_count"`
	BatchSize           int           `mapstructure:"batch_size"`
	MaxConcurrency      int           `mapstructure:"max_concurrency"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type Upload struct {
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
}

type Scheduler struct {
	CleanupCron     string        `mapstructure:"cleanup_cron"`
	RetentionDays   int           `mapstructure:"retention_days"`
	TimeoutDuration time.Duration `mapstructure:"timeout_duration"`
}

type Alert struct {
	WebhookURL string `mapstructure:"webhook_url"`
	MinLevel   string `mapstructure:"min_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "price_reconciler")
	v.SetDefault("database.time_zone", "")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.log_level", "Warn")

	v.SetDefault("api.port", 8080)
	v.SetDefault("api.rate_limit", 10)
	v.SetDefault("api.rate_burst", 30)

	v.SetDefault("erp.base_url", "")
	v.SetDefault("erp.token", "")
	v.SetDefault("erp.price_path", "/prices/current")
	v.SetDefault("erp.timeout", 30*time.Second)
	v.SetDefault("erp.retry_count", 2)
	v.SetDefault("erp.batch_size", 200)
	v.SetDefault("erp.max_concurrency", 4)
	v.SetDefault("erp.max_request_per_minute", 120)
	v.SetDefault("erp.cache_ttl", 5*time.Minute)

	v.SetDefault("cache.default_expiration", 5*time.Minute)
	v.SetDefault("cache.cleanup_interval", 10*time.Minute)

	v.SetDefault("upload.max_size_bytes", 10<<20)

	v.SetDefault("scheduler.cleanup_cron", "0 3 * * *")
	v.SetDefault("scheduler.retention_days", 90)
	v.SetDefault("scheduler.timeout_duration", 5*time.Minute)

	v.SetDefault("alert.webhook_url", "")
	v.SetDefault("alert.min_level", "error")
}

// Load reads .env, config.yaml and the environment, in that order of precedence
// (environment wins).
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
