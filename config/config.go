package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the application configuration
type AppConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`

	DBURL    string `mapstructure:"db_url"`
	RedisURL string `mapstructure:"redis_url"`

	RedisPoolSize     int           `mapstructure:"redis_pool_size"`
	RedisDialTimeout  time.Duration `mapstructure:"redis_dial_timeout"`
	RedisMinIdleConns int           `mapstructure:"redis_min_idle_conns"`
	RedisReadTimeout  time.Duration `mapstructure:"redis_read_timeout"`
	RedisMaxRetries   int           `mapstructure:"redis_max_retries"`

	SymmetricKey string        `mapstructure:"symmetric_key"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`

	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
	AdminName     string `mapstructure:"admin_name"`
	AdminWallet   string `mapstructure:"admin_wallet_address"`

	UploadsDir     string `mapstructure:"uploads_dir"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`

	LedgerEnabled   bool   `mapstructure:"ledger_enabled"`
	LedgerPath      string `mapstructure:"ledger_path"`
	LedgerQueueSize int    `mapstructure:"ledger_queue_size"`

	CorsAllowedOrigins string  `mapstructure:"cors_allowed_origins"`
	RateLimitRPS       float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst     int     `mapstructure:"rate_limit_burst"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`

	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	SMTPUser string `mapstructure:"smtp_user"`
	SMTPPass string `mapstructure:"smtp_pass"`
}

var defaults = map[string]interface{}{
	"port":                 "3001",
	"env":                  "production",
	"db_url":               "",
	"redis_url":            "",
	"redis_pool_size":      10,
	"redis_dial_timeout":   30 * time.Second,
	"redis_min_idle_conns": 5,
	"redis_read_timeout":   10 * time.Second,
	"redis_max_retries":    3,
	"symmetric_key":        "",
	"token_ttl":            time.Hour,
	"admin_email":          "",
	"admin_password":       "",
	"admin_name":           "System Administrator",
	"admin_wallet_address": "",
	"uploads_dir":          "uploads",
	"max_upload_bytes":     int64(10 << 20),
	"ledger_enabled":       true,
	"ledger_path":          "data/ledger",
	"ledger_queue_size":    256,
	"cors_allowed_origins": "http://localhost:3000",
	"rate_limit_rps":       15.0,
	"rate_limit_burst":     30,
	"log_level":            "info",
	"log_format":           "",
	"log_file":             "",
	"smtp_host":            "",
	"smtp_port":            587,
	"smtp_user":            "",
	"smtp_pass":            "",
}

// Load reads configuration from the environment, optionally seeded by a
// dotenv file at envFile. A missing file is not an error. Callers run
// Validate for the settings their command needs.
func Load(envFile string) (*AppConfig, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// ValidateDatabase checks the settings needed to reach the database.
func (c *AppConfig) ValidateDatabase() error {
	if c.DBURL == "" {
		return errors.New("missing DB_URL environment variable")
	}
	return nil
}

// Validate checks the values the server cannot start without.
func (c *AppConfig) Validate() error {
	if err := c.ValidateDatabase(); err != nil {
		return err
	}
	if c.RedisURL == "" {
		return errors.New("missing REDIS_URL environment variable")
	}
	if len(c.SymmetricKey) != 32 {
		return fmt.Errorf("SYMMETRIC_KEY must be 32 bytes long, got %d", len(c.SymmetricKey))
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *AppConfig) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// AllowedOrigins splits the comma separated CORS origin list.
func (c *AppConfig) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CorsAllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// AdminConfigured reports whether the built-in administrator can log in.
func (c *AppConfig) AdminConfigured() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}
