package app

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/aussiebroadwan/stockroom/pkg/httpx"
	"github.com/joho/godotenv"
)

// ErrConfig is returned when the loaded configuration cannot be used.
var ErrConfig = errors.New("invalid configuration")

// Session store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

type Config struct {
	APIURL          string        `toml:"api_url"`          // Inventory backend base URL (default: http://localhost:5000/api/v1)
	HTTPTimeout     time.Duration `toml:"http_timeout"`     // Per request timeout (default: 10s)
	RateLimit       int           `toml:"rate_limit"`       // Optional: requests per second to the backend, 0 keeps the built-in limit
	RateBurst       int           `toml:"rate_burst"`       // Optional: burst above RateLimit (default: twice RateLimit)
	RefreshInterval time.Duration `toml:"refresh_interval"` // Background token renewal period (default: 4m)
	StoreTimeout    time.Duration `toml:"store_timeout"`    // Bound on session store calls (default: 5s)
	NotifyTTL       time.Duration `toml:"notify_ttl"`       // Notification lifetime (default: 5s)

	Store         string        `toml:"store"`          // Session store (memory, sqlite, redis) (default: sqlite)
	DatabaseFile  string        `toml:"db_file"`        // SQLite file (default: ~/.stockroom/session.db)
	RedisAddr     string        `toml:"redis_addr"`     // Redis address (default: localhost:6379)
	RedisPassword string        `toml:"redis_password"` // Optional
	RedisDB       int           `toml:"redis_db"`       // Optional
	SessionName   string        `toml:"session_name"`   // Session scope (default: one per terminal)
	SessionTTL    time.Duration `toml:"session_ttl"`    // Idle sessions older than this are dropped (default: 24h)
	MasterKey     string        `toml:"master_key"`     // Optional: encrypts stored tokens when set

	MetricsAddr string `toml:"metrics_addr"` // Optional: serve Prometheus metrics from the shell
	HistoryFile string `toml:"history_file"` // Shell history (default: ~/.stockroom/history)

	Env       string `toml:"env"`        // Environment (dev, staging, prod) (default: prod)
	LogLevel  string `toml:"log_level"`  // Log level (debug, info, warn, error) (default: warn)
	LogFormat string `toml:"log_format"` // Log format (json, text) (default: text)
	LogFile   string `toml:"log_file"`   // Log destination, "-" for stderr (default: ~/.stockroom/stockroom.log)
}

// DefaultConfig returns the built-in defaults, the lowest configuration layer.
func DefaultConfig() Config {
	dir := configDir()

	return Config{
		APIURL:          "http://localhost:5000/api/v1",
		HTTPTimeout:     10 * time.Second,
		RefreshInterval: 4 * time.Minute,
		StoreTimeout:    5 * time.Second,
		NotifyTTL:       5 * time.Second,
		Store:           StoreSQLite,
		DatabaseFile:    filepath.Join(dir, "session.db"),
		RedisAddr:       "localhost:6379",
		SessionName:     defaultSessionName(),
		SessionTTL:      24 * time.Hour,
		HistoryFile:     filepath.Join(dir, "history"),
		Env:             "prod",
		LogLevel:        "warn",
		LogFormat:       "text",
		LogFile:         filepath.Join(dir, "stockroom.log"),
	}
}

// LoadConfig layers defaults, the TOML config file, a .env file in the
// working directory and the process environment, in that order, then
// validates the result.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	path, explicit := configFilePath()
	if err := loadFile(&cfg, path, explicit); err != nil {
		return cfg, err
	}

	// Optional; existing environment variables win over .env entries
	_ = godotenv.Load()

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadFile decodes a TOML file over cfg. A missing file is only an error when
// the user named it.
func loadFile(cfg *Config, path string, explicit bool) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("%w: config file %s: %v", ErrConfig, path, err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrConfig, path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("%w: unknown keys in %s: %s", ErrConfig, path, strings.Join(keys, ", "))
	}

	return nil
}

func (c *Config) applyEnv() {
	c.APIURL = getEnvOrDefault("STOCKROOM_API_URL", c.APIURL)
	c.HTTPTimeout = getEnvDurationOrDefault("STOCKROOM_HTTP_TIMEOUT", c.HTTPTimeout)
	c.RateLimit = getEnvIntOrDefault("STOCKROOM_RATE_LIMIT", c.RateLimit)
	c.RateBurst = getEnvIntOrDefault("STOCKROOM_RATE_BURST", c.RateBurst)
	c.RefreshInterval = getEnvDurationOrDefault("STOCKROOM_REFRESH_INTERVAL", c.RefreshInterval)
	c.StoreTimeout = getEnvDurationOrDefault("STOCKROOM_STORE_TIMEOUT", c.StoreTimeout)
	c.NotifyTTL = getEnvDurationOrDefault("STOCKROOM_NOTIFY_TTL", c.NotifyTTL)

	c.Store = strings.ToLower(getEnvOrDefault("STOCKROOM_STORE", c.Store))
	c.DatabaseFile = getEnvOrDefault("STOCKROOM_DB_FILE", c.DatabaseFile)
	c.RedisAddr = getEnvOrDefault("STOCKROOM_REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnvOrDefault("STOCKROOM_REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvIntOrDefault("STOCKROOM_REDIS_DB", c.RedisDB)
	c.SessionName = getEnvOrDefault("STOCKROOM_SESSION_NAME", c.SessionName)
	c.SessionTTL = getEnvDurationOrDefault("STOCKROOM_SESSION_TTL", c.SessionTTL)
	c.MasterKey = getEnvOrDefault("STOCKROOM_MASTER_KEY", c.MasterKey)

	c.MetricsAddr = getEnvOrDefault("STOCKROOM_METRICS_ADDR", c.MetricsAddr)
	c.HistoryFile = getEnvOrDefault("STOCKROOM_HISTORY_FILE", c.HistoryFile)

	c.Env = getEnvOrDefault("ENV", c.Env)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnvOrDefault("LOG_FORMAT", c.LogFormat)
	c.LogFile = getEnvOrDefault("LOG_FILE", c.LogFile)
}

// Validate reports the first setting that cannot be used, wrapped in
// ErrConfig.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api_url %q must be an absolute http(s) URL", ErrConfig, c.APIURL)
	}

	switch {
	case c.HTTPTimeout <= 0:
		return fmt.Errorf("%w: http_timeout must be positive", ErrConfig)
	case c.RefreshInterval <= 0:
		return fmt.Errorf("%w: refresh_interval must be positive", ErrConfig)
	case c.StoreTimeout <= 0:
		return fmt.Errorf("%w: store_timeout must be positive", ErrConfig)
	case c.NotifyTTL <= 0:
		return fmt.Errorf("%w: notify_ttl must be positive", ErrConfig)
	case c.RateLimit < 0:
		return fmt.Errorf("%w: rate_limit must not be negative", ErrConfig)
	case c.RateBurst < 0:
		return fmt.Errorf("%w: rate_burst must not be negative", ErrConfig)
	case c.SessionTTL < 0:
		return fmt.Errorf("%w: session_ttl must not be negative", ErrConfig)
	}

	switch c.Store {
	case StoreMemory:
	case StoreSQLite:
		if c.DatabaseFile == "" {
			return fmt.Errorf("%w: db_file is required for the sqlite store", ErrConfig)
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr is required for the redis store", ErrConfig)
		}
	default:
		return fmt.Errorf("%w: store %q must be one of memory, sqlite, redis", ErrConfig, c.Store)
	}

	if c.Store != StoreMemory && c.SessionName == "" {
		return fmt.Errorf("%w: session_name must not be empty", ErrConfig)
	}

	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("%w: log_format %q must be json or text", ErrConfig, c.LogFormat)
	}

	return nil
}

// RateLimitConfig is the client side limit on backend requests.
func (c Config) RateLimitConfig() httpx.RateLimitConfig {
	limit := httpx.DefaultLimit
	if c.RateLimit > 0 {
		limit = httpx.RateLimitConfig{
			RequestsPerWindow: c.RateLimit,
			Window:            time.Second,
			Burst:             c.RateLimit * 2,
		}
	}
	if c.RateBurst > 0 {
		limit.Burst = c.RateBurst
	}
	return limit
}

// configDir is ~/.stockroom, or a temp directory when there is no home.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "stockroom")
	}
	return filepath.Join(home, ".stockroom")
}

// configFilePath returns the config file to read and whether the user chose
// it through STOCKROOM_CONFIG.
func configFilePath() (string, bool) {
	if path := os.Getenv("STOCKROOM_CONFIG"); path != "" {
		return path, true
	}
	return filepath.Join(configDir(), "config.toml"), false
}

// defaultSessionName scopes the session to the invoking shell, so two
// terminals keep separate logins the way two browser tabs would.
func defaultSessionName() string {
	return "tty-" + strconv.Itoa(os.Getppid())
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
