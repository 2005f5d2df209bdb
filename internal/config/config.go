package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

//go:embed default.yaml
var defaultYAML []byte

// EnvPrefix prefixes every environment override, e.g. SRPORTAL_SERVER_PORT.
const EnvPrefix = "SRPORTAL"

var (
	cfg  *Config
	once sync.Once
	mu   sync.RWMutex
)

// Config represents the application configuration
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Request      RequestConfig      `mapstructure:"request"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
	RateLimiting RateLimitingConfig `mapstructure:"rate_limiting"`
	Events       EventsConfig       `mapstructure:"events"`
	Runner       RunnerConfig       `mapstructure:"runner"`
	Client       ClientConfig       `mapstructure:"client"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Version  string `mapstructure:"version"`
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	Timezone string `mapstructure:"timezone"`
	// DemoData seeds the in-memory repositories when no database is configured.
	DemoData bool `mapstructure:"demo_data"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	PublicURL       string        `mapstructure:"public_url"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Origins []string `mapstructure:"origins"`
	Methods []string `mapstructure:"methods"`
	Headers []string `mapstructure:"headers"`
}

// DatabaseConfig selects the store. Driver "memory" keeps everything in
// process; "sqlite3" uses Path; "postgres" uses the host fields.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
	Cache    struct {
		Prefix string        `mapstructure:"prefix"`
		TTL    time.Duration `mapstructure:"ttl"`
	} `mapstructure:"cache"`
}

type AuthConfig struct {
	JWT struct {
		Secret         string        `mapstructure:"secret"`
		Issuer         string        `mapstructure:"issuer"`
		AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
		DownloadTTL    time.Duration `mapstructure:"download_ttl"`
	} `mapstructure:"jwt"`
	Password struct {
		BcryptCost int `mapstructure:"bcrypt_cost"`
	} `mapstructure:"password"`
	Login struct {
		MaxAttempts int           `mapstructure:"max_attempts"`
		Window      time.Duration `mapstructure:"window"`
		Lockout     time.Duration `mapstructure:"lockout"`
	} `mapstructure:"login"`
}

type StorageConfig struct {
	Path        string `mapstructure:"path"`
	Attachments struct {
		MaxSize           int64    `mapstructure:"max_size"`
		AllowedExtensions []string `mapstructure:"allowed_extensions"`
	} `mapstructure:"attachments"`
}

// RequestConfig controls request code generation.
type RequestConfig struct {
	CodeFormat   string `mapstructure:"code_format"`
	CodePrefix   string `mapstructure:"code_prefix"`
	CodeStart    int64  `mapstructure:"code_start"`
	CounterStore string `mapstructure:"counter_store"`
	// PickupDays is how many business days the pickup window spans.
	PickupDays int `mapstructure:"pickup_days"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	OpenTelemetry struct {
		Enabled     bool   `mapstructure:"enabled"`
		ServiceName string `mapstructure:"service_name"`
	} `mapstructure:"opentelemetry"`
}

type RateLimitingConfig struct {
	Enabled           bool     `mapstructure:"enabled"`
	RequestsPerMinute int      `mapstructure:"requests_per_minute"`
	Burst             int      `mapstructure:"burst"`
	ExcludePaths      []string `mapstructure:"exclude_paths"`
}

// EventsConfig enables publishing request events to NATS.
type EventsConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type RunnerConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	CacheWarmCron string `mapstructure:"cache_warm_cron"`
}

// ClientConfig is read by the srportal terminal client.
type ClientConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SessionPath string        `mapstructure:"session_path"`
	FlowsPath   string        `mapstructure:"flows_path"`
	Debounce    time.Duration `mapstructure:"debounce"`
}

func newViper(overrides map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultYAML)); err != nil {
		return nil, fmt.Errorf("failed to read default config: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for k, val := range overrides {
		v.Set(k, val)
	}
	return v, nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return c, nil
}

// Load initializes the configuration from the built-in defaults, an optional
// config.yaml in configPath and SRPORTAL_* environment variables. When
// config.yaml exists it is watched and hot reloaded.
func Load(configPath string) error {
	return LoadWithOverrides(configPath, nil)
}

// LoadWithOverrides is Load with values that win over every other source,
// typically command line flags.
func LoadWithOverrides(configPath string, overrides map[string]interface{}) error {
	var err error
	once.Do(func() {
		var v *viper.Viper
		if v, err = newViper(overrides); err != nil {
			return
		}

		watch := false
		if configPath != "" {
			v.SetConfigName("config")
			v.AddConfigPath(configPath)
			if err = v.MergeInConfig(); err != nil {
				var notFound viper.ConfigFileNotFoundError
				if !errors.As(err, &notFound) {
					err = fmt.Errorf("failed to merge config: %w", err)
					return
				}
				err = nil
			} else {
				watch = true
			}
		}

		var loaded *Config
		if loaded, err = unmarshal(v); err != nil {
			return
		}
		mu.Lock()
		cfg = loaded
		mu.Unlock()

		if !watch {
			return
		}
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			newCfg, err := unmarshal(v)
			if err != nil {
				fmt.Printf("Failed to reload config %s: %v\n", filepath.Base(e.Name), err)
				return
			}
			mu.Lock()
			cfg = newCfg
			mu.Unlock()
		})
	})

	return err
}

// Get returns the current configuration (thread-safe). It falls back to the
// built-in defaults when Load has not run.
func Get() *Config {
	mu.RLock()
	c := cfg
	mu.RUnlock()
	if c != nil {
		return c
	}
	d, err := Defaults()
	if err != nil {
		panic(err)
	}
	return d
}

// Defaults returns the built-in configuration plus environment overrides.
func Defaults() (*Config, error) {
	v, err := newViper(nil)
	if err != nil {
		return nil, err
	}
	return unmarshal(v)
}

// LoadFromFile loads configuration from a specific file (useful for testing)
func LoadFromFile(configFile string) error {
	v, err := newViper(nil)
	if err != nil {
		return err
	}
	v.SetConfigFile(configFile)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	loaded, err := unmarshal(v)
	if err != nil {
		return err
	}
	mu.Lock()
	cfg = loaded
	mu.Unlock()
	return nil
}

// GetDSN returns the connection string for the configured driver.
func (c *DatabaseConfig) GetDSN() string {
	switch c.Driver {
	case "sqlite3", "sqlite":
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", c.Path)
	case "mysql":
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.Name,
		)
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// GetRedisAddr returns the Redis server address
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetServerAddr returns the server listen address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// BaseURL is the externally visible URL used in download links.
func (c *ServerConfig) BaseURL() string {
	if c.PublicURL != "" {
		return strings.TrimRight(c.PublicURL, "/")
	}
	host := c.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.Port)
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

func (c *AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// MustLoad loads configuration and panics on error
func MustLoad(configPath string) {
	if err := Load(configPath); err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}
}
