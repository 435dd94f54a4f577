package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Cloudinary CloudinaryConfig `mapstructure:"cloudinary"`
	App        AppConfig        `mapstructure:"app"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	GinMode        string   `mapstructure:"gin_mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	AccessTTL         time.Duration `mapstructure:"access_ttl"`
	RefreshTTL        time.Duration `mapstructure:"refresh_ttl"`
	RecentLoginWindow time.Duration `mapstructure:"recent_login_window"`
}

type RedisConfig struct {
	Addr            string        `mapstructure:"addr"`
	Password        string        `mapstructure:"password"`
	ProfileCacheTTL time.Duration `mapstructure:"profile_cache_ttl"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type CloudinaryConfig struct {
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
}

// URL returns the cloudinary:// connection string, or "" when unconfigured.
func (c CloudinaryConfig) URL() string {
	if c.CloudName == "" || c.APIKey == "" || c.APISecret == "" {
		return ""
	}
	return fmt.Sprintf("cloudinary://%s:%s@%s", c.APIKey, c.APISecret, c.CloudName)
}

type AppConfig struct {
	Timezone           string        `mapstructure:"timezone"`
	PublicBaseURL      string        `mapstructure:"public_base_url"`
	PaymentDelay       time.Duration `mapstructure:"payment_delay"`
	PaymentStartDelay  time.Duration `mapstructure:"payment_start_delay"`
	PaymentFailEvery   int           `mapstructure:"payment_fail_every"`
	ProfileImageTarget int           `mapstructure:"profile_image_target"`
	JobImageTarget     int           `mapstructure:"job_image_target"`

	location *time.Location
}

// Location is the zone calendar date keys and slots are evaluated in.
func (a AppConfig) Location() *time.Location {
	if a.location == nil {
		return time.Local
	}
	return a.location
}

type LogConfig struct {
	Env string `mapstructure:"env"`
}

// ConfigurationError is returned when the process cannot start with the
// settings it was given.
type ConfigurationError struct {
	Key    string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %s: %v", e.Key, e.Reason, e.Err)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err carries a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

var envBindings = map[string]string{
	"server.port":               "PORT",
	"server.gin_mode":           "GIN_MODE",
	"server.allowed_origins":    "ALLOWED_ORIGINS",
	"database.url":              "DB_URL",
	"jwt.secret":                "JWT_SECRET",
	"jwt.access_ttl":            "JWT_ACCESS_TTL",
	"jwt.refresh_ttl":           "JWT_REFRESH_TTL",
	"jwt.recent_login_window":   "JWT_RECENT_LOGIN_WINDOW",
	"redis.addr":                "REDIS_ADDR",
	"redis.password":            "REDIS_PASSWORD",
	"redis.profile_cache_ttl":   "REDIS_PROFILE_CACHE_TTL",
	"kafka.brokers":             "KAFKA_BROKERS",
	"kafka.topic":               "KAFKA_TOPIC",
	"cloudinary.cloud_name":     "CLOUDINARY_CLOUD_NAME",
	"cloudinary.api_key":        "CLOUDINARY_API_KEY",
	"cloudinary.api_secret":     "CLOUDINARY_API_SECRET",
	"app.timezone":              "APP_TIMEZONE",
	"app.public_base_url":       "PUBLIC_BASE_URL",
	"app.payment_delay":         "PAYMENT_DELAY",
	"app.payment_start_delay":   "PAYMENT_START_DELAY",
	"app.payment_fail_every":    "PAYMENT_FAIL_EVERY",
	"app.profile_image_target":  "PROFILE_IMAGE_TARGET_BYTES",
	"app.job_image_target":      "JOB_IMAGE_TARGET_BYTES",
	"log.env":                   "APP_ENV",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.gin_mode", "debug")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("jwt.access_ttl", 24*time.Hour)
	v.SetDefault("jwt.refresh_ttl", 30*24*time.Hour)
	v.SetDefault("jwt.recent_login_window", 5*time.Minute)
	v.SetDefault("redis.profile_cache_ttl", 30*time.Second)
	v.SetDefault("kafka.topic", "job.events")
	v.SetDefault("app.timezone", "Europe/London")
	v.SetDefault("app.public_base_url", "http://localhost:3000")
	v.SetDefault("app.payment_delay", 2*time.Second)
	v.SetDefault("app.payment_start_delay", time.Second)
	v.SetDefault("app.profile_image_target", 10*1024)
	v.SetDefault("app.job_image_target", 200*1024)
	v.SetDefault("log.env", "development")
}

// Load reads .env, an optional config.yaml and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &ConfigurationError{Key: "config.yaml", Reason: "unreadable", Err: err}
		}
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, &ConfigurationError{Key: key, Reason: "cannot bind env " + env, Err: err}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigurationError{Key: "config", Reason: "cannot decode", Err: err}
	}
	// Comma separated env values arrive as a single element.
	cfg.Server.AllowedOrigins = splitList(cfg.Server.AllowedOrigins)
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Database.URL) == "" {
		return &ConfigurationError{Key: "DB_URL", Reason: "a Postgres URL is required"}
	}
	if len(c.JWT.Secret) < 16 {
		return &ConfigurationError{Key: "JWT_SECRET", Reason: "must be at least 16 characters"}
	}
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return &ConfigurationError{Key: "APP_TIMEZONE", Reason: "unknown timezone", Err: err}
	}
	c.App.location = loc
	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		return &ConfigurationError{Key: "GIN_MODE", Reason: "must be debug, release or test"}
	}
	if c.App.PaymentDelay < 0 || c.App.PaymentStartDelay < 0 {
		return &ConfigurationError{Key: "PAYMENT_DELAY", Reason: "must not be negative"}
	}
	return nil
}

func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
