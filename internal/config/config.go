// Package config loads settings from defaults, an optional YAML file and the
// environment, in that order of precedence (environment wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage backend names.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendS3     = "s3"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	CORS      CORSConfig      `yaml:"cors"`
	Google    GoogleConfig    `yaml:"google"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Notify    NotifyConfig    `yaml:"notify"`
	Log       LogConfig       `yaml:"log"`
	StaticDir string          `yaml:"static_dir"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// CORSConfig keeps the origin list configurable; "*" allows any origin.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type GoogleConfig struct {
	APIKey        string        `yaml:"api_key"`
	GeminiModel   string        `yaml:"gemini_model"`
	GeminiBaseURL string        `yaml:"gemini_base_url"`
	TTSBaseURL    string        `yaml:"tts_base_url"`
	Timeout       time.Duration `yaml:"timeout"`
}

type StorageConfig struct {
	Backend  string      `yaml:"backend"`
	Cache    bool        `yaml:"cache"`
	FilePath string      `yaml:"file_path"`
	S3       S3Config    `yaml:"s3"`
	Redis    RedisConfig `yaml:"redis"`
	Mongo    MongoConfig `yaml:"mongo"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Key      string `yaml:"key"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
	DocumentID string `yaml:"document_id"`
}

// AuthConfig protects analytics reads when ReadSecret is set.
type AuthConfig struct {
	ReadSecret string `yaml:"read_secret"`
}

// RateLimitConfig applies to the proxy routes; zero disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// NotifyConfig switches rating notifications from the log to email when
// ResendAPIKey is set.
type NotifyConfig struct {
	ResendAPIKey string   `yaml:"resend_api_key"`
	From         string   `yaml:"from"`
	To           []string `yaml:"to"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "3001",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    90 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		CORS: CORSConfig{AllowedOrigins: []string{"*"}},
		Google: GoogleConfig{
			Timeout: 60 * time.Second,
		},
		Storage: StorageConfig{
			Backend:  BackendFile,
			FilePath: "vedantu_analytics.json",
			S3:       S3Config{Key: "analytics/vedantu_analytics.json", Region: "us-east-1"},
			Redis:    RedisConfig{Addr: "localhost:6379", Key: "veda:analytics"},
			Mongo:    MongoConfig{Database: "veda", Collection: "analytics", DocumentID: "vedantu_analytics"},
		},
		RateLimit: RateLimitConfig{Burst: 5},
		Log:       LogConfig{Level: "info", Format: "json"},
	}
}

// Load builds the configuration. A .env file in the working directory is
// loaded first if present; path may be empty.
func Load(path string) (*Config, error) {
	// Load .env (ignore error in production — env vars set directly)
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	setString(&c.Google.APIKey, "GOOGLE_API_KEY")
	setString(&c.Google.GeminiModel, "GEMINI_MODEL")
	setString(&c.Google.GeminiBaseURL, "GEMINI_BASE_URL")
	setString(&c.Google.TTSBaseURL, "TTS_BASE_URL")
	setList(&c.CORS.AllowedOrigins, "CORS_ALLOWED_ORIGINS")

	setString(&c.Storage.Backend, "STORAGE_BACKEND")
	setString(&c.Storage.FilePath, "ANALYTICS_FILE")
	setString(&c.Storage.S3.Bucket, "S3_BUCKET")
	setString(&c.Storage.S3.Key, "S3_KEY")
	setString(&c.Storage.S3.Region, "S3_REGION")
	setString(&c.Storage.S3.Endpoint, "S3_ENDPOINT")
	setString(&c.Storage.Redis.Addr, "REDIS_ADDR")
	setString(&c.Storage.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Storage.Redis.Key, "REDIS_KEY")
	setString(&c.Storage.Mongo.URI, "MONGODB_URI")
	setString(&c.Storage.Mongo.Database, "DB_NAME")
	setString(&c.Storage.Mongo.Collection, "MONGODB_COLLECTION")
	setString(&c.Storage.Mongo.DocumentID, "MONGODB_DOCUMENT_ID")

	setString(&c.Auth.ReadSecret, "ANALYTICS_READ_SECRET")
	setString(&c.Notify.ResendAPIKey, "RESEND_API_KEY")
	setString(&c.Notify.From, "FROM_EMAIL")
	setList(&c.Notify.To, "NOTIFY_EMAIL")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.StaticDir, "STATIC_DIR")

	var errs []error
	errs = append(errs,
		setBool(&c.Storage.Cache, "STORAGE_CACHE"),
		setInt(&c.Storage.Redis.DB, "REDIS_DB"),
		setInt(&c.RateLimit.Burst, "RATE_LIMIT_BURST"),
		setFloat(&c.RateLimit.RequestsPerSecond, "RATE_LIMIT_RPS"),
		setDuration(&c.Google.Timeout, "GOOGLE_TIMEOUT"),
	)
	return errors.Join(errs...)
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Google.APIKey == "" {
		errs = append(errs, errors.New("GOOGLE_API_KEY is required"))
	}
	if c.Server.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}

	s := c.Storage
	switch s.Backend {
	case BackendFile:
		if s.FilePath == "" {
			errs = append(errs, errors.New("ANALYTICS_FILE is required for the file backend"))
		}
	case BackendMemory:
	case BackendS3:
		if s.S3.Bucket == "" || s.S3.Key == "" {
			errs = append(errs, errors.New("S3_BUCKET and S3_KEY are required for the s3 backend"))
		}
	case BackendRedis:
		if s.Redis.Addr == "" || s.Redis.Key == "" {
			errs = append(errs, errors.New("REDIS_ADDR and REDIS_KEY are required for the redis backend"))
		}
	case BackendMongo:
		if s.Mongo.URI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required for the mongo backend"))
		}
		if s.Mongo.Database == "" || s.Mongo.Collection == "" || s.Mongo.DocumentID == "" {
			errs = append(errs, errors.New("mongo database, collection and document id must not be empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", s.Backend))
	}

	if c.Notify.ResendAPIKey != "" && (c.Notify.From == "" || len(c.Notify.To) == 0) {
		errs = append(errs, errors.New("FROM_EMAIL and NOTIFY_EMAIL are required when RESEND_API_KEY is set"))
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must not be negative"))
	}

	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func setList(dst *[]string, key string) {
	value := os.Getenv(key)
	if value == "" {
		return
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}

func setBool(dst *bool, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func setInt(dst *int, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
