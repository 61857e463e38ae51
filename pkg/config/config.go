package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	ERP      ERPConfig
	Notify   NotifyConfig
	Flyers   FlyersConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ERPConfig points at the external product-truth system used for price and
// EAN consistency checks during submission.
type ERPConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NotifyConfig configures the reviewer e-mail gateway and the fan-out workers.
type NotifyConfig struct {
	BaseURL       string
	FromAddress   string
	Timeout       time.Duration
	Workers       int
	Retries       int
	ApprovalURL   string
	RetryInterval time.Duration
}

// FlyersConfig tunes flyer domain behaviour.
type FlyersConfig struct {
	SweepInterval  time.Duration
	ActiveCacheTTL time.Duration
	FontDir        string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.ERP = ERPConfig{
		BaseURL: v.GetString("ERP_BASE_URL"),
		APIKey:  v.GetString("ERP_API_KEY"),
		Timeout: parseDuration(v.GetString("ERP_TIMEOUT"), 15*time.Second),
	}

	cfg.Notify = NotifyConfig{
		BaseURL:       v.GetString("MAIL_GATEWAY_URL"),
		FromAddress:   v.GetString("MAIL_FROM_ADDRESS"),
		Timeout:       parseDuration(v.GetString("MAIL_TIMEOUT"), 10*time.Second),
		Workers:       v.GetInt("NOTIFY_WORKERS"),
		Retries:       v.GetInt("NOTIFY_RETRIES"),
		ApprovalURL:   v.GetString("APPROVAL_URL_BASE"),
		RetryInterval: parseDuration(v.GetString("NOTIFY_RETRY_INTERVAL"), 5*time.Second),
	}

	cfg.Flyers = FlyersConfig{
		SweepInterval:  parseDuration(v.GetString("FLYER_SWEEP_INTERVAL"), 10*time.Minute),
		ActiveCacheTTL: parseDuration(v.GetString("FLYER_ACTIVE_CACHE_TTL"), 5*time.Minute),
		FontDir:        v.GetString("FLYER_PDF_FONT_DIR"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "flyer_app")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ERP_BASE_URL", "http://localhost:9080")
	v.SetDefault("ERP_API_KEY", "")
	v.SetDefault("ERP_TIMEOUT", "15s")

	v.SetDefault("MAIL_GATEWAY_URL", "http://localhost:9090")
	v.SetDefault("MAIL_FROM_ADDRESS", "flyers@example.com")
	v.SetDefault("MAIL_TIMEOUT", "10s")
	v.SetDefault("NOTIFY_WORKERS", 2)
	v.SetDefault("NOTIFY_RETRIES", 3)
	v.SetDefault("NOTIFY_RETRY_INTERVAL", "5s")
	v.SetDefault("APPROVAL_URL_BASE", "http://localhost:3000/approvals")

	v.SetDefault("FLYER_SWEEP_INTERVAL", "10m")
	v.SetDefault("FLYER_ACTIVE_CACHE_TTL", "5m")
	v.SetDefault("FLYER_PDF_FONT_DIR", "")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
