package utils

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Upload    UploadConfig
	S3        S3Config
	Redis     RedisConfig
	RateLimit RateLimitConfig
	NATS      NATSConfig
	CORS      CORSConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Env     string
	Debug   bool
	LogPath string
}

// IsDevelopment controls error verbosity in responses.
func (c AppConfig) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

type DatabaseConfig struct {
	URL         string
	MaxConns    int32
	AutoMigrate bool
}

type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

type UploadConfig struct {
	Driver       string
	Dir          string
	PublicPrefix string
	MaxBytes     int64
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
}

type RedisConfig struct {
	Addr     string
	Password string
}

type RateLimitConfig struct {
	LoginLimit  int
	LoginWindow time.Duration
}

type NATSConfig struct {
	URL string
}

type CORSConfig struct {
	AllowedOrigins []string
}

func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("APP_NAME", "civic-report")
	v.SetDefault("PORT", "3000")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("JWT_EXPIRES_IN", "2160h")
	v.SetDefault("STORAGE_DRIVER", "local")
	v.SetDefault("UPLOAD_DIR", "public/img")
	v.SetDefault("PUBLIC_IMAGE_PREFIX", "/img")
	v.SetDefault("UPLOAD_MAX_MB", 10)
	v.SetDefault("S3_REGION", "auto")
	v.SetDefault("LOGIN_RATE_LIMIT", 10)
	v.SetDefault("LOGIN_RATE_WINDOW", "15m")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	// .env is optional; deployments usually inject the environment directly
	if _, err := os.Stat(".env"); err == nil {
		v.SetConfigFile(".env")
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	v.AutomaticEnv()

	return buildConfig(v)
}

func buildConfig(v *viper.Viper) (*Config, error) {
	// APP_ENV wins, NODE_ENV is accepted as an alias
	env := v.GetString("APP_ENV")
	if env == "" {
		env = v.GetString("NODE_ENV")
	}
	if env == "" {
		env = EnvProduction
	}

	config := &Config{
		App: AppConfig{
			Name:    v.GetString("APP_NAME"),
			Port:    v.GetString("PORT"),
			Env:     env,
			Debug:   v.GetBool("DEBUG"),
			LogPath: v.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			URL:         DatabaseURL(v.GetString("DB_STRING"), v.GetString("DB_PASSWORD")),
			MaxConns:    v.GetInt32("DB_MAX_CONNS"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		JWT: JWTConfig{
			Secret:    v.GetString("JWT_SECRET"),
			ExpiresIn: v.GetDuration("JWT_EXPIRES_IN"),
		},
		Upload: UploadConfig{
			Driver:       v.GetString("STORAGE_DRIVER"),
			Dir:          v.GetString("UPLOAD_DIR"),
			PublicPrefix: "/" + strings.Trim(v.GetString("PUBLIC_IMAGE_PREFIX"), "/"),
			MaxBytes:     v.GetInt64("UPLOAD_MAX_MB") << 20,
		},
		S3: S3Config{
			Bucket:          v.GetString("S3_BUCKET"),
			Region:          v.GetString("S3_REGION"),
			Endpoint:        v.GetString("S3_ENDPOINT"),
			AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
			PublicURL:       strings.TrimRight(v.GetString("S3_PUBLIC_URL"), "/"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		RateLimit: RateLimitConfig{
			LoginLimit:  v.GetInt("LOGIN_RATE_LIMIT"),
			LoginWindow: v.GetDuration("LOGIN_RATE_WINDOW"),
		},
		NATS: NATSConfig{
			URL: v.GetString("NATS_URL"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}

	if config.Database.URL == "" {
		return nil, errors.New("DB_STRING is required")
	}
	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if config.Upload.Driver == "s3" && config.S3.Bucket == "" {
		return nil, errors.New("S3_BUCKET is required when STORAGE_DRIVER=s3")
	}

	return config, nil
}

// DatabaseURL interpolates the password placeholder of a connection string.
func DatabaseURL(connStr, password string) string {
	return strings.ReplaceAll(connStr, "<PASSWORD>", password)
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
