package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingSecret = errors.New("auth.jwt_secret (JWT_SECRET) is required")

const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

type Config struct {
	Port     string
	DBPath   string
	LogLevel string
	Auth     AuthConfig
	Uploads  UploadsConfig
	S3       S3Config
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
}

type AuthConfig struct {
	JWTSecret    string
	CookieSecure bool
}

type UploadsConfig struct {
	Backend   string // local | s3
	Dir       string
	URLPrefix string
	MaxBytes  int64
}

type S3Config struct {
	Region        string
	Endpoint      string
	Bucket        string
	AccessKey     string
	SecretKey     string
	Prefix        string
	PublicBaseURL string
	UsePathStyle  bool
}

// RedisConfig enables the profile cache when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RabbitMQConfig enables activity publishing when URL is set.
type RabbitMQConfig struct {
	URL   string
	Queue string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db.path", "app.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("uploads.backend", BackendLocal)
	v.SetDefault("uploads.dir", "public/images/uploads")
	v.SetDefault("uploads.url_prefix", "/images/uploads")
	v.SetDefault("uploads.max_bytes", 5<<20)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.prefix", "avatars/")
	v.SetDefault("s3.public_base_url", "")
	v.SetDefault("s3.use_path_style", false)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", time.Minute)
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.queue", "postboard.activity")
}

// Load reads configs/config.yml (if present) from the given search paths and the
// environment. Nested keys map to upper-case env names, e.g. redis.addr -> REDIS_ADDR.
func Load(searchPaths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	if len(searchPaths) == 0 {
		searchPaths = []string{"configs"}
	}
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range map[string]string{
		"auth.jwt_secret": "JWT_SECRET",
		"port":            "PORT",
		"db.path":         "DB_PATH",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	cfg := &Config{
		Port:     v.GetString("port"),
		DBPath:   v.GetString("db.path"),
		LogLevel: v.GetString("log.level"),
		Auth: AuthConfig{
			JWTSecret:    v.GetString("auth.jwt_secret"),
			CookieSecure: v.GetBool("auth.cookie_secure"),
		},
		Uploads: UploadsConfig{
			Backend:   strings.ToLower(v.GetString("uploads.backend")),
			Dir:       v.GetString("uploads.dir"),
			URLPrefix: v.GetString("uploads.url_prefix"),
			MaxBytes:  v.GetInt64("uploads.max_bytes"),
		},
		S3: S3Config{
			Region:        v.GetString("s3.region"),
			Endpoint:      v.GetString("s3.endpoint"),
			Bucket:        v.GetString("s3.bucket"),
			AccessKey:     v.GetString("s3.access_key"),
			SecretKey:     v.GetString("s3.secret_key"),
			Prefix:        v.GetString("s3.prefix"),
			PublicBaseURL: v.GetString("s3.public_base_url"),
			UsePathStyle:  v.GetBool("s3.use_path_style"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TTL:      v.GetDuration("redis.ttl"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   v.GetString("rabbitmq.url"),
			Queue: v.GetString("rabbitmq.queue"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	// no built-in fallback secret: a forgeable key is worse than not starting
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return ErrMissingSecret
	}
	switch c.Uploads.Backend {
	case BackendLocal:
	case BackendS3:
		if c.S3.Bucket == "" {
			return errors.New("s3.bucket is required when uploads.backend is s3")
		}
	default:
		return fmt.Errorf("unknown uploads.backend %q", c.Uploads.Backend)
	}
	if c.Uploads.MaxBytes <= 0 {
		return errors.New("uploads.max_bytes must be positive")
	}
	return nil
}
