package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port          string        `env:"PORT,            default=8080"`
	Env           string        `env:"ENV,             default=development"`
	LogLevel      string        `env:"LOG_LEVEL,       default=info"`
	JWTSecret     string        `env:"JWT_SECRET"`
	TokenTTL      time.Duration `env:"TOKEN_TTL,       default=5h"`
	MaxUploadSize string        `env:"MAX_UPLOAD_SIZE, default=50M"`
	AuditWorkers  int           `env:"AUDIT_WORKERS,   default=4"`
	CORSOrigins   []string      `env:"CORS_ORIGINS,    default=*"`

	Mongo MongoConfig
	Redis RedisConfig
	Blob  BlobConfig
	Admin AdminConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=dental_scribe"`
}

// RedisConfig is optional: an empty address disables Idempotency-Key replay.
type RedisConfig struct {
	Addr           string        `env:"REDIS_ADDR,      default=localhost:6379"`
	Password       string        `env:"REDIS_PASSWORD"`
	DB             int           `env:"REDIS_DB,        default=0"`
	PoolSize       int           `env:"REDIS_POOL_SIZE, default=10"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL, default=24h"`
}

type BlobConfig struct {
	Driver        string `env:"BLOB_DRIVER,     default=local"`
	UploadDir     string `env:"UPLOAD_DIR,      default=uploads"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL, default=http://localhost:8080"`

	S3Bucket        string `env:"S3_BUCKET"`
	S3Region        string `env:"S3_REGION"`
	S3Endpoint      string `env:"S3_ENDPOINT"`
	S3AccessKey     string `env:"S3_ACCESS_KEY"`
	S3SecretKey     string `env:"S3_SECRET_KEY"`
	S3PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
}

// AdminConfig is the account seeded when no admin exists.
type AdminConfig struct {
	Name     string `env:"ADMIN_NAME,     default=Dr. Admin"`
	Email    string `env:"ADMIN_EMAIL,    default=admin@dental.com"`
	Password string `env:"ADMIN_PASSWORD, default=admin123"`
}

// IsDevelopment reports whether pretty console logging should be used.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads an optional .env file and then the environment using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.Blob.Driver {
	case "local":
	case "memory":
		if !c.IsDevelopment() {
			return errors.New("the memory blob driver is only allowed in development")
		}
	case "s3":
		if c.Blob.S3Bucket == "" || c.Blob.S3Region == "" {
			return errors.New("S3_BUCKET and S3_REGION are required for the s3 blob driver")
		}
	default:
		return fmt.Errorf("unknown BLOB_DRIVER %q", c.Blob.Driver)
	}
	return nil
}
