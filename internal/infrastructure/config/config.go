package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	StorageFilesystem = "filesystem"
	StorageMinio      = "minio"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth      AuthConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Minio     MinioConfig
	Bootstrap BootstrapConfig

	CleanupWorkers int `env:"CLEANUP_WORKERS, default=4"`
}

type AuthConfig struct {
	JWTSecret        string        `env:"JWT_SECRET, required"`
	JWTTTL           time.Duration `env:"JWT_TTL,    default=24h"`
	BcryptCost       int           `env:"BCRYPT_COST, default=12"`
	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	LoginWindow      time.Duration `env:"LOGIN_WINDOW, default=15m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=nexus"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type StorageConfig struct {
	Backend        string `env:"STORAGE_BACKEND,  default=filesystem"`
	UploadDir      string `env:"UPLOAD_DIR,       default=uploads"`
	UploadMaxBytes int64  `env:"UPLOAD_MAX_BYTES, default=10485760"`
}

type MinioConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET, default=nexus-documents"`
	UseSSL    bool   `env:"MINIO_USE_SSL, default=false"`
}

// BootstrapConfig seeds the first ADMIN account when Username is set.
type BootstrapConfig struct {
	Username string `env:"BOOTSTRAP_ADMIN_USERNAME"`
	Password string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
	Email    string `env:"BOOTSTRAP_ADMIN_EMAIL"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether ENV selects production behaviour such as JSON logs.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func (c *Config) validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes")
	}
	if c.Auth.JWTTTL < time.Second {
		return fmt.Errorf("JWT_TTL must be at least 1s, got %s", c.Auth.JWTTTL)
	}
	if c.Auth.LoginMaxAttempts < 0 {
		return fmt.Errorf("LOGIN_MAX_ATTEMPTS must not be negative")
	}
	if c.Storage.UploadMaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	switch c.Storage.Backend {
	case StorageFilesystem:
	case StorageMinio:
		if c.Minio.Endpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required for the minio storage backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	if c.Bootstrap.Username != "" && (c.Bootstrap.Password == "" || c.Bootstrap.Email == "") {
		return fmt.Errorf("BOOTSTRAP_ADMIN_PASSWORD and BOOTSTRAP_ADMIN_EMAIL are required with BOOTSTRAP_ADMIN_USERNAME")
	}
	return nil
}
