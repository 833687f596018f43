package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config aggregates all runtime settings.
type Config struct {
	App     AppConfig     `envPrefix:"PROJEX_"`
	HTTP    HTTPConfig    `envPrefix:"PROJEX_HTTP_"`
	Mongo   MongoConfig   `envPrefix:"PROJEX_MONGO_"`
	Redis   RedisConfig   `envPrefix:"PROJEX_REDIS_"`
	Token   TokenConfig   `envPrefix:"PROJEX_TOKEN_"`
	Uploads UploadsConfig `envPrefix:"PROJEX_UPLOADS_"`
}

type AppConfig struct {
	Environment string `env:"ENV" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"projex-api"`
}

type HTTPConfig struct {
	Host              string        `env:"HOST" envDefault:"0.0.0.0"`
	Port              int           `env:"PORT" envDefault:"5000"`
	ReadTimeout       time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout       time.Duration `env:"IDLE_TIMEOUT" envDefault:"120s"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"25s"`
}

type MongoConfig struct {
	URI            string        `env:"URI"`
	Database       string        `env:"DATABASE" envDefault:"projex"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
	MaxPoolSize    uint64        `env:"MAX_POOL_SIZE" envDefault:"20"`
	EnsureIndexes  bool          `env:"ENSURE_INDEXES" envDefault:"true"`
}

type RedisConfig struct {
	Addr      string `env:"ADDR" envDefault:"127.0.0.1:6379"`
	Password  string `env:"PASSWORD"`
	DB        int    `env:"DB" envDefault:"0"`
	EnableTLS bool   `env:"ENABLE_TLS" envDefault:"false"`
	Namespace string `env:"NAMESPACE" envDefault:"projex"`
}

type TokenConfig struct {
	Issuer   string        `env:"ISSUER" envDefault:"https://api.projex.local"`
	Audience string        `env:"AUDIENCE" envDefault:"projex"`
	Secret   string        `env:"SECRET"`
	TTL      time.Duration `env:"TTL" envDefault:"720h"`
}

type UploadsConfig struct {
	Dir          string `env:"DIR" envDefault:"./uploads"`
	MaxSizeBytes int64  `env:"MAX_SIZE_BYTES" envDefault:"10000000"`
}

// Load parses environment variables into Config and performs validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Mongo.URI == "" {
		return nil, fmt.Errorf("PROJEX_MONGO_URI is required")
	}
	if cfg.Token.Secret == "" {
		return nil, fmt.Errorf("PROJEX_TOKEN_SECRET is required")
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in production mode.
// Error responses omit internal diagnostics when it returns true.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
