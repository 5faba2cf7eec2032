package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	BackendPostgres = "postgres"
	BackendLocal    = "local"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort              string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel              string `env:"LOG_LEVEL" envDefault:"info"`
	StorageBackend        string `env:"STORAGE_BACKEND" envDefault:"postgres"`
	DatabaseURL           string `env:"DATABASE_URL"`
	DBMaxConns            int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	AutoMigrate           bool   `env:"AUTO_MIGRATE" envDefault:"true"`
	QuestionsFile         string `env:"QUESTIONS_FILE"`
	JWTSecret             string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes   int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	JWTRefreshTTLMinutes  int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`
	RedisAddr             string `env:"REDIS_ADDR"`
	RedisPassword         string `env:"REDIS_PASSWORD"`
	RedisDB               int    `env:"REDIS_DB" envDefault:"0"`
	LoginMaxAttempts      int    `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginWindowMinutes    int    `env:"LOGIN_WINDOW_MINUTES" envDefault:"10"`
	AnswerRatePerMinute   int    `env:"ANSWER_RATE_PER_MINUTE" envDefault:"60"`
	AnswerRateBurst       int    `env:"ANSWER_RATE_BURST" envDefault:"10"`
	RequestTimeoutSeconds int    `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"10"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate revisa combinaciones que env no puede expresar con tags.
func (c *Config) Validate() error {
	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	switch c.StorageBackend {
	case BackendPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("%w: DATABASE_URL is required for the postgres backend", ErrInvalidConfig)
		}
	case BackendLocal:
	default:
		return fmt.Errorf("%w: unknown STORAGE_BACKEND %q", ErrInvalidConfig, c.StorageBackend)
	}
	if c.DBMaxConns <= 0 {
		c.DBMaxConns = 10
	}
	return nil
}

func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
