package config

import (
	"github.com/ilyakaznacheev/cleanenv"
)

// Environment names recognized in Config.Env.
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// Config holds the application configuration, read from the environment.
type Config struct {
	Env              string `env:"APP_ENV" env-default:"development"`
	Port             int    `env:"PORT" env-default:"5000"`
	DatabasePath     string `env:"DATABASE_PATH" env-default:"./savemyigcse.db"`
	DatabaseTestPath string `env:"DATABASE_TEST_PATH" env-default:"./savemyigcse_test.db"`
	APIVersion       string `env:"API_VERSION" env-default:"v1"`
	FrontendURL      string `env:"FRONTEND_URL" env-default:"http://localhost:3000"`
	JWTSecret        string `env:"JWT_SECRET" env-default:"dev-secret-change-me"`
}

// Load reads configuration from environment variables, applying defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ActiveDatabasePath returns the connection target for the active
// environment. Test runs get their own database file.
func (c *Config) ActiveDatabasePath() string {
	if c.Env == EnvTest {
		return c.DatabaseTestPath
	}
	return c.DatabasePath
}

// IsProduction reports whether the app runs in production mode. Stack
// traces in error envelopes are suppressed when it does.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}
