package config

import "github.com/ilyakaznacheev/cleanenv"

type Config struct {
	ServerPort string `env:"SERVER_PORT" env-default:"8080"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info"`

	// Store selects the channel store backend: "postgres" or "memory".
	// Memory is for local development only; it loses state on restart.
	Store string `env:"STORE" env-default:"postgres"`

	DBHost     string `env:"DB_HOST" env-default:"localhost"`
	DBPort     string `env:"DB_PORT" env-default:"5432"`
	DBUser     string `env:"DB_USER" env-default:"parley"`
	DBPassword string `env:"DB_PASSWORD" env-default:"parley_dev_password"`
	DBName     string `env:"DB_NAME" env-default:"parley"`

	JWTSecret string `env:"JWT_SECRET" env-default:"dev-secret-change-me"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
