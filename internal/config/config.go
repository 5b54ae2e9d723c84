// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the binaries need. It is built once in main and
// passed down through constructors; nothing in this repo reads the
// environment after startup.
type Config struct {
	DBUser string `env:"DB_USER,required"`
	DBPass string `env:"DB_PASSWORD,required"`
	DBHost string `env:"DB_HOST" envDefault:"localhost"`
	DBPort string `env:"DB_PORT" envDefault:"5432"`
	DBName string `env:"DB_NAME,required"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	RMQUser string `env:"RMQ_USER" envDefault:"guest"`
	RMQPass string `env:"RMQ_PASS" envDefault:"guest"`
	RMQHost string `env:"RMQ_HOST" envDefault:"localhost"`
	RMQPort string `env:"RMQ_PORT" envDefault:"5672"`

	EmailHost string `env:"EMAIL_HOST"`
	EmailPort int    `env:"EMAIL_PORT" envDefault:"465"`
	EmailName string `env:"EMAIL_NAME"`
	EmailPass string `env:"EMAIL_PASS"`

	JWTSecret   string        `env:"JWT_SECRET,required"`
	JWTExp      time.Duration `env:"JWT_EXP" envDefault:"24h"`
	WorkerToken string        `env:"TOKEN_WORKER,required"`

	WorkerInterval time.Duration `env:"WORKER_INTERVAL" envDefault:"10s"`
}

// Load reads an optional .env file and parses the environment. A missing
// .env file is not an error; required variables still have to come from
// somewhere.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName,
	)
}

func (c *Config) RabbitURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", c.RMQUser, c.RMQPass, c.RMQHost, c.RMQPort)
}
