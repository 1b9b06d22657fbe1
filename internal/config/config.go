package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Addr        string `envconfig:"ADDR" default:":8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"720h"`

	BlobDir     string `envconfig:"BLOB_DIR" default:"./data/images"`
	BlobBaseURL string `envconfig:"BLOB_BASE_URL" default:"http://localhost:8080/images"`

	// SMTPAddr empty means purchase/welcome emails are only logged
	SMTPAddr string `envconfig:"SMTP_ADDR"`
	SMTPFrom string `envconfig:"SMTP_FROM" default:"no-reply@marketgo.local"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("envconfig.Process: %w", err)
	}
	return cfg, nil
}

func (c Config) Development() bool {
	return c.Environment == "development"
}
