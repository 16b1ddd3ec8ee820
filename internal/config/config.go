package config

import (
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr     string `env:"LISTEN_ADDR" envDefault:":8000"`
	FrontendOrigin string `env:"FRONTEND_ORIGIN" envDefault:"http://localhost:5173"`
	AuthSecret     string `env:"AUTH_SECRET" envDefault:"secret"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"collecthub"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`

	MinioInternalEndpoint string `env:"MINIO_INTERNAL_ENDPOINT" envDefault:"localhost:9000"`
	MinioPublicEndpoint   string `env:"MINIO_PUBLIC_ENDPOINT" envDefault:"http://localhost:9000"`
	MinioAccessKey        string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey        string `env:"MINIO_SECRET_KEY"`

	SMTPSenderName string `env:"SMTP_SENDER_NAME" envDefault:"CollectHub"`
	SMTPAddress    string `env:"SMTP_ADDRESS"`
	SMTPPassword   string `env:"SMTP_PASSWORD"`
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
