package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig lists the environment variables read at startup. TOKEN is kept
// for deployments that still ship the original .env file.
type envConfig struct {
	BotToken       string        `env:"DEBTKEEPER_BOT_TOKEN"`
	LegacyToken    string        `env:"TOKEN"`
	StorageKind    string        `env:"DEBTKEEPER_STORAGE_KIND"`
	StoragePath    string        `env:"DEBTKEEPER_STORAGE_PATH"`
	DatabaseDSN    string        `env:"DEBTKEEPER_DATABASE_DSN"`
	PollTimeout    time.Duration `env:"DEBTKEEPER_POLL_TIMEOUT"`
	RestartDelay   time.Duration `env:"DEBTKEEPER_RESTART_DELAY"`
	HealthAddr     string        `env:"DEBTKEEPER_HEALTH_ADDR"`
	LogLevel       string        `env:"DEBTKEEPER_LOG_LEVEL"`
	Locale         string        `env:"DEBTKEEPER_LOCALE"`
	S3Bucket       string        `env:"DEBTKEEPER_S3_BUCKET"`
	S3Key          string        `env:"DEBTKEEPER_S3_KEY"`
	S3Region       string        `env:"DEBTKEEPER_S3_REGION"`
	S3BaseEndpoint string        `env:"DEBTKEEPER_S3_ENDPOINT"`
	S3AccessKey    string        `env:"DEBTKEEPER_S3_ACCESS_KEY"`
	S3SecretKey    string        `env:"DEBTKEEPER_S3_SECRET_KEY"`
}

// parseEnv overlays non-empty environment variables onto cfg.
func parseEnv(cfg *Config) {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		panic(fmt.Errorf("parse env: %w", err))
	}

	setString(&cfg.BotToken, e.LegacyToken)
	setString(&cfg.BotToken, e.BotToken)
	setString(&cfg.StorageKind, e.StorageKind)
	setString(&cfg.StoragePath, e.StoragePath)
	setString(&cfg.DatabaseDSN, e.DatabaseDSN)
	setString(&cfg.HealthAddr, e.HealthAddr)
	setString(&cfg.LogLevel, e.LogLevel)
	setString(&cfg.Locale, e.Locale)
	setString(&cfg.S3Bucket, e.S3Bucket)
	setString(&cfg.S3Key, e.S3Key)
	setString(&cfg.S3Region, e.S3Region)
	setString(&cfg.S3BaseEndpoint, e.S3BaseEndpoint)
	setString(&cfg.S3AccessKey, e.S3AccessKey)
	setString(&cfg.S3SecretKey, e.S3SecretKey)

	if e.PollTimeout > 0 {
		cfg.PollTimeout = e.PollTimeout
	}
	if e.RestartDelay > 0 {
		cfg.RestartDelay = e.RestartDelay
	}
}
