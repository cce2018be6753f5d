package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/debtkeeper/internal/flagx"
	"github.com/dmitrijs2005/debtkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations accept
// "10s" style strings or integer nanoseconds.
type JsonConfig struct {
	BotToken       string         `json:"bot_token"`
	StorageKind    string         `json:"storage_kind"`
	StoragePath    string         `json:"storage_path"`
	DatabaseDSN    string         `json:"database_dsn"`
	PollTimeout    timex.Duration `json:"poll_timeout"`
	RestartDelay   timex.Duration `json:"restart_delay"`
	HealthAddr     string         `json:"health_addr"`
	LogLevel       string         `json:"log_level"`
	Locale         string         `json:"locale"`
	S3Bucket       string         `json:"s3_bucket"`
	S3Key          string         `json:"s3_key"`
	S3Region       string         `json:"s3_region"`
	S3BaseEndpoint string         `json:"s3_base_endpoint"`
	S3AccessKey    string         `json:"s3_access_key"`
	S3SecretKey    string         `json:"s3_secret_key"`
}

// parseJson overlays values from the file named by -c/-config. Keys missing
// from the file leave the current value alone. An unreadable or invalid file
// panics, the same way a bad flag does.
func parseJson(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	b, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var c JsonConfig
	if err := json.Unmarshal(b, &c); err != nil {
		panic(err)
	}

	setString(&cfg.BotToken, c.BotToken)
	setString(&cfg.StorageKind, c.StorageKind)
	setString(&cfg.StoragePath, c.StoragePath)
	setString(&cfg.DatabaseDSN, c.DatabaseDSN)
	setString(&cfg.HealthAddr, c.HealthAddr)
	setString(&cfg.LogLevel, c.LogLevel)
	setString(&cfg.Locale, c.Locale)
	setString(&cfg.S3Bucket, c.S3Bucket)
	setString(&cfg.S3Key, c.S3Key)
	setString(&cfg.S3Region, c.S3Region)
	setString(&cfg.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&cfg.S3AccessKey, c.S3AccessKey)
	setString(&cfg.S3SecretKey, c.S3SecretKey)

	if c.PollTimeout.Duration > 0 {
		cfg.PollTimeout = c.PollTimeout.Duration
	}
	if c.RestartDelay.Duration > 0 {
		cfg.RestartDelay = c.RestartDelay.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
