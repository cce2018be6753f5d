// Package config handles configuration for debtkeeper: defaults, a JSON file
// overlay, environment variables and finally command-line flags. Later
// sources take precedence over earlier ones.
package config

import "time"

// Storage kinds understood by storage.Open.
const (
	StorageJSON     = "json"
	StorageSQLite   = "sqlite"
	StorageBolt     = "bolt"
	StoragePostgres = "postgres"
)

// Config holds runtime settings.
//
// Fields:
//   - BotToken: Telegram Bot API token.
//   - StorageKind / StoragePath: backing store for debt records; the path is a
//     file for json, bolt and sqlite.
//   - DatabaseDSN: PostgreSQL DSN, used only with StoragePostgres.
//   - PollTimeout: long-polling timeout passed to getUpdates.
//   - RestartDelay: pause before the polling loop is restarted after a failure.
//   - HealthAddr: gRPC health endpoint address; empty disables it.
//   - LogLevel / Locale: log verbosity and an optional locale for amount
//     digit grouping; empty prints plain digits.
//   - S3*: optional off-site snapshot target; empty S3Bucket disables it.
type Config struct {
	BotToken     string
	StorageKind  string
	StoragePath  string
	DatabaseDSN  string
	PollTimeout  time.Duration
	RestartDelay time.Duration
	HealthAddr   string
	LogLevel     string
	Locale       string

	S3Bucket       string
	S3Key          string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string
}

// LoadDefaults populates c with defaults matching the original single-file
// deployment: debts.json in the working directory.
func (c *Config) LoadDefaults() {
	c.StorageKind = StorageJSON
	c.StoragePath = "debts.json"
	c.PollTimeout = 60 * time.Second
	c.RestartDelay = 10 * time.Second
	c.LogLevel = "info"
	c.S3Key = "debts.json"
	c.S3Region = "us-east-1"
}

// BackupEnabled reports whether snapshots should be shipped to S3.
func (c *Config) BackupEnabled() bool {
	return c.S3Bucket != ""
}

// LoadConfig builds a Config from defaults, JSON, environment and flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
