package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/debtkeeper/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-t string   Telegram bot token
//	-s string   storage kind: json, sqlite, bolt, postgres
//	-f string   storage file path
//	-d string   PostgreSQL DSN
//	-p int      polling timeout, seconds
//	-r int      restart delay, seconds
//	-g string   gRPC health address, e.g. ":8081"
//	-l string   log level
//	-b string   S3 bucket for snapshots
//	-e string   S3 base endpoint
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-t", "-s", "-f", "-d", "-p", "-r", "-g", "-l", "-b", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BotToken, "t", cfg.BotToken, "telegram bot token")
	fs.StringVar(&cfg.StorageKind, "s", cfg.StorageKind, "storage kind (json, sqlite, bolt, postgres)")
	fs.StringVar(&cfg.StoragePath, "f", cfg.StoragePath, "storage file path")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	pollTimeout := fs.Int("p", int(cfg.PollTimeout.Seconds()), "polling timeout (in seconds)")
	restartDelay := fs.Int("r", int(cfg.RestartDelay.Seconds()), "restart delay (in seconds)")
	fs.StringVar(&cfg.HealthAddr, "g", cfg.HealthAddr, "gRPC health address")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket for snapshots")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PollTimeout = time.Duration(*pollTimeout) * time.Second
	cfg.RestartDelay = time.Duration(*restartDelay) * time.Second
}
