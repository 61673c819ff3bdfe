package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DataFile       string
	SnapshotSecret string
	LogLevel       slog.Level
	LogFormat      string
	LogFile        string
	MetricsAddr    string
	Persist        bool
}

const (
	keyDataFile       = "DATA_FILE"
	keySnapshotSecret = "SNAPSHOT_SECRET"
	keyLogLevel       = "LOG_LEVEL"
	keyLogFormat      = "LOG_FORMAT"
	keyLogFile        = "LOG_FILE"
	keyMetricsAddr    = "METRICS_ADDR"
	keyPersist        = "PERSIST"
)

// Load resolves configuration from, in increasing priority: defaults, the
// .env file (or --env-file), process environment and command line flags.
func Load(args []string) (*Config, error) {
	flags := pflag.NewFlagSet("pixbank", pflag.ContinueOnError)
	envFile := flags.String("env-file", ".env", "dotenv file to load if present")
	flags.String("data-file", "", "snapshot file path")
	flags.String("snapshot-secret", "", "HMAC key used to sign the snapshot")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.String("log-format", "", "json or text")
	flags.String("log-file", "", "write logs to this file instead of stderr")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address")
	flags.Bool("persist", true, "load and save the snapshot file")

	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", *envFile, err)
	}

	v := viper.New()
	v.SetDefault(keyDataFile, "bank_state.json")
	v.SetDefault(keySnapshotSecret, "")
	v.SetDefault(keyLogLevel, "warn")
	v.SetDefault(keyLogFormat, "json")
	v.SetDefault(keyLogFile, "")
	v.SetDefault(keyMetricsAddr, "")
	v.SetDefault(keyPersist, true)
	v.AutomaticEnv()

	bindings := map[string]string{
		keyDataFile:       "data-file",
		keySnapshotSecret: "snapshot-secret",
		keyLogLevel:       "log-level",
		keyLogFormat:      "log-format",
		keyLogFile:        "log-file",
		keyMetricsAddr:    "metrics-addr",
		keyPersist:        "persist",
	}
	for key, name := range bindings {
		// Only flags given on the command line override the environment.
		if f := flags.Lookup(name); f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	cfg := &Config{
		DataFile:       v.GetString(keyDataFile),
		SnapshotSecret: v.GetString(keySnapshotSecret),
		LogFormat:      strings.ToLower(v.GetString(keyLogFormat)),
		LogFile:        v.GetString(keyLogFile),
		MetricsAddr:    v.GetString(keyMetricsAddr),
		Persist:        v.GetBool(keyPersist),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString(keyLogLevel))); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", keyLogLevel, err)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("invalid %s %q: want json or text", keyLogFormat, cfg.LogFormat)
	}
	if cfg.Persist && cfg.DataFile == "" {
		return nil, fmt.Errorf("%s must not be empty when persistence is enabled", keyDataFile)
	}

	return cfg, nil
}
