// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// CLIConfig holds command-line configuration.
type CLIConfig struct {
	Dir         string
	LogLevel    string
	LogFormat   string
	Interval    time.Duration
	MetricsAddr string
	Namespace   string
	ShowVersion bool
	Names       []string
}

func parseFlags(args []string) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)

	fs.StringVar(&cfg.Dir, "dir",
		getEnv("ICC_DIR", ""),
		"Region directory, empty for /dev/shm (env: ICC_DIR)")

	fs.StringVar(&cfg.LogLevel, "log-level",
		getEnv("ICC_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: ICC_LOG_LEVEL)")

	fs.StringVar(&cfg.LogFormat, "log-format",
		getEnv("ICC_LOG_FORMAT", "text"),
		"Log format: json, text (env: ICC_LOG_FORMAT)")

	fs.DurationVar(&cfg.Interval, "interval",
		getEnvDuration("ICC_INTERVAL", 0),
		"Repeat the report at this interval, 0 to print once (env: ICC_INTERVAL)")

	fs.StringVar(&cfg.MetricsAddr, "metrics-addr",
		getEnv("ICC_METRICS_ADDR", ""),
		"Serve Prometheus metrics on this address, empty to disable (env: ICC_METRICS_ADDR)")

	fs.StringVar(&cfg.Namespace, "namespace",
		getEnv("ICC_NAMESPACE", "iccstat"),
		"Prometheus metric namespace (env: ICC_NAMESPACE)")

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] name...\n\n", appName)
		fmt.Fprintf(fs.Output(), "Reports the header of icc shared regions.\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Names = fs.Args()
	return cfg, nil
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion {
		return nil
	}
	if len(cfg.Names) == 0 {
		return fmt.Errorf("at least one region name is required")
	}
	if cfg.Interval < 0 {
		return fmt.Errorf("interval must not be negative: %v", cfg.Interval)
	}
	return nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
