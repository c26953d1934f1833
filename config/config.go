// Package config parses service configuration from the environment and flags.
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Config holds service configuration. Flags override environment variables.
type Config struct {
	Addr         string `env:"EXCHANGE_HTTP_ADDR"     envDefault:":3001"`
	RatesFile    string `env:"EXCHANGE_RATES_FILE"`
	LogLevel     string `env:"EXCHANGE_LOG_LEVEL"     envDefault:"info"`
	LogFormat    string `env:"EXCHANGE_LOG_FORMAT"    envDefault:"logfmt"`
	OTelEndpoint string `env:"EXCHANGE_OTEL_ENDPOINT"`
}

// Parse parses environment and flags into a Config.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.RatesFile, "rates", cfg.RatesFile, "TOML rate table file (default: built-in CNY table)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: logfmt or json")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if _, err := levelOption(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	switch cfg.LogFormat {
	case "logfmt", "json":
	default:
		return Config{}, fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}
	return cfg, nil
}

// Logger builds the process logger described by cfg, writing to w.
func (cfg Config) Logger(w io.Writer) log.Logger {
	if w == nil {
		w = os.Stderr
	}
	sw := log.NewSyncWriter(w)

	var logger log.Logger
	if cfg.LogFormat == "json" {
		logger = log.NewJSONLogger(sw)
	} else {
		logger = log.NewLogfmtLogger(sw)
	}
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	opt, err := levelOption(cfg.LogLevel)
	if err != nil {
		opt = level.AllowInfo()
	}
	return level.NewFilter(logger, opt)
}

func levelOption(name string) (level.Option, error) {
	switch strings.ToLower(name) {
	case "debug":
		return level.AllowDebug(), nil
	case "", "info":
		return level.AllowInfo(), nil
	case "warn":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	}
	return nil, fmt.Errorf("unknown log level %q", name)
}
