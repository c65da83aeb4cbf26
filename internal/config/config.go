// Package config provides functionality for managing configuration options
// for the submission server using command-line flags, a JSON config file
// and environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"
)

// Options holds the configuration values for the server.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"address"`

	// Driver selects the database driver: "postgres" or "mysql".
	Driver string `json:"driver"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn"`

	// CodeDir is the directory where submitted code files are written.
	CodeDir string `json:"code_dir"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// Retention is how long submissions are kept. Zero keeps them forever.
	Retention time.Duration `json:"-"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// fileOptions mirrors Options for the JSON file, with durations as strings.
type fileOptions struct {
	Options
	Retention string `json:"retention"`
}

func defaults() Options {
	return Options{
		Port:     "localhost:8080",
		Driver:   "postgres",
		CodeDir:  "codes",
		LogLevel: "info",
		Config:   "config.json",
	}
}

// Parse parses the process flags and environment. It exits on invalid
// configuration, like the rest of startup.
func Parse() *Options {
	opts, err := Load(flag.CommandLine, os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return opts
}

// Load builds Options in increasing precedence: defaults, the JSON config
// file, explicitly set flags, then environment variables.
func Load(fs *flag.FlagSet, args []string, getenv func(string) string) (*Options, error) {
	cli := defaults()
	fs.StringVar(&cli.Port, "a", cli.Port, "run on ip:port server")
	fs.StringVar(&cli.Driver, "driver", cli.Driver, "database driver: postgres | mysql")
	fs.StringVar(&cli.DatabaseDSN, "d", cli.DatabaseDSN, "db address")
	fs.StringVar(&cli.CodeDir, "codes", cli.CodeDir, "directory for submitted code files")
	fs.StringVar(&cli.TLSCert, "tls-cert", cli.TLSCert, "path to TLS certificate (enables HTTPS)")
	fs.StringVar(&cli.TLSKey, "tls-key", cli.TLSKey, "path to TLS private key")
	fs.DurationVar(&cli.Retention, "retention", cli.Retention, "purge submissions older than this (0 disables)")
	fs.StringVar(&cli.LogLevel, "log-level", cli.LogLevel, "log level")
	fs.StringVar(&cli.Config, "config", cli.Config, "path to config file")
	fs.StringVar(&cli.Config, "c", cli.Config, "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts := defaults()
	opts.Config = cli.Config
	if configPath := getenv("CONFIG"); configPath != "" {
		opts.Config = configPath
	}

	if err := loadFile(&opts); err != nil {
		return nil, err
	}

	// Explicit flags win over the file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			opts.Port = cli.Port
		case "driver":
			opts.Driver = cli.Driver
		case "d":
			opts.DatabaseDSN = cli.DatabaseDSN
		case "codes":
			opts.CodeDir = cli.CodeDir
		case "tls-cert":
			opts.TLSCert = cli.TLSCert
		case "tls-key":
			opts.TLSKey = cli.TLSKey
		case "retention":
			opts.Retention = cli.Retention
		case "log-level":
			opts.LogLevel = cli.LogLevel
		}
	})

	if serverAddress := getenv("SERVER_ADDRESS"); serverAddress != "" {
		opts.Port = serverAddress
	}
	if dsn := getenv("DATABASE_DSN"); dsn != "" {
		opts.DatabaseDSN = dsn
	}
	if driver := getenv("DATABASE_DRIVER"); driver != "" {
		opts.Driver = driver
	}
	if dir := getenv("CODE_DIR"); dir != "" {
		opts.CodeDir = dir
	}

	if (opts.TLSCert == "") != (opts.TLSKey == "") {
		return nil, errors.New("tls-cert and tls-key must be set together")
	}
	if opts.Retention < 0 {
		return nil, fmt.Errorf("retention must not be negative, got %s", opts.Retention)
	}

	return &opts, nil
}

// loadFile overlays the JSON config file onto opts. A missing file is ignored.
func loadFile(opts *Options) error {
	if opts.Config == "" {
		return nil
	}
	data, err := os.ReadFile(opts.Config)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}

	fo := fileOptions{Options: *opts}
	if err := json.Unmarshal(data, &fo); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	if fo.Retention != "" {
		d, err := time.ParseDuration(fo.Retention)
		if err != nil {
			return fmt.Errorf("error while parsing config file: retention: %w", err)
		}
		fo.Options.Retention = d
	}

	cfgPath := opts.Config
	*opts = fo.Options
	opts.Config = cfgPath
	return nil
}
