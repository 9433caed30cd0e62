package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"
)

// config holds the settings that can come from a YAML file or from flags.
//
//	timeout: 30s
//	proxy: socks5://127.0.0.1:1080
//	limit: 1048576
//	strict: true
//	progress: true
//	verbose: 1
type config struct {
	Timeout  time.Duration `yaml:"timeout"`
	Proxy    string        `yaml:"proxy"`
	Limit    int64         `yaml:"limit"`
	Strict   bool          `yaml:"strict"`
	Progress bool          `yaml:"progress"`
	Verbose  int           `yaml:"verbose"`
}

// loadConfig reads path, expanding a leading "~". An empty path yields the
// zero config.
func loadConfig(path string) (config, error) {
	var cfg config
	if path == "" {
		return cfg, nil
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to expand config path: %w", err)
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", expanded, err)
	}

	if cfg.Timeout < 0 || cfg.Limit < 0 || cfg.Verbose < 0 {
		return cfg, fmt.Errorf("config %s: negative values are not allowed", expanded)
	}

	return cfg, nil
}

// merge overrides cfg with every flag the user set explicitly.
func (cfg *config) merge(fs *pflag.FlagSet, flags *config) {
	if fs.Changed("timeout") {
		cfg.Timeout = flags.Timeout
	}
	if fs.Changed("proxy") {
		cfg.Proxy = flags.Proxy
	}
	if fs.Changed("limit") {
		cfg.Limit = flags.Limit
	}
	if fs.Changed("strict") {
		cfg.Strict = flags.Strict
	}
	if fs.Changed("progress") {
		cfg.Progress = flags.Progress
	}
	if fs.Changed("verbose") {
		cfg.Verbose = flags.Verbose
	}
}

// bindFlags registers the config flags on fs, writing into flags.
func bindFlags(fs *pflag.FlagSet, flags *config, configPath *string) {
	fs.StringVar(configPath, "config", "", "YAML file with default settings")
	fs.DurationVar(&flags.Timeout, "timeout", 0, "per-operation network timeout (0 = none)")
	fs.StringVar(&flags.Proxy, "proxy", "", "SOCKS5 proxy URL, e.g. socks5://127.0.0.1:1080")
	fs.Int64Var(&flags.Limit, "limit", 0, "bandwidth limit in bytes per second (0 = unlimited)")
	fs.BoolVar(&flags.Strict, "strict", false, "require the server's 226 transfer-complete reply")
	fs.BoolVar(&flags.Progress, "progress", false, "show download progress")
	fs.CountVarP(&flags.Verbose, "verbose", "v", "verbosity level (-v warnings, -vv debug)")
}
