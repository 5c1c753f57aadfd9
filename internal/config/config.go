// Package config provides configuration types, loading and validation for
// mailprobe.
//
// Resolver settings are merged from several sources, lowest precedence first:
//
//  1. built-in defaults (DefaultResolverConfig)
//  2. the system resolver file (/etc/resolv.conf)
//  3. per-user dotfiles ($HOME/.resolv.conf, ./.resolv.conf)
//  4. environment: RES_NAMESERVERS, RES_SEARCHLIST, LOCALDOMAIN, RES_OPTIONS
//  5. an optional TOML file
//  6. explicit overrides given as option:value pairs
//
// After merging, an empty domain takes the first search entry and an empty
// search list takes the domain.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jroosing/mailprobe/internal/helpers"
)

// ConfigEnvVar names the environment variable holding the TOML file path.
const ConfigEnvVar = "MAILPROBE_CONFIG"

const (
	systemResolvConf = "/etc/resolv.conf"
	dotFileName      = ".resolv.conf"
	maxRetry         = 16
)

// LoadOptions selects the sources Load reads.
type LoadOptions struct {
	// ConfigFile is an optional TOML file; empty skips it.
	ConfigFile string

	// ResolvConf replaces /etc/resolv.conf when set.
	ResolvConf string

	// DotFiles replaces $HOME/.resolv.conf and ./.resolv.conf when non-nil.
	DotFiles []string

	// NoSystem skips resolv.conf, the dotfiles and the environment.
	NoSystem bool

	// LookupEnv replaces os.LookupEnv.
	LookupEnv func(string) (string, bool)

	// Overrides are applied last, in key order. Keys are option names as
	// accepted by ApplyOption.
	Overrides map[string]string
}

// Default returns a configuration with every default filled in.
func Default() *Config {
	return &Config{
		Resolver: DefaultResolverConfig(),
		Logging: LoggingConfig{
			Level:            "INFO",
			StructuredFormat: "json",
			ExtraFields:      map[string]string{},
		},
		API: APIConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    8080,
		},
		Database: DatabaseConfig{Path: "mailprobe.db"},
		MX:       MXConfig{UsePlatform: true},
	}
}

// ResolveConfigPath returns the TOML path from the command-line flag, or
// from MAILPROBE_CONFIG when the flag is blank.
func ResolveConfigPath(flagValue string) string {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p
	}
	return strings.TrimSpace(os.Getenv(ConfigEnvVar))
}

// Load merges every configured source into a validated Config.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()
	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if !opts.NoSystem {
		files := []string{systemResolvConf}
		if opts.ResolvConf != "" {
			files[0] = opts.ResolvConf
		}
		files = append(files, dotFiles(opts.DotFiles, lookup)...)
		for _, f := range files {
			if err := ReadResolvConfFile(f, &cfg.Resolver); err != nil {
				return nil, err
			}
		}
		ApplyEnv(&cfg.Resolver, lookup)
		if lvl, ok := lookup("LOG_LEVEL"); ok && lvl != "" {
			cfg.Logging.Level = lvl
		}
	}

	if opts.ConfigFile != "" {
		if err := decodeFile(opts.ConfigFile, cfg); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(opts.Overrides))
	for k := range opts.Overrides {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if err := ApplyOption(&cfg.Resolver, k, opts.Overrides[k]); err != nil {
			return nil, err
		}
	}

	cfg.Resolver.reconcile()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func dotFiles(explicit []string, lookup func(string) (string, bool)) []string {
	if explicit != nil {
		return explicit
	}
	var files []string
	if home, ok := lookup("HOME"); ok && home != "" {
		files = append(files, filepath.Join(home, dotFileName))
	}
	return append(files, filepath.Join(".", dotFileName))
}

// decodeFile overlays a TOML file on cfg. Keys absent from the file keep
// their current values; keys the schema does not know are an error.
func decodeFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("read config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// reconcile fills domain and search list from each other.
func (c *ResolverConfig) reconcile() {
	if c.Domain == "" && len(c.SearchList) > 0 {
		c.Domain = c.SearchList[0]
	} else if len(c.SearchList) == 0 && c.Domain != "" {
		c.SearchList = []string{c.Domain}
	}
}

// Validate validates and normalizes the configuration.
func (cfg *Config) Validate() error {
	r := &cfg.Resolver
	if r.Port <= 0 || r.Port > 65535 {
		return errors.New("resolver.port must be 1..65535")
	}
	if r.Retrans <= 0 {
		r.Retrans = DefaultRetrans
	}
	r.Retry = helpers.ClampInt(r.Retry, 1, maxRetry)
	if r.TCPTimeout < 0 {
		return errors.New("resolver.tcp_timeout must not be negative")
	}
	r.Domain = strings.Trim(r.Domain, ".")
	for i, s := range r.SearchList {
		r.SearchList[i] = strings.Trim(s, ".")
	}
	if (r.TSIG.KeyName == "") != (r.TSIG.Secret == "") {
		return errors.New("resolver.tsig needs both key_name and secret")
	}

	// Normalize logging
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)
	if r.Debug {
		cfg.Logging.Level = "DEBUG"
	}
	if cfg.Logging.StructuredFormat == "" {
		cfg.Logging.StructuredFormat = "json"
	}
	if cfg.Logging.ExtraFields == nil {
		cfg.Logging.ExtraFields = map[string]string{}
	}

	// Normalize HTTP API
	if cfg.API.Host == "" {
		cfg.API.Host = "127.0.0.1"
	}
	if cfg.API.Enabled {
		if cfg.API.Port <= 0 || cfg.API.Port > 65535 {
			return errors.New("api.port must be 1..65535")
		}
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "mailprobe.db"
	}
	return nil
}
