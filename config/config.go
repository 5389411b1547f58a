// Package config loads the fake gateway's settings from defaults, an optional
// YAML file and FAKE_BRAINTREE_* environment variables, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// FAKE_BRAINTREE_ADDR or FAKE_BRAINTREE_DECLINE_ALL_CARDS.
const EnvPrefix = "FAKE_BRAINTREE"

// Config is the full server configuration.
type Config struct {
	// Addr is the listen address.
	Addr string `yaml:"addr" mapstructure:"addr"`

	// Credentials the client library is configured with. Only MerchantID is
	// checked; it is part of every request path.
	MerchantID  string `yaml:"merchant_id" mapstructure:"merchant_id"`
	PublicKey   string `yaml:"public_key" mapstructure:"public_key"`
	PrivateKey  string `yaml:"private_key" mapstructure:"private_key"`
	Environment string `yaml:"environment" mapstructure:"environment"`

	LogFilePath string `yaml:"log_file_path" mapstructure:"log_file_path"`
	LogLevel    string `yaml:"log_level" mapstructure:"log_level"`

	// JournalPath is the BoltDB file recording every gateway operation. It
	// is emptied on start. Empty puts the journal in a per-process temporary
	// directory, so several servers can share a working directory.
	JournalPath string `yaml:"journal_path" mapstructure:"journal_path"`

	// Trace writes request spans to stderr.
	Trace bool `yaml:"trace" mapstructure:"trace"`

	// DeclineAllCards starts the server in failure mode.
	DeclineAllCards bool `yaml:"decline_all_cards" mapstructure:"decline_all_cards"`
}

// DefaultConfig returns the settings a client library configured with the
// conventional test credentials expects.
func DefaultConfig() *Config {
	return &Config{
		Addr:        ":3000",
		MerchantID:  "xxx",
		PublicKey:   "xxx",
		PrivateKey:  "xxx",
		Environment: "development",
		LogFilePath: "tmp/log",
		LogLevel:    "info",
	}
}

// Load merges the file at path (optional) and the environment over the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	setDefaults(v, cfg)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can see it during
// Unmarshal.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("addr", cfg.Addr)
	v.SetDefault("merchant_id", cfg.MerchantID)
	v.SetDefault("public_key", cfg.PublicKey)
	v.SetDefault("private_key", cfg.PrivateKey)
	v.SetDefault("environment", cfg.Environment)
	v.SetDefault("log_file_path", cfg.LogFilePath)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("journal_path", cfg.JournalPath)
	v.SetDefault("decline_all_cards", cfg.DeclineAllCards)
	v.SetDefault("trace", cfg.Trace)
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.MerchantID == "" {
		errs = append(errs, errors.New("merchant_id is required"))
	}
	if c.LogFilePath == "" {
		errs = append(errs, errors.New("log_file_path is required"))
	}
	return errors.Join(errs...)
}
