package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Import   ImportConfig
	Accounts AccountsConfig
	UI       UIConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// ImportConfig holds bank-export parsing settings. Date-only fields in
// import files are pinned to local noon in a fixed UTC offset so that
// re-imports compare equal against stored rows.
type ImportConfig struct {
	UTCOffsetMinutes int `mapstructure:"utc_offset_minutes"`
}

// AccountsConfig extends the built-in institution enumeration.
type AccountsConfig struct {
	Allowed []string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol"`
	HistoryCount   int    `mapstructure:"history_count"`
}

// Location returns the fixed-offset zone used for import date parsing.
func (c ImportConfig) Location() *time.Location {
	return time.FixedZone("import", c.UTCOffsetMinutes*60)
}

// Load reads configuration from file and env. Env var overrides use prefix HOMELEDGER_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "homeledger", "homeledger.db"))
	v.SetDefault("import.utc_offset_minutes", 8*60)
	v.SetDefault("accounts.allowed", []string{})
	v.SetDefault("ui.currency_symbol", "$")
	v.SetDefault("ui.history_count", 10)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("HOMELEDGER_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "homeledger"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("HOMELEDGER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Path returns the config file location Save writes to.
func Path() string {
	if p := os.Getenv("HOMELEDGER_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "homeledger", "config.toml")
}

// Save writes the provided config to disk, creating the config directory
// if needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("import.utc_offset_minutes", cfg.Import.UTCOffsetMinutes)
	v.Set("accounts.allowed", cfg.Accounts.Allowed)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("ui.history_count", cfg.UI.HistoryCount)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
