package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Contract holds the instantiation parameters applied on first boot.
// AdminAddress acts as the instantiation caller, so it becomes the
// contract admin.
type Contract struct {
	AdminAddress string `toml:"AdminAddress"`
	Recipient    string `toml:"Recipient"`
	Denom        string `toml:"Denom"`
	BusinessName string `toml:"BusinessName"`
}

type Config struct {
	RPCAddress     string   `toml:"RPCAddress"`
	MetricsAddress string   `toml:"MetricsAddress"`
	DataDir        string   `toml:"DataDir"`
	LogLevel       string   `toml:"LogLevel"`
	Contract       Contract `toml:"Contract"`
}

func defaultConfig() *Config {
	return &Config{
		RPCAddress:     "127.0.0.1:8645",
		MetricsAddress: "127.0.0.1:9465",
		DataDir:        "./invoiced-data",
		LogLevel:       "info",
		Contract: Contract{
			AdminAddress: "merchant-admin",
			Recipient:    "merchant-settlement",
			Denom:        "usdx.c",
			BusinessName: "Example Business",
		},
	}
}

// Load loads the configuration from the given path, writing a default
// file when none exists yet.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyFallbacks(cfg)
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func createDefault(path string) (*Config, error) {
	cfg := defaultConfig()
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFallbacks(cfg *Config) {
	defaults := defaultConfig()
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = defaults.RPCAddress
	}
	if strings.TrimSpace(cfg.MetricsAddress) == "" {
		cfg.MetricsAddress = defaults.MetricsAddress
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = defaults.DataDir
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = defaults.LogLevel
	}
}

func validate(cfg *Config) error {
	var missing []string
	if strings.TrimSpace(cfg.Contract.AdminAddress) == "" {
		missing = append(missing, "Contract.AdminAddress")
	}
	if strings.TrimSpace(cfg.Contract.Recipient) == "" {
		missing = append(missing, "Contract.Recipient")
	}
	if strings.TrimSpace(cfg.Contract.Denom) == "" {
		missing = append(missing, "Contract.Denom")
	}
	if strings.TrimSpace(cfg.Contract.BusinessName) == "" {
		missing = append(missing, "Contract.BusinessName")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
