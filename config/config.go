package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"tokenvest/crypto"
)

// TokenConfig describes the vested asset registered and minted at first boot.
type TokenConfig struct {
	Symbol   string `toml:"Symbol"`
	Name     string `toml:"Name"`
	Decimals uint8  `toml:"Decimals"`
	// Supply is the total token supply in base units, decimal encoded.
	Supply string `toml:"Supply"`
}

type Config struct {
	RPCAddress   string      `toml:"RPCAddress"`
	DataDir      string      `toml:"DataDir"`
	NetworkName  string      `toml:"NetworkName"`
	Environment  string      `toml:"Environment"`
	AdminAddress string      `toml:"AdminAddress"`
	Token        TokenConfig `toml:"Token"`
}

const defaultRPCAddress = ":8645"

// Load reads the configuration from the given path, creating a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if _, err := createDefault(path); err != nil {
			return nil, err
		}
		// The default file has no admin address, so the operator has to fill
		// it in before the service can authorize schedule administration.
		return nil, fmt.Errorf("config: wrote default config to %s; set AdminAddress and restart", path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = defaultRPCAddress
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./data"
	}
	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = "tokenvest-local"
	}
	if strings.TrimSpace(cfg.Token.Symbol) == "" {
		cfg.Token.Symbol = "VEST"
	}
	if strings.TrimSpace(cfg.Token.Name) == "" {
		cfg.Token.Name = "Vested Token"
	}
	if cfg.Token.Decimals == 0 {
		cfg.Token.Decimals = 18
	}
	if strings.TrimSpace(cfg.Token.Supply) == "" {
		cfg.Token.Supply = "1000000000000000000000000000"
	}
}

// Validate checks the fields that cannot be defaulted.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AdminAddress) == "" {
		return fmt.Errorf("config: AdminAddress must be set")
	}
	if _, err := crypto.DecodeAddress(c.AdminAddress); err != nil {
		return fmt.Errorf("config: invalid AdminAddress: %w", err)
	}
	if _, ok := new(big.Int).SetString(strings.TrimSpace(c.Token.Supply), 10); !ok {
		return fmt.Errorf("config: Token.Supply must be a base-10 integer, got %q", c.Token.Supply)
	}
	return nil
}

// SupplyAmount parses the configured token supply.
func (c *Config) SupplyAmount() *big.Int {
	supply, ok := new(big.Int).SetString(strings.TrimSpace(c.Token.Supply), 10)
	if !ok {
		return big.NewInt(0)
	}
	return supply
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
