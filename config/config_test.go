package config

import (
	"os"
	"path/filepath"
	"testing"

	"tokenvest/crypto"
)

func testAdminAddress() string {
	raw := make([]byte, 20)
	raw[19] = 0x01
	return crypto.NewAddress(crypto.TKVPrefix, raw).String()
}

func TestLoadWritesDefaultAndAsksForAdmin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if _, err := Load(path); err == nil {
		t.Fatalf("first load should fail until AdminAddress is set")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config file not written: %v", err)
	}

	// A second load still fails validation because the default file carries no
	// admin address.
	if _, err := Load(path); err == nil {
		t.Fatalf("load of default file should fail validation")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "AdminAddress = \"" + testAdminAddress() + "\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != ":8645" {
		t.Fatalf("RPCAddress = %q, want :8645", cfg.RPCAddress)
	}
	if cfg.Token.Symbol != "VEST" || cfg.Token.Decimals != 18 {
		t.Fatalf("token defaults missing: %+v", cfg.Token)
	}
	if cfg.SupplyAmount().Sign() <= 0 {
		t.Fatalf("default supply should be positive")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()

	badAdmin := filepath.Join(dir, "bad_admin.toml")
	if err := os.WriteFile(badAdmin, []byte("AdminAddress = \"nonsense\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(badAdmin); err == nil {
		t.Fatalf("invalid admin address should fail")
	}

	badSupply := filepath.Join(dir, "bad_supply.toml")
	content := "AdminAddress = \"" + testAdminAddress() + "\"\n[Token]\nSupply = \"1.5e9\"\n"
	if err := os.WriteFile(badSupply, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(badSupply); err == nil {
		t.Fatalf("non-integer supply should fail")
	}
}
