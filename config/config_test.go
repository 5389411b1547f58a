package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Addr != ":3000" {
		t.Errorf("Expected addr ':3000', got '%s'", cfg.Addr)
	}
	if cfg.MerchantID != "xxx" || cfg.PublicKey != "xxx" || cfg.PrivateKey != "xxx" {
		t.Errorf("Expected xxx credentials, got %+v", cfg)
	}
	if cfg.LogFilePath != "tmp/log" {
		t.Errorf("Expected log file 'tmp/log', got '%s'", cfg.LogFilePath)
	}
	if cfg.DeclineAllCards {
		t.Error("Expected failure mode to be off by default")
	}
	if cfg.JournalPath != "" {
		t.Errorf("Expected per-process journal by default, got '%s'", cfg.JournalPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `addr: ":4567"
merchant_id: acme
decline_all_cards: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != ":4567" {
		t.Errorf("Expected addr ':4567', got '%s'", cfg.Addr)
	}
	if cfg.MerchantID != "acme" {
		t.Errorf("Expected merchant 'acme', got '%s'", cfg.MerchantID)
	}
	if !cfg.DeclineAllCards {
		t.Error("Expected decline_all_cards from file")
	}
	// Keys absent from the file keep their defaults.
	if cfg.PublicKey != "xxx" {
		t.Errorf("Expected default public key, got '%s'", cfg.PublicKey)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("merchant_id: acme\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FAKE_BRAINTREE_MERCHANT_ID", "from-env")
	t.Setenv("FAKE_BRAINTREE_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MerchantID != "from-env" {
		t.Errorf("Expected env to win, got '%s'", cfg.MerchantID)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level 'debug', got '%s'", cfg.LogLevel)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = ""
	cfg.MerchantID = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error")
	}
}
