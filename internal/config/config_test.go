package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestLoad_Defaults tests loading without a config file
func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BaseURL != "http://localhost:8000" {
		t.Errorf("Expected default base URL, got %s", cfg.BaseURL)
	}
	if cfg.CSRFCookieName != "csrftoken" {
		t.Errorf("Expected default CSRF cookie name, got %s", cfg.CSRFCookieName)
	}
	if cfg.SessionCookieName != "sessionid" {
		t.Errorf("Expected default session cookie name, got %s", cfg.SessionCookieName)
	}
	if cfg.Timeout != 30 {
		t.Errorf("Expected default timeout 30, got %d", cfg.Timeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.LogLevel)
	}
}

// TestLoad_EnvOverride tests BASKETS_* environment overrides
func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("BASKETS_BASE_URL", "https://orders.example.org")
	t.Setenv("BASKETS_SESSION_COOKIE", "abc123")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BaseURL != "https://orders.example.org" {
		t.Errorf("Expected env base URL, got %s", cfg.BaseURL)
	}
	if cfg.SessionCookie != "abc123" {
		t.Errorf("Expected env session cookie, got %s", cfg.SessionCookie)
	}
}

// TestLoad_File tests loading from an explicit config file
func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baskets.yaml")
	content := "base_url: https://panier.example.org\nlog_level: debug\ntimeout: 5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BaseURL != "https://panier.example.org" {
		t.Errorf("Expected file base URL, got %s", cfg.BaseURL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.LogLevel)
	}
	if cfg.Timeout != 5 {
		t.Errorf("Expected timeout 5, got %d", cfg.Timeout)
	}
}

// TestLoad_Invalid tests validation of bad values
func TestLoad_Invalid(t *testing.T) {
	t.Setenv("BASKETS_LOG_LEVEL", "verbose")

	if _, err := Load(""); err == nil {
		t.Error("Expected validation error for an unknown log level")
	}
}
