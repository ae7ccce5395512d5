package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *cfg != Default() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yml")); err != nil {
		t.Errorf("config.yml not created: %v", err)
	}
}

func TestLoadReadsExisting(t *testing.T) {
	dir := t.TempDir()
	content := "addr: ':9999'\nlog_level: debug\nwrite_rate_per_min: 10\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.LogLevel != "debug" || cfg.WriteRatePerMin != 10 {
		t.Errorf("Load() = %+v", cfg)
	}
	// Unset keys keep their defaults.
	if cfg.MaxRequestBodyBytes != Default().MaxRequestBodyBytes {
		t.Errorf("MaxRequestBodyBytes = %d, want default", cfg.MaxRequestBodyBytes)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte("log_level: loud\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("Load() accepted an unknown log level")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty addr", func(c *Config) { c.Addr = "" }, true},
		{"negative body limit", func(c *Config) { c.MaxRequestBodyBytes = -1 }, true},
		{"negative rate", func(c *Config) { c.WriteRatePerMin = -1 }, true},
		{"zero rate disables limiting", func(c *Config) { c.WriteRatePerMin = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Addr = "0.0.0.0:8081"
	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *got != cfg {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
}
