package db

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Host != "localhost" {
		t.Errorf("expected host 'localhost', got '%s'", cfg.Host)
	}
	if cfg.Port != 5432 {
		t.Errorf("expected port 5432, got %d", cfg.Port)
	}
	if cfg.Database != "seihyo" {
		t.Errorf("expected database 'seihyo', got '%s'", cfg.Database)
	}
	if cfg.SSLMode != "disable" {
		t.Errorf("expected sslmode 'disable', got '%s'", cfg.SSLMode)
	}
	if cfg.MaxConns != 10 {
		t.Errorf("expected max conns 10, got %d", cfg.MaxConns)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "testhost")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_NAME", "testdb")
	t.Setenv("DB_USER", "testuser")
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("DB_SSLMODE", "require")
	t.Setenv("DB_MAX_CONNS", "50")
	t.Setenv("DB_MIN_CONNS", "10")

	cfg := ConfigFromEnv()

	if cfg.Host != "testhost" {
		t.Errorf("expected host 'testhost', got '%s'", cfg.Host)
	}
	if cfg.Port != 5433 {
		t.Errorf("expected port 5433, got %d", cfg.Port)
	}
	if cfg.Database != "testdb" {
		t.Errorf("expected database 'testdb', got '%s'", cfg.Database)
	}
	if cfg.User != "testuser" {
		t.Errorf("expected user 'testuser', got '%s'", cfg.User)
	}
	if cfg.SSLMode != "require" {
		t.Errorf("expected sslmode 'require', got '%s'", cfg.SSLMode)
	}
	if cfg.MaxConns != 50 {
		t.Errorf("expected max conns 50, got %d", cfg.MaxConns)
	}
	if cfg.MinConns != 10 {
		t.Errorf("expected min conns 10, got %d", cfg.MinConns)
	}
}

func TestConfigFromEnvInvalidPort(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")

	cfg := ConfigFromEnv()
	if cfg.Port != 5432 {
		t.Errorf("expected default port on invalid env value, got %d", cfg.Port)
	}
}

func TestConnectionString(t *testing.T) {
	cfg := &Config{
		Host:           "dbhost",
		Port:           5432,
		Database:       "seihyo",
		User:           "user@domain",
		Password:       "p@ss/word",
		SSLMode:        "require",
		ConnectTimeout: 10 * time.Second,
	}

	cs := cfg.ConnectionString()

	if !strings.HasPrefix(cs, "postgres://") {
		t.Errorf("expected postgres:// prefix, got %s", cs)
	}
	if strings.Contains(cs, "p@ss/word") {
		t.Error("password was not URL-escaped")
	}
	if !strings.Contains(cs, "sslmode=require") {
		t.Errorf("expected sslmode in connection string, got %s", cs)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid default", func(c *Config) {}, false},
		{"empty host", func(c *Config) { c.Host = "" }, true},
		{"bad port", func(c *Config) { c.Port = -1 }, true},
		{"empty database", func(c *Config) { c.Database = "" }, true},
		{"empty user", func(c *Config) { c.User = "" }, true},
		{"max < min conns", func(c *Config) { c.MaxConns = 1; c.MinConns = 5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestFindMigrations(t *testing.T) {
	dir := t.TempDir()

	files := []string{"002_affiliations.sql", "001_mentions.sql", "notes.txt"}
	for _, f := range files {
		if err := os.WriteFile(dir+"/"+f, []byte("SELECT 1;"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	migrations, err := findMigrations(dir)
	if err != nil {
		t.Fatal(err)
	}

	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != "001_mentions" {
		t.Errorf("expected 001_mentions first, got %s", migrations[0].Version)
	}
	if migrations[1].Version != "002_affiliations" {
		t.Errorf("expected 002_affiliations second, got %s", migrations[1].Version)
	}
}
