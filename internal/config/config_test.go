package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "DB_DSN", "DB_PATH", "TOKEN_TTL", "REQUEST_TIMEOUT"} {
		t.Setenv(key, "") // restores the original value after the test
		os.Unsetenv(key)
	}

	cfg := Load()
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.DBDriver != "sqlite" || cfg.DBPath != "./data/rupaya.db" {
		t.Errorf("unexpected database defaults %q %q", cfg.DBDriver, cfg.DBPath)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want 24h", cfg.TokenTTL)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://localhost/rupaya?sslmode=disable")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("REQUEST_TIMEOUT", "bogus")

	cfg := Load()
	if cfg.Port != 9090 || cfg.DBDriver != "postgres" || cfg.TokenTTL != 2*time.Hour {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("RequestTimeout = %v, want default for unparsable value", cfg.RequestTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
	if cfg.Addr() != ":9090" {
		t.Errorf("Addr = %q", cfg.Addr())
	}
}

func TestValidate(t *testing.T) {
	base := Config{Port: 8080, DBDriver: "sqlite", JWTSecret: "s", TokenTTL: time.Hour}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"sqlite defaults", func(*Config) {}, false},
		{"postgres without dsn", func(c *Config) { c.DBDriver = "postgres" }, true},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"empty secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"zero ttl", func(c *Config) { c.TokenTTL = 0 }, true},
		{"bad port", func(c *Config) { c.Port = 70000 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
