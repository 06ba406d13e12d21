package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dropDatabas3/tokenbridge/internal/config"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalYAML = `
storage:
  driver: memory
jwt:
  issuer: https://issuer.test
`

func TestLoad_DefaultsApplied(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Cache.Kind != "memory" {
		t.Fatalf("Cache.Kind = %q, want memory", cfg.Cache.Kind)
	}
	if got := cfg.AccessTTL(); got != 15*time.Minute {
		t.Fatalf("AccessTTL = %v, want 15m", got)
	}
	if got := cfg.PolicyCacheTTL(); got != 30*time.Second {
		t.Fatalf("PolicyCacheTTL = %v, want 30s", got)
	}
	if got := cfg.SweepInterval(); got != 5*time.Minute {
		t.Fatalf("SweepInterval = %v, want 5m", got)
	}
	if cfg.JWT.KID != "active" {
		t.Fatalf("JWT.KID = %q, want active", cfg.JWT.KID)
	}
}

func TestLoad_YAMLValues(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
app:
  app_env: dev
server:
  addr: ":9090"
  cors_allowed_origins: ["https://app.test"]
storage:
  driver: memory
jwt:
  issuer: https://issuer.test
  access_ttl: 5m
exchange:
  policy_cache_ttl: 1m
sweep:
  enabled: true
  interval: 90s
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Fatalf("Server.Addr = %q", cfg.Server.Addr)
	}
	if len(cfg.Server.CORSAllowedOrigins) != 1 || cfg.Server.CORSAllowedOrigins[0] != "https://app.test" {
		t.Fatalf("CORSAllowedOrigins = %v", cfg.Server.CORSAllowedOrigins)
	}
	if got := cfg.AccessTTL(); got != 5*time.Minute {
		t.Fatalf("AccessTTL = %v, want 5m", got)
	}
	if got := cfg.PolicyCacheTTL(); got != time.Minute {
		t.Fatalf("PolicyCacheTTL = %v, want 1m", got)
	}
	if !cfg.Sweep.Enabled || cfg.SweepInterval() != 90*time.Second {
		t.Fatalf("Sweep = %+v", cfg.Sweep)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("JWT_ISSUER", "https://override.test")
	t.Setenv("SWEEP_ENABLED", "true")
	t.Setenv("RATE_TOKEN_LIMIT", "5")

	cfg, err := config.Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr != ":7070" {
		t.Fatalf("Server.Addr = %q, want :7070", cfg.Server.Addr)
	}
	if cfg.JWT.Issuer != "https://override.test" {
		t.Fatalf("JWT.Issuer = %q", cfg.JWT.Issuer)
	}
	if !cfg.Sweep.Enabled {
		t.Fatal("Sweep.Enabled = false, want true")
	}
	if cfg.Rate.Token.Limit != 5 {
		t.Fatalf("Rate.Token.Limit = %d, want 5", cfg.Rate.Token.Limit)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{
			name: "postgres without dsn",
			yaml: "storage:\n  driver: postgres\njwt:\n  issuer: https://issuer.test\n",
		},
		{
			name: "unknown driver",
			yaml: "storage:\n  driver: sqlite\njwt:\n  issuer: https://issuer.test\n",
		},
		{
			name: "missing issuer",
			yaml: "storage:\n  driver: memory\n",
		},
		{
			name: "redis cache without addr",
			yaml: "storage:\n  driver: memory\ncache:\n  kind: redis\njwt:\n  issuer: https://issuer.test\n",
		},
		{
			name: "bad duration",
			yaml: "storage:\n  driver: memory\njwt:\n  issuer: https://issuer.test\n  access_ttl: soon\n",
		},
		{
			name: "prod requires admin token",
			yaml: minimalYAML,
			env:  map[string]string{"APP_ENV": "prod"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := config.Load(writeConfig(t, tc.yaml)); err == nil {
				t.Fatal("Load succeeded, want error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load succeeded, want error")
	}
}
