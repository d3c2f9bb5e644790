package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"DB_DRIVER", "TIMEZONE", "DAILY_CAP", "QUOTA_POLICY", "SESSION_BACKEND", "HTTP_ADDR", "ADMIN_TG_IDS", "SESSION_TTL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBDriver != DriverSQLite || cfg.DailyCap != 10 || cfg.PackSize != 10 || cfg.UnlimitedDays != 30 {
		t.Fatalf("Load: unexpected defaults: %+v", cfg)
	}
	if cfg.QuotaPolicy != PolicyPacks || cfg.SessionBackend != BackendMemory {
		t.Fatalf("Load: unexpected policy/backend: %q %q", cfg.QuotaPolicy, cfg.SessionBackend)
	}
	if cfg.Location == nil || cfg.Location.String() != "Europe/Berlin" {
		t.Fatalf("Load: expected Europe/Berlin location, got %v", cfg.Location)
	}
	if cfg.HTTPAddr != ":8080" || cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("Load: unexpected http/ttl: %q %v", cfg.HTTPAddr, cfg.SessionTTL)
	}
}

func TestLoadEnvOverridesAndAdmins(t *testing.T) {
	t.Setenv("DAILY_CAP", "5")
	t.Setenv("QUOTA_POLICY", "HARD")
	t.Setenv("ADMIN_TG_IDS", " 1, 22 ,,333")
	t.Setenv("HTTP_ADDR", "off")
	t.Setenv("MONETIZATION_ENABLED", "yes")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DailyCap != 5 || cfg.QuotaPolicy != PolicyHard {
		t.Fatalf("Load: env not applied: %+v", cfg)
	}
	if len(cfg.AdminIDs) != 3 || cfg.AdminIDs[0] != 1 || cfg.AdminIDs[1] != 22 || cfg.AdminIDs[2] != 333 {
		t.Fatalf("Load: unexpected admin ids: %v", cfg.AdminIDs)
	}
	if cfg.HTTPAddr != "" || !cfg.MonetizationEnabled {
		t.Fatalf("Load: expected http disabled and monetization on: %+v", cfg)
	}
}

func TestLoadYAMLFallback(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("PACK_SIZE", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("bot_token: from-yaml\npack_size: 7\n"), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BotToken != "from-yaml" || cfg.PackSize != 7 {
		t.Fatalf("Load: yaml fallback not applied: %q %d", cfg.BotToken, cfg.PackSize)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"DB_DRIVER":       "mysql",
		"QUOTA_POLICY":    "lenient",
		"SESSION_BACKEND": "redis",
		"TIMEZONE":        "Mars/Olympus",
		"DAILY_CAP":       "0",
		"SESSION_TTL":     "soon",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("REDIS_ADDR", "")
			t.Setenv(key, val)
			if _, err := Load(""); err == nil {
				t.Fatalf("Load: expected error for %s=%s", key, val)
			}
		})
	}
}
