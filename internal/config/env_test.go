package config

import "testing"

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if cfg.DBPath != "almanac.db" {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
	if cfg.Locale != "en-US" {
		t.Fatalf("locale = %q", cfg.Locale)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ALMANAC_DB_PATH", "/tmp/campaign.db")
	t.Setenv("ALMANAC_LOCALE", "en-GB")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if cfg.DBPath != "/tmp/campaign.db" || cfg.Locale != "en-GB" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}
