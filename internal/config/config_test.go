package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Setenv("GEMINI_KEY", "test-key")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Application.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Application.Port)
	}
	if cfg.Application.GuestLimit != 15 {
		t.Errorf("guest limit = %d, want 15", cfg.Application.GuestLimit)
	}
	if cfg.Application.Storage.Uploads != "uploads" {
		t.Errorf("uploads dir = %q", cfg.Application.Storage.Uploads)
	}
	if cfg.AI.ImageWorkers != 5 {
		t.Errorf("image workers = %d, want 5", cfg.AI.ImageWorkers)
	}
	if cfg.AI.Key != "test-key" {
		t.Errorf("key = %q", cfg.AI.Key)
	}
	if cfg.AI.VideoModel == "" {
		t.Error("video model default missing")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("GEMINI_KEY", "k")
	t.Setenv("PORT", "9001")
	t.Setenv("GUEST_LIMIT", "3")
	t.Setenv("STORAGE_UPLOADS", "/srv/assets")
	t.Setenv("GEMINI_TEXT_MODEL", "gemini-3-pro-preview")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Application.Port != 9001 {
		t.Errorf("port = %d", cfg.Application.Port)
	}
	if cfg.Application.GuestLimit != 3 {
		t.Errorf("guest limit = %d", cfg.Application.GuestLimit)
	}
	if cfg.Application.Storage.Uploads != "/srv/assets" {
		t.Errorf("uploads dir = %q", cfg.Application.Storage.Uploads)
	}
	if cfg.AI.TextModel != "gemini-3-pro-preview" {
		t.Errorf("text model = %q", cfg.AI.TextModel)
	}
}

func TestLoadConfigRequiresAPIKey(t *testing.T) {
	viper.Reset()
	t.Setenv("GEMINI_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error without GEMINI_KEY")
	}
}

func TestConnectStrPrefersURL(t *testing.T) {
	c := DatabaseConfig{URL: "postgres://u:p@h:5432/db", Host: "ignored"}
	if got := c.GetConnectStr(); got != "postgres://u:p@h:5432/db" {
		t.Errorf("GetConnectStr = %q", got)
	}
}

func TestConnectStrBuildsFromParts(t *testing.T) {
	c := DatabaseConfig{Host: "localhost", Port: "5432", User: "mp", Password: "pw", DBName: "motionpitch"}
	want := "postgres://mp:pw@localhost:5432/motionpitch?sslmode=disable"
	if got := c.GetConnectStr(); got != want {
		t.Errorf("GetConnectStr = %q, want %q", got, want)
	}
}
