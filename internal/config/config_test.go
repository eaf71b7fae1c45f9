package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{envCatalogURL, envRedisAddr, envAuthToken, envAuthSecret} {
		t.Setenv(key, "")
	}
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.CatalogURL != defaultCatalogURL {
		t.Fatalf("CatalogURL = %q, want %q", cfg.CatalogURL, defaultCatalogURL)
	}
	if cfg.CatalogTimeout != defaultCatalogTimeout {
		t.Fatalf("CatalogTimeout = %v, want %v", cfg.CatalogTimeout, defaultCatalogTimeout)
	}
	if cfg.Remote.Enabled() {
		t.Fatalf("Remote.Enabled() = true, want false without redis_addr")
	}
	if cfg.Remote.Namespace != defaultNamespace || cfg.Remote.AppID != defaultAppID {
		t.Fatalf("Remote = %#v, want default namespace and app id", cfg.Remote)
	}

	wantStorage, err := expandPath(defaultStoragePath)
	if err != nil {
		t.Fatalf("expandPath(defaultStoragePath) returned error: %v", err)
	}
	if cfg.StoragePath != wantStorage {
		t.Fatalf("StoragePath = %q, want %q", cfg.StoragePath, wantStorage)
	}
	if !strings.HasPrefix(cfg.LogPath, home) {
		t.Fatalf("LogPath = %q, want it under HOME %q", cfg.LogPath, home)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
theme = "Slate"

[catalog]
url = "  http://shop.local/api/products  "
timeout_seconds = 9

[remote]
redis_addr = " 10.0.0.5:6379 "
redis_db = 2
app_id = "shop-1"
auth_secret = "s3cret"

[storage]
path = "  ~/.shop/storage.toml  "

[log]
level = "DEBUG"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.CatalogURL != "http://shop.local/api/products" {
		t.Fatalf("CatalogURL = %q", cfg.CatalogURL)
	}
	if cfg.CatalogTimeout != 9*time.Second {
		t.Fatalf("CatalogTimeout = %v, want 9s", cfg.CatalogTimeout)
	}
	if !cfg.Remote.Enabled() || cfg.Remote.RedisAddr != "10.0.0.5:6379" || cfg.Remote.RedisDB != 2 {
		t.Fatalf("Remote = %#v, want trimmed redis addr and db 2", cfg.Remote)
	}
	if cfg.Remote.AppID != "shop-1" || cfg.Remote.Namespace != defaultNamespace {
		t.Fatalf("Remote = %#v, want app id shop-1 and default namespace", cfg.Remote)
	}
	if cfg.StoragePath != filepath.Join(home, ".shop/storage.toml") {
		t.Fatalf("StoragePath = %q, want it expanded under HOME", cfg.StoragePath)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Theme != "Slate" {
		t.Fatalf("Theme = %q, want Slate", cfg.Theme)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
[catalog]
url = "http://file/api"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv(envCatalogURL, "http://env/api")
	t.Setenv(envRedisAddr, "127.0.0.1:6390")
	t.Setenv(envAuthToken, "tok")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.CatalogURL != "http://env/api" {
		t.Fatalf("CatalogURL = %q, want env override", cfg.CatalogURL)
	}
	if cfg.Remote.RedisAddr != "127.0.0.1:6390" || cfg.Remote.AuthToken != "tok" {
		t.Fatalf("Remote = %#v, want env overrides", cfg.Remote)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`theme = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	if want := filepath.Join(home, "a/b"); got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
