package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything the storefront needs at startup.
type Config struct {
	CatalogURL     string
	CatalogTimeout time.Duration

	Remote Remote

	StoragePath string
	LogPath     string
	LogLevel    string
	Theme       string
}

// Remote describes the Redis-backed identity provider and document store.
// An empty RedisAddr means no remote provider is configured.
type Remote struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Namespace     string
	AppID         string
	AuthSecret    string
	AuthToken     string
}

// Enabled reports whether a remote identity provider is configured.
func (r Remote) Enabled() bool {
	return strings.TrimSpace(r.RedisAddr) != ""
}

const (
	defaultConfigPath     = "~/.config/storefront/config.toml"
	defaultStoragePath    = "~/.local/share/storefront/storage.toml"
	defaultLogPath        = "~/.local/share/storefront/storefront.log"
	defaultCatalogURL     = "http://127.0.0.1:8080/api/products"
	defaultCatalogTimeout = 5 * time.Second
	defaultNamespace      = "artifacts"
	defaultAppID          = "default-app-id"
	defaultLogLevel       = "info"
)

// Environment overrides, applied after the TOML file.
const (
	envCatalogURL = "STOREFRONT_CATALOG_URL"
	envRedisAddr  = "STOREFRONT_REDIS_ADDR"
	envAuthToken  = "STOREFRONT_AUTH_TOKEN"
	envAuthSecret = "STOREFRONT_AUTH_SECRET"
)

type rawConfig struct {
	Theme   string `toml:"theme"`
	Catalog struct {
		URL            string `toml:"url"`
		TimeoutSeconds int    `toml:"timeout_seconds"`
	} `toml:"catalog"`
	Remote struct {
		RedisAddr     string `toml:"redis_addr"`
		RedisPassword string `toml:"redis_password"`
		RedisDB       int    `toml:"redis_db"`
		Namespace     string `toml:"namespace"`
		AppID         string `toml:"app_id"`
		AuthSecret    string `toml:"auth_secret"`
		AuthToken     string `toml:"auth_token"`
	} `toml:"remote"`
	Storage struct {
		Path string `toml:"path"`
	} `toml:"storage"`
	Log struct {
		Path  string `toml:"path"`
		Level string `toml:"level"`
	} `toml:"log"`
}

// Load locates and parses the storefront config, falling back to defaults
// when the file is missing. A .env file in the working directory, when
// present, feeds the STOREFRONT_* overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	_ = godotenv.Load()

	var raw rawConfig
	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	cfg := Config{
		CatalogURL:     orDefault(raw.Catalog.URL, defaultCatalogURL),
		CatalogTimeout: defaultCatalogTimeout,
		Remote: Remote{
			RedisAddr:     strings.TrimSpace(raw.Remote.RedisAddr),
			RedisPassword: raw.Remote.RedisPassword,
			RedisDB:       raw.Remote.RedisDB,
			Namespace:     orDefault(raw.Remote.Namespace, defaultNamespace),
			AppID:         orDefault(raw.Remote.AppID, defaultAppID),
			AuthSecret:    strings.TrimSpace(raw.Remote.AuthSecret),
			AuthToken:     strings.TrimSpace(raw.Remote.AuthToken),
		},
		StoragePath: mustExpand(orDefault(raw.Storage.Path, defaultStoragePath)),
		LogPath:     mustExpand(orDefault(raw.Log.Path, defaultLogPath)),
		LogLevel:    strings.ToLower(orDefault(raw.Log.Level, defaultLogLevel)),
		Theme:       strings.TrimSpace(raw.Theme),
	}
	if raw.Catalog.TimeoutSeconds > 0 {
		cfg.CatalogTimeout = time.Duration(raw.Catalog.TimeoutSeconds) * time.Second
	}

	applyEnv(&cfg)
	return cfg, nil
}

// DefaultPath returns the config location used when none is given.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(envCatalogURL)); v != "" {
		cfg.CatalogURL = v
	}
	if v := strings.TrimSpace(os.Getenv(envRedisAddr)); v != "" {
		cfg.Remote.RedisAddr = v
	}
	if v := strings.TrimSpace(os.Getenv(envAuthToken)); v != "" {
		cfg.Remote.AuthToken = v
	}
	if v := strings.TrimSpace(os.Getenv(envAuthSecret)); v != "" {
		cfg.Remote.AuthSecret = v
	}
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

// String renders a redacted summary suitable for logs.
func (c Config) String() string {
	remote := "off"
	if c.Remote.Enabled() {
		remote = c.Remote.RedisAddr + "/" + strconv.Itoa(c.Remote.RedisDB)
	}
	return fmt.Sprintf("catalog=%s remote=%s storage=%s", c.CatalogURL, remote, c.StoragePath)
}
