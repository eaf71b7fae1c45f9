package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/five82/storefront/internal/auth"
	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/config"
	"github.com/five82/storefront/internal/logging"
	"github.com/five82/storefront/internal/notify"
	"github.com/five82/storefront/internal/page"
	"github.com/five82/storefront/internal/session"
	"github.com/five82/storefront/internal/storage"
)

func catalogServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			http.Error(w, "unavailable", status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		products := catalog.Fallback()[:3]
		if err := json.NewEncoder(w).Encode(products); err != nil {
			t.Errorf("encode catalog: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, catalogURL string) config.Config {
	t.Helper()
	return config.Config{
		CatalogURL:     catalogURL,
		CatalogTimeout: time.Second,
		StoragePath:    filepath.Join(t.TempDir(), "storage.toml"),
		Remote: config.Remote{
			Namespace: "artifacts",
			AppID:     "test-app",
		},
	}
}

func startBootstrap(t *testing.T, cfg config.Config, location string) *runtime {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	rt, err := bootstrap(ctx, cfg, location, logging.Discard())
	if err != nil {
		cancel()
		t.Fatalf("bootstrap: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		rt.Close()
	})
	return rt
}

func TestBootstrap_LocalWithoutProvider(t *testing.T) {
	srv := catalogServer(t, http.StatusOK)
	rt := startBootstrap(t, testConfig(t, srv.URL), "cart.html")

	if rt.page.Kind != page.KindCart {
		t.Fatalf("page = %v, want cart", rt.page.Kind)
	}
	if rt.auth.State != auth.StateDegraded || rt.auth.Err != nil {
		t.Fatalf("auth = %#v, want degraded without error", rt.auth)
	}
	snap := rt.session.Snapshot()
	if snap.Mode != session.ModeLocal {
		t.Fatalf("mode = %v, want local", snap.Mode)
	}
	if !strings.HasPrefix(snap.Identity, "local-") {
		t.Fatalf("identity = %q, want local- prefix", snap.Identity)
	}
	if len(snap.Catalog) != 3 {
		t.Fatalf("catalog = %d products, want 3 from the endpoint", len(snap.Catalog))
	}
	if _, ok := rt.notes.Current(); ok {
		t.Fatal("no notification expected without a provider")
	}

	if err := rt.controller.Add(context.Background(), 2); err != nil {
		t.Fatalf("Add: %v", err)
	}
	raw, ok, err := rt.slots.Get(storage.SlotCart)
	if err != nil || !ok || !strings.Contains(raw, "Nimbus") {
		t.Fatalf("cart slot = (%q, %v, %v)", raw, ok, err)
	}
}

func TestBootstrap_CatalogFallback(t *testing.T) {
	srv := catalogServer(t, http.StatusInternalServerError)
	rt := startBootstrap(t, testConfig(t, srv.URL), "")
	if got := len(rt.session.Snapshot().Catalog); got != 5 {
		t.Fatalf("catalog = %d products, want the 5 built-in ones", got)
	}
	if rt.page.Kind != page.KindHome {
		t.Fatalf("page = %v, want home", rt.page.Kind)
	}
}

func TestBootstrap_RestoresLocalCartAndTheme(t *testing.T) {
	srv := catalogServer(t, http.StatusOK)
	cfg := testConfig(t, srv.URL)
	cfg.Theme = "Slate"

	slots, err := storage.Open(cfg.StoragePath)
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	if err := slots.Set(storage.SlotCart, `[{"id":1,"name":"Aurora Desk Lamp","price":"24.99","image":"","quantity":2}]`); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	if err := slots.Set(storage.SlotTheme, "Kanagawa"); err != nil {
		t.Fatalf("seed theme: %v", err)
	}

	rt := startBootstrap(t, cfg, "index.html")
	if rt.theme != "Kanagawa" {
		t.Fatalf("theme = %q, want saved Kanagawa", rt.theme)
	}
	snap := rt.session.Snapshot()
	if len(snap.Cart) != 1 || snap.Cart[0].Quantity != 2 {
		t.Fatalf("restored cart = %#v", snap.Cart)
	}
}

func TestBootstrap_SynchronizedWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	srv := catalogServer(t, http.StatusOK)
	cfg := testConfig(t, srv.URL)
	cfg.Remote.RedisAddr = mr.Addr()
	cfg.Remote.AuthSecret = "test-secret"

	rt := startBootstrap(t, cfg, "products.html")
	if rt.auth.State != auth.StateReady {
		t.Fatalf("auth = %#v, want ready", rt.auth)
	}
	snap := rt.session.Snapshot()
	if snap.Mode != session.ModeSynchronized || !strings.HasPrefix(snap.Identity, "anon_") {
		t.Fatalf("session = mode %v identity %q", snap.Mode, snap.Identity)
	}

	ctx := context.Background()
	if err := rt.controller.Add(ctx, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	waitFor(t, func() bool { return len(rt.session.Snapshot().Cart) == 1 })

	key := "doc:artifacts/test-app/users/" + snap.Identity + "/cart"
	if !mr.Exists(key) {
		t.Fatalf("expected remote cart at %s", key)
	}

	if err := rt.controller.Checkout(ctx); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	waitFor(t, func() bool { return len(rt.session.Snapshot().Cart) == 0 })
	if mr.Exists(key) {
		t.Fatal("checkout should delete the remote cart")
	}
}

func TestBootstrap_AuthFailureDegrades(t *testing.T) {
	mr := miniredis.RunT(t)
	srv := catalogServer(t, http.StatusOK)
	cfg := testConfig(t, srv.URL)
	cfg.Remote.RedisAddr = mr.Addr()
	cfg.Remote.AuthSecret = "test-secret"
	mr.SetError("READONLY simulated outage")

	rt := startBootstrap(t, cfg, "account.html")
	if rt.auth.State != auth.StateDegraded || rt.auth.Err == nil {
		t.Fatalf("auth = %#v, want degraded with error", rt.auth)
	}
	msg, ok := rt.notes.Current()
	if !ok || msg.Level != notify.LevelError {
		t.Fatalf("notification = (%#v, %v), want an error", msg, ok)
	}
	if mode := rt.session.Snapshot().Mode; mode != session.ModeLocal {
		t.Fatalf("mode = %v, want local", mode)
	}
}

func TestBootstrap_MissingSecretNotifies(t *testing.T) {
	mr := miniredis.RunT(t)
	srv := catalogServer(t, http.StatusOK)
	cfg := testConfig(t, srv.URL)
	cfg.Remote.RedisAddr = mr.Addr()

	rt := startBootstrap(t, cfg, "cart.html")
	if rt.auth.State != auth.StateDegraded {
		t.Fatalf("auth = %#v, want degraded", rt.auth)
	}
	if mode := rt.session.Snapshot().Mode; mode != session.ModeLocal {
		t.Fatalf("mode = %v, want local", mode)
	}
	msg, ok := rt.notes.Current()
	if !ok || msg.Level != notify.LevelError || msg.Text != signInUnavailable {
		t.Fatalf("notification = (%#v, %v), want the sign-in warning", msg, ok)
	}
}

func TestBootstrap_AuthNoticeSurvivesSlowCatalog(t *testing.T) {
	if testing.Short() {
		t.Skip("waits out the notification TTL")
	}
	mr := miniredis.RunT(t)
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(notify.DefaultTTL + 200*time.Millisecond):
		case <-r.Context().Done():
		}
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	t.Cleanup(slow.Close)

	cfg := testConfig(t, slow.URL)
	cfg.CatalogTimeout = 2 * notify.DefaultTTL
	cfg.Remote.RedisAddr = mr.Addr()
	cfg.Remote.AuthSecret = "test-secret"
	mr.SetError("READONLY simulated outage")

	rt := startBootstrap(t, cfg, "")
	if got := len(rt.session.Snapshot().Catalog); got != 5 {
		t.Fatalf("catalog = %d products, want the built-in ones", got)
	}
	msg, ok := rt.notes.Current()
	if !ok || msg.Level != notify.LevelError {
		t.Fatalf("notification = (%#v, %v), want the sign-in error still showing", msg, ok)
	}
}
