package auth

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/five82/storefront/internal/storage"
)

const testSecret = "test-secret"

func newProvider(t *testing.T) (*TokenProvider, *miniredis.Miniredis, *storage.Slots) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	slots, err := storage.Open(filepath.Join(t.TempDir(), "storage.toml"))
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	p, err := NewTokenProvider(client, testSecret, slots, nil)
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}
	return p, mr, slots
}

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return token
}

func TestTokenProvider_CustomToken(t *testing.T) {
	p, mr, slots := newProvider(t)
	var seen []string
	p.OnAuthStateChanged(func(uid string) { seen = append(seen, uid) })

	token := signed(t, testSecret, jwt.MapClaims{"user_id": "user-42", "exp": time.Now().Add(time.Hour).Unix()})
	uid, err := p.SignInWithCustomToken(context.Background(), token)
	if err != nil {
		t.Fatalf("SignInWithCustomToken returned error: %v", err)
	}
	if uid != "user-42" {
		t.Fatalf("uid = %q, want user-42", uid)
	}
	if got := mr.HGet(userKeyPrefix+"user-42", "kind"); got != "custom" {
		t.Fatalf("user record kind = %q, want custom", got)
	}
	if len(seen) != 1 || seen[0] != "user-42" {
		t.Fatalf("state changes = %v, want [user-42]", seen)
	}
	if stored, ok, _ := slots.Get(storage.SlotAuthToken); !ok || stored != token {
		t.Fatalf("persisted token missing")
	}
}

func TestTokenProvider_SubClaimAccepted(t *testing.T) {
	p, _, _ := newProvider(t)
	token := signed(t, testSecret, jwt.MapClaims{"sub": "user-sub"})
	uid, err := p.SignInWithCustomToken(context.Background(), token)
	if err != nil || uid != "user-sub" {
		t.Fatalf("SignInWithCustomToken = (%q, %v), want user-sub", uid, err)
	}
}

func TestTokenProvider_RejectsBadTokens(t *testing.T) {
	p, _, _ := newProvider(t)
	ctx := context.Background()

	cases := map[string]string{
		"wrong secret": signed(t, "other", jwt.MapClaims{"user_id": "u"}),
		"expired":      signed(t, testSecret, jwt.MapClaims{"user_id": "u", "exp": time.Now().Add(-time.Hour).Unix()}),
		"no user":      signed(t, testSecret, jwt.MapClaims{"role": "guest"}),
		"garbage":      "not-a-token",
	}
	for name, token := range cases {
		if _, err := p.SignInWithCustomToken(ctx, token); err == nil {
			t.Fatalf("%s: SignInWithCustomToken returned nil error", name)
		}
	}
}

func TestTokenProvider_AnonymousIsStableAcrossRuns(t *testing.T) {
	p, mr, slots := newProvider(t)
	ctx := context.Background()

	first, err := p.SignInAnonymously(ctx)
	if err != nil {
		t.Fatalf("SignInAnonymously returned error: %v", err)
	}
	if !strings.HasPrefix(first, anonymousPrefix) {
		t.Fatalf("uid = %q, want %s prefix", first, anonymousPrefix)
	}
	if ttl := mr.TTL(userKeyPrefix + first); ttl <= 0 {
		t.Fatalf("guest record TTL = %v, want positive", ttl)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	again, err := NewTokenProvider(client, testSecret, slots, nil)
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}
	second, err := again.SignInAnonymously(ctx)
	if err != nil {
		t.Fatalf("SignInAnonymously returned error: %v", err)
	}
	if second != first {
		t.Fatalf("second anonymous uid = %q, want %q", second, first)
	}
}

func TestTokenProvider_AnonymousMintsNewWhenRecordGone(t *testing.T) {
	p, mr, _ := newProvider(t)
	ctx := context.Background()

	first, _ := p.SignInAnonymously(ctx)
	mr.Del(userKeyPrefix + first)

	second, err := p.SignInAnonymously(ctx)
	if err != nil {
		t.Fatalf("SignInAnonymously returned error: %v", err)
	}
	if second == first {
		t.Fatalf("uid reused after its record expired")
	}
}

func TestTokenProvider_UnsubscribeStopsNotifications(t *testing.T) {
	p, _, _ := newProvider(t)
	calls := 0
	unsub := p.OnAuthStateChanged(func(string) { calls++ })
	unsub()
	if _, err := p.SignInAnonymously(context.Background()); err != nil {
		t.Fatalf("SignInAnonymously returned error: %v", err)
	}
	if calls != 0 {
		t.Fatalf("listener called %d times after unsubscribe", calls)
	}
}

func TestNewTokenProvider_Validates(t *testing.T) {
	if _, err := NewTokenProvider(nil, "s", nil, nil); err == nil {
		t.Fatalf("nil client accepted")
	}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()
	if _, err := NewTokenProvider(client, " ", nil, nil); err == nil {
		t.Fatalf("empty secret accepted")
	}
}

func TestManager_WithTokenProvider(t *testing.T) {
	p, _, _ := newProvider(t)
	m := NewManager(p, nil, nil)
	res := m.Resolve(context.Background(), "garbage")
	if res.State != StateReady || !strings.HasPrefix(res.Identity, anonymousPrefix) {
		t.Fatalf("Resolve = %#v, want anonymous fallback after bad token", res)
	}
	m.Close()
}
