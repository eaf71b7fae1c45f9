package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/five82/storefront/internal/logging"
	"github.com/five82/storefront/internal/storage"
)

const (
	anonymousPrefix = "anon_"
	userKeyPrefix   = "auth:users:"
	guestTTL        = 30 * 24 * time.Hour
)

// TokenSlots persists the issued token between runs.
type TokenSlots interface {
	Get(name string) (string, bool, error)
	Set(name, value string) error
	Delete(name string) error
}

// TokenProvider is a Provider backed by Redis user records and HS256
// tokens. Custom tokens carry the uid in user_id (or sub); anonymous
// sign-in mints a guest token and keeps it in storage so the same device
// gets the same uid next time.
type TokenProvider struct {
	client *redis.Client
	secret []byte
	slots  TokenSlots
	log    logrus.FieldLogger
	now    func() time.Time

	mu        sync.Mutex
	listeners map[int]func(string)
	nextID    int
}

var _ Provider = (*TokenProvider)(nil)

// NewTokenProvider builds a provider. secret signs and verifies tokens.
func NewTokenProvider(client *redis.Client, secret string, slots TokenSlots, log logrus.FieldLogger) (*TokenProvider, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("auth secret is empty")
	}
	if log == nil {
		log = logging.Discard()
	}
	return &TokenProvider{
		client:    client,
		secret:    []byte(secret),
		slots:     slots,
		log:       log,
		now:       time.Now,
		listeners: make(map[int]func(string)),
	}, nil
}

// SignInWithCustomToken verifies token and records the user.
func (p *TokenProvider) SignInWithCustomToken(ctx context.Context, token string) (string, error) {
	uid, err := p.verify(token)
	if err != nil {
		return "", err
	}
	if err := p.touch(ctx, uid, "custom", 0); err != nil {
		return "", err
	}
	p.persist(token)
	p.emit(uid)
	return uid, nil
}

// SignInAnonymously reuses the persisted guest token while it is valid and
// its user record still exists, otherwise mints a new guest.
func (p *TokenProvider) SignInAnonymously(ctx context.Context) (string, error) {
	if uid, ok := p.restore(ctx); ok {
		p.emit(uid)
		return uid, nil
	}

	uid := anonymousPrefix + uuid.NewString()
	token, err := p.issue(uid)
	if err != nil {
		return "", err
	}
	if err := p.touch(ctx, uid, "anonymous", guestTTL); err != nil {
		return "", err
	}
	p.persist(token)
	p.emit(uid)
	return uid, nil
}

// OnAuthStateChanged registers fn for sign-in notifications.
func (p *TokenProvider) OnAuthStateChanged(fn func(uid string)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

func (p *TokenProvider) restore(ctx context.Context) (string, bool) {
	if p.slots == nil {
		return "", false
	}
	token, ok, err := p.slots.Get(storage.SlotAuthToken)
	if err != nil || !ok || token == "" {
		return "", false
	}
	uid, err := p.verify(token)
	if err != nil || !strings.HasPrefix(uid, anonymousPrefix) {
		if delErr := p.slots.Delete(storage.SlotAuthToken); delErr != nil {
			p.log.WithError(delErr).Warn("dropping stale auth token failed")
		}
		return "", false
	}
	exists, err := p.client.Exists(ctx, userKeyPrefix+uid).Result()
	if err != nil || exists == 0 {
		return "", false
	}
	if err := p.client.Expire(ctx, userKeyPrefix+uid, guestTTL).Err(); err != nil {
		p.log.WithError(err).Warn("refreshing guest ttl failed")
	}
	return uid, true
}

func (p *TokenProvider) issue(uid string) (string, error) {
	now := p.now()
	claims := jwt.MapClaims{
		"user_id": uid,
		"role":    "guest",
		"iat":     now.Unix(),
		"exp":     now.Add(guestTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign guest token: %w", err)
	}
	return signed, nil
}

func (p *TokenProvider) verify(raw string) (string, error) {
	token, err := jwt.Parse(strings.TrimSpace(raw), func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.now))
	if err != nil {
		return "", fmt.Errorf("verify token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token claims")
	}
	if uid, _ := claims["user_id"].(string); uid != "" {
		return uid, nil
	}
	if sub, _ := claims["sub"].(string); sub != "" {
		return sub, nil
	}
	return "", errors.New("token carries no user id")
}

func (p *TokenProvider) touch(ctx context.Context, uid, kind string, ttl time.Duration) error {
	key := userKeyPrefix + uid
	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "kind", kind, "last_seen", p.now().Unix())
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record user %s: %w", uid, err)
	}
	return nil
}

func (p *TokenProvider) persist(token string) {
	if p.slots == nil {
		return
	}
	if err := p.slots.Set(storage.SlotAuthToken, token); err != nil {
		p.log.WithError(err).Warn("persisting auth token failed")
	}
}

func (p *TokenProvider) emit(uid string) {
	p.mu.Lock()
	fns := make([]func(string), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(uid)
	}
}
