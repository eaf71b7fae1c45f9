package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/five82/storefront/internal/auth"
	"github.com/five82/storefront/internal/cart"
	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/config"
	"github.com/five82/storefront/internal/docstore"
	"github.com/five82/storefront/internal/logging"
	"github.com/five82/storefront/internal/notify"
	"github.com/five82/storefront/internal/page"
	"github.com/five82/storefront/internal/session"
	"github.com/five82/storefront/internal/storage"
	"github.com/five82/storefront/internal/ui"
)

const defaultPollInterval = time.Second

const signInUnavailable = "Sign-in is not configured. Your cart will only be saved on this device."

// Options configure the storefront application.
type Options struct {
	ConfigPath string
	Location   string // page to open, e.g. "product-details.html?id=3"
	PollEvery  int    // UI refresh in seconds; zero uses default
}

// Run boots the storefront TUI until the context is cancelled or the user
// quits. Only configuration and logger failures are returned; everything
// else degrades.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, closer, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closer.Close()

	rt, err := bootstrap(ctx, cfg, opts.Location, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	interval := defaultPollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	err = ui.Run(ui.Options{
		Context:   ctx,
		Session:   rt.session,
		Actions:   rt.controller,
		Notices:   rt.notes,
		Page:      rt.page,
		Slots:     rt.slots,
		ThemeName: rt.theme,
		PollTick:  interval,
		Log:       log,
	})
	if err != nil && ctx.Err() != nil {
		// Interrupted by a signal; not a failure.
		return nil
	}
	return err
}

// runtime is everything bootstrap wires together for the UI.
type runtime struct {
	session    *session.Store
	notes      *notify.Presenter
	page       page.Page
	slots      *storage.Slots
	controller *Controller
	auth       auth.Result
	theme      string
	closers    []func()
}

// Close releases resources in reverse order of acquisition.
func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}

// bootstrap runs the page load sequence: resolve the page, resolve the
// identity, load the catalog, then establish the cart source.
func bootstrap(ctx context.Context, cfg config.Config, location string, log logrus.FieldLogger) (*runtime, error) {
	slots, err := storage.Open(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	rt := &runtime{
		session: &session.Store{},
		notes:   notify.New(notify.DefaultTTL),
		slots:   slots,
		theme:   cfg.Theme,
	}
	if theme, ok, err := slots.Get(storage.SlotTheme); err != nil {
		log.WithError(err).Warn("could not read saved theme")
	} else if ok && theme != "" {
		rt.theme = theme
	}

	rt.page = page.Resolve(location)
	if rt.page.Kind == page.KindUnknown {
		log.WithField("location", location).Warn("unknown page, showing home")
	}

	// Identity
	var docs docstore.Store
	var provider auth.Provider
	if cfg.Remote.Enabled() {
		redis.SetLogger(logging.NewRedisLogger(log))
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Remote.RedisAddr,
			Password: cfg.Remote.RedisPassword,
			DB:       cfg.Remote.RedisDB,
		})
		rt.closers = append(rt.closers, func() {
			if err := client.Close(); err != nil {
				log.WithError(err).Debug("redis close")
			}
		})
		tp, err := auth.NewTokenProvider(client, cfg.Remote.AuthSecret, slots, log)
		if err != nil {
			log.WithError(err).Warn("identity provider unavailable")
			rt.notes.Error(signInUnavailable)
		} else {
			provider = tp
			docs = docstore.NewRedis(client, log)
		}
	}
	manager := auth.NewManager(provider, rt.notes, log)
	rt.closers = append(rt.closers, manager.Close)
	rt.auth = manager.Resolve(ctx, cfg.Remote.AuthToken)

	// Catalog
	rt.session.SetCatalog(loadCatalog(ctx, cfg, log))

	// Cart
	rt.controller = rt.establishCart(ctx, cfg, docs, manager, log)
	return rt, nil
}

func loadCatalog(ctx context.Context, cfg config.Config, log logrus.FieldLogger) []catalog.Product {
	client, err := catalog.NewClient(cfg.CatalogURL, cfg.CatalogTimeout, log)
	if err != nil {
		log.WithError(err).Warn("catalog endpoint unusable, using built-in catalog")
		return catalog.Fallback()
	}
	return client.Load(ctx)
}

// establishCart picks the cart variant. A Ready identity gets the
// synchronized store and its subscription; anything else, or a failed
// subscription, keeps the cart on this device.
func (rt *runtime) establishCart(ctx context.Context, cfg config.Config, docs docstore.Store, identity cart.IdentitySource, log logrus.FieldLogger) *Controller {
	if rt.auth.Synchronized() && docs != nil {
		synced := cart.NewSyncStore(docs, identity, func(uid string) string {
			return docstore.CartPath(cfg.Remote.Namespace, cfg.Remote.AppID, uid)
		}, rt.session, log)

		subCtx, cancel := context.WithCancel(ctx)
		updates, err := synced.Subscribe(subCtx)
		if err == nil {
			wait := StartPump(subCtx, rt.session, updates, log)
			rt.closers = append(rt.closers, func() {
				cancel()
				wait()
			})
			rt.session.SetIdentity(rt.auth.Identity, rt.auth.State.String(), session.ModeSynchronized)
			return NewController(synced, rt.session, rt.notes, nil, log)
		}
		cancel()
		log.WithError(err).Warn("cart subscription failed, keeping the cart on this device")
		if !errors.Is(err, cart.ErrNotAuthenticated) {
			rt.session.RecordError(err)
		}
	}

	local := cart.NewLocalStore(rt.slots, rt.session, log)
	refresh := func() { rt.session.ReplaceCart(local.Load()) }
	refresh()
	rt.session.SetIdentity(rt.auth.Identity, rt.auth.State.String(), session.ModeLocal)
	return NewController(local, rt.session, rt.notes, refresh, log)
}
