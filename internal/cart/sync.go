package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/five82/storefront/internal/docstore"
	"github.com/five82/storefront/internal/logging"
)

// IdentitySource reports the session identity and whether it is ready.
type IdentitySource interface {
	Identity() (string, bool)
}

// PathFunc maps a session identity to its cart document path.
type PathFunc func(uid string) string

// SyncStore mirrors the remote cart document. The in-memory cart changes
// only when the subscription delivers a snapshot; writes replace the whole
// remote document and the last writer wins.
type SyncStore struct {
	docs     docstore.Store
	identity IdentitySource
	path     PathFunc
	catalog  Catalog
	log      logrus.FieldLogger

	mu     sync.Mutex
	lines  []Line
	cancel context.CancelFunc
	gen    int
}

var _ Store = (*SyncStore)(nil)

// NewSyncStore returns a store writing through docs.
func NewSyncStore(docs docstore.Store, identity IdentitySource, path PathFunc, catalog Catalog, log logrus.FieldLogger) *SyncStore {
	if log == nil {
		log = logging.Discard()
	}
	return &SyncStore{docs: docs, identity: identity, path: path, catalog: catalog, log: log}
}

// Lines returns a copy of the in-memory cart.
func (s *SyncStore) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Clone(s.lines)
}

// Subscribe watches the identity's cart document. Each delivered snapshot
// replaces the in-memory cart and is forwarded on the returned channel,
// which closes when ctx ends or a later Subscribe replaces this one.
func (s *SyncStore) Subscribe(ctx context.Context) (<-chan []Line, error) {
	uid, ok := s.identity.Identity()
	if !ok {
		return nil, ErrNotAuthenticated
	}

	watchCtx, cancel := context.WithCancel(ctx)
	snaps, err := s.docs.Watch(watchCtx, s.path(uid))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("watch cart: %w", err)
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	out := make(chan []Line, 1)
	go func() {
		defer close(out)
		for snap := range snaps {
			lines, err := s.decode(snap)
			if err != nil {
				s.log.WithError(err).WithField("path", snap.Path).Warn("ignoring undecodable cart snapshot")
				continue
			}
			if !s.replace(gen, lines) {
				return
			}
			select {
			case out <- Clone(lines):
			case <-watchCtx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Add writes the current cart plus one of product id.
func (s *SyncStore) Add(ctx context.Context, id int) error {
	uid, err := s.ready()
	if err != nil {
		return err
	}
	p, err := s.catalog.Product(id)
	if err != nil {
		return err
	}
	return s.persist(ctx, uid, Add(s.Lines(), p))
}

// Remove writes the current cart without product id.
func (s *SyncStore) Remove(ctx context.Context, id int) error {
	uid, err := s.ready()
	if err != nil {
		return err
	}
	return s.persist(ctx, uid, Remove(s.Lines(), id))
}

// Clear deletes the remote cart document.
func (s *SyncStore) Clear(ctx context.Context) error {
	uid, err := s.ready()
	if err != nil {
		return err
	}
	return s.persist(ctx, uid, nil)
}

func (s *SyncStore) ready() (string, error) {
	uid, ok := s.identity.Identity()
	if !ok {
		return "", ErrNotAuthenticated
	}
	return uid, nil
}

// persist replaces the remote document, deleting it when lines is empty so
// storage never holds empty carts.
func (s *SyncStore) persist(ctx context.Context, uid string, lines []Line) error {
	path := s.path(uid)
	if len(lines) == 0 {
		if err := s.docs.Delete(ctx, path); err != nil {
			return fmt.Errorf("delete cart: %w", err)
		}
		return nil
	}
	data, err := EncodeDocument(lines)
	if err != nil {
		return err
	}
	if err := s.docs.Set(ctx, path, data); err != nil {
		return fmt.Errorf("write cart: %w", err)
	}
	return nil
}

func (s *SyncStore) decode(snap docstore.Snapshot) ([]Line, error) {
	if !snap.Exists {
		return nil, nil
	}
	return DecodeDocument(snap.Data)
}

// replace installs lines unless a newer subscription took over.
func (s *SyncStore) replace(gen int, lines []Line) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.lines = Clone(lines)
	return true
}
