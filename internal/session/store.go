package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/storefront/internal/cart"
	"github.com/five82/storefront/internal/catalog"
)

// Mode says which cart store backs the session.
type Mode int

const (
	ModeLocal Mode = iota
	ModeSynchronized
)

func (m Mode) String() string {
	if m == ModeSynchronized {
		return "synchronized"
	}
	return "local"
}

// Snapshot is the session state handed to the renderer.
type Snapshot struct {
	Catalog     []catalog.Product
	Cart        []cart.Line
	Identity    string
	AuthState   string
	Mode        Mode
	CartVersion int // bumped on every cart replacement
	LastUpdated time.Time
	LastError   error
}

// Store is the session-scoped state shared by the controller, the
// subscription pump and the UI.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// SetCatalog installs the loaded catalog.
func (s *Store) SetCatalog(products []catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Catalog = cloneProducts(products)
	s.snapshot.LastUpdated = time.Now()
}

// SetIdentity records the resolved identity, the auth state it came from
// and the cart mode.
func (s *Store) SetIdentity(uid, authState string, mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Identity = uid
	s.snapshot.AuthState = authState
	s.snapshot.Mode = mode
}

// ReplaceCart swaps in a full cart. There is no partial update.
func (s *Store) ReplaceCart(lines []cart.Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Cart = cart.Clone(lines)
	s.snapshot.CartVersion++
	s.snapshot.LastUpdated = time.Now()
}

// RecordError keeps err for display; nil clears it.
func (s *Store) RecordError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.LastError = err
}

// Product looks up a catalog entry. It lets the cart stores snapshot
// product fields without holding the catalog themselves.
func (s *Store) Product(id int) (catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return catalog.Find(s.snapshot.Catalog, id)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Catalog = cloneProducts(s.snapshot.Catalog)
	snap.Cart = cart.Clone(s.snapshot.Cart)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneProducts(products []catalog.Product) []catalog.Product {
	if len(products) == 0 {
		return nil
	}
	dup := make([]catalog.Product, len(products))
	copy(dup, products)
	return dup
}
