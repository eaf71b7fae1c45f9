package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/five82/storefront/internal/logging"
	"github.com/five82/storefront/internal/storage"
)

// Slots is the durable storage LocalStore writes to.
type Slots interface {
	Get(name string) (string, bool, error)
	Set(name, value string) error
}

// LocalStore keeps the cart as a JSON array in the storage cart slot. It
// holds no cache: every call re-reads the slot.
type LocalStore struct {
	mu      sync.Mutex
	slots   Slots
	catalog Catalog
	log     logrus.FieldLogger
}

var _ Store = (*LocalStore)(nil)

// NewLocalStore returns a store over slots. Product snapshots come from
// catalog.
func NewLocalStore(slots Slots, catalog Catalog, log logrus.FieldLogger) *LocalStore {
	if log == nil {
		log = logging.Discard()
	}
	return &LocalStore{slots: slots, catalog: catalog, log: log}
}

// Load reads the cart. A missing or corrupt slot yields an empty cart.
func (s *LocalStore) Load() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save writes the cart. Failures are logged, not returned.
func (s *LocalStore) Save(lines []Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(lines)
}

// Add increments the product's line or appends a new one. Only an unknown
// product id is reported.
func (s *LocalStore) Add(_ context.Context, id int) error {
	p, err := s.catalog.Product(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(Add(s.load(), p))
	return nil
}

// Remove drops the product's line. Absent ids leave the cart unchanged.
func (s *LocalStore) Remove(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(Remove(s.load(), id))
	return nil
}

// Clear stores an empty cart.
func (s *LocalStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(nil)
	return nil
}

func (s *LocalStore) load() []Line {
	raw, ok, err := s.slots.Get(storage.SlotCart)
	if err != nil {
		s.log.WithError(err).Warn("reading local cart failed, treating as empty")
		return nil
	}
	if !ok || raw == "" {
		return nil
	}
	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		s.log.WithError(err).Warn("local cart is corrupt, treating as empty")
		return nil
	}
	return lines
}

func (s *LocalStore) save(lines []Line) {
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		s.log.WithError(err).Error("encoding local cart failed")
		return
	}
	if err := s.slots.Set(storage.SlotCart, string(data)); err != nil {
		s.log.WithError(err).Error("writing local cart failed")
	}
}
