// Package storage persists named string slots in a single TOML file. It is
// the storefront's durable per-device storage: the local cart, the theme
// and the persisted auth token each live in their own slot.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

// ErrStorage marks read or write failures of the slot file.
var ErrStorage = errors.New("storage failure")

// Slot names used across the storefront.
const (
	SlotCart      = "cart"
	SlotTheme     = "theme"
	SlotAuthToken = "auth.token"
)

// Slots is a file-backed map of named values. Every call goes to disk so
// two Slots over the same path see each other's writes.
type Slots struct {
	mu   sync.Mutex
	path string
}

type document struct {
	Slots map[string]string `toml:"slots"`
}

// Open returns Slots persisted at path. The file is created lazily on the
// first write.
func Open(path string) (*Slots, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: path is empty", ErrStorage)
	}
	return &Slots{path: path}, nil
}

// Path returns the backing file.
func (s *Slots) Path() string {
	return s.path
}

// Get returns the slot value and whether it exists.
func (s *Slots) Get(name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return "", false, err
	}
	value, ok := doc.Slots[name]
	return value, ok, nil
}

// Set writes value into the named slot.
func (s *Slots) Set(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		// An unreadable file is replaced rather than blocking every write.
		doc = document{}
	}
	if doc.Slots == nil {
		doc.Slots = make(map[string]string)
	}
	doc.Slots[name] = value
	return s.write(doc)
}

// Delete removes the named slot. Missing slots are not an error.
func (s *Slots) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := doc.Slots[name]; !ok {
		return nil
	}
	delete(doc.Slots, name)
	return s.write(doc)
}

func (s *Slots) read() (document, error) {
	var doc document
	bytes, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return doc, fmt.Errorf("%w: read %s: %v", ErrStorage, s.path, err)
	}
	if err := toml.Unmarshal(bytes, &doc); err != nil {
		return document{}, fmt.Errorf("%w: parse %s: %v", ErrStorage, s.path, err)
	}
	return doc, nil
}

func (s *Slots) write(doc document) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: create storage dir: %v", ErrStorage, err)
	}
	bytes, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: marshal slots: %v", ErrStorage, err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, bytes, 0o644); err != nil {
		return fmt.Errorf("%w: write slots: %v", ErrStorage, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: replace slots: %v", ErrStorage, err)
	}
	return nil
}
