// Package docstore is the storefront's view of a remote real-time document
// store: whole documents addressed by path, written by full replace or
// deleted, and watched through a stream of snapshots.
package docstore

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrInvalidPath is returned for empty document paths.
var ErrInvalidPath = errors.New("invalid document path")

// Snapshot is the full state of one document at a point in time. A
// deleted or never-written document arrives with Exists false.
type Snapshot struct {
	Path   string
	Exists bool
	Data   []byte
}

// Store is the CRUD-like surface the cart consumes.
type Store interface {
	// Get returns the current document.
	Get(ctx context.Context, path string) (Snapshot, error)
	// Set replaces the whole document.
	Set(ctx context.Context, path string, data []byte) error
	// Delete removes the document.
	Delete(ctx context.Context, path string) error
	// Watch delivers the current document and then every change until ctx
	// ends, when the channel is closed.
	Watch(ctx context.Context, path string) (<-chan Snapshot, error)
}

// CartPath builds the document path for a user's cart:
// <namespace>/<appID>/users/<uid>/cart.
func CartPath(namespace, appID, uid string) string {
	return path.Join(namespace, appID, "users", uid, "cart")
}

func validPath(p string) error {
	if strings.TrimSpace(p) == "" {
		return ErrInvalidPath
	}
	return nil
}
