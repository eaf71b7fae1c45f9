package docstore

import (
	"context"
	"sync"
)

// Memory is an in-process Store. Watchers see every write in order.
type Memory struct {
	// order serializes a write with its fan-out, and a new watch with its
	// initial delivery, so no watcher sees an older state after a newer one.
	order sync.Mutex

	mu       sync.Mutex
	docs     map[string][]byte
	watchers map[string]map[*memoryWatcher]struct{}
}

type memoryWatcher struct {
	ctx context.Context
	ch  chan Snapshot
	mu  sync.Mutex
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		docs:     make(map[string][]byte),
		watchers: make(map[string]map[*memoryWatcher]struct{}),
	}
}

// Get returns the current document.
func (m *Memory) Get(_ context.Context, p string) (Snapshot, error) {
	if err := validPath(p); err != nil {
		return Snapshot{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(p), nil
}

// Set replaces the document.
func (m *Memory) Set(_ context.Context, p string, data []byte) error {
	if err := validPath(p); err != nil {
		return err
	}
	m.order.Lock()
	defer m.order.Unlock()

	m.mu.Lock()
	m.docs[p] = append([]byte(nil), data...)
	snap := m.snapshotLocked(p)
	watchers := m.watchersLocked(p)
	m.mu.Unlock()

	notify(watchers, snap)
	return nil
}

// Delete removes the document.
func (m *Memory) Delete(_ context.Context, p string) error {
	if err := validPath(p); err != nil {
		return err
	}
	m.order.Lock()
	defer m.order.Unlock()

	m.mu.Lock()
	delete(m.docs, p)
	snap := m.snapshotLocked(p)
	watchers := m.watchersLocked(p)
	m.mu.Unlock()

	notify(watchers, snap)
	return nil
}

// Exists reports whether a document is stored at p.
func (m *Memory) Exists(p string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.docs[p]
	return ok
}

// Watch delivers the current document and every later change.
func (m *Memory) Watch(ctx context.Context, p string) (<-chan Snapshot, error) {
	if err := validPath(p); err != nil {
		return nil, err
	}
	ch := make(chan Snapshot, watchBuffer)
	w := &memoryWatcher{ctx: ctx, ch: ch}

	m.order.Lock()
	m.mu.Lock()
	if m.watchers[p] == nil {
		m.watchers[p] = make(map[*memoryWatcher]struct{})
	}
	m.watchers[p][w] = struct{}{}
	initial := m.snapshotLocked(p)
	m.mu.Unlock()

	w.deliver(initial)
	m.order.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.watchers[p], w)
		m.mu.Unlock()

		w.mu.Lock()
		close(w.ch)
		w.ch = nil
		w.mu.Unlock()
	}()
	return ch, nil
}

// Watchers reports how many live watches exist for p.
func (m *Memory) Watchers(p string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.watchers[p])
}

func (m *Memory) snapshotLocked(p string) Snapshot {
	data, ok := m.docs[p]
	if !ok {
		return Snapshot{Path: p}
	}
	return Snapshot{Path: p, Exists: true, Data: append([]byte(nil), data...)}
}

func (m *Memory) watchersLocked(p string) []*memoryWatcher {
	out := make([]*memoryWatcher, 0, len(m.watchers[p]))
	for w := range m.watchers[p] {
		out = append(out, w)
	}
	return out
}

func notify(watchers []*memoryWatcher, snap Snapshot) {
	for _, w := range watchers {
		w.deliver(snap)
	}
}

// deliver blocks until the watcher takes the snapshot or its context ends.
func (w *memoryWatcher) deliver(snap Snapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ch == nil {
		return
	}
	select {
	case w.ch <- snap:
	case <-w.ctx.Done():
	}
}
