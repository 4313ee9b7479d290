package datastore

import (
	"sort"
	"sync"
)

// ChangeFunc observes a committed write. It is called synchronously after the
// new value is visible to readers.
type ChangeFunc func(path string, value any)

type change struct {
	path  string
	value any
}

type listener struct {
	id uint64
	fn ChangeFunc
}

// Store is the mutable, path-addressable data tree that UI elements bind to.
//
// Writes made from inside a ChangeFunc are not applied immediately. They are
// queued and flushed, in order, once the outermost write has finished
// notifying. Writes from other goroutines that land while a notification round
// is running are queued the same way; hosts that write concurrently must
// synchronize externally if they need read-your-write ordering.
type Store struct {
	mu        sync.RWMutex
	data      map[string]any
	listeners []listener
	seq       uint64

	// flushMu guards notifying and pending.
	flushMu   sync.Mutex
	notifying bool
	pending   []change
}

// New creates a Store seeded with a deep copy of initial.
func New(initial map[string]any) *Store {
	data := deepCopyMap(initial)
	if data == nil {
		data = make(map[string]any)
	}
	return &Store{data: data}
}

// Get returns a copy of the value at path. The second result is false when the
// path does not exist or passes through a scalar.
func (s *Store) Get(path string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := GetByPath(s.data, path)
	if !ok {
		return nil, false
	}
	return deepCopyAny(val), true
}

// Snapshot returns a deep copy of the whole tree.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return deepCopyMap(s.data)
}

// Set writes value at path, creating intermediate mappings as needed, then
// notifies subscribers with (path, value). Setting the root path replaces the
// whole tree when value is a mapping and is ignored otherwise.
func (s *Store) Set(path string, value any) {
	s.commit([]change{{path: path, value: value}})
}

// Update applies several writes. Paths are applied in lexical order and each
// write is visible before the next one is applied. One notification is sent
// per path.
func (s *Store) Update(values map[string]any) {
	if len(values) == 0 {
		return
	}
	paths := make([]string, 0, len(values))
	for p := range values {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	changes := make([]change, 0, len(paths))
	for _, p := range paths {
		changes = append(changes, change{path: p, value: values[p]})
	}
	s.commit(changes)
}

// Subscribe registers fn for change notifications and returns a function that
// removes it.
func (s *Store) Subscribe(fn ChangeFunc) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	id := s.seq
	s.listeners = append(s.listeners, listener{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Binding returns a two-way handle on a single path.
func (s *Store) Binding(path string) Binding {
	return Binding{store: s, path: path}
}

func (s *Store) commit(changes []change) {
	s.flushMu.Lock()
	if s.notifying {
		s.pending = append(s.pending, changes...)
		s.flushMu.Unlock()
		return
	}
	s.notifying = true
	s.flushMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.flushMu.Lock()
			s.notifying = false
			s.pending = nil
			s.flushMu.Unlock()
			panic(r)
		}
	}()

	for {
		for _, c := range changes {
			if s.apply(c) {
				s.notify(c)
			}
		}

		s.flushMu.Lock()
		if len(s.pending) == 0 {
			s.notifying = false
			s.flushMu.Unlock()
			return
		}
		changes = s.pending
		s.pending = nil
		s.flushMu.Unlock()
	}
}

func (s *Store) apply(c change) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(SplitPath(c.path)) == 0 {
		root, ok := c.value.(map[string]any)
		if !ok {
			return false
		}
		s.data = deepCopyMap(root)
		if s.data == nil {
			s.data = make(map[string]any)
		}
		return true
	}
	return SetByPath(s.data, c.path, deepCopyAny(c.value))
}

func (s *Store) notify(c change) {
	s.mu.RLock()
	listeners := make([]listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		l.fn(c.path, c.value)
	}
}

// Binding reads and writes one store path.
type Binding struct {
	store *Store
	path  string
}

// Path returns the bound path.
func (b Binding) Path() string { return b.path }

// Value returns the current value, or nil when the path is missing.
func (b Binding) Value() any {
	v, _ := b.store.Get(b.path)
	return v
}

// Set writes a new value through the store.
func (b Binding) Set(value any) {
	b.store.Set(b.path, value)
}
