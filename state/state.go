// Package state is the engine's key/value store. Widget expressions read
// it through the expr.Resolver interface, set actions write it, and watchers
// observe individual keys or every key via the wildcard.
package state

import (
	"errors"
	"sort"
	"strconv"
	"sync"

	"yamui/expr"
	"yamui/yamltree"
)

// Wildcard subscribes a watcher to changes on every key.
const Wildcard = "*"

var ErrEmptyKey = errors.New("empty state key")

// WatchFunc is called after a key changes, with the key and its new value.
// Wildcard watchers receive the concrete key, never "*".
type WatchFunc func(key, value string)

// Handle identifies a watcher registration for later removal.
type Handle uint64

type watcher struct {
	handle Handle
	key    string
	fn     WatchFunc
}

// Store holds string-valued state keys. All values are stored as strings;
// the typed accessors coerce on the way in and out, matching expression
// semantics. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	values   map[string]string
	watchers []watcher
	nextID   Handle
}

// New returns an empty Store.
func New() *Store {
	return &Store{values: make(map[string]string)}
}

// Set stores value under key and notifies watchers when the value actually
// changed. Writing the current value again is a no-op.
func (s *Store) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	old, existed := s.values[key]
	if existed && old == value {
		s.mu.Unlock()
		return nil
	}
	s.values[key] = value
	notify := s.watchersFor(key)
	s.mu.Unlock()
	for _, fn := range notify {
		fn(key, value)
	}
	return nil
}

// watchersFor must be called with the lock held; it snapshots the callbacks
// so notification runs without the lock.
func (s *Store) watchersFor(key string) []WatchFunc {
	var out []WatchFunc
	for _, w := range s.watchers {
		if w.key == key || w.key == Wildcard {
			out = append(out, w.fn)
		}
	}
	return out
}

// Get returns the value stored under key and whether the key exists.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	v, ok := s.values[key]
	s.mu.RUnlock()
	return v, ok
}

// GetString returns the value under key, or fallback when absent.
func (s *Store) GetString(key, fallback string) string {
	if v, ok := s.Get(key); ok {
		return v
	}
	return fallback
}

// GetNumber returns the value under key parsed as a number, or fallback
// when the key is absent or does not parse.
func (s *Store) GetNumber(key string, fallback float64) float64 {
	v, ok := s.Get(key)
	if !ok {
		return fallback
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return n
}

// GetBool returns the truthiness of the value under key, or fallback when
// absent. Coercion follows expression truthiness: non-zero numbers and
// non-empty, non-"false" strings are true.
func (s *Store) GetBool(key string, fallback bool) bool {
	v, ok := s.Get(key)
	if !ok {
		return fallback
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return expr.String(v).Truthy()
}

// SetNumber stores a numeric value with the same formatting expressions use.
func (s *Store) SetNumber(key string, n float64) error {
	return s.Set(key, expr.Number(n).Text())
}

// SetBool stores "true" or "false".
func (s *Store) SetBool(key string, b bool) error {
	return s.Set(key, strconv.FormatBool(b))
}

// Resolve implements expr.Resolver over the store's keys. Stored text that
// reads as a number or boolean resolves typed, so `count + 1` increments
// instead of concatenating; everything else resolves as a string.
func (s *Store) Resolve(name string) (expr.Value, bool) {
	v, ok := s.Get(name)
	if !ok {
		return expr.Value{}, false
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return expr.Number(n), true
	}
	switch v {
	case "true":
		return expr.Bool(true), true
	case "false":
		return expr.Bool(false), true
	}
	return expr.String(v), true
}

// Watch registers fn for changes to key, or to every key when key is the
// Wildcard. The returned handle removes exactly this registration.
func (s *Store) Watch(key string, fn WatchFunc) (Handle, error) {
	if key == "" {
		return 0, ErrEmptyKey
	}
	if fn == nil {
		return 0, errors.New("nil watch func")
	}
	s.mu.Lock()
	s.nextID++
	h := s.nextID
	s.watchers = append(s.watchers, watcher{handle: h, key: key, fn: fn})
	s.mu.Unlock()
	return h, nil
}

// Unwatch removes the registration behind h and reports whether it existed.
func (s *Store) Unwatch(h Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, w := range s.watchers {
		if w.handle == h {
			s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
			return true
		}
	}
	return false
}

// Seed stores every pair from values without notifying watchers. Meant for
// initial state blocks, before any watcher exists.
func (s *Store) Seed(values map[string]string) {
	s.mu.Lock()
	for k, v := range values {
		if k != "" {
			s.values[k] = v
		}
	}
	s.mu.Unlock()
}

// SeedFromNode seeds the store from a mapping node of scalar values, the
// shape of a document's state block. Non-scalar children are rejected.
func (s *Store) SeedFromNode(n *yamltree.Node) error {
	if n == nil {
		return nil
	}
	if n.Kind() != yamltree.KindMapping {
		return errors.New("state block must be a mapping")
	}
	pairs := make(map[string]string, n.Len())
	for _, child := range n.Children() {
		if child.Kind() != yamltree.KindScalar {
			return errors.New("state value for " + strconv.Quote(child.Key()) + " must be a scalar")
		}
		pairs[child.Key()] = child.Scalar()
	}
	s.Seed(pairs)
	return nil
}

// Clear removes every key without notifying watchers. Watcher registrations
// survive.
func (s *Store) Clear() {
	s.mu.Lock()
	s.values = make(map[string]string)
	s.mu.Unlock()
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	sort.Strings(keys)
	return keys
}
