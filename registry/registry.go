// Package registry maps names to native functions and event names to
// listeners, bridging declarative action operands to host code.
package registry

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	ErrEmptyName        = errors.New("empty name")
	ErrNilFunction      = errors.New("nil function")
	ErrFunctionNotFound = errors.New("function not found")
	ErrNilListener      = errors.New("nil listener")
)

// NativeFunc is a host function callable from a "call" action. Arguments
// arrive already interpolated.
type NativeFunc func(args []string) error

// EventListener receives events emitted through "emit" actions or host
// code. Listeners are compared by interface identity for removal, so
// register the same value that was added.
type EventListener interface {
	HandleEvent(event string, args []string)
}

// ListenerFunc adapts a function to EventListener. Function values have no
// identity, so a ListenerFunc cannot be removed with RemoveEventListener;
// implement EventListener on a type of your own when removal is needed.
type ListenerFunc func(event string, args []string)

func (f ListenerFunc) HandleEvent(event string, args []string) { f(event, args) }

// sameListener compares listener identity without panicking on listeners
// whose dynamic type is not comparable (such as ListenerFunc).
func sameListener(a, b EventListener) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// Registry holds the native function table and per-event listener lists.
// Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	functions map[string]NativeFunc
	listeners map[string][]EventListener
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		functions: make(map[string]NativeFunc),
		listeners: make(map[string][]EventListener),
	}
}

// RegisterFunction binds name to fn. Re-registering an existing name
// replaces the previous binding.
func (r *Registry) RegisterFunction(name string, fn NativeFunc) error {
	if name == "" {
		return ErrEmptyName
	}
	if fn == nil {
		return ErrNilFunction
	}
	r.mu.Lock()
	r.functions[name] = fn
	r.mu.Unlock()
	return nil
}

// UnregisterFunction removes the binding for name and reports whether a
// binding existed.
func (r *Registry) UnregisterFunction(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.functions[name]; !ok {
		return false
	}
	delete(r.functions, name)
	return true
}

// CallFunction invokes the function bound to name. An unbound name is an
// error wrapping ErrFunctionNotFound.
func (r *Registry) CallFunction(name string, args []string) error {
	r.mu.RLock()
	fn, ok := r.functions[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrFunctionNotFound, name)
	}
	return fn(args)
}

// AddEventListener appends l to the listener list for event. Duplicate
// registrations are kept; the listener then fires once per registration.
func (r *Registry) AddEventListener(event string, l EventListener) error {
	if event == "" {
		return ErrEmptyName
	}
	if l == nil {
		return ErrNilListener
	}
	r.mu.Lock()
	r.listeners[event] = append(r.listeners[event], l)
	r.mu.Unlock()
	return nil
}

// RemoveEventListener removes every registration of l across all events,
// deliberately without an event parameter, and reports whether at least one
// registration was removed. A listener being torn down must not linger on
// any event it forgot it was subscribed to.
func (r *Registry) RemoveEventListener(l EventListener) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := false
	for event, list := range r.listeners {
		kept := list[:0]
		for _, cur := range list {
			if sameListener(cur, l) {
				removed = true
				continue
			}
			kept = append(kept, cur)
		}
		if len(kept) == 0 {
			delete(r.listeners, event)
		} else {
			r.listeners[event] = kept
		}
	}
	return removed
}

// EmitEvent delivers the event to every listener in registration order.
// Delivery always runs to completion; a listener cannot veto or reorder
// later listeners. Returns the number of listeners notified.
func (r *Registry) EmitEvent(event string, args []string) int {
	r.mu.RLock()
	list := r.listeners[event]
	snapshot := make([]EventListener, len(list))
	copy(snapshot, list)
	r.mu.RUnlock()
	for _, l := range snapshot {
		l.HandleEvent(event, args)
	}
	return len(snapshot)
}
