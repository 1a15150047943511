package registry

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestFunctions(t *testing.T) {
	t.Run("register and call", func(t *testing.T) {
		r := New()
		var got []string
		err := r.RegisterFunction("beep", func(args []string) error {
			got = args
			return nil
		})
		if err != nil {
			t.Fatalf("register: %v", err)
		}
		if err := r.CallFunction("beep", []string{"low", "2"}); err != nil {
			t.Fatalf("call: %v", err)
		}
		if strings.Join(got, ",") != "low,2" {
			t.Fatalf("args = %v", got)
		}
	})

	t.Run("re-register replaces", func(t *testing.T) {
		r := New()
		var which string
		r.RegisterFunction("f", func([]string) error { which = "old"; return nil })
		r.RegisterFunction("f", func([]string) error { which = "new"; return nil })
		r.CallFunction("f", nil)
		if which != "new" {
			t.Fatalf("expected last registration to win, got %q", which)
		}
	})

	t.Run("missing function", func(t *testing.T) {
		r := New()
		err := r.CallFunction("ghost", nil)
		if !errors.Is(err, ErrFunctionNotFound) {
			t.Fatalf("expected ErrFunctionNotFound, got %v", err)
		}
	})

	t.Run("empty name and nil fn rejected", func(t *testing.T) {
		r := New()
		if err := r.RegisterFunction("", func([]string) error { return nil }); !errors.Is(err, ErrEmptyName) {
			t.Fatalf("expected ErrEmptyName, got %v", err)
		}
		if err := r.RegisterFunction("x", nil); !errors.Is(err, ErrNilFunction) {
			t.Fatalf("expected ErrNilFunction, got %v", err)
		}
	})

	t.Run("unregister", func(t *testing.T) {
		r := New()
		r.RegisterFunction("f", func([]string) error { return nil })
		if !r.UnregisterFunction("f") {
			t.Fatal("expected removal to report true")
		}
		if r.UnregisterFunction("f") {
			t.Fatal("second removal must report false")
		}
		if err := r.CallFunction("f", nil); !errors.Is(err, ErrFunctionNotFound) {
			t.Fatalf("expected ErrFunctionNotFound after unregister, got %v", err)
		}
	})

	t.Run("function error propagates", func(t *testing.T) {
		r := New()
		boom := errors.New("boom")
		r.RegisterFunction("f", func([]string) error { return boom })
		if err := r.CallFunction("f", nil); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	})
}

// tagged records deliveries with a fixed tag, so identical functions stay
// distinguishable as listeners.
type tagged struct {
	tag string
	log *[]string
}

func (l *tagged) HandleEvent(event string, args []string) {
	*l.log = append(*l.log, fmt.Sprintf("%s<-%s(%s)", l.tag, event, strings.Join(args, ",")))
}

func TestEventListeners(t *testing.T) {
	t.Run("registration order preserved", func(t *testing.T) {
		r := New()
		var log []string
		r.AddEventListener("tick", &tagged{"a", &log})
		r.AddEventListener("tick", &tagged{"b", &log})
		n := r.EmitEvent("tick", []string{"1"})
		if n != 2 {
			t.Fatalf("notified %d listeners", n)
		}
		if strings.Join(log, ";") != "a<-tick(1);b<-tick(1)" {
			t.Fatalf("delivery order: %v", log)
		}
	})

	t.Run("duplicates fire once per registration", func(t *testing.T) {
		r := New()
		var log []string
		l := &tagged{"dup", &log}
		r.AddEventListener("tick", l)
		r.AddEventListener("tick", l)
		r.EmitEvent("tick", nil)
		if len(log) != 2 {
			t.Fatalf("expected 2 deliveries, got %d", len(log))
		}
	})

	t.Run("remove strips every occurrence across all events", func(t *testing.T) {
		r := New()
		var log []string
		l := &tagged{"x", &log}
		other := &tagged{"y", &log}
		r.AddEventListener("tick", l)
		r.AddEventListener("tick", l)
		r.AddEventListener("tock", l)
		r.AddEventListener("tock", other)
		if !r.RemoveEventListener(l) {
			t.Fatal("expected removal to report true")
		}
		r.EmitEvent("tick", nil)
		r.EmitEvent("tock", nil)
		if strings.Join(log, ";") != "y<-tock()" {
			t.Fatalf("unexpected deliveries: %v", log)
		}
		if r.RemoveEventListener(l) {
			t.Fatal("second removal must report false")
		}
	})

	t.Run("emit with no listeners", func(t *testing.T) {
		r := New()
		if n := r.EmitEvent("ghost", nil); n != 0 {
			t.Fatalf("notified %d listeners of unknown event", n)
		}
	})

	t.Run("listener func values are distinct", func(t *testing.T) {
		var count int
		fn := ListenerFunc(func(string, []string) { count++ })
		r := New()
		r.AddEventListener("e", fn)
		r.EmitEvent("e", nil)
		if count != 1 {
			t.Fatalf("count = %d", count)
		}
	})
}
