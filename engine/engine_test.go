package engine

import (
	"errors"
	"strings"
	"testing"

	"yamui/schema"
	"yamui/telemetry"
)

const testDoc = `
app:
  initial_screen: home
state:
  count: 0
styles:
  - name: primary
    background_color: "#102030"
templates:
  - name: home
    title: Home
    style: primary
    widgets:
      - type: label
        text: "Count: {{ count }}"
      - type: button
        text: Bump
        events:
          click: "set(count, count + 1)"
      - type: button
        text: Settings
        events:
          click: goto(settings)
  - name: settings
    title: Settings
    widgets:
      - type: button
        text: Back
        events:
          click: pop
      - type: button
        text: Ask
        events:
          click: modal(confirm)
components:
  - name: confirm
    widgets:
      - type: button
        text: OK
        events:
          click: close_modal
`

func load(t *testing.T) *Engine {
	t.Helper()
	e := New()
	if err := e.LoadDocument([]byte(testDoc)); err != nil {
		t.Fatalf("load: %v", err)
	}
	return e
}

func TestLoadDocument(t *testing.T) {
	e := load(t)

	t.Run("initial screen and state", func(t *testing.T) {
		if e.CurrentScreen() != "home" {
			t.Fatalf("screen = %q", e.CurrentScreen())
		}
		if got := e.State.GetString("count", ""); got != "0" {
			t.Fatalf("count = %q", got)
		}
	})

	t.Run("reload resets everything", func(t *testing.T) {
		e.State.Set("count", "9")
		if err := e.LoadDocument([]byte(testDoc)); err != nil {
			t.Fatalf("reload: %v", err)
		}
		if got := e.State.GetString("count", ""); got != "0" {
			t.Fatalf("count after reload = %q", got)
		}
	})

	t.Run("parse errors surface", func(t *testing.T) {
		if err := New().LoadDocument([]byte("a: [1]\n")); err == nil {
			t.Fatal("expected parse error")
		}
	})

	t.Run("nil schema rejected", func(t *testing.T) {
		if err := New().LoadSchema(nil); !errors.Is(err, ErrNoSchema) {
			t.Fatalf("expected ErrNoSchema, got %v", err)
		}
	})

	t.Run("unique engine ids", func(t *testing.T) {
		if New().ID() == New().ID() {
			t.Fatal("two engines share an id")
		}
	})
}

func TestHandleWidgetEvent(t *testing.T) {
	t.Run("set action mutates state", func(t *testing.T) {
		e := load(t)
		if err := e.HandleWidgetEvent(1, schema.EventClick); err != nil {
			t.Fatalf("event: %v", err)
		}
		if got := e.State.GetString("count", ""); got != "1" {
			t.Fatalf("count = %q", got)
		}
		w := &mustTemplate(t, e, "home").Widgets[0]
		if got := e.WidgetText(w); got != "Count: 1" {
			t.Fatalf("text = %q", got)
		}
	})

	t.Run("goto while idle switches immediately", func(t *testing.T) {
		e := load(t)
		if err := e.HandleWidgetEvent(2, schema.EventClick); err != nil {
			t.Fatalf("event: %v", err)
		}
		if e.CurrentScreen() != "settings" {
			t.Fatalf("screen = %q", e.CurrentScreen())
		}
	})

	t.Run("unbound event is a no-op", func(t *testing.T) {
		e := load(t)
		if err := e.HandleWidgetEvent(0, schema.EventBlur); err != nil {
			t.Fatalf("unbound event: %v", err)
		}
	})

	t.Run("bad index", func(t *testing.T) {
		e := load(t)
		if err := e.HandleWidgetEvent(99, schema.EventClick); !errors.Is(err, ErrUnknownWidget) {
			t.Fatalf("expected ErrUnknownWidget, got %v", err)
		}
	})
}

func mustTemplate(t *testing.T, e *Engine, name string) *schema.Template {
	t.Helper()
	tpl, ok := e.Schema().Template(name)
	if !ok {
		t.Fatalf("template %q missing", name)
	}
	return tpl
}

func TestNavigation(t *testing.T) {
	t.Run("push pop stack", func(t *testing.T) {
		e := load(t)
		if err := e.PushScreen("settings"); err != nil {
			t.Fatalf("push: %v", err)
		}
		if got := strings.Join(e.ScreenStack(), ","); got != "home,settings" {
			t.Fatalf("stack = %s", got)
		}
		if err := e.PopScreen(); err != nil {
			t.Fatalf("pop: %v", err)
		}
		if e.CurrentScreen() != "home" {
			t.Fatalf("screen = %q", e.CurrentScreen())
		}
	})

	t.Run("pop on root fails", func(t *testing.T) {
		e := load(t)
		if err := e.PopScreen(); !errors.Is(err, ErrScreenStack) {
			t.Fatalf("expected ErrScreenStack, got %v", err)
		}
	})

	t.Run("goto unknown screen", func(t *testing.T) {
		e := load(t)
		if err := e.GotoScreen("nowhere"); !errors.Is(err, ErrUnknownScreen) {
			t.Fatalf("expected ErrUnknownScreen, got %v", err)
		}
		if e.CurrentScreen() != "home" {
			t.Fatalf("failed goto moved screen to %q", e.CurrentScreen())
		}
	})

	t.Run("modal open and close", func(t *testing.T) {
		e := load(t)
		if err := e.ShowModal("confirm"); err != nil {
			t.Fatalf("modal: %v", err)
		}
		if e.ActiveModal() != "confirm" {
			t.Fatalf("modal = %q", e.ActiveModal())
		}
		if err := e.CloseModal(); err != nil {
			t.Fatalf("close: %v", err)
		}
		if e.ActiveModal() != "" {
			t.Fatalf("modal still %q", e.ActiveModal())
		}
		if err := e.CloseModal(); !errors.Is(err, ErrNoModal) {
			t.Fatalf("expected ErrNoModal, got %v", err)
		}
	})

	t.Run("navigation defers during render", func(t *testing.T) {
		e := load(t)
		e.BeginRender()
		if err := e.HandleWidgetEvent(2, schema.EventClick); err != nil {
			t.Fatalf("event: %v", err)
		}
		if e.CurrentScreen() != "home" {
			t.Fatalf("goto ran mid-render, screen = %q", e.CurrentScreen())
		}
		if e.Queue.Depth() != 1 {
			t.Fatalf("depth = %d", e.Queue.Depth())
		}
		if err := e.EndRender(true); err != nil {
			t.Fatalf("end render: %v", err)
		}
		if e.CurrentScreen() != "settings" {
			t.Fatalf("deferred goto lost, screen = %q", e.CurrentScreen())
		}
	})
}

func TestTelemetryFlow(t *testing.T) {
	log := telemetry.New()
	var recs []string
	log.SetTelemetry(func(r telemetry.Record) {
		recs = append(recs, r.Type.String()+":"+r.Subject)
	})
	e := New(WithLogger(log))
	if err := e.LoadDocument([]byte(testDoc)); err != nil {
		t.Fatalf("load: %v", err)
	}
	recs = recs[:0]

	if err := e.HandleWidgetEvent(1, schema.EventClick); err != nil {
		t.Fatalf("event: %v", err)
	}
	joined := strings.Join(recs, ";")
	for _, want := range []string{"widget_event:home[1]", "state_change:count"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("telemetry %q missing from %s", want, joined)
		}
	}
}

func TestNativeCallsAndEvents(t *testing.T) {
	e := load(t)
	var calls []string
	e.Registry.RegisterFunction("beep", func(args []string) error {
		calls = append(calls, "beep:"+strings.Join(args, ","))
		return nil
	})
	if err := e.CallNative("beep", []string{"low"}); err != nil {
		t.Fatalf("call: %v", err)
	}
	if strings.Join(calls, ";") != "beep:low" {
		t.Fatalf("calls = %v", calls)
	}

	// Emission without listeners still succeeds.
	if err := e.EmitEvent("nobody", nil); err != nil {
		t.Fatalf("emit: %v", err)
	}
}
