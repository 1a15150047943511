// Package engine ties the compiled schema, state store, runtime registry
// and navigation queue into one constructible object. Nothing here is a
// process-wide singleton: each Engine owns its own state, so tests and
// multi-display hosts can run independent instances side by side.
//
// The engine performs no internal locking across its UI entry points; it is
// designed to be driven from a single host execution context. External
// threads reach it through a Dispatcher.
package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"yamui/action"
	"yamui/nav"
	"yamui/registry"
	"yamui/schema"
	"yamui/state"
	"yamui/telemetry"
	"yamui/yamltree"
)

var (
	ErrNoSchema      = errors.New("no schema loaded")
	ErrUnknownScreen = errors.New("unknown screen")
	ErrScreenStack   = errors.New("screen stack empty")
	ErrNoModal       = errors.New("no modal open")
	ErrUnknownWidget = errors.New("unknown widget")
)

// Engine is one live UI instance.
type Engine struct {
	id string

	State    *state.Store
	Registry *registry.Registry
	Queue    *nav.Queue
	Log      *telemetry.Logger

	schema *schema.Schema
	stack  []string
	modal  string
}

// Option configures a new Engine.
type Option func(*Engine)

// WithLogger installs the telemetry logger. The default logger has no sink
// and discards everything.
func WithLogger(l *telemetry.Logger) Option {
	return func(e *Engine) { e.Log = l }
}

// WithMaxNavDepth bounds the navigation queue's pending depth during a
// render pass.
func WithMaxNavDepth(n int) Option {
	return func(e *Engine) { e.Queue = nav.New(e.executeNav, nav.WithMaxDepth(n)) }
}

// New returns a ready Engine with no schema loaded.
func New(opts ...Option) *Engine {
	e := &Engine{
		id:       uuid.NewString(),
		State:    state.New(),
		Registry: registry.New(),
		Log:      telemetry.New(),
	}
	e.Queue = nav.New(e.executeNav)
	for _, opt := range opts {
		opt(e)
	}
	// State changes flow to telemetry no matter who wrote them.
	e.State.Watch(state.Wildcard, func(key, value string) {
		e.Log.StateChange(key, value)
	})
	return e
}

// ID returns the engine instance identifier, unique per New call. It tags
// telemetry when several engines share one sink.
func (e *Engine) ID() string { return e.id }

// Schema returns the currently loaded schema, nil when none is loaded.
func (e *Engine) Schema() *schema.Schema { return e.schema }

// LoadDocument parses and compiles src, then loads the result.
func (e *Engine) LoadDocument(src []byte) error {
	root, err := yamltree.Parse(src)
	if err != nil {
		return err
	}
	s, err := schema.Compile(root)
	if err != nil {
		return err
	}
	return e.LoadSchema(s)
}

// LoadSchema replaces the active schema. State is cleared and reseeded from
// the document's state block, pending navigation is discarded, and the
// screen stack restarts at the schema's initial screen. Load events on that
// screen's widgets fire before LoadSchema returns.
func (e *Engine) LoadSchema(s *schema.Schema) error {
	if s == nil {
		return ErrNoSchema
	}
	e.schema = s
	e.modal = ""
	e.Queue.Reset()
	e.State.Clear()
	e.State.Seed(s.State())
	e.stack = e.stack[:0]
	if initial := s.InitialScreen(); initial != "" {
		if err := e.showScreen(initial); err != nil {
			return err
		}
	}
	return nil
}

// CurrentScreen returns the template name at the top of the screen stack.
func (e *Engine) CurrentScreen() string {
	if len(e.stack) == 0 {
		return ""
	}
	return e.stack[len(e.stack)-1]
}

// ScreenStack returns a copy of the stack, bottom first.
func (e *Engine) ScreenStack() []string {
	out := make([]string, len(e.stack))
	copy(out, e.stack)
	return out
}

// ActiveModal returns the component name of the open modal, empty if none.
func (e *Engine) ActiveModal() string { return e.modal }

// BeginRender marks the start of a render pass; navigation submitted until
// EndRender is deferred.
func (e *Engine) BeginRender() { e.Queue.BeginRender() }

// EndRender marks the end of a render pass and, with flush set, replays the
// navigation deferred during it.
func (e *Engine) EndRender(flush bool) error { return e.Queue.EndRender(flush) }

// HandleWidgetEvent runs the action list bound to event on the widget at
// index within the current screen's template. Missing bindings are a no-op,
// not an error; an out-of-range widget is.
func (e *Engine) HandleWidgetEvent(widgetIndex int, event schema.EventKind) error {
	if e.schema == nil {
		return ErrNoSchema
	}
	tpl, ok := e.schema.Template(e.CurrentScreen())
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownScreen, e.CurrentScreen())
	}
	if widgetIndex < 0 || widgetIndex >= len(tpl.Widgets) {
		return fmt.Errorf("%w: index %d in %q", ErrUnknownWidget, widgetIndex, tpl.Name)
	}
	w := &tpl.Widgets[widgetIndex]
	e.Log.WidgetEvent(fmt.Sprintf("%s[%d]", tpl.Name, widgetIndex), event.String())
	return e.runActions(w.Events[event])
}

// RunActions executes a compiled list against this engine, for hosts that
// bind lists outside the schema's widget tables (modal components, custom
// chrome).
func (e *Engine) RunActions(list action.List) error {
	return e.runActions(list)
}

// runActions executes a compiled list against this engine. A nil list is a
// no-op. Action failures are recovered here: they are telemetried and the
// remaining actions still ran, so the caller only learns that something
// failed.
func (e *Engine) runActions(list action.List) error {
	if len(list) == 0 {
		return nil
	}
	err := action.Execute(list, e, e.State)
	if err != nil {
		e.Log.Error(telemetry.CatAction, err.Error())
	}
	return err
}

// WidgetText returns the widget's text with its {{ }} spans evaluated
// against current state. Evaluation failures fall back to the static text;
// the render must not lose a widget over a bad expression.
func (e *Engine) WidgetText(w *schema.Widget) string {
	text, err := w.RenderText(e.State)
	if err != nil {
		e.Log.Error(telemetry.CatExpr, err.Error())
		return w.Text
	}
	return text
}

// showScreen makes name the top of a cleared stack and fires its widgets'
// load events.
func (e *Engine) showScreen(name string) error {
	tpl, ok := e.schema.Template(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownScreen, name)
	}
	e.stack = append(e.stack[:0], name)
	return e.fireLoad(tpl)
}

func (e *Engine) fireLoad(tpl *schema.Template) error {
	e.Log.ScreenLoad(tpl.Name)
	var firstErr error
	for i := range tpl.Widgets {
		if err := e.runActions(tpl.Widgets[i].Events[schema.EventLoad]); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// executeNav is the navigation queue's executor: the only place the screen
// stack and modal state actually change.
func (e *Engine) executeNav(kind nav.RequestKind, arg string) error {
	if e.schema == nil {
		return ErrNoSchema
	}
	switch kind {
	case nav.RequestGoto:
		return e.showScreen(arg)
	case nav.RequestPush:
		tpl, ok := e.schema.Template(arg)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownScreen, arg)
		}
		e.stack = append(e.stack, arg)
		return e.fireLoad(tpl)
	case nav.RequestPop:
		if len(e.stack) <= 1 {
			return ErrScreenStack
		}
		e.stack = e.stack[:len(e.stack)-1]
		tpl, ok := e.schema.Template(e.CurrentScreen())
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownScreen, e.CurrentScreen())
		}
		return e.fireLoad(tpl)
	case nav.RequestModal:
		if _, ok := e.schema.Component(arg); !ok {
			return fmt.Errorf("%w: modal component %q", ErrUnknownScreen, arg)
		}
		e.modal = arg
		e.Log.Modal("open", arg)
		return nil
	case nav.RequestCloseModal:
		if e.modal == "" {
			return ErrNoModal
		}
		e.Log.Modal("close", e.modal)
		e.modal = ""
		return nil
	}
	return fmt.Errorf("unsupported navigation request %d", int(kind))
}

// GotoScreen implements action.Runtime by routing through the navigation
// queue, so a goto fired mid-render is deferred instead of tearing down the
// tree under the renderer.
func (e *Engine) GotoScreen(name string) error {
	e.Log.Action("goto", name, "")
	return e.Queue.Submit(nav.RequestGoto, name)
}

// PushScreen implements action.Runtime.
func (e *Engine) PushScreen(name string) error {
	e.Log.Action("push", name, "")
	return e.Queue.Submit(nav.RequestPush, name)
}

// PopScreen implements action.Runtime.
func (e *Engine) PopScreen() error {
	e.Log.Action("pop", "", "")
	return e.Queue.Submit(nav.RequestPop, "")
}

// ShowModal implements action.Runtime.
func (e *Engine) ShowModal(name string) error {
	e.Log.Action("modal", name, "")
	return e.Queue.Submit(nav.RequestModal, name)
}

// CloseModal implements action.Runtime.
func (e *Engine) CloseModal() error {
	e.Log.Action("close_modal", "", "")
	return e.Queue.Submit(nav.RequestCloseModal, "")
}

// CallNative implements action.Runtime via the registry.
func (e *Engine) CallNative(function string, args []string) error {
	e.Log.Debugf(telemetry.CatNative, "call %s (%d args)", function, len(args))
	return e.Registry.CallFunction(function, args)
}

// EmitEvent implements action.Runtime via the registry. Emission always
// completes; listeners cannot fail it.
func (e *Engine) EmitEvent(event string, args []string) error {
	n := e.Registry.EmitEvent(event, args)
	if n == 0 {
		e.Log.Tracef(telemetry.CatEvent, "event %q had no listeners", event)
	}
	return nil
}
