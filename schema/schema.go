// Package schema compiles a parsed YAML tree into a typed, immutable UI
// description: layout, styles, templates, components, plus the optional
// app config and initial state block. Compilation is all-or-nothing; a
// failure anywhere returns a nil schema and an *Error naming the offending
// document path.
package schema

import (
	"errors"
	"fmt"

	"yamui/action"
	"yamui/expr"
)

var (
	ErrWrongType     = errors.New("wrong node type")
	ErrMissingField  = errors.New("missing required field")
	ErrDuplicateName = errors.New("duplicate name")
	ErrUnknownStyle  = errors.New("unknown style reference")
	ErrUnknownWidget = errors.New("unknown widget type")
	ErrUnknownEvent  = errors.New("unknown event")
)

// Error is a compile-time schema error. Path locates the failing entry in
// document terms, e.g. "templates[0].widgets[2].style".
type Error struct {
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("schema: %s: %s", e.Path, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func errAt(path string, sentinel error, format string, args ...any) *Error {
	return &Error{Path: path, Msg: fmt.Sprintf(format, args...), Err: sentinel}
}

// Layout is the top-level grid configuration.
type Layout struct {
	Columns         int
	HSpacing        int
	VSpacing        int
	Padding         int
	BackgroundColor string
}

// DefaultLayout returns the layout used when the document has no layout
// block, and the base the block's fields override.
func DefaultLayout() Layout {
	return Layout{
		Columns:         2,
		HSpacing:        16,
		VSpacing:        16,
		Padding:         18,
		BackgroundColor: "#0F0F18",
	}
}

// Style is a named set of visual tokens, referenced by name from widgets,
// templates and components.
type Style struct {
	Name            string
	BackgroundColor string
	TextColor       string
	AccentColor     string
	TextFont        string
	Width           int
	Height          int
	Padding         int
	PaddingX        int
	PaddingY        int
	Radius          int
	Spacing         int
	Shadow          bool
	Align           string
}

// AppConfig carries document-level application settings.
type AppConfig struct {
	InitialScreen string
	Locale        string
}

// WidgetKind enumerates the supported widget variants.
type WidgetKind int

const (
	KindLabel WidgetKind = iota
	KindButton
	KindSpacer
)

var widgetKindNames = map[WidgetKind]string{
	KindLabel:  "label",
	KindButton: "button",
	KindSpacer: "spacer",
}

func (k WidgetKind) String() string {
	if s, ok := widgetKindNames[k]; ok {
		return s
	}
	return "invalid"
}

// ParseWidgetKind maps a document type string to its WidgetKind.
func ParseWidgetKind(s string) (WidgetKind, bool) {
	for k, name := range widgetKindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// EventKind indexes a widget's fixed-size event table.
type EventKind int

const (
	EventClick EventKind = iota
	EventPress
	EventRelease
	EventChange
	EventFocus
	EventBlur
	EventLoad
	EventCount
)

var eventKindNames = map[EventKind]string{
	EventClick:   "click",
	EventPress:   "press",
	EventRelease: "release",
	EventChange:  "change",
	EventFocus:   "focus",
	EventBlur:    "blur",
	EventLoad:    "load",
}

func (k EventKind) String() string {
	if s, ok := eventKindNames[k]; ok {
		return s
	}
	return "invalid"
}

// ParseEventKind maps a document event key to its EventKind.
func ParseEventKind(s string) (EventKind, bool) {
	for k, name := range eventKindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Widget is one node of a rendered tree. Events is a fixed-size table
// indexed by EventKind; an event without actions holds a nil list.
// Bindings lists the state keys the widget's text depends on, in first-use
// order, so the host can refresh only affected widgets on state change.
type Widget struct {
	Kind     WidgetKind
	Text     string
	Variant  string
	Size     string
	StyleRef string
	Events   [EventCount]action.List
	Bindings []string
}

// RenderText returns the widget text with its {{ }} spans evaluated against
// r. Static text passes through unchanged.
func (w *Widget) RenderText(r expr.Resolver) (string, error) {
	return expr.Interpolate(w.Text, r)
}

// Template is a named full-screen definition.
type Template struct {
	Name     string
	Title    string
	Subtitle string
	StyleRef string
	Widgets  []Widget
}

// ComponentLayout configures how a component flows its widgets.
type ComponentLayout struct {
	Flow            string
	MainAlign       string
	CrossAlign      string
	Gap             int
	Padding         int
	BackgroundColor string
}

// Component is a named reusable widget fragment.
type Component struct {
	Name    string
	Layout  ComponentLayout
	Widgets []Widget
}

// Schema is the compiled document. Immutable once returned by Compile;
// lookups are by name, and the ordered accessors preserve authoring order.
type Schema struct {
	app        AppConfig
	layout     Layout
	state      map[string]string
	styles     []Style
	templates  []Template
	components []Component

	styleIndex     map[string]int
	templateIndex  map[string]int
	componentIndex map[string]int
}

// App returns the document's application config. Fields are empty when the
// document has no app block.
func (s *Schema) App() AppConfig { return s.app }

// Layout returns the top-level layout, defaults applied.
func (s *Schema) Layout() Layout { return s.layout }

// State returns the document's initial state pairs. The map is shared;
// callers seed a store from it rather than mutating it.
func (s *Schema) State() map[string]string { return s.state }

// Style looks up a style by name.
func (s *Schema) Style(name string) (*Style, bool) {
	i, ok := s.styleIndex[name]
	if !ok {
		return nil, false
	}
	return &s.styles[i], true
}

// Template looks up a template by name.
func (s *Schema) Template(name string) (*Template, bool) {
	i, ok := s.templateIndex[name]
	if !ok {
		return nil, false
	}
	return &s.templates[i], true
}

// Component looks up a component by name.
func (s *Schema) Component(name string) (*Component, bool) {
	i, ok := s.componentIndex[name]
	if !ok {
		return nil, false
	}
	return &s.components[i], true
}

// Styles returns all styles in authoring order.
func (s *Schema) Styles() []Style { return s.styles }

// Templates returns all templates in authoring order.
func (s *Schema) Templates() []Template { return s.templates }

// Components returns all components in authoring order.
func (s *Schema) Components() []Component { return s.components }

// InitialScreen returns the app block's initial screen, falling back to the
// first template when unset.
func (s *Schema) InitialScreen() string {
	if s.app.InitialScreen != "" {
		return s.app.InitialScreen
	}
	if len(s.templates) > 0 {
		return s.templates[0].Name
	}
	return ""
}

// Locale returns the app block's locale, empty when unset.
func (s *Schema) Locale() string { return s.app.Locale }
