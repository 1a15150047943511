package schema

import (
	"fmt"
	"strconv"

	"yamui/action"
	"yamui/expr"
	"yamui/yamltree"
)

// Compile walks the root mapping of a parsed document and builds the typed
// schema. Recognized top-level keys are app, state, layout, styles,
// templates and components; anything else is ignored so newer documents
// still load on older engines. Every failure names the offending path and
// no partial schema is ever returned.
func Compile(root *yamltree.Node) (*Schema, error) {
	if root == nil || root.Kind() != yamltree.KindMapping {
		return nil, errAt("$", ErrWrongType, "document root must be a mapping")
	}
	s := &Schema{
		layout:         DefaultLayout(),
		styleIndex:     make(map[string]int),
		templateIndex:  make(map[string]int),
		componentIndex: make(map[string]int),
	}
	if err := compileApp(root.Child("app"), s); err != nil {
		return nil, err
	}
	if err := compileState(root.Child("state"), s); err != nil {
		return nil, err
	}
	if err := compileLayout(root.Child("layout"), &s.layout); err != nil {
		return nil, err
	}
	if err := compileStyles(root.Child("styles"), s); err != nil {
		return nil, err
	}
	if err := compileTemplates(root.Child("templates"), s); err != nil {
		return nil, err
	}
	if err := compileComponents(root.Child("components"), s); err != nil {
		return nil, err
	}
	return s, nil
}

// CompileBytes parses src and compiles the resulting tree.
func CompileBytes(src []byte) (*Schema, error) {
	root, err := yamltree.Parse(src)
	if err != nil {
		return nil, err
	}
	return Compile(root)
}

func compileApp(n *yamltree.Node, s *Schema) error {
	if n == nil {
		return nil
	}
	if n.Kind() != yamltree.KindMapping {
		return errAt("app", ErrWrongType, "app block must be a mapping")
	}
	s.app.InitialScreen = scalarField(n, "initial_screen")
	s.app.Locale = scalarField(n, "locale")
	return nil
}

func compileState(n *yamltree.Node, s *Schema) error {
	if n == nil {
		return nil
	}
	if n.Kind() != yamltree.KindMapping {
		return errAt("state", ErrWrongType, "state block must be a mapping")
	}
	s.state = make(map[string]string, n.Len())
	for _, child := range n.Children() {
		if child.Kind() != yamltree.KindScalar {
			return errAt("state."+child.Key(), ErrWrongType, "state value must be a scalar")
		}
		if _, dup := s.state[child.Key()]; !dup {
			s.state[child.Key()] = child.Scalar()
		}
	}
	return nil
}

func compileLayout(n *yamltree.Node, layout *Layout) error {
	if n == nil {
		return nil
	}
	if n.Kind() != yamltree.KindMapping {
		return errAt("layout", ErrWrongType, "layout block must be a mapping")
	}
	layout.Columns = intField(n, "columns", layout.Columns)
	layout.HSpacing = intField(n, "h_spacing", layout.HSpacing)
	layout.VSpacing = intField(n, "v_spacing", layout.VSpacing)
	layout.Padding = intField(n, "padding", layout.Padding)
	if bg := scalarField(n, "background_color"); bg != "" {
		layout.BackgroundColor = bg
	}
	return nil
}

func compileStyles(n *yamltree.Node, s *Schema) error {
	if n == nil {
		return nil
	}
	if n.Kind() != yamltree.KindSequence {
		return errAt("styles", ErrWrongType, "styles block must be a sequence")
	}
	for i := 0; i < n.Len(); i++ {
		path := fmt.Sprintf("styles[%d]", i)
		entry := n.At(i)
		if entry.Kind() != yamltree.KindMapping {
			return errAt(path, ErrWrongType, "style entry must be a mapping")
		}
		name := scalarField(entry, "name")
		if name == "" {
			return errAt(path+".name", ErrMissingField, "style needs a name")
		}
		if _, dup := s.styleIndex[name]; dup {
			return errAt(path+".name", ErrDuplicateName, "style %q already defined", name)
		}
		st := Style{
			Name:            name,
			BackgroundColor: scalarField(entry, "background_color"),
			TextColor:       scalarField(entry, "text_color"),
			AccentColor:     scalarField(entry, "accent_color"),
			TextFont:        scalarField(entry, "text_font"),
			Width:           intField(entry, "width", 0),
			Height:          intField(entry, "height", 0),
			Padding:         intField(entry, "padding", 12),
			PaddingX:        intField(entry, "padding_x", 0),
			PaddingY:        intField(entry, "padding_y", 0),
			Radius:          intField(entry, "radius", 16),
			Spacing:         intField(entry, "spacing", 0),
			Shadow:          boolField(entry, "shadow", false),
			Align:           scalarField(entry, "align"),
		}
		s.styleIndex[name] = len(s.styles)
		s.styles = append(s.styles, st)
	}
	return nil
}

func compileTemplates(n *yamltree.Node, s *Schema) error {
	if n == nil {
		return nil
	}
	if n.Kind() != yamltree.KindSequence {
		return errAt("templates", ErrWrongType, "templates block must be a sequence")
	}
	for i := 0; i < n.Len(); i++ {
		path := fmt.Sprintf("templates[%d]", i)
		entry := n.At(i)
		if entry.Kind() != yamltree.KindMapping {
			return errAt(path, ErrWrongType, "template entry must be a mapping")
		}
		name := scalarField(entry, "name")
		if name == "" {
			return errAt(path+".name", ErrMissingField, "template needs a name")
		}
		if _, dup := s.templateIndex[name]; dup {
			return errAt(path+".name", ErrDuplicateName, "template %q already defined", name)
		}
		tpl := Template{
			Name:     name,
			Title:    scalarField(entry, "title"),
			Subtitle: scalarField(entry, "subtitle"),
			StyleRef: scalarField(entry, "style"),
		}
		if err := resolveStyleRef(s, tpl.StyleRef, path+".style"); err != nil {
			return err
		}
		widgets, err := compileWidgets(entry.Child("widgets"), s, path+".widgets")
		if err != nil {
			return err
		}
		tpl.Widgets = widgets
		s.templateIndex[name] = len(s.templates)
		s.templates = append(s.templates, tpl)
	}
	return nil
}

func compileComponents(n *yamltree.Node, s *Schema) error {
	if n == nil {
		return nil
	}
	if n.Kind() != yamltree.KindSequence {
		return errAt("components", ErrWrongType, "components block must be a sequence")
	}
	for i := 0; i < n.Len(); i++ {
		path := fmt.Sprintf("components[%d]", i)
		entry := n.At(i)
		if entry.Kind() != yamltree.KindMapping {
			return errAt(path, ErrWrongType, "component entry must be a mapping")
		}
		name := scalarField(entry, "name")
		if name == "" {
			return errAt(path+".name", ErrMissingField, "component needs a name")
		}
		if _, dup := s.componentIndex[name]; dup {
			return errAt(path+".name", ErrDuplicateName, "component %q already defined", name)
		}
		comp := Component{Name: name}
		if err := compileComponentLayout(entry.Child("layout"), &comp.Layout, path+".layout"); err != nil {
			return err
		}
		widgets, err := compileWidgets(entry.Child("widgets"), s, path+".widgets")
		if err != nil {
			return err
		}
		comp.Widgets = widgets
		s.componentIndex[name] = len(s.components)
		s.components = append(s.components, comp)
	}
	return nil
}

func compileComponentLayout(n *yamltree.Node, layout *ComponentLayout, path string) error {
	if n == nil {
		return nil
	}
	if n.Kind() != yamltree.KindMapping {
		return errAt(path, ErrWrongType, "component layout must be a mapping")
	}
	layout.Flow = scalarField(n, "flow")
	layout.MainAlign = scalarField(n, "main_align")
	layout.CrossAlign = scalarField(n, "cross_align")
	layout.Gap = intField(n, "gap", 0)
	layout.Padding = intField(n, "padding", 0)
	layout.BackgroundColor = scalarField(n, "background_color")
	return nil
}

func compileWidgets(n *yamltree.Node, s *Schema, path string) ([]Widget, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind() != yamltree.KindSequence {
		return nil, errAt(path, ErrWrongType, "widgets block must be a sequence")
	}
	widgets := make([]Widget, 0, n.Len())
	for i := 0; i < n.Len(); i++ {
		w, err := compileWidget(n.At(i), s, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		widgets = append(widgets, w)
	}
	return widgets, nil
}

func compileWidget(n *yamltree.Node, s *Schema, path string) (Widget, error) {
	var w Widget
	if n.Kind() != yamltree.KindMapping {
		return w, errAt(path, ErrWrongType, "widget entry must be a mapping")
	}
	typeStr := scalarField(n, "type")
	if typeStr == "" {
		return w, errAt(path+".type", ErrMissingField, "widget needs a type")
	}
	kind, ok := ParseWidgetKind(typeStr)
	if !ok {
		return w, errAt(path+".type", ErrUnknownWidget, "unsupported widget type %q", typeStr)
	}
	w.Kind = kind
	w.Text = scalarField(n, "text")
	w.Variant = scalarField(n, "variant")
	w.Size = scalarField(n, "size")
	w.StyleRef = scalarField(n, "style")
	if err := resolveStyleRef(s, w.StyleRef, path+".style"); err != nil {
		return w, err
	}
	if err := compileEvents(n.Child("events"), &w, path+".events"); err != nil {
		return w, err
	}
	bindings, err := collectBindings(n, w.Text, path)
	if err != nil {
		return w, err
	}
	w.Bindings = bindings
	return w, nil
}

func compileEvents(n *yamltree.Node, w *Widget, path string) error {
	if n == nil {
		return nil
	}
	if n.Kind() != yamltree.KindMapping {
		return errAt(path, ErrWrongType, "events block must be a mapping")
	}
	for _, child := range n.Children() {
		kind, ok := ParseEventKind(child.Key())
		if !ok {
			return errAt(path+"."+child.Key(), ErrUnknownEvent, "unsupported event %q", child.Key())
		}
		// Duplicate mapping keys resolve first-wins everywhere in the tree.
		if w.Events[kind] != nil {
			continue
		}
		list, err := action.FromNode(child)
		if err != nil {
			return errAt(path+"."+child.Key(), err, "%v", err)
		}
		w.Events[kind] = list
	}
	return nil
}

// collectBindings gathers the state keys a widget depends on: identifiers
// used inside the text's {{ }} spans, in first-use order, followed by any
// explicit state_bindings entries. Duplicates are dropped.
func collectBindings(n *yamltree.Node, text string, path string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, span := range expr.Interpolations(text) {
		// A span that fails to parse surfaces at compile time, not on the
		// first render.
		if err := expr.CollectIdentifiers(span, add); err != nil {
			return nil, errAt(path+".text", err, "bad expression %q: %v", span, err)
		}
	}
	explicit := n.Child("state_bindings")
	if explicit != nil {
		if explicit.Kind() != yamltree.KindSequence {
			return nil, errAt(path+".state_bindings", ErrWrongType, "state_bindings must be a sequence")
		}
		for i := 0; i < explicit.Len(); i++ {
			entry := explicit.At(i)
			if entry.Kind() != yamltree.KindScalar {
				return nil, errAt(fmt.Sprintf("%s.state_bindings[%d]", path, i), ErrWrongType, "binding must be a scalar")
			}
			add(entry.Scalar())
		}
	}
	return out, nil
}

func resolveStyleRef(s *Schema, ref, path string) error {
	if ref == "" {
		return nil
	}
	if _, ok := s.styleIndex[ref]; !ok {
		return errAt(path, ErrUnknownStyle, "style %q is not defined", ref)
	}
	return nil
}

func scalarField(n *yamltree.Node, key string) string {
	child := n.Child(key)
	if child == nil || child.Kind() != yamltree.KindScalar {
		return ""
	}
	return child.Scalar()
}

func intField(n *yamltree.Node, key string, def int) int {
	child := n.Child(key)
	if child == nil || child.Kind() != yamltree.KindScalar {
		return def
	}
	v, err := strconv.Atoi(child.Scalar())
	if err != nil {
		return def
	}
	return v
}

func boolField(n *yamltree.Node, key string, def bool) bool {
	child := n.Child(key)
	if child == nil || child.Kind() != yamltree.KindScalar {
		return def
	}
	v, err := strconv.ParseBool(child.Scalar())
	if err != nil {
		return def
	}
	return v
}
