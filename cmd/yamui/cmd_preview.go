package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"yamui/engine"
	"yamui/schema"
)

var flagPreviewTemplate string

var previewCmd = &cobra.Command{
	Use:   "preview <schema.yaml>",
	Short: "Render one template as a styled terminal mockup",
	Long: "Render one template as a styled terminal mockup.\n\n" +
		"Without --template the template is picked interactively from the\n" +
		"compiled document.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSchemaFile(args[0])
		if err != nil {
			return err
		}
		name := flagPreviewTemplate
		if name == "" {
			name, err = pickTemplate(s)
			if err != nil {
				return err
			}
		}
		tpl, ok := s.Template(name)
		if !ok {
			return fmt.Errorf("template %q not found in %s", name, args[0])
		}
		e, err := newEngine()
		if err != nil {
			return err
		}
		if err := e.LoadSchema(s); err != nil {
			return err
		}
		fmt.Println(renderTemplate(e, s, tpl, -1))
		return nil
	},
}

func init() {
	previewCmd.Flags().StringVarP(&flagPreviewTemplate, "template", "t", "",
		"template name to render (default: interactive pick)")
}

// pickTemplate offers the document's templates in a fuzzy picker.
func pickTemplate(s *schema.Schema) (string, error) {
	templates := s.Templates()
	if len(templates) == 0 {
		return "", errors.New("document has no templates")
	}
	if len(templates) == 1 {
		return templates[0].Name, nil
	}
	idx, err := fuzzyfinder.Find(templates,
		func(i int) string { return templates[i].Name },
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i < 0 {
				return ""
			}
			tpl := templates[i]
			var b strings.Builder
			fmt.Fprintf(&b, "%s\n%s\n\n", tpl.Title, tpl.Subtitle)
			for _, w := range tpl.Widgets {
				fmt.Fprintf(&b, "%s %q\n", w.Kind, w.Text)
			}
			return b.String()
		}))
	if err != nil {
		return "", err
	}
	return templates[idx].Name, nil
}

// renderTemplate draws a template as a lipgloss box stack. focus highlights
// the widget at that index; -1 highlights nothing.
func renderTemplate(e *engine.Engine, s *schema.Schema, tpl *schema.Template, focus int) string {
	layout := s.Layout()
	screen := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1, 2)
	if layout.BackgroundColor != "" {
		screen = screen.BorderForeground(lipgloss.Color("240"))
	}

	var rows []string
	title := lipgloss.NewStyle().Bold(true)
	if st, ok := s.Style(tpl.StyleRef); ok && st.AccentColor != "" {
		title = title.Foreground(lipgloss.Color(st.AccentColor))
	}
	rows = append(rows, title.Render(tpl.Title))
	if tpl.Subtitle != "" {
		rows = append(rows, dimStyle.Render(tpl.Subtitle))
	}
	rows = append(rows, "")

	for i := range tpl.Widgets {
		w := &tpl.Widgets[i]
		rows = append(rows, renderWidget(e, s, w, i == focus))
	}
	box := screen.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	if e.ActiveModal() != "" {
		box += "\n" + renderModal(e, s)
	}
	return box
}

func renderWidget(e *engine.Engine, s *schema.Schema, w *schema.Widget, focused bool) string {
	text := e.WidgetText(w)
	switch w.Kind {
	case schema.KindSpacer:
		return ""
	case schema.KindButton:
		btn := lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1)
		btn = applyStyleRef(btn, s, w.StyleRef)
		if focused {
			btn = btn.BorderForeground(lipgloss.Color("36")).Bold(true)
		}
		return btn.Render(text)
	default:
		lbl := applyStyleRef(lipgloss.NewStyle(), s, w.StyleRef)
		return lbl.Render(text)
	}
}

func renderModal(e *engine.Engine, s *schema.Schema) string {
	comp, ok := s.Component(e.ActiveModal())
	if !ok {
		return ""
	}
	var rows []string
	rows = append(rows, headingStyle.Render(comp.Name))
	for i := range comp.Widgets {
		rows = append(rows, renderWidget(e, s, &comp.Widgets[i], false))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		Padding(0, 2).
		Render(lipgloss.JoinVertical(lipgloss.Center, rows...))
}

func applyStyleRef(base lipgloss.Style, s *schema.Schema, ref string) lipgloss.Style {
	st, ok := s.Style(ref)
	if !ok {
		return base
	}
	if st.BackgroundColor != "" {
		base = base.Background(lipgloss.Color(st.BackgroundColor))
	}
	if st.TextColor != "" {
		base = base.Foreground(lipgloss.Color(st.TextColor))
	}
	if st.PaddingX > 0 || st.PaddingY > 0 {
		base = base.Padding(st.PaddingY, st.PaddingX)
	}
	if st.Width > 0 {
		base = base.Width(st.Width)
	}
	switch st.Align {
	case "center":
		base = base.Align(lipgloss.Center)
	case "right":
		base = base.Align(lipgloss.Right)
	}
	return base
}
