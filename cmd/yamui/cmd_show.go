package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"yamui/schema"
)

var showCmd = &cobra.Command{
	Use:   "show <schema.yaml>",
	Short: "Print a compiled schema overview",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSchemaFile(args[0])
		if err != nil {
			return err
		}
		fmt.Print(renderOverview(s))
		return nil
	},
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	nameStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

func renderOverview(s *schema.Schema) string {
	var b strings.Builder

	app := s.App()
	b.WriteString(headingStyle.Render("app") + "\n")
	fmt.Fprintf(&b, "  initial screen: %s\n", nameStyle.Render(s.InitialScreen()))
	if app.Locale != "" {
		fmt.Fprintf(&b, "  locale: %s\n", app.Locale)
	}

	if len(s.State()) > 0 {
		b.WriteString(headingStyle.Render("state") + "\n")
		for k, v := range s.State() {
			fmt.Fprintf(&b, "  %s = %q\n", k, v)
		}
	}

	b.WriteString(headingStyle.Render("styles") + "\n")
	if len(s.Styles()) == 0 {
		b.WriteString(dimStyle.Render("  (none)") + "\n")
	}
	for _, st := range s.Styles() {
		swatch := lipgloss.NewStyle()
		if st.BackgroundColor != "" {
			swatch = swatch.Background(lipgloss.Color(st.BackgroundColor))
		}
		if st.TextColor != "" {
			swatch = swatch.Foreground(lipgloss.Color(st.TextColor))
		}
		fmt.Fprintf(&b, "  %s %s %s\n",
			nameStyle.Render(st.Name),
			swatch.Render(" abc "),
			dimStyle.Render(fmt.Sprintf("radius=%d padding=%d", st.Radius, st.Padding)))
	}

	b.WriteString(headingStyle.Render("templates") + "\n")
	for _, tpl := range s.Templates() {
		fmt.Fprintf(&b, "  %s %s\n", nameStyle.Render(tpl.Name),
			dimStyle.Render(fmt.Sprintf("(%d widgets)", len(tpl.Widgets))))
		for i, w := range tpl.Widgets {
			fmt.Fprintf(&b, "    [%d] %s %q%s\n", i, w.Kind, w.Text, describeEvents(&w))
		}
	}

	if len(s.Components()) > 0 {
		b.WriteString(headingStyle.Render("components") + "\n")
		for _, c := range s.Components() {
			fmt.Fprintf(&b, "  %s %s\n", nameStyle.Render(c.Name),
				dimStyle.Render(fmt.Sprintf("(%d widgets)", len(c.Widgets))))
		}
	}
	return b.String()
}

func describeEvents(w *schema.Widget) string {
	var bound []string
	for k := schema.EventKind(0); k < schema.EventCount; k++ {
		if n := len(w.Events[k]); n > 0 {
			bound = append(bound, fmt.Sprintf("%s:%d", k, n))
		}
	}
	if len(bound) == 0 {
		return ""
	}
	return " " + dimStyle.Render("events["+strings.Join(bound, " ")+"]")
}
