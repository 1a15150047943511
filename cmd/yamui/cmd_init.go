package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Scaffold a new schema document interactively",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "ui.yaml"
		if len(args) == 1 {
			path = args[0]
		}

		var (
			screenName = "home"
			title      = "Home"
			accent     = "#4FC3F7"
			addCounter bool
		)

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Initial screen name").
					Value(&screenName).
					Validate(func(s string) error {
						if s == "" {
							return fmt.Errorf("screen name is required")
						}
						return nil
					}),
				huh.NewInput().
					Title("Screen title").
					Value(&title),
				huh.NewSelect[string]().
					Title("Accent color").
					Options(
						huh.NewOption("Sky", "#4FC3F7"),
						huh.NewOption("Amber", "#FFB300"),
						huh.NewOption("Mint", "#4DB6AC"),
					).
					Value(&accent),
				huh.NewConfirm().
					Title("Include a counter example?").
					Value(&addCounter),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}

		doc := scaffoldDoc(screenName, title, accent, addCounter)
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func scaffoldDoc(screen, title, accent string, counter bool) string {
	doc := fmt.Sprintf(`app:
  initial_screen: %[1]s
styles:
  - name: primary
    background_color: "#102030"
    text_color: "#FFFFFF"
    accent_color: "%[2]s"
templates:
  - name: %[1]s
    title: %[3]q
    style: primary
    widgets:
      - type: label
        text: Welcome
`, screen, accent, title)
	if counter {
		doc += `      - type: label
        text: "Count: {{ count }}"
      - type: button
        text: Bump
        events:
          click: "set(count, count + 1)"
state:
  count: 0
`
	}
	return doc
}
