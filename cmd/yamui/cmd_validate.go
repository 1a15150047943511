package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <schema.yaml> [more.yaml ...]",
	Short: "Compile schema documents and report errors",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var failed int
		for _, path := range args {
			s, err := loadSchemaFile(path)
			if err != nil {
				failed++
				fmt.Printf("%v\n", err)
				continue
			}
			fmt.Printf("%s: ok (%d styles, %d templates, %d components)\n",
				path, len(s.Styles()), len(s.Templates()), len(s.Components()))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d documents failed", failed, len(args))
		}
		return nil
	},
}
