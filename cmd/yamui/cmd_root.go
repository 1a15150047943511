package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"yamui/engine"
	"yamui/schema"
	"yamui/telemetry"
)

var rootCmd = &cobra.Command{
	Use:   appName + " <command>",
	Short: "Declarative YAML UI engine toolkit",
	Long: "Build, inspect and drive YAML UI schemas from the terminal.\n\n" +
		"Schemas describe screens, styles and widget actions; the engine\n" +
		"compiles them and runs widget events against live state.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// loadSchemaFile parses and compiles one schema document.
func loadSchemaFile(path string) (*schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := schema.CompileBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// newEngine builds an engine honoring the global logging flags.
func newEngine() (*engine.Engine, error) {
	log := telemetry.New()
	level, err := parseLevel(flagLogLevel)
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)
	if flagVerbose {
		log.SetSink(func(level telemetry.Level, cat, msg string) {
			fmt.Fprintf(os.Stderr, "[%s] %s: %s\n", level, cat, msg)
		})
	}
	return engine.New(engine.WithLogger(log)), nil
}

func parseLevel(s string) (telemetry.Level, error) {
	switch s {
	case "error":
		return telemetry.LevelError, nil
	case "warn":
		return telemetry.LevelWarn, nil
	case "info":
		return telemetry.LevelInfo, nil
	case "debug":
		return telemetry.LevelDebug, nil
	case "trace":
		return telemetry.LevelTrace, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
