package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"yamui/expr"
	"yamui/state"
)

var evalCmd = &cobra.Command{
	Use:   "eval [schema.yaml]",
	Short: "Interactive expression REPL against a state store",
	Long: "Evaluate expressions the way widget bindings do. With a schema\n" +
		"argument the store is seeded from its state block.\n\n" +
		"Commands: :set <key> <value>, :unset <key>, :state, :quit",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := state.New()
		if len(args) == 1 {
			s, err := loadSchemaFile(args[0])
			if err != nil {
				return err
			}
			store.Seed(s.State())
		}

		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "expr> ",
			HistoryLimit:    500,
			InterruptPrompt: "^C",
		})
		if err != nil {
			return err
		}
		defer rl.Close()

		for {
			line, err := rl.Readline()
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if err != nil {
				return nil // io.EOF or closed terminal
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, ":") {
				if quit := replCommand(store, line); quit {
					return nil
				}
				continue
			}
			out, err := expr.EvalToString(line, store)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Printf("%q\n", out)
		}
	},
}

// replCommand handles the colon commands; returns true on :quit.
func replCommand(store *state.Store, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q", ":exit":
		return true
	case ":set":
		if len(fields) < 3 {
			fmt.Println("usage: :set <key> <value>")
			return false
		}
		if err := store.Set(fields[1], strings.Join(fields[2:], " ")); err != nil {
			fmt.Println("error:", err)
		}
	case ":unset":
		if len(fields) != 2 {
			fmt.Println("usage: :unset <key>")
			return false
		}
		// Clearing one key: rebuild without it.
		vals := map[string]string{}
		for _, k := range store.Keys() {
			if k != fields[1] {
				vals[k] = store.GetString(k, "")
			}
		}
		store.Clear()
		store.Seed(vals)
	case ":state":
		if len(store.Keys()) == 0 {
			fmt.Println("(empty)")
			return false
		}
		for _, k := range store.Keys() {
			fmt.Printf("%s = %q\n", k, store.GetString(k, ""))
		}
	default:
		fmt.Println("unknown command", fields[0])
	}
	return false
}
