package action

import (
	"fmt"
	"strings"

	"yamui/yamltree"
)

const maxArgs = 3

// FromNode compiles an event body node into a List.
//
// A scalar is the single-action shorthand "kind" or "kind(arg0, arg1)".
// A sequence holds one action per element: either the same scalar shorthand
// or a one-key mapping whose key names the kind and whose value supplies the
// operands. Compilation is all-or-nothing; no partial list is returned.
func FromNode(n *yamltree.Node) (List, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind() {
	case yamltree.KindScalar:
		a, err := parseShorthand(n.Scalar())
		if err != nil {
			return nil, err
		}
		return List{a}, nil

	case yamltree.KindSequence:
		list := make(List, 0, n.Len())
		for i, child := range n.Children() {
			a, err := compileEntry(child)
			if err != nil {
				return nil, fmt.Errorf("action %d: %w", i, err)
			}
			list = append(list, a)
		}
		return list, nil

	default:
		return nil, fmt.Errorf("%w: got %s", ErrBadEventNode, n.Kind())
	}
}

func compileEntry(n *yamltree.Node) (Action, error) {
	switch n.Kind() {
	case yamltree.KindScalar:
		return parseShorthand(n.Scalar())

	case yamltree.KindMapping:
		if n.Len() != 1 {
			return Action{}, fmt.Errorf("%w: mapping entry must have exactly one key", ErrMalformedOperand)
		}
		entry := n.At(0)
		kind, ok := ParseKind(entry.Key())
		if !ok {
			return Action{}, fmt.Errorf("%w: %q", ErrUnknownKind, entry.Key())
		}
		a := Action{Kind: kind}
		switch entry.Kind() {
		case yamltree.KindScalar:
			args, err := splitArgs(entry.Scalar())
			if err != nil {
				return Action{}, err
			}
			fillArgs(&a, args)
		case yamltree.KindSequence:
			var args []string
			for _, item := range entry.Children() {
				if item.Kind() != yamltree.KindScalar {
					return Action{}, fmt.Errorf("%w: operand elements must be scalars", ErrMalformedOperand)
				}
				args = append(args, item.Scalar())
			}
			fillArgs(&a, args)
		default:
			return Action{}, fmt.Errorf("%w: operand must be a scalar or sequence", ErrMalformedOperand)
		}
		return a, nil

	default:
		return Action{}, fmt.Errorf("%w: sequence elements must be scalars or one-key mappings", ErrMalformedOperand)
	}
}

// parseShorthand parses "kind" or "kind(arg0, arg1, arg2)".
func parseShorthand(text string) (Action, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Action{}, fmt.Errorf("%w: empty action", ErrMalformedOperand)
	}

	name := trimmed
	argBlock := ""
	if open := strings.IndexByte(trimmed, '('); open >= 0 {
		name = strings.TrimSpace(trimmed[:open])
		argBlock = trimmed[open+1:]
		if close := strings.LastIndexByte(argBlock, ')'); close >= 0 {
			argBlock = argBlock[:close]
		}
	}

	kind, ok := ParseKind(name)
	if !ok {
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}

	a := Action{Kind: kind}
	if argBlock != "" {
		args, err := splitArgs(argBlock)
		if err != nil {
			return Action{}, err
		}
		fillArgs(&a, args)
	}
	return a, nil
}

func fillArgs(a *Action, args []string) {
	if len(args) > 0 {
		a.Arg0 = args[0]
	}
	if len(args) > 1 {
		a.Arg1 = args[1]
	}
	if len(args) > 2 {
		a.Arg2 = args[2]
	}
}

// splitArgs splits an operand block on top-level commas. Commas inside
// quotes and inside {{ }} expression spans do not split. Each argument is
// trimmed and stripped of one layer of surrounding quotes. More than
// maxArgs arguments is an error rather than silent truncation.
func splitArgs(block string) ([]string, error) {
	var (
		args       []string
		start      int
		inQuote    byte
		braceDepth int
	)

	flush := func(end int) error {
		arg := strings.TrimSpace(block[start:end])
		if arg == "" {
			return nil
		}
		arg = stripQuotes(arg)
		if len(args) == maxArgs {
			return fmt.Errorf("%w: more than %d arguments", ErrMalformedOperand, maxArgs)
		}
		args = append(args, arg)
		return nil
	}

	for i := 0; i < len(block); i++ {
		ch := block[i]
		switch {
		case inQuote != 0:
			if ch == inQuote && (i == 0 || block[i-1] != '\\') {
				inQuote = 0
			}
		case ch == '"' || ch == '\'':
			inQuote = ch
		case ch == '{' && i+1 < len(block) && block[i+1] == '{':
			braceDepth++
			i++
		case ch == '}' && i+1 < len(block) && block[i+1] == '}' && braceDepth > 0:
			braceDepth--
			i++
		case ch == ',' && braceDepth == 0:
			if err := flush(i); err != nil {
				return nil, err
			}
			start = i + 1
		}
	}
	if err := flush(len(block)); err != nil {
		return nil, err
	}
	return args, nil
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
