package action

import (
	"errors"
	"fmt"
	"strings"

	"yamui/expr"
)

// Runtime is the host-supplied effect surface for navigation, modals,
// native calls, and event emission. Navigation methods are expected to
// defer through a render-safe queue rather than mutate the screen directly.
type Runtime interface {
	GotoScreen(screen string) error
	PushScreen(screen string) error
	PopScreen() error
	ShowModal(component string) error
	CloseModal() error
	CallNative(function string, args []string) error
	EmitEvent(event string, args []string) error
}

// EvalContext resolves identifiers in operands and accepts writes from set
// actions.
type EvalContext interface {
	expr.Resolver
	Set(key, value string) error
}

var errMissingOperand = errors.New("missing required operand")

// Execute runs every action in source order. A failing action does not stop
// the ones after it; the first error is retained and returned once the whole
// list has run.
func Execute(list List, rt Runtime, ctx EvalContext) error {
	var firstErr error
	for i, a := range list {
		if err := executeOne(a, rt, ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s action %d: %w", a.Kind, i, err)
		}
	}
	return firstErr
}

func executeOne(a Action, rt Runtime, ctx EvalContext) error {
	switch a.Kind {
	case KindSet:
		if a.Arg0 == "" {
			return fmt.Errorf("%w: set key", errMissingOperand)
		}
		key, err := evalArg(a.Arg0, ctx)
		if err != nil {
			return err
		}
		if key == "" {
			return fmt.Errorf("%w: set key resolved empty", errMissingOperand)
		}
		value, err := evalSetValue(a.Arg1, ctx)
		if err != nil {
			return err
		}
		return ctx.Set(key, value)

	case KindGoto:
		target, err := evalArg(a.Arg0, ctx)
		if err != nil {
			return err
		}
		return rt.GotoScreen(target)

	case KindPush:
		target, err := evalArg(a.Arg0, ctx)
		if err != nil {
			return err
		}
		return rt.PushScreen(target)

	case KindPop:
		return rt.PopScreen()

	case KindModal:
		component, err := evalArg(a.Arg0, ctx)
		if err != nil {
			return err
		}
		if component == "" {
			return fmt.Errorf("%w: modal component", errMissingOperand)
		}
		return rt.ShowModal(component)

	case KindCloseModal:
		return rt.CloseModal()

	case KindCall:
		fn, args, err := evalCallArgs(a, ctx)
		if err != nil {
			return err
		}
		return rt.CallNative(fn, args)

	case KindEmit:
		event, args, err := evalCallArgs(a, ctx)
		if err != nil {
			return err
		}
		return rt.EmitEvent(event, args)

	default:
		return fmt.Errorf("%w: %d", ErrUnknownKind, a.Kind)
	}
}

func evalCallArgs(a Action, ctx EvalContext) (string, []string, error) {
	name, err := evalArg(a.Arg0, ctx)
	if err != nil {
		return "", nil, err
	}
	if name == "" {
		return "", nil, fmt.Errorf("%w: %s target", errMissingOperand, a.Kind)
	}
	var args []string
	for _, raw := range a.Args() {
		v, err := evalArg(raw, ctx)
		if err != nil {
			return "", nil, err
		}
		args = append(args, v)
	}
	return name, args, nil
}

// evalArg interpolates {{ expression }} spans in an operand. Operands
// without spans pass through verbatim.
func evalArg(arg string, ctx EvalContext) (string, error) {
	return expr.Interpolate(arg, ctx)
}

// evalSetValue resolves the value operand of a set action. Operands with
// {{ }} spans are interpolated and a failing span fails the action, the
// same way it fails any other action's operand. Anything else is evaluated
// as a whole expression, falling back to the verbatim text when it does
// not parse or reference anything known (so `set(name, hello)` stores
// "hello").
func evalSetValue(arg string, ctx EvalContext) (string, error) {
	if arg == "" {
		return "", nil
	}
	if strings.Contains(arg, "{{") {
		return expr.Interpolate(arg, ctx)
	}
	if s, err := expr.EvalToString(arg, ctx); err == nil {
		return s, nil
	}
	return arg, nil
}
