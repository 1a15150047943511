// Package action compiles widget event bodies into executable action lists
// and runs them against a host-supplied runtime.
package action

import (
	"errors"
	"strings"
)

var (
	ErrUnknownKind      = errors.New("unknown action kind")
	ErrMalformedOperand = errors.New("malformed action operand")
	ErrBadEventNode     = errors.New("event body must be a scalar or sequence")
)

// Kind identifies what an Action does when executed.
type Kind int

const (
	KindSet Kind = iota
	KindGoto
	KindPush
	KindPop
	KindModal
	KindCloseModal
	KindCall
	KindEmit
)

var kindNames = map[Kind]string{
	KindSet:        "set",
	KindGoto:       "goto",
	KindPush:       "push",
	KindPop:        "pop",
	KindModal:      "modal",
	KindCloseModal: "close_modal",
	KindCall:       "call",
	KindEmit:       "emit",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "invalid"
}

// ParseKind maps an action name to its Kind, case-insensitively.
func ParseKind(name string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "set":
		return KindSet, true
	case "goto":
		return KindGoto, true
	case "push":
		return KindPush, true
	case "pop":
		return KindPop, true
	case "modal":
		return KindModal, true
	case "close_modal":
		return KindCloseModal, true
	case "call":
		return KindCall, true
	case "emit":
		return KindEmit, true
	default:
		return 0, false
	}
}

// Action is one compiled operation. Up to three string operands; their
// meaning depends on Kind (set: key, expression; call: function, two args;
// emit: event, two args; goto/push/modal: one target).
type Action struct {
	Kind Kind
	Arg0 string
	Arg1 string
	Arg2 string
}

// Args returns the non-empty trailing operands after Arg0, for call/emit
// argument vectors.
func (a Action) Args() []string {
	var out []string
	if a.Arg1 != "" {
		out = append(out, a.Arg1)
	}
	if a.Arg2 != "" {
		out = append(out, a.Arg2)
	}
	return out
}

// List is an ordered, compiled action sequence. It is built once per event
// body and may be executed any number of times.
type List []Action
