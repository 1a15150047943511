// Package expr evaluates the small expression language used in widget text
// bindings and action operands: literals, host-resolved identifiers,
// arithmetic, comparison, logic, string concatenation via +, ternary, and
// null coalescing.
package expr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSyntax           = errors.New("syntax error")
	ErrUnresolvedSymbol = errors.New("unresolved symbol")
	ErrTypeMismatch     = errors.New("operand type mismatch")
	ErrDivideByZero     = errors.New("division by zero")
)

// Error reports an expression failure with its byte position in the source.
type Error struct {
	Pos int
	Msg string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("expr: offset %d: %s", e.Pos, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Resolver supplies values for identifiers. The second return reports
// whether the identifier is known; false makes evaluation fail with
// ErrUnresolvedSymbol.
type Resolver interface {
	Resolve(name string) (Value, bool)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(name string) (Value, bool)

func (f ResolverFunc) Resolve(name string) (Value, bool) { return f(name) }

// Eval parses and evaluates an expression in one step.
func Eval(src string, r Resolver) (Value, error) {
	c, err := Compile(src)
	if err != nil {
		return Null(), err
	}
	return c.Eval(r)
}

// EvalToString evaluates then stringifies per Value.Text.
func EvalToString(src string, r Resolver) (string, error) {
	v, err := Eval(src, r)
	if err != nil {
		return "", err
	}
	return v.Text(), nil
}

// CollectIdentifiers parses src and invokes fn once per identifier
// occurrence in source order, without evaluating anything.
func CollectIdentifiers(src string, fn func(name string)) error {
	c, err := Compile(src)
	if err != nil {
		return err
	}
	walkIdents(c.root, fn)
	return nil
}

// Eval evaluates a compiled expression against the resolver. A nil resolver
// makes every identifier unresolved.
func (c *Compiled) Eval(r Resolver) (Value, error) {
	return eval(c.root, r)
}

func eval(n node, r Resolver) (Value, error) {
	switch x := n.(type) {
	case *boolLit:
		return Bool(x.value), nil
	case *numberLit:
		return Number(x.value), nil
	case *stringLit:
		return String(x.value), nil
	case *nullLit:
		return Null(), nil

	case *identifier:
		if r != nil {
			if v, ok := r.Resolve(x.name); ok {
				return v, nil
			}
		}
		return Null(), &Error{Pos: x.at, Msg: fmt.Sprintf("unresolved symbol %q", x.name), Err: ErrUnresolvedSymbol}

	case *unaryOp:
		v, err := eval(x.operand, r)
		if err != nil {
			return Null(), err
		}
		if x.op == TokenBang {
			return Bool(!v.Truthy()), nil
		}
		return Number(-v.Num()), nil

	case *binaryOp:
		return evalBinary(x, r)

	case *conditional:
		cond, err := eval(x.cond, r)
		if err != nil {
			return Null(), err
		}
		if cond.Truthy() {
			return eval(x.then, r)
		}
		return eval(x.els, r)

	default:
		return Null(), &Error{Msg: fmt.Sprintf("unknown node %T", n), Err: ErrSyntax}
	}
}

func evalBinary(x *binaryOp, r Resolver) (Value, error) {
	// Short-circuit operators evaluate the right side only when needed.
	switch x.op {
	case TokenAnd:
		left, err := eval(x.left, r)
		if err != nil {
			return Null(), err
		}
		if !left.Truthy() {
			return Bool(false), nil
		}
		right, err := eval(x.right, r)
		if err != nil {
			return Null(), err
		}
		return Bool(right.Truthy()), nil

	case TokenOr:
		left, err := eval(x.left, r)
		if err != nil {
			return Null(), err
		}
		if left.Truthy() {
			return Bool(true), nil
		}
		right, err := eval(x.right, r)
		if err != nil {
			return Null(), err
		}
		return Bool(right.Truthy()), nil

	case TokenCoalesce:
		left, err := eval(x.left, r)
		if err != nil {
			return Null(), err
		}
		// Null and the empty string both fall through to the right side.
		if !left.IsNull() && !(left.Kind() == StringValue && left.Text() == "") {
			return left, nil
		}
		return eval(x.right, r)
	}

	left, err := eval(x.left, r)
	if err != nil {
		return Null(), err
	}
	right, err := eval(x.right, r)
	if err != nil {
		return Null(), err
	}

	switch x.op {
	case TokenPlus:
		if left.Kind() == StringValue || right.Kind() == StringValue {
			return String(left.Text() + right.Text()), nil
		}
		return Number(left.Num() + right.Num()), nil
	case TokenMinus:
		return Number(left.Num() - right.Num()), nil
	case TokenStar:
		return Number(left.Num() * right.Num()), nil
	case TokenSlash:
		if right.Num() == 0 {
			return Null(), &Error{Pos: x.at, Msg: "division by zero", Err: ErrDivideByZero}
		}
		return Number(left.Num() / right.Num()), nil

	case TokenEq:
		return Bool(equal(left, right)), nil
	case TokenNeq:
		return Bool(!equal(left, right)), nil

	case TokenLt, TokenLte, TokenGt, TokenGte:
		if left.Kind() != NumberValue || right.Kind() != NumberValue {
			return Null(), &Error{
				Pos: x.at,
				Msg: fmt.Sprintf("cannot order %s and %s", left.Kind(), right.Kind()),
				Err: ErrTypeMismatch,
			}
		}
		l, rr := left.Num(), right.Num()
		switch x.op {
		case TokenLt:
			return Bool(l < rr), nil
		case TokenLte:
			return Bool(l <= rr), nil
		case TokenGt:
			return Bool(l > rr), nil
		default:
			return Bool(l >= rr), nil
		}

	default:
		return Null(), &Error{Pos: x.at, Msg: "unknown operator", Err: ErrSyntax}
	}
}

// Interpolate replaces every {{ expression }} span in text with its
// stringified evaluation. Text without spans is returned verbatim. An
// unterminated opener is left as literal text.
func Interpolate(text string, r Resolver) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	var b strings.Builder
	rest := text
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		close := strings.Index(rest[open:], "}}")
		if close < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		b.WriteString(rest[:open])
		inner := rest[open+2 : open+close]
		s, err := EvalToString(strings.TrimSpace(inner), r)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
		rest = rest[open+close+2:]
	}
}

// Interpolations returns the inner expression of every {{ ... }} span in
// text, trimmed, in order of appearance.
func Interpolations(text string) []string {
	var out []string
	rest := text
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			return out
		}
		close := strings.Index(rest[open:], "}}")
		if close < 0 {
			return out
		}
		out = append(out, strings.TrimSpace(rest[open+2:open+close]))
		rest = rest[open+close+2:]
	}
}
