package expr

import (
	"math"
	"strconv"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	NullValue ValueKind = iota
	BoolValue
	NumberValue
	StringValue
)

func (k ValueKind) String() string {
	switch k {
	case BoolValue:
		return "bool"
	case NumberValue:
		return "number"
	case StringValue:
		return "string"
	default:
		return "null"
	}
}

// Value is the result of evaluating an expression: null, a bool, a
// double-precision number, or a string. The zero Value is null.
type Value struct {
	kind ValueKind
	num  float64
	b    bool
	str  string
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Bool wraps a bool.
func Bool(b bool) Value { return Value{kind: BoolValue, b: b} }

// Number wraps a float64.
func Number(n float64) Value { return Value{kind: NumberValue, num: n} }

// String wraps a string.
func String(s string) Value { return Value{kind: StringValue, str: s} }

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == NullValue }

// Num returns the numeric value, coercing the other variants the way the
// evaluator's arithmetic does: bools become 0/1, strings are parsed as a
// number when possible, null is 0.
func (v Value) Num() float64 {
	switch v.kind {
	case NumberValue:
		return v.num
	case BoolValue:
		if v.b {
			return 1
		}
		return 0
	case StringValue:
		n, err := strconv.ParseFloat(v.str, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Truthy reports the value's boolean interpretation: false for null, the
// bool itself, non-zero for numbers, non-empty for strings.
func (v Value) Truthy() bool {
	switch v.kind {
	case BoolValue:
		return v.b
	case NumberValue:
		return math.Abs(v.num) > 1e-9
	case StringValue:
		return v.str != ""
	default:
		return false
	}
}

// Text stringifies the value: null is the empty string, bools are
// "true"/"false", numbers use the shortest decimal form that round-trips,
// strings are returned verbatim.
func (v Value) Text() string {
	switch v.kind {
	case StringValue:
		return v.str
	case NumberValue:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case BoolValue:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// equal implements the evaluator's loose equality ladder: string comparison
// when either side is a string, boolean comparison when either side is a
// bool, otherwise numeric comparison with an epsilon.
func equal(a, b Value) bool {
	if a.kind == StringValue || b.kind == StringValue {
		return a.Text() == b.Text()
	}
	if a.kind == BoolValue || b.kind == BoolValue {
		return a.Truthy() == b.Truthy()
	}
	return math.Abs(a.Num()-b.Num()) < 1e-6
}
