package expr

import (
	"errors"
	"strings"
	"testing"
)

func mustContain(t *testing.T, got string, subs ...string) {
	t.Helper()
	for _, sub := range subs {
		if !strings.Contains(got, sub) {
			t.Fatalf("expected %q to contain %q", got, sub)
		}
	}
}

// testResolver resolves from a plain map; values are strings, the common
// case for host state.
func testResolver(vals map[string]Value) Resolver {
	return ResolverFunc(func(name string) (Value, bool) {
		v, ok := vals[name]
		return v, ok
	})
}

func evalString(t *testing.T, src string, r Resolver) string {
	t.Helper()
	s, err := EvalToString(src, r)
	if err != nil {
		t.Fatalf("EvalToString(%q): %v", src, err)
	}
	return s
}

func TestEvalToString_Literals(t *testing.T) {
	cases := []struct{ src, want string }{
		{"true", "true"},
		{"false", "false"},
		{"null", ""},
		{"42", "42"},
		{"3.5", "3.5"},
		{`"hello"`, "hello"},
		{"1+2", "3"},
		{`"a"+"b"`, "ab"},
		{"2*3+1", "7"},
		{"2+3*2", "8"},
		{"(2+3)*2", "10"},
		{"10/4", "2.5"},
		{"-4", "-4"},
		{"!true", "false"},
		{"!0", "true"},
		{"1 == 1", "true"},
		{"1 != 1", "false"},
		{"2 < 3", "true"},
		{"3 <= 3", "true"},
		{"2 > 3", "false"},
		{"3 >= 4", "false"},
		{"true && false", "false"},
		{"true || false", "true"},
		{"1 ? \"yes\" : \"no\"", "yes"},
		{"0 ? \"yes\" : \"no\"", "no"},
		{`null ?? "fallback"`, "fallback"},
		{`"" ?? "fallback"`, "fallback"},
		{`"set" ?? "fallback"`, "set"},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			if got := evalString(t, tc.src, nil); got != tc.want {
				t.Fatalf("EvalToString(%q) = %q, want %q", tc.src, got, tc.want)
			}
		})
	}
}

func TestEval_Identifiers(t *testing.T) {
	r := testResolver(map[string]Value{
		"count":      Number(3),
		"user.name":  String("ada"),
		"wifi-state": String("up"),
		"enabled":    Bool(true),
	})

	t.Run("resolved values", func(t *testing.T) {
		if got := evalString(t, "count + 1", r); got != "4" {
			t.Fatalf("got %q", got)
		}
		if got := evalString(t, `"hi " + user.name`, r); got != "hi ada" {
			t.Fatalf("got %q", got)
		}
		if got := evalString(t, "wifi-state", r); got != "up" {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("unresolved symbol", func(t *testing.T) {
		_, err := Eval("missing + 1", r)
		if !errors.Is(err, ErrUnresolvedSymbol) {
			t.Fatalf("expected ErrUnresolvedSymbol, got %v", err)
		}
		mustContain(t, err.Error(), "missing")
	})

	t.Run("nil resolver leaves everything unresolved", func(t *testing.T) {
		_, err := Eval("anything", nil)
		if !errors.Is(err, ErrUnresolvedSymbol) {
			t.Fatalf("expected ErrUnresolvedSymbol, got %v", err)
		}
	})

	t.Run("short-circuit skips unresolved right side", func(t *testing.T) {
		if got := evalString(t, "false && missing", r); got != "false" {
			t.Fatalf("got %q", got)
		}
		if got := evalString(t, "enabled || missing", r); got != "true" {
			t.Fatalf("got %q", got)
		}
	})
}

func TestEval_TypeErrors(t *testing.T) {
	t.Run("ordering mixed types", func(t *testing.T) {
		_, err := Eval(`"a" < 1`, nil)
		if !errors.Is(err, ErrTypeMismatch) {
			t.Fatalf("expected ErrTypeMismatch, got %v", err)
		}
	})

	t.Run("division by zero", func(t *testing.T) {
		_, err := Eval("1 / 0", nil)
		if !errors.Is(err, ErrDivideByZero) {
			t.Fatalf("expected ErrDivideByZero, got %v", err)
		}
	})

	t.Run("loose equality across types", func(t *testing.T) {
		if got := evalString(t, `1 == "1"`, nil); got != "true" {
			t.Fatalf("number/string equality: got %q", got)
		}
		if got := evalString(t, `true == 1`, nil); got != "true" {
			t.Fatalf("bool/number equality: got %q", got)
		}
	})
}

func TestCompile_SyntaxErrors(t *testing.T) {
	cases := []string{
		"1 +",
		"(1",
		`"unterminated`,
		"? : 1",
		"1 2",
		"&& true",
		"1 ? 2",
		"",
	}
	for _, src := range cases {
		t.Run(src, func(t *testing.T) {
			_, err := Compile(src)
			if !errors.Is(err, ErrSyntax) {
				t.Fatalf("Compile(%q): expected ErrSyntax, got %v", src, err)
			}
		})
	}
}

func TestCompile_ReusableAcrossResolvers(t *testing.T) {
	c, err := Compile("n * 2")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	for want, n := range map[string]float64{"4": 2, "10": 5} {
		v, err := c.Eval(testResolver(map[string]Value{"n": Number(n)}))
		if err != nil {
			t.Fatalf("eval: %v", err)
		}
		if v.Text() != want {
			t.Fatalf("got %q, want %q", v.Text(), want)
		}
	}
}

func TestCollectIdentifiers(t *testing.T) {
	t.Run("source order with duplicates", func(t *testing.T) {
		var got []string
		err := CollectIdentifiers(`a + b * a ? c : d.e`, func(name string) {
			got = append(got, name)
		})
		if err != nil {
			t.Fatalf("collect: %v", err)
		}
		want := "a,b,a,c,d.e"
		if strings.Join(got, ",") != want {
			t.Fatalf("got %v, want %s", got, want)
		}
	})

	t.Run("does not evaluate", func(t *testing.T) {
		// A divide-by-zero must not surface from a parse-only pass.
		if err := CollectIdentifiers("x / 0", func(string) {}); err != nil {
			t.Fatalf("collect: %v", err)
		}
	})

	t.Run("syntax error propagates", func(t *testing.T) {
		if err := CollectIdentifiers("x +", func(string) {}); !errors.Is(err, ErrSyntax) {
			t.Fatalf("expected ErrSyntax, got %v", err)
		}
	})
}

func TestValue_Coercion(t *testing.T) {
	t.Run("truthiness", func(t *testing.T) {
		for _, v := range []Value{Bool(true), Number(1), Number(-0.5), String("x")} {
			if !v.Truthy() {
				t.Fatalf("%s should be truthy", v.Text())
			}
		}
		for _, v := range []Value{Null(), Bool(false), Number(0), String("")} {
			if v.Truthy() {
				t.Fatalf("%q should be falsy", v.Text())
			}
		}
	})

	t.Run("number text is shortest round-trip", func(t *testing.T) {
		cases := map[float64]string{3: "3", 2.5: "2.5", 0.1: "0.1", -7: "-7"}
		for n, want := range cases {
			if got := Number(n).Text(); got != want {
				t.Fatalf("Number(%v).Text() = %q, want %q", n, got, want)
			}
		}
	})

	t.Run("zero value is null", func(t *testing.T) {
		var v Value
		if !v.IsNull() || v.Text() != "" {
			t.Fatal("zero Value must behave as null")
		}
	})
}

func TestInterpolate(t *testing.T) {
	r := testResolver(map[string]Value{
		"name": String("ada"),
		"n":    Number(2),
	})

	t.Run("plain text passes through", func(t *testing.T) {
		got, err := Interpolate("no spans here", r)
		if err != nil || got != "no spans here" {
			t.Fatalf("got %q, %v", got, err)
		}
	})

	t.Run("spans replaced in place", func(t *testing.T) {
		got, err := Interpolate("hi {{ name }}, {{ n * 2 }} items", r)
		if err != nil {
			t.Fatalf("interpolate: %v", err)
		}
		if got != "hi ada, 4 items" {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("unterminated opener stays literal", func(t *testing.T) {
		got, err := Interpolate("oops {{ name", r)
		if err != nil || got != "oops {{ name" {
			t.Fatalf("got %q, %v", got, err)
		}
	})

	t.Run("evaluation error propagates", func(t *testing.T) {
		_, err := Interpolate("x {{ missing }}", r)
		if !errors.Is(err, ErrUnresolvedSymbol) {
			t.Fatalf("expected ErrUnresolvedSymbol, got %v", err)
		}
	})

	t.Run("Interpolations lists spans", func(t *testing.T) {
		got := Interpolations("a {{ x }} b {{ y + 1 }} c")
		if strings.Join(got, "|") != "x|y + 1" {
			t.Fatalf("got %v", got)
		}
	})
}
