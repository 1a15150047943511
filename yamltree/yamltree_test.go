package yamltree

import (
	"errors"
	"fmt"
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

func mustParse(t *testing.T, src string) *Node {
	t.Helper()
	root, err := ParseString(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return root
}

func snapshotTree(n *Node) string {
	var b strings.Builder
	var walk func(*Node, int)
	walk = func(node *Node, depth int) {
		indent := strings.Repeat("  ", depth)
		switch node.Kind() {
		case KindScalar:
			fmt.Fprintf(&b, "%sS key=%q text=%q\n", indent, node.Key(), node.Scalar())
		case KindMapping:
			fmt.Fprintf(&b, "%sM key=%q len=%d\n", indent, node.Key(), node.Len())
			for _, c := range node.Children() {
				walk(c, depth+1)
			}
		case KindSequence:
			fmt.Fprintf(&b, "%sQ key=%q len=%d\n", indent, node.Key(), node.Len())
			for _, c := range node.Children() {
				walk(c, depth+1)
			}
		}
	}
	walk(n, 0)
	return b.String()
}

func TestParse_BasicShapes(t *testing.T) {
	t.Run("mapping of scalars", func(t *testing.T) {
		root := mustParse(t, "a: 1\nb: two\n")
		if root.Kind() != KindMapping {
			t.Fatalf("expected mapping root, got %s", root.Kind())
		}
		if root.Len() != 2 {
			t.Fatalf("expected 2 children, got %d", root.Len())
		}
		if got := root.Child("b").Scalar(); got != "two" {
			t.Fatalf("expected %q, got %q", "two", got)
		}
	})

	t.Run("sequence root", func(t *testing.T) {
		root := mustParse(t, "- one\n- two\n- three\n")
		if root.Kind() != KindSequence {
			t.Fatalf("expected sequence root, got %s", root.Kind())
		}
		if got := root.At(2).Scalar(); got != "three" {
			t.Fatalf("expected %q, got %q", "three", got)
		}
	})

	t.Run("nested tree snapshot", func(t *testing.T) {
		root := mustParse(t, `
styles:
  - name: primary
    radius: 16
widgets:
  - type: label
    text: Hello
`)
		want := "" +
			"M key=\"\" len=2\n" +
			"  Q key=\"styles\" len=1\n" +
			"    M key=\"\" len=2\n" +
			"      S key=\"name\" text=\"primary\"\n" +
			"      S key=\"radius\" text=\"16\"\n" +
			"  Q key=\"widgets\" len=1\n" +
			"    M key=\"\" len=2\n" +
			"      S key=\"type\" text=\"label\"\n" +
			"      S key=\"text\" text=\"Hello\"\n"
		if got := snapshotTree(root); got != want {
			t.Fatalf("tree mismatch:\ngot:\n%swant:\n%s", got, want)
		}
	})

	t.Run("authoring order preserved", func(t *testing.T) {
		root := mustParse(t, "z: 1\na: 2\nm: 3\n")
		var keys []string
		for _, c := range root.Children() {
			keys = append(keys, c.Key())
		}
		if got := strings.Join(keys, ","); got != "z,a,m" {
			t.Fatalf("expected authored order z,a,m, got %s", got)
		}
	})
}

func TestParse_Accessors(t *testing.T) {
	root := mustParse(t, "k: v\nlist:\n  - a\n")

	t.Run("child by key first wins", func(t *testing.T) {
		dup := mustParse(t, "k: one\nk: two\n")
		if got := dup.Child("k").Scalar(); got != "one" {
			t.Fatalf("duplicate key must resolve to first occurrence, got %q", got)
		}
		if root.Child("nope") != nil {
			t.Fatal("missing key must return nil")
		}
	})

	t.Run("nil receiver is safe", func(t *testing.T) {
		var n *Node
		if n.Kind() != 0 || n.Len() != 0 || n.Scalar() != "" || n.Child("x") != nil || n.At(0) != nil {
			t.Fatal("nil node accessors must return zero values")
		}
	})

	t.Run("At out of range", func(t *testing.T) {
		if root.At(99) != nil || root.At(-1) != nil {
			t.Fatal("out-of-range At must return nil")
		}
	})

	t.Run("line numbers", func(t *testing.T) {
		if root.Child("k").Line() != 1 {
			t.Fatalf("expected k's value on line 1, got %d", root.Child("k").Line())
		}
	})
}

func TestParse_RejectsBeyondBlockSubset(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"anchor", "a: &x 1\nb: 2\n", "anchor"},
		{"anchor with alias", "a: &x 1\nb: *x\n", "not supported"},
		{"flow mapping", "a: {b: 1}\n", "flow"},
		{"flow sequence", "a: [1, 2]\n", "flow"},
		{"tag", "a: !!binary Zm9v\n", "tag"},
		{"scalar root", "just a string\n", "mapping or sequence"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseString(tc.src)
			if err == nil {
				t.Fatalf("expected parse error for %q", tc.src)
			}
			mustContain(t, err.Error(), tc.want)
		})
	}
}

func TestParse_MalformedInput(t *testing.T) {
	t.Run("bad indentation", func(t *testing.T) {
		root, err := ParseString("a:\n  - 1\n - 2\n")
		if err == nil {
			t.Fatal("expected error")
		}
		if root != nil {
			t.Fatal("no tree may be returned on failure")
		}
	})

	t.Run("error is a ParseError", func(t *testing.T) {
		_, err := ParseString("a: 1\nb: [\n")
		if err == nil {
			t.Fatal("expected error")
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("expected *ParseError, got %T", err)
		}
	})

	t.Run("empty document", func(t *testing.T) {
		if _, err := ParseString(""); err == nil {
			t.Fatal("expected error for empty document")
		}
	})
}
