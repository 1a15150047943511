// Package yamltree parses YAML documents into a generic, immutable node tree.
//
// Only the block-style subset of YAML is accepted: mappings, sequences, and
// plain or quoted scalars. Anchors, aliases, explicit tags, flow collections,
// and multi-document streams are rejected with a ParseError. This keeps the
// accepted input identical on every host the schema files target.
package yamltree

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies the shape of a Node.
type Kind int

const (
	KindScalar Kind = iota + 1
	KindMapping
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	default:
		return "unset"
	}
}

// ParseError reports malformed YAML input. No partial tree is returned
// alongside it.
type ParseError struct {
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("yaml parse: line %d: %s", e.Line, e.Msg)
	}
	return "yaml parse: " + e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// Node is one element of a parsed tree. A Mapping node holds its entries as
// ordered children, each carrying the entry key; a Sequence node holds its
// elements in order; a Scalar node carries text. Nodes are immutable after
// Parse returns.
type Node struct {
	kind     Kind
	key      string
	scalar   string
	children []*Node
	line     int
}

// Kind returns the node's shape. A nil node reports 0.
func (n *Node) Kind() Kind {
	if n == nil {
		return 0
	}
	return n.kind
}

// Key returns the mapping key this node was stored under, or "" when the
// node is not a mapping entry.
func (n *Node) Key() string {
	if n == nil {
		return ""
	}
	return n.key
}

// Scalar returns the node's text. Non-scalar nodes return "".
func (n *Node) Scalar() string {
	if n == nil || n.kind != KindScalar {
		return ""
	}
	return n.scalar
}

// Len returns the number of children of a mapping or sequence node.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	return len(n.children)
}

// At returns the child at index i, or nil when out of range. Positional
// order matches the authored document and is stable across calls.
func (n *Node) At(i int) *Node {
	if n == nil || i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// Child returns the first mapping entry stored under key, or nil when the
// node is not a mapping or has no such entry. Duplicate keys resolve to the
// first occurrence.
func (n *Node) Child(key string) *Node {
	if n == nil || n.kind != KindMapping {
		return nil
	}
	for _, c := range n.children {
		if c.key == key {
			return c
		}
	}
	return nil
}

// Children returns the node's children in document order for iteration.
// The returned slice must not be modified.
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	return n.children
}

// Line returns the 1-based source line the node started on.
func (n *Node) Line() int {
	if n == nil {
		return 0
	}
	return n.line
}

// Parse decodes a YAML document into a node tree. The document root must be
// a mapping or a sequence. On failure no tree is returned.
func Parse(data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, wrapYAMLError(err)
	}
	if len(doc.Content) == 0 {
		return nil, &ParseError{Msg: "empty document"}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode && root.Kind != yaml.SequenceNode {
		return nil, &ParseError{Line: root.Line, Msg: "document root must be a mapping or sequence"}
	}
	return convert(root, "")
}

// ParseString is Parse for string input.
func ParseString(data string) (*Node, error) {
	return Parse([]byte(data))
}

// convert walks a decoded yaml.Node, enforcing the block-only subset.
func convert(y *yaml.Node, key string) (*Node, error) {
	if y.Anchor != "" {
		return nil, &ParseError{Line: y.Line, Msg: "anchors are not supported"}
	}
	if y.Style&yaml.TaggedStyle != 0 {
		return nil, &ParseError{Line: y.Line, Msg: fmt.Sprintf("explicit tags are not supported (%s)", y.Tag)}
	}

	switch y.Kind {
	case yaml.ScalarNode:
		return &Node{kind: KindScalar, key: key, scalar: y.Value, line: y.Line}, nil

	case yaml.MappingNode:
		if y.Style&yaml.FlowStyle != 0 {
			return nil, &ParseError{Line: y.Line, Msg: "flow mappings are not supported"}
		}
		n := &Node{kind: KindMapping, key: key, line: y.Line}
		// Content holds alternating key and value nodes.
		for i := 0; i+1 < len(y.Content); i += 2 {
			k := y.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, &ParseError{Line: k.Line, Msg: "mapping keys must be scalars"}
			}
			child, err := convert(y.Content[i+1], k.Value)
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, child)
		}
		return n, nil

	case yaml.SequenceNode:
		if y.Style&yaml.FlowStyle != 0 {
			return nil, &ParseError{Line: y.Line, Msg: "flow sequences are not supported"}
		}
		n := &Node{kind: KindSequence, key: key, line: y.Line}
		for _, item := range y.Content {
			child, err := convert(item, "")
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, child)
		}
		return n, nil

	case yaml.AliasNode:
		return nil, &ParseError{Line: y.Line, Msg: "aliases are not supported"}

	default:
		return nil, &ParseError{Line: y.Line, Msg: fmt.Sprintf("unsupported YAML node kind %d", y.Kind)}
	}
}

// wrapYAMLError converts a yaml.v3 decode error into a ParseError, pulling
// the line number out of the library's "yaml: line N:" message when present.
func wrapYAMLError(err error) error {
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		return &ParseError{Msg: strings.Join(typeErr.Errors, "; "), Err: err}
	}
	msg := strings.TrimPrefix(err.Error(), "yaml: ")
	line := 0
	if rest, ok := strings.CutPrefix(msg, "line "); ok {
		if idx := strings.Index(rest, ":"); idx > 0 {
			fmt.Sscanf(rest[:idx], "%d", &line)
			msg = strings.TrimSpace(rest[idx+1:])
		}
	}
	return &ParseError{Line: line, Msg: msg, Err: err}
}
