// Package datatree exposes decoded JSON or YAML data to the query engine.
//
// Node types are object, array, string, number, bool and null. A node is
// named after its member key or array index. Attributes are the scalar
// members of an object; keys starting with `$` or containing `.` or `[`
// are JSONPath expressions evaluated against the node, so `[spec.replicas=3]`
// tests a nested value. `@value` is the node's own scalar text.
//
// A member key that itself contains `.` must be written as a bracketed
// path, with the closing bracket escaped:
//
//	object[$['app.kubernetes.io/name'\]=web]
package datatree

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/theory/jsonpath"

	"github.com/jacoelho/treeq/internal/match"
	"github.com/jacoelho/treeq/internal/selector"
	"github.com/jacoelho/treeq/internal/traverse"
)

// ErrEmptyDocument is returned when the input holds no document.
var ErrEmptyDocument = errors.New("datatree: empty document")

const (
	KindObject = "object"
	KindArray  = "array"
	KindString = "string"
	KindNumber = "number"
	KindBool   = "bool"
	KindNull   = "null"
)

type Node struct {
	value    any
	name     string
	key      bool
	parent   *Node
	children []*Node
	built    bool
	plain    any
	hasPlain bool
}

// Decode reads the first document of data.
func Decode(data []byte) (*Node, error) {
	roots, err := DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return roots[0], nil
}

// DecodeAll reads every document of a JSON or YAML stream. Object member
// order is preserved.
func DecodeAll(r io.Reader) ([]*Node, error) {
	dec := yaml.NewDecoder(r, yaml.UseOrderedMap())

	var roots []*Node
	for {
		var v any
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("datatree: decode document %d: %w", len(roots), err)
		}
		roots = append(roots, New(v))
	}

	if len(roots) == 0 {
		return nil, ErrEmptyDocument
	}
	return roots, nil
}

// New wraps an already decoded value as a root node.
func New(value any) *Node {
	return &Node{value: value}
}

func (n *Node) Name() string {
	return n.name
}

func (n *Node) Type() string {
	switch n.value.(type) {
	case nil:
		return KindNull
	case yaml.MapSlice, map[string]any:
		return KindObject
	case []any:
		return KindArray
	case string:
		return KindString
	case bool:
		return KindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return KindNumber
	}
	return KindString
}

// Value is the text of a scalar node. Objects and arrays have none.
func (n *Node) Value() (string, bool) {
	return scalar(n.value)
}

// Interface returns the node value with objects as plain maps.
func (n *Node) Interface() any {
	if !n.hasPlain {
		n.plain = plain(n.value)
		n.hasPlain = true
	}
	return n.plain
}

func (n *Node) Parent() (*Node, bool) {
	return n.parent, n.parent != nil
}

// Children are built on first use.
func (n *Node) Children() []*Node {
	if n.built {
		return n.children
	}
	n.built = true

	switch v := n.value.(type) {
	case yaml.MapSlice:
		for _, item := range v {
			n.children = append(n.children, &Node{value: item.Value, name: fmt.Sprint(item.Key), key: true, parent: n})
		}
	case map[string]any:
		for _, k := range sortedKeys(v) {
			n.children = append(n.children, &Node{value: v[k], name: k, key: true, parent: n})
		}
	case []any:
		for i, item := range v {
			n.children = append(n.children, &Node{value: item, name: strconv.Itoa(i), parent: n})
		}
	}
	return n.children
}

// Path renders the node location, e.g. $.items[2].name.
func (n *Node) Path() string {
	if n.parent == nil {
		return "$"
	}
	if !n.key {
		return n.parent.Path() + "[" + n.name + "]"
	}
	if isPlainKey(n.name) {
		return n.parent.Path() + "." + n.name
	}
	return n.parent.Path() + "['" + strings.ReplaceAll(n.name, "'", `\'`) + "']"
}

func (n *Node) String() string {
	return n.Path()
}

// Member returns the scalar text of a direct object member.
func (n *Node) Member(key string) (string, bool) {
	for _, child := range n.Children() {
		if child.key && child.name == key {
			return child.Value()
		}
	}
	return "", false
}

// lookup compiles key once. Path keys select the first match of a
// JSONPath query relative to the node.
func lookup(key string) (func(*Node) (string, bool), error) {
	if key == "@value" {
		return (*Node).Value, nil
	}
	if !isPathKey(key) {
		return func(n *Node) (string, bool) { return n.Member(key) }, nil
	}

	expr := key
	if !strings.HasPrefix(expr, "$") {
		expr = "$." + expr
	}
	path, err := jsonpath.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", match.ErrInvalidKey, key, err)
	}

	return func(n *Node) (string, bool) {
		results := path.Select(n.Interface())
		if len(results) == 0 {
			return "", false
		}
		return scalar(results[0])
	}, nil
}

func isPathKey(key string) bool {
	return strings.HasPrefix(key, "$") || strings.ContainsAny(key, ".[")
}

var accessor = match.Accessor[*Node]{
	Type:   (*Node).Type,
	Name:   (*Node).Name,
	Lookup: lookup,
}

// Provider exposes data trees to the query engine.
type Provider struct{}

func (Provider) Predicate(typ, name string, attrs []selector.Attribute) (func(*Node) bool, error) {
	return match.Predicate(accessor, typ, name, attrs)
}

func (Provider) Children(n *Node) iter.Seq2[*Node, error] {
	return traverse.Slice(n.Children())
}

func (p Provider) Descendants(n *Node, strategy traverse.Strategy) iter.Seq2[*Node, error] {
	return traverse.Descendants(n, p.Children, strategy)
}

func (Provider) Ancestors(n *Node) iter.Seq2[*Node, error] {
	return traverse.Ancestors(n, (*Node).Parent)
}

func (p Provider) Siblings(n *Node) iter.Seq2[*Node, error] {
	return traverse.Siblings(n, (*Node).Parent, p.Children)
}
