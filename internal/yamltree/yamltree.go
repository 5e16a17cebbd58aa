// Package yamltree exposes YAML syntax trees to the query engine.
//
// Node types are the YAML node kinds: mapping, sequence, scalar and alias.
// A node is named after its mapping key or sequence index. Attributes are
// the scalar entries of a mapping plus metadata under reserved keys:
// @value, @tag, @anchor, @line, @column and @comment.
package yamltree

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jacoelho/treeq/internal/match"
	"github.com/jacoelho/treeq/internal/selector"
	"github.com/jacoelho/treeq/internal/traverse"
)

// ErrEmptyDocument is returned when the input holds no YAML document.
var ErrEmptyDocument = errors.New("yamltree: empty document")

const (
	KindMapping  = "mapping"
	KindSequence = "sequence"
	KindScalar   = "scalar"
	KindAlias    = "alias"
)

type Node struct {
	value    *yaml.Node
	keyNode  *yaml.Node
	name     string
	key      bool
	parent   *Node
	children []*Node
}

// Parse reads the first document of data.
func Parse(data []byte) (*Node, error) {
	roots, err := ParseAll(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return roots[0], nil
}

// ParseAll reads every document of a YAML stream.
func ParseAll(r io.Reader) ([]*Node, error) {
	dec := yaml.NewDecoder(r)

	var roots []*Node
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("yamltree: decode document %d: %w", len(roots), err)
		}
		if len(doc.Content) == 0 {
			continue
		}
		roots = append(roots, build(doc.Content[0], nil, "", nil))
	}

	if len(roots) == 0 {
		return nil, ErrEmptyDocument
	}
	return roots, nil
}

// build wraps value and its descendants. keyNode is the mapping key
// holding value, nil for documents and sequence items.
func build(value, keyNode *yaml.Node, name string, parent *Node) *Node {
	n := &Node{value: value, keyNode: keyNode, name: name, key: keyNode != nil, parent: parent}

	switch value.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(value.Content); i += 2 {
			key := value.Content[i]
			n.children = append(n.children, build(value.Content[i+1], key, key.Value, n))
		}
	case yaml.SequenceNode:
		for i, item := range value.Content {
			n.children = append(n.children, build(item, nil, strconv.Itoa(i), n))
		}
	}
	return n
}

func (n *Node) Name() string {
	return n.name
}

func (n *Node) Type() string {
	switch n.value.Kind {
	case yaml.MappingNode:
		return KindMapping
	case yaml.SequenceNode:
		return KindSequence
	case yaml.AliasNode:
		return KindAlias
	}
	return KindScalar
}

// Value is the scalar text, following aliases. Collections have none.
func (n *Node) Value() (string, bool) {
	v := n.value
	if v.Kind == yaml.AliasNode && v.Alias != nil {
		v = v.Alias
	}
	if v.Kind != yaml.ScalarNode {
		return "", false
	}
	return v.Value, true
}

func (n *Node) Parent() (*Node, bool) {
	return n.parent, n.parent != nil
}

func (n *Node) Children() []*Node {
	return n.children
}

// YAML returns the underlying syntax node.
func (n *Node) YAML() *yaml.Node {
	return n.value
}

// Path renders the node location, e.g. $.spec.containers[0].name.
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

// Attribute resolves a metadata key or a scalar mapping entry.
func (n *Node) Attribute(key string) (string, bool) {
	switch key {
	case "@value":
		return n.Value()
	case "@tag":
		return n.value.ShortTag(), true
	case "@anchor":
		return n.value.Anchor, n.value.Anchor != ""
	case "@line":
		return strconv.Itoa(n.value.Line), true
	case "@column":
		return strconv.Itoa(n.value.Column), true
	case "@comment":
		return n.comment()
	}

	for _, child := range n.children {
		if child.key && child.name == key {
			return child.Value()
		}
	}
	return "", false
}

// comment joins the comments attached to the node and to its key.
func (n *Node) comment() (string, bool) {
	var parts []string
	for _, y := range []*yaml.Node{n.keyNode, n.value} {
		if y == nil {
			continue
		}
		for _, c := range []string{y.HeadComment, y.LineComment, y.FootComment} {
			if c != "" {
				parts = append(parts, c)
			}
		}
	}
	comment := strings.Join(parts, "\n")
	return comment, comment != ""
}

func isPlainKey(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-') {
			return false
		}
	}
	return true
}

var accessor = match.Accessor[*Node]{
	Type: (*Node).Type,
	Name: (*Node).Name,
	Lookup: func(key string) (func(*Node) (string, bool), error) {
		return func(n *Node) (string, bool) {
			return n.Attribute(key)
		}, nil
	},
}

// Provider exposes YAML node trees to the query engine. Aliases are leaves,
// so anchored cycles cannot make traversal loop.
type Provider struct{}

func (Provider) Predicate(typ, name string, attrs []selector.Attribute) (func(*Node) bool, error) {
	return match.Predicate(accessor, typ, name, attrs)
}

func (Provider) Children(n *Node) iter.Seq2[*Node, error] {
	return traverse.Slice(n.children)
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
