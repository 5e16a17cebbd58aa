// Package tree is an in-memory resource tree: named, typed nodes with
// string properties.
package tree

import (
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/jacoelho/treeq/internal/match"
	"github.com/jacoelho/treeq/internal/selector"
	"github.com/jacoelho/treeq/internal/traverse"
)

type Resource struct {
	name     string
	typ      string
	props    map[string]string
	parent   *Resource
	children []*Resource
}

// New creates a detached resource. props is copied.
func New(name, typ string, props map[string]string) *Resource {
	return &Resource{name: name, typ: typ, props: maps.Clone(props)}
}

// Add appends children in order and returns r so trees can be built
// inline. A child already attached elsewhere is moved.
func (r *Resource) Add(children ...*Resource) *Resource {
	for _, child := range children {
		if child.parent != nil {
			child.parent.children = slices.DeleteFunc(child.parent.children, func(c *Resource) bool {
				return c == child
			})
		}
		child.parent = r
		r.children = append(r.children, child)
	}
	return r
}

func (r *Resource) Name() string { return r.name }

func (r *Resource) Type() string { return r.typ }

func (r *Resource) Property(key string) (string, bool) {
	v, ok := r.props[key]
	return v, ok
}

// Properties returns a copy of the property map.
func (r *Resource) Properties() map[string]string {
	return maps.Clone(r.props)
}

func (r *Resource) Parent() (*Resource, bool) {
	return r.parent, r.parent != nil
}

func (r *Resource) Children() []*Resource {
	return slices.Clone(r.children)
}

// Child returns the first child called name.
func (r *Resource) Child(name string) (*Resource, bool) {
	for _, c := range r.children {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// Path is "/" for a root and the slash separated names below it.
func (r *Resource) Path() string {
	if r.parent == nil {
		return "/"
	}
	var names []string
	for n := r; n.parent != nil; n = n.parent {
		names = append(names, n.name)
	}
	slices.Reverse(names)
	return "/" + strings.Join(names, "/")
}

func (r *Resource) String() string {
	return r.Path()
}

var accessor = match.Accessor[*Resource]{
	Type: (*Resource).Type,
	Name: (*Resource).Name,
	Lookup: func(key string) (func(*Resource) (string, bool), error) {
		return func(r *Resource) (string, bool) {
			return r.Property(key)
		}, nil
	},
}

// Provider exposes resource trees to the query engine.
type Provider struct{}

func (Provider) Predicate(typ, name string, attrs []selector.Attribute) (func(*Resource) bool, error) {
	return match.Predicate(accessor, typ, name, attrs)
}

func (Provider) Children(r *Resource) iter.Seq2[*Resource, error] {
	return traverse.Slice(r.children)
}

func (p Provider) Descendants(r *Resource, strategy traverse.Strategy) iter.Seq2[*Resource, error] {
	return traverse.Descendants(r, p.Children, strategy)
}

func (Provider) Ancestors(r *Resource) iter.Seq2[*Resource, error] {
	return traverse.Ancestors(r, (*Resource).Parent)
}

func (p Provider) Siblings(r *Resource) iter.Seq2[*Resource, error] {
	return traverse.Siblings(r, (*Resource).Parent, p.Children)
}
