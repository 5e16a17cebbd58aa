// Package output renders selected nodes as text, JSON or YAML.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml"
)

// Node is what a match is built from; both concrete trees satisfy it.
type Node interface {
	Name() string
	Type() string
	Path() string
	Value() (string, bool)
}

type Match struct {
	Source string  `yaml:"source,omitempty"`
	Path   string  `yaml:"path"`
	Kind   string  `yaml:"kind"`
	Name   string  `yaml:"name"`
	Value  *string `yaml:"value,omitempty"`
}

func From(source string, n Node) Match {
	m := Match{
		Source: source,
		Path:   n.Path(),
		Kind:   n.Type(),
		Name:   n.Name(),
	}
	if v, ok := n.Value(); ok {
		m.Value = &v
	}
	return m
}

type Formatter interface {
	Format(matches ...Match) error
}

// New returns the formatter for format writing to stdout.
func New(format string, noColor bool) (Formatter, error) {
	return NewWithWriter(os.Stdout, format, noColor)
}

// NewWithWriter is New with a custom writer, useful for tests.
func NewWithWriter(w io.Writer, format string, noColor bool) (Formatter, error) {
	switch format {
	case "text", "":
		return newText(w, noColor), nil
	case "json":
		return &encoded{writer: w, options: []yaml.EncodeOption{yaml.JSON()}}, nil
	case "yaml":
		return &encoded{writer: w}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

type text struct {
	writer io.Writer
	source *color.Color
	path   *color.Color
	kind   *color.Color
	value  *color.Color
}

func newText(w io.Writer, noColor bool) *text {
	t := &text{
		writer: w,
		source: color.New(color.FgHiBlue),
		path:   color.New(color.FgCyan, color.Bold),
		kind:   color.New(color.FgYellow),
		value:  color.New(color.FgGreen),
	}
	if noColor {
		for _, c := range []*color.Color{t.source, t.path, t.kind, t.value} {
			c.DisableColor()
		}
	}
	return t
}

// Format writes one line per match: [source:]path kind [value].
func (t *text) Format(matches ...Match) error {
	for _, m := range matches {
		line := t.path.Sprint(m.Path) + " " + t.kind.Sprint(m.Kind)
		if m.Source != "" {
			line = t.source.Sprint(m.Source) + ":" + line
		}
		if m.Value != nil {
			line += " " + t.value.Sprintf("%q", *m.Value)
		}
		if _, err := fmt.Fprintln(t.writer, line); err != nil {
			return err
		}
	}
	return nil
}

type encoded struct {
	writer  io.Writer
	options []yaml.EncodeOption
}

func (e *encoded) Format(matches ...Match) error {
	if matches == nil {
		matches = []Match{}
	}
	payload, err := yaml.MarshalWithOptions(matches, e.options...)
	if err != nil {
		return fmt.Errorf("failed to encode matches: %w", err)
	}
	_, err = e.writer.Write(payload)
	return err
}
