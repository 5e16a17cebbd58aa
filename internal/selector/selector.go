package selector

import "strings"

// Hierarchy operators joining two segments.
const (
	None       rune = 0
	Descendant rune = ' '
	Child      rune = '>'
	Adjacent   rune = '+'
	Sibling    rune = '~'
)

// Attribute comparison operators.
const (
	OpExists       = ""
	OpEquals       = "="
	OpPrefix       = "^="
	OpSuffix       = "$="
	OpContains     = "*="
	OpNotEquals    = "!="
	OpContainsWord = "~="
)

// Attribute is a `[key op value]` clause.
type Attribute struct {
	Key      string
	Operator string
	Value    string
}

// Modifier is a `:name(argument)` clause. HasArgument distinguishes
// `:name` from `:name()`.
type Modifier struct {
	Name        string
	Argument    string
	HasArgument bool
}

// Segment is one step of a selector chain. Operator relates the segment
// to the previous one; the first segment of a chain uses None unless the
// text starts with an explicit combinator.
type Segment struct {
	Operator   rune
	Type       string
	Name       string
	Attributes []Attribute
	Modifiers  []Modifier
	First      bool
}

// IsUniversal reports whether the segment places no constraint on the
// elements it visits.
func (s Segment) IsUniversal() bool {
	return (s.Type == "" || s.Type == "*") && s.Name == "" && len(s.Attributes) == 0 && len(s.Modifiers) == 0
}

// Selector is a chain of segments. All of them must match.
type Selector struct {
	Segments []Segment
}

// String renders the selector in canonical form. Parsing the result yields
// an equal selector.
func (s Selector) String() string {
	var b strings.Builder
	for i, seg := range s.Segments {
		switch {
		case i > 0 && seg.Operator == Descendant:
			b.WriteByte(' ')
		case i > 0:
			b.WriteByte(' ')
			b.WriteRune(seg.Operator)
			b.WriteByte(' ')
		case seg.Operator != None && seg.Operator != Descendant:
			b.WriteRune(seg.Operator)
			b.WriteByte(' ')
		}
		writeSegment(&b, seg)
	}
	return b.String()
}

// Format renders a list of alternatives separated by commas.
func Format(selectors []Selector) string {
	parts := make([]string, len(selectors))
	for i, s := range selectors {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}

func writeSegment(b *strings.Builder, seg Segment) {
	b.WriteString(seg.Type)
	if seg.Name != "" {
		b.WriteByte('.')
		writeEscaped(b, seg.Name, func(c byte) bool { return !isIdent(c) })
	}
	for _, a := range seg.Attributes {
		b.WriteByte('[')
		writeEscaped(b, a.Key, func(c byte) bool {
			return c == '\\' || c == ']' || c == '=' || isOperatorPrefix(c)
		})
		b.WriteString(a.Operator)
		if a.Operator != OpExists {
			writeEscaped(b, a.Value, func(c byte) bool { return c == '\\' || c == ']' })
		}
		b.WriteByte(']')
	}
	for _, m := range seg.Modifiers {
		b.WriteByte(':')
		b.WriteString(m.Name)
		if m.HasArgument {
			b.WriteByte('(')
			b.WriteString(m.Argument)
			b.WriteByte(')')
		}
	}
}

func writeEscaped(b *strings.Builder, s string, needsEscape func(byte) bool) {
	for i := 0; i < len(s); i++ {
		if needsEscape(s[i]) {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
}
