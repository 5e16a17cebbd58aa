package selector

import (
	"fmt"
	"strings"
)

type state int

const (
	stateStart state = iota
	stateHierarchy
	stateType
	stateName
	stateAttrKey
	stateAttrOp
	stateAttrValue
	stateModifierName
	stateModifierArg
	stateSegment
)

var stateNames = [...]string{
	stateStart:        "start",
	stateHierarchy:    "hierarchy",
	stateType:         "type",
	stateName:         "name",
	stateAttrKey:      "attribute key",
	stateAttrOp:       "attribute operator",
	stateAttrValue:    "attribute value",
	stateModifierName: "modifier name",
	stateModifierArg:  "modifier argument",
	stateSegment:      "segment",
}

func (s state) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// escapes reports whether a backslash in this state escapes the next byte.
func (s state) escapes() bool {
	switch s {
	case stateName, stateAttrKey, stateAttrValue, stateModifierArg:
		return true
	}
	return false
}

// parserContext holds the state of a single Parse call.
type parserContext struct {
	input string
	pos   int
	state state
	buf   strings.Builder
	depth int

	op      rune
	typ     string
	name    string
	named   bool
	attrKey string
	attrOp  string
	modName string
	attrs   []Attribute
	mods    []Modifier

	segments  []Segment
	selectors []Selector
}

// Parse turns selector text into its alternatives.
func Parse(text string) ([]Selector, error) {
	p := &parserContext{input: text, state: stateStart, op: None}

	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '\\' && p.state.escapes() {
			if p.pos+1 >= len(p.input) {
				return nil, p.fail("dangling escape")
			}
			// arguments are parsed again later, keep them verbatim
			if p.state == stateModifierArg {
				p.buf.WriteByte(c)
			}
			p.buf.WriteByte(p.input[p.pos+1])
			p.pos += 2
			continue
		}

		if err := p.step(c); err != nil {
			return nil, err
		}
		p.pos++
	}

	if err := p.finish(); err != nil {
		return nil, err
	}
	return p.selectors, nil
}

// MustParse is like Parse but panics on error.
func MustParse(text string) []Selector {
	selectors, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return selectors
}

func (p *parserContext) step(c byte) error {
	switch p.state {
	case stateStart:
		return p.start(c)
	case stateHierarchy:
		return p.hierarchy(c)
	case stateType:
		if isIdent(c) {
			p.buf.WriteByte(c)
			return nil
		}
		p.typ = p.take()
		return p.afterToken(c)
	case stateName:
		if isIdent(c) {
			p.buf.WriteByte(c)
			return nil
		}
		if p.buf.Len() == 0 {
			return p.fail("empty name")
		}
		p.name = p.take()
		return p.afterToken(c)
	case stateAttrKey:
		return p.attributeKey(c)
	case stateAttrOp:
		if c != '=' {
			return p.fail("expected '=' in attribute operator")
		}
		p.attrOp += "="
		p.state = stateAttrValue
		return nil
	case stateAttrValue:
		if c == ']' {
			p.addAttribute(p.take())
			p.state = stateSegment
			return nil
		}
		p.buf.WriteByte(c)
		return nil
	case stateModifierName:
		return p.modifierName(c)
	case stateModifierArg:
		return p.modifierArgument(c)
	case stateSegment:
		return p.afterToken(c)
	}
	return p.fail("invalid parser state %s", p.state)
}

func (p *parserContext) start(c byte) error {
	switch {
	case isSpace(c):
		return nil
	case isCombinator(c):
		if p.op != None {
			return p.fail("unexpected combinator %q", c)
		}
		p.op = rune(c)
		return nil
	case c == ',':
		if p.op != None {
			return p.fail("dangling combinator %q", p.op)
		}
		return p.fail("empty selector")
	}
	return p.beginSegment(c)
}

func (p *parserContext) hierarchy(c byte) error {
	switch {
	case isSpace(c):
		return nil
	case isCombinator(c):
		if p.op != Descendant {
			return p.fail("unexpected combinator %q", c)
		}
		p.op = rune(c)
		return nil
	case c == ',':
		if p.op != Descendant {
			return p.fail("dangling combinator %q", p.op)
		}
		p.finishSelector()
		p.state = stateStart
		return nil
	}
	return p.beginSegment(c)
}

func (p *parserContext) beginSegment(c byte) error {
	switch {
	case c == '*':
		p.typ = "*"
		p.state = stateSegment
	case isIdent(c):
		p.buf.WriteByte(c)
		p.state = stateType
	case c == '.':
		p.named = true
		p.state = stateName
	case c == '[':
		p.state = stateAttrKey
	case c == ':':
		p.state = stateModifierName
	default:
		return p.fail("unexpected character %q", c)
	}
	return nil
}

// afterToken handles the byte that terminated a type, name, attribute or
// modifier.
func (p *parserContext) afterToken(c byte) error {
	switch {
	case c == '.':
		if p.named || len(p.attrs) > 0 || len(p.mods) > 0 {
			return p.fail("unexpected '.'")
		}
		p.named = true
		p.state = stateName
	case c == '[':
		if len(p.mods) > 0 {
			return p.fail("attribute after modifier")
		}
		p.state = stateAttrKey
	case c == ':':
		p.state = stateModifierName
	case isSpace(c):
		p.finishSegment()
		p.state = stateHierarchy
	case isCombinator(c):
		p.finishSegment()
		p.op = rune(c)
		p.state = stateHierarchy
	case c == ',':
		p.finishSegment()
		p.finishSelector()
		p.state = stateStart
	default:
		return p.fail("unexpected character %q", c)
	}
	return nil
}

func (p *parserContext) attributeKey(c byte) error {
	switch {
	case c == ']':
		key, err := p.takeKey()
		if err != nil {
			return err
		}
		p.attrKey, p.attrOp = key, OpExists
		p.addAttribute("")
		p.state = stateSegment
	case c == '=':
		key, err := p.takeKey()
		if err != nil {
			return err
		}
		p.attrKey, p.attrOp = key, OpEquals
		p.state = stateAttrValue
	case isOperatorPrefix(c) && p.peek() == '=':
		key, err := p.takeKey()
		if err != nil {
			return err
		}
		p.attrKey, p.attrOp = key, string(c)
		p.state = stateAttrOp
	default:
		p.buf.WriteByte(c)
	}
	return nil
}

func (p *parserContext) modifierName(c byte) error {
	if isIdent(c) {
		p.buf.WriteByte(c)
		return nil
	}
	if p.buf.Len() == 0 {
		return p.fail("empty modifier name")
	}
	if c == '(' {
		p.modName = p.take()
		p.depth = 1
		p.state = stateModifierArg
		return nil
	}
	p.mods = append(p.mods, Modifier{Name: p.take()})
	return p.afterToken(c)
}

func (p *parserContext) modifierArgument(c byte) error {
	switch c {
	case '(':
		p.depth++
	case ')':
		p.depth--
		if p.depth == 0 {
			p.mods = append(p.mods, Modifier{Name: p.modName, Argument: p.take(), HasArgument: true})
			p.modName = ""
			p.state = stateSegment
			return nil
		}
	}
	p.buf.WriteByte(c)
	return nil
}

func (p *parserContext) finish() error {
	switch p.state {
	case stateStart:
		if p.op != None {
			return p.fail("dangling combinator %q", p.op)
		}
		if len(p.selectors) > 0 {
			return p.fail("trailing comma")
		}
		p.finishSegment()
		p.finishSelector()
	case stateHierarchy:
		if p.op != Descendant {
			return p.fail("dangling combinator %q", p.op)
		}
		p.finishSelector()
	case stateType:
		p.typ = p.take()
		p.finishSegment()
		p.finishSelector()
	case stateName:
		if p.buf.Len() == 0 {
			return p.fail("empty name")
		}
		p.name = p.take()
		p.finishSegment()
		p.finishSelector()
	case stateAttrKey, stateAttrOp, stateAttrValue:
		return p.fail("unterminated attribute")
	case stateModifierName:
		if p.buf.Len() == 0 {
			return p.fail("empty modifier name")
		}
		p.mods = append(p.mods, Modifier{Name: p.take()})
		p.finishSegment()
		p.finishSelector()
	case stateModifierArg:
		return p.fail("unterminated modifier argument")
	case stateSegment:
		p.finishSegment()
		p.finishSelector()
	}
	return nil
}

func (p *parserContext) addAttribute(value string) {
	p.attrs = append(p.attrs, Attribute{Key: p.attrKey, Operator: p.attrOp, Value: value})
	p.attrKey, p.attrOp = "", ""
}

func (p *parserContext) finishSegment() {
	p.segments = append(p.segments, Segment{
		Operator:   p.op,
		Type:       p.typ,
		Name:       p.name,
		Attributes: p.attrs,
		Modifiers:  p.mods,
		First:      len(p.segments) == 0,
	})
	p.op = Descendant
	p.typ, p.name, p.named = "", "", false
	p.attrs, p.mods = nil, nil
}

func (p *parserContext) finishSelector() {
	p.selectors = append(p.selectors, Selector{Segments: p.segments})
	p.segments = nil
	p.op = None
}

func (p *parserContext) take() string {
	s := p.buf.String()
	p.buf.Reset()
	return s
}

func (p *parserContext) takeKey() (string, error) {
	if p.buf.Len() == 0 {
		return "", p.fail("empty attribute key")
	}
	return p.take(), nil
}

func (p *parserContext) peek() byte {
	if p.pos+1 < len(p.input) {
		return p.input[p.pos+1]
	}
	return 0
}

func (p *parserContext) fail(format string, args ...any) error {
	return &ParseError{Input: p.input, Offset: p.pos, Reason: fmt.Sprintf(format, args...)}
}

func isIdent(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '_' || c == '-' || c == '/' ||
		c >= 0x80
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isCombinator(c byte) bool {
	return c == '>' || c == '+' || c == '~'
}

func isOperatorPrefix(c byte) bool {
	return c == '^' || c == '$' || c == '*' || c == '!' || c == '~'
}
