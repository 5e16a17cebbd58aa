// Package selector parses the treeq selector language into a small AST.
//
// A selector is a comma separated list of alternatives. Each alternative is
// a chain of segments joined by hierarchy operators:
//
//	type.name[key=value]:modifier(argument) > child + next ~ following
//
// Segment parts, all optional, in order:
//   - type: letters, digits, `_`, `-`, `/`, non-ASCII, or the universal `*`
//   - `.name`: the node name
//   - `[key]`, `[key=value]`, `[key^=prefix]`, `[key$=suffix]`,
//     `[key*=part]`, `[key!=value]`, `[key~=word]`: attribute clauses
//   - `:name` or `:name(argument)`: modifiers, arguments may nest parentheses
//
// Hierarchy operators: whitespace (descendant), `>` (child), `+` (next
// sibling), `~` (following siblings). A backslash escapes the next byte in
// names, attribute keys and attribute values.
//
// Empty or whitespace-only text parses to a single unconstrained segment
// which matches every element.
package selector
