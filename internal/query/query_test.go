package query_test

import (
	"errors"
	"iter"
	"slices"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jacoelho/treeq/internal/query"
	"github.com/jacoelho/treeq/internal/selector"
	"github.com/jacoelho/treeq/internal/traverse"
	"github.com/jacoelho/treeq/internal/tree"
)

var _ query.Provider[*tree.Resource] = tree.Provider{}

// fixture builds
//
//	root
//	├── content  folder  jcr:primaryType=nt:folder
//	│   ├── en   page    title=English tags="news sport"
//	│   │   ├── about    page title=About
//	│   │   └── contact  page
//	│   └── de   page    title=Deutsch
//	│       └── impressum page
//	└── assets   file    jcr:primaryType=nt:file
func fixture() map[string]*tree.Resource {
	n := map[string]*tree.Resource{
		"root":      tree.New("root", "root", nil),
		"content":   tree.New("content", "folder", map[string]string{"jcr:primaryType": "nt:folder"}),
		"en":        tree.New("en", "page", map[string]string{"title": "English", "tags": "news sport"}),
		"about":     tree.New("about", "page", map[string]string{"title": "About"}),
		"contact":   tree.New("contact", "page", nil),
		"de":        tree.New("de", "page", map[string]string{"title": "Deutsch"}),
		"impressum": tree.New("impressum", "page", nil),
		"assets":    tree.New("assets", "file", map[string]string{"jcr:primaryType": "nt:file"}),
	}
	n["root"].Add(
		n["content"].Add(
			n["en"].Add(n["about"], n["contact"]),
			n["de"].Add(n["impressum"]),
		),
		n["assets"],
	)
	return n
}

func names(t *testing.T, q *query.Query[*tree.Resource], input ...*tree.Resource) []string {
	t.Helper()

	var out []string
	for r, err := range q.Apply(slices.Values(input)) {
		require.NoError(t, err)
		out = append(out, r.Name())
	}
	return out
}

func TestQuery_Apply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		selector string
		strategy traverse.Strategy
		input    []string
		want     []string
	}{
		{name: "child_with_attribute", selector: "> folder[jcr:primaryType=nt:folder]", input: []string{"root"}, want: []string{"content"}},
		{name: "child_file", selector: "> [jcr:primaryType$=file]", input: []string{"root"}, want: []string{"assets"}},
		{name: "self_filter", selector: "page", input: []string{"root", "en", "assets", "de"}, want: []string{"en", "de"}},
		{name: "empty_selector_is_identity", selector: "", input: []string{"de", "root"}, want: []string{"de", "root"}},
		{name: "descendants_depth_first", selector: "* page", input: []string{"root"}, want: []string{"en", "about", "contact", "de", "impressum"}},
		{name: "descendants_breadth_first", selector: "* page", strategy: traverse.BreadthFirst, input: []string{"root"}, want: []string{"en", "de", "about", "contact", "impressum"}},
		{name: "chained_children", selector: "> folder > page > page", input: []string{"root"}, want: []string{"about", "contact", "impressum"}},
		{name: "name", selector: "* .contact", input: []string{"root"}, want: []string{"contact"}},
		{name: "word_attribute", selector: "* [tags~=sport]", input: []string{"root"}, want: []string{"en"}},
		{name: "not_equals_includes_missing", selector: "> page[title!=English]", input: []string{"content"}, want: []string{"de"}},
		{name: "eq", selector: "* page:eq(2)", input: []string{"root"}, want: []string{"contact"}},
		{name: "eq_out_of_range", selector: "* page:eq(5)", input: []string{"root"}, want: nil},
		{name: "first", selector: "* page:first", input: []string{"root"}, want: []string{"en"}},
		{name: "last", selector: "* page:last", input: []string{"root"}, want: []string{"impressum"}},
		{name: "gt", selector: "* page:gt(2)", input: []string{"root"}, want: []string{"de", "impressum"}},
		{name: "lt", selector: "* page:lt(2)", input: []string{"root"}, want: []string{"en", "about"}},
		{name: "even", selector: "* page:even", input: []string{"root"}, want: []string{"en", "contact", "impressum"}},
		{name: "odd", selector: "* page:odd", input: []string{"root"}, want: []string{"about", "de"}},
		{name: "modifier_case_insensitive", selector: "* page:FIRST", input: []string{"root"}, want: []string{"en"}},
		{name: "index_spans_inputs", selector: "> page:eq(2)", input: []string{"content", "en"}, want: []string{"about"}},
		{name: "last_of_chain", selector: "> folder > page:last", input: []string{"root"}, want: []string{"de"}},
		{name: "modifiers_in_order", selector: "* page:gt(0):first", input: []string{"root"}, want: []string{"about"}},
		{name: "not", selector: "* page:not(.en)", input: []string{"root"}, want: []string{"about", "contact", "de", "impressum"}},
		{name: "not_union", selector: "* page:not(.en, .de)", input: []string{"root"}, want: []string{"about", "contact", "impressum"}},
		{name: "not_first", selector: "* page:not(:first)", input: []string{"root"}, want: []string{"about", "contact", "de", "impressum"}},
		{name: "not_last", selector: "* page:not(:last)", input: []string{"root"}, want: []string{"en", "about", "contact", "de"}},
		{name: "not_eq", selector: "* page:not(:eq(1))", input: []string{"root"}, want: []string{"en", "contact", "de", "impressum"}},
		{name: "not_odd_spans_inputs", selector: "> page:not(:odd)", input: []string{"en", "de"}, want: []string{"about", "impressum"}},
		{name: "not_filtered_position", selector: "* page:not([title]:first)", input: []string{"root"}, want: []string{"about", "contact", "de", "impressum"}},
		{name: "has_descendant", selector: "* page:has(.about)", input: []string{"root"}, want: []string{"en"}},
		{name: "has_relative", selector: "* folder:has(> page.de)", input: []string{"root"}, want: []string{"content"}},
		{name: "has_none", selector: "* page:has(*)", input: []string{"de"}, want: nil},
		{name: "closest_ancestor", selector: ":closest(folder)", input: []string{"about"}, want: []string{"content"}},
		{name: "closest_self", selector: ":closest(page)", input: []string{"about"}, want: []string{"about"}},
		{name: "closest_missing", selector: ":closest(file)", input: []string{"about"}, want: nil},
		{name: "parent", selector: ":parent", input: []string{"about", "contact"}, want: []string{"en"}},
		{name: "parent_of_root", selector: ":parent", input: []string{"root"}, want: nil},
		{name: "parents", selector: ":parents", input: []string{"about"}, want: []string{"en", "content", "root"}},
		{name: "parents_filtered", selector: ":parents(folder)", input: []string{"about"}, want: []string{"content"}},
		{name: "parents_positional", selector: ":parents(:last)", input: []string{"about"}, want: []string{"root"}},
		{name: "parents_positional_spans_inputs", selector: ":parents(:eq(1))", input: []string{"about", "impressum"}, want: []string{"content"}},
		{name: "siblings", selector: ":siblings", input: []string{"en"}, want: []string{"de"}},
		{name: "siblings_filtered", selector: ":siblings(file)", input: []string{"content"}, want: []string{"assets"}},
		{name: "siblings_positional", selector: ":siblings(:first)", input: []string{"about", "de"}, want: []string{"contact"}},
		{name: "siblings_of_root", selector: ":siblings", input: []string{"root"}, want: nil},
		{name: "adjacent", selector: "> page.en + page", input: []string{"content"}, want: []string{"de"}},
		{name: "adjacent_last", selector: "> page.de + *", input: []string{"content"}, want: nil},
		{name: "following", selector: "> .content ~ *", input: []string{"root"}, want: []string{"assets"}},
		{name: "union_in_declaration_order", selector: "* page.en, * page.de", input: []string{"root"}, want: []string{"en", "de"}},
		{name: "union_branch_precedence", selector: "* page.de, * page.en", input: []string{"root"}, want: []string{"de", "en"}},
		{name: "union_follows_input_order", selector: "page.en, page.de", input: []string{"de", "en"}, want: []string{"de", "en"}},
		{name: "union_deduplicates", selector: "* page, * [title]", input: []string{"root"}, want: []string{"en", "about", "contact", "de", "impressum"}},
		{name: "duplicates_within_branch", selector: "* page > page", input: []string{"root", "content"}, want: []string{"about", "contact", "impressum"}},
		{name: "no_match", selector: "* missing", input: []string{"root"}, want: nil},
		{name: "empty_input", selector: "* page", input: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n := fixture()
			input := make([]*tree.Resource, 0, len(tt.input))
			for _, name := range tt.input {
				input = append(input, n[name])
			}

			q, err := query.Compile(tt.selector, tt.strategy, tree.Provider{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(t, q, input...))
		})
	}
}

func TestQuery_Accepts(t *testing.T) {
	t.Parallel()

	n := fixture()
	q, err := query.Compile("> folder[jcr:primaryType=nt:folder]", traverse.DepthFirst, tree.Provider{})
	require.NoError(t, err)

	ok, err := q.Accepts(n["root"])
	require.NoError(t, err)
	assert.True(t, ok, "root has a matching child")

	ok, err = q.Accepts(n["assets"])
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQuery_UnionAccepts(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"page.en", "folder"},
		{"[title]", "page:not([title])"},
		{"> page", ":parent"},
		{"file", "missing"},
	}

	for _, pair := range pairs {
		union, err := query.Compile(pair[0]+", "+pair[1], traverse.DepthFirst, tree.Provider{})
		require.NoError(t, err)
		left, err := query.Compile(pair[0], traverse.DepthFirst, tree.Provider{})
		require.NoError(t, err)
		right, err := query.Compile(pair[1], traverse.DepthFirst, tree.Provider{})
		require.NoError(t, err)

		for name, node := range fixture() {
			u, err := union.Accepts(node)
			require.NoError(t, err)
			l, err := left.Accepts(node)
			require.NoError(t, err)
			r, err := right.Accepts(node)
			require.NoError(t, err)
			assert.Equal(t, l || r, u, "%s against %s", union, name)
		}
	}
}

func TestQuery_FirstLastMatchEq(t *testing.T) {
	t.Parallel()

	n := fixture()
	all, err := query.Compile("* page", traverse.DepthFirst, tree.Provider{})
	require.NoError(t, err)
	matches := names(t, all, n["root"])

	first, err := query.Compile("* page:first", traverse.DepthFirst, tree.Provider{})
	require.NoError(t, err)
	last, err := query.Compile("* page:last", traverse.DepthFirst, tree.Provider{})
	require.NoError(t, err)

	assert.Equal(t, matches[:1], names(t, first, n["root"]))
	assert.Equal(t, matches[len(matches)-1:], names(t, last, n["root"]))

	for k := range len(matches) + 2 {
		eq, err := query.Compile("* page:eq("+strconv.Itoa(k)+")", traverse.DepthFirst, tree.Provider{})
		require.NoError(t, err)

		got := names(t, eq, n["root"])
		if k < len(matches) {
			assert.Equal(t, []string{matches[k]}, got)
		} else {
			assert.Empty(t, got)
		}
	}
}

func TestQuery_SinglePass(t *testing.T) {
	t.Parallel()

	n := fixture()
	input := []*tree.Resource{n["root"], n["content"], n["en"], n["assets"]}

	pulls := 0
	counting := func(yield func(*tree.Resource) bool) {
		for _, r := range input {
			pulls++
			if !yield(r) {
				return
			}
		}
	}

	q, err := query.Compile("page, folder, root, file, * page:last", traverse.DepthFirst, tree.Provider{})
	require.NoError(t, err)

	var got []string
	for r, err := range q.Apply(counting) {
		require.NoError(t, err)
		got = append(got, r.Name())
	}

	assert.Equal(t, len(input), pulls)
	// the final page below any input is contact, found under en
	assert.Equal(t, []string{"root", "content", "en", "contact", "assets"}, got)
}

func TestQuery_Idempotent(t *testing.T) {
	t.Parallel()

	n := fixture()
	q, err := query.Compile("* page, * file", traverse.DepthFirst, tree.Provider{})
	require.NoError(t, err)

	var first []*tree.Resource
	for r, err := range q.Apply(slices.Values([]*tree.Resource{n["root"]})) {
		require.NoError(t, err)
		first = append(first, r)
	}

	self, err := query.Compile("", traverse.DepthFirst, tree.Provider{})
	require.NoError(t, err)

	var second []*tree.Resource
	for r, err := range self.Apply(slices.Values(first)) {
		require.NoError(t, err)
		second = append(second, r)
	}

	assert.Equal(t, first, second)
}

func TestQuery_StopsEarly(t *testing.T) {
	t.Parallel()

	n := fixture()
	q, err := query.Compile("* page", traverse.DepthFirst, tree.Provider{})
	require.NoError(t, err)

	next, stop := iter.Pull2(q.Apply(slices.Values([]*tree.Resource{n["root"]})))
	defer stop()

	r, err, ok := next()
	require.True(t, ok)
	require.NoError(t, err)
	assert.Equal(t, "en", r.Name())

	// a query can be applied again while a previous evaluation is open
	again := names(t, q, n["de"])
	assert.Equal(t, []string{"impressum"}, again)
}

func TestCompile_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		selector string
		want     []error
	}{
		{name: "syntax", selector: "a[b", want: []error{selector.ErrSyntax}},
		{name: "unknown_modifier", selector: "a:nope", want: []error{query.ErrUnknownModifier}},
		{name: "eq_without_argument", selector: "a:eq", want: []error{query.ErrInvalidArgument}},
		{name: "eq_not_a_number", selector: "a:eq(x)", want: []error{query.ErrInvalidArgument}},
		{name: "eq_negative", selector: "a:eq(-1)", want: []error{query.ErrInvalidArgument}},
		{name: "first_with_argument", selector: "a:first(2)", want: []error{query.ErrInvalidArgument}},
		{name: "not_without_argument", selector: "a:not", want: []error{query.ErrInvalidArgument}},
		{name: "nested_syntax", selector: "a:not(b[)", want: []error{query.ErrInvalidArgument, selector.ErrSyntax}},
		{name: "nested_unknown_modifier", selector: "a:has(b:nope)", want: []error{query.ErrInvalidArgument, query.ErrUnknownModifier}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := query.Compile(tt.selector, traverse.DepthFirst, tree.Provider{})
			require.Error(t, err)
			for _, want := range tt.want {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestCompileSelectors_UnknownOperator(t *testing.T) {
	t.Parallel()

	selectors := []selector.Selector{{Segments: []selector.Segment{{Operator: '%', First: true}}}}
	_, err := query.CompileSelectors(selectors, traverse.DepthFirst, tree.Provider{})
	assert.ErrorIs(t, err, query.ErrUnknownOperator)
}

var errBoom = errors.New("boom")

// failingProvider fails every request for direct children.
type failingProvider struct {
	tree.Provider
}

func (failingProvider) Children(*tree.Resource) iter.Seq2[*tree.Resource, error] {
	return func(yield func(*tree.Resource, error) bool) {
		yield(nil, errBoom)
	}
}

func TestQuery_ProviderError(t *testing.T) {
	t.Parallel()

	n := fixture()
	q, err := query.Compile("root, > *", traverse.DepthFirst, failingProvider{})
	require.NoError(t, err)

	var got []string
	var gotErr error
	for r, err := range q.Apply(slices.Values([]*tree.Resource{n["root"]})) {
		if err != nil {
			gotErr = err
			continue
		}
		got = append(got, r.Name())
	}

	assert.Equal(t, []string{"root"}, got)
	require.ErrorIs(t, gotErr, errBoom)

	_, err = q.Accepts(n["de"])
	assert.ErrorIs(t, err, errBoom)
}

func TestCompile_Logs(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	q, err := query.Compile("a > b, c", traverse.BreadthFirst, tree.Provider{}, query.WithLogger(zap.New(core)))
	require.NoError(t, err)
	assert.Equal(t, "a > b, c", q.String())
	assert.Len(t, q.Selectors(), 2)

	entries := logs.FilterMessage("compiled selector").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "a > b, c", fields["selector"])
	assert.Equal(t, int64(2), fields["alternatives"])
	assert.Equal(t, "breadth-first", fields["strategy"])
}
