package ratelimit

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/treeq/internal/query"
	"github.com/jacoelho/treeq/internal/traverse"
	"github.com/jacoelho/treeq/internal/tree"
)

func sampleTree() *tree.Resource {
	return tree.New("root", "root", nil).Add(
		tree.New("a", "page", nil).Add(tree.New("a1", "page", nil)),
		tree.New("b", "page", nil),
	)
}

func TestProvider_PassesThrough(t *testing.T) {
	t.Parallel()

	root := sampleTree()
	p := NewProvider(context.Background(), New(0), query.Provider[*tree.Resource](tree.Provider{}))

	q, err := query.Compile("* page", traverse.DepthFirst, query.Provider[*tree.Resource](p))
	require.NoError(t, err)

	var got []string
	for r, err := range q.Apply(slices.Values([]*tree.Resource{root})) {
		require.NoError(t, err)
		got = append(got, r.Name())
	}
	assert.Equal(t, []string{"a", "a1", "b"}, got)
}

func TestProvider_Cancelled(t *testing.T) {
	t.Parallel()

	root := sampleTree()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewProvider(ctx, New(0), query.Provider[*tree.Resource](tree.Provider{}))

	q, err := query.Compile("* page", traverse.DepthFirst, query.Provider[*tree.Resource](p))
	require.NoError(t, err)

	var gotErr error
	for _, err := range q.Apply(slices.Values([]*tree.Resource{root})) {
		gotErr = err
	}
	require.ErrorIs(t, gotErr, context.Canceled)
}

func TestProvider_CancelledMidway(t *testing.T) {
	t.Parallel()

	root := sampleTree()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := NewProvider(ctx, New(0), query.Provider[*tree.Resource](tree.Provider{}))

	var got []string
	var gotErr error
	for r, err := range p.Descendants(root, traverse.DepthFirst) {
		if err != nil {
			gotErr = err
			break
		}
		got = append(got, r.Name())
		cancel()
	}

	assert.Equal(t, []string{"a"}, got)
	require.ErrorIs(t, gotErr, context.Canceled)
}
