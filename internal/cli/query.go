package cli

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jacoelho/treeq/internal/config"
	"github.com/jacoelho/treeq/internal/datatree"
	"github.com/jacoelho/treeq/internal/exit"
	"github.com/jacoelho/treeq/internal/output"
	"github.com/jacoelho/treeq/internal/query"
	"github.com/jacoelho/treeq/internal/ratelimit"
	"github.com/jacoelho/treeq/internal/traverse"
	"github.com/jacoelho/treeq/internal/yamltree"
)

const stdinName = "-"

const queryHelp = `Print the nodes matching SELECTOR (reads stdin when no file is given).

With --tree data, attribute keys containing '.' or '[' or starting with '$'
are JSONPath expressions: [spec.replicas=3] tests a nested value. A member
key that contains a dot is written as a bracketed path with the closing
bracket escaped:

  treeq query "* object[$['app.kubernetes.io/name'\\]=web]" deploy.yaml`

func (a *app) queryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "query SELECTOR [FILE...]",
		Short: "Print the nodes matching SELECTOR (reads stdin when no file is given)",
		Long:  queryHelp,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.execute(args[0], args[1:])
		},
	}
}

func (a *app) runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run NAME [FILE...]",
		Short: "Run a named query from the configuration file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			text, err := a.cfg.Query(args[0])
			if err != nil {
				return err
			}
			a.logger.Debug("running named query", zap.String("name", args[0]), zap.String("selector", text))
			return a.execute(text, args[1:])
		},
	}
}

func (a *app) execute(text string, files []string) error {
	if len(files) == 0 {
		files = []string{stdinName}
	}

	var (
		matches []output.Match
		err     error
	)
	switch a.cfg.Tree {
	case config.TreeYAML:
		matches, err = search(a, text, yamltree.Provider{}, yamltree.ParseAll, files)
	default:
		matches, err = search(a, text, datatree.Provider{}, datatree.DecodeAll, files)
	}
	if err != nil {
		return err
	}

	formatter, err := output.NewWithWriter(a.streams.Out, a.cfg.Format, a.cfg.NoColor)
	if err != nil {
		return err
	}
	if err := formatter.Format(matches...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if len(matches) == 0 {
		a.result = exit.NoMatch()
	} else {
		a.result = exit.Matched()
	}
	return nil
}

// node is what the concrete trees have in common.
type node interface {
	comparable
	output.Node
}

// search compiles text once and evaluates it against every document of
// every file. Matches carry the file name when more than one file is read.
func search[T node](a *app, text string, base query.Provider[T], decode func(io.Reader) ([]T, error), files []string) ([]output.Match, error) {
	strategy := a.cfg.TraversalStrategy()
	provider := ratelimit.NewProvider(a.ctx, ratelimit.New(a.cfg.RateLimit), base)

	q, err := query.Compile(text, strategy, query.Provider[T](provider), query.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}

	var matches []output.Match
	for _, file := range files {
		start := time.Now()

		roots, err := readDocuments(a, file, decode)
		if err != nil {
			return nil, err
		}

		source := ""
		if len(files) > 1 {
			source = file
		}

		count := 0
		var scopeErr error
		for n, err := range q.Apply(scope(a.flags.scope, roots, base, strategy, &scopeErr)) {
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			matches = append(matches, output.From(source, n))
			count++
		}
		if scopeErr != nil {
			return nil, fmt.Errorf("%s: %w", file, scopeErr)
		}

		a.logger.Debug("evaluated input",
			zap.String("file", file),
			zap.Int("documents", len(roots)),
			zap.Int("matches", count),
			zap.Duration("duration", time.Since(start)),
		)
	}

	return matches, nil
}

func readDocuments[T any](a *app, file string, decode func(io.Reader) ([]T, error)) ([]T, error) {
	var r io.Reader = a.streams.In
	if file != stdinName {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	roots, err := decode(r)
	if errors.Is(err, yamltree.ErrEmptyDocument) || errors.Is(err, datatree.ErrEmptyDocument) {
		a.logger.Debug("empty input", zap.String("file", file))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return roots, nil
}

// scope yields the query input: the document roots alone, or every node
// of every document in traversal order. A traversal failure stops the
// sequence and is stored in errp.
func scope[T any](name string, roots []T, p query.Provider[T], strategy traverse.Strategy, errp *error) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, root := range roots {
			if !yield(root) {
				return
			}
			if name == ScopeRoot {
				continue
			}
			for n, err := range p.Descendants(root, strategy) {
				if err != nil {
					*errp = err
					return
				}
				if !yield(n) {
					return
				}
			}
		}
	}
}
