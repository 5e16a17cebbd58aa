// Package cli implements the treeq command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jacoelho/treeq/internal/config"
	"github.com/jacoelho/treeq/internal/exit"
)

const (
	ScopeSubtree = "subtree"
	ScopeRoot    = "root"
)

var ErrUnknownScope = errors.New("unknown scope")

// Streams are the process streams the commands read and write.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type flags struct {
	configFile string
	verbose    bool
	strategy   string
	tree       string
	format     string
	rateLimit  float64
	noColor    bool
	scope      string
}

// app holds the state shared by every command of one invocation.
type app struct {
	ctx     context.Context
	streams Streams
	flags   flags
	cfg     *config.Config
	logger  *zap.Logger
	result  *exit.Result
}

// Run executes the command line in args (without the program name) and
// returns the process exit code: 0 when something matched, 1 when
// nothing did and 2 on any error.
func Run(ctx context.Context, args []string, streams Streams) int {
	a := &app{ctx: ctx, streams: streams, logger: zap.NewNop()}
	defer func() { _ = a.logger.Sync() }()

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)

	if err := root.ExecuteContext(ctx); err != nil {
		a.result = exit.FromError(err)
	}

	if a.result == nil {
		return exit.CodeMatch
	}
	if a.result.ExitCode == exit.CodeError {
		a.result.Output = streams.Err
	} else {
		a.result.Output = streams.Out
	}
	a.result.Print()
	return a.result.ExitCode
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "treeq",
		Short:         "treeq - select nodes of JSON and YAML documents with jQuery-like selectors",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.configFile, "config", "c", "", "Configuration file")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "Enable debug logging on stderr")
	pf.StringVar(&a.flags.strategy, "strategy", "", "Descendant search strategy: depth-first or breadth-first")
	pf.StringVar(&a.flags.tree, "tree", "", "Input tree: data (JSON/YAML values) or yaml (YAML syntax nodes)")
	pf.StringVarP(&a.flags.format, "format", "o", "", "Output format: text, json or yaml")
	pf.Float64Var(&a.flags.rateLimit, "rate-limit", 0, "Traversal requests per second (0 for unlimited)")
	pf.BoolVar(&a.flags.noColor, "no-color", false, "Disable coloured text output")
	pf.StringVar(&a.flags.scope, "scope", ScopeSubtree, "Query input: subtree (every node) or root (document roots only)")

	root.AddCommand(a.queryCommand())
	root.AddCommand(a.runCommand())
	root.AddCommand(a.checkCommand())
	root.AddCommand(a.explainCommand())

	return root
}

// setup loads the configuration, applies flag overrides and builds the
// logger. Flags win over the configuration file.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.flags.configFile != "" {
		loaded, err := config.Load(a.flags.configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("strategy") {
		cfg.Strategy = a.flags.strategy
	}
	if changed("tree") {
		cfg.Tree = a.flags.tree
	}
	if changed("format") {
		cfg.Format = a.flags.format
	}
	if changed("rate-limit") {
		cfg.RateLimit = a.flags.rateLimit
	}
	if changed("no-color") {
		cfg.NoColor = a.flags.noColor
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	switch a.flags.scope {
	case ScopeSubtree, ScopeRoot:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownScope, a.flags.scope)
	}

	if a.flags.verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		a.logger = logger
	}
	a.logger = a.logger.With(zap.String("run_id", uuid.NewString()))
	a.cfg = cfg

	return nil
}
