package config

import (
	"errors"
	"fmt"
	"os"
	"maps"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"

	"github.com/jacoelho/treeq/internal/selector"
	"github.com/jacoelho/treeq/internal/traverse"
)

const (
	TreeData = "data"
	TreeYAML = "yaml"

	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var (
	ErrUnknownTree   = errors.New("unknown tree kind")
	ErrUnknownFormat = errors.New("unknown output format")
	ErrInvalidRate   = errors.New("rate limit cannot be negative")
	ErrUnknownQuery  = errors.New("unknown query")
	ErrInvalidQuery  = errors.New("invalid query")
)

// Config represents the complete configuration for the treeq tool.
type Config struct {
	Strategy  string            `yaml:"strategy"`
	Tree      string            `yaml:"tree"`
	Format    string            `yaml:"format"`
	RateLimit float64           `yaml:"rate_limit"` // traversal requests per second (0 = unlimited)
	NoColor   bool              `yaml:"no_color"`
	Queries   map[string]string `yaml:"queries"`
}

func Default() *Config {
	return &Config{
		Strategy: traverse.DepthFirst.String(),
		Tree:     TreeData,
		Format:   FormatText,
	}
}

// Load reads a YAML config file on top of the defaults. Unknown keys are
// rejected so typos do not silently fall back to a default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports every problem in the configuration at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if _, err := traverse.ParseStrategy(c.Strategy); err != nil {
		result = multierror.Append(result, err)
	}

	switch c.Tree {
	case TreeData, TreeYAML:
	default:
		result = multierror.Append(result, fmt.Errorf("%w: %q", ErrUnknownTree, c.Tree))
	}

	switch c.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		result = multierror.Append(result, fmt.Errorf("%w: %q", ErrUnknownFormat, c.Format))
	}

	if c.RateLimit < 0 {
		result = multierror.Append(result, fmt.Errorf("%w: %v", ErrInvalidRate, c.RateLimit))
	}

	for _, name := range slices.Sorted(maps.Keys(c.Queries)) {
		if _, err := selector.Parse(c.Queries[name]); err != nil {
			result = multierror.Append(result, fmt.Errorf("%w %q: %w", ErrInvalidQuery, name, err))
		}
	}

	return result.ErrorOrNil()
}

func (c *Config) TraversalStrategy() traverse.Strategy {
	strategy, err := traverse.ParseStrategy(c.Strategy)
	if err != nil {
		return traverse.DepthFirst
	}
	return strategy
}

// Query returns the selector text stored under name.
func (c *Config) Query(name string) (string, error) {
	text, ok := c.Queries[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownQuery, name)
	}
	return text, nil
}
