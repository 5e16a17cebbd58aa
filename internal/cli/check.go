package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/jacoelho/treeq/internal/selector"
)

func (a *app) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check SELECTOR...",
		Short: "Validate selectors and print their canonical form",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var result *multierror.Error
			for _, text := range args {
				selectors, err := selector.Parse(text)
				if err != nil {
					result = multierror.Append(result, err)
					continue
				}
				fmt.Fprintf(a.streams.Out, "ok: %s\n", selector.Format(selectors))
			}
			return result.ErrorOrNil()
		},
	}
}

func (a *app) explainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explain SELECTOR",
		Short: "Print the canonical form and structure of a selector",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			selectors, err := selector.Parse(args[0])
			if err != nil {
				return err
			}
			return explain(a.streams.Out, selectors)
		},
	}
}

func explain(w io.Writer, selectors []selector.Selector) error {
	var b strings.Builder
	fmt.Fprintf(&b, "canonical: %s\n", selector.Format(selectors))
	for i, sel := range selectors {
		fmt.Fprintf(&b, "alternative %d: %s\n", i+1, sel)
		for j, seg := range sel.Segments {
			fmt.Fprintf(&b, "  segment %d: %s", j+1, operatorName(seg.Operator))
			if seg.Type != "" {
				fmt.Fprintf(&b, " type=%q", seg.Type)
			}
			if seg.Name != "" {
				fmt.Fprintf(&b, " name=%q", seg.Name)
			}
			b.WriteByte('\n')
			for _, attr := range seg.Attributes {
				if attr.Operator == selector.OpExists {
					fmt.Fprintf(&b, "    attribute %q exists\n", attr.Key)
					continue
				}
				fmt.Fprintf(&b, "    attribute %q %s %q\n", attr.Key, attr.Operator, attr.Value)
			}
			for _, mod := range seg.Modifiers {
				if mod.HasArgument {
					fmt.Fprintf(&b, "    modifier :%s(%s)\n", mod.Name, mod.Argument)
					continue
				}
				fmt.Fprintf(&b, "    modifier :%s\n", mod.Name)
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func operatorName(op rune) string {
	switch op {
	case selector.None:
		return "self"
	case selector.Descendant:
		return "descendant"
	case selector.Child:
		return "child"
	case selector.Adjacent:
		return "adjacent"
	case selector.Sibling:
		return "sibling"
	}
	return string(op)
}
