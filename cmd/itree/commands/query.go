package commands

import (
	"fmt"
	"strconv"

	"github.com/henderiw/intervaltree/pkg/interval"
	"github.com/henderiw/intervaltree/pkg/tree"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/labels"
)

func newQueryCommand(opts *rootOptions) *cobra.Command {
	var selector string
	cmd := &cobra.Command{
		Use:   "query <left-right>...",
		Short: "List the intervals overlapping each query interval",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queries := make(interval.Intervals, 0, len(args))
			for _, arg := range args {
				q, err := interval.Parse(arg)
				if err != nil {
					return err
				}
				queries = append(queries, q)
			}
			return runQueries(cmd, opts, selector, queries)
		},
	}
	cmd.Flags().StringVarP(&selector, "selector", "l", "", "label selector to filter results, e.g. team=a")
	return cmd
}

func newStabCommand(opts *rootOptions) *cobra.Command {
	var selector string
	cmd := &cobra.Command{
		Use:   "stab <point>...",
		Short: "List the intervals containing each point",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queries := make(interval.Intervals, 0, len(args))
			for _, arg := range args {
				p, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("invalid point %q: %w", arg, err)
				}
				queries = append(queries, interval.Point(p))
			}
			return runQueries(cmd, opts, selector, queries)
		},
	}
	cmd.Flags().StringVarP(&selector, "selector", "l", "", "label selector to filter results, e.g. team=a")
	return cmd
}

func newNodesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "nodes",
		Short: "Print the nodes of the interval tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, _, err := buildTree(cmd, opts)
			if err != nil {
				return err
			}
			t.PrintNodes(cmd.OutOrStdout())
			return nil
		},
	}
}

func buildTree(cmd *cobra.Command, opts *rootOptions) (*tree.Tree, string, error) {
	c, err := opts.load()
	if err != nil {
		return nil, "", err
	}
	entries, err := c.Entries()
	if err != nil {
		return nil, "", err
	}
	l := newLogger(c.Logging, cmd.ErrOrStderr())
	t, err := tree.New(entries, tree.WithLogger(l))
	if err != nil {
		return nil, "", err
	}
	return t, c.Output.Format, nil
}

func runQueries(cmd *cobra.Command, opts *rootOptions, selector string, queries interval.Intervals) error {
	sel, err := labels.Parse(selector)
	if err != nil {
		return fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	t, format, err := buildTree(cmd, opts)
	if err != nil {
		return err
	}

	results := []result{}
	for _, q := range queries {
		entries, err := t.GetByLabel(q, sel)
		if err != nil {
			return err
		}
		for _, e := range entries {
			results = append(results, result{Query: q.String(), Range: e.Interval().String(), Labels: e.Labels()})
		}
	}
	return printResults(cmd.OutOrStdout(), format, results)
}
