package commands

import (
	"fmt"

	"github.com/henderiw/intervaltree/pkg/iprange"
	"github.com/spf13/cobra"
	"go4.org/netipx"
	"k8s.io/apimachinery/pkg/labels"
)

func newIPCommand(opts *rootOptions) *cobra.Command {
	var selector string
	cmd := &cobra.Command{
		Use:   "ip <range|prefix|address>...",
		Short: "List the ip ranges overlapping each query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queries := make([]netipx.IPRange, 0, len(args))
			for _, arg := range args {
				q, err := iprange.ParseRange(arg)
				if err != nil {
					return err
				}
				queries = append(queries, q)
			}
			sel, err := labels.Parse(selector)
			if err != nil {
				return fmt.Errorf("invalid selector %q: %w", selector, err)
			}

			c, err := opts.load()
			if err != nil {
				return err
			}
			entries, err := c.IPEntries()
			if err != nil {
				return err
			}
			t, err := iprange.New(entries)
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
					results = append(results, result{Query: q.String(), Range: entryRange(e), Labels: e.Labels()})
				}
			}
			return printResults(cmd.OutOrStdout(), c.Output.Format, results)
		},
	}
	cmd.Flags().StringVarP(&selector, "selector", "l", "", "label selector to filter results, e.g. pool=a")
	return cmd
}

// entryRange shows prefixes from the config the way they were written.
func entryRange(e iprange.Entry) string {
	if re, ok := e.(iprange.RouteEntry); ok {
		return re.Route().Prefix().String()
	}
	return e.Range().String()
}
