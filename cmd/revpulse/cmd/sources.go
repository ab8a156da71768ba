package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSourcesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List discovered sources and how each one loaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(application)

			reports, err := application.Reports.Sources(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SOURCE\tSTRATEGY\tSTATUS\tRECORDS\tNULL DATES\tNULL AMOUNTS\tERROR")
			for _, r := range reports {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
					r.Name, r.Strategy, r.Status, r.Records,
					r.Stats.NullDates, r.Stats.NullAmounts, r.Error)
			}
			return w.Flush()
		},
	}
}
