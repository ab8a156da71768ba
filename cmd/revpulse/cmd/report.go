package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"revpulse/internal/services"
	"revpulse/pkg/contracts/domain"
)

func newReportCmd(opts *globalOptions) *cobra.Command {
	var (
		filters filterFlags
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the revenue and sessions report",
		Long: `Load every source, apply the filter and print the aggregated report.

Examples:
  revpulse report
  revpulse report --location Aylesbury --location Berkhamsted
  revpulse report --period June --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(application)

			view, err := application.Reports.Report(cmd.Context(), filters.state(cmd))
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			return printReport(cmd.OutOrStdout(), view)
		},
	}

	filters.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func printReport(out io.Writer, view *services.ReportView) error {
	if view.Empty {
		_, err := fmt.Fprintln(out, view.Message)
		return err
	}

	res := view.Result
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Records\t%d\n", res.RecordCount)
	fmt.Fprintf(w, "Total revenue\t%s\n", res.TotalRevenue.StringFixed(2))
	fmt.Fprintf(w, "Total sessions\t%s\n", res.TotalSessions.String())
	fmt.Fprintf(w, "Avg monthly revenue\t%s\n", res.AvgMonthlyRevenue.StringFixed(2))

	fmt.Fprintln(w, "\nLOCATION\tREVENUE")
	for _, lr := range res.RevenueByLocation {
		fmt.Fprintf(w, "%s\t%s\n", lr.Location, lr.Revenue.StringFixed(2))
	}

	fmt.Fprintln(w, "\nPERIOD\tLOCATION\tREVENUE")
	for _, pl := range res.RevenueByPeriodLocation {
		fmt.Fprintf(w, "%s\t%s\t%s\n", pl.Period, pl.Location, pl.Revenue.StringFixed(2))
	}

	printPivot(w, res.SessionsPivot)
	return w.Flush()
}

func printPivot(w io.Writer, pivot domain.SessionsPivot) {
	if len(pivot.Items) == 0 {
		return
	}
	fmt.Fprintf(w, "\nITEM\t%s\n", strings.ToUpper(strings.Join(pivot.Periods, "\t")))
	for i, item := range pivot.Items {
		cells := make([]string, len(pivot.Periods))
		for j := range pivot.Periods {
			cells[j] = pivot.Sessions[i][j].String()
		}
		fmt.Fprintf(w, "%s\t%s\n", item, strings.Join(cells, "\t"))
	}
}
