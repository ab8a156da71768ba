package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"revpulse/internal/services"
)

func newExportCmd(opts *globalOptions) *cobra.Command {
	var (
		filters filterFlags
		output  string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered transactions to a CSV or XLSX file",
		Long: `Export the canonical records that match the filter.

The CSV has the columns Date, Item, Quantity Sold, Amount Inc Tax, location
and period. The XLSX workbook adds revenue and sessions summary sheets.

Examples:
  revpulse export
  revpulse export --period June --output june.csv
  revpulse export --format xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format != services.FormatCSV && format != services.FormatXLSX {
				return fmt.Errorf("unsupported format %q, use csv or xlsx", format)
			}

			application, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(application)

			path := output
			if path == "" {
				path = application.Config.ExportPath()
				if format == services.FormatXLSX {
					path = strings.TrimSuffix(path, application.Config.Export.FileName) + services.ExportFileName(format)
				}
			}

			written, count, err := application.Reports.ExportToFile(cmd.Context(), application.Files, path, format, filters.state(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", count, written)
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default from export config)")
	cmd.Flags().StringVarP(&format, "format", "f", services.FormatCSV, "output format: csv or xlsx")
	return cmd
}
