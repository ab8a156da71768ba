package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"revpulse/pkg/contracts"
)

func newVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(contracts.GetVersionInfo())
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), contracts.GetFullVersionString())
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print version information as JSON")
	return cmd
}
