// File: cmd/vendors.go
package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newVendorsCmd creates the `vendors` command, printing the vendor directory
// the sourcing engine quotes from.
func newVendorsCmd() *cobra.Command {
	vendorsCmd := &cobra.Command{
		Use:   "vendors",
		Short: "Lists the vendor directory",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getComponents(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to initialize mission runner: %w", err)
			}

			vendors := c.Service.Directory().Vendors()
			if viper.GetString("format") == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(vendors)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tRATING\tWHITELISTED")
			for _, v := range vendors {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%t\n", v.ID, v.Name, v.Category, v.Rating, v.IsWhitelisted)
			}
			return w.Flush()
		},
	}

	vendorsCmd.Flags().StringP("format", "f", "text", "output format: text or json")
	return vendorsCmd
}
