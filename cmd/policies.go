// File: cmd/policies.go
package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newPoliciesCmd creates the `policies` command, printing the policy set the
// compliance engine checks missions against.
func newPoliciesCmd() *cobra.Command {
	policiesCmd := &cobra.Command{
		Use:   "policies",
		Short: "Lists the procurement policy set",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getComponents(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to initialize mission runner: %w", err)
			}

			policies := c.Service.Directory().Policies()
			if viper.GetString("format") == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(policies)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tTHRESHOLD\tACTIVE")
			for _, p := range policies {
				threshold := "-"
				if p.ThresholdAmount > 0 {
					threshold = fmt.Sprintf("$%d", p.ThresholdAmount)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", p.ID, p.Name, p.Category, threshold, p.IsActive)
			}
			return w.Flush()
		},
	}

	policiesCmd.Flags().StringP("format", "f", "text", "output format: text or json")
	return policiesCmd
}
