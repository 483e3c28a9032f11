// File: cmd/approve.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/debdutta1777/AuraProcure/internal/observability"
)

// newApproveCmd creates and configures the `approve` command. Suspended
// missions live in the running process, so approve is used from the
// interactive shell after a `run` in the same session.
func newApproveCmd() *cobra.Command {
	approveCmd := &cobra.Command{
		Use:   "approve [mission-id]",
		Short: "Resolves a mission suspended at the approval gate",
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			c, err := getComponents(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize mission runner: %w", err)
			}

			out := cmd.OutOrStdout()
			suspended := c.Service.Suspended()
			if len(args) == 0 {
				// No mission named; list what is waiting.
				if len(suspended) == 0 {
					fmt.Fprintln(out, "No missions awaiting approval.")
					return nil
				}
				for _, m := range suspended {
					fmt.Fprintf(out, "%s  %s\n", m.ID, m.RequestText)
				}
				return nil
			}

			approver, err := cmd.Flags().GetString("approver")
			if err != nil {
				return err
			}
			reject, err := cmd.Flags().GetBool("reject")
			if err != nil {
				return err
			}

			missionID := args[0]
			logger.Info("Resolving approval",
				zap.String("mission_id", missionID),
				zap.String("approver", approver),
				zap.Bool("approved", !reject),
			)

			result, err := c.Service.Approve(ctx, missionID, approver, !reject)
			if err != nil {
				return err
			}

			if viper.GetString("format") == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Fprintf(out, "Mission %s: %s\n", result.MissionID, result.Status)
			for _, doc := range result.Documents {
				fmt.Fprintf(out, "  Document: %s (%s)\n", doc.Title, doc.Type)
			}
			if result.Error != "" {
				fmt.Fprintf(out, "  Error: %s\n", result.Error)
			}
			return nil
		},
	}

	approveCmd.Flags().String("approver", "", "name recorded as the human decision maker")
	approveCmd.Flags().Bool("reject", false, "reject instead of approving")
	approveCmd.Flags().StringP("format", "f", "text", "output format: text or json")

	return approveCmd
}
