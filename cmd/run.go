// File: cmd/run.go
package cmd

import (
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/debdutta1777/AuraProcure/api/schemas"
	"github.com/debdutta1777/AuraProcure/internal/config"
	"github.com/debdutta1777/AuraProcure/internal/observability"
	"github.com/debdutta1777/AuraProcure/internal/orchestrator"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// newRunCmd creates and configures the `run` command.
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [requests...]",
		Short: "Launches a procurement mission for each free-text request",
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their Viper keys so command-line flags correctly
			// override values from the config file and environment.
			if err := viper.BindPFlag("engine.max_concurrent_missions", cmd.Flags().Lookup("concurrency")); err != nil {
				return err
			}
			if err := viper.BindPFlag("database.url", cmd.Flags().Lookup("database-url")); err != nil {
				return err
			}
			if err := viper.BindPFlag("directory.vendors_file", cmd.Flags().Lookup("vendors-file")); err != nil {
				return err
			}
			if err := viper.BindPFlag("directory.policies_file", cmd.Flags().Lookup("policies-file")); err != nil {
				return err
			}
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			// Re-unmarshal so the flag bindings from PreRunE take precedence.
			cfg := config.Get()
			if err := viper.Unmarshal(cfg); err != nil {
				return fmt.Errorf("failed to re-unmarshal config with flag overrides: %w", err)
			}

			logger.Info("Launching procurement missions",
				zap.Int("requests", len(args)),
				zap.Int("concurrency", cfg.Engine.MaxConcurrentMissions),
			)

			c, err := getComponents(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize mission runner: %w", err)
			}

			outcomes, err := c.Service.LaunchAll(ctx, args)
			if err != nil {
				return err
			}

			format := viper.GetString("format")
			out := cmd.OutOrStdout()
			for i, outcome := range outcomes {
				if err := printOutcome(out, args[i], outcome, format); err != nil {
					return err
				}
			}
			return nil
		},
	}

	runCmd.Flags().Int("concurrency", 0, "maximum missions running at once (0 keeps the configured value)")
	runCmd.Flags().String("database-url", "", "PostgreSQL URL for the mission archive (empty disables archiving)")
	runCmd.Flags().String("vendors-file", "", "YAML file overriding the built-in vendor directory")
	runCmd.Flags().String("policies-file", "", "YAML file overriding the built-in policy set")
	runCmd.Flags().StringP("format", "f", "text", "output format: text or json")

	return runCmd
}

// printOutcome renders one mission outcome to w.
func printOutcome(w io.Writer, request string, outcome *orchestrator.Outcome, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if outcome.Clarification != nil {
			return enc.Encode(outcome.Clarification)
		}
		return enc.Encode(outcome.Result)
	}

	fmt.Fprintf(w, "Request: %s\n", request)
	if outcome.Clarification != nil {
		fmt.Fprintf(w, "  Status: %s\n", outcome.Clarification.Status)
		fmt.Fprintf(w, "  Question: %s\n", outcome.Clarification.Question)
		fmt.Fprintln(w)
		return nil
	}

	res := outcome.Result
	fmt.Fprintf(w, "  Mission: %s\n", res.MissionID)
	fmt.Fprintf(w, "  Status: %s\n", res.Status)
	if q := selectedQuote(res.Quotes); q != nil {
		fmt.Fprintf(w, "  Selected: %d x %s from %s ($%d)\n", q.Quantity, q.ItemName, q.VendorName, q.TotalPrice)
	}
	fmt.Fprintf(w, "  Compliance: %s\n", complianceLine(res.Compliance, res.AllPassed))
	if res.NeedsApproval && res.Approval != nil {
		fmt.Fprintf(w, "  Awaiting approval: %s\n", res.Approval.Description)
		fmt.Fprintf(w, "  Decide with: auraprocure approve %s --approver <name> [--reject]\n", res.MissionID)
	}
	if res.TotalAmount > 0 {
		fmt.Fprintf(w, "  Total: $%d (estimated savings $%d)\n", res.TotalAmount, res.Savings)
	}
	for _, doc := range res.Documents {
		fmt.Fprintf(w, "  Document: %s (%s)\n", doc.Title, doc.Type)
	}
	if res.Error != "" {
		fmt.Fprintf(w, "  Error: %s\n", res.Error)
	}
	fmt.Fprintln(w)
	return nil
}

func selectedQuote(quotes []schemas.VendorQuote) *schemas.VendorQuote {
	for i := range quotes {
		if quotes[i].Selected {
			return &quotes[i]
		}
	}
	return nil
}

func complianceLine(verdicts []schemas.ComplianceResult, allPassed bool) string {
	if len(verdicts) == 0 {
		return "no active policies"
	}
	passed := 0
	var failures []string
	for _, v := range verdicts {
		if v.Passed {
			passed++
		} else {
			failures = append(failures, v.PolicyName)
		}
	}
	if allPassed {
		return fmt.Sprintf("%d/%d passed", passed, len(verdicts))
	}
	return fmt.Sprintf("%d/%d passed (failed: %s)", passed, len(verdicts), strings.Join(failures, ", "))
}
