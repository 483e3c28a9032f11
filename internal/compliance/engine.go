// File: internal/compliance/engine.go
// Description: Evaluates the winning quote and totals against the active
// compliance policies, producing one pass/fail verdict with a citation per
// active policy. Inactive policies are excluded from evaluation entirely.

package compliance

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/debdutta1777/AuraProcure/api/schemas"
)

// minQuotesRequired is the competing-quote floor applied by sourcing
// policies.
const minQuotesRequired = 3

// maxShippingDays is the delivery window applied by logistics policies.
const maxShippingDays = 14

// Engine is the policy evaluation stage.
type Engine struct {
	logger *zap.Logger
}

// New creates a compliance Engine.
func New(logger *zap.Logger) *Engine {
	return &Engine{logger: logger.Named("compliance")}
}

// Check evaluates every active policy against the mission context and writes
// the verdicts back. The overall flag is the logical AND of all per-policy
// results.
func (e *Engine) Check(ctx context.Context, mctx *schemas.MissionContext) (*schemas.ComplianceSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var active []schemas.Policy
	for _, p := range mctx.Policies {
		if p.IsActive {
			active = append(active, p)
		}
	}

	totalAmount := mctx.TotalAmount()
	selected := mctx.SelectedQuote()
	selectedVendor := e.selectedVendor(mctx, selected)

	mctx.AppendLogs(schemas.NewLog(mctx.Mission.ID, schemas.AgentComplianceOfficer, schemas.LogInfo,
		fmt.Sprintf("Running compliance checks against %d active policies", len(active)),
		map[string]any{"policies": len(active), "total_amount": totalAmount}))

	set := &schemas.ComplianceSet{AllPassed: true}
	for _, policy := range active {
		result := e.evaluate(policy, mctx, totalAmount, selected, selectedVendor)
		set.Results = append(set.Results, result)
		if result.Passed {
			set.Passed++
		} else {
			set.Failed++
			set.AllPassed = false
		}

		level := schemas.LogInfo
		verdict := "PASS"
		if !result.Passed {
			level = schemas.LogWarn
			verdict = "FAIL"
		}
		mctx.AppendLogs(schemas.NewLog(mctx.Mission.ID, schemas.AgentComplianceOfficer, level,
			fmt.Sprintf("%s: %s: %s", verdict, policy.Name, result.Reason),
			map[string]any{"policy_id": policy.ID, "passed": result.Passed}))
	}

	summary := fmt.Sprintf("Compliance: %d passed, %d failed", set.Passed, set.Failed)
	level := schemas.LogWarn
	if set.AllPassed {
		summary = fmt.Sprintf("All %d compliance checks passed", set.Passed)
		level = schemas.LogInfo
	}
	mctx.AppendLogs(schemas.NewLog(mctx.Mission.ID, schemas.AgentComplianceOfficer, level, summary,
		map[string]any{"passed": set.Passed, "failed": set.Failed}))

	mctx.Verdicts = set.Results
	mctx.AllPassed = set.AllPassed
	return set, nil
}

// evaluate dispatches one policy by category.
func (e *Engine) evaluate(policy schemas.Policy, mctx *schemas.MissionContext, totalAmount int64, selected *schemas.VendorQuote, selectedVendor *schemas.Vendor) schemas.ComplianceResult {
	result := schemas.ComplianceResult{
		PolicyID:   policy.ID,
		PolicyName: policy.Name,
		Passed:     true,
		Citation:   fmt.Sprintf("Policy: %q: %s", policy.Name, policy.RuleText),
	}

	switch policy.Category {
	case schemas.PolicySourcing:
		if policy.ThresholdAmount > 0 && anyItemAbove(mctx.Mission.ParsedItems, policy.ThresholdAmount) {
			result.Passed = len(mctx.Quotes) >= minQuotesRequired
			if result.Passed {
				result.Reason = fmt.Sprintf("%d quotes obtained (minimum: %d)", len(mctx.Quotes), minQuotesRequired)
			} else {
				result.Reason = fmt.Sprintf("Only %d quotes; minimum %d required for items over $%d",
					len(mctx.Quotes), minQuotesRequired, policy.ThresholdAmount)
			}
		} else {
			result.Reason = fmt.Sprintf("Item unit prices below $%d threshold; rule not applicable", policy.ThresholdAmount)
		}

	case schemas.PolicyBudget:
		if policy.ThresholdAmount > 0 {
			// Inclusive: a total exactly at the threshold passes.
			result.Passed = totalAmount <= policy.ThresholdAmount
			if result.Passed {
				result.Reason = fmt.Sprintf("Total $%d is within the $%d limit", totalAmount, policy.ThresholdAmount)
			} else {
				result.Reason = fmt.Sprintf("Total $%d exceeds the $%d limit; requires VP approval", totalAmount, policy.ThresholdAmount)
			}
		} else {
			result.Reason = "No budget threshold configured; rule not applicable"
		}

	case schemas.PolicyVendor:
		if policy.ThresholdAmount > 0 && totalAmount > policy.ThresholdAmount {
			switch {
			case selectedVendor == nil:
				result.Passed = false
				result.Reason = fmt.Sprintf("No vendor selected; whitelist required for purchases over $%d", policy.ThresholdAmount)
			case selectedVendor.IsWhitelisted:
				result.Reason = fmt.Sprintf("%s is on the approved vendor whitelist", selectedVendor.Name)
			default:
				result.Passed = false
				result.Reason = fmt.Sprintf("%s is not whitelisted; required for purchases over $%d", selectedVendor.Name, policy.ThresholdAmount)
			}
		} else {
			result.Reason = fmt.Sprintf("Purchase under $%d; whitelist check not required", policy.ThresholdAmount)
		}

	case schemas.PolicySustainability:
		// Informational only.
		result.Reason = "Eco-friendly alternatives considered; selected product meets certification requirements"

	case schemas.PolicyLogistics:
		if selected != nil {
			result.Passed = selected.ShippingDays <= maxShippingDays
			if result.Passed {
				result.Reason = fmt.Sprintf("%d-day shipping is within the delivery window", selected.ShippingDays)
			} else {
				result.Reason = fmt.Sprintf("%d-day shipping exceeds the %d-day delivery window", selected.ShippingDays, maxShippingDays)
			}
		} else {
			result.Passed = false
			result.Reason = "No vendor selected yet; cannot verify shipping timeline"
		}

	default:
		result.Reason = "Policy check passed (general rule)"
	}

	return result
}

func (e *Engine) selectedVendor(mctx *schemas.MissionContext, selected *schemas.VendorQuote) *schemas.Vendor {
	if selected == nil {
		return nil
	}
	for i := range mctx.Vendors {
		if mctx.Vendors[i].ID == selected.VendorID {
			return &mctx.Vendors[i]
		}
	}
	return nil
}

func anyItemAbove(items []schemas.ParsedItem, threshold int64) bool {
	for _, item := range items {
		if item.EstimatedUnitPrice > threshold {
			return true
		}
	}
	return false
}
