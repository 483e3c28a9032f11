// File: internal/hitl/gate.go
// Description: The human-in-the-loop approval gate. Decides whether a mission
// may proceed automatically or must suspend until a human approves it, and
// applies the human's decision when it arrives.

package hitl

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/debdutta1777/AuraProcure/api/schemas"
	"github.com/debdutta1777/AuraProcure/internal/config"
)

// Gate is the approval stage. Escalation rules are checked in order: a failed
// budget policy first, then the configured general threshold. Anything else
// is auto-approved.
type Gate struct {
	logger *zap.Logger
	nowFn  func() time.Time

	generalThreshold int64
}

// New creates an approval Gate configured from the approval section.
func New(cfg config.ApprovalConfig, logger *zap.Logger) *Gate {
	return &Gate{
		logger:           logger.Named("hitl"),
		nowFn:            time.Now,
		generalThreshold: cfg.GeneralThreshold,
	}
}

// WithClock overrides the gate's clock. Test hook.
func (g *Gate) WithClock(nowFn func() time.Time) *Gate {
	g.nowFn = nowFn
	return g
}

// Evaluate decides whether the mission needs human approval. It records the
// request (pending or auto-approved) on the context and returns the decision.
func (g *Gate) Evaluate(ctx context.Context, mctx *schemas.MissionContext) (*schemas.ApprovalDecision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	totalAmount := mctx.TotalAmount()
	now := g.nowFn().UTC()

	decision := &schemas.ApprovalDecision{
		Approval: schemas.ApprovalRequest{
			ID:          uuid.NewString(),
			MissionID:   mctx.Mission.ID,
			Description: g.describe(mctx, totalAmount),
			TotalAmount: totalAmount,
			CreatedAt:   now,
		},
	}

	if reason, escalate := g.escalationReason(mctx, totalAmount); escalate {
		decision.RequiresApproval = true
		decision.Reason = reason
		decision.Approval.Status = schemas.ApprovalPending

		mctx.AppendLogs(schemas.NewLog(mctx.Mission.ID, schemas.AgentHITLBridge, schemas.LogWarn,
			fmt.Sprintf("Human approval required: %s", reason),
			map[string]any{"approval_id": decision.Approval.ID, "total_amount": totalAmount}))
	} else {
		decision.Reason = reason
		decision.Approval.Status = schemas.ApprovalApproved
		decision.Approval.Approver = schemas.AutoApprover
		approvedAt := now
		decision.Approval.ApprovedAt = &approvedAt

		mctx.AppendLogs(schemas.NewLog(mctx.Mission.ID, schemas.AgentHITLBridge, schemas.LogInfo,
			fmt.Sprintf("Auto-approved: %s", reason),
			map[string]any{"approval_id": decision.Approval.ID, "total_amount": totalAmount}))
	}

	mctx.Approval = &decision.Approval
	return decision, nil
}

// ProcessDecision applies a human decision to the mission's pending request.
// A request transitions exactly once; any further decision is an error.
func (g *Gate) ProcessDecision(ctx context.Context, mctx *schemas.MissionContext, approver string, approved bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if mctx.Approval == nil {
		return fmt.Errorf("mission %s has no approval request", mctx.Mission.ID)
	}
	if mctx.Approval.Status != schemas.ApprovalPending {
		return fmt.Errorf("approval %s already resolved as %s", mctx.Approval.ID, mctx.Approval.Status)
	}
	if approver == "" {
		return fmt.Errorf("approver identity is required")
	}

	now := g.nowFn().UTC()
	mctx.Approval.Approver = approver
	mctx.Approval.ApprovedAt = &now
	if approved {
		mctx.Approval.Status = schemas.ApprovalApproved
	} else {
		mctx.Approval.Status = schemas.ApprovalRejected
	}

	verdict := "approved"
	level := schemas.LogInfo
	if !approved {
		verdict = "rejected"
		level = schemas.LogWarn
	}
	mctx.AppendLogs(schemas.NewLog(mctx.Mission.ID, schemas.AgentHITLBridge, level,
		fmt.Sprintf("Purchase %s by %s", verdict, approver),
		map[string]any{"approval_id": mctx.Approval.ID, "approved": approved}))
	return nil
}

// escalationReason returns why the mission needs a human, if it does. The
// budget policy outranks the general threshold so the cited rule is the one
// the purchase actually tripped.
func (g *Gate) escalationReason(mctx *schemas.MissionContext, totalAmount int64) (string, bool) {
	for _, verdict := range mctx.Verdicts {
		if verdict.Passed {
			continue
		}
		if policy := g.findPolicy(mctx, verdict.PolicyID); policy != nil && policy.Category == schemas.PolicyBudget {
			return fmt.Sprintf("Total $%d exceeds the $%d limit set by %q", totalAmount, policy.ThresholdAmount, policy.Name), true
		}
	}
	if totalAmount > g.generalThreshold {
		return fmt.Sprintf("Total $%d exceeds the $%d general approval threshold", totalAmount, g.generalThreshold), true
	}
	return fmt.Sprintf("Total $%d is within the $%d auto-approval limit", totalAmount, g.generalThreshold), false
}

func (g *Gate) findPolicy(mctx *schemas.MissionContext, id string) *schemas.Policy {
	for i := range mctx.Policies {
		if mctx.Policies[i].ID == id {
			return &mctx.Policies[i]
		}
	}
	return nil
}

// describe builds the one-line summary shown to the approving human.
func (g *Gate) describe(mctx *schemas.MissionContext, totalAmount int64) string {
	selected := mctx.SelectedQuote()
	if selected == nil {
		return fmt.Sprintf("Procurement request %s, total $%d", mctx.Mission.ID, totalAmount)
	}
	return fmt.Sprintf("%d x %s from %s, total $%d",
		selected.Quantity, selected.ItemName, selected.VendorName, totalAmount)
}
