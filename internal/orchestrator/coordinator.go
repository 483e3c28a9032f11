// File: internal/orchestrator/coordinator.go
// Description: Drives one mission through the five-stage procurement pipeline
// as an explicit state machine. The coordinator owns the mission context for
// the duration of the run; stages are injected via interfaces.

package orchestrator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/debdutta1777/AuraProcure/api/schemas"
	"github.com/debdutta1777/AuraProcure/internal/config"
	"github.com/debdutta1777/AuraProcure/internal/sourcing"
)

// Savings estimate band: round(total * (savingsBase + rand * savingsSpread)).
// Informational only, never load-bearing.
const (
	savingsBase   = 0.08
	savingsSpread = 0.15
)

// Outcome is the boundary result of a pipeline run. Exactly one field is set:
// Clarification when the parser truncated the mission, Result otherwise.
type Outcome struct {
	Clarification *schemas.ClarificationResult
	Result        *schemas.MissionResult
}

// Coordinator manages the high-level lifecycle of a mission. It is injected
// with fully configured stage components.
type Coordinator struct {
	cfg     *config.Config
	logger  *zap.Logger
	parser  schemas.RequestParser
	sourcer schemas.QuoteSourcer
	checker schemas.PolicyChecker
	gate    schemas.ApprovalGate
	drafter schemas.DocumentRenderer
	rng     sourcing.Rand
	nowFn   func() time.Time
}

// New creates a Coordinator with its dependencies provided as interfaces.
func New(
	cfg *config.Config,
	logger *zap.Logger,
	parser schemas.RequestParser,
	sourcer schemas.QuoteSourcer,
	checker schemas.PolicyChecker,
	gate schemas.ApprovalGate,
	drafter schemas.DocumentRenderer,
	rng sourcing.Rand,
) (*Coordinator, error) {
	if cfg == nil || logger == nil || parser == nil || sourcer == nil ||
		checker == nil || gate == nil || drafter == nil || rng == nil {
		return nil, fmt.Errorf("cannot initialize coordinator with nil dependencies")
	}
	return &Coordinator{
		cfg:     cfg,
		logger:  logger.Named("orchestrator"),
		parser:  parser,
		sourcer: sourcer,
		checker: checker,
		gate:    gate,
		drafter: drafter,
		rng:     rng,
		nowFn:   time.Now,
	}, nil
}

// WithClock overrides the coordinator's clock. Test hook.
func (c *Coordinator) WithClock(nowFn func() time.Time) *Coordinator {
	c.nowFn = nowFn
	return c
}

// NewMission creates a pending mission context for a request. Vendors and
// policies are snapshotted into the context so the run never observes later
// directory edits.
func (c *Coordinator) NewMission(requestText string, vendors []schemas.Vendor, policies []schemas.Policy) *schemas.MissionContext {
	now := c.nowFn().UTC()
	return &schemas.MissionContext{
		Mission: schemas.Mission{
			ID:          uuid.NewString(),
			RequestText: requestText,
			Status:      schemas.MissionPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		Vendors:  vendors,
		Policies: policies,
	}
}

// Run executes the pipeline for a pending mission. The caller always receives
// a structured Outcome; stage failures surface inside the MissionResult, not
// as returned errors. Errors are reserved for contract violations such as
// re-running a terminal mission.
func (c *Coordinator) Run(ctx context.Context, mctx *schemas.MissionContext) (*Outcome, error) {
	if mctx == nil {
		return nil, fmt.Errorf("nil mission context")
	}
	if mctx.Mission.Status.Terminal() {
		return nil, fmt.Errorf("mission %s is terminal (%s) and cannot be re-run", mctx.Mission.ID, mctx.Mission.Status)
	}
	if mctx.Mission.Status != schemas.MissionPending {
		return nil, fmt.Errorf("mission %s is %s, expected %s", mctx.Mission.ID, mctx.Mission.Status, schemas.MissionPending)
	}

	c.transition(mctx, schemas.MissionRunning)
	c.logger.Info("Mission started",
		zap.String("mission_id", mctx.Mission.ID),
		zap.String("request", mctx.Mission.RequestText))
	mctx.AppendLogs(schemas.NewLog(mctx.Mission.ID, schemas.AgentOrchestrator, schemas.LogInfo,
		"Mission initiated: processing natural language request",
		map[string]any{"request_text": mctx.Mission.RequestText}))

	// Stage 1: parse.
	parsed, err := c.runParse(ctx, mctx)
	if err != nil {
		return &Outcome{Result: c.fail(mctx, schemas.AgentOrchestrator, err)}, nil
	}
	if parsed.NeedsClarification {
		// Truncate before later stages run; the mission returns to pending so
		// a rephrased request can be resubmitted under a fresh mission.
		c.transition(mctx, schemas.MissionPending)
		mctx.AppendLogs(schemas.NewLog(mctx.Mission.ID, schemas.AgentOrchestrator, schemas.LogInfo,
			"Clarification needed before sourcing can begin",
			map[string]any{"question": parsed.ClarificationQuestion}))
		return &Outcome{Clarification: &schemas.ClarificationResult{
			Status:          schemas.ClarificationStatus,
			Question:        parsed.ClarificationQuestion,
			OriginalRequest: mctx.Mission.RequestText,
		}}, nil
	}

	// Stage 2: sourcing.
	if err := c.runStage(ctx, func(sctx context.Context) error {
		_, serr := c.sourcer.Source(sctx, mctx)
		return serr
	}); err != nil {
		return &Outcome{Result: c.fail(mctx, schemas.AgentSourcingScout, err)}, nil
	}

	// Stage 3: compliance.
	if err := c.runStage(ctx, func(sctx context.Context) error {
		_, cerr := c.checker.Check(sctx, mctx)
		return cerr
	}); err != nil {
		return &Outcome{Result: c.fail(mctx, schemas.AgentComplianceOfficer, err)}, nil
	}

	// Stage 4: approval gate.
	decision, err := c.runGate(ctx, mctx)
	if err != nil {
		return &Outcome{Result: c.fail(mctx, schemas.AgentHITLBridge, err)}, nil
	}
	c.estimateSavings(mctx)

	if decision.RequiresApproval {
		c.transition(mctx, schemas.MissionAwaitingApproval)
		c.logger.Info("Mission suspended awaiting human approval",
			zap.String("mission_id", mctx.Mission.ID),
			zap.Int64("total_amount", mctx.TotalAmount()))
		return &Outcome{Result: c.result(mctx)}, nil
	}

	// Stage 5: documents, then finalize.
	if err := c.runStage(ctx, func(sctx context.Context) error {
		_, derr := c.drafter.Draft(sctx, mctx)
		return derr
	}); err != nil {
		return &Outcome{Result: c.fail(mctx, schemas.AgentDocumentDrafter, err)}, nil
	}
	return &Outcome{Result: c.complete(mctx)}, nil
}

// Resume applies a human approval decision to a suspended mission and drives
// it to a terminal state: documents and completion on approval, failure on
// rejection.
func (c *Coordinator) Resume(ctx context.Context, mctx *schemas.MissionContext, approver string, approved bool) (*schemas.MissionResult, error) {
	if mctx == nil {
		return nil, fmt.Errorf("nil mission context")
	}
	if mctx.Mission.Status != schemas.MissionAwaitingApproval {
		return nil, fmt.Errorf("mission %s is %s, expected %s", mctx.Mission.ID, mctx.Mission.Status, schemas.MissionAwaitingApproval)
	}
	if err := c.gate.ProcessDecision(ctx, mctx, approver, approved); err != nil {
		return nil, err
	}

	if !approved {
		result := c.fail(mctx, schemas.AgentHITLBridge, fmt.Errorf("purchase rejected by %s", approver))
		c.logger.Warn("Mission rejected",
			zap.String("mission_id", mctx.Mission.ID),
			zap.String("approver", approver))
		return result, nil
	}

	c.logger.Info("Mission approved, resuming",
		zap.String("mission_id", mctx.Mission.ID),
		zap.String("approver", approver))
	if len(mctx.Documents) == 0 {
		if err := c.runStage(ctx, func(sctx context.Context) error {
			_, derr := c.drafter.Draft(sctx, mctx)
			return derr
		}); err != nil {
			return c.fail(mctx, schemas.AgentDocumentDrafter, err), nil
		}
	}
	return c.complete(mctx), nil
}

func (c *Coordinator) runParse(ctx context.Context, mctx *schemas.MissionContext) (*schemas.ParsedRequest, error) {
	var parsed *schemas.ParsedRequest
	if err := c.runStage(ctx, func(sctx context.Context) error {
		var perr error
		parsed, perr = c.parser.Parse(sctx, mctx.Mission.RequestText)
		return perr
	}); err != nil {
		return nil, err
	}

	mctx.Parsed = parsed
	if !parsed.NeedsClarification {
		mctx.Mission.ParsedItems = parsed.Items
		mctx.Mission.TotalBudget = parsed.BudgetEstimate
		mctx.Mission.Deadline = parsed.Deadline
		mctx.Mission.ResultSummary = parsed.Summary
		mctx.AppendLogs(schemas.NewLog(mctx.Mission.ID, schemas.AgentOrchestrator, schemas.LogInfo,
			fmt.Sprintf("Parsed request into %d item(s)", len(parsed.Items)),
			map[string]any{"items": len(parsed.Items), "used_ai": parsed.UsedAI}))
	}
	return parsed, nil
}

func (c *Coordinator) runGate(ctx context.Context, mctx *schemas.MissionContext) (*schemas.ApprovalDecision, error) {
	var decision *schemas.ApprovalDecision
	err := c.runStage(ctx, func(sctx context.Context) error {
		var gerr error
		decision, gerr = c.gate.Evaluate(sctx, mctx)
		return gerr
	})
	return decision, err
}

// runStage wraps one stage call with the configured per-stage timeout.
func (c *Coordinator) runStage(ctx context.Context, fn func(context.Context) error) error {
	if timeout := c.cfg.Engine.StageTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return fn(ctx)
}

// transition moves the mission to a new status and touches UpdatedAt. All
// status writes during a run go through here.
func (c *Coordinator) transition(mctx *schemas.MissionContext, to schemas.MissionStatus) {
	mctx.Mission.Status = to
	mctx.Mission.UpdatedAt = c.nowFn().UTC()
}

// estimateSavings fills the informational savings figure once per mission.
func (c *Coordinator) estimateSavings(mctx *schemas.MissionContext) {
	if mctx.Mission.TotalSavings != 0 {
		return
	}
	total := mctx.TotalAmount()
	mctx.Mission.TotalSavings = int64(math.Round(float64(total) * (savingsBase + c.rng.Float64()*savingsSpread)))
}

func (c *Coordinator) complete(mctx *schemas.MissionContext) *schemas.MissionResult {
	c.transition(mctx, schemas.MissionCompleted)
	mctx.AppendLogs(schemas.NewLog(mctx.Mission.ID, schemas.AgentOrchestrator, schemas.LogInfo,
		"Mission completed",
		map[string]any{"total_amount": mctx.TotalAmount(), "savings": mctx.Mission.TotalSavings}))
	c.logger.Info("Mission completed",
		zap.String("mission_id", mctx.Mission.ID),
		zap.Int64("total_amount", mctx.TotalAmount()))
	return c.result(mctx)
}

func (c *Coordinator) fail(mctx *schemas.MissionContext, stage schemas.AgentName, cause error) *schemas.MissionResult {
	c.transition(mctx, schemas.MissionFailed)
	mctx.AppendLogs(schemas.NewLog(mctx.Mission.ID, stage, schemas.LogError,
		fmt.Sprintf("Mission failed: %v", cause),
		map[string]any{"stage": stage}))
	c.logger.Error("Mission failed",
		zap.String("mission_id", mctx.Mission.ID),
		zap.String("stage", string(stage)),
		zap.Error(cause))

	result := c.result(mctx)
	result.Success = false
	result.Error = cause.Error()
	result.FailedStage = stage
	return result
}

// result assembles the caller-facing bundle from the context's current state.
func (c *Coordinator) result(mctx *schemas.MissionContext) *schemas.MissionResult {
	result := &schemas.MissionResult{
		Success:     true,
		MissionID:   mctx.Mission.ID,
		Status:      mctx.Mission.Status,
		Parsed:      mctx.Parsed,
		Quotes:      mctx.Quotes,
		Compliance:  mctx.Verdicts,
		AllPassed:   mctx.AllPassed,
		Approval:    mctx.Approval,
		Documents:   mctx.Documents,
		TotalAmount: mctx.TotalAmount(),
		Savings:     mctx.Mission.TotalSavings,
		Summary:     mctx.Mission.ResultSummary,
		Logs:        mctx.Logs,
	}
	if mctx.Parsed != nil {
		result.UsedAI = mctx.Parsed.UsedAI
	}
	if mctx.Approval != nil {
		result.NeedsApproval = mctx.Approval.Status == schemas.ApprovalPending
	}
	return result
}
