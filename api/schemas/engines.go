// File: api/schemas/engines.go
// Description: The pipeline stage contracts. The coordinator is injected with
// fully configured stage components via these interfaces, keeping it decoupled
// and testable.

package schemas

import "context"

// RequestParser turns free-form request text into a structured ParsedRequest.
type RequestParser interface {
	Parse(ctx context.Context, requestText string) (*ParsedRequest, error)
}

// QuoteSourcer collects and scores vendor quotes for the mission's items.
type QuoteSourcer interface {
	Source(ctx context.Context, mctx *MissionContext) (*QuoteSet, error)
}

// PolicyChecker evaluates the mission against the active compliance policies.
type PolicyChecker interface {
	Check(ctx context.Context, mctx *MissionContext) (*ComplianceSet, error)
}

// ApprovalGate decides whether a mission needs human sign-off and applies the
// human's decision when it arrives.
type ApprovalGate interface {
	Evaluate(ctx context.Context, mctx *MissionContext) (*ApprovalDecision, error)
	ProcessDecision(ctx context.Context, mctx *MissionContext, approver string, approved bool) error
}

// DocumentRenderer produces the mission's procurement documents.
type DocumentRenderer interface {
	Draft(ctx context.Context, mctx *MissionContext) (*DocumentBundle, error)
}
