// File: api/schemas/mission.go
package schemas

import "time"

// MissionStatus tracks a mission through the pipeline state machine.
type MissionStatus string

const (
	MissionPending          MissionStatus = "pending"           // Created, pipeline not yet started.
	MissionRunning          MissionStatus = "running"           // Stages are executing.
	MissionAwaitingApproval MissionStatus = "awaiting_approval" // Suspended on the human approval gate.
	MissionCompleted        MissionStatus = "completed"         // Terminal: all stages finished.
	MissionFailed           MissionStatus = "failed"            // Terminal: a stage failed or approval was rejected.
)

// Terminal reports whether no further transitions are permitted.
func (s MissionStatus) Terminal() bool {
	return s == MissionCompleted || s == MissionFailed
}

// Urgency is the parsed urgency of a procurement request.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// Mission is one end-to-end run of the procurement pipeline for a single
// request. It is created when the request is submitted and mutated only by the
// pipeline coordinator at stage boundaries; once the status is terminal the
// record is read-only.
type Mission struct {
	ID            string        `json:"id"`
	RequestText   string        `json:"request_text"`
	Status        MissionStatus `json:"status"`
	ParsedItems   []ParsedItem  `json:"parsed_items"`
	TotalBudget   int64         `json:"total_budget"`   // Estimated budget in whole currency units; 0 when unknown.
	TotalSavings  int64         `json:"total_savings"`  // Informational estimate, not load-bearing.
	Deadline      *time.Time    `json:"deadline,omitempty"`
	ResultSummary string        `json:"result_summary"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// ParsedItem is a single structured line item extracted from the request
// text. Produced once by the parser and immutable thereafter.
type ParsedItem struct {
	Name               string `json:"name"`
	Quantity           int    `json:"quantity"`
	Category           string `json:"category"`
	Specifications     string `json:"specifications,omitempty"`
	EstimatedUnitPrice int64  `json:"estimated_unit_price"` // Whole currency units; 0 when no estimate exists.
}

// ParsedRequest is the full parser output for one request.
type ParsedRequest struct {
	Items                 []ParsedItem `json:"items"`
	Urgency               Urgency      `json:"urgency"`
	BudgetEstimate        int64        `json:"budget_estimate"` // 0 when the request stated no budget.
	Deadline              *time.Time   `json:"deadline,omitempty"`
	Summary               string       `json:"summary"`
	NeedsClarification    bool         `json:"needs_clarification"`
	ClarificationQuestion string       `json:"clarification_question,omitempty"`
	UsedAI                bool         `json:"used_ai"` // Provenance only; output shape is identical either way.
}
