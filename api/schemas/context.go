// File: api/schemas/context.go
// Description: The per-mission context record set and the result bundles
// returned across the service boundary.

package schemas

// MissionContext is the shared record set for one workflow run. It is owned
// exclusively by the coordinator driving the mission; each stage writes its
// outputs here and appends to Logs, and later stages read only from the
// context, never from earlier stages' internals.
type MissionContext struct {
	Mission  Mission
	Vendors  []Vendor
	Policies []Policy

	Parsed    *ParsedRequest
	Quotes    []VendorQuote
	Verdicts  []ComplianceResult
	AllPassed bool
	Approval  *ApprovalRequest
	Documents []ProcurementDocument

	Logs []AgentLog
}

// SelectedQuote returns the winning quote, or nil when the sourcing engine
// produced no quotes. Downstream stages treat the nil case as distinct and
// non-fatal.
func (c *MissionContext) SelectedQuote() *VendorQuote {
	for i := range c.Quotes {
		if c.Quotes[i].Selected {
			return &c.Quotes[i]
		}
	}
	return nil
}

// TotalAmount is the sum of the selected quotes' total prices.
func (c *MissionContext) TotalAmount() int64 {
	var total int64
	for i := range c.Quotes {
		if c.Quotes[i].Selected {
			total += c.Quotes[i].TotalPrice
		}
	}
	return total
}

// AppendLogs appends stage log entries to the mission audit trail.
func (c *MissionContext) AppendLogs(entries ...AgentLog) {
	c.Logs = append(c.Logs, entries...)
}

// MissionResult is the bundle returned to the caller after a pipeline run.
// The caller always receives a structured result; on unrecoverable failure
// Success is false and Error carries a human-readable message.
type MissionResult struct {
	Success       bool                  `json:"success"`
	MissionID     string                `json:"mission_id"`
	Status        MissionStatus         `json:"status"`
	Parsed        *ParsedRequest        `json:"parsed,omitempty"`
	Quotes        []VendorQuote         `json:"quotes,omitempty"`
	Compliance    []ComplianceResult    `json:"compliance,omitempty"`
	AllPassed     bool                  `json:"compliance_all_passed"`
	NeedsApproval bool                  `json:"needs_approval"`
	Approval      *ApprovalRequest      `json:"approval,omitempty"`
	Documents     []ProcurementDocument `json:"documents,omitempty"`
	TotalAmount   int64                 `json:"total_amount"`
	Savings       int64                 `json:"savings"`
	Summary       string                `json:"summary"`
	UsedAI        bool                  `json:"used_ai"`
	Error         string                `json:"error,omitempty"`
	FailedStage   AgentName             `json:"failed_stage,omitempty"`
	Logs          []AgentLog            `json:"logs"`
}

// ClarificationResult is the distinct result shape returned when the parser
// cannot proceed without more information from the requester. No later stage
// runs and no side effects occur.
type ClarificationResult struct {
	Status          string `json:"status"` // Always "clarification_needed".
	Question        string `json:"question"`
	OriginalRequest string `json:"original_request"`
}

// ClarificationStatus is the Status value carried by ClarificationResult.
const ClarificationStatus = "clarification_needed"
