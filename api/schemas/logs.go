// File: api/schemas/logs.go
package schemas

import (
	"time"

	"github.com/google/uuid"
)

// AgentName identifies the pipeline component that produced a log entry.
type AgentName string

const (
	AgentOrchestrator      AgentName = "orchestrator"
	AgentSourcingScout     AgentName = "sourcing_scout"
	AgentComplianceOfficer AgentName = "compliance_officer"
	AgentHITLBridge        AgentName = "hitl_bridge"
	AgentDocumentDrafter   AgentName = "document_drafter"
)

// LogLevel is the severity of an audit log entry.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// AgentLog is one entry in a mission's append-only audit trail. Entries are
// never mutated or deleted during a run.
type AgentLog struct {
	ID        string         `json:"id"`
	MissionID string         `json:"mission_id"`
	Agent     AgentName      `json:"agent_name"`
	Level     LogLevel       `json:"level"`
	Message   string         `json:"message"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewLog builds an audit entry for a mission.
func NewLog(missionID string, agent AgentName, level LogLevel, message string, payload map[string]any) AgentLog {
	return AgentLog{
		ID:        uuid.NewString(),
		MissionID: missionID,
		Agent:     agent,
		Level:     level,
		Message:   message,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
}

// StageResult is a tagged union of the known per-stage result shapes. Exactly
// one of the pointer fields is set, matching Stage. This keeps the audit
// trail heterogeneous without resorting to untyped payloads.
type StageResult struct {
	Stage     AgentName         `json:"stage"`
	Parsed    *ParsedRequest    `json:"parsed,omitempty"`
	Quotes    *QuoteSet         `json:"quotes,omitempty"`
	Verdicts  *ComplianceSet    `json:"verdicts,omitempty"`
	Approval  *ApprovalDecision `json:"approval,omitempty"`
	Documents *DocumentBundle   `json:"documents,omitempty"`
}

// QuoteSet is the sourcing engine's stage result.
type QuoteSet struct {
	Quotes      []VendorQuote `json:"quotes"`
	Selected    *VendorQuote  `json:"selected,omitempty"` // Nil when no vendor produced a quote.
	TotalAmount int64         `json:"total_amount"`
	Skipped     []string      `json:"skipped,omitempty"` // Vendor names skipped by self-healing.
}

// ComplianceSet is the policy engine's stage result.
type ComplianceSet struct {
	Results   []ComplianceResult `json:"results"`
	AllPassed bool               `json:"all_passed"`
	Passed    int                `json:"passed"`
	Failed    int                `json:"failed"`
}

// ApprovalDecision is the approval gate's stage result.
type ApprovalDecision struct {
	Approval         ApprovalRequest `json:"approval"`
	RequiresApproval bool            `json:"requires_approval"`
	Reason           string          `json:"reason"`
}

// DocumentBundle is the document renderer's stage result.
type DocumentBundle struct {
	Documents []ProcurementDocument `json:"documents"`
}
