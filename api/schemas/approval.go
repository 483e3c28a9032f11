// File: api/schemas/approval.go
package schemas

import "time"

// ApprovalStatus is the state of a human approval request. The only legal
// transitions are pending -> approved and pending -> rejected.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// AutoApprover is recorded as the approver identity when the gate approves a
// purchase without human involvement.
const AutoApprover = "system (auto-approved)"

// ApprovalRequest records the approval gate's decision for a mission. At most
// one pending request exists per mission; an external human collaborator
// transitions it exactly once.
type ApprovalRequest struct {
	ID          string         `json:"id"`
	MissionID   string         `json:"mission_id"`
	Description string         `json:"description"`
	TotalAmount int64          `json:"total_amount"`
	Status      ApprovalStatus `json:"status"`
	Approver    string         `json:"approver,omitempty"`
	ApprovedAt  *time.Time     `json:"approved_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
