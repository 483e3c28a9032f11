// File: api/schemas/policy.go
package schemas

// PolicyCategory selects the evaluation rule applied by the policy engine.
type PolicyCategory string

const (
	PolicySourcing       PolicyCategory = "sourcing"
	PolicyBudget         PolicyCategory = "budget"
	PolicyVendor         PolicyCategory = "vendor"
	PolicySustainability PolicyCategory = "sustainability"
	PolicyLogistics      PolicyCategory = "logistics"
	PolicyGeneral        PolicyCategory = "general"
)

// Policy is a configurable compliance rule. Policies are configuration owned
// by an external policy-management collaborator and read-only to the core.
// A zero ThresholdAmount means the policy has no numeric threshold.
type Policy struct {
	ID              string         `json:"id" mapstructure:"id"`
	Name            string         `json:"name" mapstructure:"name"`
	Description     string         `json:"description" mapstructure:"description"`
	Category        PolicyCategory `json:"category" mapstructure:"category"`
	RuleText        string         `json:"rule_text" mapstructure:"rule_text"`
	ThresholdAmount int64          `json:"threshold_amount" mapstructure:"threshold_amount"`
	IsActive        bool           `json:"is_active" mapstructure:"is_active"`
}

// ComplianceResult is the verdict for one active policy against one mission.
// The policy engine produces exactly one per active policy; inactive policies
// produce no result at all.
type ComplianceResult struct {
	PolicyID   string `json:"policy_id"`
	PolicyName string `json:"policy_name"`
	Passed     bool   `json:"passed"`
	Reason     string `json:"reason"`
	Citation   string `json:"citation"`
}
