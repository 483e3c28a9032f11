// File: cmd/cmd_test.go
package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debdutta1777/AuraProcure/api/schemas"
	"github.com/debdutta1777/AuraProcure/internal/orchestrator"
)

func TestNewRootCommandSubcommands(t *testing.T) {
	root := NewRootCommand()

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"run", "approve", "vendors", "policies"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestPrintOutcomeClarification(t *testing.T) {
	outcome := &orchestrator.Outcome{
		Clarification: &schemas.ClarificationResult{
			Status:          schemas.ClarificationStatus,
			Question:        "Which items do you need?",
			OriginalRequest: "we need some things",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printOutcome(&buf, "we need some things", outcome, "text"))

	out := buf.String()
	assert.Contains(t, out, "clarification_needed")
	assert.Contains(t, out, "Which items do you need?")
}

func TestPrintOutcomeResultText(t *testing.T) {
	outcome := &orchestrator.Outcome{
		Result: &schemas.MissionResult{
			Success:   true,
			MissionID: "m-1",
			Status:    schemas.MissionCompleted,
			Quotes: []schemas.VendorQuote{
				{VendorName: "TechDirect Pro", ItemName: "ergonomic chair", Quantity: 5, TotalPrice: 1540, Selected: true},
			},
			Compliance: []schemas.ComplianceResult{
				{PolicyName: "Budget Cap", Passed: true},
			},
			AllPassed:   true,
			TotalAmount: 1540,
			Savings:     200,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printOutcome(&buf, "5 ergonomic chairs", outcome, "text"))

	out := buf.String()
	assert.Contains(t, out, "Mission: m-1")
	assert.Contains(t, out, "5 x ergonomic chair from TechDirect Pro ($1540)")
	assert.Contains(t, out, "1/1 passed")
	assert.Contains(t, out, "Total: $1540 (estimated savings $200)")
}

func TestPrintOutcomeResultJSON(t *testing.T) {
	outcome := &orchestrator.Outcome{
		Result: &schemas.MissionResult{MissionID: "m-2", Status: schemas.MissionAwaitingApproval},
	}

	var buf bytes.Buffer
	require.NoError(t, printOutcome(&buf, "4 servers", outcome, "json"))

	assert.Contains(t, buf.String(), `"mission_id": "m-2"`)
	assert.Contains(t, buf.String(), string(schemas.MissionAwaitingApproval))
}

func TestComplianceLine(t *testing.T) {
	assert.Equal(t, "no active policies", complianceLine(nil, true))

	verdicts := []schemas.ComplianceResult{
		{PolicyName: "Budget Cap", Passed: true},
		{PolicyName: "Vendor Whitelist", Passed: false},
	}
	line := complianceLine(verdicts, false)
	assert.Equal(t, "1/2 passed (failed: Vendor Whitelist)", line)

	all := []schemas.ComplianceResult{{PolicyName: "Budget Cap", Passed: true}}
	assert.Equal(t, "1/1 passed", complianceLine(all, true))
}

func TestRunCommandFlags(t *testing.T) {
	runCmd := newRunCmd()

	for _, flag := range []string{"concurrency", "database-url", "vendors-file", "policies-file", "format"} {
		assert.NotNil(t, runCmd.Flags().Lookup(flag), "missing flag %q", flag)
	}
	assert.True(t, strings.HasPrefix(runCmd.Use, "run"))
}
