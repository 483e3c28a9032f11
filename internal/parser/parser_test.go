package parser

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/debdutta1777/AuraProcure/api/schemas"
	"github.com/debdutta1777/AuraProcure/internal/llm"
)

// fixedNow is a Monday.
var fixedNow = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

func newTestParser() *Parser {
	return New(llm.Disabled{}, zap.NewNop()).WithClock(func() time.Time { return fixedNow })
}

func TestParseRejectsEmptyRequest(t *testing.T) {
	_, err := newTestParser().Parse(context.Background(), "   ")
	require.Error(t, err)
}

func TestParseErgonomicChairs(t *testing.T) {
	parsed, err := newTestParser().Parse(context.Background(), "5 ergonomic chairs")
	require.NoError(t, err)

	require.Len(t, parsed.Items, 1)
	item := parsed.Items[0]
	assert.Equal(t, "Ergonomic Chair", item.Name)
	assert.Equal(t, 5, item.Quantity)
	assert.Equal(t, "Office Furniture", item.Category)
	assert.Equal(t, int64(350), item.EstimatedUnitPrice)
	// The price table supplies an estimate, so no clarification is needed
	// even though the request stated no budget.
	assert.False(t, parsed.NeedsClarification)
	assert.False(t, parsed.UsedAI)
}

func TestParseBareLaptops(t *testing.T) {
	parsed, err := newTestParser().Parse(context.Background(), "I need laptops")
	require.NoError(t, err)

	require.Len(t, parsed.Items, 1)
	item := parsed.Items[0]
	assert.Equal(t, "Laptop", item.Name)
	assert.Equal(t, 1, item.Quantity, "missing quantity defaults to 1")
	assert.Equal(t, "IT Hardware", item.Category)
	assert.Equal(t, int64(1500), item.EstimatedUnitPrice)
	assert.False(t, parsed.NeedsClarification, "an estimable price suppresses clarification")
}

func TestParseUnknownItemRequiresClarification(t *testing.T) {
	parsed, err := newTestParser().Parse(context.Background(), "we want some industrial widgets")
	require.NoError(t, err)

	require.Len(t, parsed.Items, 1)
	assert.Equal(t, "General", parsed.Items[0].Category)
	assert.Equal(t, int64(defaultUnitPrice), parsed.Items[0].EstimatedUnitPrice)
	assert.True(t, parsed.NeedsClarification)
	assert.NotEmpty(t, parsed.ClarificationQuestion)
}

func TestParseUnknownItemWithBudgetProceeds(t *testing.T) {
	parsed, err := newTestParser().Parse(context.Background(), "industrial widgets, budget $2,500")
	require.NoError(t, err)

	assert.False(t, parsed.NeedsClarification, "an explicit budget suppresses clarification")
	assert.Equal(t, int64(2500), parsed.BudgetEstimate)
}

func TestExtractBudget(t *testing.T) {
	cases := []struct {
		text string
		want int64
	}{
		{"budget of $12,000 for this", 12000},
		{"cap at $5k", 5000},
		{"around $1.5K total", 1500},
		{"spend $300", 300},
		{"no budget mentioned", 0},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.want, extractBudget(tc.text))
		})
	}
}

func TestExtractDeadline(t *testing.T) {
	p := newTestParser()

	t.Run("friday resolves to next friday at end of business", func(t *testing.T) {
		d := p.extractDeadline("need it by friday")
		require.NotNil(t, d)
		assert.Equal(t, time.Friday, d.Weekday())
		assert.Equal(t, 17, d.Hour())
		assert.Equal(t, fixedNow.AddDate(0, 0, 4).Day(), d.Day())
	})

	t.Run("next week adds seven days", func(t *testing.T) {
		d := p.extractDeadline("sometime next week")
		require.NotNil(t, d)
		assert.Equal(t, fixedNow.AddDate(0, 0, 7), *d)
	})

	t.Run("relative days and weeks", func(t *testing.T) {
		d := p.extractDeadline("within 3 days")
		require.NotNil(t, d)
		assert.Equal(t, fixedNow.AddDate(0, 0, 3), *d)

		d = p.extractDeadline("within 2 weeks")
		require.NotNil(t, d)
		assert.Equal(t, fixedNow.AddDate(0, 0, 14), *d)
	})

	t.Run("no phrase means no deadline", func(t *testing.T) {
		assert.Nil(t, p.extractDeadline("whenever is fine"))
	})
}

func TestExtractUrgency(t *testing.T) {
	assert.Equal(t, schemas.UrgencyCritical, extractUrgency("critical replacement needed"))
	assert.Equal(t, schemas.UrgencyHigh, extractUrgency("urgent: replace the printer"))
	assert.Equal(t, schemas.UrgencyHigh, extractUrgency("need this asap"))
	assert.Equal(t, schemas.UrgencyNormal, extractUrgency("whenever convenient"))
}

// stubGenerator scripts the enhancement path.
type stubGenerator struct {
	response string
	err      error
}

func (s stubGenerator) GenerateJSON(_ context.Context, _, _ string, out any) error {
	if s.err != nil {
		return s.err
	}
	dst, ok := out.(*generatedRequest)
	if !ok {
		return fmt.Errorf("unexpected target type %T", out)
	}
	dst.Items = append(dst.Items, struct {
		Name               string  `json:"name"`
		Quantity           int     `json:"quantity"`
		Category           string  `json:"category"`
		Specifications     string  `json:"specifications"`
		EstimatedUnitPrice float64 `json:"estimated_unit_price"`
	}{Name: s.response, Quantity: 2, Category: "IT Hardware", EstimatedUnitPrice: 1200.4})
	dst.Urgency = "high"
	dst.Summary = "generated summary"
	return nil
}

func (s stubGenerator) Enabled() bool { return true }

func TestParsePrefersGeneratedResult(t *testing.T) {
	p := New(stubGenerator{response: "Workstation Laptop"}, zap.NewNop())
	parsed, err := p.Parse(context.Background(), "2 laptops")
	require.NoError(t, err)

	assert.True(t, parsed.UsedAI)
	require.Len(t, parsed.Items, 1)
	assert.Equal(t, "Workstation Laptop", parsed.Items[0].Name)
	assert.Equal(t, int64(1200), parsed.Items[0].EstimatedUnitPrice, "prices round to whole units")
	assert.Equal(t, schemas.UrgencyHigh, parsed.Urgency)
}

func TestParseFallsBackWhenGenerationFails(t *testing.T) {
	p := New(stubGenerator{err: fmt.Errorf("upstream timeout")}, zap.NewNop())
	parsed, err := p.Parse(context.Background(), "2 laptops")
	require.NoError(t, err, "enhancement failures must never surface as errors")

	assert.False(t, parsed.UsedAI)
	require.Len(t, parsed.Items, 1)
	assert.Equal(t, "Laptop", parsed.Items[0].Name)
	assert.Equal(t, 2, parsed.Items[0].Quantity)
}
