package compliance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/debdutta1777/AuraProcure/api/schemas"
)

func testContext() *schemas.MissionContext {
	return &schemas.MissionContext{
		Mission: schemas.Mission{
			ID:          "mission-1",
			Status:      schemas.MissionRunning,
			ParsedItems: []schemas.ParsedItem{{Name: "Laptop", Quantity: 3, EstimatedUnitPrice: 1500}},
		},
		Vendors: []schemas.Vendor{
			{ID: "v1", Name: "TechDirect Pro", IsWhitelisted: true, Rating: 4.8},
			{ID: "v2", Name: "BudgetTech Outlet", IsWhitelisted: false, Rating: 3.2},
		},
	}
}

func addQuotes(mctx *schemas.MissionContext, selectedVendorID string, shippingDays int, totals ...int64) {
	for i, total := range totals {
		vendorID := "v1"
		if i == 1 {
			vendorID = "v2"
		}
		q := schemas.VendorQuote{
			ID:           "q" + vendorID,
			MissionID:    mctx.Mission.ID,
			VendorID:     vendorID,
			VendorName:   vendorID,
			ItemName:     "Laptop",
			Quantity:     1,
			UnitPrice:    total,
			TotalPrice:   total,
			ShippingDays: shippingDays,
			Selected:     vendorID == selectedVendorID && i == 0,
		}
		mctx.Quotes = append(mctx.Quotes, q)
	}
}

func policy(id string, category schemas.PolicyCategory, threshold int64) schemas.Policy {
	return schemas.Policy{
		ID: id, Name: id, Category: category,
		RuleText: "rule text for " + id, ThresholdAmount: threshold, IsActive: true,
	}
}

func TestCheckCountsMatchActivePolicies(t *testing.T) {
	mctx := testContext()
	addQuotes(mctx, "v1", 5, 4000, 4200)
	mctx.Policies = []schemas.Policy{
		policy("budget-1", schemas.PolicyBudget, 25000),
		policy("sustain-1", schemas.PolicySustainability, 0),
		{ID: "inactive-1", Name: "inactive-1", Category: schemas.PolicyBudget, ThresholdAmount: 1, IsActive: false},
	}

	set, err := New(zap.NewNop()).Check(context.Background(), mctx)
	require.NoError(t, err)

	assert.Len(t, set.Results, 2, "inactive policies produce no result at all")
	assert.True(t, set.AllPassed)
	assert.Equal(t, 2, set.Passed)
	assert.Equal(t, set.Results, mctx.Verdicts)
}

func TestBudgetPolicyInclusiveBoundary(t *testing.T) {
	engine := New(zap.NewNop())

	t.Run("exactly at the threshold passes", func(t *testing.T) {
		mctx := testContext()
		addQuotes(mctx, "v1", 5, 25000)
		mctx.Policies = []schemas.Policy{policy("budget-1", schemas.PolicyBudget, 25000)}

		set, err := engine.Check(context.Background(), mctx)
		require.NoError(t, err)
		assert.True(t, set.Results[0].Passed)
	})

	t.Run("one unit above the threshold fails", func(t *testing.T) {
		mctx := testContext()
		addQuotes(mctx, "v1", 5, 25001)
		mctx.Policies = []schemas.Policy{policy("budget-1", schemas.PolicyBudget, 25000)}

		set, err := engine.Check(context.Background(), mctx)
		require.NoError(t, err)
		assert.False(t, set.Results[0].Passed)
		assert.False(t, set.AllPassed)
	})
}

func TestSourcingPolicy(t *testing.T) {
	engine := New(zap.NewNop())

	t.Run("not applicable below threshold", func(t *testing.T) {
		mctx := testContext()
		mctx.Mission.ParsedItems[0].EstimatedUnitPrice = 500
		addQuotes(mctx, "v1", 5, 500)
		mctx.Policies = []schemas.Policy{policy("sourcing-1", schemas.PolicySourcing, 1000)}

		set, err := engine.Check(context.Background(), mctx)
		require.NoError(t, err)
		assert.True(t, set.Results[0].Passed)
		assert.Contains(t, set.Results[0].Reason, "not applicable")
	})

	t.Run("fails with fewer than three quotes", func(t *testing.T) {
		mctx := testContext()
		addQuotes(mctx, "v1", 5, 4000, 4100)
		mctx.Policies = []schemas.Policy{policy("sourcing-1", schemas.PolicySourcing, 1000)}

		set, err := engine.Check(context.Background(), mctx)
		require.NoError(t, err)
		assert.False(t, set.Results[0].Passed)
	})

	t.Run("passes with three quotes", func(t *testing.T) {
		mctx := testContext()
		addQuotes(mctx, "v1", 5, 4000, 4100, 4200)
		mctx.Policies = []schemas.Policy{policy("sourcing-1", schemas.PolicySourcing, 1000)}

		set, err := engine.Check(context.Background(), mctx)
		require.NoError(t, err)
		assert.True(t, set.Results[0].Passed)
	})
}

func TestVendorPolicy(t *testing.T) {
	engine := New(zap.NewNop())

	t.Run("whitelisted vendor passes above threshold", func(t *testing.T) {
		mctx := testContext()
		addQuotes(mctx, "v1", 5, 9000)
		mctx.Policies = []schemas.Policy{policy("vendor-1", schemas.PolicyVendor, 5000)}

		set, err := engine.Check(context.Background(), mctx)
		require.NoError(t, err)
		assert.True(t, set.Results[0].Passed)
	})

	t.Run("non-whitelisted vendor fails above threshold", func(t *testing.T) {
		mctx := testContext()
		mctx.Quotes = []schemas.VendorQuote{{
			ID: "q1", VendorID: "v2", VendorName: "BudgetTech Outlet",
			UnitPrice: 9000, Quantity: 1, TotalPrice: 9000, ShippingDays: 5, Selected: true,
		}}
		mctx.Policies = []schemas.Policy{policy("vendor-1", schemas.PolicyVendor, 5000)}

		set, err := engine.Check(context.Background(), mctx)
		require.NoError(t, err)
		assert.False(t, set.Results[0].Passed)
	})

	t.Run("not applicable below threshold", func(t *testing.T) {
		mctx := testContext()
		addQuotes(mctx, "v1", 5, 900)
		mctx.Policies = []schemas.Policy{policy("vendor-1", schemas.PolicyVendor, 5000)}

		set, err := engine.Check(context.Background(), mctx)
		require.NoError(t, err)
		assert.True(t, set.Results[0].Passed)
	})
}

func TestLogisticsPolicy(t *testing.T) {
	engine := New(zap.NewNop())

	t.Run("fails without a selected quote", func(t *testing.T) {
		mctx := testContext()
		mctx.Policies = []schemas.Policy{policy("logistics-1", schemas.PolicyLogistics, 0)}

		set, err := engine.Check(context.Background(), mctx)
		require.NoError(t, err)
		assert.False(t, set.Results[0].Passed)
		assert.Contains(t, set.Results[0].Reason, "No vendor selected yet")
	})

	t.Run("fails on slow shipping", func(t *testing.T) {
		mctx := testContext()
		addQuotes(mctx, "v1", 21, 4000)
		mctx.Policies = []schemas.Policy{policy("logistics-1", schemas.PolicyLogistics, 0)}

		set, err := engine.Check(context.Background(), mctx)
		require.NoError(t, err)
		assert.False(t, set.Results[0].Passed)
	})

	t.Run("passes within the window", func(t *testing.T) {
		mctx := testContext()
		addQuotes(mctx, "v1", 14, 4000)
		mctx.Policies = []schemas.Policy{policy("logistics-1", schemas.PolicyLogistics, 0)}

		set, err := engine.Check(context.Background(), mctx)
		require.NoError(t, err)
		assert.True(t, set.Results[0].Passed)
	})
}

func TestGeneralAndUnknownCategoriesPass(t *testing.T) {
	mctx := testContext()
	mctx.Policies = []schemas.Policy{
		policy("general-1", schemas.PolicyGeneral, 0),
		policy("mystery-1", schemas.PolicyCategory("mystery"), 0),
	}

	set, err := New(zap.NewNop()).Check(context.Background(), mctx)
	require.NoError(t, err)
	require.Len(t, set.Results, 2)
	assert.True(t, set.Results[0].Passed)
	assert.True(t, set.Results[1].Passed)
}

func TestEveryResultCarriesACitation(t *testing.T) {
	mctx := testContext()
	addQuotes(mctx, "v1", 5, 4000)
	mctx.Policies = []schemas.Policy{
		policy("budget-1", schemas.PolicyBudget, 25000),
		policy("logistics-1", schemas.PolicyLogistics, 0),
	}

	set, err := New(zap.NewNop()).Check(context.Background(), mctx)
	require.NoError(t, err)
	for _, r := range set.Results {
		assert.Contains(t, r.Citation, "rule text for "+r.PolicyID)
	}
}
