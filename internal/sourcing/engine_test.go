package sourcing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/debdutta1777/AuraProcure/api/schemas"
)

// scriptedRand returns a fixed sequence of values, then repeats the last one.
type scriptedRand struct {
	values []float64
	i      int
}

func (r *scriptedRand) Float64() float64 {
	if r.i < len(r.values) {
		v := r.values[r.i]
		r.i++
		return v
	}
	if len(r.values) == 0 {
		return 1
	}
	return r.values[len(r.values)-1]
}

func neverFail() Rand { return &scriptedRand{values: []float64{1}} }

func newContext(items []schemas.ParsedItem, vendors []schemas.Vendor) *schemas.MissionContext {
	return &schemas.MissionContext{
		Mission: schemas.Mission{
			ID:          "mission-1",
			Status:      schemas.MissionRunning,
			ParsedItems: items,
		},
		Vendors: vendors,
	}
}

func laptopItem() schemas.ParsedItem {
	return schemas.ParsedItem{Name: "Laptop", Quantity: 3, Category: "IT Hardware", EstimatedUnitPrice: 1500}
}

func seededVendors() []schemas.Vendor {
	return []schemas.Vendor{
		{ID: "v1", Name: "TechDirect Pro", Website: "https://techdirect.example.com", IsWhitelisted: true, Rating: 4.8},
		{ID: "v2", Name: "GlobalSupply Co", Website: "https://globalsupply.example.com", IsWhitelisted: true, Rating: 4.2},
		{ID: "v3", Name: "BudgetTech Outlet", Website: "https://budgettech.example.com", IsWhitelisted: false, Rating: 3.2},
	}
}

func TestSourceProducesQuotesAndSelectsWinner(t *testing.T) {
	engine := New(neverFail(), zap.NewNop())
	mctx := newContext([]schemas.ParsedItem{laptopItem()}, seededVendors())

	set, err := engine.Source(context.Background(), mctx)
	require.NoError(t, err)
	require.Len(t, set.Quotes, 3)

	var selected int
	for _, q := range set.Quotes {
		assert.Equal(t, q.UnitPrice*int64(q.Quantity), q.TotalPrice, "total must equal unit price times quantity")
		if q.Selected {
			selected++
			assert.NotEmpty(t, q.Reasoning)
		}
	}
	assert.Equal(t, 1, selected, "exactly one quote per item is selected")
	require.NotNil(t, set.Selected)
	assert.Equal(t, set.Selected.TotalPrice, set.TotalAmount)
	assert.Equal(t, mctx.Quotes, set.Quotes, "quotes are written back into the mission context")
}

func TestSourceSelfHealingSkipsFailedVendor(t *testing.T) {
	// First Float64 call belongs to BudgetTech Outlet, the only
	// non-whitelisted vendor in the list; force it below the threshold.
	engine := New(&scriptedRand{values: []float64{0.01}}, zap.NewNop())
	mctx := newContext([]schemas.ParsedItem{laptopItem()}, seededVendors())

	set, err := engine.Source(context.Background(), mctx)
	require.NoError(t, err)

	require.Len(t, set.Quotes, 2, "the failed vendor yields no quote")
	assert.Contains(t, set.Skipped, "BudgetTech Outlet")

	var warned bool
	for _, entry := range mctx.Logs {
		if entry.Level == schemas.LogWarn {
			warned = true
		}
	}
	assert.True(t, warned, "self-healing must leave a warning in the audit log")
}

func TestSourceUnknownVendorIsSkippedNotFatal(t *testing.T) {
	engine := New(neverFail(), zap.NewNop())
	vendors := []schemas.Vendor{{ID: "vx", Name: "Mystery Imports", IsWhitelisted: true, Rating: 4.9}}
	mctx := newContext([]schemas.ParsedItem{laptopItem()}, vendors)

	set, err := engine.Source(context.Background(), mctx)
	require.NoError(t, err)
	assert.Empty(t, set.Quotes)
	assert.Nil(t, set.Selected)
	assert.Contains(t, set.Skipped, "Mystery Imports")
}

func TestSourceEmptyVendorDirectory(t *testing.T) {
	engine := New(neverFail(), zap.NewNop())
	mctx := newContext([]schemas.ParsedItem{laptopItem()}, nil)

	set, err := engine.Source(context.Background(), mctx)
	require.NoError(t, err, "an empty quote set is a valid, non-fatal outcome")
	assert.Empty(t, set.Quotes)
	assert.Zero(t, set.TotalAmount)
}

func TestSourceNoItemsIsAnError(t *testing.T) {
	engine := New(neverFail(), zap.NewNop())
	mctx := newContext(nil, seededVendors())

	_, err := engine.Source(context.Background(), mctx)
	require.Error(t, err)
}

func TestCompositeScoreExactArithmetic(t *testing.T) {
	// A whitelisted vendor quoting exactly the reference price with 5-day
	// shipping and a 5.0 rating scores 0 + 25 + 25 + 10 = 60.
	quote := schemas.VendorQuote{UnitPrice: 1500, ShippingDays: 5}
	vendor := schemas.Vendor{IsWhitelisted: true, Rating: 5}
	assert.Equal(t, 60, compositeScore(quote, vendor, 1500))
}

func TestCompositeScoreShippingBands(t *testing.T) {
	vendor := schemas.Vendor{Rating: 0}
	ref := int64(1000)
	base := schemas.VendorQuote{UnitPrice: 1000}

	base.ShippingDays = 7
	assert.Equal(t, 25, compositeScore(base, vendor, ref))
	base.ShippingDays = 14
	assert.Equal(t, 15, compositeScore(base, vendor, ref))
	base.ShippingDays = 15
	assert.Equal(t, 5, compositeScore(base, vendor, ref))
}

func TestScoringTieBreakPreservesVendorOrder(t *testing.T) {
	// Two identical whitelisted vendors with identical catalogs would tie;
	// use two distinct vendors sharing the same catalog profile by scoring
	// directly instead.
	engine := New(neverFail(), zap.NewNop())
	vendors := []schemas.Vendor{
		{ID: "v1", Name: "TechDirect Pro", IsWhitelisted: true, Rating: 4.8},
		{ID: "v2", Name: "GlobalSupply Co", IsWhitelisted: true, Rating: 4.2},
	}
	mctx := newContext([]schemas.ParsedItem{laptopItem()}, vendors)

	first, err := engine.Source(context.Background(), mctx)
	require.NoError(t, err)

	mctx2 := newContext([]schemas.ParsedItem{laptopItem()}, vendors)
	second, err := engine.Source(context.Background(), mctx2)
	require.NoError(t, err)

	require.NotNil(t, first.Selected)
	require.NotNil(t, second.Selected)
	assert.Equal(t, first.Selected.VendorName, second.Selected.VendorName, "winner selection is deterministic")
}

func TestSourceMultipleItemsSelectsOnePerItem(t *testing.T) {
	engine := New(neverFail(), zap.NewNop())
	items := []schemas.ParsedItem{
		{Name: "Laptop", Quantity: 2, EstimatedUnitPrice: 1500},
		{Name: "Monitor", Quantity: 4, EstimatedUnitPrice: 600},
	}
	mctx := newContext(items, seededVendors())

	set, err := engine.Source(context.Background(), mctx)
	require.NoError(t, err)
	require.Len(t, set.Quotes, 6)

	perItem := map[string]int{}
	var total int64
	for _, q := range set.Quotes {
		if q.Selected {
			perItem[q.ItemName]++
			total += q.TotalPrice
		}
	}
	assert.Len(t, perItem, 2)
	for name, count := range perItem {
		assert.Equal(t, 1, count, "item %s must have exactly one winner", name)
	}
	assert.Equal(t, total, set.TotalAmount)
}
