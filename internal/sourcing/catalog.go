// File: internal/sourcing/catalog.go
package sourcing

import (
	"math"

	"github.com/debdutta1777/AuraProcure/api/schemas"
)

// catalogEntry simulates one vendor's price list: a grade label, a price
// factor applied to the item's reference price, stock state and lead time.
type catalogEntry struct {
	grade        string
	priceFactor  float64
	availability schemas.Availability
	shippingDays int
}

func (c catalogEntry) unitPrice(referencePrice int64) int64 {
	return int64(math.Round(float64(referencePrice) * c.priceFactor))
}

// vendorCatalogs is keyed by vendor name. Vendors without an entry yield no
// quote; the engine skips them with a log entry.
var vendorCatalogs = map[string]catalogEntry{
	"TechDirect Pro":        {grade: "Premium Grade", priceFactor: 0.88, availability: schemas.AvailabilityInStock, shippingDays: 5},
	"GlobalSupply Co":       {grade: "Standard", priceFactor: 0.94, availability: schemas.AvailabilityInStock, shippingDays: 7},
	"PrimeOffice Solutions": {grade: "Business Line", priceFactor: 0.91, availability: schemas.AvailabilityInStock, shippingDays: 4},
	"CloudWare Systems":     {grade: "Enterprise", priceFactor: 0.98, availability: schemas.AvailabilityInStock, shippingDays: 3},
	"SecureNet Distributors": {grade: "Certified", priceFactor: 0.95, availability: schemas.AvailabilityInStock, shippingDays: 6},
	"BudgetTech Outlet":      {grade: "Value", priceFactor: 0.82, availability: schemas.AvailabilityLimitedStock, shippingDays: 21},
}
