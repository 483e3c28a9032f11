// File: api/schemas/vendor.go
package schemas

// Availability describes vendor stock state for a quoted item.
type Availability string

const (
	AvailabilityInStock      Availability = "In Stock"
	AvailabilityLimitedStock Availability = "Limited Stock"
	AvailabilityPreOrder     Availability = "Pre-Order"
	AvailabilityOutOfStock   Availability = "Out of Stock"
)

// Vendor is a supplier record from the vendor directory. The directory is
// configuration owned by an external collaborator; the pipeline never
// mutates it.
type Vendor struct {
	ID            string  `json:"id" mapstructure:"id"`
	Name          string  `json:"name" mapstructure:"name"`
	Website       string  `json:"website" mapstructure:"website"`
	Category      string  `json:"category" mapstructure:"category"`
	IsWhitelisted bool    `json:"is_whitelisted" mapstructure:"is_whitelisted"`
	Rating        float64 `json:"rating" mapstructure:"rating"` // 0 to 5.
	ContactEmail  string  `json:"contact_email,omitempty" mapstructure:"contact_email"`
	Notes         string  `json:"notes,omitempty" mapstructure:"notes"`
}

// VendorQuote is one vendor's priced offer for a line item. Quotes are
// produced and scored by the sourcing engine and immutable afterwards.
// At most one quote per item line carries Selected = true.
type VendorQuote struct {
	ID           string       `json:"id"`
	MissionID    string       `json:"mission_id"`
	VendorID     string       `json:"vendor_id"`
	VendorName   string       `json:"vendor_name"`
	ItemName     string       `json:"item_name"`
	UnitPrice    int64        `json:"unit_price"`
	Quantity     int          `json:"quantity"`
	TotalPrice   int64        `json:"total_price"` // Always UnitPrice * Quantity.
	Availability Availability `json:"availability"`
	ShippingDays int          `json:"shipping_days"`
	Score        int          `json:"score"`
	Selected     bool         `json:"selected"`
	Reasoning    string       `json:"reasoning,omitempty"`
}
