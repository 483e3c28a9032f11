// File: internal/directory/vendors.go
// Description: Read-only configuration collaborators for the pipeline: the
// vendor directory and the compliance policy set. Both ship with built-in
// seeds and can be overridden from YAML files named in the configuration.

package directory

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/debdutta1777/AuraProcure/api/schemas"
)

// Directory bundles the vendor list and policy set handed to each mission.
// The pipeline never mutates either; Vendors and Policies return copies.
type Directory struct {
	vendors  []schemas.Vendor
	policies []schemas.Policy
}

// Load builds a Directory: built-in seeds, then YAML overrides when the
// corresponding file paths are set.
func Load(vendorsFile, policiesFile string) (*Directory, error) {
	d := &Directory{
		vendors:  seedVendors(),
		policies: seedPolicies(),
	}

	if vendorsFile != "" {
		vendors, err := loadVendorsFile(vendorsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load vendor directory: %w", err)
		}
		d.vendors = vendors
	}
	if policiesFile != "" {
		policies, err := loadPoliciesFile(policiesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load policy set: %w", err)
		}
		d.policies = policies
	}
	return d, nil
}

// Vendors returns a copy of the vendor directory in insertion order. The
// order matters: the sourcing engine's tie-break preserves it.
func (d *Directory) Vendors() []schemas.Vendor {
	out := make([]schemas.Vendor, len(d.vendors))
	copy(out, d.vendors)
	return out
}

// Policies returns a copy of the full policy set, active and inactive.
func (d *Directory) Policies() []schemas.Policy {
	out := make([]schemas.Policy, len(d.policies))
	copy(out, d.policies)
	return out
}

// ActivePolicies returns only the policies eligible for evaluation.
func (d *Directory) ActivePolicies() []schemas.Policy {
	var out []schemas.Policy
	for _, p := range d.policies {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out
}

func loadVendorsFile(path string) ([]schemas.Vendor, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var vendors []schemas.Vendor
	if err := v.UnmarshalKey("vendors", &vendors); err != nil {
		return nil, err
	}
	if len(vendors) == 0 {
		return nil, fmt.Errorf("%s defines no vendors", path)
	}
	for i := range vendors {
		if vendors[i].Name == "" {
			return nil, fmt.Errorf("%s: vendor %d has no name", path, i)
		}
		if vendors[i].Rating < 0 || vendors[i].Rating > 5 {
			return nil, fmt.Errorf("%s: vendor %q rating must be within 0-5", path, vendors[i].Name)
		}
	}
	return vendors, nil
}

func loadPoliciesFile(path string) ([]schemas.Policy, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var policies []schemas.Policy
	if err := v.UnmarshalKey("policies", &policies); err != nil {
		return nil, err
	}
	for i := range policies {
		if policies[i].Name == "" {
			return nil, fmt.Errorf("%s: policy %d has no name", path, i)
		}
	}
	return policies, nil
}

// seedVendors is the demo vendor directory. Ratings and whitelist flags line
// up with the per-vendor catalogs in the sourcing engine.
func seedVendors() []schemas.Vendor {
	return []schemas.Vendor{
		{
			ID: "vendor-techdirect", Name: "TechDirect Pro",
			Website: "https://techdirect.example.com", Category: "IT Hardware",
			IsWhitelisted: true, Rating: 4.8, ContactEmail: "sales@techdirect.example.com",
		},
		{
			ID: "vendor-globalsupply", Name: "GlobalSupply Co",
			Website: "https://globalsupply.example.com", Category: "General",
			IsWhitelisted: true, Rating: 4.2, ContactEmail: "quotes@globalsupply.example.com",
		},
		{
			ID: "vendor-primeoffice", Name: "PrimeOffice Solutions",
			Website: "https://primeoffice.example.com", Category: "Office Furniture",
			IsWhitelisted: true, Rating: 4.5, ContactEmail: "orders@primeoffice.example.com",
		},
		{
			ID: "vendor-cloudware", Name: "CloudWare Systems",
			Website: "https://cloudware.example.com", Category: "IT Hardware",
			IsWhitelisted: false, Rating: 4.0, ContactEmail: "info@cloudware.example.com",
		},
		{
			ID: "vendor-securenet", Name: "SecureNet Distributors",
			Website: "https://securenet.example.com", Category: "Networking",
			IsWhitelisted: true, Rating: 4.6, ContactEmail: "sales@securenet.example.com",
		},
		{
			ID: "vendor-budgettech", Name: "BudgetTech Outlet",
			Website: "https://budgettech.example.com", Category: "IT Hardware",
			IsWhitelisted: false, Rating: 3.2, ContactEmail: "deals@budgettech.example.com",
			Notes: "Lowest prices, long lead times.",
		},
	}
}

// seedPolicies is the default compliance policy set.
func seedPolicies() []schemas.Policy {
	return []schemas.Policy{
		{
			ID: "policy-competitive-sourcing", Name: "Competitive Sourcing",
			Description: "High-value items require competing quotes.",
			Category:    schemas.PolicySourcing,
			RuleText:    "Items with an estimated unit price above $1,000 require at least 3 competing quotes.",
			ThresholdAmount: 1000, IsActive: true,
		},
		{
			ID: "policy-budget-limit", Name: "Budget Authorization Limit",
			Description: "Totals above the department limit need VP sign-off.",
			Category:    schemas.PolicyBudget,
			RuleText:    "Procurement totals must not exceed $25,000 without VP approval.",
			ThresholdAmount: 25000, IsActive: true,
		},
		{
			ID: "policy-approved-vendors", Name: "Approved Vendor Requirement",
			Description: "Large purchases go to whitelisted vendors only.",
			Category:    schemas.PolicyVendor,
			RuleText:    "Purchases above $5,000 must use a vendor on the approved whitelist.",
			ThresholdAmount: 5000, IsActive: true,
		},
		{
			ID: "policy-sustainability", Name: "Sustainable Procurement",
			Description: "Prefer eco-certified products where available.",
			Category:    schemas.PolicySustainability,
			RuleText:    "Eco-friendly alternatives must be considered for every purchase.",
			IsActive:    true,
		},
		{
			ID: "policy-delivery-window", Name: "Delivery Window",
			Description: "Orders must arrive within the standard delivery window.",
			Category:    schemas.PolicyLogistics,
			RuleText:    "Selected quotes must ship within 14 days.",
			IsActive:    true,
		},
	}
}
