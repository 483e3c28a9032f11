// File: internal/drafter/drafter.go
// Description: Renders the mission's procurement documents. The RFQ is always
// produced from the parsed items; the purchase order and contract summary are
// produced only when a winning quote exists. Output is fixed-format prose,
// byte-identical for a fixed input and clock.

package drafter

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/debdutta1777/AuraProcure/api/schemas"
	"github.com/debdutta1777/AuraProcure/internal/config"
)

// rfqResponseWindow is how long vendors get to respond to an RFQ.
const rfqResponseWindow = 7 * 24 * time.Hour

// Drafter renders procurement documents.
type Drafter struct {
	logger *zap.Logger
	nowFn  func() time.Time

	companyName string
	shipTo      string
	taxRate     float64
}

// New creates a Drafter using the letterhead details from the documents
// config section.
func New(cfg config.DocumentsConfig, logger *zap.Logger) *Drafter {
	return &Drafter{
		logger:      logger.Named("drafter"),
		nowFn:       time.Now,
		companyName: cfg.CompanyName,
		shipTo:      cfg.ShipTo,
		taxRate:     cfg.TaxRate,
	}
}

// WithClock overrides the drafter's clock. Test hook.
func (d *Drafter) WithClock(nowFn func() time.Time) *Drafter {
	d.nowFn = nowFn
	return d
}

// Draft renders the document bundle for the mission and appends it to the
// context. Requires at least one parsed item.
func (d *Drafter) Draft(ctx context.Context, mctx *schemas.MissionContext) (*schemas.DocumentBundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items := mctx.Mission.ParsedItems
	if len(items) == 0 {
		return nil, fmt.Errorf("mission %s has no items to document", mctx.Mission.ID)
	}

	now := d.nowFn().UTC()
	selected := mctx.SelectedQuote()
	bundle := &schemas.DocumentBundle{}

	mctx.AppendLogs(schemas.NewLog(mctx.Mission.ID, schemas.AgentDocumentDrafter, schemas.LogInfo,
		"Generating procurement documents",
		map[string]any{"document_types": []string{"rfq", "purchase_order", "contract_summary"}}))

	rfq := schemas.ProcurementDocument{
		ID:        uuid.NewString(),
		MissionID: mctx.Mission.ID,
		Type:      schemas.DocumentRFQ,
		Title:     fmt.Sprintf("RFQ - %s", items[0].Name),
		Content:   d.renderRFQ(items, now),
		Metadata:  map[string]string{"items_count": strconv.Itoa(len(items))},
		CreatedAt: now,
	}
	bundle.Documents = append(bundle.Documents, rfq)
	mctx.AppendLogs(schemas.NewLog(mctx.Mission.ID, schemas.AgentDocumentDrafter, schemas.LogInfo,
		"RFQ document generated", map[string]any{"type": schemas.DocumentRFQ}))

	if selected != nil {
		po := schemas.ProcurementDocument{
			ID:        uuid.NewString(),
			MissionID: mctx.Mission.ID,
			Type:      schemas.DocumentPurchaseOrder,
			Title:     fmt.Sprintf("PO - %dx %s", selected.Quantity, selected.ItemName),
			Content:   d.renderPO(selected, now),
			Metadata: map[string]string{
				"vendor": selected.VendorName,
				"total":  strconv.FormatInt(selected.TotalPrice, 10),
			},
			CreatedAt: now,
		}
		bundle.Documents = append(bundle.Documents, po)
		mctx.AppendLogs(schemas.NewLog(mctx.Mission.ID, schemas.AgentDocumentDrafter, schemas.LogInfo,
			fmt.Sprintf("Purchase Order generated for %s", selected.VendorName),
			map[string]any{"type": schemas.DocumentPurchaseOrder, "vendor": selected.VendorName}))

		summary := schemas.ProcurementDocument{
			ID:        uuid.NewString(),
			MissionID: mctx.Mission.ID,
			Type:      schemas.DocumentContractSummary,
			Title:     fmt.Sprintf("Contract Summary - %s", selected.VendorName),
			Content:   d.renderContractSummary(selected, now),
			Metadata:  map[string]string{"vendor": selected.VendorName},
			CreatedAt: now,
		}
		bundle.Documents = append(bundle.Documents, summary)
		mctx.AppendLogs(schemas.NewLog(mctx.Mission.ID, schemas.AgentDocumentDrafter, schemas.LogInfo,
			"Contract summary generated, all documents archived",
			map[string]any{"documents_created": len(bundle.Documents)}))
	}

	mctx.Documents = append(mctx.Documents, bundle.Documents...)
	return bundle, nil
}

// documentNumber derives a date-based number such as PO-2025-0602.
func documentNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%d-%02d%02d", prefix, now.Year(), int(now.Month()), now.Day())
}

// tax is the single multiply-and-round step; no per-line accumulation.
func (d *Drafter) tax(total int64) int64 {
	return int64(math.Round(float64(total) * d.taxRate))
}

func longDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

func (d *Drafter) renderRFQ(items []schemas.ParsedItem, now time.Time) string {
	var b strings.Builder
	b.WriteString("REQUEST FOR QUOTATION\n\n")
	fmt.Fprintf(&b, "RFQ Number: %s\n", documentNumber("RFQ", now))
	fmt.Fprintf(&b, "Date: %s\n", longDate(now))
	fmt.Fprintf(&b, "Deadline for Responses: %s\n\n", longDate(now.Add(rfqResponseWindow)))
	b.WriteString("Dear Vendor,\n\n")
	b.WriteString("We are soliciting quotations for the following items:\n\n")

	for i, item := range items {
		fmt.Fprintf(&b, "Item %d: %s\n", i+1, item.Name)
		fmt.Fprintf(&b, "Quantity: %d units\n", item.Quantity)
		if item.Specifications != "" {
			fmt.Fprintf(&b, "Specifications: %s\n", item.Specifications)
		}
		b.WriteString("\n")
	}

	b.WriteString("Delivery Requirements:\n")
	b.WriteString("- Location: Corporate HQ\n")
	b.WriteString("- Packaging: Standard commercial packaging\n\n")
	b.WriteString("Please include unit pricing, bulk discounts, shipping costs, and estimated delivery timeline.\n\n")
	fmt.Fprintf(&b, "Thank you,\nProcurement Department\n%s", d.companyName)
	return b.String()
}

func (d *Drafter) renderPO(quote *schemas.VendorQuote, now time.Time) string {
	tax := d.tax(quote.TotalPrice)
	grandTotal := quote.TotalPrice + tax
	rule := strings.Repeat("=", 40)

	var b strings.Builder
	b.WriteString("PURCHASE ORDER\n\n")
	fmt.Fprintf(&b, "PO Number: %s\n", documentNumber("PO", now))
	fmt.Fprintf(&b, "Date: %s\n", longDate(now))
	fmt.Fprintf(&b, "Vendor: %s\n\n", quote.VendorName)
	fmt.Fprintf(&b, "Ship To:\n%s\n\n", d.shipTo)
	b.WriteString("Line Items:\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "1. %s\n", quote.ItemName)
	fmt.Fprintf(&b, "   - Qty: %d\n", quote.Quantity)
	fmt.Fprintf(&b, "   - Unit Price: $%d\n", quote.UnitPrice)
	fmt.Fprintf(&b, "   - Line Total: $%d\n", quote.TotalPrice)
	b.WriteString(rule + "\n\n")
	fmt.Fprintf(&b, "Subtotal: $%d\n", quote.TotalPrice)
	b.WriteString("Shipping: $0 (Free shipping)\n")
	fmt.Fprintf(&b, "Tax (%.0f%%): $%d\n", d.taxRate*100, tax)
	fmt.Fprintf(&b, "Total: $%d\n\n", grandTotal)
	b.WriteString("Payment Terms: Net 30\n")
	fmt.Fprintf(&b, "Delivery Date: %s", longDate(now.AddDate(0, 0, quote.ShippingDays)))
	return b.String()
}

func (d *Drafter) renderContractSummary(quote *schemas.VendorQuote, now time.Time) string {
	tax := d.tax(quote.TotalPrice)
	grandTotal := quote.TotalPrice + tax

	var b strings.Builder
	b.WriteString("CONTRACT SUMMARY\n\n")
	fmt.Fprintf(&b, "Date: %s\n\n", longDate(now))
	b.WriteString("Parties:\n")
	fmt.Fprintf(&b, "- Buyer: %s\n", d.companyName)
	fmt.Fprintf(&b, "- Seller: %s\n\n", quote.VendorName)
	b.WriteString("Key Terms:\n")
	fmt.Fprintf(&b, "1. Product: %dx %s\n", quote.Quantity, quote.ItemName)
	fmt.Fprintf(&b, "2. Total Value: $%d (incl. tax)\n", grandTotal)
	b.WriteString("3. Payment: Net 30 from delivery\n")
	b.WriteString("4. Warranty: Standard manufacturer warranty\n")
	fmt.Fprintf(&b, "5. Delivery: Within %d business days\n", quote.ShippingDays)
	b.WriteString("6. Returns: 30-day DOA replacement policy\n\n")
	b.WriteString("Compliance Notes:\n")
	b.WriteString("- Competitive quotes obtained\n")
	b.WriteString("- Vendor compliance verified\n")
	b.WriteString("- Budget authorization confirmed")
	return b.String()
}
