// File: api/schemas/document.go
package schemas

import "time"

// DocumentType identifies a rendered procurement document.
type DocumentType string

const (
	DocumentRFQ             DocumentType = "rfq"
	DocumentPurchaseOrder   DocumentType = "purchase_order"
	DocumentContractSummary DocumentType = "contract_summary"
	DocumentInvoice         DocumentType = "invoice"
)

// ProcurementDocument is a rendered, human-readable procurement document.
// Content is fixed-format prose, deterministic for a fixed input and clock.
// Documents are immutable once created.
type ProcurementDocument struct {
	ID        string            `json:"id"`
	MissionID string            `json:"mission_id"`
	Type      DocumentType      `json:"type"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
