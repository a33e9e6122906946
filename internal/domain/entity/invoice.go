package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the header lifecycle state
type InvoiceStatus string

// Invoice header statuses
const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// InvoiceHeader groups the lines billed to one customer of a franchise.
// The money columns are aggregates of the lines, in minor units.
type InvoiceHeader struct {
	ID            int64         `json:"id"`
	FranchiseID   int64         `json:"franchise_id"`
	InvoiceNumber string        `json:"invoice_number"`
	CustomerID    string        `json:"customer_id"`
	Status        InvoiceStatus `json:"status"`
	LineCount     int           `json:"line_count"`
	GrossMinor    int64         `json:"gross_minor"`
	DiscountMinor int64         `json:"discount_minor"`
	TaxMinor      int64         `json:"tax_minor"`
	RoundingMinor int64         `json:"rounding_minor"`
	TotalMinor    int64         `json:"total_minor"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// AcceptsLines reports whether new lines may be written
func (h *InvoiceHeader) AcceptsLines() bool {
	return h.Status == InvoiceStatusDraft
}

// InvoiceLine is an immutable billed line. AmountMinor = GrossMinor - DiscountMinor + TaxMinor.
type InvoiceLine struct {
	ID              int64           `json:"id"`
	HeaderID        int64           `json:"header_id"`
	ShipmentID      string          `json:"shipment_id,omitempty"`
	SnapshotVersion string          `json:"snapshot_version"`
	Description     string          `json:"description"`
	Quantity        int             `json:"quantity"`
	UnitPriceMinor  int64           `json:"unit_price_minor"`
	GSTPercentage   decimal.Decimal `json:"gst_percentage"`
	GrossMinor      int64           `json:"gross_minor"`
	DiscountMinor   int64           `json:"discount_minor"`
	TaxMinor        int64           `json:"tax_minor"`
	RoundingMinor   int64           `json:"rounding_minor"`
	AmountMinor     int64           `json:"amount_minor"`
	RatingAudit     string          `json:"rating_audit,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// InvoiceTotals are header aggregates recomputed from lines
type InvoiceTotals struct {
	LineCount     int   `json:"line_count"`
	GrossMinor    int64 `json:"gross_minor"`
	DiscountMinor int64 `json:"discount_minor"`
	TaxMinor      int64 `json:"tax_minor"`
	RoundingMinor int64 `json:"rounding_minor"`
	TotalMinor    int64 `json:"total_minor"`
}
