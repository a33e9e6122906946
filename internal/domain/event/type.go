package event

// Type identifies the type of domain event
type Type string

const (
	TypeShipmentRated        Type = "shipment.rated"
	TypeRatingFailed         Type = "rating.failed"
	TypeInvoiceCreated       Type = "invoice.created"
	TypeInvoiceLineWritten   Type = "invoice.line_written"
	TypeInvoiceStatusChanged Type = "invoice.status_changed"
	TypeConfigDefect         Type = "config.defect"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeShipmentRated,
		TypeRatingFailed,
		TypeInvoiceCreated,
		TypeInvoiceLineWritten,
		TypeInvoiceStatusChanged,
		TypeConfigDefect:
		return true
	default:
		return false
	}
}
