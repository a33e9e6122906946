package rating

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Rating error kinds. Every failure a rating run can produce wraps one of these.
var (
	ErrZoneUnresolved           = errors.New("zone unresolved")
	ErrRateUnresolved           = errors.New("rate unresolved")
	ErrRateAmbiguous            = errors.New("rate ambiguous")
	ErrInvoiceFrozen            = errors.New("invoice frozen")
	ErrDiscountConditionInvalid = errors.New("discount condition invalid")
)

// Configuration and input errors
var (
	ErrConfigIntegrity = errors.New("configuration integrity violation")
	ErrInvalidShipment = errors.New("invalid shipment")
)

// Stage names the pipeline step that failed
type Stage string

// Pipeline stages
const (
	StageInput    Stage = "input"
	StageZone     Stage = "zone"
	StageRate     Stage = "rate"
	StageDiscount Stage = "discount"
	StageInvoice  Stage = "invoice"
	StageConfig   Stage = "config"
)

// Error carries the shipment and the intermediate state resolved before the failure
type Error struct {
	Kind       error
	ShipmentID string
	Stage      Stage
	Detail     map[string]any
}

// NewError builds a rating error
func NewError(kind error, shipmentID string, stage Stage, detail map[string]any) *Error {
	return &Error{Kind: kind, ShipmentID: shipmentID, Stage: stage, Detail: detail}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.ShipmentID != "" {
		fmt.Fprintf(&b, ": shipment %s", e.ShipmentID)
	}
	fmt.Fprintf(&b, " at %s stage", e.Stage)

	if len(e.Detail) > 0 {
		keys := make([]string, 0, len(e.Detail))
		for k := range e.Detail {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Detail[k]))
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, " "))
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// AsError extracts a rating error from err's chain
func AsError(err error) (*Error, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

func (e *Error) forShipment(id string) *Error {
	e.ShipmentID = id
	return e
}
