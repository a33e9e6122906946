package service

import (
	"context"
	"errors"

	"github.com/garyjia/courier-billing/internal/domain/rating"
	"github.com/garyjia/courier-billing/internal/domain/workflow"
)

var (
	// ErrHeaderNotFound is returned when an invoice header does not exist
	ErrHeaderNotFound = errors.New("invoice header not found")

	// ErrFranchiseNotFound is returned when a franchise has no configuration
	ErrFranchiseNotFound = errors.New("franchise not found")

	// ErrFranchiseMismatch is returned when a header belongs to another franchise
	ErrFranchiseMismatch = errors.New("invoice header belongs to another franchise")

	// ErrLineConflict is returned when a shipment is already billed on the
	// header under a different configuration snapshot
	ErrLineConflict = errors.New("shipment already billed under a different snapshot")

	// ErrInvalidAmount is returned for a non-positive recharge amount
	ErrInvalidAmount = errors.New("amount must be positive")
)

// ErrorCode maps an error to a stable machine-readable code
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, rating.ErrZoneUnresolved):
		return "zone_unresolved"
	case errors.Is(err, rating.ErrRateUnresolved):
		return "rate_unresolved"
	case errors.Is(err, rating.ErrRateAmbiguous):
		return "rate_ambiguous"
	case errors.Is(err, rating.ErrInvoiceFrozen):
		return "invoice_frozen"
	case errors.Is(err, rating.ErrDiscountConditionInvalid):
		return "discount_condition_invalid"
	case errors.Is(err, rating.ErrConfigIntegrity):
		return "config_integrity"
	case errors.Is(err, rating.ErrInvalidShipment):
		return "invalid_shipment"
	case errors.Is(err, ErrHeaderNotFound):
		return "header_not_found"
	case errors.Is(err, ErrFranchiseNotFound):
		return "franchise_not_found"
	case errors.Is(err, ErrFranchiseMismatch):
		return "franchise_mismatch"
	case errors.Is(err, ErrLineConflict):
		return "line_conflict"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, workflow.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, workflow.ErrGuardFailed):
		return "transition_refused"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "internal"
	}
}
