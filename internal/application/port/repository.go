package port

import (
	"context"

	"github.com/garyjia/courier-billing/internal/domain/entity"
	"github.com/garyjia/courier-billing/internal/domain/rating"
)

// ConfigRepository reads and replaces franchise rating configuration
type ConfigRepository interface {
	// LoadFranchiseConfig returns the franchise configuration together with the
	// company rate table. Returns nil, nil when the franchise does not exist.
	LoadFranchiseConfig(ctx context.Context, franchiseID int64) (*rating.FranchiseConfig, error)

	// ListFranchiseIDs returns every configured franchise in ascending order
	ListFranchiseIDs(ctx context.Context) ([]int64, error)

	// ReplaceFranchiseConfig swaps sectors, rates, discounts and policy of one
	// franchise for cfg. Company rates in cfg are ignored.
	ReplaceFranchiseConfig(ctx context.Context, cfg *rating.FranchiseConfig) error

	// ReplaceCompanyRates swaps the company-wide rate table
	ReplaceCompanyRates(ctx context.Context, rates []entity.RateRule) error
}

// InvoiceRepository persists invoice headers and their immutable lines
type InvoiceRepository interface {
	CreateHeader(ctx context.Context, header *entity.InvoiceHeader) error

	// GetHeader returns nil, nil when the header does not exist
	GetHeader(ctx context.Context, id int64) (*entity.InvoiceHeader, error)

	UpdateHeaderStatus(ctx context.Context, id int64, status entity.InvoiceStatus) error

	// FindLineByShipment returns nil, nil when the shipment has no line on the header
	FindLineByShipment(ctx context.Context, headerID int64, shipmentID string) (*entity.InvoiceLine, error)

	CreateLine(ctx context.Context, line *entity.InvoiceLine) error

	ListLines(ctx context.Context, headerID int64) ([]*entity.InvoiceLine, error)

	// RecomputeTotals sums the header's lines and stores the aggregates on the header
	RecomputeTotals(ctx context.Context, headerID int64) (*entity.InvoiceTotals, error)
}

// TransactionManager runs fn inside a database transaction carried by ctx.
// Repository calls made with that ctx join the transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
