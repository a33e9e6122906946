package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/garyjia/courier-billing/internal/application/port"
	"github.com/garyjia/courier-billing/internal/domain/entity"
	"github.com/garyjia/courier-billing/internal/infrastructure/persistence/sqlite"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceRepository implements port.InvoiceRepository
type InvoiceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *sql.DB, logger *zap.Logger) port.InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

// CreateHeader inserts a header and fills in its ID and timestamps
func (r *InvoiceRepository) CreateHeader(ctx context.Context, header *entity.InvoiceHeader) error {
	if header.Status == "" {
		header.Status = entity.InvoiceStatusDraft
	}
	now := time.Now().UTC()

	result, err := r.getExecutor(ctx).ExecContext(ctx, `
		INSERT INTO invoice_headers (franchise_id, invoice_number, customer_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		header.FranchiseID, header.InvoiceNumber, header.CustomerID, string(header.Status), now, now)
	if err != nil {
		r.logger.Error("Failed to create invoice header",
			zap.Int64("franchise_id", header.FranchiseID),
			zap.String("invoice_number", header.InvoiceNumber),
			zap.Error(err))
		return fmt.Errorf("failed to create invoice header: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	header.ID = id
	header.CreatedAt = now
	header.UpdatedAt = now
	return nil
}

// GetHeader retrieves a header by ID
func (r *InvoiceRepository) GetHeader(ctx context.Context, id int64) (*entity.InvoiceHeader, error) {
	var (
		h      entity.InvoiceHeader
		status string
	)
	err := r.getExecutor(ctx).QueryRowContext(ctx, `
		SELECT id, franchise_id, invoice_number, customer_id, status, line_count,
			gross_minor, discount_minor, tax_minor, rounding_minor, total_minor, created_at, updated_at
		FROM invoice_headers
		WHERE id = ?`, id,
	).Scan(&h.ID, &h.FranchiseID, &h.InvoiceNumber, &h.CustomerID, &status, &h.LineCount,
		&h.GrossMinor, &h.DiscountMinor, &h.TaxMinor, &h.RoundingMinor, &h.TotalMinor, &h.CreatedAt, &h.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get invoice header", zap.Int64("header_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get invoice header: %w", err)
	}

	h.Status = entity.InvoiceStatus(status)
	return &h, nil
}

// UpdateHeaderStatus sets the lifecycle status of a header
func (r *InvoiceRepository) UpdateHeaderStatus(ctx context.Context, id int64, status entity.InvoiceStatus) error {
	result, err := r.getExecutor(ctx).ExecContext(ctx, `
		UPDATE invoice_headers SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to update invoice status",
			zap.Int64("header_id", id),
			zap.String("status", string(status)),
			zap.Error(err))
		return fmt.Errorf("failed to update invoice status: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("invoice header %d not found", id)
	}
	return nil
}

const lineColumns = `id, header_id, shipment_id, snapshot_version, description, quantity, unit_price_minor,
	gst_percentage, gross_minor, discount_minor, tax_minor, rounding_minor, amount_minor, rating_audit, created_at`

// FindLineByShipment returns the line billing shipmentID on the header
func (r *InvoiceRepository) FindLineByShipment(ctx context.Context, headerID int64, shipmentID string) (*entity.InvoiceLine, error) {
	line, err := scanLine(r.getExecutor(ctx).QueryRowContext(ctx,
		`SELECT `+lineColumns+` FROM invoice_lines WHERE header_id = ? AND shipment_id = ?`,
		headerID, shipmentID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to find invoice line",
			zap.Int64("header_id", headerID),
			zap.String("shipment_id", shipmentID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to find invoice line: %w", err)
	}
	return line, nil
}

// CreateLine inserts an immutable line
func (r *InvoiceRepository) CreateLine(ctx context.Context, line *entity.InvoiceLine) error {
	now := time.Now().UTC()

	var shipmentID interface{}
	if line.ShipmentID != "" {
		shipmentID = line.ShipmentID
	}

	result, err := r.getExecutor(ctx).ExecContext(ctx, `
		INSERT INTO invoice_lines (
			header_id, shipment_id, snapshot_version, description, quantity, unit_price_minor,
			gst_percentage, gross_minor, discount_minor, tax_minor, rounding_minor, amount_minor, rating_audit, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		line.HeaderID, shipmentID, line.SnapshotVersion, line.Description, line.Quantity, line.UnitPriceMinor,
		line.GSTPercentage.String(), line.GrossMinor, line.DiscountMinor, line.TaxMinor, line.RoundingMinor,
		line.AmountMinor, line.RatingAudit, now)
	if err != nil {
		r.logger.Error("Failed to create invoice line",
			zap.Int64("header_id", line.HeaderID),
			zap.String("shipment_id", line.ShipmentID),
			zap.Error(err))
		return fmt.Errorf("failed to create invoice line: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	line.ID = id
	line.CreatedAt = now
	return nil
}

// ListLines returns the header's lines in insertion order
func (r *InvoiceRepository) ListLines(ctx context.Context, headerID int64) ([]*entity.InvoiceLine, error) {
	rows, err := r.getExecutor(ctx).QueryContext(ctx,
		`SELECT `+lineColumns+` FROM invoice_lines WHERE header_id = ? ORDER BY id`, headerID)
	if err != nil {
		r.logger.Error("Failed to list invoice lines", zap.Int64("header_id", headerID), zap.Error(err))
		return nil, fmt.Errorf("failed to list invoice lines: %w", err)
	}
	defer rows.Close()

	lines := []*entity.InvoiceLine{}
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// RecomputeTotals sums the lines of a header and stores the aggregates
func (r *InvoiceRepository) RecomputeTotals(ctx context.Context, headerID int64) (*entity.InvoiceTotals, error) {
	exec := r.getExecutor(ctx)

	var t entity.InvoiceTotals
	err := exec.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(gross_minor), 0),
			COALESCE(SUM(discount_minor), 0),
			COALESCE(SUM(tax_minor), 0),
			COALESCE(SUM(rounding_minor), 0),
			COALESCE(SUM(amount_minor), 0)
		FROM invoice_lines WHERE header_id = ?`, headerID,
	).Scan(&t.LineCount, &t.GrossMinor, &t.DiscountMinor, &t.TaxMinor, &t.RoundingMinor, &t.TotalMinor)
	if err != nil {
		return nil, fmt.Errorf("failed to sum invoice lines: %w", err)
	}

	if _, err := exec.ExecContext(ctx, `
		UPDATE invoice_headers
		SET line_count = ?, gross_minor = ?, discount_minor = ?, tax_minor = ?, rounding_minor = ?, total_minor = ?, updated_at = ?
		WHERE id = ?`,
		t.LineCount, t.GrossMinor, t.DiscountMinor, t.TaxMinor, t.RoundingMinor, t.TotalMinor, time.Now().UTC(), headerID); err != nil {
		r.logger.Error("Failed to store invoice totals", zap.Int64("header_id", headerID), zap.Error(err))
		return nil, fmt.Errorf("failed to store invoice totals: %w", err)
	}

	return &t, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLine(row rowScanner) (*entity.InvoiceLine, error) {
	var (
		line       entity.InvoiceLine
		shipmentID sql.NullString
		gst        string
	)
	if err := row.Scan(&line.ID, &line.HeaderID, &shipmentID, &line.SnapshotVersion, &line.Description,
		&line.Quantity, &line.UnitPriceMinor, &gst, &line.GrossMinor, &line.DiscountMinor, &line.TaxMinor,
		&line.RoundingMinor, &line.AmountMinor, &line.RatingAudit, &line.CreatedAt); err != nil {
		return nil, err
	}

	line.ShipmentID = shipmentID.String
	pct, err := decimal.NewFromString(gst)
	if err != nil {
		return nil, fmt.Errorf("invalid gst_percentage %q: %w", gst, err)
	}
	line.GSTPercentage = pct
	return &line, nil
}

func (r *InvoiceRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFrom(ctx, r.db)
}

// Verify interface compliance
var _ port.InvoiceRepository = (*InvoiceRepository)(nil)
