package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/garyjia/courier-billing/internal/application/port"
	"github.com/garyjia/courier-billing/internal/domain/entity"
	"github.com/garyjia/courier-billing/internal/domain/rating"
	"github.com/garyjia/courier-billing/internal/infrastructure/persistence/sqlite"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ConfigRepository implements port.ConfigRepository
type ConfigRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewConfigRepository creates a new configuration repository
func NewConfigRepository(db *sql.DB, logger *zap.Logger) port.ConfigRepository {
	return &ConfigRepository{
		db:     db,
		logger: logger,
	}
}

// LoadFranchiseConfig reads one franchise and the company rate table
func (r *ConfigRepository) LoadFranchiseConfig(ctx context.Context, franchiseID int64) (*rating.FranchiseConfig, error) {
	exec := r.getExecutor(ctx)

	cfg := &rating.FranchiseConfig{FranchiseID: franchiseID}
	err := exec.QueryRowContext(ctx,
		`SELECT name, round_off FROM franchises WHERE id = ?`, franchiseID,
	).Scan(&cfg.Name, &cfg.Policy.RoundOff)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to load franchise", zap.Int64("franchise_id", franchiseID), zap.Error(err))
		return nil, fmt.Errorf("failed to load franchise: %w", err)
	}

	if cfg.Sectors, err = r.loadSectors(ctx, exec, franchiseID); err != nil {
		return nil, err
	}
	if cfg.Rates, err = r.loadRates(ctx, exec, `
		SELECT id, franchise_id, from_zone, to_zone, service_type, weight_from, weight_to, rate, fuel_surcharge, gst_percentage
		FROM rate_rules WHERE franchise_id = ? ORDER BY id`, franchiseID); err != nil {
		return nil, err
	}
	if cfg.CompanyRates, err = r.loadRates(ctx, exec, `
		SELECT id, 0, from_zone, to_zone, service_type, weight_from, weight_to, rate, fuel_surcharge, gst_percentage
		FROM company_rate_rules ORDER BY id`); err != nil {
		return nil, err
	}
	if cfg.Discounts, err = r.loadDiscounts(ctx, exec, franchiseID); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (r *ConfigRepository) loadSectors(ctx context.Context, exec sqlite.Executor, franchiseID int64) ([]entity.Sector, error) {
	rows, err := exec.QueryContext(ctx, `
		SELECT id, franchise_id, name, zone_code, pincodes, capabilities, priority_sequence
		FROM sectors WHERE franchise_id = ? ORDER BY id`, franchiseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sectors: %w", err)
	}
	defer rows.Close()

	var sectors []entity.Sector
	for rows.Next() {
		var (
			id, owner            int64
			name, zone, pins, cs string
			priority             int
		)
		if err := rows.Scan(&id, &owner, &name, &zone, &pins, &cs, &priority); err != nil {
			return nil, fmt.Errorf("failed to scan sector: %w", err)
		}
		var caps []entity.ServiceType
		for _, c := range splitColumn(cs) {
			caps = append(caps, entity.ServiceType(c))
		}
		sectors = append(sectors, entity.NewSector(id, owner, name, zone, splitColumn(pins), caps, priority))
	}
	return sectors, rows.Err()
}

func (r *ConfigRepository) loadRates(ctx context.Context, exec sqlite.Executor, query string, args ...interface{}) ([]entity.RateRule, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rate rules: %w", err)
	}
	defer rows.Close()

	var rates []entity.RateRule
	for rows.Next() {
		var (
			rule                             entity.RateRule
			svc, wFrom, wTo, rate, fuel, gst string
		)
		if err := rows.Scan(&rule.ID, &rule.FranchiseID, &rule.FromZone, &rule.ToZone, &svc,
			&wFrom, &wTo, &rate, &fuel, &gst); err != nil {
			return nil, fmt.Errorf("failed to scan rate rule: %w", err)
		}
		rule.ServiceType = entity.ServiceType(svc)
		if err := parseDecimals(
			decimalField{"weight_from", wFrom, &rule.WeightFrom},
			decimalField{"weight_to", wTo, &rule.WeightTo},
			decimalField{"rate", rate, &rule.Rate},
			decimalField{"fuel_surcharge", fuel, &rule.FuelSurcharge},
			decimalField{"gst_percentage", gst, &rule.GSTPercentage},
		); err != nil {
			return nil, fmt.Errorf("rate rule %d: %w", rule.ID, err)
		}
		rates = append(rates, rule)
	}
	return rates, rows.Err()
}

func (r *ConfigRepository) loadDiscounts(ctx context.Context, exec sqlite.Executor, franchiseID int64) ([]entity.DiscountRule, error) {
	rows, err := exec.QueryContext(ctx, `
		SELECT id, franchise_id, name, rule_type, applies_to, discount_type, value, max_discount, priority, status, condition
		FROM discount_rules WHERE franchise_id = ? ORDER BY id`, franchiseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query discount rules: %w", err)
	}
	defer rows.Close()

	var rules []entity.DiscountRule
	for rows.Next() {
		var (
			d                                  entity.DiscountRule
			ruleType, appliesTo, dType, status string
			value, maxDiscount                 string
		)
		if err := rows.Scan(&d.ID, &d.FranchiseID, &d.Name, &ruleType, &appliesTo, &dType,
			&value, &maxDiscount, &d.Priority, &status, &d.Condition); err != nil {
			return nil, fmt.Errorf("failed to scan discount rule: %w", err)
		}
		d.RuleType = entity.RuleType(ruleType)
		d.AppliesTo = entity.AppliesTo(appliesTo)
		d.DiscountType = entity.DiscountType(dType)
		d.Status = entity.RuleStatus(status)
		if err := parseDecimals(
			decimalField{"value", value, &d.Value},
			decimalField{"max_discount", maxDiscount, &d.MaxDiscount},
		); err != nil {
			return nil, fmt.Errorf("discount rule %d: %w", d.ID, err)
		}
		rules = append(rules, d)
	}
	return rules, rows.Err()
}

// ListFranchiseIDs returns all franchise ids
func (r *ConfigRepository) ListFranchiseIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.getExecutor(ctx).QueryContext(ctx, `SELECT id FROM franchises ORDER BY id`)
	if err != nil {
		r.logger.Error("Failed to list franchises", zap.Error(err))
		return nil, fmt.Errorf("failed to list franchises: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan franchise id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReplaceFranchiseConfig overwrites the franchise row and its owned collections.
// Callers should run it inside a transaction.
func (r *ConfigRepository) ReplaceFranchiseConfig(ctx context.Context, cfg *rating.FranchiseConfig) error {
	exec := r.getExecutor(ctx)
	id := cfg.FranchiseID

	if _, err := exec.ExecContext(ctx, `
		INSERT INTO franchises (id, name, round_off) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, round_off = excluded.round_off, updated_at = CURRENT_TIMESTAMP`,
		id, cfg.Name, cfg.Policy.RoundOff); err != nil {
		return fmt.Errorf("failed to upsert franchise: %w", err)
	}

	for _, table := range []string{"sectors", "rate_rules", "discount_rules"} {
		if _, err := exec.ExecContext(ctx, `DELETE FROM `+table+` WHERE franchise_id = ?`, id); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i := range cfg.Sectors {
		s := &cfg.Sectors[i]
		caps := make([]string, 0, len(s.Capabilities))
		for _, c := range s.CapabilityList() {
			caps = append(caps, string(c))
		}
		if _, err := exec.ExecContext(ctx, `
			INSERT INTO sectors (id, franchise_id, name, zone_code, pincodes, capabilities, priority_sequence)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.ID, id, s.Name, s.ZoneCode, strings.Join(s.PincodeList(), ","), strings.Join(caps, ","), s.PrioritySequence); err != nil {
			return fmt.Errorf("failed to insert sector %d: %w", s.ID, err)
		}
	}

	for _, rule := range cfg.Rates {
		if _, err := exec.ExecContext(ctx, `
			INSERT INTO rate_rules (id, franchise_id, from_zone, to_zone, service_type, weight_from, weight_to, rate, fuel_surcharge, gst_percentage)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rule.ID, id, rule.FromZone, rule.ToZone, string(rule.ServiceType),
			rule.WeightFrom.String(), rule.WeightTo.String(), rule.Rate.String(),
			rule.FuelSurcharge.String(), rule.GSTPercentage.String()); err != nil {
			return fmt.Errorf("failed to insert rate rule %d: %w", rule.ID, err)
		}
	}

	for _, d := range cfg.Discounts {
		if _, err := exec.ExecContext(ctx, `
			INSERT INTO discount_rules (id, franchise_id, name, rule_type, applies_to, discount_type, value, max_discount, priority, status, condition)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID, id, d.Name, string(d.RuleType), string(d.AppliesTo), string(d.DiscountType),
			d.Value.String(), d.MaxDiscount.String(), d.Priority, string(d.Status), d.Condition); err != nil {
			return fmt.Errorf("failed to insert discount rule %d: %w", d.ID, err)
		}
	}

	r.logger.Info("Franchise configuration replaced",
		zap.Int64("franchise_id", id),
		zap.Int("sectors", len(cfg.Sectors)),
		zap.Int("rates", len(cfg.Rates)),
		zap.Int("discounts", len(cfg.Discounts)))
	return nil
}

// ReplaceCompanyRates overwrites the company rate table
func (r *ConfigRepository) ReplaceCompanyRates(ctx context.Context, rates []entity.RateRule) error {
	exec := r.getExecutor(ctx)

	if _, err := exec.ExecContext(ctx, `DELETE FROM company_rate_rules`); err != nil {
		return fmt.Errorf("failed to clear company rates: %w", err)
	}
	for _, rule := range rates {
		if _, err := exec.ExecContext(ctx, `
			INSERT INTO company_rate_rules (id, from_zone, to_zone, service_type, weight_from, weight_to, rate, fuel_surcharge, gst_percentage)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rule.ID, rule.FromZone, rule.ToZone, string(rule.ServiceType),
			rule.WeightFrom.String(), rule.WeightTo.String(), rule.Rate.String(),
			rule.FuelSurcharge.String(), rule.GSTPercentage.String()); err != nil {
			return fmt.Errorf("failed to insert company rate %d: %w", rule.ID, err)
		}
	}

	r.logger.Info("Company rate table replaced", zap.Int("rates", len(rates)))
	return nil
}

func (r *ConfigRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFrom(ctx, r.db)
}

type decimalField struct {
	name string
	raw  string
	dst  *decimal.Decimal
}

func parseDecimals(fields ...decimalField) error {
	for _, f := range fields {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}
	return nil
}

func splitColumn(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Verify interface compliance
var _ port.ConfigRepository = (*ConfigRepository)(nil)
