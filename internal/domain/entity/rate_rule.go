package entity

import "github.com/shopspring/decimal"

// RateRule prices one (from zone, to zone, service) lane over the weight
// range [WeightFrom, WeightTo). FranchiseID 0 marks the company table.
type RateRule struct {
	ID            int64           `json:"id"`
	FranchiseID   int64           `json:"franchise_id"`
	FromZone      string          `json:"from_zone"`
	ToZone        string          `json:"to_zone"`
	ServiceType   ServiceType     `json:"service_type"`
	WeightFrom    decimal.Decimal `json:"weight_from"`
	WeightTo      decimal.Decimal `json:"weight_to"`
	Rate          decimal.Decimal `json:"rate"`
	FuelSurcharge decimal.Decimal `json:"fuel_surcharge"`
	GSTPercentage decimal.Decimal `json:"gst_percentage"`
}

// RateKey identifies a lane
type RateKey struct {
	FromZone    string      `json:"from_zone"`
	ToZone      string      `json:"to_zone"`
	ServiceType ServiceType `json:"service_type"`
}

// Key returns the lane this rule prices
func (r *RateRule) Key() RateKey {
	return RateKey{FromZone: r.FromZone, ToZone: r.ToZone, ServiceType: r.ServiceType}
}

// Matches reports whether the rule prices key at weight
func (r *RateRule) Matches(key RateKey, weight decimal.Decimal) bool {
	return r.Key() == key &&
		r.WeightFrom.LessThanOrEqual(weight) &&
		weight.LessThan(r.WeightTo)
}

// Overlaps reports whether both rules price the same lane over intersecting weight ranges
func (r *RateRule) Overlaps(other *RateRule) bool {
	return r.Key() == other.Key() &&
		r.WeightFrom.LessThan(other.WeightTo) &&
		other.WeightFrom.LessThan(r.WeightTo)
}

// IsCompany reports whether the rule belongs to the company-wide table
func (r *RateRule) IsCompany() bool {
	return r.FranchiseID == CompanyFranchiseID
}
