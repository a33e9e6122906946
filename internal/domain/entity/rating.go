package entity

import "github.com/shopspring/decimal"

// DiscountContribution is one applied discount rule
type DiscountContribution struct {
	RuleID       int64        `json:"rule_id"`
	RuleType     RuleType     `json:"rule_type"`
	DiscountType DiscountType `json:"discount_type"`
	AmountMinor  int64        `json:"amount_minor"`
	Capped       bool         `json:"capped,omitempty"`
}

// RatingResult is the audit record of one rating run. Every intermediate
// value needed to reproduce the line amount is kept.
type RatingResult struct {
	ShipmentID          string                 `json:"shipment_id"`
	FranchiseID         int64                  `json:"franchise_id"`
	SnapshotVersion     string                 `json:"snapshot_version"`
	ServiceType         ServiceType            `json:"service_type"`
	Weight              decimal.Decimal        `json:"weight"`
	OriginSectorID      int64                  `json:"origin_sector_id"`
	DestinationSectorID int64                  `json:"destination_sector_id"`
	FromZone            string                 `json:"from_zone"`
	ToZone              string                 `json:"to_zone"`
	RateRuleID          int64                  `json:"rate_rule_id"`
	RateLevel           RateLevel              `json:"rate_level"`
	Fallback            bool                   `json:"fallback"`
	BaseRate            decimal.Decimal        `json:"base_rate"`
	FuelSurcharge       decimal.Decimal        `json:"fuel_surcharge"`
	GSTPercentage       decimal.Decimal        `json:"gst_percentage"`
	SurchargedMinor     int64                  `json:"surcharged_minor"`
	SurchargeMinor      int64                  `json:"surcharge_minor"`
	RoundingMinor       int64                  `json:"rounding_minor"`
	GrossMinor          int64                  `json:"gross_minor"`
	TaxMinor            int64                  `json:"tax_minor"`
	Discounts           []DiscountContribution `json:"discounts"`
	DiscountMinor       int64                  `json:"discount_minor"`
	DiscountClamped     bool                   `json:"discount_clamped"`
	PayableMinor        int64                  `json:"payable_minor"`
	AmountMinor         int64                  `json:"amount_minor"`
}
