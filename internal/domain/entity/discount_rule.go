package entity

import "github.com/shopspring/decimal"

// DiscountRule is a franchise discount. Condition holds the JSON predicate
// tree; an empty condition always matches.
type DiscountRule struct {
	ID           int64           `json:"id"`
	FranchiseID  int64           `json:"franchise_id"`
	Name         string          `json:"name"`
	RuleType     RuleType        `json:"rule_type"`
	AppliesTo    AppliesTo       `json:"applies_to"`
	DiscountType DiscountType    `json:"discount_type"`
	Value        decimal.Decimal `json:"value"`
	MaxDiscount  decimal.Decimal `json:"max_discount"`
	Priority     int             `json:"priority"`
	Status       RuleStatus      `json:"status"`
	Condition    string          `json:"condition,omitempty"`
}

// IsCandidate reports whether the rule participates in the given billing context
func (d *DiscountRule) IsCandidate(ctx AppliesTo) bool {
	return d.Status == RuleStatusActive && d.AppliesTo == ctx
}

// Precedes orders rules by priority then id
func (d *DiscountRule) Precedes(other *DiscountRule) bool {
	if d.Priority != other.Priority {
		return d.Priority < other.Priority
	}
	return d.ID < other.ID
}
