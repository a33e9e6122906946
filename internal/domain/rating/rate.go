package rating

import (
	"github.com/garyjia/courier-billing/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// RateMatch is the rule chosen for a lane and weight
type RateMatch struct {
	Rule     entity.RateRule
	Level    entity.RateLevel
	Fallback bool
}

// ResolveRate looks for exactly one franchise rule covering key and weight.
// The company table is consulted only when the franchise table has no match.
// More than one match at either level fails closed.
func ResolveRate(franchiseRates, companyRates []entity.RateRule, key entity.RateKey, weight decimal.Decimal) (*RateMatch, *Error) {
	rule, err := matchOne(franchiseRates, key, weight, entity.RateLevelFranchise)
	if err != nil {
		return nil, err
	}
	if rule != nil {
		return &RateMatch{Rule: *rule, Level: entity.RateLevelFranchise}, nil
	}

	rule, err = matchOne(companyRates, key, weight, entity.RateLevelCompany)
	if err != nil {
		return nil, err
	}
	if rule != nil {
		return &RateMatch{Rule: *rule, Level: entity.RateLevelCompany, Fallback: true}, nil
	}

	return nil, NewError(ErrRateUnresolved, "", StageRate, rateDetail(key, weight, entity.RateLevelCompany))
}

func matchOne(rules []entity.RateRule, key entity.RateKey, weight decimal.Decimal, level entity.RateLevel) (*entity.RateRule, *Error) {
	var matches []*entity.RateRule
	for i := range rules {
		if rules[i].Matches(key, weight) {
			matches = append(matches, &rules[i])
		}
	}

	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	}

	ids := make([]int64, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	detail := rateDetail(key, weight, level)
	detail["rule_ids"] = ids
	return nil, NewError(ErrRateAmbiguous, "", StageRate, detail)
}

func rateDetail(key entity.RateKey, weight decimal.Decimal, level entity.RateLevel) map[string]any {
	return map[string]any{
		"from_zone":    key.FromZone,
		"to_zone":      key.ToZone,
		"service_type": string(key.ServiceType),
		"weight":       weight.String(),
		"level":        string(level),
	}
}
