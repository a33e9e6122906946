package rating

import (
	"sort"

	"github.com/garyjia/courier-billing/internal/domain/condition"
	"github.com/garyjia/courier-billing/internal/domain/entity"
	"github.com/garyjia/courier-billing/internal/domain/money"
)

// CompiledRule is a discount rule with its condition parsed
type CompiledRule struct {
	Rule      entity.DiscountRule
	Condition condition.Node
}

// Compile parses the rule condition. A malformed condition is reported as
// ErrDiscountConditionInvalid naming the rule.
func Compile(rule entity.DiscountRule) (CompiledRule, error) {
	node, err := condition.Parse(rule.Condition)
	if err != nil {
		return CompiledRule{}, NewError(ErrDiscountConditionInvalid, "", StageConfig, map[string]any{
			"rule_id": rule.ID,
			"reason":  err.Error(),
		})
	}
	return CompiledRule{Rule: rule, Condition: node}, nil
}

// DiscountOutcome is the result of running the discount rules against a gross amount
type DiscountOutcome struct {
	Applied []entity.DiscountContribution
	Total   int64
	Payable int64
	Clamped bool
}

// Candidates filters rules to the active ones for ctx, ordered by priority then id
func Candidates(rules []CompiledRule, ctx entity.AppliesTo) []CompiledRule {
	out := make([]CompiledRule, 0, len(rules))
	for _, r := range rules {
		if r.Rule.IsCandidate(ctx) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rule.Precedes(&out[j].Rule)
	})
	return out
}

// ApplyDiscounts composes rules sequentially on the remaining payable amount.
// Rules must already be ordered (see Candidates). A PERCENT rule takes its
// percentage of what remains, a FLAT rule its fixed value; each is capped at
// MaxDiscount when that is nonzero. Once a contribution would take the
// remaining amount to zero or below it is clamped to the remainder and no
// further rules run.
func ApplyDiscounts(gross int64, rules []CompiledRule, facts condition.Facts) DiscountOutcome {
	out := DiscountOutcome{Payable: gross}

	for _, cr := range rules {
		if out.Payable <= 0 {
			break
		}
		if !cr.Condition.Eval(facts) {
			continue
		}

		r := cr.Rule
		var amount int64
		switch r.DiscountType {
		case entity.DiscountPercent:
			amount = money.Percent(out.Payable, r.Value)
		case entity.DiscountFlat:
			amount = money.ToMinor(r.Value)
		}

		capped := false
		if limit := money.ToMinor(r.MaxDiscount); limit > 0 && amount > limit {
			amount = limit
			capped = true
		}
		if amount <= 0 {
			continue
		}

		last := false
		if amount >= out.Payable {
			if amount > out.Payable {
				out.Clamped = true
			}
			amount = out.Payable
			last = true
		}

		out.Applied = append(out.Applied, entity.DiscountContribution{
			RuleID:       r.ID,
			RuleType:     r.RuleType,
			DiscountType: r.DiscountType,
			AmountMinor:  amount,
			Capped:       capped,
		})
		out.Total += amount
		out.Payable -= amount

		if last {
			break
		}
	}

	return out
}
