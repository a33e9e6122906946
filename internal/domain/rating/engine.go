package rating

import (
	"strings"

	"github.com/garyjia/courier-billing/internal/domain/condition"
	"github.com/garyjia/courier-billing/internal/domain/entity"
	"github.com/garyjia/courier-billing/pkg/utils"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// weightScale is the number of fraction digits a weight is rated at
const weightScale = 2

// Rate runs zone resolution, rate resolution, surcharge and tax, and the
// shipment discount rules. It reads only the snapshot and the shipment and
// may be called from any number of goroutines. The weight is rounded half
// away from zero to two fraction digits before any lookup.
func (s *Snapshot) Rate(sh entity.Shipment) (*entity.RatingResult, error) {
	sh.Weight = sh.Weight.Round(weightScale)
	if err := validateShipment(sh); err != nil {
		return nil, err.forShipment(sh.ID)
	}

	dest, zerr := ResolveZone(s.sectors, SideDestination, sh.DestinationPincode, sh.ServiceType)
	if zerr != nil {
		return nil, zerr.forShipment(sh.ID)
	}
	origin, zerr := ResolveZone(s.sectors, SideOrigin, sh.OriginPincode, sh.ServiceType)
	if zerr != nil {
		return nil, zerr.forShipment(sh.ID)
	}

	key := entity.RateKey{FromZone: origin.ZoneCode, ToZone: dest.ZoneCode, ServiceType: sh.ServiceType}
	match, rerr := ResolveRate(s.rates, s.companyRates, key, sh.Weight)
	if rerr != nil {
		rerr.Detail["origin_sector_id"] = origin.ID
		rerr.Detail["destination_sector_id"] = dest.ID
		return nil, rerr.forShipment(sh.ID)
	}

	rule := match.Rule
	charges := ComputeCharges(rule.Rate, rule.FuelSurcharge, rule.GSTPercentage, s.policy.RoundOff)

	facts := condition.Facts{
		OriginZone:      origin.ZoneCode,
		DestinationZone: dest.ZoneCode,
		Weight:          sh.Weight,
		ServiceType:     string(sh.ServiceType),
		CustomerID:      sh.CustomerID,
		ShipmentCount:   sh.ShipmentCount,
		SLA:             sh.SLA,
	}
	disc := s.Discount(entity.AppliesToShipment, charges.Gross, facts)

	applied := disc.Applied
	if applied == nil {
		applied = []entity.DiscountContribution{}
	}

	return &entity.RatingResult{
		ShipmentID:          sh.ID,
		FranchiseID:         s.franchiseID,
		SnapshotVersion:     s.version,
		ServiceType:         sh.ServiceType,
		Weight:              sh.Weight,
		OriginSectorID:      origin.ID,
		DestinationSectorID: dest.ID,
		FromZone:            origin.ZoneCode,
		ToZone:              dest.ZoneCode,
		RateRuleID:          rule.ID,
		RateLevel:           match.Level,
		Fallback:            match.Fallback,
		BaseRate:            rule.Rate,
		FuelSurcharge:       rule.FuelSurcharge,
		GSTPercentage:       rule.GSTPercentage,
		SurchargedMinor:     charges.Surcharged,
		SurchargeMinor:      charges.Surcharge,
		RoundingMinor:       charges.Rounding,
		GrossMinor:          charges.Gross,
		TaxMinor:            charges.Tax,
		Discounts:           applied,
		DiscountMinor:       disc.Total,
		DiscountClamped:     disc.Clamped,
		PayableMinor:        disc.Payable,
		AmountMinor:         disc.Payable + charges.Tax,
	}, nil
}

// Discount runs the active rules for billing context ctx against gross.
// Shipment rating uses SHIPMENT; wallet recharges use RECHARGE.
func (s *Snapshot) Discount(ctx entity.AppliesTo, gross int64, facts condition.Facts) DiscountOutcome {
	facts.OriginZone = strings.ToUpper(facts.OriginZone)
	facts.DestinationZone = strings.ToUpper(facts.DestinationZone)
	facts.ServiceType = strings.ToUpper(facts.ServiceType)
	return ApplyDiscounts(gross, Candidates(s.discounts, ctx), facts)
}

func validateShipment(sh entity.Shipment) *Error {
	detail := map[string]any{}
	switch {
	case strings.TrimSpace(sh.ID) == "":
		detail["reason"] = "missing shipment id"
	case utils.ValidatePincode(sh.OriginPincode) != nil:
		detail["reason"] = "invalid origin pincode"
		detail["pincode"] = sh.OriginPincode
	case utils.ValidatePincode(sh.DestinationPincode) != nil:
		detail["reason"] = "invalid destination pincode"
		detail["pincode"] = sh.DestinationPincode
	case !sh.Weight.IsPositive():
		detail["reason"] = "weight must be positive"
		detail["weight"] = sh.Weight.String()
	case !sh.ServiceType.IsValid():
		detail["reason"] = "unknown service type"
		detail["service_type"] = string(sh.ServiceType)
	case sh.ShipmentCount < 0:
		detail["reason"] = "negative shipment count"
	default:
		return nil
	}
	return NewError(ErrInvalidShipment, "", StageInput, detail)
}
