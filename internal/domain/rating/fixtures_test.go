package rating

import (
	"github.com/garyjia/courier-billing/internal/domain/entity"
	"github.com/shopspring/decimal"
)

const testFranchise int64 = 1

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sector(id int64, zone string, priority int, pincodes []string, caps ...entity.ServiceType) entity.Sector {
	return entity.NewSector(id, testFranchise, zone+" sector", zone, pincodes, caps, priority)
}

func rateRule(id, franchise int64, from, to string, svc entity.ServiceType, wFrom, wTo, rate, fuel, gst string) entity.RateRule {
	return entity.RateRule{
		ID:            id,
		FranchiseID:   franchise,
		FromZone:      from,
		ToZone:        to,
		ServiceType:   svc,
		WeightFrom:    dec(wFrom),
		WeightTo:      dec(wTo),
		Rate:          dec(rate),
		FuelSurcharge: dec(fuel),
		GSTPercentage: dec(gst),
	}
}

func discountRule(id int64, priority int, dt entity.DiscountType, value, max string) entity.DiscountRule {
	return entity.DiscountRule{
		ID:           id,
		FranchiseID:  testFranchise,
		Name:         "rule",
		RuleType:     entity.RuleTypePromo,
		AppliesTo:    entity.AppliesToShipment,
		DiscountType: dt,
		Value:        dec(value),
		MaxDiscount:  dec(max),
		Priority:     priority,
		Status:       entity.RuleStatusActive,
	}
}

// baseConfig prices METRO -> NORTH express and falls back to the company
// table for METRO -> EAST documents.
func baseConfig() FranchiseConfig {
	return FranchiseConfig{
		FranchiseID: testFranchise,
		Name:        "Mumbai Central",
		Sectors: []entity.Sector{
			sector(10, "METRO", 1, []string{"400001", "400002"}, entity.ServiceExpress, entity.ServiceDocument),
			sector(11, "NORTH", 1, []string{"110001"}, entity.ServiceExpress),
			sector(13, "EAST", 1, []string{"700001"}, entity.ServiceDocument),
			sector(20, "WEST", 2, []string{"400001"}, entity.ServiceExpress),
		},
		Rates: []entity.RateRule{
			rateRule(100, testFranchise, "METRO", "NORTH", entity.ServiceExpress, "0", "5", "123.456", "5", "18"),
			rateRule(101, testFranchise, "METRO", "NORTH", entity.ServiceExpress, "5", "10", "200", "0", "18"),
		},
		CompanyRates: []entity.RateRule{
			rateRule(900, entity.CompanyFranchiseID, "METRO", "EAST", entity.ServiceDocument, "0", "10", "80", "10", "18"),
		},
	}
}

func expressShipment(id, weight string) entity.Shipment {
	return entity.Shipment{
		ID:                 id,
		OriginPincode:      "400001",
		DestinationPincode: "110001",
		Weight:             dec(weight),
		ServiceType:        entity.ServiceExpress,
		CustomerID:         "CUST-1",
	}
}

func mustBuild(cfg FranchiseConfig) *Snapshot {
	s, err := Build(cfg)
	if err != nil {
		panic(err)
	}
	return s
}
