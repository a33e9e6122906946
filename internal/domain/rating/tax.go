package rating

import (
	"github.com/garyjia/courier-billing/internal/domain/money"
	"github.com/shopspring/decimal"
)

// Charges is the output of the surcharge and tax step, in minor units
type Charges struct {
	Surcharged int64
	Surcharge  int64
	Rounding   int64
	Gross      int64
	Tax        int64
}

// ComputeCharges applies the fuel surcharge to base, optionally rounds the
// subtotal to a whole unit, then applies GST to the result. Surcharge always
// comes before tax; each multiplication rounds half away from zero to the
// minor unit.
func ComputeCharges(base, fuelPct, gstPct decimal.Decimal, roundOff bool) Charges {
	surcharged := money.ApplyMarkup(base, fuelPct)

	gross := surcharged
	if roundOff {
		gross = money.RoundToUnit(surcharged)
	}

	return Charges{
		Surcharged: surcharged,
		Surcharge:  surcharged - money.ToMinor(base),
		Rounding:   gross - surcharged,
		Gross:      gross,
		Tax:        money.Percent(gross, gstPct),
	}
}
