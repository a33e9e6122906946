// Package ratecard reads and writes franchise rate cards as .xlsx workbooks.
//
// A workbook carries one franchise: a Policy sheet of key/value rows
// (franchise_id, name, round_off) and the Sectors, Rates, CompanyRates and
// Discounts sheets, each with a header row naming its columns. CompanyRates
// is optional; when absent the company table is left untouched on import.
package ratecard

import "errors"

// Sheet names
const (
	SheetPolicy       = "Policy"
	SheetSectors      = "Sectors"
	SheetRates        = "Rates"
	SheetCompanyRates = "CompanyRates"
	SheetDiscounts    = "Discounts"
)

// Policy sheet keys
const (
	keyFranchiseID = "franchise_id"
	keyName        = "name"
	keyRoundOff    = "round_off"
)

// ErrInvalidWorkbook is returned when a workbook cannot be read as a rate card
var ErrInvalidWorkbook = errors.New("invalid rate card workbook")

var (
	sectorColumns   = []string{"id", "name", "zone_code", "pincodes", "capabilities", "priority"}
	rateColumns     = []string{"id", "from_zone", "to_zone", "service_type", "weight_from", "weight_to", "rate", "fuel_surcharge", "gst_percentage"}
	discountColumns = []string{"id", "name", "rule_type", "applies_to", "discount_type", "value", "max_discount", "priority", "status", "condition"}
)
