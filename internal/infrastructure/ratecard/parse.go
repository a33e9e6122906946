package ratecard

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/garyjia/courier-billing/internal/domain/entity"
	"github.com/garyjia/courier-billing/internal/domain/money"
	"github.com/garyjia/courier-billing/internal/domain/rating"
	"github.com/garyjia/courier-billing/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Card is a parsed workbook
type Card struct {
	Config rating.FranchiseConfig

	// HasCompanyRates reports whether the workbook carried a CompanyRates sheet
	HasCompanyRates bool
}

// Parse reads a rate card workbook. Cell problems are collected and
// returned together as one ErrInvalidWorkbook error.
func Parse(r io.Reader) (*Card, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	p := &parser{file: f}
	card := &Card{}
	card.Config.FranchiseID, card.Config.Name, card.Config.Policy = p.policy()
	fid := card.Config.FranchiseID

	card.Config.Sectors = p.sectors(fid)
	card.Config.Rates = p.rates(SheetRates, fid)
	if p.hasSheet(SheetCompanyRates) {
		card.HasCompanyRates = true
		card.Config.CompanyRates = p.rates(SheetCompanyRates, entity.CompanyFranchiseID)
	}
	card.Config.Discounts = p.discounts(fid)

	if len(p.problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWorkbook, strings.Join(p.problems, "; "))
	}
	return card, nil
}

type parser struct {
	file     *excelize.File
	problems []string
}

func (p *parser) addf(format string, args ...any) {
	p.problems = append(p.problems, fmt.Sprintf(format, args...))
}

func (p *parser) hasSheet(name string) bool {
	idx, err := p.file.GetSheetIndex(name)
	return err == nil && idx >= 0
}

// table returns the data rows of a sheet and a lookup from column name to index
func (p *parser) table(sheet string, columns []string) ([][]string, map[string]int, bool) {
	if !p.hasSheet(sheet) {
		p.addf("missing sheet %s", sheet)
		return nil, nil, false
	}
	rows, err := p.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		p.addf("%s: %v", sheet, err)
		return nil, nil, false
	}
	if len(rows) == 0 {
		p.addf("%s: missing header row", sheet)
		return nil, nil, false
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	ok := true
	for _, c := range columns {
		if _, found := index[c]; !found {
			p.addf("%s: missing column %s", sheet, c)
			ok = false
		}
	}
	return rows[1:], index, ok
}

func (p *parser) policy() (int64, string, rating.Policy) {
	var policy rating.Policy
	if !p.hasSheet(SheetPolicy) {
		p.addf("missing sheet %s", SheetPolicy)
		return 0, "", policy
	}
	rows, err := p.file.GetRows(SheetPolicy, excelize.Options{RawCellValue: true})
	if err != nil {
		p.addf("%s: %v", SheetPolicy, err)
		return 0, "", policy
	}

	var (
		franchiseID int64
		name        string
	)
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(row[0]))
		val := strings.TrimSpace(row[1])
		switch key {
		case keyFranchiseID:
			id, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				p.addf("%s row %d: invalid franchise_id %q", SheetPolicy, i+1, val)
			}
			franchiseID = id
		case keyName:
			name = val
		case keyRoundOff:
			b, ok := parseBool(val)
			if !ok {
				p.addf("%s row %d: invalid round_off %q", SheetPolicy, i+1, val)
			}
			policy.RoundOff = b
		}
	}
	if franchiseID == 0 {
		p.addf("%s: franchise_id is required", SheetPolicy)
	}
	return franchiseID, name, policy
}

func (p *parser) sectors(franchiseID int64) []entity.Sector {
	rows, idx, ok := p.table(SheetSectors, sectorColumns)
	if !ok {
		return nil
	}

	var out []entity.Sector
	for i, row := range rows {
		if blank(row) {
			continue
		}
		c := cells{sheet: SheetSectors, line: i + 2, row: row, index: idx, p: p}
		var caps []entity.ServiceType
		for _, s := range utils.SplitList(c.str("capabilities")) {
			caps = append(caps, entity.ServiceType(strings.ToUpper(s)))
		}
		out = append(out, entity.NewSector(
			c.integer("id"),
			franchiseID,
			c.str("name"),
			c.str("zone_code"),
			utils.SplitList(c.str("pincodes")),
			caps,
			int(c.integer("priority")),
		))
	}
	return out
}

func (p *parser) rates(sheet string, franchiseID int64) []entity.RateRule {
	rows, idx, ok := p.table(sheet, rateColumns)
	if !ok {
		return nil
	}

	var out []entity.RateRule
	for i, row := range rows {
		if blank(row) {
			continue
		}
		c := cells{sheet: sheet, line: i + 2, row: row, index: idx, p: p}
		out = append(out, entity.RateRule{
			ID:            c.integer("id"),
			FranchiseID:   franchiseID,
			FromZone:      strings.ToUpper(c.str("from_zone")),
			ToZone:        strings.ToUpper(c.str("to_zone")),
			ServiceType:   entity.ServiceType(strings.ToUpper(c.str("service_type"))),
			WeightFrom:    c.amount("weight_from"),
			WeightTo:      c.amount("weight_to"),
			Rate:          c.amount("rate"),
			FuelSurcharge: c.amount("fuel_surcharge"),
			GSTPercentage: c.amount("gst_percentage"),
		})
	}
	return out
}

func (p *parser) discounts(franchiseID int64) []entity.DiscountRule {
	rows, idx, ok := p.table(SheetDiscounts, discountColumns)
	if !ok {
		return nil
	}

	var out []entity.DiscountRule
	for i, row := range rows {
		if blank(row) {
			continue
		}
		c := cells{sheet: SheetDiscounts, line: i + 2, row: row, index: idx, p: p}
		out = append(out, entity.DiscountRule{
			ID:           c.integer("id"),
			FranchiseID:  franchiseID,
			Name:         c.str("name"),
			RuleType:     entity.RuleType(strings.ToUpper(c.str("rule_type"))),
			AppliesTo:    entity.AppliesTo(strings.ToUpper(c.str("applies_to"))),
			DiscountType: entity.DiscountType(strings.ToUpper(c.str("discount_type"))),
			Value:        c.amount("value"),
			MaxDiscount:  c.amount("max_discount"),
			Priority:     int(c.integer("priority")),
			Status:       entity.RuleStatus(strings.ToUpper(c.str("status"))),
			Condition:    c.str("condition"),
		})
	}
	return out
}

// cells reads typed values from one data row, recording problems on the parser
type cells struct {
	sheet string
	line  int
	row   []string
	index map[string]int
	p     *parser
}

func (c cells) str(col string) string {
	i, ok := c.index[col]
	if !ok || i >= len(c.row) {
		return ""
	}
	return strings.TrimSpace(c.row[i])
}

func (c cells) integer(col string) int64 {
	raw := c.str(col)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.p.addf("%s row %d: invalid %s %q", c.sheet, c.line, col, raw)
	}
	return v
}

func (c cells) amount(col string) decimal.Decimal {
	d, err := money.Parse(c.str(col))
	if err != nil {
		c.p.addf("%s row %d: %s: %v", c.sheet, c.line, col, err)
	}
	return d
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "no", "n":
		return false, true
	case "1", "true", "yes", "y":
		return true, true
	}
	return false, false
}
