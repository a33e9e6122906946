package ratecard

import (
	"fmt"
	"io"
	"strings"

	"github.com/garyjia/courier-billing/internal/domain/entity"
	"github.com/garyjia/courier-billing/internal/domain/rating"
	"github.com/xuri/excelize/v2"
)

// Write renders cfg as a rate card workbook. The CompanyRates sheet is
// written when withCompany is set.
func Write(w io.Writer, cfg rating.FranchiseConfig, withCompany bool) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetPolicy); err != nil {
		return fmt.Errorf("failed to name policy sheet: %w", err)
	}
	sw := sheetWriter{file: f}
	sw.rows(SheetPolicy, [][]interface{}{
		{keyFranchiseID, cfg.FranchiseID},
		{keyName, cfg.Name},
		{keyRoundOff, fmt.Sprintf("%t", cfg.Policy.RoundOff)},
	})

	sectors := [][]interface{}{toRow(sectorColumns)}
	for _, s := range cfg.Sectors {
		caps := make([]string, 0, len(s.Capabilities))
		for _, c := range s.CapabilityList() {
			caps = append(caps, string(c))
		}
		sectors = append(sectors, []interface{}{
			s.ID, s.Name, s.ZoneCode,
			strings.Join(s.PincodeList(), ","),
			strings.Join(caps, ","),
			s.PrioritySequence,
		})
	}
	sw.sheet(SheetSectors, sectors)
	sw.sheet(SheetRates, rateRows(cfg.Rates))
	if withCompany {
		sw.sheet(SheetCompanyRates, rateRows(cfg.CompanyRates))
	}

	discounts := [][]interface{}{toRow(discountColumns)}
	for _, d := range cfg.Discounts {
		discounts = append(discounts, []interface{}{
			d.ID, d.Name, string(d.RuleType), string(d.AppliesTo), string(d.DiscountType),
			d.Value.String(), d.MaxDiscount.String(), d.Priority, string(d.Status), d.Condition,
		})
	}
	sw.sheet(SheetDiscounts, discounts)

	if sw.err != nil {
		return sw.err
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func rateRows(rules []entity.RateRule) [][]interface{} {
	rows := [][]interface{}{toRow(rateColumns)}
	for _, r := range rules {
		rows = append(rows, []interface{}{
			r.ID, r.FromZone, r.ToZone, string(r.ServiceType),
			r.WeightFrom.String(), r.WeightTo.String(),
			r.Rate.String(), r.FuelSurcharge.String(), r.GSTPercentage.String(),
		})
	}
	return rows
}

func toRow(columns []string) []interface{} {
	row := make([]interface{}, len(columns))
	for i, c := range columns {
		row[i] = c
	}
	return row
}

// sheetWriter keeps the first error so callers can write several sheets and check once
type sheetWriter struct {
	file *excelize.File
	err  error
}

func (sw *sheetWriter) sheet(name string, rows [][]interface{}) {
	if sw.err != nil {
		return
	}
	if _, err := sw.file.NewSheet(name); err != nil {
		sw.err = fmt.Errorf("failed to create sheet %s: %w", name, err)
		return
	}
	sw.rows(name, rows)
}

func (sw *sheetWriter) rows(name string, rows [][]interface{}) {
	for i, row := range rows {
		if sw.err != nil {
			return
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			sw.err = err
			return
		}
		row := row
		if err := sw.file.SetSheetRow(name, cell, &row); err != nil {
			sw.err = fmt.Errorf("failed to write %s row %d: %w", name, i+1, err)
		}
	}
}
