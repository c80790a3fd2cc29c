package export

import (
	"fmt"

	"github.com/piwi3910/teardrop/internal/engine"
	"github.com/piwi3910/teardrop/internal/geometry"
	"github.com/xuri/excelize/v2"
)

const (
	teardropSheet = "Teardrops"
	skippedSheet  = "Skipped"
)

// ExportXLSX writes one row per planned or placed teardrop and a sheet of
// skip counts.
func ExportXLSX(path string, report engine.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", teardropSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(skippedSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	rows := [][]interface{}{{"ID", "Net", "Layer", "Points", "Area"}}
	for _, z := range report.Shapes {
		rows = append(rows, []interface{}{z.ID, z.Net, string(z.Layer), len(z.Outline), geometry.Area(z.Outline)})
	}
	if err := writeRows(f, teardropSheet, rows, headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(teardropSheet, "A", "C", 14); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	rows = [][]interface{}{{"Reason", "Count"}}
	for _, reason := range report.SkipReasons() {
		rows = append(rows, []interface{}{string(reason), report.Skipped[reason]})
	}
	if report.Ambiguous > 0 {
		rows = append(rows, []interface{}{"ambiguous-chain", report.Ambiguous})
	}
	if err := writeRows(f, skippedSheet, rows, headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(skippedSheet, "A", "A", 20); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// writeRows writes rows starting at A1 and styles the first one as a header.
func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, headerStyle)
}
