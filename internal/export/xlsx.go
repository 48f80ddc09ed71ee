package export

import (
	"fmt"

	"github.com/piwi3910/sheetnest/internal/cutplan"
	"github.com/piwi3910/sheetnest/internal/model"
	"github.com/xuri/excelize/v2"
)

// Worksheet names in the exported workbook.
const (
	wsSummary    = "Summary"
	wsPlacements = "Placements"
	wsCutList    = "Cut List"
)

// ExportXLSX writes the nesting result as an Excel workbook with three
// worksheets: a per-sheet summary, the full placement list, and the derived
// cut list. The workbook is self-contained for handing to an operator who
// never sees the application.
func ExportXLSX(path string, result model.NestingResult, settings model.Settings) error {
	if result.SheetCount() == 0 {
		return fmt.Errorf("no sheets to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDDDDD"}},
	})
	if err != nil {
		return fmt.Errorf("cannot create style: %w", err)
	}

	if err := writeSummarySheet(f, result, headerStyle); err != nil {
		return err
	}
	if err := writePlacementsSheet(f, result, headerStyle); err != nil {
		return err
	}
	if err := writeCutListSheet(f, result, settings, headerStyle); err != nil {
		return err
	}

	// Drop the default sheet created by NewFile.
	f.DeleteSheet("Sheet1")

	return f.SaveAs(path)
}

func writeSummarySheet(f *excelize.File, result model.NestingResult, headerStyle int) error {
	if _, err := f.NewSheet(wsSummary); err != nil {
		return fmt.Errorf("cannot create sheet: %w", err)
	}

	headers := []string{"Sheet", "Stock", "Width", "Height", "Parts", "Used Area", "Utilization %"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(wsSummary, cell, h)
		f.SetCellStyle(wsSummary, cell, cell, headerStyle)
	}

	for row, stats := range result.Sheets {
		values := []interface{}{
			stats.SheetIndex + 1,
			stats.Definition.Label,
			stats.Definition.Width,
			stats.Definition.Height,
			stats.PartCount,
			stats.UsedArea,
			stats.Utilization * 100,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(wsSummary, cell, v)
		}
	}

	// Totals row
	totalRow := len(result.Sheets) + 3
	labelCell, _ := excelize.CoordinatesToCellName(1, totalRow)
	f.SetCellValue(wsSummary, labelCell, "Overall")
	f.SetCellStyle(wsSummary, labelCell, labelCell, headerStyle)
	utilCell, _ := excelize.CoordinatesToCellName(7, totalRow)
	f.SetCellValue(wsSummary, utilCell, result.TotalUtilization()*100)

	f.SetColWidth(wsSummary, "A", "G", 14)
	return nil
}

func writePlacementsSheet(f *excelize.File, result model.NestingResult, headerStyle int) error {
	if _, err := f.NewSheet(wsPlacements); err != nil {
		return fmt.Errorf("cannot create sheet: %w", err)
	}

	headers := []string{"Sheet", "Label", "X", "Y", "Width", "Height", "Rotated"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(wsPlacements, cell, h)
		f.SetCellStyle(wsPlacements, cell, cell, headerStyle)
	}

	row := 2
	for _, stats := range result.Sheets {
		for _, p := range result.PlacementsOnSheet(stats.SheetIndex) {
			values := []interface{}{
				stats.SheetIndex + 1, p.Label, p.X, p.Y, p.Width, p.Height, p.Rotated(),
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				f.SetCellValue(wsPlacements, cell, v)
			}
			row++
		}
	}

	// Unplaced parts go below a separating label.
	if len(result.Unplaced) > 0 {
		row++
		cell, _ := excelize.CoordinatesToCellName(1, row)
		f.SetCellValue(wsPlacements, cell, "Unplaced")
		f.SetCellStyle(wsPlacements, cell, cell, headerStyle)
		row++
		for _, up := range result.Unplaced {
			values := []interface{}{
				"", up.Part.Label, "", "", up.Part.Width, up.Part.Height, string(up.Reason),
			}
			for col, v := range values {
				c, _ := excelize.CoordinatesToCellName(col+1, row)
				f.SetCellValue(wsPlacements, c, v)
			}
			row++
		}
	}

	f.SetColWidth(wsPlacements, "A", "G", 12)
	return nil
}

func writeCutListSheet(f *excelize.File, result model.NestingResult, settings model.Settings, headerStyle int) error {
	if _, err := f.NewSheet(wsCutList); err != nil {
		return fmt.Errorf("cannot create sheet: %w", err)
	}

	headers := []string{"Sheet", "Order", "Cut", "Position", "Length"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(wsCutList, cell, h)
		f.SetCellStyle(wsCutList, cell, cell, headerStyle)
	}

	row := 2
	for _, plan := range cutplan.DeriveAll(result, settings) {
		for i, l := range plan.Lines {
			values := []interface{}{
				plan.SheetIndex + 1, i + 1, string(l.Orientation), l.Position, l.Length,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				f.SetCellValue(wsCutList, cell, v)
			}
			row++
		}
	}

	f.SetColWidth(wsCutList, "A", "E", 12)
	return nil
}
