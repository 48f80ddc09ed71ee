package export

import (
	"fmt"

	"github.com/piwi3910/sheetnest/internal/cutplan"
	"github.com/piwi3910/sheetnest/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/table"
)

// DXF layer names. Sheet outlines, part rectangles, and cut lines land on
// separate layers so CAM software can filter them independently.
const (
	layerSheet = "SHEET"
	layerParts = "PARTS"
	layerCuts  = "CUTS"
)

// ExportDXF writes one sheet's layout as 2D DXF geometry: the sheet outline,
// every placed part as a closed rectangle, and the derived cut lines. All
// coordinates are in the job's units with the sheet origin at (0, 0).
func ExportDXF(path string, placements []model.PlacedPart, sheet model.SheetDefinition, plan cutplan.CutPlan) error {
	if len(placements) == 0 {
		return fmt.Errorf("no placements to export")
	}

	d := dxf.NewDrawing()

	d.AddLayer(layerSheet, dxf.DefaultColor, dxf.DefaultLineType, true)
	drawRect(d, 0, 0, sheet.Width, sheet.Height)

	d.AddLayer(layerParts, color.Green, table.LT_CONTINUOUS, true)
	for _, p := range placements {
		drawRect(d, p.X, p.Y, p.Width, p.Height)
	}

	d.AddLayer(layerCuts, color.Red, table.LT_CONTINUOUS, true)
	for _, l := range plan.Lines {
		if l.Orientation == cutplan.Rip {
			d.Line(l.Position, 0, 0, l.Position, sheet.Height, 0)
		} else {
			d.Line(0, l.Position, 0, sheet.Width, l.Position, 0)
		}
	}

	return d.SaveAs(path)
}

// ExportDXFAll writes one DXF file per consumed sheet using the pattern
// "<base>_sheet<N>.dxf" and returns the written paths.
func ExportDXFAll(basePath string, result model.NestingResult, settings model.Settings) ([]string, error) {
	if result.SheetCount() == 0 {
		return nil, fmt.Errorf("no sheets to export")
	}

	plans := cutplan.DeriveAll(result, settings)

	var paths []string
	for i, stats := range result.Sheets {
		path := fmt.Sprintf("%s_sheet%d.dxf", basePath, stats.SheetIndex+1)
		placements := result.PlacementsOnSheet(stats.SheetIndex)
		if err := ExportDXF(path, placements, stats.Definition, plans[i]); err != nil {
			return paths, fmt.Errorf("sheet %d: %w", stats.SheetIndex+1, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// drawRect draws an axis-aligned rectangle as four line entities on the
// drawing's current layer.
func drawRect(d *drawing.Drawing, x, y, w, h float64) {
	d.Line(x, y, 0, x+w, y, 0)
	d.Line(x+w, y, 0, x+w, y+h, 0)
	d.Line(x+w, y+h, 0, x, y+h, 0)
	d.Line(x, y+h, 0, x, y, 0)
}
