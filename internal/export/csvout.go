package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/piwi3910/sheetnest/internal/model"
)

// ExportCSV writes the placement list as a flat CSV cut list, one row per
// placed part, with unplaced parts appended at the end with an empty sheet
// column and their reason in the notes column.
func ExportCSV(path string, result model.NestingResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"sheet", "sheet_name", "label", "x", "y", "width", "height", "rotated", "notes"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("cannot write header: %w", err)
	}

	for _, stats := range result.Sheets {
		for _, p := range result.PlacementsOnSheet(stats.SheetIndex) {
			row := []string{
				strconv.Itoa(stats.SheetIndex + 1),
				stats.Definition.Label,
				p.Label,
				formatDim(p.X),
				formatDim(p.Y),
				formatDim(p.Width),
				formatDim(p.Height),
				strconv.FormatBool(p.Rotated()),
				"",
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("cannot write row: %w", err)
			}
		}
	}

	for _, up := range result.Unplaced {
		row := []string{
			"", "",
			up.Part.Label,
			"", "",
			formatDim(up.Part.Width),
			formatDim(up.Part.Height),
			"",
			string(up.Reason),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("cannot write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// formatDim renders a dimension with just enough precision for a cut list.
func formatDim(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
