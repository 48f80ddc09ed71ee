package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/sheetnest/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelInfo is the payload behind one part sticker. The same struct is
// JSON-encoded into the label's QR code, so a scan recovers everything the
// printed text shows.
type LabelInfo struct {
	PartLabel  string  `json:"label"`
	Width      float64 `json:"width_mm"`
	Height     float64 `json:"height_mm"`
	SheetIndex int     `json:"sheet"`
	SheetName  string  `json:"sheet_name"`
	Rotated    bool    `json:"rotated"`
	X          float64 `json:"x_mm"`
	Y          float64 `json:"y_mm"`
}

// labelGrid positions label cells on a page. Cells tile from the page
// margins with no gutters, per the Avery layout.
type labelGrid struct {
	marginLeft float64
	marginTop  float64
	cellW      float64
	cellH      float64
	cols       int
	rows       int
}

// avery5160 is the 3x10 address-label grid on US Letter, in mm.
var avery5160 = labelGrid{
	marginLeft: 4.8,
	marginTop:  12.7,
	cellW:      66.7,
	cellH:      25.4,
	cols:       3,
	rows:       10,
}

func (g labelGrid) perPage() int {
	return g.cols * g.rows
}

// cellOrigin returns the top-left corner of the i-th label on its page.
func (g labelGrid) cellOrigin(i int) (x, y float64) {
	pos := i % g.perPage()
	x = g.marginLeft + float64(pos%g.cols)*g.cellW
	y = g.marginTop + float64(pos/g.cols)*g.cellH
	return x, y
}

const (
	labelQRSize  = 20.0 // mm
	labelPadding = 2.0  // mm
)

// ExportLabels writes one QR-coded sticker per placed part onto Avery 5160
// label sheets. Stickers carry the part name, its source dimensions, and
// where on which sheet the part landed.
func ExportLabels(path string, result model.NestingResult) error {
	labels := CollectLabelInfos(result)
	if len(labels) == 0 {
		return fmt.Errorf("no parts placed to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, info := range labels {
		if i%avery5160.perPage() == 0 {
			pdf.AddPage()
		}
		x, y := avery5160.cellOrigin(i)
		if err := drawLabel(pdf, x, y, info); err != nil {
			return fmt.Errorf("label for %q: %w", info.PartLabel, err)
		}
	}
	return pdf.OutputFileAndClose(path)
}

// drawLabel renders one sticker: a faint cell outline, the QR code on the
// right, text on the left.
func drawLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, avery5160.cellW, avery5160.cellH, "D")

	if err := drawQR(pdf, x, y, info); err != nil {
		return err
	}

	textX := x + labelPadding
	textW := avery5160.cellW - labelQRSize - 3*labelPadding

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, truncateToWidth(pdf, info.PartLabel, textW), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%.0f x %.0f mm", info.Width, info.Height), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, fmt.Sprintf("Sheet %d @ (%.0f, %.0f)", info.SheetIndex, info.X, info.Y),
		"", 1, "L", false, 0, "")

	if info.Rotated {
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.CellFormat(textW, 3, "Rotated 90\xb0", "", 0, "L", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
	return nil
}

// drawQR encodes the label payload as JSON into a QR image anchored to the
// sticker's right edge.
func drawQR(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("render QR code: %w", err)
	}

	// Image names must be unique per registered image; sheet and position
	// disambiguate duplicate part labels.
	name := fmt.Sprintf("qr_%s_%d_%d", info.PartLabel, info.SheetIndex, int(info.X*1000+info.Y))
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	pdf.ImageOptions(name,
		x+avery5160.cellW-labelQRSize-labelPadding,
		y+(avery5160.cellH-labelQRSize)/2,
		labelQRSize, labelQRSize, false, opts, 0, "")
	return nil
}

// truncateToWidth shortens s with an ellipsis until it fits the given width
// in the current font.
func truncateToWidth(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}

// CollectLabelInfos flattens a result into per-placement label payloads.
// Dimensions are the part's source width and height, not the rotated
// footprint, so the sticker matches the cut list. Sheet numbers are
// 1-based for the operator.
func CollectLabelInfos(result model.NestingResult) []LabelInfo {
	var labels []LabelInfo
	for _, stats := range result.Sheets {
		for _, p := range result.PlacementsOnSheet(stats.SheetIndex) {
			labels = append(labels, LabelInfo{
				PartLabel:  p.Label,
				Width:      p.SourceWidth(),
				Height:     p.SourceHeight(),
				SheetIndex: stats.SheetIndex + 1,
				SheetName:  stats.Definition.Label,
				Rotated:    p.Rotated(),
				X:          p.X,
				Y:          p.Y,
			})
		}
	}
	return labels
}
