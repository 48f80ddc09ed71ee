package model

import "math"

// PurchaseEstimate holds the results of a sheet purchasing calculation.
// It is an area-based approximation intended for quoting, not a nest: the
// scheduler gives the exact sheet count once a strategy has run.
type PurchaseEstimate struct {
	TotalPartArea     float64 `json:"total_part_area"`
	SheetArea         float64 `json:"sheet_area"`
	SheetsNeededExact float64 `json:"sheets_needed_exact"`
	SheetsNeededMin   int     `json:"sheets_needed_min"`
	SheetsWithWaste   int     `json:"sheets_with_waste"`
	WastePercent      float64 `json:"waste_percent"`
	EstimatedCost     float64 `json:"estimated_cost"`
	PricePerSheet     float64 `json:"price_per_sheet"`
	Kerf              float64 `json:"kerf"`
}

// CalculatePurchaseEstimate computes how many sheets to buy for a cut list.
// Each part is padded by the kerf on both axes, and wastePercent (e.g. 15
// for 15%) is applied on top of the exact area ratio.
func CalculatePurchaseEstimate(parts []Part, sheet SheetDefinition, kerf, wastePercent, pricePerSheet float64) PurchaseEstimate {
	var totalPartArea float64
	for _, p := range parts {
		totalPartArea += (p.Width + kerf) * (p.Height + kerf) * float64(p.Quantity)
	}

	sheetArea := sheet.Area()
	if sheetArea <= 0 {
		return PurchaseEstimate{
			TotalPartArea: totalPartArea,
			WastePercent:  wastePercent,
			Kerf:          kerf,
		}
	}

	exact := totalPartArea / sheetArea
	minSheets := int(math.Ceil(exact))

	withWaste := int(math.Ceil(exact * (1.0 + wastePercent/100.0)))
	if withWaste < minSheets {
		withWaste = minSheets
	}

	return PurchaseEstimate{
		TotalPartArea:     totalPartArea,
		SheetArea:         sheetArea,
		SheetsNeededExact: exact,
		SheetsNeededMin:   minSheets,
		SheetsWithWaste:   withWaste,
		WastePercent:      wastePercent,
		EstimatedCost:     float64(withWaste) * pricePerSheet,
		PricePerSheet:     pricePerSheet,
		Kerf:              kerf,
	}
}
