package model

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// Offcut represents a usable rectangular remnant left over after cutting.
type Offcut struct {
	ID         string  `json:"id"`
	SheetLabel string  `json:"sheet_label"`
	SheetIndex int     `json:"sheet_index"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

// Area returns the offcut area in square units.
func (o Offcut) Area() float64 {
	return o.Width * o.Height
}

// ToSheetDefinition converts an offcut into stock for a future job.
func (o Offcut) ToSheetDefinition() SheetDefinition {
	return NewSheetDefinition("Offcut "+o.SheetLabel, o.Width, o.Height, 1)
}

// MinOffcutDimension is the minimum width or height for a remnant to be
// considered usable. Smaller remnants are waste.
const MinOffcutDimension = 50.0

// MinOffcutArea is the minimum area for a remnant to be considered usable.
const MinOffcutArea = 10000.0

// DetectOffcuts identifies remnant strips on one consumed sheet that are
// large enough to reuse. It looks for the full-height strip to the right of
// every placement and the strip below them, which is where guillotine-style
// layouts leave their waste.
func DetectOffcuts(result NestingResult, sheetIndex int, kerf float64) []Offcut {
	var stats *SheetStats
	for i := range result.Sheets {
		if result.Sheets[i].SheetIndex == sheetIndex {
			stats = &result.Sheets[i]
			break
		}
	}
	if stats == nil {
		return nil
	}

	sheetW := stats.Definition.Width
	sheetH := stats.Definition.Height
	placements := result.PlacementsOnSheet(sheetIndex)

	if len(placements) == 0 {
		return []Offcut{{
			ID:         uuid.New().String()[:8],
			SheetLabel: stats.Definition.Label,
			SheetIndex: sheetIndex,
			Width:      sheetW,
			Height:     sheetH,
		}}
	}

	var maxRight, maxBottom float64
	for _, p := range placements {
		right := p.Right() + kerf
		bottom := p.Bottom() + kerf
		if right > maxRight {
			maxRight = right
		}
		if bottom > maxBottom {
			maxBottom = bottom
		}
	}

	var offcuts []Offcut

	// Right strip: full sheet height beyond the rightmost placement.
	rightW := sheetW - maxRight
	if rightW >= MinOffcutDimension && sheetH >= MinOffcutDimension && rightW*sheetH >= MinOffcutArea {
		offcuts = append(offcuts, Offcut{
			ID:         uuid.New().String()[:8],
			SheetLabel: stats.Definition.Label,
			SheetIndex: sheetIndex,
			X:          maxRight,
			Width:      rightW,
			Height:     sheetH,
		})
	}

	// Bottom strip, clipped at the right strip to avoid overlap.
	bottomH := sheetH - maxBottom
	bottomW := math.Min(maxRight, sheetW)
	if bottomH >= MinOffcutDimension && bottomW >= MinOffcutDimension && bottomH*bottomW >= MinOffcutArea {
		offcuts = append(offcuts, Offcut{
			ID:         uuid.New().String()[:8],
			SheetLabel: stats.Definition.Label,
			SheetIndex: sheetIndex,
			Y:          maxBottom,
			Width:      bottomW,
			Height:     bottomH,
		})
	}

	sort.Slice(offcuts, func(i, j int) bool {
		return offcuts[i].Area() > offcuts[j].Area()
	})
	return offcuts
}

// DetectAllOffcuts finds offcuts across every consumed sheet in a result.
func DetectAllOffcuts(result NestingResult, kerf float64) []Offcut {
	var all []Offcut
	for _, s := range result.Sheets {
		all = append(all, DetectOffcuts(result, s.SheetIndex, kerf)...)
	}
	return all
}

// TotalOffcutArea returns the combined area of the given offcuts.
func TotalOffcutArea(offcuts []Offcut) float64 {
	var total float64
	for _, o := range offcuts {
		total += o.Area()
	}
	return total
}
