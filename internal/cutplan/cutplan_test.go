package cutplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/sheetnest/internal/model"
)

func planSettings() model.Settings {
	s := model.DefaultSettings()
	s.CutLineTolerance = 4
	return s
}

func TestDerive_EmptySheet(t *testing.T) {
	sheet := model.NewSheetDefinition("Ply", 1000, 500, 1)

	plan := Derive(nil, 0, sheet, planSettings())

	assert.Empty(t, plan.Lines)
	assert.Zero(t, plan.TotalLength)
}

func TestDerive_MergesNearbyEdges(t *testing.T) {
	// Two parts whose facing edges are 3 apart (within the 4 tolerance):
	// the right edge of A at 300 and the left edge of B at 303 must collapse
	// into a single rip between them.
	sheet := model.NewSheetDefinition("Ply", 1000, 500, 1)
	placements := []model.PlacedPart{
		{PartID: "a", Label: "A", X: 0, Y: 0, Width: 300, Height: 400},
		{PartID: "b", Label: "B", X: 303, Y: 0, Width: 300, Height: 400},
	}

	plan := Derive(placements, 0, sheet, planSettings())

	require.Equal(t, 3, plan.RipCount(), "edges at 0, 300/303 merged, and 603")
	require.Equal(t, 2, plan.CrosscutCount(), "edges at 0 and 400")

	// Rips come first, ascending; the merged line sits at the cluster mean.
	assert.Equal(t, Rip, plan.Lines[0].Orientation)
	assert.InDelta(t, 0.0, plan.Lines[0].Position, 1e-9)
	assert.InDelta(t, 301.5, plan.Lines[1].Position, 1e-9)
	assert.InDelta(t, 603.0, plan.Lines[2].Position, 1e-9)

	assert.Equal(t, Crosscut, plan.Lines[3].Orientation)
	assert.InDelta(t, 0.0, plan.Lines[3].Position, 1e-9)
	assert.InDelta(t, 400.0, plan.Lines[4].Position, 1e-9)
}

func TestDerive_LineLengthsSpanTheSheet(t *testing.T) {
	sheet := model.NewSheetDefinition("Ply", 1000, 500, 1)
	placements := []model.PlacedPart{
		{PartID: "a", Label: "A", X: 0, Y: 0, Width: 300, Height: 400},
	}

	plan := Derive(placements, 0, sheet, planSettings())

	for _, l := range plan.Lines {
		if l.Orientation == Rip {
			assert.Equal(t, sheet.Height, l.Length)
		} else {
			assert.Equal(t, sheet.Width, l.Length)
		}
	}

	// 2 rips * 500 + 2 crosscuts * 1000
	assert.InDelta(t, 3000.0, plan.TotalLength, 1e-9)
}

func TestDerive_DistinctEdgesStaySeparate(t *testing.T) {
	// Facing edges 10 apart exceed the tolerance and stay as two cuts.
	sheet := model.NewSheetDefinition("Ply", 1000, 500, 1)
	placements := []model.PlacedPart{
		{PartID: "a", Label: "A", X: 0, Y: 0, Width: 300, Height: 400},
		{PartID: "b", Label: "B", X: 310, Y: 0, Width: 300, Height: 400},
	}

	plan := Derive(placements, 0, sheet, planSettings())

	assert.Equal(t, 4, plan.RipCount(), "edges at 0, 300, 310, and 610")
}

func TestDeriveAll(t *testing.T) {
	sheet := model.NewSheetDefinition("Ply", 1000, 500, 2)
	result := model.NestingResult{
		Placements: []model.PlacedPart{
			{PartID: "a", Label: "A", SheetIndex: 0, X: 0, Y: 0, Width: 300, Height: 400},
			{PartID: "b", Label: "B", SheetIndex: 1, X: 0, Y: 0, Width: 200, Height: 200},
		},
		Sheets: []model.SheetStats{
			{SheetIndex: 0, Definition: sheet, PartCount: 1},
			{SheetIndex: 1, Definition: sheet, PartCount: 1},
		},
	}

	plans := DeriveAll(result, planSettings())

	require.Len(t, plans, 2)
	assert.Equal(t, 0, plans[0].SheetIndex)
	assert.Equal(t, 1, plans[1].SheetIndex)
	assert.NotEmpty(t, plans[0].Lines)
	assert.NotEmpty(t, plans[1].Lines)

	assert.InDelta(t, plans[0].TotalLength+plans[1].TotalLength, TotalCutLength(plans), 1e-9)
}
