package nesting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/sheetnest/internal/model"
)

func TestPlace_UnionOfPlacedAndRemaining(t *testing.T) {
	parts := []model.Part{
		model.NewPart("A", 400, 300, 1),
		model.NewPart("B", 300, 300, 1),
		model.NewPart("C", 900, 900, 1), // does not fit the 500x500 sheet
	}
	settings := testSettings()

	for _, strategy := range []model.Strategy{model.StrategyShelf, model.StrategyGuillotine, model.StrategyCutOptimized} {
		t.Run(string(strategy), func(t *testing.T) {
			placed, remaining := Place(context.Background(), strategy, parts, 500, 500, settings)
			assert.Equal(t, len(parts), len(placed)+len(remaining))
		})
	}
}

func TestPlaceShelf_RowsOfDescendingHeight(t *testing.T) {
	parts := []model.Part{
		model.NewPart("Short", 200, 100, 1),
		model.NewPart("Tall", 200, 300, 1),
		model.NewPart("Mid", 200, 200, 1),
	}
	settings := testSettings()

	placed, remaining := placeShelf(context.Background(), parts, 1000, 1000, settings)

	require.Len(t, placed, 3)
	assert.Empty(t, remaining)

	// The tallest part opens the first shelf; later parts never sit above an
	// earlier, shorter one.
	byLabel := map[string]model.PlacedPart{}
	for _, p := range placed {
		byLabel[p.Label] = p
	}
	assert.LessOrEqual(t, byLabel["Tall"].Y, byLabel["Mid"].Y)
	assert.LessOrEqual(t, byLabel["Mid"].Y, byLabel["Short"].Y)
}

func TestPlaceShelf_KerfSeparatesNeighbors(t *testing.T) {
	parts := []model.Part{
		model.NewPart("A", 100, 100, 1),
		model.NewPart("B", 100, 100, 1),
	}
	settings := testSettings() // kerf 3

	placed, _ := placeShelf(context.Background(), parts, 1000, 1000, settings)
	require.Len(t, placed, 2)

	gap := placed[1].X - placed[0].Right()
	assert.InDelta(t, settings.Kerf, gap, 1e-9)
}

func TestPlaceGuillotine_MarginRespected(t *testing.T) {
	parts := []model.Part{model.NewPart("A", 100, 100, 1)}
	settings := testSettings() // margin 2

	placed, _ := placeGuillotine(context.Background(), parts, 500, 500, settings, false)

	require.Len(t, placed, 1)
	assert.InDelta(t, settings.Margin, placed[0].X, 1e-9)
	assert.InDelta(t, settings.Margin, placed[0].Y, 1e-9)
}

func TestPlaceGuillotine_FillsSheetDensely(t *testing.T) {
	// Sixteen 100x100 parts on a 450x450 usable area with zero kerf should
	// all fit in a 4x4 grid.
	var parts []model.Part
	for i := 0; i < 16; i++ {
		parts = append(parts, model.NewPart("Sq", 100, 100, 1))
	}
	settings := model.Settings{Strategy: model.StrategyGuillotine, Kerf: 0, Margin: 0}

	placed, remaining := placeGuillotine(context.Background(), parts, 450, 450, settings, false)

	assert.Len(t, placed, 16)
	assert.Empty(t, remaining)
}

func TestOrderForPacking_DoesNotMutateInput(t *testing.T) {
	parts := []model.Part{
		model.NewPart("Small", 100, 100, 1),
		model.NewPart("Big", 500, 500, 1),
	}

	ordered := orderForPacking(parts, model.OrderAreaDesc)

	assert.Equal(t, "Big", ordered[0].Label)
	assert.Equal(t, "Small", parts[0].Label, "input slice must stay untouched")
}

func TestOrderForPacking_HeightDesc(t *testing.T) {
	parts := []model.Part{
		model.NewPart("WideFlat", 900, 100, 1), // bigger area
		model.NewPart("Tall", 100, 500, 1),
	}

	ordered := orderForPacking(parts, model.OrderHeightDesc)
	assert.Equal(t, "Tall", ordered[0].Label)

	ordered = orderForPacking(parts, model.OrderAreaDesc)
	assert.Equal(t, "WideFlat", ordered[0].Label)
}

func TestCutOptimized_AlignsPartsOnSharedRipLine(t *testing.T) {
	// Equal-width parts should stack on the same vertical cut line under the
	// rip bias, so one rip frees all of them.
	parts := []model.Part{
		model.NewPart("A", 200, 150, 1),
		model.NewPart("B", 200, 150, 1),
		model.NewPart("C", 200, 150, 1),
	}
	settings := model.Settings{
		Strategy:         model.StrategyCutOptimized,
		Kerf:             3,
		Margin:           0,
		CutLineTolerance: 4,
	}

	placed, remaining := placeGuillotine(context.Background(), parts, 1000, 1000, settings, true)

	require.Len(t, placed, 3)
	assert.Empty(t, remaining)

	// Every part's left edge must continue a rip started by an earlier part
	// (its left edge sits within tolerance of a neighbor's right edge) or sit
	// on the sheet edge.
	for _, p := range placed {
		if p.X == 0 {
			continue
		}
		continues := false
		for _, q := range placed {
			if q == p {
				continue
			}
			if diff := p.X - q.Right(); diff >= 0 && diff <= settings.CutLineTolerance {
				continues = true
				break
			}
		}
		assert.True(t, continues, "part %s at x=%.1f does not share a rip line", p.Label, p.X)
	}
}

func TestFullWidthPartNestsViaShelfNotGuillotine(t *testing.T) {
	// The shelf lets a row's last part run flush to the usable edge; the
	// guillotine variants charge kerf in every footprint. A part spanning
	// the full usable width exercises exactly that divergence.
	settings := model.DefaultSettings()
	settings.Kerf = 3
	settings.Margin = 0
	part := model.NewPart("FullWidth", 1000, 200, 1)

	placed, remaining := Place(context.Background(), model.StrategyShelf, []model.Part{part}, 1000, 1000, settings)
	require.Len(t, placed, 1)
	assert.Empty(t, remaining)
	assert.Equal(t, 1000.0, placed[0].Right())

	placed, remaining = Place(context.Background(), model.StrategyGuillotine, []model.Part{part}, 1000, 1000, settings)
	assert.Empty(t, placed)
	require.Len(t, remaining, 1)
}
