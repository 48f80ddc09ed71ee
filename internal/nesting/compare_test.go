package nesting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/sheetnest/internal/model"
)

func TestBuildDefaultScenarios(t *testing.T) {
	base := model.DefaultSettings() // guillotine, kerf 3.2, margin 10

	scenarios := BuildDefaultScenarios(base)

	// Current settings, two alternate strategies, half kerf, no margin.
	require.Len(t, scenarios, 5)
	assert.Equal(t, "Current Settings", scenarios[0].Name)
	assert.Equal(t, base, scenarios[0].Settings)

	names := map[string]bool{}
	for _, sc := range scenarios {
		names[sc.Name] = true
	}
	assert.True(t, names["shelf"])
	assert.True(t, names["cut-optimized"])
	assert.True(t, names["No Margin"])
}

func TestBuildDefaultScenarios_SkipsDisabledVariants(t *testing.T) {
	base := model.DefaultSettings()
	base.Kerf = 0.5
	base.Margin = 0

	scenarios := BuildDefaultScenarios(base)

	// Only the base plus the two other strategies remain.
	assert.Len(t, scenarios, 3)
}

func TestCompareScenarios(t *testing.T) {
	parts := []model.Part{
		model.NewPart("A", 400, 300, 2),
		model.NewPart("B", 350, 350, 2),
	}
	sheets := []model.SheetDefinition{model.NewSheetDefinition("Ply", 1220, 2440, 2)}

	scenarios := BuildDefaultScenarios(testSettings())
	results, err := CompareScenarios(context.Background(), scenarios, parts, sheets)

	require.NoError(t, err)
	require.Len(t, results, len(scenarios))

	for i, r := range results {
		assert.Equal(t, scenarios[i].Name, r.Scenario.Name, "results keep scenario order")
		assert.Equal(t, 4, r.PlacedCount, "scenario %q should place everything", r.Scenario.Name)
		assert.Zero(t, r.UnplacedCount)
		assert.GreaterOrEqual(t, r.WastePercent, 0.0)
		assert.LessOrEqual(t, r.WastePercent, 100.0)
	}
}

func TestCompareScenarios_PropagatesValidationError(t *testing.T) {
	parts := []model.Part{{ID: "x", Label: "Bad", Width: -1, Height: 100, Quantity: 1}}
	sheets := []model.SheetDefinition{model.NewSheetDefinition("Ply", 1220, 2440, 1)}

	_, err := CompareScenarios(context.Background(), BuildDefaultScenarios(testSettings()), parts, sheets)

	require.Error(t, err)
	var invalid *model.InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}
