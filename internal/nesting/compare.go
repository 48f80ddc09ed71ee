package nesting

import (
	"context"
	"fmt"

	"github.com/piwi3910/sheetnest/internal/model"
)

// Scenario defines a named settings variant to compare.
type Scenario struct {
	Name     string
	Settings model.Settings
}

// ScenarioResult holds the nesting result and headline statistics for one
// scenario, enabling side-by-side what-if comparison.
type ScenarioResult struct {
	Scenario      Scenario
	Result        model.NestingResult
	SheetsUsed    int
	PlacedCount   int
	UnplacedCount int
	WastePercent  float64
}

// CompareScenarios runs the scheduler once per scenario against the same
// parts and sheets and returns results in scenario order. Inputs are copied
// per run by value semantics, so scenarios never contaminate each other.
func CompareScenarios(ctx context.Context, scenarios []Scenario, parts []model.Part, sheets []model.SheetDefinition) ([]ScenarioResult, error) {
	results := make([]ScenarioResult, 0, len(scenarios))

	for _, sc := range scenarios {
		sched := NewScheduler(sc.Settings)
		result, err := sched.Run(ctx, parts, sheets)
		if err != nil {
			return results, fmt.Errorf("scenario %q: %w", sc.Name, err)
		}

		results = append(results, ScenarioResult{
			Scenario:      sc,
			Result:        result,
			SheetsUsed:    result.SheetCount(),
			PlacedCount:   len(result.Placements),
			UnplacedCount: len(result.Unplaced),
			WastePercent:  (1.0 - result.TotalUtilization()) * 100.0,
		})
	}
	return results, nil
}

// BuildDefaultScenarios varies the key parameters of the base settings to
// show what-if alternatives: every strategy, a half-width kerf, and a
// margin-free layout.
func BuildDefaultScenarios(base model.Settings) []Scenario {
	scenarios := []Scenario{{Name: "Current Settings", Settings: base}}

	for _, strat := range []model.Strategy{model.StrategyShelf, model.StrategyGuillotine, model.StrategyCutOptimized} {
		if strat == base.Strategy {
			continue
		}
		alt := base
		alt.Strategy = strat
		scenarios = append(scenarios, Scenario{Name: string(strat), Settings: alt})
	}

	if base.Kerf > 1.0 {
		tight := base
		tight.Kerf = base.Kerf * 0.5
		scenarios = append(scenarios, Scenario{
			Name:     fmt.Sprintf("Kerf %.1f (half)", tight.Kerf),
			Settings: tight,
		})
	}

	if base.Margin > 0 {
		noMargin := base
		noMargin.Margin = 0
		scenarios = append(scenarios, Scenario{Name: "No Margin", Settings: noMargin})
	}

	return scenarios
}
