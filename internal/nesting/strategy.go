// Package nesting implements the placement strategies and the multi-sheet
// scheduler that drives them. Strategies place as many parts as possible on
// a single sheet instance; the scheduler walks an ordered stack of sheet
// instances until all parts are placed or the stack runs out.
package nesting

import (
	"context"
	"sort"

	"github.com/piwi3910/sheetnest/internal/model"
)

// epsilon absorbs float noise in fit comparisons. It is the model-wide
// dimension tolerance: any slack granted here is matched by the quality
// checker, so a fit accepted by a packer stays within checked bounds.
const epsilon = model.DimensionTolerance

// checkEvery is how many part placements pass between context checks
// inside a strategy invocation.
const checkEvery = 64

// Place runs one strategy over a single sheet instance. It returns the
// placements (tagged with sheet index 0; the scheduler retags) and the
// parts that did not fit. The union of placed and remaining always equals
// the input parts exactly: an unfittable part is deferred, never dropped.
//
// All free-space bookkeeping is local to the call, so concurrent calls with
// distinct inputs are safe. The context is only consulted as a cooperative
// cancellation checkpoint between individual placements; on cancellation the
// untried parts are returned as remaining.
func Place(ctx context.Context, strategy model.Strategy, parts []model.Part, sheetW, sheetH float64, settings model.Settings) ([]model.PlacedPart, []model.Part) {
	if len(parts) == 0 {
		return nil, nil
	}
	switch strategy {
	case model.StrategyShelf:
		return placeShelf(ctx, parts, sheetW, sheetH, settings)
	case model.StrategyCutOptimized:
		return placeGuillotine(ctx, parts, sheetW, sheetH, settings, true)
	default:
		return placeGuillotine(ctx, parts, sheetW, sheetH, settings, false)
	}
}

// orderForPacking returns a sorted copy of parts for the guillotine
// variants. The input slice is never reordered in place.
func orderForPacking(parts []model.Part, order model.PartOrder) []model.Part {
	sorted := make([]model.Part, len(parts))
	copy(sorted, parts)

	switch order {
	case model.OrderHeightDesc:
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].Height != sorted[j].Height {
				return sorted[i].Height > sorted[j].Height
			}
			return sorted[i].Width > sorted[j].Width
		})
	default: // area descending
		sort.SliceStable(sorted, func(i, j int) bool {
			ai, aj := sorted[i].Area(), sorted[j].Area()
			if ai != aj {
				return ai > aj
			}
			return sorted[i].Height > sorted[j].Height
		})
	}
	return sorted
}

// cancelled reports whether the context is done.
func cancelled(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
