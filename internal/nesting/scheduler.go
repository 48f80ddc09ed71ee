package nesting

import (
	"context"

	"github.com/piwi3910/sheetnest/internal/model"
)

// ProgressFunc receives a checkpoint after each consumed sheet instance.
type ProgressFunc func(sheetIndex, placedSoFar, remaining int)

// Scheduler drives a placement strategy across an ordered stack of sheet
// instances. Each Run is a pure function of its arguments; a Scheduler
// holds no mutable job state and may be reused across jobs.
type Scheduler struct {
	Settings model.Settings
	Progress ProgressFunc
}

func NewScheduler(settings model.Settings) *Scheduler {
	return &Scheduler{Settings: settings}
}

// Run nests the given parts onto the configured sheets. Sheet definitions
// contribute Quantity instances each, consumed in declaration order;
// quantities on parts are expanded up front so strategies see one instance
// per unit. Parts too large for every sheet are classified without ever
// being attempted; parts left over when the stack runs out are reported as
// exhausted. Neither outcome is an error.
//
// The context is a cooperative cancellation checkpoint between sheet
// instances (and, within a strategy, between placements). On cancellation
// Run returns the consistent partial result built so far along with the
// context's error; parts not yet attempted are reported as exhausted.
func (s *Scheduler) Run(ctx context.Context, parts []model.Part, sheets []model.SheetDefinition) (model.NestingResult, error) {
	if err := model.ValidateJob(parts, sheets, s.Settings); err != nil {
		return model.NestingResult{}, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	expanded := model.ExpandParts(parts)
	instances := model.ExpandSheets(sheets)

	result := model.NestingResult{}

	// Parts exceeding every sheet's usable area in both orientations are
	// never attempted.
	attemptable, tooLarge := splitTooLarge(expanded, sheets, s.Settings)
	for _, p := range tooLarge {
		result.Unplaced = append(result.Unplaced, model.UnplacedPart{Part: p, Reason: model.ReasonTooLarge})
	}

	remaining := attemptable
	var runErr error

	for _, inst := range instances {
		if len(remaining) == 0 {
			break
		}
		if cancelled(ctx) {
			runErr = ctx.Err()
			break
		}

		sheetIndex := len(result.Sheets)
		placed, rest := Place(ctx, s.Settings.Strategy, remaining, inst.Width, inst.Height, s.Settings)
		remaining = rest
		if len(placed) == 0 {
			continue
		}

		var used float64
		for i := range placed {
			placed[i].SheetIndex = sheetIndex
			used += placed[i].Area()
		}
		result.Placements = append(result.Placements, placed...)
		result.Sheets = append(result.Sheets, model.SheetStats{
			SheetIndex:  sheetIndex,
			Definition:  inst,
			PartCount:   len(placed),
			UsedArea:    used,
			Utilization: used / inst.Area(),
		})

		if s.Progress != nil {
			s.Progress(sheetIndex, len(result.Placements), len(remaining))
		}
	}

	for _, p := range remaining {
		result.Unplaced = append(result.Unplaced, model.UnplacedPart{Part: p, Reason: model.ReasonSheetsExhausted})
	}
	return result, runErr
}

// splitTooLarge partitions part instances into those that fit at least one
// configured sheet's usable area (in some legal orientation) and those that
// fit none.
func splitTooLarge(parts []model.Part, sheets []model.SheetDefinition, settings model.Settings) (fit, tooLarge []model.Part) {
	for _, p := range parts {
		if fitsAnySheet(p, sheets, settings) {
			fit = append(fit, p)
		} else {
			tooLarge = append(tooLarge, p)
		}
	}
	return fit, tooLarge
}

func fitsAnySheet(p model.Part, sheets []model.SheetDefinition, settings model.Settings) bool {
	for _, s := range sheets {
		uw := s.Width - 2*settings.Margin
		uh := s.Height - 2*settings.Margin
		if p.Width <= uw+epsilon && p.Height <= uh+epsilon {
			return true
		}
		if p.RotationAllowed && p.Height <= uw+epsilon && p.Width <= uh+epsilon {
			return true
		}
	}
	return false
}
