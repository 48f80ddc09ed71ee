package model

import "fmt"

// InvalidInputError rejects a malformed job before any strategy runs:
// non-positive part or sheet dimensions, quantities below one, or a job
// with zero sheet instances. Everything explainable in terms of material
// geometry is reported on the NestingResult instead, never raised.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// ValidateJob checks parts, sheets, and settings at the scheduler boundary.
// It returns the first problem found as an *InvalidInputError.
func ValidateJob(parts []Part, sheets []SheetDefinition, settings Settings) error {
	for _, p := range parts {
		if p.Width <= 0 || p.Height <= 0 {
			return &InvalidInputError{
				Field:  fmt.Sprintf("part %q", p.Label),
				Reason: fmt.Sprintf("dimensions must be positive, got %gx%g", p.Width, p.Height),
			}
		}
		if p.Quantity < 1 {
			return &InvalidInputError{
				Field:  fmt.Sprintf("part %q", p.Label),
				Reason: fmt.Sprintf("quantity must be at least 1, got %d", p.Quantity),
			}
		}
	}

	instances := 0
	for _, s := range sheets {
		if s.Width <= 0 || s.Height <= 0 {
			return &InvalidInputError{
				Field:  fmt.Sprintf("sheet %q", s.Label),
				Reason: fmt.Sprintf("dimensions must be positive, got %gx%g", s.Width, s.Height),
			}
		}
		if s.Quantity < 1 {
			return &InvalidInputError{
				Field:  fmt.Sprintf("sheet %q", s.Label),
				Reason: fmt.Sprintf("quantity must be at least 1, got %d", s.Quantity),
			}
		}
		instances += s.Quantity
	}
	if instances == 0 {
		return &InvalidInputError{Field: "sheets", Reason: "job has no sheet instances"}
	}

	if settings.Kerf < 0 {
		return &InvalidInputError{Field: "kerf", Reason: fmt.Sprintf("must be non-negative, got %g", settings.Kerf)}
	}
	if settings.Margin < 0 {
		return &InvalidInputError{Field: "margin", Reason: fmt.Sprintf("must be non-negative, got %g", settings.Margin)}
	}

	switch settings.Strategy {
	case StrategyShelf, StrategyGuillotine, StrategyCutOptimized, "":
	default:
		return &InvalidInputError{Field: "strategy", Reason: fmt.Sprintf("unknown strategy %q", settings.Strategy)}
	}

	return nil
}
