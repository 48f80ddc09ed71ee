// Package quality validates finished layouts against the geometric rules
// the packers are supposed to uphold. A passing report is evidence, not
// proof; a failing one always points at a concrete placement pair or part.
package quality

import (
	"fmt"
	"math"

	"github.com/piwi3910/sheetnest/internal/model"
)

// Severity classifies an issue's impact on the layout.
type Severity string

const (
	// SeverityCritical marks layouts that would produce scrap or unusable
	// parts if sent to the saw.
	SeverityCritical Severity = "CRITICAL"
	// SeverityWarning marks layouts that cut fine but violate a soft
	// preference such as minimum spacing.
	SeverityWarning Severity = "WARNING"
)

// Issue codes group related findings for filtering in reports.
const (
	CodeOverlap    = "overlap"
	CodeOutOfBound = "out-of-bounds"
	CodeDimension  = "dimension-mismatch"
	CodeRotation   = "illegal-rotation"
	CodeSpacing    = "tight-spacing"
)

// Issue is one finding against a specific sheet and placement.
type Issue struct {
	Severity   Severity `json:"severity"`
	Code       string   `json:"code"`
	SheetIndex int      `json:"sheet_index"`
	Message    string   `json:"message"`
}

// Report aggregates all findings with a headline score: 100 minus 25 per
// critical and 5 per warning, floored at zero.
type Report struct {
	Score  int     `json:"score"`
	Issues []Issue `json:"issues"`
}

// Passed reports whether the layout is safe to cut.
func (r Report) Passed() bool {
	for _, iss := range r.Issues {
		if iss.Severity == SeverityCritical {
			return false
		}
	}
	return true
}

// Counts returns the number of critical and warning issues.
func (r Report) Counts() (critical, warning int) {
	for _, iss := range r.Issues {
		if iss.Severity == SeverityCritical {
			critical++
		} else {
			warning++
		}
	}
	return critical, warning
}

const dimensionTolerance = model.DimensionTolerance

// Check validates every placement in the result against the sheet geometry,
// the original part definitions, and the job settings. originalParts are the
// pre-expansion parts; placements resolve against them by part ID.
func Check(result model.NestingResult, settings model.Settings, originalParts []model.Part) Report {
	byID := make(map[string]model.Part, len(originalParts))
	for _, p := range originalParts {
		byID[p.ID] = p
	}

	var issues []Issue
	for _, stats := range result.Sheets {
		onSheet := result.PlacementsOnSheet(stats.SheetIndex)
		issues = append(issues, checkBounds(onSheet, stats, settings.Margin)...)
		issues = append(issues, checkOverlaps(onSheet, stats.SheetIndex, settings.Kerf)...)
		issues = append(issues, checkParts(onSheet, stats.SheetIndex, byID)...)
		if settings.MinSpacing > 0 {
			issues = append(issues, checkSpacing(onSheet, stats.SheetIndex, settings)...)
		}
	}

	return Report{Score: score(issues), Issues: issues}
}

func score(issues []Issue) int {
	s := 100
	for _, iss := range issues {
		if iss.Severity == SeverityCritical {
			s -= 25
		} else {
			s -= 5
		}
	}
	if s < 0 {
		s = 0
	}
	return s
}

// checkBounds flags placements protruding into the margin band or past the
// sheet edge. The usable area is the sheet inset by the margin on all sides.
func checkBounds(placements []model.PlacedPart, stats model.SheetStats, margin float64) []Issue {
	var issues []Issue
	for _, p := range placements {
		if p.X < margin-dimensionTolerance || p.Y < margin-dimensionTolerance ||
			p.Right() > stats.Definition.Width-margin+dimensionTolerance ||
			p.Bottom() > stats.Definition.Height-margin+dimensionTolerance {
			issues = append(issues, Issue{
				Severity:   SeverityCritical,
				Code:       CodeOutOfBound,
				SheetIndex: stats.SheetIndex,
				Message: fmt.Sprintf("part %s at (%.1f, %.1f) extends past the %s sheet edge",
					p.Label, p.X, p.Y, stats.Definition.Label),
			})
		}
	}
	return issues
}

// checkOverlaps tests every placement pair on the sheet with rectangles
// inflated by half the kerf, so two parts packed closer than the blade
// needs register as a collision even without literal overlap. The inflation
// backs off by the float tolerance so exactly-kerf-apart parts pass.
func checkOverlaps(placements []model.PlacedPart, sheetIndex int, kerf float64) []Issue {
	var issues []Issue
	inflate := kerf/2 - dimensionTolerance
	if inflate < 0 {
		inflate = 0
	}
	for i := 0; i < len(placements); i++ {
		for j := i + 1; j < len(placements); j++ {
			if rectsOverlap(placements[i], placements[j], inflate) {
				issues = append(issues, Issue{
					Severity:   SeverityCritical,
					Code:       CodeOverlap,
					SheetIndex: sheetIndex,
					Message: fmt.Sprintf("parts %s and %s overlap at (%.1f, %.1f)",
						placements[i].Label, placements[j].Label, placements[j].X, placements[j].Y),
				})
			}
		}
	}
	return issues
}

func rectsOverlap(a, b model.PlacedPart, inflate float64) bool {
	return a.X-inflate < b.Right()+inflate &&
		a.Right()+inflate > b.X-inflate &&
		a.Y-inflate < b.Bottom()+inflate &&
		a.Bottom()+inflate > b.Y-inflate
}

// checkParts verifies each placement's dimensions against its source part
// (in either orientation) and that rotated placements were actually allowed
// to rotate.
func checkParts(placements []model.PlacedPart, sheetIndex int, byID map[string]model.Part) []Issue {
	var issues []Issue
	for _, p := range placements {
		src, ok := byID[p.PartID]
		if !ok {
			issues = append(issues, Issue{
				Severity:   SeverityCritical,
				Code:       CodeDimension,
				SheetIndex: sheetIndex,
				Message:    fmt.Sprintf("placement %s references unknown part %s", p.Label, p.PartID),
			})
			continue
		}

		w, h := p.Width, p.Height
		if p.Rotated() {
			w, h = h, w
		}
		if math.Abs(w-src.Width) > dimensionTolerance || math.Abs(h-src.Height) > dimensionTolerance {
			issues = append(issues, Issue{
				Severity:   SeverityCritical,
				Code:       CodeDimension,
				SheetIndex: sheetIndex,
				Message: fmt.Sprintf("part %s placed as %.1fx%.1f but defined as %.1fx%.1f",
					p.Label, p.Width, p.Height, src.Width, src.Height),
			})
		}

		if p.Rotated() && !src.RotationAllowed {
			issues = append(issues, Issue{
				Severity:   SeverityCritical,
				Code:       CodeRotation,
				SheetIndex: sheetIndex,
				Message:    fmt.Sprintf("part %s is rotated but locked to its original orientation", p.Label),
			})
		}
	}
	return issues
}

// checkSpacing warns when two parts sit closer than the configured minimum
// gap. The kerf already separates packed parts, so this only fires when the
// minimum spacing exceeds what the packer guaranteed.
func checkSpacing(placements []model.PlacedPart, sheetIndex int, settings model.Settings) []Issue {
	var issues []Issue
	for i := 0; i < len(placements); i++ {
		for j := i + 1; j < len(placements); j++ {
			gap := rectGap(placements[i], placements[j])
			if gap >= 0 && gap < settings.MinSpacing-dimensionTolerance {
				issues = append(issues, Issue{
					Severity:   SeverityWarning,
					Code:       CodeSpacing,
					SheetIndex: sheetIndex,
					Message: fmt.Sprintf("parts %s and %s are %.2f apart, below the %.2f minimum",
						placements[i].Label, placements[j].Label, gap, settings.MinSpacing),
				})
			}
		}
	}
	return issues
}

// rectGap returns the smallest axis-aligned distance between two
// non-overlapping rectangles, or -1 when they overlap.
func rectGap(a, b model.PlacedPart) float64 {
	dx := math.Max(math.Max(b.X-a.Right(), a.X-b.Right()), 0)
	dy := math.Max(math.Max(b.Y-a.Bottom(), a.Y-b.Bottom()), 0)
	if dx == 0 && dy == 0 {
		if rectsOverlap(a, b, 0) {
			return -1
		}
		return 0
	}
	if dx > 0 && dy > 0 {
		return math.Hypot(dx, dy)
	}
	return math.Max(dx, dy)
}
