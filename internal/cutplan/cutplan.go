// Package cutplan derives the physical saw cuts implied by a finished
// sheet layout. The plan is a report for the operator: it never feeds back
// into placement.
package cutplan

import (
	"sort"

	"github.com/piwi3910/sheetnest/internal/model"
)

// Orientation distinguishes the two saw directions.
type Orientation string

const (
	// Rip cuts are vertical, spanning the sheet's full height.
	Rip Orientation = "rip"
	// Crosscut cuts are horizontal, spanning the sheet's full width.
	Crosscut Orientation = "crosscut"
)

// CutLine is one full-length cut at a fixed coordinate: x for rips,
// y for crosscuts.
type CutLine struct {
	Orientation Orientation `json:"orientation"`
	Position    float64     `json:"position"`
	Length      float64     `json:"length"`
}

// CutPlan is the ordered cut list for one sheet instance: all rips by
// ascending x, then all crosscuts by ascending y. Ripping everything first
// minimizes re-handling of the sheet at the saw.
type CutPlan struct {
	SheetIndex  int       `json:"sheet_index"`
	Lines       []CutLine `json:"lines"`
	TotalLength float64   `json:"total_length"`
}

// RipCount returns the number of vertical cuts in the plan.
func (p CutPlan) RipCount() int {
	n := 0
	for _, l := range p.Lines {
		if l.Orientation == Rip {
			n++
		}
	}
	return n
}

// CrosscutCount returns the number of horizontal cuts in the plan.
func (p CutPlan) CrosscutCount() int {
	return len(p.Lines) - p.RipCount()
}

// Derive computes the minimal cut-line set for one sheet's placements.
// Every part edge proposes a candidate line; candidates within the
// configured tolerance collapse into one, and a candidate that crosses no
// part's bounding extent (a pure-waste line with nothing to separate) is
// dropped.
func Derive(placements []model.PlacedPart, sheetIndex int, sheet model.SheetDefinition, settings model.Settings) CutPlan {
	plan := CutPlan{SheetIndex: sheetIndex}
	if len(placements) == 0 {
		return plan
	}

	tol := settings.CutLineTolerance

	var xs, ys []float64
	for _, p := range placements {
		xs = append(xs, p.X, p.Right())
		ys = append(ys, p.Y, p.Bottom())
	}

	for _, x := range mergeCandidates(xs, tol) {
		if !crossesAnyExtent(x, placements, tol, true) {
			continue
		}
		plan.Lines = append(plan.Lines, CutLine{Orientation: Rip, Position: x, Length: sheet.Height})
	}
	for _, y := range mergeCandidates(ys, tol) {
		if !crossesAnyExtent(y, placements, tol, false) {
			continue
		}
		plan.Lines = append(plan.Lines, CutLine{Orientation: Crosscut, Position: y, Length: sheet.Width})
	}

	for _, l := range plan.Lines {
		plan.TotalLength += l.Length
	}
	return plan
}

// DeriveAll builds one plan per consumed sheet in the result.
func DeriveAll(result model.NestingResult, settings model.Settings) []CutPlan {
	plans := make([]CutPlan, 0, len(result.Sheets))
	for _, s := range result.Sheets {
		plans = append(plans, Derive(result.PlacementsOnSheet(s.SheetIndex), s.SheetIndex, s.Definition, settings))
	}
	return plans
}

// mergeCandidates sorts the raw edge coordinates and collapses every run of
// values within tolerance of its neighbor into the run's mean, giving one
// physical cut where adjoining parts share a collinear edge.
func mergeCandidates(values []float64, tol float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var merged []float64
	runStart := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i]-sorted[i-1] <= tol {
			continue
		}
		sum := 0.0
		for _, v := range sorted[runStart:i] {
			sum += v
		}
		merged = append(merged, sum/float64(i-runStart))
		runStart = i
	}
	return merged
}

// crossesAnyExtent reports whether a full-length line at pos touches the
// bounding extent of at least one placement along the cut's perpendicular
// axis. A line on a part's own edge passes deliberately: boundary cuts
// separate part from waste and belong in the plan. The filter only drops a
// merged position that has drifted clear of every part, which merging can
// do by up to the tolerance, so the test is tolerant too.
func crossesAnyExtent(pos float64, placements []model.PlacedPart, tol float64, vertical bool) bool {
	for _, p := range placements {
		lo, hi := p.Y, p.Bottom()
		if vertical {
			lo, hi = p.X, p.Right()
		}
		if pos >= lo-tol && pos <= hi+tol {
			return true
		}
	}
	return false
}

// TotalCutLength sums the cut length across a set of plans.
func TotalCutLength(plans []CutPlan) float64 {
	var total float64
	for _, p := range plans {
		total += p.TotalLength
	}
	return total
}
