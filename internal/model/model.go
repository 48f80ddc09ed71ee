// Package model defines the value types shared by the nesting engine,
// the cut planner, and the import/export layers. All dimensions are in a
// single linear unit (millimeters by convention); callers are responsible
// for any display conversion.
package model

import "github.com/google/uuid"

// DimensionTolerance absorbs float noise wherever two dimensions are
// compared. The packers grant at most this much slack when fitting a part,
// and the quality checker tolerates exactly the same amount at the bounds,
// so an accepted placement can never fail its own audit.
const DimensionTolerance = 1e-6

// Part represents a required rectangular piece to be cut.
// Parts are constructed once per job and never mutated.
type Part struct {
	ID              string  `json:"id"`
	Label           string  `json:"label"`
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	Quantity        int     `json:"quantity"`
	RotationAllowed bool    `json:"rotation_allowed"`
}

// NewPart creates a part with a fresh short ID. Rotation is allowed by
// default; callers lock orientation explicitly when the material demands it.
func NewPart(label string, w, h float64, qty int) Part {
	return Part{
		ID:              uuid.New().String()[:8],
		Label:           label,
		Width:           w,
		Height:          h,
		Quantity:        qty,
		RotationAllowed: true,
	}
}

// Area returns the part area in square units.
func (p Part) Area() float64 {
	return p.Width * p.Height
}

// SheetDefinition represents one size of raw stock material. A job is an
// ordered sequence of definitions, each contributing Quantity sheet
// instances in declaration order.
type SheetDefinition struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Quantity int     `json:"quantity"`
}

func NewSheetDefinition(label string, w, h float64, qty int) SheetDefinition {
	return SheetDefinition{
		ID:       uuid.New().String()[:8],
		Label:    label,
		Width:    w,
		Height:   h,
		Quantity: qty,
	}
}

// Area returns the sheet area in square units.
func (s SheetDefinition) Area() float64 {
	return s.Width * s.Height
}

// Strategy selects the placement heuristic. The set is closed: callers
// switch exhaustively on it and new heuristics are added here.
type Strategy string

const (
	StrategyShelf        Strategy = "shelf"         // Skyline shelves of descending height (fast)
	StrategyGuillotine   Strategy = "guillotine"    // Free-rectangle best-short-side-fit
	StrategyCutOptimized Strategy = "cut-optimized" // Guillotine biased toward shared rip lines
)

// PartOrder selects how the guillotine variants sort parts before
// placement. The ordering is a documented heuristic knob, not a hidden
// assumption: area descending is the default, height descending often packs
// tall panels better. The shelf strategy always sorts by height as its
// shelves require.
type PartOrder string

const (
	OrderAreaDesc   PartOrder = "area-desc"
	OrderHeightDesc PartOrder = "height-desc"
)

// Settings holds the explicit per-job nesting configuration. The engine
// never consults ambient defaults; every call receives a Settings value.
type Settings struct {
	Strategy Strategy `json:"strategy"`

	// Kerf is the blade width consumed between adjacent parts. The shelf
	// strategy lets the last part on a row sit flush against the usable
	// edge, where no further cut follows; the guillotine variants charge
	// kerf in every footprint, so a part spanning the full usable width
	// nests via shelf but not via guillotine.
	Kerf float64 `json:"kerf"`

	Margin           float64   `json:"margin"`             // Reserved border around the sheet edges
	PartOrder        PartOrder `json:"part_order"`         // Placement order for guillotine variants
	CutLineTolerance float64   `json:"cut_line_tolerance"` // Merge distance for collinear cut candidates
	MinSpacing       float64   `json:"min_spacing"`        // Below this gap the quality checker warns
}

// DefaultSettings returns the values a fresh job starts from.
func DefaultSettings() Settings {
	return Settings{
		Strategy:         StrategyGuillotine,
		Kerf:             3.2,
		Margin:           10.0,
		PartOrder:        OrderAreaDesc,
		CutLineTolerance: 4.0,
		MinSpacing:       1.0,
	}
}

// PlacedPart records one part instance placed on one sheet instance.
// X and Y are measured from the sheet's top-left corner. Width and Height
// are the dimensions after rotation; RotationDeg is 0 or 90.
type PlacedPart struct {
	PartID      string  `json:"part_id"`
	Label       string  `json:"label"`
	SheetIndex  int     `json:"sheet_index"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	RotationDeg int     `json:"rotation_deg"`
}

// Rotated reports whether the part was turned 90 degrees.
func (p PlacedPart) Rotated() bool {
	return p.RotationDeg == 90
}

// SourceWidth returns the part's width before rotation was applied.
func (p PlacedPart) SourceWidth() float64 {
	if p.Rotated() {
		return p.Height
	}
	return p.Width
}

// SourceHeight returns the part's height before rotation was applied.
func (p PlacedPart) SourceHeight() float64 {
	if p.Rotated() {
		return p.Width
	}
	return p.Height
}

// Right returns the x coordinate of the part's right edge.
func (p PlacedPart) Right() float64 {
	return p.X + p.Width
}

// Bottom returns the y coordinate of the part's bottom edge.
func (p PlacedPart) Bottom() float64 {
	return p.Y + p.Height
}

// Area returns the placed area in square units.
func (p PlacedPart) Area() float64 {
	return p.Width * p.Height
}

// UnplacedReason explains why a part did not make it onto any sheet.
// Unplaced parts are reportable outcomes, never errors: a partial nest is
// still useful output.
type UnplacedReason string

const (
	// ReasonTooLarge marks parts whose dimensions exceed every configured
	// sheet's usable area in either orientation. They are never attempted.
	ReasonTooLarge UnplacedReason = "too large for any sheet"
	// ReasonSheetsExhausted marks parts that would fit somewhere but ran
	// out of sheet instances.
	ReasonSheetsExhausted UnplacedReason = "sheets exhausted"
)

// UnplacedPart pairs a part instance with the reason it was not placed.
type UnplacedPart struct {
	Part   Part           `json:"part"`
	Reason UnplacedReason `json:"reason"`
}

// SheetStats summarizes material usage for one consumed sheet instance.
type SheetStats struct {
	SheetIndex  int             `json:"sheet_index"`
	Definition  SheetDefinition `json:"definition"`
	PartCount   int             `json:"part_count"`
	UsedArea    float64         `json:"used_area"`
	Utilization float64         `json:"utilization"` // used area / sheet area, 0..1
}

// NestingResult is the immutable report produced by one scheduler run.
// The cut planner and quality checker consume it without mutating it.
type NestingResult struct {
	Placements []PlacedPart   `json:"placements"`
	Unplaced   []UnplacedPart `json:"unplaced"`
	Sheets     []SheetStats   `json:"sheets"`
}

// PlacementsOnSheet returns the placements tagged with the given sheet
// index, in placement order.
func (r NestingResult) PlacementsOnSheet(sheetIndex int) []PlacedPart {
	var out []PlacedPart
	for _, p := range r.Placements {
		if p.SheetIndex == sheetIndex {
			out = append(out, p)
		}
	}
	return out
}

// TotalUtilization returns used area over total consumed sheet area, 0..1.
func (r NestingResult) TotalUtilization() float64 {
	var used, total float64
	for _, s := range r.Sheets {
		used += s.UsedArea
		total += s.Definition.Area()
	}
	if total == 0 {
		return 0
	}
	return used / total
}

// SheetCount returns the number of sheet instances consumed.
func (r NestingResult) SheetCount() int {
	return len(r.Sheets)
}

// ExpandParts turns quantities into one part instance per unit so that
// downstream logic never deals with quantities. Instances share the source
// part's ID and dimensions.
func ExpandParts(parts []Part) []Part {
	var expanded []Part
	for _, p := range parts {
		for i := 0; i < p.Quantity; i++ {
			cp := p
			cp.Quantity = 1
			expanded = append(expanded, cp)
		}
	}
	return expanded
}

// ExpandSheets turns each definition into Quantity sheet instances,
// preserving declaration order.
func ExpandSheets(sheets []SheetDefinition) []SheetDefinition {
	var expanded []SheetDefinition
	for _, s := range sheets {
		for i := 0; i < s.Quantity; i++ {
			cp := s
			cp.Quantity = 1
			expanded = append(expanded, cp)
		}
	}
	return expanded
}
