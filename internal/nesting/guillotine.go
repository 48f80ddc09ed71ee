package nesting

import (
	"context"
	"math"

	"github.com/piwi3910/sheetnest/internal/model"
)

// freeRect is a candidate empty region on a sheet. The free list is owned
// exclusively by one packer for one sheet; rects are values, split and
// discarded within that call, never shared across sheets.
type freeRect struct {
	x, y, w, h float64
}

func (r freeRect) area() float64 {
	return r.w * r.h
}

// guillotinePacker maintains the free-rectangle list for a single sheet.
// Each insertion consumes one rectangle and splits the remainder into
// exactly two children with a full guillotine cut.
type guillotinePacker struct {
	free []freeRect
	kerf float64

	// Rip-line continuation bias for the cut-optimized variant. ripLines
	// records the x coordinates of accepted vertical part edges; candidates
	// aligned with one are preferred over strictly tighter fits.
	ripBias  bool
	ripTol   float64
	ripLines []float64
}

// newGuillotinePacker seeds the free list with the sheet minus margin.
func newGuillotinePacker(sheetW, sheetH float64, settings model.Settings, ripBias bool) *guillotinePacker {
	usableW := sheetW - 2*settings.Margin
	usableH := sheetH - 2*settings.Margin

	gp := &guillotinePacker{
		kerf:    settings.Kerf,
		ripBias: ripBias,
		ripTol:  settings.CutLineTolerance,
	}
	if usableW > 0 && usableH > 0 {
		gp.free = []freeRect{{x: settings.Margin, y: settings.Margin, w: usableW, h: usableH}}
	}
	return gp
}

// fitScore holds the best-short-side-fit ranking for one candidate rect.
// Lower is better; continues ranks a rip-line continuation ahead of any
// non-continuation when the bias is active.
type fitScore struct {
	shortSide float64
	longSide  float64
	continues bool
}

func (s fitScore) better(than fitScore, ripBias bool) bool {
	if ripBias && s.continues != than.continues {
		return s.continues
	}
	if s.shortSide != than.shortSide {
		return s.shortSide < than.shortSide
	}
	return s.longSide < than.longSide
}

// continuesRip reports whether either vertical edge of a placement at the
// rect's corner would align with an already-accepted rip line.
func (gp *guillotinePacker) continuesRip(r freeRect, w float64) bool {
	for _, x := range gp.ripLines {
		if math.Abs(r.x-x) <= gp.ripTol || math.Abs(r.x+w+gp.kerf-x) <= gp.ripTol {
			return true
		}
	}
	return false
}

// score ranks placing a w x h part (kerf included in the footprint) into
// every candidate rect and returns the best index, or -1 if none fits.
func (gp *guillotinePacker) score(w, h float64) (int, fitScore) {
	wk := w + gp.kerf
	hk := h + gp.kerf

	bestIdx := -1
	var best fitScore
	for i, r := range gp.free {
		if wk > r.w+epsilon || hk > r.h+epsilon {
			continue
		}
		s := fitScore{
			shortSide: math.Min(r.w-w, r.h-h),
			longSide:  math.Max(r.w-w, r.h-h),
		}
		if gp.ripBias {
			s.continues = gp.continuesRip(r, w)
		}
		if bestIdx < 0 || s.better(best, gp.ripBias) {
			bestIdx = i
			best = s
		}
	}
	return bestIdx, best
}

// fits reports whether a w x h part fits anywhere, with its score, without
// modifying the packer.
func (gp *guillotinePacker) fits(w, h float64) (fitScore, bool) {
	idx, s := gp.score(w, h)
	return s, idx >= 0
}

// insert places a w x h part into the best-fitting free rectangle, splits
// the remainder, and returns the placement position.
func (gp *guillotinePacker) insert(w, h float64) (float64, float64, bool) {
	idx, _ := gp.score(w, h)
	if idx < 0 {
		return 0, 0, false
	}

	chosen := gp.free[idx]
	gp.free = append(gp.free[:idx], gp.free[idx+1:]...)

	wk := w + gp.kerf
	hk := h + gp.kerf
	gp.split(chosen, wk, hk)

	if gp.ripBias {
		gp.recordRip(chosen.x)
		gp.recordRip(chosen.x + wk)
	}
	return chosen.x, chosen.y, true
}

// split divides the consumed rectangle around a wk x hk footprint placed in
// its top-left corner into exactly two non-overlapping children. The cut
// runs along whichever axis leaves the larger single leftover: fewer,
// bigger free pieces outperform many slivers.
func (gp *guillotinePacker) split(r freeRect, wk, hk float64) {
	rightW := r.w - wk
	bottomH := r.h - hk

	// Horizontal cut: right child is short, bottom child spans full width.
	// Vertical cut: right child spans full height, bottom child is narrow.
	horizMax := math.Max(rightW*hk, r.w*bottomH)
	vertMax := math.Max(rightW*r.h, wk*bottomH)

	var children [2]freeRect
	if vertMax >= horizMax {
		children[0] = freeRect{x: r.x + wk, y: r.y, w: rightW, h: r.h}
		children[1] = freeRect{x: r.x, y: r.y + hk, w: wk, h: bottomH}
	} else {
		children[0] = freeRect{x: r.x + wk, y: r.y, w: rightW, h: hk}
		children[1] = freeRect{x: r.x, y: r.y + hk, w: r.w, h: bottomH}
	}

	for _, c := range children {
		if c.w > epsilon && c.h > epsilon {
			gp.free = append(gp.free, c)
		}
	}
	gp.free = pruneContained(gp.free)
}

// recordRip remembers a vertical cut position, deduplicated within tolerance.
func (gp *guillotinePacker) recordRip(x float64) {
	for _, existing := range gp.ripLines {
		if math.Abs(existing-x) <= gp.ripTol {
			return
		}
	}
	gp.ripLines = append(gp.ripLines, x)
}

// pruneContained removes any rect fully contained within another.
func pruneContained(rects []freeRect) []freeRect {
	if len(rects) <= 1 {
		return rects
	}
	kept := make([]freeRect, 0, len(rects))
	for i, a := range rects {
		contained := false
		for j, b := range rects {
			if i == j || !containsRect(b, a) {
				continue
			}
			// Mutual containment means duplicates; keep only the first.
			if containsRect(a, b) && i < j {
				continue
			}
			contained = true
			break
		}
		if !contained {
			kept = append(kept, a)
		}
	}
	return kept
}

// containsRect returns true if outer fully contains inner.
func containsRect(outer, inner freeRect) bool {
	return outer.x <= inner.x+epsilon && outer.y <= inner.y+epsilon &&
		outer.x+outer.w >= inner.x+inner.w-epsilon &&
		outer.y+outer.h >= inner.y+inner.h-epsilon
}

// placeGuillotine packs parts ordered by the configured heuristic into
// free rectangles using best-short-side-fit, trying both orientations when
// rotation is allowed.
func placeGuillotine(ctx context.Context, parts []model.Part, sheetW, sheetH float64, settings model.Settings, ripBias bool) ([]model.PlacedPart, []model.Part) {
	gp := newGuillotinePacker(sheetW, sheetH, settings, ripBias)
	ordered := orderForPacking(parts, settings.PartOrder)

	var placed []model.PlacedPart
	var remaining []model.Part

	for i, part := range ordered {
		if i%checkEvery == checkEvery-1 && cancelled(ctx) {
			remaining = append(remaining, ordered[i:]...)
			break
		}

		pp, ok := tryInsert(gp, part)
		if !ok {
			remaining = append(remaining, part)
			continue
		}
		placed = append(placed, pp)
	}
	return placed, remaining
}

// tryInsert places one part in its best orientation. When both orientations
// fit, the one with the better fit score wins; ties keep the part unrotated.
func tryInsert(gp *guillotinePacker, part model.Part) (model.PlacedPart, bool) {
	w, h := part.Width, part.Height

	normal, normalOK := gp.fits(w, h)
	rotate := part.RotationAllowed && w != h
	var rotated fitScore
	rotatedOK := false
	if rotate {
		rotated, rotatedOK = gp.fits(h, w)
	}

	useRotated := false
	switch {
	case !normalOK && !rotatedOK:
		return model.PlacedPart{}, false
	case !normalOK:
		useRotated = true
	case rotatedOK && rotated.better(normal, gp.ripBias):
		useRotated = true
	}

	pw, ph, deg := w, h, 0
	if useRotated {
		pw, ph, deg = h, w, 90
	}
	x, y, ok := gp.insert(pw, ph)
	if !ok {
		return model.PlacedPart{}, false
	}
	return model.PlacedPart{
		PartID:      part.ID,
		Label:       part.Label,
		X:           x,
		Y:           y,
		Width:       pw,
		Height:      ph,
		RotationDeg: deg,
	}, true
}
