package nesting

import (
	"context"
	"sort"

	"github.com/piwi3910/sheetnest/internal/model"
)

// shelfState tracks the skyline of one sheet: shelves stack upward from the
// margin, each as tall as its tallest part. The state lives and dies inside
// a single placeShelf call.
type shelfState struct {
	usableRight  float64 // x beyond which nothing may be placed
	usableBottom float64 // y beyond which no shelf may open
	kerf         float64

	shelfY      float64 // top edge of the current shelf
	shelfHeight float64 // tallest part on the current shelf so far
	cursorX     float64 // next free x on the current shelf
	shelfStartX float64
}

// orientation is one way a part can lie on a shelf.
type orientation struct {
	w, h float64
	deg  int
}

// orientations lists the legal ways to lay the part down, unrotated first.
func orientations(p model.Part) []orientation {
	out := []orientation{{w: p.Width, h: p.Height, deg: 0}}
	if p.RotationAllowed && p.Width != p.Height {
		out = append(out, orientation{w: p.Height, h: p.Width, deg: 90})
	}
	return out
}

// placeShelf packs parts into horizontal shelves of descending height.
// Parts sort by height descending (width descending on ties) so each shelf
// opens with its tallest occupant and later parts only fill sideways.
func placeShelf(ctx context.Context, parts []model.Part, sheetW, sheetH float64, settings model.Settings) ([]model.PlacedPart, []model.Part) {
	sorted := make([]model.Part, len(parts))
	copy(sorted, parts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Height != sorted[j].Height {
			return sorted[i].Height > sorted[j].Height
		}
		return sorted[i].Width > sorted[j].Width
	})

	st := shelfState{
		usableRight:  sheetW - settings.Margin,
		usableBottom: sheetH - settings.Margin,
		kerf:         settings.Kerf,
		shelfY:       settings.Margin,
		cursorX:      settings.Margin,
		shelfStartX:  settings.Margin,
	}

	var placed []model.PlacedPart
	var remaining []model.Part

	for i, part := range sorted {
		if i%checkEvery == checkEvery-1 && cancelled(ctx) {
			remaining = append(remaining, sorted[i:]...)
			break
		}

		pp, ok := st.place(part)
		if !ok {
			remaining = append(remaining, part)
			continue
		}
		placed = append(placed, pp)
	}
	return placed, remaining
}

// place tries the current shelf first, then a new shelf above it. Within
// each, both orientations compete on wasted vertical shelf space.
func (st *shelfState) place(part model.Part) (model.PlacedPart, bool) {
	if o, ok := st.bestOnCurrentShelf(part); ok {
		pp := st.commit(part, o)
		return pp, true
	}
	if o, ok := st.bestOnNewShelf(part); ok {
		st.openShelf()
		pp := st.commit(part, o)
		return pp, true
	}
	return model.PlacedPart{}, false
}

// bestOnCurrentShelf picks the orientation that fits the remaining shelf
// width and wastes the least vertical space relative to the shelf height.
// A part taller than the shelf may still grow it while room remains below.
func (st *shelfState) bestOnCurrentShelf(part model.Part) (orientation, bool) {
	bestWaste := 0.0
	var best orientation
	found := false

	for _, o := range orientations(part) {
		if st.cursorX+o.w > st.usableRight+epsilon {
			continue
		}
		top := st.shelfHeight
		if o.h > top {
			top = o.h
		}
		if st.shelfY+top > st.usableBottom+epsilon {
			continue
		}
		waste := top - o.h
		if !found || waste < bestWaste {
			found = true
			bestWaste = waste
			best = o
		}
	}
	return best, found
}

// bestOnNewShelf picks the orientation that opens the shortest possible new
// shelf, since a fresh shelf consumes exactly the part's height.
func (st *shelfState) bestOnNewShelf(part model.Part) (orientation, bool) {
	newY := st.shelfY + st.shelfHeight
	if st.shelfHeight > 0 {
		newY += st.kerf
	}

	bestH := 0.0
	var best orientation
	found := false

	for _, o := range orientations(part) {
		if st.shelfStartX+o.w > st.usableRight+epsilon {
			continue
		}
		if newY+o.h > st.usableBottom+epsilon {
			continue
		}
		if !found || o.h < bestH {
			found = true
			bestH = o.h
			best = o
		}
	}
	return best, found
}

// openShelf starts a new shelf above the tallest part placed so far.
func (st *shelfState) openShelf() {
	newY := st.shelfY + st.shelfHeight
	if st.shelfHeight > 0 {
		newY += st.kerf
	}
	st.shelfY = newY
	st.shelfHeight = 0
	st.cursorX = st.shelfStartX
}

// commit places the part flush at the cursor and advances the skyline.
func (st *shelfState) commit(part model.Part, o orientation) model.PlacedPart {
	pp := model.PlacedPart{
		PartID:      part.ID,
		Label:       part.Label,
		X:           st.cursorX,
		Y:           st.shelfY,
		Width:       o.w,
		Height:      o.h,
		RotationDeg: o.deg,
	}
	st.cursorX += o.w + st.kerf
	if o.h > st.shelfHeight {
		st.shelfHeight = o.h
	}
	return pp
}
