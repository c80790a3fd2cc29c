package board

import (
	"fmt"

	"github.com/piwi3910/teardrop/internal/geometry"
	"github.com/piwi3910/teardrop/internal/model"
)

// Filler computes zone fills for a Document. A zone's fill is its outline
// area; zones narrower than their minimum thickness stay unfilled.
type Filler struct {
	doc *Document

	// Passes counts Fill calls.
	Passes int
}

// NewFiller creates a filler writing into doc.
func NewFiller(doc *Document) *Filler {
	return &Filler{doc: doc}
}

// Fill recomputes the fill of the given zones in the document.
func (f *Filler) Fill(zones []model.Zone) error {
	f.Passes++
	index := make(map[string]int, len(f.doc.Zones))
	for i, z := range f.doc.Zones {
		index[z.ID] = i
	}

	for _, z := range zones {
		i, ok := index[z.ID]
		if !ok {
			return fmt.Errorf("zone %s not on board", z.ID)
		}
		target := &f.doc.Zones[i]
		area := geometry.Area(target.Outline)
		target.Filled = area > 0 && fitsMinThickness(target.Outline, target.MinThickness)
		target.FilledArea = 0
		if target.Filled {
			target.FilledArea = area
		}
	}
	return nil
}

// fitsMinThickness reports whether the outline's bounding box admits a
// stroke of the minimum thickness in both directions.
func fitsMinThickness(outline []model.Point, minThickness int64) bool {
	if minThickness <= 0 {
		return true
	}
	b := geometry.Bounds(outline)
	size := b.Size()
	t := float64(minThickness)
	return size.X >= t && size.Y >= t
}
