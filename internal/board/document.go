// Package board holds an in-memory board document and a simple polygon
// filler for it.
package board

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/piwi3910/teardrop/internal/model"
)

// Document is a board: copper tracks, vias, pads and zones, in integer
// board units. It is the JSON board format read and written by the CLI.
type Document struct {
	Name   string        `json:"name,omitempty"`
	Units  string        `json:"units,omitempty"` // informational, e.g. "nm"
	Tracks []model.Track `json:"tracks"`
	Vias   []model.Via   `json:"vias"`
	Pads   []model.Pad   `json:"pads"`
	Zones  []model.Zone  `json:"zones"`
}

// New returns an empty document.
func New(name string) *Document {
	return &Document{
		Name:   name,
		Units:  "nm",
		Tracks: []model.Track{},
		Vias:   []model.Via{},
		Pads:   []model.Pad{},
		Zones:  []model.Zone{},
	}
}

// AddZone appends a zone, assigning an ID when it has none.
func (d *Document) AddZone(z model.Zone) error {
	if z.ID == "" {
		z.ID = uuid.New().String()[:8]
	}
	for _, existing := range d.Zones {
		if existing.ID == z.ID {
			return fmt.Errorf("zone %s already exists", z.ID)
		}
	}
	d.Zones = append(d.Zones, z)
	return nil
}

// RemoveZone deletes the zone with the given ID.
func (d *Document) RemoveZone(id string) error {
	for i, z := range d.Zones {
		if z.ID == id {
			d.Zones = append(d.Zones[:i], d.Zones[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("zone %s not found", id)
}

// Normalize fills in missing IDs and nil slices, e.g. after decoding a
// hand-written board file.
func (d *Document) Normalize() {
	if d.Tracks == nil {
		d.Tracks = []model.Track{}
	}
	if d.Vias == nil {
		d.Vias = []model.Via{}
	}
	if d.Pads == nil {
		d.Pads = []model.Pad{}
	}
	if d.Zones == nil {
		d.Zones = []model.Zone{}
	}
	for i := range d.Tracks {
		if d.Tracks[i].ID == "" {
			d.Tracks[i].ID = uuid.New().String()[:8]
		}
	}
	for i := range d.Vias {
		if d.Vias[i].ID == "" {
			d.Vias[i].ID = uuid.New().String()[:8]
		}
	}
	for i := range d.Pads {
		if d.Pads[i].ID == "" {
			d.Pads[i].ID = uuid.New().String()[:8]
		}
	}
	for i := range d.Zones {
		if d.Zones[i].ID == "" {
			d.Zones[i].ID = uuid.New().String()[:8]
		}
	}
}

// Teardrops returns the teardrop zones of the document.
func (d *Document) Teardrops() []model.Zone {
	var out []model.Zone
	for _, z := range d.Zones {
		if model.IsTeardrop(z) {
			out = append(out, z)
		}
	}
	return out
}

// CopperLayers returns the copper layers used by tracks and zones, front
// first, back last, inner layers sorted in between.
func (d *Document) CopperLayers() []model.Layer {
	seen := make(map[model.Layer]bool)
	for _, t := range d.Tracks {
		seen[t.Layer] = true
	}
	for _, z := range d.Zones {
		seen[z.Layer] = true
	}
	var inner []model.Layer
	for l := range seen {
		if l.IsCopper() && l != model.FrontCopper && l != model.BackCopper {
			inner = append(inner, l)
		}
	}
	sort.Slice(inner, func(i, j int) bool { return inner[i] < inner[j] })

	var layers []model.Layer
	if seen[model.FrontCopper] {
		layers = append(layers, model.FrontCopper)
	}
	layers = append(layers, inner...)
	if seen[model.BackCopper] {
		layers = append(layers, model.BackCopper)
	}
	return layers
}
