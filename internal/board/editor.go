package board

import "github.com/piwi3910/teardrop/internal/model"

// Editor exposes a Document to the placement engine. Enumeration returns
// copies so a pass works on a stable snapshot while zones are added.
type Editor struct {
	doc *Document
}

// NewEditor wraps doc.
func NewEditor(doc *Document) *Editor {
	return &Editor{doc: doc}
}

// Document returns the wrapped document.
func (e *Editor) Document() *Document { return e.doc }

func (e *Editor) Tracks() ([]model.Track, error) {
	return append([]model.Track(nil), e.doc.Tracks...), nil
}

func (e *Editor) Vias() ([]model.Via, error) {
	return append([]model.Via(nil), e.doc.Vias...), nil
}

func (e *Editor) Pads() ([]model.Pad, error) {
	return append([]model.Pad(nil), e.doc.Pads...), nil
}

func (e *Editor) Zones() ([]model.Zone, error) {
	return append([]model.Zone(nil), e.doc.Zones...), nil
}

func (e *Editor) AddZone(z model.Zone) error { return e.doc.AddZone(z) }

func (e *Editor) RemoveZone(id string) error { return e.doc.RemoveZone(id) }
