package board

import (
	"testing"

	"github.com/piwi3910/teardrop/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRemoveZone(t *testing.T) {
	doc := New("test")
	z := model.Zone{Net: "GND", Layer: model.FrontCopper, Outline: []model.Point{{0, 0}, {100, 0}, {0, 100}}}

	require.NoError(t, doc.AddZone(z))
	require.Len(t, doc.Zones, 1)
	id := doc.Zones[0].ID
	assert.NotEmpty(t, id, "missing ID should be assigned")

	dup := doc.Zones[0]
	assert.Error(t, doc.AddZone(dup))

	require.NoError(t, doc.RemoveZone(id))
	assert.Empty(t, doc.Zones)
	assert.Error(t, doc.RemoveZone(id))
}

func TestEditorReturnsCopies(t *testing.T) {
	doc := New("test")
	doc.Tracks = append(doc.Tracks, model.NewTrack(model.Pt(0, 0), model.Pt(10, 0), 1, model.FrontCopper, "A"))
	ed := NewEditor(doc)

	tracks, err := ed.Tracks()
	require.NoError(t, err)
	tracks[0].Width = 99
	assert.Equal(t, int64(1), doc.Tracks[0].Width)

	zones, err := ed.Zones()
	require.NoError(t, err)
	require.NoError(t, ed.AddZone(model.Zone{ID: "z1"}))
	assert.Empty(t, zones, "snapshot is unaffected by later mutation")
	assert.Len(t, doc.Zones, 1)
}

func TestNormalizeAssignsIDs(t *testing.T) {
	doc := &Document{
		Tracks: []model.Track{{Start: model.Pt(0, 0), End: model.Pt(1, 0)}},
		Vias:   []model.Via{{Diameter: 10}},
	}
	doc.Normalize()
	assert.NotEmpty(t, doc.Tracks[0].ID)
	assert.NotEmpty(t, doc.Vias[0].ID)
	assert.NotNil(t, doc.Pads)
	assert.NotNil(t, doc.Zones)
}

func TestCopperLayersOrder(t *testing.T) {
	doc := New("test")
	doc.Tracks = []model.Track{
		{Layer: model.BackCopper},
		{Layer: "In2.Cu"},
		{Layer: model.FrontCopper},
		{Layer: "In1.Cu"},
	}
	doc.Zones = []model.Zone{{Layer: "Edge.Cuts"}}
	assert.Equal(t, []model.Layer{model.FrontCopper, "In1.Cu", "In2.Cu", model.BackCopper}, doc.CopperLayers())
}

func TestTeardrops(t *testing.T) {
	doc := New("test")
	tr := model.NewTrack(model.Pt(0, 0), model.Pt(10, 0), 1, model.FrontCopper, "A")
	require.NoError(t, doc.AddZone(model.NewTeardropZone([]model.Point{{0, 0}, {1, 0}, {0, 1}}, tr)))
	require.NoError(t, doc.AddZone(model.Zone{ID: "user", Priority: 1}))
	assert.Len(t, doc.Teardrops(), 1)
}

func TestFillerSetsArea(t *testing.T) {
	doc := New("test")
	require.NoError(t, doc.AddZone(model.Zone{
		ID:      "big",
		Outline: []model.Point{{0, 0}, {100000, 0}, {100000, 100000}, {0, 100000}},
	}))
	require.NoError(t, doc.AddZone(model.Zone{
		ID:           "sliver",
		Outline:      []model.Point{{0, 0}, {100000, 0}, {100000, 10}, {0, 10}},
		MinThickness: model.TeardropMinThickness,
	}))

	f := NewFiller(doc)
	require.NoError(t, f.Fill(doc.Zones))
	assert.Equal(t, 1, f.Passes)

	assert.True(t, doc.Zones[0].Filled)
	assert.Equal(t, 1e10, doc.Zones[0].FilledArea)
	assert.False(t, doc.Zones[1].Filled)
	assert.Zero(t, doc.Zones[1].FilledArea)
}

func TestFillerUnknownZone(t *testing.T) {
	f := NewFiller(New("test"))
	assert.Error(t, f.Fill([]model.Zone{{ID: "missing"}}))
}
