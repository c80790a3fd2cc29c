package engine

import (
	"testing"

	"github.com/piwi3910/teardrop/internal/geometry"
	"github.com/piwi3910/teardrop/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectAnchors(t *testing.T) {
	vias := []model.Via{model.NewVia(model.Pt(0, 0), 600, 300, "GND")}
	vias[0].Selected = true
	pads := []model.Pad{
		model.NewPad(model.Pt(1000, 0), model.Size{W: 1500, H: 900}, model.MountThroughHole, []model.Layer{model.FrontCopper, model.BackCopper}, "A"),
		model.NewPad(model.Pt(2000, 0), model.Size{W: 500, H: 700}, model.MountSMD, []model.Layer{model.BackCopper, "B.Mask"}, "B"),
		model.NewPad(model.Pt(3000, 0), model.Size{W: 500, H: 500}, model.MountSMD, []model.Layer{"F.Paste"}, ""),
		model.NewPad(model.Pt(4000, 0), model.Size{W: 500, H: 500}, model.MountNPTH, nil, ""),
	}

	all, selected := CollectAnchors(vias, pads, []model.PadMount{model.MountThroughHole, model.MountSMD})
	require.Len(t, all, 3)
	require.Len(t, selected, 1)

	assert.Equal(t, model.AnchorVia, all[0].Kind)
	assert.Equal(t, model.AffinityAll, all[0].Affinity)

	assert.Equal(t, model.AnchorPad, all[1].Kind)
	assert.Equal(t, model.AffinityAll, all[1].Affinity)
	assert.Equal(t, int64(900), all[1].Diameter, "smaller pad dimension")

	assert.Equal(t, model.AffinityBack, all[2].Affinity)
	assert.Equal(t, int64(500), all[2].Diameter)

	thtOnly, _ := CollectAnchors(vias, pads, []model.PadMount{model.MountThroughHole})
	assert.Len(t, thtOnly, 2)
}

func TestTrackIndex(t *testing.T) {
	a := model.NewTrack(model.Pt(0, 0), model.Pt(100, 0), 10, model.FrontCopper, "N1")
	b := model.NewTrack(model.Pt(100, 0), model.Pt(200, 0), 10, model.FrontCopper, "N1")
	c := model.NewTrack(model.Pt(100, 0), model.Pt(100, 100), 10, model.BackCopper, "N1")
	d := model.NewTrack(model.Pt(100, 0), model.Pt(100, -100), 10, model.FrontCopper, "N2")

	idx := NewTrackIndex([]model.Track{a, b, c, d})
	assert.Equal(t, 4, idx.Len())
	assert.Equal(t, []model.Track{a, b}, idx.Lookup(model.FrontCopper, "N1"))
	assert.Empty(t, idx.Lookup(model.BackCopper, "N2"))

	touching := idx.Touching(model.FrontCopper, "N1", model.Pt(101, 1), 5)
	assert.Equal(t, []model.Track{a, b}, touching)
	assert.Empty(t, idx.Touching(model.FrontCopper, "N1", model.Pt(50, 0), 5))
}

func planShape(t *testing.T, tr model.Track, a model.Anchor) model.Zone {
	t.Helper()
	out, err := geometry.ComputeOutline(tr, a, model.Params{HPercent: 50, VPercent: 80, Segs: 2}, nil)
	require.NoError(t, err)
	return model.NewTeardropZone(out.Points, tr)
}

func TestBelongsTo(t *testing.T) {
	anchor := model.Anchor{Position: model.Pt(0, 0), Diameter: 800, Affinity: model.AffinityAll, Net: "GND"}
	tr := model.NewTrack(model.Pt(0, 0), model.Pt(3000, 0), 200, model.FrontCopper, "GND")
	zone := planShape(t, tr, anchor)

	assert.True(t, BelongsTo(zone, tr, anchor))

	// Another track leaving the same via in a different direction
	other := model.NewTrack(model.Pt(0, 0), model.Pt(0, 3000), 200, model.FrontCopper, "GND")
	assert.False(t, BelongsTo(zone, other, anchor))

	// Same geometry on another layer
	back := tr
	back.Layer = model.BackCopper
	assert.False(t, BelongsTo(zone, back, anchor))

	// A distant anchor is not covered
	far := anchor
	far.Position = model.Pt(5000, 5000)
	assert.False(t, BelongsTo(zone, tr, far))
}

func TestCoversExit(t *testing.T) {
	anchor := model.Anchor{Position: model.Pt(0, 0), Diameter: 800, Affinity: model.AffinityAll, Net: "GND"}
	tr := model.NewTrack(model.Pt(0, 0), model.Pt(3000, 0), 200, model.FrontCopper, "GND")
	zone := planShape(t, tr, anchor)

	assert.True(t, CoversExit(zone, tr, anchor))

	other := model.NewTrack(model.Pt(0, 0), model.Pt(0, 3000), 200, model.FrontCopper, "GND")
	assert.False(t, CoversExit(zone, other, anchor))

	foreign := tr
	foreign.Net = "VCC"
	assert.False(t, CoversExit(zone, foreign, anchor))

	back := tr
	back.Layer = model.BackCopper
	assert.False(t, CoversExit(zone, back, anchor))
}

// The bounding-box test is approximate: a same-net track running through
// the anchor along the teardrop axis is indistinguishable from its owner.
func TestBelongsToIsApproximate(t *testing.T) {
	anchor := model.Anchor{Position: model.Pt(0, 0), Diameter: 800, Affinity: model.AffinityAll, Net: "GND"}
	tr := model.NewTrack(model.Pt(0, 0), model.Pt(3000, 0), 200, model.FrontCopper, "GND")
	zone := planShape(t, tr, anchor)

	overlapping := model.NewTrack(model.Pt(-1000, 0), model.Pt(1000, 0), 200, model.FrontCopper, "GND")
	assert.True(t, BelongsTo(zone, overlapping, anchor))
}

func TestCollectExisting(t *testing.T) {
	tr := model.NewTrack(model.Pt(0, 0), model.Pt(10, 0), 1, model.FrontCopper, "GND")
	tr2 := model.NewTrack(model.Pt(0, 0), model.Pt(10, 0), 1, model.FrontCopper, "VCC")
	zones := []model.Zone{
		model.NewTeardropZone(nil, tr),
		model.NewTeardropZone(nil, tr),
		model.NewTeardropZone(nil, tr2),
		{ID: "user", Net: "GND"},
	}
	byNet := CollectExisting(zones)
	assert.Len(t, byNet["GND"], 2)
	assert.Len(t, byNet["VCC"], 1)
}

func TestOverlapsSameNetZone(t *testing.T) {
	anchor := model.Anchor{Position: model.Pt(0, 0), Diameter: 800}
	tr := model.NewTrack(model.Pt(0, 0), model.Pt(3000, 0), 200, model.FrontCopper, "GND")
	square := []model.Point{{-1000, -1000}, {1000, -1000}, {1000, 1000}, {-1000, 1000}}

	tests := []struct {
		name string
		zone model.Zone
		want bool
	}{
		{"same net and layer", model.Zone{Net: "GND", Layer: model.FrontCopper, Outline: square}, true},
		{"other net", model.Zone{Net: "VCC", Layer: model.FrontCopper, Outline: square}, false},
		{"other layer", model.Zone{Net: "GND", Layer: model.BackCopper, Outline: square}, false},
		{"teardrop", model.Zone{Net: "GND", Layer: model.FrontCopper, Outline: square, Priority: model.TeardropPriority}, false},
		{"elsewhere", model.Zone{Net: "GND", Layer: model.FrontCopper, Outline: []model.Point{{5000, 5000}, {6000, 5000}, {6000, 6000}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OverlapsSameNetZone([]model.Zone{tt.zone}, anchor, tr))
		})
	}
}
