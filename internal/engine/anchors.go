package engine

import "github.com/piwi3910/teardrop/internal/model"

// CollectAnchors turns vias and pads into anchor snapshots. Vias are always
// included; pads only when their mount is listed in mounts and they carry
// copper. The second result holds the anchors the user selected.
func CollectAnchors(vias []model.Via, pads []model.Pad, mounts []model.PadMount) (all, selected []model.Anchor) {
	for _, v := range vias {
		a := model.Anchor{
			Kind:     model.AnchorVia,
			Position: v.Position,
			Diameter: v.Diameter,
			Drill:    v.Drill,
			Affinity: model.AffinityAll,
			Net:      v.Net,
			Selected: v.Selected,
		}
		all = append(all, a)
		if a.Selected {
			selected = append(selected, a)
		}
	}

	for _, p := range pads {
		if !mountAllowed(p.Mount, mounts) {
			continue
		}
		affinity := padAffinity(p)
		if affinity == model.AffinityNone {
			continue
		}
		a := model.Anchor{
			Kind:     model.AnchorPad,
			Position: p.Position,
			Diameter: min(p.Size.W, p.Size.H),
			Drill:    p.Drill,
			Affinity: affinity,
			Net:      p.Net,
			Selected: p.Selected,
		}
		all = append(all, a)
		if a.Selected {
			selected = append(selected, a)
		}
	}
	return all, selected
}

func mountAllowed(m model.PadMount, mounts []model.PadMount) bool {
	for _, allowed := range mounts {
		if m == allowed {
			return true
		}
	}
	return false
}

// padAffinity classifies a pad by the copper it occupies. Surface-mount
// pads bind to the single outer layer they sit on.
func padAffinity(p model.Pad) model.Affinity {
	if !p.HasCopper() {
		return model.AffinityNone
	}
	if p.Mount != model.MountSMD {
		return model.AffinityAll
	}
	switch {
	case p.IsOnLayer(model.FrontCopper):
		return model.AffinityFront
	case p.IsOnLayer(model.BackCopper):
		return model.AffinityBack
	}
	return model.AffinityNone
}
