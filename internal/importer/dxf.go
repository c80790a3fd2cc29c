package importer

import (
	"fmt"
	"math"
	"strings"

	"github.com/piwi3910/teardrop/internal/board"
	"github.com/piwi3910/teardrop/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
	"github.com/yofu/dxf/table"
)

// DXFOptions controls how drawing entities map onto copper items.
type DXFOptions struct {
	Scale        float64     // board units per drawing unit
	TrackWidth   int64       // width given to LINE, ARC and open polyline tracks
	ViaDrill     int64       // drill for CIRCLE vias; half the diameter when zero
	DefaultLayer model.Layer // used for entities on layer "0" or without a copper layer
	DefaultNet   string
}

// DefaultDXFOptions reads millimetre drawings into nanometre board units
// with 0.25mm tracks on the front copper.
func DefaultDXFOptions() DXFOptions {
	return DXFOptions{
		Scale:        1e6,
		TrackWidth:   250000,
		DefaultLayer: model.FrontCopper,
	}
}

// layered is satisfied by entities that carry a layer reference.
type layered interface {
	Layer() *table.Layer
}

// ImportDXF imports copper geometry from a DXF file. LINE entities become
// straight tracks, ARCs become arc tracks, CIRCLEs become vias, open
// LWPOLYLINEs become chains of tracks and closed ones become user zones.
// A layer named "F.Cu/GND" puts the entity on F.Cu in net GND.
func ImportDXF(path string, opts DXFOptions) ImportResult {
	result := ImportResult{}

	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.DefaultLayer == "" {
		opts.DefaultLayer = model.FrontCopper
	}
	if opts.TrackWidth <= 0 {
		result.Errors = append(result.Errors, "Track width must be positive")
		return result
	}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	doc := board.New("")
	skippedLayers := map[string]int{}
	conv := converter{opts: opts}

	for _, ent := range entities {
		layerName := ""
		if l, ok := ent.(layered); ok && l.Layer() != nil {
			layerName = l.Layer().Name()
		}
		layer, net, ok := parseDXFLayer(layerName, opts)
		if !ok {
			skippedLayers[layerName]++
			continue
		}

		switch e := ent.(type) {
		case *entity.Line:
			start, end := conv.point(e.Start[0], e.Start[1]), conv.point(e.End[0], e.End[1])
			if start == end {
				result.Warnings = append(result.Warnings, "Skipped zero-length LINE")
				continue
			}
			doc.Tracks = append(doc.Tracks, model.NewTrack(start, end, opts.TrackWidth, layer, net))

		case *entity.Arc:
			doc.Tracks = append(doc.Tracks, conv.arc(e, layer, net))

		case *entity.Circle:
			dia := int64(math.Round(2 * e.Radius * opts.Scale))
			drill := opts.ViaDrill
			if drill <= 0 {
				drill = dia / 2
			}
			doc.Vias = append(doc.Vias, model.NewVia(conv.point(e.Center[0], e.Center[1]), dia, drill, net))

		case *entity.LwPolyline:
			if len(e.Vertices) < 2 {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 2 vertices")
				continue
			}
			if e.Closed {
				outline := conv.polylineOutline(e)
				if len(outline) < 3 {
					result.Warnings = append(result.Warnings, "Skipped closed LWPOLYLINE with fewer than 3 vertices")
					continue
				}
				doc.Zones = append(doc.Zones, model.Zone{
					ID:       fmt.Sprintf("dxf-%d", len(doc.Zones)+1),
					Net:      net,
					Layer:    layer,
					Priority: 1,
					Outline:  outline,
				})
				continue
			}
			doc.Tracks = append(doc.Tracks, conv.polylineTracks(e, layer, net)...)

		default:
			// Unsupported entity types are silently skipped
		}
	}

	for name, n := range skippedLayers {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Skipped %d entities on non-copper layer %q", n, name))
	}

	if len(doc.Tracks)+len(doc.Vias)+len(doc.Zones) == 0 {
		result.Errors = append(result.Errors, "No copper geometry found in DXF file")
		return result
	}

	doc.Normalize()
	result.Board = doc
	return result
}

// parseDXFLayer splits a drawing layer name into copper layer and net.
// Layer "0" and unnamed layers map to the defaults.
func parseDXFLayer(name string, opts DXFOptions) (model.Layer, string, bool) {
	if name == "" || name == "0" {
		return opts.DefaultLayer, opts.DefaultNet, true
	}
	layerPart, net, found := strings.Cut(name, "/")
	if !found {
		net = opts.DefaultNet
	}
	layer := model.Layer(strings.TrimSpace(layerPart))
	if !layer.IsCopper() {
		return "", "", false
	}
	return layer, strings.TrimSpace(net), true
}

type converter struct {
	opts DXFOptions
}

func (c converter) point(x, y float64) model.Point {
	return model.Pt(int64(math.Round(x*c.opts.Scale)), int64(math.Round(y*c.opts.Scale)))
}

// arc converts a counter-clockwise DXF ARC into an arc track starting at
// the entity's start angle.
func (c converter) arc(a *entity.Arc, layer model.Layer, net string) model.Track {
	cx, cy, r := a.Circle.Center[0], a.Circle.Center[1], a.Circle.Radius
	startRad := a.Angle[0] * math.Pi / 180
	sweep := math.Mod(a.Angle[1]-a.Angle[0], 360)
	if sweep <= 0 {
		sweep += 360
	}
	start := c.point(cx+r*math.Cos(startRad), cy+r*math.Sin(startRad))
	return model.NewArcTrack(start, c.point(cx, cy), sweep, c.opts.TrackWidth, layer, net)
}

// polylineTracks turns an open polyline into connected tracks. Bulged
// vertices produce arc tracks.
func (c converter) polylineTracks(lw *entity.LwPolyline, layer model.Layer, net string) []model.Track {
	var tracks []model.Track
	for i := 0; i+1 < len(lw.Vertices); i++ {
		v, next := lw.Vertices[i], lw.Vertices[i+1]
		start, end := c.point(v[0], v[1]), c.point(next[0], next[1])
		if start == end {
			continue
		}
		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) > 1e-9 {
			cx, cy := bulgeCenter(v[0], v[1], next[0], next[1], bulge)
			sweep := 4 * math.Atan(bulge) * 180 / math.Pi
			tracks = append(tracks, model.NewArcTrack(start, c.point(cx, cy), sweep, c.opts.TrackWidth, layer, net))
			continue
		}
		tracks = append(tracks, model.NewTrack(start, end, c.opts.TrackWidth, layer, net))
	}
	return tracks
}

// polylineOutline flattens a closed polyline into zone outline points,
// interpolating bulged edges.
func (c converter) polylineOutline(lw *entity.LwPolyline) []model.Point {
	var outline []model.Point
	n := len(lw.Vertices)
	for i := 0; i < n; i++ {
		v := lw.Vertices[i]
		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) <= 1e-9 {
			outline = append(outline, c.point(v[0], v[1]))
			continue
		}
		next := lw.Vertices[(i+1)%n]
		cx, cy := bulgeCenter(v[0], v[1], next[0], next[1], bulge)
		r := math.Hypot(v[0]-cx, v[1]-cy)
		a0 := math.Atan2(v[1]-cy, v[0]-cx)
		sweep := 4 * math.Atan(bulge)
		const segs = 16
		for k := 0; k < segs; k++ {
			a := a0 + sweep*float64(k)/segs
			outline = append(outline, c.point(cx+r*math.Cos(a), cy+r*math.Sin(a)))
		}
	}
	return outline
}

// bulgeCenter returns the centre of the arc between two polyline vertices.
// The bulge is the tangent of 1/4 the included angle; positive bulges turn
// counter-clockwise.
func bulgeCenter(x1, y1, x2, y2, bulge float64) (float64, float64) {
	mx, my := (x1+x2)/2, (y1+y2)/2
	dx, dy := x2-x1, y2-y1
	chordLen := math.Hypot(dx, dy)
	if chordLen < 1e-12 {
		return x1, y1
	}

	// Signed distance from chord midpoint to centre along the left normal
	dist := chordLen / 2 * (1 - bulge*bulge) / (2 * bulge)
	perpX, perpY := -dy/chordLen, dx/chordLen
	return mx + perpX*dist, my + perpY*dist
}
