package model

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// Point is a 2D coordinate in integer board units.
type Point struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(float64(p.X-q.X), float64(p.Y-q.Y))
}

// Layer names a board layer, e.g. "F.Cu" or "B.Cu".
type Layer string

const (
	FrontCopper Layer = "F.Cu"
	BackCopper  Layer = "B.Cu"
)

// IsCopper reports whether the layer is a copper layer.
func (l Layer) IsCopper() bool {
	return strings.HasSuffix(string(l), ".Cu")
}

// Affinity describes which copper layers an anchor can connect to.
type Affinity int

const (
	AffinityNone  Affinity = iota // No copper: never a teardrop anchor
	AffinityAll                   // Vias and through-hole pads
	AffinityFront                 // Surface-mount pad on the front side
	AffinityBack                  // Surface-mount pad on the back side
)

func (a Affinity) String() string {
	switch a {
	case AffinityAll:
		return "all"
	case AffinityFront:
		return "front"
	case AffinityBack:
		return "back"
	default:
		return "none"
	}
}

// Allows reports whether a track on the given layer may attach to an
// anchor with this affinity.
func (a Affinity) Allows(l Layer) bool {
	switch a {
	case AffinityAll:
		return l.IsCopper()
	case AffinityFront:
		return l == FrontCopper
	case AffinityBack:
		return l == BackCopper
	default:
		return false
	}
}

// AnchorKind distinguishes vias from pads.
type AnchorKind int

const (
	AnchorVia AnchorKind = iota
	AnchorPad
)

func (k AnchorKind) String() string {
	if k == AnchorPad {
		return "pad"
	}
	return "via"
}

// Anchor is the round target a teardrop widens toward. It is a read-only
// snapshot taken at the start of a run.
type Anchor struct {
	Kind     AnchorKind
	Position Point
	Diameter int64
	Drill    int64
	Affinity Affinity
	Net      string
	Selected bool
}

// Radius returns half the anchor diameter.
func (a Anchor) Radius() float64 {
	return float64(a.Diameter) / 2
}

// TrackKind distinguishes straight segments from arcs.
type TrackKind int

const (
	TrackStraight TrackKind = iota
	TrackArc
)

func (k TrackKind) String() string {
	if k == TrackArc {
		return "arc"
	}
	return "straight"
}

// Track is a copper track segment. Arcs additionally carry their center
// and signed included angle; the radius and reference angle derive from
// Start-Center.
type Track struct {
	ID     string    `json:"id"`
	Kind   TrackKind `json:"kind"`
	Start  Point     `json:"start"`
	End    Point     `json:"end"`
	Width  int64     `json:"width"`
	Layer  Layer     `json:"layer"`
	Net    string    `json:"net"`
	Center Point     `json:"center,omitempty"` // arcs only
	Angle  float64   `json:"angle,omitempty"`  // arcs only, degrees, positive is counter-clockwise

	// Clearance to other nets, carried onto the track's teardrops
	Clearance int64 `json:"clearance,omitempty"`
}

// NewTrack creates a straight track with a generated ID.
func NewTrack(start, end Point, width int64, layer Layer, net string) Track {
	return Track{
		ID:    uuid.New().String()[:8],
		Kind:  TrackStraight,
		Start: start,
		End:   end,
		Width: width,
		Layer: layer,
		Net:   net,
	}
}

// NewArcTrack creates an arc track starting at start, turning around
// center by angle degrees. The end point is derived from the sweep.
func NewArcTrack(start, center Point, angle float64, width int64, layer Layer, net string) Track {
	r := start.Distance(center)
	a0 := math.Atan2(float64(start.Y-center.Y), float64(start.X-center.X))
	a1 := a0 + angle*math.Pi/180
	end := Point{
		X: center.X + int64(math.Round(r*math.Cos(a1))),
		Y: center.Y + int64(math.Round(r*math.Sin(a1))),
	}
	return Track{
		ID:     uuid.New().String()[:8],
		Kind:   TrackArc,
		Start:  start,
		End:    end,
		Width:  width,
		Layer:  layer,
		Net:    net,
		Center: center,
		Angle:  angle,
	}
}

// Length returns the centerline length of the track.
func (t Track) Length() float64 {
	if t.Kind == TrackArc {
		return t.Start.Distance(t.Center) * math.Abs(t.Angle) * math.Pi / 180
	}
	return t.Start.Distance(t.End)
}

// IsPointOnEnds reports whether p lies within dist of either endpoint.
func (t Track) IsPointOnEnds(p Point, dist float64) bool {
	return t.Start.Distance(p) <= dist || t.End.Distance(p) <= dist
}

// Via is a plated hole connecting copper layers.
type Via struct {
	ID       string `json:"id"`
	Position Point  `json:"position"`
	Diameter int64  `json:"diameter"`
	Drill    int64  `json:"drill"`
	Net      string `json:"net"`
	Selected bool   `json:"selected,omitempty"`
}

// NewVia creates a via with a generated ID.
func NewVia(pos Point, diameter, drill int64, net string) Via {
	return Via{
		ID:       uuid.New().String()[:8],
		Position: pos,
		Diameter: diameter,
		Drill:    drill,
		Net:      net,
	}
}

// PadMount is the mounting technology of a pad.
type PadMount string

const (
	MountThroughHole PadMount = "tht"
	MountSMD         PadMount = "smd"
	MountConnector   PadMount = "conn"
	MountNPTH        PadMount = "npth"
)

// Size is a width/height pair in board units.
type Size struct {
	W int64 `json:"w"`
	H int64 `json:"h"`
}

// Pad is a component pad.
type Pad struct {
	ID       string   `json:"id"`
	Position Point    `json:"position"`
	Size     Size     `json:"size"`
	Drill    int64    `json:"drill,omitempty"`
	Mount    PadMount `json:"mount"`
	Layers   []Layer  `json:"layers"`
	Net      string   `json:"net"`
	Selected bool     `json:"selected,omitempty"`
}

// NewPad creates a pad with a generated ID.
func NewPad(pos Point, size Size, mount PadMount, layers []Layer, net string) Pad {
	return Pad{
		ID:       uuid.New().String()[:8],
		Position: pos,
		Size:     size,
		Mount:    mount,
		Layers:   layers,
		Net:      net,
	}
}

// IsOnLayer reports whether the pad has copper on the given layer.
func (p Pad) IsOnLayer(l Layer) bool {
	for _, pl := range p.Layers {
		if pl == l {
			return true
		}
	}
	return false
}

// HasCopper reports whether the pad occupies any copper layer.
func (p Pad) HasCopper() bool {
	for _, l := range p.Layers {
		if l.IsCopper() {
			return true
		}
	}
	return false
}

// Zone is a filled copper region. The outline is implicitly closed: the
// last point connects back to the first.
type Zone struct {
	ID           string  `json:"id"`
	Net          string  `json:"net"`
	Layer        Layer   `json:"layer"`
	Priority     int     `json:"priority"`
	Outline      []Point `json:"outline"`
	Filled       bool    `json:"filled,omitempty"`
	FilledArea   float64 `json:"filled_area,omitempty"`
	MinThickness int64   `json:"min_thickness,omitempty"`
	Clearance    int64   `json:"clearance,omitempty"`
}

// BoundingBox returns the min and max corners of the outline.
func (z Zone) BoundingBox() (min, max Point) {
	if len(z.Outline) == 0 {
		return Point{}, Point{}
	}
	min, max = z.Outline[0], z.Outline[0]
	for _, p := range z.Outline[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// BoundingBoxCenter returns the center of the outline's bounding box.
func (z Zone) BoundingBoxCenter() Point {
	min, max := z.BoundingBox()
	return Point{X: (min.X + max.X) / 2, Y: (min.Y + max.Y) / 2}
}
