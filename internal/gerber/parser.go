package gerber

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/piwi3910/teardrop/internal/model"
)

// Coord is a point in millimetres.
type Coord struct {
	X, Y float64
}

// Region is one G36/G37 contour read back from a Gerber file.
type Region struct {
	Net    string
	Points []Coord // closing point removed
}

// Outline converts the region back into board units.
func (r Region) Outline(scale float64) []model.Point {
	pts := make([]model.Point, len(r.Points))
	for i, c := range r.Points {
		pts[i] = model.Pt(int64(math.Round(c.X*scale)), int64(math.Round(c.Y*scale)))
	}
	return pts
}

var (
	formatRe = regexp.MustCompile(`^%FSLAX(\d)(\d)Y(\d)(\d)\*%$`)
	coordRe  = regexp.MustCompile(`([XY])([-+]?\d+)`)
	opRe     = regexp.MustCompile(`D0?([123])\*$`)
)

// ParseRegions reads the regions of a Gerber file. Coordinates are
// modal: an omitted X or Y keeps its previous value. Inch files are
// converted to millimetres.
func ParseRegions(code string) []Region {
	var regions []Region

	decimals := 6
	unit := 1.0
	net := ""
	inRegion := false
	extraContour := false
	var current *Region
	curX, curY := 0.0, 0.0

	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "G04") {
			continue
		}

		switch {
		case formatRe.MatchString(line):
			m := formatRe.FindStringSubmatch(line)
			decimals, _ = strconv.Atoi(m[2])
			continue
		case line == "%MOIN*%":
			unit = 25.4
			continue
		case line == "%MOMM*%":
			unit = 1
			continue
		case strings.HasPrefix(line, "%TO.N,"):
			net = strings.TrimSuffix(strings.TrimPrefix(line, "%TO.N,"), "*%")
			continue
		case line == "%TD*%":
			net = ""
			continue
		case line == "G36*":
			inRegion = true
			extraContour = false
			current = &Region{Net: net}
			continue
		case line == "G37*":
			if current != nil {
				current.Points = closeContour(current.Points)
				if len(current.Points) >= 3 {
					regions = append(regions, *current)
				}
			}
			inRegion = false
			current = nil
			continue
		}

		op := opRe.FindStringSubmatch(line)
		if op == nil {
			continue
		}
		for _, m := range coordRe.FindAllStringSubmatch(line, -1) {
			raw, err := strconv.ParseInt(m[2], 10, 64)
			if err != nil {
				continue
			}
			val := float64(raw) / math.Pow10(decimals) * unit
			if m[1] == "X" {
				curX = val
			} else {
				curY = val
			}
		}

		if !inRegion || current == nil {
			continue
		}
		switch op[1] {
		case "2":
			// A second move inside a region starts another contour; only
			// the first is kept.
			if len(current.Points) == 0 {
				current.Points = append(current.Points, Coord{curX, curY})
			} else {
				extraContour = true
			}
		case "1":
			if !extraContour {
				current.Points = append(current.Points, Coord{curX, curY})
			}
		}
	}

	return regions
}

// closeContour drops the explicit closing point of a contour.
func closeContour(pts []Coord) []Coord {
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		return pts[:len(pts)-1]
	}
	return pts
}
