// Package export writes teardrop results to PDF, XLSX, DXF and Gerber
// files.
package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/teardrop/internal/board"
	"github.com/piwi3910/teardrop/internal/engine"
	"github.com/piwi3910/teardrop/internal/geometry"
	"github.com/piwi3910/teardrop/internal/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// layerColor represents an RGB color for a copper layer.
type layerColor struct {
	R, G, B int
}

// layerColors follows the usual EDA convention: red front, blue back,
// then inner layers.
var layerColors = map[model.Layer]layerColor{
	model.FrontCopper: {R: 200, G: 52, B: 52},
	model.BackCopper:  {R: 77, G: 127, B: 196},
}

var innerColors = []layerColor{
	{R: 194, G: 194, B: 0},
	{R: 194, G: 0, B: 194},
	{R: 0, G: 132, B: 132},
	{R: 132, G: 132, B: 0},
}

// teardropColor highlights synthesized fills on the preview.
var teardropColor = layerColor{R: 255, G: 152, B: 0}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF renders the board with its teardrops highlighted on the first
// page, followed by a summary page for the pass described by report.
func ExportPDF(path string, doc *board.Document, report engine.Report) error {
	box, ok := boardBounds(doc)
	if !ok {
		return fmt.Errorf("board has no geometry to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderBoardPage(pdf, doc, box)

	pdf.AddPage()
	if err := renderSummaryPage(pdf, doc, report); err != nil {
		return err
	}

	return pdf.OutputFileAndClose(path)
}

// boardBounds returns the bounding box of every copper item.
func boardBounds(doc *board.Document) (r2.Box, bool) {
	var pts []model.Point
	for _, t := range doc.Tracks {
		pts = append(pts, t.Start, t.End)
	}
	for _, v := range doc.Vias {
		r := v.Diameter / 2
		pts = append(pts, v.Position.Sub(model.Pt(r, r)), v.Position.Add(model.Pt(r, r)))
	}
	for _, p := range doc.Pads {
		half := model.Pt(p.Size.W/2, p.Size.H/2)
		pts = append(pts, p.Position.Sub(half), p.Position.Add(half))
	}
	for _, z := range doc.Zones {
		pts = append(pts, z.Outline...)
	}
	if len(pts) == 0 {
		return r2.Box{}, false
	}
	box := geometry.Bounds(pts)
	size := box.Size()
	if size.X <= 0 && size.Y <= 0 {
		return r2.Box{}, false
	}
	return box, true
}

// pageTransform maps board coordinates onto the drawing area of a page.
type pageTransform struct {
	box     r2.Box
	scale   float64
	offsetX float64
	offsetY float64
}

func newPageTransform(box r2.Box) pageTransform {
	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight

	size := box.Size()
	scale := math.Inf(1)
	if size.X > 0 {
		scale = drawWidth / size.X
	}
	if size.Y > 0 {
		scale = math.Min(scale, drawHeight/size.Y)
	}

	return pageTransform{
		box:     box,
		scale:   scale,
		offsetX: marginLeft + (drawWidth-size.X*scale)/2,
		offsetY: drawAreaTop,
	}
}

func (pt pageTransform) xy(p model.Point) (float64, float64) {
	return pt.offsetX + (float64(p.X)-pt.box.Min.X)*pt.scale,
		pt.offsetY + (float64(p.Y)-pt.box.Min.Y)*pt.scale
}

func (pt pageTransform) length(v int64) float64 {
	return math.Max(float64(v)*pt.scale, 0.05)
}

func colorFor(layer model.Layer, layers []model.Layer) layerColor {
	if c, ok := layerColors[layer]; ok {
		return c
	}
	for i, l := range layers {
		if l == layer {
			return innerColors[i%len(innerColors)]
		}
	}
	return layerColor{R: 128, G: 128, B: 128}
}

// renderBoardPage draws all copper, back layer first, with teardrops on top.
func renderBoardPage(pdf *fpdf.Fpdf, doc *board.Document, box r2.Box) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := "Board"
	if doc.Name != "" {
		title = fmt.Sprintf("Board: %s", doc.Name)
	}
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	size := box.Size()
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Tracks: %d | Vias: %d | Pads: %d | Zones: %d | Teardrops: %d | Extent: %.0f x %.0f",
		len(doc.Tracks), len(doc.Vias), len(doc.Pads), len(doc.Zones), len(doc.Teardrops()), size.X, size.Y)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	pt := newPageTransform(box)
	layers := doc.CopperLayers()

	// Back to front so the front copper stays visible
	for i := len(layers) - 1; i >= 0; i-- {
		layer := layers[i]
		col := colorFor(layer, layers)

		pdf.SetAlpha(0.35, "Normal")
		for _, z := range doc.Zones {
			if z.Layer == layer && !model.IsTeardrop(z) {
				drawZone(pdf, pt, z, col)
			}
		}
		pdf.SetAlpha(1, "Normal")

		pdf.SetDrawColor(col.R, col.G, col.B)
		for _, t := range doc.Tracks {
			if t.Layer == layer {
				drawTrack(pdf, pt, t)
			}
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		for _, p := range doc.Pads {
			if p.IsOnLayer(layer) {
				w, h := pt.length(p.Size.W), pt.length(p.Size.H)
				x, y := pt.xy(p.Position)
				pdf.Rect(x-w/2, y-h/2, w, h, "F")
			}
		}

		pdf.SetAlpha(0.85, "Normal")
		for _, z := range doc.Zones {
			if z.Layer == layer && model.IsTeardrop(z) {
				drawZone(pdf, pt, z, teardropColor)
			}
		}
		pdf.SetAlpha(1, "Normal")
	}

	for _, v := range doc.Vias {
		x, y := pt.xy(v.Position)
		pdf.SetFillColor(160, 160, 160)
		pdf.Circle(x, y, pt.length(v.Diameter)/2, "F")
		pdf.SetFillColor(255, 255, 255)
		pdf.Circle(x, y, pt.length(v.Drill)/2, "F")
	}

	drawLayerLegend(pdf, layers, pageHeight-marginBottom-legendHeight+4)
}

func drawZone(pdf *fpdf.Fpdf, pt pageTransform, z model.Zone, col layerColor) {
	if len(z.Outline) < 3 {
		return
	}
	pts := make([]fpdf.PointType, len(z.Outline))
	for i, p := range z.Outline {
		x, y := pt.xy(p)
		pts[i] = fpdf.PointType{X: x, Y: y}
	}
	pdf.SetFillColor(col.R, col.G, col.B)
	pdf.SetDrawColor(col.R, col.G, col.B)
	pdf.SetLineWidth(0.1)
	pdf.Polygon(pts, "FD")
}

// drawTrack strokes a track with round caps at its copper width. Arcs are
// flattened into short chords.
func drawTrack(pdf *fpdf.Fpdf, pt pageTransform, t model.Track) {
	pdf.SetLineWidth(pt.length(t.Width))
	pdf.SetLineCapStyle("round")
	defer pdf.SetLineCapStyle("butt")

	if t.Kind != model.TrackArc {
		x1, y1 := pt.xy(t.Start)
		x2, y2 := pt.xy(t.End)
		pdf.Line(x1, y1, x2, y2)
		return
	}

	seg := geometry.NewSegment(t)
	const steps = 24
	prev := t.Start
	for i := 1; i <= steps; i++ {
		pos, _ := seg.Sample(seg.Length() * float64(i) / steps)
		next := geometry.ToPoint(pos)
		x1, y1 := pt.xy(prev)
		x2, y2 := pt.xy(next)
		pdf.Line(x1, y1, x2, y2)
		prev = next
	}
}

// drawLayerLegend renders a colour swatch per copper layer.
func drawLayerLegend(pdf *fpdf.Fpdf, layers []model.Layer, y float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0, 0, 0)

	x := marginLeft
	for _, l := range layers {
		col := colorFor(l, layers)
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(x, y+0.5, 3, 3, "F")
		pdf.SetXY(x+4, y)
		label := string(l)
		w := pdf.GetStringWidth(label) + 2
		pdf.CellFormat(w, 4, label, "", 0, "L", false, 0, "")
		x += w + 8
	}

	pdf.SetFillColor(teardropColor.R, teardropColor.G, teardropColor.B)
	pdf.Rect(x, y+0.5, 3, 3, "F")
	pdf.SetXY(x+4, y)
	pdf.CellFormat(30, 4, "Teardrop", "", 0, "L", false, 0, "")
}

// renderSummaryPage draws counts, skip reasons, parameters and a QR code
// carrying the run summary.
func renderSummaryPage(pdf *fpdf.Fpdf, doc *board.Document, report engine.Report) error {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Teardrop Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Result", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Run", report.RunID},
		{"Operation", string(report.Op)},
		{"Outcome", report.Summary()},
		{"Teardrops on board", fmt.Sprintf("%d", len(doc.Teardrops()))},
		{"Skipped pairs", fmt.Sprintf("%d", report.SkippedTotal())},
		{"Ambiguous chains", fmt.Sprintf("%d", report.Ambiguous)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(80, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	if reasons := report.SkipReasons(); len(reasons) > 0 {
		y += 5
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(100, 7, "Skip Reasons", "", 0, "L", false, 0, "")
		y += 9

		colWidths := []float64{60, 30}
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(colWidths[0], 6, "Reason", "1", 0, "C", true, 0, "")
		pdf.CellFormat(colWidths[1], 6, "Count", "1", 0, "C", true, 0, "")
		y += 6

		pdf.SetFont("Helvetica", "", 9)
		for i, reason := range reasons {
			if i%2 == 0 {
				pdf.SetFillColor(245, 245, 245)
			} else {
				pdf.SetFillColor(255, 255, 255)
			}
			pdf.SetXY(marginLeft, y)
			pdf.CellFormat(colWidths[0], 6, string(reason), "1", 0, "L", true, 0, "")
			pdf.CellFormat(colWidths[1], 6, fmt.Sprintf("%d", report.Skipped[reason]), "1", 0, "C", true, 0, "")
			y += 6
		}
	}

	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Parameters", "", 0, "L", false, 0, "")
	y += 9

	p := report.Params
	paramItems := []struct {
		label string
		value string
	}{
		{"Length", fmt.Sprintf("%.0f%%", p.HPercent)},
		{"Width", fmt.Sprintf("%.0f%% (effective %.0f%%)", p.VPercent, p.EffectiveVPercent())},
		{"Curve segments", fmt.Sprintf("%d", p.Segs)},
		{"Include SMD pads", yesNo(p.IncludeSMDPads)},
		{"Skip in same-net zones", yesNo(p.DiscardInSameNetZone)},
		{"Follow tracks", yesNo(p.FollowTracks)},
		{"No bulge", yesNo(p.NoBulge)},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range paramItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	if err := drawSummaryQR(pdf, report, pageWidth-marginRight-summaryQRSize, marginTop+18); err != nil {
		return err
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by teardrops", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
