// Package gerber writes and reads teardrop zones as RS-274X regions.
package gerber

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/piwi3910/teardrop/internal/model"
)

// Generator produces RS-274X copper files holding one region per zone.
type Generator struct {
	IntegerDigits int     // coordinate digits before the implied decimal point
	Decimals      int     // coordinate digits after the implied decimal point
	Scale         float64 // board units per millimetre
}

// New returns a generator for nanometre board units with the given number
// of decimal places (at most 6).
func New(decimals int) *Generator {
	if decimals < 1 {
		decimals = 1
	}
	if decimals > 6 {
		decimals = 6
	}
	return &Generator{IntegerDigits: 4, Decimals: decimals, Scale: 1e6}
}

// Generate produces a Gerber file with a region for each zone on layer.
// Zones on other layers and outlines with fewer than three points are
// left out.
func (g *Generator) Generate(zones []model.Zone, layer model.Layer) string {
	var b strings.Builder

	g.writeHeader(&b, layer)
	for _, z := range zones {
		if z.Layer != layer || len(z.Outline) < 3 {
			continue
		}
		g.writeRegion(&b, z)
	}
	b.WriteString("M02*\n")
	return b.String()
}

// GenerateLayers produces one Gerber file per copper layer present in
// zones, keyed by layer.
func (g *Generator) GenerateLayers(zones []model.Zone) map[model.Layer]string {
	seen := map[model.Layer]bool{}
	for _, z := range zones {
		seen[z.Layer] = true
	}
	layers := make([]model.Layer, 0, len(seen))
	for l := range seen {
		layers = append(layers, l)
	}
	sort.Slice(layers, func(i, j int) bool { return layers[i] < layers[j] })

	files := make(map[model.Layer]string, len(layers))
	for _, l := range layers {
		files[l] = g.Generate(zones, l)
	}
	return files
}

func (g *Generator) writeHeader(b *strings.Builder, layer model.Layer) {
	b.WriteString(g.comment(fmt.Sprintf("Teardrop regions, layer %s", layer)))
	b.WriteString(fmt.Sprintf("%%TF.FileFunction,Copper,%s*%%\n", layer))
	b.WriteString(fmt.Sprintf("%%FSLAX%d%dY%d%d*%%\n", g.IntegerDigits, g.Decimals, g.IntegerDigits, g.Decimals))
	b.WriteString("%MOMM*%\n")
	b.WriteString("%LPD*%\n")
	b.WriteString("G01*\n")
}

func (g *Generator) writeRegion(b *strings.Builder, z model.Zone) {
	b.WriteString(g.comment(fmt.Sprintf("zone %s", z.ID)))
	if z.Net != "" {
		b.WriteString(fmt.Sprintf("%%TO.N,%s*%%\n", escapeField(z.Net)))
	}
	b.WriteString("G36*\n")

	first := z.Outline[0]
	b.WriteString(fmt.Sprintf("X%sY%sD02*\n", g.format(first.X), g.format(first.Y)))
	for _, p := range z.Outline[1:] {
		b.WriteString(fmt.Sprintf("X%sY%sD01*\n", g.format(p.X), g.format(p.Y)))
	}
	// Regions must be explicitly closed
	b.WriteString(fmt.Sprintf("X%sY%sD01*\n", g.format(first.X), g.format(first.Y)))

	b.WriteString("G37*\n")
	if z.Net != "" {
		b.WriteString("%TD*%\n")
	}
}

func (g *Generator) comment(s string) string {
	return "G04 " + strings.ReplaceAll(s, "*", "") + "*\n"
}

// format converts a board coordinate into a fixed-point Gerber integer.
func (g *Generator) format(v int64) string {
	mm := float64(v) / g.Scale
	return fmt.Sprintf("%d", int64(math.Round(mm*math.Pow10(g.Decimals))))
}

// escapeField removes the characters that terminate Gerber attribute
// fields.
func escapeField(s string) string {
	return strings.NewReplacer("*", "", "%", "", ",", "_").Replace(s)
}
