package export

import (
	"fmt"

	"github.com/piwi3910/teardrop/internal/model"
	"github.com/yofu/dxf"
)

// ExportDXF writes each zone outline as a closed LWPOLYLINE on a layer
// named after its copper layer. Coordinates are divided by scale, so a
// scale of 1e6 turns nanometres into millimetres.
func ExportDXF(path string, zones []model.Zone, scale float64) error {
	if len(zones) == 0 {
		return fmt.Errorf("no zones to export")
	}
	if scale <= 0 {
		scale = 1
	}

	d := dxf.NewDrawing()
	layers := map[model.Layer]bool{}

	for _, z := range zones {
		if len(z.Outline) < 3 {
			continue
		}
		if !layers[z.Layer] {
			if _, err := d.AddLayer(string(z.Layer), dxf.DefaultColor, dxf.DefaultLineType, false); err != nil {
				return fmt.Errorf("failed to add layer %s: %w", z.Layer, err)
			}
			layers[z.Layer] = true
		}
		if err := d.ChangeLayer(string(z.Layer)); err != nil {
			return fmt.Errorf("failed to select layer %s: %w", z.Layer, err)
		}

		verts := make([][]float64, len(z.Outline))
		for i, p := range z.Outline {
			verts[i] = []float64{float64(p.X) / scale, float64(p.Y) / scale}
		}
		if _, err := d.LwPolyline(true, verts...); err != nil {
			return fmt.Errorf("failed to write zone %s: %w", z.ID, err)
		}
	}

	if len(layers) == 0 {
		return fmt.Errorf("no zone has a drawable outline")
	}
	return d.SaveAs(path)
}
