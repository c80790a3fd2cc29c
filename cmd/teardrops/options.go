package main

import (
	"flag"
	"fmt"

	"github.com/piwi3910/teardrop/internal/model"
	"github.com/piwi3910/teardrop/internal/project"
)

type options struct {
	boardPath    string
	outPath      string
	configPath   string
	presetsPath  string
	file         string
	preset       string
	verbose      bool
	clearance    int64
	pdfPath      string
	xlsxPath     string
	dxfPath      string
	gerberPrefix string

	// Parameter overrides, applied only when set on the command line
	params model.Params
}

func registerFlags(fs *flag.FlagSet) *options {
	o := &options{}
	d := model.DefaultParams()

	fs.StringVar(&o.boardPath, "board", "", "board file (.json, or .csv/.xlsx/.dxf to import)")
	fs.StringVar(&o.outPath, "out", "", "where to write the modified board (default: the board, or <board>.json for imports)")
	fs.StringVar(&o.configPath, "config", project.DefaultConfigPath(), "application config file")
	fs.StringVar(&o.presetsPath, "presets", project.DefaultPresetsPath(), "custom presets file")
	fs.StringVar(&o.file, "file", "", "settings file for backup, restore and import-preset")
	fs.StringVar(&o.preset, "preset", "", "parameter preset name")
	fs.BoolVar(&o.verbose, "v", false, "verbose logging")
	fs.Int64Var(&o.clearance, "clearance", 0, "warn when teardrops come closer than this to other nets (board units)")
	fs.StringVar(&o.pdfPath, "pdf", "", "write a PDF preview and summary")
	fs.StringVar(&o.xlsxPath, "xlsx", "", "write an XLSX report")
	fs.StringVar(&o.dxfPath, "dxf", "", "write teardrop outlines as DXF (millimetres)")
	fs.StringVar(&o.gerberPrefix, "gerber", "", "write Gerber regions to <prefix>-<layer>.gbr")

	fs.Float64Var(&o.params.HPercent, "hpercent", d.HPercent, "teardrop length, % of anchor diameter")
	fs.Float64Var(&o.params.VPercent, "vpercent", d.VPercent, "teardrop width, % of anchor diameter")
	fs.IntVar(&o.params.Segs, "segs", d.Segs, "points per curved side (2 = straight)")
	fs.BoolVar(&o.params.IncludeSMDPads, "smd", d.IncludeSMDPads, "include surface-mount pads")
	fs.BoolVar(&o.params.DiscardInSameNetZone, "discard-zone", d.DiscardInSameNetZone, "skip anchors inside same-net zones")
	fs.BoolVar(&o.params.FollowTracks, "follow", d.FollowTracks, "follow connected tracks when the first is too short")
	fs.BoolVar(&o.params.NoBulge, "no-bulge", d.NoBulge, "keep the flare within the track direction")
	return o
}

// resolveParams starts from the config defaults, applies -preset, then
// any parameter flags given explicitly.
func resolveParams(fs *flag.FlagSet, o *options, cfg model.AppConfig) (model.Params, error) {
	var p model.Params
	cfg.ApplyToParams(&p)

	if o.preset != "" {
		found := false
		for _, name := range model.GetPresetNames() {
			if name == o.preset {
				found = true
			}
		}
		if !found {
			return p, fmt.Errorf("unknown preset %q", o.preset)
		}
		p = model.GetPreset(o.preset).Params
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "hpercent":
			p.HPercent = o.params.HPercent
		case "vpercent":
			p.VPercent = o.params.VPercent
		case "segs":
			p.Segs = o.params.Segs
		case "smd":
			p.IncludeSMDPads = o.params.IncludeSMDPads
		case "discard-zone":
			p.DiscardInSameNetZone = o.params.DiscardInSameNetZone
		case "follow":
			p.FollowTracks = o.params.FollowTracks
		case "no-bulge":
			p.NoBulge = o.params.NoBulge
		}
	})

	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}
