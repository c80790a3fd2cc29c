package model

// Preset is a named set of teardrop parameters.
type Preset struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Params      Params `json:"params"`
	IsBuiltIn   bool   `json:"-"`
}

// Built-in presets
var Presets = []Preset{
	{
		Name:        "Default",
		Description: "Curved teardrops on vias and through-hole pads",
		Params:      DefaultParams(),
		IsBuiltIn:   true,
	},
	{
		Name:        "Straight",
		Description: "Straight-sided teardrops, wide flare",
		Params: Params{
			HPercent: 50,
			VPercent: 90,
			Segs:     2,
		},
		IsBuiltIn: true,
	},
	{
		Name:        "Dense",
		Description: "Short teardrops that follow track chains, for tight layouts",
		Params: Params{
			HPercent:     20,
			VPercent:     60,
			Segs:         10,
			FollowTracks: true,
			NoBulge:      true,
		},
		IsBuiltIn: true,
	},
	{
		Name:        "SMD",
		Description: "Include surface-mount pads and skip anchors inside same-net pours",
		Params: Params{
			HPercent:             30,
			VPercent:             70,
			Segs:                 10,
			IncludeSMDPads:       true,
			DiscardInSameNetZone: true,
			FollowTracks:         true,
		},
		IsBuiltIn: true,
	},
}

// CustomPresets holds user-defined presets loaded at startup.
var CustomPresets []Preset

// AllPresets returns built-in presets followed by custom ones.
func AllPresets() []Preset {
	all := make([]Preset, 0, len(Presets)+len(CustomPresets))
	all = append(all, Presets...)
	all = append(all, CustomPresets...)
	return all
}

// GetPreset returns a preset by name, or the Default preset if not found.
func GetPreset(name string) Preset {
	for _, p := range AllPresets() {
		if p.Name == name {
			return p
		}
	}
	return Presets[0]
}

// GetPresetNames returns the names of all presets.
func GetPresetNames() []string {
	var names []string
	for _, p := range AllPresets() {
		names = append(names, p.Name)
	}
	return names
}
