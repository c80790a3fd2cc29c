package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Parameters applied when no preset or flag overrides them
	DefaultPreset string `json:"default_preset"`
	DefaultParams Params `json:"default_params"`

	// Application preferences
	OutputDir    string   `json:"output_dir"` // where reports are written, "" = next to the board
	RecentBoards []string `json:"recent_boards"`
	ShowSkipped  bool     `json:"show_skipped"` // print per-reason skip counts after a run
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching DefaultParams().
func DefaultAppConfig() AppConfig {
	return AppConfig{
		DefaultPreset: "Default",
		DefaultParams: DefaultParams(),
		OutputDir:     "",
		RecentBoards:  []string{},
		ShowSkipped:   false,
	}
}

// ApplyToParams copies the configured default parameters into p. A named
// default preset takes precedence over the stored parameter block.
func (c AppConfig) ApplyToParams(p *Params) {
	if c.DefaultPreset != "" {
		*p = GetPreset(c.DefaultPreset).Params
		return
	}
	*p = c.DefaultParams
}

// AddRecentBoard moves path to the front of the recent boards list,
// keeping at most limit entries.
func (c *AppConfig) AddRecentBoard(path string, limit int) {
	boards := []string{path}
	for _, b := range c.RecentBoards {
		if b != path {
			boards = append(boards, b)
		}
	}
	if limit > 0 && len(boards) > limit {
		boards = boards[:limit]
	}
	c.RecentBoards = boards
}
