package engine

import (
	"fmt"

	"github.com/piwi3910/teardrop/internal/geometry"
	"github.com/piwi3910/teardrop/internal/model"
)

// ComparisonScenario defines a named set of parameters to compare.
type ComparisonScenario struct {
	Name   string
	Params model.Params
}

// ComparisonResult holds the plan and derived counts for one scenario.
type ComparisonResult struct {
	Scenario  ComparisonScenario
	Report    Report
	Added     int
	Skipped   int
	Ambiguous int
	Area      float64 // total outline area of the planned teardrops
}

// CompareScenarios plans each scenario against the same board and returns
// the results in scenario order. The board is never modified.
func CompareScenarios(board Board, scenarios []ComparisonScenario) ([]ComparisonResult, error) {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		report, err := New(board, nil, scenario.Params).Plan()
		if err != nil {
			return results, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}

		var area float64
		for _, z := range report.Shapes {
			area += geometry.Area(z.Outline)
		}

		results = append(results, ComparisonResult{
			Scenario:  scenario,
			Report:    report,
			Added:     report.Added,
			Skipped:   report.SkippedTotal(),
			Ambiguous: report.Ambiguous,
			Area:      area,
		})
	}

	return results, nil
}

// BuildDefaultScenarios derives what-if variants from the current
// parameters.
func BuildDefaultScenarios(base model.Params) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:   "Current Settings",
			Params: base,
		},
	}

	// Scenario: flip curve smoothing
	alt := base
	if base.Curved() {
		alt.Segs = 2
		scenarios = append(scenarios, ComparisonScenario{
			Name:   "Straight Sides",
			Params: alt,
		})
	} else {
		alt.Segs = model.DefaultParams().Segs
		scenarios = append(scenarios, ComparisonScenario{
			Name:   "Curved Sides",
			Params: alt,
		})
	}

	// Scenario: follow track chains for short first segments
	if !base.FollowTracks {
		follow := base
		follow.FollowTracks = true
		scenarios = append(scenarios, ComparisonScenario{
			Name:   "Follow Tracks",
			Params: follow,
		})
	}

	// Scenario: shorter teardrops
	if base.HPercent > 10 {
		short := base
		short.HPercent = base.HPercent * 0.5
		scenarios = append(scenarios, ComparisonScenario{
			Name:   fmt.Sprintf("Length %.0f%% (half)", short.HPercent),
			Params: short,
		})
	}

	// Scenario: include surface-mount pads
	if !base.IncludeSMDPads {
		smd := base
		smd.IncludeSMDPads = true
		scenarios = append(scenarios, ComparisonScenario{
			Name:   "Include SMD Pads",
			Params: smd,
		})
	}

	return scenarios
}
