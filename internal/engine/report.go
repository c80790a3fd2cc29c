package engine

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/piwi3910/teardrop/internal/model"
)

// SkipReason names why a track/anchor pair produced no teardrop.
type SkipReason string

const (
	SkipNarrow         SkipReason = "narrow"          // track already as wide as the flare
	SkipAffinity       SkipReason = "affinity"        // pad on another copper layer
	SkipDuplicate      SkipReason = "duplicate"       // a teardrop already exists
	SkipSameNetZone    SkipReason = "same-net-zone"   // anchor inside a same-net fill
	SkipNotAttached    SkipReason = "not-attached"    // no track end at the anchor
	SkipBothEndsInside SkipReason = "both-ends-inside"
	SkipNoExit         SkipReason = "no-exit"
	SkipZeroDirection  SkipReason = "zero-direction"
	SkipSharpEndInside SkipReason = "sharp-end-inside"
	SkipDegenerate     SkipReason = "degenerate"
)

// Op identifies the kind of pass a report describes.
type Op string

const (
	OpPlan   Op = "plan"
	OpPlace  Op = "place"
	OpRemove Op = "remove"
)

// Report summarizes one placement or removal pass.
type Report struct {
	RunID     string             `json:"run_id"`
	Op        Op                 `json:"op"`
	Added     int                `json:"added"`
	Removed   int                `json:"removed"`
	Skipped   map[SkipReason]int `json:"skipped,omitempty"`
	Ambiguous int                `json:"ambiguous,omitempty"` // chain walks stopped at a junction
	Shapes    []model.Zone       `json:"-"`
	Params    model.Params       `json:"params"`
}

func newReport(op Op, params model.Params) Report {
	return Report{
		RunID:   uuid.New().String(),
		Op:      op,
		Skipped: make(map[SkipReason]int),
		Params:  params,
	}
}

func (r *Report) skip(reason SkipReason) {
	r.Skipped[reason]++
}

// SkippedTotal returns the number of skipped pairs over all reasons.
func (r Report) SkippedTotal() int {
	n := 0
	for _, c := range r.Skipped {
		n += c
	}
	return n
}

// SkipReasons returns the reasons that occurred, sorted by name.
func (r Report) SkipReasons() []SkipReason {
	reasons := make([]SkipReason, 0, len(r.Skipped))
	for reason := range r.Skipped {
		reasons = append(reasons, reason)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	return reasons
}

// Summary returns the one-line result shown to the user.
func (r Report) Summary() string {
	if r.Op == OpRemove {
		return fmt.Sprintf("%d teardrops removed", r.Removed)
	}
	return fmt.Sprintf("%d teardrops inserted", r.Added)
}
