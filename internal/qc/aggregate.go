package qc

import (
	"setlint/internal/busscan"
	"setlint/internal/classify"
	"setlint/internal/propagation"
	"setlint/internal/routing"
	"setlint/internal/session"
)

// TrackFinding is the merged QC verdict for one track.
type TrackFinding struct {
	Reasons   []Reason
	Warnings  []Warning
	Fail      bool // any reason present
	DeadBus   bool
	OrphanBus bool
}

// PackedReasons renders the reason set as a short string.
func (f TrackFinding) PackedReasons() string { return Packed(f.Reasons) }

// PackedWarnings renders the warning set as a short string.
func (f TrackFinding) PackedWarnings() string { return PackedWarnings(f.Warnings) }

// Summary is the run-level aggregate, computed purely by counting findings.
type Summary struct {
	TotalTracks   int `json:"total_tracks"`
	IssueTracks   int `json:"issue_tracks"`
	WarningTracks int `json:"warning_tracks"`

	Deactivated   int `json:"deactivated_tracks"`
	Muted         int `json:"muted_tracks"`
	Silent        int `json:"silent_tracks"`
	RoutingBreaks int `json:"routing_break_tracks"`
	MissingRoutes int `json:"missing_route_tracks"`
	DeadBuses     int `json:"dead_bus_tracks"`
	OrphanBuses   int `json:"orphan_bus_tracks"`

	Devices               int `json:"devices"`
	DevicesOff            int `json:"devices_off"`
	DevicesOffUnexplained int `json:"devices_off_unexplained"`
	DevicesOffAutomated   int `json:"devices_off_automated"`
}

// Aggregate merges the per-stage outputs into findings and a summary. Reason
// insertion follows the fixed severity order so repeated runs on the same
// input emit identical packed strings.
func Aggregate(
	tracks []session.Track,
	classes map[session.TrackID]classify.TrackClass,
	conditions map[session.TrackID][]routing.Condition,
	breaks map[session.TrackID]propagation.Annotation,
	buses map[session.TrackID]busscan.Flags,
) (map[session.TrackID]TrackFinding, Summary) {
	findings := make(map[session.TrackID]TrackFinding, len(tracks))
	var sum Summary
	sum.TotalTracks = len(tracks)

	for i := range tracks {
		t := &tracks[i]
		cls := classes[t.ID]
		brk, broken := breaks[t.ID]
		bus := buses[t.ID]

		present := map[Reason]bool{
			ReasonDeactivated:  cls.Deactivated,
			ReasonDeviceOff:    cls.AnyUnexplainedOff(),
			ReasonRoutingBreak: broken && brk.Impacted() || bus.DeadBus || bus.OrphanBus,
			ReasonMissingRoute: hasMissingRoute(conditions[t.ID]),
			ReasonMuted:        cls.Muted,
			ReasonSilent:       cls.SilentGuess,
		}

		f := TrackFinding{DeadBus: bus.DeadBus, OrphanBus: bus.OrphanBus}
		for _, code := range reasonOrder {
			if present[code] {
				f.Reasons = append(f.Reasons, code)
			}
		}
		if cls.AnyAutomatedOff() {
			f.Warnings = append(f.Warnings, WarnAutomatedOff)
		}
		f.Fail = len(f.Reasons) > 0
		findings[t.ID] = f

		if f.Fail {
			sum.IssueTracks++
		}
		if len(f.Warnings) > 0 {
			sum.WarningTracks++
		}
		if present[ReasonDeactivated] {
			sum.Deactivated++
		}
		if present[ReasonMuted] {
			sum.Muted++
		}
		if present[ReasonSilent] {
			sum.Silent++
		}
		if present[ReasonRoutingBreak] {
			sum.RoutingBreaks++
		}
		if present[ReasonMissingRoute] {
			sum.MissingRoutes++
		}
		if bus.DeadBus {
			sum.DeadBuses++
		}
		if bus.OrphanBus {
			sum.OrphanBuses++
		}
		for _, d := range cls.Devices {
			sum.Devices++
			if d.UnexplainedOff || d.AutomatedOff {
				sum.DevicesOff++
			}
			if d.UnexplainedOff {
				sum.DevicesOffUnexplained++
			}
			if d.AutomatedOff {
				sum.DevicesOffAutomated++
			}
		}
	}
	return findings, sum
}

func hasMissingRoute(conds []routing.Condition) bool {
	for _, c := range conds {
		if c.MissingTarget() {
			return true
		}
	}
	return false
}
