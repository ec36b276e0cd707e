package report

import (
	"time"

	"setlint/internal/analysis"
	"setlint/internal/intern"
	"setlint/internal/loader"
	"setlint/internal/qc"
	"setlint/internal/session"
)

// FullReport is the verbose view: everything the pipeline derived, inline.
type FullReport struct {
	RunID       string            `json:"run_id"`
	GeneratedAt string            `json:"generated_at"`
	Source      *loader.Meta      `json:"source,omitempty"`
	Summary     qc.Summary        `json:"summary"`
	Legend      map[string]string `json:"legend"`
	Warnings    map[string]string `json:"warning_legend"`
	Tracks      []FullTrack       `json:"tracks"`
	Pool        []PoolEntry       `json:"pool"`
}

// FullTrack is one annotated track in id order.
type FullTrack struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Kind        string   `json:"kind"`
	Active      bool     `json:"active"`
	Muted       bool     `json:"muted,omitempty"`
	Solo        bool     `json:"solo,omitempty"`
	Armed       bool     `json:"armed,omitempty"`
	Volume      *float64 `json:"volume,omitempty"`
	Pan         *float64 `json:"pan,omitempty"`
	ParentGroup string   `json:"parent_group,omitempty"`

	Routing     RoutingView     `json:"routing"`
	Destination DestinationView `json:"destination"`
	Conditions  []ConditionView `json:"conditions,omitempty"`

	Break     *BreakView `json:"break,omitempty"`
	DeadBus   bool       `json:"dead_bus,omitempty"`
	OrphanBus bool       `json:"orphan_bus,omitempty"`
	BusNotes  []string   `json:"bus_notes,omitempty"`

	Fail       bool     `json:"fail"`
	Reasons    string   `json:"reasons,omitempty"`
	ReasonList []string `json:"reason_list,omitempty"`
	WarnCodes  string   `json:"warnings,omitempty"`

	Devices []FullDevice `json:"devices,omitempty"`
}

// RoutingView is the track's declared routing, raw strings included.
type RoutingView struct {
	Inputs     []string `json:"inputs,omitempty"`
	InputKind  string   `json:"input_kind"`
	Output     string   `json:"output,omitempty"`
	OutputKind string   `json:"output_kind"`
	RawInput   string   `json:"raw_input,omitempty"`
	RawOutput  string   `json:"raw_output,omitempty"`
}

// DestinationView is the effective destination after group resolution.
type DestinationView struct {
	Kind  string `json:"kind"`
	Track string `json:"track,omitempty"`
}

// ConditionView is one recorded structural anomaly.
type ConditionView struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// BreakView is the propagation annotation for an impacted track.
type BreakView struct {
	Depth   int      `json:"depth"`
	Sources []string `json:"sources"`
	Path    []string `json:"path,omitempty"`
	Trace   []string `json:"trace,omitempty"`
}

// FullDevice inlines the decoded settings next to their pool reference.
type FullDevice struct {
	Ordinal int    `json:"ordinal"`
	Tag     string `json:"tag"`
	Name    string `json:"name"`
	Format  string `json:"format"`
	Enabled *bool  `json:"enabled"`

	SettingsRef         *int   `json:"settings_ref,omitempty"`
	SettingsFingerprint string `json:"settings_fingerprint,omitempty"`
	Settings            any    `json:"settings,omitempty"`

	StateRef         *int                 `json:"state_ref,omitempty"`
	StateFingerprint string               `json:"state_fingerprint,omitempty"`
	State            *session.OpaqueState `json:"state,omitempty"`
}

// PoolEntry is one interned payload in first-seen order.
type PoolEntry struct {
	Ref         int    `json:"ref"`
	Fingerprint string `json:"fingerprint"`
	Value       any    `json:"value"`
}

// BuildFull projects the result into the verbose view. Source may be nil
// when the tracks did not come from a file.
func BuildFull(res *analysis.Result, source *loader.Meta) FullReport {
	rep := FullReport{
		RunID:       res.RunID,
		GeneratedAt: res.GeneratedAt.Format(time.RFC3339),
		Source:      source,
		Summary:     res.Summary,
		Legend:      qc.ReasonLegend,
		Warnings:    qc.WarningLegend,
		Tracks:      make([]FullTrack, 0, len(res.Tracks)),
	}

	byID := session.ByID(res.Tracks)
	for _, id := range res.SortedIDs() {
		rep.Tracks = append(rep.Tracks, buildFullTrack(res, byID[id]))
	}
	for _, e := range res.Pool.Entries() {
		rep.Pool = append(rep.Pool, PoolEntry{
			Ref:         int(e.Ref),
			Fingerprint: e.Fingerprint,
			Value:       e.Value,
		})
	}
	return rep
}

func buildFullTrack(res *analysis.Result, t *session.Track) FullTrack {
	finding := res.Findings[t.ID]
	ft := FullTrack{
		ID:          string(t.ID),
		Name:        t.Name,
		Kind:        string(t.Kind),
		Active:      t.Active,
		Muted:       t.Muted,
		Solo:        t.Solo,
		Armed:       t.Armed,
		Volume:      t.Volume,
		Pan:         t.Pan,
		ParentGroup: string(t.ParentGroup),
		Routing:     buildRoutingView(t.Routing),
		Fail:        finding.Fail,
		Reasons:     finding.PackedReasons(),
		WarnCodes:   finding.PackedWarnings(),
	}
	for _, r := range finding.Reasons {
		ft.ReasonList = append(ft.ReasonList, qc.ReasonLegend[string(r)])
	}

	if dest, ok := res.Destinations[t.ID]; ok {
		ft.Destination = DestinationView{Kind: string(dest.Kind), Track: string(dest.Track)}
	}
	for _, c := range res.Conditions[t.ID] {
		ft.Conditions = append(ft.Conditions, ConditionView{Kind: string(c.Kind), Detail: c.Detail})
	}
	if brk, ok := res.Breaks[t.ID]; ok {
		bv := BreakView{Depth: brk.Depth, Trace: brk.Trace}
		for _, s := range brk.Sources {
			bv.Sources = append(bv.Sources, string(s))
		}
		for _, p := range brk.Path {
			bv.Path = append(bv.Path, string(p))
		}
		ft.Break = &bv
	}
	if bus, ok := res.Buses[t.ID]; ok {
		ft.DeadBus = bus.DeadBus
		ft.OrphanBus = bus.OrphanBus
		ft.BusNotes = bus.Notes
	}

	for i := range t.Devices {
		d := &t.Devices[i]
		fd := FullDevice{
			Ordinal: d.Ordinal,
			Tag:     d.Tag,
			Name:    d.Name,
			Format:  string(d.Format),
			Enabled: d.Enabled,
			State:   d.State,
		}
		key := analysis.DeviceKey{Track: t.ID, Ordinal: d.Ordinal}
		if ref, ok := res.SettingsRefs[key]; ok {
			fd.SettingsRef = refPtr(ref)
			fd.Settings = d.Settings
			if e, ok := res.Pool.Lookup(ref); ok {
				fd.SettingsFingerprint = e.Fingerprint
			}
		}
		if ref, ok := res.StateRefs[key]; ok {
			fd.StateRef = refPtr(ref)
			if e, ok := res.Pool.Lookup(ref); ok {
				fd.StateFingerprint = e.Fingerprint
			}
		}
		ft.Devices = append(ft.Devices, fd)
	}
	return ft
}

func buildRoutingView(rd session.RoutingDescriptor) RoutingView {
	rv := RoutingView{
		InputKind:  string(rd.InputKind),
		Output:     string(rd.Output),
		OutputKind: string(rd.OutputKind),
		RawInput:   rd.RawInput,
		RawOutput:  rd.RawOutput,
	}
	for _, in := range rd.Inputs {
		rv.Inputs = append(rv.Inputs, string(in))
	}
	return rv
}

func refPtr(r intern.Ref) *int {
	v := int(r)
	return &v
}
