package report

import (
	"time"

	"setlint/internal/analysis"
	"setlint/internal/qc"
	"setlint/internal/routing"
	"setlint/internal/session"
)

// CompactReport is the machine-diffable view: short keys, packed codes,
// pool references instead of inline payloads.
type CompactReport struct {
	RunID     string            `json:"run"`
	Generated string            `json:"ts"`
	Summary   qc.Summary        `json:"sum"`
	Legend    map[string]string `json:"lg"`
	Tracks    []CompactTrack    `json:"tr"`
	Pool      []CompactEntry    `json:"pool"`
}

// CompactTrack is one track row. Healthy tracks carry only identity and
// routing; everything else is omitted when empty.
type CompactTrack struct {
	Kind string `json:"tt"`
	ID   string `json:"id"`
	Name string `json:"n"`

	Fail     bool   `json:"F,omitempty"`
	Reasons  string `json:"R,omitempty"`
	Warnings string `json:"W,omitempty"`
	Muted    bool   `json:"mu,omitempty"`

	RawInput   string `json:"ai,omitempty"`
	RawOutput  string `json:"ao,omitempty"`
	InputKind  string `json:"aik,omitempty"`
	OutputKind string `json:"aok,omitempty"`
	Dest       string `json:"dst,omitempty"`

	Break  *CompactBreak   `json:"rb,omitempty"`
	Issues []string        `json:"is,omitempty"`
	Devs   []CompactDevice `json:"dv,omitempty"`
}

// CompactBreak is the break annotation: min depth plus origin ids.
type CompactBreak struct {
	Depth   int      `json:"d"`
	Sources []string `json:"s"`
}

// CompactDevice references the pool instead of inlining settings.
type CompactDevice struct {
	Ordinal     int    `json:"i"`
	Tag         string `json:"t"`
	Name        string `json:"n"`
	Format      string `json:"f"`
	Enabled     *bool  `json:"on"`
	SettingsRef *int   `json:"sr,omitempty"`
	StateRef    *int   `json:"xr,omitempty"`
}

// CompactEntry pairs each pool ref with its fingerprint so a consumer can
// match device references without the payload.
type CompactEntry struct {
	Ref         int    `json:"r"`
	Fingerprint string `json:"fp"`
}

// Issue labels attached to compact track rows.
const (
	issueDeadBus       = "dead_bus"
	issueOrphanBus     = "orphan_bus"
	issueAllDevicesOff = "all_devices_off"
)

// BuildCompact projects the result into the compact view.
func BuildCompact(res *analysis.Result) CompactReport {
	rep := CompactReport{
		RunID:     res.RunID,
		Generated: res.GeneratedAt.Format(time.RFC3339),
		Summary:   res.Summary,
		Legend:    qc.ReasonLegend,
		Tracks:    make([]CompactTrack, 0, len(res.Tracks)),
	}

	byID := session.ByID(res.Tracks)
	for _, id := range res.SortedIDs() {
		rep.Tracks = append(rep.Tracks, buildCompactTrack(res, byID[id]))
	}
	for _, e := range res.Pool.Entries() {
		rep.Pool = append(rep.Pool, CompactEntry{Ref: int(e.Ref), Fingerprint: e.Fingerprint})
	}
	return rep
}

func buildCompactTrack(res *analysis.Result, t *session.Track) CompactTrack {
	finding := res.Findings[t.ID]
	ct := CompactTrack{
		Kind:       string(t.Kind),
		ID:         string(t.ID),
		Name:       t.Name,
		Fail:       finding.Fail,
		Reasons:    finding.PackedReasons(),
		Warnings:   finding.PackedWarnings(),
		Muted:      t.Muted,
		RawInput:   t.Routing.RawInput,
		RawOutput:  t.Routing.RawOutput,
		InputKind:  string(t.Routing.InputKind),
		OutputKind: string(t.Routing.OutputKind),
	}
	if dest, ok := res.Destinations[t.ID]; ok {
		if dest.Kind == routing.DestTrack {
			ct.Dest = string(dest.Track)
		} else {
			ct.Dest = string(dest.Kind)
		}
	}
	if brk, ok := res.Breaks[t.ID]; ok && brk.Impacted() {
		cb := CompactBreak{Depth: brk.Depth}
		for _, s := range brk.Sources {
			cb.Sources = append(cb.Sources, string(s))
		}
		ct.Break = &cb
	}

	if finding.DeadBus {
		ct.Issues = append(ct.Issues, issueDeadBus)
	}
	if finding.OrphanBus {
		ct.Issues = append(ct.Issues, issueOrphanBus)
	}
	if allDevicesOff(t) {
		ct.Issues = append(ct.Issues, issueAllDevicesOff)
	}

	for i := range t.Devices {
		d := &t.Devices[i]
		cd := CompactDevice{
			Ordinal: d.Ordinal,
			Tag:     d.Tag,
			Name:    d.Name,
			Format:  string(d.Format),
			Enabled: d.Enabled,
		}
		key := analysis.DeviceKey{Track: t.ID, Ordinal: d.Ordinal}
		if ref, ok := res.SettingsRefs[key]; ok {
			cd.SettingsRef = refPtr(ref)
		}
		if ref, ok := res.StateRefs[key]; ok {
			cd.StateRef = refPtr(ref)
		}
		ct.Devs = append(ct.Devs, cd)
	}
	return ct
}

func allDevicesOff(t *session.Track) bool {
	if len(t.Devices) == 0 {
		return false
	}
	for i := range t.Devices {
		if !t.Devices[i].Off() {
			return false
		}
	}
	return true
}
