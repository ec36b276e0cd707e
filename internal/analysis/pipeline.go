package analysis

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"setlint/internal/busscan"
	"setlint/internal/classify"
	"setlint/internal/intern"
	"setlint/internal/logging"
	"setlint/internal/propagation"
	"setlint/internal/qc"
	"setlint/internal/routing"
	"setlint/internal/session"
)

// Options tunes a single analysis run.
type Options struct {
	GroupHopLimit int
	SilentVolume  float64
	BusPolicy     busscan.Policy
	Logger        *slog.Logger

	// RunID overrides the generated uuid. Everything else in a Result is a
	// pure function of the input, so fixing the id makes runs byte-comparable.
	RunID string

	// Now stamps GeneratedAt; zero means time.Now. Fixing it alongside RunID
	// makes two runs on the same input byte-identical end to end.
	Now time.Time
}

// DeviceKey identifies one device across the result maps.
type DeviceKey struct {
	Track   session.TrackID
	Ordinal int
}

// Result is the complete, immutable output of one run. Both report views are
// derived from it without re-running any stage.
type Result struct {
	RunID       string
	GeneratedAt time.Time

	Tracks       []session.Track
	Graph        *routing.Graph
	Destinations map[session.TrackID]routing.Destination
	Conditions   map[session.TrackID][]routing.Condition
	Classes      map[session.TrackID]classify.TrackClass
	Breaks       map[session.TrackID]propagation.Annotation
	Buses        map[session.TrackID]busscan.Flags
	Findings     map[session.TrackID]qc.TrackFinding
	Summary      qc.Summary

	// Pool holds every distinct settings/state payload; refs key per device.
	Pool         *intern.Pool
	SettingsRefs map[DeviceKey]intern.Ref
	StateRefs    map[DeviceKey]intern.Ref
}

// Run executes the pipeline. It fails only on input-contract violations;
// structural routing anomalies degrade to recorded per-track conditions.
func Run(tracks []session.Track, opts Options) (*Result, error) {
	if err := session.Validate(tracks); err != nil {
		return nil, fmt.Errorf("analysis input: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "analysis")

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	res := &Result{
		RunID:       runID,
		GeneratedAt: now.UTC(),
		Tracks:      tracks,
		Pool:        intern.NewPool(),
	}

	res.Graph, res.Conditions, res.Destinations = routing.Build(tracks, opts.GroupHopLimit)
	logger.Debug("routing graph built",
		logging.Int("tracks", len(tracks)),
		logging.Int("edges", res.Graph.EdgeCount()),
	)

	res.Classes = classify.Classify(tracks, classify.Options{SilentVolume: opts.SilentVolume})
	deactivated := classify.DeactivatedIDs(res.Classes)

	byID := session.ByID(tracks)
	label := func(id session.TrackID) string { return session.Label(byID[id]) }
	res.Breaks = propagation.Propagate(res.Graph, deactivated, label)

	res.Buses = busscan.Detect(tracks, res.Graph, res.Classes, res.Breaks, opts.BusPolicy)
	res.Findings, res.Summary = qc.Aggregate(tracks, res.Classes, res.Conditions, res.Breaks, res.Buses)

	if err := res.internPayloads(); err != nil {
		return nil, err
	}

	logger.Info("analysis complete",
		logging.String("run_id", res.RunID),
		logging.Int("tracks", res.Summary.TotalTracks),
		logging.Int("issue_tracks", res.Summary.IssueTracks),
		logging.Int("deactivated", res.Summary.Deactivated),
		logging.Int("routing_breaks", res.Summary.RoutingBreaks),
		logging.Int("pool_entries", res.Pool.Len()),
	)
	return res, nil
}

// taggedSettings carries the variant tag into the canonical form. Settings
// of different kinds can share a JSON shape (two empty payloads both render
// as {}), and those must not collapse onto one pool reference.
type taggedSettings struct {
	Kind  session.SettingsKind `json:"kind"`
	Value session.Settings     `json:"value"`
}

// internPayloads pools every device settings payload and opaque state blob.
// Iteration is by track id then device ordinal so reference numbering is
// reproducible regardless of loader ordering.
func (r *Result) internPayloads() error {
	r.SettingsRefs = make(map[DeviceKey]intern.Ref)
	r.StateRefs = make(map[DeviceKey]intern.Ref)

	byID := session.ByID(r.Tracks)
	ids := make([]session.TrackID, 0, len(r.Tracks))
	for i := range r.Tracks {
		ids = append(ids, r.Tracks[i].ID)
	}
	session.SortIDs(ids)

	for _, id := range ids {
		t := byID[id]
		for i := range t.Devices {
			d := &t.Devices[i]
			key := DeviceKey{Track: id, Ordinal: d.Ordinal}
			if d.Settings != nil {
				ref, err := r.Pool.Intern(taggedSettings{Kind: d.Settings.Kind(), Value: d.Settings})
				if err != nil {
					return fmt.Errorf("intern settings for %s device %d: %w", id, d.Ordinal, err)
				}
				r.SettingsRefs[key] = ref
			}
			if d.State != nil {
				ref, err := r.Pool.Intern(d.State)
				if err != nil {
					return fmt.Errorf("intern state for %s device %d: %w", id, d.Ordinal, err)
				}
				r.StateRefs[key] = ref
			}
		}
	}
	return nil
}

// SortedIDs returns every track id in deterministic order.
func (r *Result) SortedIDs() []session.TrackID {
	ids := make([]session.TrackID, 0, len(r.Tracks))
	for i := range r.Tracks {
		ids = append(ids, r.Tracks[i].ID)
	}
	session.SortIDs(ids)
	return ids
}
