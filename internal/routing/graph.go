package routing

import (
	"fmt"
	"sort"

	"setlint/internal/session"
)

// ConditionKind labels a structural routing anomaly recorded on a track.
type ConditionKind string

const (
	// CondUnknownTarget marks a routing field naming a track id that does
	// not exist in the session.
	CondUnknownTarget ConditionKind = "unknown_target"
	// CondSelfReference marks a track listing itself as its own source.
	CondSelfReference ConditionKind = "self_reference"
	// CondOneSidedEdge marks an edge implied by audio_out that the
	// destination's audio_in does not corroborate. The edge is still built.
	CondOneSidedEdge ConditionKind = "one_sided_edge"
	// CondUnresolvedGroup marks a group chain that exceeded the hop limit.
	CondUnresolvedGroup ConditionKind = "unresolved_group"
)

// Condition is one recorded anomaly with a human-readable detail line.
type Condition struct {
	Kind   ConditionKind
	Detail string
}

// MissingTarget reports whether the condition should surface as the
// missing-route-target reason on the owning track.
func (c Condition) MissingTarget() bool {
	return c.Kind == CondUnknownTarget || c.Kind == CondOneSidedEdge
}

// Graph is the reconstructed signal-flow graph. Adjacency lists are sorted
// by track id and deduplicated; an edge src->dst means audio flows from src
// into dst.
type Graph struct {
	nodes []session.TrackID
	out   map[session.TrackID][]session.TrackID
	in    map[session.TrackID][]session.TrackID
}

// Nodes returns every track id in the graph in id order.
func (g *Graph) Nodes() []session.TrackID { return g.nodes }

// Downstream returns the destinations fed by id, in id order.
func (g *Graph) Downstream(id session.TrackID) []session.TrackID { return g.out[id] }

// Upstream returns the sources feeding id, in id order.
func (g *Graph) Upstream(id session.TrackID) []session.TrackID { return g.in[id] }

// EdgeCount reports the number of distinct edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, dsts := range g.out {
		n += len(dsts)
	}
	return n
}

// Build reconstructs the routing graph and per-track conditions from the
// track records. The returned structures are independent of input ordering.
func Build(tracks []session.Track, hopLimit int) (*Graph, map[session.TrackID][]Condition, map[session.TrackID]Destination) {
	byID := session.ByID(tracks)

	g := &Graph{
		out: make(map[session.TrackID][]session.TrackID),
		in:  make(map[session.TrackID][]session.TrackID),
	}
	conditions := make(map[session.TrackID][]Condition)
	edges := make(map[[2]session.TrackID]bool)

	addCond := func(id session.TrackID, kind ConditionKind, detail string) {
		conditions[id] = append(conditions[id], Condition{Kind: kind, Detail: detail})
	}
	addEdge := func(src, dst session.TrackID) {
		key := [2]session.TrackID{src, dst}
		if edges[key] {
			return
		}
		edges[key] = true
		g.out[src] = append(g.out[src], dst)
		g.in[dst] = append(g.in[dst], src)
	}

	// Primary pass: audio_in references. The receiving side is the source of
	// truth for who feeds whom.
	receives := make(map[session.TrackID]map[session.TrackID]bool)
	for i := range tracks {
		t := &tracks[i]
		for _, src := range t.Routing.Inputs {
			if src == t.ID {
				addCond(t.ID, CondSelfReference, "audio_in references the track itself")
				continue
			}
			if _, ok := byID[src]; !ok {
				addCond(t.ID, CondUnknownTarget, fmt.Sprintf("audio_in references unknown track %s", src))
				continue
			}
			addEdge(src, t.ID)
			if receives[t.ID] == nil {
				receives[t.ID] = make(map[session.TrackID]bool)
			}
			receives[t.ID][src] = true
		}
	}

	// Cross-validation pass: audio_out references. An edge only one side
	// implies is still built, but the mismatch is recorded so the report can
	// flag the route as suspect.
	for i := range tracks {
		t := &tracks[i]
		dst, cond := outputTarget(t, byID)
		if cond != nil {
			conditions[t.ID] = append(conditions[t.ID], *cond)
		}
		if dst == "" {
			continue
		}
		if !receives[dst][t.ID] {
			addCond(t.ID, CondOneSidedEdge,
				fmt.Sprintf("audio_out targets %s but %s does not list this track as a source", session.Label(byID[dst]), session.Label(byID[dst])))
		}
		addEdge(t.ID, dst)
	}

	for id := range g.out {
		session.SortIDs(g.out[id])
	}
	for id := range g.in {
		session.SortIDs(g.in[id])
	}
	g.nodes = make([]session.TrackID, 0, len(tracks))
	for i := range tracks {
		g.nodes = append(g.nodes, tracks[i].ID)
	}
	session.SortIDs(g.nodes)

	dests := resolveDestinations(tracks, byID, hopLimit, addCond)
	sortConditions(conditions)
	return g, conditions, dests
}

// outputTarget resolves a track's audio_out field to a concrete destination
// id when possible. Group-routed tracks fall back to their parent group id,
// mirroring how Live encodes "out to group" without an explicit target.
func outputTarget(t *session.Track, byID map[session.TrackID]*session.Track) (session.TrackID, *Condition) {
	r := t.Routing
	switch r.OutputKind {
	case session.RouteTrack:
		if r.Output == "" {
			return "", nil
		}
		if r.Output == t.ID {
			return "", &Condition{Kind: CondSelfReference, Detail: "audio_out references the track itself"}
		}
		if _, ok := byID[r.Output]; !ok {
			return "", &Condition{Kind: CondUnknownTarget, Detail: fmt.Sprintf("audio_out references unknown track %s", r.Output)}
		}
		return r.Output, nil
	case session.RouteGroup:
		pg := t.ParentGroup
		if pg == "" || pg == "-1" {
			return "", &Condition{Kind: CondUnknownTarget, Detail: "audio_out targets a group but the track has no parent group"}
		}
		if _, ok := byID[pg]; !ok {
			return "", &Condition{Kind: CondUnknownTarget, Detail: fmt.Sprintf("audio_out targets missing group %s", pg)}
		}
		return pg, nil
	default:
		return "", nil
	}
}

func sortConditions(conditions map[session.TrackID][]Condition) {
	for id := range conditions {
		conds := conditions[id]
		sort.SliceStable(conds, func(i, j int) bool {
			if conds[i].Kind != conds[j].Kind {
				return conds[i].Kind < conds[j].Kind
			}
			return conds[i].Detail < conds[j].Detail
		})
	}
}
