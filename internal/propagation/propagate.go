package propagation

import (
	"fmt"
	"strings"

	"setlint/internal/routing"
	"setlint/internal/session"
)

// Annotation records break impact for one track. Depth 0 means the track is
// itself deactivated; depth >= 1 means an upstream deactivation compromises
// its signal path.
type Annotation struct {
	Depth   int
	Sources []session.TrackID // min-depth deactivated origins, in id order
	Path    []session.TrackID // one exemplar shortest path, source first
	Trace   []string
}

// Impacted reports whether the break reached this track from upstream rather
// than being its own deactivation.
func (a Annotation) Impacted() bool { return a.Depth >= 1 }

const traceSourceCap = 5

// Propagate runs the multi-source BFS from the deactivated seed set. Tracks
// the search never reaches are absent from the result; isolated healthy
// tracks simply have no annotation. The label function renders track ids for
// trace messages and may be nil.
func Propagate(g *routing.Graph, sources []session.TrackID, label func(session.TrackID) string) map[session.TrackID]Annotation {
	if label == nil {
		label = func(id session.TrackID) string { return "Track." + string(id) }
	}

	depth := make(map[session.TrackID]int)
	origin := make(map[session.TrackID]map[session.TrackID]bool)
	pred := make(map[session.TrackID]session.TrackID)

	seeds := append([]session.TrackID(nil), sources...)
	session.SortIDs(seeds)

	queue := make([]session.TrackID, 0, len(seeds))
	for _, s := range seeds {
		if _, seen := depth[s]; seen {
			continue
		}
		depth[s] = 0
		origin[s] = map[session.TrackID]bool{s: true}
		queue = append(queue, s)
	}

	// FIFO: every depth-d node is dequeued before any depth-d+1 node, so a
	// node's origin set is complete by the time it is expanded.
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		next := depth[cur] + 1
		for _, dst := range g.Downstream(cur) {
			d, seen := depth[dst]
			if !seen {
				depth[dst] = next
				origin[dst] = make(map[session.TrackID]bool, len(origin[cur]))
				pred[dst] = cur
				queue = append(queue, dst)
				d = next
			}
			if d == next {
				for src := range origin[cur] {
					origin[dst][src] = true
				}
			}
		}
	}

	out := make(map[session.TrackID]Annotation, len(depth))
	for id, d := range depth {
		srcs := make([]session.TrackID, 0, len(origin[id]))
		for src := range origin[id] {
			srcs = append(srcs, src)
		}
		session.SortIDs(srcs)
		out[id] = Annotation{
			Depth:   d,
			Sources: srcs,
			Path:    rebuildPath(id, d, pred),
			Trace:   trace(d, srcs, label),
		}
	}
	return out
}

// rebuildPath walks the predecessor chain back to a seed. Predecessors are
// fixed at first discovery, so the chain is one shortest path and ends at a
// depth-0 source.
func rebuildPath(id session.TrackID, depth int, pred map[session.TrackID]session.TrackID) []session.TrackID {
	path := make([]session.TrackID, depth+1)
	cur := id
	for i := depth; i >= 0; i-- {
		path[i] = cur
		cur = pred[cur]
	}
	return path
}

func trace(depth int, sources []session.TrackID, label func(session.TrackID) string) []string {
	if depth == 0 {
		return []string{"track is deactivated"}
	}
	names := make([]string, 0, traceSourceCap)
	for i, src := range sources {
		if i >= traceSourceCap {
			names = append(names, "...")
			break
		}
		names = append(names, label(src))
	}
	return []string{fmt.Sprintf("reachable from deactivated source(s) at depth %d: %s", depth, strings.Join(names, ", "))}
}
