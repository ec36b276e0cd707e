package busscan

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"setlint/internal/classify"
	"setlint/internal/propagation"
	"setlint/internal/routing"
	"setlint/internal/session"
)

// DefaultPatterns is the tunable name table for the orphan heuristic. The
// exact set is policy, not contract; it is chosen to keep false positives
// low.
var DefaultPatterns = []string{"bus", "return", "fx", "send", "recv", "receive"}

// Policy tunes the orphan-bus heuristic.
type Policy struct {
	Patterns []string
}

// Flags is the detector output for one track.
type Flags struct {
	DeadBus   bool
	OrphanBus bool
	Notes     []string
}

// Detect applies the dead/orphan heuristics over the graph, the classifier
// output, and the break annotations. It is pure: the same inputs always
// yield the same flags.
func Detect(
	tracks []session.Track,
	g *routing.Graph,
	classes map[session.TrackID]classify.TrackClass,
	breaks map[session.TrackID]propagation.Annotation,
	policy Policy,
) map[session.TrackID]Flags {
	patterns := policy.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	fold := cases.Fold()
	folded := make([]string, len(patterns))
	for i, p := range patterns {
		folded[i] = fold.String(p)
	}

	out := make(map[session.TrackID]Flags)
	for i := range tracks {
		t := &tracks[i]
		upstream := g.Upstream(t.ID)
		if len(upstream) > 0 {
			if silentCount(upstream, classes, breaks) == len(upstream) {
				out[t.ID] = Flags{
					DeadBus: true,
					Notes:   []string{fmt.Sprintf("dead bus: all %d upstream source(s) are deactivated or broken", len(upstream))},
				}
			}
			continue
		}
		if isOrphan(t, fold, folded) {
			out[t.ID] = Flags{
				OrphanBus: true,
				Notes:     []string{"orphan bus: bus-named track has no upstream sources"},
			}
		}
	}
	return out
}

func silentCount(upstream []session.TrackID, classes map[session.TrackID]classify.TrackClass, breaks map[session.TrackID]propagation.Annotation) int {
	n := 0
	for _, src := range upstream {
		if classes[src].Deactivated {
			n++
			continue
		}
		// Any break annotation counts: an impacted source is treated as
		// silent even when it also has live feeders, which can over-flag a
		// downstream bus. Deliberate tradeoff toward catching broken chains.
		if _, broken := breaks[src]; broken {
			n++
		}
	}
	return n
}

// isOrphan applies the name heuristic with its under-flagging guards: the
// track kind must plausibly be a bus and the input routing must not point at
// hardware or a concrete track.
func isOrphan(t *session.Track, fold cases.Caser, patterns []string) bool {
	if t.Kind != session.KindAudio && t.Kind != session.KindGroup && t.Kind != session.KindReturn {
		return false
	}
	switch t.Routing.InputKind {
	case session.RouteNone, session.RouteMissing, session.RouteUnknown:
	default:
		return false
	}
	name := fold.String(t.Name)
	for _, p := range patterns {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}
