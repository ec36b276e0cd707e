package routing

import (
	"fmt"

	"setlint/internal/session"
)

// DestKind classifies where a track's signal ultimately lands.
type DestKind string

const (
	DestTrack      DestKind = "track"
	DestMaster     DestKind = "master"
	DestExternal   DestKind = "external"
	DestNone       DestKind = "none"
	DestUnresolved DestKind = "unresolved"
)

// Destination is a track's effective output after following group membership
// to a non-group terminal.
type Destination struct {
	Kind  DestKind
	Track session.TrackID // set when Kind == DestTrack
}

// DefaultGroupHopLimit bounds group-chain resolution. Real sets nest a few
// groups deep at most; anything past this is a misconfigured cycle.
const DefaultGroupHopLimit = 8

func resolveDestinations(
	tracks []session.Track,
	byID map[session.TrackID]*session.Track,
	hopLimit int,
	addCond func(session.TrackID, ConditionKind, string),
) map[session.TrackID]Destination {
	if hopLimit <= 0 {
		hopLimit = DefaultGroupHopLimit
	}
	dests := make(map[session.TrackID]Destination, len(tracks))
	for i := range tracks {
		t := &tracks[i]
		dests[t.ID] = resolveOne(t, byID, hopLimit, addCond)
	}
	return dests
}

// resolveOne follows the output chain from t until a non-group destination or
// the master is reached. Exceeding the hop limit yields DestUnresolved rather
// than an error so misconfigured group cycles degrade to a condition.
func resolveOne(
	t *session.Track,
	byID map[session.TrackID]*session.Track,
	hopLimit int,
	addCond func(session.TrackID, ConditionKind, string),
) Destination {
	cur := t
	for hops := 0; hops <= hopLimit; hops++ {
		switch cur.Routing.OutputKind {
		case session.RouteMaster:
			return Destination{Kind: DestMaster}
		case session.RouteExternal:
			return Destination{Kind: DestExternal}
		case session.RouteNone:
			return Destination{Kind: DestNone}
		case session.RouteTrack, session.RouteGroup:
			next, _ := outputTarget(cur, byID)
			if next == "" {
				return Destination{Kind: DestUnresolved}
			}
			nt := byID[next]
			if nt.Kind != session.KindGroup {
				return Destination{Kind: DestTrack, Track: next}
			}
			cur = nt
		default:
			// Missing or unknown routing strings resolve to nothing useful.
			return Destination{Kind: DestUnresolved}
		}
	}
	addCond(t.ID, CondUnresolvedGroup, fmt.Sprintf("group chain exceeds %d hops; possible group cycle", hopLimit))
	return Destination{Kind: DestUnresolved}
}
