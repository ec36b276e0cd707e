package propagation_test

import (
	"reflect"
	"strings"
	"testing"

	"setlint/internal/propagation"
	"setlint/internal/routing"
	"setlint/internal/session"
	"setlint/internal/testsupport"
)

func buildGraph(t *testing.T, tracks []session.Track) *routing.Graph {
	t.Helper()
	g, _, _ := routing.Build(tracks, 0)
	return g
}

func TestPropagateChain(t *testing.T) {
	tracks := []session.Track{
		testsupport.NewTrack("1", "Kick", testsupport.RoutedTo("3"), testsupport.Deactivated()),
		testsupport.NewTrack("3", "Drum Bus", testsupport.FedBy("1"), testsupport.RoutedTo("7")),
		testsupport.NewTrack("7", "Mix Bus", testsupport.FedBy("3")),
	}
	g := buildGraph(t, tracks)
	breaks := propagation.Propagate(g, []session.TrackID{"1"}, nil)

	if len(breaks) != 3 {
		t.Fatalf("got %d annotations, want 3", len(breaks))
	}
	if a := breaks["1"]; a.Depth != 0 || a.Impacted() {
		t.Errorf("seed annotation = %+v", a)
	}
	if a := breaks["3"]; a.Depth != 1 || !reflect.DeepEqual(a.Sources, []session.TrackID{"1"}) {
		t.Errorf("bus annotation = %+v", a)
	}
	if a := breaks["7"]; a.Depth != 2 {
		t.Errorf("mix bus depth = %d, want 2", a.Depth)
	}
}

func TestPropagateNoSources(t *testing.T) {
	tracks := []session.Track{
		testsupport.NewTrack("1", "A", testsupport.RoutedTo("2")),
		testsupport.NewTrack("2", "B", testsupport.FedBy("1"), testsupport.RoutedTo("1")),
	}
	g := buildGraph(t, tracks)

	// A cycle with no deactivated track yields zero annotations; the BFS
	// never enters the loop.
	breaks := propagation.Propagate(g, nil, nil)
	if len(breaks) != 0 {
		t.Errorf("got %d annotations, want 0", len(breaks))
	}
}

func TestPropagateCycleTerminates(t *testing.T) {
	tracks := []session.Track{
		testsupport.NewTrack("1", "A", testsupport.RoutedTo("2"), testsupport.Deactivated()),
		testsupport.NewTrack("2", "B", testsupport.FedBy("1"), testsupport.RoutedTo("3")),
		testsupport.NewTrack("3", "C", testsupport.FedBy("2"), testsupport.RoutedTo("1")),
	}
	g := buildGraph(t, tracks)
	breaks := propagation.Propagate(g, []session.TrackID{"1"}, nil)

	if a := breaks["2"]; a.Depth != 1 {
		t.Errorf("depth of 2 = %d", a.Depth)
	}
	if a := breaks["3"]; a.Depth != 2 {
		t.Errorf("depth of 3 = %d", a.Depth)
	}
	// The back edge 3->1 must not lower the seed's depth.
	if a := breaks["1"]; a.Depth != 0 {
		t.Errorf("seed depth = %d, want 0", a.Depth)
	}
}

func TestPropagateMultiSourceMinDepthUnion(t *testing.T) {
	// Two deactivated sources converge on the same bus at equal depth: both
	// appear in the bus's source set.
	tracks := []session.Track{
		testsupport.NewTrack("1", "Kick", testsupport.RoutedTo("5"), testsupport.Deactivated()),
		testsupport.NewTrack("2", "Snare", testsupport.RoutedTo("5"), testsupport.Deactivated()),
		testsupport.NewTrack("5", "Drum Bus", testsupport.FedBy("1", "2")),
	}
	g := buildGraph(t, tracks)
	breaks := propagation.Propagate(g, []session.TrackID{"1", "2"}, nil)

	a := breaks["5"]
	if a.Depth != 1 {
		t.Fatalf("bus depth = %d, want 1", a.Depth)
	}
	if !reflect.DeepEqual(a.Sources, []session.TrackID{"1", "2"}) {
		t.Errorf("bus sources = %v, want [1 2]", a.Sources)
	}
}

func TestPropagateKeepsMinDepthSourcesOnly(t *testing.T) {
	// Source 1 reaches the mix bus at depth 1, source 9 at depth 2 through an
	// intermediate. Only the min-depth origin is kept.
	tracks := []session.Track{
		testsupport.NewTrack("1", "Direct", testsupport.RoutedTo("5"), testsupport.Deactivated()),
		testsupport.NewTrack("9", "Far", testsupport.RoutedTo("4"), testsupport.Deactivated()),
		testsupport.NewTrack("4", "Mid", testsupport.FedBy("9"), testsupport.RoutedTo("5")),
		testsupport.NewTrack("5", "Mix Bus", testsupport.FedBy("1", "4")),
	}
	g := buildGraph(t, tracks)
	breaks := propagation.Propagate(g, []session.TrackID{"1", "9"}, nil)

	a := breaks["5"]
	if a.Depth != 1 {
		t.Fatalf("mix bus depth = %d, want 1", a.Depth)
	}
	if !reflect.DeepEqual(a.Sources, []session.TrackID{"1"}) {
		t.Errorf("mix bus sources = %v, want [1]", a.Sources)
	}
}

func TestPropagateExemplarPath(t *testing.T) {
	tracks := []session.Track{
		testsupport.NewTrack("1", "Kick", testsupport.RoutedTo("3"), testsupport.Deactivated()),
		testsupport.NewTrack("3", "Drum Bus", testsupport.FedBy("1"), testsupport.RoutedTo("7")),
		testsupport.NewTrack("7", "Mix Bus", testsupport.FedBy("3")),
	}
	g := buildGraph(t, tracks)
	breaks := propagation.Propagate(g, []session.TrackID{"1"}, nil)

	if got := breaks["1"].Path; !reflect.DeepEqual(got, []session.TrackID{"1"}) {
		t.Errorf("seed path = %v, want [1]", got)
	}
	if got := breaks["7"].Path; !reflect.DeepEqual(got, []session.TrackID{"1", "3", "7"}) {
		t.Errorf("mix bus path = %v, want [1 3 7]", got)
	}
}

func TestPropagatePathIsShortest(t *testing.T) {
	// Two routes from the seed to the bus; the exemplar must take the
	// one-hop edge, not the detour through the intermediate.
	tracks := []session.Track{
		testsupport.NewTrack("1", "Src", testsupport.RoutedTo("5"), testsupport.Deactivated()),
		testsupport.NewTrack("4", "Mid", testsupport.FedBy("1"), testsupport.RoutedTo("5")),
		testsupport.NewTrack("5", "Bus", testsupport.FedBy("1", "4")),
	}
	g := buildGraph(t, tracks)
	breaks := propagation.Propagate(g, []session.TrackID{"1"}, nil)

	if got := breaks["5"].Path; !reflect.DeepEqual(got, []session.TrackID{"1", "5"}) {
		t.Errorf("bus path = %v, want [1 5]", got)
	}
}

func TestTraceMessages(t *testing.T) {
	tracks := []session.Track{
		testsupport.NewTrack("1", "Kick", testsupport.RoutedTo("3"), testsupport.Deactivated()),
		testsupport.NewTrack("3", "Drum Bus", testsupport.FedBy("1")),
	}
	g := buildGraph(t, tracks)
	label := func(id session.TrackID) string { return "T" + string(id) }
	breaks := propagation.Propagate(g, []session.TrackID{"1"}, label)

	if got := breaks["1"].Trace; len(got) != 1 || got[0] != "track is deactivated" {
		t.Errorf("seed trace = %v", got)
	}
	trace := breaks["3"].Trace
	if len(trace) != 1 || !strings.Contains(trace[0], "depth 1") || !strings.Contains(trace[0], "T1") {
		t.Errorf("bus trace = %v", trace)
	}
}

func TestTraceCapsSourceList(t *testing.T) {
	var tracks []session.Track
	var feeders []string
	var seeds []session.TrackID
	for _, id := range []string{"1", "2", "3", "4", "5", "6", "7"} {
		tracks = append(tracks, testsupport.NewTrack(id, "Src "+id, testsupport.RoutedTo("9"), testsupport.Deactivated()))
		feeders = append(feeders, id)
		seeds = append(seeds, session.TrackID(id))
	}
	tracks = append(tracks, testsupport.NewTrack("9", "Big Bus", testsupport.FedBy(feeders...)))

	g := buildGraph(t, tracks)
	breaks := propagation.Propagate(g, seeds, nil)

	a := breaks["9"]
	if len(a.Sources) != 7 {
		t.Fatalf("sources = %d, want all 7", len(a.Sources))
	}
	if len(a.Trace) != 1 || !strings.Contains(a.Trace[0], "...") {
		t.Errorf("trace should elide past the cap: %v", a.Trace)
	}
}
