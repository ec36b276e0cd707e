package analysis

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"setlint/internal/intern"
	"setlint/internal/session"
	"setlint/internal/testsupport"
)

func scenario() []session.Track {
	return []session.Track{
		testsupport.NewTrack("1", "Kick",
			testsupport.Deactivated(),
			testsupport.RoutedTo("5"),
			testsupport.WithDevice("Eq8", testsupport.Bool(false),
				testsupport.WithSettings(session.GenericSettings{Values: map[string]any{"Freq": 120.0}})),
		),
		testsupport.NewTrack("2", "Snare",
			testsupport.RoutedTo("5"),
			testsupport.WithDevice("StereoGain", testsupport.Bool(true),
				testsupport.WithSettings(session.UtilitySettings{})),
		),
		testsupport.NewTrack("5", "Drum Bus",
			testsupport.OfKind(session.KindGroup),
			testsupport.FedBy("1", "2"),
		),
	}
}

func TestRunEndToEnd(t *testing.T) {
	res, err := Run(scenario(), Options{RunID: "fixed"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.RunID != "fixed" {
		t.Errorf("run id = %q", res.RunID)
	}
	if res.Summary.TotalTracks != 3 {
		t.Errorf("total tracks = %d", res.Summary.TotalTracks)
	}
	if got := res.Findings["1"].PackedReasons(); got != "do" {
		t.Errorf("kick reasons = %q, want do", got)
	}
	// A deactivated feeder reaches the bus, so it picks up the break reason
	// even though the snare keeps it from being a dead bus.
	if got := res.Findings["5"].PackedReasons(); got != "r" {
		t.Errorf("bus reasons = %q, want r", got)
	}
	if res.Buses["5"].DeadBus {
		t.Error("bus with a live feeder must not be dead")
	}
	if brk, ok := res.Breaks["5"]; !ok || brk.Depth != 1 {
		t.Errorf("bus break = %+v, %v", brk, ok)
	}
	if res.Pool.Len() != 2 {
		t.Errorf("pool entries = %d, want 2", res.Pool.Len())
	}
	if _, ok := res.SettingsRefs[DeviceKey{Track: "1", Ordinal: 0}]; !ok {
		t.Error("kick device settings not interned")
	}
}

func TestRunRejectsContractViolations(t *testing.T) {
	if _, err := Run(nil, Options{}); !errors.Is(err, session.ErrEmptySession) {
		t.Errorf("empty session err = %v", err)
	}

	dup := []session.Track{
		testsupport.NewTrack("1", "A"),
		testsupport.NewTrack("1", "B"),
	}
	if _, err := Run(dup, Options{}); !errors.Is(err, session.ErrDuplicateTrackID) {
		t.Errorf("duplicate id err = %v", err)
	}

	anon := []session.Track{{Name: "No ID", Kind: session.KindAudio, Active: true}}
	if _, err := Run(anon, Options{}); !errors.Is(err, session.ErrMissingTrackID) {
		t.Errorf("missing id err = %v", err)
	}
}

func TestRunDeterministicAcrossInputOrder(t *testing.T) {
	forward := scenario()
	reversed := []session.Track{forward[2], forward[1], forward[0]}

	r1, err := Run(forward, Options{RunID: "same"})
	if err != nil {
		t.Fatal(err)
	}
	r2, err := Run(reversed, Options{RunID: "same"})
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(r1.Findings, r2.Findings) {
		t.Error("findings differ across input order")
	}
	if r1.Summary != r2.Summary {
		t.Errorf("summaries differ: %+v vs %+v", r1.Summary, r2.Summary)
	}
	if !reflect.DeepEqual(r1.Breaks, r2.Breaks) {
		t.Error("break annotations differ across input order")
	}
	if !reflect.DeepEqual(r1.SettingsRefs, r2.SettingsRefs) {
		t.Error("intern refs differ across input order")
	}
	if !reflect.DeepEqual(r1.Pool.Entries(), r2.Pool.Entries()) {
		t.Error("pool contents differ across input order")
	}
	if !reflect.DeepEqual(r1.SortedIDs(), r2.SortedIDs()) {
		t.Error("sorted ids differ")
	}
}

func TestRunRepeatedIsStable(t *testing.T) {
	tracks := scenario()
	r1, err := Run(tracks, Options{RunID: "same"})
	if err != nil {
		t.Fatal(err)
	}
	r2, err := Run(tracks, Options{RunID: "same"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r1.Findings, r2.Findings) || r1.Summary != r2.Summary {
		t.Error("repeated runs over the same input disagree")
	}
}

func TestRunGeneratesUUIDWhenUnset(t *testing.T) {
	r1, err := Run(scenario(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	r2, err := Run(scenario(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if r1.RunID == "" || r1.RunID == r2.RunID {
		t.Errorf("run ids = %q, %q; want distinct non-empty", r1.RunID, r2.RunID)
	}
}

func TestRunSettingsKindsNeverShareRef(t *testing.T) {
	// Empty payloads of different kinds marshal to the same JSON shape; the
	// variant tag must keep them on distinct pool entries.
	tracks := []session.Track{
		testsupport.NewTrack("1", "Kick",
			testsupport.WithDevice("Eq8", testsupport.Bool(true),
				testsupport.WithSettings(session.EQSettings{}))),
		testsupport.NewTrack("2", "Snare",
			testsupport.WithDevice("StereoGain", testsupport.Bool(true),
				testsupport.WithSettings(session.UtilitySettings{}))),
	}
	res, err := Run(tracks, Options{RunID: "x"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	eqRef := res.SettingsRefs[DeviceKey{Track: "1", Ordinal: 0}]
	utilRef := res.SettingsRefs[DeviceKey{Track: "2", Ordinal: 0}]
	if eqRef == utilRef {
		t.Fatalf("eq and utility settings share ref %d", eqRef)
	}
	if res.Pool.Len() != 2 {
		t.Errorf("pool entries = %d, want 2", res.Pool.Len())
	}
}

func TestRunNowOverride(t *testing.T) {
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	res, err := Run(scenario(), Options{RunID: "x", Now: fixed})
	if err != nil {
		t.Fatal(err)
	}
	if !res.GeneratedAt.Equal(fixed) {
		t.Errorf("generated at = %v, want %v", res.GeneratedAt, fixed)
	}
	if res.GeneratedAt.Location() != time.UTC {
		t.Errorf("generated at location = %v, want UTC", res.GeneratedAt.Location())
	}

	res2, err := Run(scenario(), Options{RunID: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if res2.GeneratedAt.IsZero() {
		t.Error("zero Now must fall back to the clock")
	}
}

func TestInternRefsStartAtZero(t *testing.T) {
	res, err := Run(scenario(), Options{RunID: "x"})
	if err != nil {
		t.Fatal(err)
	}
	ref := res.SettingsRefs[DeviceKey{Track: "1", Ordinal: 0}]
	if ref != intern.Ref(0) {
		t.Errorf("first interned ref = %d, want 0", ref)
	}
}
