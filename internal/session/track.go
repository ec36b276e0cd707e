package session

import (
	"sort"
	"strconv"
)

// TrackID is the opaque stable identifier Live assigns to a track. IDs are
// usually decimal strings but nothing here depends on that beyond ordering.
type TrackID string

// Less orders ids numerically when both sides parse as integers and falls
// back to lexicographic comparison otherwise. All deterministic iteration in
// the analysis pipeline uses this ordering.
func (id TrackID) Less(other TrackID) bool {
	a, aerr := strconv.Atoi(string(id))
	b, berr := strconv.Atoi(string(other))
	if aerr == nil && berr == nil {
		return a < b
	}
	if aerr == nil {
		return true
	}
	if berr == nil {
		return false
	}
	return id < other
}

// SortIDs sorts ids in place using TrackID ordering.
func SortIDs(ids []TrackID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
}

// Kind classifies a track by its role in the set.
type Kind string

const (
	KindAudio  Kind = "audio"
	KindMIDI   Kind = "midi"
	KindReturn Kind = "return"
	KindGroup  Kind = "group"
	KindMaster Kind = "master"
)

// Track is one named signal path in the set. Everything on it is an observed
// fact from the source file; nothing is derived.
type Track struct {
	ID   TrackID
	Name string
	Kind Kind

	// Active mirrors the track activator button. A deactivated track is the
	// primary silencing signal; Muted is recorded but classified separately.
	Active bool
	Muted  bool
	Solo   bool
	Armed  bool

	// Volume and Pan are the mixer fader values when the loader could read
	// them. Nil means unknown rather than zero.
	Volume *float64
	Pan    *float64

	// ParentGroup is the enclosing group track id, empty when the track sits
	// at the top level.
	ParentGroup TrackID

	Routing RoutingDescriptor
	Devices []Device

	// Bindings are the automation envelopes on this track that target a
	// device parameter and carry real event points.
	Bindings []AutomationBinding
}

// Deactivated reports whether the activator button is off.
func (t *Track) Deactivated() bool { return !t.Active }

// AutomationBinding maps an automation target id to the device parameter it
// controls. The loader resolves envelope PointeeIds to (device, parameter)
// pairs; the classifier only ever asks "is this device's on/off automated".
type AutomationBinding struct {
	TargetID string
	Device   int // ordinal within the track's device chain
	Param    string
}

// ParamDeviceOn is the parameter name bound when an envelope automates a
// device power button.
const ParamDeviceOn = "DeviceOn"
