package classify

import (
	"setlint/internal/session"
)

// DefaultSilentVolume is the fader level at or below which a track is guessed
// to be silent. Live stores track volume linearly in 0..1.
const DefaultSilentVolume = 1e-6

// DeviceFinding is the classification of one device in a chain.
type DeviceFinding struct {
	Ordinal int
	// UnexplainedOff: disabled with no envelope automating the power button.
	// The likely "oops, left it off" case.
	UnexplainedOff bool
	// AutomatedOff: disabled but the power button is automated, so the off
	// state may be intentional during playback. Reported as a warning.
	AutomatedOff bool
}

// TrackClass is the per-track classifier output.
type TrackClass struct {
	Deactivated bool
	Muted       bool
	SilentGuess bool
	Devices     []DeviceFinding
}

// AnyUnexplainedOff reports whether any device in the chain is off without
// automation cover.
func (c TrackClass) AnyUnexplainedOff() bool {
	for _, d := range c.Devices {
		if d.UnexplainedOff {
			return true
		}
	}
	return false
}

// AnyAutomatedOff reports whether any device is off with its power automated.
func (c TrackClass) AnyAutomatedOff() bool {
	for _, d := range c.Devices {
		if d.AutomatedOff {
			return true
		}
	}
	return false
}

// Options tunes the classifier thresholds.
type Options struct {
	SilentVolume float64
}

// Classify computes activation facts for every track. Deactivation is the
// only silencing signal that feeds break propagation; mute and the silent
// fader guess are independent low-severity conditions.
func Classify(tracks []session.Track, opts Options) map[session.TrackID]TrackClass {
	threshold := opts.SilentVolume
	if threshold <= 0 {
		threshold = DefaultSilentVolume
	}
	out := make(map[session.TrackID]TrackClass, len(tracks))
	for i := range tracks {
		t := &tracks[i]
		cls := TrackClass{
			Deactivated: t.Deactivated(),
			Muted:       t.Muted,
			SilentGuess: t.Volume != nil && *t.Volume <= threshold,
		}
		if len(t.Devices) > 0 {
			cls.Devices = make([]DeviceFinding, 0, len(t.Devices))
			for j := range t.Devices {
				d := &t.Devices[j]
				finding := DeviceFinding{Ordinal: d.Ordinal}
				if d.Off() {
					if powerAutomated(t.Bindings, d.Ordinal) {
						finding.AutomatedOff = true
					} else {
						finding.UnexplainedOff = true
					}
				}
				cls.Devices = append(cls.Devices, finding)
			}
		}
		out[t.ID] = cls
	}
	return out
}

// DeactivatedIDs returns the deactivated track ids in id order, the seed set
// for break propagation.
func DeactivatedIDs(classes map[session.TrackID]TrackClass) []session.TrackID {
	ids := make([]session.TrackID, 0)
	for id, cls := range classes {
		if cls.Deactivated {
			ids = append(ids, id)
		}
	}
	session.SortIDs(ids)
	return ids
}

func powerAutomated(bindings []session.AutomationBinding, ordinal int) bool {
	for _, b := range bindings {
		if b.Device == ordinal && b.Param == session.ParamDeviceOn {
			return true
		}
	}
	return false
}
