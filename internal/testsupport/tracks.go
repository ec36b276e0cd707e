package testsupport

import (
	"setlint/internal/session"
)

// TrackOption mutates a track under construction.
type TrackOption func(*session.Track)

// NewTrack builds an active audio track with the given id and name routed to
// the master, then applies the options.
func NewTrack(id, name string, opts ...TrackOption) session.Track {
	t := session.Track{
		ID:     session.TrackID(id),
		Name:   name,
		Kind:   session.KindAudio,
		Active: true,
		Routing: session.RoutingDescriptor{
			InputKind:  session.RouteNone,
			OutputKind: session.RouteMaster,
		},
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Deactivated turns the activator off.
func Deactivated() TrackOption {
	return func(t *session.Track) { t.Active = false }
}

// Muted sets the mute flag.
func Muted() TrackOption {
	return func(t *session.Track) { t.Muted = true }
}

// OfKind overrides the track kind.
func OfKind(kind session.Kind) TrackOption {
	return func(t *session.Track) { t.Kind = kind }
}

// FedBy declares the track's audio_in sources.
func FedBy(ids ...string) TrackOption {
	return func(t *session.Track) {
		for _, id := range ids {
			t.Routing.Inputs = append(t.Routing.Inputs, session.TrackID(id))
		}
		t.Routing.InputKind = session.RouteTrack
	}
}

// RoutedTo points the track's output at another track.
func RoutedTo(id string) TrackOption {
	return func(t *session.Track) {
		t.Routing.Output = session.TrackID(id)
		t.Routing.OutputKind = session.RouteTrack
	}
}

// WithVolume sets the fader level.
func WithVolume(v float64) TrackOption {
	return func(t *session.Track) { t.Volume = &v }
}

// WithDevice appends a device to the chain, assigning the next ordinal.
func WithDevice(tag string, enabled *bool, opts ...DeviceOption) TrackOption {
	return func(t *session.Track) {
		d := session.Device{
			Ordinal: len(t.Devices),
			Tag:     tag,
			Name:    tag,
			Format:  session.FormatStock,
			Enabled: enabled,
		}
		for _, opt := range opts {
			opt(&d)
		}
		t.Devices = append(t.Devices, d)
	}
}

// DeviceOption mutates a device under construction.
type DeviceOption func(*session.Device)

// WithSettings attaches decoded settings.
func WithSettings(s session.Settings) DeviceOption {
	return func(d *session.Device) { d.Settings = s }
}

// AsPlugin marks the device third-party with the given opaque state.
func AsPlugin(format session.DeviceFormat, state *session.OpaqueState) DeviceOption {
	return func(d *session.Device) {
		d.Format = format
		d.State = state
	}
}

// PowerAutomated adds an automation binding over the device's power button.
// Call after WithDevice so the ordinal exists.
func PowerAutomated(ordinal int) TrackOption {
	return func(t *session.Track) {
		t.Bindings = append(t.Bindings, session.AutomationBinding{
			TargetID: "auto",
			Device:   ordinal,
			Param:    session.ParamDeviceOn,
		})
	}
}

// Bool returns a pointer for three-valued device power fields.
func Bool(b bool) *bool { return &b }
