package qc

// Reason is a stable one-character track finding code.
type Reason byte

const (
	ReasonDeactivated  Reason = 'd' // track activator off
	ReasonDeviceOff    Reason = 'o' // device off without power automation
	ReasonRoutingBreak Reason = 'r' // upstream deactivation breaks the path
	ReasonMissingRoute Reason = 'x' // routing target missing or unmatched
	ReasonMuted        Reason = 'm' // track mute button on
	ReasonSilent       Reason = 's' // fader at or below the silence threshold
)

// Warning is a stable one-character advisory code.
type Warning byte

const (
	// WarnAutomatedOff: a device is off but its power button is automated,
	// so the off state is likely intentional.
	WarnAutomatedOff Warning = 'a'
)

// reasonOrder fixes insertion order by severity tier: conditions that break
// an export first, then the advisory mute/silence pair.
var reasonOrder = []Reason{
	ReasonDeactivated,
	ReasonDeviceOff,
	ReasonRoutingBreak,
	ReasonMissingRoute,
	ReasonMuted,
	ReasonSilent,
}

// ReasonLegend maps each code to its meaning, embedded in both report views.
var ReasonLegend = map[string]string{
	"d": "track deactivated (gray power button)",
	"o": "device off and not automated (export risk)",
	"r": "routing impacted by deactivated track (bus/group/return chain break)",
	"x": "routing target missing or unmatched (could not resolve)",
	"m": "muted",
	"s": "silent track guess (volume very low / -inf)",
}

// WarningLegend maps each warning code to its meaning.
var WarningLegend = map[string]string{
	"a": "device off but power button is automated (likely intentional)",
}

// Packed renders reasons as a compact string, e.g. "dr".
func Packed(reasons []Reason) string {
	if len(reasons) == 0 {
		return ""
	}
	buf := make([]byte, len(reasons))
	for i, r := range reasons {
		buf[i] = byte(r)
	}
	return string(buf)
}

// PackedWarnings renders warnings as a compact string.
func PackedWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	buf := make([]byte, len(warnings))
	for i, w := range warnings {
		buf[i] = byte(w)
	}
	return string(buf)
}
