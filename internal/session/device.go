package session

// DeviceFormat distinguishes stock Live devices from third-party plugins.
type DeviceFormat string

const (
	FormatStock  DeviceFormat = "stock"
	FormatVST    DeviceFormat = "vst"
	FormatVST3   DeviceFormat = "vst3"
	FormatAU     DeviceFormat = "au"
	FormatPlugin DeviceFormat = "plugin" // third-party, exact protocol unknown
)

// ThirdParty reports whether the format denotes an external plugin.
func (f DeviceFormat) ThirdParty() bool { return f != FormatStock }

// Device is one entry in a track's device chain. Ordinal is the stable
// position within the chain and doubles as the device identity for
// automation bindings.
type Device struct {
	Ordinal int
	Tag     string // source element tag, e.g. Eq8, StereoGain, PluginDevice
	Name    string
	Format  DeviceFormat

	// Enabled is three-valued: nil means the loader could not confidently
	// find the power button, which must never be treated as off.
	Enabled *bool

	// Settings carries decoded stock-device state; nil for devices the
	// decoder does not understand. Opaque third-party state goes in State.
	Settings Settings

	// State is bounded metadata about an opaque plugin blob.
	State *OpaqueState
}

// Off reports whether the device is explicitly disabled.
func (d *Device) Off() bool { return d.Enabled != nil && !*d.Enabled }

// SettingsKind tags the closed set of decoded settings variants.
type SettingsKind string

const (
	SettingsEQ         SettingsKind = "eq"
	SettingsUtility    SettingsKind = "utility"
	SettingsCompressor SettingsKind = "compressor"
	SettingsGeneric    SettingsKind = "generic"
)

// Settings is the decoded-parameter payload of a stock device. The concrete
// types form a closed set dispatched by Kind; values must marshal to JSON
// deterministically because the interning pool fingerprints them.
type Settings interface {
	Kind() SettingsKind
}

// EQBandSide holds one side (A/B) of an EQ Eight band.
type EQBandSide struct {
	On   *bool    `json:"on,omitempty"`
	Mode *float64 `json:"mode,omitempty"`
	Freq *float64 `json:"freq,omitempty"`
	Gain *float64 `json:"gain,omitempty"`
	Q    *float64 `json:"q,omitempty"`
}

// EQBand is one of up to eight parametric bands.
type EQBand struct {
	Index int         `json:"index"`
	A     *EQBandSide `json:"a,omitempty"`
	B     *EQBandSide `json:"b,omitempty"`
}

// EQSettings is the decoded state of an EQ Eight.
type EQSettings struct {
	Bands        []EQBand `json:"bands,omitempty"`
	AdaptiveQ    *bool    `json:"adaptive_q,omitempty"`
	ChannelMode  *float64 `json:"channel_mode,omitempty"`
	SelectedBand *float64 `json:"selected_band,omitempty"`
}

func (EQSettings) Kind() SettingsKind { return SettingsEQ }

// UtilitySettings is the decoded state of a Utility (StereoGain) device.
type UtilitySettings struct {
	Gain         *float64 `json:"gain,omitempty"`
	StereoWidth  *float64 `json:"stereo_width,omitempty"`
	Mono         *bool    `json:"mono,omitempty"`
	BassMono     *bool    `json:"bass_mono,omitempty"`
	BassMonoFreq *float64 `json:"bass_mono_freq,omitempty"`
	InvertLeft   *bool    `json:"invert_left,omitempty"`
	InvertRight  *bool    `json:"invert_right,omitempty"`
}

func (UtilitySettings) Kind() SettingsKind { return SettingsUtility }

// CompressorSettings is the decoded state of a Glue Compressor.
type CompressorSettings struct {
	Threshold       *float64 `json:"threshold,omitempty"`
	Ratio           *float64 `json:"ratio,omitempty"`
	Attack          *float64 `json:"attack,omitempty"`
	Release         *float64 `json:"release,omitempty"`
	Makeup          *float64 `json:"makeup,omitempty"`
	DryWet          *float64 `json:"dry_wet,omitempty"`
	SidechainOn     *bool    `json:"sidechain_on,omitempty"`
	SidechainTarget string   `json:"sidechain_target,omitempty"`
}

func (CompressorSettings) Kind() SettingsKind { return SettingsCompressor }

// GenericSettings is the bounded key-term scan fallback for stock devices
// without a dedicated decoder. Values hold bools, floats, or short strings.
type GenericSettings struct {
	Values map[string]any `json:"values"`
}

func (GenericSettings) Kind() SettingsKind { return SettingsGeneric }

// OpaqueState is bounded metadata about a third-party plugin state blob. The
// blob itself never leaves the loader; only the fingerprint, size, and
// classification survive.
type OpaqueState struct {
	SHA256   string   `json:"sha256"` // first 16 hex chars
	Length   int      `json:"length"`
	Role     string   `json:"role,omitempty"`      // limiter, compressor, eq, ...
	HintTags []string `json:"hint_tags,omitempty"` // vendor/framework markers
}
