package loader

import (
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"setlint/internal/logging"
	"setlint/internal/session"
)

// onTargetDepth bounds how deep below a device element the power button is
// trusted. Deeper On elements belong to nested parameters, not the device.
const onTargetDepth = 4

var (
	pluginTagRx = regexp.MustCompile(`(?i)plugin|vst|audiounit|\bau\b`)
	eqBandRx    = regexp.MustCompile(`^Bands\.(\d+)$`)
	keyTermRx   = regexp.MustCompile(`(?i)freq|gain|threshold|ratio|attack|release|decay|amount|drywet|feedback|mode|width|drive|depth|rate|time`)
)

// parseDevices extracts the track's device chain. The returned map relates
// the automation-target id of each device's power parameter to the device
// ordinal, for binding resolution.
func parseDevices(trackNode *node, limits Limits, logger *slog.Logger) ([]session.Device, map[string]int) {
	onTargets := make(map[string]int)

	container := trackNode.findFirst("Devices")
	if container == nil {
		return nil, onTargets
	}

	var devices []session.Device
	for i := range container.Children {
		dn := &container.Children[i]
		if dn.attr("Id") == "" {
			continue
		}
		ordinal := len(devices)
		dev := session.Device{
			Ordinal: ordinal,
			Tag:     dn.tag(),
			Format:  classifyDeviceFormat(dn),
		}
		dev.Name = deviceName(dn, dev.Tag)

		if enabled, targetID, ok := devicePower(dn); ok {
			dev.Enabled = &enabled
			if targetID != "" {
				onTargets[targetID] = ordinal
			}
		}

		if dev.Format.ThirdParty() {
			dev.State = parsePluginState(dn, dev.Name)
		} else {
			dev.Settings = decodeSettings(dn, limits)
		}

		devices = append(devices, dev)
		logger.Debug("device parsed",
			logging.String("tag", dev.Tag),
			logging.String("format", string(dev.Format)),
			logging.Int("ordinal", ordinal))
	}
	return devices, onTargets
}

func classifyDeviceFormat(dn *node) session.DeviceFormat {
	tag := dn.tag()
	lower := strings.ToLower(tag)
	switch {
	case strings.Contains(lower, "vst3"):
		return session.FormatVST3
	case strings.Contains(lower, "vst"):
		return session.FormatVST
	case strings.Contains(lower, "auplugin"), strings.Contains(lower, "audiounit"):
		return session.FormatAU
	case pluginTagRx.MatchString(tag):
		// PluginDevice wraps a typed descriptor; inspect it for the protocol.
		if desc := dn.findFirst("PluginDesc"); desc != nil {
			inner := strings.ToLower(descTag(desc))
			switch {
			case strings.Contains(inner, "vst3"):
				return session.FormatVST3
			case strings.Contains(inner, "vst"):
				return session.FormatVST
			case strings.Contains(inner, "au"):
				return session.FormatAU
			}
		}
		return session.FormatPlugin
	default:
		return session.FormatStock
	}
}

func descTag(desc *node) string {
	for i := range desc.Children {
		return desc.Children[i].tag()
	}
	return ""
}

func deviceName(dn *node, fallback string) string {
	for _, tag := range []string{"PlugName", "UserName", "Name", "EffectiveName"} {
		if ch := dn.findFirst(tag); ch != nil {
			if v := normalizeNonBoolish(firstNonEmpty(ch.attr("Value"), ch.Text)); v != "" {
				return v
			}
		}
	}
	return fallback
}

// devicePower locates the device's own power parameter. Only an On element
// within onTargetDepth levels is trusted; anything deeper is some nested
// parameter that happens to share the tag.
func devicePower(dn *node) (enabled bool, targetID string, ok bool) {
	dn.walkDepth(onTargetDepth, func(d *node, depth int) bool {
		if depth == 0 || d.tag() != "On" {
			return true
		}
		b, found := boolFromManual(d)
		if !found {
			return true
		}
		enabled, ok = b, true
		if at := d.findFirst("AutomationTarget"); at != nil {
			targetID = at.attr("Id")
		}
		return false
	})
	return enabled, targetID, ok
}

func decodeSettings(dn *node, limits Limits) session.Settings {
	switch dn.tag() {
	case "Eq8":
		return decodeEQ8(dn)
	case "StereoGain":
		return decodeUtility(dn)
	case "GlueCompressor":
		return decodeGlue(dn)
	default:
		return decodeGeneric(dn, limits.maxParams())
	}
}

func decodeEQ8(dn *node) session.Settings {
	byIndex := make(map[int]*session.EQBand)
	for i := range dn.Children {
		ch := &dn.Children[i]
		m := eqBandRx.FindStringSubmatch(ch.tag())
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		band := &session.EQBand{Index: idx}
		if a := ch.child("ParameterA"); a != nil {
			band.A = decodeEQSide(a)
		}
		if b := ch.child("ParameterB"); b != nil {
			band.B = decodeEQSide(b)
		}
		byIndex[idx] = band
	}

	s := session.EQSettings{}
	indices := make([]int, 0, len(byIndex))
	for idx := range byIndex {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	for _, idx := range indices {
		s.Bands = append(s.Bands, *byIndex[idx])
	}
	s.AdaptiveQ = boolParam(dn, "AdaptiveQ")
	s.ChannelMode = floatParam(dn, "ChannelMode")
	s.SelectedBand = floatParam(dn, "SelectedBand")
	return s
}

func decodeEQSide(pn *node) *session.EQBandSide {
	side := &session.EQBandSide{
		On:   boolParam(pn, "IsOn"),
		Mode: floatParam(pn, "Mode"),
		Freq: floatParam(pn, "Freq"),
		Gain: floatParam(pn, "Gain"),
		Q:    floatParam(pn, "Q"),
	}
	if side.On == nil && side.Mode == nil && side.Freq == nil && side.Gain == nil && side.Q == nil {
		return nil
	}
	return side
}

func decodeUtility(dn *node) session.Settings {
	return session.UtilitySettings{
		Gain:         floatParam(dn, "Gain"),
		StereoWidth:  floatParam(dn, "StereoWidth"),
		Mono:         boolParam(dn, "Mono"),
		BassMono:     boolParam(dn, "BassMono"),
		BassMonoFreq: floatParam(dn, "BassMonoFrequency"),
		InvertLeft:   boolParam(dn, "PhaseInvertL"),
		InvertRight:  boolParam(dn, "PhaseInvertR"),
	}
}

func decodeGlue(dn *node) session.Settings {
	s := session.CompressorSettings{
		Threshold:   floatParam(dn, "Threshold"),
		Ratio:       floatParam(dn, "Ratio"),
		Attack:      floatParam(dn, "Attack"),
		Release:     floatParam(dn, "Release"),
		Makeup:      floatParam(dn, "Makeup"),
		DryWet:      floatParam(dn, "DryWet"),
		SidechainOn: boolParam(dn, "SideChainOn"),
	}
	if sc := dn.findFirst("SideChain"); sc != nil {
		if t := sc.findFirst("Target"); t != nil {
			s.SidechainTarget = normalizeText(firstNonEmpty(t.attr("Value"), t.Text))
		}
	}
	return s
}

// decodeGeneric is the fallback for stock devices without a dedicated
// decoder: a bounded scan of parameter-looking elements whose tags carry a
// recognizable key term. First occurrence per tag wins.
func decodeGeneric(dn *node, maxParams int) session.Settings {
	values := make(map[string]any)
	dn.walk(func(d *node) bool {
		if len(values) >= maxParams {
			return false
		}
		tag := d.tag()
		if tag == dn.tag() || !keyTermRx.MatchString(tag) {
			return true
		}
		if _, seen := values[tag]; seen {
			return true
		}
		if v, ok := scalarFromParam(d); ok {
			if s, isStr := v.(string); isStr && len(s) > 64 {
				return true
			}
			values[tag] = v
		}
		return true
	})
	if len(values) == 0 {
		return nil
	}
	return session.GenericSettings{Values: values}
}

func boolParam(n *node, tag string) *bool {
	ch := n.findFirst(tag)
	if ch == nil {
		return nil
	}
	if b, ok := boolFromManual(ch); ok {
		return &b
	}
	return nil
}

func floatParam(n *node, tag string) *float64 {
	ch := n.findFirst(tag)
	if ch == nil {
		return nil
	}
	if v, ok := scalarFromParam(ch); ok {
		if f, isF := v.(float64); isF {
			return &f
		}
	}
	return nil
}
