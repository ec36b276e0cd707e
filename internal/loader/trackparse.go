package loader

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"setlint/internal/logging"
	"setlint/internal/session"
)

var kindByTag = map[string]session.Kind{
	"AudioTrack":  session.KindAudio,
	"MidiTrack":   session.KindMIDI,
	"ReturnTrack": session.KindReturn,
	"GroupTrack":  session.KindGroup,
	"MasterTrack": session.KindMaster,
}

var (
	muteTagRx    = regexp.MustCompile(`^(Track)?Mute`)
	soloTagRx    = regexp.MustCompile(`^Solo`)
	armTagRx     = regexp.MustCompile(`^Arm`)
	routeTrackRx = regexp.MustCompile(`Track\.(\d+)`)
)

func parseTrack(n *node, limits Limits, logger *slog.Logger) (session.Track, int) {
	kind := kindByTag[n.tag()]
	t := session.Track{
		ID:          session.TrackID(n.attr("Id")),
		Kind:        kind,
		Active:      true,
		ParentGroup: parseParentGroup(n),
	}
	if t.ID == "" && kind == session.KindMaster {
		t.ID = "master"
	}
	t.Name = parseTrackName(n)
	if t.Name == "" {
		t.Name = fmt.Sprintf("(%s %s)", kind, t.ID)
	}

	mixer := n.findFirst("Mixer")
	if mixer != nil {
		if speaker := mixer.child("Speaker"); speaker != nil {
			if on, ok := boolFromManual(speaker); ok {
				t.Active = on
			}
		}
		// Mute lives under the mixer; matching it anywhere else picks up
		// unrelated clip-level flags.
		mixer.walk(func(d *node) bool {
			if !muteTagRx.MatchString(d.tag()) {
				return true
			}
			if b, ok := boolFromManual(d); ok {
				t.Muted = b
				return false
			}
			return true
		})
		if vol := mixer.child("Volume"); vol != nil {
			if v, ok := scalarFromParam(vol); ok {
				if f, ok := v.(float64); ok {
					t.Volume = &f
				}
			}
		}
		if pan := mixer.child("Pan"); pan != nil {
			if v, ok := scalarFromParam(pan); ok {
				if f, ok := v.(float64); ok {
					t.Pan = &f
				}
			}
		}
	}

	n.walk(func(d *node) bool {
		if soloTagRx.MatchString(d.tag()) {
			if b, ok := boolFromManual(d); ok {
				t.Solo = b
				return false
			}
		}
		return true
	})
	n.walk(func(d *node) bool {
		if armTagRx.MatchString(d.tag()) {
			if b, ok := boolFromManual(d); ok {
				t.Armed = b
				return false
			}
		}
		return true
	})

	t.Routing = parseRouting(n, kind)

	devices, devNodes := parseDevices(n, limits, logger)
	t.Devices = devices
	t.Bindings = parseAutomation(n, devNodes)

	logger.Debug("track parsed",
		logging.String("track", string(t.ID)),
		logging.String("kind", string(kind)),
		logging.Int("devices", len(devices)))
	return t, len(devices)
}

// parseTrackName prefers the user-visible name under the track's Name block,
// falling back to the effective name Live computed.
func parseTrackName(n *node) string {
	block := n.child("Name")
	if block == nil {
		block = n.findFirst("Name")
	}
	if block == nil {
		return ""
	}
	for _, tag := range []string{"UserName", "EffectiveName"} {
		if ch := block.findFirst(tag); ch != nil {
			if v := normalizeNonBoolish(firstNonEmpty(ch.attr("Value"), ch.Text)); v != "" {
				return v
			}
		}
	}
	return normalizeNonBoolish(firstNonEmpty(block.attr("Value"), block.Text))
}

func parseParentGroup(n *node) session.TrackID {
	ch := n.findFirst("TrackGroupId")
	if ch == nil {
		return ""
	}
	v := normalizeText(firstNonEmpty(ch.attr("Value"), ch.Text))
	if v == "" || v == "-1" {
		return ""
	}
	return session.TrackID(v)
}

func parseRouting(n *node, kind session.Kind) session.RoutingDescriptor {
	var rd session.RoutingDescriptor

	inTags := []string{"AudioInputRouting"}
	outTags := []string{"AudioOutputRouting"}
	if kind == session.KindMIDI {
		inTags = append(inTags, "MidiInputRouting")
		outTags = append(outTags, "MidiOutputRouting")
	}

	rd.RawInput, rd.InputKind, rd.Inputs = classifyRoute(n, inTags)
	var outIDs []session.TrackID
	rd.RawOutput, rd.OutputKind, outIDs = classifyRoute(n, outTags)
	if len(outIDs) > 0 {
		rd.Output = outIDs[0]
	}
	return rd
}

// classifyRoute reads the routing element's Target and maps it to a route
// kind plus any referenced track ids.
func classifyRoute(n *node, tags []string) (string, session.RouteKind, []session.TrackID) {
	var routeNode *node
	for _, tag := range tags {
		if routeNode = n.findFirst(tag); routeNode != nil {
			break
		}
	}
	if routeNode == nil {
		return "", session.RouteMissing, nil
	}
	raw := routeNode.descendantAttr(regexp.MustCompile(`^Target$`), "Value")
	if raw == "" {
		if ch := routeNode.findFirst("Target"); ch != nil {
			raw = normalizeText(ch.Text)
		}
	}
	if raw == "" {
		return "", session.RouteMissing, nil
	}

	kind, ids := classifyTarget(raw)
	return raw, kind, ids
}

func classifyTarget(raw string) (session.RouteKind, []session.TrackID) {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "/none"):
		return session.RouteNone, nil
	case strings.Contains(lower, "master"), strings.Contains(lower, "main"):
		return session.RouteMaster, nil
	case strings.Contains(lower, "grouptrack"):
		return session.RouteGroup, nil
	case routeTrackRx.MatchString(raw):
		var ids []session.TrackID
		for _, m := range routeTrackRx.FindAllStringSubmatch(raw, -1) {
			ids = append(ids, session.TrackID(m[1]))
		}
		return session.RouteTrack, ids
	case strings.Contains(lower, "external"):
		return session.RouteExternal, nil
	default:
		return session.RouteUnknown, nil
	}
}
