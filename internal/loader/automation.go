package loader

import (
	"regexp"
	"sort"

	"setlint/internal/session"
)

var eventTagRx = regexp.MustCompile(`^(Float|Bool|Enum)Event$`)

// parseAutomation resolves the track's automation envelopes against the
// device power targets collected during device parsing. Only envelopes that
// carry at least one event point count; an empty envelope is leftover
// editing state, not automation.
func parseAutomation(trackNode *node, onTargets map[string]int) []session.AutomationBinding {
	if len(onTargets) == 0 {
		return nil
	}
	envelopes := trackNode.findFirst("AutomationEnvelopes")
	if envelopes == nil {
		return nil
	}

	var bindings []session.AutomationBinding
	seen := make(map[string]bool)
	envelopes.walkPrune(func(n *node) bool {
		if n.tag() != "AutomationEnvelope" {
			return true
		}
		pointee := envelopePointee(n)
		if pointee == "" || seen[pointee] {
			return false
		}
		ordinal, ok := onTargets[pointee]
		if !ok || !envelopeHasEvents(n) {
			return false
		}
		seen[pointee] = true
		bindings = append(bindings, session.AutomationBinding{
			TargetID: pointee,
			Device:   ordinal,
			Param:    session.ParamDeviceOn,
		})
		return false
	})

	sort.Slice(bindings, func(i, j int) bool {
		if bindings[i].Device != bindings[j].Device {
			return bindings[i].Device < bindings[j].Device
		}
		return bindings[i].TargetID < bindings[j].TargetID
	})
	return bindings
}

func envelopePointee(env *node) string {
	target := env.findFirst("EnvelopeTarget")
	if target == nil {
		return ""
	}
	pointee := target.findFirst("PointeeId")
	if pointee == nil {
		return ""
	}
	return normalizeText(firstNonEmpty(pointee.attr("Value"), pointee.Text))
}

func envelopeHasEvents(env *node) bool {
	found := false
	env.walk(func(n *node) bool {
		if eventTagRx.MatchString(n.tag()) {
			found = true
			return false
		}
		return true
	})
	return found
}
