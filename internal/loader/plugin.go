package loader

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"setlint/internal/session"
)

// stateScanLimit caps how much of a decoded plugin blob is inspected for
// framework markers. Blobs can run to megabytes; markers sit near the front.
const stateScanLimit = 1 << 16

var (
	hexBlobRx    = regexp.MustCompile(`^[0-9A-Fa-f\s]+$`)
	stateTagRx   = regexp.MustCompile(`(?i)processorstate|buffer|preset|statechunk`)
	whitespaceRx = regexp.MustCompile(`\s+`)
)

// roleByTerm maps name fragments to the coarse role reported for an opaque
// plugin. First match in order wins.
var roleByTerm = []struct {
	term string
	role string
}{
	{"limit", "limiter"},
	{"comp", "compressor"},
	{"eq", "eq"},
	{"reverb", "reverb"},
	{"delay", "delay"},
	{"sat", "saturation"},
	{"dist", "saturation"},
	{"gate", "gate"},
	{"chorus", "modulation"},
	{"phaser", "modulation"},
	{"flang", "modulation"},
}

// hintMarkers are printable framework and vendor strings worth surfacing
// when they appear inside a state blob.
var hintMarkers = []string{
	"JUCE", "FabFilter", "VSTPreset", "iZotope", "Waves", "CcnK", "u-he",
}

// parsePluginState fingerprints a third-party device's state blob without
// retaining the blob itself.
func parsePluginState(dn *node, name string) *session.OpaqueState {
	blob := findStateBlob(dn)
	if blob == nil {
		return nil
	}
	sum := sha256.Sum256(blob)
	state := &session.OpaqueState{
		SHA256: hex.EncodeToString(sum[:])[:16],
		Length: len(blob),
		Role:   classifyRole(name),
	}

	scan := blob
	if len(scan) > stateScanLimit {
		scan = scan[:stateScanLimit]
	}
	text := string(scan)
	for _, marker := range hintMarkers {
		if strings.Contains(text, marker) {
			state.HintTags = append(state.HintTags, marker)
		}
	}
	return state
}

// findStateBlob returns the decoded bytes of the largest hex-encoded state
// element under the device. Live stores plugin chunks as whitespace-broken
// hex text.
func findStateBlob(dn *node) []byte {
	var best []byte
	dn.walk(func(n *node) bool {
		if !stateTagRx.MatchString(n.tag()) {
			return true
		}
		text := strings.TrimSpace(n.Text)
		if len(text) < 8 || !hexBlobRx.MatchString(text) {
			return true
		}
		compact := whitespaceRx.ReplaceAllString(text, "")
		if len(compact)%2 != 0 {
			return true
		}
		decoded, err := hex.DecodeString(compact)
		if err != nil {
			return true
		}
		if len(decoded) > len(best) {
			best = decoded
		}
		return true
	})
	return best
}

func classifyRole(name string) string {
	lower := strings.ToLower(name)
	for _, entry := range roleByTerm {
		if strings.Contains(lower, entry.term) {
			return entry.role
		}
	}
	return ""
}
