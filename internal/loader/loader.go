package loader

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"

	"setlint/internal/logging"
	"setlint/internal/session"
)

// Meta records provenance for a loaded session file.
type Meta struct {
	Path        string `json:"path"`
	SHA256      string `json:"sha256"`
	SizeBytes   int64  `json:"size_bytes"`
	Compressed  bool   `json:"compressed"`
	Creator     string `json:"creator,omitempty"`
	TrackCount  int    `json:"track_count"`
	DeviceCount int    `json:"device_count"`
}

// Limits bounds the extraction work per device. Zero values fall back to
// defaults.
type Limits struct {
	MaxParamsPerDevice int
}

const defaultMaxParams = 120

func (l Limits) maxParams() int {
	if l.MaxParamsPerDevice <= 0 {
		return defaultMaxParams
	}
	return l.MaxParamsPerDevice
}

var gzipMagic = []byte{0x1f, 0x8b}

var trackTagRx = regexp.MustCompile(`^(Audio|Midi|Return|Group|Master)Track$`)

// Load reads a Live session from path. Both gzip-compressed .als files and
// plain XML exports are accepted.
func Load(path string, limits Limits, logger *slog.Logger) ([]session.Track, Meta, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("read session file: %w", err)
	}
	sum := sha256.Sum256(raw)
	meta := Meta{
		Path:      path,
		SHA256:    hex.EncodeToString(sum[:]),
		SizeBytes: int64(len(raw)),
	}

	var reader io.Reader = bytes.NewReader(raw)
	if bytes.HasPrefix(raw, gzipMagic) {
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return nil, meta, fmt.Errorf("open gzip stream: %w", err)
		}
		defer gz.Close()
		reader = gz
		meta.Compressed = true
	}

	tracks, m, err := parse(reader, limits, logger)
	if err != nil {
		return nil, meta, err
	}
	m.Path = meta.Path
	m.SHA256 = meta.SHA256
	m.SizeBytes = meta.SizeBytes
	m.Compressed = meta.Compressed
	return tracks, m, nil
}

// LoadReader parses an uncompressed XML session document.
func LoadReader(r io.Reader, limits Limits, logger *slog.Logger) ([]session.Track, Meta, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	return parse(r, limits, logger)
}

func parse(r io.Reader, limits Limits, logger *slog.Logger) ([]session.Track, Meta, error) {
	var root node
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		return nil, Meta{}, fmt.Errorf("decode session xml: %w", err)
	}

	doc := &root
	if root.tag() != "LiveSet" {
		if ls := root.findFirst("LiveSet"); ls != nil {
			doc = ls
		}
	}
	meta := Meta{Creator: root.attr("Creator")}

	var tracks []session.Track
	doc.walkPrune(func(n *node) bool {
		if !trackTagRx.MatchString(n.tag()) {
			return true
		}
		t, devCount := parseTrack(n, limits, logger)
		meta.DeviceCount += devCount
		tracks = append(tracks, t)
		// Track subtrees never nest other tracks; skip descending.
		return false
	})
	meta.TrackCount = len(tracks)

	logger.Debug("session parsed",
		logging.Int("tracks", meta.TrackCount),
		logging.Int("devices", meta.DeviceCount))
	return tracks, meta, nil
}
