package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// timestampLayout matches the report filename convention
// <base>.<timestamp>.full.json / <base>.<timestamp>.compact.json.
const timestampLayout = "20060102-150405"

// WriteOptions controls file emission.
type WriteOptions struct {
	Dir    string
	Base   string // filename stem, usually the input name without extension
	Minify bool
	Now    time.Time // zero means time.Now
}

// Paths records where the two views landed.
type Paths struct {
	Full    string
	Compact string
}

// Write emits both views next to each other. Files are written atomically
// via a temp file so a crashed run never leaves a truncated report.
func Write(full FullReport, compact CompactReport, opts WriteOptions) (Paths, error) {
	if opts.Base == "" {
		opts.Base = "setlint"
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	stamp := now.UTC().Format(timestampLayout)

	var p Paths
	p.Full = filepath.Join(opts.Dir, fmt.Sprintf("%s.%s.full.json", opts.Base, stamp))
	p.Compact = filepath.Join(opts.Dir, fmt.Sprintf("%s.%s.compact.json", opts.Base, stamp))

	if err := writeJSON(p.Full, full, opts.Minify); err != nil {
		return Paths{}, err
	}
	if err := writeJSON(p.Compact, compact, opts.Minify); err != nil {
		return Paths{}, err
	}
	return p, nil
}

func writeJSON(path string, v any, minify bool) error {
	var (
		data []byte
		err  error
	)
	if minify {
		data, err = json.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finalize %s: %w", filepath.Base(path), err)
	}
	return nil
}
