package session

import (
	"errors"
	"fmt"
)

// Input-contract violations. These abort analysis outright, unlike the
// structural routing anomalies the graph builder records per track.
var (
	ErrEmptySession     = errors.New("session contains no tracks")
	ErrMissingTrackID   = errors.New("track has no id")
	ErrDuplicateTrackID = errors.New("duplicate track id")
)

// Validate checks the loaded track list against the analysis input contract.
// It does not inspect routing targets; dangling references are a per-track
// condition, not a contract violation.
func Validate(tracks []Track) error {
	if len(tracks) == 0 {
		return ErrEmptySession
	}
	seen := make(map[TrackID]string, len(tracks))
	for _, t := range tracks {
		if t.ID == "" {
			return fmt.Errorf("%w: %q", ErrMissingTrackID, t.Name)
		}
		if prev, ok := seen[t.ID]; ok {
			return fmt.Errorf("%w: %s used by %q and %q", ErrDuplicateTrackID, t.ID, prev, t.Name)
		}
		seen[t.ID] = t.Name
	}
	return nil
}

// ByID indexes tracks by id. Callers must have validated the slice first.
func ByID(tracks []Track) map[TrackID]*Track {
	m := make(map[TrackID]*Track, len(tracks))
	for i := range tracks {
		m[tracks[i].ID] = &tracks[i]
	}
	return m
}

// Label renders a human-readable identifier for trace messages, matching the
// "Name (kind id)" form used throughout reports.
func Label(t *Track) string {
	if t == nil {
		return ""
	}
	name := t.Name
	if name == "" {
		name = "Track." + string(t.ID)
	}
	return fmt.Sprintf("%s (%s %s)", name, t.Kind, t.ID)
}
