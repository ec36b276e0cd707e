// Package report renders the two JSON views of an analysis result.
//
// The full view is the human-debuggable one: annotated tracks, inline device
// settings, pool contents, and the code legends. The compact view is the
// machine-diffable one: short keys, packed reason strings, and pool
// references instead of inline payloads. Both are pure projections of the
// same Result; neither re-runs any analysis stage.
package report
