// Package qc merges the stage outputs into per-track reason sets and the
// run-level summary.
//
// Reasons are stable one-character codes appended in a fixed severity order
// (export-breaking conditions first), which keeps packed reason strings
// diffable across runs. The summary is produced by counting the merged
// findings, never by re-deriving from the raw records.
package qc
