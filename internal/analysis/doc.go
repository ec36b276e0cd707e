// Package analysis runs the QC pipeline over a loaded session: routing graph
// construction, activation classification, break propagation, bus detection,
// and aggregation into findings and a summary.
//
// One call to Run owns one Result, one interning pool, and one graph; nothing
// is shared between runs, so callers may analyze independent sessions
// concurrently by giving each its own Run. Stages execute strictly forward
// and never mutate the input records.
package analysis
