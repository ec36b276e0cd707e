// Package routing reconstructs the directed signal-flow graph from per-track
// routing descriptors and resolves each track's effective destination.
//
// The graph is derived, never authoritative: audio_in references are the
// primary truth, audio_out references are cross-validated against them, and
// anything that does not line up becomes a recorded per-track condition
// instead of an error. Buses may feed each other, so the graph is allowed to
// contain cycles; only group-destination resolution is hop-limited. Builds
// are pure and order-independent — the same track set yields the same graph
// bytes no matter how the input was ordered.
package routing
