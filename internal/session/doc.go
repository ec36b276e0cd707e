// Package session defines the immutable record model for a loaded Live set:
// tracks, routing descriptors, device chains, and automation bindings.
//
// Records are produced once by the loader and treated as read-only input by
// every analysis stage. Derived facts (reason sets, break annotations) live in
// the stage result maps, never on these records. Validate enforces the input
// contract the analysis pipeline depends on.
package session
