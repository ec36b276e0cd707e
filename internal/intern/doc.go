// Package intern deduplicates structurally-equal values into a per-run
// reference pool. Repeated device settings and plugin metadata are the main
// driver of report size; interning stores each distinct value once and lets
// both report views point at it by a small integer reference.
//
// Equality is defined over a canonical JSON form (sorted object keys,
// normalized number formatting), so a struct and the equivalent map intern to
// the same reference. Reference numbering follows first-seen order, which
// keeps output byte-stable across runs on identical input. Pools are owned by
// exactly one analysis run and never shared.
package intern
