// Package classify derives activation facts from track and device records.
//
// It answers two questions per track: is the track silenced (deactivated,
// muted, or faded to silence), and which devices are off without an
// automation envelope explaining the off state. It is a pure function of the
// record model and deliberately knows nothing about the routing graph.
package classify
