// Package loader reads a Live set (.als gzip container or raw .xml) and
// decodes it into the session record model.
//
// Live's XML schema drifts across versions, so extraction is deliberately
// best-effort and regexp-driven: names, flags, and routing strings are pulled
// from the closest matching elements, boolean-looking junk is rejected as a
// name, and the power state of a device is only trusted when found shallow in
// the device subtree. Third-party plugin state stays opaque; only a bounded
// fingerprint (hash, length, role guess, vendor hints) survives decoding.
package loader
