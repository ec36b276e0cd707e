// Package history persists one summary row per analysis run in a local
// SQLite database.
//
// Rows are keyed by run id alongside the input path and content hash, so
// repeated runs over the same set can be compared without keeping the full
// reports around. A file lock serializes writers across concurrent CLI
// invocations; reads go straight to the database.
package history
