// Package snapshot converts tracked objects into JSON-safe field mappings and
// rebuilds unsaved in-memory skeletons from stored mappings.
package snapshot
