// Package registry describes the application entity types whose instances are
// logged. Each type is declared once through a Descriptor (an ordered field
// list with labels, kinds and relation targets) and collected in an explicit
// Registry built at process start. Snapshot encoding, decoding and display
// formatting all consult the descriptor instead of inspecting values at
// runtime.
package registry
