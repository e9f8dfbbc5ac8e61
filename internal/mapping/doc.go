// Package mapping aligns two module sets into a name-keyed tree.
//
// Slot 0 (left) holds the old or implementation side, slot 1 (right) the new
// or contract side. Every node carries at least one symbol. Module and
// namespace levels are materialized while building; nested types and members
// are resolved lazily, once per node, the first time Children is called.
// After that the node's children never change, so a fully enumerated subtree
// can be read from several goroutines.
package mapping
