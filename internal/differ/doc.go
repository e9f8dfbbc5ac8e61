// Package differ classifies mapping nodes with an ordered set of rules.
//
// A node present on one side only is Removed (left) or Added (right) and no
// rule runs for it. A node present on both sides runs every rule registered
// for its kind, in registration order; each rule that finds an
// incompatibility returns Changed and reports exactly one Difference. The
// node is Changed when any rule said so, Unchanged when rules exist for the
// kind, and Unknown only when none do.
//
// Differences are deduplicated on (rule id, doc-id) and never abort a run;
// deciding whether incompatible differences fail a build is up to the caller.
package differ
