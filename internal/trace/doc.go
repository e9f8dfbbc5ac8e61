// Package trace records what a run is doing: which phase is active, which
// module or subtree is being processed, and which findings were suppressed.
//
// Enable it from the command line:
//
//	apiforge diff --trace=- --trace-level=detail --left old/ --right new/
//
// Tracers:
//
//   - Nop: zero-cost when disabled
//   - StreamTracer: writes every event immediately (file or stderr)
//   - RingTracer: keeps the last N events for a dump after a failure
//   - MultiTracer: fans out to several tracers
//
// Levels gate scopes: phase shows ScopeRun and ScopePhase, detail adds
// ScopeModule, debug adds ScopeNode.
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "diff", 0)
//	defer span.End("")
package trace
