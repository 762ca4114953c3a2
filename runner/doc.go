// Package runner implements the parallel multi-provider fan-out.
//
// The Runner takes one prompt and dispatches it concurrently to every
// requested provider, building a fresh agent per provider and executing it
// through a pluggable runtime. Provider failures are contained: each provider
// contributes exactly one result slot, failures become descriptive text in
// that slot, and one slot can never abort or poison its siblings. The
// aggregate only becomes observable after every slot reached a terminal
// state — a join, not a stream.
//
// There is no cancellation or timeout layer; callers needing deadlines wrap
// the context they pass to RunAll.
package runner
