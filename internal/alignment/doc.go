// Package alignment matches records across independently ordered series.
//
// Each series is sorted by a numeric key. The engine walks all series in
// step and emits groups holding at most one record per series, such that
// a series never contributes an earlier record to a later group and the
// keys inside a group lie within a tolerance window of the group's
// reference (its smallest key).
//
// For each group the engine runs a bounded local search over draft states,
// a tuple of one candidate index per series. A draft may skip records of a
// series when doing so lets more series join the group; skipped records are
// emitted as single-record groups ahead of it. Visited drafts are memoized,
// so identical states are never explored twice, and a global iteration cap
// bounds the work on pathological inputs.
package alignment
