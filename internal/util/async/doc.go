// Package async provides per-host parallel fan-out with barrier semantics.
//
// Each task runs in its own goroutine and writes its result into a disjoint
// slot keyed by task name; the caller blocks until every task has settled.
// An optional cap bounds how many tasks run at once so large fleets do not
// overwhelm the controlling process.
package async
