// Package retry wraps single remote operations with bounded-attempt retry
// and a fixed inter-attempt delay, normalizing every outcome into one
// result shape.
//
// The executor treats all failure causes identically: a rejected
// authentication retries exactly like a dropped connection, so permanent
// failures burn the full attempt budget. The attempt count is embedded in
// the final message to keep that behavior observable.
//
// Because each attempt typically re-establishes a connection and re-runs
// the full operation, operations passed through this package must be safe
// to re-execute from scratch.
package retry
