// Package bootstrap drives a fleet of freshly provisioned hosts through the
// cluster bootstrap protocol: environment preparation on every host,
// cluster initialization on the primary, join-artifact extraction, fan-out
// membership join, and post-join verification.
//
// Phases are strict sequential barriers; hosts within a phase run
// concurrently with per-host failure isolation. Only two conditions are
// fatal: a preparation failure on any host, and a failed init command on
// the primary. Everything else degrades the report with warnings.
package bootstrap
