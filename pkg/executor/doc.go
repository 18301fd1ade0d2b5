// Package executor drives a parsed tutorial: it runs each step's actions
// in source order, applies variable substitution and validation, captures
// results into the variable store, and assembles the run report. Actions
// progress Pending -> Running -> one of Passed, Failed, Skipped, Errored.
// A failure without continue-on-error halts the run and everything after
// it is reported as skipped.
package executor
