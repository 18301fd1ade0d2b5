// Package output renders run progress and reports.
//
// Three renderers cover the supported formats: Text writes styled,
// human-readable progress honoring the configured verbosity toggles,
// JSONL emits one JSON object per action plus a trailing summary, and
// WriteJUnit produces a JUnit XML document for CI consumers. Text and
// JSONL implement the executor's Observer contract so they can stream
// while the run progresses.
package output
