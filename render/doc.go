// Package render turns query results into terminal output.
//
// This package is organized into:
// - text.go: German text mode, aligned with text/tabwriter
// - json.go: machine-readable mode behind the global --json flag
// - format.go: shared emoji, delay, clock and HTML-cleanup helpers
//
// Renderers write to an io.Writer and never talk to the network; the
// command layer decides which mode runs.
package render
