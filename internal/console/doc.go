// Package console provides styled terminal output for interactive runs.
//
// Log records go to stderr through the log package; console output is the
// user-facing progress and summary channel on stdout. All printers accept
// an io.Writer so tests can capture output.
package console
