// Package cli provides shared CLI functionality for apsconnect commands.
//
// It holds the typed authentication errors that the root command maps to
// semantic exit codes, and the output helpers used by status commands:
// a kubectl-style plain table writer and colored token status rendering.
package cli
