// Package errors provides the structured errors surfaced by the rebind CLI.
// Library packages return plain sentinel errors; this package wraps them
// with category, detail, and suggestion for terminal output.
package errors
