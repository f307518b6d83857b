// Package preflight provides readiness checks for the filesystem paths and
// settings Garimpeiro depends on.
//
// The CLI "garimpeiro status" command renders every check; ingest and export
// commands call RunAll and refuse to start when a required check fails so a
// long batch does not die halfway on a read-only directory.
package preflight
