// Package main hosts the Garimpeiro CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into corpus batches
// (scan, add), reconciliation reports, ledger validation, exports, and
// configuration scaffolding. It centralizes configuration resolution, the
// --cnpj override, and structured logging setup so subcommands can focus on
// output instead of wiring.
//
// Report tables are written to stdout; logs go to stderr and the log file.
package main
