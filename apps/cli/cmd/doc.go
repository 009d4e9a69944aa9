// Package cmd implements the reqspec CLI commands using Cobra.
//
// Available commands:
//   - parse: Parse specifiers given as arguments
//   - check: Check requirement files for invalid specifiers, optionally watching them
//   - list: List the dependencies declared in requirement files
//   - index: Store parsed dependencies in SQLite or PostgreSQL
//   - bench: Measure parse latency of specifiers
//   - init: Write a default .reqspec.yaml
//   - version: Show reqspec version information
//
// Flag defaults can be set with REQSPEC_* environment variables. The process
// exit code tells invalid specifiers (1) apart from I/O errors (2), config
// errors (3) and usage errors (64).
package cmd
