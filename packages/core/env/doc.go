// Package env handles environment variables for requirement files.
//
// It provides functionality for:
//   - Loading .env files
//   - Expanding ${VAR} references the way pip does in requirements files
//   - Collecting REQSPEC_ prefixed settings from the process environment
package env
