// Package config loads reqspec settings.
//
// Settings come from the first of .reqspec.yaml, .reqspec.yml or
// .reqspec.json found in the working directory. Files are YAML (JSON is
// accepted as a subset) and are checked against an embedded JSON schema
// before they are decoded. Command line flags are merged on top with Merge.
package config
