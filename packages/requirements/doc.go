// Package requirements reads Python dependency files and parses every
// requirement specifier in them.
//
// Supported formats:
//   - requirements.txt style files (comments, line continuations, option
//     lines, per-requirement --hash options, ${VAR} expansion)
//   - pyproject.toml ([project] dependencies, optional dependencies and
//     [build-system] requires)
package requirements
