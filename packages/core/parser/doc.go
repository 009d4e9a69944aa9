// Package parser turns PEP-508 requirement specifiers into Dependency values.
//
// Parsing happens in two steps. The grammar package matches the input and
// produces a parse tree; this package walks that tree and fills in a
// Dependency:
//   - the project name
//   - extras, in source order with whitespace removed
//   - the version constraint, delegated to a VersionParser
//   - the URL of a direct reference
//   - environment markers, both as a flat list of comparisons and as a tree
//
// Failures are returned as *ParseError whose kind is either ErrSyntax (the
// input does not have the shape of a specifier) or ErrVersion (the shape is
// fine but the version clause is not a valid constraint).
package parser
