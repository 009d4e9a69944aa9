// Package grammar implements the PEP-508 requirement grammar as a
// parsing expression grammar.
//
// Rules are declared in a table of combinators (sequence, ordered choice,
// repetition, lookahead) and evaluated with unlimited backtracking. A
// successful parse yields a tree of Nodes, one per named rule; a failed
// parse yields a *SyntaxError carrying the furthest offset reached and the
// rules or literals that were expected there.
//
// The grammar handles:
//   - Package names (A.B-C_D) and extras lists ([fred, bar])
//   - Version specifiers, bare or parenthesised (>=3,<2)
//   - Direct references (name @ https://...)
//   - Environment markers with and/or chains and parenthesised groups
package grammar
