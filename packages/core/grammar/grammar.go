package grammar

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Grammar is an immutable rule table with a start rule. It holds no parse
// state and is safe for concurrent use.
type Grammar struct {
	rules map[Rule]Expr
	start Rule
}

// New builds a grammar from a rule table. Rules reference each other with
// Ref, so recursive rules are allowed; left recursion is not.
func New(rules map[Rule]Expr, start Rule) *Grammar {
	return &Grammar{rules: rules, start: start}
}

var pep508 = New(pep508Rules(), RuleMain)

// PEP508 returns the requirement specifier grammar.
func PEP508() *Grammar {
	return pep508
}

// Parse parses a requirement specifier with the PEP-508 grammar.
func Parse(input string) (*Node, error) {
	return pep508.Parse(input)
}

// Parse matches the start rule against the whole input and returns the
// root node.
func (g *Grammar) Parse(input string) (*Node, error) {
	expr, ok := g.rules[g.start]
	if !ok {
		return nil, fmt.Errorf("grammar has no rule %s", g.start)
	}

	s := &state{input: input, rules: g.rules}
	end, children, ok := expr.match(s, 0)
	if !ok {
		return nil, newSyntaxError(input, s.furthest, s.expected)
	}

	return &Node{
		Rule:     g.start,
		Start:    0,
		End:      end,
		Text:     input[:end],
		Children: children,
	}, nil
}

// SyntaxError reports where a parse stopped and what the grammar expected
// there. Line and Column are 1-based; Column counts bytes.
type SyntaxError struct {
	Input    string
	Offset   int
	Line     int
	Column   int
	Expected []string
}

func newSyntaxError(input string, offset int, expected []string) *SyntaxError {
	line := strings.Count(input[:offset], "\n") + 1
	col := offset + 1
	if idx := strings.LastIndex(input[:offset], "\n"); idx >= 0 {
		col = offset - idx
	}
	return &SyntaxError{
		Input:    input,
		Offset:   offset,
		Line:     line,
		Column:   col,
		Expected: append([]string(nil), expected...),
	}
}

func (e *SyntaxError) Error() string {
	msg := fmt.Sprintf("%d:%d: unexpected %s", e.Line, e.Column, e.found())
	if len(e.Expected) > 0 {
		msg += ", expected " + joinExpected(e.Expected)
	}
	return msg
}

func (e *SyntaxError) found() string {
	if e.Offset >= len(e.Input) {
		return "end of input"
	}
	r, _ := utf8.DecodeRuneInString(e.Input[e.Offset:])
	return strconv.QuoteRune(r)
}

// Snippet renders the offending line with a caret under the error offset.
func (e *SyntaxError) Snippet() string {
	start := strings.LastIndex(e.Input[:e.Offset], "\n") + 1
	end := len(e.Input)
	if idx := strings.Index(e.Input[e.Offset:], "\n"); idx >= 0 {
		end = e.Offset + idx
	}
	line := e.Input[start:end]

	// keep tabs so the caret lines up in a terminal
	var pad strings.Builder
	for _, ch := range []byte(e.Input[start:e.Offset]) {
		if ch == '\t' {
			pad.WriteByte('\t')
		} else {
			pad.WriteByte(' ')
		}
	}
	return line + "\n" + pad.String() + "^"
}

func joinExpected(expected []string) string {
	switch len(expected) {
	case 1:
		return expected[0]
	case 2:
		return expected[0] + " or " + expected[1]
	default:
		return strings.Join(expected[:len(expected)-1], ", ") + " or " + expected[len(expected)-1]
	}
}
