package grammar

import (
	"slices"
	"strconv"
	"strings"
)

// Expr is a parsing expression. match attempts the expression at pos and
// reports the position after the match, the nodes produced by named rules
// inside it, and whether it matched. A failed match consumes nothing.
type Expr interface {
	match(s *state, pos int) (int, []*Node, bool)
}

// state is local to one Parse call.
type state struct {
	input    string
	rules    map[Rule]Expr
	furthest int
	expected []string
	quiet    int
}

func (s *state) fail(pos int, what string) {
	if s.quiet > 0 {
		return
	}
	switch {
	case pos > s.furthest:
		s.furthest = pos
		s.expected = append(s.expected[:0], what)
	case pos == s.furthest:
		if !slices.Contains(s.expected, what) {
			s.expected = append(s.expected, what)
		}
	}
}

type literal struct {
	text string
}

// Lit matches text exactly.
func Lit(text string) Expr {
	return literal{text: text}
}

func (l literal) match(s *state, pos int) (int, []*Node, bool) {
	if strings.HasPrefix(s.input[pos:], l.text) {
		return pos + len(l.text), nil, true
	}
	s.fail(pos, strconv.Quote(l.text))
	return pos, nil, false
}

type class struct {
	accept func(byte) bool
}

// Class matches a single byte accepted by fn.
func Class(fn func(byte) bool) Expr {
	return class{accept: fn}
}

func (c class) match(s *state, pos int) (int, []*Node, bool) {
	if pos < len(s.input) && c.accept(s.input[pos]) {
		return pos + 1, nil, true
	}
	return pos, nil, false
}

type sequence struct {
	items []Expr
}

// Seq matches every item in order.
func Seq(items ...Expr) Expr {
	return sequence{items: items}
}

func (q sequence) match(s *state, pos int) (int, []*Node, bool) {
	var nodes []*Node
	cur := pos
	for _, item := range q.items {
		next, children, ok := item.match(s, cur)
		if !ok {
			return pos, nil, false
		}
		nodes = append(nodes, children...)
		cur = next
	}
	return cur, nodes, true
}

type choice struct {
	alts []Expr
}

// Choice is PEG ordered choice: alternatives are tried in order and the
// first one that matches wins, even if a later one would match more.
func Choice(alts ...Expr) Expr {
	return choice{alts: alts}
}

func (c choice) match(s *state, pos int) (int, []*Node, bool) {
	for _, alt := range c.alts {
		if next, nodes, ok := alt.match(s, pos); ok {
			return next, nodes, true
		}
	}
	return pos, nil, false
}

type repeat struct {
	expr Expr
	min  int
}

// ZeroOrMore matches expr greedily any number of times.
func ZeroOrMore(expr Expr) Expr {
	return repeat{expr: expr}
}

// OneOrMore matches expr greedily at least once.
func OneOrMore(expr Expr) Expr {
	return repeat{expr: expr, min: 1}
}

func (r repeat) match(s *state, pos int) (int, []*Node, bool) {
	var nodes []*Node
	cur := pos
	count := 0
	for {
		next, children, ok := r.expr.match(s, cur)
		if !ok {
			break
		}
		nodes = append(nodes, children...)
		count++
		// zero-width match would loop forever
		if next == cur {
			break
		}
		cur = next
	}
	if count < r.min {
		return pos, nil, false
	}
	return cur, nodes, true
}

type optional struct {
	expr Expr
}

// Optional matches expr or nothing.
func Optional(expr Expr) Expr {
	return optional{expr: expr}
}

func (o optional) match(s *state, pos int) (int, []*Node, bool) {
	if next, nodes, ok := o.expr.match(s, pos); ok {
		return next, nodes, true
	}
	return pos, nil, true
}

type notAhead struct {
	expr Expr
}

// Not succeeds without consuming input when expr does not match at the
// current position.
func Not(expr Expr) Expr {
	return notAhead{expr: expr}
}

func (n notAhead) match(s *state, pos int) (int, []*Node, bool) {
	s.quiet++
	_, _, ok := n.expr.match(s, pos)
	s.quiet--
	return pos, nil, !ok
}

type endOfInput struct{}

// EOI matches only at the end of the input.
var EOI Expr = endOfInput{}

func (endOfInput) match(s *state, pos int) (int, []*Node, bool) {
	if pos == len(s.input) {
		return pos, nil, true
	}
	s.fail(pos, "end of input")
	return pos, nil, false
}

type reference struct {
	rule Rule
}

// Ref matches the named rule and wraps what it consumed in a Node.
func Ref(rule Rule) Expr {
	return reference{rule: rule}
}

func (r reference) match(s *state, pos int) (int, []*Node, bool) {
	expr, ok := s.rules[r.rule]
	if !ok {
		s.fail(pos, r.rule.String())
		return pos, nil, false
	}

	furthest, mark := s.furthest, len(s.expected)
	end, children, ok := expr.match(s, pos)
	if !ok {
		// A rule that fails where it started reports itself instead of
		// the terminals it tried.
		if s.quiet == 0 && s.furthest <= pos {
			switch {
			case s.furthest == pos && furthest == pos:
				s.expected = s.expected[:mark]
			case s.furthest == pos:
				s.expected = s.expected[:0]
			}
			s.fail(pos, r.rule.String())
		}
		return pos, nil, false
	}

	node := &Node{
		Rule:     r.rule,
		Start:    pos,
		End:      end,
		Text:     s.input[pos:end],
		Children: children,
	}
	return end, []*Node{node}, true
}
