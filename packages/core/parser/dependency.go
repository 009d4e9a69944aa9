package parser

import (
	"strings"
)

// Dependency is one parsed requirement specifier.
//
// Extras and Markers are never nil; they are empty when the specifier has no
// extras or marker clause. URI is empty unless the specifier is a direct
// reference ("name @ url").
type Dependency struct {
	Name       string
	Version    *Constraint
	Extras     []string
	URI        string
	Markers    []string
	MarkerTree *MarkerExpr
}

// HasURI reports whether the dependency is a direct URL reference.
func (d *Dependency) HasURI() bool {
	return d.URI != ""
}

// HasMarkers reports whether the specifier carried a marker clause.
func (d *Dependency) HasMarkers() bool {
	return d.MarkerTree != nil
}

// String renders the dependency back as a specifier in normalized spacing.
func (d *Dependency) String() string {
	var b strings.Builder
	b.WriteString(d.Name)
	if len(d.Extras) > 0 {
		b.WriteString("[" + strings.Join(d.Extras, ",") + "]")
	}
	switch {
	case d.HasURI():
		b.WriteString(" @ " + d.URI)
		if d.MarkerTree != nil {
			b.WriteString(" ")
		}
	case d.Version != nil && !d.Version.IsAny():
		b.WriteString(d.Version.String())
	}
	if d.MarkerTree != nil {
		b.WriteString("; " + d.MarkerTree.String())
	}
	return b.String()
}

type MarkerKind int

const (
	MarkerComparison MarkerKind = iota
	MarkerAnd
	MarkerOr
)

func (k MarkerKind) String() string {
	switch k {
	case MarkerComparison:
		return "comparison"
	case MarkerAnd:
		return "and"
	case MarkerOr:
		return "or"
	default:
		return "unknown"
	}
}

// MarkerExpr is a node of a marker expression. And and Or nodes use Left and
// Right. Comparison nodes use Variable, Op and Value, with quotes removed
// from quoted operands, and Text holds the comparison as written.
//
// "and" and "or" bind equally and associate to the left, so
// "a and b or c" is Or(And(a, b), c) and "a or b and c" is And(Or(a, b), c).
type MarkerExpr struct {
	Kind  MarkerKind
	Left  *MarkerExpr
	Right *MarkerExpr

	Variable string
	Op       string
	Value    string
	Text     string
}

// Leaves returns the text of every comparison in source order.
func (m *MarkerExpr) Leaves() []string {
	var out []string
	var walk func(*MarkerExpr)
	walk = func(e *MarkerExpr) {
		if e == nil {
			return
		}
		if e.Kind == MarkerComparison {
			out = append(out, e.Text)
			return
		}
		walk(e.Left)
		walk(e.Right)
	}
	walk(m)
	return out
}

func (m *MarkerExpr) String() string {
	if m.Kind == MarkerComparison {
		return m.Text
	}
	right := m.Right.String()
	if m.Right.Kind != MarkerComparison {
		right = "(" + right + ")"
	}
	return m.Left.String() + " " + m.Kind.String() + " " + right
}
