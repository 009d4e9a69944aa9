package output

import (
	"errors"

	"github.com/abdul-hamid-achik/reqspec/packages/core/parser"
	"github.com/abdul-hamid-achik/reqspec/packages/requirements"
)

// DependencyJSON is the serialized form of a parsed dependency.
type DependencyJSON struct {
	Name       string      `json:"name" yaml:"name"`
	Version    string      `json:"version" yaml:"version"`
	Extras     []string    `json:"extras" yaml:"extras"`
	URI        string      `json:"uri,omitempty" yaml:"uri,omitempty"`
	Markers    []string    `json:"markers" yaml:"markers"`
	MarkerTree *MarkerJSON `json:"markerTree,omitempty" yaml:"markerTree,omitempty"`
}

// MarkerJSON is the serialized form of a marker expression.
type MarkerJSON struct {
	Kind     string      `json:"kind" yaml:"kind"`
	Left     *MarkerJSON `json:"left,omitempty" yaml:"left,omitempty"`
	Right    *MarkerJSON `json:"right,omitempty" yaml:"right,omitempty"`
	Variable string      `json:"variable,omitempty" yaml:"variable,omitempty"`
	Op       string      `json:"op,omitempty" yaml:"op,omitempty"`
	Value    string      `json:"value,omitempty" yaml:"value,omitempty"`
}

func NewDependencyJSON(dep *parser.Dependency) *DependencyJSON {
	if dep == nil {
		return nil
	}
	out := &DependencyJSON{
		Name:       dep.Name,
		Version:    parser.AnyVersionText,
		Extras:     dep.Extras,
		URI:        dep.URI,
		Markers:    dep.Markers,
		MarkerTree: newMarkerJSON(dep.MarkerTree),
	}
	if dep.Version != nil {
		out.Version = dep.Version.String()
	}
	if out.Extras == nil {
		out.Extras = []string{}
	}
	if out.Markers == nil {
		out.Markers = []string{}
	}
	return out
}

func newMarkerJSON(m *parser.MarkerExpr) *MarkerJSON {
	if m == nil {
		return nil
	}
	return &MarkerJSON{
		Kind:     m.Kind.String(),
		Left:     newMarkerJSON(m.Left),
		Right:    newMarkerJSON(m.Right),
		Variable: m.Variable,
		Op:       m.Op,
		Value:    m.Value,
	}
}

// EntryJSON is the serialized form of one requirement line.
type EntryJSON struct {
	Line       int             `json:"line" yaml:"line"`
	Raw        string          `json:"raw" yaml:"raw"`
	Group      string          `json:"group,omitempty" yaml:"group,omitempty"`
	Valid      bool            `json:"valid" yaml:"valid"`
	Skipped    bool            `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Option     string          `json:"option,omitempty" yaml:"option,omitempty"`
	Error      string          `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind  string          `json:"errorKind,omitempty" yaml:"errorKind,omitempty"`
	Dependency *DependencyJSON `json:"dependency,omitempty" yaml:"dependency,omitempty"`
}

func NewEntryJSON(e *requirements.Entry) EntryJSON {
	out := EntryJSON{
		Line:       e.Line,
		Raw:        e.Raw,
		Group:      e.Group,
		Valid:      e.Valid(),
		Skipped:    e.Skipped,
		Option:     e.Option,
		Dependency: NewDependencyJSON(e.Dependency),
	}
	if e.Err != nil {
		out.Error = e.Err.Error()
		out.ErrorKind = ErrorKind(e.Err)
	}
	return out
}

// ErrorKind classifies an entry error as "syntax", "version", "length",
// "variable" or "other".
func ErrorKind(err error) string {
	switch {
	case parser.IsSyntax(err):
		return "syntax"
	case parser.IsVersion(err):
		return "version"
	case errors.Is(err, requirements.ErrTooLong):
		return "length"
	case errors.Is(err, requirements.ErrUnresolved):
		return "variable"
	default:
		return "other"
	}
}
