package requirements

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Entry groups used for pyproject.toml.
const (
	GroupProject     = "project"
	GroupBuildSystem = "build-system"
)

// PyProjectReader reads PEP 621 and PEP 518 dependency arrays from
// pyproject.toml. Optional dependencies use the extra name as group.
type PyProjectReader struct {
	opts Options
}

func NewPyProjectReader(opts Options) *PyProjectReader {
	return &PyProjectReader{opts: opts}
}

func (r *PyProjectReader) CanRead(path string) bool {
	return strings.EqualFold(baseName(path), "pyproject.toml")
}

type pyProject struct {
	Project struct {
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
	BuildSystem struct {
		Requires []string `toml:"requires"`
	} `toml:"build-system"`
}

func (r *PyProjectReader) Read(path string, data []byte) (*FileResult, error) {
	var doc pyProject
	if err := toml.Unmarshal(data, &doc); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("%s:%d:%d: %s", path, row, col, derr.Error())
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	p := r.opts.parser()
	result := &FileResult{Path: path, Format: "pyproject.toml"}
	locate := newLocator(data)

	add := func(group string, specs []string) {
		for _, spec := range specs {
			result.Entries = append(result.Entries, r.opts.parse(p, locate.line(spec), strings.TrimSpace(spec), group))
		}
	}

	add(GroupProject, doc.Project.Dependencies)

	extras := make([]string, 0, len(doc.Project.OptionalDependencies))
	for name := range doc.Project.OptionalDependencies {
		extras = append(extras, name)
	}
	sort.Strings(extras)
	for _, name := range extras {
		add(name, doc.Project.OptionalDependencies[name])
	}

	add(GroupBuildSystem, doc.BuildSystem.Requires)

	return result, nil
}

// locator maps decoded strings back to the line they were written on.
// Repeated strings are matched to successive occurrences.
type locator struct {
	data []byte
	seen map[string]int
}

func newLocator(data []byte) *locator {
	return &locator{data: data, seen: make(map[string]int)}
}

func (l *locator) line(s string) int {
	from := l.seen[s]
	if from >= len(l.data) {
		return 0
	}
	idx := bytes.Index(l.data[from:], []byte(s))
	if idx < 0 {
		return 0
	}
	pos := from + idx
	l.seen[s] = pos + len(s)
	return bytes.Count(l.data[:pos], []byte("\n")) + 1
}
