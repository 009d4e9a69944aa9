package requirements

import (
	"github.com/abdul-hamid-achik/reqspec/packages/core/parser"
)

// Entry is one requirement line of a file. Exactly one of Dependency, Err or
// Skipped is set.
type Entry struct {
	Line       int
	Raw        string
	Group      string
	Dependency *parser.Dependency
	Err        error
	// Skipped marks option lines such as "-r base.txt" that carry no
	// specifier. Option holds the option name.
	Skipped bool
	Option  string
}

// Valid reports whether the entry parsed into a dependency.
func (e *Entry) Valid() bool {
	return e.Dependency != nil
}

type FileResult struct {
	Path    string
	Format  string
	Entries []Entry
}

// Valid returns the number of entries that parsed.
func (r *FileResult) Valid() int {
	n := 0
	for i := range r.Entries {
		if r.Entries[i].Valid() {
			n++
		}
	}
	return n
}

// Invalid returns the number of entries that failed to parse.
func (r *FileResult) Invalid() int {
	n := 0
	for i := range r.Entries {
		if r.Entries[i].Err != nil {
			n++
		}
	}
	return n
}

func (r *FileResult) Skipped() int {
	n := 0
	for i := range r.Entries {
		if r.Entries[i].Skipped {
			n++
		}
	}
	return n
}

// Dependencies returns the parsed dependencies in file order.
func (r *FileResult) Dependencies() []*parser.Dependency {
	var deps []*parser.Dependency
	for i := range r.Entries {
		if r.Entries[i].Dependency != nil {
			deps = append(deps, r.Entries[i].Dependency)
		}
	}
	return deps
}
