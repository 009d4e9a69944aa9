package requirements

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/abdul-hamid-achik/reqspec/packages/core/env"
	"github.com/abdul-hamid-achik/reqspec/packages/core/parser"
)

// ErrTooLong is recorded on entries longer than the configured maximum.
var ErrTooLong = errors.New("requirement exceeds maximum length")

// ErrUnresolved is recorded on entries that reference an unset ${VAR}.
var ErrUnresolved = errors.New("unresolved environment variable")

// ErrUnsupported is returned for files no reader accepts.
var ErrUnsupported = errors.New("unsupported requirements file")

// Reader parses one kind of dependency file.
type Reader interface {
	CanRead(path string) bool
	Read(path string, data []byte) (*FileResult, error)
}

// Options are shared by all readers.
type Options struct {
	// MaxLength bounds a single specifier in bytes. Zero means 4096.
	MaxLength int
	// Resolver expands ${VAR} references. Nil disables expansion.
	Resolver *env.Resolver
	// Parser parses specifiers. Nil means the default parser.
	Parser *parser.Parser
}

const defaultMaxLength = 4096

func (o Options) maxLength() int {
	if o.MaxLength > 0 {
		return o.MaxLength
	}
	return defaultMaxLength
}

func (o Options) parser() *parser.Parser {
	if o.Parser != nil {
		return o.Parser
	}
	return parser.NewParser()
}

// expand resolves ${VAR} references in raw. Unset variables are an error
// naming each of them.
func (o Options) expand(raw string) (string, error) {
	if o.Resolver == nil {
		return raw, nil
	}
	if missing := o.Resolver.GetUnresolvedVariables(raw); len(missing) > 0 {
		return raw, fmt.Errorf("%w: %s", ErrUnresolved, strings.Join(missing, ", "))
	}
	return o.Resolver.Resolve(raw), nil
}

// parse turns a specifier into an entry, expanding variables and applying
// the length limit.
func (o Options) parse(p *parser.Parser, line int, raw, group string) Entry {
	entry := Entry{Line: line, Raw: raw, Group: group}
	raw, err := o.expand(raw)
	if err != nil {
		entry.Err = err
		return entry
	}
	entry.Raw = raw
	if len(raw) > o.maxLength() {
		entry.Err = fmt.Errorf("%w (%d > %d bytes)", ErrTooLong, len(raw), o.maxLength())
		return entry
	}
	dep, err := p.Parse(raw)
	if err != nil {
		entry.Err = err
		return entry
	}
	entry.Dependency = dep
	return entry
}

// FormatArgs is the Format of results built by ParseSpecifiers.
const FormatArgs = "arguments"

// ParseSpecifiers parses specifiers given directly, such as command line
// arguments. Entry lines are 1-based positions in specs.
func ParseSpecifiers(name string, specs []string, opts Options) *FileResult {
	p := opts.parser()
	result := &FileResult{Path: name, Format: FormatArgs, Entries: make([]Entry, 0, len(specs))}
	for i, spec := range specs {
		result.Entries = append(result.Entries, opts.parse(p, i+1, strings.TrimSpace(spec), ""))
	}
	return result
}

// MultiReader dispatches to the first reader that accepts a file name.
type MultiReader struct {
	all []Reader
}

func NewMultiReader(opts Options) *MultiReader {
	return &MultiReader{
		all: []Reader{
			NewPyProjectReader(opts),
			NewTxtReader(opts),
		},
	}
}

func (m *MultiReader) CanRead(path string) bool {
	return m.readerFor(path) != nil
}

func (m *MultiReader) readerFor(path string) Reader {
	for _, r := range m.all {
		if r.CanRead(path) {
			return r
		}
	}
	return nil
}

func (m *MultiReader) Read(path string, data []byte) (*FileResult, error) {
	r := m.readerFor(path)
	if r == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	return r.Read(path, data)
}

// ReadFile reads and parses the file at path.
func (m *MultiReader) ReadFile(path string) (*FileResult, error) {
	if !m.CanRead(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return m.Read(path, data)
}

// ReadFiles reads paths with at most concurrency files in flight and returns
// the results in the order of paths. The first I/O or decode error cancels
// the remaining reads.
func (m *MultiReader) ReadFiles(ctx context.Context, paths []string, concurrency int) ([]*FileResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]*FileResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := m.ReadFile(path)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ReadEach reads paths like ReadFiles but keeps going past files that fail.
// results[i] is nil exactly when errs[i] is set. Only ctx cancellation stops
// the remaining reads.
func (m *MultiReader) ReadEach(ctx context.Context, paths []string, concurrency int) ([]*FileResult, []error) {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]*FileResult, len(paths))
	errs := make([]error, len(paths))
	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			results[i], errs[i] = m.ReadFile(path)
			return nil
		})
	}

	_ = g.Wait()
	return results, errs
}

func baseName(path string) string {
	return filepath.Base(filepath.ToSlash(path))
}
