package requirements

import (
	"bufio"
	"bytes"
	"strings"
)

// TxtReader reads pip requirements files.
type TxtReader struct {
	opts Options
}

func NewTxtReader(opts Options) *TxtReader {
	return &TxtReader{opts: opts}
}

func (r *TxtReader) CanRead(path string) bool {
	name := strings.ToLower(baseName(path))
	if !strings.HasSuffix(name, ".txt") && !strings.HasSuffix(name, ".in") {
		return false
	}
	return strings.Contains(name, "requirements") || strings.Contains(name, "constraints")
}

func (r *TxtReader) Read(path string, data []byte) (*FileResult, error) {
	p := r.opts.parser()
	result := &FileResult{Path: path, Format: "requirements.txt"}

	lines, err := logicalLines(data)
	if err != nil {
		return nil, err
	}

	for _, ll := range lines {
		text := stripComment(ll.text)
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "-") {
			option, _, _ := strings.Cut(text, " ")
			option, _, _ = strings.Cut(option, "=")
			result.Entries = append(result.Entries, Entry{
				Line:    ll.number,
				Raw:     text,
				Skipped: true,
				Option:  option,
			})
			continue
		}

		text = stripOptions(text)

		result.Entries = append(result.Entries, r.opts.parse(p, ll.number, text, ""))
	}

	return result, nil
}

type logicalLine struct {
	number int
	text   string
}

// logicalLines joins backslash continuations. Each logical line keeps the
// number of its first physical line.
func logicalLines(data []byte) ([]logicalLine, error) {
	var out []logicalLine
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var pending strings.Builder
	start, n := 0, 0
	for scanner.Scan() {
		n++
		line := strings.TrimRight(scanner.Text(), "\r")
		if pending.Len() == 0 {
			start = n
		}
		if strings.HasSuffix(line, `\`) {
			pending.WriteString(strings.TrimSuffix(line, `\`))
			continue
		}
		pending.WriteString(line)
		out = append(out, logicalLine{number: start, text: pending.String()})
		pending.Reset()
	}
	if pending.Len() > 0 {
		out = append(out, logicalLine{number: start, text: pending.String()})
	}
	return out, scanner.Err()
}

// stripComment drops a # that starts the line or follows whitespace, so
// fragments such as "pkg @ https://host/pkg.zip#egg=pkg" survive.
func stripComment(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] != '#' {
			continue
		}
		if i == 0 || line[i-1] == ' ' || line[i-1] == '\t' {
			return line[:i]
		}
	}
	return line
}

// stripOptions drops per-requirement options such as --hash=sha256:...
func stripOptions(line string) string {
	for _, sep := range []string{" --", "\t--"} {
		if idx := strings.Index(line, sep); idx >= 0 {
			line = line[:idx]
		}
	}
	return strings.TrimSpace(line)
}
