package output

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/reqspec/packages/requirements"
)

func sampleResult(t *testing.T) *requirements.FileResult {
	t.Helper()
	input := "requests[socks]>=2.0; python_version>='3.8'\n-r base.txt\nbroken[\npkg===1.0\n"
	result, err := requirements.NewTxtReader(requirements.Options{}).Read("requirements.txt", []byte(input))
	require.NoError(t, err)
	require.Len(t, result.Entries, 4)
	return result
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	for _, name := range Formats {
		f, err := New(name, &buf, false, true)
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}

	_, err := New("html", &buf, false, true)
	assert.Error(t, err)
}

func TestConsoleFormatter_FormatFile(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true), WithVerbose(true))
	f.FormatFile(sampleResult(t))

	out := buf.String()
	assert.Contains(t, out, "requirements.txt (requirements.txt)")
	assert.Contains(t, out, "✓    1 requests")
	assert.Contains(t, out, "version: >=2.0")
	assert.Contains(t, out, "extras:  socks")
	assert.Contains(t, out, "markers: python_version>='3.8'")
	assert.Contains(t, out, "-    2 -r base.txt (skipped -r)")
	assert.Contains(t, out, "✗    3 broken[")
	assert.Contains(t, out, "broken[\n")
	assert.Contains(t, out, "^")
	assert.Contains(t, out, "arbitrary equality")
	assert.Contains(t, out, "Requirements: 1 valid, 2 invalid, 1 skipped, 4 total")
}

func TestConsoleFormatter_FlushTotals(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatFile(sampleResult(t))
	require.NoError(t, f.Flush(time.Second))
	assert.NotContains(t, buf.String(), "Total:")

	f.FormatFile(sampleResult(t))
	require.NoError(t, f.Flush(time.Second))
	assert.Contains(t, buf.String(), "Total: 2 files, 2 valid, 4 invalid, 2 skipped")
}

func TestJSONFormatter_Flush(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))
	f.FormatFile(sampleResult(t))
	require.NoError(t, f.Flush(10*time.Millisecond))

	var report Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))

	assert.Equal(t, Summary{Files: 1, Total: 4, Valid: 1, Invalid: 2, Skipped: 1}, report.Summary)
	require.Len(t, report.Files, 1)

	entries := report.Files[0].Entries
	require.Len(t, entries, 4)

	dep := entries[0].Dependency
	require.NotNil(t, dep)
	assert.Equal(t, "requests", dep.Name)
	assert.Equal(t, ">=2.0", dep.Version)
	assert.Equal(t, []string{"socks"}, dep.Extras)
	require.NotNil(t, dep.MarkerTree)
	assert.Equal(t, "comparison", dep.MarkerTree.Kind)
	assert.Equal(t, "python_version", dep.MarkerTree.Variable)

	assert.True(t, entries[1].Skipped)
	assert.Equal(t, "syntax", entries[2].ErrorKind)
	assert.Equal(t, "version", entries[3].ErrorKind)
}

func TestJSONFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))
	require.NoError(t, f.Flush(0))
	assert.Contains(t, buf.String(), `"files": []`)
}

func TestYAMLFormatter_Flush(t *testing.T) {
	var buf bytes.Buffer
	f := NewYAMLFormatter(YAMLWithWriter(&buf))
	f.FormatFile(sampleResult(t))
	f.FormatError(assert.AnError)
	require.NoError(t, f.Flush(0))

	var report Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, 4, report.Summary.Total)
	assert.Equal(t, []string{assert.AnError.Error()}, report.Errors)
	assert.Equal(t, "requests", report.Files[0].Entries[0].Dependency.Name)
}

func TestTAPFormatter_Flush(t *testing.T) {
	var buf bytes.Buffer
	f := NewTAPFormatter(TAPWithWriter(&buf))
	f.FormatFile(sampleResult(t))
	require.NoError(t, f.Flush(0))

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "TAP version 13", lines[0])
	assert.Equal(t, "1..4", lines[1])
	assert.Equal(t, "ok 1 - line 1: requests[socks]>=2.0; python_version>='3.8'", lines[2])
	assert.Equal(t, "ok 2 - line 2: -r base.txt # SKIP option -r", lines[3])
	assert.Equal(t, "not ok 3 - line 3: broken[", lines[4])
	assert.Contains(t, buf.String(), "  kind: syntax\n")
	assert.Contains(t, buf.String(), "  kind: version\n")
}

func TestJUnitFormatter_Flush(t *testing.T) {
	var buf bytes.Buffer
	f := NewJUnitFormatter(JUnitWithWriter(&buf))
	f.FormatFile(sampleResult(t))
	require.NoError(t, f.Flush(time.Second))

	var suites JUnitTestSuites
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &suites))

	assert.Equal(t, "reqspec", suites.Name)
	assert.Equal(t, 4, suites.Tests)
	assert.Equal(t, 2, suites.Failures)
	assert.Equal(t, 1, suites.Skipped)
	require.Len(t, suites.TestSuites, 1)

	cases := suites.TestSuites[0].TestCases
	require.Len(t, cases, 4)
	assert.Nil(t, cases[0].Failure)
	assert.NotNil(t, cases[1].Skipped)
	require.NotNil(t, cases[2].Failure)
	assert.Equal(t, "syntax", cases[2].Failure.Type)
	assert.Equal(t, "version", cases[3].Failure.Type)
}

func TestEscapeYAML(t *testing.T) {
	assert.Equal(t, "plain", escapeYAML("plain"))
	assert.Equal(t, `"a: \"b\""`, escapeYAML(`a: "b"`))
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "length", ErrorKind(fmt.Errorf("x: %w", requirements.ErrTooLong)))
	assert.Equal(t, "variable", ErrorKind(fmt.Errorf("%w: HOST", requirements.ErrUnresolved)))
	assert.Equal(t, "other", ErrorKind(assert.AnError))
}
