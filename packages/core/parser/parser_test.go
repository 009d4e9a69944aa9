package parser

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/reqspec/packages/core/grammar"
)

func TestParser_ValidSpecifiers(t *testing.T) {
	inputs := []string{
		"A",
		"A.B-C_D",
		"aa",
		"name",
		"name<=1",
		"name>=3",
		"name>=3,<2",
		"name@http://foo.com",
		"name [fred,bar] @ http://foo.com ; python_version=='2.7'",
		"name[quux, strange];python_version<'2.7' and platform_version=='2'",
		"name; os_name=='a' or os_name=='b'",
		"name; os_name=='a' and os_name=='b' or os_name=='c'",
		"name; os_name=='a' and (os_name=='b' or os_name=='c')",
		"name; (os_name=='a' or os_name=='b') and os_name=='c'",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			dep, err := Parse(input)
			require.NoError(t, err)
			assert.NotEmpty(t, dep.Name)
			assert.NotNil(t, dep.Version)
			assert.NotNil(t, dep.Extras)
			assert.NotNil(t, dep.Markers)
		})
	}
}

func TestParser_DefaultVersion(t *testing.T) {
	dep, err := Parse("name")
	require.NoError(t, err)

	assert.Equal(t, "name", dep.Name)
	assert.True(t, dep.Version.IsAny())
	assert.Equal(t, "*", dep.Version.String())

	ok, err := dep.Version.Check("99.1.0")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = dep.Version.Check("not-a-version")
	assert.Error(t, err)
	ok, reasons := dep.Version.Validate("not-a-version")
	assert.False(t, ok)
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0].Error(), "invalid version")

	assert.Equal(t, []string{}, dep.Extras)
	assert.Equal(t, []string{}, dep.Markers)
	assert.Nil(t, dep.MarkerTree)
	assert.False(t, dep.HasURI())
}

func TestParser_NameWithSeparators(t *testing.T) {
	dep, err := Parse("A.B-C_D")
	require.NoError(t, err)
	assert.Equal(t, "A.B-C_D", dep.Name)
}

func TestParser_ExtrasAndMarkers(t *testing.T) {
	dep, err := Parse("name[quux, strange];python_version<'2.7' and platform_version=='2'")
	require.NoError(t, err)

	assert.Equal(t, "name", dep.Name)
	assert.Equal(t, []string{"quux", "strange"}, dep.Extras)
	assert.Equal(t, []string{"python_version<'2.7'", "platform_version=='2'"}, dep.Markers)
	assert.True(t, dep.Version.IsAny())
}

func TestParser_URIForm(t *testing.T) {
	dep, err := Parse("name [fred,bar] @ http://foo.com ; python_version=='2.7'")
	require.NoError(t, err)

	assert.Equal(t, "name", dep.Name)
	assert.True(t, dep.HasURI())
	assert.Equal(t, "http://foo.com", dep.URI)
	assert.Equal(t, []string{"fred", "bar"}, dep.Extras)
	assert.Equal(t, []string{"python_version=='2.7'"}, dep.Markers)
	assert.True(t, dep.Version.IsAny())
}

func TestParser_ExtrasWhitespace(t *testing.T) {
	compact, err := Parse("name[fred,bar]")
	require.NoError(t, err)
	spaced, err := Parse("name[fred, bar]")
	require.NoError(t, err)
	tabbed, err := Parse("name[ fred ,\tbar ]")
	require.NoError(t, err)

	assert.Equal(t, compact.Extras, spaced.Extras)
	assert.Equal(t, compact.Extras, tabbed.Extras)
}

func TestParser_EmptyExtras(t *testing.T) {
	dep, err := Parse("name[]")
	require.NoError(t, err)
	assert.Equal(t, []string{}, dep.Extras)
}

func TestParser_VersionSpecs(t *testing.T) {
	tests := []struct {
		input   string
		raw     string
		match   []string
		noMatch []string
	}{
		{input: "name<=1", raw: "<=1", match: []string{"1.0.0", "0.5.0"}, noMatch: []string{"2.0.0"}},
		{input: "name>=3", raw: ">=3", match: []string{"3.0.0", "4.2.0"}, noMatch: []string{"2.9.9"}},
		{input: "name>=1.0,<2", raw: ">=1.0,<2", match: []string{"1.5.0"}, noMatch: []string{"2.0.0", "0.9.0"}},
		{input: "name (>=1.0, <2)", raw: ">=1.0, <2", match: []string{"1.0.0"}, noMatch: []string{"2.1.0"}},
		{input: "name==1.4.2", raw: "==1.4.2", match: []string{"1.4.2"}, noMatch: []string{"1.4.3"}},
		{input: "name==1.4.*", raw: "==1.4.*", match: []string{"1.4.0", "1.4.9"}, noMatch: []string{"1.5.0"}},
		{input: "name!=1.4.2", raw: "!=1.4.2", match: []string{"1.4.3"}, noMatch: []string{"1.4.2"}},
		{input: "name~=2.2", raw: "~=2.2", match: []string{"2.2.0", "2.9.0"}, noMatch: []string{"3.0.0", "2.1.0"}},
		{input: "name~=1.4.5", raw: "~=1.4.5", match: []string{"1.4.5", "1.4.9"}, noMatch: []string{"1.5.0"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			dep, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.raw, dep.Version.String())

			for _, v := range tt.match {
				ok, err := dep.Version.Check(v)
				require.NoError(t, err)
				assert.True(t, ok, "expected %s to satisfy %s", v, tt.raw)
			}
			for _, v := range tt.noMatch {
				ok, err := dep.Version.Check(v)
				require.NoError(t, err)
				assert.False(t, ok, "expected %s not to satisfy %s", v, tt.raw)

				ok, reasons := dep.Version.Validate(v)
				assert.False(t, ok)
				assert.NotEmpty(t, reasons, "expected reasons for %s against %s", v, tt.raw)
			}
		})
	}
}

func TestParser_SyntaxErrors(t *testing.T) {
	inputs := []string{
		"",
		"name[fred",
		"name>=",
		"name;",
		"name @",
		"name =< 1",
		"[extra]",
		"name; os_name=='a' and",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			dep, err := Parse(input)
			require.Error(t, err)
			assert.Nil(t, dep)
			assert.True(t, IsSyntax(err))
			assert.False(t, IsVersion(err))

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, input, parseErr.Input)

			var syntaxErr *grammar.SyntaxError
			assert.True(t, errors.As(err, &syntaxErr))
		})
	}
}

func TestParser_VersionErrors(t *testing.T) {
	inputs := []string{
		"name===1.0",
		"name>=1.0a1",
		"name~=1",
		"name>=1.*",
		"name>=1!2.0",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			dep, err := Parse(input)
			require.Error(t, err)
			assert.Nil(t, dep)
			assert.True(t, IsVersion(err))
			assert.False(t, IsSyntax(err))

			var syntaxErr *grammar.SyntaxError
			assert.False(t, errors.As(err, &syntaxErr))
		})
	}
}

func TestParseError_Message(t *testing.T) {
	_, err := Parse("name[fred")
	require.Error(t, err)
	assert.Equal(t, `invalid requirement syntax "name[fred": 1:10: unexpected end of input, expected "," or "]"`, err.Error())
}

type stubVersions struct {
	seen []string
}

func (s *stubVersions) ParseConstraint(text string) (*Constraint, error) {
	s.seen = append(s.seen, text)
	if text == "bad" {
		return nil, fmt.Errorf("stub rejects %q", text)
	}
	return NewConstraint(text, nil), nil
}

func TestParser_WithVersionParser(t *testing.T) {
	stub := &stubVersions{}
	p := NewParser(WithVersionParser(stub))

	dep, err := p.Parse("name (>=1.0a1, <2)")
	require.NoError(t, err)
	assert.Equal(t, ">=1.0a1, <2", dep.Version.String())

	_, err = p.Parse("name")
	require.NoError(t, err)

	assert.Equal(t, []string{">=1.0a1, <2", "*"}, stub.seen)
}

func TestParser_MarkerTree(t *testing.T) {
	tests := []struct {
		input string
		want  string
		kind  MarkerKind
	}{
		{input: "name; os_name=='a'", want: "os_name=='a'", kind: MarkerComparison},
		{input: "name; os_name=='a' or os_name=='b'", want: "os_name=='a' or os_name=='b'", kind: MarkerOr},
		{input: "name; os_name=='a' and os_name=='b' or os_name=='c'", want: "os_name=='a' and os_name=='b' or os_name=='c'", kind: MarkerOr},
		{input: "name; os_name=='a' and (os_name=='b' or os_name=='c')", want: "os_name=='a' and (os_name=='b' or os_name=='c')", kind: MarkerAnd},
		{input: "name; (os_name=='a' or os_name=='b') and os_name=='c'", want: "os_name=='a' or os_name=='b' and os_name=='c'", kind: MarkerAnd},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			dep, err := Parse(tt.input)
			require.NoError(t, err)
			require.NotNil(t, dep.MarkerTree)
			assert.True(t, dep.HasMarkers())
			assert.Equal(t, tt.kind, dep.MarkerTree.Kind)
			assert.Equal(t, tt.want, dep.MarkerTree.String())
			assert.Equal(t, dep.Markers, dep.MarkerTree.Leaves())
		})
	}
}

func TestParser_MarkerComparisonParts(t *testing.T) {
	dep, err := Parse(`name; 'linux' not  in sys_platform and extra == "test"`)
	require.NoError(t, err)

	tree := dep.MarkerTree
	require.NotNil(t, tree)
	require.Equal(t, MarkerAnd, tree.Kind)

	assert.Equal(t, "linux", tree.Left.Variable)
	assert.Equal(t, "not in", tree.Left.Op)
	assert.Equal(t, "sys_platform", tree.Left.Value)

	assert.Equal(t, "extra", tree.Right.Variable)
	assert.Equal(t, "==", tree.Right.Op)
	assert.Equal(t, "test", tree.Right.Value)
}

func TestDependency_String(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "name", want: "name"},
		{input: "name [ a , b ] >= 1.0", want: "name[a,b]>= 1.0"},
		{input: "name [fred,bar] @ http://foo.com ; python_version=='2.7'", want: "name[fred,bar] @ http://foo.com ; python_version=='2.7'"},
		{input: "name;os_name=='a'", want: "name; os_name=='a'"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			dep, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, dep.String())

			again, err := Parse(dep.String())
			require.NoError(t, err)
			assert.Equal(t, dep.Name, again.Name)
			assert.Equal(t, dep.Extras, again.Extras)
		})
	}
}

func TestParser_Idempotent(t *testing.T) {
	input := "name[quux, strange]>=1.0; python_version<'2.7' and platform_version=='2'"

	first, err := Parse(input)
	require.NoError(t, err)
	second, err := Parse(input)
	require.NoError(t, err)

	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, first.Extras, second.Extras)
	assert.Equal(t, first.Markers, second.Markers)
	assert.Equal(t, first.URI, second.URI)
	assert.Equal(t, first.Version.String(), second.Version.String())
	assert.Equal(t, first.MarkerTree, second.MarkerTree)
}

func TestParser_Concurrent(t *testing.T) {
	inputs := []string{
		"name>=3,<4",
		"name[fred,bar] @ http://foo.com",
		"name; os_name=='a' or os_name=='b'",
		"name[fred",
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			input := inputs[i%len(inputs)]
			dep, err := Parse(input)
			if i%len(inputs) == 3 {
				assert.True(t, IsSyntax(err))
				return
			}
			if assert.NoError(t, err) {
				assert.Equal(t, "name", dep.Name)
			}
		}(i)
	}
	wg.Wait()
}
