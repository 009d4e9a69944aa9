package grammar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Examples(t *testing.T) {
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
		"name; os_name=='a' or os_name=='b' and os_name=='c'",
		"name; (os_name=='a' or os_name=='b') and os_name=='c'",
		"name; ((os_name=='a'))",
		"name (>=1.0, <2)",
		"name[]",
		"  name  ",
		"name[\tfred ,\tbar ]",
		"name; 'linux' not in sys_platform",
		"name; extra == \"test\"",
		"name===1.0",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			root, err := Parse(input)
			require.NoError(t, err)
			assert.Equal(t, RuleMain, root.Rule)
			require.Len(t, root.Children, 1)
		})
	}
}

func TestParse_NameReqTree(t *testing.T) {
	root, err := Parse("name[quux, strange];python_version<'2.7' and platform_version=='2'")
	require.NoError(t, err)

	req := root.Children[0]
	assert.Equal(t, RuleNameReq, req.Rule)
	assert.Equal(t, "name", req.Child(RuleName).Text)
	assert.Equal(t, "quux, strange", req.Find(RuleExtrasList).Text)
	assert.Nil(t, req.Find(RuleVersionspec))

	var comparisons []string
	for _, node := range req.Flatten() {
		if node.Rule == RuleMarkerComparison {
			comparisons = append(comparisons, node.Text)
		}
	}
	assert.Equal(t, []string{"python_version<'2.7'", "platform_version=='2'"}, comparisons)
	assert.Equal(t, "and", req.Find(RuleMarkerBoolOp).Text)
}

func TestParse_URLReqTree(t *testing.T) {
	root, err := Parse("name [fred,bar] @ http://foo.com ; python_version=='2.7'")
	require.NoError(t, err)

	req := root.Children[0]
	assert.Equal(t, RuleURLReq, req.Rule)
	assert.Equal(t, "http://foo.com", req.Find(RuleURIReference).Text)
	assert.Equal(t, "fred,bar", req.Find(RuleExtrasList).Text)
	assert.Equal(t, "python_version=='2.7'", req.Find(RuleMarkerComparison).Text)
}

func TestParse_VersionspecTree(t *testing.T) {
	t.Run("bare list", func(t *testing.T) {
		root, err := Parse("name>=3,<2")
		require.NoError(t, err)
		spec := root.Find(RuleVersionspec)
		require.NotNil(t, spec)
		assert.Equal(t, ">=3,<2", spec.Text)

		var ops []string
		for _, node := range spec.Flatten() {
			if node.Rule == RuleVersionCmp {
				ops = append(ops, node.Text)
			}
		}
		assert.Equal(t, []string{">=", "<"}, ops)
	})

	t.Run("parenthesised list", func(t *testing.T) {
		root, err := Parse("name (>=1.0, <2)")
		require.NoError(t, err)
		assert.Equal(t, "(>=1.0, <2)", root.Find(RuleVersionspec).Text)
		assert.Equal(t, ">=1.0, <2", root.Find(RuleVersionMany).Text)
	})
}

func TestNode_FlattenPreOrder(t *testing.T) {
	root, err := Parse("name>=1")
	require.NoError(t, err)

	var rules []Rule
	for _, node := range root.Flatten() {
		rules = append(rules, node.Rule)
	}
	assert.Equal(t, []Rule{
		RuleNameReq,
		RuleName,
		RuleVersionspec,
		RuleVersionMany,
		RuleVersionOne,
		RuleVersionCmp,
		RuleVersion,
	}, rules)
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		offset   int
		column   int
		expected string
	}{
		{name: "unterminated extras", input: "name[fred", offset: 9, column: 10, expected: `"]"`},
		{name: "missing version", input: "name>=", offset: 6, column: 7, expected: "version"},
		{name: "empty input", input: "", offset: 0, column: 1, expected: "name_req"},
		{name: "dangling marker separator", input: "name;", offset: 5, column: 6, expected: "marker_expr"},
		{name: "unclosed marker group", input: "name; (os_name=='a'", offset: 19, column: 20, expected: `")"`},
		{name: "keyword glued to identifier", input: "name; os_name=='a' andx os_name=='b'", offset: 19, column: 20, expected: "end of input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)

			var syntaxErr *SyntaxError
			require.True(t, errors.As(err, &syntaxErr))
			assert.Equal(t, tt.offset, syntaxErr.Offset)
			assert.Equal(t, 1, syntaxErr.Line)
			assert.Equal(t, tt.column, syntaxErr.Column)
			assert.Contains(t, syntaxErr.Expected, tt.expected)
		})
	}
}

func TestSyntaxError_Message(t *testing.T) {
	_, err := Parse("name[fred")
	require.Error(t, err)
	assert.Equal(t, `1:10: unexpected end of input, expected "," or "]"`, err.Error())

	var syntaxErr *SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, "name[fred\n         ^", syntaxErr.Snippet())
}

func TestSyntaxError_MultiByteRune(t *testing.T) {
	_, err := Parse("naïve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected 'ï'")
	assert.NotContains(t, err.Error(), "Ã")
}

func TestGrammar_OrderedChoice(t *testing.T) {
	// "a" wins over "ab", so the trailing "b" is left unconsumed.
	g := New(map[Rule]Expr{
		RuleMain: Seq(Choice(Lit("a"), Lit("ab")), EOI),
	}, RuleMain)

	_, err := g.Parse("ab")
	require.Error(t, err)

	root, err := g.Parse("a")
	require.NoError(t, err)
	assert.Equal(t, "a", root.Text)
}

func TestGrammar_MissingStartRule(t *testing.T) {
	g := New(map[Rule]Expr{}, RuleMain)
	_, err := g.Parse("x")
	require.Error(t, err)
}

func TestRule_String(t *testing.T) {
	assert.Equal(t, "URI_reference", RuleURIReference.String())
	assert.Equal(t, "marker_expr", RuleMarkerExpr.String())
	assert.Equal(t, "unknown", Rule(999).String())
}
