package parser

import (
	"strings"
	"unicode"

	"github.com/abdul-hamid-achik/reqspec/packages/core/grammar"
)

type Parser struct {
	grammar  *grammar.Grammar
	versions VersionParser
}

type Option func(*Parser)

// WithVersionParser replaces the default semver based version parser.
func WithVersionParser(vp VersionParser) Option {
	return func(p *Parser) {
		p.versions = vp
	}
}

// NewParser returns a Parser. It keeps no state between calls and can be
// shared between goroutines.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		grammar:  grammar.PEP508(),
		versions: SemverParser{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = NewParser()

// Parse parses a single requirement specifier with the default parser.
func Parse(input string) (*Dependency, error) {
	return defaultParser.Parse(input)
}

func (p *Parser) Parse(input string) (*Dependency, error) {
	root, err := p.grammar.Parse(input)
	if err != nil {
		return nil, &ParseError{Input: input, Kind: ErrSyntax, Err: err}
	}

	dep, versionText := extract(root)

	constraint, err := p.versions.ParseConstraint(versionText)
	if err != nil {
		return nil, &ParseError{Input: input, Kind: ErrVersion, Err: err}
	}
	dep.Version = constraint

	return dep, nil
}

// extract fills a Dependency from the tree and returns the version clause
// text for the version parser.
func extract(root *grammar.Node) (*Dependency, string) {
	dep := &Dependency{
		Extras:  []string{},
		Markers: []string{},
	}
	versionText := AnyVersionText

	for _, node := range root.Flatten() {
		switch node.Rule {
		case grammar.RuleName:
			if dep.Name == "" {
				dep.Name = node.Text
			}
		case grammar.RuleVersionspec:
			// "(>=1, <2)" hands only the inner list on
			if many := node.Child(grammar.RuleVersionMany); many != nil {
				versionText = many.Text
			}
		case grammar.RuleExtrasList:
			dep.Extras = splitExtras(node.Text)
		case grammar.RuleMarkerComparison:
			dep.Markers = append(dep.Markers, node.Text)
		case grammar.RuleURIReference:
			dep.URI = node.Text
		case grammar.RuleMarkerExpr:
			if dep.MarkerTree == nil {
				dep.MarkerTree = buildMarker(node)
			}
		}
	}

	return dep, versionText
}

func splitExtras(text string) []string {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	return strings.Split(compact, ",")
}

func buildMarker(node *grammar.Node) *MarkerExpr {
	switch node.Rule {
	case grammar.RuleMarkerExpr, grammar.RuleMarkerTerm:
		if len(node.Children) == 0 {
			return nil
		}
		return buildMarker(node.Children[0])
	case grammar.RuleMarkerAndOrExpr:
		return buildChain(node.Children)
	case grammar.RuleMarkerComparison:
		return buildComparison(node)
	}
	return nil
}

// buildChain folds term (op term)* to the left.
func buildChain(children []*grammar.Node) *MarkerExpr {
	if len(children) == 0 {
		return nil
	}
	expr := buildMarker(children[0])
	for i := 1; i+1 < len(children); i += 2 {
		kind := MarkerAnd
		if children[i].Text == "or" {
			kind = MarkerOr
		}
		expr = &MarkerExpr{
			Kind:  kind,
			Left:  expr,
			Right: buildMarker(children[i+1]),
		}
	}
	return expr
}

func buildComparison(node *grammar.Node) *MarkerExpr {
	expr := &MarkerExpr{Kind: MarkerComparison, Text: node.Text}
	if len(node.Children) != 3 {
		return expr
	}
	expr.Variable = unquote(node.Children[0].Text)
	expr.Op = strings.Join(strings.Fields(node.Children[1].Text), " ")
	expr.Value = unquote(node.Children[2].Text)
	return expr
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
