package grammar

type Rule int

const (
	RuleMain Rule = iota
	RuleURLReq
	RuleNameReq
	RuleName
	RuleExtras
	RuleExtrasList
	RuleIdentifier
	RuleVersionspec
	RuleVersionMany
	RuleVersionOne
	RuleVersionCmp
	RuleVersion
	RuleURIReference
	RuleMarkerExpr
	RuleMarkerAndOrExpr
	RuleMarkerTerm
	RuleMarkerBoolOp
	RuleMarkerComparison
	RuleMarkerVar
	RuleMarkerValue
	RuleMarkerOp
)

func (r Rule) String() string {
	switch r {
	case RuleMain:
		return "main"
	case RuleURLReq:
		return "url_req"
	case RuleNameReq:
		return "name_req"
	case RuleName:
		return "name"
	case RuleExtras:
		return "extras"
	case RuleExtrasList:
		return "extras_list"
	case RuleIdentifier:
		return "identifier"
	case RuleVersionspec:
		return "versionspec"
	case RuleVersionMany:
		return "version_many"
	case RuleVersionOne:
		return "version_one"
	case RuleVersionCmp:
		return "version_cmp"
	case RuleVersion:
		return "version"
	case RuleURIReference:
		return "URI_reference"
	case RuleMarkerExpr:
		return "marker_expr"
	case RuleMarkerAndOrExpr:
		return "marker_and_or_expr"
	case RuleMarkerTerm:
		return "marker_term"
	case RuleMarkerBoolOp:
		return "marker_bool_op"
	case RuleMarkerComparison:
		return "marker_comparison"
	case RuleMarkerVar:
		return "marker_var"
	case RuleMarkerValue:
		return "marker_value"
	case RuleMarkerOp:
		return "marker_op"
	default:
		return "unknown"
	}
}
