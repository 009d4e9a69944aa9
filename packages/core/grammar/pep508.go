package grammar

func isAlnum(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

func isNameSeparator(ch byte) bool {
	return ch == '-' || ch == '_' || ch == '.'
}

func isVersionChar(ch byte) bool {
	return isAlnum(ch) || isNameSeparator(ch) || ch == '*' || ch == '+' || ch == '!'
}

func isURIChar(ch byte) bool {
	return ch != ' ' && ch != '\t' && ch != ';' && ch != '\n' && ch != '\r'
}

func isMarkerIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isMarkerIdentChar(ch byte) bool {
	return isMarkerIdentStart(ch) || (ch >= '0' && ch <= '9') || ch == '.'
}

var (
	wsp  = ZeroOrMore(Class(func(ch byte) bool { return ch == ' ' || ch == '\t' }))
	wsp1 = OneOrMore(Class(func(ch byte) bool { return ch == ' ' || ch == '\t' }))

	// alnum ([-_.]* alnum)*
	identifierExpr = Seq(
		Class(isAlnum),
		ZeroOrMore(Seq(ZeroOrMore(Class(isNameSeparator)), Class(isAlnum))),
	)
)

// keyword matches word only when it is not the prefix of a longer identifier.
func keyword(word string) Expr {
	return Seq(Lit(word), Not(Class(isMarkerIdentChar)))
}

func quoted(quote byte) Expr {
	q := string(quote)
	return Seq(Lit(q), ZeroOrMore(Class(func(ch byte) bool { return ch != quote && ch != '\n' })), Lit(q))
}

func pep508Rules() map[Rule]Expr {
	return map[Rule]Expr{
		RuleMain: Seq(
			wsp,
			Choice(Ref(RuleURLReq), Ref(RuleNameReq)),
			wsp,
			EOI,
		),

		RuleURLReq: Seq(
			Ref(RuleName),
			Optional(Seq(wsp, Ref(RuleExtras))),
			wsp, Lit("@"), wsp,
			Ref(RuleURIReference),
			Optional(Seq(wsp, Lit(";"), wsp, Ref(RuleMarkerExpr))),
		),

		RuleNameReq: Seq(
			Ref(RuleName),
			Optional(Seq(wsp, Ref(RuleExtras))),
			Optional(Seq(wsp, Ref(RuleVersionspec))),
			Optional(Seq(wsp, Lit(";"), wsp, Ref(RuleMarkerExpr))),
		),

		RuleName:       identifierExpr,
		RuleIdentifier: identifierExpr,

		RuleExtras: Seq(
			Lit("["), wsp,
			Optional(Ref(RuleExtrasList)),
			wsp, Lit("]"),
		),

		RuleExtrasList: Seq(
			Ref(RuleIdentifier),
			ZeroOrMore(Seq(wsp, Lit(","), wsp, Ref(RuleIdentifier))),
		),

		RuleVersionspec: Choice(
			Seq(Lit("("), wsp, Ref(RuleVersionMany), wsp, Lit(")")),
			Ref(RuleVersionMany),
		),

		RuleVersionMany: Seq(
			Ref(RuleVersionOne),
			ZeroOrMore(Seq(wsp, Lit(","), wsp, Ref(RuleVersionOne))),
		),

		RuleVersionOne: Seq(Ref(RuleVersionCmp), wsp, Ref(RuleVersion)),

		RuleVersionCmp: Choice(
			Lit("<="), Lit("<"), Lit("!="), Lit("==="), Lit("=="), Lit(">="), Lit(">"), Lit("~="),
		),

		RuleVersion: OneOrMore(Class(isVersionChar)),

		RuleURIReference: OneOrMore(Class(isURIChar)),

		RuleMarkerExpr: Ref(RuleMarkerAndOrExpr),

		// Left-associative chain; "and" and "or" share one precedence level.
		RuleMarkerAndOrExpr: Seq(
			Ref(RuleMarkerTerm),
			ZeroOrMore(Seq(wsp, Ref(RuleMarkerBoolOp), wsp, Ref(RuleMarkerTerm))),
		),

		RuleMarkerBoolOp: Choice(keyword("and"), keyword("or")),

		RuleMarkerTerm: Choice(
			Seq(Lit("("), wsp, Ref(RuleMarkerAndOrExpr), wsp, Lit(")")),
			Ref(RuleMarkerComparison),
		),

		RuleMarkerComparison: Seq(
			Ref(RuleMarkerVar),
			wsp,
			Ref(RuleMarkerOp),
			wsp,
			Choice(Ref(RuleMarkerValue), Ref(RuleMarkerVar)),
		),

		RuleMarkerVar: Choice(
			Seq(Class(isMarkerIdentStart), ZeroOrMore(Class(isMarkerIdentChar))),
			quoted('\''),
			quoted('"'),
		),

		RuleMarkerValue: Choice(quoted('\''), quoted('"')),

		RuleMarkerOp: Choice(
			Lit("==="), Lit("=="), Lit("!="), Lit("<="), Lit(">="), Lit("<"), Lit(">"), Lit("~="),
			Seq(keyword("not"), wsp1, keyword("in")),
			keyword("in"),
		),
	}
}
