package jiramark

import "sync"

// Built-in lexical primitives available to every grammar.  They are
// injected as rules on demand, so a grammar only carries the ones it
// references.
var builtinPrims = map[string]*PrimitiveExpr{
	"any":      NewPrimitiveExpr("any", `(?s:.)`),
	"alnum":    NewPrimitiveExpr("alnum", `[0-9A-Za-z]`),
	"alpha":    NewPrimitiveExpr("alpha", `[A-Za-z]`),
	"digit":    NewPrimitiveExpr("digit", `[0-9]`),
	"ws":       NewPrimitiveExpr("ws", `[ \t]`),
	"notBrace": NewPrimitiveExpr("notBrace", `[^{]`),
}

var builtinDescs = map[string]string{
	"any":      "any character",
	"alnum":    "an alphanumeric character",
	"alpha":    "a letter",
	"digit":    "a digit",
	"ws":       "a space or tab",
	"notBrace": "any character but `{`",
}

func builtinRule(name string) (*Rule, bool) {
	prim, ok := builtinPrims[name]
	if !ok {
		return nil, false
	}
	return &Rule{Name: name, Desc: builtinDescs[name], Body: prim}, true
}

var (
	metaOnce sync.Once
	metag    *Grammar
)

// metaGrammar is the grammar description language, described in its
// own formalism and built by hand.  The compiler is nothing but a
// semantics table over this grammar's parse trees, which is what
// makes the whole thing bootstrapped.
func metaGrammar() *Grammar {
	metaOnce.Do(func() {
		metag = buildMetaGrammar()
	})
	return metag
}

func buildMetaGrammar() *Grammar {
	var (
		lit = func(s string) Expr { return NewLiteralExpr(s) }
		seq = func(items ...Expr) Expr { return NewSequenceExpr(items...) }
		cho = func(items ...Expr) Expr { return NewChoiceExpr(items...) }
		lbl = func(l string, e Expr) Expr { return NewLabelExpr(l, e) }
		app = func(name string, args ...Expr) Expr { return NewApplyExpr(name, args...) }
		zom = func(e Expr) Expr { return NewZeroOrMoreExpr(e) }
		oom = func(e Expr) Expr { return NewOneOrMoreExpr(e) }
		opt = func(e Expr) Expr { return NewOptionalExpr(e) }
		not = func(e Expr) Expr { return NewNotExpr(e) }
		tok = func(s string) Expr { return app("Token", lit(s)) }

		anyc  = builtinPrims["any"]
		alnum = builtinPrims["alnum"]
	)

	g := newGrammar("meta")

	rule := func(name, desc string, body Expr, formals ...string) {
		g.add(&Rule{Name: name, Formals: formals, Desc: desc, Body: body})
	}

	// Grammar = Spacing Rule+ ~any
	rule("Grammar", "a grammar", seq(
		app("Spacing"),
		oom(app("Rule")),
		not(anyc),
	))

	// Rule = Ident Formals? Description? Token<"="> Alternatives
	rule("Rule", "a rule definition", seq(
		app("Ident"),
		opt(app("Formals")),
		opt(app("Description")),
		tok("="),
		app("Alternatives"),
	))

	// Spacing = (" " | "\t" | "\r" | "\n")*
	rule("Spacing", "whitespace", zom(cho(
		lit(" "), lit("\t"), lit("\r"), lit("\n"),
	)))

	// Token<t> = t Spacing
	rule("Token", "a token", seq(
		NewParamExpr("t", 0),
		app("Spacing"),
	), "t")

	// Ident = alnum+ Spacing
	rule("Ident", "an identifier", seq(
		oom(alnum),
		app("Spacing"),
	))

	// Formals = Token<"<"> Ident (Token<","> Ident)* Token<">">
	rule("Formals", "a formal parameter list", seq(
		tok("<"),
		app("Ident"),
		zom(seq(tok(","), app("Ident"))),
		tok(">"),
	))

	// Description = "(" NotParen* ")" Spacing
	rule("Description", "a rule description", seq(
		lit("("),
		zom(app("NotParen")),
		lit(")"),
		app("Spacing"),
	))

	// NotParen = ~")" any
	rule("NotParen", "a description character", seq(
		not(lit(")")),
		anyc,
	))

	// Alternatives = Alternative (Token<"|"> Alternative)*
	rule("Alternatives", "an ordered choice", seq(
		app("Alternative"),
		zom(seq(tok("|"), app("Alternative"))),
	))

	// Alternative = CaseLabel? Term+
	rule("Alternative", "an alternative", seq(
		opt(app("CaseLabel")),
		oom(app("Term")),
	))

	// CaseLabel = "--" alnum+ "--" Spacing
	rule("CaseLabel", "a case label", seq(
		lit("--"),
		oom(alnum),
		lit("--"),
		app("Spacing"),
	))

	// Term = Lookahead | Repeated
	rule("Term", "a term", cho(
		app("Lookahead"),
		app("Repeated"),
	))

	// Lookahead = --and-- Token<"&"> Term | --not-- Token<"~"> Term
	rule("Lookahead", "a lookahead", cho(
		lbl("and", seq(tok("&"), app("Term"))),
		lbl("not", seq(tok("~"), app("Term"))),
	))

	// Repeated = Primary Suffix?
	rule("Repeated", "a possibly repeated term", seq(
		app("Primary"),
		opt(app("Suffix")),
	))

	// Suffix = --star-- Token<"*"> | --plus-- Token<"+"> | --opt-- Token<"?">
	rule("Suffix", "an iteration suffix", cho(
		lbl("star", tok("*")),
		lbl("plus", tok("+")),
		lbl("opt", tok("?")),
	))

	// Primary = Parens | RangeTerm | LiteralTerm | Application
	rule("Primary", "a primary term", cho(
		app("Parens"),
		app("RangeTerm"),
		app("LiteralTerm"),
		app("Application"),
	))

	// Parens = Token<"("> Alternatives Token<")">
	rule("Parens", "a parenthesized group", seq(
		tok("("),
		app("Alternatives"),
		tok(")"),
	))

	// RangeTerm = Quoted Token<".."> Quoted
	rule("RangeTerm", "a character range", seq(
		app("Quoted"),
		tok(".."),
		app("Quoted"),
	))

	// LiteralTerm = Quoted
	rule("LiteralTerm", "a literal", app("Quoted"))

	// Application = Ident Args? ~RuleHead
	//
	// The negative lookahead keeps a rule body from swallowing the
	// next rule's name: an identifier followed by the tail of a rule
	// header starts a new rule, not an application.
	rule("Application", "a rule application", seq(
		app("Ident"),
		opt(app("Args")),
		not(app("RuleHead")),
	))

	// RuleHead = Formals? Description? Token<"=">
	rule("RuleHead", "a rule header tail", seq(
		opt(app("Formals")),
		opt(app("Description")),
		tok("="),
	))

	// Args = Token<"<"> Alternatives (Token<","> Alternatives)* Token<">">
	rule("Args", "an actual parameter list", seq(
		tok("<"),
		app("Alternatives"),
		zom(seq(tok(","), app("Alternatives"))),
		tok(">"),
	))

	// Quoted = --dq-- '"' DChar* '"' Spacing
	//        | --sq-- "'" SChar* "'" Spacing
	rule("Quoted", "a quoted string", cho(
		lbl("dq", seq(lit(`"`), zom(app("DChar")), lit(`"`), app("Spacing"))),
		lbl("sq", seq(lit(`'`), zom(app("SChar")), lit(`'`), app("Spacing"))),
	))

	rule("DChar", "a string character", cho(app("Escape"), app("PlainD")))
	rule("SChar", "a string character", cho(app("Escape"), app("PlainS")))

	// Escape = "\" any
	rule("Escape", "an escape sequence", seq(lit(`\`), anyc))

	rule("PlainD", "a plain character", seq(not(lit(`"`)), not(lit(`\`)), anyc))
	rule("PlainS", "a plain character", seq(not(lit(`'`)), not(lit(`\`)), anyc))

	return g
}
