package jiramark

import (
	"fmt"
	"strings"
)

// Expr is a parsing expression.  Expressions are immutable, built
// once at compile time and shared read-only across every parse using
// the same Grammar.
//
// Width is the static shape width: how many structural slots a
// successful match of this expression occupies in a parent sequence.
// It depends only on the expression, never on the input, which is
// what allows partial results to be merged slot-by-slot.
type Expr interface {
	Width() int

	// Text renders the expression back in grammar notation,
	// useful for diagnostics
	Text() string

	String() string

	// match evaluates the expression at the cursor's end.  env
	// holds the actual parameters of the enclosing rule, used to
	// resolve ParamExpr references.  Failures are returned as
	// *ParseFailure values, never panics.
	match(g *Grammar, env []Expr, c Cursor) (Node, error)

	// synth attempts to derive an equivalent regex fragment.  cands
	// holds per-rule candidate patterns from earlier fixed-point
	// passes; inProgress guards recursion (see buildFastPaths).
	synth(g *Grammar, cands map[string]string, inProgress map[string]bool) (string, bool)
}

// Expr Type: Literal

type LiteralExpr struct {
	Value string
}

func NewLiteralExpr(v string) *LiteralExpr { return &LiteralExpr{Value: v} }

func (e LiteralExpr) Width() int     { return 1 }
func (e LiteralExpr) Text() string   { return fmt.Sprintf("%q", e.Value) }
func (e LiteralExpr) String() string { return fmt.Sprintf("Literal(%q)", e.Value) }

// Expr Type: CharRange

type CharRangeExpr struct {
	Lo, Hi rune
}

func NewCharRangeExpr(lo, hi rune) *CharRangeExpr { return &CharRangeExpr{Lo: lo, Hi: hi} }

func (e CharRangeExpr) Width() int     { return 1 }
func (e CharRangeExpr) Text() string   { return fmt.Sprintf("'%c'..'%c'", e.Lo, e.Hi) }
func (e CharRangeExpr) String() string { return fmt.Sprintf("Range(%c, %c)", e.Lo, e.Hi) }

// Expr Type: Primitive
//
// A built-in lexical primitive backed by a black-box regex.  The
// engine never inspects the pattern beyond handing it to the regex
// engine, both directly and during synthesis.

type PrimitiveExpr struct {
	Name    string
	pattern string
	re      *fastRegex
}

func NewPrimitiveExpr(name, pattern string) *PrimitiveExpr {
	return &PrimitiveExpr{Name: name, pattern: pattern, re: compileAnchored(pattern)}
}

func (e PrimitiveExpr) Width() int     { return 1 }
func (e PrimitiveExpr) Text() string   { return e.Name }
func (e PrimitiveExpr) String() string { return fmt.Sprintf("Primitive(%s)", e.Name) }

// Expr Type: Sequence

type SequenceExpr struct {
	Items []Expr
}

func NewSequenceExpr(items ...Expr) *SequenceExpr { return &SequenceExpr{Items: items} }

func (e SequenceExpr) Width() int {
	w := 0
	for _, item := range e.Items {
		w += item.Width()
	}
	return w
}

func (e SequenceExpr) Text() string   { return exprsText(e.Items, " ") }
func (e SequenceExpr) String() string { return exprsString("Sequence", e.Items) }

// Expr Type: Choice
//
// Ordered choice: alternatives are tried strictly in source order and
// the first success wins.  Well-formed grammars give every
// alternative the same width; the compiler enforces it.

type ChoiceExpr struct {
	Items []Expr
}

func NewChoiceExpr(items ...Expr) *ChoiceExpr { return &ChoiceExpr{Items: items} }

func (e ChoiceExpr) Width() int {
	if len(e.Items) == 0 {
		return 0
	}
	return e.Items[0].Width()
}

func (e ChoiceExpr) Text() string   { return exprsText(e.Items, " | ") }
func (e ChoiceExpr) String() string { return exprsString("Choice", e.Items) }

// Expr Type: ZeroOrMore

type ZeroOrMoreExpr struct {
	Expr Expr
}

func NewZeroOrMoreExpr(expr Expr) *ZeroOrMoreExpr { return &ZeroOrMoreExpr{Expr: expr} }

func (e ZeroOrMoreExpr) Width() int     { return e.Expr.Width() }
func (e ZeroOrMoreExpr) Text() string   { return suffixText(e.Expr, "*") }
func (e ZeroOrMoreExpr) String() string { return fmt.Sprintf("ZeroOrMore(%s)", e.Expr) }

// Expr Type: OneOrMore

type OneOrMoreExpr struct {
	Expr Expr
}

func NewOneOrMoreExpr(expr Expr) *OneOrMoreExpr { return &OneOrMoreExpr{Expr: expr} }

func (e OneOrMoreExpr) Width() int     { return e.Expr.Width() }
func (e OneOrMoreExpr) Text() string   { return suffixText(e.Expr, "+") }
func (e OneOrMoreExpr) String() string { return fmt.Sprintf("OneOrMore(%s)", e.Expr) }

// Expr Type: Optional

type OptionalExpr struct {
	Expr Expr
}

func NewOptionalExpr(expr Expr) *OptionalExpr { return &OptionalExpr{Expr: expr} }

func (e OptionalExpr) Width() int     { return e.Expr.Width() }
func (e OptionalExpr) Text() string   { return suffixText(e.Expr, "?") }
func (e OptionalExpr) String() string { return fmt.Sprintf("Optional(%s)", e.Expr) }

// Expr Type: And (positive lookahead)

type AndExpr struct {
	Expr Expr
}

func NewAndExpr(expr Expr) *AndExpr { return &AndExpr{Expr: expr} }

func (e AndExpr) Width() int     { return e.Expr.Width() }
func (e AndExpr) Text() string   { return "&" + suffixText(e.Expr, "") }
func (e AndExpr) String() string { return fmt.Sprintf("And(%s)", e.Expr) }

// Expr Type: Not (negative lookahead)

type NotExpr struct {
	Expr Expr
}

func NewNotExpr(expr Expr) *NotExpr { return &NotExpr{Expr: expr} }

func (e NotExpr) Width() int     { return 0 }
func (e NotExpr) Text() string   { return "~" + suffixText(e.Expr, "") }
func (e NotExpr) String() string { return fmt.Sprintf("Not(%s)", e.Expr) }

// Expr Type: Apply (rule application)

type ApplyExpr struct {
	Name string
	Args []Expr
}

func NewApplyExpr(name string, args ...Expr) *ApplyExpr {
	return &ApplyExpr{Name: name, Args: args}
}

func (e ApplyExpr) Width() int { return 1 }

func (e ApplyExpr) Text() string {
	if len(e.Args) == 0 {
		return e.Name
	}
	return fmt.Sprintf("%s<%s>", e.Name, exprsText(e.Args, ", "))
}

func (e ApplyExpr) String() string {
	if len(e.Args) == 0 {
		return fmt.Sprintf("Apply(%s)", e.Name)
	}
	return fmt.Sprintf("Apply(%s, %s)", e.Name, exprsString("", e.Args))
}

// Expr Type: Param (formal parameter reference)

type ParamExpr struct {
	Name  string
	Index int
}

func NewParamExpr(name string, index int) *ParamExpr {
	return &ParamExpr{Name: name, Index: index}
}

func (e ParamExpr) Width() int     { return 1 }
func (e ParamExpr) Text() string   { return e.Name }
func (e ParamExpr) String() string { return fmt.Sprintf("Param(%s/%d)", e.Name, e.Index) }

// Expr Type: Label (labeled alternative)

type LabelExpr struct {
	Label string
	Expr  Expr
}

func NewLabelExpr(label string, expr Expr) *LabelExpr {
	return &LabelExpr{Label: label, Expr: expr}
}

func (e LabelExpr) Width() int     { return e.Expr.Width() }
func (e LabelExpr) Text() string   { return fmt.Sprintf("--%s-- %s", e.Label, e.Expr.Text()) }
func (e LabelExpr) String() string { return fmt.Sprintf("Label[%s](%s)", e.Label, e.Expr) }

// Helpers

func exprsText(items []Expr, sep string) string {
	var s strings.Builder
	for i, item := range items {
		if _, ok := item.(*ChoiceExpr); ok && sep != " | " {
			s.WriteString("(" + item.Text() + ")")
		} else {
			s.WriteString(item.Text())
		}
		if i < len(items)-1 {
			s.WriteString(sep)
		}
	}
	return s.String()
}

func exprsString(name string, items []Expr) string {
	var s strings.Builder
	s.WriteString(name)
	s.WriteString("(")
	for i, item := range items {
		s.WriteString(item.String())
		if i < len(items)-1 {
			s.WriteString(", ")
		}
	}
	s.WriteString(")")
	return s.String()
}

// suffixText parenthesizes composite expressions so iteration and
// lookahead render unambiguously.
func suffixText(e Expr, op string) string {
	switch e.(type) {
	case *SequenceExpr, *ChoiceExpr, *LabelExpr:
		return "(" + e.Text() + ")" + op
	default:
		return e.Text() + op
	}
}

// substParams returns e with every formal-parameter reference
// replaced by the corresponding actual from env.  Unchanged subtrees
// are shared, not copied.
func substParams(e Expr, env []Expr) Expr {
	if len(env) == 0 {
		return e
	}
	switch v := e.(type) {
	case *ParamExpr:
		if v.Index >= len(env) {
			panic(fmt.Sprintf("jiramark: param %s/%d outside env of %d", v.Name, v.Index, len(env)))
		}
		return env[v.Index]
	case *SequenceExpr:
		if items, changed := substAll(v.Items, env); changed {
			return &SequenceExpr{Items: items}
		}
	case *ChoiceExpr:
		if items, changed := substAll(v.Items, env); changed {
			return &ChoiceExpr{Items: items}
		}
	case *ZeroOrMoreExpr:
		if sub := substParams(v.Expr, env); sub != v.Expr {
			return &ZeroOrMoreExpr{Expr: sub}
		}
	case *OneOrMoreExpr:
		if sub := substParams(v.Expr, env); sub != v.Expr {
			return &OneOrMoreExpr{Expr: sub}
		}
	case *OptionalExpr:
		if sub := substParams(v.Expr, env); sub != v.Expr {
			return &OptionalExpr{Expr: sub}
		}
	case *AndExpr:
		if sub := substParams(v.Expr, env); sub != v.Expr {
			return &AndExpr{Expr: sub}
		}
	case *NotExpr:
		if sub := substParams(v.Expr, env); sub != v.Expr {
			return &NotExpr{Expr: sub}
		}
	case *LabelExpr:
		if sub := substParams(v.Expr, env); sub != v.Expr {
			return &LabelExpr{Label: v.Label, Expr: sub}
		}
	case *ApplyExpr:
		if args, changed := substAll(v.Args, env); changed {
			return &ApplyExpr{Name: v.Name, Args: args}
		}
	}
	return e
}

func substAll(items []Expr, env []Expr) ([]Expr, bool) {
	changed := false
	out := items
	for i, item := range items {
		sub := substParams(item, env)
		if sub != item && !changed {
			out = make([]Expr, len(items))
			copy(out, items)
			changed = true
		}
		if changed {
			out[i] = sub
		}
	}
	return out, changed
}
