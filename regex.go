package jiramark

import (
	"fmt"
	"strings"

	"github.com/coregx/coregex"
)

// The regex engine is a black box behind fastRegex: patterns go in,
// anchored prefix-match lengths come out.

type fastRegex struct {
	re      *coregex.Regex
	pattern string
}

func compileAnchored(pattern string) *fastRegex {
	return &fastRegex{
		re:      coregex.MustCompile(`\A(?:` + pattern + `)`),
		pattern: pattern,
	}
}

// matchLen returns the byte length of the anchored match against s,
// or -1 when the pattern rejects.
func (f *fastRegex) matchLen(s string) int {
	loc := f.re.FindStringIndex(s)
	if loc == nil || loc[0] != 0 {
		return -1
	}
	return loc[1]
}

// Synthesis: every expression either contributes an equivalent regex
// fragment or declares itself unrepresentable.  Lookahead and
// parameter references always obstruct; rule applications are
// representable only once the callee's own pattern is known.

func (e *LiteralExpr) synth(g *Grammar, cands map[string]string, inProgress map[string]bool) (string, bool) {
	return coregex.QuoteMeta(e.Value), true
}

func (e *CharRangeExpr) synth(g *Grammar, cands map[string]string, inProgress map[string]bool) (string, bool) {
	return fmt.Sprintf("[%s-%s]", escapeClassRune(e.Lo), escapeClassRune(e.Hi)), true
}

func (e *PrimitiveExpr) synth(g *Grammar, cands map[string]string, inProgress map[string]bool) (string, bool) {
	return "(?:" + e.pattern + ")", true
}

func (e *SequenceExpr) synth(g *Grammar, cands map[string]string, inProgress map[string]bool) (string, bool) {
	var s strings.Builder
	for _, item := range e.Items {
		sub, ok := item.synth(g, cands, inProgress)
		if !ok {
			return "", false
		}
		s.WriteString("(?:" + sub + ")")
	}
	return s.String(), true
}

func (e *ChoiceExpr) synth(g *Grammar, cands map[string]string, inProgress map[string]bool) (string, bool) {
	subs := make([]string, len(e.Items))
	for i, item := range e.Items {
		sub, ok := item.synth(g, cands, inProgress)
		if !ok {
			return "", false
		}
		subs[i] = "(?:" + sub + ")"
	}
	return strings.Join(subs, "|"), true
}

func (e *ZeroOrMoreExpr) synth(g *Grammar, cands map[string]string, inProgress map[string]bool) (string, bool) {
	return synthSuffix(e.Expr, "*", g, cands, inProgress)
}

func (e *OneOrMoreExpr) synth(g *Grammar, cands map[string]string, inProgress map[string]bool) (string, bool) {
	return synthSuffix(e.Expr, "+", g, cands, inProgress)
}

func (e *OptionalExpr) synth(g *Grammar, cands map[string]string, inProgress map[string]bool) (string, bool) {
	return synthSuffix(e.Expr, "?", g, cands, inProgress)
}

func synthSuffix(sub Expr, op string, g *Grammar, cands map[string]string, inProgress map[string]bool) (string, bool) {
	s, ok := sub.synth(g, cands, inProgress)
	if !ok {
		return "", false
	}
	return "(?:" + s + ")" + op, true
}

func (e *AndExpr) synth(g *Grammar, cands map[string]string, inProgress map[string]bool) (string, bool) {
	return "", false
}

func (e *NotExpr) synth(g *Grammar, cands map[string]string, inProgress map[string]bool) (string, bool) {
	return "", false
}

func (e *ParamExpr) synth(g *Grammar, cands map[string]string, inProgress map[string]bool) (string, bool) {
	return "", false
}

func (e *LabelExpr) synth(g *Grammar, cands map[string]string, inProgress map[string]bool) (string, bool) {
	return e.Expr.synth(g, cands, inProgress)
}

func (e *ApplyExpr) synth(g *Grammar, cands map[string]string, inProgress map[string]bool) (string, bool) {
	// parameterized applications never use the cache: the cached
	// pattern describes the unsubstituted body
	if len(e.Args) > 0 {
		return "", false
	}
	if cand, ok := cands[e.Name]; ok {
		return "(?:" + cand + ")", true
	}
	if inProgress[e.Name] {
		// recursion into a rule still being synthesized: not yet
		// representable this pass, maybe next one
		return "", false
	}
	rule, ok := g.rules[e.Name]
	if !ok {
		return "", false
	}
	inProgress[e.Name] = true
	sub, ok := rule.Body.synth(g, cands, inProgress)
	delete(inProgress, e.Name)
	if !ok {
		return "", false
	}
	return "(?:" + sub + ")", true
}

// buildFastPaths runs the synthesis fixed point over all rules and
// caches a compiled anchored regex for every rule whose body
// stabilized.  Rules obstructed by lookahead, parameters, or
// recursion through a not-yet-stable rule simply keep taking the full
// recursive-descent path.
func (g *Grammar) buildFastPaths() {
	cands := make(map[string]string)
	for changed := true; changed; {
		changed = false
		for _, name := range g.order {
			rule := g.rules[name]
			inProgress := map[string]bool{name: true}
			pattern, ok := rule.Body.synth(g, cands, inProgress)
			if ok && cands[name] != pattern {
				cands[name] = pattern
				changed = true
			}
		}
	}
	for name, pattern := range cands {
		g.rules[name].fast = compileAnchored(pattern)
	}
}

func escapeClassRune(r rune) string {
	switch r {
	case '\\', ']', '^', '-':
		return `\` + string(r)
	}
	return string(r)
}
