package jiramark

import (
	"fmt"
	"sync"
)

// Rule is a named, optionally parameterized parsing expression.
// Rules are immutable once their Grammar is compiled; fast holds the
// synthesized accept/reject regex when the body turned out to be
// fully regex-representable.
type Rule struct {
	Name    string
	Formals []string
	Desc    string
	Body    Expr

	fast *fastRegex
}

func (r *Rule) description() string {
	if r.Desc != "" {
		return r.Desc
	}
	return r.Name
}

// parse runs the rule at the cursor's end.  When a cached regex is
// available it acts as the accept/reject filter: acceptance produces
// a deferred node whose structure is computed only if some consumer
// actually needs it.
func (r *Rule) parse(g *Grammar, env []Expr, c Cursor) (Node, error) {
	if r.fast != nil && len(env) == 0 {
		n := r.fast.matchLen(c.Rest())
		if n < 0 {
			return nil, failf(c.End(), "expected %s", r.description())
		}
		return &DeferredNode{g: g, body: r.Body, cursor: c, length: n, rule: r.Name}, nil
	}
	res, err := r.Body.match(g, env, c)
	if err != nil {
		return nil, failWrap(c.End(), asFailure(err), "expected %s", r.description())
	}
	return tagRule(res, r.Name), nil
}

// Grammar is a compiled mapping from rule name to rule.  It is
// immutable after Compile returns and safe for concurrent read-only
// use; independent Parse calls share nothing but the grammar.
type Grammar struct {
	Name string

	rules map[string]*Rule

	// order preserves source order: it decides the default rule
	// and keeps the synthesis fixed point deterministic
	order []string

	fastOnce sync.Once
}

func newGrammar(name string) *Grammar {
	return &Grammar{Name: name, rules: make(map[string]*Rule)}
}

func (g *Grammar) add(r *Rule) {
	if _, ok := g.rules[r.Name]; ok {
		panic(fmt.Sprintf("jiramark: duplicate rule %s", r.Name))
	}
	g.rules[r.Name] = r
	g.order = append(g.order, r.Name)
}

// Get returns the named rule.
func (g *Grammar) Get(name string) (*Rule, bool) {
	r, ok := g.rules[name]
	return r, ok
}

// DefaultRule is the grammar's entry rule: the first one defined.
func (g *Grammar) DefaultRule() string {
	if len(g.order) == 0 {
		return ""
	}
	return g.order[0]
}

// RuleNames returns every rule name in definition order.
func (g *Grammar) RuleNames() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// ensureFastPaths runs the synthesis fixed point on first use.  The
// pass mutates per-rule caches, so it must not race with a parse;
// Once gives every parse entry point the same safe first-use build.
func (g *Grammar) ensureFastPaths() {
	g.fastOnce.Do(g.buildFastPaths)
}

// apply invokes the named rule with the given (already substituted)
// actual parameters.  Unknown names and arity mismatches are engine
// bugs here: the compiler validates every application site.
func (g *Grammar) apply(name string, args []Expr, c Cursor) (Node, error) {
	rule, ok := g.rules[name]
	if !ok {
		panic(fmt.Sprintf("jiramark: application of undefined rule %s", name))
	}
	if len(args) != len(rule.Formals) {
		panic(fmt.Sprintf("jiramark: rule %s wants %d parameters, got %d", name, len(rule.Formals), len(args)))
	}
	return rule.parse(g, args, c)
}

// Apply runs a single named rule against a cursor.  Mostly useful
// for exercising one rule at a time; Parse is the usual entry point.
func (g *Grammar) Apply(name string, args []Expr, c Cursor) (Node, error) {
	g.ensureFastPaths()
	return g.apply(name, args, c)
}

// Parse matches the grammar's default rule against input, returning
// the root parse node or a *ParseError locating the deepest unmatched
// expectation.
func (g *Grammar) Parse(input string) (Node, error) {
	return g.ParseRule(g.DefaultRule(), input)
}

// ParseRule is Parse starting from an explicitly chosen rule.
func (g *Grammar) ParseRule(name, input string) (Node, error) {
	g.ensureFastPaths()
	res, err := g.apply(name, nil, NewCursor(input))
	if err != nil {
		f := asFailure(err)
		return nil, &ParseError{
			Failure:  f,
			Location: newPosIndex(input).LocationAt(f.Deepest().At),
		}
	}
	return res, nil
}
