package jiramark

import "fmt"

// Compile builds a Grammar from a grammar description.  The source is
// parsed with the bootstrapped meta grammar and lowered into an
// expression tree by an ordinary handler table; compilation goes
// through the exact same dispatch protocol every other consumer uses.
func Compile(name, src string) (*Grammar, error) {
	root, err := metaGrammar().Parse(src)
	if err != nil {
		pe := err.(*ParseError)
		return nil, &GrammarSyntaxError{
			Message:  pe.Failure.Deepest().Msg,
			Location: pe.Location,
		}
	}

	c := &compiler{pi: newPosIndex(src)}
	d := NewDispatcher[any](c.handlers(), func(t *TerminalNode) (any, error) {
		return t.Text(), nil
	})
	if _, err := d.Dispatch(root); err != nil {
		return nil, err
	}

	g := newGrammar(name)
	for _, r := range c.rules {
		if _, ok := g.Get(r.Name); ok {
			return nil, &GrammarSyntaxError{
				Message: fmt.Sprintf("rule %q defined more than once", r.Name),
			}
		}
		g.add(r)
	}
	if err := resolveApplications(g); err != nil {
		return nil, err
	}
	if err := checkChoiceWidths(g); err != nil {
		return nil, err
	}
	return g, nil
}

// MustCompile is Compile for grammars known at build time.
func MustCompile(name, src string) *Grammar {
	g, err := Compile(name, src)
	if err != nil {
		panic(err)
	}
	return g
}

type compiler struct {
	pi    *posIndex
	rules []*Rule

	// formals of the rule currently being lowered; an application
	// naming one of these becomes a parameter reference
	formals []string
}

func (c *compiler) errAt(n Node, format string, args ...interface{}) error {
	return &GrammarSyntaxError{
		Message:  fmt.Sprintf(format, args...),
		Location: c.pi.LocationAt(n.Span().Start),
	}
}

func (c *compiler) formalIndex(name string) int {
	for i, f := range c.formals {
		if f == name {
			return i
		}
	}
	return -1
}

// str dispatches a node whose semantic value is a string.
func (c *compiler) str(d *Dispatcher[any], n Node) (string, error) {
	v, err := d.Dispatch(n)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		panic(fmt.Sprintf("jiramark: compiler expected string for %s, got %T", DispatchKey(resolve(n)), v))
	}
	return s, nil
}

// expr dispatches a node whose semantic value is an expression.
func (c *compiler) expr(d *Dispatcher[any], n Node) (Expr, error) {
	v, err := d.Dispatch(n)
	if err != nil {
		return nil, err
	}
	e, ok := v.(Expr)
	if !ok {
		panic(fmt.Sprintf("jiramark: compiler expected expression for %s, got %T", DispatchKey(resolve(n)), v))
	}
	return e, nil
}

func (c *compiler) handlers() Handlers[any] {
	quoted := func(d *Dispatcher[any], n Node, args []Node) (any, error) {
		var out string
		for _, ch := range Items(args[1]) {
			s, err := c.str(d, ch)
			if err != nil {
				return nil, err
			}
			out += s
		}
		return out, nil
	}

	return Handlers[any]{
		"Grammar": func(d *Dispatcher[any], n Node, args []Node) (any, error) {
			for _, rn := range Items(args[1]) {
				v, err := d.Dispatch(rn)
				if err != nil {
					return nil, err
				}
				c.rules = append(c.rules, v.(*Rule))
			}
			return nil, nil
		},

		"Rule": func(d *Dispatcher[any], n Node, args []Node) (any, error) {
			name, err := c.str(d, args[0])
			if err != nil {
				return nil, err
			}

			var formals []string
			if fo := Items(args[1]); len(fo) == 1 {
				v, err := d.Dispatch(fo[0])
				if err != nil {
					return nil, err
				}
				formals = v.([]string)
			}
			seen := make(map[string]bool, len(formals))
			for _, f := range formals {
				if seen[f] {
					return nil, c.errAt(n, "rule %q repeats formal %q", name, f)
				}
				seen[f] = true
			}

			var desc string
			if de := Items(args[2]); len(de) == 1 {
				desc, err = c.str(d, de[0])
				if err != nil {
					return nil, err
				}
			}

			c.formals = formals
			body, err := c.expr(d, args[4])
			c.formals = nil
			if err != nil {
				return nil, err
			}

			return &Rule{Name: name, Formals: formals, Desc: desc, Body: body}, nil
		},

		"Ident": func(d *Dispatcher[any], n Node, args []Node) (any, error) {
			return args[0].Text(), nil
		},

		"Formals": func(d *Dispatcher[any], n Node, args []Node) (any, error) {
			first, err := c.str(d, args[1])
			if err != nil {
				return nil, err
			}
			names := []string{first}
			for _, more := range Items(args[3]) {
				s, err := c.str(d, more)
				if err != nil {
					return nil, err
				}
				names = append(names, s)
			}
			return names, nil
		},

		"Description": func(d *Dispatcher[any], n Node, args []Node) (any, error) {
			return args[1].Text(), nil
		},

		"Alternatives": func(d *Dispatcher[any], n Node, args []Node) (any, error) {
			first, err := c.expr(d, args[0])
			if err != nil {
				return nil, err
			}
			alts := []Expr{first}
			for _, more := range Items(args[2]) {
				e, err := c.expr(d, more)
				if err != nil {
					return nil, err
				}
				alts = append(alts, e)
			}
			if len(alts) == 1 {
				return alts[0], nil
			}
			return NewChoiceExpr(alts...), nil
		},

		"Alternative": func(d *Dispatcher[any], n Node, args []Node) (any, error) {
			var terms []Expr
			for _, tn := range Items(args[1]) {
				e, err := c.expr(d, tn)
				if err != nil {
					return nil, err
				}
				terms = append(terms, e)
			}
			expr := terms[0]
			if len(terms) > 1 {
				expr = NewSequenceExpr(terms...)
			}
			if lb := Items(args[0]); len(lb) == 1 {
				label, err := c.str(d, lb[0])
				if err != nil {
					return nil, err
				}
				expr = NewLabelExpr(label, expr)
			}
			return expr, nil
		},

		"CaseLabel": func(d *Dispatcher[any], n Node, args []Node) (any, error) {
			return args[1].Text(), nil
		},

		"Lookahead_and": func(d *Dispatcher[any], n Node, args []Node) (any, error) {
			e, err := c.expr(d, args[1])
			if err != nil {
				return nil, err
			}
			return NewAndExpr(e), nil
		},

		"Lookahead_not": func(d *Dispatcher[any], n Node, args []Node) (any, error) {
			e, err := c.expr(d, args[1])
			if err != nil {
				return nil, err
			}
			return NewNotExpr(e), nil
		},

		"Repeated": func(d *Dispatcher[any], n Node, args []Node) (any, error) {
			prim, err := c.expr(d, args[0])
			if err != nil {
				return nil, err
			}
			sufs := Items(args[1])
			if len(sufs) == 0 {
				return prim, nil
			}
			switch label := resolve(sufs[0]).Label(); label {
			case "star":
				return NewZeroOrMoreExpr(prim), nil
			case "plus":
				return NewOneOrMoreExpr(prim), nil
			case "opt":
				return NewOptionalExpr(prim), nil
			default:
				panic(fmt.Sprintf("jiramark: unknown suffix case %q", label))
			}
		},

		"Parens": func(d *Dispatcher[any], n Node, args []Node) (any, error) {
			return c.expr(d, args[1])
		},

		"RangeTerm": func(d *Dispatcher[any], n Node, args []Node) (any, error) {
			lo, err := c.str(d, args[0])
			if err != nil {
				return nil, err
			}
			hi, err := c.str(d, args[2])
			if err != nil {
				return nil, err
			}
			lor, hir := []rune(lo), []rune(hi)
			if len(lor) != 1 || len(hir) != 1 {
				return nil, c.errAt(n, "range bounds must be single characters, got %q..%q", lo, hi)
			}
			if lor[0] > hir[0] {
				return nil, c.errAt(n, "empty range %q..%q", lo, hi)
			}
			return NewCharRangeExpr(lor[0], hir[0]), nil
		},

		"LiteralTerm": func(d *Dispatcher[any], n Node, args []Node) (any, error) {
			s, err := c.str(d, args[0])
			if err != nil {
				return nil, err
			}
			return NewLiteralExpr(s), nil
		},

		"Application": func(d *Dispatcher[any], n Node, args []Node) (any, error) {
			name, err := c.str(d, args[0])
			if err != nil {
				return nil, err
			}
			actuals := Items(args[1])
			if i := c.formalIndex(name); i >= 0 {
				if len(actuals) == 1 {
					return nil, c.errAt(n, "parameter %q cannot take arguments", name)
				}
				return NewParamExpr(name, i), nil
			}
			var argExprs []Expr
			if len(actuals) == 1 {
				v, err := d.Dispatch(actuals[0])
				if err != nil {
					return nil, err
				}
				argExprs = v.([]Expr)
			}
			return NewApplyExpr(name, argExprs...), nil
		},

		"Args": func(d *Dispatcher[any], n Node, args []Node) (any, error) {
			first, err := c.expr(d, args[1])
			if err != nil {
				return nil, err
			}
			out := []Expr{first}
			for _, more := range Items(args[3]) {
				e, err := c.expr(d, more)
				if err != nil {
					return nil, err
				}
				out = append(out, e)
			}
			return out, nil
		},

		"Quoted_dq": quoted,
		"Quoted_sq": quoted,

		"Escape": func(d *Dispatcher[any], n Node, args []Node) (any, error) {
			switch ch := args[1].Text(); ch {
			case "n":
				return "\n", nil
			case "t":
				return "\t", nil
			case "r":
				return "\r", nil
			default:
				return ch, nil
			}
		},
	}
}

// resolveApplications checks every application against the defined
// rules, injecting built-in rules for names like `any` and `alnum`
// the first time they are referenced.
func resolveApplications(g *Grammar) error {
	defined := append([]string(nil), g.order...)
	for _, name := range defined {
		rule, _ := g.Get(name)
		var err error
		walkExpr(rule.Body, func(e Expr) {
			app, ok := e.(*ApplyExpr)
			if !ok || err != nil {
				return
			}
			target, found := g.Get(app.Name)
			if !found {
				b, isBuiltin := builtinRule(app.Name)
				if !isBuiltin {
					err = &GrammarSyntaxError{
						Message: fmt.Sprintf("rule %q applies undefined rule %q", name, app.Name),
					}
					return
				}
				g.add(b)
				target = b
			}
			if len(app.Args) != len(target.Formals) {
				err = &GrammarSyntaxError{
					Message: fmt.Sprintf("rule %q applies %q with %d arguments, want %d",
						name, app.Name, len(app.Args), len(target.Formals)),
				}
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// checkChoiceWidths rejects ordered choices whose alternatives have
// different shape widths.  Equal widths everywhere are what let every
// rule application produce a fixed number of slots.
func checkChoiceWidths(g *Grammar) error {
	for _, name := range g.RuleNames() {
		rule, _ := g.Get(name)
		var err error
		walkExpr(rule.Body, func(e Expr) {
			choice, ok := e.(*ChoiceExpr)
			if !ok || err != nil {
				return
			}
			want := choice.Items[0].Width()
			for _, alt := range choice.Items[1:] {
				if alt.Width() != want {
					err = &GrammarSyntaxError{
						Message: fmt.Sprintf("rule %q: alternative %s has width %d, want %d",
							name, alt.Text(), alt.Width(), want),
					}
					return
				}
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// walkExpr visits e and every subexpression, including application
// arguments.
func walkExpr(e Expr, fn func(Expr)) {
	fn(e)
	switch v := e.(type) {
	case *SequenceExpr:
		for _, item := range v.Items {
			walkExpr(item, fn)
		}
	case *ChoiceExpr:
		for _, item := range v.Items {
			walkExpr(item, fn)
		}
	case *ZeroOrMoreExpr:
		walkExpr(v.Expr, fn)
	case *OneOrMoreExpr:
		walkExpr(v.Expr, fn)
	case *OptionalExpr:
		walkExpr(v.Expr, fn)
	case *AndExpr:
		walkExpr(v.Expr, fn)
	case *NotExpr:
		walkExpr(v.Expr, fn)
	case *ApplyExpr:
		for _, arg := range v.Args {
			walkExpr(arg, fn)
		}
	case *LabelExpr:
		walkExpr(v.Expr, fn)
	}
}
