package jiramark

import (
	"fmt"
	"strings"
)

// The matching engine: one match method per expression variant.  All
// of them share the same contract: evaluate at c.End(), return a node
// spanning the consumed input, or a *ParseFailure value.  Failures
// are data; ordered choice and repetition catch and discard them.

func (e *LiteralExpr) match(g *Grammar, env []Expr, c Cursor) (Node, error) {
	pos := c.End()
	if !strings.HasPrefix(c.Rest(), e.Value) {
		return nil, failf(pos, "expected `%s`", e.Value)
	}
	return NewTerminalNode(c.Input(), NewRange(pos, pos+len(e.Value))), nil
}

func (e *CharRangeExpr) match(g *Grammar, env []Expr, c Cursor) (Node, error) {
	pos := c.End()
	r, size := c.PeekRune()
	if r == eof || r < e.Lo || r > e.Hi {
		return nil, failf(pos, "expected %s", e.Text())
	}
	return NewTerminalNode(c.Input(), NewRange(pos, pos+size)), nil
}

func (e *PrimitiveExpr) match(g *Grammar, env []Expr, c Cursor) (Node, error) {
	pos := c.End()
	n := e.re.matchLen(c.Rest())
	if n < 0 {
		return nil, failf(pos, "expected %s", e.Name)
	}
	return NewTerminalNode(c.Input(), NewRange(pos, pos+n)), nil
}

func (e *SequenceExpr) match(g *Grammar, env []Expr, c Cursor) (Node, error) {
	var (
		pos   = c.End()
		cur   = c
		slots = make([]Node, 0, e.Width())
	)
	for _, item := range e.Items {
		res, err := item.match(g, env, cur)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slotsOf(res, item.Width())...)
		cur = cur.To(res.Span().End)
	}
	return NewWideNode(c.Input(), NewRange(pos, cur.End()), slots), nil
}

func (e *ChoiceExpr) match(g *Grammar, env []Expr, c Cursor) (Node, error) {
	var (
		pos  = c.End()
		best *ParseFailure
	)
	for _, alt := range e.Items {
		res, err := alt.match(g, env, c)
		if err == nil {
			return res, nil
		}
		if f := asFailure(err); best == nil || f.Deepest().At > best.Deepest().At {
			best = f
		}
	}
	return nil, failWrap(pos, best, "failed alternative")
}

func (e *ZeroOrMoreExpr) match(g *Grammar, env []Expr, c Cursor) (Node, error) {
	return matchRepeat(g, env, c, e.Expr, 0)
}

func (e *OneOrMoreExpr) match(g *Grammar, env []Expr, c Cursor) (Node, error) {
	return matchRepeat(g, env, c, e.Expr, 1)
}

// matchRepeat accumulates matches of sub until the first failure,
// discarding the failed attempt and keeping everything before it.  A
// successful iteration that consumes no input terminates the loop,
// since repetition over a zero-width match would never advance; the
// success still counts toward the minimum.
func matchRepeat(g *Grammar, env []Expr, c Cursor, sub Expr, min int) (Node, error) {
	var (
		pos     = c.End()
		cur     = c
		results []Node
		lastErr *ParseFailure
	)
	for {
		if !cur.More() {
			break
		}
		res, err := sub.match(g, env, cur)
		if err != nil {
			lastErr = asFailure(err)
			break
		}
		if res.Span().End == cur.End() {
			if len(results) < min {
				results = append(results, res)
			}
			break
		}
		results = append(results, res)
		cur = cur.To(res.Span().End)
	}
	if len(results) < min {
		if lastErr != nil {
			return nil, failWrap(pos, lastErr, "expected at least one %s", sub.Text())
		}
		return nil, failf(pos, "expected at least one %s", sub.Text())
	}

	// Fold backward so every step is a prefix of the accumulator,
	// exactly the shape-merge the node algebra provides.
	end := cur.End()
	switch w := sub.Width(); w {
	case 0:
		return NewWideNode(c.Input(), NewRange(pos, end), nil), nil
	case 1:
		acc := NewTallNode(c.Input(), NewRange(end, end), nil)
		for i := len(results) - 1; i >= 0; i-- {
			acc = prefixTall(acc, results[i].Span().Start, Items(results[i]))
		}
		acc.span.Start = pos
		return acc, nil
	default:
		acc := emptyWide(c.Input(), end, w)
		for i := len(results) - 1; i >= 0; i-- {
			acc = mergeWide(acc, results[i].Span().Start, slotsOf(results[i], w))
		}
		acc.span.Start = pos
		return acc, nil
	}
}

func (e *OptionalExpr) match(g *Grammar, env []Expr, c Cursor) (Node, error) {
	res, err := e.Expr.match(g, env, c)
	if err != nil {
		// arity must stay consistent for the enclosing sequence,
		// so a failed optional yields an empty shape of the same
		// declared width
		return emptyShape(c.Input(), c.End(), e.Expr.Width()), nil
	}
	return res, nil
}

func (e *AndExpr) match(g *Grammar, env []Expr, c Cursor) (Node, error) {
	if _, err := e.Expr.match(g, env, c); err != nil {
		return nil, failWrap(c.End(), asFailure(err), "lookahead failed")
	}
	// the predicate consumes nothing: same position, empty shape
	return emptyShape(c.Input(), c.End(), e.Expr.Width()), nil
}

func (e *NotExpr) match(g *Grammar, env []Expr, c Cursor) (Node, error) {
	if _, err := e.Expr.match(g, env, c); err == nil {
		return nil, failf(c.End(), "unexpected %s", e.Expr.Text())
	}
	return NewWideNode(c.Input(), NewRange(c.End(), c.End()), nil), nil
}

func (e *ApplyExpr) match(g *Grammar, env []Expr, c Cursor) (Node, error) {
	var args []Expr
	if len(e.Args) > 0 {
		args = make([]Expr, len(e.Args))
		for i, arg := range e.Args {
			args[i] = substParams(arg, env)
		}
	}
	return g.apply(e.Name, args, c)
}

func (e *ParamExpr) match(g *Grammar, env []Expr, c Cursor) (Node, error) {
	if e.Index >= len(env) {
		panic(fmt.Sprintf("jiramark: unresolved parameter %s/%d", e.Name, e.Index))
	}
	// actuals are fully substituted at application time, so they
	// carry no parameter references of their own
	return env[e.Index].match(g, nil, c)
}

func (e *LabelExpr) match(g *Grammar, env []Expr, c Cursor) (Node, error) {
	res, err := e.Expr.match(g, env, c)
	if err != nil {
		return nil, err
	}
	return setLabel(res, e.Label), nil
}

// slotsOf flattens a match result into the slot list it contributes
// to an enclosing sequence.  The count is dictated by the static
// width, never by the input.
func slotsOf(n Node, w int) []Node {
	switch w {
	case 0:
		return nil
	case 1:
		return []Node{n}
	default:
		wide, ok := resolve(n).(*WideNode)
		if !ok || len(wide.slots) != w {
			panic(fmt.Sprintf("jiramark: result %T does not have arity %d", n, w))
		}
		return wide.slots
	}
}

// emptyShape builds a zero-width stand-in of the given arity: what an
// absent optional or a satisfied lookahead contributes.
func emptyShape(input string, at int, w int) Node {
	switch w {
	case 1:
		return NewTallNode(input, NewRange(at, at), nil)
	default:
		return emptyWide(input, at, w)
	}
}

func emptyWide(input string, at int, w int) *WideNode {
	slots := make([]Node, w)
	for i := range slots {
		slots[i] = NewTallNode(input, NewRange(at, at), nil)
	}
	return NewWideNode(input, NewRange(at, at), slots)
}
