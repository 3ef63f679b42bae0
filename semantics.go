package jiramark

import (
	"fmt"
	"sort"
	"strings"
)

// Handler is one semantic action.  It receives the dispatcher (for
// recursing into children), the node itself, and the node's
// structural slots or items as positional arguments.
type Handler[R any] func(d *Dispatcher[R], n Node, args []Node) (R, error)

// Handlers maps dispatch keys to actions.  A key is a rule name,
// or "rule_label" for a labeled alternative.
type Handlers[R any] map[string]Handler[R]

// Dispatcher walks a parse tree, resolving each node's rule name and
// case label against the handler table.  Nodes with no handler that
// wrap exactly one child pass straight through to it; terminals fall
// back to the fixed terminal handler.  This protocol is the entire
// boundary between the engine and any consumer.
type Dispatcher[R any] struct {
	handlers Handlers[R]
	terminal func(*TerminalNode) (R, error)
}

func NewDispatcher[R any](handlers Handlers[R], terminal func(*TerminalNode) (R, error)) *Dispatcher[R] {
	return &Dispatcher[R]{handlers: handlers, terminal: terminal}
}

// DispatchKey is the handler-table key a node resolves to.
func DispatchKey(n Node) string {
	key := n.Rule()
	if label := n.Label(); label != "" {
		key += "_" + label
	}
	return key
}

func (d *Dispatcher[R]) Dispatch(n Node) (R, error) {
	var zero R

	node := resolve(n)
	if t, ok := node.(*TerminalNode); ok {
		if d.terminal == nil {
			return zero, &MissingHandlerError{Key: "<terminal>"}
		}
		return d.terminal(t)
	}

	key := DispatchKey(node)
	if h, ok := d.handlers[key]; ok {
		return h(d, node, Slots(node))
	}

	if children := Slots(node); len(children) == 1 {
		return d.Dispatch(children[0])
	}
	return zero, &MissingHandlerError{Key: key}
}

// DispatchEach dispatches every node in order.
func (d *Dispatcher[R]) DispatchEach(nodes []Node) ([]R, error) {
	out := make([]R, 0, len(nodes))
	for _, n := range nodes {
		r, err := d.Dispatch(n)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Validate checks, against a compiled grammar, that every reachable
// (rule, case) pair either has a handler or provably passes through a
// single child.  It moves MissingHandler surprises from render time
// to setup time; dispatch still guards at runtime for consumers that
// skip validation.
func (h Handlers[R]) Validate(g *Grammar) error {
	var missing []string
	for _, name := range g.RuleNames() {
		rule, _ := g.Get(name)
		for key, width := range ruleDispatchKeys(rule) {
			if _, ok := h[key]; ok {
				continue
			}
			if width == 1 {
				// single-slot results pass through to their child
				continue
			}
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("handler table incomplete: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ruleDispatchKeys enumerates the dispatch keys a rule can produce at
// runtime, with the width of the producing alternative.
func ruleDispatchKeys(r *Rule) map[string]int {
	keys := make(map[string]int)
	record := func(e Expr) {
		if l, ok := e.(*LabelExpr); ok {
			keys[r.Name+"_"+l.Label] = l.Width()
			return
		}
		keys[r.Name] = e.Width()
	}
	if choice, ok := r.Body.(*ChoiceExpr); ok {
		for _, alt := range choice.Items {
			record(alt)
		}
		return keys
	}
	record(r.Body)
	return keys
}
