package jiramark

import (
	"fmt"
	"strings"
)

// Node is a value in the concrete parse tree.  The union is closed:
// TerminalNode, WideNode, TallNode and DeferredNode are the only
// implementations.  Failures are not nodes; they travel the matching
// algebra as *ParseFailure error values.
type Node interface {
	// Span is the byte range of input this node covers
	Span() Range

	// Text is the exact matched input slice
	Text() string

	String() string

	// Rule is the name of the rule that produced this node, empty
	// for structural nodes below a rule boundary
	Rule() string

	// Label is the case label of the alternative that produced
	// this node, empty when the alternative was unlabeled
	Label() string
}

// Node Type: Terminal

// TerminalNode is a leaf: exactly the matched text.  Terminals are
// complete; merging or prefixing one is an engine bug.
type TerminalNode struct {
	input string
	span  Range
}

func NewTerminalNode(input string, span Range) *TerminalNode {
	return &TerminalNode{input: input, span: span}
}

func (n TerminalNode) Span() Range   { return n.span }
func (n TerminalNode) Text() string  { return n.span.Str(n.input) }
func (n TerminalNode) Rule() string  { return "" }
func (n TerminalNode) Label() string { return "" }
func (n TerminalNode) String() string {
	return fmt.Sprintf("%q @ %s", n.Text(), n.span)
}

// Node Type: Wide

// WideNode is a fixed-arity composite: the result of a sequence or a
// committed choice alternative.  The number of slots always equals
// the producing expression's static width.
type WideNode struct {
	input string
	span  Range
	slots []Node
	rule  string
	label string
}

func NewWideNode(input string, span Range, slots []Node) *WideNode {
	return &WideNode{input: input, span: span, slots: slots}
}

func (n WideNode) Span() Range   { return n.span }
func (n WideNode) Text() string  { return n.span.Str(n.input) }
func (n WideNode) Rule() string  { return n.rule }
func (n WideNode) Label() string { return n.label }
func (n WideNode) Slots() []Node { return n.slots }

func (n WideNode) String() string {
	return nodesString(nodeHeader("Wide", n.rule, n.label), n.span, n.slots)
}

// Node Type: Tall

// TallNode is a variable-arity composite: one repetition slot
// accumulating however many matches the input held.  A TallNode with
// exactly one item is the "short" normal form a single match takes
// before merging into a Wide parent.
type TallNode struct {
	input string
	span  Range
	items []Node
	rule  string
	label string
}

func NewTallNode(input string, span Range, items []Node) *TallNode {
	return &TallNode{input: input, span: span, items: items}
}

func (n TallNode) Span() Range   { return n.span }
func (n TallNode) Text() string  { return n.span.Str(n.input) }
func (n TallNode) Rule() string  { return n.rule }
func (n TallNode) Label() string { return n.label }
func (n TallNode) Items() []Node { return n.items }

func (n TallNode) String() string {
	return nodesString(nodeHeader("Tall", n.rule, n.label), n.span, n.items)
}

// Node Type: Deferred

// DeferredNode is a successful match recognized only through its
// rule's cached regex.  The internal structure is a recipe, computed
// the first time a consumer needs the node's shape and memoized in
// place, so repeated access costs nothing.
type DeferredNode struct {
	g      *Grammar
	env    []Expr
	body   Expr
	cursor Cursor
	length int
	rule   string

	// memo is the two-state cell: nil while pending, the expanded
	// node once resolved
	memo Node
}

func (n *DeferredNode) Span() Range {
	return NewRange(n.cursor.End(), n.cursor.End()+n.length)
}

func (n *DeferredNode) Text() string  { return n.Span().Str(n.cursor.Input()) }
func (n *DeferredNode) Rule() string  { return n.rule }
func (n *DeferredNode) Label() string { return "" }

func (n *DeferredNode) String() string {
	if n.memo != nil {
		return n.memo.String()
	}
	return fmt.Sprintf("Deferred[%s] @ %s", n.rule, n.Span())
}

// Force expands the deferred recipe by rerunning the rule body over
// the stored cursor.  The cached regex already accepted this span, so
// failure here means the fast path and the full path disagree, which
// is an engine bug.
func (n *DeferredNode) Force() Node {
	if n.memo != nil {
		return n.memo
	}
	res, err := n.body.match(n.g, n.env, n.cursor)
	if err != nil {
		panic(fmt.Sprintf("jiramark: deferred %s failed on expansion: %v", n.rule, err))
	}
	n.memo = tagRule(res, n.rule)
	return n.memo
}

// resolve returns n with any deferred recipe expanded.
func resolve(n Node) Node {
	if d, ok := n.(*DeferredNode); ok {
		return d.Force()
	}
	return n
}

// Items normalizes a node into its repetition items: a Tall yields
// its accumulated items, anything else is a single completed item.
// This is the accessor handler tables use to walk optional and
// repeated slots uniformly.
func Items(n Node) []Node {
	switch v := resolve(n).(type) {
	case *TallNode:
		return v.items
	default:
		return []Node{v}
	}
}

// Slots returns the structural slots of a composite node: a Wide's
// slots, a Tall's items, or nothing for a terminal.
func Slots(n Node) []Node {
	switch v := resolve(n).(type) {
	case *WideNode:
		return v.slots
	case *TallNode:
		return v.items
	default:
		return nil
	}
}

// Merge algebra.  These free functions let sequencing and repetition
// fold independently produced partial results into one correctly
// shaped composite without re-parsing.  Shape mismatches are
// programming errors, not parse failures.

// prefixTall returns a new Tall with extra items concatenated before
// t's own, spanning from start to t's end.
func prefixTall(t Node, start int, extra []Node) *TallNode {
	tall, ok := resolve(t).(*TallNode)
	if !ok {
		panic(fmt.Sprintf("jiramark: cannot prefix %T, want tall node", t))
	}
	items := make([]Node, 0, len(extra)+len(tall.items))
	items = append(items, extra...)
	items = append(items, tall.items...)
	return &TallNode{
		input: tall.input,
		span:  NewRange(start, tall.span.End),
		items: items,
	}
}

// mergeWide folds one repetition step's slots in front of the
// accumulator: slot i of the result is acc's slot i prefixed with the
// items of others[i].  len(others) must equal acc's arity.
func mergeWide(acc *WideNode, start int, others []Node) *WideNode {
	if len(acc.slots) != len(others) {
		panic(fmt.Sprintf("jiramark: merging %d slots into node of arity %d", len(others), len(acc.slots)))
	}
	slots := make([]Node, len(acc.slots))
	for i, other := range others {
		slots[i] = prefixTall(acc.slots[i], other.Span().Start, Items(other))
	}
	return &WideNode{
		input: acc.input,
		span:  NewRange(start, acc.span.End),
		slots: slots,
	}
}

// tagRule marks a node as produced by the named rule.  Nodes that
// already belong to another rule, and leaves, are wrapped in a
// single-slot Wide so the inner attribution survives.
func tagRule(n Node, name string) Node {
	switch v := n.(type) {
	case *WideNode:
		if v.rule == "" {
			tagged := v
			out := *tagged
			out.rule = name
			return &out
		}
	case *TallNode:
		if v.rule == "" {
			out := *v
			out.rule = name
			return &out
		}
	}
	return &WideNode{
		input: nodeInput(n),
		span:  n.Span(),
		slots: []Node{n},
		rule:  name,
	}
}

// setLabel marks a node with an alternative's case label, wrapping
// when the node already carries a rule or label of its own.
func setLabel(n Node, label string) Node {
	switch v := n.(type) {
	case *WideNode:
		if v.rule == "" && v.label == "" {
			out := *v
			out.label = label
			return &out
		}
	case *TallNode:
		if v.rule == "" && v.label == "" {
			out := *v
			out.label = label
			return &out
		}
	}
	return &WideNode{
		input: nodeInput(n),
		span:  n.Span(),
		slots: []Node{n},
		label: label,
	}
}

func nodeInput(n Node) string {
	switch v := n.(type) {
	case *TerminalNode:
		return v.input
	case *WideNode:
		return v.input
	case *TallNode:
		return v.input
	case *DeferredNode:
		return v.cursor.Input()
	default:
		panic(fmt.Sprintf("jiramark: unknown node type %T", n))
	}
}

// Helpers

func nodeHeader(kind, rule, label string) string {
	if rule != "" && label != "" {
		return fmt.Sprintf("%s[%s_%s]", kind, rule, label)
	}
	if rule != "" {
		return fmt.Sprintf("%s[%s]", kind, rule)
	}
	if label != "" {
		return fmt.Sprintf("%s[_%s]", kind, label)
	}
	return kind
}

func nodesString(name string, span Range, items []Node) string {
	var s strings.Builder
	s.WriteString(name)
	s.WriteString("(")
	for i, child := range items {
		s.WriteString(child.String())
		if i < len(items)-1 {
			s.WriteString(", ")
		}
	}
	fmt.Fprintf(&s, ") @ %s", span)
	return s.String()
}
