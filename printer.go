package jiramark

import (
	"fmt"
	"strconv"
	"strings"
)

// TreeString renders a parse tree as a box-drawing diagram, forcing
// deferred nodes so the printed structure is the real one.
func TreeString(n Node) string {
	p := &treePrinter{output: &strings.Builder{}}
	p.visit(n)
	return p.output.String()
}

type treePrinter struct {
	padStr []string
	output *strings.Builder
}

func (p *treePrinter) visit(n Node) {
	switch v := resolve(n).(type) {
	case *TerminalNode:
		p.write(strconv.Quote(v.Text()))
		p.write(fmt.Sprintf(" (%s)", v.Span()))
	case *WideNode:
		p.write(nodeHeader("Wide", v.rule, v.label))
		p.writel(fmt.Sprintf("<%d> (%s)", len(v.slots), v.Span()))
		p.children(v.slots)
	case *TallNode:
		p.write(nodeHeader("Tall", v.rule, v.label))
		p.writel(fmt.Sprintf("<%d> (%s)", len(v.items), v.Span()))
		p.children(v.items)
	}
}

func (p *treePrinter) children(items []Node) {
	for i, item := range items {
		switch {
		case i == len(items)-1:
			p.pwrite("└── ")
			p.indent("    ")
			p.visit(item)
			p.unindent()
		default:
			p.pwrite("├── ")
			p.indent("│   ")
			p.visit(item)
			p.unindent()
			p.write("\n")
		}
	}
}

func (p *treePrinter) indent(s string) {
	p.padStr = append(p.padStr, s)
}

func (p *treePrinter) unindent() {
	p.padStr = p.padStr[:len(p.padStr)-1]
}

func (p *treePrinter) writel(s string) {
	p.write(s)
	p.output.WriteRune('\n')
}

func (p *treePrinter) write(s string) {
	p.output.WriteString(s)
}

func (p *treePrinter) pwrite(s string) {
	for _, pad := range p.padStr {
		p.write(pad)
	}
	p.write(s)
}
