package jiramark

import (
	"fmt"
	"html"
	"strings"
)

// ToHTML renders Jira wiki markup as HTML.  A nil opts uses the
// default formatting hooks.
func ToHTML(input string, opts *Options) (string, error) {
	root, err := MarkupGrammar().Parse(input)
	if err != nil {
		return "", err
	}
	r := &renderer{opts: opts.withDefaults()}
	return NewDispatcher[string](r.handlers(), r.terminal).Dispatch(root)
}

type renderer struct {
	opts *Options
}

func (r *renderer) terminal(t *TerminalNode) (string, error) {
	return html.EscapeString(t.Text()), nil
}

// join renders each node and concatenates the results.
func (r *renderer) join(d *Dispatcher[string], nodes []Node, sep string) (string, error) {
	out, err := d.DispatchEach(nodes)
	if err != nil {
		return "", err
	}
	return strings.Join(out, sep), nil
}

// blocks renders block nodes, dropping empty results (blank lines),
// one block per output line.
func (r *renderer) blocks(d *Dispatcher[string], nodes []Node) (string, error) {
	var parts []string
	for _, n := range nodes {
		s, err := d.Dispatch(n)
		if err != nil {
			return "", err
		}
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n"), nil
}

func (r *renderer) handlers() Handlers[string] {
	// wrap renders the repeated middle slot of a delimited inline
	// construct inside a fixed tag pair.
	wrap := func(tag string) Handler[string] {
		return func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			content, err := r.join(d, Items(args[1]), "")
			if err != nil {
				return "", err
			}
			return "<" + tag + ">" + content + "</" + tag + ">", nil
		}
	}

	cell := func(tag string) Handler[string] {
		return func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			content, err := r.join(d, Items(args[1]), "")
			if err != nil {
				return "", err
			}
			return "<" + tag + ">" + strings.TrimSpace(content) + "</" + tag + ">", nil
		}
	}

	return Handlers[string]{
		"document": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			return r.blocks(d, Items(args[0]))
		},

		"blankLine": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			return "", nil
		},

		"heading": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			tag := resolve(args[0]).Label()
			content, err := r.join(d, Items(args[2]), "")
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("<%s>%s</%s>", tag, strings.TrimSpace(content), tag), nil
		},

		"hrule": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			return "<hr/>", nil
		},

		"bq": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			content, err := r.join(d, Items(args[2]), "")
			if err != nil {
				return "", err
			}
			return "<blockquote>" + strings.TrimSpace(content) + "</blockquote>", nil
		},

		"quoteBlock": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			inner, err := r.blocks(d, Items(args[3]))
			if err != nil {
				return "", err
			}
			return "<blockquote>" + inner + "</blockquote>", nil
		},

		"codeBlock": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			var params string
			if p := Items(args[1]); len(p) == 1 {
				var err error
				params, err = d.Dispatch(p[0])
				if err != nil {
					return "", err
				}
			}
			body := strings.TrimSuffix(args[4].Text(), "\n")
			return r.opts.FormatCode(params, body), nil
		},

		"codeParams": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			return args[1].Text(), nil
		},

		"noformat": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			body := strings.TrimSuffix(args[2].Text(), "\n")
			return "<pre>" + html.EscapeString(body) + "</pre>", nil
		},

		"list": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			var entries []listEntry
			for _, it := range args {
				slots := Slots(it)
				bullets := Items(slots[0])
				tag := "ul"
				if resolve(bullets[len(bullets)-1]).Label() == "ol" {
					tag = "ol"
				}
				content, err := d.Dispatch(it)
				if err != nil {
					return "", err
				}
				entries = append(entries, listEntry{
					depth:   len(bullets),
					tag:     tag,
					content: content,
				})
			}
			return renderListEntries(entries), nil
		},

		"listItem": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			content, err := r.join(d, Items(args[2]), "")
			if err != nil {
				return "", err
			}
			return strings.TrimSpace(content), nil
		},

		// listLead is only ever consumed inside a negative
		// lookahead, so it never reaches dispatch
		"listLead": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			return "", nil
		},

		"table": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			rows, err := r.join(d, args, "")
			if err != nil {
				return "", err
			}
			return "<table>" + rows + "</table>", nil
		},

		"tableRow": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			cells, err := r.join(d, Items(args[0]), "")
			if err != nil {
				return "", err
			}
			return "<tr>" + cells + "</tr>", nil
		},

		"rowCell_th": cell("th"),
		"rowCell_td": cell("td"),

		"paragraph": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			lines, err := r.join(d, args, "\n")
			if err != nil {
				return "", err
			}
			return "<p>" + lines + "</p>", nil
		},

		"textLine": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			return r.join(d, Items(args[0]), "")
		},

		"lineBreak": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			return "<br/>", nil
		},

		"escaped": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			return html.EscapeString(args[1].Text()), nil
		},

		"monospace": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			return "<tt>" + html.EscapeString(args[1].Text()) + "</tt>", nil
		},

		"colorText": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			name := resolve(args[1]).Text()
			content, err := r.join(d, Items(args[3]), "")
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("<span style=\"color: %s\">%s</span>",
				html.EscapeString(name), content), nil
		},

		"userLink": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			return r.opts.FormatUser(args[1].Text()), nil
		},

		"attachLink": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			return r.opts.FormatAttachment(args[1].Text()), nil
		},

		"fullLink": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			text := html.EscapeString(args[1].Text())
			return r.opts.FormatLink(args[3].Text(), text), nil
		},

		"bareLink": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			target := args[1].Text()
			return r.opts.FormatLink(target, html.EscapeString(target)), nil
		},

		"strong":      wrap("b"),
		"emphasis":    wrap("em"),
		"citation":    wrap("cite"),
		"deleted":     wrap("del"),
		"inserted":    wrap("ins"),
		"superscript": wrap("sup"),
		"subscript":   wrap("sub"),

		"word": func(d *Dispatcher[string], n Node, args []Node) (string, error) {
			return html.EscapeString(n.Text()), nil
		},
	}
}

type listEntry struct {
	depth   int
	tag     string
	content string
}

// renderListEntries turns a flat run of list items into nested list
// markup.  A slice of consecutive deeper entries becomes a sublist
// inside the item that precedes it.
func renderListEntries(entries []listEntry) string {
	if len(entries) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("<" + entries[0].tag + ">")
	for i := 0; i < len(entries); {
		j := i + 1
		for j < len(entries) && entries[j].depth > entries[i].depth {
			j++
		}
		sb.WriteString("<li>")
		sb.WriteString(entries[i].content)
		sb.WriteString(renderListEntries(entries[i+1 : j]))
		sb.WriteString("</li>")
		i = j
	}
	sb.WriteString("</" + entries[0].tag + ">")
	return sb.String()
}
