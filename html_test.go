package jiramark

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkupGrammarCompiles(t *testing.T) {
	g := MarkupGrammar()
	assert.Equal(t, "jiramark", g.Name)
	assert.Equal(t, "document", g.DefaultRule())

	// the same compiled grammar is shared
	assert.Same(t, g, MarkupGrammar())
}

func TestMarkupHandlersCoverGrammar(t *testing.T) {
	r := &renderer{opts: (*Options)(nil).withDefaults()}
	require.NoError(t, r.handlers().Validate(MarkupGrammar()))
}

func TestToHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty document", "", ""},
		{"paragraph", "hello world\n", "<p>hello world</p>"},
		{"paragraph joins lines", "line one\nline two\n", "<p>line one\nline two</p>"},
		{"blank line splits paragraphs", "a\n\nb\n", "<p>a</p>\n<p>b</p>"},
		{"no trailing newline", "hello", "<p>hello</p>"},

		{"heading", "h1. Title\n", "<h1>Title</h1>"},
		{"heading levels", "h3. Deep\n", "<h3>Deep</h3>"},
		{"heading without space", "h2.Tight\n", "<h2>Tight</h2>"},
		{"horizontal rule", "----\n", "<hr/>"},
		{"long horizontal rule", "--------\n", "<hr/>"},
		{"quote line", "bq. said so\n", "<blockquote>said so</blockquote>"},

		{"strong", "*bold* move\n", "<p><b>bold</b> move</p>"},
		{"emphasis", "an _aside_\n", "<p>an <em>aside</em></p>"},
		{"citation", "??source??\n", "<p><cite>source</cite></p>"},
		{"deleted", "so -gone- now\n", "<p>so <del>gone</del> now</p>"},
		{"inserted", "very +new+\n", "<p>very <ins>new</ins></p>"},
		{"superscript", "x^2^\n", "<p>x<sup>2</sup></p>"},
		{"subscript", "H~2~O\n", "<p>H<sub>2</sub>O</p>"},
		{"monospace", "run {{ls -l}} now\n", "<p>run <tt>ls -l</tt> now</p>"},
		{"monospace escapes", "{{a<b}}\n", "<p><tt>a&lt;b</tt></p>"},
		{"color", "{color:red}stop{color}\n", "<p><span style=\"color: red\">stop</span></p>"},
		{"line break", "one\\\\two\n", "<p>one<br/>two</p>"},
		{"escaped markup", "\\*not bold\\*\n", "<p>*not bold*</p>"},
		{"html is escaped", "1 < 2 & 3\n", "<p>1 &lt; 2 &amp; 3</p>"},

		{"full link", "[Docs|https://example.com]\n",
			`<p><a href="https://example.com">Docs</a></p>`},
		{"bare link", "[https://example.com]\n",
			`<p><a href="https://example.com">https://example.com</a></p>`},
		{"user link", "see [~alice]\n", "<p>see @alice</p>"},
		{"attachment link", "[^notes.txt]\n", "<p>notes.txt</p>"},

		{"unordered list", "* a\n* b\n", "<ul><li>a</li><li>b</li></ul>"},
		{"ordered list", "# one\n# two\n", "<ol><li>one</li><li>two</li></ol>"},
		{"nested list", "* a\n** b\n* c\n",
			"<ul><li>a<ul><li>b</li></ul></li><li>c</li></ul>"},
		{"styled list item", "* some *loud* text\n",
			"<ul><li>some <b>loud</b> text</li></ul>"},

		{"table", "||a||b||\n|c|d|\n",
			"<table><tr><th>a</th><th>b</th></tr><tr><td>c</td><td>d</td></tr></table>"},
		{"single cell", "|x|\n", "<table><tr><td>x</td></tr></table>"},

		{"quote block", "{quote}\nhello\n{quote}\n",
			"<blockquote><p>hello</p></blockquote>"},
		{"quote block keeps blocks", "{quote}\nh4. inner\ntext\n{quote}\n",
			"<blockquote><h4>inner</h4>\n<p>text</p></blockquote>"},
		{"code block", "{code}\nx = 1\n{code}\n",
			"<pre><code>x = 1</code></pre>"},
		{"code block keeps markup raw", "{code}\n*not bold*\n{code}\n",
			"<pre><code>*not bold*</code></pre>"},
		{"noformat", "{noformat}\na < b\n{noformat}\n",
			"<pre>a &lt; b</pre>"},

		{"blocks in sequence", "h1. T\n\npara\n\n* item\n",
			"<h1>T</h1>\n<p>para</p>\n<ul><li>item</li></ul>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.input, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToHTMLOptions(t *testing.T) {
	opts := &Options{
		FormatLink: func(target, text string) string {
			return fmt.Sprintf("<a class=\"ext\" href=%q>%s</a>", target, text)
		},
		FormatUser: func(username string) string {
			return fmt.Sprintf("<a href=\"/users/%s\">%s</a>", username, username)
		},
		FormatAttachment: func(name string) string {
			return fmt.Sprintf("<a href=\"/files/%s\">%s</a>", name, name)
		},
		FormatCode: func(params, body string) string {
			return fmt.Sprintf("<pre data-lang=%q>%s</pre>", params, body)
		},
	}

	got, err := ToHTML("[x|u] [~bob] [^f.txt]\n", opts)
	require.NoError(t, err)
	assert.Equal(t,
		`<p><a class="ext" href="u">x</a> <a href="/users/bob">bob</a> <a href="/files/f.txt">f.txt</a></p>`,
		got)

	got, err = ToHTML("{code:go}\na := 1\n{code}\n", opts)
	require.NoError(t, err)
	assert.Equal(t, `<pre data-lang="go">a := 1</pre>`, got)
}

func TestToHTMLRejectsUnterminatedTableRow(t *testing.T) {
	// a pipe-led line that never closes its row is not demoted to a
	// paragraph; malformed markup is reported, not guessed at
	_, err := ToHTML("|foo\n", nil)
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestToHTMLReportsUnclosedBlock(t *testing.T) {
	_, err := ToHTML("{quote}\nunclosed\n", nil)
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestToHTMLConcurrentUse(t *testing.T) {
	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			out, err := ToHTML("h1. T\n\n* a\n** b\n", nil)
			if err == nil && out != "<h1>T</h1>\n<ul><li>a<ul><li>b</li></ul></li></ul>" {
				err = fmt.Errorf("unexpected output %q", out)
			}
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-done)
	}
}
