package jiramark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileBasicGrammar(t *testing.T) {
	g, err := Compile("greet", `
greeting = "hello" ws* name
name = alpha+
`)
	require.NoError(t, err)
	assert.Equal(t, "greet", g.Name)
	assert.Equal(t, "greeting", g.DefaultRule())

	// referenced builtins get injected as ordinary rules
	assert.Contains(t, g.RuleNames(), "ws")
	assert.Contains(t, g.RuleNames(), "alpha")

	n, err := g.Parse("hello  world")
	require.NoError(t, err)
	assert.Equal(t, "hello  world", n.Text())

	slots := Slots(n)
	require.Len(t, slots, 3)
	assert.Equal(t, "hello", slots[0].Text())
	assert.Equal(t, "world", slots[2].Text())
}

func TestCompileSkipsUnreferencedBuiltins(t *testing.T) {
	g := MustCompile("t", `x = "a"`)
	assert.Equal(t, []string{"x"}, g.RuleNames())
}

func TestCompileLabeledAlternatives(t *testing.T) {
	g := MustCompile("t", `answer = --yes-- "y" | --no-- "n"`)

	n, err := g.Parse("y")
	require.NoError(t, err)
	node := resolve(n)
	assert.Equal(t, "answer", node.Rule())
	assert.Equal(t, "yes", node.Label())
	assert.Equal(t, "answer_yes", DispatchKey(node))

	n, err = g.Parse("n")
	require.NoError(t, err)
	assert.Equal(t, "no", resolve(n).Label())
}

func TestCompileParameterizedRules(t *testing.T) {
	g := MustCompile("t", `
call = pair<digit>
pair<item> = "(" item "," item ")"
`)
	r, ok := g.Get("pair")
	require.True(t, ok)
	assert.Equal(t, []string{"item"}, r.Formals)

	n, err := g.Parse("(1,2)")
	require.NoError(t, err)
	assert.Equal(t, "call", n.Rule())

	pairNode := Slots(n)[0]
	assert.Equal(t, "pair", pairNode.Rule())
	slots := Slots(pairNode)
	require.Len(t, slots, 5)
	assert.Equal(t, "1", slots[1].Text())
	assert.Equal(t, "2", slots[3].Text())
}

func TestCompileCharRange(t *testing.T) {
	g := MustCompile("t", `lower = "a".."z"`)

	n, err := g.Parse("q")
	require.NoError(t, err)
	assert.Equal(t, "q", n.Text())

	_, err = g.Parse("Q")
	assert.Error(t, err)
}

func TestCompileQuotingAndEscapes(t *testing.T) {
	g := MustCompile("t", `esc = "\"" '"' "'" "\\" "\t" "\n"`)

	n, err := g.Parse("\"\"'\\\t\n")
	require.NoError(t, err)
	require.Len(t, Slots(n), 6)
	assert.Equal(t, "\\", Slots(n)[3].Text())
}

func TestCompileGrouping(t *testing.T) {
	g := MustCompile("t", `ab = ("a" | "b")+ "!"`)

	n, err := g.Parse("abba!")
	require.NoError(t, err)
	assert.Equal(t, "abba!", n.Text())

	slots := Slots(n)
	require.Len(t, slots, 2)
	assert.Equal(t, []string{"a", "b", "b", "a"}, itemTexts(slots[0]))
}

func TestCompileDescriptions(t *testing.T) {
	g := MustCompile("t", `num (a number) = digit+`)
	r, _ := g.Get("num")
	assert.Equal(t, "a number", r.Desc)

	_, err := g.Parse("x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a number")
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{"empty source", "", ""},
		{"missing body", "x =", ""},
		{"unterminated string", `x = "abc`, ""},
		{"undefined rule", "x = y", "undefined"},
		{"choice width mismatch", `x = "a" | "b" "c"`, "width"},
		{"duplicate rule", "x = \"a\"\nx = \"b\"", "more than once"},
		{"duplicate formal", `p<a, a> = "x"`, "repeats formal"},
		{"parameter with arguments", `p<a> = a<"y">`, "cannot take arguments"},
		{"arity mismatch", "q = p\np<a> = a", "arguments"},
		{"empty range", `r = "b".."a"`, "empty range"},
		{"wide range bound", `r = "ab".."z"`, "single character"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Compile("t", tt.src)
			require.Error(t, err)
			assert.Nil(t, g)

			var se *GrammarSyntaxError
			require.ErrorAs(t, err, &se)
			if tt.wantMsg != "" {
				assert.Contains(t, se.Message, tt.wantMsg)
			}
		})
	}
}

func TestCompileSyntaxErrorLocation(t *testing.T) {
	_, err := Compile("t", "a = \"x\"\nb = | \"y\"\n")
	require.Error(t, err)

	var se *GrammarSyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.Location.Line)
}

func TestMustCompilePanics(t *testing.T) {
	assert.Panics(t, func() { MustCompile("t", "") })
	assert.NotPanics(t, func() { MustCompile("t", `x = "a"`) })
}
