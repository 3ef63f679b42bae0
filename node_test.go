package jiramark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nodeInputText = "abcdef"

func term(start, end int) *TerminalNode {
	return NewTerminalNode(nodeInputText, NewRange(start, end))
}

func TestItemsNormalization(t *testing.T) {
	tall := NewTallNode(nodeInputText, NewRange(0, 2), []Node{term(0, 1), term(1, 2)})
	assert.Len(t, Items(tall), 2)

	// a non-tall node is one completed item
	assert.Len(t, Items(term(0, 1)), 1)

	wide := NewWideNode(nodeInputText, NewRange(0, 2), []Node{term(0, 1), term(1, 2)})
	assert.Len(t, Items(wide), 1)
	assert.Len(t, Slots(wide), 2)
	assert.Nil(t, Slots(term(0, 1)))
}

func TestPrefixTall(t *testing.T) {
	acc := NewTallNode(nodeInputText, NewRange(2, 4), []Node{term(2, 3), term(3, 4)})
	merged := prefixTall(acc, 0, []Node{term(0, 1), term(1, 2)})

	require.Len(t, merged.Items(), 4)
	assert.Equal(t, NewRange(0, 4), merged.Span())
	assert.Equal(t, "abcd", merged.Text())
	assert.Equal(t, "a", merged.Items()[0].Text())
	assert.Equal(t, "d", merged.Items()[3].Text())

	assert.Panics(t, func() { prefixTall(term(0, 1), 0, nil) })
}

func TestMergeWide(t *testing.T) {
	// accumulator holds the later repetition steps, one tall per slot
	acc := NewWideNode(nodeInputText, NewRange(2, 4), []Node{
		NewTallNode(nodeInputText, NewRange(2, 3), []Node{term(2, 3)}),
		NewTallNode(nodeInputText, NewRange(3, 4), []Node{term(3, 4)}),
	})
	merged := mergeWide(acc, 0, []Node{term(0, 1), term(1, 2)})

	require.Len(t, merged.Slots(), 2)
	assert.Equal(t, NewRange(0, 4), merged.Span())

	first := merged.Slots()[0].(*TallNode)
	require.Len(t, first.Items(), 2)
	assert.Equal(t, "a", first.Items()[0].Text())
	assert.Equal(t, "c", first.Items()[1].Text())

	assert.Panics(t, func() { mergeWide(acc, 0, []Node{term(0, 1)}) })
}

func TestTagRuleWraps(t *testing.T) {
	// an unattributed composite is tagged in place
	wide := NewWideNode(nodeInputText, NewRange(0, 2), []Node{term(0, 1), term(1, 2)})
	tagged := tagRule(wide, "pair")
	require.IsType(t, &WideNode{}, tagged)
	assert.Equal(t, "pair", tagged.Rule())
	assert.Len(t, tagged.(*WideNode).Slots(), 2)

	// a node that already belongs to a rule keeps its attribution
	// under a fresh single-slot wrapper
	rewrapped := tagRule(tagged, "outer")
	assert.Equal(t, "outer", rewrapped.Rule())
	inner := rewrapped.(*WideNode).Slots()
	require.Len(t, inner, 1)
	assert.Equal(t, "pair", inner[0].Rule())

	// leaves always wrap
	leaf := tagRule(term(0, 1), "ch")
	assert.Equal(t, "ch", leaf.Rule())
	require.Len(t, leaf.(*WideNode).Slots(), 1)
}

func TestSetLabelWraps(t *testing.T) {
	wide := NewWideNode(nodeInputText, NewRange(0, 2), []Node{term(0, 1), term(1, 2)})
	labeled := setLabel(wide, "alt")
	assert.Equal(t, "alt", labeled.Label())
	assert.Len(t, labeled.(*WideNode).Slots(), 2)

	// labeling a rule-tagged node must not clobber the rule, and
	// tagging a labeled node must not clobber the label
	ruled := tagRule(NewWideNode(nodeInputText, NewRange(0, 1), []Node{term(0, 1)}), "inner")
	labeled = setLabel(ruled, "alt")
	assert.Equal(t, "alt", labeled.Label())
	assert.Equal(t, "", labeled.Rule())
	assert.Equal(t, "inner", labeled.(*WideNode).Slots()[0].Rule())

	tagged := tagRule(labeled, "outer")
	assert.Equal(t, "outer", tagged.Rule())
	assert.Equal(t, "alt", tagged.(*WideNode).Label())
}

func TestDispatchKeyFormat(t *testing.T) {
	wide := NewWideNode(nodeInputText, NewRange(0, 1), []Node{term(0, 1)})
	assert.Equal(t, "", DispatchKey(wide))

	labeled := setLabel(wide, "td")
	tagged := tagRule(labeled, "rowCell")
	assert.Equal(t, "rowCell_td", DispatchKey(tagged))

	assert.Equal(t, "rule", DispatchKey(tagRule(NewWideNode(nodeInputText, NewRange(0, 1), []Node{term(0, 1)}), "rule")))
}
