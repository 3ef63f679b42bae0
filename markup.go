package jiramark

import "sync"

// markupSource describes Jira wiki markup in the grammar description
// language.  Block structure is line oriented: every block rule eats
// its trailing line end, and paragraph lines guard against the lead
// tokens of the other blocks so a paragraph stops where the next
// block starts.
const markupSource = `
document (a document) =
    block* ~any

block =
    blankLine | heading | hrule | quoteBlock | codeBlock | noformat
  | bq | list | table | paragraph

blankLine = ws* newline

newline = "\r\n" | "\n"

end = "" ~any

lineEnd = newline | end

hlevel =
    --h1-- "h1." | --h2-- "h2." | --h3-- "h3."
  | --h4-- "h4." | --h5-- "h5." | --h6-- "h6."

heading (a heading) = hlevel ws* inline* lineEnd

hrule = "----" "-"* ws* lineEnd

bq (a block quote line) = "bq." ws* inline* lineEnd

quoteBlock (a quote block) =
    "{quote}" ws* newline quoteInner* "{quote}" ws* lineEnd

quoteInner = ~"{quote}" block

codeBlock (a code block) =
    "{code" codeParams? "}" newline codeChar* "{code}" ws* lineEnd

codeParams = ":" pchar+
pchar = ~"}" ~newline any
codeChar = ~"{code}" any

noformat (a noformat block) =
    "{noformat}" newline nfChar* "{noformat}" ws* lineEnd

nfChar = ~"{noformat}" any

list (a list) = listItem+
listItem (a list item) = bulletChar+ ws+ inline* lineEnd
bulletChar = --ul-- "*" | --ol-- "#"
listLead = bulletChar+ ws

table (a table) = tableRow+
tableRow (a table row) = rowCell+ tailPipe ws* lineEnd
rowCell =
    --th-- "||" inlineCell+ &"|"
  | --td-- "|" inlineCell+ &"|"
inlineCell = ~"|" ~newline inline
tailPipe = "||" | "|"

paragraph (a paragraph) = textLine+
textLine = ~blockLead inline+ lineEnd
blockLead =
    blankLine | hlevel | "----" | "bq." | "{quote}" | "{code"
  | "{noformat}" | listLead | "|"

inline =
    lineBreak | escaped | monospace | colorText
  | userLink | attachLink | fullLink | bareLink
  | strong | emphasis | citation | deleted | inserted
  | superscript | subscript | word | plain

inlineNot<stop> = ~stop ~newline inline

lineBreak = "\\\\"
escaped = "\\" any

monospace = "{{" mChar+ "}}"
mChar = ~"}}" ~newline any

colorText = "{color:" colorName "}" inlineNot<"{color}">* "{color}"
colorName = cnChar+
cnChar = ~"}" ~newline any

userLink = "[~" nameChar+ "]"
attachLink = "[^" nameChar+ "]"
fullLink = "[" ltChar+ "|" nameChar+ "]"
bareLink = "[" nameChar+ "]"
ltChar = ~"|" ~"]" ~newline any
nameChar = ~"]" ~newline any

strong = "*" inlineNot<"*">+ "*"
emphasis = "_" inlineNot<"_">+ "_"
citation = "??" inlineNot<"??">+ "??"
deleted = "-" inlineNot<"-">+ "-"
inserted = "+" inlineNot<"+">+ "+"
superscript = "^" inlineNot<"^">+ "^"
subscript = "~" inlineNot<"~">+ "~"

word = alnum+
plain = ~newline any
`

var (
	markupOnce sync.Once
	markupG    *Grammar
)

// MarkupGrammar returns the compiled Jira wiki markup grammar.  The
// grammar is compiled once and shared; Grammar is safe for concurrent
// parsing.
func MarkupGrammar() *Grammar {
	markupOnce.Do(func() {
		markupG = MustCompile("jiramark", markupSource)
	})
	return markupG
}
