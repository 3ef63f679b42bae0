package jiramark

import (
	"fmt"
	"html"
)

// Options customize how the HTML renderer emits the constructs whose
// output is site specific.  A nil Options or a nil hook falls back to
// the defaults below.
type Options struct {
	// FormatLink renders `[text|target]` and `[target]`.  The text
	// argument is already HTML escaped; target is raw.
	FormatLink func(target, text string) string

	// FormatUser renders `[~username]`.
	FormatUser func(username string) string

	// FormatAttachment renders `[^filename]`.
	FormatAttachment func(name string) string

	// FormatCode renders `{code}` blocks.  Params is whatever
	// followed the colon in the opening tag, body is the raw block
	// content; neither is escaped.
	FormatCode func(params, body string) string
}

func defaultFormatLink(target, text string) string {
	return fmt.Sprintf("<a href=%q>%s</a>", target, text)
}

func defaultFormatUser(username string) string {
	return "@" + html.EscapeString(username)
}

func defaultFormatAttachment(name string) string {
	return html.EscapeString(name)
}

func defaultFormatCode(params, body string) string {
	return "<pre><code>" + html.EscapeString(body) + "</code></pre>"
}

// withDefaults returns a complete copy of o with every nil hook
// replaced by its default.
func (o *Options) withDefaults() *Options {
	out := Options{}
	if o != nil {
		out = *o
	}
	if out.FormatLink == nil {
		out.FormatLink = defaultFormatLink
	}
	if out.FormatUser == nil {
		out.FormatUser = defaultFormatUser
	}
	if out.FormatAttachment == nil {
		out.FormatAttachment = defaultFormatAttachment
	}
	if out.FormatCode == nil {
		out.FormatCode = defaultFormatCode
	}
	return &out
}
