package main

import (
	"fmt"
	"strings"

	"github.com/eringen/folio/richtext"
)

// markdownRules renders rich text as CommonMark for the terminal. Block
// rules end with a blank line so adjacent blocks stay separate.
func markdownRules() richtext.Rules[string] {
	return richtext.Rules[string]{
		Text: markdownText,
		Join: func(children []string) string { return strings.Join(children, "") },

		Paragraph:     func(_ *richtext.Node, c []string) string { return inline(c) + "\n\n" },
		Heading1:      heading("#"),
		Heading2:      heading("##"),
		Heading3:      heading("###"),
		UnorderedList: list(func(int) string { return "- " }),
		OrderedList:   list(func(i int) string { return fmt.Sprintf("%d. ", i+1) }),
		ListItem: func(_ *richtext.Node, c []string) string {
			return strings.TrimSpace(strings.Join(c, ""))
		},
		Quote: func(_ *richtext.Node, c []string) string {
			return prefixLines(strings.TrimSpace(strings.Join(c, "")), "> ", ">") + "\n\n"
		},
		Hyperlink: func(n *richtext.Node, c []string) string {
			return "[" + inline(c) + "](" + n.Data.URI + ")"
		},
	}
}

func markdownText(n *richtext.Node) string {
	v := n.Value
	if strings.TrimSpace(v) == "" {
		return v
	}
	if n.HasMark(richtext.MarkCode) {
		v = "`" + v + "`"
	}
	if n.HasMark(richtext.MarkItalic) {
		v = "_" + v + "_"
	}
	if n.HasMark(richtext.MarkBold) {
		v = "**" + v + "**"
	}
	return v
}

func inline(children []string) string {
	return strings.TrimSpace(strings.Join(children, ""))
}

func heading(prefix string) richtext.Rule[string] {
	return func(_ *richtext.Node, c []string) string {
		return prefix + " " + inline(c) + "\n\n"
	}
}

func list(marker func(int) string) richtext.Rule[string] {
	return func(_ *richtext.Node, items []string) string {
		var b strings.Builder
		for i, item := range items {
			m := marker(i)
			first, rest, more := strings.Cut(item, "\n")
			b.WriteString(m + first + "\n")
			if more {
				b.WriteString(prefixLines(rest, strings.Repeat(" ", len(m)), "") + "\n")
			}
		}
		return b.String() + "\n"
	}
}

// prefixLines prefixes every line of s, using blank for empty lines.
func prefixLines(s, prefix, blank string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l == "" {
			lines[i] = blank
		} else {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}
