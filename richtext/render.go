package richtext

import (
	"strings"
	"unicode"
)

// Rule renders one node from its already rendered children.
type Rule[T any] func(n *Node, children []T) T

// Rules maps node kinds to renderers producing values of type T. Text and
// Join are required; every other rule may be nil, in which case the node
// renders as its joined children.
type Rules[T any] struct {
	Text func(n *Node) T
	Join func(children []T) T

	Paragraph     Rule[T]
	Heading1      Rule[T]
	Heading2      Rule[T]
	Heading3      Rule[T]
	UnorderedList Rule[T]
	OrderedList   Rule[T]
	ListItem      Rule[T]
	Quote         Rule[T]
	Hyperlink     Rule[T]
}

// Render walks the tree depth first and returns the rendered root. A nil
// document renders as an empty join.
func Render[T any](doc *Node, rules Rules[T]) T {
	if doc == nil {
		return rules.Join(nil)
	}
	return render(doc, rules)
}

func render[T any](n *Node, rules Rules[T]) T {
	if n.NodeType == Text {
		return rules.Text(n)
	}

	children := make([]T, 0, len(n.Content))
	for _, child := range n.Content {
		if child == nil {
			continue
		}
		children = append(children, render(child, rules))
	}

	var rule Rule[T]
	switch n.NodeType {
	case Paragraph:
		rule = rules.Paragraph
	case Heading1:
		rule = rules.Heading1
	case Heading2:
		rule = rules.Heading2
	case Heading3:
		rule = rules.Heading3
	case UnorderedList:
		rule = rules.UnorderedList
	case OrderedList:
		rule = rules.OrderedList
	case ListItem:
		rule = rules.ListItem
	case Quote:
		rule = rules.Quote
	case Hyperlink:
		rule = rules.Hyperlink
	}
	if rule == nil {
		return rules.Join(children)
	}
	return rule(n, children)
}

// plainRules flattens a document to text, separating blocks with newlines.
var plainRules = Rules[string]{
	Text: func(n *Node) string { return n.Value },
	Join: func(children []string) string { return strings.Join(children, "") },

	Paragraph:     block,
	Heading1:      block,
	Heading2:      block,
	Heading3:      block,
	UnorderedList: block,
	OrderedList:   block,
	ListItem:      block,
	Quote:         block,
}

func block(_ *Node, children []string) string {
	return strings.TrimRight(strings.Join(children, ""), "\n") + "\n"
}

// PlainText returns the text content of a document.
func PlainText(doc *Node) string {
	return strings.TrimSpace(Render(doc, plainRules))
}

// WordCount counts whitespace separated words in a document.
func WordCount(doc *Node) int {
	return len(strings.FieldsFunc(PlainText(doc), unicode.IsSpace))
}

// ReadingTime estimates minutes to read a document at 200 words per minute.
// Empty documents report 0.
func ReadingTime(doc *Node) int {
	words := WordCount(doc)
	if words == 0 {
		return 0
	}
	return (words + 199) / 200
}
