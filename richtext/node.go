// Package richtext models Contentful rich text documents and renders them
// through caller-owned rule tables.
package richtext

import "encoding/json"

// NodeType identifies the kind of a document node.
type NodeType string

// Block and inline node types. Only a subset has dedicated rules; the rest
// render through the default fallback.
const (
	Document      NodeType = "document"
	Paragraph     NodeType = "paragraph"
	Heading1      NodeType = "heading-1"
	Heading2      NodeType = "heading-2"
	Heading3      NodeType = "heading-3"
	Heading4      NodeType = "heading-4"
	Heading5      NodeType = "heading-5"
	Heading6      NodeType = "heading-6"
	UnorderedList NodeType = "unordered-list"
	OrderedList   NodeType = "ordered-list"
	ListItem      NodeType = "list-item"
	Quote         NodeType = "blockquote"
	HR            NodeType = "hr"
	Table         NodeType = "table"
	EmbeddedEntry NodeType = "embedded-entry-block"
	EmbeddedAsset NodeType = "embedded-asset-block"
	Hyperlink     NodeType = "hyperlink"
	EntryLink     NodeType = "entry-hyperlink"
	AssetLink     NodeType = "asset-hyperlink"
	InlineEntry   NodeType = "embedded-entry-inline"
	Text          NodeType = "text"
)

// Mark types applied to text nodes.
const (
	MarkBold      = "bold"
	MarkItalic    = "italic"
	MarkUnderline = "underline"
	MarkCode      = "code"
)

// Mark is a formatting mark on a text node.
type Mark struct {
	Type string `json:"type"`
}

// Data carries node-specific attributes.
type Data struct {
	URI    string          `json:"uri,omitempty"`
	Target json.RawMessage `json:"target,omitempty"`
}

// Node is one node of a document tree.
type Node struct {
	NodeType NodeType `json:"nodeType"`
	Value    string   `json:"value,omitempty"`
	Marks    []Mark   `json:"marks,omitempty"`
	Data     Data     `json:"data"`
	Content  []*Node  `json:"content,omitempty"`
}

// HasMark reports whether a text node carries the given mark.
func (n *Node) HasMark(mark string) bool {
	for _, m := range n.Marks {
		if m.Type == mark {
			return true
		}
	}
	return false
}

// Parse decodes a JSON document.
func Parse(data []byte) (*Node, error) {
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}
