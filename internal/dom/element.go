package dom

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Element is a handle on one node of a Document. Writes that would not change
// the node are skipped and not counted as mutations.
type Element struct {
	doc  *Document
	node *html.Node
	id   string
}

func (e *Element) ID() string { return e.id }

func (e *Element) Attr(key string) string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return attr(e.node, key)
}

func (e *Element) HasAttr(key string) bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for _, a := range e.node.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func (e *Element) SetAttr(key, val string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for i, a := range e.node.Attr {
		if a.Key == key {
			if a.Val == val {
				return
			}
			e.node.Attr[i].Val = val
			e.doc.mutations++
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: key, Val: val})
	e.doc.mutations++
}

func (e *Element) RemoveAttr(key string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for i, a := range e.node.Attr {
		if a.Key == key {
			e.node.Attr = append(e.node.Attr[:i:i], e.node.Attr[i+1:]...)
			e.doc.mutations++
			return
		}
	}
}

// SetHidden toggles the hidden attribute.
func (e *Element) SetHidden(hidden bool) {
	if hidden {
		e.SetAttr("hidden", "")
		return
	}
	e.RemoveAttr("hidden")
}

// Text returns the concatenated text content.
func (e *Element) Text() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	var b strings.Builder
	collectText(e.node, &b)
	return b.String()
}

// SetText replaces the children with a single text node.
func (e *Element) SetText(text string) {
	e.Replace(T(text))
}

// Replace swaps the children for nodes. Nothing happens when the rendered
// markup would be identical.
func (e *Element) Replace(nodes ...*html.Node) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	if renderChildren(e.node) == renderNodes(nodes) {
		return
	}
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		e.node.AppendChild(n)
	}
	e.doc.mutations++
}

// InnerHTML renders the children.
func (e *Element) InnerHTML() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return renderChildren(e.node)
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

func renderChildren(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

func renderNodes(nodes []*html.Node) string {
	var buf bytes.Buffer
	for _, n := range nodes {
		if n != nil {
			_ = html.Render(&buf, n)
		}
	}
	return buf.String()
}
