package render

import (
	"html/template"
	"sort"
	"strings"
)

// Node is a minimal element tree: enough to describe the overlay markup
// and to hit-test clicks against it.
type Node struct {
	Tag      string
	ID       string
	Classes  []string
	Attrs    map[string]string
	Style    map[string]string
	Text     string
	RawHTML  string // trusted markup (rendered markdown), emitted unescaped
	Children []*Node
	Parent   *Node
}

// El creates an element.
func El(tag string, classes ...string) *Node {
	return &Node{Tag: tag, Classes: classes}
}

// WithID sets the element id.
func (n *Node) WithID(id string) *Node {
	n.ID = id
	return n
}

// WithText sets the text content.
func (n *Node) WithText(text string) *Node {
	n.Text = text
	return n
}

// SetAttr sets an attribute.
func (n *Node) SetAttr(key, val string) *Node {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[key] = val
	return n
}

// Attr returns an attribute value.
func (n *Node) Attr(key string) string {
	return n.Attrs[key]
}

// SetStyle sets one inline style property.
func (n *Node) SetStyle(prop, val string) *Node {
	if n.Style == nil {
		n.Style = make(map[string]string)
	}
	n.Style[prop] = val
	return n
}

// Append adds children, re-parenting them.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.Detach()
		c.Parent = n
		n.Children = append(n.Children, c)
	}
	return n
}

// ReplaceWith puts repl at n's place in its parent and detaches n.
// A detached n leaves repl untouched.
func (n *Node) ReplaceWith(repl *Node) {
	p := n.Parent
	if p == nil || repl == n {
		return
	}
	repl.Detach()
	for i, c := range p.Children {
		if c == n {
			p.Children[i] = repl
			break
		}
	}
	repl.Parent = p
	n.Parent = nil
}

// Detach removes n from its parent.
func (n *Node) Detach() {
	p := n.Parent
	if p == nil {
		return
	}
	for i, c := range p.Children {
		if c == n {
			p.Children = append(p.Children[:i:i], p.Children[i+1:]...)
			break
		}
	}
	n.Parent = nil
}

func (n *Node) HasClass(class string) bool {
	for _, c := range n.Classes {
		if c == class {
			return true
		}
	}
	return false
}

func (n *Node) AddClass(class string) {
	if !n.HasClass(class) {
		n.Classes = append(n.Classes, class)
	}
}

func (n *Node) RemoveClass(class string) {
	out := n.Classes[:0]
	for _, c := range n.Classes {
		if c != class {
			out = append(out, c)
		}
	}
	n.Classes = out
}

// Matches supports "#id", ".class" and bare tag selectors.
func (n *Node) Matches(selector string) bool {
	switch {
	case strings.HasPrefix(selector, "#"):
		return n.ID == selector[1:]
	case strings.HasPrefix(selector, "."):
		return n.HasClass(selector[1:])
	default:
		return n.Tag == selector
	}
}

// Closest returns the nearest ancestor-or-self matching selector.
func (n *Node) Closest(selector string) *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Matches(selector) {
			return cur
		}
	}
	return nil
}

// Find returns the first descendant-or-self matching selector (depth first).
func (n *Node) Find(selector string) *Node {
	if n.Matches(selector) {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(selector); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant-or-self matching selector in document order.
func (n *Node) FindAll(selector string) []*Node {
	var out []*Node
	n.walk(func(cur *Node) {
		if cur.Matches(selector) {
			out = append(out, cur)
		}
	})
	return out
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.walk(fn)
	}
}

var voidTags = map[string]bool{"input": true, "br": true, "img": true, "hr": true}

// HTML serialises the tree. Text and attribute values are escaped.
func HTML(n *Node) string {
	var b strings.Builder
	writeHTML(&b, n)
	return b.String()
}

func writeHTML(b *strings.Builder, n *Node) {
	if n == nil {
		return
	}
	b.WriteString("<")
	b.WriteString(n.Tag)
	if n.ID != "" {
		writeAttr(b, "id", n.ID)
	}
	if len(n.Classes) > 0 {
		writeAttr(b, "class", strings.Join(n.Classes, " "))
	}
	for _, k := range sortedKeys(n.Attrs) {
		writeAttr(b, k, n.Attrs[k])
	}
	if len(n.Style) > 0 {
		parts := make([]string, 0, len(n.Style))
		for _, k := range sortedKeys(n.Style) {
			parts = append(parts, k+":"+n.Style[k])
		}
		writeAttr(b, "style", strings.Join(parts, ";"))
	}
	b.WriteString(">")
	if voidTags[n.Tag] {
		return
	}

	b.WriteString(template.HTMLEscapeString(n.Text))
	b.WriteString(n.RawHTML)
	for _, c := range n.Children {
		writeHTML(b, c)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteString(">")
}

func writeAttr(b *strings.Builder, key, val string) {
	b.WriteString(" ")
	b.WriteString(key)
	b.WriteString(`="`)
	b.WriteString(template.HTMLEscapeString(val))
	b.WriteString(`"`)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
