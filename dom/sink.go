package dom

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dpotapov/go-treebuilder"
)

// Sink builds a golang.org/x/net/html tree. The zero value is ready to use;
// every parse starts a new document.
type Sink struct {
	doc   *html.Node
	forms map[*html.Node]*html.Node

	// Mode is the document mode selected by the doctype.
	Mode treebuilder.DocumentMode
}

var (
	_ treebuilder.Sink[*html.Node]     = (*Sink)(nil)
	_ treebuilder.Starter              = (*Sink)(nil)
	_ treebuilder.DocumentModeReceiver = (*Sink)(nil)
)

// Document returns the document node of the last parse.
func (s *Sink) Document() *html.Node {
	return s.doc
}

// FormOwner returns the form element a form-associated element was created
// for, or nil.
func (s *Sink) FormOwner(n *html.Node) *html.Node {
	return s.forms[n]
}

func (s *Sink) Start(fragment bool) {
	s.doc = &html.Node{Type: html.DocumentNode}
	s.forms = make(map[*html.Node]*html.Node)
	s.Mode = treebuilder.NoQuirksMode
}

func (s *Sink) End() {}

func (s *Sink) ReceiveDocumentMode(mode treebuilder.DocumentMode, publicID, systemID string) {
	s.Mode = mode
}

// namespace maps a namespace URI to the short form x/net/html uses.
func namespace(ns string) string {
	switch ns {
	case treebuilder.NamespaceSVG:
		return "svg"
	case treebuilder.NamespaceMathML:
		return "math"
	}
	return ""
}

// NamespaceURI is the inverse of the short namespace names in html.Node.
func NamespaceURI(short string) string {
	switch short {
	case "svg":
		return treebuilder.NamespaceSVG
	case "math":
		return treebuilder.NamespaceMathML
	}
	return treebuilder.NamespaceHTML
}

func convertAttributes(attrs *treebuilder.Attributes) []html.Attribute {
	if attrs.Len() == 0 {
		return nil
	}
	out := make([]html.Attribute, 0, attrs.Len())
	for _, a := range attrs.Slice() {
		out = append(out, html.Attribute{Key: a.Name, Val: a.Value})
	}
	return out
}

func (s *Sink) CreateElement(ns, name string, attrs *treebuilder.Attributes, form *html.Node) *html.Node {
	n := &html.Node{
		Type:      html.ElementNode,
		Data:      name,
		Namespace: namespace(ns),
		Attr:      convertAttributes(attrs),
	}
	if n.Namespace == "" {
		n.DataAtom = atom.Lookup([]byte(name))
	}
	if form != nil {
		s.forms[n] = form
	}
	return n
}

func (s *Sink) CreateHTMLElementSetAsRoot(attrs *treebuilder.Attributes) *html.Node {
	n := s.CreateElement(treebuilder.NamespaceHTML, "html", attrs, nil)
	s.doc.AppendChild(n)
	return n
}

func (s *Sink) AppendElement(child, parent *html.Node) {
	parent.AppendChild(child)
}

func (s *Sink) AppendCharacters(parent *html.Node, text string) {
	if last := parent.LastChild; last != nil && last.Type == html.TextNode {
		last.Data += text
		return
	}
	parent.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func (s *Sink) AppendComment(parent *html.Node, text string) {
	parent.AppendChild(&html.Node{Type: html.CommentNode, Data: text})
}

func (s *Sink) AppendCommentToDocument(text string) {
	s.AppendComment(s.doc, text)
}

// AppendDoctypeToDocument stores the identifiers as "public" and "system"
// attributes, the way x/net/html does.
func (s *Sink) AppendDoctypeToDocument(name, publicID, systemID string) {
	n := &html.Node{Type: html.DoctypeNode, Data: name}
	if publicID != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "public", Val: publicID})
	}
	if systemID != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "system", Val: systemID})
	}
	s.doc.AppendChild(n)
}

func (s *Sink) AddAttributesToElement(element *html.Node, attrs *treebuilder.Attributes) {
	missing := attrs.Missing(func(name string) bool {
		for _, a := range element.Attr {
			if a.Key == name {
				return true
			}
		}
		return false
	})
	for _, a := range missing {
		element.Attr = append(element.Attr, html.Attribute{Key: a.Name, Val: a.Value})
	}
}

func (s *Sink) HasChildren(element *html.Node) bool {
	return element.FirstChild != nil
}

func (s *Sink) DetachFromParent(element *html.Node) {
	if element.Parent != nil {
		element.Parent.RemoveChild(element)
	}
}

func (s *Sink) InsertFosterParentedChild(child, table, stackParent *html.Node) {
	if table.Parent != nil {
		table.Parent.InsertBefore(child, table)
		return
	}
	stackParent.AppendChild(child)
}

func (s *Sink) InsertFosterParentedCharacters(text string, table, stackParent *html.Node) {
	parent := table.Parent
	if parent == nil {
		s.AppendCharacters(stackParent, text)
		return
	}
	if prev := table.PrevSibling; prev != nil && prev.Type == html.TextNode {
		prev.Data += text
		return
	}
	parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text}, table)
}

func (s *Sink) AppendChildrenToNewParent(oldParent, newParent *html.Node) {
	for c := oldParent.FirstChild; c != nil; {
		next := c.NextSibling
		oldParent.RemoveChild(c)
		newParent.AppendChild(c)
		c = next
	}
}
