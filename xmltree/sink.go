// Package xmltree builds github.com/beevik/etree documents with the
// treebuilder engine, so parsed HTML can be processed as namespaced XML.
package xmltree

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/dpotapov/go-treebuilder"
)

// prefixes are declared on the root element.
var prefixes = []struct{ prefix, uri string }{
	{"svg", treebuilder.NamespaceSVG},
	{"math", treebuilder.NamespaceMathML},
	{"xlink", treebuilder.NamespaceXLink},
}

func prefixOf(ns string) string {
	for _, p := range prefixes {
		if p.uri == ns {
			return p.prefix
		}
	}
	return ""
}

// Sink builds an *etree.Document. Elements use the "svg" and "math"
// prefixes for foreign content and no prefix for HTML.
type Sink struct {
	doc *etree.Document
	// open mirrors the stack of open elements.
	open []*etree.Element
}

var (
	_ treebuilder.Sink[*etree.Element]            = (*Sink)(nil)
	_ treebuilder.ElementObserver[*etree.Element] = (*Sink)(nil)
	_ treebuilder.Starter                         = (*Sink)(nil)
)

// Document returns the document of the last parse.
func (s *Sink) Document() *etree.Document {
	return s.doc
}

// Current returns the innermost open element, or nil. It is meant to be
// called from a diagnostic callback to locate the error.
func (s *Sink) Current() *etree.Element {
	if len(s.open) == 0 {
		return nil
	}
	return s.open[len(s.open)-1]
}

func (s *Sink) Start(fragment bool) {
	s.doc = etree.NewDocument()
	s.open = s.open[:0]
}

func (s *Sink) End() {
	s.open = s.open[:0]
}

func (s *Sink) ElementPushed(ns, name string, node *etree.Element) {
	s.open = append(s.open, node)
}

func (s *Sink) ElementPopped(ns, name string, node *etree.Element) {
	for i := len(s.open) - 1; i >= 0; i-- {
		if s.open[i] == node {
			s.open = append(s.open[:i], s.open[i+1:]...)
			return
		}
	}
}

func setAttributes(el *etree.Element, attrs *treebuilder.Attributes) {
	for _, a := range attrs.Slice() {
		el.CreateAttr(a.Name, a.Value)
	}
}

func (s *Sink) CreateElement(ns, name string, attrs *treebuilder.Attributes, form *etree.Element) *etree.Element {
	el := etree.NewElement(name)
	// NewElement splits "a:b"; HTML names with a colon stay whole.
	el.Space, el.Tag = prefixOf(ns), name
	setAttributes(el, attrs)
	return el
}

func (s *Sink) CreateHTMLElementSetAsRoot(attrs *treebuilder.Attributes) *etree.Element {
	el := etree.NewElement("html")
	el.CreateAttr("xmlns", treebuilder.NamespaceHTML)
	for _, p := range prefixes {
		el.CreateAttr("xmlns:"+p.prefix, p.uri)
	}
	setAttributes(el, attrs)
	s.doc.AddChild(el)
	return el
}

func (s *Sink) AppendElement(child, parent *etree.Element) {
	parent.AddChild(child)
}

func (s *Sink) AppendCharacters(parent *etree.Element, text string) {
	if n := len(parent.Child); n > 0 {
		if cd, ok := parent.Child[n-1].(*etree.CharData); ok && !cd.IsCData() {
			cd.Data += text
			return
		}
	}
	parent.AddChild(etree.NewText(text))
}

// AppendComment replaces "--", which XML does not allow in comments.
func (s *Sink) AppendComment(parent *etree.Element, text string) {
	parent.CreateComment(strings.ReplaceAll(text, "--", "- -"))
}

func (s *Sink) AppendCommentToDocument(text string) {
	s.AppendComment(&s.doc.Element, text)
}

func (s *Sink) AppendDoctypeToDocument(name, publicID, systemID string) {
	var b strings.Builder
	b.WriteString("DOCTYPE ")
	b.WriteString(name)
	switch {
	case publicID != "":
		b.WriteString(` PUBLIC "` + publicID + `"`)
		if systemID != "" {
			b.WriteString(` "` + systemID + `"`)
		}
	case systemID != "":
		b.WriteString(` SYSTEM "` + systemID + `"`)
	}
	s.doc.CreateDirective(b.String())
}

func (s *Sink) AddAttributesToElement(element *etree.Element, attrs *treebuilder.Attributes) {
	missing := attrs.Missing(func(name string) bool {
		return element.SelectAttr(name) != nil
	})
	for _, a := range missing {
		element.CreateAttr(a.Name, a.Value)
	}
}

func (s *Sink) HasChildren(element *etree.Element) bool {
	return len(element.Child) > 0
}

func (s *Sink) DetachFromParent(element *etree.Element) {
	if p := element.Parent(); p != nil {
		p.RemoveChild(element)
	}
}

func (s *Sink) InsertFosterParentedChild(child, table, stackParent *etree.Element) {
	if p := table.Parent(); p != nil {
		p.InsertChildAt(table.Index(), child)
		return
	}
	stackParent.AddChild(child)
}

func (s *Sink) InsertFosterParentedCharacters(text string, table, stackParent *etree.Element) {
	p := table.Parent()
	if p == nil {
		s.AppendCharacters(stackParent, text)
		return
	}
	i := table.Index()
	if i > 0 {
		if cd, ok := p.Child[i-1].(*etree.CharData); ok && !cd.IsCData() {
			cd.Data += text
			return
		}
	}
	p.InsertChildAt(i, etree.NewText(text))
}

func (s *Sink) AppendChildrenToNewParent(oldParent, newParent *etree.Element) {
	children := append([]etree.Token(nil), oldParent.Child...)
	for _, c := range children {
		oldParent.RemoveChild(c)
		newParent.AddChild(c)
	}
}
