package treebuilder

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

type nodeKind int

const (
	documentNode nodeKind = iota
	elementNode
	textNode
	commentNode
	doctypeNode
)

// node is the tree built by testSink.
type node struct {
	kind     nodeKind
	ns       string
	name     string
	data     string
	attrs    []Attribute
	parent   *node
	children []*node
}

func (n *node) indexOf(c *node) int {
	for i, cc := range n.children {
		if cc == c {
			return i
		}
	}
	return -1
}

func (n *node) insertAt(i int, c *node) {
	c.parent = n
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = c
}

func (n *node) appendChild(c *node) {
	c.parent = n
	n.children = append(n.children, c)
}

func (n *node) remove(c *node) {
	if i := n.indexOf(c); i >= 0 {
		n.children = append(n.children[:i], n.children[i+1:]...)
		c.parent = nil
	}
}

// testSink records every element pushed and popped besides building the
// tree.
type testSink struct {
	doc    *node
	pushed []string
	popped []string
	// open mirrors the stack of open elements as seen through the observer.
	open []*node
}

var (
	_ Sink[*node]            = (*testSink)(nil)
	_ ElementObserver[*node] = (*testSink)(nil)
	_ Starter                = (*testSink)(nil)
)

func (s *testSink) Start(fragment bool) {
	s.doc = &node{kind: documentNode}
	s.pushed, s.popped, s.open = nil, nil, nil
}

func (s *testSink) End() {}

func (s *testSink) ElementPushed(ns, name string, n *node) {
	s.pushed = append(s.pushed, name)
	s.open = append(s.open, n)
}

func (s *testSink) ElementPopped(ns, name string, n *node) {
	s.popped = append(s.popped, name)
	for i := len(s.open) - 1; i >= 0; i-- {
		if s.open[i] == n {
			s.open = append(s.open[:i], s.open[i+1:]...)
			return
		}
	}
}

func (s *testSink) CreateElement(ns, name string, attrs *Attributes, form *node) *node {
	return &node{kind: elementNode, ns: ns, name: name, attrs: attrs.Slice()}
}

func (s *testSink) CreateHTMLElementSetAsRoot(attrs *Attributes) *node {
	n := s.CreateElement(NamespaceHTML, "html", attrs, nil)
	s.doc.appendChild(n)
	return n
}

func (s *testSink) AppendElement(child, parent *node) {
	parent.appendChild(child)
}

func (s *testSink) AppendCharacters(parent *node, text string) {
	if k := len(parent.children); k > 0 && parent.children[k-1].kind == textNode {
		parent.children[k-1].data += text
		return
	}
	parent.appendChild(&node{kind: textNode, data: text})
}

func (s *testSink) AppendComment(parent *node, text string) {
	parent.appendChild(&node{kind: commentNode, data: text})
}

func (s *testSink) AppendCommentToDocument(text string) {
	s.AppendComment(s.doc, text)
}

func (s *testSink) AppendDoctypeToDocument(name, publicID, systemID string) {
	s.doc.appendChild(&node{kind: doctypeNode, name: name})
}

func (s *testSink) AddAttributesToElement(element *node, attrs *Attributes) {
	element.attrs = append(element.attrs, attrs.Missing(func(name string) bool {
		for _, a := range element.attrs {
			if a.Name == name {
				return true
			}
		}
		return false
	})...)
}

func (s *testSink) HasChildren(element *node) bool {
	return len(element.children) > 0
}

func (s *testSink) DetachFromParent(element *node) {
	if element.parent != nil {
		element.parent.remove(element)
	}
}

func (s *testSink) InsertFosterParentedChild(child, table, stackParent *node) {
	if p := table.parent; p != nil {
		p.insertAt(p.indexOf(table), child)
		return
	}
	stackParent.appendChild(child)
}

func (s *testSink) InsertFosterParentedCharacters(text string, table, stackParent *node) {
	p := table.parent
	if p == nil {
		s.AppendCharacters(stackParent, text)
		return
	}
	i := p.indexOf(table)
	if i > 0 && p.children[i-1].kind == textNode {
		p.children[i-1].data += text
		return
	}
	p.insertAt(i, &node{kind: textNode, data: text})
}

func (s *testSink) AppendChildrenToNewParent(oldParent, newParent *node) {
	for _, c := range oldParent.children {
		newParent.appendChild(c)
	}
	oldParent.children = nil
}

// dumpNode writes n in the html5lib format.
func dumpNode(w io.Writer, n *node, level int) {
	indent := "| " + strings.Repeat("  ", level)
	switch n.kind {
	case documentNode:
		for _, c := range n.children {
			dumpNode(w, c, level)
		}
		return
	case elementNode:
		switch n.ns {
		case NamespaceSVG:
			fmt.Fprintf(w, "%s<svg %s>\n", indent, n.name)
		case NamespaceMathML:
			fmt.Fprintf(w, "%s<math %s>\n", indent, n.name)
		default:
			fmt.Fprintf(w, "%s<%s>\n", indent, n.name)
		}
		attrs := append([]Attribute(nil), n.attrs...)
		sort.Slice(attrs, func(i, j int) bool { return attrs[i].Name < attrs[j].Name })
		for _, a := range attrs {
			fmt.Fprintf(w, "%s  %s=%q\n", indent, a.Name, a.Value)
		}
	case textNode:
		fmt.Fprintf(w, "%s%q\n", indent, n.data)
	case commentNode:
		fmt.Fprintf(w, "%s<!-- %s -->\n", indent, n.data)
	case doctypeNode:
		fmt.Fprintf(w, "%s<!DOCTYPE %s>\n", indent, n.name)
	}
	for _, c := range n.children {
		dumpNode(w, c, level+1)
	}
}

func dump(n *node) string {
	var b strings.Builder
	dumpNode(&b, n, 0)
	return b.String()
}

// removeIndent measures the indentation of the first line and removes that
// amount of leading whitespace from all lines.
// The very first \n is also removed.
func removeIndent(s string) string {
	s = strings.TrimLeft(s, "\n") // ignore leading newline

	// find first non-whitespace character
	i := strings.IndexFunc(s, func(r rune) bool {
		return r != ' ' && r != '\t'
	})
	if i == -1 {
		return s
	}

	// remove that amount of leading whitespace from all lines
	lines := strings.Split(s, "\n")
	for j, line := range lines {
		lines[j] = line[i:]
	}
	return strings.Join(lines, "\n")
}

// fakeTokenizer records the calls the tree builder makes. It accepts the
// first encoding declaration that differs from encoding.
type fakeTokenizer struct {
	encoding  string
	states    []LexState
	suspended bool
	declared  []string
	line      int
}

func (t *fakeTokenizer) SetState(state LexState, endTagExpectation string) {
	t.states = append(t.states, state)
}

func (t *fakeTokenizer) RequestSuspension() {
	t.suspended = true
}

func (t *fakeTokenizer) EncodingDeclaration(charset string) bool {
	t.declared = append(t.declared, charset)
	return len(t.declared) == 1 && !strings.EqualFold(charset, t.encoding)
}

func (t *fakeTokenizer) Span() Span {
	return Span{Line: t.line, Column: 1}
}

// tok is a token fed by feed.
type tok struct {
	start, end string
	attrs      []Attribute
	self       bool
	text       string
	comment    string
	doctype    *Doctype
}

func startTag(name string, attrs ...Attribute) tok { return tok{start: name, attrs: attrs} }
func endTag(name string) tok                        { return tok{end: name} }
func text(s string) tok                             { return tok{text: s} }

// feed delivers toks and EOF to tb the way a tokenizer would, stopping at the
// first error.
func feed(tb *TreeBuilder[*node], t Tokenizer, toks ...tok) error {
	defer tb.EndTokenization()
	if err := tb.StartTokenization(t); err != nil {
		return err
	}
	if err := deliver(tb, toks...); err != nil {
		return err
	}
	return tb.EOF()
}

func deliver(tb *TreeBuilder[*node], toks ...tok) error {
	for _, tk := range toks {
		var err error
		switch {
		case tk.start != "":
			err = tb.StartTag(tk.start, NewAttributes(tk.attrs...), tk.self)
		case tk.end != "":
			err = tb.EndTag(tk.end)
		case tk.doctype != nil:
			err = tb.Doctype(*tk.doctype)
		case tk.comment != "":
			err = tb.Comment(tk.comment)
		default:
			err = tb.Characters(tk.text)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
