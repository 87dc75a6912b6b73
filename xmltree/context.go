package xmltree

import (
	"github.com/beevik/etree"
)

// contextBuilder groups the helpers that build a context snippet.
type contextBuilder struct{}

func (b contextBuilder) addPrevSiblings(doc *etree.Element, t etree.Token) {
	if t.Parent() == nil {
		return
	}

	siblings, i := t.Parent().Child, t.Index()

	var prev []etree.Token
	for j := i - 1; j >= 0; j-- {
		if cd, ok := siblings[j].(*etree.CharData); ok && cd.IsWhitespace() {
			continue
		}
		if len(prev) == 2 {
			prev = append(prev, etree.NewText("..."))
			break
		}
		prev = append(prev, siblings[j])
	}
	for j := len(prev) - 1; j >= 0; j-- {
		b.addToken(doc, prev[j])
	}
}

func (b contextBuilder) addNextSiblings(doc *etree.Element, t etree.Token) {
	if t.Parent() == nil {
		return
	}

	siblings, i := t.Parent().Child, t.Index()

	for j, c := i+1, 0; j < len(siblings); j++ {
		if cd, ok := siblings[j].(*etree.CharData); ok && cd.IsWhitespace() {
			continue
		}
		if c == 2 {
			doc.AddChild(etree.NewText("..."))
			break
		}
		b.addToken(doc, siblings[j])
		c++
	}
}

// addToken adds a shallow copy of t. Elements with element children show
// "..." instead.
func (b contextBuilder) addToken(doc *etree.Element, t etree.Token) {
	switch el := t.(type) {
	case *etree.Element:
		clone := etree.NewElement(el.FullTag())
		clone.Attr = make([]etree.Attr, len(el.Attr))
		copy(clone.Attr, el.Attr)
		if len(el.ChildElements()) > 0 {
			clone.AddChild(etree.NewText("..."))
		} else {
			clone.SetText(el.Text())
		}
		doc.AddChild(clone)
	case *etree.CharData:
		if !el.IsWhitespace() {
			doc.AddChild(etree.NewText(el.Data))
		}
	case *etree.Comment:
		doc.AddChild(etree.NewComment(el.Data))
	}
}

// wrapParent moves the collected tokens into a shallow copy of the parent
// of t, unless t is the root.
func (b contextBuilder) wrapParent(doc *etree.Element, t etree.Token) {
	parent := t.Parent()
	if parent == nil || parent.Tag == "" {
		return
	}

	wrapper := etree.NewElement(parent.FullTag())
	wrapper.Attr = make([]etree.Attr, len(parent.Attr))
	copy(wrapper.Attr, parent.Attr)
	children := append([]etree.Token(nil), doc.Child...)
	for _, c := range children {
		doc.RemoveChild(c)
		wrapper.AddChild(c)
	}
	doc.AddChild(wrapper)
}

// Context returns an XML snippet around el: its parent, up to two siblings
// on each side and el itself without grandchildren.
func Context(el *etree.Element) string {
	if el == nil {
		return ""
	}
	out := etree.NewDocument()
	b := contextBuilder{}
	b.addPrevSiblings(&out.Element, el)
	b.addToken(&out.Element, el)
	b.addNextSiblings(&out.Element, el)
	b.wrapParent(&out.Element, el)

	s, err := out.WriteToString()
	if err != nil {
		return ""
	}
	return s
}
