package treebuilder

import (
	"strings"

	a "golang.org/x/net/html/atom"
)

// Section 13.2.6.4.16.
func (tb *TreeBuilder[N]) inSelectIM() bool {
	switch tb.tok.kind {
	case startTagToken:
		elt, attrs := tb.tok.name, tb.tok.attrs
		switch elt.Group {
		case GroupHTML:
			tb.errStrayStartTag(elt.Name)
			tb.addAttributesToHTML(attrs)
		case GroupOption:
			if tb.isCurrent(a.Option) {
				tb.pop()
			}
			tb.appendToCurrentNodeAndPushElement(elt, attrs)
		case GroupOptgroup:
			if tb.isCurrent(a.Option) {
				tb.pop()
			}
			if tb.isCurrent(a.Optgroup) {
				tb.pop()
			}
			tb.appendToCurrentNodeAndPushElement(elt, attrs)
		case GroupSelect:
			tb.err("“select” start tag where end tag expected.")
			pos := tb.findLastInTableScope(a.Select)
			if pos == notFound {
				tb.err("No “select” in table scope.")
				return true
			}
			tb.popThrough(pos)
			tb.resetTheInsertionMode()
		case GroupInput, GroupTextarea, GroupKeygen:
			tb.errf("“%s” start tag seen in “select”.", elt.Name)
			pos := tb.findLastInTableScope(a.Select)
			if pos == notFound {
				return true
			}
			tb.popThrough(pos)
			tb.resetTheInsertionMode()
			return false
		case GroupScript:
			tb.insertElement(elt, attrs, false)
			tb.enterText(ScriptData, elt.Name)
		default:
			tb.errStrayStartTag(elt.Name)
		}
	case endTagToken:
		name := tb.tok.name.Name
		switch tb.tok.name.Group {
		case GroupOption:
			if tb.isCurrent(a.Option) {
				tb.pop()
				return true
			}
			tb.errStrayEndTag(name)
		case GroupOptgroup:
			if n := len(tb.stack); tb.isCurrent(a.Option) && n > 1 && tb.stack[n-2].is(a.Optgroup) {
				tb.pop()
			}
			if tb.isCurrent(a.Optgroup) {
				tb.pop()
			} else {
				tb.errStrayEndTag(name)
			}
		case GroupSelect:
			pos := tb.findLastInTableScope(a.Select)
			if pos == notFound {
				tb.errStrayEndTag(name)
				return true
			}
			tb.popThrough(pos)
			tb.resetTheInsertionMode()
		default:
			tb.errStrayEndTag(name)
		}
	case charactersToken:
		text := strings.ReplaceAll(tb.tok.text, "\x00", "")
		if text != "" {
			tb.sink.AppendCharacters(tb.current().node, text)
		}
	}
	return true
}

// Section 13.2.6.4.17.
func (tb *TreeBuilder[N]) inSelectInTableIM() bool {
	switch tb.tok.kind {
	case startTagToken:
		switch tb.tok.name.Group {
		case GroupCaption, GroupTbody, GroupTr, GroupTdTh, GroupTable:
			tb.errf("“%s” start tag with “select” open.", tb.tok.name.Name)
			pos := tb.findLastInTableScope(a.Select)
			if pos == notFound {
				return true
			}
			tb.popThrough(pos)
			tb.resetTheInsertionMode()
			return false
		}
	case endTagToken:
		elt := tb.tok.name
		switch elt.Group {
		case GroupCaption, GroupTable, GroupTbody, GroupTr, GroupTdTh:
			tb.errf("“%s” end tag with “select” open.", elt.Name)
			if tb.findLastInTableScope(elt.Atom) == notFound {
				return true
			}
			pos := tb.findLastInTableScope(a.Select)
			if pos == notFound {
				return true
			}
			tb.popThrough(pos)
			tb.resetTheInsertionMode()
			return false
		}
	}
	return tb.inSelectIM()
}
