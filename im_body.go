// Copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package treebuilder

import (
	"strings"

	a "golang.org/x/net/html/atom"
)

// framesetOKIM is "in body" before anything has made a frameset impossible.
// The cell, caption and table modes fall through to it for start tags.
func (tb *TreeBuilder[N]) framesetOKIM() bool {
	switch tb.tok.kind {
	case startTagToken:
		elt, attrs := tb.tok.name, tb.tok.attrs
		switch elt.Group {
		case GroupFrameset:
			if !tb.framesetOK {
				tb.errStrayStartTag(elt.Name)
				return true
			}
			if len(tb.stack) == 1 || tb.stack[1].group() != GroupBody {
				tb.errStrayStartTag(elt.Name)
				return true
			}
			tb.err("“frameset” start tag seen.")
			tb.sink.DetachFromParent(tb.stack[1].node)
			for len(tb.stack) > 1 {
				tb.pop()
			}
			tb.appendToCurrentNodeAndPushElement(elt, attrs)
			tb.mode = InFrameset
			return true
		case GroupPre, GroupLi, GroupDdDt, GroupButton, GroupMarquee, GroupObject, GroupTable,
			GroupArea, GroupBr, GroupEmbed, GroupImg, GroupInput, GroupKeygen, GroupHr,
			GroupTextarea, GroupXmp, GroupIframe, GroupSelect:
			if tb.mode == FramesetOK && !(elt.Group == GroupInput && isHiddenInput(attrs)) {
				tb.framesetOK = false
				tb.mode = InBody
			}
		}
		return tb.inBodyIM()
	case endTagToken:
		return tb.inBodyIM()
	case charactersToken:
		ws, rest := splitWhitespace(tb.tok.text)
		if ws != "" {
			tb.reconstructTheActiveFormattingElements()
			tb.sink.AppendCharacters(tb.current().node, ws)
		}
		if rest == "" {
			return true
		}
		tb.tok.text = rest
		tb.framesetOK = false
		tb.mode = InBody
		return false
	}
	return true
}

func isHiddenInput(attrs *Attributes) bool {
	typ, _ := attrs.Value("type")
	return strings.EqualFold(typ, "hidden")
}

// Section 13.2.6.4.7.
func (tb *TreeBuilder[N]) inBodyIM() bool {
	switch tb.tok.kind {
	case startTagToken:
		return tb.inBodyStartTag()
	case endTagToken:
		return tb.inBodyEndTag()
	case charactersToken:
		text := strings.ReplaceAll(tb.tok.text, "\x00", "")
		if text == "" {
			return true
		}
		tb.reconstructTheActiveFormattingElements()
		tb.sink.AppendCharacters(tb.current().node, text)
		if strings.TrimLeft(text, whitespace) != "" {
			tb.framesetOK = false
		}
	}
	return true
}

func (tb *TreeBuilder[N]) inBodyStartTag() bool {
	elt, attrs := tb.tok.name, tb.tok.attrs
	switch elt.Group {
	case GroupHTML:
		tb.errStrayStartTag(elt.Name)
		tb.addAttributesToHTML(attrs)
	case GroupBase, GroupLink, GroupMeta, GroupStyle, GroupScript, GroupTitle, GroupCommand:
		return tb.inHeadIM()
	case GroupBody:
		if len(tb.stack) == 1 || tb.stack[1].group() != GroupBody {
			tb.errStrayStartTag(elt.Name)
			return true
		}
		tb.err("“body” start tag found but the “body” element is already open.")
		tb.framesetOK = false
		if tb.mode == FramesetOK {
			tb.mode = InBody
		}
	case GroupP, GroupDiv, GroupList, GroupAddress:
		tb.implicitlyCloseP()
		tb.insertElement(elt, attrs, false)
	case GroupHeading:
		tb.implicitlyCloseP()
		if tb.current().group() == GroupHeading {
			tb.err("Heading cannot be a child of another heading.")
			tb.pop()
		}
		tb.insertElement(elt, attrs, false)
	case GroupFieldset:
		tb.implicitlyCloseP()
		tb.insertElement(elt, attrs, true)
	case GroupPre:
		tb.implicitlyCloseP()
		tb.insertElement(elt, attrs, false)
		tb.needToDropLF = true
	case GroupForm:
		if tb.form != tb.zero {
			tb.err("Saw a “form” start tag, but there was already an active “form” element. Nested forms are not allowed. Ignoring the tag.")
			return true
		}
		tb.implicitlyCloseP()
		tb.insertFormElement(attrs)
	case GroupLi, GroupDdDt:
		for pos := tb.currentPos(); pos >= 0; pos-- {
			node := tb.stack[pos]
			if node.group() == elt.Group {
				tb.generateImpliedEndTagsExceptFor(node.elt.Atom)
				if pos != tb.currentPos() {
					tb.errUnclosedElementsImplied(pos, elt.Name)
				}
				tb.popThrough(pos)
				break
			}
			if node.scoping || (node.special && !node.is(a.P) && !node.is(a.Address) && !node.is(a.Div)) {
				break
			}
		}
		tb.implicitlyCloseP()
		tb.insertElement(elt, attrs, false)
	case GroupPlaintext:
		tb.implicitlyCloseP()
		tb.insertElement(elt, attrs, false)
		tb.setTokenizerState(PLAINTEXT, elt.Name)
	case GroupA:
		if pos := tb.findInListAfterLastMarker(a.A); pos != notFound {
			tb.err("An “a” start tag seen with already an active “a” element.")
			activeA := tb.afe[pos]
			tb.adoptionAgencyEndTag(a.A, "a")
			tb.removeEntryFromStack(activeA)
			if pos := tb.listIndex(activeA); pos != notFound {
				tb.removeFromList(pos)
			}
		}
		tb.reconstructTheActiveFormattingElements()
		tb.insertFormattingElement(elt, attrs)
	case GroupB, GroupFont:
		tb.reconstructTheActiveFormattingElements()
		tb.maybeForgetEarlierDuplicateFormattingElement(elt.Name, attrs)
		tb.insertFormattingElement(elt, attrs)
	case GroupNobr:
		tb.reconstructTheActiveFormattingElements()
		if tb.findLastInScope(a.Nobr) != notFound {
			tb.err("“nobr” start tag seen when there was an open “nobr” element in scope.")
			tb.adoptionAgencyEndTag(a.Nobr, "nobr")
			tb.reconstructTheActiveFormattingElements()
		}
		tb.insertFormattingElement(elt, attrs)
	case GroupButton:
		if pos := tb.findLastInScope(a.Button); pos != notFound {
			tb.err("“button” start tag seen when there was an open “button” element in scope.")
			tb.generateImpliedEndTags()
			if !tb.isCurrent(a.Button) {
				tb.errUnclosedElementsImplied(pos, elt.Name)
			}
			tb.popThrough(pos)
			return false
		}
		tb.reconstructTheActiveFormattingElements()
		tb.insertElement(elt, attrs, true)
	case GroupObject:
		tb.reconstructTheActiveFormattingElements()
		tb.insertElement(elt, attrs, true)
		tb.insertMarker()
	case GroupMarquee:
		tb.reconstructTheActiveFormattingElements()
		tb.insertElement(elt, attrs, false)
		tb.insertMarker()
	case GroupTable:
		if !tb.quirks {
			tb.implicitlyCloseP()
		}
		tb.insertElement(elt, attrs, false)
		tb.mode = InTable
	case GroupBr, GroupEmbed, GroupImg, GroupArea:
		tb.reconstructTheActiveFormattingElements()
		tb.insertVoidElement(elt, attrs, false)
	case GroupParam:
		tb.insertVoidElement(elt, attrs, false)
	case GroupHr:
		tb.implicitlyCloseP()
		tb.insertVoidElement(elt, attrs, false)
	case GroupImage:
		tb.err("Saw a start tag “image”.")
		tb.tok.name = nameImg
		return false
	case GroupKeygen, GroupInput:
		tb.reconstructTheActiveFormattingElements()
		tb.insertVoidElement(elt, attrs, true)
	case GroupIsindex:
		tb.isindex(attrs)
	case GroupTextarea:
		tb.insertElement(elt, attrs, true)
		tb.enterText(RCDATA, elt.Name)
		tb.needToDropLF = true
	case GroupXmp:
		tb.implicitlyCloseP()
		tb.reconstructTheActiveFormattingElements()
		tb.insertElement(elt, attrs, false)
		tb.enterText(RAWTEXT, elt.Name)
	case GroupNoscript:
		if !tb.cfg.Scripting {
			tb.reconstructTheActiveFormattingElements()
			tb.insertElement(elt, attrs, false)
			tb.setTokenizerState(Data, elt.Name)
			return true
		}
		tb.insertElement(elt, attrs, false)
		tb.enterText(RAWTEXT, elt.Name)
	case GroupNoframes, GroupIframe, GroupNoembed:
		tb.insertElement(elt, attrs, false)
		tb.enterText(RAWTEXT, elt.Name)
	case GroupSelect:
		tb.reconstructTheActiveFormattingElements()
		tb.insertElement(elt, attrs, true)
		switch tb.mode {
		case InTable, InCaption, InColumnGroup, InTableBody, InRow, InCell:
			tb.mode = InSelectInTable
		default:
			tb.mode = InSelect
		}
	case GroupOptgroup, GroupOption:
		if tb.isCurrent(a.Option) {
			tb.pop()
		}
		tb.reconstructTheActiveFormattingElements()
		tb.insertElement(elt, attrs, false)
	case GroupRtRp:
		if pos := tb.findLastInScope(a.Ruby); pos != notFound {
			tb.generateImpliedEndTags()
			if pos != tb.currentPos() {
				tb.err("Unclosed children in “ruby”.")
				tb.clearStackBackTo(pos)
			}
		} else {
			tb.errf("Start tag “%s” seen without a “ruby” element being open.", elt.Name)
		}
		tb.insertElement(elt, attrs, false)
	case GroupMath:
		tb.reconstructTheActiveFormattingElements()
		tb.insertForeignElement(NamespaceMathML, elt, attrs)
	case GroupSvg:
		tb.reconstructTheActiveFormattingElements()
		tb.insertForeignElement(NamespaceSVG, elt, attrs)
	case GroupCaption, GroupCol, GroupColgroup, GroupTbody, GroupTr, GroupTdTh,
		GroupFrame, GroupFrameset, GroupHead:
		tb.errStrayStartTag(elt.Name)
	case GroupOutput:
		tb.reconstructTheActiveFormattingElements()
		tb.insertElement(elt, attrs, true)
	default:
		tb.reconstructTheActiveFormattingElements()
		tb.insertElement(elt, attrs, false)
	}
	return true
}

// isindexPrompt is the label text used when isindex has no prompt.
const isindexPrompt = "This is a searchable index. Enter search keywords: "

// isindex expands the obsolete isindex element into a form with a labelled
// text input.
func (tb *TreeBuilder[N]) isindex(attrs *Attributes) {
	tb.err("“isindex” seen.")
	if tb.form != tb.zero {
		return
	}
	tb.implicitlyCloseP()
	formAttrs := NewAttributes()
	if action, ok := attrs.Value("action"); ok {
		formAttrs.Add("action", action)
	}
	tb.insertFormElement(formAttrs)
	tb.insertVoidElement(elementNameFor(a.Hr), NewAttributes(), false)
	tb.insertElement(elementNameFor(a.Label), NewAttributes(), false)
	prompt, ok := attrs.Value("prompt")
	if !ok {
		prompt = isindexPrompt
	}
	tb.sink.AppendCharacters(tb.current().node, prompt)
	inputAttrs := NewAttributes(Attribute{Name: "name", Value: "isindex"})
	for _, attr := range attrs.Slice() {
		switch attr.Name {
		case "name", "prompt", "action":
			continue
		}
		inputAttrs.Add(attr.Name, attr.Value)
	}
	tb.insertVoidElement(elementNameFor(a.Input), inputAttrs, true)
	tb.pop() // label
	tb.insertVoidElement(elementNameFor(a.Hr), NewAttributes(), false)
	tb.pop() // form
}

func (tb *TreeBuilder[N]) inBodyEndTag() bool {
	elt := tb.tok.name
	name := elt.Name
	switch elt.Group {
	case GroupBody:
		if !tb.isSecondOnStackBody() {
			tb.errStrayEndTag(name)
			return true
		}
		if tb.cfg.OnDiagnostic != nil {
			for _, e := range tb.stack[2:] {
				switch e.group() {
				case GroupDdDt, GroupLi, GroupOptgroup, GroupOption, GroupP, GroupRtRp, GroupTdTh, GroupTbody:
					continue
				}
				tb.errEndWithUnclosedElements("End tag for “body” seen but there were unclosed elements.")
				break
			}
		}
		tb.mode = AfterBody
	case GroupHTML:
		if !tb.isSecondOnStackBody() {
			tb.errStrayEndTag(name)
			return true
		}
		if tb.cfg.OnDiagnostic != nil {
			for _, e := range tb.stack {
				switch e.group() {
				case GroupDdDt, GroupLi, GroupP, GroupTbody, GroupTdTh, GroupBody, GroupHTML:
					continue
				}
				tb.errEndWithUnclosedElements("End tag for “html” seen but there were unclosed elements.")
				break
			}
		}
		tb.mode = AfterBody
		return false
	case GroupDiv, GroupList, GroupPre, GroupFieldset, GroupButton, GroupAddress:
		pos := tb.findLastInScope(elt.Atom)
		if pos == notFound {
			tb.errStrayEndTag(name)
			return true
		}
		tb.generateImpliedEndTags()
		if !tb.isCurrent(elt.Atom) {
			tb.errUnclosedElements(pos, name)
		}
		tb.popThrough(pos)
	case GroupForm:
		if tb.form == tb.zero {
			tb.errStrayEndTag(name)
			return true
		}
		tb.form = tb.zero
		pos := tb.findLastInScope(a.Form)
		if pos == notFound {
			tb.errStrayEndTag(name)
			return true
		}
		tb.generateImpliedEndTags()
		if !tb.isCurrent(a.Form) {
			tb.errUnclosedElements(pos, name)
		}
		tb.removeFromStack(pos)
	case GroupP:
		pos := tb.findLastInButtonScope(a.P)
		if pos == notFound {
			tb.err("No “p” element in scope but a “p” end tag seen.")
			tb.breakOutOfForeignContent(name)
			tb.insertVoidElement(nameP, NewAttributes(), false)
			return true
		}
		tb.generateImpliedEndTagsExceptFor(a.P)
		if pos != tb.currentPos() {
			tb.errUnclosedElements(pos, name)
		}
		tb.popThrough(pos)
	case GroupLi:
		pos := tb.findLastInListScope(a.Li)
		if pos == notFound {
			tb.err("No “li” element in list scope but a “li” end tag seen.")
			return true
		}
		tb.generateImpliedEndTagsExceptFor(a.Li)
		if pos != tb.currentPos() {
			tb.errUnclosedElements(pos, name)
		}
		tb.popThrough(pos)
	case GroupDdDt:
		pos := tb.findLastInScope(elt.Atom)
		if pos == notFound {
			tb.errf("No “%s” element in scope but a “%s” end tag seen.", name, name)
			return true
		}
		tb.generateImpliedEndTagsExceptFor(elt.Atom)
		if pos != tb.currentPos() {
			tb.errUnclosedElements(pos, name)
		}
		tb.popThrough(pos)
	case GroupHeading:
		pos := tb.findLastInScopeHn()
		if pos == notFound {
			tb.errStrayEndTag(name)
			return true
		}
		tb.generateImpliedEndTags()
		if !tb.isCurrent(elt.Atom) {
			tb.errUnclosedElements(pos, name)
		}
		tb.popThrough(pos)
	case GroupObject, GroupMarquee:
		pos := tb.findLastInScope(elt.Atom)
		if pos == notFound {
			tb.errStrayEndTag(name)
			return true
		}
		tb.generateImpliedEndTags()
		if !tb.isCurrent(elt.Atom) {
			tb.errUnclosedElements(pos, name)
		}
		tb.popThrough(pos)
		tb.clearTheListOfActiveFormattingElementsUpToTheLastMarker()
	case GroupBr:
		tb.err("End tag “br”.")
		tb.breakOutOfForeignContent(name)
		tb.reconstructTheActiveFormattingElements()
		tb.insertVoidElement(nameBr, NewAttributes(), false)
	case GroupArea, GroupParam, GroupEmbed, GroupImg, GroupImage, GroupInput, GroupKeygen,
		GroupHr, GroupIsindex, GroupIframe, GroupNoembed, GroupNoframes, GroupSelect,
		GroupTable, GroupTextarea:
		tb.errStrayEndTag(name)
	case GroupNoscript:
		if tb.cfg.Scripting {
			tb.errStrayEndTag(name)
			return true
		}
		tb.anyOtherEndTag(name)
	case GroupA, GroupB, GroupFont, GroupNobr:
		if !tb.adoptionAgencyEndTag(elt.Atom, name) {
			tb.anyOtherEndTag(name)
		}
	default:
		tb.anyOtherEndTag(name)
	}
	return true
}

// breakOutOfForeignContent pops foreign elements off the stack before an
// HTML element is synthesized for a stray </p> or </br>.
func (tb *TreeBuilder[N]) breakOutOfForeignContent(name string) {
	if tb.current().isHTML() {
		return
	}
	tb.errf("HTML start tag “%s” in a foreign namespace context.", name)
	for !tb.current().isHTML() {
		tb.pop()
	}
}

// anyOtherEndTag closes the nearest open HTML element with the given name,
// unless a special element is in the way.
func (tb *TreeBuilder[N]) anyOtherEndTag(name string) {
	if cur := tb.current(); cur.isHTML() && cur.name == name {
		tb.pop()
		return
	}
	for pos := tb.currentPos(); pos >= 0; pos-- {
		node := tb.stack[pos]
		if node.isHTML() && node.name == name {
			tb.generateImpliedEndTags()
			if cur := tb.current(); !cur.isHTML() || cur.name != name {
				tb.errUnclosedElements(pos, name)
			}
			tb.popThrough(pos)
			return
		}
		if node.special {
			tb.errStrayEndTag(name)
			return
		}
	}
}

// Section 13.2.6.4.8.
func (tb *TreeBuilder[N]) textIM() bool {
	switch tb.tok.kind {
	case charactersToken:
		tb.sink.AppendCharacters(tb.current().node, tb.tok.text)
	case endTagToken:
		tb.pop()
		if tb.originalMode == AfterHead {
			tb.silentPop()
		}
		tb.mode = tb.originalMode
	}
	return true
}
