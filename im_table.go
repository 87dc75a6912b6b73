// Copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package treebuilder

import (
	a "golang.org/x/net/html/atom"
)

// The table modes fall through to each other for tokens they have no rule
// for: start tags go table body, row, table, caption, cell and then the
// body modes; end tags go row, table body, table, caption, cell, body.

// Section 13.2.6.4.9.
func (tb *TreeBuilder[N]) inTableIM() bool {
	switch tb.tok.kind {
	case startTagToken:
		elt, attrs := tb.tok.name, tb.tok.attrs
		switch elt.Group {
		case GroupCaption:
			tb.clearStackBackTo(tb.findLastOrRoot(a.Table))
			tb.insertMarker()
			tb.appendToCurrentNodeAndPushElement(elt, attrs)
			tb.mode = InCaption
			return true
		case GroupColgroup:
			tb.clearStackBackTo(tb.findLastOrRoot(a.Table))
			tb.appendToCurrentNodeAndPushElement(elt, attrs)
			tb.mode = InColumnGroup
			return true
		case GroupCol:
			tb.clearStackBackTo(tb.findLastOrRoot(a.Table))
			tb.appendToCurrentNodeAndPushElement(nameColgroup, NewAttributes())
			tb.mode = InColumnGroup
			return false
		case GroupTbody:
			tb.clearStackBackTo(tb.findLastOrRoot(a.Table))
			tb.appendToCurrentNodeAndPushElement(elt, attrs)
			tb.mode = InTableBody
			return true
		case GroupTr, GroupTdTh:
			tb.clearStackBackTo(tb.findLastOrRoot(a.Table))
			tb.appendToCurrentNodeAndPushElement(nameTbody, NewAttributes())
			tb.mode = InTableBody
			return false
		case GroupTable:
			tb.err("Start tag for “table” seen but the previous “table” is still open.")
			pos := tb.findLastInTableScope(a.Table)
			if pos == notFound {
				return true
			}
			tb.generateImpliedEndTags()
			if !tb.isCurrent(a.Table) {
				tb.err("Unclosed elements on stack.")
			}
			tb.popThrough(pos)
			tb.resetTheInsertionMode()
			return false
		case GroupScript:
			tb.appendToCurrentNodeAndPushElement(elt, attrs)
			tb.enterText(ScriptData, elt.Name)
			return true
		case GroupStyle:
			tb.appendToCurrentNodeAndPushElement(elt, attrs)
			tb.enterText(RAWTEXT, elt.Name)
			return true
		case GroupInput:
			if isHiddenInput(attrs) {
				tb.appendVoidElementToCurrent(elt, attrs, true)
				return true
			}
		case GroupForm:
			if tb.form != tb.zero {
				tb.err("Saw a “form” start tag, but there was already an active “form” element. Nested forms are not allowed. Ignoring the tag.")
				return true
			}
			tb.err("Start tag “form” seen in “table”.")
			tb.appendVoidFormToCurrent(attrs)
			return true
		default:
			tb.errf("Start tag “%s” seen in “table”.", elt.Name)
		}
		return tb.inCaptionIM()
	case endTagToken:
		name := tb.tok.name.Name
		switch tb.tok.name.Group {
		case GroupTable:
			pos := tb.findLast(a.Table)
			if pos == notFound {
				tb.errStrayEndTag(name)
				return true
			}
			tb.popThrough(pos)
			tb.resetTheInsertionMode()
			return true
		case GroupBody, GroupCaption, GroupCol, GroupColgroup, GroupHTML, GroupTbody, GroupTdTh, GroupTr:
			tb.errStrayEndTag(name)
			return true
		}
		tb.errStrayEndTag(name)
		return tb.inCaptionIM()
	case charactersToken:
		tb.accumulateTableText(tb.tok.text)
	}
	return true
}

// Section 13.2.6.4.13.
func (tb *TreeBuilder[N]) inTableBodyIM() bool {
	switch tb.tok.kind {
	case startTagToken:
		elt, attrs := tb.tok.name, tb.tok.attrs
		switch elt.Group {
		case GroupTr:
			tb.clearStackBackTo(tb.findLastInTableScopeOrRootTbodyTheadTfoot())
			tb.appendToCurrentNodeAndPushElement(elt, attrs)
			tb.mode = InRow
			return true
		case GroupTdTh:
			tb.errf("“%s” start tag in table body.", elt.Name)
			tb.clearStackBackTo(tb.findLastInTableScopeOrRootTbodyTheadTfoot())
			tb.appendToCurrentNodeAndPushElement(nameTr, NewAttributes())
			tb.mode = InRow
			return false
		case GroupCaption, GroupCol, GroupColgroup, GroupTbody:
			pos := tb.findLastInTableScopeOrRootTbodyTheadTfoot()
			if pos == 0 {
				tb.errStrayStartTag(elt.Name)
				return true
			}
			tb.clearStackBackTo(pos)
			tb.pop()
			tb.mode = InTable
			return false
		}
		return tb.inRowIM()
	case endTagToken:
		elt := tb.tok.name
		switch elt.Group {
		case GroupTbody:
			pos := tb.findLastOrRoot(elt.Atom)
			if pos == 0 {
				tb.errStrayEndTag(elt.Name)
				return true
			}
			tb.clearStackBackTo(pos)
			tb.pop()
			tb.mode = InTable
			return true
		case GroupTable:
			pos := tb.findLastInTableScopeOrRootTbodyTheadTfoot()
			if pos == 0 {
				tb.errStrayEndTag(elt.Name)
				return true
			}
			tb.clearStackBackTo(pos)
			tb.pop()
			tb.mode = InTable
			return false
		case GroupBody, GroupCaption, GroupCol, GroupColgroup, GroupHTML, GroupTdTh, GroupTr:
			tb.errStrayEndTag(elt.Name)
			return true
		}
		return tb.inTableIM()
	case charactersToken:
		tb.accumulateTableText(tb.tok.text)
	}
	return true
}

// Section 13.2.6.4.14.
func (tb *TreeBuilder[N]) inRowIM() bool {
	switch tb.tok.kind {
	case startTagToken:
		elt, attrs := tb.tok.name, tb.tok.attrs
		switch elt.Group {
		case GroupTdTh:
			tb.clearStackBackTo(tb.findLastOrRoot(a.Tr))
			tb.appendToCurrentNodeAndPushElement(elt, attrs)
			tb.mode = InCell
			tb.insertMarker()
			return true
		case GroupCaption, GroupCol, GroupColgroup, GroupTbody, GroupTr:
			if !tb.closeTableRow() {
				return true
			}
			return false
		}
		return tb.inTableIM()
	case endTagToken:
		elt := tb.tok.name
		switch elt.Group {
		case GroupTr:
			tb.closeTableRow()
			return true
		case GroupTable:
			return !tb.closeTableRow()
		case GroupTbody:
			if tb.findLastInTableScope(elt.Atom) == notFound {
				tb.errStrayEndTag(elt.Name)
				return true
			}
			return !tb.closeTableRow()
		case GroupBody, GroupCaption, GroupCol, GroupColgroup, GroupHTML, GroupTdTh:
			tb.errStrayEndTag(elt.Name)
			return true
		}
		return tb.inTableBodyIM()
	case charactersToken:
		tb.accumulateTableText(tb.tok.text)
	}
	return true
}

// closeTableRow pops the current row and reports whether there was one.
func (tb *TreeBuilder[N]) closeTableRow() bool {
	pos := tb.findLastOrRoot(a.Tr)
	if pos == 0 {
		tb.err("No table row to close.")
		return false
	}
	tb.clearStackBackTo(pos)
	tb.pop()
	tb.mode = InTableBody
	return true
}

// Section 13.2.6.4.11.
func (tb *TreeBuilder[N]) inCaptionIM() bool {
	switch tb.tok.kind {
	case startTagToken:
		switch tb.tok.name.Group {
		case GroupCaption, GroupCol, GroupColgroup, GroupTbody, GroupTr, GroupTdTh:
			tb.errStrayStartTag(tb.tok.name.Name)
			pos := tb.findLastInTableScope(a.Caption)
			if pos == notFound {
				return true
			}
			tb.generateImpliedEndTags()
			if pos != tb.currentPos() {
				tb.err("Unclosed elements on stack.")
			}
			tb.popThrough(pos)
			tb.clearTheListOfActiveFormattingElementsUpToTheLastMarker()
			tb.mode = InTable
			return false
		}
		return tb.inCellIM()
	case endTagToken:
		name := tb.tok.name.Name
		switch tb.tok.name.Group {
		case GroupCaption:
			tb.closeCaption(name)
			return true
		case GroupTable:
			tb.err("“table” closed but “caption” was still open.")
			return !tb.closeCaption(name)
		case GroupBody, GroupCol, GroupColgroup, GroupHTML, GroupTbody, GroupTdTh, GroupTr:
			tb.errStrayEndTag(name)
			return true
		}
		return tb.inCellIM()
	case charactersToken:
		return tb.inBodyIM()
	}
	return true
}

// closeCaption closes the caption in table scope and reports whether there
// was one.
func (tb *TreeBuilder[N]) closeCaption(name string) bool {
	pos := tb.findLastInTableScope(a.Caption)
	if pos == notFound {
		return false
	}
	tb.generateImpliedEndTags()
	if pos != tb.currentPos() {
		tb.errUnclosedElements(pos, name)
	}
	tb.popThrough(pos)
	tb.clearTheListOfActiveFormattingElementsUpToTheLastMarker()
	tb.mode = InTable
	return true
}

// Section 13.2.6.4.15.
func (tb *TreeBuilder[N]) inCellIM() bool {
	switch tb.tok.kind {
	case startTagToken:
		switch tb.tok.name.Group {
		case GroupCaption, GroupCol, GroupColgroup, GroupTbody, GroupTr, GroupTdTh:
			pos := tb.findLastInTableScopeTdTh()
			if pos == notFound {
				tb.err("No cell to close.")
				return true
			}
			tb.closeTheCell(pos)
			return false
		}
		return tb.framesetOKIM()
	case endTagToken:
		elt := tb.tok.name
		switch elt.Group {
		case GroupTdTh:
			pos := tb.findLastInTableScope(elt.Atom)
			if pos == notFound {
				tb.errStrayEndTag(elt.Name)
				return true
			}
			tb.generateImpliedEndTags()
			if !tb.isCurrent(elt.Atom) {
				tb.errUnclosedElements(pos, elt.Name)
			}
			tb.popThrough(pos)
			tb.clearTheListOfActiveFormattingElementsUpToTheLastMarker()
			tb.mode = InRow
			return true
		case GroupTable, GroupTbody, GroupTr:
			if tb.findLastInTableScope(elt.Atom) == notFound {
				tb.errStrayEndTag(elt.Name)
				return true
			}
			pos := tb.findLastInTableScopeTdTh()
			if pos == notFound {
				tb.badState("no cell open in cell mode")
			}
			tb.closeTheCell(pos)
			return false
		case GroupBody, GroupCaption, GroupCol, GroupColgroup, GroupHTML:
			tb.errStrayEndTag(elt.Name)
			return true
		}
		return tb.inBodyIM()
	case charactersToken:
		return tb.inBodyIM()
	}
	return true
}

// Section 13.2.6.4.12.
func (tb *TreeBuilder[N]) inColumnGroupIM() bool {
	switch tb.tok.kind {
	case startTagToken:
		elt, attrs := tb.tok.name, tb.tok.attrs
		switch elt.Group {
		case GroupHTML:
			tb.errStrayStartTag(elt.Name)
			tb.addAttributesToHTML(attrs)
			return true
		case GroupCol:
			tb.insertVoidElement(elt, attrs, false)
			return true
		}
	case endTagToken:
		switch tb.tok.name.Group {
		case GroupColgroup:
			if len(tb.stack) == 1 {
				tb.err("Garbage in “colgroup” fragment.")
				return true
			}
			tb.pop()
			tb.mode = InTable
			return true
		case GroupCol:
			tb.errStrayEndTag(tb.tok.name.Name)
			return true
		}
	case charactersToken:
		ws, rest := splitWhitespace(tb.tok.text)
		if ws != "" {
			tb.sink.AppendCharacters(tb.current().node, ws)
		}
		if rest == "" {
			return true
		}
		if len(tb.stack) == 1 {
			tb.err("Non-space in “colgroup” when parsing fragment.")
			return true
		}
		tb.tok.text = rest
		tb.pop()
		tb.mode = InTable
		return false
	default:
		return true
	}
	if len(tb.stack) == 1 {
		tb.err("Garbage in “colgroup” fragment.")
		return true
	}
	tb.pop()
	tb.mode = InTable
	return false
}
