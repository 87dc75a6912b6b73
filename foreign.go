// Copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package treebuilder

import (
	"strings"
)

// adjustedCurrent is the current node, except that a fragment parse with
// only the root open uses the context element.
func (tb *TreeBuilder[N]) adjustedCurrent() *stackEntry[N] {
	if tb.fragment && len(tb.stack) == 1 && tb.contextEntry != nil {
		return tb.contextEntry
	}
	return tb.current()
}

// Section 13.2.6.
func (tb *TreeBuilder[N]) inForeignContent() bool {
	if len(tb.stack) == 0 {
		return false
	}
	n := tb.adjustedCurrent()
	if n.isHTML() {
		return false
	}
	kind := tb.tok.kind
	if n.isMathMLTextIntegrationPoint() {
		if kind == startTagToken && tb.tok.name.Group != GroupMglyph {
			return false
		}
		if kind == charactersToken {
			return false
		}
	}
	if n.isAnnotationXML() && kind == startTagToken && tb.tok.name.Group == GroupSvg {
		return false
	}
	if n.htmlIntegrationPoint && (kind == startTagToken || kind == charactersToken) {
		return false
	}
	return kind != eofToken
}

// Section 13.2.6.5.
func (tb *TreeBuilder[N]) parseForeignContent() bool {
	switch tb.tok.kind {
	case charactersToken:
		text := strings.ReplaceAll(tb.tok.text, "\x00", "�")
		if strings.TrimLeft(text, whitespace) != "" {
			tb.framesetOK = false
			if tb.mode == FramesetOK {
				tb.mode = InBody
			}
		}
		tb.sink.AppendCharacters(tb.current().node, text)
	case startTagToken:
		elt := tb.tok.name
		if tb.breaksOutOfForeignContent() && !(tb.fragment && len(tb.stack) == 1) {
			tb.errf("HTML start tag “%s” in a foreign namespace context.", elt.Name)
			for {
				cur := tb.current()
				if cur.isHTML() || cur.isMathMLTextIntegrationPoint() || cur.htmlIntegrationPoint {
					break
				}
				tb.pop()
			}
			return false
		}
		tb.insertForeignElement(tb.adjustedCurrent().ns, elt, tb.tok.attrs)
	case endTagToken:
		name := tb.tok.name.Name
		if cur := tb.current(); !strings.EqualFold(cur.name, name) {
			tb.errf("End tag “%s” did not match the name of the current open element (“%s”).", name, cur.popName)
		}
		for i := tb.currentPos(); i > 0; {
			if strings.EqualFold(tb.stack[i].name, name) {
				tb.popThrough(i)
				return true
			}
			i--
			if tb.stack[i].isHTML() {
				return tb.dispatch()
			}
		}
	}
	return true
}

// breaksOutOfForeignContent reports whether the current start tag is one
// of the HTML elements that close foreign content.
func (tb *TreeBuilder[N]) breaksOutOfForeignContent() bool {
	switch tb.tok.name.Group {
	case GroupB, GroupDiv, GroupBody, GroupBr, GroupRuby, GroupDdDt, GroupList, GroupEmbed,
		GroupImg, GroupHeading, GroupHead, GroupHr, GroupLi, GroupMeta, GroupNobr, GroupP,
		GroupPre, GroupTable:
		return true
	case GroupFont:
		attrs := tb.tok.attrs
		return attrs.Contains("color") || attrs.Contains("face") || attrs.Contains("size")
	}
	return false
}
