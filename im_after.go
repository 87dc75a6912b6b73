package treebuilder

import (
	"strings"

	a "golang.org/x/net/html/atom"
)

// Section 13.2.6.4.19.
func (tb *TreeBuilder[N]) afterBodyIM() bool {
	switch tb.tok.kind {
	case startTagToken:
		tb.errStrayStartTag(tb.tok.name.Name)
		if tb.tok.name.Group == GroupHTML {
			tb.addAttributesToHTML(tb.tok.attrs)
			return true
		}
	case endTagToken:
		if tb.tok.name.Group == GroupHTML {
			if tb.fragment {
				tb.errStrayEndTag(tb.tok.name.Name)
				return true
			}
			tb.mode = AfterAfterBody
			return true
		}
		tb.err("Saw an end tag after “body” had been closed.")
	case charactersToken:
		rest, ok := tb.trailingWhitespace()
		if ok {
			return true
		}
		tb.tok.text = rest
		tb.err("Non-space character after body.")
	default:
		return true
	}
	tb.mode = tb.bodyMode()
	return false
}

// trailingWhitespace inserts the leading whitespace of a character token
// seen after the body the way the body would, and returns the rest. ok is
// true if there is no rest.
func (tb *TreeBuilder[N]) trailingWhitespace() (rest string, ok bool) {
	ws, rest := splitWhitespace(tb.tok.text)
	if ws != "" {
		tb.reconstructTheActiveFormattingElements()
		tb.sink.AppendCharacters(tb.current().node, ws)
	}
	return rest, rest == ""
}

// Section 13.2.6.4.20.
func (tb *TreeBuilder[N]) inFramesetIM() bool {
	switch tb.tok.kind {
	case startTagToken:
		elt, attrs := tb.tok.name, tb.tok.attrs
		switch elt.Group {
		case GroupFrameset:
			tb.appendToCurrentNodeAndPushElement(elt, attrs)
			return true
		case GroupFrame:
			tb.insertVoidElement(elt, attrs, false)
			return true
		}
		return tb.afterFramesetIM()
	case endTagToken:
		if tb.tok.name.Group != GroupFrameset || len(tb.stack) == 1 {
			tb.errStrayEndTag(tb.tok.name.Name)
			return true
		}
		tb.pop()
		if !tb.fragment && !tb.isCurrent(a.Frameset) {
			tb.mode = AfterFrameset
		}
	case charactersToken:
		tb.framesetWhitespace("Non-space in “frameset”.")
	}
	return true
}

// framesetWhitespace keeps only the whitespace of a character token.
func (tb *TreeBuilder[N]) framesetWhitespace(msg string) {
	text := tb.tok.text
	ws := strings.Map(func(r rune) rune {
		if strings.ContainsRune(whitespace, r) {
			return r
		}
		return -1
	}, text)
	if len(ws) != len(text) {
		tb.err(msg)
	}
	if ws != "" {
		tb.sink.AppendCharacters(tb.current().node, ws)
	}
}

// Section 13.2.6.4.21.
func (tb *TreeBuilder[N]) afterFramesetIM() bool {
	switch tb.tok.kind {
	case startTagToken:
		elt, attrs := tb.tok.name, tb.tok.attrs
		switch elt.Group {
		case GroupHTML:
			tb.errStrayStartTag(elt.Name)
			tb.addAttributesToHTML(attrs)
		case GroupNoframes:
			tb.appendToCurrentNodeAndPushElement(elt, attrs)
			tb.enterText(RAWTEXT, elt.Name)
		default:
			tb.errStrayStartTag(elt.Name)
		}
	case endTagToken:
		if tb.tok.name.Group == GroupHTML {
			tb.mode = AfterAfterFrameset
			return true
		}
		tb.errStrayEndTag(tb.tok.name.Name)
	case charactersToken:
		tb.framesetWhitespace("Non-space after “frameset”.")
	}
	return true
}

// Section 13.2.6.4.22.
func (tb *TreeBuilder[N]) afterAfterBodyIM() bool {
	switch tb.tok.kind {
	case startTagToken:
		tb.errStrayStartTag(tb.tok.name.Name)
		if tb.tok.name.Group == GroupHTML {
			tb.addAttributesToHTML(tb.tok.attrs)
			return true
		}
	case endTagToken:
		tb.errStrayEndTag(tb.tok.name.Name)
	case charactersToken:
		rest, ok := tb.trailingWhitespace()
		if ok {
			return true
		}
		tb.tok.text = rest
		tb.err("Non-space character in page trailer.")
	default:
		return true
	}
	tb.mode = tb.bodyMode()
	return false
}

// Section 13.2.6.4.23.
func (tb *TreeBuilder[N]) afterAfterFramesetIM() bool {
	switch tb.tok.kind {
	case startTagToken:
		elt, attrs := tb.tok.name, tb.tok.attrs
		switch elt.Group {
		case GroupHTML:
			tb.errStrayStartTag(elt.Name)
			tb.addAttributesToHTML(attrs)
		case GroupNoframes:
			tb.insertElement(elt, attrs, false)
			tb.enterText(RAWTEXT, elt.Name)
		default:
			tb.errStrayStartTag(elt.Name)
		}
		return true
	case endTagToken:
		tb.errStrayEndTag(tb.tok.name.Name)
	case charactersToken:
		rest, ok := tb.trailingWhitespace()
		if ok {
			return true
		}
		tb.tok.text = rest
		tb.err("Non-space character in page trailer.")
	default:
		return true
	}
	tb.mode = InFrameset
	return false
}
