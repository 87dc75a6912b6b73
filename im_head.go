package treebuilder

// Insertion modes up to the body: initial, before html, before head, in
// head, in head noscript and after head.

// Section 13.2.6.4.1.
func (tb *TreeBuilder[N]) initialIM() bool {
	switch tb.tok.kind {
	case startTagToken:
		tb.errNoDoctype("Start tag seen")
	case endTagToken:
		tb.errNoDoctype("End tag seen")
	case charactersToken:
		_, rest := splitWhitespace(tb.tok.text)
		if rest == "" {
			return true
		}
		tb.tok.text = rest
		tb.errNoDoctype("Non-space characters found")
	default:
		return true
	}
	tb.documentModeInternal(QuirksMode, "", "")
	tb.mode = BeforeHTML
	return false
}

// Section 13.2.6.4.2.
func (tb *TreeBuilder[N]) beforeHTMLIM() bool {
	switch tb.tok.kind {
	case startTagToken:
		if tb.tok.name.Group == GroupHTML {
			tb.appendHTMLElementToDocumentAndPush(tb.tok.attrs)
			tb.mode = BeforeHead
			return true
		}
	case endTagToken:
		switch tb.tok.name.Group {
		case GroupHead, GroupBr, GroupHTML, GroupBody:
			// Handled below.
		default:
			tb.errStrayEndTag(tb.tok.name.Name)
			return true
		}
	case charactersToken:
		_, rest := splitWhitespace(tb.tok.text)
		if rest == "" {
			return true
		}
		tb.tok.text = rest
	default:
		return true
	}
	tb.appendHTMLElementToDocumentAndPush(nil)
	tb.mode = BeforeHead
	return false
}

// Section 13.2.6.4.3.
func (tb *TreeBuilder[N]) beforeHeadIM() bool {
	switch tb.tok.kind {
	case startTagToken:
		switch tb.tok.name.Group {
		case GroupHTML:
			tb.errStrayStartTag(tb.tok.name.Name)
			tb.addAttributesToHTML(tb.tok.attrs)
			return true
		case GroupHead:
			tb.appendToCurrentNodeAndPushHeadElement(tb.tok.attrs)
			tb.mode = InHead
			return true
		}
	case endTagToken:
		switch tb.tok.name.Group {
		case GroupHead, GroupBr, GroupHTML, GroupBody:
			// Handled below.
		default:
			tb.errStrayEndTag(tb.tok.name.Name)
			return true
		}
	case charactersToken:
		_, rest := splitWhitespace(tb.tok.text)
		if rest == "" {
			return true
		}
		tb.tok.text = rest
	default:
		return true
	}
	tb.appendToCurrentNodeAndPushHeadElement(nil)
	tb.mode = InHead
	return false
}

// Section 13.2.6.4.4.
func (tb *TreeBuilder[N]) inHeadIM() bool {
	switch tb.tok.kind {
	case startTagToken:
		elt, attrs := tb.tok.name, tb.tok.attrs
		switch elt.Group {
		case GroupHTML:
			tb.errStrayStartTag(elt.Name)
			tb.addAttributesToHTML(attrs)
			return true
		case GroupBase, GroupCommand:
			tb.insertVoidElement(elt, attrs, false)
			return true
		case GroupMeta, GroupLink:
			return tb.inHeadNoscriptIM()
		case GroupTitle:
			tb.insertElement(elt, attrs, false)
			tb.enterText(RCDATA, elt.Name)
			return true
		case GroupNoscript:
			if tb.cfg.Scripting {
				tb.appendToCurrentNodeAndPushElement(elt, attrs)
				tb.enterText(RAWTEXT, elt.Name)
				return true
			}
			tb.insertElement(elt, attrs, false)
			tb.mode = InHeadNoscript
			tb.setTokenizerState(Data, elt.Name)
			return true
		case GroupScript:
			tb.insertElement(elt, attrs, false)
			tb.enterText(ScriptData, elt.Name)
			return true
		case GroupStyle, GroupNoframes:
			tb.insertElement(elt, attrs, false)
			tb.enterText(RAWTEXT, elt.Name)
			return true
		case GroupHead:
			tb.err("Start tag for “head” seen when “head” was already open.")
			return true
		}
		tb.pop()
		tb.mode = AfterHead
		return false
	case endTagToken:
		switch tb.tok.name.Group {
		case GroupHead:
			tb.pop()
			tb.mode = AfterHead
			return true
		case GroupBr, GroupHTML, GroupBody:
			tb.pop()
			tb.mode = AfterHead
			return false
		}
		tb.errStrayEndTag(tb.tok.name.Name)
		return true
	case charactersToken:
		ws, rest := splitWhitespace(tb.tok.text)
		if ws != "" {
			tb.sink.AppendCharacters(tb.current().node, ws)
		}
		if rest == "" {
			return true
		}
		tb.tok.text = rest
		tb.pop()
		tb.mode = AfterHead
		return false
	}
	return true
}

// Section 13.2.6.4.5. In head also ends up here for meta and link.
func (tb *TreeBuilder[N]) inHeadNoscriptIM() bool {
	switch tb.tok.kind {
	case startTagToken:
		elt, attrs := tb.tok.name, tb.tok.attrs
		switch elt.Group {
		case GroupHTML:
			tb.errStrayStartTag(elt.Name)
			tb.addAttributesToHTML(attrs)
			return true
		case GroupLink:
			tb.insertVoidElement(elt, attrs, false)
			return true
		case GroupMeta:
			tb.checkMetaCharset(attrs)
			tb.insertVoidElement(elt, attrs, false)
			return true
		case GroupStyle, GroupNoframes:
			tb.appendToCurrentNodeAndPushElement(elt, attrs)
			tb.enterText(RAWTEXT, elt.Name)
			return true
		case GroupHead:
			tb.err("Start tag for “head” seen when “head” was already open.")
			return true
		case GroupNoscript:
			tb.err("Start tag for “noscript” seen when “noscript” was already open.")
			return true
		}
		tb.errf("Bad start tag in “%s” in “head”.", elt.Name)
		tb.pop()
		tb.mode = InHead
		return false
	case endTagToken:
		switch tb.tok.name.Group {
		case GroupNoscript:
			tb.pop()
			tb.mode = InHead
			return true
		case GroupBr:
			tb.errStrayEndTag(tb.tok.name.Name)
			tb.pop()
			tb.mode = InHead
			return false
		}
		tb.errStrayEndTag(tb.tok.name.Name)
		return true
	case charactersToken:
		ws, rest := splitWhitespace(tb.tok.text)
		if ws != "" {
			tb.sink.AppendCharacters(tb.current().node, ws)
		}
		if rest == "" {
			return true
		}
		tb.tok.text = rest
		tb.err("Non-space character inside “noscript” inside “head”.")
		tb.pop()
		tb.mode = InHead
		return false
	}
	return true
}

// Section 13.2.6.4.6.
func (tb *TreeBuilder[N]) afterHeadIM() bool {
	switch tb.tok.kind {
	case startTagToken:
		elt, attrs := tb.tok.name, tb.tok.attrs
		switch elt.Group {
		case GroupHTML:
			tb.errStrayStartTag(elt.Name)
			tb.addAttributesToHTML(attrs)
			return true
		case GroupBody:
			tb.appendToCurrentNodeAndPushBodyElement(attrs)
			tb.framesetOK = false
			tb.mode = InBody
			return true
		case GroupFrameset:
			tb.appendToCurrentNodeAndPushElement(elt, attrs)
			tb.mode = InFrameset
			return true
		case GroupBase, GroupLink, GroupMeta:
			tb.errf("“%s” element outside “head”.", elementOutsideHeadName(elt))
			if elt.Group == GroupMeta {
				tb.checkMetaCharset(attrs)
			}
			tb.pushHeadPointerOntoStack()
			tb.insertVoidElement(elt, attrs, false)
			tb.silentPop()
			return true
		case GroupScript:
			tb.err("“script” element between “head” and “body”.")
			tb.pushHeadPointerOntoStack()
			tb.appendToCurrentNodeAndPushElement(elt, attrs)
			tb.enterText(ScriptData, elt.Name)
			return true
		case GroupStyle, GroupNoframes:
			tb.errf("“%s” element between “head” and “body”.", elt.Name)
			tb.pushHeadPointerOntoStack()
			tb.appendToCurrentNodeAndPushElement(elt, attrs)
			tb.enterText(RAWTEXT, elt.Name)
			return true
		case GroupTitle:
			tb.err("“title” element outside “head”.")
			tb.pushHeadPointerOntoStack()
			tb.appendToCurrentNodeAndPushElement(elt, attrs)
			tb.enterText(RCDATA, elt.Name)
			return true
		case GroupHead:
			tb.errStrayStartTag(elt.Name)
			return true
		}
	case endTagToken:
		switch tb.tok.name.Group {
		case GroupHTML, GroupBody, GroupBr:
			// Handled below.
		default:
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
		tb.tok.text = rest
	default:
		return true
	}
	tb.appendToCurrentNodeAndPushBodyElement(nil)
	tb.mode = FramesetOK
	return false
}

// elementOutsideHeadName names the element in "outside head" errors. The
// link group also covers basefont and bgsound, which are reported as link.
func elementOutsideHeadName(elt ElementName) string {
	if elt.Group == GroupLink {
		return "link"
	}
	return elt.Name
}
