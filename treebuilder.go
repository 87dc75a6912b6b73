// Copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package treebuilder implements the tree construction stage of the HTML5
// parsing algorithm. It receives tokens through the TokenHandler interface
// and builds a tree through a caller supplied Sink, so the same engine can
// produce x/net/html nodes, etree documents or anything else.
//
// https://html.spec.whatwg.org/multipage/parsing.html#tree-construction
package treebuilder

import (
	"io"
	"log/slog"
	"strings"

	a "golang.org/x/net/html/atom"
)

const whitespace = " \t\r\n\f"

// Config controls a TreeBuilder. The zero value is usable.
type Config struct {
	// Logger receives debug output about insertion mode changes and
	// suspensions. nil discards it.
	Logger *slog.Logger

	// OnDiagnostic receives parse errors and warnings. nil disables them;
	// the tree built is the same either way.
	OnDiagnostic func(Diagnostic)

	// OnDocumentMode is called once the document mode is known.
	OnDocumentMode func(mode DocumentMode, publicID, systemID string)

	// Scripting makes noscript content raw text.
	Scripting bool

	DoctypeExpectation DoctypeExpectation
	NamePolicy         NamePolicy

	// SkipDoctype keeps the doctype out of the tree. It is still used to
	// select the document mode.
	SkipDoctype bool

	IgnoreComments bool

	// CheckDuplicateIDs reports id attributes that were seen before.
	CheckDuplicateIDs bool
}

// TreeBuilder is the tree construction state machine. Use New to create one.
// A TreeBuilder is not safe for concurrent use.
type TreeBuilder[N comparable] struct {
	cfg       Config
	logger    *slog.Logger
	sink      Sink[N]
	observer  ElementObserver[N]
	tokenizer Tokenizer

	// zero is the zero N, the "no node" value.
	zero N

	// tok is the token being processed.
	tok token
	// mode is the current insertion mode, originalMode the one to return to
	// after the text mode.
	mode, originalMode InsertionMode
	framesetOK         bool
	// needToDropLF drops a newline right after <pre>, <listing> or
	// <textarea>.
	needToDropLF bool
	quirks       bool

	// stack is the stack of open elements.
	stack []*stackEntry[N]
	// afe is the list of active formatting elements.
	afe []*stackEntry[N]

	form, head N

	fragment      bool
	contextNS     string
	contextName   string
	contextQuirks bool
	// contextEntry stands in for the context element while only the root is
	// open, see adjustedCurrent.
	contextEntry *stackEntry[N]

	pendingTableText strings.Builder

	ids map[string]Span
	// failed is the sticky fatal error.
	failed error
}

var _ TokenHandler = (*TreeBuilder[int])(nil)

// New returns a TreeBuilder that builds into sink. If sink also implements
// ElementObserver, it is told about elements entering and leaving the stack.
func New[N comparable](sink Sink[N], cfg Config) *TreeBuilder[N] {
	tb := &TreeBuilder[N]{
		cfg:    cfg,
		logger: cfg.Logger,
		sink:   sink,
	}
	if tb.logger == nil {
		tb.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o, ok := sink.(ElementObserver[N]); ok {
		tb.observer = o
	}
	return tb
}

// SetFragmentContext makes the next parse a fragment parse in the context
// of the element ns:name. An empty name means a body element. quirks is the
// document mode of the context element's document.
func (tb *TreeBuilder[N]) SetFragmentContext(ns, name string, quirks bool) {
	if name == "" {
		ns, name = NamespaceHTML, "body"
	}
	if ns == "" {
		ns = NamespaceHTML
	}
	tb.fragment = true
	tb.contextNS = ns
	tb.contextName = name
	tb.contextQuirks = quirks
}

// Mode returns the current insertion mode.
func (tb *TreeBuilder[N]) Mode() InsertionMode {
	return tb.mode
}

// guard runs fn and turns a FatalError panic into a returned error. Once a
// fatal error happened, every later call returns it.
func (tb *TreeBuilder[N]) guard(fn func()) (err error) {
	if tb.failed != nil {
		return tb.failed
	}
	defer func() {
		if r := recover(); r != nil {
			fe, ok := r.(*FatalError)
			if !ok {
				panic(r)
			}
			tb.logger.Error("tree construction aborted", "error", fe)
			tb.failed = fe
			err = fe
		}
	}()
	fn()
	return nil
}

func (tb *TreeBuilder[N]) StartTokenization(tokenizer Tokenizer) error {
	tb.tokenizer = tokenizer
	tb.failed = nil
	return tb.guard(func() {
		tb.stack = tb.stack[:0]
		tb.afe = tb.afe[:0]
		tb.form, tb.head = tb.zero, tb.zero
		tb.mode, tb.originalMode = Initial, Initial
		tb.framesetOK = true
		tb.needToDropLF = false
		tb.quirks = false
		tb.contextEntry = nil
		tb.pendingTableText.Reset()
		tb.ids = make(map[string]Span)
		if s, ok := tb.sink.(Starter); ok {
			s.Start(tb.fragment)
		}
		if !tb.fragment {
			return
		}

		tb.quirks = tb.contextQuirks
		root := tb.sink.CreateHTMLElementSetAsRoot(NewAttributes())
		tb.silentPush(newHTMLEntry(root, nameHTML, nil, Span{}))
		tb.contextEntry = tb.newContextEntry(root)
		tb.resetTheInsertionMode()

		state := Data
		if tb.contextNS == NamespaceHTML {
			switch tb.contextName {
			case "title", "textarea":
				state = RCDATA
			case "style", "xmp", "iframe", "noembed", "noframes":
				state = RAWTEXT
			case "noscript":
				if tb.cfg.Scripting {
					state = RAWTEXT
				}
			case "plaintext":
				state = PLAINTEXT
			case "script":
				state = ScriptData
			}
		}
		if tokenizer != nil {
			tokenizer.SetState(state, tb.contextName)
		}
	})
}

// newContextEntry describes the context element. Its node is the root, so
// content inserted "into the context element" lands in the fragment root.
func (tb *TreeBuilder[N]) newContextEntry(root N) *stackEntry[N] {
	elt := LookupElementName(tb.contextName)
	if tb.contextNS == NamespaceHTML {
		return newHTMLEntry(root, elt, nil, Span{})
	}
	name := tb.contextName
	if tb.contextNS == NamespaceSVG {
		name = elt.CamelCase()
	}
	return newForeignEntry(root, tb.contextNS, elt, name, nil, Span{})
}

func (tb *TreeBuilder[N]) StartTag(name string, attrs *Attributes, selfClosing bool) error {
	return tb.guard(func() {
		tb.flushCharacters()
		elt := LookupElementName(name)
		if tb.cfg.NamePolicy != PolicyAllow || tb.cfg.OnDiagnostic != nil {
			elt = tb.checkNames(elt, attrs)
		}
		if tb.cfg.CheckDuplicateIDs {
			tb.checkDuplicateID(attrs)
		}
		tb.needToDropLF = false
		tb.tok = token{kind: startTagToken, name: elt, attrs: attrs, selfClosing: selfClosing}
		tb.parseCurrentToken()
		if tb.tok.selfClosing {
			tb.err("Self-closing syntax (“/>”) used on a non-void HTML element. Ignoring the slash and treating as a start tag.")
		}
	})
}

func (tb *TreeBuilder[N]) EndTag(name string) error {
	return tb.guard(func() {
		tb.flushCharacters()
		tb.needToDropLF = false
		tb.tok = token{kind: endTagToken, name: LookupElementName(name)}
		tb.parseCurrentToken()
	})
}

func (tb *TreeBuilder[N]) Characters(text string) error {
	return tb.guard(func() {
		if tb.needToDropLF {
			tb.needToDropLF = false
			text = strings.TrimPrefix(text, "\n")
		}
		if text == "" {
			return
		}
		tb.tok = token{kind: charactersToken, text: text}
		tb.parseCurrentToken()
	})
}

func (tb *TreeBuilder[N]) Comment(text string) error {
	return tb.guard(func() {
		tb.needToDropLF = false
		if tb.cfg.IgnoreComments {
			return
		}
		tb.tok = token{kind: commentToken, text: text}
		if !tb.inForeignContent() {
			switch tb.mode {
			case Initial, BeforeHTML, AfterAfterBody, AfterAfterFrameset:
				tb.sink.AppendCommentToDocument(text)
				return
			case AfterBody:
				tb.flushCharacters()
				tb.sink.AppendComment(tb.stack[0].node, text)
				return
			}
		}
		tb.flushCharacters()
		tb.sink.AppendComment(tb.current().node, text)
	})
}

func (tb *TreeBuilder[N]) Doctype(d Doctype) error {
	return tb.guard(func() {
		tb.needToDropLF = false
		tb.tok = token{kind: doctypeToken, doctype: d}
		if tb.mode != Initial || tb.inForeignContent() {
			tb.err("Stray doctype.")
			return
		}
		if !tb.cfg.SkipDoctype {
			tb.sink.AppendDoctypeToDocument(d.Name, d.PublicID, d.SystemID)
		}
		tb.documentModeInternal(tb.checkDoctype(d), d.PublicID, d.SystemID)
		tb.mode = BeforeHTML
	})
}

func (tb *TreeBuilder[N]) EOF() error {
	return tb.guard(func() {
		tb.flushCharacters()
		tb.tok = token{kind: eofToken}
		tb.eof()
	})
}

func (tb *TreeBuilder[N]) EndTokenization() error {
	err := tb.failed
	tb.stack = tb.stack[:0]
	tb.afe = tb.afe[:0]
	tb.form, tb.head = tb.zero, tb.zero
	tb.contextEntry = nil
	tb.ids = nil
	tb.pendingTableText.Reset()
	if s, ok := tb.sink.(Starter); ok {
		s.End()
	}
	return err
}

func (tb *TreeBuilder[N]) WantsComments() bool {
	return !tb.cfg.IgnoreComments
}

// CDATASectionAllowed reports whether the adjusted current node is not an
// HTML element.
func (tb *TreeBuilder[N]) CDATASectionAllowed() bool {
	if len(tb.stack) == 0 {
		return false
	}
	return !tb.adjustedCurrent().isHTML()
}

// parseCurrentToken runs the current token through the insertion modes
// until one of them consumes it.
func (tb *TreeBuilder[N]) parseCurrentToken() {
	consumed := false
	for !consumed {
		before := tb.mode
		if tb.inForeignContent() {
			consumed = tb.parseForeignContent()
		} else {
			consumed = tb.dispatch()
		}
		if tb.mode != before {
			tb.logger.Debug("insertion mode", "from", before, "to", tb.mode, "token", tb.tok.kind)
		}
	}
}

func (tb *TreeBuilder[N]) dispatch() bool {
	switch tb.mode {
	case Initial:
		return tb.initialIM()
	case BeforeHTML:
		return tb.beforeHTMLIM()
	case BeforeHead:
		return tb.beforeHeadIM()
	case InHead:
		return tb.inHeadIM()
	case InHeadNoscript:
		return tb.inHeadNoscriptIM()
	case AfterHead:
		return tb.afterHeadIM()
	case FramesetOK:
		return tb.framesetOKIM()
	case InBody:
		return tb.inBodyIM()
	case Text:
		return tb.textIM()
	case InTable:
		return tb.inTableIM()
	case InCaption:
		return tb.inCaptionIM()
	case InColumnGroup:
		return tb.inColumnGroupIM()
	case InTableBody:
		return tb.inTableBodyIM()
	case InRow:
		return tb.inRowIM()
	case InCell:
		return tb.inCellIM()
	case InSelect:
		return tb.inSelectIM()
	case InSelectInTable:
		return tb.inSelectInTableIM()
	case AfterBody:
		return tb.afterBodyIM()
	case InFrameset:
		return tb.inFramesetIM()
	case AfterFrameset:
		return tb.afterFramesetIM()
	case AfterAfterBody:
		return tb.afterAfterBodyIM()
	case AfterAfterFrameset:
		return tb.afterAfterFramesetIM()
	}
	tb.badState("unknown insertion mode " + tb.mode.String())
	return true
}

// bodyMode is the mode to go back to when content shows up after the body
// was closed.
func (tb *TreeBuilder[N]) bodyMode() InsertionMode {
	if tb.framesetOK {
		return FramesetOK
	}
	return InBody
}

// Section 13.2.4.1.
func (tb *TreeBuilder[N]) resetTheInsertionMode() {
	for i := len(tb.stack) - 1; i >= 0; i-- {
		e := tb.stack[i]
		name, ns := e.name, e.ns
		if i == 0 && tb.fragment {
			if tb.contextNS == NamespaceHTML && (tb.contextName == "td" || tb.contextName == "th") {
				tb.mode = tb.bodyMode()
				return
			}
			name, ns = tb.contextName, tb.contextNS
		}
		if ns != NamespaceHTML {
			tb.mode = tb.bodyMode()
			return
		}
		switch name {
		case "select":
			tb.mode = InSelect
		case "td", "th":
			tb.mode = InCell
		case "tr":
			tb.mode = InRow
		case "tbody", "thead", "tfoot":
			tb.mode = InTableBody
		case "caption":
			tb.mode = InCaption
		case "colgroup":
			tb.mode = InColumnGroup
		case "table":
			tb.mode = InTable
		case "head", "body":
			tb.mode = tb.bodyMode()
		case "frameset":
			tb.mode = InFrameset
		case "html":
			if tb.head == tb.zero {
				tb.mode = BeforeHead
			} else {
				tb.mode = AfterHead
			}
		default:
			if i == 0 {
				tb.mode = tb.bodyMode()
				return
			}
			continue
		}
		return
	}
}

// eof handles the end of input, possibly walking through several modes,
// then pops every open element.
func (tb *TreeBuilder[N]) eof() {
loop:
	for {
		switch tb.mode {
		case Initial:
			tb.errNoDoctype("End of file seen")
			tb.documentModeInternal(QuirksMode, "", "")
			tb.mode = BeforeHTML
		case BeforeHTML:
			tb.appendHTMLElementToDocumentAndPush(nil)
			tb.mode = BeforeHead
		case BeforeHead:
			tb.appendToCurrentNodeAndPushHeadElement(nil)
			tb.mode = InHead
		case InHead:
			if len(tb.stack) > 2 {
				tb.errEndWithUnclosedElements("End of file seen and there were open elements.")
			}
			for len(tb.stack) > 1 {
				tb.pop()
			}
			tb.mode = AfterHead
		case InHeadNoscript:
			tb.errEndWithUnclosedElements("End of file seen and there were open elements.")
			for len(tb.stack) > 2 {
				tb.pop()
			}
			tb.mode = InHead
		case AfterHead:
			tb.appendToCurrentNodeAndPushBodyElement(nil)
			tb.mode = InBody
		case InColumnGroup:
			if len(tb.stack) == 1 {
				break loop
			}
			tb.pop()
			tb.mode = InTable
		case FramesetOK, InCaption, InCell, InBody:
			for i := len(tb.stack) - 1; i >= 0; i-- {
				switch tb.stack[i].group() {
				case GroupDdDt, GroupLi, GroupP, GroupTbody, GroupTdTh, GroupBody, GroupHTML:
					continue
				}
				tb.errEndWithUnclosedElements("End of file seen and there were open elements.")
				break
			}
			break loop
		case Text:
			tb.err("End of file seen when expecting text or an end tag.")
			tb.errListUnclosedStartTags(0)
			if tb.originalMode == AfterHead {
				tb.pop()
			}
			tb.pop()
			tb.mode = tb.originalMode
		case InTableBody, InRow, InTable, InSelect, InSelectInTable, InFrameset:
			if len(tb.stack) > 1 {
				tb.errEndWithUnclosedElements("End of file seen and there were open elements.")
			}
			break loop
		default:
			break loop
		}
	}
	for len(tb.stack) > 1 {
		tb.pop()
	}
	if !tb.fragment && len(tb.stack) == 1 {
		tb.pop()
	}
}

func (tb *TreeBuilder[N]) documentModeInternal(m DocumentMode, publicID, systemID string) {
	tb.quirks = m == QuirksMode
	tb.logger.Debug("document mode", "mode", m)
	if tb.cfg.OnDocumentMode != nil {
		tb.cfg.OnDocumentMode(m, publicID, systemID)
	}
	if r, ok := tb.sink.(DocumentModeReceiver); ok {
		r.ReceiveDocumentMode(m, publicID, systemID)
	}
}

// checkDuplicateID reports an id attribute value that was already used.
func (tb *TreeBuilder[N]) checkDuplicateID(attrs *Attributes) {
	id, ok := attrs.ID()
	if !ok {
		return
	}
	first, seen := tb.ids[id]
	if !seen {
		tb.ids[id] = tb.span()
		return
	}
	tb.errf("Duplicate ID “%s”.", id)
	if tb.cfg.OnDiagnostic != nil {
		tb.cfg.OnDiagnostic(Diagnostic{
			Severity: SeverityWarning,
			Message:  "The first occurrence of ID “" + id + "” was here.",
			Span:     first,
		})
	}
}

// setTokenizerState is a no-op without a tokenizer, which is how tests
// drive the engine.
func (tb *TreeBuilder[N]) setTokenizerState(state LexState, name string) {
	if tb.tokenizer != nil {
		tb.tokenizer.SetState(state, name)
	}
}

// enterText switches to the text mode for an element with a text-only
// content model.
func (tb *TreeBuilder[N]) enterText(state LexState, name string) {
	tb.originalMode = tb.mode
	tb.mode = Text
	tb.setTokenizerState(state, name)
}

// closeTheCell closes the td or th at pos.
func (tb *TreeBuilder[N]) closeTheCell(pos int) {
	tb.generateImpliedEndTags()
	if pos != tb.currentPos() {
		tb.errUnclosedElementsCell(pos)
	}
	tb.popThrough(pos)
	tb.clearTheListOfActiveFormattingElementsUpToTheLastMarker()
	tb.mode = InRow
}

// implicitlyCloseP closes a p element in button scope.
func (tb *TreeBuilder[N]) implicitlyCloseP() {
	pos := tb.findLastInButtonScope(a.P)
	if pos == notFound {
		return
	}
	tb.generateImpliedEndTagsExceptFor(a.P)
	if pos != tb.currentPos() {
		tb.errUnclosedElementsImplied(pos, "p")
	}
	tb.popThrough(pos)
}

func (tb *TreeBuilder[N]) isCurrent(atom a.Atom) bool {
	return len(tb.stack) > 0 && tb.current().is(atom)
}

// addAttributesToHTML merges a stray <html> start tag into the root.
func (tb *TreeBuilder[N]) addAttributesToHTML(attrs *Attributes) {
	if tb.fragment || attrs.Len() == 0 {
		return
	}
	tb.sink.AddAttributesToElement(tb.stack[0].node, attrs)
}

// Element insertion. The "MayFoster" variants of the original algorithm are
// the insert* methods below; the append* ones always append to the current
// node.

func (tb *TreeBuilder[N]) appendHTMLElementToDocumentAndPush(attrs *Attributes) {
	if attrs == nil {
		attrs = NewAttributes()
	}
	node := tb.sink.CreateHTMLElementSetAsRoot(attrs)
	tb.push(newHTMLEntry(node, nameHTML, nil, tb.span()))
}

func (tb *TreeBuilder[N]) appendToCurrentNodeAndPushHeadElement(attrs *Attributes) {
	node := tb.sink.CreateElement(NamespaceHTML, "head", attrs, tb.zero)
	tb.sink.AppendElement(node, tb.current().node)
	tb.head = node
	tb.push(newHTMLEntry(node, nameHead, nil, tb.span()))
}

func (tb *TreeBuilder[N]) appendToCurrentNodeAndPushBodyElement(attrs *Attributes) {
	node := tb.sink.CreateElement(NamespaceHTML, "body", attrs, tb.zero)
	tb.sink.AppendElement(node, tb.current().node)
	tb.push(newHTMLEntry(node, nameBody, nil, tb.span()))
}

// pushHeadPointerOntoStack reopens the head for a head element that showed
// up after it was closed. It is invisible to the ElementObserver.
func (tb *TreeBuilder[N]) pushHeadPointerOntoStack() {
	if tb.head == tb.zero {
		tb.badState("head pointer is not set")
	}
	tb.silentPush(newHTMLEntry(tb.head, nameHead, nil, tb.span()))
}

// appendToCurrentNodeAndPushElement appends without foster parenting.
func (tb *TreeBuilder[N]) appendToCurrentNodeAndPushElement(elt ElementName, attrs *Attributes) {
	node := tb.sink.CreateElement(NamespaceHTML, elt.Name, attrs, tb.zero)
	tb.sink.AppendElement(node, tb.current().node)
	tb.push(newHTMLEntry(node, elt, nil, tb.span()))
}

// insertElement inserts an HTML element at the appropriate place and pushes
// it. Form-associated elements get the form pointer as their owner.
func (tb *TreeBuilder[N]) insertElement(elt ElementName, attrs *Attributes, formAssociated bool) {
	form := tb.zero
	if formAssociated {
		form = tb.form
	}
	node := tb.sink.CreateElement(NamespaceHTML, elt.Name, attrs, form)
	tb.insertNode(node)
	tb.push(newHTMLEntry(node, elt, nil, tb.span()))
}

func (tb *TreeBuilder[N]) insertFormElement(attrs *Attributes) {
	node := tb.sink.CreateElement(NamespaceHTML, "form", attrs, tb.zero)
	tb.insertNode(node)
	tb.form = node
	tb.push(newHTMLEntry(node, elementNameFor(a.Form), nil, tb.span()))
}

// insertFormattingElement also records the element in the list of active
// formatting elements, together with a copy of its attributes.
func (tb *TreeBuilder[N]) insertFormattingElement(elt ElementName, attrs *Attributes) {
	node := tb.sink.CreateElement(NamespaceHTML, elt.Name, attrs, tb.zero)
	tb.insertNode(node)
	e := newHTMLEntry(node, elt, attrs.Clone(), tb.span())
	tb.push(e)
	tb.appendToList(e)
}

// insertVoidElement inserts an element that is never pushed. The start
// tag's self-closing flag is acknowledged.
func (tb *TreeBuilder[N]) insertVoidElement(elt ElementName, attrs *Attributes, formAssociated bool) {
	form := tb.zero
	if formAssociated {
		form = tb.form
	}
	node := tb.sink.CreateElement(NamespaceHTML, elt.Name, attrs, form)
	tb.insertNode(node)
	if tb.observer != nil {
		tb.observer.ElementPushed(NamespaceHTML, elt.Name, node)
		tb.observer.ElementPopped(NamespaceHTML, elt.Name, node)
	}
	tb.tok.selfClosing = false
}

// insertForeignElement inserts an SVG or MathML element. Self-closing
// foreign elements are void.
func (tb *TreeBuilder[N]) insertForeignElement(ns string, elt ElementName, attrs *Attributes) {
	name := elt.Name
	if ns == NamespaceSVG {
		name = elt.CamelCase()
	}
	node := tb.sink.CreateElement(ns, name, attrs, tb.zero)
	tb.insertNode(node)
	e := newForeignEntry(node, ns, elt, name, attrs, tb.span())
	if !tb.tok.selfClosing {
		tb.push(e)
		// x/net style tokenizers switch to raw text by tag name; foreign
		// title, style and friends are ordinary elements.
		tb.setTokenizerState(Data, name)
		return
	}
	if tb.observer != nil {
		tb.observer.ElementPushed(ns, name, node)
		tb.observer.ElementPopped(ns, name, node)
	}
	tb.tok.selfClosing = false
}

// appendVoidElementToCurrent is insertVoidElement without foster parenting.
func (tb *TreeBuilder[N]) appendVoidElementToCurrent(elt ElementName, attrs *Attributes, formAssociated bool) {
	form := tb.zero
	if formAssociated {
		form = tb.form
	}
	node := tb.sink.CreateElement(NamespaceHTML, elt.Name, attrs, form)
	tb.sink.AppendElement(node, tb.current().node)
	if tb.observer != nil {
		tb.observer.ElementPushed(NamespaceHTML, elt.Name, node)
		tb.observer.ElementPopped(NamespaceHTML, elt.Name, node)
	}
	tb.tok.selfClosing = false
}

// appendVoidFormToCurrent handles <form> in a table: the form becomes the
// form owner of later controls but is never opened.
func (tb *TreeBuilder[N]) appendVoidFormToCurrent(attrs *Attributes) {
	node := tb.sink.CreateElement(NamespaceHTML, "form", attrs, tb.zero)
	tb.form = node
	tb.sink.AppendElement(node, tb.current().node)
	if tb.observer != nil {
		tb.observer.ElementPushed(NamespaceHTML, "form", node)
		tb.observer.ElementPopped(NamespaceHTML, "form", node)
	}
}
