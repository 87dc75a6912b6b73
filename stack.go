// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package treebuilder

import (
	"strings"

	a "golang.org/x/net/html/atom"
)

// notFound is returned by the scope searches when no element matched.
const notFound = -1

// stackEntry is an element on the stack of open elements. The list of active
// formatting elements points at the same entries; a nil entry in that list
// is a marker.
type stackEntry[N comparable] struct {
	node N
	ns   string
	// name is the local name the element was created with, camelCase for
	// adjusted SVG names.
	name string
	// popName is the name used in diagnostics.
	popName string
	elt     ElementName

	special              bool
	scoping              bool
	fosterParenting      bool
	htmlIntegrationPoint bool

	// attrs is only kept for formatting elements, which may be recreated.
	attrs *Attributes
	span  Span
}

func newHTMLEntry[N comparable](node N, elt ElementName, attrs *Attributes, span Span) *stackEntry[N] {
	return &stackEntry[N]{
		node:            node,
		ns:              NamespaceHTML,
		name:            elt.Name,
		popName:         elt.Name,
		elt:             elt,
		special:         elt.Special(),
		scoping:         elt.Scoping(),
		fosterParenting: elt.FosterParenting(),
		attrs:           attrs,
		span:            span,
	}
}

// newForeignEntry classifies an SVG or MathML element. Foreign entries never
// take part in group dispatch, see group.
func newForeignEntry[N comparable](node N, ns string, elt ElementName, name string, attrs *Attributes, span Span) *stackEntry[N] {
	e := &stackEntry[N]{
		node:    node,
		ns:      ns,
		name:    name,
		popName: name,
		elt:     elt,
		span:    span,
	}
	switch ns {
	case NamespaceMathML:
		switch elt.Group {
		case GroupMathText:
			e.special, e.scoping = true, true
		case GroupAnnotationXML:
			e.special, e.scoping = true, true
			enc, _ := attrs.Value("encoding")
			if strings.EqualFold(enc, "text/html") || strings.EqualFold(enc, "application/xhtml+xml") {
				e.htmlIntegrationPoint = true
			}
		}
	case NamespaceSVG:
		switch name {
		case "foreignObject", "desc", "title":
			e.special, e.scoping, e.htmlIntegrationPoint = true, true, true
		}
	}
	return e
}

func (e *stackEntry[N]) isHTML() bool {
	return e.ns == NamespaceHTML
}

// is reports whether e is the HTML element with the given atom.
func (e *stackEntry[N]) is(atom a.Atom) bool {
	return e.ns == NamespaceHTML && e.elt.Atom == atom
}

// group is the dispatch group of an HTML element and GroupOther for foreign
// ones.
func (e *stackEntry[N]) group() DispatchGroup {
	if e.ns != NamespaceHTML {
		return GroupOther
	}
	return e.elt.Group
}

// isMathMLTextIntegrationPoint covers mi, mo, mn, ms and mtext.
func (e *stackEntry[N]) isMathMLTextIntegrationPoint() bool {
	return e.ns == NamespaceMathML && e.elt.Group == GroupMathText
}

func (e *stackEntry[N]) isAnnotationXML() bool {
	return e.ns == NamespaceMathML && e.elt.Group == GroupAnnotationXML
}

// clone copies the entry for a new node, keeping a private attribute copy.
func (e *stackEntry[N]) clone(node N) *stackEntry[N] {
	c := *e
	c.node = node
	c.attrs = e.attrs.Clone()
	return &c
}

func (tb *TreeBuilder[N]) current() *stackEntry[N] {
	return tb.stack[len(tb.stack)-1]
}

// currentPos is the index of the current node, -1 for an empty stack.
func (tb *TreeBuilder[N]) currentPos() int {
	return len(tb.stack) - 1
}

func (tb *TreeBuilder[N]) push(e *stackEntry[N]) {
	tb.silentPush(e)
	if tb.observer != nil {
		tb.observer.ElementPushed(e.ns, e.popName, e.node)
	}
}

func (tb *TreeBuilder[N]) silentPush(e *stackEntry[N]) {
	tb.stack = append(tb.stack, e)
}

func (tb *TreeBuilder[N]) pop() {
	e := tb.silentPop()
	if tb.observer != nil {
		tb.observer.ElementPopped(e.ns, e.popName, e.node)
	}
}

func (tb *TreeBuilder[N]) silentPop() *stackEntry[N] {
	i := len(tb.stack) - 1
	if i < 0 {
		tb.badState("pop from an empty stack of open elements")
	}
	e := tb.stack[i]
	tb.stack[i] = nil
	tb.stack = tb.stack[:i]
	return e
}

// popThrough pops up to and including the element at pos.
func (tb *TreeBuilder[N]) popThrough(pos int) {
	for len(tb.stack) > pos {
		tb.pop()
	}
}

// clearStackBackTo pops until the element at pos is the current node.
func (tb *TreeBuilder[N]) clearStackBackTo(pos int) {
	for len(tb.stack)-1 > pos {
		tb.pop()
	}
}

// removeFromStack removes the element at pos, which need not be the current
// node.
func (tb *TreeBuilder[N]) removeFromStack(pos int) {
	e := tb.silentRemoveFromStack(pos)
	if tb.observer != nil {
		tb.observer.ElementPopped(e.ns, e.popName, e.node)
	}
}

func (tb *TreeBuilder[N]) silentRemoveFromStack(pos int) *stackEntry[N] {
	e := tb.stack[pos]
	copy(tb.stack[pos:], tb.stack[pos+1:])
	tb.stack[len(tb.stack)-1] = nil
	tb.stack = tb.stack[:len(tb.stack)-1]
	return e
}

// removeEntryFromStack removes e if it is on the stack.
func (tb *TreeBuilder[N]) removeEntryFromStack(e *stackEntry[N]) {
	if pos := tb.stackIndex(e); pos != notFound {
		tb.removeFromStack(pos)
	}
}

// silentInsertIntoStack inserts e at pos without telling the observer.
// Callers report the change with replayStack.
func (tb *TreeBuilder[N]) silentInsertIntoStack(e *stackEntry[N], pos int) {
	tb.stack = append(tb.stack, nil)
	copy(tb.stack[pos+1:], tb.stack[pos:])
	tb.stack[pos] = e
}

// replayStack reports a rearrangement of the stack from index from up, where before
// holds the entries that were there, as pops of the old entries followed by
// pushes of the new ones. Entries left in place at the bottom are skipped.
func (tb *TreeBuilder[N]) replayStack(from int, before []*stackEntry[N]) {
	if tb.observer == nil {
		return
	}
	same := 0
	for same < len(before) && from+same < len(tb.stack) && before[same] == tb.stack[from+same] {
		same++
	}
	for i := len(before) - 1; i >= same; i-- {
		e := before[i]
		tb.observer.ElementPopped(e.ns, e.popName, e.node)
	}
	for _, e := range tb.stack[from+same:] {
		tb.observer.ElementPushed(e.ns, e.popName, e.node)
	}
}

// stackIndex returns the index of the top-most occurrence of e, or notFound.
func (tb *TreeBuilder[N]) stackIndex(e *stackEntry[N]) int {
	for i := len(tb.stack) - 1; i >= 0; i-- {
		if tb.stack[i] == e {
			return i
		}
	}
	return notFound
}

// Scope searches. They walk from the current node down to, but not
// including, the root and stop at the boundary elements of the scope.

func (tb *TreeBuilder[N]) findLastInScope(atom a.Atom) int {
	for i := len(tb.stack) - 1; i > 0; i-- {
		e := tb.stack[i]
		if e.is(atom) {
			return i
		}
		if e.scoping {
			return notFound
		}
	}
	return notFound
}

func (tb *TreeBuilder[N]) findLastInButtonScope(atom a.Atom) int {
	for i := len(tb.stack) - 1; i > 0; i-- {
		e := tb.stack[i]
		if e.is(atom) {
			return i
		}
		if e.scoping || e.is(a.Button) {
			return notFound
		}
	}
	return notFound
}

func (tb *TreeBuilder[N]) findLastInListScope(atom a.Atom) int {
	for i := len(tb.stack) - 1; i > 0; i-- {
		e := tb.stack[i]
		if e.is(atom) {
			return i
		}
		if e.scoping || e.is(a.Ul) || e.is(a.Ol) {
			return notFound
		}
	}
	return notFound
}

func (tb *TreeBuilder[N]) findLastInTableScope(atom a.Atom) int {
	for i := len(tb.stack) - 1; i > 0; i-- {
		e := tb.stack[i]
		if e.is(atom) {
			return i
		}
		if e.is(a.Table) {
			return notFound
		}
	}
	return notFound
}

// findLastInScopeHn finds any of h1 to h6.
func (tb *TreeBuilder[N]) findLastInScopeHn() int {
	for i := len(tb.stack) - 1; i > 0; i-- {
		e := tb.stack[i]
		if e.group() == GroupHeading {
			return i
		}
		if e.scoping {
			return notFound
		}
	}
	return notFound
}

func (tb *TreeBuilder[N]) findLastInTableScopeTdTh() int {
	for i := len(tb.stack) - 1; i > 0; i-- {
		e := tb.stack[i]
		if e.group() == GroupTdTh {
			return i
		}
		if e.is(a.Table) {
			return notFound
		}
	}
	return notFound
}

// findLastInTableScopeOrRootTbodyTheadTfoot returns the top-most table
// section, or 0.
func (tb *TreeBuilder[N]) findLastInTableScopeOrRootTbodyTheadTfoot() int {
	for i := len(tb.stack) - 1; i > 0; i-- {
		if tb.stack[i].group() == GroupTbody {
			return i
		}
	}
	return 0
}

// findLastOrRoot returns the top-most HTML element with the atom, or 0.
func (tb *TreeBuilder[N]) findLastOrRoot(atom a.Atom) int {
	for i := len(tb.stack) - 1; i > 0; i-- {
		if tb.stack[i].is(atom) {
			return i
		}
	}
	return 0
}

// findLast ignores scope boundaries.
func (tb *TreeBuilder[N]) findLast(atom a.Atom) int {
	for i := len(tb.stack) - 1; i > 0; i-- {
		if tb.stack[i].is(atom) {
			return i
		}
	}
	return notFound
}

// isSecondOnStackBody reports whether the body element is open at its
// usual place.
func (tb *TreeBuilder[N]) isSecondOnStackBody() bool {
	return len(tb.stack) > 1 && tb.stack[1].is(a.Body)
}

// generateImpliedEndTags pops elements that may be closed implicitly.
func (tb *TreeBuilder[N]) generateImpliedEndTags() {
	tb.generateImpliedEndTagsExceptFor(0)
}

// generateImpliedEndTagsExceptFor is generateImpliedEndTags except that it
// stops at an element with the given atom.
func (tb *TreeBuilder[N]) generateImpliedEndTagsExceptFor(except a.Atom) {
	for len(tb.stack) > 0 {
		e := tb.current()
		switch e.group() {
		case GroupP, GroupLi, GroupDdDt, GroupOption, GroupOptgroup, GroupRtRp:
			if except != 0 && e.is(except) {
				return
			}
			tb.pop()
			continue
		}
		return
	}
}
