// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package treebuilder

import (
	a "golang.org/x/net/html/atom"
)

// The list of active formatting elements holds *stackEntry values shared
// with the stack of open elements. nil entries are markers, inserted when
// entering applet, object, marquee, td, th and caption elements so that
// formatting does not leak into them.

func (tb *TreeBuilder[N]) appendToList(e *stackEntry[N]) {
	tb.afe = append(tb.afe, e)
}

func (tb *TreeBuilder[N]) insertMarker() {
	tb.afe = append(tb.afe, nil)
}

// clearTheListOfActiveFormattingElementsUpToTheLastMarker pops entries up
// to and including the last marker.
func (tb *TreeBuilder[N]) clearTheListOfActiveFormattingElementsUpToTheLastMarker() {
	for len(tb.afe) > 0 {
		i := len(tb.afe) - 1
		e := tb.afe[i]
		tb.afe[i] = nil
		tb.afe = tb.afe[:i]
		if e == nil {
			return
		}
	}
}

func (tb *TreeBuilder[N]) removeFromList(pos int) {
	copy(tb.afe[pos:], tb.afe[pos+1:])
	tb.afe[len(tb.afe)-1] = nil
	tb.afe = tb.afe[:len(tb.afe)-1]
}

func (tb *TreeBuilder[N]) insertIntoList(e *stackEntry[N], pos int) {
	tb.afe = append(tb.afe, nil)
	copy(tb.afe[pos+1:], tb.afe[pos:])
	tb.afe[pos] = e
}

// listIndex returns the position of e in the list, or notFound.
func (tb *TreeBuilder[N]) listIndex(e *stackEntry[N]) int {
	for i := len(tb.afe) - 1; i >= 0; i-- {
		if tb.afe[i] == e {
			return i
		}
	}
	return notFound
}

// findInListAfterLastMarker returns the position of the last HTML formatting
// element with the atom that comes after the last marker, or notFound.
func (tb *TreeBuilder[N]) findInListAfterLastMarker(atom a.Atom) int {
	for i := len(tb.afe) - 1; i >= 0; i-- {
		e := tb.afe[i]
		if e == nil {
			return notFound
		}
		if e.is(atom) {
			return i
		}
	}
	return notFound
}

// maybeForgetEarlierDuplicateFormattingElement implements the Noah's Ark
// clause: if two entries identical to the one about to be added follow the
// last marker, the earliest of them is removed, so no more than two
// identical entries are ever on the list.
func (tb *TreeBuilder[N]) maybeForgetEarlierDuplicateFormattingElement(name string, attrs *Attributes) {
	candidate := notFound
	count := 0
	for i := len(tb.afe) - 1; i >= 0; i-- {
		e := tb.afe[i]
		if e == nil {
			break
		}
		if e.name == name && e.attrs.Equal(attrs) {
			candidate = i
			count++
		}
	}
	if count >= 2 {
		tb.removeFromList(candidate)
	}
}

// reconstructTheActiveFormattingElements reopens the formatting elements
// that were implicitly closed, such as the <b> in "<b><p>x</b>y".
func (tb *TreeBuilder[N]) reconstructTheActiveFormattingElements() {
	if len(tb.afe) == 0 {
		return
	}
	last := tb.afe[len(tb.afe)-1]
	if last == nil || tb.stackIndex(last) != notFound {
		return
	}

	// Rewind to the entry after the last marker or open element.
	i := len(tb.afe) - 1
	for i > 0 {
		i--
		if e := tb.afe[i]; e == nil || tb.stackIndex(e) != notFound {
			i++
			break
		}
	}

	// Advance, recreating every entry.
	for ; i < len(tb.afe); i++ {
		e := tb.afe[i]
		node := tb.sink.CreateElement(NamespaceHTML, e.name, e.attrs.Clone(), tb.zero)
		clone := e.clone(node)
		current := tb.current()
		if current.fosterParenting {
			tb.insertIntoFosterParent(node)
		} else {
			tb.sink.AppendElement(node, current.node)
		}
		tb.push(clone)
		tb.afe[i] = clone
	}
}
