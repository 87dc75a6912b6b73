// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package treebuilder

import (
	"strings"

	a "golang.org/x/net/html/atom"
)

// insertIntoFosterParent inserts child in front of the nearest open table,
// or appends it to the root if no table is open.
// Section 13.2.6.1, "foster parenting".
func (tb *TreeBuilder[N]) insertIntoFosterParent(child N) {
	pos := tb.findLastOrRoot(a.Table)
	if pos == 0 {
		tb.sink.AppendElement(child, tb.stack[0].node)
		return
	}
	tb.sink.InsertFosterParentedChild(child, tb.stack[pos].node, tb.stack[pos-1].node)
}

// insertCharactersIntoFosterParent is insertIntoFosterParent for text.
func (tb *TreeBuilder[N]) insertCharactersIntoFosterParent(text string) {
	pos := tb.findLastOrRoot(a.Table)
	if pos == 0 {
		tb.sink.AppendCharacters(tb.stack[0].node, text)
		return
	}
	tb.sink.InsertFosterParentedCharacters(text, tb.stack[pos].node, tb.stack[pos-1].node)
}

// insertNode appends an element to the current node, or foster parents it
// when the current node is a table, tbody, thead, tfoot or tr.
func (tb *TreeBuilder[N]) insertNode(node N) {
	current := tb.current()
	if current.fosterParenting {
		tb.insertIntoFosterParent(node)
		return
	}
	tb.sink.AppendElement(node, current.node)
}

// accumulateTableText buffers character tokens seen in the table modes.
// They are flushed by the next token of any other kind.
func (tb *TreeBuilder[N]) accumulateTableText(text string) {
	tb.pendingTableText.WriteString(text)
}

// flushCharacters inserts buffered table text. Whitespace stays in the
// table; anything else is misplaced and foster parented.
func (tb *TreeBuilder[N]) flushCharacters() {
	if tb.pendingTableText.Len() == 0 {
		return
	}
	text := tb.pendingTableText.String()
	tb.pendingTableText.Reset()

	if strings.Trim(text, whitespace) == "" {
		tb.sink.AppendCharacters(tb.current().node, text)
		return
	}
	tb.err("Misplaced non-space characters inside a table.")
	tb.reconstructTheActiveFormattingElements()
	if !tb.current().fosterParenting {
		tb.sink.AppendCharacters(tb.current().node, text)
		return
	}
	tb.insertCharactersIntoFosterParent(text)
}
