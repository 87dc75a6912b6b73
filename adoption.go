// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package treebuilder

import (
	a "golang.org/x/net/html/atom"
)

// adoptionAgencyEndTag runs the adoption agency algorithm for a formatting
// end tag. It returns false if there is no matching formatting element, in
// which case the end tag is handled like any other end tag.
// https://html.spec.whatwg.org/multipage/parsing.html#adoption-agency-algorithm
func (tb *TreeBuilder[N]) adoptionAgencyEndTag(atom a.Atom, name string) bool {
	// Steps 1-3. The outer loop runs at most eight times.
	for outer := 0; outer < 8; outer++ {
		// Step 4. Find the formatting element.
		formattingEltListPos := tb.findInListAfterLastMarker(atom)
		if formattingEltListPos == notFound {
			return false
		}
		formattingElt := tb.afe[formattingEltListPos]

		// Steps 5-6. Look for it on the stack, noting whether it is in scope.
		formattingEltStackPos := len(tb.stack) - 1
		inScope := true
		for formattingEltStackPos > -1 {
			e := tb.stack[formattingEltStackPos]
			if e == formattingElt {
				break
			}
			if e.scoping {
				inScope = false
			}
			formattingEltStackPos--
		}
		if formattingEltStackPos == -1 {
			tb.errf("No element “%s” to close.", name)
			tb.removeFromList(formattingEltListPos)
			return true
		}
		if !inScope {
			tb.errf("No element “%s” to close.", name)
			return true
		}

		// Step 7. The tag is still handled, but it is an error.
		if formattingEltStackPos != len(tb.stack)-1 {
			tb.errf("End tag “%s” violates nesting rules.", name)
		}

		// Step 8. Find the furthest block.
		furthestBlockPos := formattingEltStackPos + 1
		for furthestBlockPos < len(tb.stack) {
			if tb.stack[furthestBlockPos].special {
				break
			}
			furthestBlockPos++
		}

		// Step 9. No furthest block: pop through the formatting element.
		if furthestBlockPos == len(tb.stack) {
			tb.popThrough(formattingEltStackPos)
			tb.removeFromList(formattingEltListPos)
			return true
		}

		// Steps 10-11.
		commonAncestor := tb.stack[formattingEltStackPos-1]
		furthestBlock := tb.stack[furthestBlockPos]
		bookmark := formattingEltListPos

		// The stack changes from formattingEltStackPos up are reported to the
		// observer in one go once they are done.
		var before []*stackEntry[N]
		if tb.observer != nil {
			before = append(before, tb.stack[formattingEltStackPos:]...)
		}

		// Step 12. The inner loop runs at most three times.
		nodePos := furthestBlockPos
		lastNode := furthestBlock
		for inner := 0; inner < 3; inner++ {
			nodePos--
			node := tb.stack[nodePos]
			if node == formattingElt {
				break
			}
			nodeListPos := tb.listIndex(node)
			if nodeListPos == notFound {
				// Not a formatting element: it is absorbed by the tree
				// rearrangement and only leaves the stack.
				tb.silentRemoveFromStack(nodePos)
				furthestBlockPos--
				continue
			}
			if lastNode == furthestBlock {
				bookmark = nodeListPos + 1
			}
			clone := tb.sink.CreateElement(NamespaceHTML, node.name, node.attrs.Clone(), tb.zero)
			newNode := node.clone(clone)
			tb.stack[nodePos] = newNode
			tb.afe[nodeListPos] = newNode
			tb.sink.DetachFromParent(lastNode.node)
			tb.sink.AppendElement(lastNode.node, clone)
			lastNode = newNode
		}

		// Step 13. Reparent lastNode, through foster parenting if needed.
		tb.sink.DetachFromParent(lastNode.node)
		if commonAncestor.fosterParenting {
			tb.insertIntoFosterParent(lastNode.node)
		} else {
			tb.sink.AppendElement(lastNode.node, commonAncestor.node)
		}

		// Steps 14-16. Move the furthest block's children into a clone of
		// the formatting element and make it the furthest block's child.
		clone := tb.sink.CreateElement(NamespaceHTML, formattingElt.name, formattingElt.attrs.Clone(), tb.zero)
		formattingClone := formattingElt.clone(clone)
		tb.sink.AppendChildrenToNewParent(furthestBlock.node, clone)
		tb.sink.AppendElement(clone, furthestBlock.node)

		// Step 17. Replace the formatting element in the list.
		if formattingEltListPos < bookmark {
			bookmark--
		}
		tb.removeFromList(formattingEltListPos)
		tb.insertIntoList(formattingClone, bookmark)

		// Step 18. Replace it on the stack, right above the furthest block.
		tb.silentRemoveFromStack(formattingEltStackPos)
		fb := tb.stackIndex(furthestBlock)
		if fb == notFound {
			tb.badState("adoption agency lost the furthest block")
		}
		tb.silentInsertIntoStack(formattingClone, fb+1)
		tb.replayStack(formattingEltStackPos, before)
	}
	return true
}
