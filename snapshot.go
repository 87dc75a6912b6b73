package treebuilder

// Snapshot is a saved copy of the tree builder state. It does not copy the
// tree: nodes are shared with the live sink.
//
// Snapshots are meant to be taken right after a script end tag, so a caller
// that runs the script can restore the state if the script's output forces a
// reparse.
type Snapshot[N comparable] struct {
	stack []*stackEntry[N]
	afe   []*stackEntry[N]

	form, head         N
	mode, originalMode InsertionMode
	framesetOK         bool
	needToDropLF       bool
	quirks             bool
	pendingTableText   string
}

// Snapshot captures the current state.
func (tb *TreeBuilder[N]) Snapshot() *Snapshot[N] {
	s := &Snapshot[N]{
		form:             tb.form,
		head:             tb.head,
		mode:             tb.mode,
		originalMode:     tb.originalMode,
		framesetOK:       tb.framesetOK,
		needToDropLF:     tb.needToDropLF,
		quirks:           tb.quirks,
		pendingTableText: tb.pendingTableText.String(),
	}
	s.stack, s.afe = copyEntries(tb.stack, tb.afe)
	return s
}

// SnapshotMatches reports whether the current state equals s, comparing
// open elements and formatting entries by node identity.
func (tb *TreeBuilder[N]) SnapshotMatches(s *Snapshot[N]) bool {
	if len(s.stack) != len(tb.stack) || len(s.afe) != len(tb.afe) ||
		s.form != tb.form || s.head != tb.head ||
		s.mode != tb.mode || s.originalMode != tb.originalMode ||
		s.framesetOK != tb.framesetOK || s.needToDropLF != tb.needToDropLF ||
		s.quirks != tb.quirks || s.pendingTableText != tb.pendingTableText.String() {
		return false
	}
	for i, e := range s.afe {
		live := tb.afe[i]
		if e == nil || live == nil {
			if e != live {
				return false
			}
			continue
		}
		if e.node != live.node {
			return false
		}
	}
	for i, e := range s.stack {
		if e.node != tb.stack[i].node {
			return false
		}
	}
	return true
}

// LoadSnapshot restores the state captured by s. s stays usable and may be
// loaded again.
func (tb *TreeBuilder[N]) LoadSnapshot(s *Snapshot[N]) {
	tb.stack, tb.afe = copyEntries(s.stack, s.afe)
	tb.form, tb.head = s.form, s.head
	tb.mode, tb.originalMode = s.mode, s.originalMode
	tb.framesetOK = s.framesetOK
	tb.needToDropLF = s.needToDropLF
	tb.quirks = s.quirks
	tb.pendingTableText.Reset()
	tb.pendingTableText.WriteString(s.pendingTableText)
	tb.logger.Debug("snapshot loaded", "mode", tb.mode, "open", len(tb.stack))
}

// copyEntries copies the stack and the formatting list. An entry that is in
// both is copied once, so the copies share it the way the originals do.
func copyEntries[N comparable](stack, afe []*stackEntry[N]) ([]*stackEntry[N], []*stackEntry[N]) {
	copies := make(map[*stackEntry[N]]*stackEntry[N], len(afe))
	afeCopy := make([]*stackEntry[N], len(afe))
	for i, e := range afe {
		if e == nil {
			continue
		}
		c := e.clone(e.node)
		copies[e] = c
		afeCopy[i] = c
	}
	stackCopy := make([]*stackEntry[N], len(stack))
	for i, e := range stack {
		if c, ok := copies[e]; ok {
			stackCopy[i] = c
			continue
		}
		c := *e
		c.attrs = nil
		stackCopy[i] = &c
	}
	return stackCopy, afeCopy
}
