package bamext

import (
	"github.com/google/btree"
)

// coordinateItem keys an entry by (RefID, Position). The monotone seq gives
// equal keys a total order, so the btree behaves as a multimap whose equal
// keys iterate in arrival order.
type coordinateItem struct {
	refID    int
	position int
	seq      uint64
	entry    Entry
}

func (a coordinateItem) Less(other btree.Item) bool {
	b := other.(coordinateItem)

	// Unmapped alignments always sort after mapped ones; among themselves
	// they keep arrival order regardless of position.
	switch {
	case a.refID == UnmappedRefID && b.refID == UnmappedRefID:
		return a.seq < b.seq
	case a.refID == UnmappedRefID:
		return false
	case b.refID == UnmappedRefID:
		return true
	}

	if a.refID != b.refID {
		return a.refID < b.refID
	}
	if a.position != b.position {
		return a.position < b.position
	}
	return a.seq < b.seq
}

type coordinateMerger struct {
	tree *btree.BTree
	seq  uint64
}

func newCoordinateMerger() *coordinateMerger {
	return &coordinateMerger{tree: btree.New(btreeDegree)}
}

func (m *coordinateMerger) Add(e Entry) {
	m.seq++
	m.tree.ReplaceOrInsert(coordinateItem{
		refID:    e.Record.RefID,
		position: e.Record.Position,
		seq:      m.seq,
		entry:    e,
	})
}

func (m *coordinateMerger) Clear() {
	m.tree.Clear(false)
}

func (m *coordinateMerger) First() Entry {
	if item := m.tree.Min(); item != nil {
		return item.(coordinateItem).entry
	}
	return Entry{}
}

func (m *coordinateMerger) IsEmpty() bool {
	return m.tree.Len() == 0
}

func (m *coordinateMerger) Remove(src Source) {
	if src == nil {
		return
	}
	path := src.Path()

	var match btree.Item
	m.tree.Ascend(func(item btree.Item) bool {
		entry := item.(coordinateItem).entry
		if entry.Source == nil || entry.Source.Path() != path {
			return true
		}
		match = item
		return false
	})
	if match != nil {
		m.tree.Delete(match)
	}
}

func (m *coordinateMerger) Size() int {
	return m.tree.Len()
}

func (m *coordinateMerger) TakeFirst() Entry {
	if item := m.tree.DeleteMin(); item != nil {
		return item.(coordinateItem).entry
	}
	return Entry{}
}
