package bamext

import (
	"github.com/google/btree"
)

const btreeDegree = 16

type nameItem struct {
	name  string
	seq   uint64
	entry Entry
}

func (a nameItem) Less(other btree.Item) bool {
	b := other.(nameItem)
	if a.name != b.name {
		return a.name < b.name
	}
	return a.seq < b.seq
}

type nameMerger struct {
	tree *btree.BTree
	seq  uint64
}

func newNameMerger() *nameMerger {
	return &nameMerger{tree: btree.New(btreeDegree)}
}

// Add buffers the entry keyed by its materialized read name. A record whose
// name cannot be materialized has no usable key and is dropped without
// signalling the caller.
func (m *nameMerger) Add(e Entry) {
	name, err := e.Record.Name()
	if err != nil {
		return
	}
	m.seq++
	m.tree.ReplaceOrInsert(nameItem{
		name:  name,
		seq:   m.seq,
		entry: e,
	})
}

func (m *nameMerger) Clear() {
	m.tree.Clear(false)
}

func (m *nameMerger) First() Entry {
	if item := m.tree.Min(); item != nil {
		return item.(nameItem).entry
	}
	return Entry{}
}

func (m *nameMerger) IsEmpty() bool {
	return m.tree.Len() == 0
}

func (m *nameMerger) Remove(src Source) {
	if src == nil {
		return
	}
	path := src.Path()

	var match btree.Item
	m.tree.Ascend(func(item btree.Item) bool {
		entry := item.(nameItem).entry
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

func (m *nameMerger) Size() int {
	return m.tree.Len()
}

func (m *nameMerger) TakeFirst() Entry {
	if item := m.tree.DeleteMin(); item != nil {
		return item.(nameItem).entry
	}
	return Entry{}
}
