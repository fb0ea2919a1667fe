package bamext

// unsortedMerger keeps entries in strict arrival order. It is the fallback
// when the source streams carry no ordering guarantee and the merge should
// behave as round-robin-by-arrival concatenation.
type unsortedMerger struct {
	entries []Entry
}

func (m *unsortedMerger) Add(e Entry) {
	m.entries = append(m.entries, e)
}

func (m *unsortedMerger) Clear() {
	m.entries = m.entries[:0]
}

func (m *unsortedMerger) First() Entry {
	if len(m.entries) == 0 {
		return Entry{}
	}
	return m.entries[0]
}

func (m *unsortedMerger) IsEmpty() bool {
	return len(m.entries) == 0
}

func (m *unsortedMerger) Remove(src Source) {
	if src == nil {
		return
	}
	path := src.Path()
	for i, e := range m.entries {
		if e.Source == nil || e.Source.Path() != path {
			continue
		}
		m.entries = append(m.entries[:i], m.entries[i+1:]...)
		return
	}
}

func (m *unsortedMerger) Size() int {
	return len(m.entries)
}

func (m *unsortedMerger) TakeFirst() Entry {
	if len(m.entries) == 0 {
		return Entry{}
	}
	first := m.entries[0]
	m.entries = m.entries[1:]
	return first
}
