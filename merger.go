package bamext

// Order selects the global ordering a Merger maintains over buffered entries.
type Order int

const (
	// OrderByCoordinate sorts by (RefID, Position) with unmapped records last.
	OrderByCoordinate Order = iota

	// OrderByName sorts lexicographically by read name.
	OrderByName

	// OrderUnsorted keeps strict insertion (FIFO) order.
	OrderUnsorted
)

// Entry pairs a source with the head record it is currently offering.
// The merger holds the record by reference only; the caller must keep the
// record and the source alive until the entry is taken or removed.
type Entry struct {
	Source Source
	Record *Record
}

// Merger buffers one pending record per source and yields them in a global
// order. It is a plain in-memory bookkeeping structure: no I/O, not safe for
// concurrent use.
//
// First and TakeFirst require a non-empty merger; callers must guard with
// IsEmpty or Size. On an empty merger both return the zero Entry.
type Merger interface {
	// Add buffers an entry. The caller is responsible for keeping at most
	// one buffered entry per source.
	Add(e Entry)

	// Clear drops all buffered entries.
	Clear()

	// First returns the least entry under the active order without
	// removing it.
	First() Entry

	IsEmpty() bool

	// Remove drops the first buffered entry whose source path matches
	// src's. A nil src or an unknown path is a no-op.
	Remove(src Source)

	Size() int

	// TakeFirst removes and returns the least entry under the active order.
	TakeFirst() Entry
}

// NewMerger returns a Merger maintaining the requested order.
func NewMerger(order Order) Merger {
	switch order {
	case OrderByName:
		return newNameMerger()
	case OrderUnsorted:
		return &unsortedMerger{}
	default:
		return newCoordinateMerger()
	}
}
