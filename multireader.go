package bamext

import (
	"github.com/pkg/errors"
)

// MultiReader combines several record sources into one logically merged
// stream. Each source contributes one buffered head record at a time; the
// merger picks the globally least one under the chosen order, and the
// emitting source is re-fed with its next record.
//
// Sources pre-sorted by coordinate should be combined with
// OrderByCoordinate, name-sorted ones with OrderByName; OrderUnsorted
// concatenates round-robin by arrival. MultiReader is not safe for
// concurrent use.
type MultiReader struct {
	merger  Merger
	sources []Source
	primed  bool
	lastErr error
}

// NewMultiReader returns a MultiReader over the given sources. No records
// are read until the first NextRecord call.
func NewMultiReader(order Order, sources ...Source) *MultiReader {
	return &MultiReader{
		merger:  NewMerger(order),
		sources: sources,
	}
}

// prime buffers the first record of every source. Sources that are empty
// from the start simply never enter the merge.
func (mr *MultiReader) prime() error {
	mr.primed = true
	for _, src := range mr.sources {
		rec, err := src.Next()
		if err == ErrIteratorStop {
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "failed to read first record from %q", src.Path())
		}
		mr.merger.Add(Entry{Source: src, Record: rec})
	}
	return nil
}

// NextRecord returns the next record in merged order, or ErrIteratorStop
// once every source is drained. A record already taken from the merge is
// always returned; a failure to advance the emitting source surfaces on the
// following call and is sticky.
func (mr *MultiReader) NextRecord() (*Record, error) {
	if !mr.primed {
		if err := mr.prime(); err != nil {
			return nil, err
		}
	}
	if mr.lastErr != nil {
		return nil, mr.lastErr
	}

	if mr.merger.IsEmpty() {
		return nil, ErrIteratorStop
	}

	e := mr.merger.TakeFirst()

	next, err := e.Source.Next()
	if err == ErrIteratorStop {
		// Source drained; its slot is gone with the extraction.
	} else if err != nil {
		mr.lastErr = errors.Wrapf(err, "failed to advance source %q", e.Source.Path())
	} else {
		mr.merger.Add(Entry{Source: e.Source, Record: next})
	}

	return e.Record, nil
}

// CloseSource retires the source with the given path: its buffered entry is
// removed from the merge and the source is closed. Unknown paths are a no-op.
func (mr *MultiReader) CloseSource(path string) error {
	for i, src := range mr.sources {
		if src.Path() != path {
			continue
		}
		mr.merger.Remove(src)
		mr.sources = append(mr.sources[:i], mr.sources[i+1:]...)
		return src.Close()
	}
	return nil
}

// Pending returns the number of buffered head records.
func (mr *MultiReader) Pending() int {
	return mr.merger.Size()
}

// Close closes all sources, continuing on error and returning any errors
// collected.
func (mr *MultiReader) Close() error {
	me := MultiError{}
	for _, src := range mr.sources {
		if err := src.Close(); err != nil {
			me = append(me, err)
		}
	}
	mr.merger.Clear()
	mr.sources = nil
	return me.MaybeError()
}

// MergedRecordIterator combines a list of sources into a single iterator,
// always yielding the least record available under the requested order.
// All sources are primed eagerly so ordering errors surface here rather
// than on the first pull.
func MergedRecordIterator(order Order, sources ...Source) (RecordIterator, error) {
	mr := NewMultiReader(order, sources...)
	if err := mr.prime(); err != nil {
		return nil, err
	}
	return mr.NextRecord, nil
}
