package bamext

import (
	"encoding/json"
	"errors"
	"io"
)

var (
	// ErrIteratorStop is returned by RecordIterators and Sources when there
	// are no more records to be found.
	ErrIteratorStop = errors.New("no more records available in iterator")
)

// RecordIterator yields alignment records until ErrIteratorStop.
type RecordIterator func() (*Record, error)

// Source is an open, independently advancing stream of alignment records.
// Path() is the stable identity of the stream; two Source values represent
// the same logical stream iff their paths are equal, regardless of which
// handle value the caller holds.
type Source interface {
	// Path returns the canonical name of the underlying stream.
	Path() string

	// Next returns the next record, or ErrIteratorStop when drained.
	Next() (*Record, error)

	Close() error
}

// jsonSource decodes newline delimited JSON alignment records from a reader.
type jsonSource struct {
	path string
	r    io.Reader
	dec  *json.Decoder
}

// JSONRecordSource returns a Source reading newline delimited JSON records
// from r. The reader is closed (if it is a Closer) once drained or on Close.
func JSONRecordSource(path string, r io.Reader) Source {
	return &jsonSource{
		path: path,
		r:    r,
		dec:  json.NewDecoder(r),
	}
}

func (s *jsonSource) Path() string {
	return s.path
}

func (s *jsonSource) Next() (*Record, error) {
	if !s.dec.More() {
		_ = s.Close()
		return nil, ErrIteratorStop
	}
	rec := &Record{}
	if err := s.dec.Decode(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *jsonSource) Close() error {
	if closer, ok := s.r.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// CloseSources closes every source, continuing on error and returning any
// errors collected.
func CloseSources(sources ...Source) error {
	me := MultiError{}
	for _, src := range sources {
		if err := src.Close(); err != nil {
			me = append(me, err)
		}
	}
	return me.MaybeError()
}

// iteratorSource adapts a RecordIterator into a Source.
type iteratorSource struct {
	path string
	it   RecordIterator
}

// IteratorSource wraps a plain RecordIterator as a Source identified by path.
func IteratorSource(path string, it RecordIterator) Source {
	return &iteratorSource{path: path, it: it}
}

func (s *iteratorSource) Path() string { return s.path }

func (s *iteratorSource) Next() (*Record, error) { return s.it() }

func (s *iteratorSource) Close() error { return nil }
