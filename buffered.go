package bamext

// NewBufferedRecordIterator keeps a look-ahead window of bufferSize records
// from which records are emitted in the requested order. It repairs streams
// that are only approximately sorted: a record may arrive up to bufferSize
// positions early and still be emitted in order. Records displaced further
// than the window will come out out of order.
func NewBufferedRecordIterator(ri RecordIterator, order Order, bufferSize int) RecordIterator {
	window := NewMerger(order)
	var lastErr error

	fill := func() {
		if lastErr != nil {
			return
		}
		rec, err := ri()
		if err != nil {
			lastErr = err
			return
		}
		window.Add(Entry{Record: rec})
	}

	// Bootstrap the window.
	for i := 0; i <= bufferSize && lastErr == nil; i++ {
		fill()
	}

	return func() (*Record, error) {
		defer fill()
		if window.IsEmpty() {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, ErrIteratorStop
		}
		return window.TakeFirst().Record, nil
	}
}
