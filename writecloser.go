package bamext

import (
	"io"
)

// WriteCloser is the combination of a writer and closer.
type WriteCloser interface {
	io.Writer
	Close() error
}

// NopWriteCloser adds a NOP Close method to any writer.
type NopWriteCloser struct {
	io.Writer
}

// Close is a NOP
func (nc NopWriteCloser) Close() error {
	return nil
}

// WriterCloserCallback wraps the Write() method of a write closer with a
// callback that is invoked before each write. The callback has no effect on
// the operation except adding a blocking delay.
type WriterCloserCallback struct {
	WriteCloser
	interceptor func()
}

var _ io.Writer = &WriterCloserCallback{}

// NewWriterCloserCallback returns wc with interceptor hooked in front of
// every Write call.
func NewWriterCloserCallback(wc WriteCloser, interceptor func()) WriteCloser {
	return &WriterCloserCallback{wc, interceptor}
}

func (iwc *WriterCloserCallback) Write(p []byte) (n int, err error) {
	iwc.interceptor()
	return iwc.WriteCloser.Write(p)
}
