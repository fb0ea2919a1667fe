package gzip

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// Reader is a gzip reader whose Close also closes the underlying stream.
type Reader struct {
	*gzip.Reader
	underlyingReader io.ReadCloser
}

// NewReader acts like gzip.NewReader but Close is cascaded to r.
func NewReader(r io.ReadCloser) (*Reader, error) {
	gzReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &Reader{gzReader, r}, nil
}

func (gz *Reader) Close() error {
	if err := gz.Reader.Close(); err != nil {
		return err
	}
	if err := gz.underlyingReader.Close(); err != nil {
		return err
	}
	return nil
}
