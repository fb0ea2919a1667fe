package gzip_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/quantagen/bam-multireader-ext/gzip"
	"github.com/stretchr/testify/assert"
)

type closeRecorder struct {
	*bytes.Buffer
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestWriterAndReaderCascadeClose(t *testing.T) {
	assert := assert.New(t)

	sink := &closeRecorder{Buffer: &bytes.Buffer{}}
	w := gzip.NewWriter(sink)
	_, err := w.Write([]byte("hello alignment records"))
	assert.NoError(err)
	assert.NoError(w.Close())
	assert.True(sink.closed)

	src := &closeRecorder{Buffer: bytes.NewBuffer(sink.Bytes())}
	r, err := gzip.NewReader(src)
	assert.NoError(err)
	data, err := io.ReadAll(r)
	assert.NoError(err)
	assert.Equal("hello alignment records", string(data))
	assert.NoError(r.Close())
	assert.True(src.closed)
}
