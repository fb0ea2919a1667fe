package bamext_test

import (
	"bytes"
	"regexp"
	"sync"
	"testing"
	"time"

	bamext "github.com/quantagen/bam-multireader-ext"
	"github.com/stretchr/testify/assert"
	"golang.org/x/net/context"
)

// memWriterFactory collects everything written, keyed by the (substituted)
// path it was written under.
type memWriterFactory struct {
	mutex   sync.Mutex
	buffers map[string]*bytes.Buffer
}

func newMemWriterFactory() *memWriterFactory {
	return &memWriterFactory{buffers: map[string]*bytes.Buffer{}}
}

func (f *memWriterFactory) factory(path string) (bamext.WriteCloser, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	buf := &bytes.Buffer{}
	f.buffers[path] = buf
	return bamext.NopWriteCloser{Writer: buf}, nil
}

func (f *memWriterFactory) paths() []string {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	res := []string{}
	for p := range f.buffers {
		res = append(res, p)
	}
	return res
}

func TestMultiWriterCacheReusesWriters(t *testing.T) {
	assert := assert.New(t)

	wf := newMemWriterFactory()
	mwc := bamext.NewMultiWriterCache(context.Background(), wf.factory, time.Minute)

	n, err := mwc.Write("refid=0/records_{suffix}.json", []byte("one\n"))
	assert.NoError(err)
	assert.Equal(4, n)
	_, err = mwc.Write("refid=0/records_{suffix}.json", []byte("two\n"))
	assert.NoError(err)
	_, err = mwc.Write("refid=1/records_{suffix}.json", []byte("three\n"))
	assert.NoError(err)

	assert.NoError(mwc.Close())

	paths := wf.paths()
	assert.Len(paths, 2)
	suffixed := regexp.MustCompile(`^refid=\d+/records_\d+_\d+\.json$`)
	for _, p := range paths {
		assert.Regexp(suffixed, p)
	}

	for p, buf := range wf.buffers {
		if p[:7] == "refid=0" {
			assert.Equal("one\ntwo\n", buf.String())
		} else {
			assert.Equal("three\n", buf.String())
		}
	}
}

func TestMultiWriterCacheClosePath(t *testing.T) {
	assert := assert.New(t)

	wf := newMemWriterFactory()
	mwc := bamext.NewMultiWriterCache(context.Background(), wf.factory, time.Minute)

	_, err := mwc.Write("plain.txt", []byte("data"))
	assert.NoError(err)
	assert.NoError(mwc.ClosePath("plain.txt"))

	// Closing an unknown path is a no-op; a new write re-opens the path.
	assert.NoError(mwc.ClosePath("never-written"))
	_, err = mwc.Write("plain.txt", []byte("more"))
	assert.NoError(err)
	assert.NoError(mwc.Close())
}
