package bamext_test

import (
	"bytes"
	"regexp"
	"testing"

	bamext "github.com/quantagen/bam-multireader-ext"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"golang.org/x/net/context"
)

func gunzip(t *testing.T, data []byte) string {
	t.Helper()
	r, err := gzip.NewReader(bytes.NewReader(data))
	assert.NoError(t, err)
	out := &bytes.Buffer{}
	_, err = out.ReadFrom(r)
	assert.NoError(t, err)
	return out.String()
}

func TestStreamJSONRecordsPartitionsByRefID(t *testing.T) {
	assert := assert.New(t)

	wf := newMemWriterFactory()
	err := bamext.StreamJSONRecords(context.Background(), wf.factory, sliceIterator(
		coordRecord(0, 10),
		coordRecord(1, 5),
		coordRecord(0, 20),
	))
	assert.Equal(bamext.ErrIteratorStop, err)

	paths := wf.paths()
	assert.Len(paths, 2)
	pattern := regexp.MustCompile(`^refid=\d+/records_.+\.json\.gz$`)

	lines := 0
	for p, buf := range wf.buffers {
		assert.Regexp(pattern, p)
		content := gunzip(t, buf.Bytes())
		if p[:7] == "refid=0" {
			assert.Contains(content, `"position":10`)
			assert.Contains(content, `"position":20`)
		} else {
			assert.Contains(content, `"position":5`)
		}
		lines += bytes.Count([]byte(content), []byte("\n"))
	}
	assert.Equal(3, lines)
}

func TestWriteRecordsAsJSON(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	err := bamext.WriteRecordsAsJSON(sliceIterator(
		coordRecord(0, 1),
		coordRecord(0, 2),
	), out)
	assert.Equal(bamext.ErrIteratorStop, err)
	assert.Equal(
		`{"refid":0,"position":1}`+"\n"+`{"refid":0,"position":2}`+"\n",
		out.String())
}
