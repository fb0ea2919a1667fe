package bamext

import (
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/context"

	"github.com/quantagen/bam-multireader-ext/gzip"
	"github.com/quantagen/bam-multireader-ext/hookedwritecloser"
)

// MultiWriterCache keeps an index of multiple writers, indexed by a string
// (most often a path). If a writer is requested and doesn't exist it gets
// created using the provided factory. Writers that aren't used for long
// enough are automatically closed.
type MultiWriterCache struct {
	ctxCancel      func()
	mutex          *sync.Mutex
	newStreamer    WriterFactory
	writers        map[string]WriteCloser
	ttl            time.Duration
	writersCreated int
}

// NewMultiWriterCache will dynamically open files for writing.
func NewMultiWriterCache(ctx context.Context, opener WriterFactory, ttl time.Duration) *MultiWriterCache {
	_, cancel := context.WithCancel(ctx)
	return &MultiWriterCache{
		ctxCancel:      cancel,
		mutex:          &sync.Mutex{},
		newStreamer:    opener,
		writers:        map[string]WriteCloser{},
		ttl:            ttl,
		writersCreated: 0,
	}
}

// Close closes all opened files; will continue on error and return all
// (if any) errors.
func (mfw *MultiWriterCache) Close() error {
	me := MultiError{}

	// Copy the keys since ClosePath mutates mfw.writers through close hooks.
	writercopy := map[string]WriteCloser{}
	mfw.mutex.Lock()
	for k, v := range mfw.writers {
		writercopy[k] = v
	}
	mfw.mutex.Unlock()

	for path := range writercopy {
		if err := mfw.ClosePath(path); err != nil && err != hookedwritecloser.ErrAlreadyClosed {
			me = append(me, err)
		}
	}
	mfw.ctxCancel()
	return me.MaybeError()
}

// ClosePath closes the writer registered under path, if any.
func (mfw *MultiWriterCache) ClosePath(path string) error {
	mfw.mutex.Lock()

	writer, ok := mfw.writers[path]
	if !ok {
		mfw.mutex.Unlock()
		return nil
	}
	mfw.mutex.Unlock()

	return writer.Close()
}

func (mfw *MultiWriterCache) getWriter(path string) (io.Writer, error) {
	mfw.mutex.Lock()
	defer mfw.mutex.Unlock()

	writer, ok := mfw.writers[path]
	if ok {
		return writer, nil
	}

	newSuffixedPath := strings.Replace(
		path,
		"{suffix}",
		strconv.Itoa(mfw.writersCreated)+"_"+strconv.Itoa(int(time.Now().Unix())),
		-1)

	writer, err := mfw.newStreamer(newSuffixedPath)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(newSuffixedPath, ".gz") {
		writer = gzip.NewWriter(writer)
	}
	mfw.writersCreated++

	// Make this writer self destruct
	hwc := hookedwritecloser.NewSelfDestructWriteCloser(
		writer,
		hookedwritecloser.WithMaxIdleTime(mfw.ttl),
	)
	// And when that happens, remove the reference to it.
	hwc.AddPreCloseHooks(func() {
		mfw.mutex.Lock()
		defer mfw.mutex.Unlock()

		delete(mfw.writers, path)
	})

	mfw.writers[path] = hwc
	return hwc, nil
}

// Write writes p to the writer registered under path, creating it on demand.
// If the path contains {suffix} it will be replaced by a unique counter +
// timestamp.
func (mfw *MultiWriterCache) Write(path string, p []byte) (int, error) {
	writer, err := mfw.getWriter(path)
	if err != nil {
		return 0, err
	}

	if n, err := writer.Write(p); err == nil {
		return n, nil
	} else if err == hookedwritecloser.ErrAlreadyClosed { // Make one race condition less likely
		log.Printf("Retrying write as ErrAlreadyClosed")
		return mfw.Write(path, p)
	} else {
		return n, err
	}
}
