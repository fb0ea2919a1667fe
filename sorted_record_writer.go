package bamext

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/quantagen/bam-multireader-ext/timeout"

	"github.com/google/btree"
)

// timeoutTree is a btree with idle timeout notifications which can be used
// for self destructs.
type timeoutTree struct {
	*btree.BTree
	*timeout.Timeout
}

func (tt *timeoutTree) ReplaceOrInsert(item btree.Item) btree.Item {
	tt.Ping()
	return tt.BTree.ReplaceOrInsert(item)
}

// SortedRecordWriter accepts alignment records in any order and emits runs
// that are each internally coordinate sorted (unmapped records last). Writes
// that are out of order relative to a run are routed to new runs so that
// order within each run is guaranteed.
type SortedRecordWriter struct {
	// Settings
	writeCallback   func(runID string, record *Record)
	cacheSizePerRun int
	cacheMaxIdle    time.Duration

	// State
	ctx         context.Context
	cancel      func()
	mutex       sync.Mutex
	runsCreated int
	seq         uint64
	runs        map[string]timeoutTree
}

// SortedRecordWriterOption represents an option applicable to SortedRecordWriter
type SortedRecordWriterOption func(*SortedRecordWriter) *SortedRecordWriter

// NewSortedRecordWriter returns a new SortedRecordWriter. writeCallback is
// invoked with each emitted record and the id of the run it belongs to.
func NewSortedRecordWriter(
	ctx context.Context,
	writeCallback func(runID string, record *Record),
	options ...SortedRecordWriterOption,
) *SortedRecordWriter {
	subCtx, cancel := context.WithCancel(ctx)
	r := &SortedRecordWriter{
		ctx:             subCtx,
		cancel:          cancel,
		mutex:           sync.Mutex{},
		cacheSizePerRun: 1000,
		cacheMaxIdle:    10 * time.Minute,
		writeCallback:   writeCallback,
		runs:            map[string]timeoutTree{},
	}

	for _, o := range options {
		r = o(r)
	}

	return r
}

// WithMaxCacheSize updates the default (1000) record limit per run buffer.
func WithMaxCacheSize(size int) SortedRecordWriterOption {
	return func(sw *SortedRecordWriter) *SortedRecordWriter {
		sw.cacheSizePerRun = size
		return sw
	}
}

// WithMaxCacheIdleTime updates the default (10 minute) idle timeout of runs.
func WithMaxCacheIdleTime(t time.Duration) SortedRecordWriterOption {
	return func(sw *SortedRecordWriter) *SortedRecordWriter {
		sw.cacheMaxIdle = t
		return sw
	}
}

// WriteRecord adds a record to a run buffer and potentially starts streaming
// records to the underlying writeCallback; will return an error if written
// after ctx.Done() or Close().
func (sw *SortedRecordWriter) WriteRecord(record *Record) error {
	sw.mutex.Lock()
	defer sw.mutex.Unlock()

	if err := sw.ctx.Err(); err != nil {
		return err
	}

	sw.seq++
	item := coordinateItem{
		refID:    record.RefID,
		position: record.Position,
		seq:      sw.seq,
		entry:    Entry{Record: record},
	}

	runID, tree := sw.insertIntoRun(item)
	if tree.Len() > sw.cacheSizePerRun {
		if least := tree.DeleteMin(); least != nil {
			sw.writeCallback(runID, least.(coordinateItem).entry.Record)
		}
	}
	return nil
}

// Close will stop SortedRecordWriter from accepting new writes; flush
// existing and return.
func (sw *SortedRecordWriter) Close() {
	sw.cancel()
	sw.Flush() // Just to block until all is flushed
}

// Flush will flush all existing runs but gives no guarantees that other runs
// can not be created during the flush. It is OK to continue writing after a
// flush.
func (sw *SortedRecordWriter) Flush() {
	// Make a copy of the keys so we avoid mutating a map we're iterating over
	keys := []string{}
	for key := range sw.runs {
		keys = append(keys, key)
	}

	for _, key := range keys {
		sw.closeRun(key)
	}
}

func (sw *SortedRecordWriter) closeRun(runID string) {
	sw.mutex.Lock()
	defer sw.mutex.Unlock()

	log.Printf("Closing sorter run @ %s", runID)

	tree, ok := sw.runs[runID]
	if !ok {
		return
	}

	for item := tree.DeleteMin(); item != nil; item = tree.DeleteMin() {
		sw.writeCallback(runID, item.(coordinateItem).entry.Record)
	}
	delete(sw.runs, runID)
}

func (sw *SortedRecordWriter) getNewRunID() string {
	sw.runsCreated++
	return fmt.Sprintf("i%06d_t%d", sw.runsCreated, time.Now().Unix())
}

func (sw *SortedRecordWriter) insertIntoRun(item coordinateItem) (string, timeoutTree) {
	// Find the first run this record can be appended to while keeping the
	// run's emitted prefix sorted.
	for runID, tree := range sw.runs {
		least := tree.Min()
		if least == nil || // Nothing buffered => OK
			least.Less(item) || // Larger than the least buffered value
			tree.Len() < (sw.cacheSizePerRun-2) { // Or nothing emitted from this run yet
			tree.ReplaceOrInsert(item)
			return runID, tree
		}
	}

	// Needs a new run
	runID := sw.getNewRunID()
	newTree := timeoutTree{
		BTree: btree.New(btreeDegree),
		Timeout: timeout.NewTimeout(sw.ctx, sw.cacheMaxIdle, true, func() {
			sw.closeRun(runID)
		}),
	}
	newTree.ReplaceOrInsert(item)

	// Save it for later.
	sw.runs[runID] = newTree
	return runID, newTree
}
