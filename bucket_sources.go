package bamext

import (
	"io"
	"strings"

	"github.com/quantagen/bam-multireader-ext/gzip"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"golang.org/x/net/context"
	"google.golang.org/api/iterator"
)

// gcsObjectIteratorToReaderIterator wraps common functionality: walks an
// object iterator and yields (name, reader) tuples for objects passing the
// predicate, transparently unpacking .gz objects.
func gcsObjectIteratorToReaderIterator(
	ctx context.Context,
	bucket *storage.BucketHandle,
	it *storage.ObjectIterator,
	predicate func(*storage.ObjectAttrs) bool,
) func() (string, io.ReadCloser, error) {
	var readerIterator func() (string, io.ReadCloser, error)
	readerIterator = func() (string, io.ReadCloser, error) {
		var or io.ReadCloser
		objAttr, err := it.Next()
		if err != nil {
			return "", nil, err
		}
		if !predicate(objAttr) {
			return readerIterator() // works as continue inside an iterator
		}

		or, err = bucket.Object(objAttr.Name).NewReader(ctx)
		if err != nil {
			return "", nil, err
		}

		if strings.HasSuffix(objAttr.Name, ".gz") {
			or, err = gzip.NewReader(or)
			if err != nil {
				return "", nil, err
			}
		}

		return objAttr.Name, or, nil
	}
	return readerIterator
}

// SourcesFromBucket opens every object under prefix that passes the
// predicate as one record Source of newline delimited JSON alignment
// records. The object name is the source's stable identity. A nil predicate
// keeps everything; virtual folder placeholders are always skipped.
func SourcesFromBucket(
	ctx context.Context,
	bucket *storage.BucketHandle,
	prefix string,
	predicate func(*storage.ObjectAttrs) bool,
) ([]Source, error) {
	if predicate == nil {
		predicate = func(_ *storage.ObjectAttrs) bool { return true }
	}
	predicate = CombineFilters(predicate, FilterOutVirtualGcsFolders)

	it := bucket.Objects(ctx, &storage.Query{
		Delimiter: "",
		Prefix:    prefix,
		Versions:  false,
	})

	readerIterator := gcsObjectIteratorToReaderIterator(ctx, bucket, it, predicate)

	sources := []Source{}
	for {
		name, reader, err := readerIterator()
		if err == iterator.Done {
			break
		}
		if err != nil {
			_ = CloseSources(sources...)
			return nil, errors.Wrapf(err, "failed to open record source under %q", prefix)
		}
		sources = append(sources, JSONRecordSource(name, reader))
	}
	return sources, nil
}

// MergedRecordsByPrefix opens every record object under prefix and returns
// one iterator yielding all their records in the requested global order.
// Each object must already be sorted under that order for the merge to hold.
func MergedRecordsByPrefix(
	ctx context.Context,
	bucket *storage.BucketHandle,
	prefix string,
	order Order,
	predicate func(*storage.ObjectAttrs) bool,
) (RecordIterator, error) {
	sources, err := SourcesFromBucket(ctx, bucket, prefix, predicate)
	if err != nil {
		return nil, err
	}
	return MergedRecordIterator(order, sources...)
}
