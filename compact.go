package bamext

import (
	"io"
	"log"
	"net/http"
	"path"
	"strings"

	"github.com/quantagen/bam-multireader-ext/gzip"

	"cloud.google.com/go/storage"
	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"golang.org/x/net/context"
	"google.golang.org/api/googleapi"
)

const compactMaxRetries = 4

// CompactBucketRecords merges all alignment record objects picked up by the
// prefix + predicate into one sorted object named prefix/destinationName.
// Each input object must already be sorted under the requested order. If the
// destination name carries a .gz suffix the contents will be gzipped newline
// JSON. Records already present in the destination are carried over into the
// merge, guarded by a generation precondition: concurrent writers trigger a
// retry of the whole compaction.
//
// With removeSrcOnSuccess the input objects (and only those) are deleted
// after the destination has been committed.
func CompactBucketRecords(
	ctx context.Context,
	bucket *storage.BucketHandle,
	prefix string,
	destinationName string,
	order Order,
	srcPredicate func(*storage.ObjectAttrs) bool,
	removeSrcOnSuccess bool,
) error {
	if srcPredicate == nil {
		srcPredicate = func(_ *storage.ObjectAttrs) bool { return true }
	}

	dstPath := path.Join(prefix, destinationName)

	attempt := func() error {
		// Log all files we process so we know what we later can delete; the
		// destination is never a source of its own compaction.
		shouldDeleteOnSuccess := []*storage.ObjectAttrs{}
		srcPredicateWithLog := func(obj *storage.ObjectAttrs) bool {
			if obj.Name == dstPath {
				return false
			}
			res := srcPredicate(obj)
			if res {
				shouldDeleteOnSuccess = append(shouldDeleteOnSuccess, obj)
			}
			return res
		}
		canDeletePredicate := func(obj *storage.ObjectAttrs) bool {
			for _, o := range shouldDeleteOnSuccess {
				if obj.Name == o.Name && obj.Name != dstPath {
					return true
				}
			}
			return false
		}

		sources, err := SourcesFromBucket(ctx, bucket, prefix, srcPredicateWithLog)
		if err != nil {
			return backoff.Permanent(err)
		}
		if len(sources) == 0 {
			return nil
		}

		existingReader, gcsWriter, err := getFixedGenerationReadWriters(ctx, bucket, dstPath)
		if err != nil {
			_ = CloseSources(sources...)
			return backoff.Permanent(err)
		}
		sources = append(sources, JSONRecordSource(dstPath, existingReader))

		it, err := MergedRecordIterator(order, sources...)
		if err != nil {
			_ = CloseSources(sources...)
			return backoff.Permanent(errors.Wrap(err, "failed to prime merge over record sources"))
		}

		if err = WriteRecordsAsJSON(it, gcsWriter); err != nil && err != ErrIteratorStop {
			_ = CloseSources(sources...)
			return backoff.Permanent(errors.Wrap(err, "failed to write JSON records to destination"))
		}

		// Here we can get precondition errors; errors we can retry on
		if err = gcsWriter.Close(); err != nil {
			if gerr, ok := err.(*googleapi.Error); ok &&
				(gerr.Code == http.StatusPreconditionFailed ||
					gerr.Code == http.StatusTooManyRequests) {
				log.Printf("Retrying compaction of %s: %v", dstPath, err)
				return err
			}
			return backoff.Permanent(err)
		}

		if removeSrcOnSuccess {
			return RemoveFolder(ctx, bucket, prefix, canDeletePredicate)
		}
		return nil
	}

	return backoff.Retry(attempt, backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), compactMaxRetries), ctx))
}

// getFixedGenerationReadWriters pins the destination object at its current
// generation: the reader sees exactly that generation and the writer only
// commits if the object hasn't changed since.
func getFixedGenerationReadWriters(
	ctx context.Context,
	bucket *storage.BucketHandle,
	dstPath string,
) (io.ReadCloser, io.WriteCloser, error) {
	// Ensure it exists first so we get a generation id
	dstHandle, err := TouchFile(ctx, bucket, dstPath)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to touch destination file")
	}
	attr, err := dstHandle.Attrs(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to get attributes for destination file")
	}

	// Create a reader at said generation; possibly gzip unpack it
	var existingReader io.ReadCloser
	existingReader, err = dstHandle.Generation(attr.Generation).NewReader(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open reader to existing sorted file")
	}
	if strings.HasSuffix(dstPath, ".gz") {
		existingReader, err = gzip.NewReader(existingReader)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to open gzip reader to existing sorted file even though the file has .gz suffix")
		}
	}

	// Create a writer but ensure we get precondition errors if the file has
	// changed from the current generation.
	var gcsWriter io.WriteCloser
	gcsWriter = dstHandle.If(storage.Conditions{GenerationMatch: attr.Generation}).NewWriter(ctx)
	if strings.HasSuffix(dstHandle.ObjectName(), ".gz") {
		gcsWriter = gzip.NewWriter(gcsWriter)
	}

	return existingReader, gcsWriter, nil
}
