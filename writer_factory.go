package bamext

import (
	"path"

	"cloud.google.com/go/storage"

	"golang.org/x/net/context"
)

// WriterFactory creates writers for paths; most often backed by a bucket.
type WriterFactory func(path string) (wc WriteCloser, err error)

// WithPrefix returns a WriterFactory that roots all paths under prefix.
func (wf WriterFactory) WithPrefix(prefix string) WriterFactory {
	return func(p string) (WriteCloser, error) {
		return wf(path.Join(prefix, p))
	}
}

// GetGCSWriterFactory returns a writer factory backed by GCS.
func GetGCSWriterFactory(ctx context.Context, bucket *storage.BucketHandle) WriterFactory {
	return func(filePath string) (wc WriteCloser, err error) {
		return bucket.Object(path.Clean(filePath)).NewWriter(ctx), nil
	}
}
