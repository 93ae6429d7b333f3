package staging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"sagafalabella/scraper/internal/domain"
)

// GCSStore keeps artifacts as objects of a single bucket. The logical path,
// without its leading slash, is the object name.
type GCSStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

func NewGCSStore(client *storage.Client, bucket string) *GCSStore {
	return &GCSStore{
		client: client,
		bucket: client.Bucket(bucket),
	}
}

func objectName(p string) string {
	return strings.TrimPrefix(p, "/")
}

func (s *GCSStore) Put(ctx context.Context, p string, data []byte) error {
	w := s.bucket.Object(objectName(p)).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write gcs object %s: %w", p, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize gcs object %s: %w", p, err)
	}
	return nil
}

func (s *GCSStore) Get(ctx context.Context, p string) ([]byte, error) {
	r, err := s.bucket.Object(objectName(p)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, p)
		}
		return nil, fmt.Errorf("open gcs object %s: %w", p, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read gcs object %s: %w", p, err)
	}
	return data, nil
}

func (s *GCSStore) List(ctx context.Context, dir string) ([]string, error) {
	prefix := objectName(strings.TrimSuffix(dir, "/")) + "/"
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix, Delimiter: "/"})

	var paths []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list gcs prefix %s: %w", prefix, err)
		}
		if attrs.Name == "" {
			// synthetic directory entry
			continue
		}
		paths = append(paths, "/"+attrs.Name)
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *GCSStore) Delete(ctx context.Context, p string) error {
	err := s.bucket.Object(objectName(p)).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete gcs object %s: %w", p, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
