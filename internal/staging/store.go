package staging

import "context"

// BlobStore keeps whole artifacts addressed by their logical datalake path.
// Get returns domain.ErrArtifactNotFound for a missing path; Delete of a
// missing path is not an error.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte) error
	Get(ctx context.Context, path string) ([]byte, error)
	List(ctx context.Context, dir string) ([]string, error)
	Delete(ctx context.Context, path string) error
}
