package port

import "context"

// BlobStorage stores product images and resolves stored paths to
// client-retrievable URLs.
type BlobStorage interface {
	Upload(ctx context.Context, path string, data []byte) error
	URL(ctx context.Context, path string) (string, error)
}
