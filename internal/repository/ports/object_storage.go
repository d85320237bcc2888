package ports

import (
	"context"
	"io"
)

// ObjectStorage stores uploaded media and returns its public URL. An empty URL
// means the caller should build one from its configured public base.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error)
	Remove(ctx context.Context, bucket, objectName string) error
}
