package service

import (
	"context"
	"io"
)

// Uploader stores a binary blob with an external media host and returns a
// durable URL.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, folder string, publicID string) (string, error)
	Delete(ctx context.Context, publicID string) error
}
