package data

import (
	"context"
	"strings"

	"github.com/livingdw67/ira-analysis/internal/resolve"
)

// Store is a read-only dataset store: everything the resolver needs plus the
// ability to fetch a file's bytes.
type Store interface {
	resolve.Lister
	ReadFile(ctx context.Context, p string) ([]byte, error)
}

// IsRemote reports whether root should be served from object storage.
// "s3://bucket/prefix" is remote; anything else is a local path.
func IsRemote(root string) bool {
	return strings.HasPrefix(root, "s3://")
}

// TrimScheme strips the s3:// scheme so the first path segment is the bucket.
func TrimScheme(root string) string {
	return strings.TrimPrefix(root, "s3://")
}
