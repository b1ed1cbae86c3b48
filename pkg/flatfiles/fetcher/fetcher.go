package fetcher

import (
	"context"
	"time"
)

// ObjectInfo describes one object returned by a listing.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectFetcher retrieves flat files from remote storage.
type ObjectFetcher interface {
	// Fetch downloads the object stored under key.
	// Returns a NotFound error when the vendor has no file for the key (weekends, holidays),
	// an AuthError when the credentials are rejected and a TransientError otherwise.
	Fetch(ctx context.Context, key string) ([]byte, error)
	// List returns every object whose key starts with prefix, in the order the store returns them.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
