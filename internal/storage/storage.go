// Package storage defines the interface for persisting image derivatives.
// The MinIO implementation works with any S3-compatible provider.
package storage

import "context"

// CacheForever is the cache directive attached to every derivative: one year,
// public.
const CacheForever = "public, max-age=31536000"

// Storage persists derivative objects.
type Storage interface {
	// Put writes data under key with the given content type and cache directive.
	Put(ctx context.Context, key, contentType, cacheControl string, data []byte) error
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}
