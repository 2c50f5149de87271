package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotSupported is returned by backends that cannot implement an
// operation (e.g. signed URLs on local disk).
var ErrNotSupported = errors.New("storage: operation not supported")

// ObjectInfo describes one stored attachment as seen by the read API.
type ObjectInfo struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	Updated time.Time `json:"updated"`
}

// Store abstracts attachment persistence. Paths are slash-separated and
// relative to the backend's root (directory or bucket); the same relative
// layout is used by every backend so local and mirrored deployments stay
// interchangeable.
type Store interface {
	// Put writes data under relPath, creating parents as needed.
	Put(ctx context.Context, relPath string, data []byte) error
	// List returns the objects directly under prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// ListFolders returns the immediate sub-folder names under prefix.
	ListFolders(ctx context.Context, prefix string) ([]string, error)
	// SignedURL returns a time-limited access URL for relPath, or
	// ErrNotSupported when the backend cannot grant one.
	SignedURL(relPath string, ttl time.Duration) (string, error)
	// AccessPath returns a backend-specific stable reference for relPath
	// (filesystem path, gs:// URI).
	AccessPath(relPath string) string
}
