package gcs

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	gstorage "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/snapkeep/snapkeep/internal/storage"
)

// Store mirrors attachments into a Google Cloud Storage bucket under the
// same relative layout the local store uses.
type Store struct {
	client *gstorage.Client
	bucket string
	logger *slog.Logger
}

// New creates a GCS-backed store. Credentials come from the ambient
// application-default environment.
func New(ctx context.Context, log *slog.Logger, bucket string) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	if bucket == "" {
		return nil, fmt.Errorf("gcs store: bucket is required")
	}
	client, err := gstorage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &Store{
		client: client,
		bucket: bucket,
		logger: log.With(slog.String("store", "gcs"), slog.String("bucket", bucket)),
	}, nil
}

func (s *Store) Put(ctx context.Context, relPath string, data []byte) error {
	w := s.client.Bucket(s.bucket).Object(relPath).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs write %s: %w", relPath, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs close %s: %w", relPath, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &gstorage.Query{
		Prefix:    normalizePrefix(prefix),
		Delimiter: "/",
	})
	var infos []storage.ObjectInfo
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gcs list %s: %w", prefix, err)
		}
		if attrs.Name == "" {
			// Synthetic folder entry.
			continue
		}
		infos = append(infos, storage.ObjectInfo{
			Name:    path.Base(attrs.Name),
			Path:    attrs.Name,
			Size:    attrs.Size,
			Updated: attrs.Updated.UTC(),
		})
	}
	return infos, nil
}

func (s *Store) ListFolders(ctx context.Context, prefix string) ([]string, error) {
	base := normalizePrefix(prefix)
	it := s.client.Bucket(s.bucket).Objects(ctx, &gstorage.Query{
		Prefix:    base,
		Delimiter: "/",
	})
	var folders []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gcs list folders %s: %w", prefix, err)
		}
		if attrs.Prefix == "" {
			continue
		}
		folders = append(folders, strings.TrimSuffix(strings.TrimPrefix(attrs.Prefix, base), "/"))
	}
	return folders, nil
}

// SignedURL grants temporary read access via a V4 signed URL.
func (s *Store) SignedURL(relPath string, ttl time.Duration) (string, error) {
	url, err := s.client.Bucket(s.bucket).SignedURL(relPath, &gstorage.SignedURLOptions{
		Scheme:  gstorage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("gcs signed url %s: %w", relPath, err)
	}
	return url, nil
}

func (s *Store) AccessPath(relPath string) string {
	return "gs://" + s.bucket + "/" + relPath
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}
