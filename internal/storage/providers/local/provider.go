package local

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/snapkeep/snapkeep/internal/storage"
)

// Store persists attachments on the local filesystem under a root
// directory.
type Store struct {
	root   string
	logger *slog.Logger
}

// New creates a local store rooted at dir, creating it if absent.
func New(log *slog.Logger, dir string) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	if dir == "" {
		return nil, fmt.Errorf("local store: root dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Store{
		root:   dir,
		logger: log.With(slog.String("store", "local")),
	}, nil
}

func (s *Store) Put(ctx context.Context, relPath string, data []byte) error {
	full := filepath.Join(s.root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	dir := filepath.Join(s.root, filepath.FromSlash(prefix))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir: %w", err)
	}
	infos := make([]storage.ObjectInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, storage.ObjectInfo{
			Name:    entry.Name(),
			Path:    path.Join(prefix, entry.Name()),
			Size:    fi.Size(),
			Updated: fi.ModTime().UTC(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (s *Store) ListFolders(ctx context.Context, prefix string) ([]string, error) {
	dir := filepath.Join(s.root, filepath.FromSlash(prefix))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir: %w", err)
	}
	folders := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			folders = append(folders, entry.Name())
		}
	}
	sort.Strings(folders)
	return folders, nil
}

// SignedURL is not supported on local disk; callers fall back to the
// filesystem path from AccessPath.
func (s *Store) SignedURL(relPath string, ttl time.Duration) (string, error) {
	return "", storage.ErrNotSupported
}

func (s *Store) AccessPath(relPath string) string {
	return filepath.Join(s.root, filepath.FromSlash(relPath))
}
