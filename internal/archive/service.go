package archive

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/snapkeep/snapkeep/internal/storage"
)

const (
	// ConfirmationText is the fixed reply sent after an attachment is
	// durably saved.
	ConfirmationText = "Image saved"

	// AccessURLTTL bounds how long a shared access link stays valid.
	AccessURLTTL = 24 * time.Hour
)

// ContentFetcher retrieves attachment bytes from the messaging platform.
type ContentFetcher interface {
	FetchContent(ctx context.Context, messageID string) (data []byte, contentType string, err error)
}

// GroupNameResolver maps a group ID to a sanitized display name. ok is
// false when no name could be resolved and the caller should fall back to
// an identifier-based folder.
type GroupNameResolver interface {
	Resolve(ctx context.Context, groupID string) (name string, ok bool)
}

// Notifier delivers a best-effort confirmation. Implementations never
// propagate delivery failures.
type Notifier interface {
	Notify(ctx context.Context, replyToken string, source Source, text string)
}

// Service runs the per-attachment ingest pipeline: fetch bytes, derive the
// storage path, persist locally, mirror to object storage when configured,
// and send a confirmation. Every external call site is guarded; a failure
// is terminal for the current attachment only.
type Service struct {
	fetcher  ContentFetcher
	groups   GroupNameResolver
	local    storage.Store
	mirror   storage.Store
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates the ingest pipeline. mirror may be nil when object
// storage is not configured.
func NewService(log *slog.Logger, fetcher ContentFetcher, groups GroupNameResolver, local storage.Store, mirror storage.Store, notifier Notifier) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		fetcher:  fetcher,
		groups:   groups,
		local:    local,
		mirror:   mirror,
		notifier: notifier,
		logger:   log.With(slog.String("service", "archive")),
		now:      time.Now,
	}
}

// HandleImage processes one inbound image event. The returned error is for
// the caller's log only; the webhook response never depends on it.
func (s *Service) HandleImage(ctx context.Context, replyToken string, src Source, att Attachment) error {
	data, contentType, err := s.fetcher.FetchContent(ctx, att.MessageID)
	if err != nil {
		s.logger.Error("fetch content failed",
			slog.String("message_id", att.MessageID),
			slog.Any("error", err))
		return fmt.Errorf("fetch content: %w", err)
	}
	if att.ContentType == "" {
		att.ContentType = contentType
	}

	folder := s.folderFor(ctx, src)
	date := s.now().Format("2006-01-02")
	dir, filename := BuildPath(folder, date, att, data, s.now())
	relPath := path.Join(dir, filename)

	if err := s.local.Put(ctx, relPath, data); err != nil {
		s.logger.Error("save attachment failed",
			slog.String("path", relPath),
			slog.Any("error", err))
		return fmt.Errorf("save attachment: %w", err)
	}
	s.logger.Info("attachment saved",
		slog.String("path", relPath),
		slog.Int("bytes", len(data)),
		slog.String("source", string(src.Kind)))

	if s.mirror != nil {
		// Local copy is already durable; a failed mirror must not abort.
		if err := s.mirror.Put(ctx, relPath, data); err != nil {
			s.logger.Warn("mirror attachment failed",
				slog.String("path", relPath),
				slog.Any("error", err))
		}
	}

	// One reply per album, on its final item.
	if !att.Last() {
		return nil
	}
	s.notifier.Notify(ctx, replyToken, src, s.confirmationFor(relPath))
	return nil
}

// folderFor selects the conversation folder. Only groups get display-name
// resolution; rooms and users always use the identifier form.
func (s *Service) folderFor(ctx context.Context, src Source) string {
	switch src.Kind {
	case SourceGroup:
		if name, ok := s.groups.Resolve(ctx, src.ID); ok {
			return name
		}
		return src.FallbackFolder()
	case SourceRoom, SourceUser:
		return src.FallbackFolder()
	default:
		return fallbackFolder
	}
}

func (s *Service) confirmationFor(relPath string) string {
	if s.mirror == nil {
		return ConfirmationText
	}
	url, err := s.mirror.SignedURL(relPath, AccessURLTTL)
	if err != nil || url == "" {
		return ConfirmationText
	}
	return ConfirmationText + "\n" + url
}
