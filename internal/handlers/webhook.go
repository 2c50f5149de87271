package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/labstack/echo/v4"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/snapkeep/snapkeep/internal/archive"
)

// ImagePipeline processes one inbound image attachment end to end.
type ImagePipeline interface {
	HandleImage(ctx context.Context, replyToken string, src archive.Source, att archive.Attachment) error
}

const (
	signatureHeader = "X-Line-Signature"

	webhookMaxBodyBytes int64 = 1 << 20 // 1 MiB

	eventDedupSize = 2048
	eventDedupTTL  = 10 * time.Minute
)

// WebhookHandler receives LINE webhook callbacks. Only signature
// validation and the body size cap may produce a non-200 response: once
// the payload is authentic, decode and processing failures alike are
// swallowed behind 200 so the platform does not redeliver the same events
// indefinitely.
type WebhookHandler struct {
	logger        *slog.Logger
	channelSecret string
	pipeline      ImagePipeline
	seen          *lru.Cache[string, time.Time]
	now           func() time.Time
}

// NewWebhookHandler creates the webhook endpoint handler.
func NewWebhookHandler(log *slog.Logger, channelSecret string, pipeline ImagePipeline) *WebhookHandler {
	if log == nil {
		log = slog.Default()
	}
	seen, err := lru.New[string, time.Time](eventDedupSize)
	if err != nil {
		// lru.New only fails on a non-positive size.
		panic(err)
	}
	return &WebhookHandler{
		logger:        log.With(slog.String("handler", "webhook")),
		channelSecret: channelSecret,
		pipeline:      pipeline,
		seen:          seen,
		now:           time.Now,
	}
}

func (h *WebhookHandler) Register(e *echo.Echo) {
	e.POST("/callback", h.Handle)
}

// Handle verifies the payload signature and dispatches image events.
func (h *WebhookHandler) Handle(c echo.Context) error {
	if c.Request().Header.Get(signatureHeader) == "" {
		h.logger.Warn("missing webhook signature")
		return c.String(http.StatusBadRequest, "missing signature")
	}
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, webhookMaxBodyBytes+1))
	if err != nil {
		h.logger.Warn("read webhook body failed", slog.Any("error", err))
		return c.String(http.StatusBadRequest, "read body failed")
	}
	if int64(len(payload)) > webhookMaxBodyBytes {
		h.logger.Warn("webhook payload too large", slog.Int("bytes", len(payload)))
		return c.String(http.StatusRequestEntityTooLarge, "payload too large")
	}
	c.Request().Body = io.NopCloser(bytes.NewReader(payload))

	cb, err := webhook.ParseRequest(h.channelSecret, c.Request())
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			h.logger.Warn("invalid webhook signature")
			return c.String(http.StatusBadRequest, "invalid signature")
		}
		// The sender proved knowledge of the channel secret; a payload we
		// cannot decode is still acknowledged, or the platform redelivers
		// it forever.
		h.logger.Warn("malformed webhook payload", slog.Any("error", err))
		return c.String(http.StatusOK, "OK")
	}

	for _, event := range cb.Events {
		h.handleEvent(c.Request().Context(), event)
	}
	return c.String(http.StatusOK, "OK")
}

// handleEvent processes a single event. Nothing escapes: the webhook
// already committed to a 200 and the platform retries on anything else.
func (h *WebhookHandler) handleEvent(ctx context.Context, event webhook.EventInterface) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("webhook event panic", slog.Any("panic", r))
		}
	}()

	msgEvent, ok := event.(webhook.MessageEvent)
	if !ok {
		return
	}
	// Only images get archived; text, stickers, and the rest stay silent.
	img, ok := msgEvent.Message.(webhook.ImageMessageContent)
	if !ok {
		return
	}
	if h.duplicate(msgEvent.WebhookEventId) {
		h.logger.Debug("duplicate webhook event dropped",
			slog.String("event_id", msgEvent.WebhookEventId))
		return
	}
	src, ok := sourceOf(msgEvent.Source)
	if !ok {
		h.logger.Warn("unrecognized event source",
			slog.String("event_id", msgEvent.WebhookEventId))
		return
	}

	att := archive.Attachment{
		EventID:   msgEvent.WebhookEventId,
		MessageID: img.Id,
	}
	if img.ImageSet != nil {
		att.AlbumID = img.ImageSet.Id
		att.SeqIndex = int(img.ImageSet.Index)
		att.SeqTotal = int(img.ImageSet.Total)
	}

	if err := h.pipeline.HandleImage(ctx, msgEvent.ReplyToken, src, att); err != nil {
		h.logger.Error("image event processing failed",
			slog.String("event_id", msgEvent.WebhookEventId),
			slog.Any("error", err))
	}
}

// duplicate tracks recently seen webhook event IDs. The platform delivers
// at least once; a redelivered event inside the TTL window is dropped.
func (h *WebhookHandler) duplicate(eventID string) bool {
	if eventID == "" {
		return false
	}
	now := h.now()
	if seenAt, ok := h.seen.Get(eventID); ok {
		if now.Sub(seenAt) <= eventDedupTTL {
			return true
		}
		h.seen.Remove(eventID)
	}
	h.seen.Add(eventID, now)
	return false
}

func sourceOf(src webhook.SourceInterface) (archive.Source, bool) {
	switch s := src.(type) {
	case webhook.UserSource:
		return archive.UserSource(s.UserId), true
	case webhook.GroupSource:
		return archive.GroupSource(s.GroupId), true
	case webhook.RoomSource:
		return archive.RoomSource(s.RoomId), true
	default:
		return archive.Source{}, false
	}
}
