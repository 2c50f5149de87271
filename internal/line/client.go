package line

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// Client wraps the LINE Messaging API behind the narrow surface the
// pipeline needs, so the resolver and notifier stay testable with fakes.
type Client struct {
	api    *messaging_api.MessagingApiAPI
	blob   *messaging_api.MessagingApiBlobAPI
	logger *slog.Logger
}

// NewClient creates a LINE API client from the channel access token.
func NewClient(log *slog.Logger, channelToken string) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	api, err := messaging_api.NewMessagingApiAPI(channelToken)
	if err != nil {
		return nil, fmt.Errorf("line api client: %w", err)
	}
	blob, err := messaging_api.NewMessagingApiBlobAPI(channelToken)
	if err != nil {
		return nil, fmt.Errorf("line blob client: %w", err)
	}
	return &Client{
		api:    api,
		blob:   blob,
		logger: log.With(slog.String("client", "line")),
	}, nil
}

// FetchContent downloads the attachment bytes for a message.
func (c *Client) FetchContent(ctx context.Context, messageID string) ([]byte, string, error) {
	resp, err := c.blob.GetMessageContent(messageID)
	if err != nil {
		return nil, "", fmt.Errorf("get message content: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("get message content: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read message content: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// GroupSummary returns the display name of a group chat.
func (c *Client) GroupSummary(ctx context.Context, groupID string) (string, error) {
	summary, err := c.api.GetGroupSummary(groupID)
	if err != nil {
		return "", fmt.Errorf("get group summary: %w", err)
	}
	return summary.GroupName, nil
}

// Reply sends a text message using a one-time reply token.
func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	_, err := c.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages: []messaging_api.MessageInterface{
			messaging_api.TextMessage{Text: text},
		},
	})
	if err != nil {
		return fmt.Errorf("reply message: %w", err)
	}
	return nil
}

// Push sends a text message out of band to a user, group, or room ID.
// retryKey makes platform-side retries idempotent.
func (c *Client) Push(ctx context.Context, to, text, retryKey string) error {
	_, err := c.api.PushMessage(&messaging_api.PushMessageRequest{
		To: to,
		Messages: []messaging_api.MessageInterface{
			messaging_api.TextMessage{Text: text},
		},
	}, retryKey)
	if err != nil {
		return fmt.Errorf("push message: %w", err)
	}
	return nil
}
