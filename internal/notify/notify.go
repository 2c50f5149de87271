package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/snapkeep/snapkeep/internal/archive"
)

// Sender is the messaging-platform surface the notifier needs.
type Sender interface {
	Reply(ctx context.Context, replyToken, text string) error
	Push(ctx context.Context, to, text, retryKey string) error
}

// Delivery is one confirmation to get to the sender somehow.
type Delivery struct {
	ReplyToken string
	Target     string
	Text       string
}

// Strategy is a single way of delivering a confirmation.
type Strategy interface {
	Name() string
	Deliver(ctx context.Context, d Delivery) error
}

// Notifier attempts an ordered chain of delivery strategies (reply, then
// push) and stops at the first success. Exhausting the chain logs and
// drops: the attachment was already saved before notification runs, so a
// lost confirmation is non-fatal and there is no retry queue.
type Notifier struct {
	strategies []Strategy
	logger     *slog.Logger
}

// New creates a notifier with the reply-then-push chain over sender.
func New(log *slog.Logger, sender Sender) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{
		strategies: []Strategy{
			replyStrategy{sender: sender},
			pushStrategy{sender: sender},
		},
		logger: log.With(slog.String("service", "notify")),
	}
}

// Notify delivers text to the event's sender, best effort. It never
// reports failure to the caller.
func (n *Notifier) Notify(ctx context.Context, replyToken string, source archive.Source, text string) {
	d := Delivery{
		ReplyToken: replyToken,
		Target:     source.ID,
		Text:       text,
	}
	for _, strategy := range n.strategies {
		err := strategy.Deliver(ctx, d)
		if err == nil {
			return
		}
		n.logger.Warn("delivery attempt failed",
			slog.String("strategy", strategy.Name()),
			slog.Any("error", err))
	}
	n.logger.Error("notification dropped",
		slog.String("target", d.Target))
}

// replyStrategy uses the one-time reply token. Tokens expire quickly, so
// this is the strategy that fails for slow handlers.
type replyStrategy struct {
	sender Sender
}

func (s replyStrategy) Name() string { return "reply" }

func (s replyStrategy) Deliver(ctx context.Context, d Delivery) error {
	if d.ReplyToken == "" {
		return fmt.Errorf("no reply token")
	}
	return s.sender.Reply(ctx, d.ReplyToken, d.Text)
}

// pushStrategy addresses the conversation directly, independent of any
// reply token.
type pushStrategy struct {
	sender Sender
}

func (s pushStrategy) Name() string { return "push" }

func (s pushStrategy) Deliver(ctx context.Context, d Delivery) error {
	if d.Target == "" {
		return fmt.Errorf("no push target")
	}
	return s.sender.Push(ctx, d.Target, d.Text, uuid.NewString())
}
