// Package line sends bot replies through the LINE Messaging API.
package line

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/line/line-bot-sdk-go/v7/linebot"
)

// Messenger delivers messages to LINE users
type Messenger interface {
	// Reply answers a webhook event. An empty token is a no-op.
	Reply(ctx context.Context, replyToken string, msgs ...linebot.SendingMessage) error
	// Push sends to a user outside of a conversation turn
	Push(ctx context.Context, to string, msgs ...linebot.SendingMessage) error
}

// Client wraps the SDK client
type Client struct {
	bot *linebot.Client
}

// New creates a client for a channel. Options are passed to the SDK, e.g.
// linebot.WithEndpointBase in tests.
func New(channelSecret, channelToken string, opts ...linebot.ClientOption) (*Client, error) {
	bot, err := linebot.New(channelSecret, channelToken, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{bot: bot}, nil
}

// Reply implements Messenger
func (c *Client) Reply(ctx context.Context, replyToken string, msgs ...linebot.SendingMessage) error {
	if replyToken == "" {
		slog.DebugContext(ctx, "no reply token, reply skipped", "messages", len(msgs))
		return nil
	}
	if len(msgs) == 0 {
		return nil
	}
	_, err := c.bot.ReplyMessage(replyToken, msgs...).WithContext(ctx).Do()
	return err
}

// Push implements Messenger
func (c *Client) Push(ctx context.Context, to string, msgs ...linebot.SendingMessage) error {
	if to == "" || len(msgs) == 0 {
		return nil
	}
	_, err := c.bot.PushMessage(to, msgs...).WithContext(ctx).Do()
	return err
}

// ParseRequest verifies the webhook signature and decodes the events.
// linebot.ErrInvalidSignature is returned for forged requests.
func (c *Client) ParseRequest(r *http.Request) ([]*linebot.Event, error) {
	return c.bot.ParseRequest(r)
}

// LogMessenger only logs outgoing messages. It stands in when no channel
// credentials are configured, e.g. when running commands locally.
type LogMessenger struct{}

// Reply implements Messenger
func (LogMessenger) Reply(ctx context.Context, replyToken string, msgs ...linebot.SendingMessage) error {
	logMessages(ctx, "reply", replyToken, msgs)
	return nil
}

// Push implements Messenger
func (LogMessenger) Push(ctx context.Context, to string, msgs ...linebot.SendingMessage) error {
	logMessages(ctx, "push", to, msgs)
	return nil
}

func logMessages(ctx context.Context, kind, target string, msgs []linebot.SendingMessage) {
	for _, m := range msgs {
		body, err := json.Marshal(m)
		if err != nil {
			slog.WarnContext(ctx, "could not encode message", "err", err)
			continue
		}
		slog.InfoContext(ctx, "line message (not sent)", "kind", kind, "target", target, "message", string(body))
	}
}
