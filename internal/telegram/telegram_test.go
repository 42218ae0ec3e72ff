package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestNotify(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, 1234)

	require.NoError(t, n.Notify(context.Background(), "降價了"))
	require.Len(t, sender.sent, 1)
	msg := sender.sent[0].(tgbotapi.MessageConfig)
	require.Equal(t, int64(1234), msg.ChatID)
	require.Equal(t, "降價了", msg.Text)

	sender.err = errors.New("blocked")
	require.Error(t, n.Notify(context.Background(), "x"))
}

func TestInitWithoutToken(t *testing.T) {
	_, err := Init("")
	require.Error(t, err)
}
