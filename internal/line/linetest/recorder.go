// Package linetest provides a line.Messenger that records messages.
package linetest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/line/line-bot-sdk-go/v7/linebot"
)

// Sent is one recorded delivery
type Sent struct {
	Kind   string // "reply" or "push"
	Target string // reply token or user id
	// Messages holds the JSON form of each message
	Messages []map[string]any
}

// Recorder implements line.Messenger
type Recorder struct {
	mu   sync.Mutex
	sent []Sent
	Err  error
}

// Reply records a reply
func (r *Recorder) Reply(_ context.Context, replyToken string, msgs ...linebot.SendingMessage) error {
	return r.record("reply", replyToken, msgs)
}

// Push records a push
func (r *Recorder) Push(_ context.Context, to string, msgs ...linebot.SendingMessage) error {
	return r.record("push", to, msgs)
}

func (r *Recorder) record(kind, target string, msgs []linebot.SendingMessage) error {
	s := Sent{Kind: kind, Target: target}
	for _, m := range msgs {
		raw, err := json.Marshal(m)
		if err != nil {
			return err
		}
		var decoded map[string]any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return err
		}
		s.Messages = append(s.Messages, decoded)
	}
	r.mu.Lock()
	r.sent = append(r.sent, s)
	r.mu.Unlock()
	return r.Err
}

// Sent returns every recorded delivery
func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sent(nil), r.sent...)
}

// Texts returns the text of every recorded text message, in order
func (r *Recorder) Texts() []string {
	var texts []string
	for _, s := range r.Sent() {
		for _, m := range s.Messages {
			if t, ok := m["text"].(string); ok && m["type"] == "text" {
				texts = append(texts, t)
			}
		}
	}
	return texts
}

// Last returns the first message of the latest delivery, nil when nothing was sent
func (r *Recorder) Last() map[string]any {
	sent := r.Sent()
	if len(sent) == 0 || len(sent[len(sent)-1].Messages) == 0 {
		return nil
	}
	return sent[len(sent)-1].Messages[0]
}
