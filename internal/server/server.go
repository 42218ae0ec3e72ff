// Package server exposes the bot over HTTP: a plain JSON endpoint for
// automation tools and the LINE webhook.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v7/linebot"

	"shunshun-bot/internal/bot"
	"shunshun-bot/internal/extract"
	"shunshun-bot/internal/line"
	"shunshun-bot/internal/logging"
)

// Handler handles one chat message
type Handler interface {
	Handle(ctx context.Context, msg bot.Message) (bot.Route, error)
}

// EventParser verifies and decodes LINE webhook requests
type EventParser interface {
	ParseRequest(r *http.Request) ([]*linebot.Event, error)
}

// Server serves the bot endpoints
type Server struct {
	handler   Handler
	webhook   EventParser
	messenger line.Messenger
	mux       *http.ServeMux
}

// New creates a server. The webhook route is only registered when webhook
// is not nil.
func New(handler Handler, webhook EventParser, messenger line.Messenger) *Server {
	s := &Server{
		handler:   handler,
		webhook:   webhook,
		messenger: messenger,
		mux:       http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /{$}", s.handleMessage)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	if webhook != nil {
		s.mux.HandleFunc("POST /callback", s.handleCallback)
	}
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID(s.mux).ServeHTTP(w, r)
}

// ListenAndServe serves on port until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "port", port)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := logging.WithAttrs(r.Context(), "request_id", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type messageRequest struct {
	MessageText string `json:"message_text"`
	UserID      string `json:"user_id"`
	ReplyToken  string `json:"reply_token"`
}

// handleMessage always answers OK, failures are reported in chat or logged
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.WarnContext(r.Context(), "bad message body", "err", err)
		writeOK(w)
		return
	}
	if req.MessageText == "" {
		writeOK(w)
		return
	}

	s.dispatch(r.Context(), bot.Message{
		Text:       req.MessageText,
		UserID:     req.UserID,
		ReplyToken: req.ReplyToken,
	})
	writeOK(w)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	events, err := s.webhook.ParseRequest(r)
	if err != nil {
		if errors.Is(err, linebot.ErrInvalidSignature) {
			slog.WarnContext(r.Context(), "invalid webhook signature")
			http.Error(w, "invalid signature", http.StatusBadRequest)
			return
		}
		slog.ErrorContext(r.Context(), "parse webhook", "err", err)
		http.Error(w, "bad request", http.StatusInternalServerError)
		return
	}

	for _, event := range events {
		s.handleEvent(r.Context(), event)
	}
	writeOK(w)
}

func (s *Server) handleEvent(ctx context.Context, event *linebot.Event) {
	userID := ""
	if event.Source != nil {
		userID = event.Source.UserID
	}

	switch event.Type {
	case linebot.EventTypeFollow:
		if err := s.messenger.Reply(ctx, event.ReplyToken, line.HelpMessage()); err != nil {
			slog.WarnContext(ctx, "welcome reply failed", "user_id", userID, "err", err)
		}
	case linebot.EventTypeMessage:
		msg := bot.Message{UserID: userID, ReplyToken: event.ReplyToken}
		switch m := event.Message.(type) {
		case *linebot.TextMessage:
			msg.Text = m.Text
		case *linebot.LocationMessage:
			msg.Location = &extract.LatLng{Lat: m.Latitude, Lng: m.Longitude}
		default:
			slog.DebugContext(ctx, "unsupported message type", "user_id", userID)
			return
		}
		s.dispatch(ctx, msg)
	default:
		slog.DebugContext(ctx, "event ignored", "type", event.Type)
	}
}

func (s *Server) dispatch(ctx context.Context, msg bot.Message) {
	ctx = logging.WithAttrs(ctx, "user_id", msg.UserID)
	route, err := s.handler.Handle(ctx, msg)
	if err != nil {
		slog.ErrorContext(ctx, "message handling failed", "route", route, "err", err)
		return
	}
	slog.DebugContext(ctx, "message handled", "route", route)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeOK(w)
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
