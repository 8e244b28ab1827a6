package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Web3vDev/SolanaRacer/auth"
	"github.com/Web3vDev/SolanaRacer/game"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// StreamHandler pushes the live race view to clients: animated price
// ticks, settled rounds with their unlocks, energy ticks, and standings
// refreshes. SSE and WebSocket share the same stream loop.
type StreamHandler struct {
	app             *App
	logger          zerolog.Logger
	heartbeatPeriod time.Duration
	upgrader        websocket.Upgrader
}

// NewStreamHandler creates a stream handler
func NewStreamHandler(app *App) *StreamHandler {
	return &StreamHandler{
		app:             app,
		logger:          app.logger.With().Str("handler", "stream").Logger(),
		heartbeatPeriod: 30 * time.Second,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// StreamUpdates opens an SSE connection and streams race events.
// Route: GET /api/race/stream
func (h *StreamHandler) StreamUpdates(c *gin.Context) {
	session, ok := h.prepareSession(c)
	if !ok {
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
	c.Writer.WriteHeader(http.StatusOK)

	sender := &sseSender{writer: c.Writer}
	h.stream(c.Request.Context(), session, sender, nil)
}

// StreamUpdatesWebSocket opens a WebSocket connection and streams race events.
// Route: GET /api/race/stream/ws?token=<jwt>
func (h *StreamHandler) StreamUpdatesWebSocket(c *gin.Context) {
	session, ok := h.prepareSession(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade to WebSocket")
		return
	}
	defer conn.Close() //nolint:errcheck

	writeDeadline := 10 * time.Second
	conn.SetWriteDeadline(time.Now().Add(writeDeadline)) //nolint:errcheck

	done := make(chan struct{})

	// Detect connection close
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(10 * time.Minute)) //nolint:errcheck
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Msg("WebSocket connection closed unexpectedly")
			} else {
				h.logger.Debug().Err(err).Msg("WebSocket closed normally")
			}
		}
	}()

	// Send ping to keep connection alive
	pingTicker := time.NewTicker(30 * time.Second)
	go func() {
		defer pingTicker.Stop()
		for {
			select {
			case <-done:
				return
			case <-pingTicker.C:
				deadline := time.Now().Add(5 * time.Second)
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, deadline); err != nil {
					h.logger.Debug().Err(err).Msg("Failed to send ping")
					return
				}
			}
		}
	}()

	sender := &wsSender{
		conn:          conn,
		done:          done,
		logger:        h.logger,
		writeDeadline: writeDeadline,
	}
	h.stream(c.Request.Context(), session, sender, done)
}

// prepareSession resolves the caller's session from JWT claims
func (h *StreamHandler) prepareSession(c *gin.Context) (*Session, bool) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		ErrorWithMessage(c, http.StatusUnauthorized, "player identity not found in context")
		return nil, false
	}
	session := h.app.sessions.Acquire(c.Request.Context(), game.Identity{
		FID:         claims.FID,
		Username:    claims.Username,
		DisplayName: claims.DisplayName,
		AvatarURL:   claims.AvatarURL,
	})
	return session, true
}

// stream fans the price feed, session events, and standings into one
// connection until the client goes away
func (h *StreamHandler) stream(ctx context.Context, session *Session, sender eventSender, done <-chan struct{}) {
	prices, cancelPrices := h.app.prices.Listen(ctx)
	defer cancelPrices()

	events, cancelEvents := session.Events().Listen(ctx)
	defer cancelEvents()

	standings, cancelStandings := h.app.leaderboard.Listen(ctx)
	defer cancelStandings()

	// Initial state so the client can render immediately
	price := h.app.prices.Current()
	if err := sender.Send(&StreamEvent{
		Type:      EventTypeConnected,
		Timestamp: time.Now().Unix(),
		Price:     &price,
	}); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to send connected event, stopping stream")
		return
	}

	heartbeat := time.NewTicker(h.heartbeatPeriod)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			h.logger.Debug().Msg("WebSocket connection closed, stopping stream")
			return
		case <-heartbeat.C:
			if err := sender.Send(&StreamEvent{
				Type:      EventTypeHeartbeat,
				Timestamp: time.Now().Unix(),
			}); err != nil {
				h.logger.Warn().Err(err).Msg("Failed to send heartbeat, stopping stream")
				return
			}
		case tick, ok := <-prices:
			if !ok {
				return
			}
			if err := sender.Send(&StreamEvent{
				Type:      EventTypePrice,
				Timestamp: tick.At.Unix(),
				Price:     &tick.Price,
			}); err != nil {
				return
			}
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := sender.Send(&event); err != nil {
				return
			}
		case snapshot, ok := <-standings:
			if !ok {
				return
			}
			if err := sender.Send(&StreamEvent{
				Type:        EventTypeLeaderboard,
				Timestamp:   snapshot.RefreshedAt.Unix(),
				Leaderboard: snapshot.Entries,
			}); err != nil {
				return
			}
		}
	}
}

// eventSender interface for sending events (SSE or WebSocket)
type eventSender interface {
	Send(*StreamEvent) error
}

// sseSender sends events via SSE
type sseSender struct {
	writer http.ResponseWriter
}

func (s *sseSender) Send(event *StreamEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = s.writer.Write([]byte("data: " + string(payload) + "\n\n"))
	if err != nil {
		return err
	}
	s.writer.(http.Flusher).Flush()
	return nil
}

// wsSender sends events via WebSocket
type wsSender struct {
	conn          *websocket.Conn
	done          <-chan struct{}
	logger        zerolog.Logger
	writeDeadline time.Duration
}

func (s *wsSender) Send(event *StreamEvent) error {
	// Check if connection is already closed
	select {
	case <-s.done:
		s.logger.Debug().Str("event_type", event.Type).Msg("Connection already closed, skipping send")
		return io.EOF
	default:
	}

	deadline := time.Now().Add(s.writeDeadline)
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to set write deadline")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error().Err(err).Str("event_type", event.Type).Msg("Failed to marshal event")
		return err
	}

	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			s.logger.Warn().Err(err).Str("event_type", event.Type).Msg("WebSocket write failed: connection closed")
		} else {
			s.logger.Warn().Err(err).Str("event_type", event.Type).Msg("WebSocket write failed")
		}
		return err
	}
	return nil
}
