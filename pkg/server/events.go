package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/auroramap/pkg/errors"
	"github.com/matzehuels/auroramap/pkg/pipeline"
)

// Event types sent on /api/events.
const (
	EventLayout = "layout"
	EventError  = "error"
)

const (
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
)

// Event is a websocket message describing a load outcome.
type Event struct {
	Type       string `json:"type"`
	Generation uint64 `json:"generation"`
	LayoutID   string `json:"layoutId,omitempty"`
	Systems    int    `json:"systems,omitempty"`
	Links      int    `json:"links,omitempty"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message,omitempty"`
}

func newEvent(u pipeline.Update) Event {
	if u.Err != nil {
		return Event{
			Type:       EventError,
			Generation: u.Generation,
			Code:       string(errors.GetCodeOr(u.Err, errors.ErrCodeInternal)),
			Message:    errors.UserMessage(u.Err),
		}
	}
	return Event{
		Type:       EventLayout,
		Generation: u.Generation,
		LayoutID:   u.Result.Document.ID,
		Systems:    u.Result.Stats.SystemCount,
		Links:      u.Result.Stats.EdgeCount,
	}
}

// wsConn serializes writes to a websocket connection.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	ws := &wsConn{conn: conn}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Client messages are ignored; reading surfaces the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	updates := s.loader.Subscribe(ctx)
	if res, gen := s.loader.Current(); res != nil {
		if err := ws.writeJSON(newEvent(pipeline.Update{Generation: gen, Result: res})); err != nil {
			return
		}
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return
			}
			if err := ws.writeJSON(newEvent(u)); err != nil {
				s.logger.Debug("websocket write failed", "err", err)
				return
			}
		case <-ticker.C:
			if err := ws.ping(); err != nil {
				return
			}
		}
	}
}
