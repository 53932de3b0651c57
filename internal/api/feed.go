package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/handtracker/internal/tracker"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// The feed is one-way; clients only send control frames.
	maxMessageSize = 512

	sendBuffer = 64
)

// MessageTypeSnapshot is the first message on every feed. Its data is the
// hand's tracker.State at the moment the subscription started.
const MessageTypeSnapshot tracker.EventType = "snapshot"

// Message is a single event on the feed.
type Message struct {
	Type      tracker.EventType `json:"type"`
	HandID    int64             `json:"hand_id"`
	Data      json.RawMessage   `json:"data"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewMessage wraps a tracker event.
func NewMessage(e tracker.Event) (*Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      e.EventType(),
		HandID:    e.HandID(),
		Data:      data,
		Timestamp: e.Timestamp(),
	}, nil
}

// handleFeed upgrades to a WebSocket and streams the hand's events until the
// client goes away. A snapshot is sent first, followed by every event
// published after the subscription started; the earliest of those may
// already be reflected in the snapshot.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "handID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.tracker.Hand(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}

	f := newFeed(conn, id, s.logger)
	unsubscribe := s.tracker.Events().Subscribe(f)
	defer unsubscribe()

	state, err := s.tracker.Snapshot(r.Context(), id)
	if err != nil {
		s.logger.Error("Failed to load hand for feed", "hand", id, "error", err)
		f.close()
		return
	}
	data, err := json.Marshal(state)
	if err != nil {
		f.close()
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(&Message{Type: MessageTypeSnapshot, HandID: id, Data: data, Timestamp: time.Now().UTC()}); err != nil {
		f.close()
		return
	}

	go f.writePump()
	f.readPump()
}

// feed forwards one hand's events to a WebSocket client.
type feed struct {
	conn      *websocket.Conn
	handID    int64
	send      chan *Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func newFeed(conn *websocket.Conn, handID int64, logger *log.Logger) *feed {
	ctx, cancel := context.WithCancel(context.Background())
	return &feed{
		conn:   conn,
		handID: handID,
		send:   make(chan *Message, sendBuffer),
		logger: logger.With("hand", handID),
		ctx:    ctx,
		cancel: cancel,
	}
}

// OnEvent runs on the publishing goroutine and must not block it.
func (f *feed) OnEvent(e tracker.Event) {
	if e.HandID() != f.handID {
		return
	}
	msg, err := NewMessage(e)
	if err != nil {
		f.logger.Error("Failed to encode event", "type", e.EventType(), "error", err)
		return
	}

	select {
	case <-f.ctx.Done():
	case f.send <- msg:
	default:
		f.logger.Warn("Feed send buffer full, closing connection")
		f.close()
	}
}

func (f *feed) close() {
	f.closeOnce.Do(func() {
		f.cancel()
		_ = f.conn.Close()
	})
}

// readPump drains control frames so pongs are seen and a client close is
// noticed.
func (f *feed) readPump() {
	defer f.close()

	f.conn.SetReadLimit(maxMessageSize)
	_ = f.conn.SetReadDeadline(time.Now().Add(pongWait))
	f.conn.SetPongHandler(func(string) error {
		_ = f.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := f.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				f.logger.Debug("Feed closed", "error", err)
			}
			return
		}
	}
}

func (f *feed) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		f.close()
	}()

	for {
		select {
		case msg := <-f.send:
			_ = f.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := f.conn.WriteJSON(msg); err != nil {
				f.logger.Debug("Failed to write event", "error", err)
				return
			}

		case <-ticker.C:
			_ = f.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := f.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-f.ctx.Done():
			_ = f.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}
