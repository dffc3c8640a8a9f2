package chathub

import (
	"context"
	"sync"
	"time"

	"mchat/backend/internal/config"
	"mchat/backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// WebSocketClient implements Client over one gorilla/websocket connection.
type WebSocketClient struct {
	sessionID string
	conn      *websocket.Conn
	send      chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func NewWebSocketClient(conn *websocket.Conn) *WebSocketClient {
	return &WebSocketClient{
		sessionID: uuid.New().String(),
		conn:      conn,
		send:      make(chan []byte, config.SendBufferSize),
		done:      make(chan struct{}),
	}
}

func (c *WebSocketClient) GetSessionID() string          { return c.sessionID }
func (c *WebSocketClient) GetSendChannel() chan<- []byte { return c.send }

// Close stops both pumps. The send channel is never closed so concurrent
// publishers cannot panic; writePump exits via the done channel.
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// Run starts the pumps for a joined session and blocks until the read side
// ends. Session teardown is unconditional: it runs whether the connection
// closed cleanly or died.
func (c *WebSocketClient) Run(session *Session) {
	go c.writePump()
	c.readPump(session)
}

func (c *WebSocketClient) readPump(session *Session) {
	defer func() {
		session.Close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("Read error for session %s: %v", c.sessionID, err)
			}
			return
		}
		session.Inbound(context.Background(), raw)
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(data)
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
