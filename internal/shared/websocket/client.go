package websocket

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10 // must stay below pongWait
	maxMessageSize = 1024

	// SendBuffer is the per client outbound queue, a client that falls this far behind is dropped
	SendBuffer = 64
)

// Conn is the part of *websocket.Conn a client uses
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	RemoteAddr() net.Addr
	Close() error
}

// Client is one websocket connection joined to a room
type Client struct {
	Hub  *Hub
	Conn Conn // nil for in-process clients
	// Send is closed by the hub when the client leaves the room.
	Send       chan []byte
	RoomID     string
	UserID     string
	ID         string
	RemoteAddr string

	mu     sync.Mutex
	closed bool
}

// NewClient builds a client for conn, conn may be nil
func NewClient(hub *Hub, conn Conn, id, roomID, userID string) *Client {
	c := &Client{
		Hub:    hub,
		Conn:   conn,
		Send:   make(chan []byte, SendBuffer),
		RoomID: roomID,
		UserID: userID,
		ID:     id,
	}
	if conn != nil {
		c.RemoteAddr = conn.RemoteAddr().String()
	}
	return c
}

// Deliver queues data for the client without blocking, it reports false when the
// queue is full or the client is gone
func (c *Client) Deliver(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// Serve pumps frames both ways until the peer leaves, the hub drops the client
// or ctx is cancelled. Inbound frames go to Hub.InboundMessages. The client must
// already be registered, Serve unregisters it on return.
func (c *Client) Serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	written := make(chan struct{})
	go func() {
		defer close(written)
		c.writeLoop(ctx)
	}()

	c.readLoop()
	cancel()
	<-written

	c.Hub.UnregisterClient(c)
	log.Debug("Client connection finished",
		zap.String("clientID", c.ID),
		zap.String("roomID", c.RoomID),
	)
}

// readLoop returns on the first read error, which includes the conn being
// closed by writeLoop
func (c *Client) readLoop() {
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("WebSocket read error",
					zap.String("clientID", c.ID),
					zap.String("roomID", c.RoomID),
					zap.String("remote_addr", c.RemoteAddr),
					zap.Error(err),
				)
			}
			return
		}
		c.Hub.inbound(c, data)
	}
}

// writeLoop is the only writer of the connection, it closes it on the way out
func (c *Client) writeLoop(ctx context.Context) {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.writeClose()
			return

		case data, ok := <-c.Send:
			if !ok {
				// dropped by the hub
				c.writeClose()
				return
			}
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			// one JSON document per frame
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn("Failed to write message to client",
					zap.String("clientID", c.ID),
					zap.String("roomID", c.RoomID),
					zap.Error(err),
				)
				return
			}

		case <-ping.C:
			if err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (c *Client) writeClose() {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := c.Conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
		log.Debug("Failed to send close frame", zap.String("clientID", c.ID), zap.Error(err))
	}
}
