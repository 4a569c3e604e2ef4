package websocket

import (
	"context"
	"time"

	"github.com/cristianortiz/sneakerbid/internal/shared/logger"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

const (
	hubBuffer = 256
	// how long Broadcast may wait for the hub before dropping the message
	broadcastWait = 250 * time.Millisecond
)

// Hub keeps the client registry grouped in rooms and broadcasts messages to a room.
// All room state is owned by the Run goroutine.
type Hub struct {
	rooms      map[string]map[*Client]bool // room id -> members
	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	sizes      chan roomSizeRequest
	wait       time.Duration
	// InboundMessages carries client frames to the feature handlers
	InboundMessages chan *ClientMessage
}

// Message is one broadcast addressed to a room
type Message struct {
	RoomID string
	Data   []byte
}

// ClientMessage wraps an inbound frame with the client that sent it
type ClientMessage struct {
	Client  *Client
	Payload []byte
}

type roomSizeRequest struct {
	roomID string
	reply  chan int
}

func NewHub() *Hub {
	return &Hub{
		rooms:           make(map[string]map[*Client]bool),
		broadcast:       make(chan *Message, hubBuffer),
		register:        make(chan *Client, hubBuffer),
		unregister:      make(chan *Client, hubBuffer),
		sizes:           make(chan roomSizeRequest),
		wait:            broadcastWait,
		InboundMessages: make(chan *ClientMessage, hubBuffer),
	}
}

// Run owns the rooms until ctx is done, then drops every client
func (h *Hub) Run(ctx context.Context) {
	log.Info("hub running")
	for {
		select {
		case <-ctx.Done():
			log.Info("hub stopping, closing all clients")
			for _, members := range h.rooms {
				for member := range members {
					member.close()
				}
			}
			h.rooms = make(map[string]map[*Client]bool)
			return

		case client := <-h.register:
			if _, ok := h.rooms[client.RoomID]; !ok {
				h.rooms[client.RoomID] = make(map[*Client]bool)
			}
			h.rooms[client.RoomID][client] = true
			log.Info("joined room",
				zap.String("clientID", client.ID),
				zap.String("roomID", client.RoomID),
				zap.String("userID", client.UserID),
				zap.String("remote_addr", client.RemoteAddr),
				zap.Int("total_clients", h.totalClients()),
			)

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			members := h.rooms[message.RoomID]
			log.Debug("fan-out", zap.String("roomID", message.RoomID), zap.Int("members", len(members)))
			for member := range members {
				if member.Deliver(message.Data) {
					continue
				}
				// slow or gone, the client can rejoin and gets a fresh initial state
				log.Warn("send buffer full, dropping client",
					zap.String("clientID", member.ID),
					zap.String("roomID", member.RoomID),
					zap.String("remote_addr", member.RemoteAddr),
				)
				h.remove(member)
			}

		case req := <-h.sizes:
			req.reply <- len(h.rooms[req.roomID])
		}
	}
}

func (h *Hub) remove(client *Client) {
	members := h.rooms[client.RoomID]
	if !members[client] {
		return
	}
	delete(members, client)
	client.close()
	log.Info("left room",
		zap.String("clientID", client.ID),
		zap.String("roomID", client.RoomID),
		zap.Int("total_clients", h.totalClients()),
	)
	if len(members) == 0 {
		delete(h.rooms, client.RoomID)
	}
}

func (h *Hub) totalClients() int {
	n := 0
	for _, members := range h.rooms {
		n += len(members)
	}
	return n
}

// RegisterClient queues client for its room, a full queue rejects and closes it
func (h *Hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	default:
		log.Error("register queue full, rejecting client",
			zap.String("clientID", client.ID),
			zap.String("roomID", client.RoomID),
		)
		client.close()
		if client.Conn != nil {
			_ = client.Conn.Close()
		}
	}
}

// UnregisterClient queues client for removal, unknown clients are ignored by Run
func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	default:
		log.Error("unregister queue full",
			zap.String("clientID", client.ID),
			zap.String("roomID", client.RoomID),
		)
	}
}

// Broadcast sends data to every client of roomID, in call order. It waits up to
// the hub's wait for room and reports false when the message had to be dropped.
func (h *Hub) Broadcast(roomID string, data []byte) bool {
	msg := &Message{RoomID: roomID, Data: data}
	select {
	case h.broadcast <- msg:
		return true
	default:
	}

	timer := time.NewTimer(h.wait)
	defer timer.Stop()
	select {
	case h.broadcast <- msg:
		return true
	case <-timer.C:
		log.Error("broadcast queue full, message dropped", zap.String("roomID", roomID))
		return false
	}
}

// inbound hands a frame read from client to InboundMessages, dropping it when the
// handlers are not keeping up
func (h *Hub) inbound(client *Client, data []byte) {
	select {
	case h.InboundMessages <- &ClientMessage{Client: client, Payload: data}:
	default:
		log.Warn("inbound queue full, frame dropped",
			zap.String("clientID", client.ID),
			zap.String("roomID", client.RoomID),
		)
	}
}

// RoomSize returns the number of clients in roomID, Run must be running
func (h *Hub) RoomSize(ctx context.Context, roomID string) (int, error) {
	req := roomSizeRequest{roomID: roomID, reply: make(chan int, 1)}
	select {
	case h.sizes <- req:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case n := <-req.reply:
		return n, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
