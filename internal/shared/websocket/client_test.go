package websocket

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

// fakeConn feeds reads from a channel and records writes, Close ends pending reads
type fakeConn struct {
	reads chan []byte

	mu       sync.Mutex
	writes   []string
	controls []int
	closed   chan struct{}
	once     sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{reads: make(chan []byte, 8), closed: make(chan struct{})}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data := <-f.reads:
		return websocket.TextMessage, data, nil
	case <-f.closed:
		return 0, nil, errors.New("use of closed connection")
	}
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, string(data))
	return nil
}

func (f *fakeConn) WriteControl(messageType int, _ []byte, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.controls = append(f.controls, messageType)
	return nil
}

func (f *fakeConn) SetReadLimit(int64)                {}
func (f *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (f *fakeConn) SetPongHandler(func(string) error) {}

func (f *fakeConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4000}
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}

func (f *fakeConn) sentControl(messageType int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.controls {
		if c == messageType {
			return true
		}
	}
	return false
}

func serve(t *testing.T, h *Hub, conn *fakeConn) (*Client, chan struct{}) {
	t.Helper()
	c := NewClient(h, conn, "c1", "room", "u1")
	h.RegisterClient(c)
	waitRoomSize(t, h, "room", 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Serve(context.Background())
	}()
	return c, done
}

func waitDone(t *testing.T, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestClient_ServeForwardsBothWays(t *testing.T) {
	h := runHub(t)
	conn := newFakeConn()
	c, done := serve(t, h, conn)
	check.Equal(t, "127.0.0.1:4000", c.RemoteAddr)

	conn.reads <- []byte(`{"type":"place_bid"}`)
	select {
	case msg := <-h.InboundMessages:
		check.True(t, msg.Client == c)
		check.Equal(t, `{"type":"place_bid"}`, string(msg.Payload))
	case <-time.After(time.Second):
		t.Fatal("inbound frame not forwarded")
	}

	h.Broadcast("room", []byte("event-1"))
	check.True(t, eventually(func() bool { return len(conn.written()) == 1 }))
	assert.Equal(t, 1, len(conn.written()))
	check.Equal(t, "event-1", conn.written()[0])

	// the peer goes away
	_ = conn.Close()
	waitDone(t, done)
	waitRoomSize(t, h, "room", 0)
}

func TestClient_DroppedByHubClosesConnection(t *testing.T) {
	h := runHub(t)
	conn := newFakeConn()
	c, done := serve(t, h, conn)

	h.UnregisterClient(c)
	waitDone(t, done)
	check.True(t, conn.sentControl(websocket.CloseMessage))
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}
