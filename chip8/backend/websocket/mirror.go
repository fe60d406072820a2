// Package websocket mirrors the display to browser clients over websockets.
//
// Every dirty frame is broadcast as a binary message holding the packed
// framebuffer: 32 rows of 8 bytes, most significant bit leftmost.
package websocket

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/valerio/go-chip8/chip8/video"
)

// WriteTimeout bounds how long a slow client can stall a frame.
const WriteTimeout = 50 * time.Millisecond

// Mirror is a backend.Display and an http.Handler at the same time.
type Mirror struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	last    []byte
	closed  bool
}

func NewMirror() *Mirror {
	return &Mirror{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades the request, sends the latest frame and keeps the
// client registered until it disconnects.
func (m *Mirror) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		conn.Close()
		return
	}
	m.clients[conn] = struct{}{}
	if m.last != nil {
		m.send(conn, m.last)
	}
	m.mu.Unlock()

	slog.Debug("Mirror client connected", "remote", r.RemoteAddr)

	// clients never talk; reading only detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	m.mu.Lock()
	m.drop(conn)
	m.mu.Unlock()
	slog.Debug("Mirror client disconnected", "remote", r.RemoteAddr)
}

// Draw broadcasts the frame to every client when it changed.
func (m *Mirror) Draw(fb *video.FrameBuffer) {
	if !fb.TakeDirty() {
		return
	}
	frame := fb.Packed()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.last = frame
	for conn := range m.clients {
		m.send(conn, frame)
	}
}

// send must be called with mu held.
func (m *Mirror) send(conn *websocket.Conn, frame []byte) {
	_ = conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		slog.Debug("Dropping mirror client", "remote", conn.RemoteAddr(), "error", err)
		m.drop(conn)
	}
}

func (m *Mirror) drop(conn *websocket.Conn) {
	if _, ok := m.clients[conn]; !ok {
		return
	}
	delete(m.clients, conn)
	conn.Close()
}

// Clients returns the number of connected clients.
func (m *Mirror) Clients() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

// Close disconnects every client and refuses new ones.
func (m *Mirror) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	for conn := range m.clients {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
			time.Now().Add(WriteTimeout))
		m.drop(conn)
	}
	return nil
}
