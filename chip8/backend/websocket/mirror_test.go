package websocket

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8/video"
)

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func readFrame(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, kind)
	return data
}

func TestMirror_Broadcast(t *testing.T) {
	mirror := NewMirror()
	server := httptest.NewServer(mirror)
	defer server.Close()

	a := dial(t, wsURL(server))
	b := dial(t, wsURL(server))
	require.Eventually(t, func() bool { return mirror.Clients() == 2 }, time.Second, 5*time.Millisecond)

	fb := video.NewFrameBuffer()
	fb.XorSet(video.Index(0, 0), true)
	fb.XorSet(video.Index(63, 31), true)
	mirror.Draw(fb)

	for _, conn := range []*websocket.Conn{a, b} {
		frame := readFrame(t, conn)
		require.Len(t, frame, video.FramebufferSize/8)
		assert.Equal(t, byte(0x80), frame[0])
		assert.Equal(t, byte(0x01), frame[len(frame)-1])
	}
}

func TestMirror_CleanFrameNotSent(t *testing.T) {
	mirror := NewMirror()
	fb := video.NewFrameBuffer()
	fb.TakeDirty()

	mirror.Draw(fb)

	assert.Nil(t, mirror.last)
}

func TestMirror_LatestFrameOnConnect(t *testing.T) {
	mirror := NewMirror()
	server := httptest.NewServer(mirror)
	defer server.Close()

	fb := video.NewFrameBuffer()
	fb.XorSet(video.Index(8, 1), true)
	mirror.Draw(fb)

	conn := dial(t, wsURL(server))
	frame := readFrame(t, conn)

	assert.Equal(t, fb.Packed(), frame)
	assert.Equal(t, byte(0x80), frame[9])
}

func TestMirror_ClientDisconnect(t *testing.T) {
	mirror := NewMirror()
	server := httptest.NewServer(mirror)
	defer server.Close()

	conn := dial(t, wsURL(server))
	require.Eventually(t, func() bool { return mirror.Clients() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return mirror.Clients() == 0 }, time.Second, 5*time.Millisecond)
}

func TestMirror_Close(t *testing.T) {
	mirror := NewMirror()
	server := httptest.NewServer(mirror)
	defer server.Close()

	conn := dial(t, wsURL(server))
	require.Eventually(t, func() bool { return mirror.Clients() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, mirror.Close())
	assert.Zero(t, mirror.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)

	late, _, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
	require.NoError(t, err)
	defer late.Close()
	require.NoError(t, late.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = late.ReadMessage()
	assert.Error(t, err)
}

func TestListen(t *testing.T) {
	s, err := Listen("127.0.0.1:0")
	require.NoError(t, err)

	conn := dial(t, "ws://"+s.Addr()+"/")
	require.Eventually(t, func() bool { return s.Clients() == 1 }, time.Second, 5*time.Millisecond)

	assert.NoError(t, s.Close())
	assert.Zero(t, s.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}
