package websocket

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Server serves a Mirror on a TCP address.
type Server struct {
	*Mirror
	http     *http.Server
	listener net.Listener
}

// Listen binds addr and starts serving the mirror at "/" in the background.
func Listen(addr string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mirror := NewMirror()
	s := &Server{
		Mirror:   mirror,
		http:     &http.Server{Handler: mirror, ReadHeaderTimeout: 5 * time.Second},
		listener: ln,
	}

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Mirror server stopped", "error", err)
		}
	}()

	slog.Info("Serving display mirror", "addr", ln.Addr().String())
	return s, nil
}

// Addr is the bound address, useful when listening on port 0.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Close disconnects clients and shuts the HTTP server down.
func (s *Server) Close() error {
	_ = s.Mirror.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}
