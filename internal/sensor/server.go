// Package sensor accepts device orientation readings over WebSocket and
// forwards them to the running maze, so a phone can act as the tilt sensor.
package sensor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/zavo/tiltmaze/internal/maze"
)

// Sink receives orientation readings. It must be safe for concurrent use.
type Sink interface {
	SetOrientation(o maze.Orientation)
}

// Reading is one orientation message.
type Reading struct {
	Azimuth float64 `json:"azimuth"`
	Pitch   float64 `json:"pitch"`
	Roll    float64 `json:"roll"`
	Unit    string  `json:"unit,omitempty"` // "rad" (default) or "deg"
}

// Orientation converts the reading to radians.
func (r Reading) Orientation() (maze.Orientation, error) {
	o := maze.Orientation{r.Azimuth, r.Pitch, r.Roll}
	for _, v := range o {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return o, errors.New("non-finite angle")
		}
	}

	switch r.Unit {
	case "", "rad":
	case "deg":
		for i := range o {
			o[i] *= math.Pi / 180
		}
	default:
		return o, fmt.Errorf("unknown unit %q", r.Unit)
	}
	return o, nil
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Phones connect from a page served elsewhere
	CheckOrigin: func(*http.Request) bool { return true },
}

// maxMessageSize bounds one reading; real readings are well under 100 bytes.
const maxMessageSize = 1024

// Server is the orientation WebSocket server.
type Server struct {
	addr   string
	sink   Sink
	logger *log.Logger

	readings atomic.Int64
	rejected atomic.Int64
	clients  atomic.Int32
}

// NewServer creates a server that forwards readings to sink.
func NewServer(addr string, sink Sink, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{addr: addr, sink: sink, logger: logger}
}

// Handler returns the HTTP routes: /orientation (WebSocket) and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/orientation", s.handleOrientation)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Run listens on the configured address until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("sensor: cannot listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info("sensor server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("sensor: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s.logger.Info("stopping sensor server")
	// Hijacked WebSocket connections are not tracked by Shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("sensor: shutdown: %w", err)
	}
	return nil
}

// Readings returns the number of readings forwarded so far.
func (s *Server) Readings() int64 {
	return s.readings.Load()
}

// Rejected returns the number of malformed messages skipped so far.
func (s *Server) Rejected() int64 {
	return s.rejected.Load()
}

// Clients returns the number of connected sensors.
func (s *Server) Clients() int {
	return int(s.clients.Load())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"clients":  s.Clients(),
		"readings": s.Readings(),
	})
}

func (s *Server) handleOrientation(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	s.clients.Add(1)
	defer s.clients.Add(-1)

	remote := conn.RemoteAddr().String()
	s.logger.Info("sensor connected", "remote", remote)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("sensor connection lost", "remote", remote, "error", err)
			} else {
				s.logger.Info("sensor disconnected", "remote", remote)
			}
			return
		}

		var reading Reading
		if err := json.Unmarshal(data, &reading); err != nil {
			s.reject(remote, err)
			continue
		}
		o, err := reading.Orientation()
		if err != nil {
			s.reject(remote, err)
			continue
		}

		s.sink.SetOrientation(o)
		s.readings.Add(1)
	}
}

func (s *Server) reject(remote string, err error) {
	s.rejected.Add(1)
	s.logger.Debug("malformed reading skipped", "remote", remote, "error", err)
}
