// Package routeapi exposes the request coordinator over websocket.
//
// Each connection may keep any number of route requests in flight. Replies
// arrive in the coordinator's FIFO order and carry the client's request id.
package routeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/udisondev/navgrid/internal/config"
	"github.com/udisondev/navgrid/internal/geo"
	"github.com/udisondev/navgrid/internal/grid"
	"github.com/udisondev/navgrid/internal/pathfinding"
	"github.com/udisondev/navgrid/internal/pathreq"
)

const (
	shutdownTimeout = 5 * time.Second
	// maxInflight is the default per-connection cap on unanswered route requests.
	maxInflight = 256
)

// Coordinator is the part of pathreq.Coordinator the API needs.
type Coordinator interface {
	Submit(start, end geo.Vec2, cb pathreq.Callback) *pathreq.Ticket
	Stats() pathreq.Stats
}

// Server serves /ws and /healthz.
type Server struct {
	cfg      config.HTTPConfig
	coord    Coordinator
	grid     *grid.Grid
	upgrader websocket.Upgrader

	// inflightLimit caps unanswered route requests per connection.
	inflightLimit int

	mu       sync.Mutex
	listener net.Listener
	sessions map[*session]struct{}
}

// NewServer creates an API server over coord. g is reported by /healthz.
func NewServer(cfg config.HTTPConfig, coord Coordinator, g *grid.Grid) *Server {
	return &Server{
		cfg:   cfg,
		coord: coord,
		grid:  g,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		inflightLimit: maxInflight,
		sessions:      make(map[*session]struct{}),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

// Addr returns the listening address, or nil before Run.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run listens on cfg.BindAddress:cfg.Port and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	return s.Serve(ctx, ln)
}

// Serve serves on a ready listener until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("route api shutdown", "error", err)
		}
		// Hijacked websocket connections are not tracked by http.Server.
		s.closeSessions()
	}()

	slog.Info("route api started", "address", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving route api: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h := Health{
		Status:      "ok",
		Cols:        s.grid.Cols(),
		Rows:        s.grid.Rows(),
		Walkable:    s.grid.WalkableCount(),
		CellRadius:  s.grid.CellRadius(),
		Coordinator: s.coord.Stats(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h); err != nil {
		slog.Debug("writing health response", "error", err)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	sess := &session{
		conn:         conn,
		writeTimeout: s.cfg.WriteTimeout,
		inflight:     make(chan inflight, s.inflightLimit),
	}
	s.track(sess)
	defer s.untrack(sess)
	defer conn.Close()

	go sess.replyLoop()

	slog.Debug("route session opened", "remote", conn.RemoteAddr())
	s.readLoop(sess)
	// Requests already submitted still complete; their replies are discarded.
	close(sess.inflight)
	slog.Debug("route session closed", "remote", conn.RemoteAddr())
}

func (s *Server) readLoop(sess *session) {
	for {
		_, payload, err := sess.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			slog.Debug("discarding malformed message", "remote", sess.conn.RemoteAddr(), "error", err)
			if !sess.writeJSON(ErrorReply{Type: TypeError, Reason: "malformed message"}) {
				return
			}
			continue
		}

		if !s.dispatch(sess, msg) {
			return
		}
	}
}

// dispatch handles one message and reports whether the session is still writable.
func (s *Server) dispatch(sess *session, msg ClientMessage) bool {
	switch msg.Type {
	case TypePing:
		return sess.writeJSON(PongReply{Type: TypePong})
	case TypeRoute:
		if msg.Start == nil || msg.End == nil {
			return sess.writeJSON(ErrorReply{Type: TypeError, ID: msg.ID, Reason: "start and end are required"})
		}
		if !msg.Start.finite() || !msg.End.finite() {
			return sess.writeJSON(ErrorReply{Type: TypeError, ID: msg.ID, Reason: "coordinates must be finite"})
		}
		// The request replyLoop is waiting on has already left the channel,
		// so the channel length alone undercounts.
		if int(sess.pending.Load()) >= s.inflightLimit {
			return sess.writeJSON(ErrorReply{Type: TypeError, ID: msg.ID, Reason: "too many requests in flight"})
		}
		sess.pending.Add(1)
		tk := s.coord.Submit(msg.Start.Vec(), msg.End.Vec(), nil)
		sess.inflight <- inflight{id: msg.ID, ticket: tk}
		return true
	default:
		return sess.writeJSON(ErrorReply{Type: TypeError, ID: msg.ID, Reason: fmt.Sprintf("unknown message type %q", msg.Type)})
	}
}

func (s *Server) track(sess *session) {
	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
}

func (s *Server) closeSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sess := range s.sessions {
		sess.conn.Close()
	}
}

type inflight struct {
	id     string
	ticket *pathreq.Ticket
}

// session serializes writes to one websocket connection.
type session struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	inflight     chan inflight
	pending      atomic.Int32 // submitted route requests not yet answered

	mu     sync.Mutex
	broken bool
}

// replyLoop answers route requests in submission order. Coordinator dispatch
// is FIFO, so waiting on each ticket in turn never delays a later reply.
func (s *session) replyLoop() {
	for req := range s.inflight {
		<-req.ticket.Done()
		res, _ := req.ticket.Result()
		s.pending.Add(-1)
		s.writeJSON(routeReply(req.id, res))
	}
}

func routeReply(id string, res pathfinding.Result) RouteReply {
	waypoints := make([]Point, 0, len(res.Waypoints))
	for _, w := range res.Waypoints {
		waypoints = append(waypoints, pointOf(w))
	}
	return RouteReply{
		Type:      TypeRoute,
		ID:        id,
		Success:   res.Success,
		Reason:    res.Reason.String(),
		Waypoints: waypoints,
	}
}

func (s *session) writeJSON(v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("marshaling reply", "error", err)
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken {
		return false
	}
	if s.writeTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Debug("route session write failed", "remote", s.conn.RemoteAddr(), "error", err)
		s.broken = true
		return false
	}
	return true
}
