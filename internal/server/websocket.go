package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/shatter/internal/core/events/bus"
	"github.com/zeusync/shatter/internal/core/observability/log"
	"github.com/zeusync/shatter/internal/core/session"
	"github.com/zeusync/shatter/pkg/generic"
)

var frameBuffers = generic.NewPool(func() *bytes.Buffer { return new(bytes.Buffer) }, (*bytes.Buffer).Reset)

// encode renders msg as one text frame. The returned slice is owned by the
// caller.
func encode(msg Outbound) ([]byte, error) {
	buf := frameBuffers.Get()
	defer frameBuffers.Put(buf)
	if err := json.NewEncoder(buf).Encode(msg); err != nil {
		return nil, err
	}
	return bytes.Clone(bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})), nil
}

// Client message types.
const (
	MsgPointerDown = "pointer_down"
	MsgPointerMove = "pointer_move"
	MsgPointerUp   = "pointer_up"
	MsgKey         = "key"
	MsgStart       = "start"
	MsgBreak       = "break"
	MsgLevel       = "level"
	MsgNext        = "next"
	MsgReset       = "reset"
	MsgLayout      = "layout"
)

// Server-only message types. Everything else the server sends is a session
// event named after its bus event type.
const (
	MsgError   = "error"
	MsgWelcome = "welcome"
)

// Inbound is a message from the player.
type Inbound struct {
	Type  string  `json:"type"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	Key   string  `json:"key,omitempty"`
	Level string  `json:"level,omitempty"`

	// LevelID selects a level by numeric id when Level is empty.
	LevelID *int `json:"level_id,omitempty"`
}

// Outbound is a message to the player.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type welcome struct {
	Session string `json:"session"`
}

type client struct {
	id      string
	conn    *websocket.Conn
	session *session.Session
	logger  log.Log
	config  Config

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	seen      atomic.Int64

	// lastFrame is the digest of the last positions frame queued. It is only
	// touched from bus handlers, which run on the session's tick.
	lastFrame uint64
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.closedFlag() {
		s.writeError(w, http.StatusServiceUnavailable, ErrServerClosed)
		return
	}
	level := r.URL.Query().Get("level")
	if level == "" {
		level = s.sessionConfig.Level
	}
	if _, err := s.catalog.Level(level); err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	if s.Sessions() >= s.config.MaxSessions {
		s.logger.Warn("Maximum sessions reached, rejecting connection",
			log.String("remote_addr", r.RemoteAddr))
		s.writeError(w, http.StatusServiceUnavailable, ErrMaxSessionsReached)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("Websocket upgrade failed", log.Error(err))
		return
	}

	id := uuid.NewString()
	c := &client{
		id:     id,
		conn:   conn,
		logger: s.logger.With(log.Session(id)),
		config: s.config,
		send:   make(chan []byte, s.config.SendBuffer),
		done:   make(chan struct{}),
	}
	c.touch()
	if !s.register(c) {
		s.logger.Warn("Maximum sessions reached, rejecting connection",
			log.String("remote_addr", r.RemoteAddr))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, ErrMaxSessionsReached.Error()),
			time.Now().Add(s.config.WriteTimeout))
		_ = conn.Close()
		return
	}
	defer s.unregister(c)

	if err := s.serveClient(r.Context(), c, level); err != nil {
		c.logger.Debug("Client session ended", log.Error(err))
	}
}

// serveClient runs the session for one connection until either side quits.
func (s *Server) serveClient(ctx context.Context, c *client, level string) error {
	cfg := s.sessionConfig
	cfg.Level = ""
	sess, err := session.New(c.id, cfg, s.worldConfig, s.catalog,
		session.WithBus(s.bus),
		session.WithLogger(s.logger))
	if err != nil {
		c.close()
		return errors.Wrap(err, "create session")
	}
	c.session = sess
	defer sess.Close()

	sub, err := s.bus.Subscribe(c.id, bus.AnyEvent, c.forward)
	if err != nil {
		c.close()
		return errors.Wrap(err, "subscribe session events")
	}
	defer func() { _ = s.bus.Unsubscribe(sub) }()

	c.queue(Outbound{Type: MsgWelcome, Data: welcome{Session: c.id}})
	if err := sess.LoadLevel(level); err != nil {
		c.close()
		return err
	}

	c.logger.Info("Client connected",
		log.String("remote_addr", c.conn.RemoteAddr().String()),
		log.String("level", level))
	defer c.logger.Info("Client disconnected")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-ctx.Done():
		case <-c.done:
		}
		cancel()
		c.close()
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sess.Run(gctx) })
	g.Go(func() error { return c.writePump(gctx) })
	g.Go(func() error {
		defer cancel()
		return c.readPump()
	})
	return g.Wait()
}

// forward turns a session event into an outbound frame. It runs inside the
// session's tick and must not block: when the client falls behind, frames
// are dropped.
func (c *client) forward(e bus.Event) error {
	payload, err := encode(Outbound{Type: e.Type(), Data: e.Data()})
	if err != nil {
		return errors.Wrapf(err, "encode %s event", e.Type())
	}
	if e.Type() == bus.EventPositions {
		digest := xxhash.Sum64(payload)
		if digest == c.lastFrame {
			return nil
		}
		c.lastFrame = digest
	}
	c.enqueue(payload)
	return nil
}

func (c *client) queue(msg Outbound) {
	payload, err := encode(msg)
	if err != nil {
		c.logger.Error("Failed to encode message", log.String("type", msg.Type), log.Error(err))
		return
	}
	c.enqueue(payload)
}

func (c *client) enqueue(payload []byte) {
	select {
	case c.send <- payload:
	case <-c.done:
	default:
		c.logger.Debug("Send buffer full, dropping frame")
	}
}

func (c *client) readPump() error {
	c.conn.SetReadLimit(c.config.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * c.config.PingInterval))
	c.conn.SetPongHandler(func(string) error {
		c.touch()
		return c.conn.SetReadDeadline(time.Now().Add(2 * c.config.PingInterval))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return errors.Wrap(err, "read message")
			}
			return nil
		}
		c.touch()
		_ = c.conn.SetReadDeadline(time.Now().Add(2 * c.config.PingInterval))

		var msg Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			c.queue(errorMessage(errors.Wrap(ErrInvalidMessage, err.Error())))
			continue
		}
		if err := c.handle(msg); err != nil {
			c.queue(errorMessage(err))
		}
	}
}

func (c *client) handle(msg Inbound) error {
	sess := c.session
	switch msg.Type {
	case MsgPointerDown:
		sess.PointerDown(msg.X, msg.Y)
	case MsgPointerMove:
		sess.PointerMove(msg.X, msg.Y)
	case MsgPointerUp:
		sess.PointerUp()
	case MsgKey:
		sess.PressKey(msg.Key)
	case MsgStart:
		return sess.Start()
	case MsgBreak:
		_, err := sess.Break()
		return err
	case MsgLevel:
		if msg.Level == "" && msg.LevelID != nil {
			return sess.LoadLevelByID(*msg.LevelID)
		}
		return sess.LoadLevel(msg.Level)
	case MsgNext:
		_, err := sess.NextLevel()
		return err
	case MsgReset:
		return sess.Reset()
	case MsgLayout:
		layout, err := sess.Layout()
		if err != nil {
			return err
		}
		c.queue(Outbound{Type: MsgLayout, Data: layout})
	default:
		return errors.Wrapf(ErrInvalidMessage, "unknown type %q", msg.Type)
	}
	return nil
}

func (c *client) writePump(ctx context.Context) error {
	ping := time.NewTicker(c.config.PingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.config.WriteTimeout))
			return nil
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return errors.Wrap(err, "write message")
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.config.WriteTimeout)); err != nil {
				return errors.Wrap(err, "write ping")
			}
		}
	}
}

func (c *client) touch() {
	c.seen.Store(time.Now().UnixNano())
}

func (c *client) lastSeen() time.Time {
	return time.Unix(0, c.seen.Load())
}

// close signals every pump to stop and closes the socket. Safe to call
// more than once and from any goroutine.
func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func errorMessage(err error) Outbound {
	return Outbound{Type: MsgError, Data: errorResponse{Error: err.Error()}}
}

func (s *Server) closedFlag() bool {
	return atomic.LoadInt32(&s.closed) == 1
}
