package live

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	rerrors "github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
)

const (
	// maxMessageSize is the largest client message accepted.
	maxMessageSize = 4096

	// sendBufferSize is the number of frames buffered per client.
	sendBufferSize = 32
)

// Frame types sent to clients.
const (
	FrameState = "state"
	FrameError = "error"
)

// Frame is a server to client message.
type Frame struct {
	Type   string    `json:"type"`
	Client string    `json:"client"`
	Seq    uint64    `json:"seq"`
	State  *State    `json:"state,omitempty"`
	Error  *FrameErr `json:"error,omitempty"`
}

// FrameErr describes a rejected client message.
type FrameErr struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// client is one WebSocket connection.
type client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	seq    atomic.Uint64
	server *Server
}

func newClient(s *Server, conn *websocket.Conn) *client {
	return &client{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		server: s,
	}
}

// push queues a frame without blocking. It is called from the host
// goroutine, so a slow client loses frames instead of stalling the host.
func (c *client) push(f Frame) {
	f.Client = c.id
	f.Seq = c.seq.Add(1)
	data, err := json.Marshal(f)
	if err != nil {
		c.server.logger.Error("frame encode error", "client", c.id, "error", err)
		return
	}
	select {
	case c.send <- data:
	default:
		c.server.logger.Warn("client send buffer full, dropping frame", "client", c.id, "seq", f.Seq)
	}
}

func (c *client) pushError(err error) {
	re := rerrors.FromError(err, "P061")
	c.push(Frame{Type: FrameError, Error: &FrameErr{Code: re.Code, Message: re.Error()}})
}

// serveWS upgrades the connection, subscribes a watcher effect for the
// client and runs its read and write loops until either side closes.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written an HTTP error.
		s.logger.Warn("websocket upgrade failed", "error", rerrors.New("P060").Wrap(err))
		return
	}

	c := newClient(s, conn)
	ctx := r.Context()

	var dispose reactive.Disposer
	err = s.host.Do(ctx, func() {
		dispose = reactive.NewDisposableEffect(s.host.Runtime(), func() reactive.Cleanup {
			st := s.counter.Track()
			c.push(Frame{Type: FrameState, State: &st})
			return nil
		}, reactive.WithEffectName("ws-client"))
	})
	if err != nil {
		s.logger.Error("websocket subscribe failed", "client", c.id, "error", err)
		conn.Close()
		return
	}

	s.clients.Add(1)
	s.logger.Info("client connected", "client", c.id, "remote", r.RemoteAddr)

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		c.writeLoop()
	}()

	c.readLoop(ctx)

	// Stop the watcher before closing send: once dispose has run on the
	// host goroutine nothing pushes to this client again.
	if err := s.host.Do(context.Background(), func() { dispose() }); err != nil {
		s.logger.Warn("websocket unsubscribe failed", "client", c.id, "error", err)
	}
	close(c.send)
	<-writeDone

	s.clients.Add(-1)
	s.logger.Info("client disconnected", "client", c.id)
}

// readLoop decodes client messages and applies them on the host until the
// connection closes.
func (c *client) readLoop(ctx context.Context) {
	s := c.server
	c.conn.SetReadLimit(maxMessageSize)
	pongWait := s.config.PingInterval + s.config.ReadTimeout
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "client", c.id, "error", rerrors.New("P060").Wrap(err))
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.pushError(rerrors.New("P061").WithDetail("message is not valid JSON").Wrap(err))
			continue
		}

		var applyErr error
		if err := s.host.Do(ctx, func() { _, applyErr = s.counter.Apply(msg) }); err != nil {
			c.pushError(err)
			continue
		}
		if applyErr != nil {
			c.pushError(applyErr)
		}
	}
}

// writeLoop sends queued frames and keepalive pings. It sends a close frame
// and returns when send is closed, or returns on the first write error.
func (c *client) writeLoop() {
	s := c.server
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()
	defer c.conn.Close()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.logger.Warn("write error", "client", c.id, "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
