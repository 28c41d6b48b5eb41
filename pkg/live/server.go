package live

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	rerrors "github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
)

// ServerConfig configures a Server.
type ServerConfig struct {
	// ReadTimeout is the HTTP read timeout. It is added to PingInterval
	// to get the WebSocket pong deadline.
	// Default: 10s
	ReadTimeout time.Duration

	// WriteTimeout is the deadline for each HTTP response and WebSocket write.
	// Default: 10s
	WriteTimeout time.Duration

	// PingInterval is the WebSocket keepalive interval.
	// Default: 30s
	PingInterval time.Duration

	// MetricsPath is where Gatherer is exposed. Empty or "-" disables it.
	MetricsPath string

	// Gatherer is the Prometheus registry served at MetricsPath.
	// Default: prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer

	// CheckOrigin validates the Origin header of WebSocket requests.
	// Default: allow all origins.
	CheckOrigin func(*http.Request) bool

	// Logger receives request and connection logs.
	// Default: slog.Default()
	Logger *slog.Logger
}

func (c *ServerConfig) applyDefaults() {
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 30 * time.Second
	}
	if c.Gatherer == nil {
		c.Gatherer = prometheus.DefaultGatherer
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = func(*http.Request) bool { return true }
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Server exposes a Counter over HTTP and WebSocket.
type Server struct {
	host    *Host
	counter *Counter
	config  ServerConfig
	logger  *slog.Logger

	router   chi.Router
	upgrader websocket.Upgrader
	clients  atomic.Int64
}

// NewServer creates a Server for counter, which must live on host's runtime.
//
// Routes:
//
//	GET  /healthz      liveness
//	GET  /state        counter state, runtime and host stats
//	POST /count/{op}   inc, dec or reset; optional ?value=n step
//	PUT  /count        {"value": n}
//	GET  /ws           WebSocket state stream
//	GET  <MetricsPath> Prometheus metrics
func NewServer(host *Host, counter *Counter, config ServerConfig) *Server {
	config.applyDefaults()
	s := &Server{
		host:    host,
		counter: counter,
		config:  config,
		logger:  config.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     config.CheckOrigin,
		},
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/state", s.handleState)
	r.Post("/count/{op}", s.handleOp)
	r.Put("/count", s.handleSet)
	r.Get("/ws", s.serveWS)

	if p := s.config.MetricsPath; p != "" && p != "-" {
		r.Handle(p, promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Clients returns the number of connected WebSocket clients.
func (s *Server) Clients() int64 {
	return s.clients.Load()
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: s.config.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("live server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.WriteTimeout)
		defer cancel()
		s.logger.Info("live server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// logRequests logs each request with slog. WebSocket upgrades are logged
// when the connection is hijacked.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StateResponse is the body of GET /state.
type StateResponse struct {
	State   State          `json:"state"`
	Runtime reactive.Stats `json:"runtime"`
	Host    HostStats      `json:"host"`
	Clients int64          `json:"clients"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var resp StateResponse
	err := s.host.Do(r.Context(), func() {
		resp.State = s.counter.State()
		resp.Runtime = s.host.Runtime().Stats()
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp.Host = s.host.Stats()
	resp.Clients = s.clients.Load()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOp(w http.ResponseWriter, r *http.Request) {
	msg := Message{Op: Op(chi.URLParam(r, "op"))}
	if msg.Op == OpSet {
		s.writeError(w, rerrors.New("P061").WithDetail("use PUT /count to set the count"))
		return
	}
	if v := r.URL.Query().Get("value"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, rerrors.New("P061").WithDetail("value must be an integer").Wrap(err))
			return
		}
		msg.Value = n
	}
	s.apply(w, r, msg)
}

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value *int `json:"value"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageSize)).Decode(&body); err != nil {
		s.writeError(w, rerrors.New("P061").WithDetail("body must be {\"value\": n}").Wrap(err))
		return
	}
	if body.Value == nil {
		s.writeError(w, rerrors.New("P061").WithDetail("missing value"))
		return
	}
	s.apply(w, r, Message{Op: OpSet, Value: *body.Value})
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request, msg Message) {
	var (
		st       State
		applyErr error
	)
	err := s.host.Do(r.Context(), func() {
		if _, applyErr = s.counter.Apply(msg); applyErr == nil {
			st = s.counter.State()
		}
	})
	if err == nil {
		err = applyErr
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// writeError maps an error to a status code and writes it as JSON.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case rerrors.HasCode(err, "P061"):
		status = http.StatusBadRequest
	case rerrors.HasCode(err, "P062"):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status = http.StatusGatewayTimeout
	}
	if status >= 500 {
		s.logger.Error("request failed", "status", status, "error", err)
	}

	re := rerrors.FromError(err, "R004")
	if status == http.StatusGatewayTimeout {
		re = rerrors.Newf(rerrors.CategoryProtocol, "%v", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(re.FormatJSON()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
