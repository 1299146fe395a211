// ABOUTME: HTTP+SSE transport: GET /sse opens the event stream, POST /messages feeds it.
// ABOUTME: Owns the listener lifecycle, including optional tailnet exposure via tsnet.

package mcp

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"tailscale.com/ipn/ipnstate"
	"tailscale.com/tsnet"

	"github.com/RkentMatsui/Woocommerce-MCP/internal/config"
)

// keepAliveInterval is how often an idle stream gets a comment ping so
// proxies don't reap the connection.
const keepAliveInterval = 15 * time.Second

// sseSession is one open event stream. Responses for the session are
// queued on out; done is closed when the stream handler exits.
type sseSession struct {
	id        string
	out       chan *JSONRPCResponse
	done      chan struct{}
	closeOnce sync.Once
	createdAt time.Time
}

// send queues a response for delivery on the stream. Returns false if
// the stream is already gone.
func (sess *sseSession) send(resp *JSONRPCResponse) bool {
	select {
	case sess.out <- resp:
		return true
	case <-sess.done:
		return false
	}
}

func (sess *sseSession) close() {
	sess.closeOnce.Do(func() { close(sess.done) })
}

// sessionStore manages active SSE sessions (in-memory).
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*sseSession
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*sseSession)}
}

func (s *sessionStore) create() *sseSession {
	sess := &sseSession{
		id:        uuid.New().String(),
		out:       make(chan *JSONRPCResponse, 16),
		done:      make(chan struct{}),
		createdAt: time.Now(),
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	return sess
}

func (s *sessionStore) get(id string) (*sseSession, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	return sess, ok
}

func (s *sessionStore) delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Config holds configuration for the SSE server.
type Config struct {
	HTTPAddr   string
	APIKey     string // static key; empty leaves the server open
	Tailscale  config.TailscaleConfig
	Dispatcher *Dispatcher
	Logger     *slog.Logger
}

// Server is the network transport. It serves the MCP session endpoints
// plus health checks, over a TCP listener or a tailnet node.
type Server struct {
	dispatcher  *Dispatcher
	logger      *slog.Logger
	apiKey      string
	httpAddr    string
	tailscale   config.TailscaleConfig
	sessions    *sessionStore
	httpServer  *http.Server
	tsnetServer *tsnet.Server

	// done unblocks open event streams during shutdown
	done      chan struct{}
	closeOnce sync.Once
}

// NewServer creates an SSE server with the given configuration.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		dispatcher: cfg.Dispatcher,
		logger:     logger,
		apiKey:     cfg.APIKey,
		httpAddr:   cfg.HTTPAddr,
		tailscale:  cfg.Tailscale,
		sessions:   newSessionStore(),
		done:       make(chan struct{}),
	}

	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	s.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// RegisterRoutes registers the transport endpoints on the given ServeMux.
// Every route sits behind the key gate when a key is configured.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/sse", s.requireKey(s.handleSSE))
	mux.HandleFunc("/messages", s.requireKey(s.handleMessages))
	mux.HandleFunc("/health", s.requireKey(s.handleHealth))
	mux.HandleFunc("/health/ready", s.requireKey(s.handleReady))
}

// requireKey rejects requests without the configured API key. The key is
// accepted as X-API-Key or a bearer token. No key configured means the
// gate is open, which is the local-development mode.
func (s *Server) requireKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			next(w, r)
			return
		}
		if !s.keyMatches(r) {
			s.sendError(w, http.StatusUnauthorized, "invalid or missing API key")
			return
		}
		next(w, r)
	}
}

func (s *Server) keyMatches(r *http.Request) bool {
	candidate := r.Header.Get("X-API-Key")
	if candidate == "" {
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			candidate = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	if candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(s.apiKey)) == 1
}

// handleSSE opens an event stream. The first event tells the client
// where to POST messages for this session; responses and keep-alives
// follow on the same stream.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		s.sendError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.sendError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sess := s.sessions.create()
	defer func() {
		sess.close()
		s.sessions.delete(sess.id)
		s.logger.Info("SSE session closed", "session_id", sess.id)
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	fmt.Fprintf(w, "event: endpoint\ndata: /messages?session_id=%s\n\n", sess.id)
	flusher.Flush()

	s.logger.Info("SSE session opened", "session_id", sess.id)

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case resp := <-sess.out:
			data, err := json.Marshal(resp)
			if err != nil {
				s.logger.Warn("failed to encode response event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
			flusher.Flush()
		case <-keepAlive.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			return
		case <-s.done:
			return
		}
	}
}

// handleMessages accepts one JSON-RPC message for an open session. The
// POST is acknowledged with 202 immediately; the response arrives on the
// session's event stream.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.sendError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		s.sendError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	sess, ok := s.sessions.get(sessionID)
	if !ok {
		s.sendError(w, http.StatusNotFound, "unknown session")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		s.sendError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if int64(len(body)) > MaxRequestBodySize {
		s.sendError(w, http.StatusBadRequest, "request body too large")
		return
	}

	var req JSONRPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.JSONRPC != "2.0" {
		s.sendError(w, http.StatusBadRequest, "invalid JSON-RPC version")
		return
	}

	w.WriteHeader(http.StatusAccepted)

	// Dispatch off the request goroutine. Closing the POST must not
	// cancel the tool call; the response travels over the stream.
	go func() {
		resp := s.dispatcher.Handle(context.Background(), req)
		if resp == nil {
			return
		}
		if !sess.send(resp) {
			s.logger.Warn("session closed before response delivery",
				"session_id", sess.id,
				"method", req.Method,
			)
		}
	}()
}

// handleHealth returns 200 OK if the server is alive.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady reports readiness and the size of the tool catalog.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "ready",
		"tools":  s.dispatcher.ToolCount(),
	})
}

func (s *Server) sendError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Run starts the server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.setupListener(ctx)
	if err != nil {
		return err
	}

	errCh := s.startServer(ln)
	serverErr := s.waitForShutdownSignal(ctx, errCh)

	shutdownErr := s.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// setupListener creates a listener based on configuration (Tailscale or TCP).
func (s *Server) setupListener(ctx context.Context) (net.Listener, error) {
	if s.tailscale.Enabled {
		if s.httpAddr != "" {
			s.logger.Warn("server.http_addr is ignored when tailscale is enabled", "http_addr", s.httpAddr)
		}
		return s.setupTailscaleListener(ctx)
	}

	s.logger.Info("starting MCP server", "http_addr", s.httpAddr)
	ln, err := net.Listen("tcp", s.httpAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on HTTP address: %w", err)
	}
	return ln, nil
}

// startServer starts the HTTP server in a goroutine, returning an error channel.
func (s *Server) startServer(ln net.Listener) chan error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()
	return errCh
}

// waitForShutdownSignal waits for context cancellation or a server error.
func (s *Server) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		s.logger.Error("server error", "error", err)
		return err
	}
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is
// already canceled.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown gracefully stops the server and releases resources.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down MCP server")

	// Unblock open event streams first so Shutdown is not held up
	// waiting on them.
	s.closeOnce.Do(func() { close(s.done) })

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}
	if s.tsnetServer != nil {
		if err := s.tsnetServer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("tailscale shutdown: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// resolveTailscaleStateDir returns the state directory, using the default
// if not configured.
func resolveTailscaleStateDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory for tailscale state (set tailscale.state_dir explicitly): %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "woocommerce-mcp", "tailscale"), nil
}

// resolveTailscaleAuthKey returns the auth key from config or environment.
func resolveTailscaleAuthKey(configured string) (string, error) {
	authKey := configured
	if authKey == "" {
		authKey = os.Getenv("TS_AUTHKEY")
	}
	if authKey == "" {
		return "", errors.New("tailscale auth key required: set auth_key in config or TS_AUTHKEY environment variable (get one at https://login.tailscale.com/admin/settings/keys)")
	}
	return authKey, nil
}

// setupTailscaleListener creates a tsnet node and returns its listener.
func (s *Server) setupTailscaleListener(ctx context.Context) (net.Listener, error) {
	tsCfg := s.tailscale

	stateDir, err := resolveTailscaleStateDir(tsCfg.StateDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return nil, fmt.Errorf("creating tailscale state dir: %w", err)
	}

	authKey, err := resolveTailscaleAuthKey(tsCfg.AuthKey)
	if err != nil {
		return nil, err
	}

	s.tsnetServer = &tsnet.Server{
		Hostname:  tsCfg.Hostname,
		Dir:       stateDir,
		Ephemeral: tsCfg.Ephemeral,
		AuthKey:   authKey,
	}

	s.logger.Info("starting tailscale node", "hostname", tsCfg.Hostname, "state_dir", stateDir, "ephemeral", tsCfg.Ephemeral)
	status, err := s.tsnetServer.Up(ctx)
	if err != nil {
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("starting tailscale: %w", err)
	}

	s.logTailscaleStatus(tsCfg.Hostname, status)

	if tsCfg.Funnel {
		s.logger.Info("enabling tailscale funnel (public HTTPS) on :443")
		ln, err := s.tsnetServer.ListenFunnel("tcp", ":443")
		if err != nil {
			_ = s.tsnetServer.Close()
			return nil, fmt.Errorf("listening on tailscale funnel port: %w", err)
		}
		return ln, nil
	}

	ln, err := s.tsnetServer.Listen("tcp", ":80")
	if err != nil {
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("listening on tailscale HTTP port: %w", err)
	}
	return ln, nil
}

// logTailscaleStatus logs info about the tailscale node status.
func (s *Server) logTailscaleStatus(hostname string, status *ipnstate.Status) {
	var tsAddr, dnsName string
	if len(status.TailscaleIPs) > 0 {
		tsAddr = status.TailscaleIPs[0].String()
	} else {
		s.logger.Warn("tailscale node has no IP addresses assigned")
	}
	if status.Self != nil {
		dnsName = status.Self.DNSName
	}
	s.logger.Info("tailscale node ready", "hostname", hostname, "tailscale_ip", tsAddr, "dns_name", dnsName)
}
