package http

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	sse "github.com/tmaxmax/go-sse"

	"go-currency-exchange-mcp/session"
)

const (
	ssePath      = "/sse"
	messagesPath = "/messages"
	healthPath   = "/health"

	// maxMessageSize caps a posted JSON-RPC message.
	maxMessageSize = 4 << 20
)

// Server dependencies for HTTP Server functions
type Server struct {
	// MCP protocol server bound to every session
	MCP *mcp.Server

	// Sessions open push channels by session id
	Sessions *session.Registry

	Logger log.Logger

	router http.ServeMux
}

func NewServer(m *mcp.Server, sessions *session.Registry, logger log.Logger) *Server {
	server := &Server{
		MCP:      m,
		Sessions: sessions,
		Logger:   logger,
		router:   http.ServeMux{},
	}
	server.routes()
	return server
}

func (s *Server) routes() {
	s.router.Handle(ssePath, s.stream())
	s.router.Handle(messagesPath, s.messages())
	s.router.Handle(healthPath, s.health())
}

func (s *Server) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(rw, r)
}

// stream produces the GET /sse handler. It opens a session, binds the MCP
// server to it and announces the message endpoint, then holds the response
// open until the client disconnects or the session is closed. The session is
// evicted on the way out.
func (s *Server) stream() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(rw, http.MethodGet)
			return
		}

		logger := log.With(s.Logger, "remote", r.RemoteAddr)
		level.Info(logger).Log("msg", "new SSE connection")

		stream, err := sse.Upgrade(rw, r)
		if err != nil {
			level.Error(logger).Log("msg", "upgrade failed", "err", err)
			http.Error(rw, "Streaming unsupported", http.StatusInternalServerError)
			return
		}

		sess, err := s.Sessions.Open(stream, r.RemoteAddr)
		if err != nil {
			level.Error(logger).Log("msg", "open session failed", "err", err)
			http.Error(rw, "Failed to open session", http.StatusInternalServerError)
			return
		}
		defer s.Sessions.Evict(sess.ID)
		logger = log.With(logger, "session", sess.ID)

		ss, err := s.MCP.Connect(r.Context(), sess.Conn, nil)
		if err != nil {
			level.Error(logger).Log("msg", "connect MCP server failed", "err", err)
			return
		}
		defer ss.Close()

		endpoint := messagesPath + "?sessionId=" + url.QueryEscape(sess.ID)
		if err := sess.Conn.Announce(endpoint); err != nil {
			level.Warn(logger).Log("msg", "announce endpoint failed", "err", err)
			return
		}

		select {
		case <-r.Context().Done():
			level.Info(logger).Log("msg", "client disconnected")
		case <-sess.Conn.Done():
			level.Info(logger).Log("msg", "session closed")
		}
	}
}

// messages produces the POST /messages handler routing one JSON-RPC message to
// the session named by the sessionId query parameter.
func (s *Server) messages() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(rw, http.MethodPost)
			return
		}
		defer r.Body.Close()

		id := r.URL.Query().Get("sessionId")
		if _, ok := s.Sessions.Lookup(id); !ok {
			sessionNotFound(rw)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(rw, r.Body, maxMessageSize))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				plainText(rw, http.StatusRequestEntityTooLarge, "Message too large")
				return
			}
			plainText(rw, http.StatusBadRequest, "Invalid request")
			return
		}

		msg, err := jsonrpc.DecodeMessage(body)
		if err != nil {
			level.Warn(s.Logger).Log("msg", "invalid JSON-RPC message", "session", id, "err", err)
			plainText(rw, http.StatusBadRequest, "Invalid message: "+err.Error())
			return
		}

		err = s.Sessions.Forward(r.Context(), id, msg)
		switch {
		case err == nil:
			plainText(rw, http.StatusAccepted, "Accepted")
		case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrSessionClosed):
			sessionNotFound(rw)
		default:
			level.Warn(s.Logger).Log("msg", "forward failed", "session", id, "err", err)
			plainText(rw, http.StatusServiceUnavailable, "Session busy")
		}
	}
}

func (s *Server) health() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		plainText(rw, http.StatusOK, "ok")
	}
}

func sessionNotFound(rw http.ResponseWriter) {
	plainText(rw, http.StatusNotFound, "Session not found")
}

func methodNotAllowed(rw http.ResponseWriter, allow string) {
	rw.Header().Set("Allow", allow)
	plainText(rw, http.StatusMethodNotAllowed, "Method not allowed")
}

func plainText(rw http.ResponseWriter, status int, body string) {
	rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
	rw.WriteHeader(status)
	_, _ = rw.Write([]byte(body))
}
