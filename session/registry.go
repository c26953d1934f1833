package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/oklog/ulid/v2"
)

var (
	// ErrSessionNotFound is returned for identifiers the registry does not hold.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionClosed is returned when the session's push stream has gone away.
	ErrSessionClosed = errors.New("session closed")
)

// defaultBufferSize is how many posted messages may wait for the protocol server per session.
const defaultBufferSize = 16

// Session correlates a push stream with the messages later posted for it.
type Session struct {
	ID         string
	Conn       *Conn
	RemoteAddr string
	Opened     time.Time
}

// Registry maps session identifiers to open sessions.
// It is safe for concurrent use: opens and evictions take the write lock,
// lookups the read lock.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	newID  func() string
	buffer int
	logger log.Logger
}

// Option configures a Registry
type Option func(*Registry)

// WithIDGenerator replaces the ULID session identifier source.
func WithIDGenerator(f func() string) Option {
	return func(r *Registry) {
		r.newID = f
	}
}

// WithBufferSize sets the per-session inbound queue size.
func WithBufferSize(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.buffer = n
		}
	}
}

// NewRegistry constructs an empty Registry.
func NewRegistry(logger log.Logger, opts ...Option) *Registry {
	r := &Registry{
		sessions: map[string]*Session{},
		newID:    func() string { return ulid.Make().String() },
		buffer:   defaultBufferSize,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open registers a new session pushing to stream and returns it. The caller
// tells the remote client the session ID.
func (r *Registry) Open(stream Stream, remoteAddr string) (*Session, error) {
	id := r.newID()
	if id == "" {
		return nil, errors.New("open session: empty session id")
	}

	s := &Session{
		ID:         id,
		Conn:       newConn(id, stream, r.buffer),
		RemoteAddr: remoteAddr,
		Opened:     time.Now(),
	}

	r.mu.Lock()
	if _, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("open session [%v]: duplicate session id", id)
	}
	r.sessions[id] = s
	count := len(r.sessions)
	r.mu.Unlock()

	level.Info(r.logger).Log("msg", "session opened", "session", id, "remote", remoteAddr, "sessions", count)
	return s, nil
}

// Lookup finds a session by exact identifier.
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Forward hands msg to the protocol server bound to session id.
func (r *Registry) Forward(ctx context.Context, id string, msg jsonrpc.Message) error {
	s, ok := r.Lookup(id)
	if !ok {
		return fmt.Errorf("forward [%v]: %w", id, ErrSessionNotFound)
	}
	if err := s.Conn.Deliver(ctx, msg); err != nil {
		return fmt.Errorf("forward [%v]: %w", id, err)
	}
	return nil
}

// Evict removes session id and closes its connection. It reports whether the
// session was present.
func (r *Registry) Evict(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	count := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return false
	}
	_ = s.Conn.Close()
	level.Info(r.logger).Log("msg", "session evicted", "session", id, "age", time.Since(s.Opened), "sessions", count)
	return true
}

// Len the number of open sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close evicts every session.
func (r *Registry) Close() {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	for _, id := range ids {
		r.Evict(id)
	}
}
