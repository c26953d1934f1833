package session

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	sse "github.com/tmaxmax/go-sse"
)

const (
	endpointEvent = "endpoint"
	messageEvent  = "message"
)

// Stream is the outbound half of a push channel. *sse.Session implements it.
type Stream interface {
	Send(*sse.Message) error
	Flush() error
}

// Conn binds one push stream to the messages posted for its session.
//
// Conn implements mcp.Transport, returning itself from Connect, and
// mcp.Connection: Read yields posted messages in delivery order and Write
// pushes each outgoing message as an SSE "message" event.
type Conn struct {
	id       string
	stream   Stream
	incoming chan jsonrpc.Message

	// writeMu serialises events on stream
	writeMu sync.Mutex

	done      chan struct{}
	closeOnce sync.Once
}

var (
	_ mcp.Transport  = (*Conn)(nil)
	_ mcp.Connection = (*Conn)(nil)
)

func newConn(id string, stream Stream, buffer int) *Conn {
	return &Conn{
		id:       id,
		stream:   stream,
		incoming: make(chan jsonrpc.Message, buffer),
		done:     make(chan struct{}),
	}
}

// Connect implements mcp.Transport.
func (c *Conn) Connect(context.Context) (mcp.Connection, error) {
	return c, nil
}

// Read implements mcp.Connection. It returns io.EOF once the connection is closed.
func (c *Conn) Read(ctx context.Context) (jsonrpc.Message, error) {
	select {
	case msg := <-c.incoming:
		return msg, nil
	case <-c.done:
		return nil, io.EOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Write implements mcp.Connection.
func (c *Conn) Write(ctx context.Context, msg jsonrpc.Message) error {
	data, err := jsonrpc.EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encoding message [%v]: %w", c.id, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.send(messageEvent, string(data))
}

// Announce pushes the "endpoint" event telling the client where to post messages.
func (c *Conn) Announce(endpoint string) error {
	return c.send(endpointEvent, endpoint)
}

func (c *Conn) send(event, data string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	select {
	case <-c.done:
		return ErrSessionClosed
	default:
	}

	m := &sse.Message{Type: sse.Type(event)}
	m.AppendData(data)
	err := c.stream.Send(m)
	if err == nil {
		err = c.stream.Flush()
	}
	if err != nil {
		// the client is gone; nothing more can reach it
		c.Close()
		return fmt.Errorf("pushing %s event [%v]: %w", event, c.id, err)
	}
	return nil
}

// Deliver queues a posted message for Read.
func (c *Conn) Deliver(ctx context.Context, msg jsonrpc.Message) error {
	select {
	case <-c.done:
		return ErrSessionClosed
	default:
	}

	select {
	case c.incoming <- msg:
		return nil
	case <-c.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements mcp.Connection. It is safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return nil
}

// Done is closed once the connection is closed.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// SessionID implements mcp.Connection.
func (c *Conn) SessionID() string {
	return c.id
}
