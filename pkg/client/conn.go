package client

import (
	"context"
	"io"
	"sync"

	"github.com/FreePeak/golang-mcp-sse-client/internal/domain"
)

// conn is one event stream and the requests waiting on it. A Client owns at
// most one live conn; a reader goroutine that outlives its conn finds itself
// replaced and stops touching session state.
type conn struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	body    io.ReadCloser
	pending map[string]chan *domain.JSONRPCResponse
	err     error
	done    chan struct{}
}

func newConn(ctx context.Context, cancel context.CancelFunc) *conn {
	return &conn{
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[string]chan *domain.JSONRPCResponse),
		done:    make(chan struct{}),
	}
}

// attach stores the stream body. It reports false, closing body, when the
// conn was closed while the stream was being opened.
func (c *conn) attach(body io.ReadCloser) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		_ = body.Close()
		return false
	}
	c.body = body
	return true
}

// register reserves a slot for the response to id.
func (c *conn) register(id string) (<-chan *domain.JSONRPCResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return nil, c.err
	}
	ch := make(chan *domain.JSONRPCResponse, 1)
	c.pending[id] = ch
	return ch, nil
}

func (c *conn) unregister(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// deliver hands resp to its waiting request. It reports false for unknown ids.
func (c *conn) deliver(resp *domain.JSONRPCResponse) bool {
	c.mu.Lock()
	ch, ok := c.pending[resp.IDKey()]
	delete(c.pending, resp.IDKey())
	c.mu.Unlock()

	if ok {
		ch <- resp
	}
	return ok
}

// deliverUnaddressed hands an id-less error response to the only waiting
// request. It reports false when no request or several requests are waiting.
func (c *conn) deliverUnaddressed(resp *domain.JSONRPCResponse) bool {
	c.mu.Lock()
	if len(c.pending) != 1 {
		c.mu.Unlock()
		return false
	}
	var ch chan *domain.JSONRPCResponse
	for id, pending := range c.pending {
		ch = pending
		delete(c.pending, id)
	}
	c.mu.Unlock()

	ch <- resp
	return true
}

// close tears the stream down and releases every waiting request with err.
// Only the first call has an effect.
func (c *conn) close(err error) {
	c.mu.Lock()
	if c.err != nil {
		c.mu.Unlock()
		return
	}
	c.err = err
	body := c.body
	c.pending = make(map[string]chan *domain.JSONRPCResponse)
	c.mu.Unlock()

	c.cancel()
	if body != nil {
		_ = body.Close()
	}
	close(c.done)
}

// cause returns the error the conn was closed with.
func (c *conn) cause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
