package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/FreePeak/golang-mcp-sse-client/internal/domain"
	"github.com/FreePeak/golang-mcp-sse-client/internal/infrastructure/logging"
	"github.com/FreePeak/golang-mcp-sse-client/internal/infrastructure/transport"
)

// session returns the live connection and endpoint, or the precondition
// error for the current state.
func (c *Client) session(op string, needInit bool) (*conn, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.state == domain.StateError:
		if c.lastErr != nil && domain.IsConnectionError(c.lastErr) {
			return nil, "", domain.NewConnectionError(op, errors.Unwrap(c.lastErr))
		}
		return nil, "", domain.NewConnectionError(op, domain.ErrStreamClosed)
	case c.state != domain.StateConnected:
		return nil, "", domain.NewProtocolError(op, "", domain.ErrNotConnected)
	case needInit && !c.initialized:
		return nil, "", domain.NewProtocolError(op, "", domain.ErrNotInitialized)
	}
	return c.conn, c.endpoint, nil
}

// request posts a JSON-RPC request and waits for its response, from the HTTP
// body or from the stream, and returns the result payload.
func (c *Client) request(ctx context.Context, op string, cn *conn, endpoint, method string, params interface{}) (json.RawMessage, error) {
	id := uuid.New().String()

	ch, err := cn.register(id)
	if err != nil {
		return nil, domain.NewConnectionError(op, errors.Unwrap(err))
	}
	defer cn.unregister(id)

	c.logger.Debug("Sending request", logging.Fields{"method": method, "id": id})

	resp, err := c.post(ctx, op, cn, endpoint, domain.JSONRPCRequest{
		JSONRPC: domain.JSONRPCVersion,
		ID:      id,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, err
	}

	// A rejection without an id answers this request too.
	if resp != nil && resp.IDKey() != id && !(resp.ID == nil && resp.Error != nil) {
		c.logger.Debug("Ignoring response body with foreign id", logging.Fields{"id": resp.IDKey(), "want": id})
		resp = nil
	}

	if resp == nil {
		timer := time.NewTimer(c.cfg.RequestTimeout)
		defer timer.Stop()

		select {
		case resp = <-ch:
		case <-cn.done:
			return nil, domain.NewConnectionError(op, errors.Unwrap(cn.cause()))
		case <-ctx.Done():
			return nil, domain.NewConnectionError(op, ctx.Err())
		case <-timer.C:
			err := domain.NewConnectionError(op, fmt.Errorf("no response within %s", c.cfg.RequestTimeout))
			c.fail(cn, err)
			return nil, err
		}
	}

	if resp.Error != nil {
		return nil, domain.NewServerError(op, resp.Error)
	}
	if resp.Result == nil {
		return nil, domain.NewProtocolError(op, "response carries neither result nor error", nil)
	}
	return resp.Result, nil
}

// notification posts a JSON-RPC notification. The server sends no response.
func (c *Client) notification(ctx context.Context, cn *conn, endpoint, method string, params interface{}) error {
	_, err := c.post(ctx, method, cn, endpoint, domain.JSONRPCRequest{
		JSONRPC: domain.JSONRPCVersion,
		Method:  method,
		Params:  params,
	})
	return err
}

// post sends msg and applies the failure policy. The post is abandoned when
// cn closes.
func (c *Client) post(ctx context.Context, op string, cn *conn, endpoint string, msg domain.JSONRPCRequest) (*domain.JSONRPCResponse, error) {
	postCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(cn.ctx, cancel)
	defer stop()

	resp, err := c.transport.Post(postCtx, endpoint, msg)
	if err == nil {
		return resp, nil
	}

	if cause := cn.cause(); cause != nil {
		return nil, domain.NewConnectionError(op, errors.Unwrap(cause))
	}
	return nil, c.requestFailed(ctx, cn, err)
}

// requestFailed applies the failure policy to a transport error. Lost
// connections move the session to Error; rejections and caller
// cancellations leave it alone.
func (c *Client) requestFailed(ctx context.Context, cn *conn, err error) error {
	var statusErr *transport.StatusError
	switch {
	case !domain.IsConnectionError(err):
	case ctx.Err() != nil:
	case errors.As(err, &statusErr):
	default:
		c.fail(cn, err)
	}
	return err
}
