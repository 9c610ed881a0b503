package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/FreePeak/golang-mcp-sse-client/internal/domain"
	"github.com/FreePeak/golang-mcp-sse-client/internal/domain/shared"
	"github.com/FreePeak/golang-mcp-sse-client/internal/infrastructure/logging"
	"github.com/FreePeak/golang-mcp-sse-client/internal/infrastructure/sse"
)

// Connect opens the event stream and waits for the endpoint event.
//
// Connect is a no-op when already connected and fails with ErrBusy while
// another Connect is in flight. A session in the Error state must be
// disconnected before it can connect again.
func (c *Client) Connect(ctx context.Context) error {
	const op = "connect"

	c.mu.Lock()
	switch c.state {
	case domain.StateConnected:
		c.mu.Unlock()
		return nil
	case domain.StateConnecting:
		c.mu.Unlock()
		return domain.NewProtocolError(op, "", domain.ErrBusy)
	case domain.StateError:
		c.mu.Unlock()
		return domain.NewProtocolError(op, "", domain.ErrDisconnectRequired)
	}

	streamCtx, cancel := context.WithCancel(context.Background())
	cn := newConn(streamCtx, cancel)
	c.conn = cn
	c.lastErr = nil
	from := c.setStateLocked(domain.StateConnecting)
	c.mu.Unlock()

	c.logger.Info("Connecting to MCP server", logging.Fields{"url": c.cfg.ConnectURL()})
	c.stateChanged(from, domain.StateConnecting)

	hsCtx, hsCancel := context.WithTimeout(ctx, c.cfg.EndpointTimeout)
	defer hsCancel()

	// The stream outlives ctx, so the handshake deadline cancels it explicitly.
	stop := context.AfterFunc(hsCtx, cancel)

	ev, reader, err := c.handshake(streamCtx, cn)
	if !stop() && err == nil {
		err = hsCtx.Err()
	}
	if err != nil {
		return c.connectFailed(ctx, hsCtx, cn, err)
	}

	endpoint, sessionID, err := parseEndpoint(c.cfg.ServerURL, ev)
	if err != nil {
		c.fail(cn, err)
		return err
	}

	c.mu.Lock()
	if c.conn != cn {
		c.mu.Unlock()
		cn.close(domain.NewConnectionError(op, domain.ErrDisconnected))
		return domain.NewConnectionError(op, domain.ErrDisconnected)
	}
	c.sessionID = sessionID
	c.endpoint = endpoint
	from = c.setStateLocked(domain.StateConnected)
	c.mu.Unlock()

	c.logger.Info("Connected", logging.Fields{"session_id": sessionID, "endpoint": endpoint})
	c.stateChanged(from, domain.StateConnected)

	go c.readLoop(cn, reader)
	return nil
}

// handshake opens the stream and reads its first event.
func (c *Client) handshake(ctx context.Context, cn *conn) (sse.Event, *sse.Reader, error) {
	body, err := c.transport.OpenStream(ctx, c.cfg.ConnectURL())
	if err != nil {
		return sse.Event{}, nil, err
	}
	if !cn.attach(body) {
		return sse.Event{}, nil, cn.cause()
	}

	reader := sse.NewReader(body)
	ev, err := reader.Next()
	if err != nil {
		return sse.Event{}, nil, domain.NewConnectionError("connect", streamErr(err))
	}
	return ev, reader, nil
}

// connectFailed maps a handshake failure onto the session state. A caller
// cancellation returns the session to Disconnected; anything else is a
// transport failure and moves it to Error.
func (c *Client) connectFailed(ctx, hsCtx context.Context, cn *conn, err error) error {
	const op = "connect"

	switch {
	case ctx.Err() != nil:
		err = domain.NewConnectionError(op, ctx.Err())
		cn.close(err)

		c.mu.Lock()
		if c.conn != cn {
			c.mu.Unlock()
			return err
		}
		c.resetLocked()
		from := c.setStateLocked(domain.StateDisconnected)
		c.mu.Unlock()

		c.stateChanged(from, domain.StateDisconnected)
		return err
	case hsCtx.Err() != nil:
		err = domain.NewConnectionError(op, fmt.Errorf("no endpoint event within %s: %w", c.cfg.EndpointTimeout, hsCtx.Err()))
	case !domain.IsConnectionError(err) && !domain.IsProtocolError(err):
		err = domain.NewConnectionError(op, err)
	}

	c.fail(cn, err)
	return err
}

// readLoop dispatches stream events until the stream ends.
func (c *Client) readLoop(cn *conn, reader *sse.Reader) {
	for {
		ev, err := reader.Next()
		if err != nil {
			select {
			case <-cn.done:
				// Closed by Disconnect or a failed request.
			default:
				c.fail(cn, domain.NewConnectionError("stream", streamErr(err)))
			}
			return
		}
		c.handleEvent(cn, ev)
	}
}

func streamErr(err error) error {
	if errors.Is(err, io.EOF) {
		return domain.ErrStreamClosed
	}
	return fmt.Errorf("%w: %w", domain.ErrStreamClosed, err)
}

// handleEvent routes one stream event: responses to their waiting request,
// notifications to the handler.
func (c *Client) handleEvent(cn *conn, ev sse.Event) {
	switch ev.Type {
	case shared.EventMessage:
	case shared.MethodPing:
		c.logger.Debug("Received heartbeat from server")
		return
	default:
		c.logger.Debug("Ignoring event", logging.Fields{"event": ev.Type})
		return
	}

	var msg domain.IncomingMessage
	if err := json.Unmarshal([]byte(ev.Data), &msg); err != nil {
		c.logger.Error("Failed to parse SSE data", logging.Fields{"error": err.Error()})
		return
	}

	switch {
	case msg.ID == nil && msg.Method == "" && msg.Error != nil:
		// Parse and invalid-request errors carry a null id.
		if !cn.deliverUnaddressed(msg.Response()) {
			c.logger.Error("Server reported an error without an id", logging.Fields{
				"code":    msg.Error.Code,
				"message": msg.Error.Message,
			})
		}
	case msg.IsResponse():
		if !cn.deliver(msg.Response()) {
			c.logger.Debug("Discarding response with unknown id", logging.Fields{"id": domain.IDKey(msg.ID)})
		}
	case msg.Method == shared.MethodPing:
		c.logger.Debug("Received heartbeat from server")
	case msg.IsNotification() && strings.HasPrefix(msg.Method, c.cfg.NotificationPrefix):
		c.notify(domain.NotificationFromMessage(&msg))
	default:
		c.logger.Debug("Ignoring message", logging.Fields{"method": msg.Method})
	}
}

func (c *Client) notify(n domain.Notification) {
	c.logger.Log(n.Level, "Server notification", logging.Fields{"method": n.Method, "data": string(n.Data)})

	c.handlerMu.RLock()
	handler := c.notificationHandler
	c.handlerMu.RUnlock()

	if handler == nil {
		c.logger.Debug("No notification handler registered, dropping notification", logging.Fields{"method": n.Method})
		return
	}
	handler(n)
}

// Disconnect closes the stream, fails in-flight requests and clears the
// session. It is safe in every state; on a disconnected Client it does nothing.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	if c.state == domain.StateDisconnected && c.conn == nil {
		c.mu.Unlock()
		return nil
	}
	cn := c.conn
	c.resetLocked()
	c.lastErr = nil
	from := c.setStateLocked(domain.StateDisconnected)
	c.mu.Unlock()

	c.logger.Info("Disconnecting from MCP server")
	if cn != nil {
		cn.close(domain.NewConnectionError("disconnect", domain.ErrDisconnected))
	}
	c.stateChanged(from, domain.StateDisconnected)
	return nil
}

// Close is Disconnect, for use as an io.Closer.
func (c *Client) Close() error {
	return c.Disconnect()
}
