// Package transport performs the HTTP exchanges of an MCP SSE session: the
// long-lived event stream, JSON-RPC posts and the health probe. Failures are
// mapped onto the domain error types.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/FreePeak/golang-mcp-sse-client/internal/domain"
)

// maxBodySize caps the size of a response body read in full.
const maxBodySize = 10 << 20

// StatusError is a non-2xx answer that carried no JSON-RPC envelope.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned non-OK status: %s", e.Status)
}

// HTTP carries session traffic. Stream requests use a client without a
// timeout because the stream lives as long as the session.
type HTTP struct {
	client *http.Client
	stream *http.Client
}

// New creates an HTTP transport. A nil client is replaced by one bounded by timeout.
func New(client *http.Client, timeout time.Duration) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	stream := *client
	stream.Timeout = 0

	return &HTTP{
		client: client,
		stream: &stream,
	}
}

// OpenStream opens the event stream at url. The body must be closed by the caller.
func (t *HTTP) OpenStream(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.NewConnectionError("open stream", errors.Wrap(err, "failed to create HTTP request"))
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := t.stream.Do(req)
	if err != nil {
		return nil, domain.NewConnectionError("open stream", errors.Wrap(err, "failed to send HTTP request"))
	}

	if resp.StatusCode != http.StatusOK {
		drain(resp.Body)
		return nil, domain.NewConnectionError("open stream", &StatusError{Code: resp.StatusCode, Status: resp.Status})
	}

	return resp.Body, nil
}

// Post sends a JSON-RPC message to the session endpoint. A nil response with
// a nil error means the server accepted the message without answering in the
// HTTP body; the answer, if any, arrives on the stream.
func (t *HTTP) Post(ctx context.Context, endpoint string, msg domain.JSONRPCRequest) (*domain.JSONRPCResponse, error) {
	op := msg.Method

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, domain.NewProtocolError(op, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, domain.NewConnectionError(op, errors.Wrap(err, "failed to create HTTP request"))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, domain.NewConnectionError(op, errors.Wrap(err, "failed to send HTTP request"))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, domain.NewConnectionError(op, errors.Wrap(err, "failed to read response body"))
	}
	body = bytes.TrimSpace(body)

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300

	if len(body) == 0 {
		if ok {
			return nil, nil
		}
		return nil, domain.NewConnectionError(op, &StatusError{Code: resp.StatusCode, Status: resp.Status})
	}

	var rpcResp domain.JSONRPCResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		if !ok {
			return nil, domain.NewConnectionError(op, &StatusError{Code: resp.StatusCode, Status: resp.Status})
		}
		return nil, domain.NewProtocolError(op, "failed to parse response JSON", err)
	}

	if rpcResp.Result == nil && rpcResp.Error == nil {
		if !ok {
			return nil, domain.NewConnectionError(op, &StatusError{Code: resp.StatusCode, Status: resp.Status})
		}
		// Acknowledgements such as {"status":"accepted"} carry no id. An
		// envelope with an id but no result is returned for the caller to reject.
		if rpcResp.ID == nil {
			return nil, nil
		}
	}

	return &rpcResp, nil
}

// Health reports whether url answers 2xx with a JSON body whose status is
// "healthy". It never returns an error.
func (t *HTTP) Health(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&body); err != nil {
		return false
	}
	return body.Status == "healthy"
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxBodySize))
	_ = body.Close()
}
