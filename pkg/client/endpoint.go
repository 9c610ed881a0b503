package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/FreePeak/golang-mcp-sse-client/internal/domain"
	"github.com/FreePeak/golang-mcp-sse-client/internal/domain/shared"
	"github.com/FreePeak/golang-mcp-sse-client/internal/infrastructure/sse"
)

// sessionParams are the query parameters a server may carry the session id in.
var sessionParams = []string{"sessionId", "session_id"}

// endpointMessage is the JSON form of the endpoint event:
// {"method":"endpoint","params":{"uri":"/messages?sessionId=..."}}
type endpointMessage struct {
	Method string `json:"method"`
	Params struct {
		URI string `json:"uri"`
	} `json:"params"`
}

// parseEndpoint extracts the message endpoint and session id from the first
// event of a stream. The data is either a bare URI or an endpointMessage.
// Relative URIs are resolved against serverURL.
func parseEndpoint(serverURL string, ev sse.Event) (endpoint string, sessionID string, err error) {
	const op = "endpoint"

	data := strings.TrimSpace(ev.Data)

	var uri string
	switch {
	case ev.Type == shared.EventEndpoint && !strings.HasPrefix(data, "{"):
		uri = data
	case ev.Type == shared.EventEndpoint || ev.Type == shared.EventMessage:
		var msg endpointMessage
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			if ev.Type == shared.EventMessage {
				return "", "", domain.NewProtocolError(op, "first event is not an endpoint event", err)
			}
			return "", "", domain.NewProtocolError(op, "malformed endpoint event", err)
		}
		if msg.Method != shared.EventEndpoint {
			return "", "", domain.NewProtocolError(op, fmt.Sprintf("first event has method %q, want endpoint", msg.Method), nil)
		}
		uri = strings.TrimSpace(msg.Params.URI)
	default:
		return "", "", domain.NewProtocolError(op, fmt.Sprintf("first event is %q, want endpoint", ev.Type), nil)
	}

	if uri == "" {
		return "", "", domain.NewProtocolError(op, "endpoint event carries no uri", nil)
	}

	base, err := url.Parse(serverURL)
	if err != nil {
		return "", "", domain.NewProtocolError(op, "invalid server url", err)
	}
	ref, err := url.Parse(uri)
	if err != nil {
		return "", "", domain.NewProtocolError(op, "invalid endpoint uri", err)
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", "", domain.NewProtocolError(op, fmt.Sprintf("endpoint uri %q is not http(s)", uri), nil)
	}

	query := resolved.Query()
	for _, key := range sessionParams {
		if id := query.Get(key); id != "" {
			return resolved.String(), id, nil
		}
	}
	return "", "", domain.NewProtocolError(op, "endpoint uri carries no session id", nil)
}
