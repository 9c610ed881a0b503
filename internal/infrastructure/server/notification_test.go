package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/FreePeak/golang-mcp-sse-client/internal/domain/shared"
)

func TestSendNotification(t *testing.T) {
	sender := NewNotificationSender(shared.JSONRPCVersion)
	session := NewMCPSession("s1", "test-agent", 1)
	sender.RegisterSession(session)

	err := sender.SendNotification(context.Background(), "s1", shared.JSONRPCNotification{
		Method: shared.NotificationMessage,
		Params: map[string]interface{}{"level": "info", "data": "hello"},
	})
	require.NoError(t, err)

	select {
	case n := <-session.NotificationChannel():
		assert.Equal(t, shared.JSONRPCVersion, n.JSONRPC)
		assert.Equal(t, shared.NotificationMessage, n.Method)
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}
}

func TestSendNotificationErrors(t *testing.T) {
	sender := NewNotificationSender(shared.JSONRPCVersion)
	ctx := context.Background()
	n := shared.JSONRPCNotification{Method: shared.NotificationMessage}

	err := sender.SendNotification(ctx, "missing", n)
	assert.True(t, errors.Is(err, ErrSessionNotFound))

	full := NewMCPSession("full", "", 1)
	sender.RegisterSession(full)
	require.NoError(t, sender.SendNotification(ctx, "full", n))
	err = sender.SendNotification(ctx, "full", n)
	assert.True(t, errors.Is(err, ErrChannelFull))

	closed := NewMCPSession("closed", "", 1)
	sender.RegisterSession(closed)
	closed.Close()
	err = sender.SendNotification(ctx, "closed", n)
	assert.True(t, errors.Is(err, ErrSessionClosed))
}

func TestUnregisterSession(t *testing.T) {
	sender := NewNotificationSender(shared.JSONRPCVersion)
	session := NewMCPSession("s1", "", 1)
	sender.RegisterSession(session)

	sender.UnregisterSession("s1")
	sender.UnregisterSession("s1")

	err := sender.SendNotification(context.Background(), "s1", shared.JSONRPCNotification{Method: "x"})
	assert.True(t, errors.Is(err, ErrSessionNotFound))

	// Sending on the session directly after close must not panic.
	assert.True(t, errors.Is(session.send(context.Background(), shared.JSONRPCNotification{}), ErrSessionClosed))
}

func TestBroadcastNotificationCollectsErrors(t *testing.T) {
	sender := NewNotificationSender(shared.JSONRPCVersion)

	ok := NewMCPSession("ok", "", 1)
	closedA := NewMCPSession("closed-a", "", 1)
	closedB := NewMCPSession("closed-b", "", 1)
	closedA.Close()
	closedB.Close()

	for _, s := range []*MCPSession{ok, closedA, closedB} {
		sender.RegisterSession(s)
	}

	err := sender.BroadcastNotification(context.Background(), shared.JSONRPCNotification{Method: shared.NotificationToolsListChanged})
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Len(t, ok.notifChan, 1)
}
