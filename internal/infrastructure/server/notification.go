package server

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/FreePeak/golang-mcp-sse-client/internal/domain/shared"
)

// NotificationChannel is a channel for sending notifications.
type NotificationChannel chan shared.JSONRPCNotification

// MCPSession is the notification side of a connected client session.
type MCPSession struct {
	id        string
	userAgent string
	notifChan NotificationChannel
	done      chan struct{}
	closeOnce sync.Once
}

// NewMCPSession creates a new MCPSession.
func NewMCPSession(id, userAgent string, bufferSize int) *MCPSession {
	return &MCPSession{
		id:        id,
		userAgent: userAgent,
		notifChan: make(NotificationChannel, bufferSize),
		done:      make(chan struct{}),
	}
}

// ID returns the session ID.
func (s *MCPSession) ID() string {
	return s.id
}

// UserAgent returns the user agent of the client that opened the session.
func (s *MCPSession) UserAgent() string {
	return s.userAgent
}

// NotificationChannel returns the channel notifications for this session are queued on.
func (s *MCPSession) NotificationChannel() <-chan shared.JSONRPCNotification {
	return s.notifChan
}

// Close marks the session closed. The channel itself stays open so a
// concurrent sender never panics.
func (s *MCPSession) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *MCPSession) send(ctx context.Context, notification shared.JSONRPCNotification) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	select {
	case s.notifChan <- notification:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("session %s: %w", s.id, ErrChannelFull)
	}
}

// NotificationSender routes notifications to client sessions.
type NotificationSender struct {
	sessions       sync.Map
	jsonrpcVersion string
}

// NewNotificationSender creates a new NotificationSender.
func NewNotificationSender(jsonrpcVersion string) *NotificationSender {
	return &NotificationSender{
		jsonrpcVersion: jsonrpcVersion,
	}
}

// RegisterSession registers a session for notifications.
func (n *NotificationSender) RegisterSession(session *MCPSession) {
	n.sessions.Store(session.ID(), session)
}

// UnregisterSession unregisters and closes a session.
func (n *NotificationSender) UnregisterSession(sessionID string) {
	if session, ok := n.sessions.LoadAndDelete(sessionID); ok {
		session.(*MCPSession).Close()
	}
}

// SendNotification sends a notification to a specific client.
func (n *NotificationSender) SendNotification(ctx context.Context, sessionID string, notification shared.JSONRPCNotification) error {
	value, ok := n.sessions.Load(sessionID)
	if !ok {
		return fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
	}
	return value.(*MCPSession).send(ctx, n.envelope(notification))
}

// BroadcastNotification sends a notification to all connected clients and
// returns every delivery failure.
func (n *NotificationSender) BroadcastNotification(ctx context.Context, notification shared.JSONRPCNotification) error {
	notification = n.envelope(notification)

	var errs error
	n.sessions.Range(func(_, value interface{}) bool {
		errs = multierr.Append(errs, value.(*MCPSession).send(ctx, notification))
		return true
	})
	return errs
}

func (n *NotificationSender) envelope(notification shared.JSONRPCNotification) shared.JSONRPCNotification {
	if notification.JSONRPC == "" {
		notification.JSONRPC = n.jsonrpcVersion
	}
	return notification
}
