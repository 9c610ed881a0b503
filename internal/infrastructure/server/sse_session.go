package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FreePeak/golang-mcp-sse-client/internal/infrastructure/logging"
	"github.com/FreePeak/golang-mcp-sse-client/internal/infrastructure/sse"
)

// event is one queued SSE event.
type event struct {
	Type string
	Data string
}

// sseSession is one open event stream.
type sseSession struct {
	id         string
	writer     http.ResponseWriter
	flusher    http.Flusher
	eventQueue chan event
	notifs     *MCPSession
	done       chan struct{}
	closeOnce  sync.Once
}

// newSSESession creates a session with a fresh id for w.
func newSSESession(w http.ResponseWriter, userAgent string, bufferSize int) (*sseSession, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrResponseWriterNotFlusher
	}

	id := uuid.New().String()
	return &sseSession{
		id:         id,
		writer:     w,
		flusher:    flusher,
		eventQueue: make(chan event, bufferSize),
		notifs:     NewMCPSession(id, userAgent, bufferSize),
		done:       make(chan struct{}),
	}, nil
}

// ID returns the session ID.
func (s *sseSession) ID() string {
	return s.id
}

// Send queues an event without blocking.
func (s *sseSession) Send(eventType, data string) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	select {
	case s.eventQueue <- event{Type: eventType, Data: data}:
		return nil
	case <-s.done:
		return ErrSessionClosed
	default:
		return ErrChannelFull
	}
}

// Close ends the stream. The writer loop returns and the HTTP response completes.
func (s *sseSession) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.notifs.Close()
	})
}

// Start writes the endpoint event and then pumps queued events and
// notifications onto the response until ctx ends or the session is closed.
// A positive keepAlive sends a ping event at that interval.
func (s *sseSession) Start(ctx context.Context, endpoint string, keepAlive time.Duration, logger *logging.Logger) {
	h := s.writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")
	s.writer.WriteHeader(http.StatusOK)

	if err := s.write("endpoint", endpoint); err != nil {
		logger.Warn("Failed to write endpoint event", logging.Fields{"session_id": s.id, "error": err.Error()})
		return
	}

	var tick <-chan time.Time
	if keepAlive > 0 {
		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case ev := <-s.eventQueue:
			if err := s.write(ev.Type, ev.Data); err != nil {
				return
			}
		case notification := <-s.notifs.NotificationChannel():
			data, err := json.Marshal(notification)
			if err != nil {
				logger.Error("Failed to marshal notification", logging.Fields{"error": err.Error()})
				continue
			}
			if err := s.write("message", string(data)); err != nil {
				return
			}
		case <-tick:
			if err := s.write("ping", "{}"); err != nil {
				return
			}
		}
	}
}

func (s *sseSession) write(eventType, data string) error {
	if err := sse.Write(s.writer, eventType, data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
