// Package sse reads and writes text/event-stream framing.
package sse

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// DefaultEventType is the event name used when a frame sets none.
const DefaultEventType = "message"

// MaxEventSize caps one line and the data of one event.
const MaxEventSize = 10 << 20

// ErrEventTooLarge is returned when a line or an event exceeds the size cap.
var ErrEventTooLarge = errors.New("sse: event exceeds size limit")

// Event is one dispatched server-sent event.
type Event struct {
	ID    string
	Type  string
	Data  string
	Retry time.Duration
}

// Reader decodes events from a stream. It is not safe for concurrent use.
type Reader struct {
	r       *bufio.Reader
	maxSize int
	lastID  string
	first   bool
}

// NewReader returns a Reader over r that enforces MaxEventSize.
func NewReader(r io.Reader) *Reader {
	return NewReaderSize(r, MaxEventSize)
}

// NewReaderSize returns a Reader over r whose lines and event data are
// limited to maxSize bytes.
func NewReaderSize(r io.Reader, maxSize int) *Reader {
	return &Reader{r: bufio.NewReader(r), maxSize: maxSize, first: true}
}

// LastEventID returns the most recent id field seen on the stream.
func (r *Reader) LastEventID() string {
	return r.lastID
}

// Next blocks until a complete event is dispatched. A partial event cut off
// by the end of the stream is discarded and io.EOF is returned.
func (r *Reader) Next() (Event, error) {
	var (
		data      strings.Builder
		hasData   bool
		eventType string
		retry     time.Duration
	)

	for {
		line, err := r.readLine()
		if err != nil {
			return Event{}, err
		}

		if line == "" {
			if !hasData {
				eventType = ""
				continue
			}
			if eventType == "" {
				eventType = DefaultEventType
			}
			return Event{
				ID:    r.lastID,
				Type:  eventType,
				Data:  strings.TrimSuffix(data.String(), "\n"),
				Retry: retry,
			}, nil
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value := line, ""
		if i := strings.IndexByte(line, ':'); i >= 0 {
			field = line[:i]
			value = strings.TrimPrefix(line[i+1:], " ")
		}

		switch field {
		case "event":
			eventType = value
		case "data":
			if data.Len()+len(value)+1 > r.maxSize {
				return Event{}, ErrEventTooLarge
			}
			data.WriteString(value)
			data.WriteByte('\n')
			hasData = true
		case "id":
			if !strings.ContainsRune(value, 0) {
				r.lastID = value
			}
		case "retry":
			if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
				retry = time.Duration(ms) * time.Millisecond
			}
		}
	}
}

func (r *Reader) readLine() (string, error) {
	var buf []byte
	for {
		chunk, err := r.r.ReadSlice('\n')
		// the terminator does not count against the cap
		if len(buf)+len(chunk) > r.maxSize+2 {
			return "", ErrEventTooLarge
		}
		buf = append(buf, chunk...)
		if err == bufio.ErrBufferFull {
			continue
		}
		if err != nil {
			// an unterminated final line can never complete an event
			return "", err
		}
		break
	}

	line := strings.TrimSuffix(string(buf), "\n")
	line = strings.TrimSuffix(line, "\r")

	if r.first {
		line = strings.TrimPrefix(line, "\ufeff")
		r.first = false
	}
	return line, nil
}

// Write encodes one event. Multi-line data is split across data fields.
func Write(w io.Writer, eventType, data string) error {
	var b strings.Builder
	if eventType != "" {
		fmt.Fprintf(&b, "event: %s\n", eventType)
	}
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteComment writes a comment line, used as a keep-alive.
func WriteComment(w io.Writer, text string) error {
	_, err := fmt.Fprintf(w, ": %s\n\n", text)
	return err
}
