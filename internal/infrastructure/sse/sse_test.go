package sse

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestReaderEndpointHandshake(t *testing.T) {
	stream := "event: endpoint\ndata: http://localhost:8080/messages?sessionId=abc\n\n" +
		"event: message\ndata: {\"jsonrpc\":\"2.0\",\"method\":\"notifications/message\"}\n\n"

	r := NewReader(strings.NewReader(stream))

	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "endpoint", ev.Type)
	assert.Equal(t, "http://localhost:8080/messages?sessionId=abc", ev.Data)

	ev, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "message", ev.Type)
	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"notifications/message"}`, ev.Data)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReaderFraming(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   []Event
	}{
		{
			name:   "default event type",
			stream: "data: hello\n\n",
			want:   []Event{{Type: "message", Data: "hello"}},
		},
		{
			name:   "multi-line data",
			stream: "data: first\ndata: second\n\n",
			want:   []Event{{Type: "message", Data: "first\nsecond"}},
		},
		{
			name:   "CRLF line endings",
			stream: "event: endpoint\r\ndata: /messages?sessionId=1\r\n\r\n",
			want:   []Event{{Type: "endpoint", Data: "/messages?sessionId=1"}},
		},
		{
			name:   "comments and keep-alives are skipped",
			stream: ": ping\n\n: another\ndata: x\n\n",
			want:   []Event{{Type: "message", Data: "x"}},
		},
		{
			name:   "blank lines without data do not dispatch",
			stream: "event: orphan\n\n\ndata: y\n\n",
			want:   []Event{{Type: "message", Data: "y"}},
		},
		{
			name:   "id and retry fields",
			stream: "id: 42\nretry: 1500\ndata: z\n\n",
			want:   []Event{{ID: "42", Type: "message", Data: "z", Retry: 1500 * time.Millisecond}},
		},
		{
			name:   "value without space and colon in value",
			stream: "data:{\"a\":1}\n\n",
			want:   []Event{{Type: "message", Data: `{"a":1}`}},
		},
		{
			name:   "byte order mark",
			stream: "\ufeffevent: endpoint\ndata: /m?sessionId=2\n\n",
			want:   []Event{{Type: "endpoint", Data: "/m?sessionId=2"}},
		},
		{
			name:   "truncated event is discarded",
			stream: "data: complete\n\ndata: partial",
			want:   []Event{{Type: "message", Data: "complete"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(strings.NewReader(tt.stream))
			var got []Event
			for {
				ev, err := r.Next()
				if err == io.EOF {
					break
				}
				require.NoError(t, err)
				got = append(got, ev)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLastEventIDPersists(t *testing.T) {
	r := NewReader(strings.NewReader("id: 7\ndata: a\n\ndata: b\n\n"))

	first, err := r.Next()
	require.NoError(t, err)
	second, err := r.Next()
	require.NoError(t, err)

	assert.Equal(t, "7", first.ID)
	assert.Equal(t, "7", second.ID)
	assert.Equal(t, "7", r.LastEventID())
}

func TestWriteComment(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteComment(&buf, "keep-alive"))
	require.NoError(t, Write(&buf, "", "after"))

	ev, err := NewReader(&buf).Next()
	require.NoError(t, err)
	assert.Equal(t, "after", ev.Data)
}

func TestWriteReadRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		eventType := rapid.StringMatching(`[a-z][a-z/_]{0,15}`).Draw(t, "eventType")
		lines := rapid.SliceOfN(rapid.StringMatching(`[^\r\n]{0,40}`), 1, 5).Draw(t, "lines")
		data := strings.Join(lines, "\n")

		var buf bytes.Buffer
		if err := Write(&buf, eventType, data); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		ev, err := NewReader(&buf).Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if ev.Type != eventType {
			t.Fatalf("Type = %q, want %q", ev.Type, eventType)
		}
		if ev.Data != data {
			t.Fatalf("Data = %q, want %q", ev.Data, data)
		}
	})
}

func TestReaderSizeLimit(t *testing.T) {
	t.Run("line within limit", func(t *testing.T) {
		r := NewReaderSize(strings.NewReader("data: 0123456789\n\n"), 16)
		ev, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, "0123456789", ev.Data)
	})

	t.Run("line over limit", func(t *testing.T) {
		stream := "data: " + strings.Repeat("x", 64) + "\n\n"
		_, err := NewReaderSize(strings.NewReader(stream), 32).Next()
		assert.ErrorIs(t, err, ErrEventTooLarge)
	})

	t.Run("unterminated line over limit", func(t *testing.T) {
		_, err := NewReaderSize(strings.NewReader(strings.Repeat("x", 64)), 32).Next()
		assert.ErrorIs(t, err, ErrEventTooLarge)
	})

	t.Run("event data over limit", func(t *testing.T) {
		line := "data: " + strings.Repeat("x", 20) + "\n"
		_, err := NewReaderSize(strings.NewReader(strings.Repeat(line, 4)+"\n"), 32).Next()
		assert.ErrorIs(t, err, ErrEventTooLarge)
	})

	t.Run("line longer than the read buffer", func(t *testing.T) {
		payload := strings.Repeat("y", 10000)
		ev, err := NewReader(strings.NewReader("data: " + payload + "\n\n")).Next()
		require.NoError(t, err)
		assert.Equal(t, payload, ev.Data)
	})
}
