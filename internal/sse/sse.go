// Package sse implements the server-sent-event framing used by the
// platform for bot replies: each event is an "event:" line naming the
// event type followed by a "data:" line carrying a JSON payload.
package sse

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Event is one decoded server-sent event.
type Event struct {
	Type string
	Data string
}

// Writer emits events on an HTTP response, flushing after each one so the
// platform sees them as they are produced.
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewWriter prepares w for an event-stream response. The status line and
// Content-Type header are written immediately.
func NewWriter(w http.ResponseWriter) *Writer {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	return &Writer{w: w, flusher: flusher}
}

// Send marshals data as JSON and writes it as a single event.
func (s *Writer) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event, err)
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return fmt.Errorf("failed to write %s event: %w", event, err)
	}

	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

// Done terminates the reply stream.
func (s *Writer) Done() error {
	return s.Send("done", struct{}{})
}

// ReadEvents decodes an entire event stream. Lines other than "event:" and
// "data:" are ignored; a blank line closes the current event. Multi-line
// data is joined with newlines per the SSE format.
func ReadEvents(r io.Reader) ([]Event, error) {
	var (
		events  []Event
		current Event
		data    []string
		open    bool
	)

	flush := func() {
		if open {
			current.Data = strings.Join(data, "\n")
			events = append(events, current)
		}
		current = Event{}
		data = nil
		open = false
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "event:"):
			current.Type = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			open = true
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
			open = true
		}
	}
	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("failed to read event stream: %w", err)
	}
	flush()

	return events, nil
}
