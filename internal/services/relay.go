package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/AverniteDF/poe-bot-server-wsgi/internal/models"
	"github.com/AverniteDF/poe-bot-server-wsgi/internal/sse"
)

// RelayError distinguishes transport failures (worth retrying on the
// platform side) from upstream rejections (not worth retrying).
type RelayError struct {
	Message   string
	Retryable bool
}

func (e *RelayError) Error() string {
	return e.Message
}

// RelayService forwards a conversation to an upstream bot's webhook and
// returns its reply as a single string.
type RelayService struct {
	botName    string
	endpoint   string
	accessKey  string
	httpClient *http.Client
}

func NewRelayService(botName, endpoint, accessKey string, timeout time.Duration) *RelayService {
	return &RelayService{
		botName:   botName,
		endpoint:  endpoint,
		accessKey: accessKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *RelayService) BotName() string {
	return s.botName
}

// Ask posts the conversation upstream and blocks for the complete answer.
// Upstream event-stream responses are folded into one reply string; any
// other response body is returned verbatim.
func (s *RelayService) Ask(ctx context.Context, inbound *models.QueryRequest) (string, error) {
	outbound := models.QueryRequest{
		Version:        inbound.Version,
		Type:           models.TypeQuery,
		Query:          inbound.Query,
		UserID:         inbound.UserID,
		ConversationID: inbound.ConversationID,
		MessageID:      uuid.NewString(),
	}

	body, err := json.Marshal(outbound)
	if err != nil {
		return "", fmt.Errorf("failed to marshal upstream query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.accessKey)

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", &RelayError{
			Message:   fmt.Sprintf("upstream bot %q unreachable: %v", s.botName, err),
			Retryable: true,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return "", &RelayError{
			Message:   fmt.Sprintf("upstream bot %q returned status %d", s.botName, resp.StatusCode),
			Retryable: false,
		}
	}

	var reply string
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(strings.ToLower(contentType), "text/event-stream") {
		reply, err = foldEventStream(resp.Body)
		if err != nil {
			return "", err
		}
	} else {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", &RelayError{
				Message:   fmt.Sprintf("failed to read reply from upstream bot %q: %v", s.botName, err),
				Retryable: true,
			}
		}
		reply = string(raw)
	}

	log.WithFields(log.Fields{
		"bot":      s.botName,
		"duration": time.Since(start).String(),
		"bytes":    len(reply),
	}).Info("upstream bot replied")

	return reply, nil
}

// foldEventStream collapses an upstream reply stream into the final text:
// "text" events accumulate, "replace_response" restarts the accumulation,
// and an "error" event fails the relay.
func foldEventStream(r io.Reader) (string, error) {
	events, err := sse.ReadEvents(r)
	if err != nil {
		return "", &RelayError{Message: err.Error(), Retryable: true}
	}

	var b strings.Builder
	for _, ev := range events {
		switch ev.Type {
		case "text":
			var payload models.TextEvent
			if err := json.Unmarshal([]byte(ev.Data), &payload); err != nil {
				return "", &RelayError{
					Message:   fmt.Sprintf("malformed text event from upstream: %v", err),
					Retryable: false,
				}
			}
			b.WriteString(payload.Text)
		case "replace_response":
			var payload models.TextEvent
			if err := json.Unmarshal([]byte(ev.Data), &payload); err != nil {
				return "", &RelayError{
					Message:   fmt.Sprintf("malformed replace_response event from upstream: %v", err),
					Retryable: false,
				}
			}
			b.Reset()
			b.WriteString(payload.Text)
		case "error":
			var payload models.ErrorEvent
			json.Unmarshal([]byte(ev.Data), &payload)
			return "", &RelayError{
				Message:   fmt.Sprintf("upstream bot reported an error: %s", payload.Text),
				Retryable: payload.AllowRetry,
			}
		}
	}
	return b.String(), nil
}
