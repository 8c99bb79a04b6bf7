package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/apex/log"

	"github.com/AverniteDF/poe-bot-server-wsgi/internal/config"
	"github.com/AverniteDF/poe-bot-server-wsgi/internal/models"
	"github.com/AverniteDF/poe-bot-server-wsgi/internal/services"
	"github.com/AverniteDF/poe-bot-server-wsgi/internal/sse"
)

// relayBot forwards a conversation to an upstream bot and returns its reply.
type relayBot interface {
	Ask(ctx context.Context, query *models.QueryRequest) (string, error)
	BotName() string
}

type WebhookHandler struct {
	botName   string
	maskedKey string
	echo      *services.EchoService
	relay     relayBot // nil when forwarding is not configured
}

func NewWebhookHandler(botName, accessKey string, echo *services.EchoService, relay relayBot) *WebhookHandler {
	return &WebhookHandler{
		botName:   botName,
		maskedKey: config.MaskKey(accessKey),
		echo:      echo,
		relay:     relay,
	}
}

// Status answers browser GETs with a deployment check page showing the bot
// name and the masked access key.
func (h *WebhookHandler) Status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "Hello from %s!<br>\nACCESS_KEY: %s<br><br>\nBot server is up and running.\n", h.botName, h.maskedKey)
}

// Handle dispatches an inbound webhook POST on its declared type.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.WithError(err).Error("error parsing JSON")
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid JSON format", r))
		return
	}

	switch req.Type {
	case models.TypeSettings:
		log.Info("received 'settings' type request")
		writeJSON(w, http.StatusOK, models.SettingsResponse{
			Status:  "Settings received",
			BotName: h.botName,
		})

	case models.TypeQuery:
		log.WithFields(log.Fields{
			"conversation_id": req.ConversationID,
			"messages":        len(req.Query),
		}).Info("received 'query' type request")
		h.handleQuery(w, r, &req)

	default:
		log.WithField("type", req.Type).Warn("invalid request format: unrecognized type")
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request format", r))
	}
}

func (h *WebhookHandler) handleQuery(w http.ResponseWriter, r *http.Request, req *models.QueryRequest) {
	conv := models.NewConversation(req.Query)

	if conv.Len() == 0 {
		log.Error("query list is empty")
		streamError(w, "Invalid query format: unable to extract query list.", "invalid_query_format", false)
		return
	}

	if sender := conv.Sender(); sender != models.RoleUser {
		log.WithField("sender", sender).Error("unexpected sender role")
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Unexpected sender role", r))
		return
	}

	if h.relay != nil {
		h.relayReply(w, r, req)
		return
	}

	h.echoReply(w, conv)
}

// echoReply streams the local echo answer back to the user.
func (h *WebhookHandler) echoReply(w http.ResponseWriter, conv *models.Conversation) {
	streamReply(w, h.echo.Reply(conv))
}

// relayReply forwards the conversation upstream, blocks for the full
// answer and streams it back as this bot's own reply.
func (h *WebhookHandler) relayReply(w http.ResponseWriter, r *http.Request, req *models.QueryRequest) {
	reply, err := h.relay.Ask(r.Context(), req)
	if err != nil {
		log.WithError(err).WithField("bot", h.relay.BotName()).Error("relay failed")

		allowRetry := false
		var relayErr *services.RelayError
		if errors.As(err, &relayErr) {
			allowRetry = relayErr.Retryable
		}
		streamError(w, "The upstream bot did not return a reply.", "upstream_error", allowRetry)
		return
	}

	streamReply(w, reply)
}

// streamReply emits the standard reply sequence: meta, text, done.
func streamReply(w http.ResponseWriter, text string) {
	s := sse.NewWriter(w)

	if err := s.Send("meta", models.MetaEvent{ContentType: "text/markdown", SuggestedReplies: false}); err != nil {
		log.WithError(err).Error("failed to send 'meta' event")
		return
	}
	log.Debug("sent 'meta' event")

	if err := s.Send("text", models.TextEvent{Text: text}); err != nil {
		log.WithError(err).Error("failed to send 'text' event")
		return
	}
	log.Debug("sent 'text' event")

	if err := s.Done(); err != nil {
		log.WithError(err).Error("failed to send 'done' event")
		return
	}
	log.Debug("sent 'done' event")
}

// streamError reports a failure inside the reply stream, then closes it.
func streamError(w http.ResponseWriter, text, errorType string, allowRetry bool) {
	s := sse.NewWriter(w)

	if err := s.Send("error", models.ErrorEvent{AllowRetry: allowRetry, Text: text, ErrorType: errorType}); err != nil {
		log.WithError(err).Error("failed to send 'error' event")
		return
	}
	if err := s.Done(); err != nil {
		log.WithError(err).Error("failed to send 'done' event")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResp(code, message string, r *http.Request) map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"code":       code,
			"message":    message,
			"request_id": r.Header.Get("X-Request-ID"),
		},
	}
}
