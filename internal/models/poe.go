package models

// Message roles as they appear in the platform's query list.
const (
	RoleUser   = "user"
	RoleBot    = "bot"
	RoleSystem = "system"
)

// Request types dispatched by the webhook.
const (
	TypeQuery    = "query"
	TypeSettings = "settings"
)

// Message is a single turn in a conversation as delivered by the platform.
// Only Role and Content are interpreted; the remaining fields are carried
// through when forwarding.
type Message struct {
	Role        string `json:"role"`
	Content     string `json:"content"`
	ContentType string `json:"content_type,omitempty"`
	Timestamp   int64  `json:"timestamp,omitempty"`
	MessageID   string `json:"message_id,omitempty"`
}

// QueryRequest is the JSON body of an inbound webhook POST.
type QueryRequest struct {
	Version        string    `json:"version,omitempty"`
	Type           string    `json:"type"`
	Query          []Message `json:"query,omitempty"`
	UserID         string    `json:"user_id,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
	MessageID      string    `json:"message_id,omitempty"`
}

// SettingsResponse acknowledges a settings update from the platform.
type SettingsResponse struct {
	Status  string `json:"status"`
	BotName string `json:"bot_name"`
}

// MetaEvent opens a reply stream and declares how the text that follows
// should be rendered.
type MetaEvent struct {
	ContentType      string `json:"content_type"`
	SuggestedReplies bool   `json:"suggested_replies"`
}

// TextEvent carries the bot's contribution to the conversation.
type TextEvent struct {
	Text string `json:"text"`
}

// ErrorEvent reports a failure to the platform inside the reply stream.
type ErrorEvent struct {
	AllowRetry bool   `json:"allow_retry"`
	Text       string `json:"text"`
	ErrorType  string `json:"error_type"`
}
