package models

// Conversation wraps a query list and provides accessors over its messages.
type Conversation struct {
	messages []Message
}

func NewConversation(messages []Message) *Conversation {
	return &Conversation{messages: messages}
}

// Messages returns the content of every message with the given role, in
// order. An empty role selects all messages.
func (c *Conversation) Messages(role string) []string {
	var out []string
	for _, m := range c.messages {
		if role == "" || m.Role == role {
			out = append(out, m.Content)
		}
	}
	return out
}

// LastMessage returns the content of the most recent message with the given
// role, or "" if there is none.
func (c *Conversation) LastMessage(role string) string {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if role == "" || c.messages[i].Role == role {
			return c.messages[i].Content
		}
	}
	return ""
}

// Sender returns the role of the last message in the conversation, or
// "unknown" when the conversation is empty or the role is missing.
func (c *Conversation) Sender() string {
	if len(c.messages) == 0 {
		return "unknown"
	}
	role := c.messages[len(c.messages)-1].Role
	if role == "" {
		return "unknown"
	}
	return role
}

// Len returns the number of messages in the conversation.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Raw returns the underlying query list, used when forwarding the
// conversation upstream unchanged.
func (c *Conversation) Raw() []Message {
	return c.messages
}
