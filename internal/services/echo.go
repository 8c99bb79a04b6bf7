package services

import (
	"strings"

	"github.com/AverniteDF/poe-bot-server-wsgi/internal/models"
)

// EchoService answers conversations locally by shouting the user's own
// messages back in upper case.
type EchoService struct{}

func NewEchoService() *EchoService {
	return &EchoService{}
}

// Reply uppercases every user message in the conversation and joins them
// with newlines.
func (s *EchoService) Reply(conv *models.Conversation) string {
	userMessages := conv.Messages(models.RoleUser)
	for i, m := range userMessages {
		userMessages[i] = strings.ToUpper(m)
	}
	return strings.Join(userMessages, "\n")
}
