package service

import (
	"context"
	"errors"
	"strings"

	"github.com/nutriscan/nutriscan-go/internal/analyzer"
)

var ErrPromptRequired = errors.New("prompt is required")

// ChatService answers free-form nutrition questions.
type ChatService struct {
	chatter analyzer.Chatter
}

// NewChatService creates a new ChatService.
func NewChatService(c analyzer.Chatter) *ChatService {
	if c == nil {
		c = analyzer.Disabled{}
	}
	return &ChatService{chatter: c}
}

// Chat streams the reply to prompt through emit.
func (s *ChatService) Chat(ctx context.Context, chatID, prompt string, emit func(string) error) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return ErrPromptRequired
	}
	return s.chatter.Chat(ctx, strings.TrimSpace(chatID), prompt, emit)
}
