// Package analyzer runs food image analysis and chat against an
// OpenAI-compatible chat completion API.
package analyzer

import (
	"context"
	"errors"

	"github.com/nutriscan/nutriscan-go/internal/model"
)

var ErrNotConfigured = errors.New("AI analysis is not configured")

// Tools receives the model's tool calls. Nil pointers mean the model left
// the argument out.
type Tools interface {
	LogFoodIngredients(ctx context.Context, logID *int64, ingredients []model.IngredientEntry) model.ToolResult
	SetAnalysisConfidence(ctx context.Context, logID *int64, confidence *int) model.ToolResult
}

// Request is one image analysis.
type Request struct {
	LogID       int64
	Notes       string
	Image       []byte
	ContentType string
}

// ImageAnalyzer analyzes a food image, reporting results through tools.
type ImageAnalyzer interface {
	Analyze(ctx context.Context, req Request, tools Tools) error
}

// Chatter streams a chat reply. emit is called once per chunk.
type Chatter interface {
	Chat(ctx context.Context, chatID, prompt string, emit func(chunk string) error) error
}

// Disabled is used when no API key is configured.
type Disabled struct{}

func (Disabled) Analyze(context.Context, Request, Tools) error {
	return ErrNotConfigured
}

func (Disabled) Chat(context.Context, string, string, func(string) error) error {
	return ErrNotConfigured
}

// Backend is an analyzer that can also chat.
type Backend interface {
	ImageAnalyzer
	Chatter
}
