package analyzer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/sashabaranov/go-openai"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultMaxRounds = 5
)

// Config configures an OpenAI client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAI implements ImageAnalyzer and Chatter.
type OpenAI struct {
	client    *openai.Client
	model     string
	memory    Memory
	maxRounds int
	logger    *slog.Logger
}

// Option configures an OpenAI analyzer.
type Option func(*OpenAI)

// WithMemory sets the chat memory. Without one, chats are stateless.
func WithMemory(m Memory) Option {
	return func(a *OpenAI) {
		a.memory = m
	}
}

// WithMaxRounds bounds the number of completion requests per analysis.
func WithMaxRounds(n int) Option {
	return func(a *OpenAI) {
		if n > 0 {
			a.maxRounds = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *OpenAI) {
		a.logger = l
	}
}

// NewOpenAI creates an analyzer backed by the chat completion API.
func NewOpenAI(cfg Config, opts ...Option) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	a := &OpenAI{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxRounds: defaultMaxRounds,
		logger:    slog.Default(),
	}
	if a.model == "" {
		a.model = defaultModel
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze sends the image with the analysis prompt and executes tool calls
// until the model stops requesting them.
func (a *OpenAI) Analyze(ctx context.Context, req Request, tools Tools) error {
	if len(req.Image) == 0 {
		return errors.New("image is empty")
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: analysisSystemPrompt},
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: analysisPrompt(req.LogID, req.Notes)},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(req.Image),
						Detail: openai.ImageURLDetailAuto,
					},
				},
			},
		},
	}

	for round := 0; round < a.maxRounds; round++ {
		resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    a.model,
			Messages: messages,
			Tools:    toolDefinitions,
		})
		if err != nil {
			return fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return errors.New("chat completion returned no choices")
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			a.logger.Debug("analysis finished", "log_id", req.LogID, "rounds", round+1)
			return nil
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			a.logger.Info("tool call", "log_id", req.LogID, "tool", call.Function.Name)
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Name:       call.Function.Name,
				Content:    dispatch(ctx, tools, call),
			})
		}
	}

	a.logger.Warn("analysis stopped at round limit", "log_id", req.LogID, "max_rounds", a.maxRounds)
	return nil
}

// Chat streams a reply to prompt. When chatID is set and a memory is
// configured, earlier turns of the same chat are sent as context and the
// new exchange is appended.
func (a *OpenAI) Chat(ctx context.Context, chatID, prompt string, emit func(chunk string) error) error {
	messages := []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleSystem, Content: chatSystemPrompt}}

	remember := chatID != "" && a.memory != nil
	if remember {
		history, err := a.memory.History(ctx, chatID)
		if err != nil {
			a.logger.Warn("loading chat history failed", "chat_id", chatID, "error", err)
		}
		messages = append(messages, history...)
	}

	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt}
	messages = append(messages, user)

	stream, err := a.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    a.model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return fmt.Errorf("chat stream: %w", err)
	}
	defer stream.Close()

	var reply []byte
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("chat stream: %w", err)
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
			continue
		}

		chunk := resp.Choices[0].Delta.Content
		reply = append(reply, chunk...)
		if err := emit(chunk); err != nil {
			return err
		}
	}

	if remember {
		assistant := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: string(reply)}
		if err := a.memory.Append(ctx, chatID, user, assistant); err != nil {
			a.logger.Warn("saving chat history failed", "chat_id", chatID, "error", err)
		}
	}
	return nil
}
