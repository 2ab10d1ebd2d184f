package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sashabaranov/go-openai"
)

// DefaultMemoryWindow is the number of messages kept per chat.
const DefaultMemoryWindow = 20

// DefaultMemoryTTL is how long an idle chat is remembered.
const DefaultMemoryTTL = 24 * time.Hour

// Memory stores chat turns per chat ID.
type Memory interface {
	History(ctx context.Context, chatID string) ([]openai.ChatCompletionMessage, error)
	Append(ctx context.Context, chatID string, msgs ...openai.ChatCompletionMessage) error
}

type chatHistory struct {
	msgs    []openai.ChatCompletionMessage
	touched time.Time
}

// InMemory keeps the most recent messages of each chat in process memory.
// Chats idle for longer than ttl are forgotten.
type InMemory struct {
	mu     sync.Mutex
	window int
	ttl    time.Duration
	now    func() time.Time
	chats  map[string]*chatHistory
}

// NewInMemory creates an InMemory keeping window messages per chat for
// ttl after the last append. Non-positive values select the defaults.
func NewInMemory(window int, ttl time.Duration) *InMemory {
	if window <= 0 {
		window = DefaultMemoryWindow
	}
	if ttl <= 0 {
		ttl = DefaultMemoryTTL
	}
	return &InMemory{
		window: window,
		ttl:    ttl,
		now:    time.Now,
		chats:  make(map[string]*chatHistory),
	}
}

func (m *InMemory) History(_ context.Context, chatID string) ([]openai.ChatCompletionMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.chats[chatID]
	if !ok {
		return []openai.ChatCompletionMessage{}, nil
	}
	if m.now().Sub(c.touched) > m.ttl {
		delete(m.chats, chatID)
		return []openai.ChatCompletionMessage{}, nil
	}
	out := make([]openai.ChatCompletionMessage, len(c.msgs))
	copy(out, c.msgs)
	return out, nil
}

func (m *InMemory) Append(_ context.Context, chatID string, msgs ...openai.ChatCompletionMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.evict(now)

	c, ok := m.chats[chatID]
	if !ok {
		c = &chatHistory{}
		m.chats[chatID] = c
	}
	c.msgs = append(c.msgs, msgs...)
	if len(c.msgs) > m.window {
		c.msgs = append([]openai.ChatCompletionMessage(nil), c.msgs[len(c.msgs)-m.window:]...)
	}
	c.touched = now
	return nil
}

// evict drops expired chats. Callers hold m.mu.
func (m *InMemory) evict(now time.Time) {
	for id, c := range m.chats {
		if now.Sub(c.touched) > m.ttl {
			delete(m.chats, id)
		}
	}
}

// Len reports how many chats are held.
func (m *InMemory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chats)
}

// RedisMemory keeps chats in Redis lists so they survive restarts and are
// shared between server instances.
type RedisMemory struct {
	client    redis.Cmdable
	keyPrefix string
	window    int
	ttl       time.Duration
}

// NewRedisMemory creates a RedisMemory. Idle chats expire after ttl.
func NewRedisMemory(client redis.Cmdable, window int, ttl time.Duration) *RedisMemory {
	if window <= 0 {
		window = DefaultMemoryWindow
	}
	return &RedisMemory{
		client:    client,
		keyPrefix: "nutriscan:chat:",
		window:    window,
		ttl:       ttl,
	}
}

func (m *RedisMemory) key(chatID string) string {
	return m.keyPrefix + chatID
}

func (m *RedisMemory) History(ctx context.Context, chatID string) ([]openai.ChatCompletionMessage, error) {
	raw, err := m.client.LRange(ctx, m.key(chatID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read chat %s: %w", chatID, err)
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(raw))
	for _, r := range raw {
		var msg openai.ChatCompletionMessage
		if err := json.Unmarshal([]byte(r), &msg); err != nil {
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (m *RedisMemory) Append(ctx context.Context, chatID string, msgs ...openai.ChatCompletionMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	values := make([]any, len(msgs))
	for i, msg := range msgs {
		b, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		values[i] = b
	}

	key := m.key(chatID)
	pipe := m.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, int64(-m.window), -1)
	if m.ttl > 0 {
		pipe.Expire(ctx, key, m.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write chat %s: %w", chatID, err)
	}
	return nil
}
