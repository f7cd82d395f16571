package internal

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// Role is the author of a chat message
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// MessageKind separates failure turns from genuine answers
type MessageKind string

const (
	KindGreeting MessageKind = "greeting"
	KindQuestion MessageKind = "question"
	KindAnswer   MessageKind = "answer"
	KindFailure  MessageKind = "failure"
)

// ChatMessage is one entry of a conversation log. Never mutated once appended.
type ChatMessage struct {
	Role Role
	Kind MessageKind
	Text string
	Time time.Time
}

// Conversation is an append-only message log driving one request per user turn
type Conversation struct {
	id        string
	assistant string
	name      string
	created   time.Time
	tracker   *Tracker

	mu       sync.RWMutex
	messages []ChatMessage
	draft    string
}

func newConversation(assistant, name, greeting string, timeout time.Duration) *Conversation {
	now := time.Now()
	return &Conversation{
		id:        uuid.NewString(),
		assistant: assistant,
		name:      name,
		created:   now,
		tracker:   NewTracker(timeout),
		messages: []ChatMessage{
			{Role: RoleBot, Kind: KindGreeting, Text: greeting, Time: now},
		},
	}
}

// ID returns the session identifier.
func (c *Conversation) ID() string {
	return c.id
}

// Messages returns a copy of the log.
func (c *Conversation) Messages() []ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// SetDraft stores the text being typed.
func (c *Conversation) SetDraft(text string) {
	c.mu.Lock()
	c.draft = text
	c.mu.Unlock()
}

// Draft returns the pending input.
func (c *Conversation) Draft() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.draft
}

// AwaitingResponse reports whether a turn is pending.
func (c *Conversation) AwaitingResponse() bool {
	return c.tracker.Busy()
}

// Close cancels a pending turn and refuses new ones.
func (c *Conversation) Close() {
	c.tracker.Close()
}

func (c *Conversation) append(role Role, kind MessageKind, text string) ChatMessage {
	msg := ChatMessage{Role: role, Kind: kind, Text: text, Time: time.Now()}
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
	return msg
}

// askFunc sends one question to the service and returns the answer text.
type askFunc func(ctx context.Context, question string) (string, error)

// turn runs one exchange: the user message is appended synchronously, then
// exactly one bot message, either the answer or the fixed failure text.
// Refusals (empty text, no artifact, busy, closed) leave the log untouched.
func (c *Conversation) turn(ctx context.Context, text string, bound bool, ask askFunc, failure string) (ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return ChatMessage{}, ErrEmptyTurn
	}
	if !bound {
		return ChatMessage{}, ErrNoArtifact
	}

	var reply ChatMessage
	_, err := Do(ctx, c.tracker, func(ctx context.Context) (struct{}, error) {
		c.append(RoleUser, KindQuestion, text)
		c.mu.Lock()
		c.draft = ""
		c.mu.Unlock()

		answer, err := ask(ctx, text)
		if err != nil {
			if ctx.Err() != nil && c.tracker.Closed() {
				return struct{}{}, ErrClosed
			}
			reply = c.append(RoleBot, KindFailure, failure)
			return struct{}{}, err
		}
		reply = c.append(RoleBot, KindAnswer, answer)
		return struct{}{}, nil
	})
	switch {
	case err == nil:
		return reply, nil
	case errors.Is(err, ErrBusy), errors.Is(err, ErrClosed):
		return ChatMessage{}, err
	}
	Logger().Warnw("conversation turn failed", "assistant", c.assistant, "session", c.id, "error", err)
	return reply, nil
}

// Snapshot returns the transcript of the conversation.
func (c *Conversation) Snapshot() *Session {
	msgs := c.Messages()
	s := &Session{
		ID:        c.id,
		Assistant: c.assistant,
		Messages:  make([]Message, 0, len(msgs)),
		Metadata: Metadata{
			Name:         c.name,
			CreatedAt:    c.created.Format(time.RFC3339),
			MessageCount: len(msgs),
		},
	}
	for _, m := range msgs {
		s.Messages = append(s.Messages, Message{
			Timestamp: m.Time.Format(time.RFC3339),
			Actor:     string(m.Role),
			Kind:      string(m.Kind),
			Content:   m.Text,
		})
	}
	if len(msgs) > 0 {
		s.Metadata.UpdatedAt = msgs[len(msgs)-1].Time.Format(time.RFC3339)
	}
	return s
}

// boundIdentity returns the identity of the current artifact when it has the given kind.
func boundIdentity(src ArtifactSource, kind ArtifactKind) (string, bool) {
	if src == nil {
		return "", false
	}
	a, ok := src.Current()
	if !ok || a.Kind != kind {
		return "", false
	}
	return a.Identity, true
}
