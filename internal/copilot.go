package internal

import (
	"context"
	"time"
)

const (
	CopilotGreeting = "Hello! I'm your Dataset Consultant. Ask me about missing values or model advice."
	CopilotFailure  = "Error connecting to AI."
)

// Copilot is the dataset consultant. It does not subscribe to the artifact:
// every turn reads the current dataset identity from the source.
type Copilot struct {
	*Conversation
	svc       Service
	artifacts ArtifactSource
}

// NewCopilot creates a copilot session seeded with the greeting.
func NewCopilot(svc Service, artifacts ArtifactSource, timeout time.Duration) *Copilot {
	return &Copilot{
		Conversation: newConversation("copilot", "Dataset Copilot", CopilotGreeting, timeout),
		svc:          svc,
		artifacts:    artifacts,
	}
}

// Submit sends one question about the current dataset.
func (c *Copilot) Submit(ctx context.Context, text string) (ChatMessage, error) {
	filename, ok := boundIdentity(c.artifacts, ArtifactTabular)
	return c.turn(ctx, text, ok, func(ctx context.Context, q string) (string, error) {
		resp, err := c.svc.Consult(ctx, ConsultRequest{Filename: filename, UserQuery: q})
		if err != nil {
			return "", err
		}
		return resp.Response, nil
	}, CopilotFailure)
}

// SubmitDraft sends the pending input.
func (c *Copilot) SubmitDraft(ctx context.Context) (ChatMessage, error) {
	return c.Submit(ctx, c.Draft())
}

// Snapshot returns the transcript including the dataset it was scoped to.
func (c *Copilot) Snapshot() *Session {
	s := c.Conversation.Snapshot()
	s.Artifact, _ = boundIdentity(c.artifacts, ArtifactTabular)
	return s
}
