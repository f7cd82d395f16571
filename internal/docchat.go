package internal

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/iksnae/nlp-playground/internal/preflight"
)

const (
	DocumentGreeting     = "Upload a PDF, then ask me anything about it."
	DocumentQueryFailure = "Failed to query the document."
	DocumentIndexFailure = "Failed to upload and index the document."
)

// DocumentChat answers questions about the indexed document. Indexing is a
// side channel: it updates the status line, never the message log.
type DocumentChat struct {
	*Conversation
	svc       Service
	artifacts ArtifactSource
	commit    func(Artifact)

	mu        sync.RWMutex
	citations []Citation
	status    string
}

// NewDocumentChat creates a document session. commit is called with the
// new document artifact after a successful index; the owner stores it.
func NewDocumentChat(svc Service, artifacts ArtifactSource, commit func(Artifact), timeout time.Duration) *DocumentChat {
	return &DocumentChat{
		Conversation: newConversation("document", "Ask Your Document", DocumentGreeting, timeout),
		svc:          svc,
		artifacts:    artifacts,
		commit:       commit,
	}
}

// Citations returns the sources of the last answer.
func (d *DocumentChat) Citations() []Citation {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Citation(nil), d.citations...)
}

// Status returns the indexing status line.
func (d *DocumentChat) Status() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}

// Loading reports whether an index or a query is pending.
func (d *DocumentChat) Loading() bool {
	return d.AwaitingResponse()
}

func (d *DocumentChat) setState(status string, citations []Citation) {
	d.mu.Lock()
	d.status = status
	d.citations = citations
	d.mu.Unlock()
}

// Index uploads a PDF for indexing. Prior status and citations are cleared
// when the request starts.
func (d *DocumentChat) Index(ctx context.Context, file Upload) (Artifact, error) {
	if _, err := preflight.CheckDocument(file.Name, file.Data); err != nil {
		d.setState(DocumentIndexFailure, nil)
		return Artifact{}, &UploadError{Kind: ArtifactDocument, Name: file.Name, Err: err}
	}

	artifact, err := Do(ctx, d.tracker, func(ctx context.Context) (Artifact, error) {
		d.setState("", nil)
		resp, err := d.svc.UploadDocument(ctx, file)
		if err != nil {
			return Artifact{}, err
		}
		return NewDocumentArtifact(resp), nil
	})
	if err != nil {
		if errors.Is(err, ErrBusy) || errors.Is(err, ErrClosed) {
			return Artifact{}, err
		}
		if d.tracker.Closed() {
			return Artifact{}, ErrClosed
		}
		d.setState(DocumentIndexFailure, nil)
		Logger().Warnw("document indexing failed", "document", file.Name, "error", err)
		return Artifact{}, &UploadError{Kind: ArtifactDocument, Name: file.Name, Err: err}
	}
	if d.tracker.Closed() {
		return Artifact{}, ErrClosed
	}
	if d.commit != nil {
		d.commit(artifact)
	}
	d.setState(artifact.Stats.Summary(), nil)
	LogInfo("indexed %s: %d chunks, %d pages", artifact.Identity, artifact.Stats.Chunks, artifact.Stats.Pages)
	return artifact, nil
}

// Ask sends one question about the indexed document. The citation list is
// replaced by the sources of the answer, never merged.
func (d *DocumentChat) Ask(ctx context.Context, question string) (ChatMessage, error) {
	filename, ok := boundIdentity(d.artifacts, ArtifactDocument)
	return d.turn(ctx, question, ok, func(ctx context.Context, q string) (string, error) {
		d.mu.Lock()
		d.citations = nil
		d.mu.Unlock()
		resp, err := d.svc.QueryDocument(ctx, DocumentQueryRequest{Filename: filename, Question: q})
		if err != nil {
			return "", err
		}
		sources := resp.Sources
		if sources == nil {
			sources = []Citation{}
		}
		d.mu.Lock()
		d.citations = sources
		d.mu.Unlock()
		return resp.Answer, nil
	}, DocumentQueryFailure)
}

// SubmitDraft sends the pending input.
func (d *DocumentChat) SubmitDraft(ctx context.Context) (ChatMessage, error) {
	return d.Ask(ctx, d.Draft())
}

// Snapshot returns the transcript with the current citations and status.
func (d *DocumentChat) Snapshot() *Session {
	s := d.Conversation.Snapshot()
	s.Artifact, _ = boundIdentity(d.artifacts, ArtifactDocument)
	s.Citations = d.Citations()
	s.Metadata.Status = d.Status()
	return s
}
