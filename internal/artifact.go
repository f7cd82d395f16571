package internal

import (
	"fmt"
	"sync"
)

// ArtifactKind distinguishes datasets from indexed documents
type ArtifactKind string

const (
	ArtifactTabular  ArtifactKind = "tabular"
	ArtifactDocument ArtifactKind = "document"
)

// IndexingStats summarises how a document was indexed
type IndexingStats struct {
	Chunks int `json:"chunks" yaml:"chunks"`
	Pages  int `json:"pages" yaml:"pages"`
}

// Artifact is the uploaded dataset or indexed document the workspace is bound to
type Artifact struct {
	Identity string       `json:"identity" yaml:"identity"`
	Kind     ArtifactKind `json:"kind" yaml:"kind"`
	// Schema is the ordered column list of a tabular artifact
	Schema  []string         `json:"schema,omitempty" yaml:"schema,omitempty"`
	Profile *DatasetMetadata `json:"profile,omitempty" yaml:"profile,omitempty"`
	Stats   *IndexingStats   `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// NewTabularArtifact builds an artifact from an upload response. Duplicate
// column names are dropped, keeping first occurrence order.
func NewTabularArtifact(resp DatasetUploadResponse) Artifact {
	seen := make(map[string]bool, len(resp.Metadata.ColumnNames))
	schema := make([]string, 0, len(resp.Metadata.ColumnNames))
	for _, c := range resp.Metadata.ColumnNames {
		if seen[c] {
			continue
		}
		seen[c] = true
		schema = append(schema, c)
	}
	profile := resp.Metadata
	return Artifact{
		Identity: resp.Filename,
		Kind:     ArtifactTabular,
		Schema:   schema,
		Profile:  &profile,
	}
}

// NewDocumentArtifact builds an artifact from an index response.
func NewDocumentArtifact(resp DocumentUploadResponse) Artifact {
	return Artifact{
		Identity: resp.Filename,
		Kind:     ArtifactDocument,
		Stats:    &IndexingStats{Chunks: resp.ChunksIndexed, Pages: resp.PagesIndexed},
	}
}

// HasColumn reports whether name is part of the schema.
func (a Artifact) HasColumn(name string) bool {
	for _, c := range a.Schema {
		if c == name {
			return true
		}
	}
	return false
}

// Summary is the status line shown after indexing a document.
func (s IndexingStats) Summary() string {
	return fmt.Sprintf("Indexed %d chunks across %d pages.", s.Chunks, s.Pages)
}

// ArtifactSource gives read-only access to the current artifact.
type ArtifactSource interface {
	Current() (Artifact, bool)
}

// Registry holds the artifact of one workspace. Only the owning dashboard
// mutates it; everyone else reads it through ArtifactSource.
type Registry struct {
	mu       sync.RWMutex
	current  *Artifact
	revision int
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Current returns the bound artifact, if any.
func (r *Registry) Current() (Artifact, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return Artifact{}, false
	}
	return r.current.clone(), true
}

// Revision increases every time the artifact is replaced or reset.
func (r *Registry) Revision() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.revision
}

// Replace swaps the artifact wholesale.
func (r *Registry) Replace(a Artifact) {
	c := a.clone()
	r.mu.Lock()
	r.current = &c
	r.revision++
	r.mu.Unlock()
}

// Reset drops the artifact.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.current = nil
	r.revision++
	r.mu.Unlock()
}

// Identity returns the identity of the current artifact when it has the given kind.
func (r *Registry) Identity(kind ArtifactKind) (string, bool) {
	a, ok := r.Current()
	if !ok || a.Kind != kind {
		return "", false
	}
	return a.Identity, true
}

func (a Artifact) clone() Artifact {
	out := a
	if a.Schema != nil {
		out.Schema = append([]string(nil), a.Schema...)
	}
	if a.Stats != nil {
		s := *a.Stats
		out.Stats = &s
	}
	if a.Profile != nil {
		p := *a.Profile
		out.Profile = &p
	}
	return out
}
