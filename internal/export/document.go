package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/iksnae/nlp-playground/internal"
)

// transcript is the document written by the JSON and YAML exporters.
// Field names match internal.Session so exports decode back into it.
type transcript struct {
	ID        string             `json:"id" yaml:"id"`
	Assistant string             `json:"assistant" yaml:"assistant"`
	Artifact  string             `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	Messages  []internal.Message `json:"messages" yaml:"messages"`
	Citations []citation         `json:"citations,omitempty" yaml:"citations,omitempty"`
	Failures  int                `json:"failures" yaml:"failures"`
	Metadata  internal.Metadata  `json:"metadata" yaml:"metadata"`
}

// citation carries the inline reference the answer text uses.
type citation struct {
	Ref     string `json:"ref" yaml:"ref"`
	Page    int    `json:"page" yaml:"page"`
	Chunk   int    `json:"chunk" yaml:"chunk"`
	Snippet string `json:"snippet" yaml:"snippet"`
}

func newTranscript(s *internal.Session) transcript {
	t := transcript{
		ID:        s.ID,
		Assistant: s.Assistant,
		Artifact:  s.Artifact,
		Messages:  s.Messages,
		Metadata:  s.Metadata,
	}
	if t.Messages == nil {
		t.Messages = []internal.Message{}
	}
	t.Metadata.MessageCount = len(s.Messages)
	for _, m := range s.Messages {
		if m.Kind == string(internal.KindFailure) {
			t.Failures++
		}
	}
	for _, c := range s.Citations {
		t.Citations = append(t.Citations, citation{
			Ref:     fmt.Sprintf("[Page %d, Chunk %d]", c.Page, c.Chunk),
			Page:    c.Page,
			Chunk:   c.Chunk,
			Snippet: c.Snippet,
		})
	}
	return t
}

// JSONExporter exports sessions as one indented JSON document
type JSONExporter struct{}

// Export exports a session to JSON format
func (e *JSONExporter) Export(session *internal.Session, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(newTranscript(session)), "failed to encode transcript")
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}

// YAMLExporter exports sessions as one YAML document
type YAMLExporter struct{}

// Export exports a session to YAML format
func (e *YAMLExporter) Export(session *internal.Session, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newTranscript(session)); err != nil {
		_ = enc.Close()
		return errors.Wrap(err, "failed to encode transcript")
	}
	return errors.Wrap(enc.Close(), "failed to flush transcript")
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
