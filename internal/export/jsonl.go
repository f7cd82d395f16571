package export

import (
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/iksnae/nlp-playground/internal"
)

// JSONLExporter exports sessions in JSONL format (one message per line)
type JSONLExporter struct{}

// Export exports a session to JSONL format
func (e *JSONLExporter) Export(session *internal.Session, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range session.Messages {
		obj := map[string]interface{}{
			"session": session.ID,
			"actor":   msg.Actor,
			"kind":    msg.Kind,
			"content": msg.Content,
		}

		if msg.Timestamp != "" {
			obj["timestamp"] = msg.Timestamp
		}

		if err := enc.Encode(obj); err != nil {
			return errors.Wrap(err, "failed to encode message")
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
