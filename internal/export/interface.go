package export

import (
	"io"

	"github.com/cockroachdb/errors"

	"github.com/iksnae/nlp-playground/internal"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(session *internal.Session, w io.Writer) error
	Extension() string
}

// Formats lists the accepted format names
var Formats = []string{"jsonl", "md", "yaml", "json", "sqlite"}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "sqlite", "db":
		return &SQLiteExporter{}, nil
	default:
		return nil, errors.Newf("unsupported format: %s (supported: jsonl, md, yaml, json, sqlite)", format)
	}
}
