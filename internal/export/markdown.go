package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/nlp-playground/internal"
)

// MarkdownExporter exports sessions in Markdown format
type MarkdownExporter struct{}

// Export exports a session to Markdown format
func (e *MarkdownExporter) Export(session *internal.Session, w io.Writer) error {
	title := session.Metadata.Name
	if title == "" {
		title = "Session " + session.ID
	}
	_, _ = fmt.Fprintf(w, "# %s\n\n", title)
	_, _ = fmt.Fprintf(w, "**Session:** %s  \n", session.ID)

	if session.Artifact != "" {
		_, _ = fmt.Fprintf(w, "**Artifact:** %s  \n", session.Artifact)
	}
	if session.Metadata.Task != "" {
		_, _ = fmt.Fprintf(w, "**Task:** %s  \n", session.Metadata.Task)
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(session.Messages))

	if session.Metadata.Status != "" {
		_, _ = fmt.Fprintf(w, "_%s_\n\n", session.Metadata.Status)
	}

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Messages\n\n")

	for i, msg := range session.Messages {
		timestamp := ""
		if msg.Timestamp != "" {
			timestamp = fmt.Sprintf(" (%s)", msg.Timestamp)
		}
		label := msg.Actor
		if msg.Kind == "failure" {
			label += " (failed)"
		}

		content := escapeMarkdown(msg.Content)

		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", label, timestamp, content)

		if i < len(session.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	if len(session.Citations) > 0 {
		_, _ = fmt.Fprintf(w, "## Sources\n\n")
		for _, c := range session.Citations {
			_, _ = fmt.Fprintf(w, "- [Page %d, Chunk %d] %s\n", c.Page, c.Chunk, escapeMarkdown(c.Snippet))
		}
		_, _ = fmt.Fprintln(w)
	}

	return nil
}

// escapeMarkdown escapes markdown special characters
func escapeMarkdown(text string) string {
	// Basic escaping - preserve code blocks
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
