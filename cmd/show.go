package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/iksnae/nlp-playground/internal"
)

var (
	limit int
	since string
)

var (
	// Styles for show command
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 1)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show an archived chat transcript",
	Long: `Display the messages of a transcript saved from the workspace.

Use 'nlp-playground history' to find session IDs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openArchive()
		if err != nil {
			return err
		}
		defer db.Close()

		session, err := internal.LoadSession(db, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		displaySessionHeader(out, session)

		messagesToShow := session.Messages
		if since != "" {
			sinceTime, err := time.Parse(time.RFC3339, since)
			if err != nil {
				return fmt.Errorf("invalid --since timestamp format (expected RFC3339): %w", err)
			}
			filtered := make([]internal.Message, 0, len(messagesToShow))
			for _, msg := range messagesToShow {
				if msgTime, err := time.Parse(time.RFC3339, msg.Timestamp); err == nil && !msgTime.Before(sinceTime) {
					filtered = append(filtered, msg)
				}
			}
			messagesToShow = filtered
		}

		totalFiltered := len(messagesToShow)
		if limit > 0 && limit < len(messagesToShow) {
			messagesToShow = messagesToShow[:limit]
		}

		for i, msg := range messagesToShow {
			displayMessage(out, i+1, msg, totalFiltered)
		}

		if limit > 0 && limit < totalFiltered {
			fmt.Fprintln(out)
			fmt.Fprintln(out, sessionMetaStyle.Italic(true).
				Render(fmt.Sprintf("... (%d more message(s))", totalFiltered-limit)))
		}

		printCitations(out, session.Citations)
		return nil
	},
}

func displaySessionHeader(out io.Writer, session *internal.Session) {
	if session == nil {
		return
	}
	fmt.Fprintln(out, sessionHeaderStyle.Render(fmt.Sprintf("💬 %s", session.Metadata.Name)))

	var metaParts []string
	if session.Metadata.CreatedAt != "" {
		metaParts = append(metaParts, fmt.Sprintf("Created: %s", session.Metadata.CreatedAt))
	}
	metaParts = append(metaParts, fmt.Sprintf("Messages: %d", len(session.Messages)))
	if session.Artifact != "" {
		metaParts = append(metaParts, fmt.Sprintf("Artifact: %s", session.Artifact))
	}
	if session.Metadata.Task != "" {
		metaParts = append(metaParts, fmt.Sprintf("Task: %s", session.Metadata.Task))
	}
	fmt.Fprintln(out, sessionMetaStyle.Render(strings.Join(metaParts, " • ")))
	fmt.Fprintln(out)
}

func displayMessage(out io.Writer, index int, msg internal.Message, total int) {
	var actorStyle lipgloss.Style
	var actorLabel string

	switch {
	case msg.Actor == string(internal.RoleUser):
		actorStyle = userMessageStyle
		actorLabel = "👤 User"
	case msg.Kind == string(internal.KindFailure):
		actorStyle = errorStyle
		actorLabel = "🤖 Bot"
	case msg.Actor == string(internal.RoleBot):
		actorStyle = assistantMessageStyle
		actorLabel = "🤖 Bot"
	default:
		actorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
		actorLabel = fmt.Sprintf("🔧 %s", msg.Actor)
	}

	header := actorStyle.Render(actorLabel) + " " + timestampStyle.Render(fmt.Sprintf("[%d/%d]", index, total))
	if msg.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339, msg.Timestamp); err == nil {
			header += " " + timestampStyle.Render(t.Format("15:04:05"))
		} else {
			header += " " + timestampStyle.Render(msg.Timestamp)
		}
	}
	fmt.Fprintln(out, header)

	content := strings.TrimSpace(msg.Content)
	if content != "" {
		fmt.Fprintln(out, messageContentStyle.Render(wrapText(content, 80)))
	} else {
		fmt.Fprintln(out, messageContentStyle.Foreground(lipgloss.Color("240")).Render("(empty message)"))
	}
	fmt.Fprintln(out)
}

func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if len(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		words := strings.Fields(line)
		currentLine := ""
		for _, word := range words {
			switch {
			case len(currentLine)+len(word)+1 <= width && currentLine == "":
				currentLine = word
			case len(currentLine)+len(word)+1 <= width:
				currentLine += " " + word
			case currentLine != "":
				wrapped = append(wrapped, currentLine)
				currentLine = word
			default:
				wrapped = append(wrapped, word)
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Limit number of messages to show")
	showCmd.Flags().StringVar(&since, "since", "", "Show messages since timestamp (RFC3339)")
}
