package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/iksnae/nlp-playground/internal"
)

var (
	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	artifactStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"list"},
	Short:   "List archived chat transcripts",
	Long: `List the copilot and document transcripts saved from the workspace with
its 'save' command, most recent first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openArchive()
		if err != nil {
			return err
		}
		defer db.Close()

		sessions, err := internal.ListSessions(db)
		if err != nil {
			return err
		}
		displaySessions(cmd.OutOrStdout(), sessions, time.Now())
		return nil
	},
}

func displaySessions(out io.Writer, sessions []internal.SessionSummary, now time.Time) {
	if len(sessions) == 0 {
		fmt.Fprintln(out, headerStyle.Render("📋 No saved transcripts"))
		fmt.Fprintln(out, idStyle.Render("💡 Tip: use 'save' inside 'nlp-playground workspace'"))
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 Found %d transcript(s)", len(sessions))))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Assistant")+"\t"+titleStyle.Render("Artifact")+"\t"+titleStyle.Render("Messages")+"\t"+titleStyle.Render("Updated")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 90))

	for _, s := range sessions {
		shortID := s.ID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}
		artifact := s.Artifact
		if artifact == "" {
			artifact = "—"
		}
		if len(artifact) > 40 {
			artifact = artifact[:37] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(shortID),
			s.Assistant,
			artifactStyle.Render(artifact),
			countStyle.Render(strconv.Itoa(s.MessageCount)),
			dateStyle.Render(relativeTime(s.UpdatedAt, now)))
	}
	_ = w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintln(out, idStyle.Render("💡 Tip: Use the full ID (e.g., ")+
		lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(sessions[0].ID)+
		idStyle.Render(") with `nlp-playground show <id>`"))
}

// relativeTime formats an RFC3339 timestamp the way the listing shows dates.
func relativeTime(ts string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return "—"
	}
	diff := now.Sub(t)
	switch {
	case diff < 24*time.Hour:
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
