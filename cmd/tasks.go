package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/iksnae/nlp-playground/internal"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List the available NLP tasks",
	Long:  `List the task catalogue with the columns each task needs.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("🧪 %d task(s)", len(internal.Tasks()))))
		fmt.Fprintln(out)

		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		_, _ = fmt.Fprintln(w, titleStyle.Render("Task")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("Works on")+"\t"+titleStyle.Render("Columns")+"\t")
		for _, t := range internal.Tasks() {
			var fields []string
			for _, f := range t.Type.RequiredFields() {
				fields = append(fields, string(f))
			}
			columns := strings.Join(fields, ", ")
			if t.Type.ArtifactKind() == internal.ArtifactDocument {
				columns = "(asks questions about a PDF)"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
				idStyle.Render(string(t.Type)), t.Title, dateStyle.Render(string(t.Type.ArtifactKind())), columns)
		}
		_ = w.Flush()
		fmt.Fprintln(out)
		fmt.Fprintln(out, idStyle.Render("💡 Tip: nlp-playground workspace --task <task>"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tasksCmd)
}
