package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/iksnae/nlp-playground/internal"
)

var (
	askFile     string
	askDocument string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about a PDF document",
	Long: `Index a PDF with --file, or name a document the service already indexed
with --document, then ask one question. The answer is printed with the
page and chunk it came from.

Examples:
  nlp-playground ask -f paper.pdf "What is the main result?"
  nlp-playground ask --document paper.pdf "Who are the authors?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (askFile == "") == (askDocument == "") {
			return errors.New("pass exactly one of --file or --document")
		}
		ctx := cmd.Context()
		d := internal.NewDashboard(internal.TaskRAG, newService(), dashboardOptions())
		defer d.Close()
		chat := d.DocumentChat()

		if askFile != "" {
			if err := indexDocument(ctx, cmd.OutOrStdout(), d, askFile); err != nil {
				return err
			}
		} else {
			if err := d.BindDocument(askDocument); err != nil {
				return err
			}
		}

		var reply internal.ChatMessage
		err := internal.ShowProgress(ctx, "Querying the document", func() error {
			var err error
			reply, err = chat.Ask(ctx, strings.Join(args, " "))
			return err
		})
		if err != nil {
			return err
		}
		printReply(cmd.OutOrStdout(), reply)
		printCitations(cmd.OutOrStdout(), chat.Citations())
		if reply.Kind == internal.KindFailure {
			return errors.New(reply.Text)
		}
		return nil
	},
}

// indexDocument uploads path for indexing behind a spinner and prints the status line.
func indexDocument(ctx context.Context, out io.Writer, d *internal.Dashboard, path string) error {
	file, err := readUpload(path)
	if err != nil {
		return err
	}
	err = internal.ShowProgress(ctx, fmt.Sprintf("Indexing %s", file.Name), func() error {
		_, err := d.IndexDocument(ctx, file)
		return err
	})
	if err != nil {
		return userError(err, internal.DocumentIndexFailure)
	}
	fmt.Fprintln(out, infoStyle.Render(d.DocumentChat().Status()))
	return nil
}

// printCitations lists the sources of the last answer.
func printCitations(out io.Writer, citations []internal.Citation) {
	if len(citations) == 0 {
		return
	}
	fmt.Fprintln(out, sectionStyle.Render("Sources"))
	for _, c := range citations {
		fmt.Fprintf(out, "  %s %s\n",
			idStyle.Render(fmt.Sprintf("[Page %d, Chunk %d]", c.Page, c.Chunk)),
			strings.ReplaceAll(c.Snippet, "\n", " "))
	}
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askFile, "file", "f", "", "PDF document to index first")
	askCmd.Flags().StringVar(&askDocument, "document", "", "Name of a document the service already indexed")
}
