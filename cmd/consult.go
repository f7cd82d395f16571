package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/iksnae/nlp-playground/internal"
)

var (
	consultFile    string
	consultDataset string
)

var consultCmd = &cobra.Command{
	Use:   "consult [question]",
	Short: "Ask the dataset copilot a question",
	Long: `Ask the dataset copilot about missing values, column types or model choice.

Either upload a CSV with --file or name a dataset the service already holds
with --dataset.

Examples:
  nlp-playground consult -f reviews.csv "Which columns have missing values?"
  nlp-playground consult --dataset reviews.csv "Which model should I try?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (consultFile == "") == (consultDataset == "") {
			return errors.New("pass exactly one of --file or --dataset")
		}
		ctx := cmd.Context()
		svc := newService()

		var copilot *internal.Copilot
		if consultFile != "" {
			d := internal.NewDashboard(internal.TaskClassification, svc, dashboardOptions())
			defer d.Close()
			if err := uploadDataset(ctx, d, consultFile); err != nil {
				return err
			}
			copilot = d.Copilot()
		} else {
			registry := internal.NewRegistry()
			registry.Replace(internal.Artifact{Identity: consultDataset, Kind: internal.ArtifactTabular})
			copilot = internal.NewCopilot(svc, registry, cfg.RequestTimeout)
			defer copilot.Close()
		}

		question := strings.Join(args, " ")
		var reply internal.ChatMessage
		err := internal.ShowProgress(ctx, "Asking the copilot", func() error {
			var err error
			reply, err = copilot.Submit(ctx, question)
			return err
		})
		if err != nil {
			return err
		}
		printReply(cmd.OutOrStdout(), reply)
		if reply.Kind == internal.KindFailure {
			return errors.New(reply.Text)
		}
		return nil
	},
}

// printReply writes one bot message with the style of its kind.
func printReply(out io.Writer, reply internal.ChatMessage) {
	style := assistantMessageStyle
	if reply.Kind == internal.KindFailure {
		style = errorStyle
	}
	fmt.Fprintln(out, style.Render("🤖 Bot"))
	fmt.Fprintln(out, messageContentStyle.Render(wrapText(reply.Text, 80)))
}

func init() {
	rootCmd.AddCommand(consultCmd)
	consultCmd.Flags().StringVarP(&consultFile, "file", "f", "", "CSV dataset to upload first")
	consultCmd.Flags().StringVar(&consultDataset, "dataset", "", "Name of a dataset already uploaded to the service")
}
