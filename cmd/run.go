package cmd

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/iksnae/nlp-playground/internal"
	"github.com/iksnae/nlp-playground/internal/render"
)

var (
	runTask    string
	runFile    string
	runInput   string
	runTarget  string
	runContext string
	runOutput  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Upload a dataset and run one experiment",
	Long: `Upload a CSV dataset, select the columns the task needs and run one
experiment. The result is drawn in the terminal, or written as the raw JSON
payload with --output json.

Examples:
  nlp-playground run -t classification -f reviews.csv --input text --target label
  nlp-playground run -t qa -f qa.csv --input question --context passage -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := internal.ParseTaskType(runTask)
		if err != nil {
			return err
		}
		if task.ArtifactKind() != internal.ArtifactTabular {
			return errors.WithHint(errors.Newf("%s does not run experiments", task), "use: nlp-playground ask --file doc.pdf \"question\"")
		}
		if runOutput != "text" && runOutput != "json" {
			return errors.Newf("unsupported output %q (supported: text, json)", runOutput)
		}

		d := internal.NewDashboard(task, newService(), dashboardOptions())
		defer d.Close()
		ctx := cmd.Context()

		if err := uploadDataset(ctx, d, runFile); err != nil {
			return err
		}
		selections := map[internal.FieldKey]string{
			internal.FieldInput:   runInput,
			internal.FieldTarget:  runTarget,
			internal.FieldContext: runContext,
		}
		for _, key := range task.RequiredFields() {
			if selections[key] == "" {
				continue
			}
			if err := d.Select(key, selections[key]); err != nil {
				return err
			}
		}
		if !d.CanRun() {
			return errors.WithHint(
				errors.Wrapf(internal.ErrNotReady, "missing %v", d.Missing()),
				"pass --input and the other columns the task needs (see: nlp-playground tasks)",
			)
		}

		result, err := runExperiment(ctx, d)
		if err != nil {
			return err
		}
		if runOutput == "json" {
			return render.JSON(cmd.OutOrStdout(), result)
		}
		return render.Draw(cmd.OutOrStdout(), render.Render(result))
	},
}

// uploadDataset sends path to the dashboard behind a spinner.
func uploadDataset(ctx context.Context, d *internal.Dashboard, path string) error {
	file, err := readUpload(path)
	if err != nil {
		return err
	}
	var artifact internal.Artifact
	err = internal.ShowProgress(ctx, fmt.Sprintf("Uploading %s", file.Name), func() error {
		var upErr error
		artifact, upErr = d.UploadDataset(ctx, file)
		return upErr
	})
	if err != nil {
		return userError(err, internal.DatasetUploadFailure)
	}
	internal.LogInfo("columns: %v", artifact.Schema)
	return nil
}

// runExperiment dispatches the configured run behind a spinner.
func runExperiment(ctx context.Context, d *internal.Dashboard) (internal.ExperimentResult, error) {
	var result internal.ExperimentResult
	err := internal.ShowProgress(ctx, fmt.Sprintf("Running %s", d.Task().Title()), func() error {
		var runErr error
		result, runErr = d.Run(ctx)
		return runErr
	})
	if err != nil {
		if msg := d.RunError(); msg != "" {
			return nil, errors.New(msg)
		}
		return nil, err
	}
	return result, nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runTask, "task", "t", "", "Task type (see: nlp-playground tasks)")
	runCmd.Flags().StringVarP(&runFile, "file", "f", "", "CSV dataset to upload")
	runCmd.Flags().StringVar(&runInput, "input", "", "Input column")
	runCmd.Flags().StringVar(&runTarget, "target", "", "Target column (classification)")
	runCmd.Flags().StringVar(&runContext, "context", "", "Context column (qa)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "text", "Output: text or json")
	_ = runCmd.MarkFlagRequired("task")
	_ = runCmd.MarkFlagRequired("file")
}
