package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iksnae/nlp-playground/internal"
)

var (
	preprocessFile   string
	preprocessColumn string
	preprocessOpts   []string
)

// preprocessOptions are the cleanup switches the service understands.
var preprocessOptions = []string{
	internal.OptionLowercase,
	internal.OptionRemovePunctuation,
	internal.OptionRemoveStopwords,
	internal.OptionLemmatization,
	internal.OptionStemming,
}

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Preview text cleanup on one dataset column",
	Long: `Upload a CSV and preview how the service cleans one text column.

Options: lowercase, remove_punctuation, remove_stopwords, lemmatization, stemming.
Without --option lowercase, punctuation and stopword removal are applied.

Example:
  nlp-playground preprocess -f reviews.csv --column text --option lowercase`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		options := map[string]bool{}
		selected := preprocessOpts
		if len(selected) == 0 {
			selected = preprocessOptions[:3]
		}
		for _, o := range selected {
			if !contains(preprocessOptions, o) {
				return fmt.Errorf("unknown option %q (supported: %v)", o, preprocessOptions)
			}
			options[o] = true
		}

		ctx := cmd.Context()
		d := internal.NewDashboard(internal.TaskClassification, newService(), dashboardOptions())
		defer d.Close()
		if err := uploadDataset(ctx, d, preprocessFile); err != nil {
			return err
		}

		var resp internal.PreprocessResponse
		err := internal.ShowProgress(ctx, fmt.Sprintf("Cleaning column %s", preprocessColumn), func() error {
			var err error
			resp, err = d.Preprocess(ctx, preprocessColumn, options)
			return err
		})
		if err != nil {
			return userError(err, "Preprocessing failed.")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sectionStyle.Render(fmt.Sprintf("Preview of %s", preprocessColumn)))
		for i, row := range resp.Preview {
			fmt.Fprintf(out, "  %s %v\n", idStyle.Render(fmt.Sprintf("%2d.", i+1)), row["processed_text"])
		}
		return nil
	},
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(preprocessCmd)
	preprocessCmd.Flags().StringVarP(&preprocessFile, "file", "f", "", "CSV dataset to upload")
	preprocessCmd.Flags().StringVar(&preprocessColumn, "column", "", "Text column to clean")
	preprocessCmd.Flags().StringSliceVar(&preprocessOpts, "option", nil, "Cleanup step to apply (repeatable)")
	_ = preprocessCmd.MarkFlagRequired("file")
	_ = preprocessCmd.MarkFlagRequired("column")
}
