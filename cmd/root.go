package cmd

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/iksnae/nlp-playground/internal"
	"github.com/iksnae/nlp-playground/internal/client"
	"github.com/iksnae/nlp-playground/internal/config"
)

var (
	verbose    bool
	jsonLogs   bool
	configPath string
	serviceURL string
	archive    string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"

	// cfg is loaded once per invocation by the root PersistentPreRunE
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nlp-playground",
	Short: "Run NLP experiments against the playground service",
	Long: `A terminal client for the NLP playground service.

Upload a CSV dataset, pick the columns a task needs and run an experiment,
or index a PDF and ask questions about it.

Tasks:
  • Text Classification, Summarization, Question Answering, Sentiment Analysis
  • Ask Your Document (RAG) over an uploaded PDF
  • A dataset copilot for questions about the uploaded data

Quick Start:
  nlp-playground tasks                                        # List the task catalogue
  nlp-playground run -t sentiment -f reviews.csv --input text # One-shot experiment
  nlp-playground workspace -t classification                  # Interactive workspace
  nlp-playground fake-service                                 # Local stand-in service`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("service-url") {
			loaded.ServiceURL = serviceURL
			if err := loaded.Validate(); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("archive") {
			loaded.ArchivePath = archive
		}
		if cmd.Flags().Changed("json-logs") {
			loaded.Log.JSON = jsonLogs
		}
		cfg = loaded

		internal.SetJSONOutput(cfg.Log.JSON)
		internal.SetVerbose(verbose || cfg.Log.Verbose)
		internal.LogDebug("service %s, timeout %s", cfg.ServiceURL, cfg.RequestTimeout)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		internal.PrintError(fmt.Sprintf("Error: %v", err))
		for _, hint := range errors.GetAllHints(err) {
			internal.PrintInfo(hint)
		}
		os.Exit(1)
	}
}

// newService builds the HTTP client for the configured service.
func newService() *client.Client {
	return client.New(client.Config{
		BaseURL: cfg.ServiceURL,
		Timeout: cfg.RequestTimeout,
	})
}

// dashboardOptions maps the configuration onto a dashboard.
func dashboardOptions() internal.Options {
	return internal.Options{
		RequestTimeout:  cfg.RequestTimeout,
		Hyperparameters: cfg.Hyperparameters,
	}
}

// userError reduces err to the message shown to the user: the service
// detail when there is one, else fallback. Hints survive; the cause is logged.
func userError(err error, fallback string) error {
	if errors.Is(err, internal.ErrBusy) || errors.Is(err, internal.ErrClosed) {
		return err
	}
	internal.LogDebug("%+v", err)
	msg := internal.UserMessage(err, fallback)
	out := errors.New(msg)
	for _, hint := range errors.GetAllHints(err) {
		if hint != msg {
			out = errors.WithHint(out, hint)
		}
	}
	return out
}

// readUpload loads a local file for upload.
func readUpload(path string) (internal.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return internal.Upload{}, errors.Wrapf(err, "read %s", path)
	}
	return internal.Upload{Name: filepath.Base(path), Data: data}, nil
}

// openArchive opens the transcript archive, creating its directory if needed.
func openArchive() (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.ArchivePath), 0755); err != nil {
		return nil, errors.Wrap(err, "create archive directory")
	}
	return internal.OpenArchive(cfg.ArchivePath)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Write logs as JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ./nlp-playground.yaml or ~/.config/nlp-playground/)")
	rootCmd.PersistentFlags().StringVar(&serviceURL, "service-url", "", "Service base URL (overrides service_url)")
	rootCmd.PersistentFlags().StringVar(&archive, "archive", "", "Transcript archive file (overrides archive_path)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
