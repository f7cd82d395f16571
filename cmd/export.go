package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/iksnae/nlp-playground/internal"
	"github.com/iksnae/nlp-playground/internal/export"
)

var (
	format    string
	outputDir string
	assistant string
	sessionID string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export archived transcripts to files",
	Long: `Export saved chat transcripts to various formats (jsonl, md, yaml, json, sqlite).

You can export every archived transcript, only one assistant's, or a specific
session by ID. Use 'nlp-playground history' to see available session IDs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		db, err := openArchive()
		if err != nil {
			return err
		}
		defer db.Close()

		summaries, err := internal.ListSessions(db)
		if err != nil {
			return err
		}

		var sessions []*internal.Session
		for _, s := range summaries {
			if sessionID != "" && s.ID != sessionID {
				continue
			}
			if assistant != "" && s.Assistant != assistant {
				continue
			}
			session, err := internal.LoadSession(db, s.ID)
			if err != nil {
				internal.LogWarn("Skipping session %s: %v", s.ID, err)
				continue
			}
			sessions = append(sessions, session)
		}
		if sessionID != "" && len(sessions) == 0 {
			return errors.WithHint(
				errors.Newf("session not found: %s", sessionID),
				"use 'nlp-playground history' to see available sessions")
		}

		if len(sessions) == 0 {
			internal.PrintWarning("No transcripts to export")
			return nil
		}

		written, err := writeSessions(cmd.Context(), exporter, sessions, outputDir)
		if err != nil {
			return err
		}
		internal.PrintSuccess(fmt.Sprintf("Export complete: %d session(s) exported to %s", written, outputDir))
		return nil
	},
}

// writeSessions writes one file per session into dir and returns how many
// were written. A session that fails to export is logged and skipped.
func writeSessions(ctx context.Context, exporter export.Exporter, sessions []*internal.Session, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, errors.Wrap(err, "failed to create output directory")
	}

	written := 0
	err := internal.ShowProgress(ctx, fmt.Sprintf("Exporting %d session(s) to %s", len(sessions), dir), func() error {
		for _, session := range sessions {
			path := filepath.Join(dir, fmt.Sprintf("session_%s.%s", session.ID, exporter.Extension()))
			file, err := os.Create(path)
			if err != nil {
				internal.LogError("Failed to create file %s: %v", path, err)
				continue
			}
			if err := exporter.Export(session, file); err != nil {
				_ = file.Close()
				internal.LogError("Failed to export session %s: %v", session.ID, err)
				continue
			}
			if err := file.Close(); err != nil {
				internal.LogWarn("Failed to close file %s: %v", path, err)
			}
			written++
		}
		return nil
	})
	return written, err
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json, sqlite)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().StringVar(&assistant, "assistant", "", "Only export one assistant's transcripts (copilot, document)")
	exportCmd.Flags().StringVar(&sessionID, "session-id", "", "Export a specific session by ID")
}
