package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/nlp-playground/internal"
)

func TestWorkspaceCommand_Classification(t *testing.T) {
	url := startService(t)
	file := reviewsFile(t)
	_, archive := archiveFlag(t)
	exportDir := t.TempDir()

	script := strings.Join([]string{
		"fields",
		"upload " + file,
		"set input text",
		"set target label",
		"run",
		"result json",
		"chat Which columns have missing values?",
		"chat   ",
		"save",
		"export json " + exportDir,
		"quit",
	}, "\n")
	out, err := execute(t, script, "--service-url", url, "--archive", archive, "workspace", "-t", "classification")
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	for _, want := range []string{
		internal.CopilotGreeting,
		"Upload a dataset to configure the experiment.",
		"Select Column...",
		"Select Target...",
		"Ready to run",
		"Model Evaluation",
		`"accuracy"`,
		"reviews.csv has 5 rows and 2 columns.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	db, err := internal.OpenArchive(archive)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer db.Close()
	sessions, err := internal.ListSessions(db)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("archived %d sessions, want 1", len(sessions))
	}
	got := sessions[0]
	if got.Assistant != "copilot" || got.Artifact != "reviews.csv" || got.MessageCount != 3 {
		t.Errorf("archived summary = %+v", got)
	}
	saved, err := internal.LoadSession(db, got.ID)
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if saved.Metadata.Task != "classification" {
		t.Errorf("task = %q", saved.Metadata.Task)
	}

	if _, err := os.Stat(filepath.Join(exportDir, "session_"+got.ID+".json")); err != nil {
		t.Errorf("exported transcript missing: %v", err)
	}
}

func TestWorkspaceCommand_Document(t *testing.T) {
	url := startService(t)
	file := petsFile(t)
	_, archive := archiveFlag(t)

	script := strings.Join([]string{
		"chat Do cats sleep?",
		"upload " + file,
		"chat Do cats sleep?",
		"history",
		"quit",
	}, "\n")
	out, err := execute(t, script, "--service-url", url, "--archive", archive, "workspace", "-t", "rag")
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	for _, want := range []string{
		internal.DocumentGreeting,
		"no artifact bound",
		"Indexed 2 chunks across 2 pages.",
		"[Page 1, Chunk 1]",
		"Sources",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWorkspaceCommand_TaskSelector(t *testing.T) {
	url := startService(t)
	_, archive := archiveFlag(t)

	script := strings.Join([]string{
		"run",
		"task nonsense",
		"task sentiment",
		"run",
		"frobnicate",
		"back",
		"fields",
	}, "\n")
	out, err := execute(t, script, "--service-url", url, "--archive", archive, "workspace")
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	for _, want := range []string{
		"Select a task",
		"no task selected",
		"Sentiment Analysis",
		"experiment is not ready to run",
		`unknown command "frobnicate"`,
		"sentiment>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "no task selected") != 2 {
		t.Errorf("fields after back should report no task:\n%s", out)
	}
}
