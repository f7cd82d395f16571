package cmd

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/iksnae/nlp-playground/internal"
	"github.com/iksnae/nlp-playground/testutil"
)

func reviewsFile(t *testing.T) string {
	t.Helper()
	return testutil.WriteFile(t, t.TempDir(), "reviews.csv", testutil.ReviewsCSV(t))
}

func petsFile(t *testing.T) string {
	t.Helper()
	pdf := testutil.MinimalPDF(
		"Cats are small domesticated carnivores. They sleep most of the day.",
		"Dogs are loyal companions that enjoy long walks.",
	)
	return testutil.WriteFile(t, t.TempDir(), "pets.pdf", pdf)
}

func TestTasksCommand(t *testing.T) {
	out, err := execute(t, "", "tasks")
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	for _, info := range internal.Tasks() {
		if !strings.Contains(out, string(info.Type)) || !strings.Contains(out, info.Title) {
			t.Errorf("tasks output missing %s (%s)", info.Type, info.Title)
		}
	}
	if !strings.Contains(out, "input_col, target_col") {
		t.Errorf("classification columns not listed:\n%s", out)
	}
}

func TestRunCommand(t *testing.T) {
	url := startService(t)
	file := reviewsFile(t)
	_, archive := archiveFlag(t)

	t.Run("sentiment chart", func(t *testing.T) {
		out, err := execute(t, "", "--service-url", url, "--archive", archive,
			"run", "-t", "sentiment", "-f", file, "--input", "text")
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if !strings.Contains(out, "Sentiment Distribution") || !strings.Contains(out, "positive") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("classification as json", func(t *testing.T) {
		out, err := execute(t, "", "--service-url", url, "--archive", archive,
			"run", "-t", "classification", "-f", file, "--input", "text", "--target", "label", "-o", "json")
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if !strings.Contains(out, `"accuracy"`) {
			t.Errorf("json output has no accuracy:\n%s", out)
		}
	})

	t.Run("missing column keeps the gate closed", func(t *testing.T) {
		_, err := execute(t, "", "--service-url", url, "--archive", archive,
			"run", "-t", "classification", "-f", file, "--input", "text")
		if !errors.Is(err, internal.ErrNotReady) {
			t.Errorf("err = %v, want ErrNotReady", err)
		}
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := execute(t, "", "--service-url", url, "--archive", archive,
			"run", "-t", "sentiment", "-f", file, "--input", "body")
		if !errors.Is(err, internal.ErrUnknownColumn) {
			t.Errorf("err = %v, want ErrUnknownColumn", err)
		}
	})

	t.Run("rag is not an experiment", func(t *testing.T) {
		_, err := execute(t, "", "--service-url", url, "--archive", archive,
			"run", "-t", "rag", "-f", file)
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("unreachable service", func(t *testing.T) {
		_, err := execute(t, "", "--service-url", "http://127.0.0.1:1", "--archive", archive,
			"run", "-t", "sentiment", "-f", file, "--input", "text")
		if err == nil || err.Error() != internal.DatasetUploadFailure {
			t.Errorf("err = %v, want %q", err, internal.DatasetUploadFailure)
		}
	})

	t.Run("bad output format", func(t *testing.T) {
		_, err := execute(t, "", "--service-url", url, "--archive", archive,
			"run", "-t", "sentiment", "-f", file, "--input", "text", "-o", "xml")
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestConsultCommand(t *testing.T) {
	url := startService(t)
	file := reviewsFile(t)
	_, archive := archiveFlag(t)

	out, err := execute(t, "", "--service-url", url, "--archive", archive,
		"consult", "-f", file, "How", "big", "is", "it?")
	if err != nil {
		t.Fatalf("consult: %v", err)
	}
	if !strings.Contains(out, "reviews.csv has 5 rows and 2 columns.") {
		t.Errorf("unexpected reply:\n%s", out)
	}

	// The dataset stays on the service, so it can be named directly.
	out, err = execute(t, "", "--service-url", url, "--archive", archive,
		"consult", "--dataset", "reviews.csv", "Which model should I try?")
	if err != nil {
		t.Fatalf("consult --dataset: %v", err)
	}
	if !strings.Contains(out, "logistic regression") {
		t.Errorf("unexpected reply:\n%s", out)
	}

	if _, err := execute(t, "", "--service-url", url, "--archive", archive, "consult", "hello"); err == nil {
		t.Error("consult without --file or --dataset should fail")
	}
}

func TestConsultCommand_ServiceDown(t *testing.T) {
	_, archive := archiveFlag(t)
	out, err := execute(t, "", "--service-url", "http://127.0.0.1:1", "--archive", archive,
		"consult", "--dataset", "reviews.csv", "hello")
	if err == nil || err.Error() != internal.CopilotFailure {
		t.Errorf("err = %v, want %q", err, internal.CopilotFailure)
	}
	if !strings.Contains(out, internal.CopilotFailure) {
		t.Errorf("failure reply not printed:\n%s", out)
	}
}

func TestAskCommand(t *testing.T) {
	url := startService(t)
	file := petsFile(t)
	_, archive := archiveFlag(t)

	out, err := execute(t, "", "--service-url", url, "--archive", archive,
		"ask", "-f", file, "Do cats sleep?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	for _, want := range []string{
		"Indexed 2 chunks across 2 pages.",
		"Cats are small domesticated carnivores. [Page 1, Chunk 1]",
		"Sources",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, "", "--service-url", url, "--archive", archive,
		"ask", "--document", "pets.pdf", "Are dogs loyal?")
	if err != nil {
		t.Fatalf("ask --document: %v", err)
	}
	if !strings.Contains(out, "[Page 2, Chunk 1]") {
		t.Errorf("unexpected answer:\n%s", out)
	}

	_, err = execute(t, "", "--service-url", url, "--archive", archive,
		"ask", "--document", "missing.pdf", "Anything?")
	if err == nil || err.Error() != internal.DocumentQueryFailure {
		t.Errorf("err = %v, want %q", err, internal.DocumentQueryFailure)
	}
}

func TestPreprocessCommand(t *testing.T) {
	url := startService(t)
	file := reviewsFile(t)
	_, archive := archiveFlag(t)

	out, err := execute(t, "", "--service-url", url, "--archive", archive,
		"preprocess", "-f", file, "--column", "text")
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	if !strings.Contains(out, "love phone camera great") {
		t.Errorf("unexpected preview:\n%s", out)
	}

	if _, err := execute(t, "", "--service-url", url, "--archive", archive,
		"preprocess", "-f", file, "--column", "text", "--option", "shout"); err == nil {
		t.Error("unknown option should fail")
	}
}

func TestHealthcheckCommand(t *testing.T) {
	url := startService(t)
	_, archive := archiveFlag(t)

	out, err := execute(t, "", "--service-url", url, "--archive", archive, "healthcheck", "-v")
	if err != nil {
		t.Fatalf("healthcheck: %v", err)
	}
	if !strings.Contains(out, "Health check passed") || !strings.Contains(out, url) {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = execute(t, "", "--service-url", "http://127.0.0.1:1", "--archive", archive,
		"healthcheck", "--timeout", "2s")
	if err == nil {
		t.Fatal("expected failure against a closed port")
	}
	if !strings.Contains(out, "Health check failed") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestHealthcheckCommand_Flags(t *testing.T) {
	if healthcheckCmd.Flag("verbose") == nil || healthcheckCmd.Flags().ShorthandLookup("v") == nil {
		t.Error("healthcheck command should have -v/--verbose")
	}
	if healthcheckCmd.Flag("timeout") == nil {
		t.Error("healthcheck command should have --timeout")
	}
}
