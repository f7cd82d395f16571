package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/nlp-playground/internal"
)

// seedArchive writes sessions into a fresh archive and returns its path.
func seedArchive(t *testing.T, sessions ...*internal.Session) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcripts.db")
	db, err := internal.OpenArchive(path)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer db.Close()
	for _, s := range sessions {
		if err := internal.SaveSession(db, s); err != nil {
			t.Fatalf("SaveSession: %v", err)
		}
	}
	return path
}

func TestExportCommand(t *testing.T) {
	copilot := internal.CreateTestSession("copilot-1")
	copilot.Metadata.UpdatedAt = "2026-01-02T10:00:00Z"
	doc := internal.CreateTestSessionWithMessages("document-1", []internal.Message{
		{Actor: "user", Kind: "question", Content: "Do cats sleep?"},
	})
	archive := seedArchive(t, copilot, doc)

	tests := []struct {
		name      string
		args      []string
		wantFiles []string
		wantErr   bool
	}{
		{
			name:      "all transcripts",
			args:      []string{"--format", "json"},
			wantFiles: []string{"session_copilot-1.json", "session_document-1.json"},
		},
		{
			name:      "one assistant",
			args:      []string{"--format", "md", "--assistant", "document"},
			wantFiles: []string{"session_document-1.md"},
		},
		{
			name:      "one session",
			args:      []string{"--format", "yaml", "--session-id", "copilot-1"},
			wantFiles: []string{"session_copilot-1.yaml"},
		},
		{
			name:    "unknown session",
			args:    []string{"--session-id", "nope"},
			wantErr: true,
		},
		{
			name:    "invalid format",
			args:    []string{"--format", "invalid"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := t.TempDir()
			args := append([]string{"--archive", archive, "export", "--out", out}, tt.args...)
			_, err := execute(t, "", args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("export error = %v, wantErr %v", err, tt.wantErr)
			}
			entries, _ := os.ReadDir(out)
			var got []string
			for _, e := range entries {
				got = append(got, e.Name())
			}
			if strings.Join(got, ",") != strings.Join(tt.wantFiles, ",") {
				t.Errorf("files = %v, want %v", got, tt.wantFiles)
			}
		})
	}
}

func TestHistoryCommand(t *testing.T) {
	t.Run("empty archive", func(t *testing.T) {
		_, archive := archiveFlag(t)
		out, err := execute(t, "", "--archive", archive, "history")
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		if !strings.Contains(out, "No saved transcripts") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("lists transcripts", func(t *testing.T) {
		s := internal.CreateTestSession("0f8c2b7e-1111-2222-3333-444455556666")
		s.Metadata.UpdatedAt = "2026-01-02T10:00:00Z"
		archive := seedArchive(t, s)

		out, err := execute(t, "", "--archive", archive, "list")
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		for _, want := range []string{"Found 1 transcript(s)", "0f8c2b7e", "copilot", "reviews.csv", s.ID} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})
}

func TestShowCommand(t *testing.T) {
	s := internal.CreateTestSession("show-1")
	s.Citations = []internal.Citation{{Page: 3, Chunk: 2, Snippet: "cats sleep"}}
	archive := seedArchive(t, s)

	tests := []struct {
		name     string
		args     []string
		want     []string
		dontWant []string
		wantErr  bool
	}{
		{
			name: "whole transcript",
			args: []string{"show-1"},
			want: []string{"Dataset Copilot", "Artifact: reviews.csv", "Which columns have missing values?", "[Page 3, Chunk 2]"},
		},
		{
			name:     "limit",
			args:     []string{"show-1", "--limit", "1"},
			want:     []string{"(2 more message(s))"},
			dontWant: []string{"Only text has missing values."},
		},
		{
			name:    "bad since",
			args:    []string{"show-1", "--since", "yesterday"},
			wantErr: true,
		},
		{
			name:    "unknown session",
			args:    []string{"missing"},
			wantErr: true,
		},
		{
			name:    "no session id",
			args:    []string{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--archive", archive, "show"}, tt.args...)
			out, err := execute(t, "", args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("show error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.dontWant {
				if strings.Contains(out, w) {
					t.Errorf("output should not contain %q", w)
				}
			}
		})
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"short", "hello world", 80, "hello world"},
		{"wraps on words", "aaa bbb ccc", 7, "aaa bbb\nccc"},
		{"long word kept whole", "abcdefghij xy", 4, "abcdefghij\nxy"},
		{"keeps newlines", "a\nb", 80, "a\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapText(tt.text, tt.width); got != tt.want {
				t.Errorf("wrapText() = %q, want %q", got, tt.want)
			}
		})
	}
}
