package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/iksnae/nlp-playground/internal"
	"github.com/iksnae/nlp-playground/testutil"
)

func TestSQLiteExporter_RoundTrip(t *testing.T) {
	session := internal.CreateTestSession("sql1")
	session.Citations = []internal.Citation{
		{Page: 1, Chunk: 2, Snippet: "first"},
		{Page: 4, Chunk: 1, Snippet: "second"},
	}

	var buf bytes.Buffer
	if err := (&SQLiteExporter{}).Export(session, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("SQLite format 3\x00")) {
		t.Fatal("output is not a SQLite database image")
	}

	path := testutil.WriteFile(t, testutil.CreateTempDir(t), filepath.Join("out", "t.db"), buf.Bytes())
	db, err := internal.OpenArchive(path)
	if err != nil {
		t.Fatalf("OpenArchive() error = %v", err)
	}
	defer db.Close()

	got, err := internal.LoadSession(db, "sql1")
	if err != nil {
		t.Fatalf("LoadSession() error = %v", err)
	}
	if got.Assistant != session.Assistant || got.Artifact != session.Artifact {
		t.Errorf("got %+v", got)
	}
	if len(got.Messages) != len(session.Messages) {
		t.Fatalf("got %d messages, want %d", len(got.Messages), len(session.Messages))
	}
	for i := range got.Messages {
		if got.Messages[i] != session.Messages[i] {
			t.Errorf("message %d = %+v, want %+v", i, got.Messages[i], session.Messages[i])
		}
	}
	if len(got.Citations) != 2 || got.Citations[1].Snippet != "second" {
		t.Errorf("citations = %+v", got.Citations)
	}
}

func TestSQLiteExporter_Extension(t *testing.T) {
	if got := (&SQLiteExporter{}).Extension(); got != "db" {
		t.Errorf("Extension() = %v, want db", got)
	}
}
