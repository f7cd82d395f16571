package export

import (
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/iksnae/nlp-playground/internal"
)

// SQLiteExporter writes the transcript as a SQLite archive. The database is
// built in a temporary file and then copied to w.
type SQLiteExporter struct{}

// Export exports a session to a SQLite database image
func (e *SQLiteExporter) Export(session *internal.Session, w io.Writer) error {
	dir, err := os.MkdirTemp("", "nlp-playground-export-*")
	if err != nil {
		return errors.Wrap(err, "create temp dir")
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "transcript.db")
	db, err := internal.OpenArchive(path)
	if err != nil {
		return err
	}
	if err := internal.SaveSession(db, session); err != nil {
		db.Close()
		return err
	}
	if err := db.Close(); err != nil {
		return errors.Wrap(err, "close archive")
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "reopen archive")
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return errors.Wrap(err, "copy archive")
	}
	return nil
}

// Extension returns the file extension for this format
func (e *SQLiteExporter) Extension() string {
	return "db"
}
