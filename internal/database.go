package internal

import (
	"database/sql"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"
)

const archiveSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	assistant     TEXT NOT NULL,
	artifact      TEXT,
	name          TEXT,
	task          TEXT,
	status        TEXT,
	created_at    TEXT,
	updated_at    TEXT,
	message_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	seq        INTEGER NOT NULL,
	timestamp  TEXT,
	actor      TEXT NOT NULL,
	kind       TEXT NOT NULL,
	content    TEXT NOT NULL,
	PRIMARY KEY (session_id, seq)
);
CREATE TABLE IF NOT EXISTS citations (
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	seq        INTEGER NOT NULL,
	page       INTEGER NOT NULL,
	chunk      INTEGER NOT NULL,
	snippet    TEXT NOT NULL,
	PRIMARY KEY (session_id, seq)
);`

// OpenArchive opens (creating if needed) a SQLite transcript archive
func OpenArchive(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database ping failed")
	}

	if _, err := db.Exec(archiveSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create archive schema")
	}
	return db, nil
}

// SaveSession writes a transcript, replacing any earlier copy with the same ID
func SaveSession(db *sql.DB, session *Session) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range []string{
		"DELETE FROM citations WHERE session_id = ?",
		"DELETE FROM messages WHERE session_id = ?",
		"DELETE FROM sessions WHERE id = ?",
	} {
		if _, err = tx.Exec(stmt, session.ID); err != nil {
			return errors.Wrap(err, "clear previous copy")
		}
	}

	m := session.Metadata
	_, err = tx.Exec(
		`INSERT INTO sessions (id, assistant, artifact, name, task, status, created_at, updated_at, message_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.Assistant, session.Artifact, m.Name, m.Task, m.Status, m.CreatedAt, m.UpdatedAt, len(session.Messages),
	)
	if err != nil {
		return errors.Wrap(err, "insert session")
	}

	for i, msg := range session.Messages {
		if _, err = tx.Exec(
			"INSERT INTO messages (session_id, seq, timestamp, actor, kind, content) VALUES (?, ?, ?, ?, ?, ?)",
			session.ID, i, msg.Timestamp, msg.Actor, msg.Kind, msg.Content,
		); err != nil {
			return errors.Wrapf(err, "insert message %d", i)
		}
	}
	for i, c := range session.Citations {
		if _, err = tx.Exec(
			"INSERT INTO citations (session_id, seq, page, chunk, snippet) VALUES (?, ?, ?, ?, ?)",
			session.ID, i, c.Page, c.Chunk, c.Snippet,
		); err != nil {
			return errors.Wrapf(err, "insert citation %d", i)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

// LoadSession reads a transcript back from the archive
func LoadSession(db *sql.DB, id string) (*Session, error) {
	var (
		s                Session
		artifact, name   sql.NullString
		task, status     sql.NullString
		created, updated sql.NullString
	)
	row := db.QueryRow(
		`SELECT id, assistant, artifact, name, task, status, created_at, updated_at, message_count
		 FROM sessions WHERE id = ?`, id)
	if err := row.Scan(&s.ID, &s.Assistant, &artifact, &name, &task, &status, &created, &updated, &s.Metadata.MessageCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Newf("session not found: %s", id)
		}
		return nil, errors.Wrap(err, "query session")
	}
	s.Artifact = artifact.String
	s.Metadata.Name = name.String
	s.Metadata.Task = task.String
	s.Metadata.Status = status.String
	s.Metadata.CreatedAt = created.String
	s.Metadata.UpdatedAt = updated.String

	rows, err := db.Query("SELECT timestamp, actor, kind, content FROM messages WHERE session_id = ? ORDER BY seq", id)
	if err != nil {
		return nil, errors.Wrap(err, "query messages")
	}
	defer rows.Close()
	s.Messages = []Message{}
	for rows.Next() {
		var msg Message
		var ts sql.NullString
		if err := rows.Scan(&ts, &msg.Actor, &msg.Kind, &msg.Content); err != nil {
			return nil, errors.Wrap(err, "scan message")
		}
		msg.Timestamp = ts.String
		s.Messages = append(s.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows iteration error")
	}

	crows, err := db.Query("SELECT page, chunk, snippet FROM citations WHERE session_id = ? ORDER BY seq", id)
	if err != nil {
		return nil, errors.Wrap(err, "query citations")
	}
	defer crows.Close()
	for crows.Next() {
		var c Citation
		if err := crows.Scan(&c.Page, &c.Chunk, &c.Snippet); err != nil {
			return nil, errors.Wrap(err, "scan citation")
		}
		s.Citations = append(s.Citations, c)
	}
	if err := crows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows iteration error")
	}
	return &s, nil
}

// SessionSummary is one row of the archive index
type SessionSummary struct {
	ID           string
	Assistant    string
	Artifact     string
	Name         string
	UpdatedAt    string
	MessageCount int
}

// ListSessions returns the archived transcripts, most recently updated first.
func ListSessions(db *sql.DB) ([]SessionSummary, error) {
	rows, err := db.Query(`SELECT id, assistant, artifact, name, updated_at, message_count
		FROM sessions ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, errors.Wrap(err, "query sessions")
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var (
			s                       SessionSummary
			artifact, name, updated sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Assistant, &artifact, &name, &updated, &s.MessageCount); err != nil {
			return nil, errors.Wrap(err, "scan session")
		}
		s.Artifact, s.Name, s.UpdatedAt = artifact.String, name.String, updated.String
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows iteration error")
	}
	return out, nil
}
