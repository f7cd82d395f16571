package internal

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for refusals that never reach the network.
var (
	// ErrUnknownTask is returned for task names outside the catalogue
	ErrUnknownTask = errors.New("unknown task type")

	// ErrNoArtifact means the operation needs an artifact that is not bound
	ErrNoArtifact = errors.New("no artifact bound")

	// ErrEmptyTurn is returned when a conversational turn has no text
	ErrEmptyTurn = errors.New("empty message")

	// ErrBusy means another request owned by the same tracker is still pending
	ErrBusy = errors.New("a request is already in flight")

	// ErrNotReady means the run gate is closed
	ErrNotReady = errors.New("experiment is not ready to run")

	// ErrUnknownColumn is returned when a selection is not part of the dataset schema
	ErrUnknownColumn = errors.New("column is not in the dataset schema")

	// ErrFieldNotApplicable is returned when a field is not used by the active task
	ErrFieldNotApplicable = errors.New("field is not used by this task")

	// ErrClosed means the owning dashboard was discarded
	ErrClosed = errors.New("workspace closed")
)

// ServiceError represents a non-2xx answer from the remote service
type ServiceError struct {
	Op     string // "upload", "train", "consult", "rag/upload", "rag/query", "preprocess"
	Status int
	Detail string // human-readable detail from the response body, may be empty
}

func (e *ServiceError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("service error [%s] %d: %s", e.Op, e.Status, e.Detail)
	}
	return fmt.Sprintf("service error [%s] %d", e.Op, e.Status)
}

// UploadError represents a failed dataset or document upload
type UploadError struct {
	Kind ArtifactKind
	Name string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload error [%s] %s: %v", e.Kind, e.Name, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// RunError represents a failed experiment dispatch
type RunError struct {
	Task    TaskType
	Message string // user-facing text shown instead of the raw error
	Err     error
}

func (e *RunError) Error() string {
	return e.Message
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// ServiceDetail returns the detail message carried by a ServiceError in err's chain.
func ServiceDetail(err error) (string, bool) {
	var se *ServiceError
	if errors.As(err, &se) && se.Detail != "" {
		return se.Detail, true
	}
	return "", false
}

// UserMessage prefers the service-provided detail and falls back to the given text.
func UserMessage(err error, fallback string) string {
	if detail, ok := ServiceDetail(err); ok {
		return detail
	}
	return fallback
}
