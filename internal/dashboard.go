package internal

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/iksnae/nlp-playground/internal/preflight"
)

// DatasetUploadFailure is shown when the service gives no detail.
const DatasetUploadFailure = "Failed to upload dataset."

// Options tune a dashboard
type Options struct {
	RequestTimeout  time.Duration
	Hyperparameters map[string]any
}

// Dashboard is the controller of one task workspace. It owns the artifact
// registry, the configuration and the current result; the sessions and the
// dispatcher only read the registry.
type Dashboard struct {
	task       TaskType
	svc        Service
	registry   *Registry
	runs       *Tracker
	uploads    *Tracker
	dispatcher *Dispatcher

	copilot *Copilot
	docChat *DocumentChat

	mu     sync.RWMutex
	config Configuration
	result ExperimentResult
	runErr string
	closed bool
}

// NewDashboard creates the workspace for task.
func NewDashboard(task TaskType, svc Service, opts Options) *Dashboard {
	d := &Dashboard{
		task:     task,
		svc:      svc,
		registry: NewRegistry(),
		runs:     NewTracker(opts.RequestTimeout),
		uploads:  NewTracker(opts.RequestTimeout),
		config:   Configuration{},
	}
	d.dispatcher = NewDispatcher(svc, d.runs, opts.Hyperparameters)
	switch task.ArtifactKind() {
	case ArtifactDocument:
		d.docChat = NewDocumentChat(svc, d.registry, d.commitDocument, opts.RequestTimeout)
	default:
		d.copilot = NewCopilot(svc, d.registry, opts.RequestTimeout)
	}
	return d
}

// Task returns the active task type.
func (d *Dashboard) Task() TaskType {
	return d.task
}

// Artifacts gives read-only access to the registry.
func (d *Dashboard) Artifacts() ArtifactSource {
	return d.registry
}

// Artifact returns the current artifact.
func (d *Dashboard) Artifact() (Artifact, bool) {
	return d.registry.Current()
}

// Copilot returns the dataset copilot, or nil for document tasks.
func (d *Dashboard) Copilot() *Copilot {
	return d.copilot
}

// DocumentChat returns the document session, or nil for dataset tasks.
func (d *Dashboard) DocumentChat() *DocumentChat {
	return d.docChat
}

// Configuration returns a copy of the current selections.
func (d *Dashboard) Configuration() Configuration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.config.Clone()
}

// Form lists the selectors for the current task and dataset. It is empty
// until a dataset is uploaded.
func (d *Dashboard) Form() []FieldDescriptor {
	a, ok := d.registry.Current()
	if !ok || a.Kind != ArtifactTabular {
		return nil
	}
	return BuildForm(d.task, a.Schema, d.Configuration())
}

// Select sets one configuration field.
func (d *Dashboard) Select(key FieldKey, column string) error {
	a, ok := d.registry.Current()
	if !ok || a.Kind != ArtifactTabular {
		return ErrNoArtifact
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return Select(d.config, d.task, a.Schema, key, column)
}

// Clear returns one field to the unselected state.
func (d *Dashboard) Clear(key FieldKey) {
	d.mu.Lock()
	delete(d.config, key)
	d.mu.Unlock()
}

// InFlight reports whether an experiment run is pending.
func (d *Dashboard) InFlight() bool {
	return d.runs.Busy()
}

// CanRun evaluates the run gate against the current state.
func (d *Dashboard) CanRun() bool {
	var ap *Artifact
	if a, ok := d.registry.Current(); ok {
		ap = &a
	}
	return CanRun(ap, d.task, d.Configuration(), d.InFlight())
}

// Missing lists what keeps the run gate closed, besides an in-flight run.
func (d *Dashboard) Missing() []string {
	var ap *Artifact
	if a, ok := d.registry.Current(); ok {
		ap = &a
	}
	return missingForRun(ap, d.task, d.Configuration())
}

// Result returns the current experiment result, if any.
func (d *Dashboard) Result() ExperimentResult {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.result
}

// RunError returns the message of the last failed run, if any.
func (d *Dashboard) RunError() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.runErr
}

// UploadDataset sends a CSV file and binds the returned dataset. The
// configuration and result are reset; on failure nothing changes.
func (d *Dashboard) UploadDataset(ctx context.Context, file Upload) (Artifact, error) {
	if d.isClosed() {
		return Artifact{}, ErrClosed
	}
	if d.task.ArtifactKind() != ArtifactTabular {
		return Artifact{}, errors.Newf("%s works on documents, not datasets", d.task)
	}
	if _, err := preflight.CheckDataset(file.Name, file.Data); err != nil {
		return Artifact{}, &UploadError{Kind: ArtifactTabular, Name: file.Name, Err: err}
	}

	artifact, err := Do(ctx, d.uploads, func(ctx context.Context) (Artifact, error) {
		resp, err := d.svc.UploadDataset(ctx, file)
		if err != nil {
			return Artifact{}, err
		}
		return NewTabularArtifact(resp), nil
	})
	if err != nil {
		if errors.Is(err, ErrBusy) || errors.Is(err, ErrClosed) {
			return Artifact{}, err
		}
		Logger().Warnw("dataset upload failed", "file", file.Name, "error", err)
		return Artifact{}, &UploadError{
			Kind: ArtifactTabular,
			Name: file.Name,
			Err:  errors.WithHint(err, UserMessage(err, DatasetUploadFailure)),
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return Artifact{}, ErrClosed
	}
	d.registry.Replace(artifact)
	d.config = Configuration{}
	d.result = nil
	d.runErr = ""
	LogInfo("dataset %s bound with %d columns", artifact.Identity, len(artifact.Schema))
	return artifact, nil
}

// IndexDocument sends a PDF to the document session.
func (d *Dashboard) IndexDocument(ctx context.Context, file Upload) (Artifact, error) {
	if d.docChat == nil {
		return Artifact{}, errors.Newf("%s works on datasets, not documents", d.task)
	}
	return d.docChat.Index(ctx, file)
}

func (d *Dashboard) commitDocument(a Artifact) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.registry.Replace(a)
	d.config = Configuration{}
	d.result = nil
	d.runErr = ""
}

// Run dispatches the experiment when the gate is open. A failed run leaves
// the previous result in place and records the error message.
func (d *Dashboard) Run(ctx context.Context) (ExperimentResult, error) {
	a, ok := d.registry.Current()
	if !CanRun(artifactPtr(a, ok), d.task, d.Configuration(), false) {
		return nil, errors.Wrapf(ErrNotReady, "missing %v", d.Missing())
	}
	if d.InFlight() {
		return nil, ErrBusy
	}
	revision := d.registry.Revision()

	result, err := d.dispatcher.Dispatch(ctx, d.task, a.Identity, d.Configuration())

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	if err != nil {
		var runErr *RunError
		if errors.As(err, &runErr) {
			d.runErr = runErr.Message
		}
		return nil, err
	}
	if d.registry.Revision() != revision {
		LogWarn("discarding %s result: dataset changed during the run", d.task)
		return nil, errors.New("dataset changed while the experiment was running")
	}
	d.result = result
	d.runErr = ""
	return result, nil
}

// Preprocess runs the service-side text cleanup over one column.
func (d *Dashboard) Preprocess(ctx context.Context, column string, options map[string]bool) (PreprocessResponse, error) {
	a, ok := d.registry.Current()
	if !ok || a.Kind != ArtifactTabular {
		return PreprocessResponse{}, ErrNoArtifact
	}
	if !a.HasColumn(column) {
		return PreprocessResponse{}, errors.Wrapf(ErrUnknownColumn, "%q", column)
	}
	return d.dispatcher.Preprocess(ctx, PreprocessRequest{Filename: a.Identity, TextColumn: column, Options: options})
}

// Close cancels every pending request and drops the artifact. A closed
// dashboard ignores late responses.
func (d *Dashboard) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.config = Configuration{}
	d.result = nil
	d.mu.Unlock()

	d.runs.Close()
	d.uploads.Close()
	if d.copilot != nil {
		d.copilot.Close()
	}
	if d.docChat != nil {
		d.docChat.Close()
	}
	d.registry.Reset()
}

func (d *Dashboard) isClosed() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.closed
}

func artifactPtr(a Artifact, ok bool) *Artifact {
	if !ok {
		return nil
	}
	return &a
}

// Playground is the top-level state: either the task selector or one dashboard.
type Playground struct {
	svc  Service
	opts Options

	mu        sync.Mutex
	dashboard *Dashboard
}

// NewPlayground starts at the task selector.
func NewPlayground(svc Service, opts Options) *Playground {
	return &Playground{svc: svc, opts: opts}
}

// SelectTask leaves the current dashboard, if any, and opens one for task.
func (p *Playground) SelectTask(task TaskType) (*Dashboard, error) {
	if _, err := ParseTaskType(string(task)); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dashboard != nil {
		p.dashboard.Close()
	}
	p.dashboard = NewDashboard(task, p.svc, p.opts)
	LogDebug("opened %s workspace", task)
	return p.dashboard, nil
}

// Dashboard returns the open dashboard, or nil at the task selector.
func (p *Playground) Dashboard() *Dashboard {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dashboard
}

// Back closes the dashboard and returns to the task selector.
func (p *Playground) Back() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dashboard != nil {
		p.dashboard.Close()
		p.dashboard = nil
	}
}

// BindDocument binds a document the service indexed earlier, without
// uploading it again. Only document tasks accept it.
func (d *Dashboard) BindDocument(identity string) error {
	if d.docChat == nil {
		return errors.Newf("%s works on datasets, not documents", d.task)
	}
	if d.isClosed() {
		return ErrClosed
	}
	d.commitDocument(Artifact{Identity: identity, Kind: ArtifactDocument})
	return nil
}
