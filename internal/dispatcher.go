package internal

import (
	"context"

	"github.com/cockroachdb/errors"
)

// DefaultHyperparameters is sent with every run unless configured otherwise.
func DefaultHyperparameters() map[string]any {
	return map[string]any{"C": 1.0}
}

// Dispatcher sends experiment runs to the service. Callers check the run
// gate first; the dispatcher only enforces the single in-flight run.
type Dispatcher struct {
	svc     Service
	tracker *Tracker
	hyper   map[string]any
}

// NewDispatcher creates a dispatcher sharing the given tracker.
func NewDispatcher(svc Service, tracker *Tracker, hyper map[string]any) *Dispatcher {
	if len(hyper) == 0 {
		hyper = DefaultHyperparameters()
	}
	return &Dispatcher{svc: svc, tracker: tracker, hyper: hyper}
}

// InFlight reports whether a run is pending.
func (d *Dispatcher) InFlight() bool {
	return d.tracker.Busy()
}

// BuildTrainRequest assembles the /train payload.
func (d *Dispatcher) BuildTrainRequest(task TaskType, identity string, cfg Configuration) TrainRequest {
	hyper := make(map[string]any, len(d.hyper))
	for k, v := range d.hyper {
		hyper[k] = v
	}
	req := TrainRequest{
		TaskType:        task,
		Filename:        identity,
		Hyperparameters: hyper,
	}
	req.InputColumn, _ = cfg.Get(FieldInput)
	req.TargetColumn, _ = cfg.Get(FieldTarget)
	req.ContextColumn, _ = cfg.Get(FieldContext)
	return req
}

// Dispatch runs one experiment. On failure the returned *RunError carries
// the message to show; ErrBusy and ErrClosed are returned unwrapped.
func (d *Dispatcher) Dispatch(ctx context.Context, task TaskType, identity string, cfg Configuration) (ExperimentResult, error) {
	req := d.BuildTrainRequest(task, identity, cfg)
	LogDebug("dispatching %s run on %s", task, identity)

	result, err := Do(ctx, d.tracker, func(ctx context.Context) (ExperimentResult, error) {
		body, err := d.svc.Train(ctx, req)
		if err != nil {
			return nil, err
		}
		return ParseResult(body)
	})
	if err != nil {
		if errors.Is(err, ErrBusy) || errors.Is(err, ErrClosed) {
			return nil, err
		}
		msg := UserMessage(err, err.Error())
		Logger().Warnw("experiment run failed", "task", task, "filename", identity, "error", err)
		return nil, &RunError{Task: task, Message: "Error running experiment: " + msg, Err: err}
	}
	if !task.Expects(result.Type()) {
		LogWarn("%s run returned a %s result", task, result.Type())
	}
	return result, nil
}

// Preprocess runs a preprocessing pass over one column under the same
// tracker as experiment runs.
func (d *Dispatcher) Preprocess(ctx context.Context, req PreprocessRequest) (PreprocessResponse, error) {
	return Do(ctx, d.tracker, func(ctx context.Context) (PreprocessResponse, error) {
		return d.svc.Preprocess(ctx, req)
	})
}
