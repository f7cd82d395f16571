package internal

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTrainRequest(t *testing.T) {
	d := NewDispatcher(&StubService{}, NewTracker(0), nil)

	req := d.BuildTrainRequest(TaskClassification, "reviews.csv", Configuration{FieldInput: "text", FieldTarget: "label"})
	assert.Equal(t, TrainRequest{
		TaskType:        TaskClassification,
		Filename:        "reviews.csv",
		InputColumn:     "text",
		TargetColumn:    "label",
		Hyperparameters: map[string]any{"C": 1.0},
	}, req)

	body, err := json.Marshal(d.BuildTrainRequest(TaskSentiment, "reviews.csv", Configuration{FieldInput: "text"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"task_type":"sentiment","filename":"reviews.csv","input_column":"text","hyperparameters":{"C":1}}`, string(body))
}

func TestBuildTrainRequest_CustomHyperparameters(t *testing.T) {
	hyper := map[string]any{"C": 0.5, "max_iter": 200}
	d := NewDispatcher(&StubService{}, NewTracker(0), hyper)
	req := d.BuildTrainRequest(TaskClassification, "a.csv", Configuration{})
	assert.Equal(t, hyper, req.Hyperparameters)

	req.Hyperparameters["C"] = 9.0
	assert.Equal(t, 0.5, d.BuildTrainRequest(TaskClassification, "a.csv", Configuration{}).Hyperparameters["C"])
}

func TestDispatch(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &StubService{TrainFn: func(ctx context.Context, req TrainRequest) (json.RawMessage, error) {
			return json.RawMessage(`{"type":"classification_metrics","metrics":{"accuracy":0.91}}`), nil
		}}
		d := NewDispatcher(svc, NewTracker(0), nil)
		res, err := d.Dispatch(context.Background(), TaskClassification, "reviews.csv", Configuration{FieldInput: "text", FieldTarget: "label"})
		require.NoError(t, err)
		assert.Equal(t, ResultClassificationMetrics, res.Type())
		assert.False(t, d.InFlight())
	})

	t.Run("service detail becomes the message", func(t *testing.T) {
		svc := &StubService{TrainFn: func(ctx context.Context, req TrainRequest) (json.RawMessage, error) {
			return nil, &ServiceError{Op: "train", Status: 500, Detail: "'label'"}
		}}
		d := NewDispatcher(svc, NewTracker(0), nil)
		_, err := d.Dispatch(context.Background(), TaskClassification, "reviews.csv", Configuration{})
		var runErr *RunError
		require.True(t, errors.As(err, &runErr))
		assert.Equal(t, "Error running experiment: 'label'", runErr.Message)
		assert.False(t, d.InFlight())
	})

	t.Run("transport error falls back to its text", func(t *testing.T) {
		svc := &StubService{TrainFn: func(ctx context.Context, req TrainRequest) (json.RawMessage, error) {
			return nil, errors.New("connection refused")
		}}
		d := NewDispatcher(svc, NewTracker(0), nil)
		_, err := d.Dispatch(context.Background(), TaskSentiment, "reviews.csv", Configuration{})
		assert.EqualError(t, err, "Error running experiment: connection refused")
	})

	t.Run("malformed body is a run error", func(t *testing.T) {
		svc := &StubService{TrainFn: func(ctx context.Context, req TrainRequest) (json.RawMessage, error) {
			return json.RawMessage(`{"metrics":{}}`), nil
		}}
		d := NewDispatcher(svc, NewTracker(0), nil)
		_, err := d.Dispatch(context.Background(), TaskClassification, "reviews.csv", Configuration{})
		var runErr *RunError
		assert.True(t, errors.As(err, &runErr))
	})

	t.Run("busy is returned unwrapped", func(t *testing.T) {
		tr := NewTracker(0)
		_, _ = tr.begin(context.Background())
		svc := &StubService{}
		d := NewDispatcher(svc, tr, nil)
		_, err := d.Dispatch(context.Background(), TaskClassification, "reviews.csv", Configuration{})
		assert.ErrorIs(t, err, ErrBusy)
		assert.Zero(t, svc.TotalCalls())
	})
}
