package internal_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/nlp-playground/internal"
	"github.com/iksnae/nlp-playground/internal/client"
	"github.com/iksnae/nlp-playground/internal/render"
	"github.com/iksnae/nlp-playground/testutil"
)

func TestClassificationRunEndToEnd(t *testing.T) {
	srv := testutil.NewStubServer(t)
	srv.Respond(client.PathUpload, http.StatusOK, `{"filename":"reviews.csv","metadata":{"rows":5,"columns":2,"column_names":["text","label"]}}`)
	srv.Respond(client.PathTrain, http.StatusOK, `{"type":"classification_metrics","metrics":{"accuracy":0.91}}`)

	svc := client.New(client.Config{BaseURL: srv.URL})
	d := internal.NewDashboard(internal.TaskClassification, svc, internal.Options{})

	_, err := d.UploadDataset(context.Background(), internal.Upload{Name: "reviews.csv", Data: testutil.ReviewsCSV(t)})
	require.NoError(t, err)
	require.NoError(t, d.Select(internal.FieldInput, "text"))
	require.NoError(t, d.Select(internal.FieldTarget, "label"))
	require.True(t, d.CanRun())

	res, err := d.Run(context.Background())
	require.NoError(t, err)

	reqs := srv.Requests(client.PathTrain)
	require.Len(t, reqs, 1)
	var sent map[string]any
	require.NoError(t, json.Unmarshal(reqs[0].Body, &sent))
	assert.Equal(t, "classification", sent["task_type"])
	assert.Equal(t, "reviews.csv", sent["filename"])
	assert.Equal(t, "text", sent["input_column"])
	assert.Equal(t, "label", sent["target_column"])
	assert.NotContains(t, sent, "context_column")
	assert.Equal(t, map[string]any{"C": 1.0}, sent["hyperparameters"])

	p := render.Render(res)
	assert.Equal(t, render.KindMetrics, p.Kind)
	assert.Contains(t, p.Metrics, "0.91")
	assert.False(t, d.InFlight())
}

func TestEmptyChatTurnMakesNoRequest(t *testing.T) {
	srv := testutil.NewStubServer(t)
	srv.Respond(client.PathUpload, http.StatusOK, `{"filename":"reviews.csv","metadata":{"column_names":["text","label"]}}`)

	d := internal.NewDashboard(internal.TaskSentiment, client.New(client.Config{BaseURL: srv.URL}), internal.Options{})
	_, err := d.UploadDataset(context.Background(), internal.Upload{Name: "reviews.csv", Data: testutil.ReviewsCSV(t)})
	require.NoError(t, err)
	before := srv.Count()

	_, err = d.Copilot().Submit(context.Background(), "   ")
	assert.ErrorIs(t, err, internal.ErrEmptyTurn)
	assert.Equal(t, before, srv.Count())
	assert.Empty(t, srv.Requests(client.PathConsult))
}

func TestRunFailureShowsServiceDetail(t *testing.T) {
	srv := testutil.NewStubServer(t)
	srv.Respond(client.PathUpload, http.StatusOK, `{"filename":"reviews.csv","metadata":{"column_names":["text","label"]}}`)
	srv.Respond(client.PathTrain, http.StatusInternalServerError, `{"detail":"'label'"}`)

	d := internal.NewDashboard(internal.TaskClassification, client.New(client.Config{BaseURL: srv.URL}), internal.Options{})
	_, err := d.UploadDataset(context.Background(), internal.Upload{Name: "reviews.csv", Data: testutil.ReviewsCSV(t)})
	require.NoError(t, err)
	require.NoError(t, d.Select(internal.FieldInput, "text"))
	require.NoError(t, d.Select(internal.FieldTarget, "label"))

	_, err = d.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Error running experiment: 'label'", d.RunError())
	assert.Nil(t, d.Result())
	assert.False(t, d.InFlight())
}
