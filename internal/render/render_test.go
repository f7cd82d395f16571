package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/nlp-playground/internal"
)

func parse(t *testing.T, body string) internal.ExperimentResult {
	t.Helper()
	res, err := internal.ParseResult([]byte(body))
	require.NoError(t, err)
	return res
}

func TestRender_Metrics(t *testing.T) {
	p := Render(parse(t, `{"type":"classification_metrics","metrics":{"accuracy":0.91}}`))
	assert.Equal(t, KindMetrics, p.Kind)
	assert.Equal(t, "Model Evaluation", p.Title)
	assert.Contains(t, p.Metrics, `"accuracy": 0.91`)
}

func TestRender_SentimentColorsByPosition(t *testing.T) {
	p := Render(parse(t, `{"type":"sentiment_analysis","results":{"NEGATIVE":7,"POSITIVE":4,"NEUTRAL":2,"MIXED":1}}`))
	assert.Equal(t, KindChart, p.Kind)
	want := []Bar{
		{Label: "NEGATIVE", Value: 7, Color: "#4ade80"},
		{Label: "POSITIVE", Value: 4, Color: "#f87171"},
		{Label: "NEUTRAL", Value: 2, Color: "#94a3b8"},
		{Label: "MIXED", Value: 1, Color: "#4ade80"},
	}
	if diff := cmp.Diff(want, p.Bars); diff != "" {
		t.Errorf("Bars mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_TextOutput(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Presentation
	}{
		{
			name: "summaries",
			body: `{"type":"text_output","summaries":[{"summary_text":"First."},{"summary_text":"Second."}]}`,
			want: Presentation{Kind: KindSummaries, Title: "Generated Summaries", Summaries: []string{"First.", "Second."}},
		},
		{
			name: "answers with four decimal score",
			body: `{"type":"text_output","qa_results":[{"question":"Who wrote it?","answer":"Ada","score":0.123456}]}`,
			want: Presentation{Kind: KindAnswers, Title: "Question Answering", Answers: []Answer{{Question: "Who wrote it?", Answer: "Ada", Score: "0.1235"}}},
		},
		{
			name: "summaries win over answers",
			body: `{"type":"text_output","summaries":[{"summary_text":"S"}],"qa_results":[{"question":"q","answer":"a","score":1}]}`,
			want: Presentation{Kind: KindSummaries, Title: "Generated Summaries", Summaries: []string{"S"}},
		},
		{
			name: "no payload",
			body: `{"type":"text_output"}`,
			want: Presentation{Kind: KindEmpty, Title: "Text Output", Message: EmptyTextOutput},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Render(parse(t, tt.body))); diff != "" {
				t.Errorf("Render() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRender_UnknownAndNil(t *testing.T) {
	p := Render(parse(t, `{"type":"token_classification"}`))
	assert.Equal(t, KindUnsupported, p.Kind)
	assert.Equal(t, `Unsupported result type: "token_classification"`, p.Message)

	assert.Equal(t, KindEmpty, Render(nil).Kind)
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "0.1235", FormatScore(0.12345))
	assert.Equal(t, "1.0000", FormatScore(1))
	assert.Equal(t, "0.0000", FormatScore(0))
}

func TestDraw(t *testing.T) {
	t.Run("summaries are numbered from one", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Draw(&buf, Presentation{Kind: KindSummaries, Title: "Generated Summaries", Summaries: []string{"a", "b"}}))
		out := buf.String()
		assert.Contains(t, out, "Summary 1:")
		assert.Contains(t, out, "Summary 2:")
		assert.NotContains(t, out, "Summary 0:")
	})

	t.Run("answers show score", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Draw(&buf, Presentation{Kind: KindAnswers, Answers: []Answer{{Question: "q", Answer: "a", Score: "0.5000"}}}))
		assert.Contains(t, buf.String(), "(score 0.5000)")
	})

	t.Run("bars keep service order", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Draw(&buf, Presentation{Kind: KindChart, Bars: []Bar{
			{Label: "NEGATIVE", Value: 2, Color: Palette[0]},
			{Label: "POSITIVE", Value: 4, Color: Palette[1]},
		}}))
		out := buf.String()
		assert.Less(t, strings.Index(out, "NEGATIVE"), strings.Index(out, "POSITIVE"))
		assert.Contains(t, out, strings.Repeat("█", BarWidth))
	})

	t.Run("notice", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Draw(&buf, Render(nil)))
		assert.Contains(t, buf.String(), "No results yet.")
	})
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, parse(t, `{"type":"sentiment_analysis","results":{"POSITIVE":1}}`)))
	assert.Contains(t, buf.String(), "\n  \"results\"")
	assert.Error(t, JSON(&buf, nil))
}
