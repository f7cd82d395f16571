package internal

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// ResultType is the discriminator of an experiment result
type ResultType string

const (
	ResultClassificationMetrics ResultType = "classification_metrics"
	ResultSentimentAnalysis     ResultType = "sentiment_analysis"
	ResultTextOutput            ResultType = "text_output"
)

// ExperimentResult is a closed tagged union: the variants below are the only
// implementations. Results are immutable once parsed.
type ExperimentResult interface {
	Type() ResultType
	// Raw returns a copy of the response body the result was parsed from
	Raw() json.RawMessage
	isResult()
}

type resultBody struct {
	raw json.RawMessage
}

func (b resultBody) Raw() json.RawMessage {
	return append(json.RawMessage(nil), b.raw...)
}

func (resultBody) isResult() {}

// Metric is one top-level entry of a classification report
type Metric struct {
	Name  string
	Value json.RawMessage
}

// ClassificationMetrics carries the metric mapping verbatim
type ClassificationMetrics struct {
	resultBody
	Metrics []Metric
	metrics json.RawMessage
}

func (ClassificationMetrics) Type() ResultType { return ResultClassificationMetrics }

// MetricsJSON returns the metric mapping indented, keys in service order.
func (r ClassificationMetrics) MetricsJSON() string {
	if !present(r.metrics) {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, r.metrics, "", "  "); err != nil {
		return string(r.metrics)
	}
	return buf.String()
}

// Number returns a top-level numeric metric.
func (r ClassificationMetrics) Number(name string) (float64, bool) {
	for _, m := range r.Metrics {
		if m.Name != name {
			continue
		}
		var f float64
		if err := json.Unmarshal(m.Value, &f); err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// LabelCount is one bar of the sentiment distribution
type LabelCount struct {
	Label string
	Count float64
}

// SentimentAnalysis maps sentiment labels to counts, in service order
type SentimentAnalysis struct {
	resultBody
	Counts []LabelCount
}

func (SentimentAnalysis) Type() ResultType { return ResultSentimentAnalysis }

// Summary is one generated summary
type Summary struct {
	SummaryText string `json:"summary_text"`
}

// QAResult is one extractive answer
type QAResult struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score"`
}

// TextOutput holds either summaries or question answers
type TextOutput struct {
	resultBody
	Summaries    []Summary
	QA           []QAResult
	HasSummaries bool
	HasQA        bool
}

func (TextOutput) Type() ResultType { return ResultTextOutput }

// UnknownResult keeps a payload whose type this client does not know
type UnknownResult struct {
	resultBody
	Kind string
}

func (r UnknownResult) Type() ResultType { return ResultType(r.Kind) }

type resultEnvelope struct {
	Type      string          `json:"type"`
	Metrics   json.RawMessage `json:"metrics"`
	Results   json.RawMessage `json:"results"`
	Summaries json.RawMessage `json:"summaries"`
	QAResults json.RawMessage `json:"qa_results"`
}

// ParseResult decodes a /train response body into its variant.
func ParseResult(body []byte) (ExperimentResult, error) {
	var env resultEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Wrap(err, "decode experiment result")
	}
	if env.Type == "" {
		return nil, errors.New("experiment result has no type")
	}
	base := resultBody{raw: append(json.RawMessage(nil), body...)}

	switch ResultType(env.Type) {
	case ResultClassificationMetrics:
		out := ClassificationMetrics{resultBody: base}
		if present(env.Metrics) {
			fields, err := decodeOrdered(env.Metrics)
			if err != nil {
				return nil, errors.Wrap(err, "decode metrics")
			}
			for _, f := range fields {
				out.Metrics = append(out.Metrics, Metric{Name: f.key, Value: f.value})
			}
			out.metrics = append(json.RawMessage(nil), env.Metrics...)
		}
		return out, nil

	case ResultSentimentAnalysis:
		out := SentimentAnalysis{resultBody: base}
		if present(env.Results) {
			fields, err := decodeOrdered(env.Results)
			if err != nil {
				return nil, errors.Wrap(err, "decode sentiment results")
			}
			for _, f := range fields {
				var n float64
				if err := json.Unmarshal(f.value, &n); err != nil {
					return nil, errors.Wrapf(err, "sentiment count for %q", f.key)
				}
				out.Counts = append(out.Counts, LabelCount{Label: f.key, Count: n})
			}
		}
		return out, nil

	case ResultTextOutput:
		out := TextOutput{resultBody: base}
		if present(env.Summaries) {
			if err := json.Unmarshal(env.Summaries, &out.Summaries); err != nil {
				return nil, errors.Wrap(err, "decode summaries")
			}
			out.HasSummaries = true
		}
		if present(env.QAResults) {
			if err := json.Unmarshal(env.QAResults, &out.QA); err != nil {
				return nil, errors.Wrap(err, "decode qa results")
			}
			out.HasQA = true
		}
		return out, nil
	}

	return UnknownResult{resultBody: base, Kind: env.Type}, nil
}

type orderedField struct {
	key   string
	value json.RawMessage
}

// decodeOrdered reads a JSON object keeping key order, which a Go map loses.
func decodeOrdered(raw json.RawMessage) ([]orderedField, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.Newf("expected object, got %v", tok)
	}
	var out []orderedField
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errors.Newf("unexpected key token %v", keyTok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, errors.Wrapf(err, "value of %q", key)
		}
		out = append(out, orderedField{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
