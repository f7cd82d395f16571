// Package render turns experiment results into presentations and draws
// them on a terminal.
package render

import (
	"strconv"

	"github.com/iksnae/nlp-playground/internal"
)

// Kind selects how a presentation is drawn
type Kind string

const (
	KindMetrics     Kind = "metrics"
	KindChart       Kind = "chart"
	KindSummaries   Kind = "summaries"
	KindAnswers     Kind = "answers"
	KindEmpty       Kind = "empty"
	KindUnsupported Kind = "unsupported"
)

// Palette colors sentiment bars by position, not by label.
var Palette = []string{"#4ade80", "#f87171", "#94a3b8"}

// EmptyTextOutput is shown for a text_output result with no payload.
const EmptyTextOutput = "The service returned no text output."

// Bar is one category of the sentiment chart
type Bar struct {
	Label string
	Value float64
	Color string
}

// Answer is one displayed QA triple
type Answer struct {
	Question string
	Answer   string
	Score    string
}

// Presentation is the drawable form of one experiment result
type Presentation struct {
	Kind      Kind
	Title     string
	Metrics   string
	Bars      []Bar
	Summaries []string
	Answers   []Answer
	Message   string
}

// Render selects the presentation for result by its variant.
func Render(result internal.ExperimentResult) Presentation {
	switch r := result.(type) {
	case internal.ClassificationMetrics:
		return Presentation{Kind: KindMetrics, Title: "Model Evaluation", Metrics: r.MetricsJSON()}

	case internal.SentimentAnalysis:
		p := Presentation{Kind: KindChart, Title: "Sentiment Distribution"}
		for i, c := range r.Counts {
			p.Bars = append(p.Bars, Bar{Label: c.Label, Value: c.Count, Color: Palette[i%len(Palette)]})
		}
		return p

	case internal.TextOutput:
		return renderText(r)

	case internal.UnknownResult:
		return unsupported(r.Kind)

	case nil:
		return Presentation{Kind: KindEmpty, Title: "Results", Message: "No results yet."}
	}
	return unsupported(string(result.Type()))
}

func renderText(r internal.TextOutput) Presentation {
	if r.HasSummaries {
		if r.HasQA {
			internal.LogWarn("text output carries both summaries and answers; showing summaries")
		}
		p := Presentation{Kind: KindSummaries, Title: "Generated Summaries"}
		for _, s := range r.Summaries {
			p.Summaries = append(p.Summaries, s.SummaryText)
		}
		return p
	}
	if r.HasQA {
		p := Presentation{Kind: KindAnswers, Title: "Question Answering"}
		for _, qa := range r.QA {
			p.Answers = append(p.Answers, Answer{
				Question: qa.Question,
				Answer:   qa.Answer,
				Score:    FormatScore(qa.Score),
			})
		}
		return p
	}
	return Presentation{Kind: KindEmpty, Title: "Text Output", Message: EmptyTextOutput}
}

func unsupported(kind string) Presentation {
	return Presentation{
		Kind:    KindUnsupported,
		Title:   "Unsupported Result",
		Message: "Unsupported result type: " + strconv.Quote(kind),
	}
}

// FormatScore renders a confidence score with four decimals.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 4, 64)
}
