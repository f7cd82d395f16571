package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"

	"github.com/iksnae/nlp-playground/internal"
)

// BarWidth is the length of the largest bar in the sentiment chart
const BarWidth = 40

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginBottom(1)

	metricsStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Width(12)

	indexStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	questionStyle = lipgloss.NewStyle().Bold(true)

	scoreStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

// Draw writes the presentation as styled terminal text.
func Draw(w io.Writer, p Presentation) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render(p.Title))
	b.WriteString("\n")

	switch p.Kind {
	case KindMetrics:
		b.WriteString(metricsStyle.Render(p.Metrics))
		b.WriteString("\n")
	case KindChart:
		drawBars(&b, p.Bars)
	case KindSummaries:
		for i, s := range p.Summaries {
			fmt.Fprintf(&b, "%s %s\n", indexStyle.Render(fmt.Sprintf("Summary %d:", i+1)), s)
		}
	case KindAnswers:
		for _, a := range p.Answers {
			fmt.Fprintf(&b, "%s %s\n", questionStyle.Render("Q:"), a.Question)
			fmt.Fprintf(&b, "%s %s %s\n", questionStyle.Render("A:"), a.Answer, scoreStyle.Render("(score "+a.Score+")"))
		}
	default:
		b.WriteString(noticeStyle.Render(p.Message))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func drawBars(b *strings.Builder, bars []Bar) {
	top := 0.0
	for _, bar := range bars {
		top = math.Max(top, bar.Value)
	}
	for _, bar := range bars {
		n := 0
		if top > 0 && bar.Value > 0 {
			n = int(math.Round(bar.Value / top * BarWidth))
		}
		fill := lipgloss.NewStyle().Foreground(lipgloss.Color(bar.Color)).Render(strings.Repeat("█", n))
		fmt.Fprintf(b, "%s %s %s\n", labelStyle.Render(bar.Label), fill, formatCount(bar.Value))
	}
}

func formatCount(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%g", v)
}

// JSON writes the raw result payload indented.
func JSON(w io.Writer, result internal.ExperimentResult) error {
	if result == nil {
		return errors.New("no result to write")
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, result.Raw(), "", "  "); err != nil {
		return errors.Wrap(err, "indent result")
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}
