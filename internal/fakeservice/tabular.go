package fakeservice

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"

	"github.com/iksnae/nlp-playground/internal"
)

// dataset is a parsed CSV file
type dataset struct {
	header []string
	rows   [][]string
}

func parseDataset(data []byte) (*dataset, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no header row")
	}
	ds := &dataset{header: records[0]}
	for i, h := range ds.header {
		ds.header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	for _, rec := range records[1:] {
		row := make([]string, len(ds.header))
		copy(row, rec)
		ds.rows = append(ds.rows, row)
	}
	return ds, nil
}

func (d *dataset) index(column string) int {
	for i, h := range d.header {
		if h == column {
			return i
		}
	}
	return -1
}

// column returns the non-empty values of one column, row order kept.
func (d *dataset) column(i int) []string {
	var out []string
	for _, row := range d.rows {
		if v := strings.TrimSpace(row[i]); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (d *dataset) metadata() internal.DatasetMetadata {
	md := internal.DatasetMetadata{
		Rows:               len(d.rows),
		Columns:            len(d.header),
		ColumnNames:        append([]string(nil), d.header...),
		MissingValues:      make(map[string]int, len(d.header)),
		Dtypes:             make(map[string]string, len(d.header)),
		NumericalColumns:   []string{},
		CategoricalColumns: []string{},
	}
	for i, name := range d.header {
		missing, ints, floats, present := 0, true, true, 0
		for _, row := range d.rows {
			v := strings.TrimSpace(row[i])
			if v == "" {
				missing++
				continue
			}
			present++
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				ints = false
			}
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				floats = false
			}
		}
		md.MissingValues[name] = missing
		switch {
		case present > 0 && ints:
			md.Dtypes[name] = "int64"
			md.NumericalColumns = append(md.NumericalColumns, name)
		case present > 0 && floats:
			md.Dtypes[name] = "float64"
			md.NumericalColumns = append(md.NumericalColumns, name)
		default:
			md.Dtypes[name] = "object"
			md.CategoricalColumns = append(md.CategoricalColumns, name)
		}
	}
	return md
}

func (s *Server) dataset(name string) (*dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.datasets[name]
	return ds, ok
}

func (s *Server) uploadDataset(c *gin.Context) {
	name, data, ok := readUpload(c)
	if !ok {
		return
	}
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		fail(c, http.StatusBadRequest, "Unsupported file format")
		return
	}
	ds, err := parseDataset(data)
	if err != nil {
		fail(c, http.StatusBadRequest, "Could not parse CSV: "+err.Error())
		return
	}
	s.mu.Lock()
	s.datasets[name] = ds
	s.mu.Unlock()
	s.logger.Infow("dataset stored", "file", name, "rows", len(ds.rows), "columns", len(ds.header))
	c.JSON(http.StatusOK, internal.DatasetUploadResponse{Filename: name, Metadata: ds.metadata()})
}

func (s *Server) train(c *gin.Context) {
	var req internal.TrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusUnprocessableEntity, "Invalid request body: "+err.Error())
		return
	}
	ds, ok := s.dataset(req.Filename)
	if !ok {
		fail(c, http.StatusNotFound, "Dataset not found: "+req.Filename)
		return
	}
	in := ds.index(req.InputColumn)
	if in < 0 {
		fail(c, http.StatusInternalServerError, fmt.Sprintf("'%s'", req.InputColumn))
		return
	}

	switch req.TaskType {
	case internal.TaskClassification:
		target := ds.index(req.TargetColumn)
		if target < 0 {
			fail(c, http.StatusInternalServerError, fmt.Sprintf("'%s'", req.TargetColumn))
			return
		}
		metrics, err := majorityBaseline(ds, in, target)
		if err != nil {
			fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		writeOrdered(c, object{{"metrics", metrics}, {"type", internal.ResultClassificationMetrics}})

	case internal.TaskSentiment:
		writeOrdered(c, object{{"results", sentimentCounts(ds.column(in))}, {"type", internal.ResultSentimentAnalysis}})

	case internal.TaskSummarization:
		var summaries []internal.Summary
		for _, text := range head(ds.column(in), 5) {
			summaries = append(summaries, internal.Summary{SummaryText: firstSentence(text)})
		}
		c.JSON(http.StatusOK, gin.H{"summaries": summaries, "type": internal.ResultTextOutput})

	case internal.TaskQA:
		ctxCol := ds.index(req.ContextColumn)
		if ctxCol < 0 {
			fail(c, http.StatusInternalServerError, fmt.Sprintf("'%s'", req.ContextColumn))
			return
		}
		var results []internal.QAResult
		for _, row := range ds.rows {
			if len(results) == 5 {
				break
			}
			q := strings.TrimSpace(row[in])
			if q == "" {
				continue
			}
			answer, score := bestSentence(q, row[ctxCol])
			results = append(results, internal.QAResult{Question: q, Answer: answer, Score: score})
		}
		c.JSON(http.StatusOK, gin.H{"qa_results": results, "type": internal.ResultTextOutput})

	default:
		fail(c, http.StatusInternalServerError, "Unknown Task")
	}
}

// majorityBaseline scores a classifier that always predicts the most
// frequent label, laid out like a classification report.
func majorityBaseline(ds *dataset, in, target int) (object, error) {
	var labels []string
	counts := map[string]int{}
	total := 0
	for _, row := range ds.rows {
		if strings.TrimSpace(row[in]) == "" {
			continue
		}
		label := strings.TrimSpace(row[target])
		if _, seen := counts[label]; !seen {
			labels = append(labels, label)
		}
		counts[label]++
		total++
	}
	if total == 0 {
		return nil, fmt.Errorf("no rows with a value in the input column")
	}
	majority := labels[0]
	for _, l := range labels {
		if counts[l] > counts[majority] {
			majority = l
		}
	}
	sort.Strings(labels)

	accuracy := float64(counts[majority]) / float64(total)
	report := object{}
	var macroP, macroR, macroF, weightedP, weightedR, weightedF float64
	for _, l := range labels {
		var p, r, f float64
		if l == majority {
			p, r = accuracy, 1
			f = 2 * p * r / (p + r)
		}
		support := float64(counts[l])
		macroP, macroR, macroF = macroP+p, macroR+r, macroF+f
		weightedP, weightedR, weightedF = weightedP+p*support, weightedR+r*support, weightedF+f*support
		report = append(report, field{l, scores(p, r, f, support)})
	}
	n, t := float64(len(labels)), float64(total)
	report = append(report,
		field{"accuracy", accuracy},
		field{"macro avg", scores(macroP/n, macroR/n, macroF/n, t)},
		field{"weighted avg", scores(weightedP/t, weightedR/t, weightedF/t, t)},
	)
	return report, nil
}

func scores(p, r, f, support float64) object {
	return object{{"precision", p}, {"recall", r}, {"f1-score", f}, {"support", support}}
}

var (
	positiveWords = wordSet("good great excellent love loved amazing happy best wonderful nice fantastic awesome perfect enjoy enjoyed like")
	negativeWords = wordSet("bad terrible awful hate hated worst poor sad horrible boring disappointing broken angry useless waste")
	stopWords     = wordSet("a an and are as at be but by for from has have he her his i in is it its of on or our she so that the their them they this to was we were what when which who will with you your")
)

func wordSet(words string) map[string]bool {
	set := map[string]bool{}
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}

// sentimentCounts labels every text by lexicon polarity and counts labels,
// most frequent first.
func sentimentCounts(texts []string) object {
	counts := map[string]int{}
	var order []string
	for _, text := range texts {
		score := 0
		for _, w := range tokenize(text) {
			switch {
			case positiveWords[w]:
				score++
			case negativeWords[w]:
				score--
			}
		}
		label := "neutral"
		if score > 0 {
			label = "positive"
		} else if score < 0 {
			label = "negative"
		}
		if counts[label] == 0 {
			order = append(order, label)
		}
		counts[label]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	out := object{}
	for _, label := range order {
		out = append(out, field{label, counts[label]})
	}
	return out
}

func (s *Server) consult(c *gin.Context) {
	var req internal.ConsultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusUnprocessableEntity, "Invalid request body: "+err.Error())
		return
	}
	ds, ok := s.dataset(req.Filename)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"response": "**SYSTEM ERROR:** Dataset not found: " + req.Filename})
		return
	}
	md := ds.metadata()
	query := strings.ToLower(req.UserQuery)

	var b strings.Builder
	fmt.Fprintf(&b, "%s has %d rows and %d columns.", req.Filename, md.Rows, md.Columns)
	if strings.Contains(query, "missing") || strings.Contains(query, "null") {
		var parts []string
		for _, name := range md.ColumnNames {
			if n := md.MissingValues[name]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s (%d)", name, n))
			}
		}
		if len(parts) == 0 {
			b.WriteString(" No column has missing values.")
		} else {
			b.WriteString(" Missing values: " + strings.Join(parts, ", ") + ". Drop or impute those rows before training.")
		}
	} else if len(md.CategoricalColumns) > 0 {
		fmt.Fprintf(&b, " Text columns: %s. A TF-IDF plus logistic regression baseline is a good start.",
			strings.Join(md.CategoricalColumns, ", "))
	}
	c.JSON(http.StatusOK, gin.H{"response": b.String(), "metadata_context": md})
}

func (s *Server) preprocess(c *gin.Context) {
	var req internal.PreprocessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusUnprocessableEntity, "Invalid request body: "+err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.datasets[req.Filename]
	if !ok {
		fail(c, http.StatusNotFound, "Dataset not found: "+req.Filename)
		return
	}
	col := ds.index(req.TextColumn)
	if col < 0 {
		fail(c, http.StatusBadRequest, fmt.Sprintf("'%s'", req.TextColumn))
		return
	}

	out := ds.index("processed_text")
	if out < 0 {
		ds.header = append(ds.header, "processed_text")
		out = len(ds.header) - 1
		for i := range ds.rows {
			ds.rows[i] = append(ds.rows[i], "")
		}
	}
	preview := []map[string]any{}
	for i, row := range ds.rows {
		row[out] = cleanText(row[col], req.Options)
		if i < 5 {
			preview = append(preview, map[string]any{"processed_text": row[out]})
		}
	}
	c.JSON(http.StatusOK, internal.PreprocessResponse{Message: "Preprocessing complete", Preview: preview})
}

func cleanText(text string, opts map[string]bool) string {
	if opts[internal.OptionLowercase] {
		text = strings.ToLower(text)
	}
	if opts[internal.OptionRemovePunctuation] {
		text = strings.Map(func(r rune) rune {
			if unicode.IsPunct(r) || unicode.IsSymbol(r) {
				return -1
			}
			return r
		}, text)
	}
	words := strings.Fields(text)
	if opts[internal.OptionRemoveStopwords] {
		kept := words[:0]
		for _, w := range words {
			if !stopWords[strings.ToLower(w)] {
				kept = append(kept, w)
			}
		}
		words = kept
	}
	if opts[internal.OptionLemmatization] || opts[internal.OptionStemming] {
		for i, w := range words {
			words[i] = stem(w)
		}
	}
	return strings.Join(words, " ")
}

func stem(w string) string {
	for _, suffix := range []string{"ing", "ed", "es", "s"} {
		if len(w) > len(suffix)+2 && strings.HasSuffix(w, suffix) {
			return strings.TrimSuffix(w, suffix)
		}
	}
	return w
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func head(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}

func sentences(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

func firstSentence(text string) string {
	ss := sentences(text)
	if len(ss) == 0 {
		return ""
	}
	return ss[0]
}

// bestSentence picks the context sentence sharing the most words with the
// question. The score is the fraction of question words it covers.
func bestSentence(question, context string) (string, float64) {
	qWords := map[string]bool{}
	for _, w := range tokenize(question) {
		if !stopWords[w] {
			qWords[w] = true
		}
	}
	best, bestHits := "", -1
	for _, s := range sentences(context) {
		hits := 0
		for _, w := range tokenize(s) {
			if qWords[w] {
				hits++
				qWords[w] = false
			}
		}
		for w := range qWords {
			qWords[w] = true
		}
		if hits > bestHits {
			best, bestHits = s, hits
		}
	}
	if len(qWords) == 0 || bestHits <= 0 {
		return best, 0
	}
	return best, float64(bestHits) / float64(len(qWords))
}

// field and object marshal a JSON object with keys in insertion order.
type field struct {
	Key   string
	Value any
}

type object []field

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeOrdered(c *gin.Context, body object) {
	data, err := json.Marshal(body)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}
