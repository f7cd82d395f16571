package fakeservice

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/iksnae/nlp-playground/internal"
	"github.com/iksnae/nlp-playground/internal/preflight"
)

const (
	topK         = 4
	snippetRunes = 200
)

// chunk is one indexed window of page text
type chunk struct {
	page  int
	index int
	text  string
	words map[string]bool
}

func (s *Server) uploadDocument(c *gin.Context) {
	name, data, ok := readUpload(c)
	if !ok {
		return
	}
	pages, err := preflight.ExtractPages(data)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	var chunks []chunk
	indexed := 0
	for _, p := range pages {
		if p.Text == "" {
			continue
		}
		indexed++
		for i, text := range preflight.Chunk(p.Text, s.cfg.ChunkSize, s.cfg.ChunkOverlap) {
			chunks = append(chunks, chunk{page: p.Number, index: i + 1, text: text, words: contentWords(text)})
		}
	}
	if len(chunks) == 0 {
		fail(c, http.StatusInternalServerError, "No readable text found in the document.")
		return
	}

	s.mu.Lock()
	s.docs[name] = chunks
	s.mu.Unlock()
	s.logger.Infow("document indexed", "file", name, "pages", indexed, "chunks", len(chunks))
	c.JSON(http.StatusOK, internal.DocumentUploadResponse{
		Filename:      name,
		PagesIndexed:  indexed,
		ChunksIndexed: len(chunks),
	})
}

func (s *Server) queryDocument(c *gin.Context) {
	var req internal.DocumentQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusUnprocessableEntity, "Invalid request body: "+err.Error())
		return
	}
	s.mu.RLock()
	chunks, ok := s.docs[req.Filename]
	s.mu.RUnlock()
	if !ok {
		fail(c, http.StatusInternalServerError, "Document not indexed yet. Upload the document first.")
		return
	}

	hits := search(chunks, req.Question, topK)
	if len(hits) == 0 {
		c.JSON(http.StatusOK, internal.DocumentQueryResponse{
			Answer:  "No relevant context found in the document.",
			Sources: []internal.Citation{},
		})
		return
	}

	sources := make([]internal.Citation, 0, len(hits))
	for _, h := range hits {
		sources = append(sources, internal.Citation{Page: h.page, Chunk: h.index, Snippet: truncate(h.text, snippetRunes)})
	}
	best := hits[0]
	answer := fmt.Sprintf("%s [Page %d, Chunk %d]", firstSentence(best.text), best.page, best.index)
	c.JSON(http.StatusOK, internal.DocumentQueryResponse{Answer: answer, Sources: sources})
}

// search ranks chunks by how many question words they contain.
func search(chunks []chunk, question string, k int) []chunk {
	q := contentWords(question)
	type scored struct {
		chunk
		score int
	}
	var ranked []scored
	for _, ch := range chunks {
		n := 0
		for w := range q {
			if ch.words[w] {
				n++
			}
		}
		if n > 0 {
			ranked = append(ranked, scored{ch, n})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	out := make([]chunk, len(ranked))
	for i, r := range ranked {
		out[i] = r.chunk
	}
	return out
}

func contentWords(text string) map[string]bool {
	words := map[string]bool{}
	for _, w := range tokenize(text) {
		if !stopWords[w] {
			words[w] = true
		}
	}
	return words
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
