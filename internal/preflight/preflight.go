// Package preflight rejects files locally before they are sent for upload.
package preflight

import (
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ledongthuc/pdf"
)

var (
	// ErrEmptyFile is returned for zero-length uploads
	ErrEmptyFile = errors.New("file is empty")

	// ErrWrongType is returned when the extension or magic bytes do not match
	ErrWrongType = errors.New("unsupported file type")
)

// CheckDataset verifies that data looks like a CSV file with a header row
// and returns the header.
func CheckDataset(name string, data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(ErrEmptyFile, name)
	}
	if ext := strings.ToLower(filepath.Ext(name)); ext != ".csv" {
		return nil, errors.WithHint(errors.Wrapf(ErrWrongType, "%s", name), "datasets must be .csv files")
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err == io.EOF {
		return nil, errors.Wrap(ErrEmptyFile, name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read csv header of %s", name)
	}

	seen := false
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if header[i] != "" {
			seen = true
		}
	}
	if !seen {
		return nil, errors.Newf("%s: header row has no column names", name)
	}
	return header, nil
}

// CheckDocument verifies that data is a readable PDF and returns its page count.
func CheckDocument(name string, data []byte) (int, error) {
	if len(data) == 0 {
		return 0, errors.Wrap(ErrEmptyFile, name)
	}
	if ext := strings.ToLower(filepath.Ext(name)); ext != ".pdf" {
		return 0, errors.WithHint(errors.Wrapf(ErrWrongType, "%s", name), "documents must be .pdf files")
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return 0, errors.Wrapf(ErrWrongType, "%s is not a PDF", name)
	}

	pages, err := countPages(data)
	if err != nil {
		return 0, errors.Wrapf(err, "open %s", name)
	}
	if pages == 0 {
		return 0, errors.Newf("%s has no pages", name)
	}
	return pages, nil
}

// countPages recovers from panics raised by the PDF reader on malformed input.
func countPages(data []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("malformed PDF: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	return r.NumPage(), nil
}

// Page is the extracted text of one PDF page, numbered from 1.
type Page struct {
	Number int
	Text   string
}

// ExtractPages returns the plain text of every page. Pages whose text cannot
// be decoded come back empty.
func ExtractPages(data []byte) (pages []Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("malformed PDF: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(err, "open pdf")
	}
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			text = ""
		}
		pages = append(pages, Page{Number: i, Text: strings.TrimSpace(text)})
	}
	return pages, nil
}

// Chunk splits text into windows of size runes overlapping by overlap runes.
func Chunk(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	runes := []rune(strings.TrimSpace(text))
	var chunks []string
	for start := 0; start < len(runes); start += size - overlap {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		if c := strings.TrimSpace(string(runes[start:end])); c != "" {
			chunks = append(chunks, c)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}
