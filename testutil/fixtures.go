package testutil

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"
)

// CSVFixture renders a header and rows as CSV bytes
func CSVFixture(t *testing.T, header []string, rows ...[]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		t.Fatalf("Failed to write CSV header: %v", err)
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("Failed to write CSV rows: %v", err)
	}
	return buf.Bytes()
}

// ReviewsCSV is a small labelled text dataset
func ReviewsCSV(t *testing.T) []byte {
	t.Helper()
	return CSVFixture(t, []string{"text", "label"},
		[]string{"I love this phone, the camera is great", "pos"},
		[]string{"Terrible battery and awful support", "neg"},
		[]string{"Best purchase this year", "pos"},
		[]string{"", "neg"},
		[]string{"It arrived on Tuesday", "pos"},
	)
}

// MinimalPDF builds a valid PDF with one page per text, drawn in Helvetica.
// Offsets in the cross-reference table are computed, so the file opens in
// strict readers.
func MinimalPDF(pages ...string) []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	for i, text := range pages {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		stream := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", escapePDFString(text))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func escapePDFString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
