package extract

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/jimmc414/onefilellm/internal/report"
)

// PDFSegment is the extraction outcome for a single page. Either Text
// holds the raw page text or Err records why the page yielded none.
type PDFSegment struct {
	// Page is the 1-based page number.
	Page int

	// Text is the raw extracted page text. Empty when Err is set.
	Text string

	// Err is the per-page extraction failure, if any.
	Err error
}

// PDFResult holds the outcome of extracting text from one PDF document.
// Segments preserve page order; pages that were blank produce no segment.
type PDFResult struct {
	// HadPages reports whether the document contained any pages at all.
	HadPages bool

	// Segments holds per-page text and failures in page order.
	Segments []PDFSegment
}

// Failed reports whether extraction produced no usable text. Callers use
// this to retry alternate download mirrors before giving up.
func (r *PDFResult) Failed() bool {
	if r == nil || !r.HadPages {
		return true
	}
	for _, seg := range r.Segments {
		if seg.Err == nil {
			return false
		}
	}
	return true
}

// Render returns the output-ready payload for the document. Page text is
// escaped exactly once; per-page failure markers pass through raw so the
// output layer must not escape the result again.
func (r *PDFResult) Render() string {
	if r == nil || !r.HadPages {
		return "<e>PDF file has no pages or could not be read (possibly encrypted).</e>"
	}
	if len(r.Segments) == 0 {
		return "<e>No text could be extracted from PDF.</e>"
	}
	parts := make([]string, 0, len(r.Segments))
	for _, seg := range r.Segments {
		if seg.Err != nil {
			parts = append(parts, "\n<e>Error extracting text from page "+strconv.Itoa(seg.Page)+": "+report.Escape(seg.Err.Error())+"</e>\n")
			continue
		}
		parts = append(parts, report.Escape(seg.Text))
	}
	return strings.Join(parts, " ")
}

// PDF extracts text from an in-memory PDF document. A page that fails to
// parse is recorded as a segment error; only a document that cannot be
// opened at all returns a non-nil error.
func PDF(data []byte) (result *PDFResult, err error) {
	// The pdf library panics on some malformed cross-reference tables.
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = fmt.Errorf("malformed PDF: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	total := reader.NumPage()
	result = &PDFResult{HadPages: total > 0}
	for num := 1; num <= total; num++ {
		text, pageErr := extractPageText(reader, num)
		if pageErr != nil {
			result.Segments = append(result.Segments, PDFSegment{Page: num, Err: pageErr})
			continue
		}
		if text != "" {
			result.Segments = append(result.Segments, PDFSegment{Page: num, Text: text})
		}
	}
	return result, nil
}

// extractPageText pulls the plain text of one page, converting library
// panics into errors so a bad page cannot abort the whole document.
func extractPageText(reader *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("page parse failure: %v", rec)
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
