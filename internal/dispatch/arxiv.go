package dispatch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jimmc414/onefilellm/internal/extract"
	"github.com/jimmc414/onefilellm/internal/model"
	"github.com/jimmc414/onefilellm/internal/report"
)

// arxivPaper fetches the PDF behind an arXiv abstract URL and renders
// its text. The PDF location is derived from the abstract URL directly:
// /abs/ becomes /pdf/ with a .pdf suffix.
func (d *Dispatcher) arxivPaper(ctx context.Context, absURL string) (Result, error) {
	pdfURL := strings.Replace(absURL, "/abs/", "/pdf/", 1) + ".pdf"
	d.logger.Info("fetching arXiv PDF", "url", pdfURL)

	data, err := d.fetchPDFBytes(ctx, pdfURL)
	if err != nil {
		return Result{Content: report.ErrorBlock(model.KindArxiv, report.URL(absURL), "Failed to download PDF: "+err.Error())}, nil
	}
	result, err := extract.PDF(data)
	if err != nil {
		return Result{Content: report.ErrorBlock(model.KindArxiv, report.URL(absURL), "Failed to process PDF: "+err.Error())}, nil
	}

	b := report.NewSource(model.KindArxiv, report.URL(absURL))
	b.Line(result.Render())
	return Result{Content: b.String()}, nil
}

// fetchPDFBytes downloads a PDF without the shared header bag; the
// academic endpoints are public and get a plain request.
func (d *Dispatcher) fetchPDFBytes(ctx context.Context, pdfURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", d.userAgent)
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, pdfURL)
	}
	return io.ReadAll(io.LimitReader(resp.Body, d.maxBody))
}
