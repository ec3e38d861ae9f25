package dispatch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/jimmc414/onefilellm/internal/extract"
	"github.com/jimmc414/onefilellm/internal/model"
	"github.com/jimmc414/onefilellm/internal/report"
)

// webFile downloads one text file and wraps it in a web_file block. A
// failed download becomes a marker inside the file element.
func (d *Dispatcher) webFile(ctx context.Context, fileURL string) (Result, error) {
	d.logger.Info("direct file URL", "url", fileURL)
	content, marker := d.fetchTextFile(ctx, fileURL)
	b := report.NewSource(model.KindWebFile, report.URL(fileURL))
	b.Open("file", report.Path(remoteFileName(fileURL)))
	if marker != "" {
		b.Line(marker)
	} else {
		b.Text(content)
	}
	b.CloseTag("file")
	return Result{Content: b.String()}, nil
}

// webExcel downloads a workbook and renders each sheet as a Markdown
// table in its own single-line file element.
func (d *Dispatcher) webExcel(ctx context.Context, fileURL string) (Result, error) {
	d.logger.Info("spreadsheet URL", "url", fileURL)
	b := report.NewSource(model.KindWebExcel, report.URL(fileURL))
	name := remoteFileName(fileURL)
	stem := strings.TrimSuffix(name, path.Ext(name))
	sheets, err := d.fetchWorkbook(ctx, fileURL)
	if err != nil {
		b.Line("<e>Failed Excel URL: " + report.Escape(err.Error()) + "</e>")
	} else {
		appendSheetLines(b, stem, sheets)
	}
	return Result{Content: b.String()}, nil
}

// fetchTextFile downloads a file and decodes it as text. On failure the
// second return is a pre-formed error marker ready for raw insertion.
func (d *Dispatcher) fetchTextFile(ctx context.Context, fileURL string) (content, marker string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", "<e>Unexpected error: " + report.Escape(err.Error()) + "</e>"
	}
	d.applyHeaders(req)
	resp, err := d.client.Do(req)
	if err != nil {
		return "", "<e>Failed to download file: " + report.Escape(err.Error()) + "</e>"
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return "", "<e>Failed to download file: " + report.Escape(fmt.Sprintf("HTTP %d fetching %s", resp.StatusCode, fileURL)) + "</e>"
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBody))
	if err != nil {
		return "", "<e>Failed to download file: " + report.Escape(err.Error()) + "</e>"
	}
	return extract.DecodeText(data), ""
}

// fetchWorkbook downloads and converts a spreadsheet.
func (d *Dispatcher) fetchWorkbook(ctx context.Context, fileURL string) ([]extract.Sheet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}
	d.applyHeaders(req)
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, fileURL)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBody))
	if err != nil {
		return nil, err
	}
	return extract.Workbook(data)
}

// applyHeaders sets the user agent and the shared auth header bag.
func (d *Dispatcher) applyHeaders(req *http.Request) {
	req.Header.Set("User-Agent", d.userAgent)
	for k, v := range d.cfg.Headers {
		req.Header.Set(k, v)
	}
}

// appendSheetLines emits one single-line file element per sheet, named
// after the workbook stem with the sheet name appended.
func appendSheetLines(b *report.Builder, stem string, sheets []extract.Sheet) {
	for _, sheet := range sheets {
		b.Line(`<file path="` + report.Escape(stem+"_"+sheet.Name+".md") + `">` + report.Escape(sheet.Markdown) + `</file>`)
	}
}

// remoteFileName is the base name of the URL path.
func remoteFileName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return path.Base(rawURL)
	}
	return path.Base(u.Path)
}
