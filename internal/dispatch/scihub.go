package dispatch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jimmc414/onefilellm/internal/extract"
	"github.com/jimmc414/onefilellm/internal/model"
	"github.com/jimmc414/onefilellm/internal/report"
)

// DefaultSciHubMirrors lists the mirrors tried in order for DOI and
// PMID lookups. Each entry is a base URL the identifier is POSTed to.
var DefaultSciHubMirrors = []string{
	"https://sci-hub.se/",
	"https://sci-hub.st/",
	"https://sci-hub.ru/",
}

const (
	// scihubSearchTimeout bounds the identifier lookup POST per mirror.
	scihubSearchTimeout = 60 * time.Second

	// scihubDownloadTimeout bounds the PDF download. Mirrors serve large
	// files slowly, so this is looser than the shared client timeout.
	scihubDownloadTimeout = 120 * time.Second

	// scihubUserAgent is sent on all mirror requests. Mirrors refuse
	// clients that do not look like a browser.
	scihubUserAgent = "Mozilla/5.0"
)

// sciHub resolves a DOI or PMID through the mirror list and renders the
// paper's text. Mirrors are tried in order until one yields a PDF whose
// text extracts cleanly; a PDF that downloads but extracts no text is
// kept as a fallback while later mirrors are tried.
func (d *Dispatcher) sciHub(ctx context.Context, identifier string) (Result, error) {
	var last *extract.PDFResult
	for _, mirror := range d.scihubMirrors {
		d.logger.Info("trying Sci-Hub mirror", "mirror", mirror, "identifier", identifier)
		result, err := d.sciHubAttempt(ctx, mirror, identifier)
		if err != nil {
			d.logger.Warn("Sci-Hub mirror failed", "mirror", mirror, "error", err)
			continue
		}
		last = result
		if !result.Failed() {
			d.logger.Info("identifier resolved", "identifier", identifier, "mirror", mirror)
			break
		}
		d.logger.Warn("no text extracted from mirror PDF, trying next", "mirror", mirror)
	}

	b := report.NewSource(model.KindSciHub, report.Attr{Key: "identifier", Value: identifier})
	if last != nil {
		b.Line(last.Render())
	} else {
		b.Error("Could not retrieve or process PDF via Sci-Hub after trying multiple domains.")
	}
	return Result{Content: b.String()}, nil
}

// sciHubAttempt runs the full lookup chain against one mirror: POST the
// identifier, locate the PDF link on the result page, download it, and
// extract its text.
func (d *Dispatcher) sciHubAttempt(ctx context.Context, mirror, identifier string) (*extract.PDFResult, error) {
	page, err := d.sciHubSearch(ctx, mirror, identifier)
	if err != nil {
		return nil, err
	}
	pdfURL := findPDFLink(page, mirror)
	if pdfURL == "" {
		return nil, fmt.Errorf("no PDF link found on page from %s", mirror)
	}
	if strings.HasPrefix(pdfURL, "//") {
		pdfURL = "https:" + pdfURL
	}
	d.logger.Info("downloading PDF", "url", pdfURL)
	data, err := d.sciHubDownload(ctx, pdfURL)
	if err != nil {
		return nil, err
	}
	return extract.PDF(data)
}

// sciHubSearch POSTs the identifier to a mirror and returns the parsed
// result page.
func (d *Dispatcher) sciHubSearch(ctx context.Context, mirror, identifier string) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, scihubSearchTimeout)
	defer cancel()

	form := url.Values{"request": {identifier}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, mirror, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	setSciHubHeaders(req)

	resp, err := d.scihubClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, mirror)
	}
	return goquery.NewDocumentFromReader(io.LimitReader(resp.Body, d.maxBody))
}

// sciHubDownload fetches the located PDF, insisting on a PDF content
// type so an interstitial page is not fed to the extractor.
func (d *Dispatcher) sciHubDownload(ctx context.Context, pdfURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, scihubDownloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return nil, err
	}
	setSciHubHeaders(req)

	resp, err := d.scihubClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, pdfURL)
	}
	if !strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "application/pdf") {
		return nil, fmt.Errorf("downloaded content not PDF from %s", pdfURL)
	}
	return io.ReadAll(io.LimitReader(resp.Body, d.maxBody))
}

func setSciHubHeaders(req *http.Request) {
	req.Header.Set("User-Agent", scihubUserAgent)
	req.Header.Set("Accept", "text/html")
}

// findPDFLink locates the PDF URL on a mirror result page: the pdf
// iframe when present, otherwise the first anchor whose href mentions
// .pdf or download=true. The result is resolved against the mirror URL.
func findPDFLink(page *goquery.Document, mirror string) string {
	if src, ok := page.Find("iframe#pdf").Attr("src"); ok && src != "" {
		return resolveAgainst(mirror, src)
	}
	var found string
	page.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if strings.Contains(href, ".pdf") || strings.Contains(href, "download=true") {
			found = resolveAgainst(mirror, href)
			return false
		}
		return true
	})
	return found
}

// resolveAgainst resolves a possibly relative href against a base URL.
func resolveAgainst(base, href string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
