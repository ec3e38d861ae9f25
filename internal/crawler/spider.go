package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jimmc414/onefilellm/internal/extract"
	"github.com/jimmc414/onefilellm/internal/model"
	"github.com/jimmc414/onefilellm/internal/report"
)

const (
	// defaultFetchTimeout bounds each page request when the caller does
	// not supply a client.
	defaultFetchTimeout = 30 * time.Second
	// defaultMaxBodySize caps how much of a response body is read.
	defaultMaxBodySize = 50 * 1024 * 1024
	// defaultUserAgent is sent with every request. Some sites refuse
	// clients without a browser-looking agent string.
	defaultUserAgent = "Mozilla/5.0"
)

// errNonPDF reports a PDF URL whose response was not a PDF.
var errNonPDF = errors.New("non-PDF content reported at PDF URL")

// Config holds the settings for one crawl.
type Config struct {
	// BaseURL is the starting page. Its host and path scope the crawl.
	BaseURL string
	// MaxDepth is how many non-empty path segments below the base path
	// a page may add and still be visited.
	MaxDepth int
	// IncludePDFs extracts text from linked PDFs. When false, PDF pages
	// are recorded with a skip marker instead.
	IncludePDFs bool
	// IgnoreEPUBs drops EPUB URLs from the crawl without a trace.
	IgnoreEPUBs bool
	// MaxPages stops the crawl after this many pages have been
	// processed. Zero means unbounded.
	MaxPages int
}

// Result is the outcome of one crawl.
type Result struct {
	// Content is the complete source block for the crawl.
	Content string
	// ProcessedURLs lists every visited URL in processing order.
	ProcessedURLs []string
	// Records describes each processed page, in the same order.
	Records []model.PageRecord
}

// frontierEntry is one pending page in the crawl frontier.
type frontierEntry struct {
	url   string
	depth int
}

// Spider crawls websites and aggregates their text.
//
// Design decision: per-crawl state (visited set, frontier, output)
// lives inside Crawl, not on the struct, so one Spider can serve any
// number of independent crawls.
type Spider struct {
	client      *http.Client
	userAgent   string
	headers     map[string]string
	maxBodySize int64
	logger      *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithSpiderUserAgent sets the User-Agent header for all requests.
func WithSpiderUserAgent(ua string) SpiderOption {
	return func(s *Spider) {
		s.userAgent = ua
	}
}

// WithSpiderHeaders sets extra headers sent with every request, such as
// authentication for private sites.
func WithSpiderHeaders(headers map[string]string) SpiderOption {
	return func(s *Spider) {
		s.headers = headers
	}
}

// WithSpiderMaxBodySize caps how many bytes are read per response.
func WithSpiderMaxBodySize(size int64) SpiderOption {
	return func(s *Spider) {
		s.maxBodySize = size
	}
}

// WithSpiderLogger sets the logger used for crawl progress.
func WithSpiderLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a Spider. A nil client gets a default with a 30
// second timeout.
func NewSpider(client *http.Client, opts ...SpiderOption) *Spider {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	s := &Spider{
		client:      client,
		userAgent:   defaultUserAgent,
		maxBodySize: defaultMaxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Crawl walks the site breadth-first from cfg.BaseURL and returns the
// aggregated source block. Page-level failures become inline markers;
// only an unusable base URL or context cancellation surface as errors.
// On cancellation the partial result is returned alongside ctx.Err().
func (s *Spider) Crawl(ctx context.Context, cfg Config) (*Result, error) {
	base, err := url.Parse(normalizeURL(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}

	visited := make(map[string]bool)
	queued := make(map[string]bool)
	queue := []frontierEntry{{url: cfg.BaseURL, depth: 0}}
	queued[normalizeURL(cfg.BaseURL)] = true

	result := &Result{}
	b := report.NewSource(model.KindWebCrawl, report.Attr{Key: "base_url", Value: cfg.BaseURL})
	s.logger.Info("crawl started",
		"base_url", cfg.BaseURL,
		"max_depth", cfg.MaxDepth,
		"include_pdfs", cfg.IncludePDFs)

	var ctxErr error
	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
		default:
		}
		if ctxErr != nil {
			s.logger.Warn("crawl cancelled", "pages", len(result.ProcessedURLs))
			break
		}
		if cfg.MaxPages > 0 && len(result.ProcessedURLs) >= cfg.MaxPages {
			s.logger.Warn("page budget reached", "max_pages", cfg.MaxPages)
			break
		}

		entry := queue[0]
		queue = queue[1:]

		cleanURL := normalizeURL(entry.url)
		if visited[cleanURL] || !sameHost(base, cleanURL) || !withinDepth(base, cleanURL, cfg.MaxDepth) {
			continue
		}
		if cfg.IgnoreEPUBs && model.IsEPUBFile(cleanURL) {
			// Discarded without a page record, like any other
			// out-of-scope URL.
			s.logger.Debug("ignoring EPUB", "url", cleanURL)
			visited[cleanURL] = true
			continue
		}

		visited[cleanURL] = true
		result.ProcessedURLs = append(result.ProcessedURLs, cleanURL)
		s.logger.Debug("processing page", "url", cleanURL, "depth", entry.depth)

		record := model.PageRecord{URL: cleanURL, Depth: entry.depth}
		b.Blank()
		b.Open("page", report.URL(cleanURL))

		if model.IsPDFFile(cleanURL) {
			if cfg.IncludePDFs {
				payload, failure := s.fetchPDF(ctx, cleanURL)
				b.Line(payload)
				if failure != nil {
					record.Status = model.StatusError
					record.Err = failure.Error()
				} else {
					record.Status = model.StatusOK
					record.Text = payload
				}
			} else {
				b.Skipped("PDF ignored by config")
				record.Status = model.StatusSkippedPDFDisabled
			}
		} else {
			parsed, skipType, err := s.fetchHTML(ctx, cleanURL)
			switch {
			case err != nil:
				s.logger.Warn("page failed", "url", cleanURL, "error", err)
				b.Error("Failed to process page: " + err.Error())
				record.Status = model.StatusError
				record.Err = err.Error()
			case skipType != "":
				b.Skipped("Non-HTML: " + skipType)
				record.Status = model.StatusSkippedNonHTML
			default:
				b.Text(parsed.Text)
				record.Status = model.StatusOK
				record.Text = parsed.Text
				if entry.depth < cfg.MaxDepth {
					for _, link := range parsed.Links {
						candidate := normalizeURL(link)
						if visited[candidate] || queued[candidate] {
							continue
						}
						if !sameHost(base, candidate) || !withinDepth(base, candidate, cfg.MaxDepth) {
							continue
						}
						if cfg.IgnoreEPUBs && model.IsEPUBFile(candidate) {
							continue
						}
						queued[candidate] = true
						queue = append(queue, frontierEntry{url: candidate, depth: entry.depth + 1})
					}
				}
			}
		}

		b.CloseTag("page")
		result.Records = append(result.Records, record)
	}

	b.Blank()
	result.Content = b.String()
	s.logger.Info("crawl finished", "pages", len(result.ProcessedURLs))
	return result, ctxErr
}

// fetchHTML fetches one page. A non-HTML response returns its content
// type as skipType; an HTML response is parsed for text and links.
func (s *Spider) fetchHTML(ctx context.Context, pageURL string) (parsed *ParseResult, skipType string, err error) {
	resp, err := s.get(ctx, pageURL)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		if contentType == "" {
			contentType = "N/A"
		}
		return nil, contentType, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		return nil, "", err
	}
	parser, err := NewParser(pageURL)
	if err != nil {
		return nil, "", err
	}
	parsed, err = parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, "", err
	}
	return parsed, "", nil
}

// fetchPDF downloads one linked PDF and extracts its text. The returned
// payload is output-ready: extracted text is escaped and failure
// markers are pre-formed. A non-nil failure marks the page record.
func (s *Spider) fetchPDF(ctx context.Context, pdfURL string) (payload string, failure error) {
	s.logger.Debug("downloading PDF", "url", pdfURL)
	resp, err := s.get(ctx, pdfURL)
	if err != nil {
		return "<error>Failed to download PDF: " + report.Escape(err.Error()) + "</error>", err
	}
	defer resp.Body.Close()

	if !strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "application/pdf") {
		return "<error>Skipped non-PDF content reported at PDF URL.</error>", errNonPDF
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		return "<error>Failed to download PDF: " + report.Escape(err.Error()) + "</error>", err
	}
	result, err := extract.PDF(data)
	if err != nil {
		return "<error>Failed to process PDF: " + report.Escape(err.Error()) + "</error>", err
	}
	return result.Render(), nil
}

// get issues one GET with the spider's headers. Responses with status
// 400 and above are closed and returned as errors.
func (s *Spider) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, rawURL)
	}
	return resp, nil
}

// normalizeURL strips the fragment and defaults a missing scheme to
// http. Normalizing an already normalized URL is a no-op, so the form
// is safe to use as a set key.
func normalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.Scheme == "" {
		u.Scheme = "http"
	}
	u.Fragment = ""
	return u.String()
}

// sameHost reports whether the candidate shares the base host. Scheme
// and port are not considered, and the comparison is case-insensitive.
func sameHost(base *url.URL, candidate string) bool {
	u, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), base.Hostname())
}

// withinDepth reports whether the candidate path stays under the base
// path within maxDepth extra segments. The base path scopes the crawl
// segment-wise: /docs covers /docs/install but not /docs2.
func withinDepth(base *url.URL, candidate string, maxDepth int) bool {
	u, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	baseSegs := pathSegments(base.Path)
	candSegs := pathSegments(u.Path)
	if len(candSegs) < len(baseSegs) {
		return false
	}
	for i, seg := range baseSegs {
		if candSegs[i] != seg {
			return false
		}
	}
	return len(candSegs)-len(baseSegs) <= maxDepth
}

// pathSegments splits a URL path into its non-empty segments.
func pathSegments(path string) []string {
	var segs []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	return segs
}
