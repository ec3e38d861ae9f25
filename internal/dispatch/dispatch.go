package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/jimmc414/onefilellm/internal/config"
	"github.com/jimmc414/onefilellm/internal/crawler"
	"github.com/jimmc414/onefilellm/internal/github"
	"github.com/jimmc414/onefilellm/internal/model"
	"github.com/jimmc414/onefilellm/internal/report"
	"github.com/jimmc414/onefilellm/internal/youtube"
)

// Result is the outcome of processing one input.
type Result struct {
	// Kind is the source classification the input matched.
	Kind model.SourceKind

	// Content is the rendered source block.
	Content string

	// ProcessedURLs lists every visited page URL when the input was a
	// general crawl. Empty for all other kinds.
	ProcessedURLs []string
}

// rule is one row of the dispatch table.
type rule struct {
	kind   model.SourceKind
	match  func(input string) bool
	handle func(ctx context.Context, input string) (Result, error)
}

// Dispatcher routes inputs to source handlers.
//
// Design decision: the handlers share one HTTP client and one read-only
// header bag rather than building their own, so a single Dispatcher
// reuses connections across inputs and tests can point everything at a
// fake server by swapping the client.
type Dispatcher struct {
	cfg           *config.Config
	client        *http.Client
	scihubClient  *http.Client
	spider        *crawler.Spider
	github        *github.Client
	youtube       *youtube.Client
	scihubMirrors []string
	userAgent     string
	maxBody       int64
	rules         []rule
	logger        *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient sets the HTTP client shared by all handlers.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Dispatcher) {
		d.client = client
	}
}

// WithSpider replaces the crawl engine.
func WithSpider(spider *crawler.Spider) Option {
	return func(d *Dispatcher) {
		d.spider = spider
	}
}

// WithGitHubClient replaces the GitHub API client.
func WithGitHubClient(client *github.Client) Option {
	return func(d *Dispatcher) {
		d.github = client
	}
}

// WithYouTubeClient replaces the transcript client.
func WithYouTubeClient(client *youtube.Client) Option {
	return func(d *Dispatcher) {
		d.youtube = client
	}
}

// WithSciHubMirrors overrides the mirror list tried for DOI and PMID
// lookups.
func WithSciHubMirrors(mirrors ...string) Option {
	return func(d *Dispatcher) {
		d.scihubMirrors = mirrors
	}
}

// WithLogger sets the logger for dispatch and handler progress.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a Dispatcher for cfg. Service clients not
// supplied through options are built from cfg with the shared HTTP
// client.
func NewDispatcher(cfg *config.Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfg:           cfg,
		scihubMirrors: append([]string(nil), DefaultSciHubMirrors...),
		userAgent:     cfg.UserAgent,
		maxBody:       cfg.MaxBodySize,
		logger:        slog.Default(),
	}
	if d.userAgent == "" {
		d.userAgent = config.DefaultUserAgent
	}
	if d.maxBody <= 0 {
		d.maxBody = config.DefaultMaxBodySize
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = config.DefaultTimeout
		}
		d.client = &http.Client{Timeout: timeout}
	}
	// Sci-Hub requests carry their own per-request deadlines, which are
	// longer than the shared client timeout, so they need a client
	// without one. The transport is shared to reuse connections.
	d.scihubClient = &http.Client{Transport: d.client.Transport}
	if d.spider == nil {
		d.spider = crawler.NewSpider(d.client,
			crawler.WithSpiderUserAgent(d.userAgent),
			crawler.WithSpiderHeaders(cfg.Headers),
			crawler.WithSpiderMaxBodySize(d.maxBody),
			crawler.WithSpiderLogger(d.logger),
		)
	}
	if d.github == nil {
		d.github = github.NewClient(d.client,
			github.WithHeaders(cfg.Headers),
			github.WithLogger(d.logger),
		)
	}
	if d.youtube == nil {
		d.youtube = youtube.NewClient(d.client, youtube.WithLogger(d.logger))
	}
	d.rules = []rule{
		{model.KindGitHubPR, matchGitHubPath("/pull/"), d.githubPullRequest},
		{model.KindGitHubIssue, matchGitHubPath("/issues/"), d.githubIssue},
		{model.KindGitHubRepo, isGitHub, d.githubRepo},
		{model.KindYouTube, matchWeb(isYouTube), d.youtubeTranscript},
		{model.KindArxiv, matchWeb(isArxivAbstract), d.arxivPaper},
		{model.KindWebCrawl, matchWeb(model.IsPDFFile), d.webPDF},
		{model.KindWebExcel, matchWeb(model.IsSpreadsheetFile), d.webExcel},
		{model.KindWebFile, matchWeb(model.IsTextFile), d.webFile},
		{model.KindWebCrawl, isWebURL, d.webCrawl},
		{model.KindSciHub, isAcademicID, d.sciHub},
		{model.KindLocalFolder, isDirectory, d.localFolder},
		{model.KindLocalFile, isRegularFile, d.localFile},
	}
	return d
}

// Process routes one input through the first matching rule and returns
// its source block. An input no rule accepts returns an error; handler
// failures are contained inside the returned block instead.
func (d *Dispatcher) Process(ctx context.Context, input string) (Result, error) {
	for _, r := range d.rules {
		if !r.match(input) {
			continue
		}
		d.logger.Info("processing input", "input", input, "kind", r.kind)
		res, err := r.handle(ctx, input)
		res.Kind = r.kind
		return res, err
	}
	return Result{Kind: model.KindError}, fmt.Errorf("input type not recognized: %s", input)
}

// ProcessAll runs every input through Process in order, recording each
// outcome on rec. A failed input contributes an error block and the
// batch continues; only context cancellation stops the run early, and
// even then the partial result of the cancelled input is kept.
func (d *Dispatcher) ProcessAll(ctx context.Context, inputs []string, rec *model.RunRecord) []Result {
	results := make([]Result, 0, len(inputs))
	for _, input := range inputs {
		res, err := d.Process(ctx, input)
		if err != nil {
			d.logger.Error("input failed", "input", input, "error", err)
			if res.Content == "" {
				res = Result{Kind: model.KindError, Content: report.FailureBlock(input, err)}
			}
			rec.AddSource(input, res.Kind, err.Error())
			results = append(results, res)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		rec.AddSource(input, res.Kind, "")
		results = append(results, res)
	}
	return results
}

func (d *Dispatcher) githubPullRequest(ctx context.Context, input string) (Result, error) {
	return Result{Content: d.github.PullRequest(ctx, input)}, nil
}

func (d *Dispatcher) githubIssue(ctx context.Context, input string) (Result, error) {
	return Result{Content: d.github.Issue(ctx, input)}, nil
}

func (d *Dispatcher) githubRepo(ctx context.Context, input string) (Result, error) {
	return Result{Content: d.github.Repo(ctx, input)}, nil
}

func (d *Dispatcher) youtubeTranscript(ctx context.Context, input string) (Result, error) {
	return Result{Content: d.youtube.Transcript(ctx, input)}, nil
}

// webPDF handles a direct PDF URL as a single-page crawl with PDF
// extraction forced on.
func (d *Dispatcher) webPDF(ctx context.Context, pdfURL string) (Result, error) {
	d.logger.Info("direct PDF URL, single page crawl", "url", pdfURL)
	res, err := d.spider.Crawl(ctx, crawler.Config{
		BaseURL:     pdfURL,
		MaxDepth:    0,
		IncludePDFs: true,
		IgnoreEPUBs: d.cfg.IgnoreEPUBs,
		MaxPages:    d.cfg.MaxPages,
	})
	if res == nil {
		return Result{}, err
	}
	return Result{Content: res.Content}, err
}

// webCrawl handles any remaining http(s) URL as a site crawl at the
// configured depth. This is the only rule that reports ProcessedURLs.
func (d *Dispatcher) webCrawl(ctx context.Context, baseURL string) (Result, error) {
	res, err := d.spider.Crawl(ctx, crawler.Config{
		BaseURL:     baseURL,
		MaxDepth:    d.cfg.MaxDepth,
		IncludePDFs: d.cfg.IncludePDFs,
		IgnoreEPUBs: d.cfg.IgnoreEPUBs,
		MaxPages:    d.cfg.MaxPages,
	})
	if res == nil {
		return Result{}, err
	}
	return Result{Content: res.Content, ProcessedURLs: res.ProcessedURLs}, err
}

// matchGitHubPath matches GitHub URLs whose path contains the marker.
func matchGitHubPath(marker string) func(string) bool {
	return func(input string) bool {
		return isGitHub(input) && strings.Contains(input, marker)
	}
}

// matchWeb restricts a predicate to http(s) URLs.
func matchWeb(pred func(string) bool) func(string) bool {
	return func(input string) bool {
		return isWebURL(input) && pred(input)
	}
}

func isGitHub(input string) bool {
	return strings.Contains(input, "github.com")
}

func isYouTube(input string) bool {
	return strings.Contains(input, "youtube.com") || strings.Contains(input, "youtu.be")
}

func isArxivAbstract(input string) bool {
	return strings.Contains(input, "arxiv.org/abs/")
}

func isWebURL(input string) bool {
	u, err := url.Parse(input)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// isAcademicID reports whether input is a DOI (10. prefix with a slash)
// or an all-digits PubMed ID.
func isAcademicID(input string) bool {
	if strings.HasPrefix(input, "10.") && strings.Contains(input, "/") {
		return true
	}
	return isDigits(input)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isDirectory(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

func isRegularFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
