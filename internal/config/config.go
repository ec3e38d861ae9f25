package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. Where the upstream behavior defines a
// value (crawl depth, request timeout, user agent) the default matches it.
const (
	// DefaultTimeout is the per-request timeout for page and file
	// fetches. Crawls are synchronous, so a hung host would otherwise
	// stall the whole run.
	DefaultTimeout = 30 * time.Second

	// DefaultCrawlDepth of 1 fetches the base page and the pages it
	// links to. Depth 0 fetches only the base page.
	DefaultCrawlDepth = 1

	// DefaultMaxPages of 0 leaves the crawl unbounded; the frontier runs
	// until exhausted. A positive value caps the number of processed
	// pages per crawl.
	DefaultMaxPages = 0

	// DefaultUserAgent is sent with crawl requests. Some sites serve
	// reduced or blocked content to unknown agents, so a browser-like
	// value is used.
	DefaultUserAgent = "Mozilla/5.0"

	// DefaultMaxBodySize limits how many response bytes are read into
	// memory. PDFs can run tens of megabytes, so the cap is generous
	// while still bounding a single response.
	DefaultMaxBodySize = 50 * 1024 * 1024 // 50MB

	// DefaultOutputFile is where the assembled document is written.
	DefaultOutputFile = "output.xml"

	// DefaultURLsFile receives the processed-URL list after a web crawl.
	DefaultURLsFile = "processed_urls.txt"

	// AppName is the application name used for XDG directory paths.
	AppName = "onefilellm"
)

// Config holds all aggregation options. It is populated from CLI flags and
// the optional configuration file and passed through the application via
// dependency injection rather than global state.
//
// Design decision: a single flat struct instead of nested sub-structs. The
// number of options is manageable, and nesting would add complexity
// without significant benefit.
type Config struct {
	// Inputs are the paths, URLs, identifiers, or aliases to aggregate,
	// in the order given on the command line.
	Inputs []string

	// MaxDepth is the crawl depth for web URLs. Depth counts path
	// segments beyond the base URL's path, not link hops.
	MaxDepth int

	// IncludePDFs enables PDF text extraction during crawls. When false,
	// PDF pages are recorded with a skip marker.
	IncludePDFs bool

	// IgnoreEPUBs skips EPUB links during crawls.
	IgnoreEPUBs bool

	// MaxPages caps the number of pages processed per crawl. Zero means
	// unbounded.
	MaxPages int

	// Timeout is the per-request timeout for HTTP fetches.
	Timeout time.Duration

	// UserAgent is the User-Agent header for crawl requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Zero means the default.
	MaxBodySize int64

	// OutputFile is the path of the assembled document.
	OutputFile string

	// URLsFile is where crawl-visited URLs are written. Empty disables
	// the file.
	URLsFile string

	// Format forces the stream-input format instead of detection.
	// Unknown values fall back to plain-text handling.
	Format string

	// FromClipboard reads the input text from the system clipboard
	// instead of positional inputs.
	FromClipboard bool

	// NoCopy disables copying the final document to the clipboard.
	NoCopy bool

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// ConfigFilePath is the path to the configuration file. If empty,
	// the tool searches for .onefilellm in the current directory and
	// then in the user's home directory.
	ConfigFilePath string

	// GitHubToken authenticates GitHub API requests. Populated from the
	// config file or the GITHUB_TOKEN environment variable.
	GitHubToken string

	// Headers are extra HTTP headers sent with GitHub and direct
	// file-download requests.
	Headers map[string]string

	// DBDir is the directory holding the run-history database. Defaults
	// to the XDG data directory.
	DBDir string

	// SaveToDB records the run in the history database when true.
	SaveToDB bool

	// AliasDir is the directory holding alias files. Empty selects the
	// default under the user config directory.
	AliasDir string
}

// NewConfig creates a new Config with default values.
//
// Design decision: a constructor instead of zero values because several
// defaults are non-zero (timeout, depth, the PDF/EPUB switches). It also
// documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		MaxDepth:    DefaultCrawlDepth,
		IncludePDFs: true,
		IgnoreEPUBs: true,
		MaxPages:    DefaultMaxPages,
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		OutputFile:  DefaultOutputFile,
		URLsFile:    DefaultURLsFile,
		DBDir:       XDGDataDir(),
		SaveToDB:    true,
	}
}

// AuthHeaders returns the header bag handlers attach to GitHub and direct
// file-download requests. The returned map is a copy; callers may not
// mutate shared config state.
func (c *Config) AuthHeaders() map[string]string {
	headers := make(map[string]string, len(c.Headers)+1)
	for k, v := range c.Headers {
		headers[k] = v
	}
	if c.GitHubToken != "" {
		headers["Authorization"] = "token " + c.GitHubToken
	}
	return headers
}

// XDGDataDir returns the XDG data directory for onefilellm.
// On Linux: ~/.local/share/onefilellm
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for onefilellm.
// On Linux: ~/.config/onefilellm
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid. It returns a specific
// error describing the first invalid field.
//
// Design decision: validate once after CLI parsing rather than at each
// point of use, so invocations fail fast with a clear message.
func (c *Config) Validate() error {
	if c.MaxDepth < 0 {
		return ErrInvalidDepth
	}
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.OutputFile == "" {
		return ErrNoOutputFile
	}
	return nil
}
