package model

// SourceKind identifies the origin category of one aggregated input.
// The value is emitted verbatim as the type attribute of a source block,
// so the constants below are part of the output format.
type SourceKind string

const (
	// KindWebCrawl is a website crawled breadth-first within domain and
	// depth bounds.
	KindWebCrawl SourceKind = "web_crawl"

	// KindLocalFolder is a directory tree read recursively from disk.
	KindLocalFolder SourceKind = "local_folder"

	// KindLocalFile is a single file read from disk.
	KindLocalFile SourceKind = "local_file"

	// KindGitHubRepo is a GitHub repository fetched through the contents API.
	KindGitHubRepo SourceKind = "github_repository"

	// KindGitHubPR is a GitHub pull request with diff, comments, and the
	// base-branch repository content.
	KindGitHubPR SourceKind = "github_pull_request"

	// KindGitHubIssue is a GitHub issue with comments and repository content.
	KindGitHubIssue SourceKind = "github_issue"

	// KindArxiv is an arXiv paper fetched as PDF from its abstract URL.
	KindArxiv SourceKind = "arxiv"

	// KindSciHub is a paper located through Sci-Hub by DOI or PMID.
	KindSciHub SourceKind = "sci-hub"

	// KindYouTube is a YouTube video transcript.
	KindYouTube SourceKind = "youtube_transcript"

	// KindWebFile is a single text file downloaded over HTTP.
	KindWebFile SourceKind = "web_file"

	// KindWebExcel is a spreadsheet downloaded over HTTP and rendered as
	// Markdown tables.
	KindWebExcel SourceKind = "web_excel"

	// KindStdin is raw text piped through standard input.
	KindStdin SourceKind = "stdin"

	// KindClipboard is raw text read from the system clipboard.
	KindClipboard SourceKind = "clipboard"

	// KindError marks an input that could not be processed at all. The
	// block carries the failure reason so batch runs are never silently
	// incomplete.
	KindError SourceKind = "error"
)

// String returns the kind as it appears in the output document.
func (k SourceKind) String() string {
	return string(k)
}

// SourceRecord summarizes the outcome of one dispatched input for run
// history. Err is empty when the input produced regular content.
type SourceRecord struct {
	// Position is the zero-based index of the input within the run.
	Position int

	// Input is the original input string as given by the user, after
	// alias expansion.
	Input string

	// Kind is the source category the dispatcher classified the input as.
	Kind SourceKind

	// Err holds the failure reason when the whole input degraded to an
	// error block.
	Err string
}
