package model

// PageStatus describes the outcome of one dequeued frontier entry.
//
// Design decision: iota constants with a String method rather than string
// constants, so comparisons in the crawler are cheap and the human-readable
// form is confined to logs and tests.
type PageStatus int

const (
	// StatusOK means the page was fetched and text was extracted.
	StatusOK PageStatus = iota

	// StatusSkippedNonHTML means the response carried a content type the
	// crawler does not extract (anything but HTML and PDF).
	StatusSkippedNonHTML

	// StatusSkippedEPUB means the URL was an EPUB and the crawl is
	// configured to ignore EPUBs. Such URLs are marked visited without a
	// page record; the status exists for the base URL itself arriving as
	// an EPUB, which is counted but never rendered.
	StatusSkippedEPUB

	// StatusSkippedPDFDisabled means the URL was a PDF and PDF processing
	// is disabled for the crawl.
	StatusSkippedPDFDisabled

	// StatusError means the fetch or parse failed; the failure is recorded
	// in the page record and the crawl continues.
	StatusError
)

// String returns a stable identifier for the status.
func (s PageStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSkippedNonHTML:
		return "skipped-non-html"
	case StatusSkippedEPUB:
		return "skipped-epub"
	case StatusSkippedPDFDisabled:
		return "skipped-pdf-disabled"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// PageRecord is the immutable outcome of one crawled page. Records are
// appended in dequeue order, so shallower pages always precede deeper ones
// in the rendered block.
type PageRecord struct {
	// URL is the normalized URL (fragment stripped, scheme defaulted).
	URL string

	// Depth is the link distance from the base URL at discovery time.
	Depth int

	// Status classifies the outcome.
	Status PageStatus

	// Text is the extracted page text for StatusOK, or the extracted PDF
	// text when the page was a PDF. Empty for skipped and failed pages.
	Text string

	// Err holds the failure or skip detail for non-OK statuses: the
	// reported content type for skipped-non-html, the error message for
	// error, the pre-formed marker for PDF outcomes.
	Err string
}
