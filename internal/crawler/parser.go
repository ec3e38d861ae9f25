package crawler

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// strippedElements are removed wholesale before text extraction.
// Scripts, styles, and navigation chrome would pollute the aggregated
// text, and links inside them are not worth following.
var strippedElements = map[string]bool{
	"script": true,
	"style":  true,
	"head":   true,
	"title":  true,
	"meta":   true,
	"nav":    true,
	"footer": true,
	"aside":  true,
}

// Parser extracts visible text and candidate links from HTML documents.
//
// Design decision: We use golang.org/x/net/html directly instead of a
// CSS-selector library. The extraction rule is structural, not
// selector-based: drop a fixed set of elements, keep every remaining
// text node, and collect hrefs from whatever anchors survive. A single
// recursive walk expresses that exactly.
type Parser struct {
	// baseURL resolves relative links. When nil, link collection is
	// disabled and only text is extracted.
	baseURL *url.URL
}

// ParseResult holds everything extracted from one HTML document.
type ParseResult struct {
	// Text is the visible page text: one line per non-empty text node,
	// in document order, trimmed of surrounding whitespace.
	Text string
	// Links are absolute candidate URLs in document order. Fragments
	// are already stripped. Links found inside stripped elements are
	// not included.
	Links []string
}

// NewParser creates a parser that resolves relative links against
// baseURL.
func NewParser(baseURL string) (*Parser, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: base}, nil
}

// Parse reads one HTML document and extracts its visible text and
// links. Malformed HTML is tolerated; x/net/html recovers the way
// browsers do.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{}
	var lines []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.CommentNode:
			return
		case html.ElementNode:
			if strippedElements[n.Data] {
				return
			}
			if n.Data == "a" {
				if resolved := p.resolveLink(getAttr(n, "href")); resolved != "" {
					result.Links = append(result.Links, resolved)
				}
			}
		case html.TextNode:
			if text := strings.TrimSpace(n.Data); text != "" {
				lines = append(lines, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	result.Text = strings.Join(lines, "\n")
	return result, nil
}

// resolveLink turns an href into an absolute URL without a fragment.
// Non-navigational hrefs (mailto, javascript, bare fragments) and
// unparseable ones resolve to "".
func (p *Parser) resolveLink(href string) string {
	if p.baseURL == nil || href == "" {
		return ""
	}
	if strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "javascript:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := p.baseURL.ResolveReference(ref)
	resolved.Fragment = ""
	return resolved.String()
}

// ExtractText returns only the visible text of an HTML document. Used
// where link discovery is irrelevant, such as piped HTML input.
func ExtractText(content io.Reader) (string, error) {
	p := &Parser{}
	result, err := p.Parse(content)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// getAttr returns the value of the named attribute, or "".
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
