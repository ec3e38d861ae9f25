package stream

import (
	"encoding/json"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Probes look at a bounded sample so huge inputs stay cheap, but the
// JSON and YAML parses cover the full text. sampleRunes is measured in
// runes so a multibyte character is never split.
const sampleRunes = 2000

var (
	htmlTagPattern = regexp.MustCompile(`<[^>]+>`)
	htmlDocPattern = regexp.MustCompile(`(?i)<(?:html|body|div|p)[^>]*>`)

	markdownPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?m)^#{1,6}\s`),
		regexp.MustCompile(`(?m)^([*+-]|\d+\.)\s`),
		regexp.MustCompile(`\[.+?\]\(.+?\)`),
		regexp.MustCompile(`(\*\*|__).+?(\*\*|__)`),
		regexp.MustCompile(`([*_]).+?([*_])`),
	}
)

// DetectFormat classifies text as json, yaml, html, markdown, or text.
// The first format whose probe accepts wins.
func DetectFormat(text string) string {
	sample := sampleOf(text)
	if sample == "" {
		return FormatText
	}
	if looksLikeJSON(sample) && json.Valid([]byte(text)) {
		return FormatJSON
	}
	if strings.Contains(sample, ":") && strings.Contains(sample, "\n") {
		var v any
		if yaml.Unmarshal([]byte(text), &v) == nil {
			return FormatYAML
		}
	}
	if htmlTagPattern.MatchString(sample) && htmlDocPattern.MatchString(sample) {
		return FormatHTML
	}
	for _, p := range markdownPatterns {
		if p.MatchString(sample) {
			return FormatMarkdown
		}
	}
	return FormatText
}

// looksLikeJSON is the cheap pre-check before a full parse. Only the
// opening is checked; the sample may cut the document off before its
// closing brace.
func looksLikeJSON(sample string) bool {
	return strings.HasPrefix(sample, "{") || strings.HasPrefix(sample, "[")
}

func sampleOf(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= sampleRunes {
		return trimmed
	}
	n := 0
	for i := range trimmed {
		if n == sampleRunes {
			return trimmed[:i]
		}
		n++
	}
	return trimmed
}
