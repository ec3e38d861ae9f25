// Package token counts LLM tokens in assembled documents.
package token

import (
	"regexp"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// encodingName is the tiktoken encoding used for counting. It
	// matches the tokenizer family of the models this output targets.
	encodingName = "cl100k_base"

	// chunkRunes bounds how much text is encoded at once so very large
	// documents do not balloon the encoder's working set.
	chunkRunes = 1000
)

// tagPattern removes markup before counting; the structural tags are
// scaffolding for the consumer, not content.
var tagPattern = regexp.MustCompile(`<[^>]+>`)

// Counter counts tokens with the cl100k_base encoding. When the
// encoding cannot be constructed (the BPE data is fetched and cached
// on first use, so a cold offline start has none), counting degrades
// to a bytes/4 estimate instead of failing the run.
type Counter struct {
	enc *tiktoken.Tiktoken
}

// NewCounter returns a Counter, degraded to estimation when the
// encoding is unavailable.
func NewCounter() *Counter {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return &Counter{}
	}
	return &Counter{enc: enc}
}

// Estimated reports whether counts are bytes/4 estimates rather than
// real token counts.
func (c *Counter) Estimated() bool {
	return c.enc == nil
}

// Count returns the token count of text with markup tags stripped.
func (c *Counter) Count(text string) int {
	stripped := tagPattern.ReplaceAllString(text, "")
	if c.enc == nil {
		return len(stripped) / 4
	}
	total := 0
	for _, chunk := range splitChunks(stripped, chunkRunes) {
		total += len(c.enc.Encode(chunk, nil, nil))
	}
	return total
}

// splitChunks cuts s into pieces of at most n runes, always on rune
// boundaries.
func splitChunks(s string, n int) []string {
	if s == "" {
		return nil
	}
	var chunks []string
	for start := 0; start < len(s); {
		end := start
		for r := 0; r < n && end < len(s); r++ {
			_, w := utf8.DecodeRuneInString(s[end:])
			end += w
		}
		chunks = append(chunks, s[start:end])
		start = end
	}
	return chunks
}
