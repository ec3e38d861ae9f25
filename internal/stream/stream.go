// Package stream renders raw piped or pasted text as a source block,
// detecting its format when the caller does not name one.
//
// Detection is ordered: JSON, then YAML, then HTML, then Markdown,
// then plain text. Each probe is cheap to reject; JSON and YAML must
// parse in full before they count, so a JSON-looking prefix with a
// broken tail falls through to the later probes.
package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"gopkg.in/yaml.v3"

	"github.com/jimmc414/onefilellm/internal/crawler"
	"github.com/jimmc414/onefilellm/internal/model"
	"github.com/jimmc414/onefilellm/internal/report"
)

// Format names returned by DetectFormat. Overrides may name any format;
// unrecognized names pass content through untouched.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// ReadStdin drains r and reports whether it held anything beyond
// whitespace. The content is returned unmodified.
func ReadStdin(r io.Reader) (string, bool) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", false
	}
	content := string(data)
	if strings.TrimSpace(content) == "" {
		return "", false
	}
	return content, true
}

// ReadClipboard reads the system clipboard, reporting false when the
// clipboard is unavailable or effectively empty.
func ReadClipboard() (string, bool) {
	content, err := clipboard.ReadAll()
	if err != nil {
		return "", false
	}
	if strings.TrimSpace(content) == "" {
		return "", false
	}
	return content, true
}

// Process renders streamed text as a source block. An empty format
// triggers detection; a named format is used as-is, so an override
// both skips detection and shows up verbatim in the block attributes.
func Process(content string, kind model.SourceKind, format string) (string, error) {
	if format == "" {
		format = DetectFormat(content)
	}
	parsed, err := Parse(format, content)
	if err != nil {
		return "", err
	}
	b := report.NewSource(kind, report.Attr{Key: "processed_as_format", Value: format})
	b.Line("<content>" + report.Escape(parsed) + "</content>")
	return b.String(), nil
}

// Parse validates or converts content for one format. JSON and YAML
// are validated and passed through, HTML is reduced to its text, and
// every other format (including unknown override names) is identity.
func Parse(format, content string) (string, error) {
	switch format {
	case FormatJSON:
		if !json.Valid([]byte(content)) {
			return "", fmt.Errorf("content is not valid JSON")
		}
		return content, nil
	case FormatYAML:
		var v any
		if err := yaml.Unmarshal([]byte(content), &v); err != nil {
			return "", fmt.Errorf("content is not valid YAML: %w", err)
		}
		return content, nil
	case FormatHTML:
		return crawler.ExtractText(strings.NewReader(content))
	default:
		return content, nil
	}
}
