package report

import (
	"fmt"
	"html"
	"strings"

	"github.com/jimmc414/onefilellm/internal/model"
)

// Escape entity-escapes text for embedding in the tagged document.
// The five structural characters (&, <, >, ", ') are replaced.
func Escape(s string) string {
	return html.EscapeString(s)
}

// Attr is one attribute on a source or nested element.
type Attr struct {
	Key   string
	Value string
}

// URL returns a url attribute.
func URL(v string) Attr { return Attr{Key: "url", Value: v} }

// Path returns a path attribute.
func Path(v string) Attr { return Attr{Key: "path", Value: v} }

// Builder accumulates the lines of one source block. Lines are joined
// with newlines when the block is closed; an explicit Blank line yields
// the empty separator line the output format uses between entries.
type Builder struct {
	lines []string
}

// NewSource opens a source block of the given kind.
func NewSource(kind model.SourceKind, attrs ...Attr) *Builder {
	b := &Builder{}
	b.lines = append(b.lines, openTag("source", append([]Attr{{Key: "type", Value: string(kind)}}, attrs...)...))
	return b
}

// Line appends one pre-rendered line. The caller is responsible for
// escaping; use Text for plain content.
func (b *Builder) Line(raw string) {
	b.lines = append(b.lines, raw)
}

// Text appends escaped text content as one line.
func (b *Builder) Text(s string) {
	b.lines = append(b.lines, Escape(s))
}

// Blank appends an empty separator line.
func (b *Builder) Blank() {
	b.lines = append(b.lines, "")
}

// Open appends an opening tag line for a nested element.
func (b *Builder) Open(name string, attrs ...Attr) {
	b.lines = append(b.lines, openTag(name, attrs...))
}

// CloseTag appends a closing tag line for a nested element.
func (b *Builder) CloseTag(name string) {
	b.lines = append(b.lines, "</"+name+">")
}

// Error appends an in-band error marker line.
func (b *Builder) Error(msg string) {
	b.lines = append(b.lines, ErrorMarker(msg))
}

// Skipped appends an in-band skip marker line.
func (b *Builder) Skipped(msg string) {
	b.lines = append(b.lines, "<skipped>"+Escape(msg)+"</skipped>")
}

// String closes the source block and returns it.
func (b *Builder) String() string {
	return strings.Join(b.lines, "\n") + "\n</source>"
}

// ErrorMarker renders a page- or file-scoped error marker.
func ErrorMarker(msg string) string {
	return "<error>" + Escape(msg) + "</error>"
}

// ErrorBlock renders a whole-source failure as a single-line block, used
// when a handler fails before producing any content.
func ErrorBlock(kind model.SourceKind, attr Attr, msg string) string {
	return fmt.Sprintf("%s<error>%s</error></source>", openTag("source", Attr{Key: "type", Value: string(kind)}, attr), Escape(msg))
}

// FailureBlock renders the error-typed block for an input no handler
// could process, or whose handler failed unexpectedly.
func FailureBlock(input string, err error) string {
	return fmt.Sprintf(`<source type="error" path="%s"><e>Failed: %s</e></source>`, Escape(input), Escape(err.Error()))
}

func openTag(name string, attrs ...Attr) string {
	var sb strings.Builder
	sb.WriteString("<")
	sb.WriteString(name)
	for _, a := range attrs {
		sb.WriteString(" ")
		sb.WriteString(a.Key)
		sb.WriteString(`="`)
		sb.WriteString(Escape(a.Value))
		sb.WriteString(`"`)
	}
	sb.WriteString(">")
	return sb.String()
}
