package report

import "strings"

const (
	openEnvelope  = "<onefilellm_output>"
	closeEnvelope = "</onefilellm_output>"
)

// Combine wraps all source blocks in the output envelope, one block per
// line group. Blocks that already carry an envelope (nested aggregation)
// are unwrapped first so the document never nests envelopes.
func Combine(blocks []string) string {
	if len(blocks) == 0 {
		return openEnvelope + closeEnvelope
	}

	parts := make([]string, 0, len(blocks)+2)
	parts = append(parts, openEnvelope)
	for _, block := range blocks {
		if strings.HasPrefix(block, openEnvelope) {
			block = strings.ReplaceAll(block, openEnvelope, "")
			block = strings.ReplaceAll(block, closeEnvelope, "")
		}
		parts = append(parts, block)
	}
	parts = append(parts, closeEnvelope)
	return strings.Join(parts, "\n")
}
