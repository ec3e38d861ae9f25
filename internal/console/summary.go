package console

import (
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/jimmc414/onefilellm/internal/model"
)

// Summary writes a per-source result table for a finished run.
// One row per input, in processing order, with the failure reason
// inline for sources that could not be processed.
func (p *Printer) Summary(rec *model.RunRecord) error {
	if rec == nil || len(rec.Sources) == 0 {
		return nil
	}

	md := markdown.NewMarkdown(p.out)

	md.H2("Sources Processed")
	md.PlainText("")

	rows := make([][]string, 0, len(rec.Sources))
	for _, src := range rec.Sources {
		status := "✅ OK"
		if src.Err != "" {
			status = "❌ " + Truncate(src.Err, 40)
		}
		rows = append(rows, []string{
			strconv.Itoa(src.Position + 1),
			src.Kind.String(),
			"`" + Truncate(src.Input, 48) + "`",
			status,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Type", "Input", "Status"},
		Rows:   rows,
	})
	md.PlainText("")

	return md.Build()
}
