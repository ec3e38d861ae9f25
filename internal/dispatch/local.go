package dispatch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jimmc414/onefilellm/internal/extract"
	"github.com/jimmc414/onefilellm/internal/model"
	"github.com/jimmc414/onefilellm/internal/report"
)

// localFolder walks a directory tree and renders every allowed file.
// Directory entries are processed in the sorted order os.ReadDir
// returns, so the block layout is stable across runs.
func (d *Dispatcher) localFolder(_ context.Context, root string) (Result, error) {
	d.logger.Info("processing local folder", "path", root)
	b := report.NewSource(model.KindLocalFolder, report.Path(root))
	d.walkFolder(root, root, b)
	b.Blank()
	return Result{Content: b.String()}, nil
}

// walkFolder renders one directory level into b, recursing into
// subdirectories at their position in the listing. An unreadable
// directory becomes an inline marker and the walk continues.
func (d *Dispatcher) walkFolder(root, dir string, b *report.Builder) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		b.Error("Failed reading directory " + dir + ": " + err.Error())
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		full := filepath.Join(dir, name)
		if entry.IsDir() {
			if !model.IsExcludedDir(name) {
				d.walkFolder(root, full, b)
			}
			continue
		}
		if !model.IsAllowedFile(name) {
			continue
		}
		rel, err := filepath.Rel(root, full)
		if err != nil {
			rel = name
		}
		d.logger.Debug("processing file", "path", full)
		switch {
		case model.IsSpreadsheetFile(name):
			d.appendLocalWorkbook(full, rel, b)
		case model.IsPDFFile(name):
			b.Blank()
			b.Open("file", report.Path(rel))
			b.Line(localPDFContent(full))
			b.CloseTag("file")
		case model.IsNotebookFile(name):
			b.Blank()
			b.Open("file", report.Path(rel))
			b.Text(notebookContent(full))
			b.CloseTag("file")
		default:
			b.Blank()
			b.Open("file", report.Path(rel))
			content, err := extract.ReadTextFile(full)
			if err != nil {
				b.Error("Failed to read file: " + err.Error())
			} else {
				b.Text(content)
			}
			b.CloseTag("file")
		}
	}
}

// appendLocalWorkbook expands a spreadsheet into one virtual .md file
// per sheet, named {relative path stem}_{sheet}.md. A workbook that
// cannot be converted renders as a single file entry holding the error
// marker.
func (d *Dispatcher) appendLocalWorkbook(full, rel string, b *report.Builder) {
	sheets, err := readWorkbook(full)
	if err != nil {
		b.Blank()
		b.Open("file", report.Path(rel))
		b.Error("Failed to read file: " + err.Error())
		b.CloseTag("file")
		return
	}
	stem := strings.TrimSuffix(rel, filepath.Ext(rel))
	for _, sheet := range sheets {
		b.Blank()
		b.Open("file", report.Path(stem+"_"+sheet.Name+".md"))
		b.Text(sheet.Markdown)
		b.CloseTag("file")
	}
}

// localFile renders one on-disk file as a local_file block. PDFs and
// spreadsheets get their converted forms; everything else is embedded
// as decoded text regardless of extension.
func (d *Dispatcher) localFile(_ context.Context, filePath string) (Result, error) {
	d.logger.Info("processing local file", "path", filePath)
	base := filepath.Base(filePath)
	b := report.NewSource(model.KindLocalFile, report.Path(filePath))
	switch {
	case model.IsPDFFile(base):
		b.Open("file", report.Path(base))
		b.Line(localPDFContent(filePath))
		b.CloseTag("file")
	case model.IsSpreadsheetFile(base):
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		sheets, err := readWorkbook(filePath)
		if err != nil {
			b.Line("<e>Failed local Excel: " + report.Escape(err.Error()) + "</e>")
		} else {
			appendSheetLines(b, stem, sheets)
		}
	default:
		content, err := extract.ReadTextFile(filePath)
		if err != nil {
			return Result{}, err
		}
		b.Open("file", report.Path(base))
		b.Text(content)
		b.CloseTag("file")
	}
	return Result{Content: b.String()}, nil
}

// localPDFContent returns the output-ready payload for one on-disk PDF.
// Failures come back as pre-formed markers, so the result must not be
// escaped again.
func localPDFContent(filePath string) string {
	data, err := os.ReadFile(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return "<e>PDF file not found: " + report.Escape(filePath) + "</e>"
	}
	if err != nil {
		return "<e>Failed to read or process PDF file: " + report.Escape(err.Error()) + "</e>"
	}
	result, err := extract.PDF(data)
	if err != nil {
		return "<e>Failed to read or process PDF file: " + report.Escape(err.Error()) + "</e>"
	}
	return result.Render()
}

// notebookContent converts a notebook to plain source text. Conversion
// failures become a comment-style note embedded as ordinary content.
func notebookContent(filePath string) string {
	data, err := os.ReadFile(filePath)
	if err == nil {
		var converted string
		if converted, err = extract.Notebook(data); err == nil {
			return converted
		}
	}
	return "# ERROR PROCESSING NOTEBOOK: " + err.Error() + "\n"
}

// readWorkbook loads and converts a spreadsheet from disk.
func readWorkbook(filePath string) ([]extract.Sheet, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return extract.Workbook(data)
}
