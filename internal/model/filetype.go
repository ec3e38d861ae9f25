package model

import (
	"path/filepath"
	"strings"
)

// textExtensions lists plain-text and source-code extensions whose content
// is embedded verbatim (escaped) in the output. URLs and repository walks
// share this table so the two paths never disagree about what counts as
// text.
var textExtensions = map[string]struct{}{
	".txt": {}, ".md": {}, ".rst": {}, ".tex": {},
	".html": {}, ".htm": {}, ".css": {}, ".js": {}, ".ts": {},
	".py": {}, ".java": {}, ".c": {}, ".cpp": {}, ".h": {}, ".hpp": {},
	".cs": {}, ".rb": {}, ".php": {}, ".swift": {}, ".kt": {}, ".scala": {},
	".rs": {}, ".lua": {}, ".pl": {}, ".sh": {}, ".bash": {}, ".zsh": {},
	".ps1": {}, ".sql": {}, ".groovy": {}, ".dart": {},
	".json": {}, ".yaml": {}, ".yml": {}, ".xml": {}, ".toml": {},
	".ini": {}, ".cfg": {}, ".conf": {}, ".properties": {},
	".csv": {}, ".tsv": {}, ".proto": {}, ".graphql": {},
	".tf": {}, ".tfvars": {}, ".hcl": {},
}

// excludedDirs are directory names never descended into during repository
// and local-folder walks. Matches are by exact name at any depth.
var excludedDirs = map[string]struct{}{
	"dist":         {},
	"node_modules": {},
	".git":         {},
	"__pycache__":  {},
}

// IsTextFile reports whether name carries a recognized plain-text or
// source-code extension.
func IsTextFile(name string) bool {
	_, ok := textExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// IsAllowedFile reports whether name is picked up by repository and
// local-folder walks: text files plus the specially converted notebook,
// PDF, and spreadsheet formats.
func IsAllowedFile(name string) bool {
	return IsTextFile(name) || IsNotebookFile(name) || IsPDFFile(name) || IsSpreadsheetFile(name)
}

// IsExcludedDir reports whether a directory name is skipped during walks.
func IsExcludedDir(name string) bool {
	_, ok := excludedDirs[name]
	return ok
}

// IsNotebookFile reports whether name is a Jupyter notebook.
func IsNotebookFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".ipynb")
}

// IsPDFFile reports whether name (a path or a full URL) ends in .pdf.
func IsPDFFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

// IsSpreadsheetFile reports whether name is an Excel workbook.
func IsSpreadsheetFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".xls") || strings.HasSuffix(lower, ".xlsx")
}

// IsEPUBFile reports whether name (a path or a full URL) ends in .epub.
func IsEPUBFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".epub")
}
