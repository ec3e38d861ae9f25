// Package extract converts binary and structured document formats into
// plain text suitable for the aggregated output document.
//
// Supported formats:
//   - PDF documents (page-by-page text extraction with per-page error isolation)
//   - Excel workbooks (each sheet rendered as a Markdown table)
//   - Jupyter notebooks (code cells verbatim, markdown cells as comments)
//   - Plain text files (UTF-8 with Latin-1 fallback)
//
// Extractors return typed results so callers can distinguish payload text,
// which the output layer escapes once, from pre-formed failure markers,
// which pass through unescaped.
package extract
