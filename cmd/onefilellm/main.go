// Package main provides the entry point for the onefilellm CLI.
//
// onefilellm aggregates heterogeneous sources (local files and folders,
// GitHub repositories, issues and pull requests, web pages, PDFs,
// YouTube transcripts, arXiv papers, academic identifiers, spreadsheets,
// and piped text) into one tagged XML document for LLM consumption.
//
// Usage:
//
//	onefilellm <input> [input...]
//	onefilellm https://github.com/user/repo ./docs paper.pdf
//
// See --help for all available options.
package main

// main is the entry point for onefilellm.
func main() {
	Execute()
}
