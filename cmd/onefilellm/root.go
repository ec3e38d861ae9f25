// Package main provides the entry point for the onefilellm CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jimmc414/onefilellm/internal/config"
)

// NewRootCmd creates the root command for onefilellm.
//
// Design decision: aggregation runs on the root command itself rather
// than a dedicated subcommand. The common invocation is `onefilellm
// <inputs...>`, and burying that behind a verb would make every call
// longer for no gain. Maintenance verbs (alias, history, init, serve,
// version) are subcommands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onefilellm [inputs...]",
		Short: "Aggregate files, repos, and web content into one LLM-ready document",
		Long: `onefilellm collects content from many kinds of sources and assembles it
into a single tagged XML document with per-source blocks.

Supported inputs:
- Local files and folders (text, PDF, notebooks, spreadsheets)
- GitHub repositories, individual issues, and pull requests
- Web pages (crawled breadth-first), direct file and PDF URLs
- YouTube video transcripts and arXiv abstract pages
- DOIs and PubMed IDs resolved via Sci-Hub
- Raw text piped on stdin (-) or taken from the clipboard

Each input becomes one <source> block; failures degrade to in-band
error blocks so one bad input never costs the batch.

Examples:
  # A GitHub repository and a local folder
  onefilellm https://github.com/user/repo ./docs

  # Crawl a documentation site two levels deep
  onefilellm https://example.com/docs --depth 2

  # Pipe text through stdin and force Markdown handling
  cat notes.md | onefilellm - --format markdown

  # Expand a stored alias
  onefilellm mywork

Configuration file (.onefilellm) example:
  depth: 2
  github_token: "ghp_..."
  headers:
    Cookie: "session=abc123"`,
		Args:          cobra.ArbitraryArgs,
		RunE:          runRootCmd,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Crawl behavior flags
	cmd.Flags().IntP("depth", "d", config.DefaultCrawlDepth,
		"Crawl depth for web URLs")
	cmd.Flags().Bool("include-pdfs", true,
		"Extract text from PDFs encountered during crawls")
	cmd.Flags().Bool("ignore-epubs", true,
		"Skip EPUB links during crawls")
	cmd.Flags().Int("max-pages", config.DefaultMaxPages,
		"Maximum pages per crawl (0 = unbounded)")

	// Output flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputFile,
		"Output document path")
	cmd.Flags().String("urls-file", config.DefaultURLsFile,
		"File receiving crawl-visited URLs (empty to disable)")
	cmd.Flags().Bool("no-copy", false,
		"Do not copy the result to the clipboard")
	cmd.Flags().Bool("no-store", false,
		"Do not record the run in the history database")

	// Stream input flags
	cmd.Flags().StringP("format", "f", "",
		"Force the stream input format (text|json|yaml|html|markdown)")
	cmd.Flags().BoolP("clipboard", "c", false,
		"Read the input text from the clipboard")

	// Configuration file
	cmd.Flags().String("config", "",
		"Configuration file path (default: .onefilellm in current or home directory)")

	// Add subcommands
	cmd.AddCommand(NewAliasCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
