package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/jimmc414/onefilellm/internal/alias"
	"github.com/jimmc414/onefilellm/internal/config"
	"github.com/jimmc414/onefilellm/internal/console"
	"github.com/jimmc414/onefilellm/internal/database"
	"github.com/jimmc414/onefilellm/internal/dispatch"
	"github.com/jimmc414/onefilellm/internal/log"
	"github.com/jimmc414/onefilellm/internal/model"
	"github.com/jimmc414/onefilellm/internal/report"
	"github.com/jimmc414/onefilellm/internal/stream"
	"github.com/jimmc414/onefilellm/internal/token"
)

// runRootCmd executes the aggregation on the root command.
func runRootCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAggregation(ctx, cfg, logger, cmd.InOrStdin(), cmd.OutOrStdout())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// applyConfigFile loads the optional configuration file named by the
// command's --config flag onto cfg, then applies environment overrides.
// If the user explicitly specified a config file path, error if not found.
// If no path specified, silently proceed without one.
func applyConfigFile(cmd *cobra.Command, cfg *config.Config) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg.ConfigFilePath = path
	explicit := path != ""
	found := config.FindConfigFile(path)

	if found != "" {
		file, err := config.LoadConfigFile(found)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", found, err)
		}
		file.Apply(cfg)
	} else if explicit {
		return fmt.Errorf("configuration file not found: %s", path)
	}

	// Environment wins over the config file for the GitHub token.
	if env := os.Getenv("GITHUB_TOKEN"); env != "" {
		cfg.GitHubToken = env
	}
	return nil
}

// buildConfig creates a Config from the config file and command flags.
// The file applies first; flags changed on the command line win over it.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	if err := applyConfigFile(cmd, cfg); err != nil {
		return nil, err
	}

	// Flags the config file can also set only override when changed on
	// the command line.
	var err error
	if cmd.Flags().Changed("depth") {
		if cfg.MaxDepth, err = cmd.Flags().GetInt("depth"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("include-pdfs") {
		if cfg.IncludePDFs, err = cmd.Flags().GetBool("include-pdfs"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("ignore-epubs") {
		if cfg.IgnoreEPUBs, err = cmd.Flags().GetBool("ignore-epubs"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("max-pages") {
		if cfg.MaxPages, err = cmd.Flags().GetInt("max-pages"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("output") {
		if cfg.OutputFile, err = cmd.Flags().GetString("output"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("urls-file") {
		if cfg.URLsFile, err = cmd.Flags().GetString("urls-file"); err != nil {
			return nil, err
		}
	}

	cfg.Format, err = cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}
	cfg.Format = strings.ToLower(cfg.Format)

	cfg.FromClipboard, err = cmd.Flags().GetBool("clipboard")
	if err != nil {
		return nil, err
	}

	cfg.NoCopy, err = cmd.Flags().GetBool("no-copy")
	if err != nil {
		return nil, err
	}

	noStore, err := cmd.Flags().GetBool("no-store")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noStore

	cfg.Inputs = args
	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// All handlers are wrapped in the redacting handler so tokens and
// authorization headers never reach the log output.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(log.NewSecureHandler(handler))
}

// runAggregation executes one aggregation run: collect blocks from the
// selected input mode, assemble the document, write it, and record the
// run.
func runAggregation(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdin io.Reader, out io.Writer) error {
	p := console.NewPrinter(out)
	rec := model.NewRunRecord()

	var blocks []string
	switch {
	case cfg.FromClipboard:
		content, ok := stream.ReadClipboard()
		if !ok {
			return errors.New("clipboard is empty or unavailable")
		}
		block, err := stream.Process(content, model.KindClipboard, cfg.Format)
		if err != nil {
			return fmt.Errorf("failed to process clipboard input: %w", err)
		}
		rec.AddSource("clipboard", model.KindClipboard, "")
		blocks = append(blocks, block)

	case slices.Contains(cfg.Inputs, "-"):
		if len(cfg.Inputs) > 1 {
			p.Warningf("ignoring %d other input(s): - reads stdin only", len(cfg.Inputs)-1)
		}
		if !stdinReady(stdin) {
			return errors.New("no input detected on stdin (use a pipe or redirect)")
		}
		content, ok := stream.ReadStdin(stdin)
		if !ok {
			return errors.New("no input detected on stdin (use a pipe or redirect)")
		}
		block, err := stream.Process(content, model.KindStdin, cfg.Format)
		if err != nil {
			return fmt.Errorf("failed to process stdin input: %w", err)
		}
		rec.AddSource("-", model.KindStdin, "")
		blocks = append(blocks, block)

	default:
		store := alias.NewStore(cfg.AliasDir, alias.WithLogger(logger))
		inputs := store.Resolve(cfg.Inputs)
		if len(inputs) == 0 {
			return config.ErrNoInput
		}

		p.Infof("Processing %d input(s)", len(inputs))
		d := dispatch.NewDispatcher(cfg, dispatch.WithLogger(logger))
		results := d.ProcessAll(ctx, inputs, rec)
		for _, res := range results {
			blocks = append(blocks, res.Content)
		}
		rec.ProcessedURLs = uniqueURLs(results)
	}

	doc := report.Combine(blocks)
	if err := writeOutput(cfg.OutputFile, doc); err != nil {
		return err
	}

	counter := token.NewCounter()
	if counter.Estimated() {
		logger.Debug("token encoding unavailable, counts are estimates")
	}
	rec.TokenCount = counter.Count(doc)
	rec.FinishedAt = time.Now().UTC()

	if err := p.Summary(rec); err != nil {
		logger.Debug("summary rendering failed", "error", err)
	}
	p.Successf("Output written to %s", cfg.OutputFile)
	p.Infof("Uncompressed Tokens: %d", rec.TokenCount)
	if failed := rec.FailedSources(); failed > 0 {
		p.Warningf("%d input(s) degraded to error blocks", failed)
	}

	if !cfg.NoCopy {
		if err := clipboard.WriteAll(doc); err != nil {
			logger.Debug("clipboard copy failed", "error", err)
		} else {
			p.Detailf("Copied to clipboard")
		}
	}

	if cfg.URLsFile != "" && len(rec.ProcessedURLs) > 0 {
		data := strings.Join(rec.ProcessedURLs, "\n") + "\n"
		if err := os.WriteFile(cfg.URLsFile, []byte(data), 0o600); err != nil {
			logger.Error("failed to write processed URLs file", "path", cfg.URLsFile, "error", err)
		} else {
			p.Detailf("Processed URLs written to %s", cfg.URLsFile)
		}
	}

	if cfg.SaveToDB {
		if err := saveRun(ctx, cfg, rec); err != nil {
			logger.Error("failed to save run history", "error", err)
		} else {
			logger.Info("run saved to history", "id", rec.ID)
		}
	}

	return nil
}

// stdinReady reports whether r carries piped data. A real stdin on an
// interactive terminal is not ready; anything that is not an *os.File
// is assumed readable.
func stdinReady(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return true
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice == 0
}

// uniqueURLs merges the crawl-visited URLs of all results, in order,
// dropping duplicates across crawls of overlapping sites.
func uniqueURLs(results []dispatch.Result) []string {
	seen := make(map[string]bool)
	var urls []string
	for _, res := range results {
		for _, u := range res.ProcessedURLs {
			if !seen[u] {
				seen[u] = true
				urls = append(urls, u)
			}
		}
	}
	return urls
}

// writeOutput writes the assembled document, creating parent
// directories as needed. Aggregated content can include private
// repository text, so the file is owner-readable only.
func writeOutput(path, doc string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// saveRun stores the run record in the history database.
func saveRun(ctx context.Context, cfg *config.Config, rec *model.RunRecord) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return db.SaveRun(ctx, rec)
}
