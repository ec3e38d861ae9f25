package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/jimmc414/onefilellm/internal/alias"
	"github.com/jimmc414/onefilellm/internal/config"
	"github.com/jimmc414/onefilellm/internal/database"
	"github.com/jimmc414/onefilellm/internal/dispatch"
)

// TestSetupLogger tests the logger setup.
func TestSetupLogger(t *testing.T) {
	t.Parallel()

	t.Run("creates logger for verbose mode", func(t *testing.T) {
		t.Parallel()
		logger := setupLogger(true)
		if logger == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("creates logger for non-verbose mode", func(t *testing.T) {
		t.Parallel()
		logger := setupLogger(false)
		if logger == nil {
			t.Error("expected non-nil logger")
		}
	})
}

// TestGetVerboseFlag tests the verbose flag retrieval.
func TestGetVerboseFlag(t *testing.T) {
	t.Run("returns false when flag not set", func(t *testing.T) {
		cmd := NewRootCmd()
		if getVerboseFlag(cmd) {
			t.Error("expected false when flag not set")
		}
	})

	t.Run("returns value from parent verbose flag", func(t *testing.T) {
		root := NewRootCmd()
		_ = root.PersistentFlags().Set("verbose", "true")

		historyCmd, _, err := root.Find([]string{"history"})
		if err != nil {
			t.Fatalf("failed to find history command: %v", err)
		}

		if !getVerboseFlag(historyCmd) {
			t.Error("expected true from parent verbose flag")
		}
	})
}

// isolateConfig points the config-file search at empty directories so
// a developer's real .onefilellm cannot leak into assertions.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GITHUB_TOKEN", "")
}

// TestBuildConfig tests configuration building from flags and the
// configuration file.
func TestBuildConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		isolateConfig(t)

		cmd := NewRootCmd()
		cfg, err := buildConfig(cmd, []string{"input.txt"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg == nil {
			t.Fatal("expected non-nil config")
		}
		if len(cfg.Inputs) != 1 || cfg.Inputs[0] != "input.txt" {
			t.Errorf("expected inputs [input.txt], got %v", cfg.Inputs)
		}
		if cfg.MaxDepth != config.DefaultCrawlDepth {
			t.Errorf("expected depth %d, got %d", config.DefaultCrawlDepth, cfg.MaxDepth)
		}
		if !cfg.IncludePDFs {
			t.Error("expected IncludePDFs to be true")
		}
		if !cfg.IgnoreEPUBs {
			t.Error("expected IgnoreEPUBs to be true")
		}
		if cfg.OutputFile != config.DefaultOutputFile {
			t.Errorf("expected output %q, got %q", config.DefaultOutputFile, cfg.OutputFile)
		}
		if cfg.URLsFile != config.DefaultURLsFile {
			t.Errorf("expected urls file %q, got %q", config.DefaultURLsFile, cfg.URLsFile)
		}
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
		if cfg.FromClipboard {
			t.Error("expected FromClipboard to be false")
		}
	})

	t.Run("builds config with flag overrides", func(t *testing.T) {
		isolateConfig(t)

		cmd := NewRootCmd()
		_ = cmd.Flags().Set("depth", "3")
		_ = cmd.Flags().Set("max-pages", "5")
		_ = cmd.Flags().Set("output", "custom.xml")
		_ = cmd.Flags().Set("no-store", "true")
		_ = cmd.Flags().Set("clipboard", "true")

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.MaxDepth != 3 {
			t.Errorf("expected depth 3, got %d", cfg.MaxDepth)
		}
		if cfg.MaxPages != 5 {
			t.Errorf("expected max pages 5, got %d", cfg.MaxPages)
		}
		if cfg.OutputFile != "custom.xml" {
			t.Errorf("expected output 'custom.xml', got %q", cfg.OutputFile)
		}
		if cfg.SaveToDB {
			t.Error("expected SaveToDB to be false with --no-store")
		}
		if !cfg.FromClipboard {
			t.Error("expected FromClipboard to be true")
		}
	})

	t.Run("lowercases the format flag", func(t *testing.T) {
		isolateConfig(t)

		cmd := NewRootCmd()
		_ = cmd.Flags().Set("format", "JSON")

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Format != "json" {
			t.Errorf("expected format 'json', got %q", cfg.Format)
		}
	})

	t.Run("applies discovered config file", func(t *testing.T) {
		isolateConfig(t)

		content := []byte("depth: 4\ngithub_token: \"file-token\"\noutput: \"from_file.xml\"\n")
		if err := os.WriteFile(config.DefaultConfigFile, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewRootCmd()
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.MaxDepth != 4 {
			t.Errorf("expected depth 4 from file, got %d", cfg.MaxDepth)
		}
		if cfg.GitHubToken != "file-token" {
			t.Errorf("expected token from file, got %q", cfg.GitHubToken)
		}
		if cfg.OutputFile != "from_file.xml" {
			t.Errorf("expected output from file, got %q", cfg.OutputFile)
		}
	})

	t.Run("command line flags win over the config file", func(t *testing.T) {
		isolateConfig(t)

		content := []byte("depth: 4\noutput: \"from_file.xml\"\n")
		if err := os.WriteFile(config.DefaultConfigFile, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewRootCmd()
		_ = cmd.Flags().Set("depth", "9")

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.MaxDepth != 9 {
			t.Errorf("expected flag depth 9 to win, got %d", cfg.MaxDepth)
		}
		if cfg.OutputFile != "from_file.xml" {
			t.Errorf("expected unchanged flag to yield file value, got %q", cfg.OutputFile)
		}
	})

	t.Run("environment token wins over the config file", func(t *testing.T) {
		isolateConfig(t)
		t.Setenv("GITHUB_TOKEN", "env-token")

		content := []byte("github_token: \"file-token\"\n")
		if err := os.WriteFile(config.DefaultConfigFile, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewRootCmd()
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.GitHubToken != "env-token" {
			t.Errorf("expected env token to win, got %q", cfg.GitHubToken)
		}
	})

	t.Run("errors for explicitly named missing config file", func(t *testing.T) {
		isolateConfig(t)

		cmd := NewRootCmd()
		_ = cmd.Flags().Set("config", filepath.Join(t.TempDir(), "absent.yaml"))

		_, err := buildConfig(cmd, nil)
		if err == nil {
			t.Fatal("expected error for missing config file")
		}
		if !strings.Contains(err.Error(), "configuration file not found") {
			t.Errorf("expected 'configuration file not found' error, got %v", err)
		}
	})

	t.Run("errors for invalid config file", func(t *testing.T) {
		isolateConfig(t)

		configPath := filepath.Join(t.TempDir(), "invalid.yaml")
		if err := os.WriteFile(configPath, []byte("{invalid yaml"), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewRootCmd()
		_ = cmd.Flags().Set("config", configPath)

		_, err := buildConfig(cmd, nil)
		if err == nil {
			t.Fatal("expected error for invalid config file")
		}
	})
}

// TestStdinReady tests piped-input detection.
func TestStdinReady(t *testing.T) {
	t.Parallel()

	t.Run("non-file readers are always ready", func(t *testing.T) {
		t.Parallel()
		if !stdinReady(strings.NewReader("data")) {
			t.Error("expected strings.Reader to be ready")
		}
	})

	t.Run("regular files are ready", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "input.txt")
		if err := os.WriteFile(path, []byte("data"), 0o600); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("failed to open file: %v", err)
		}
		defer f.Close()

		if !stdinReady(f) {
			t.Error("expected regular file to be ready")
		}
	})

	t.Run("character devices are not ready", func(t *testing.T) {
		t.Parallel()
		if runtime.GOOS == "windows" {
			t.Skip("skipping device test on Windows")
		}
		f, err := os.Open(os.DevNull)
		if err != nil {
			t.Skipf("cannot open %s: %v", os.DevNull, err)
		}
		defer f.Close()

		if stdinReady(f) {
			t.Error("expected character device to not be ready")
		}
	})
}

// TestUniqueURLs tests crawl URL merging.
func TestUniqueURLs(t *testing.T) {
	t.Parallel()

	t.Run("deduplicates across results preserving order", func(t *testing.T) {
		t.Parallel()
		results := []dispatch.Result{
			{ProcessedURLs: []string{"https://a.example/1", "https://a.example/2"}},
			{ProcessedURLs: nil},
			{ProcessedURLs: []string{"https://a.example/2", "https://b.example/1"}},
		}

		got := uniqueURLs(results)
		want := []string{"https://a.example/1", "https://a.example/2", "https://b.example/1"}
		if len(got) != len(want) {
			t.Fatalf("expected %d urls, got %d: %v", len(want), len(got), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("url %d: expected %q, got %q", i, want[i], got[i])
			}
		}
	})

	t.Run("returns empty for no crawls", func(t *testing.T) {
		t.Parallel()
		got := uniqueURLs([]dispatch.Result{{Content: "block"}})
		if len(got) != 0 {
			t.Errorf("expected no urls, got %v", got)
		}
	})
}

// TestWriteOutput tests output document writing.
func TestWriteOutput(t *testing.T) {
	t.Parallel()

	t.Run("writes the document", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "out.xml")
		if err := writeOutput(path, "<onefilellm_output>\n</onefilellm_output>"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		if string(content) != "<onefilellm_output>\n</onefilellm_output>" {
			t.Errorf("unexpected content: %q", content)
		}
	})

	t.Run("creates parent directories", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "nested", "deep", "out.xml")
		if err := writeOutput(path, "doc"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected output file to exist: %v", err)
		}
	})

	t.Run("restricts permissions to the owner", func(t *testing.T) {
		t.Parallel()
		if runtime.GOOS == "windows" {
			t.Skip("skipping permission test on Windows")
		}
		path := filepath.Join(t.TempDir(), "out.xml")
		if err := writeOutput(path, "doc"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("failed to stat output: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("expected permissions 0600, got %o", perm)
		}
	})
}

// testRunConfig returns a Config wired entirely into temporary
// directories with clipboard copying and history storage off.
func testRunConfig(t *testing.T) *config.Config {
	t.Helper()
	tmp := t.TempDir()
	cfg := config.NewConfig()
	cfg.OutputFile = filepath.Join(tmp, "output.xml")
	cfg.URLsFile = ""
	cfg.NoCopy = true
	cfg.SaveToDB = false
	cfg.AliasDir = filepath.Join(tmp, "aliases")
	cfg.DBDir = filepath.Join(tmp, "db")
	return cfg
}

// TestRunAggregation tests whole aggregation runs against on-disk
// inputs.
func TestRunAggregation(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)

	t.Run("aggregates a local file", func(t *testing.T) {
		t.Parallel()
		srcPath := filepath.Join(t.TempDir(), "notes.txt")
		if err := os.WriteFile(srcPath, []byte("hello from disk"), 0o600); err != nil {
			t.Fatalf("failed to write input: %v", err)
		}

		cfg := testRunConfig(t)
		cfg.Inputs = []string{srcPath}

		var out bytes.Buffer
		if err := runAggregation(context.Background(), cfg, logger, strings.NewReader(""), &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		doc, err := os.ReadFile(cfg.OutputFile)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		for _, want := range []string{
			"<onefilellm_output>",
			`<source type="local_file"`,
			"hello from disk",
			"</onefilellm_output>",
		} {
			if !strings.Contains(string(doc), want) {
				t.Errorf("expected document to contain %q", want)
			}
		}
		if !strings.Contains(out.String(), "Output written to") {
			t.Errorf("expected success message, got %q", out.String())
		}
	})

	t.Run("reads stdin when - is given", func(t *testing.T) {
		t.Parallel()
		cfg := testRunConfig(t)
		cfg.Inputs = []string{"-", "ignored.txt"}

		var out bytes.Buffer
		stdin := strings.NewReader(`{"answer": 42}`)
		if err := runAggregation(context.Background(), cfg, logger, stdin, &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		doc, err := os.ReadFile(cfg.OutputFile)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		if !strings.Contains(string(doc), `<source type="stdin" processed_as_format="json">`) {
			t.Errorf("expected stdin json block, got %q", doc)
		}
		if !strings.Contains(out.String(), "ignoring") {
			t.Errorf("expected warning about ignored inputs, got %q", out.String())
		}
	})

	t.Run("forced format skips detection", func(t *testing.T) {
		t.Parallel()
		cfg := testRunConfig(t)
		cfg.Inputs = []string{"-"}
		cfg.Format = "text"

		var out bytes.Buffer
		stdin := strings.NewReader(`{"answer": 42}`)
		if err := runAggregation(context.Background(), cfg, logger, stdin, &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		doc, err := os.ReadFile(cfg.OutputFile)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		if !strings.Contains(string(doc), `<source type="stdin" processed_as_format="text">`) {
			t.Errorf("expected forced text block, got %q", doc)
		}
	})

	t.Run("errors for empty stdin", func(t *testing.T) {
		t.Parallel()
		cfg := testRunConfig(t)
		cfg.Inputs = []string{"-"}

		var out bytes.Buffer
		err := runAggregation(context.Background(), cfg, logger, strings.NewReader("  \n"), &out)
		if err == nil {
			t.Fatal("expected error for empty stdin")
		}
		if !strings.Contains(err.Error(), "no input detected on stdin") {
			t.Errorf("expected stdin error, got %v", err)
		}
	})

	t.Run("errors when no inputs are given", func(t *testing.T) {
		t.Parallel()
		cfg := testRunConfig(t)
		cfg.Inputs = nil

		var out bytes.Buffer
		err := runAggregation(context.Background(), cfg, logger, strings.NewReader(""), &out)
		if !errors.Is(err, config.ErrNoInput) {
			t.Fatalf("expected ErrNoInput, got %v", err)
		}
	})

	t.Run("expands aliases to their targets", func(t *testing.T) {
		t.Parallel()
		srcPath := filepath.Join(t.TempDir(), "aliased.txt")
		if err := os.WriteFile(srcPath, []byte("content behind an alias"), 0o600); err != nil {
			t.Fatalf("failed to write input: %v", err)
		}

		cfg := testRunConfig(t)
		store := alias.NewStore(cfg.AliasDir, alias.WithLogger(logger))
		if err := store.Add("work", []string{srcPath}); err != nil {
			t.Fatalf("failed to add alias: %v", err)
		}
		cfg.Inputs = []string{"work"}

		var out bytes.Buffer
		if err := runAggregation(context.Background(), cfg, logger, strings.NewReader(""), &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		doc, err := os.ReadFile(cfg.OutputFile)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		if !strings.Contains(string(doc), "content behind an alias") {
			t.Errorf("expected aliased file content in document")
		}
	})

	t.Run("records the run in the history database", func(t *testing.T) {
		t.Parallel()
		srcPath := filepath.Join(t.TempDir(), "notes.txt")
		if err := os.WriteFile(srcPath, []byte("stored run"), 0o600); err != nil {
			t.Fatalf("failed to write input: %v", err)
		}

		cfg := testRunConfig(t)
		cfg.Inputs = []string{srcPath}
		cfg.SaveToDB = true

		var out bytes.Buffer
		if err := runAggregation(context.Background(), cfg, logger, strings.NewReader(""), &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		t.Cleanup(func() {
			if err := db.Close(); err != nil {
				t.Errorf("failed to close database: %v", err)
			}
		})

		runs, err := db.RecentRuns(context.Background(), 10)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("expected 1 recorded run, got %d", len(runs))
		}
		if runs[0].SourceCount != 1 {
			t.Errorf("expected 1 source, got %d", runs[0].SourceCount)
		}
		if runs[0].FailedCount != 0 {
			t.Errorf("expected 0 failures, got %d", runs[0].FailedCount)
		}
	})

	t.Run("failed inputs degrade to error blocks", func(t *testing.T) {
		t.Parallel()
		cfg := testRunConfig(t)
		cfg.Inputs = []string{filepath.Join(t.TempDir(), "does-not-exist.txt")}

		var out bytes.Buffer
		if err := runAggregation(context.Background(), cfg, logger, strings.NewReader(""), &out); err != nil {
			t.Fatalf("expected run to succeed with error block, got %v", err)
		}

		doc, err := os.ReadFile(cfg.OutputFile)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		if !strings.Contains(string(doc), `<source type="error"`) {
			t.Errorf("expected error block in document, got %q", doc)
		}
	})

	t.Run("writes crawl urls file", func(t *testing.T) {
		t.Parallel()
		// Local files produce no crawl URLs, so the file is not
		// written even when configured.
		srcPath := filepath.Join(t.TempDir(), "notes.txt")
		if err := os.WriteFile(srcPath, []byte("no urls"), 0o600); err != nil {
			t.Fatalf("failed to write input: %v", err)
		}

		cfg := testRunConfig(t)
		cfg.Inputs = []string{srcPath}
		cfg.URLsFile = filepath.Join(filepath.Dir(cfg.OutputFile), "urls.txt")

		var out bytes.Buffer
		if err := runAggregation(context.Background(), cfg, logger, strings.NewReader(""), &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := os.Stat(cfg.URLsFile); !os.IsNotExist(err) {
			t.Errorf("expected no urls file for a crawl-free run, stat err: %v", err)
		}
	})
}
