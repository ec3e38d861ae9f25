package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with the expected
// defaults. The test doubles as living documentation: changes to defaults
// must be intentional.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default MaxDepth is 1", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxDepth != 1 {
			t.Errorf("expected MaxDepth to be 1, got %d", cfg.MaxDepth)
		}
	})

	t.Run("default Timeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected Timeout to be 30s, got %v", cfg.Timeout)
		}
	})

	t.Run("PDF processing is on by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.IncludePDFs {
			t.Error("expected IncludePDFs to be true")
		}
	})

	t.Run("EPUBs are ignored by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.IgnoreEPUBs {
			t.Error("expected IgnoreEPUBs to be true")
		}
	})

	t.Run("crawls are unbounded by default", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxPages != 0 {
			t.Errorf("expected MaxPages to be 0, got %d", cfg.MaxPages)
		}
	})

	t.Run("default output file", func(t *testing.T) {
		t.Parallel()
		if cfg.OutputFile != "output.xml" {
			t.Errorf("expected OutputFile to be 'output.xml', got %q", cfg.OutputFile)
		}
	})

	t.Run("runs are stored by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
	})
}

// TestConfigValidate tests the Validate method; each case covers one rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Inputs = []string{"https://example.com"}
		return cfg
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		if err := validConfig().Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("negative depth rejected", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxDepth = -1
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidDepth) {
			t.Errorf("expected ErrInvalidDepth, got %v", err)
		}
	})

	t.Run("depth zero allowed", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxDepth = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error for depth 0, got %v", err)
		}
	})

	t.Run("negative max pages rejected", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxPages = -5
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidMaxPages) {
			t.Errorf("expected ErrInvalidMaxPages, got %v", err)
		}
	})

	t.Run("zero timeout rejected", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Timeout = 0
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("negative body size rejected", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxBodySize = -1
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidMaxBodySize) {
			t.Errorf("expected ErrInvalidMaxBodySize, got %v", err)
		}
	})

	t.Run("empty output file rejected", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.OutputFile = ""
		if err := cfg.Validate(); !errors.Is(err, ErrNoOutputFile) {
			t.Errorf("expected ErrNoOutputFile, got %v", err)
		}
	})
}

func TestAuthHeaders(t *testing.T) {
	t.Parallel()

	t.Run("token becomes authorization header", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.GitHubToken = "tok123"
		headers := cfg.AuthHeaders()
		if headers["Authorization"] != "token tok123" {
			t.Errorf("Authorization = %q, want 'token tok123'", headers["Authorization"])
		}
	})

	t.Run("no token yields no authorization header", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		if _, ok := cfg.AuthHeaders()["Authorization"]; ok {
			t.Error("unexpected Authorization header without a token")
		}
	})

	t.Run("extra headers carried and copied", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Headers = map[string]string{"X-Custom": "1"}
		headers := cfg.AuthHeaders()
		if headers["X-Custom"] != "1" {
			t.Error("expected extra header to carry over")
		}
		headers["X-Custom"] = "mutated"
		if cfg.Headers["X-Custom"] != "1" {
			t.Error("mutating the returned map must not touch config state")
		}
	})
}

func TestFileApply(t *testing.T) {
	t.Parallel()

	t.Run("nil file is a no-op", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		var f *File
		f.Apply(cfg)
		if cfg.MaxDepth != DefaultCrawlDepth {
			t.Error("nil file must not change config")
		}
	})

	t.Run("configured values override defaults", func(t *testing.T) {
		t.Parallel()
		depth := 3
		off := false
		f := &File{
			Depth:       &depth,
			IncludePDFs: &off,
			GitHubToken: "filetok",
			Output:      "bundle.xml",
			Headers:     map[string]string{"X-From-File": "y"},
		}
		cfg := NewConfig()
		f.Apply(cfg)

		if cfg.MaxDepth != 3 {
			t.Errorf("MaxDepth = %d, want 3", cfg.MaxDepth)
		}
		if cfg.IncludePDFs {
			t.Error("expected IncludePDFs to be false after apply")
		}
		if cfg.GitHubToken != "filetok" {
			t.Errorf("GitHubToken = %q", cfg.GitHubToken)
		}
		if cfg.OutputFile != "bundle.xml" {
			t.Errorf("OutputFile = %q", cfg.OutputFile)
		}
		if cfg.Headers["X-From-File"] != "y" {
			t.Error("expected header from file")
		}
	})

	t.Run("unset fields leave defaults", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		(&File{}).Apply(cfg)
		if !cfg.IncludePDFs || cfg.MaxDepth != DefaultCrawlDepth {
			t.Error("empty file must not change defaults")
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("valid yaml parsed", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".onefilellm")
		content := "depth: 2\ninclude_pdfs: false\ngithub_token: abc\nheaders:\n  X-A: b\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Depth == nil || *f.Depth != 2 {
			t.Error("expected depth 2")
		}
		if f.IncludePDFs == nil || *f.IncludePDFs {
			t.Error("expected include_pdfs false")
		}
		if f.GitHubToken != "abc" {
			t.Errorf("GitHubToken = %q", f.GitHubToken)
		}
		if f.Headers["X-A"] != "b" {
			t.Error("expected header X-A")
		}
	})

	t.Run("invalid yaml is an error", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".onefilellm")
		if err := os.WriteFile(path, []byte("depth: [not an int\n"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected a parse error")
		}
	})

	t.Run("explicit missing path returns empty from FindConfigFile", func(t *testing.T) {
		t.Parallel()
		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope.yaml")); got != "" {
			t.Errorf("expected empty path, got %q", got)
		}
	})

	t.Run("explicit existing path returned as is", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("depth: 1\n"), 0600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile = %q, want %q", got, path)
		}
	})
}
