// Package alias stores named shortcuts that expand to lists of inputs.
//
// Each alias is one file under the store directory, named after the
// alias and holding one target per line. The characters `. / : \` are
// banned from names, which keeps every candidate distinguishable from
// paths, URLs, and identifiers, and keeps alias files from escaping
// the store directory.
package alias

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jimmc414/onefilellm/internal/config"
)

// nameBanned are the characters an alias name may not contain. The same
// set decides whether an input is even worth an alias lookup.
const nameBanned = `./:\`

// Alias is a stored name together with its expansion targets.
type Alias struct {
	Name    string
	Targets []string
}

// Store reads and writes alias files under a single directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for alias resolution messages.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a store rooted at dir. An empty dir selects the
// default location under the user config directory.
func NewStore(dir string, opts ...Option) *Store {
	s := &Store{
		dir:    dir,
		logger: slog.Default(),
	}
	if s.dir == "" {
		s.dir = DefaultDir()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultDir returns the default alias directory.
// On Linux: ~/.config/onefilellm/aliases
func DefaultDir() string {
	return filepath.Join(config.XDGConfigDir(), "aliases")
}

// IsCandidate reports whether input could name an alias: non-empty and
// free of the banned characters. Anything with a dot, slash, colon, or
// backslash is a path, URL, or identifier and never hits the store.
func IsCandidate(input string) bool {
	if input == "" {
		return false
	}
	return !strings.ContainsAny(input, nameBanned)
}

// Add creates or replaces the alias name with the given targets.
// Blank targets are dropped; at least one must remain.
func (s *Store) Add(name string, targets []string) error {
	if !IsCandidate(name) {
		return fmt.Errorf("invalid alias name %q: must be non-empty and contain none of %q", name, nameBanned)
	}
	cleaned := make([]string, 0, len(targets))
	for _, t := range targets {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return fmt.Errorf("alias %q needs at least one target", name)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create alias directory: %w", err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(cleaned, "\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write alias %q: %w", name, err)
	}
	return nil
}

// Load returns the targets stored for name. ok is false when no
// readable alias file exists, meaning the name is not an alias. An
// existing but empty file returns ok with no targets.
func (s *Store) Load(name string) (targets []string, ok bool) {
	if !IsCandidate(name) {
		return nil, false
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, false
	}
	return ParseTargets(string(data)), true
}

// Resolve expands each input through the store, in order. Inputs that
// are not aliases pass through unchanged; an empty alias expands to
// nothing and is reported, so a typo does not silently become a
// literal input.
func (s *Store) Resolve(inputs []string) []string {
	resolved := make([]string, 0, len(inputs))
	for _, input := range inputs {
		targets, ok := s.Load(input)
		if !ok {
			resolved = append(resolved, input)
			continue
		}
		if len(targets) == 0 {
			s.logger.Warn("alias is empty, expands to nothing", "name", input)
			continue
		}
		s.logger.Debug("alias expanded", "name", input, "targets", len(targets))
		resolved = append(resolved, targets...)
	}
	return resolved
}

// List returns every stored alias in name order. A store directory
// that does not exist yet lists as empty.
func (s *Store) List() ([]Alias, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read alias directory: %w", err)
	}
	aliases := make([]Alias, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		targets, ok := s.Load(entry.Name())
		if !ok {
			continue
		}
		aliases = append(aliases, Alias{Name: entry.Name(), Targets: targets})
	}
	return aliases, nil
}

// ParseTargets splits text into one target per line, trimming each
// and dropping blanks. Used for alias files and clipboard captures.
func ParseTargets(text string) []string {
	lines := strings.Split(text, "\n")
	targets := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			targets = append(targets, line)
		}
	}
	return targets
}
