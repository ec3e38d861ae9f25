package config

// File represents the structure of the .onefilellm configuration file.
// All fields are optional; unset fields leave the flag-derived values
// untouched. Optional scalars use pointers so "explicitly false" can be
// told apart from "not configured".
type File struct {
	// Depth overrides the default crawl depth.
	Depth *int `yaml:"depth,omitempty"`

	// IncludePDFs overrides whether crawls extract PDF text.
	IncludePDFs *bool `yaml:"include_pdfs,omitempty"`

	// IgnoreEPUBs overrides whether crawls skip EPUB links.
	IgnoreEPUBs *bool `yaml:"ignore_epubs,omitempty"`

	// MaxPages overrides the per-crawl page cap.
	MaxPages *int `yaml:"max_pages,omitempty"`

	// GitHubToken authenticates GitHub API requests. The GITHUB_TOKEN
	// environment variable takes precedence when both are set.
	GitHubToken string `yaml:"github_token,omitempty"`

	// Headers are extra HTTP headers for GitHub and file downloads.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Output overrides the output document path.
	Output string `yaml:"output,omitempty"`

	// URLsFile overrides the processed-URLs file path.
	URLsFile string `yaml:"urls_file,omitempty"`
}

// Apply copies the file's configured values onto c. Flag values changed
// explicitly on the command line are applied after this, so flags always
// win over the file.
func (f *File) Apply(c *Config) {
	if f == nil {
		return
	}
	if f.Depth != nil {
		c.MaxDepth = *f.Depth
	}
	if f.IncludePDFs != nil {
		c.IncludePDFs = *f.IncludePDFs
	}
	if f.IgnoreEPUBs != nil {
		c.IgnoreEPUBs = *f.IgnoreEPUBs
	}
	if f.MaxPages != nil {
		c.MaxPages = *f.MaxPages
	}
	if f.GitHubToken != "" {
		c.GitHubToken = f.GitHubToken
	}
	if len(f.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(f.Headers))
		}
		for k, v := range f.Headers {
			c.Headers[k] = v
		}
	}
	if f.Output != "" {
		c.OutputFile = f.Output
	}
	if f.URLsFile != "" {
		c.URLsFile = f.URLsFile
	}
}
