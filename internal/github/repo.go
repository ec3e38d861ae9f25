package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jimmc414/onefilellm/internal/extract"
	"github.com/jimmc414/onefilellm/internal/model"
	"github.com/jimmc414/onefilellm/internal/report"
)

// RepoRef identifies a repository, optionally pinned to a ref and a
// subdirectory.
type RepoRef struct {
	// Owner is the user or organization.
	Owner string
	// Name is the repository name.
	Name string
	// Ref is a branch, tag, or commit from a /tree/ URL. Empty means
	// the default branch.
	Ref string
	// Subdir limits the walk to a subdirectory of the repository.
	Subdir string
}

// ParseRepoURL extracts the repository reference from a github.com URL.
// Accepted shapes are owner/repo and owner/repo/tree/ref[/subdir].
func ParseRepoURL(repoURL string) (RepoRef, error) {
	trimmed := repoURL
	if idx := strings.Index(trimmed, "github.com/"); idx >= 0 {
		trimmed = trimmed[idx+len("github.com/"):]
	}
	parts := strings.Split(strings.Trim(trimmed, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return RepoRef{}, fmt.Errorf("not a repository URL: %s", repoURL)
	}
	ref := RepoRef{Owner: parts[0], Name: parts[1]}
	if len(parts) > 2 && parts[2] == "tree" {
		if len(parts) > 3 {
			ref.Ref = parts[3]
		}
		if len(parts) > 4 {
			ref.Subdir = strings.Join(parts[4:], "/")
		}
	}
	return ref, nil
}

// ContentsURL returns the contents API endpoint for the reference.
func (r RepoRef) ContentsURL(apiBase string) string {
	u := apiBase + "/repos/" + r.Owner + "/" + r.Name + "/contents"
	if r.Subdir != "" {
		u += "/" + r.Subdir
	}
	if r.Ref != "" {
		u += "?ref=" + url.QueryEscape(r.Ref)
	}
	return u
}

// contentEntry is one entry of a contents API directory listing.
type contentEntry struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	URL         string `json:"url"`
	DownloadURL string `json:"download_url"`
}

// Repo renders a repository tree as one source block. Text files are
// fetched and embedded; directory and file failures become in-band
// error markers so one bad entry never loses the rest.
func (c *Client) Repo(ctx context.Context, repoURL string) string {
	b := report.NewSource(model.KindGitHubRepo, report.URL(repoURL))
	ref, err := ParseRepoURL(repoURL)
	if err != nil {
		b.Line(report.ErrorMarker("Failed processing directory " + repoURL + ": " + err.Error()))
	} else {
		c.logger.Info("fetching repository", "owner", ref.Owner, "repo", ref.Name, "ref", ref.Ref)
		c.walkContents(ctx, ref.ContentsURL(c.apiBase), b)
	}
	b.Blank()
	return b.String()
}

// walkContents appends every allowed file under url, descending into
// subdirectories in listing order.
func (c *Client) walkContents(ctx context.Context, contentsURL string, b *report.Builder) {
	var entries []contentEntry
	if err := c.getJSON(ctx, contentsURL, &entries); err != nil {
		c.logger.Warn("directory listing failed", "url", contentsURL, "error", err)
		b.Line(report.ErrorMarker("Failed processing directory " + contentsURL + ": " + err.Error()))
		return
	}
	for _, entry := range entries {
		switch {
		case entry.Type == "dir" && model.IsExcludedDir(entry.Name):
			continue
		case entry.Type == "file" && model.IsAllowedFile(entry.Name):
			c.appendFile(ctx, entry, b)
		case entry.Type == "dir":
			c.walkContents(ctx, entry.URL, b)
		}
	}
}

// appendFile downloads one file and appends it as a file element.
func (c *Client) appendFile(ctx context.Context, entry contentEntry, b *report.Builder) {
	c.logger.Debug("processing file", "path", entry.Path)
	b.Blank()
	b.Open("file", report.Path(entry.Path))

	data, err := c.getBytes(ctx, entry.DownloadURL)
	if err != nil {
		c.logger.Warn("file fetch failed", "path", entry.Path, "error", err)
		b.Line(report.ErrorMarker("Failed to download/process: " + err.Error()))
		b.CloseTag("file")
		return
	}

	var content string
	if model.IsNotebookFile(entry.Name) {
		content, err = extract.Notebook(data)
		if err != nil {
			content = "# ERROR PROCESSING NOTEBOOK: " + err.Error() + "\n"
		}
	} else {
		content = extract.DecodeText(data)
	}
	b.Text(content)
	b.CloseTag("file")
}
