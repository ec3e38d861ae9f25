package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/jimmc414/onefilellm/internal/model"
	"github.com/jimmc414/onefilellm/internal/report"
)

// issue is the subset of the issues API response this tool renders.
type issue struct {
	Title       string  `json:"title"`
	Body        string  `json:"body"`
	State       string  `json:"state"`
	Number      int     `json:"number"`
	User        account `json:"user"`
	CommentsURL string  `json:"comments_url"`
}

// Issue renders an issue as one source block: title, description,
// metadata, every comment in creation order, and the repository's
// default branch content.
func (c *Client) Issue(ctx context.Context, issueURL string) string {
	parts := strings.Split(issueURL, "/")
	if len(parts) < 7 || parts[len(parts)-2] != "issues" {
		return report.ErrorBlock(model.KindGitHubIssue, report.URL(issueURL), "Invalid URL format.")
	}
	owner, name, number := parts[3], parts[4], parts[len(parts)-1]

	fail := func(err error) string {
		c.logger.Warn("issue fetch failed", "url", issueURL, "error", err)
		if requestFailed(err) {
			return report.ErrorBlock(model.KindGitHubIssue, report.URL(issueURL), "Failed to fetch issue data: "+err.Error())
		}
		return report.ErrorBlock(model.KindGitHubIssue, report.URL(issueURL), "Unexpected error: "+err.Error())
	}

	c.logger.Info("fetching issue", "url", issueURL)
	var is issue
	apiURL := fmt.Sprintf("%s/repos/%s/%s/issues/%s", c.apiBase, owner, name, number)
	if err := c.getJSON(ctx, apiURL, &is); err != nil {
		return fail(err)
	}

	b := report.NewSource(model.KindGitHubIssue, report.URL(issueURL))
	b.Line("<title>" + report.Escape(orNA(is.Title)) + "</title>")
	b.Line("<description>")
	b.Text(is.Body)
	b.Line("</description>")
	b.Line(fmt.Sprintf("<details>User: %s, State: %s, Number: %d</details>",
		report.Escape(orNA(is.User.Login)), report.Escape(orNA(is.State)), is.Number))

	if is.CommentsURL != "" {
		comments, err := c.tryComments(ctx, is.CommentsURL)
		if err != nil {
			return fail(err)
		}
		appendComments(b, comments)
	}

	b.Blank()
	b.Line("<!-- Associated Repository Content -->")
	b.Line(c.Repo(ctx, "https://github.com/"+owner+"/"+name))
	b.Blank()
	return b.String()
}
