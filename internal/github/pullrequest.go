package github

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jimmc414/onefilellm/internal/model"
	"github.com/jimmc414/onefilellm/internal/report"
)

// account is the author of a pull request, issue, or comment.
type account struct {
	Login string `json:"login"`
}

// branchRef is one side of a pull request.
type branchRef struct {
	Label string `json:"label"`
	Ref   string `json:"ref"`
}

// pullRequest is the subset of the pulls API response this tool renders.
type pullRequest struct {
	Title             string    `json:"title"`
	Body              string    `json:"body"`
	State             string    `json:"state"`
	Commits           int       `json:"commits"`
	User              account   `json:"user"`
	Base              branchRef `json:"base"`
	Head              branchRef `json:"head"`
	DiffURL           string    `json:"diff_url"`
	CommentsURL       string    `json:"comments_url"`
	ReviewCommentsURL string    `json:"review_comments_url"`
}

// comment is one issue or review comment. Review comments carry a file
// position; issue comments leave those fields empty.
type comment struct {
	User         account `json:"user"`
	Body         string  `json:"body"`
	CreatedAt    string  `json:"created_at"`
	Path         string  `json:"path"`
	Line         *int    `json:"line"`
	OriginalLine *int    `json:"original_line"`
}

// lineAttr returns the comment's line position, preferring the current
// line over the original one.
func (cm comment) lineAttr() string {
	if cm.Line != nil && *cm.Line != 0 {
		return strconv.Itoa(*cm.Line)
	}
	if cm.OriginalLine != nil && *cm.OriginalLine != 0 {
		return strconv.Itoa(*cm.OriginalLine)
	}
	return ""
}

// PullRequest renders a pull request as one source block: title,
// description, metadata, the diff, every comment in creation order, and
// the base branch's repository content.
func (c *Client) PullRequest(ctx context.Context, prURL string) string {
	parts := strings.Split(prURL, "/")
	if len(parts) < 7 || parts[len(parts)-2] != "pull" {
		return report.ErrorBlock(model.KindGitHubPR, report.URL(prURL), "Invalid URL format.")
	}
	owner, name, number := parts[3], parts[4], parts[len(parts)-1]

	fail := func(err error) string {
		c.logger.Warn("pull request fetch failed", "url", prURL, "error", err)
		if requestFailed(err) {
			return report.ErrorBlock(model.KindGitHubPR, report.URL(prURL), "Failed to fetch PR data: "+err.Error())
		}
		return report.ErrorBlock(model.KindGitHubPR, report.URL(prURL), "Unexpected error: "+err.Error())
	}

	c.logger.Info("fetching pull request", "url", prURL)
	var pr pullRequest
	apiURL := fmt.Sprintf("%s/repos/%s/%s/pulls/%s", c.apiBase, owner, name, number)
	if err := c.getJSON(ctx, apiURL, &pr); err != nil {
		return fail(err)
	}

	b := report.NewSource(model.KindGitHubPR, report.URL(prURL))
	b.Line("<title>" + report.Escape(orNA(pr.Title)) + "</title>")
	b.Line("<description>")
	b.Text(pr.Body)
	b.Line("</description>")
	b.Line(fmt.Sprintf("<details>User: %s, State: %s, Commits: %d, Base: %s, Head: %s</details>",
		report.Escape(orNA(pr.User.Login)), report.Escape(orNA(pr.State)), pr.Commits,
		report.Escape(orNA(pr.Base.Label)), report.Escape(orNA(pr.Head.Label))))

	if pr.DiffURL != "" {
		c.logger.Debug("fetching diff", "url", pr.DiffURL)
		diff, err := c.getText(ctx, pr.DiffURL)
		if err != nil {
			return fail(err)
		}
		b.Blank()
		b.Line("<diff>")
		b.Text(diff)
		b.CloseTag("diff")
	}

	var comments []comment
	for _, commentsURL := range []string{pr.CommentsURL, pr.ReviewCommentsURL} {
		if commentsURL == "" {
			continue
		}
		list, err := c.tryComments(ctx, commentsURL)
		if err != nil {
			return fail(err)
		}
		comments = append(comments, list...)
	}
	appendComments(b, comments)

	b.Blank()
	b.Line("<!-- Associated Repository Content -->")
	repoURL := "https://github.com/" + owner + "/" + name
	if pr.Base.Ref != "" {
		repoURL += "/tree/" + pr.Base.Ref
	}
	b.Line(c.Repo(ctx, repoURL))
	b.Blank()
	return b.String()
}

// tryComments fetches one comment list. An error status skips the list
// with a warning so the rest of the block still renders; transport
// failures are returned.
func (c *Client) tryComments(ctx context.Context, url string) ([]comment, error) {
	var list []comment
	err := c.getJSON(ctx, url, &list)
	if err == nil {
		return list, nil
	}
	var re *RequestError
	if errors.As(err, &re) && re.Status != 0 {
		c.logger.Warn("could not fetch comments", "url", url, "status", re.Status)
		return nil, nil
	}
	return nil, err
}

// appendComments renders the merged comment list sorted by creation
// time. The sort is stable, so comments created at the same instant
// keep their fetch order.
func appendComments(b *report.Builder, comments []comment) {
	if len(comments) == 0 {
		return
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt < comments[j].CreatedAt
	})
	b.Blank()
	b.Line("<comments>")
	for _, cm := range comments {
		tag := `<comment author="` + report.Escape(orNA(cm.User.Login)) + `"`
		if cm.Path != "" {
			tag += ` path="` + report.Escape(cm.Path) + `"`
		}
		if line := cm.lineAttr(); line != "" {
			tag += ` line="` + line + `"`
		}
		b.Line(tag + ">")
		b.Text(cm.Body)
		b.CloseTag("comment")
	}
	b.Line("</comments>")
}
