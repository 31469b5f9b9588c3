package comment

import (
	"context"
	"fmt"

	gh "github.com/cexll/review-checklist/internal/github"
	"github.com/cexll/review-checklist/internal/github/data"
	"github.com/google/go-github/v66/github"
)

// GitHubWriter writes to one pull request. Updates go through GraphQL node
// IDs; new comments are created over REST on the pull request number.
type GitHubWriter struct {
	rest    *github.Client
	graphql *data.Client
	pr      gh.PullRequest
}

// NewGitHubWriter creates a writer for pr.
func NewGitHubWriter(rest *github.Client, graphql *data.Client, pr gh.PullRequest) *GitHubWriter {
	return &GitHubWriter{rest: rest, graphql: graphql, pr: pr}
}

// UpdateComment implements Writer.
func (w *GitHubWriter) UpdateComment(ctx context.Context, commentID, body string) error {
	return data.UpdateIssueComment(ctx, w.graphql, w.pr.FullName(), commentID, body)
}

// UpdatePullRequestBody implements Writer.
func (w *GitHubWriter) UpdatePullRequestBody(ctx context.Context, pullRequestID, body string) error {
	return data.UpdatePullRequestBody(ctx, w.graphql, w.pr.FullName(), pullRequestID, body)
}

// CreateComment implements Writer.
func (w *GitHubWriter) CreateComment(ctx context.Context, body string) error {
	_, _, err := w.rest.Issues.CreateComment(ctx, w.pr.Owner, w.pr.Repo, w.pr.Number, &github.IssueComment{
		Body: &body,
	})
	if err != nil {
		return fmt.Errorf("create comment on %s: %w", w.pr, err)
	}
	return nil
}
