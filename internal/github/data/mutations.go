package data

import (
	"context"
	"fmt"
)

// UpdateIssueComment replaces the body of a comment by its node ID.
func UpdateIssueComment(ctx context.Context, c *Client, repo, commentID, body string) error {
	err := c.Do(ctx, repo, updateIssueCommentMutation, map[string]any{
		"input": map[string]any{
			"id":   commentID,
			"body": body,
		},
	}, nil)
	if err != nil {
		return fmt.Errorf("update comment %s: %w", commentID, err)
	}
	return nil
}

// UpdatePullRequestBody replaces the description of a pull request by its node ID.
func UpdatePullRequestBody(ctx context.Context, c *Client, repo, pullRequestID, body string) error {
	err := c.Do(ctx, repo, updatePullRequestMutation, map[string]any{
		"input": map[string]any{
			"pullRequestId": pullRequestID,
			"body":          body,
		},
	}, nil)
	if err != nil {
		return fmt.Errorf("update pull request %s: %w", pullRequestID, err)
	}
	return nil
}

const updateIssueCommentMutation = `mutation UpdateIssueComment($input: UpdateIssueCommentInput!) {
  updateIssueComment(input: $input) {
    issueComment { id }
  }
}`

const updatePullRequestMutation = `mutation UpdatePullRequest($input: UpdatePullRequestInput!) {
  updatePullRequest(input: $input) {
    pullRequest { id }
  }
}`
